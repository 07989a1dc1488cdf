package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/hpfan/internal/api"
	"github.com/markusressel/hpfan/internal/configuration"
	"github.com/markusressel/hpfan/internal/controller"
	"github.com/markusressel/hpfan/internal/fans"
	"github.com/markusressel/hpfan/internal/gpu"
	"github.com/markusressel/hpfan/internal/hardware"
	"github.com/markusressel/hpfan/internal/persistence"
	"github.com/markusressel/hpfan/internal/sensors"
	"github.com/markusressel/hpfan/internal/statistics"
	"github.com/markusressel/hpfan/internal/ui"
	"github.com/markusressel/hpfan/internal/util"
	"github.com/oklog/run"
)

const shutdownTimeout = 5 * time.Second

func RunDaemon() {
	if getProcessOwner() != "root" {
		ui.Fatal("Fan control requires root permissions to be able to modify fan speeds, please run hpfan as root")
	}

	config := configuration.CurrentConfig

	hw := CreateHardware(config)
	defer func() {
		if err := hw.Close(); err != nil {
			ui.Warning("Error releasing hardware: %v", err)
		}
	}()

	store := CreateStore(config)
	fanController := controller.NewFanController(hw, store, config.ControllerTickRate, config.SubscriberBufferSize)
	statistics.RegisterController(fanController)

	ctx, cancel := context.WithCancel(context.Background())

	var g run.Group
	{
		if config.Statistics.Enabled {
			// === Prometheus Exporter
			addr := fmt.Sprintf(":%d", config.Statistics.Port)
			addServer(&g, "statistics", addr, statistics.CreateStatisticsService())
		}
	}
	{
		if config.Api.Enabled {
			// === REST API
			addr := fmt.Sprintf("%s:%d", config.Api.Host, config.Api.Port)
			addServer(&g, "REST API", addr, api.CreateRestService(fanController, store))
		}
	}
	{
		// === state changes
		monitor := NewStatsMonitor(fanController)
		g.Add(func() error {
			return monitor.Run(ctx)
		}, func(err error) {
			cancel()
		})
	}
	{
		// === fan controller
		g.Add(func() error {
			err := fanController.Run(ctx)
			ui.Info("Fan controller stopped.")
			return err
		}, func(err error) {
			if err != nil {
				ui.Warning("Something went wrong: %v", err)
			}
			cancel()
		})
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		g.Add(func() error {
			select {
			case <-sig:
				ui.Info("Received SIGTERM signal, exiting...")
			case <-ctx.Done():
			}
			return nil
		}, func(err error) {
			signal.Stop(sig)
			cancel()
		})
	}

	if err := g.Run(); err != nil {
		ui.Error("%v", err)
	} else {
		ui.Info("Done.")
	}
}

func addServer(g *run.Group, name string, addr string, server *echo.Echo) {
	g.Add(func() error {
		ui.Info("Starting %s server on %s", name, addr)
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ui.Error("Cannot start %s server (%s)", name, err.Error())
			return err
		}
		return nil
	}, func(err error) {
		ui.Info("Stopping %s server...", name)
		timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer timeoutCancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			ui.Warning("Error stopping %s server: %v", name, err)
		} else {
			ui.Info("%s server stopped.", name)
		}
	})
}

// CreateHardware builds the sensors and the fan driver from the given configuration
func CreateHardware(config configuration.Configuration) *hardware.Service {
	cpuSensor := sensors.NewCpuSensor(config.HwmonRoot, config.CpuDrivers)

	var library gpu.Library
	if config.Nvml.Enabled.Get() && gpu.IsNvmlSupported {
		library = gpu.NvmlLibrary()
	} else {
		ui.Info("NVML disabled, GPU temperature will be read from the integrated GPU only")
	}
	gpuSensor := gpu.NewSensor(
		gpu.NewDiscreteProvider(config.PciRoot, config.DiscreteGpuVendor, library),
		gpu.NewIntegratedProvider(config.HwmonRoot, config.IntegratedGpuDrivers),
	)

	driver := fans.NewHwMonDriver(config.HwmonRoot, config.FanDriverName)
	if _, err := driver.Detect(); err != nil {
		ui.NotifyWarn("Fan driver not found", fmt.Sprintf("No hwmon device named '%s', fan control is unavailable", config.FanDriverName))
	}

	return hardware.NewService(cpuSensor, gpuSensor, driver)
}

// CreateStore opens the configured profile store
func CreateStore(config configuration.Configuration) persistence.Store {
	store, err := persistence.NewStore(config.Profile, config.DbPath, DefaultProfile(config))
	if err != nil {
		ui.Fatal("Unable to open fan profile store: %v", err)
	}
	return store
}

// DefaultProfile is the profile used until one has been saved
func DefaultProfile(config configuration.Configuration) configuration.FanConfig {
	profile := configuration.DefaultFanConfig()
	profile.LastMode = config.DefaultMode
	return profile
}

func getProcessOwner() string {
	stdout, err := util.SafeCmdExecution("ps", []string{"-o", "user=", "-p", strconv.Itoa(os.Getpid())}, 5*time.Second)
	if err != nil {
		ui.Fatal("Error checking process owner: %v", err)
	}
	return stdout
}
