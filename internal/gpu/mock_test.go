package gpu

import (
	"errors"
)

type mockLibrary struct {
	initErr      error
	temperature  int
	tempErr      error
	initCalls    int
	tempCalls    int
	shutdownCall int
}

func (l *mockLibrary) Init() error {
	l.initCalls++
	return l.initErr
}

func (l *mockLibrary) Shutdown() error {
	l.shutdownCall++
	return nil
}

func (l *mockLibrary) Temperature(int) (int, error) {
	l.tempCalls++
	return l.temperature, l.tempErr
}

type mockProvider struct {
	name        string
	initErr     error
	initPanic   bool
	available   bool
	active      bool
	temperature int
	tempCalls   int
	closed      bool
}

func (p *mockProvider) Name() string {
	return p.name
}

func (p *mockProvider) Initialize() error {
	if p.initPanic {
		panic(errors.New("boom"))
	}
	return p.initErr
}

func (p *mockProvider) IsAvailable() bool {
	return p.available
}

func (p *mockProvider) IsActive() bool {
	return p.active
}

func (p *mockProvider) GetTemperature() int {
	p.tempCalls++
	return p.temperature
}

func (p *mockProvider) Close() error {
	p.closed = true
	return nil
}
