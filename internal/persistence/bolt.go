package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/markusressel/hpfan/internal/configuration"
	"github.com/markusressel/hpfan/internal/ui"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketProfile = "profile"
	KeyFanConfig  = "fanConfig"
)

// BoltStore keeps the profile as JSON in a bbolt database
type BoltStore struct {
	dbPath   string
	defaults configuration.FanConfig
}

func NewBoltStore(dbPath string, defaults configuration.FanConfig) *BoltStore {
	return &BoltStore{
		dbPath:   dbPath,
		defaults: defaults,
	}
}

func (p *BoltStore) Init() error {
	return ensureParentDir(p.dbPath)
}

func (p *BoltStore) openPersistence() (*bolt.DB, error) {
	return bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
}

func (p *BoltStore) Load() configuration.FanConfig {
	db, err := p.openPersistence()
	if err != nil {
		ui.Warning("Unable to open profile database %s: %v", p.dbPath, err)
		return p.defaults.Clone()
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	var data []byte
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketProfile))
		if b == nil {
			return nil
		}
		if value := b.Get([]byte(KeyFanConfig)); value != nil {
			// only valid during the transaction
			data = append([]byte(nil), value...)
		}
		return nil
	})
	if err != nil {
		ui.Warning("Unable to read profile from %s: %v", p.dbPath, err)
		return p.defaults.Clone()
	}
	if data == nil {
		ui.Info("No stored profile found, storing defaults in %s", p.dbPath)
		if err := p.put(db, p.defaults); err != nil {
			ui.Warning("Unable to store default profile: %v", err)
		}
		return p.defaults.Clone()
	}

	var config configuration.FanConfig
	if err := json.Unmarshal(data, &config); err != nil {
		ui.Warning("Stored profile is corrupt, deleting it: %v", err)
		p.delete(db)
		return p.defaults.Clone()
	}
	return sanitize(config, p.defaults, p.dbPath)
}

func (p *BoltStore) delete(db *bolt.DB) {
	err := db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketProfile))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(KeyFanConfig))
	})
	if err != nil {
		ui.Warning("Unable to delete corrupt profile: %v", err)
	}
}

func (p *BoltStore) Save(config configuration.FanConfig) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return p.put(db, config)
}

func (p *BoltStore) put(db *bolt.DB, config configuration.FanConfig) error {
	data, err := json.Marshal(config)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketProfile))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		return b.Put([]byte(KeyFanConfig), data)
	})
}
