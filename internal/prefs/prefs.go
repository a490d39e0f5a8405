package prefs

import (
	"encoding/json"
	"fmt"

	"github.com/quasilyte/gdata"
)

const itemKey = "peer"

// Prefs is what a peer remembers between runs.
type Prefs struct {
	Room     string `json:"room"`
	Side     string `json:"side"`
	RelayURL string `json:"relayUrl"`
}

// Store is the part of gdata.Manager we use.
type Store interface {
	LoadItem(key string) ([]byte, error)
	SaveItem(key string, data []byte) error
}

// Open returns the per-user data store for app.
func Open(app string) (*gdata.Manager, error) {
	m, err := gdata.Open(gdata.Config{AppName: app})
	if err != nil {
		return nil, fmt.Errorf("open prefs: %w", err)
	}
	return m, nil
}

// Load returns the saved prefs, or the zero value if none were saved.
func Load(s Store) (Prefs, error) {
	data, err := s.LoadItem(itemKey)
	if err != nil {
		return Prefs{}, fmt.Errorf("load prefs: %w", err)
	}
	if data == nil {
		return Prefs{}, nil
	}
	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return Prefs{}, fmt.Errorf("parse prefs: %w", err)
	}
	return p, nil
}

func Save(s Store, p Prefs) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := s.SaveItem(itemKey, data); err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}
	return nil
}
