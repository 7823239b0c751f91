package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

var (
	ErrDuplicateID = errors.New("duplicate id")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflicting state")
)

// Collections is the persistence gateway: one JSON document per
// collection under a data directory. Load failures are absorbed (the
// process continues with an empty collection); saves rewrite the whole
// document through a temp file and an atomic rename.
type Collections struct {
	dir string
	log zerolog.Logger
}

func NewCollections(dir string, log zerolog.Logger) (*Collections, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Collections{dir: dir, log: log}, nil
}

func (c *Collections) Dir() string { return c.dir }

func (c *Collections) path(name string) string {
	return filepath.Join(c.dir, name+".json")
}

// Load returns the raw id-to-record mapping of a collection. A missing
// or unreadable document yields an empty mapping and a warning, never
// an error.
func (c *Collections) Load(name string) map[string]json.RawMessage {
	records := make(map[string]json.RawMessage)

	data, err := os.ReadFile(c.path(name))
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Warn().Err(err).Str("collection", name).Msg("failed to read collection, starting empty")
		}
		return records
	}

	if err := json.Unmarshal(data, &records); err != nil {
		c.log.Warn().Err(err).Str("collection", name).Msg("failed to decode collection, starting empty")
		return make(map[string]json.RawMessage)
	}
	return records
}

// Save rewrites the collection's document in full.
func (c *Collections) Save(name string, records map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(c.dir, name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write collection %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp for %s: %w", name, err)
	}

	if err := os.Rename(tmpPath, c.path(name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace collection %s: %w", name, err)
	}
	return nil
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomID(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return string(b)
}
