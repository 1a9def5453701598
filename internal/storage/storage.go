// Package storage persists per-symbol, per-day artifacts (plans, analysis
// snapshots, backtest results) as JSON files under a base directory.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/plantrade/pkg/errors"
)

// JSONStorage writes one file per symbol, day and category:
// <base>/<symbol>/<date>_<category>.json.
type JSONStorage struct {
	BaseDir string
}

func NewJSONStorage(baseDir string) *JSONStorage {
	return &JSONStorage{BaseDir: baseDir}
}

func (s *JSONStorage) path(category, symbol, date string) string {
	return filepath.Join(s.BaseDir, symbol, fmt.Sprintf("%s_%s.json", date, category))
}

// Save marshals v and writes it to the category file, creating the symbol
// directory as needed. It returns the written path.
func (s *JSONStorage) Save(category, symbol, date string, v any) (string, error) {
	dir := filepath.Join(s.BaseDir, symbol)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to create symbol directory", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to marshal artifact", err)
	}

	path := s.path(category, symbol, date)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to write artifact", err)
	}

	return path, nil
}

// Load reads the category file into the given value.
func (s *JSONStorage) Load(category, symbol, date string, into any) error {
	path := s.path(category, symbol, date)

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStorageReadFailed, err, "failed to read %s", path)
	}

	if err := json.Unmarshal(data, into); err != nil {
		return errors.Wrapf(errors.ErrCodeStorageReadFailed, err, "failed to parse %s", path)
	}

	return nil
}

// Exists reports whether the category file is present.
func (s *JSONStorage) Exists(category, symbol, date string) bool {
	_, err := os.Stat(s.path(category, symbol, date))
	return err == nil
}
