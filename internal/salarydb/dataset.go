// Package salarydb loads, validates and builds the salary dataset consumed by the
// salary matcher.
package salarydb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/spigell/linkedintel/internal/salary"
)

// Dataset is a versioned set of salary entries. Version changes whenever the
// entries change and is used to invalidate cached lookups.
type Dataset struct {
	Version int64          `json:"version"`
	Entries []salary.Entry `json:"entries"`
}

// LoadFile reads a dataset from a JSON file holding either a plain array of entries
// or a {version, entries} envelope. Without an explicit version the checksum of the
// file content is used.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading salary db %q: %w", path, err)
	}

	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing salary db %q: %w", path, err)
	}

	return ds, nil
}

// Parse decodes dataset JSON in either supported layout.
func Parse(data []byte) (*Dataset, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("salary db is empty")
	}

	ds := &Dataset{}
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &ds.Entries); err != nil {
			return nil, err
		}
	case '{':
		if err := json.Unmarshal(trimmed, ds); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("salary db must be a JSON array or object")
	}

	if ds.Version == 0 {
		ds.Version = checksum(trimmed)
	}

	return ds, nil
}

// VersionOf computes the version marker of a set of entries.
func VersionOf(entries []salary.Entry) (int64, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return 0, fmt.Errorf("marshal entries: %w", err)
	}
	return checksum(data), nil
}

// WriteJSON stores the dataset as an indented {version, entries} envelope.
func WriteJSON(path string, ds *Dataset) error {
	if ds == nil {
		return errors.New("dataset is required")
	}

	if ds.Version == 0 {
		version, err := VersionOf(ds.Entries)
		if err != nil {
			return err
		}
		ds.Version = version
	}

	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %q: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}

	return nil
}

func checksum(data []byte) int64 {
	return int64(crc32.ChecksumIEEE(data))
}
