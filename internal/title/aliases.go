package title

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed aliases.yaml
var defaultAliases []byte

// DefaultAliases returns the built-in canonical -> aliases table.
func DefaultAliases() (map[string][]string, error) {
	return parseAliases(defaultAliases, ".yaml")
}

// LoadAliases reads a canonical -> aliases table from a JSON or YAML file.
func LoadAliases(path string) (map[string][]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("alias table path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alias table %q: %w", path, err)
	}

	table, err := parseAliases(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parsing alias table %q: %w", path, err)
	}

	return table, nil
}

func parseAliases(data []byte, ext string) (map[string][]string, error) {
	table := make(map[string][]string)

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, err
		}
	case ".json":
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported alias table format %q", ext)
	}

	return table, nil
}
