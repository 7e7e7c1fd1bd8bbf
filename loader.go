package rowz

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/capitan"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a configuration file. The format follows the extension:
// .json, .yaml/.yml or .msgpack/.mpk.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	capitan.Emit(context.Background(), SignalConfigLoaded,
		FieldPath.Field(path),
		FieldSizeBytes.Field(len(data)),
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".msgpack", ".mpk":
		return ParseMsgpack(data)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

// ParseJSON decodes a JSON configuration.
func ParseJSON(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		parseFailed("json", err)
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &cfg, nil
}

// ParseYAML decodes a YAML configuration. Keys are the same as in JSON.
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		parseFailed("yaml", err)
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &cfg, nil
}

// ParseMsgpack decodes a msgpack configuration: a map with the same keys
// as the JSON form.
func ParseMsgpack(data []byte) (*Config, error) {
	var raw map[string]any
	if err := msgpack.Unmarshal(data, &raw); err != nil {
		parseFailed("msgpack", err)
		return nil, fmt.Errorf("failed to parse msgpack: %w", err)
	}
	// The tagged unions are decoded through the JSON form.
	js, err := json.Marshal(raw)
	if err != nil {
		parseFailed("msgpack", err)
		return nil, fmt.Errorf("failed to parse msgpack: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(js, &cfg); err != nil {
		parseFailed("msgpack", err)
		return nil, fmt.Errorf("failed to parse msgpack: %w", err)
	}
	return &cfg, nil
}

func parseFailed(format string, err error) {
	capitan.Emit(context.Background(), SignalConfigParseFailed,
		FieldFormat.Field(format),
		FieldError.Field(err.Error()),
	)
}
