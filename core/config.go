package core

import (
	"os"

	toml "github.com/pelletier/go-toml"
)

var config *toml.Tree

// LoadConfig reads a TOML configuration file. Missing keys fall back
// to the GetConfig*Default accessors below rather than erroring, so a
// node can start from an empty or partial file.
func LoadConfig(file string) error {
	if file == "" {
		tree, err := toml.LoadBytes(nil)
		if err != nil {
			return err
		}
		config = tree
		return nil
	}

	in, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	tree, err := toml.LoadBytes(in)
	if err != nil {
		return err
	}

	config = tree
	return nil
}

// GetConfigStringDefault returns the string at key, or def if absent
// or of the wrong type.
func GetConfigStringDefault(key string, def string) string {
	if config == nil {
		return def
	}
	if v, ok := config.Get(key).(string); ok {
		return v
	}
	return def
}

// GetConfigIntDefault returns the int at key, or def if absent or of
// the wrong type. TOML integers decode as int64.
func GetConfigIntDefault(key string, def int) int {
	if config == nil {
		return def
	}
	switch v := config.Get(key).(type) {
	case int64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

// GetConfigUint32Default returns the uint32 at key, or def if absent.
func GetConfigUint32Default(key string, def uint32) uint32 {
	if config == nil {
		return def
	}
	switch v := config.Get(key).(type) {
	case int64:
		return uint32(v)
	case int:
		return uint32(v)
	default:
		return def
	}
}

// GetConfigBoolDefault returns the bool at key, or def if absent or of
// the wrong type.
func GetConfigBoolDefault(key string, def bool) bool {
	if config == nil {
		return def
	}
	if v, ok := config.Get(key).(bool); ok {
		return v
	}
	return def
}

// GetConfigFloatDefault returns the float64 at key, or def if absent.
func GetConfigFloatDefault(key string, def float64) float64 {
	if config == nil {
		return def
	}
	switch v := config.Get(key).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return def
	}
}
