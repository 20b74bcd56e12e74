package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// ConfigFileVar names the environment variable pointing at an optional YAML file.
// The file holds the same keys as the environment, e.g.
//
//	SESSION_LIFETIME: 30
//	RATE_LIMIT_ATTEMPTS: 5
//
// Environment variables always win over file values.
const ConfigFileVar = "CONFIG_FILE"

var (
	fileLock   sync.RWMutex
	fileValues map[string]string
)

// LoadFile reads the YAML file at path and makes its values visible to GetEnv.
// An empty path is a no-op.
func LoadFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("[config LoadFile] read %s: %w", path, err)
	}
	return loadYAML(data)
}

func loadYAML(data []byte) error {
	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("[config LoadFile] parse yaml: %w", err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch typed := v.(type) {
		case nil:
			continue
		case []interface{}:
			// lists become the comma separated form used by the environment
			var joined string
			for i, item := range typed {
				if i > 0 {
					joined += ","
				}
				joined += fmt.Sprint(item)
			}
			values[k] = joined
		default:
			values[k] = fmt.Sprint(typed)
		}
	}

	fileLock.Lock()
	fileValues = values
	fileLock.Unlock()
	return nil
}

func fileValue(key string) (string, bool) {
	fileLock.RLock()
	defer fileLock.RUnlock()
	v, ok := fileValues[key]
	return v, ok
}

func resetFileValues() {
	fileLock.Lock()
	fileValues = nil
	fileLock.Unlock()
}
