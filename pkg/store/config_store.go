package store

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/borgmon/task-minder/pkg/models"
)

// ConfigStore handles configuration persistence as a YAML file.
type ConfigStore struct {
	path string
}

func NewConfigStore(path string) *ConfigStore {
	return &ConfigStore{path: path}
}

// Load reads the config file, falling back to defaults when it is missing or
// unreadable. Fields omitted from the file keep their default values.
func (cs *ConfigStore) Load() *models.Config {
	config := models.DefaultConfig()

	data, err := os.ReadFile(cs.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Unable to read config %s, using defaults: %v", cs.path, err)
		}
		return config
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		log.Printf("Config %s is corrupt, using defaults: %v", cs.path, err)
		return models.DefaultConfig()
	}

	return config
}

// Save writes the config back as YAML.
func (cs *ConfigStore) Save(config *models.Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cs.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if err := os.WriteFile(cs.path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
