package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Config is the tool-level configuration, loaded from a YAML file.
type Config struct {
	Logger       Logger       `yaml:"logger"`
	Suppressions Suppressions `yaml:"suppressions"`
}

// Logger configures the hclog logger.
type Logger struct {
	Level string `yaml:"level"`
}

// Suppressions configures how suppression specifications are located.
type Suppressions struct {
	// DefaultPaths are suppression files applied in addition to the
	// ones given on the command line.
	DefaultPaths []string `yaml:"default_paths"`
}

// ValidateConfigPath checks that path points at a readable file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// NewConfig loads the configuration at configPath. A missing file is
// not an error: the zero configuration is returned so the tool works
// without one.
func NewConfig(configPath string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadYAML(configPath, config); err != nil {
		return nil, err
	}

	return config, nil
}
