package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk configuration consumed by the CLI. Engine settings
// nest under "engine"; the rest are CLI-level defaults that flags override.
type File struct {
	Server  string `yaml:"server"`
	Output  string `yaml:"output"`
	LogFile string `yaml:"log_file"`
	Engine  Config `yaml:"engine"`
}

// DefaultFile returns a File pre-populated with engine defaults.
func DefaultFile() *File {
	return &File{
		Server: "http://localhost:5600",
		Output: "table",
		Engine: Default(),
	}
}

// LoadFile reads a YAML config file, layering it over the defaults. A
// missing file is not an error; the defaults are returned as-is.
func LoadFile(path string) (*File, error) {
	f := DefaultFile()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return f, nil
}
