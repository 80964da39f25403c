package config

import (
	"github.com/jinzhu/configor"
)

// Config - Application configuration
type Config struct {
	Fetch struct {
		Timeout    int    `yaml:"timeout" default:"10" env:"PAGE_LOADER_TIMEOUT"` // Timeout in seconds
		UserAgent  string `yaml:"user_agent" default:"page-loader/1.0" env:"PAGE_LOADER_USER_AGENT"`
		MaxWorkers int    `yaml:"max_workers" default:"10" env:"PAGE_LOADER_MAX_WORKERS"` // Concurrent resource downloads, 0 means unbounded
	} `yaml:"fetch"`
}

// LoadConfig - Load configuration, optionally from a YAML file
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	loader := configor.New(&configor.Config{
		Debug:      false,
		Verbose:    false,
		Silent:     true,
		AutoReload: false,
	})

	var err error
	if path != "" {
		err = loader.Load(cfg, path)
	} else {
		err = loader.Load(cfg)
	}
	return cfg, err
}
