// Package config loads accord configuration from a JSON file backend at
// $XDG_CONFIG_HOME/accord/config.json with ACCORD_* environment variables
// overriding backend values.
package config

import (
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Monitor  MonitorConfig
	Pipeline PipelineConfig
	Log      LogConfig
	API      APIConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type MonitorConfig struct {
	Enabled      bool
	PollInterval string
}

type PipelineConfig struct {
	BatchConcurrency int
}

type LogConfig struct {
	Level string
}

type APIConfig struct {
	Token string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Monitor: MonitorConfig{
			Enabled:      true,
			PollInterval: "1m",
		},
		Pipeline: PipelineConfig{
			BatchConcurrency: 4,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "accord-data"
		}
	}
	return filepath.Join(dir, "accord")
}

// Load reads configuration from the file backend and then applies
// environment overrides (ACCORD_*).
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// MonitorPollInterval parses the configured poll interval, falling back to
// one minute on a malformed value.
func (c Config) MonitorPollInterval() time.Duration {
	d, err := time.ParseDuration(c.Monitor.PollInterval)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

func configFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "accord", "config.json")
}
