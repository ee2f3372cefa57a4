// Package config provides YAML-based configuration loading for the DMS client.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level client configuration, loaded from dms.yaml.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	TokenFile string          `yaml:"token_file"`
	Store     StoreConfig     `yaml:"store"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Notify    NotifyConfig    `yaml:"notify"`
	Digest    DigestConfig    `yaml:"digest"`
}

// ServerConfig holds connection settings for the portal backend.
type ServerConfig struct {
	BaseURL    string `yaml:"base_url"`
	SocketPath string `yaml:"socket_path"`
}

// StoreConfig selects the local archive database.
type StoreConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "mysql"
	DSN    string `yaml:"dsn"`
}

// DashboardConfig holds settings for the local dashboard server.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// NotifyConfig controls how matched overconsumption alerts are fanned out
// beyond the terminal banner.
type NotifyConfig struct {
	Command string        `yaml:"command"` // shell template, e.g. "notify-send '{{.Title}}' '{{.Body}}'"
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
}

// SlackConfig holds credentials for the Slack notifier.
type SlackConfig struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
}

// DiscordConfig holds credentials for the Discord notifier.
type DiscordConfig struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
}

// DigestConfig schedules the daily consumption digest.
type DigestConfig struct {
	Schedule string `yaml:"schedule"` // 5-field cron expression
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.SocketPath == "" {
		c.Server.SocketPath = "/socket.io"
	}
	if c.TokenFile == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			c.TokenFile = filepath.Join(home, ".dms", "token")
		} else {
			c.TokenFile = ".dms-token"
		}
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.Driver == "sqlite" && c.Store.DSN == "" {
		c.Store.DSN = filepath.Join(filepath.Dir(c.TokenFile), "dms.db")
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8090
	}
	if c.Digest.Schedule == "" {
		c.Digest.Schedule = "0 8 * * *"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Server.BaseURL == "" {
		errs = append(errs, "server.base_url is required")
	} else if !strings.HasPrefix(c.Server.BaseURL, "http://") && !strings.HasPrefix(c.Server.BaseURL, "https://") {
		errs = append(errs, "server.base_url must start with http:// or https://")
	}
	switch c.Store.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q is not supported (sqlite, mysql)", c.Store.Driver))
	}
	if c.Store.Driver == "mysql" && c.Store.DSN == "" {
		errs = append(errs, "store.dsn is required for the mysql driver")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
