// Package config loads the server's YAML configuration file.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the matchmaking/relay server.
type Config struct {
	// TCP listener (lobby clients and emulator connections).
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// UDP rendezvous service.
	UDPHolepunch bool `yaml:"udp_holepunch"`
	UDPAddress   string `yaml:"udp_address"`
	UDPPort      int    `yaml:"udp_port"`

	// Match recording.
	RecordingsDir string `yaml:"recordings_dir"`

	// Database.
	Database DatabaseConfig `yaml:"database"`

	// Logging.
	LogLevel string `yaml:"log_level"` // debug, info, warn, error (default: info)

	// Process control.
	PIDFile string `yaml:"pid_file"`

	// AutoCreateAccounts registers a new user on first successful-looking
	// auth attempt instead of requiring pre-provisioning. Off by default;
	// the original ggposrv enabled it by default, but an internet-facing
	// deployment should opt in deliberately.
	AutoCreateAccounts bool `yaml:"auto_create_accounts"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the user store.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	MaxConns int32 `yaml:"max_conns"`
	MinConns int32 `yaml:"min_conns"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	base := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)

	var params []string
	if d.MaxConns > 0 {
		params = append(params, fmt.Sprintf("pool_max_conns=%d", d.MaxConns))
	}
	if d.MinConns > 0 {
		params = append(params, fmt.Sprintf("pool_min_conns=%d", d.MinConns))
	}
	if len(params) > 0 {
		return base + "&" + strings.Join(params, "&")
	}
	return base
}

// Default returns a Config with sensible defaults for local development.
func Default() Config {
	return Config{
		BindAddress:   "0.0.0.0",
		Port:          7000,
		UDPHolepunch:  false,
		UDPAddress:    "0.0.0.0",
		UDPPort:       7001,
		RecordingsDir: "quarks",
		LogLevel:      "info",
		PIDFile:       "ggposrv.pid",
		Database: DatabaseConfig{
			Host:    "127.0.0.1",
			Port:    5432,
			User:    "ggposrv",
			Password: "ggposrv",
			DBName:  "ggposrv",
			SSLMode: "disable",
		},
	}
}

// Load reads config from a YAML file at path, overlaying it onto
// Default(). A missing file is not an error: the defaults apply as-is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return cfg, nil
}
