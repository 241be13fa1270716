/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConnectionConfig describes how to connect to a database and tune its pool.
type ConnectionConfig struct {
	Type            string        `json:"type" yaml:"type"` // mysql, postgres or sqlite
	Host            string        `json:"host" yaml:"host"`
	Port            int           `json:"port" yaml:"port"`
	Username        string        `json:"username" yaml:"username"`
	Password        string        `json:"password" yaml:"password"`
	DBName          string        `json:"dbname" yaml:"dbname"` // sqlite: file name without .db, or ":memory:"
	SSLMode         string        `json:"sslmode" yaml:"sslmode"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" yaml:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `json:"connect_timeout" yaml:"connect_timeout"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout"`
	EnableQueryLog  bool          `json:"enable_query_log" yaml:"enable_query_log"`
	SlowQueryTime   time.Duration `json:"slow_query_time" yaml:"slow_query_time"`
}

// BootstrapConfig controls table creation on startup.
type BootstrapConfig struct {
	EnableOnStartup  bool   `json:"enable_on_startup" yaml:"enable_on_startup"`
	EnableForeignKey bool   `json:"enable_foreign_key" yaml:"enable_foreign_key"`
	ForeignKeyFile   string `json:"foreign_key_file" yaml:"foreign_key_file"`
}

// DataInitConfig selects the SQL fixtures loaded after bootstrap.
type DataInitConfig struct {
	AutoInitOnStartup bool   `json:"auto_init_on_startup" yaml:"auto_init_on_startup"`
	Filepath          string `json:"filepath" yaml:"filepath"`
	Environment       string `json:"environment" yaml:"environment"`
}

type Config struct {
	ConnectionConfig ConnectionConfig `json:"connection_config" yaml:"connection"`
	BootstrapConfig  BootstrapConfig  `json:"bootstrap_config" yaml:"bootstrap"`
	DataInitConfig   DataInitConfig   `json:"data_init_config" yaml:"data_init"`
}

const (
	defaultEnvironment = "prod"
	defaultFixturePath = "configs/sql"
)

// DefaultConnectionConfig returns pool and timeout defaults. Type and
// address are left for the caller.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		ConnectTimeout:  10 * time.Second,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		SlowQueryTime:   2 * time.Second,
	}
}

var driverAliases = map[string]string{
	"mysql":      "mysql",
	"postgres":   "postgres",
	"postgresql": "postgres",
	"sqlite":     "sqlite",
	"sqlite3":    "sqlite",
}

// Driver returns the canonical driver for c.Type: mysql, postgres or sqlite.
func (c *ConnectionConfig) Driver() (string, error) {
	if name, ok := driverAliases[strings.ToLower(c.Type)]; ok {
		return name, nil
	}
	return "", fmt.Errorf("unsupported database type: %s", c.Type)
}

type envBinding struct {
	key   string
	apply func(c *ConnectionConfig, v string) error
}

func setInt(field func(c *ConnectionConfig) *int) func(*ConnectionConfig, string) error {
	return func(c *ConnectionConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err == nil {
			*field(c) = n
		}
		return err
	}
}

func setString(field func(c *ConnectionConfig) *string) func(*ConnectionConfig, string) error {
	return func(c *ConnectionConfig, v string) error {
		*field(c) = v
		return nil
	}
}

// parseSeconds accepts a Go duration ("90s") or a plain number of seconds.
func parseSeconds(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

var connectionEnv = []envBinding{
	{"DB_HOST", setString(func(c *ConnectionConfig) *string { return &c.Host })},
	{"DB_PORT", setInt(func(c *ConnectionConfig) *int { return &c.Port })},
	{"DB_USERNAME", setString(func(c *ConnectionConfig) *string { return &c.Username })},
	{"DB_PASSWORD", setString(func(c *ConnectionConfig) *string { return &c.Password })},
	{"DB_NAME", setString(func(c *ConnectionConfig) *string { return &c.DBName })},
	{"DB_SSLMODE", setString(func(c *ConnectionConfig) *string { return &c.SSLMode })},
	{"DB_MAX_IDLE_CONNS", setInt(func(c *ConnectionConfig) *int { return &c.MaxIdleConns })},
	{"DB_MAX_OPEN_CONNS", setInt(func(c *ConnectionConfig) *int { return &c.MaxOpenConns })},
	{"DB_CONN_MAX_LIFETIME", func(c *ConnectionConfig, v string) error {
		d, err := parseSeconds(v)
		if err == nil {
			c.ConnMaxLifetime = d
		}
		return err
	}},
	{"DB_ENABLE_QUERY_LOG", func(c *ConnectionConfig, v string) error {
		b, err := strconv.ParseBool(v)
		if err == nil {
			c.EnableQueryLog = b
		}
		return err
	}},
}

// ApplyEnv overrides connection settings from DB_* environment variables.
// Malformed values are logged and skipped.
func (c *ConnectionConfig) ApplyEnv() {
	for _, b := range connectionEnv {
		v, ok := os.LookupEnv(b.key)
		if !ok || v == "" {
			continue
		}
		if err := b.apply(c, v); err != nil {
			GetLogger().Warn("Ignoring malformed environment override", "key", b.key, "error", err)
		}
	}
}

// LoadConfig reads a YAML configuration file and applies DB_* environment
// overrides on top of it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	cfg.ConnectionConfig.ApplyEnv()
	return cfg, nil
}

// ParseConfig decodes YAML configuration bytes. Connection fields left empty
// keep the values of DefaultConnectionConfig.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{ConnectionConfig: *DefaultConnectionConfig()}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.DataInitConfig.Environment == "" {
		cfg.DataInitConfig.Environment = defaultEnvironment
	}
	return cfg, nil
}
