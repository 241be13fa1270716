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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
connection:
  type: postgres
  host: db.internal
  port: 5432
  username: app
  dbname: members
  max_open_conns: 20
  connect_timeout: 3s
bootstrap:
  enable_on_startup: true
  enable_foreign_key: true
  foreign_key_file: configs/foreign_keys.yaml
data_init:
  auto_init_on_startup: true
  filepath: configs/sql
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.ConnectionConfig.Type)
	assert.Equal(t, "db.internal", cfg.ConnectionConfig.Host)
	assert.Equal(t, 5432, cfg.ConnectionConfig.Port)
	assert.Equal(t, 20, cfg.ConnectionConfig.MaxOpenConns)
	assert.Equal(t, 3*time.Second, cfg.ConnectionConfig.ConnectTimeout)
	// Unset fields keep their defaults.
	assert.Equal(t, 10, cfg.ConnectionConfig.MaxIdleConns)
	assert.Equal(t, time.Hour, cfg.ConnectionConfig.ConnMaxLifetime)

	assert.True(t, cfg.BootstrapConfig.EnableForeignKey)
	assert.Equal(t, "configs/foreign_keys.yaml", cfg.BootstrapConfig.ForeignKeyFile)
	assert.True(t, cfg.DataInitConfig.AutoInitOnStartup)
	assert.Equal(t, "prod", cfg.DataInitConfig.Environment)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "members", cfg.ConnectionConfig.DBName)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("connection: [not, a, map]"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DB_HOST", "override.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("DB_ENABLE_QUERY_LOG", "true")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90")

	cfg := DefaultConnectionConfig()
	cfg.Host = "db.internal"
	cfg.ApplyEnv()

	assert.Equal(t, "override.internal", cfg.Host)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, 100, cfg.MaxOpenConns)
	assert.True(t, cfg.EnableQueryLog)
	assert.Equal(t, 90*time.Second, cfg.ConnMaxLifetime)

	t.Setenv("DB_CONN_MAX_LIFETIME", "2m")
	cfg.ApplyEnv()
	assert.Equal(t, 2*time.Minute, cfg.ConnMaxLifetime)
}

func TestLoadConfigAppliesEnv(t *testing.T) {
	t.Setenv("DB_NAME", "members_ci")
	path := filepath.Join(t.TempDir(), "database.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "members_ci", cfg.ConnectionConfig.DBName)

	parsed, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "members", parsed.ConnectionConfig.DBName)
}

func TestDriver(t *testing.T) {
	for typ, want := range map[string]string{
		"mysql":      "mysql",
		"PostgreSQL": "postgres",
		"postgres":   "postgres",
		"sqlite3":    "sqlite",
	} {
		got, err := (&ConnectionConfig{Type: typ}).Driver()
		require.NoError(t, err)
		assert.Equal(t, want, got, typ)
	}
	_, err := (&ConnectionConfig{Type: "oracle"}).Driver()
	assert.ErrorContains(t, err, "unsupported database type")
}
