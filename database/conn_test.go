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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "environments", "dev")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_squads.sql"),
		[]byte("INSERT INTO test_squads (name) VALUES ('from-fixture');\n"), 0o644))

	cfg := &Config{
		ConnectionConfig: *memoryConfig(),
		BootstrapConfig:  BootstrapConfig{EnableOnStartup: true, EnableForeignKey: true},
		DataInitConfig:   DataInitConfig{AutoInitOnStartup: true, Filepath: root, Environment: "dev"},
	}
	ctx := context.Background()
	db, err := InitDB(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB() })

	assert.Same(t, db, GetDB())
	status := GetStatus(ctx)
	assert.True(t, status.Healthy)
	assert.Equal(t, 1, status.MaxOpenConns)

	var squad testSquad
	require.NoError(t, db.NewSelect().Model(&squad).Where("name = ?", "from-fixture").Scan(ctx))

	require.NoError(t, CloseDB())
	assert.Nil(t, GetDB())
	assert.Nil(t, GetManager())
	assert.False(t, GetStatus(ctx).Healthy)
	assert.ErrorIs(t, InitData(ctx), ErrNotInitialized)
}

func TestInitDBReplacesPreviousConnection(t *testing.T) {
	cfg := &Config{ConnectionConfig: *memoryConfig()}
	ctx := context.Background()

	first, err := InitDB(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB() })
	second, err := InitDB(ctx, cfg)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Same(t, second, GetDB())
	assert.Error(t, first.PingContext(ctx))
}

func TestInitDBErrors(t *testing.T) {
	ctx := context.Background()
	_, err := InitDB(ctx, nil)
	assert.Error(t, err)

	cfg := &Config{ConnectionConfig: *memoryConfig()}
	cfg.ConnectionConfig.Type = "oracle"
	_, err = InitDB(ctx, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
	assert.Nil(t, GetManager())
}
