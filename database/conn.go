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
	"fmt"
	"os"
	"sync"

	"github.com/uptrace/bun"
)

var (
	globalMu      sync.RWMutex
	globalManager Manager
	globalConfig  *Config
)

// GetManager returns the global manager, or nil before InitDB.
func GetManager() Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalManager
}

// GetDB returns the global Bun database instance, or nil before InitDB.
func GetDB() *bun.DB {
	if m := GetManager(); m != nil {
		return m.DB()
	}
	return nil
}

// InitDB connects the global database, creates the registered tables and
// loads fixtures according to cfg. A previous global connection is closed.
func InitDB(ctx context.Context, cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	manager := NewManager(&cfg.ConnectionConfig)
	if err := manager.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.BootstrapConfig.EnableOnStartup {
		var fk *ForeignKeyManager
		if cfg.BootstrapConfig.EnableForeignKey {
			fk = NewForeignKeyManagerFromFile(GetLogger(), cfg.BootstrapConfig.ForeignKeyFile)
		}
		if err := manager.Bootstrap(ctx, fk); err != nil {
			_ = manager.Close()
			return nil, fmt.Errorf("failed to bootstrap tables: %w", err)
		}
	}
	db := manager.DB()
	db.RegisterModel(RegisteredTables()...)

	globalMu.Lock()
	previous := globalManager
	globalManager, globalConfig = manager, cfg
	globalMu.Unlock()
	if previous != nil {
		_ = previous.Close()
	}

	if cfg.DataInitConfig.AutoInitOnStartup {
		if err := InitData(ctx); err != nil {
			return nil, err
		}
	}
	GetLogger().Info("Database initialization completed", "type", cfg.ConnectionConfig.Type)
	return db, nil
}

// CloseDB closes the global database connection.
func CloseDB() error {
	globalMu.Lock()
	manager := globalManager
	globalManager, globalConfig = nil, nil
	globalMu.Unlock()
	if manager == nil {
		return nil
	}
	return manager.Close()
}

// GetStatus reports the health of the global database.
func GetStatus(ctx context.Context) Status {
	if m := GetManager(); m != nil {
		return m.Status(ctx)
	}
	return Status{Error: ErrNotInitialized.Error()}
}

// InitData loads the SQL fixtures configured for the global database.
func InitData(ctx context.Context) error {
	globalMu.RLock()
	manager, cfg := globalManager, globalConfig
	globalMu.RUnlock()
	if manager == nil || cfg == nil {
		return ErrNotInitialized
	}

	env := cfg.DataInitConfig.Environment
	if env == "" {
		env = defaultEnvironment
	}
	root := cfg.DataInitConfig.Filepath
	if root == "" {
		root = defaultFixturePath
	}
	return NewFixtureLoader(manager.DB(), os.DirFS(root), env).Load(ctx)
}
