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
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type testSquad struct {
	bun.BaseModel `bun:"table:test_squads,alias:sq"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull,unique"`
}

type testPlayer struct {
	bun.BaseModel `bun:"table:test_players,alias:pl"`

	ID      int64  `bun:"id,pk,autoincrement"`
	Name    string `bun:"name,notnull"`
	SquadID *int64 `bun:"squad_id"`
}

func init() {
	RegisterTable((*testPlayer)(nil), 20)
	RegisterTable((*testSquad)(nil), 10)
	RegisterForeignKey(ForeignKeyConstraint{
		Table:           "test_players",
		Column:          "squad_id",
		ReferenceTable:  "test_squads",
		ReferenceColumn: "id",
		OnDelete:        "cascade",
	})
}

func memoryConfig() *ConnectionConfig {
	cfg := DefaultConnectionConfig()
	cfg.Type = "sqlite"
	cfg.DBName = SQLiteMemory
	return cfg
}

// newMemoryManager connects a private in-memory SQLite database and creates
// the registered tables.
func newMemoryManager(t *testing.T) Manager {
	t.Helper()
	manager := NewManager(memoryConfig())
	require.NoError(t, manager.Connect(context.Background()))
	t.Cleanup(func() { _ = manager.Close() })
	require.NoError(t, manager.Bootstrap(context.Background(), NewForeignKeyManager(GetLogger())))
	return manager
}

type logEntry struct {
	level  string
	msg    string
	fields []interface{}
}

// recordingLogger keeps every entry in memory.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level, msg string, fields []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Debug(msg string, fields ...interface{}) { l.record("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields ...interface{})  { l.record("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields ...interface{})  { l.record("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields ...interface{}) { l.record("error", msg, fields) }

func (l *recordingLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if e.level == level {
			out = append(out, e.msg)
		}
	}
	return out
}
