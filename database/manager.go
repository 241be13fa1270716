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
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

// SQLiteMemory is the DBName that opens a private in-memory SQLite database.
const SQLiteMemory = ":memory:"

const (
	defaultConnectTimeout = 30 * time.Second
	statusTimeout         = 5 * time.Second
)

// Manager owns a single Bun connection pool.
type Manager interface {
	Connect(ctx context.Context) error
	Close() error
	DB() *bun.DB
	Status(ctx context.Context) Status
	Bootstrap(ctx context.Context, fk *ForeignKeyManager) error
	SetLogger(logger Logger)
}

// Status is a point-in-time view of a connection pool.
type Status struct {
	Healthy      bool          `json:"healthy"`
	Error        string        `json:"error,omitempty"`
	Latency      time.Duration `json:"latency"`
	OpenConns    int           `json:"open_conns"`
	InUse        int           `json:"in_use"`
	Idle         int           `json:"idle"`
	MaxOpenConns int           `json:"max_open_conns"`
}

type driver struct {
	sqlName string
	dsn     func(c *ConnectionConfig) string
	dialect func() schema.Dialect
}

var drivers = map[string]driver{
	"mysql": {
		sqlName: "mysql",
		dsn:     mysqlDSN,
		dialect: func() schema.Dialect { return mysqldialect.New() },
	},
	"postgres": {
		sqlName: "postgres",
		dsn:     postgresDSN,
		dialect: func() schema.Dialect { return pgdialect.New() },
	},
	"sqlite": {
		sqlName: sqliteshim.ShimName,
		dsn:     sqliteDSN,
		dialect: func() schema.Dialect { return sqlitedialect.New() },
	},
}

func mysqlDSN(c *ConnectionConfig) string {
	mc := mysql.NewConfig()
	mc.User = c.Username
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Timeout = c.ConnectTimeout
	mc.ReadTimeout = c.ReadTimeout
	mc.WriteTimeout = c.WriteTimeout
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func postgresDSN(c *ConnectionConfig) string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	query := url.Values{}
	query.Set("sslmode", sslMode)
	if c.ConnectTimeout > 0 {
		query.Set("connect_timeout", strconv.Itoa(int(c.ConnectTimeout.Seconds())))
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.DBName,
		RawQuery: query.Encode(),
	}
	return u.String()
}

func sqliteDSN(c *ConnectionConfig) string {
	if c.DBName == SQLiteMemory || strings.HasPrefix(c.DBName, "file:") {
		return c.DBName
	}
	return c.DBName + ".db"
}

type bunManager struct {
	cfg    *ConnectionConfig
	logger Logger
	mu     sync.RWMutex
	db     *bun.DB
}

// NewManager returns a Manager for cfg. A nil cfg uses
// DefaultConnectionConfig, which still needs a Type before Connect.
func NewManager(cfg *ConnectionConfig) Manager {
	if cfg == nil {
		cfg = DefaultConnectionConfig()
	}
	return &bunManager{cfg: cfg, logger: GetLogger()}
}

// Connect opens the pool and pings it. Calling it on a connected manager is
// a no-op.
func (m *bunManager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db != nil {
		return nil
	}

	db, err := m.open()
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("database connection test failed: %w", err)
	}

	m.db = db
	m.logger.Info("Database connected", "type", m.cfg.Type, "host", m.cfg.Host, "dbname", m.cfg.DBName)
	return nil
}

func (m *bunManager) open() (*bun.DB, error) {
	name, err := m.cfg.Driver()
	if err != nil {
		return nil, err
	}
	if m.cfg.ConnectTimeout <= 0 {
		m.cfg.ConnectTimeout = defaultConnectTimeout
	}
	d := drivers[name]
	sqlDB, err := sql.Open(d.sqlName, d.dsn(m.cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", name, err)
	}
	m.configurePool(sqlDB)

	db := bun.NewDB(sqlDB, d.dialect())
	if m.cfg.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true), bundebug.FromEnv("BUNDEBUG")))
	}
	if m.cfg.SlowQueryTime > 0 {
		db.AddQueryHook(NewSlowQueryHook(m.cfg.SlowQueryTime, m.logger))
	}
	return db, nil
}

func (m *bunManager) configurePool(sqlDB *sql.DB) {
	// Every connection to ":memory:" is a separate database.
	if m.cfg.DBName == SQLiteMemory {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
		return
	}
	if m.cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(m.cfg.MaxIdleConns)
	}
	if m.cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(m.cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(m.cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(m.cfg.ConnMaxIdleTime)
}

func (m *bunManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	if err != nil {
		m.logger.Error("Failed to close database connection", "error", err)
		return err
	}
	m.logger.Info("Database connection closed")
	return nil
}

func (m *bunManager) DB() *bun.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

// Status pings the database and reports the pool counters.
func (m *bunManager) Status(ctx context.Context) Status {
	db := m.DB()
	if db == nil {
		return Status{Error: ErrNotInitialized.Error()}
	}
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	start := time.Now()
	err := db.PingContext(ctx)
	stats := db.Stats()
	status := Status{
		Healthy:      err == nil,
		Latency:      time.Since(start),
		OpenConns:    stats.OpenConnections,
		InUse:        stats.InUse,
		Idle:         stats.Idle,
		MaxOpenConns: stats.MaxOpenConnections,
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}

// Bootstrap creates the registered tables. fk may be nil.
func (m *bunManager) Bootstrap(ctx context.Context, fk *ForeignKeyManager) error {
	db := m.DB()
	if db == nil {
		return ErrNotInitialized
	}
	return NewSchemaBootstrapper(db, fk, m.logger).CreateTables(ctx)
}

func (m *bunManager) SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}
