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
	"reflect"

	"github.com/uptrace/bun"
)

// SchemaBootstrapper creates the tables of registered models. It is not a
// migration tool: existing tables are left untouched.
type SchemaBootstrapper struct {
	db     *bun.DB
	fk     *ForeignKeyManager
	logger Logger
}

// NewSchemaBootstrapper returns a bootstrapper. fk may be nil to create
// tables without foreign key constraints.
func NewSchemaBootstrapper(db *bun.DB, fk *ForeignKeyManager, logger Logger) *SchemaBootstrapper {
	if logger == nil {
		logger = GetLogger()
	}
	return &SchemaBootstrapper{db: db, fk: fk, logger: logger}
}

// CreateTables creates every registered model table in priority order,
// declaring foreign keys inline so the same path works on SQLite.
func (b *SchemaBootstrapper) CreateTables(ctx context.Context) error {
	if b.db == nil {
		return ErrNotInitialized
	}
	if b.fk != nil {
		if err := b.fk.Validate(); err != nil {
			return fmt.Errorf("foreign key constraint validation failed: %w", err)
		}
	}
	for _, model := range RegisteredTables() {
		table := b.tableName(model)
		q := b.db.NewCreateTable().Model(model).IfNotExists()
		if b.fk != nil {
			q = b.fk.ApplyTo(q, table)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
		b.logger.Debug("Table ready", "table", table)
	}
	b.logger.Info("Schema bootstrap completed!")
	return nil
}

// DropTables drops every registered model table in reverse priority order.
func (b *SchemaBootstrapper) DropTables(ctx context.Context) error {
	models := RegisteredTables()
	for i := len(models) - 1; i >= 0; i-- {
		if _, err := b.db.NewDropTable().Model(models[i]).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", b.tableName(models[i]), err)
		}
	}
	return nil
}

func (b *SchemaBootstrapper) tableName(model interface{}) string {
	typ := reflect.TypeOf(model)
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return b.db.Table(typ).Name
}
