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

package repository

import (
	"context"

	"github.com/tomoncle/querydsl/predicate"
	"github.com/tomoncle/querydsl/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines basic CRUD operations for a generic entity type.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any) (*T, error)

	GetAll(ctx context.Context) ([]*T, error)

	// List returns the entities matching every predicate, ordered by id.
	List(ctx context.Context, preds ...*predicate.Predicate) ([]*T, error)

	// Count returns the number of entities matching every predicate.
	Count(ctx context.Context, preds ...*predicate.Predicate) (int, error)

	Create(ctx context.Context, entity ...*T) error

	Update(ctx context.Context, entity *T) error

	Delete(ctx context.Context, id any) error
}

// PageQueryRepository defines pagination over a single table.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, req *types.PageRequest, sorter Sorter, preds ...*predicate.Predicate) (*types.Page[T], error)
}

// Repository combines CRUD and pagination and exposes Bun query builders for
// advanced use cases. WithTx returns a repository bound to tx.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	WithTx(tx bun.Tx) Repository[T]
	DB() bun.IDB
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
