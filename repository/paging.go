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

	"github.com/tomoncle/querydsl/database"
	"github.com/tomoncle/querydsl/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// QueryFunc refines a select query whose model is already set.
type QueryFunc func(q *bun.SelectQuery) *bun.SelectQuery

// SortFunc turns a request's orders into ORDER BY clauses.
type SortFunc func(q *bun.SelectQuery, orders []types.Order) (*bun.SelectQuery, error)

// CountFunc runs a count query.
type CountFunc func(ctx context.Context) (int, error)

// PageQuery describes how to fetch one page of T.
//
// Content adds joins and filters to the content query. Ordering, offset and
// limit are added by ExecutePage. Without Sort the page is ordered by id and
// a request carrying orders is rejected. When Count is nil the total is counted with
// the content query itself; otherwise Count builds a separate count query.
type PageQuery[T any] struct {
	Content QueryFunc
	Count   QueryFunc
	Sort    SortFunc
}

// ExecutePage fetches the page req describes. The count query runs only when
// the total cannot be inferred from the content size.
func ExecutePage[T any](ctx context.Context, db bun.IDB, req *types.PageRequest, pq PageQuery[T]) (*types.Page[T], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if pq.Content == nil {
		return nil, types.InvalidArgument("content query is required")
	}

	var content []*T
	query := pq.Content(db.NewSelect().Model(&content))
	switch {
	case pq.Sort != nil:
		var err error
		if query, err = pq.Sort(query, req.Orders); err != nil {
			return nil, err
		}
	case req.IsSorted():
		return nil, types.InvalidArgument("orders %v given without a sorter", req.Orders)
	default:
		query = query.OrderExpr("?TableAlias.id ASC")
	}
	if err := query.Offset(req.Offset()).Limit(req.PageSize).Scan(ctx); err != nil {
		return nil, err
	}

	count := func(ctx context.Context) (int, error) { return query.Count(ctx) }
	if pq.Count != nil {
		count = func(ctx context.Context) (int, error) {
			return pq.Count(db.NewSelect().Model((*T)(nil))).Count(ctx)
		}
	}
	total, err := InferTotal(ctx, req, len(content), count)
	if err != nil {
		return nil, err
	}
	return types.NewPage(req, content, total), nil
}

// InferTotal returns the total number of matching rows given that the page
// req returned n rows. count runs only when the total is not implied by n:
// a short first page holds everything, and a short non-empty later page ends
// the result set.
func InferTotal(ctx context.Context, req *types.PageRequest, n int, count CountFunc) (int, error) {
	offset := req.Offset()
	if n < req.PageSize {
		if offset == 0 {
			database.GetLogger().Debug("count query skipped", "page", req.PageIndex, "rows", n)
			return n, nil
		}
		if n > 0 {
			database.GetLogger().Debug("count query skipped", "page", req.PageIndex, "rows", n)
			return offset + n, nil
		}
	}
	total, err := count(ctx)
	if err != nil {
		return 0, err
	}
	database.GetLogger().Debug("count query executed", "page", req.PageIndex, "rows", n, "total", total)
	return total, nil
}

// Sorter resolves order properties through an allow-list of columns.
// Default is used when a request carries no orders.
type Sorter struct {
	Columns map[string]string
	Default []types.Order
}

// Apply adds ORDER BY clauses for orders, or for s.Default when orders is
// empty. Unknown properties are rejected.
func (s Sorter) Apply(q *bun.SelectQuery, orders []types.Order) (*bun.SelectQuery, error) {
	if len(orders) == 0 {
		orders = s.Default
	}
	name := q.DB().Dialect().Name()
	for _, o := range orders {
		column, ok := s.Columns[o.Property]
		if !ok {
			return nil, types.InvalidArgument("unknown sort property %q", o.Property)
		}
		if !o.Direction.IsValid() || !o.Nulls.IsValid() {
			return nil, types.InvalidArgument("invalid order %v", o)
		}
		q = appendOrder(q, name, column, o)
	}
	return q, nil
}

// appendOrder renders a single key. MySQL has no NULLS FIRST/LAST, so the
// null placement becomes a leading boolean key.
func appendOrder(q *bun.SelectQuery, name dialect.Name, column string, o types.Order) *bun.SelectQuery {
	dir := o.Direction.Name()
	if o.Nulls == types.NullsNative {
		return q.OrderExpr("? "+dir, bun.Ident(column))
	}
	if name == dialect.MySQL {
		nullKey := "? IS NULL"
		if o.Nulls == types.NullsFirst {
			nullKey = "? IS NOT NULL"
		}
		return q.OrderExpr(nullKey, bun.Ident(column)).OrderExpr("? "+dir, bun.Ident(column))
	}
	return q.OrderExpr("? "+dir+" "+o.Nulls.Name(), bun.Ident(column))
}
