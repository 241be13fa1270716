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

package types

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidArgument marks a request the caller must fix. It is never retried.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgument wraps ErrInvalidArgument with a formatted detail message.
func InvalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Order is a single ordering key, e.g. "age DESC" or "username ASC NULLS LAST".
type Order struct {
	Property  string
	Direction Direction
	Nulls     NullHandling
}

// OrderAsc orders by property ascending.
func OrderAsc(property string) Order { return Order{Property: property, Direction: Asc} }

// OrderDesc orders by property descending.
func OrderDesc(property string) Order { return Order{Property: property, Direction: Desc} }

// NullsLast returns a copy placing NULLs after all non-null values.
func (o Order) NullsLast() Order {
	o.Nulls = NullsLast
	return o
}

// NullsFirst returns a copy placing NULLs before all non-null values.
func (o Order) NullsFirst() Order {
	o.Nulls = NullsFirst
	return o
}

func (o Order) String() string {
	s := o.Property + " " + o.Direction.String()
	if o.Nulls != NullsNative {
		s += " " + o.Nulls.String()
	}
	return s
}

// ParseOrder parses "property [ASC|DESC] [NULLS FIRST|NULLS LAST]".
func ParseOrder(s string) (Order, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Order{}, InvalidArgument("empty order expression")
	}
	o := Order{Property: fields[0]}
	rest := fields[1:]
	if len(rest) > 0 && !strings.EqualFold(rest[0], "NULLS") {
		d, ok := ParseDirection(rest[0])
		if !ok {
			return Order{}, InvalidArgument("unknown sort direction %q in %q", rest[0], s)
		}
		o.Direction = d
		rest = rest[1:]
	}
	switch {
	case len(rest) == 0:
	case len(rest) == 2 && strings.EqualFold(rest[0], "NULLS") && strings.EqualFold(rest[1], "FIRST"):
		o.Nulls = NullsFirst
	case len(rest) == 2 && strings.EqualFold(rest[0], "NULLS") && strings.EqualFold(rest[1], "LAST"):
		o.Nulls = NullsLast
	default:
		return Order{}, InvalidArgument("malformed order expression %q", s)
	}
	return o, nil
}

// ParseOrders parses each expression with ParseOrder.
func ParseOrders(exprs ...string) ([]Order, error) {
	orders := make([]Order, 0, len(exprs))
	for _, e := range exprs {
		o, err := ParseOrder(e)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// PageRequest describes a zero-based page and its ordering.
type PageRequest struct {
	PageIndex int
	PageSize  int
	Orders    []Order
}

// NewPageRequest constructs a PageRequest. It does not validate; executors do.
func NewPageRequest(pageIndex int, pageSize int, orders ...Order) *PageRequest {
	return &PageRequest{PageIndex: pageIndex, PageSize: pageSize, Orders: orders}
}

// Validate rejects negative page indexes, non-positive page sizes and pages
// whose offset does not fit in an int.
func (p *PageRequest) Validate() error {
	if p == nil {
		return InvalidArgument("page request is required")
	}
	if p.PageSize <= 0 {
		return InvalidArgument("page size must be positive, got %d", p.PageSize)
	}
	if p.PageIndex < 0 {
		return InvalidArgument("page index must not be negative, got %d", p.PageIndex)
	}
	if p.PageIndex > math.MaxInt/p.PageSize {
		return InvalidArgument("page %d of size %d is out of range", p.PageIndex, p.PageSize)
	}
	return nil
}

func (p *PageRequest) Offset() int {
	return p.PageIndex * p.PageSize
}

func (p *PageRequest) IsSorted() bool {
	return len(p.Orders) > 0
}

// Next returns the request for the following page with the same ordering.
func (p *PageRequest) Next() *PageRequest {
	return &PageRequest{PageIndex: p.PageIndex + 1, PageSize: p.PageSize, Orders: p.Orders}
}

// UnknownTotal is the TotalCount of a page whose count was not computed.
const UnknownTotal = -1

// Page holds one page of results along with pagination metadata.
type Page[T any] struct {
	Content    []*T `json:"content"`
	TotalCount int  `json:"total_count"`
	PageIndex  int  `json:"page_index"`
	PageSize   int  `json:"page_size"`
}

// NewPage builds a page for req. A nil content slice becomes empty.
func NewPage[T any](req *PageRequest, content []*T, total int) *Page[T] {
	if content == nil {
		content = make([]*T, 0)
	}
	return &Page[T]{
		Content:    content,
		TotalCount: total,
		PageIndex:  req.PageIndex,
		PageSize:   req.PageSize,
	}
}

// NumberOfElements is the number of items on this page.
func (p *Page[T]) NumberOfElements() int { return len(p.Content) }

// TotalPages returns UnknownTotal when the total count is unknown.
func (p *Page[T]) TotalPages() int {
	if p.TotalCount < 0 {
		return UnknownTotal
	}
	if p.PageSize <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

func (p *Page[T]) IsFirst() bool { return p.PageIndex == 0 }

func (p *Page[T]) HasNext() bool {
	if p.TotalCount < 0 {
		return len(p.Content) == p.PageSize
	}
	return p.PageIndex+1 < p.TotalPages()
}

func (p *Page[T]) IsLast() bool { return !p.HasNext() }
