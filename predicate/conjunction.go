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

package predicate

import (
	"strings"

	"github.com/uptrace/bun"
)

// Conjunction accumulates predicates that are ANDed together.
type Conjunction struct {
	preds []*Predicate
}

func NewConjunction() *Conjunction {
	return &Conjunction{}
}

// And appends p. Nil predicates are ignored so optional filters can be added
// unconditionally.
func (c *Conjunction) And(p *Predicate) *Conjunction {
	if p != nil {
		c.preds = append(c.preds, p)
	}
	return c
}

func (c *Conjunction) Predicates() []*Predicate {
	out := make([]*Predicate, len(c.preds))
	copy(out, c.preds)
	return out
}

func (c *Conjunction) Len() int { return len(c.preds) }

func (c *Conjunction) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	return Apply(q, c.preds)
}

// Eq builds "column = value", or nil when value is a nil pointer.
func Eq[V any](column string, value *V) *Predicate {
	if value == nil {
		return nil
	}
	p := newPredicate("? = ?", bun.Ident(column), *value)
	p.NeedsGroup = strings.HasPrefix(column, "team.")
	return p
}
