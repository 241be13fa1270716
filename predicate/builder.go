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

	"github.com/tomoncle/querydsl/types"
	"github.com/uptrace/bun"
)

// Predicate is a single WHERE fragment. NeedsGroup is set when Query
// references the joined team table.
type Predicate struct {
	Query      string
	Args       []interface{}
	NeedsGroup bool
}

func newPredicate(query string, args ...interface{}) *Predicate {
	return &Predicate{Query: query, Args: args}
}

// Column names as they appear in a members query with the Team relation joined.
const (
	ColumnUsername = "m.username"
	ColumnAge      = "m.age"
	ColumnTeamName = "team.name"
)

type rule struct {
	present func(types.SearchCondition) bool
	build   func(types.SearchCondition) *Predicate
}

var rules = []rule{
	{
		present: func(c types.SearchCondition) bool { return hasText(c.Username()) },
		build: func(c types.SearchCondition) *Predicate {
			return newPredicate("? = ?", bun.Ident(ColumnUsername), *c.Username())
		},
	},
	{
		present: func(c types.SearchCondition) bool { return hasText(c.TeamName()) },
		build: func(c types.SearchCondition) *Predicate {
			p := newPredicate("? = ?", bun.Ident(ColumnTeamName), *c.TeamName())
			p.NeedsGroup = true
			return p
		},
	},
	{
		present: func(c types.SearchCondition) bool { return c.AgeGoe() != nil },
		build: func(c types.SearchCondition) *Predicate {
			return newPredicate("? >= ?", bun.Ident(ColumnAge), *c.AgeGoe())
		},
	},
	{
		present: func(c types.SearchCondition) bool { return c.AgeLoe() != nil },
		build: func(c types.SearchCondition) *Predicate {
			return newPredicate("? <= ?", bun.Ident(ColumnAge), *c.AgeLoe())
		},
	},
}

func evaluate(r rule, cond types.SearchCondition) *Predicate {
	if !r.present(cond) {
		return nil
	}
	return r.build(cond)
}

// UsernamePredicate matches the username exactly. Nil when the username is
// absent or blank.
func UsernamePredicate(cond types.SearchCondition) *Predicate { return evaluate(rules[0], cond) }

// GroupNamePredicate matches the team name exactly and requires the team join.
func GroupNamePredicate(cond types.SearchCondition) *Predicate { return evaluate(rules[1], cond) }

// AgeMinPredicate is the inclusive lower age bound.
func AgeMinPredicate(cond types.SearchCondition) *Predicate { return evaluate(rules[2], cond) }

// AgeMaxPredicate is the inclusive upper age bound.
func AgeMaxPredicate(cond types.SearchCondition) *Predicate { return evaluate(rules[3], cond) }

// Build returns the predicates present in cond, in a fixed order. A nil
// condition yields none.
func Build(cond *types.SearchCondition) []*Predicate {
	if cond == nil {
		return nil
	}
	preds := make([]*Predicate, 0, len(rules))
	for _, r := range rules {
		if p := evaluate(r, *cond); p != nil {
			preds = append(preds, p)
		}
	}
	return preds
}

// Apply adds every predicate to q. Bun joins successive Where calls with AND.
func Apply(q *bun.SelectQuery, preds []*Predicate) *bun.SelectQuery {
	for _, p := range preds {
		if p == nil {
			continue
		}
		q = q.Where(p.Query, p.Args...)
	}
	return q
}

// NeedsGroup reports whether any predicate references the team table.
func NeedsGroup(preds []*Predicate) bool {
	for _, p := range preds {
		if p != nil && p.NeedsGroup {
			return true
		}
	}
	return false
}

func hasText(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
