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
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/tomoncle/querydsl/entity"
	"github.com/tomoncle/querydsl/predicate"
	"github.com/tomoncle/querydsl/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// ErrMemberNotFound is returned by single-member lookups that match no row.
var ErrMemberNotFound = errors.New("member not found")

// MemberSorter is the sort allow-list for member searches. "team.name" is only
// valid on queries that join the team.
var MemberSorter = Sorter{
	Columns: map[string]string{
		"id":        "m.id",
		"username":  "m.username",
		"age":       "m.age",
		"team.name": "team.name",
		"teamName":  "team.name",
	},
	Default: []types.Order{types.OrderAsc("id")},
}

// MemberRepository runs member searches and the reporting queries built on
// top of them.
type MemberRepository struct {
	Repository[entity.Member]
	db bun.IDB
}

func NewMemberRepository(db bun.IDB) *MemberRepository {
	return &MemberRepository{Repository: NewRepository[entity.Member](db), db: db}
}

// WithTx returns a copy bound to tx.
func (r *MemberRepository) WithTx(tx bun.Tx) *MemberRepository {
	return NewMemberRepository(tx)
}

func joinTeam(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Join("LEFT JOIN teams AS team ON team.id = m.team_id")
}

// Search pages the members matching cond together with their team. The total
// is counted with the content query when it cannot be inferred.
func (r *MemberRepository) Search(ctx context.Context, cond *types.SearchCondition, req *types.PageRequest) (*types.Page[entity.Member], error) {
	preds := predicate.Build(cond)
	return ExecutePage(ctx, r.db, req, PageQuery[entity.Member]{
		Content: func(q *bun.SelectQuery) *bun.SelectQuery {
			return predicate.Apply(q.Relation("Team"), preds)
		},
		Sort: MemberSorter.Apply,
	})
}

// SearchSplit behaves like Search but counts with a separate query that joins
// the team only when a filter needs it.
func (r *MemberRepository) SearchSplit(ctx context.Context, cond *types.SearchCondition, req *types.PageRequest) (*types.Page[entity.Member], error) {
	preds := predicate.Build(cond)
	countPreds := predicate.Build(cond)
	return ExecutePage(ctx, r.db, req, PageQuery[entity.Member]{
		Content: func(q *bun.SelectQuery) *bun.SelectQuery {
			return predicate.Apply(q.Relation("Team"), preds)
		},
		Count: func(q *bun.SelectQuery) *bun.SelectQuery {
			if predicate.NeedsGroup(countPreds) {
				q = joinTeam(q)
			}
			return predicate.Apply(q, countPreds)
		},
		Sort: MemberSorter.Apply,
	})
}

// SearchByEquality returns members equal on every non-nil argument.
func (r *MemberRepository) SearchByEquality(ctx context.Context, username *string, age *int) ([]*entity.Member, error) {
	where := predicate.NewConjunction().
		And(predicate.Eq(predicate.ColumnUsername, username)).
		And(predicate.Eq(predicate.ColumnAge, age))
	var members []*entity.Member
	err := where.Apply(r.db.NewSelect().Model(&members)).OrderExpr("m.id ASC").Scan(ctx)
	return members, err
}

// FindByUsername loads a member without its team.
func (r *MemberRepository) FindByUsername(ctx context.Context, username string) (*entity.Member, error) {
	return r.findByUsername(ctx, username, false)
}

// FindByUsernameFetchTeam loads a member and its team in one query.
func (r *MemberRepository) FindByUsernameFetchTeam(ctx context.Context, username string) (*entity.Member, error) {
	return r.findByUsername(ctx, username, true)
}

func (r *MemberRepository) findByUsername(ctx context.Context, username string, fetchTeam bool) (*entity.Member, error) {
	member := new(entity.Member)
	q := r.db.NewSelect().Model(member)
	if fetchTeam {
		q = q.Relation("Team")
	}
	err := q.Where("m.username = ?", username).OrderExpr("m.id ASC").Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q: %w", ErrMemberNotFound, username, err)
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}

// AgeStatistics aggregates the age of all members.
func (r *MemberRepository) AgeStatistics(ctx context.Context) (*entity.AgeStats, error) {
	stats := new(entity.AgeStats)
	err := r.db.NewSelect().
		Model((*entity.Member)(nil)).
		ColumnExpr("count(*) AS total_count").
		ColumnExpr("coalesce(sum(m.age), 0) AS age_sum").
		ColumnExpr("coalesce(avg(m.age), 0) AS age_avg").
		ColumnExpr("coalesce(max(m.age), 0) AS age_max").
		ColumnExpr("coalesce(min(m.age), 0) AS age_min").
		Scan(ctx, stats)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// AverageAgeByTeam groups members by team name. Members without a team are
// not included.
func (r *MemberRepository) AverageAgeByTeam(ctx context.Context) ([]entity.TeamAverageAge, error) {
	var rows []entity.TeamAverageAge
	err := r.db.NewSelect().
		Model((*entity.Member)(nil)).
		ColumnExpr("t.name AS team_name").
		ColumnExpr("avg(m.age) AS avg_age").
		Join("JOIN teams AS t ON t.id = m.team_id").
		GroupExpr("t.name").
		OrderExpr("t.name ASC").
		Scan(ctx, &rows)
	return rows, err
}

// FindOldest returns every member whose age equals the maximum age.
func (r *MemberRepository) FindOldest(ctx context.Context) ([]*entity.Member, error) {
	sub := r.db.NewSelect().TableExpr("members AS ms").ColumnExpr("max(ms.age)")
	return r.selectMembers(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("m.age = (?)", sub)
	})
}

// FindAgeAtLeastAverage returns members at or above the average age.
func (r *MemberRepository) FindAgeAtLeastAverage(ctx context.Context) ([]*entity.Member, error) {
	sub := r.db.NewSelect().TableExpr("members AS ms").ColumnExpr("avg(ms.age)")
	return r.selectMembers(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("m.age >= (?)", sub)
	})
}

// FindAgeInOlderThan returns members whose age is one of the ages above age.
func (r *MemberRepository) FindAgeInOlderThan(ctx context.Context, age int) ([]*entity.Member, error) {
	sub := r.db.NewSelect().TableExpr("members AS ms").ColumnExpr("ms.age").Where("ms.age > ?", age)
	return r.selectMembers(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("m.age IN (?)", sub)
	})
}

// FindNamedAfterTeam returns members whose username equals some team name.
func (r *MemberRepository) FindNamedAfterTeam(ctx context.Context) ([]*entity.Member, error) {
	return r.selectMembers(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.TableExpr("teams AS t").Where("m.username = t.name")
	})
}

func (r *MemberRepository) selectMembers(ctx context.Context, fn QueryFunc) ([]*entity.Member, error) {
	var members []*entity.Member
	err := fn(r.db.NewSelect().Model(&members)).OrderExpr("m.id ASC").Scan(ctx)
	return members, err
}

const ageBandExpr = "CASE WHEN m.age BETWEEN 0 AND 20 THEN '0~20' WHEN m.age BETWEEN 21 AND 30 THEN '21~30' ELSE 'other' END"

// AgeBands labels every member by age band, ordered by id.
func (r *MemberRepository) AgeBands(ctx context.Context) ([]string, error) {
	var bands []string
	err := r.db.NewSelect().
		Model((*entity.Member)(nil)).
		ColumnExpr(ageBandExpr).
		OrderExpr("m.id ASC").
		Scan(ctx, &bands)
	return bands, err
}

// AgeLabels maps each member's exact age through labels, falling back to
// otherwise, ordered by id.
func (r *MemberRepository) AgeLabels(ctx context.Context, labels map[int]string, otherwise string) ([]string, error) {
	if len(labels) == 0 {
		return nil, types.InvalidArgument("at least one age label is required")
	}
	var expr strings.Builder
	args := make([]interface{}, 0, 2*len(labels)+1)
	expr.WriteString("CASE m.age")
	for _, age := range slices.Sorted(maps.Keys(labels)) {
		expr.WriteString(" WHEN ? THEN ?")
		args = append(args, age, labels[age])
	}
	expr.WriteString(" ELSE ? END")
	args = append(args, otherwise)

	var values []string
	err := r.db.NewSelect().
		Model((*entity.Member)(nil)).
		ColumnExpr(expr.String(), args...).
		OrderExpr("m.id ASC").
		Scan(ctx, &values)
	return values, err
}

// ListLabeled returns every username next to the constant label.
func (r *MemberRepository) ListLabeled(ctx context.Context, label string) ([]entity.LabeledUsername, error) {
	var rows []entity.LabeledUsername
	err := r.db.NewSelect().
		Model((*entity.Member)(nil)).
		ColumnExpr("m.username AS username").
		ColumnExpr("? AS label", label).
		OrderExpr("m.id ASC").
		Scan(ctx, &rows)
	return rows, err
}

func (r *MemberRepository) ListMemberDtos(ctx context.Context) ([]entity.MemberDto, error) {
	var dtos []entity.MemberDto
	err := r.db.NewSelect().
		Model((*entity.Member)(nil)).
		ColumnExpr("m.username AS username").
		ColumnExpr("m.age AS age").
		OrderExpr("m.id ASC").
		Scan(ctx, &dtos)
	return dtos, err
}

// ListUserDtos maps username to name and reports the maximum member age as
// every row's age.
func (r *MemberRepository) ListUserDtos(ctx context.Context) ([]entity.UserDto, error) {
	var dtos []entity.UserDto
	sub := r.db.NewSelect().TableExpr("members AS ms").ColumnExpr("max(ms.age)")
	err := r.db.NewSelect().
		Model((*entity.Member)(nil)).
		ColumnExpr("m.username AS name").
		ColumnExpr("(?) AS age", sub).
		OrderExpr("m.id ASC").
		Scan(ctx, &dtos)
	return dtos, err
}

// ListWithTeamJoinedOn returns every member, with team columns filled only
// when the member's team is named teamName.
func (r *MemberRepository) ListWithTeamJoinedOn(ctx context.Context, teamName string) ([]entity.MemberTeamDto, error) {
	var rows []entity.MemberTeamDto
	err := r.db.NewSelect().
		Model((*entity.Member)(nil)).
		ColumnExpr("m.id AS member_id").
		ColumnExpr("m.username AS username").
		ColumnExpr("m.age AS age").
		ColumnExpr("t.id AS team_id").
		ColumnExpr("t.name AS team_name").
		Join("LEFT JOIN teams AS t").
		JoinOn("t.id = m.team_id").
		JoinOn("t.name = ?", teamName).
		OrderExpr("m.id ASC").
		Scan(ctx, &rows)
	return rows, err
}

// ListJoinedOnUsername outer joins teams on the member's username rather than
// the team relation. Team columns are empty for members not named after a
// team.
func (r *MemberRepository) ListJoinedOnUsername(ctx context.Context) ([]entity.MemberTeamDto, error) {
	var rows []entity.MemberTeamDto
	err := r.db.NewSelect().
		Model((*entity.Member)(nil)).
		ColumnExpr("m.id AS member_id").
		ColumnExpr("m.username AS username").
		ColumnExpr("m.age AS age").
		ColumnExpr("t.id AS team_id").
		ColumnExpr("t.name AS team_name").
		Join("LEFT JOIN teams AS t").
		JoinOn("m.username = t.name").
		OrderExpr("m.id ASC").
		Scan(ctx, &rows)
	return rows, err
}

// UsernameWithAge renders "username_age" for members named username.
func (r *MemberRepository) UsernameWithAge(ctx context.Context, username string) ([]string, error) {
	expr := "m.username || '_' || m.age"
	if r.db.Dialect().Name() == dialect.MySQL {
		expr = "CONCAT(m.username, '_', m.age)"
	}
	var values []string
	err := r.db.NewSelect().
		Model((*entity.Member)(nil)).
		ColumnExpr(expr).
		Where("m.username = ?", username).
		OrderExpr("m.id ASC").
		Scan(ctx, &values)
	return values, err
}

// TeamRepository is the generic repository for teams.
type TeamRepository struct {
	Repository[entity.Team]
}

func NewTeamRepository(db bun.IDB) *TeamRepository {
	return &TeamRepository{Repository: NewRepository[entity.Team](db)}
}

// TeamSorter is the sort allow-list for team pages.
var TeamSorter = Sorter{
	Columns: map[string]string{"id": "t.id", "name": "t.name"},
	Default: []types.Order{types.OrderAsc("id")},
}

// FindByName loads a team with its members ordered by id.
func (r *TeamRepository) FindByName(ctx context.Context, name string) (*entity.Team, error) {
	team := new(entity.Team)
	err := r.NewSelect().
		Model(team).
		Relation("Members", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("m.id ASC")
		}).
		Where("t.name = ?", name).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return team, nil
}
