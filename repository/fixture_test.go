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
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomoncle/querydsl/database"
	"github.com/tomoncle/querydsl/entity"
	"github.com/uptrace/bun"
)

type fixture struct {
	db      *bun.DB
	counter *database.QueryCounter
	members *MemberRepository
	teams   *TeamRepository
	teamA   *entity.Team
	teamB   *entity.Team
}

// newFixture opens an in-memory database holding teamA (member1 10,
// member2 20) and teamB (member3 30, member4 40).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	cfg := database.DefaultConnectionConfig()
	cfg.Type = "sqlite"
	cfg.DBName = database.SQLiteMemory
	manager := database.NewManager(cfg)
	require.NoError(t, manager.Connect(ctx))
	t.Cleanup(func() { _ = manager.Close() })
	require.NoError(t, manager.Bootstrap(ctx, database.NewForeignKeyManager(database.GetLogger())))

	db := manager.DB()
	f := &fixture{
		db:      db,
		members: NewMemberRepository(db),
		teams:   NewTeamRepository(db),
		teamA:   entity.NewTeam("teamA"),
		teamB:   entity.NewTeam("teamB"),
	}
	require.NoError(t, f.teams.Create(ctx, f.teamA, f.teamB))
	require.NotZero(t, f.teamA.ID)
	require.NotZero(t, f.teamB.ID)

	require.NoError(t, f.members.Create(ctx,
		entity.NewMember("member1", 10, f.teamA),
		entity.NewMember("member2", 20, f.teamA),
		entity.NewMember("member3", 30, f.teamB),
		entity.NewMember("member4", 40, f.teamB),
	))

	f.counter = database.NewQueryCounter()
	db.AddQueryHook(f.counter)
	return f
}

func (f *fixture) addMembers(t *testing.T, members ...*entity.Member) {
	t.Helper()
	require.NoError(t, f.members.Create(context.Background(), members...))
	f.counter.Reset()
}

func usernames(members []*entity.Member) []*string {
	out := make([]*string, 0, len(members))
	for _, m := range members {
		out = append(out, m.Username)
	}
	return out
}

func names(members []*entity.Member) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.Name())
	}
	return out
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
