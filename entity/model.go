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

package entity

import (
	"fmt"

	"github.com/tomoncle/querydsl/database"
	"github.com/uptrace/bun"
)

// Team owns zero or more members.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID      int64     `bun:"id,pk,autoincrement" json:"id"`
	Name    string    `bun:"name,notnull" json:"name"`
	Members []*Member `bun:"rel:has-many,join:id=team_id" json:"members,omitempty"`
}

func NewTeam(name string) *Team {
	return &Team{Name: name}
}

func (t *Team) String() string {
	return fmt.Sprintf("Team(id=%d, name=%s)", t.ID, t.Name)
}

// Member belongs to at most one team. Username is nullable.
type Member struct {
	bun.BaseModel `bun:"table:members,alias:m"`

	ID       int64   `bun:"id,pk,autoincrement" json:"id"`
	Username *string `bun:"username" json:"username"`
	Age      int     `bun:"age,notnull" json:"age"`
	TeamID   *int64  `bun:"team_id" json:"team_id,omitempty"`
	Team     *Team   `bun:"rel:belongs-to,join:team_id=id" json:"team,omitempty"`
}

// NewMember creates a member and assigns it to team when team is not nil.
// The team must already have an ID.
func NewMember(username string, age int, team *Team) *Member {
	m := &Member{Username: &username, Age: age}
	m.ChangeTeam(team)
	return m
}

// NewAnonymousMember creates a member without a username or team.
func NewAnonymousMember(age int) *Member {
	return &Member{Age: age}
}

// ChangeTeam moves the member to team, keeping both sides of the relation
// in sync.
func (m *Member) ChangeTeam(team *Team) {
	m.Team = team
	if team == nil {
		m.TeamID = nil
		return
	}
	id := team.ID
	m.TeamID = &id
	team.Members = append(team.Members, m)
}

// Name returns the username or "" when it is NULL.
func (m *Member) Name() string {
	if m.Username == nil {
		return ""
	}
	return *m.Username
}

func (m *Member) String() string {
	name := "<nil>"
	if m.Username != nil {
		name = *m.Username
	}
	return fmt.Sprintf("Member(id=%d, username=%s, age=%d)", m.ID, name, m.Age)
}

func init() {
	database.RegisterTable((*Team)(nil), 10)
	database.RegisterTable((*Member)(nil), 20)
	database.RegisterForeignKey(database.ForeignKeyConstraint{
		Table:           "members",
		Column:          "team_id",
		ReferenceTable:  "teams",
		ReferenceColumn: "id",
		OnDelete:        "SET NULL",
	})
}
