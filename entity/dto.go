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

// MemberDto is a (username, age) projection.
type MemberDto struct {
	Username *string `bun:"username" json:"username"`
	Age      int     `bun:"age" json:"age"`
}

// UserDto is a projection whose field names differ from the columns.
type UserDto struct {
	Name *string `bun:"name" json:"name"`
	Age  int     `bun:"age" json:"age"`
}

// MemberTeamDto is a flattened member row with its (optional) team.
type MemberTeamDto struct {
	MemberID int64   `bun:"member_id" json:"member_id"`
	Username *string `bun:"username" json:"username"`
	Age      int     `bun:"age" json:"age"`
	TeamID   *int64  `bun:"team_id" json:"team_id"`
	TeamName *string `bun:"team_name" json:"team_name"`
}

// AgeStats aggregates the age column over all members.
type AgeStats struct {
	Count int64   `bun:"total_count" json:"count"`
	Sum   int64   `bun:"age_sum" json:"sum"`
	Avg   float64 `bun:"age_avg" json:"avg"`
	Max   int     `bun:"age_max" json:"max"`
	Min   int     `bun:"age_min" json:"min"`
}

// TeamAverageAge is the average member age of one team.
type TeamAverageAge struct {
	TeamName string  `bun:"team_name" json:"team_name"`
	AvgAge   float64 `bun:"avg_age" json:"avg_age"`
}

// LabeledUsername pairs a username with a caller-supplied constant.
type LabeledUsername struct {
	Username *string `bun:"username" json:"username"`
	Label    string  `bun:"label" json:"label"`
}
