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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirection(t *testing.T) {
	assert.Equal(t, "ASC", Asc.Name())
	assert.Equal(t, "DESC", Desc.String())
	assert.Equal(t, 1, Desc.Number())
	assert.Equal(t, IllegalValue, Direction(9).Number())
	assert.Equal(t, IllegalName, Direction(9).Name())
	assert.Equal(t, IllegalDesc, Direction(9).Desc())

	d, ok := ParseDirection(" desc ")
	assert.True(t, ok)
	assert.Equal(t, Desc, d)
	d, ok = ParseDirection("sideways")
	assert.False(t, ok)
	assert.Equal(t, Asc, d)
}

func TestNullHandling(t *testing.T) {
	assert.Equal(t, "NULLS LAST", NullsLast.Name())
	assert.Equal(t, "NULLS FIRST", NullsFirst.String())
	assert.True(t, NullsNative.IsValid())
	assert.False(t, NullHandling(-1).IsValid())
	assert.Equal(t, IllegalValue, NullHandling(5).Number())
}

func TestSearchCondition(t *testing.T) {
	empty := NewSearchCondition()
	assert.True(t, empty.IsEmpty())
	assert.Nil(t, empty.Username())
	assert.Nil(t, empty.AgeGoe())

	cond := NewSearchCondition(WithUsername("member1"), WithTeamName("teamA"), WithAgeGoe(10), WithAgeLoe(20))
	assert.False(t, cond.IsEmpty())
	assert.Equal(t, "member1", *cond.Username())
	assert.Equal(t, "teamA", *cond.TeamName())
	assert.Equal(t, 10, *cond.AgeGoe())
	assert.Equal(t, 20, *cond.AgeLoe())
}

func TestSearchConditionIsImmutable(t *testing.T) {
	cond := NewSearchCondition(WithUsername("member1"), WithAgeGoe(10))

	*cond.Username() = "changed"
	*cond.AgeGoe() = 99

	assert.Equal(t, "member1", *cond.Username())
	assert.Equal(t, 10, *cond.AgeGoe())
}
