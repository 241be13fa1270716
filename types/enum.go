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

import "strings"

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by query types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// Direction is the sort direction of a single ordering key.
type Direction int

const (
	Asc Direction = iota
	Desc
)

var _ BaseEnum = Asc

func (d Direction) IsValid() bool { return d == Asc || d == Desc }

func (d Direction) Number() int {
	if !d.IsValid() {
		return IllegalValue
	}
	return int(d)
}

func (d Direction) Name() string {
	switch d {
	case Asc:
		return "ASC"
	case Desc:
		return "DESC"
	default:
		return IllegalName
	}
}

func (d Direction) String() string { return d.Name() }

func (d Direction) Desc() string {
	switch d {
	case Asc:
		return "ascending"
	case Desc:
		return "descending"
	default:
		return IllegalDesc
	}
}

// ParseDirection accepts "asc"/"desc" in any case. Anything else is ascending
// and reported as not ok.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ASC", "":
		return Asc, true
	case "DESC":
		return Desc, true
	default:
		return Asc, false
	}
}

// NullHandling tells where NULL values of a sort key are placed.
type NullHandling int

const (
	// NullsNative leaves the placement to the database engine.
	NullsNative NullHandling = iota
	NullsFirst
	NullsLast
)

var _ BaseEnum = NullsNative

func (n NullHandling) IsValid() bool { return n >= NullsNative && n <= NullsLast }

func (n NullHandling) Number() int {
	if !n.IsValid() {
		return IllegalValue
	}
	return int(n)
}

func (n NullHandling) Name() string {
	switch n {
	case NullsNative:
		return "NATIVE"
	case NullsFirst:
		return "NULLS FIRST"
	case NullsLast:
		return "NULLS LAST"
	default:
		return IllegalName
	}
}

func (n NullHandling) String() string { return n.Name() }

func (n NullHandling) Desc() string {
	switch n {
	case NullsNative:
		return "engine default null placement"
	case NullsFirst:
		return "nulls before non-null values"
	case NullsLast:
		return "nulls after non-null values"
	default:
		return IllegalDesc
	}
}
