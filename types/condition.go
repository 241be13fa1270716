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

// SearchCondition is a sparse set of member search filters. A nil field places
// no constraint. Values are copied in and out, so a condition never changes
// after construction.
type SearchCondition struct {
	username *string
	teamName *string
	ageGoe   *int
	ageLoe   *int
}

// SearchOption sets one field of a SearchCondition.
type SearchOption func(*SearchCondition)

func WithUsername(username string) SearchOption {
	return func(c *SearchCondition) { c.username = &username }
}

func WithTeamName(teamName string) SearchOption {
	return func(c *SearchCondition) { c.teamName = &teamName }
}

// WithAgeGoe sets the inclusive lower age bound.
func WithAgeGoe(age int) SearchOption {
	return func(c *SearchCondition) { c.ageGoe = &age }
}

// WithAgeLoe sets the inclusive upper age bound.
func WithAgeLoe(age int) SearchOption {
	return func(c *SearchCondition) { c.ageLoe = &age }
}

// NewSearchCondition builds a condition from the given options.
func NewSearchCondition(opts ...SearchOption) SearchCondition {
	var c SearchCondition
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c SearchCondition) Username() *string { return copyPtr(c.username) }

func (c SearchCondition) TeamName() *string { return copyPtr(c.teamName) }

func (c SearchCondition) AgeGoe() *int { return copyPtr(c.ageGoe) }

func (c SearchCondition) AgeLoe() *int { return copyPtr(c.ageLoe) }

// IsEmpty reports whether no field was supplied at all.
func (c SearchCondition) IsEmpty() bool {
	return c.username == nil && c.teamName == nil && c.ageGoe == nil && c.ageLoe == nil
}

func copyPtr[V any](p *V) *V {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
