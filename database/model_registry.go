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

package database

import (
	"cmp"
	"reflect"
	"slices"
	"sync"
)

// tableRegistry keeps the models whose tables Bootstrap creates. Lower
// priorities are created first, so a referenced table needs a lower value
// than the tables pointing at it.
type tableRegistry struct {
	mu      sync.RWMutex
	entries []tableEntry
}

type tableEntry struct {
	model    interface{}
	priority int
}

var tables = &tableRegistry{}

// register ignores a second model of an already registered type.
func (r *tableRegistry) register(model interface{}, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	typ := reflect.TypeOf(model)
	if slices.ContainsFunc(r.entries, func(e tableEntry) bool { return reflect.TypeOf(e.model) == typ }) {
		return
	}
	r.entries = append(r.entries, tableEntry{model: model, priority: priority})
}

func (r *tableRegistry) models() []interface{} {
	r.mu.RLock()
	entries := slices.Clone(r.entries)
	r.mu.RUnlock()

	slices.SortStableFunc(entries, func(a, b tableEntry) int { return cmp.Compare(a.priority, b.priority) })
	out := make([]interface{}, len(entries))
	for i, e := range entries {
		out[i] = e.model
	}
	return out
}

// RegisterTable adds a model, usually a typed nil pointer, to the tables
// created by Bootstrap.
func RegisterTable(model interface{}, priority int) {
	tables.register(model, priority)
}

// RegisteredTables returns the registered models in creation order.
func RegisteredTables() []interface{} {
	return tables.models()
}
