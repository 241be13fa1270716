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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"
)

var (
	codeForeignKeysMu sync.RWMutex
	codeForeignKeys   []ForeignKeyConstraint
)

// RegisterForeignKey adds a code-defined constraint, used when no YAML file
// is configured. A constraint with an already registered name is ignored.
func RegisterForeignKey(fk ForeignKeyConstraint) {
	codeForeignKeysMu.Lock()
	defer codeForeignKeysMu.Unlock()
	name := fk.Name()
	if slices.ContainsFunc(codeForeignKeys, func(c ForeignKeyConstraint) bool { return c.Name() == name }) {
		return
	}
	codeForeignKeys = append(codeForeignKeys, fk)
}

func registeredForeignKeys() []ForeignKeyConstraint {
	codeForeignKeysMu.RLock()
	defer codeForeignKeysMu.RUnlock()
	return slices.Clone(codeForeignKeys)
}

// ForeignKeyConstraint is a foreign key declared inline by CREATE TABLE.
type ForeignKeyConstraint struct {
	Table           string `yaml:"table"`
	Column          string `yaml:"column"`
	ReferenceTable  string `yaml:"reference_table"`
	ReferenceColumn string `yaml:"reference_column"`
	OnDelete        string `yaml:"on_delete,omitempty"`
	OnUpdate        string `yaml:"on_update,omitempty"`
	ConstraintName  string `yaml:"constraint_name,omitempty"`
	Description     string `yaml:"description,omitempty"`
}

// Name returns ConstraintName, or fk_<table>_<column> when it is empty.
func (fk ForeignKeyConstraint) Name() string {
	if fk.ConstraintName != "" {
		return fk.ConstraintName
	}
	return "fk_" + fk.Table + "_" + fk.Column
}

var referentialActions = []string{"CASCADE", "RESTRICT", "SET NULL", "NO ACTION"}

// Validate reports every missing field and unknown referential action.
func (fk ForeignKeyConstraint) Validate() error {
	var errs []error
	for field, value := range map[string]string{
		"table":            fk.Table,
		"column":           fk.Column,
		"reference table":  fk.ReferenceTable,
		"reference column": fk.ReferenceColumn,
	} {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s: %s is required", fk.Name(), field))
		}
	}
	for clause, action := range map[string]string{"ON DELETE": fk.OnDelete, "ON UPDATE": fk.OnUpdate} {
		if action != "" && !slices.Contains(referentialActions, strings.ToUpper(action)) {
			errs = append(errs, fmt.Errorf("%s: invalid %s action %q", fk.Name(), clause, action))
		}
	}
	return errors.Join(errs...)
}

// referenceClause renders `("team_id") REFERENCES "teams" ("id") ON DELETE SET NULL`.
func (fk ForeignKeyConstraint) referenceClause() (string, []interface{}) {
	clause := "(?) REFERENCES ? (?)"
	if fk.OnDelete != "" {
		clause += " ON DELETE " + strings.ToUpper(fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		clause += " ON UPDATE " + strings.ToUpper(fk.OnUpdate)
	}
	return clause, []interface{}{bun.Ident(fk.Column), bun.Ident(fk.ReferenceTable), bun.Ident(fk.ReferenceColumn)}
}

type foreignKeyFile struct {
	ForeignKeys []ForeignKeyConstraint `yaml:"foreign_keys"`
}

// ForeignKeyManager holds the constraints declared when tables are created.
type ForeignKeyManager struct {
	constraints []ForeignKeyConstraint
	logger      Logger
}

// NewForeignKeyManager returns a manager over the code-defined constraints.
func NewForeignKeyManager(logger Logger) *ForeignKeyManager {
	return &ForeignKeyManager{constraints: registeredForeignKeys(), logger: logger}
}

// NewForeignKeyManagerFromFile loads constraints from a YAML file. It falls
// back to the code-defined constraints when path is empty or unreadable.
func NewForeignKeyManagerFromFile(logger Logger, path string) *ForeignKeyManager {
	if path == "" {
		return NewForeignKeyManager(logger)
	}
	data, err := os.ReadFile(path)
	if err == nil {
		var file foreignKeyFile
		if err = yaml.Unmarshal(data, &file); err == nil {
			return &ForeignKeyManager{constraints: file.ForeignKeys, logger: logger}
		}
	}
	if logger != nil {
		logger.Debug("Using code-defined foreign keys", "config_path", path, "error", err)
	}
	return NewForeignKeyManager(logger)
}

// Export writes the constraints to a YAML file that
// NewForeignKeyManagerFromFile can read back. Missing descriptions are
// filled in.
func (m *ForeignKeyManager) Export(path string) error {
	file := foreignKeyFile{ForeignKeys: slices.Clone(m.constraints)}
	for i, c := range file.ForeignKeys {
		if c.Description == "" {
			file.ForeignKeys[i].Description = fmt.Sprintf("%s.%s -> %s.%s", c.Table, c.Column, c.ReferenceTable, c.ReferenceColumn)
		}
	}
	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to serialize foreign keys: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyTo declares every constraint of table on a CREATE TABLE query.
func (m *ForeignKeyManager) ApplyTo(q *bun.CreateTableQuery, table string) *bun.CreateTableQuery {
	for _, c := range m.ForTable(table) {
		clause, args := c.referenceClause()
		q = q.ForeignKey(clause, args...)
		if m.logger != nil {
			m.logger.Debug("Declared foreign key", "constraint", c.Name())
		}
	}
	return q
}

// ForTable returns the constraints of table, matched case-insensitively.
func (m *ForeignKeyManager) ForTable(table string) []ForeignKeyConstraint {
	var out []ForeignKeyConstraint
	for _, c := range m.constraints {
		if strings.EqualFold(c.Table, table) {
			out = append(out, c)
		}
	}
	return out
}

func (m *ForeignKeyManager) Constraints() []ForeignKeyConstraint {
	return slices.Clone(m.constraints)
}

// Validate joins the validation errors of every constraint.
func (m *ForeignKeyManager) Validate() error {
	errs := make([]error, 0, len(m.constraints))
	for _, c := range m.constraints {
		errs = append(errs, c.Validate())
	}
	return errors.Join(errs...)
}
