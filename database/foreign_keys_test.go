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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForeignKeyConstraintName(t *testing.T) {
	fk := ForeignKeyConstraint{Table: "members", Column: "team_id"}
	assert.Equal(t, "fk_members_team_id", fk.Name())
	fk.ConstraintName = "fk_custom"
	assert.Equal(t, "fk_custom", fk.Name())
}

func TestRegisterForeignKeyIgnoresDuplicates(t *testing.T) {
	before := len(registeredForeignKeys())
	RegisterForeignKey(ForeignKeyConstraint{Table: "test_players", Column: "squad_id", ReferenceTable: "x", ReferenceColumn: "y"})
	assert.Len(t, registeredForeignKeys(), before)
}

func TestForeignKeyApplyTo(t *testing.T) {
	manager := newMemoryManager(t)
	fkm := NewForeignKeyManager(nil)

	q := fkm.ApplyTo(manager.DB().NewCreateTable().Model((*testPlayer)(nil)), "test_players")
	assert.Contains(t, q.String(), `FOREIGN KEY ("squad_id") REFERENCES "test_squads" ("id") ON DELETE CASCADE`)

	q = fkm.ApplyTo(manager.DB().NewCreateTable().Model((*testSquad)(nil)), "test_squads")
	assert.NotContains(t, q.String(), "FOREIGN KEY")
}

func TestForeignKeyExportAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "foreign_keys.yaml")
	require.NoError(t, NewForeignKeyManager(nil).Export(path))

	loaded := NewForeignKeyManagerFromFile(nil, path)
	constraints := loaded.ForTable("TEST_PLAYERS")
	require.Len(t, constraints, 1)
	assert.Equal(t, "test_squads", constraints[0].ReferenceTable)
	assert.Equal(t, "test_players.squad_id -> test_squads.id", constraints[0].Description)
	assert.NoError(t, loaded.Validate())
}

func TestForeignKeyManagerFromMissingFile(t *testing.T) {
	logger := &recordingLogger{}
	fkm := NewForeignKeyManagerFromFile(logger, filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ElementsMatch(t, registeredForeignKeys(), fkm.Constraints())
	assert.Equal(t, []string{"Using code-defined foreign keys"}, logger.messages("debug"))
}

func TestForeignKeyValidate(t *testing.T) {
	valid := ForeignKeyConstraint{Table: "a", Column: "b", ReferenceTable: "c", ReferenceColumn: "d", OnDelete: "set null", OnUpdate: "CASCADE"}
	assert.NoError(t, valid.Validate())

	badAction := valid
	badAction.OnUpdate = "sometimes"
	assert.ErrorContains(t, badAction.Validate(), `invalid ON UPDATE action "sometimes"`)

	err := ForeignKeyConstraint{}.Validate()
	require.Error(t, err)
	assert.Len(t, err.(interface{ Unwrap() []error }).Unwrap(), 4)

	fkm := &ForeignKeyManager{constraints: []ForeignKeyConstraint{valid, badAction, {}}}
	assert.Len(t, fkm.Validate().(interface{ Unwrap() []error }).Unwrap(), 2)
}
