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
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/uptrace/bun"
)

const commonFixtures = "common"

// UnorderedFixture is the order of a fixture file without a numeric prefix.
const UnorderedFixture = math.MaxInt32

var fixtureOrder = regexp.MustCompile(`^(\d+)_`)

// Fixture is one SQL file found by a FixtureLoader.
type Fixture struct {
	Path        string
	Order       int
	Environment string
}

func (f Fixture) Name() string { return path.Base(f.Path) }

// FixtureLoader executes SQL fixture files read from an fs.FS. Files live
// under common/ and environments/<env>/ and are named NNN_description.sql.
type FixtureLoader struct {
	db          bun.IDB
	fsys        fs.FS
	environment string
	logger      Logger

	// Templating renders each file as a text/template over the process
	// environment plus ENVIRONMENT and TIMESTAMP before executing it.
	Templating bool
}

func NewFixtureLoader(db bun.IDB, fsys fs.FS, environment string) *FixtureLoader {
	return &FixtureLoader{db: db, fsys: fsys, environment: environment, logger: GetLogger()}
}

// Fixtures lists the common fixtures followed by those of the loader's
// environment, each group sorted by numeric prefix and then by name.
func (l *FixtureLoader) Fixtures() ([]Fixture, error) {
	common, err := l.scan(commonFixtures, commonFixtures)
	if err != nil {
		return nil, err
	}
	if l.environment == "" {
		return common, nil
	}
	env, err := l.scan(path.Join("environments", l.environment), l.environment)
	if err != nil {
		return nil, err
	}
	return append(common, env...), nil
}

func (l *FixtureLoader) scan(dir, environment string) ([]Fixture, error) {
	if _, err := fs.Stat(l.fsys, dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	var found []Fixture
	err := fs.WalkDir(l.fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(path.Ext(p), ".sql") {
			return nil
		}
		found = append(found, Fixture{Path: p, Order: parseFixtureOrder(d.Name()), Environment: environment})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	slices.SortStableFunc(found, func(a, b Fixture) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.Name(), b.Name())
	})
	return found, nil
}

func parseFixtureOrder(name string) int {
	if m := fixtureOrder.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return UnorderedFixture
}

// Load executes every fixture in order, each file in its own transaction,
// and stops at the first failure.
func (l *FixtureLoader) Load(ctx context.Context) error {
	fixtures, err := l.Fixtures()
	if err != nil {
		return err
	}
	if len(fixtures) == 0 {
		l.logger.Info("No SQL fixtures found", "environment", l.environment)
		return nil
	}
	for _, f := range fixtures {
		start := time.Now()
		rows, err := l.exec(ctx, f)
		if err != nil {
			l.logger.Error("SQL fixture failed", "file", f.Path, "error", err)
			return fmt.Errorf("SQL fixture %s failed: %w", f.Path, err)
		}
		l.logger.Debug("SQL fixture loaded", "file", f.Path, "rows_affected", rows, "duration", time.Since(start))
	}
	l.logger.Info("SQL fixtures loaded", "files", len(fixtures), "environment", l.environment)
	return nil
}

func (l *FixtureLoader) exec(ctx context.Context, f Fixture) (int64, error) {
	data, err := fs.ReadFile(l.fsys, f.Path)
	if err != nil {
		return 0, err
	}
	text := string(data)
	if l.Templating {
		if text, err = renderFixture(text, l.environment); err != nil {
			return 0, err
		}
	}

	var rows int64
	err = l.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, stmt := range splitStatements(text) {
			res, err := tx.ExecContext(ctx, stmt)
			if err != nil {
				return fmt.Errorf("%s: %w", stmt, err)
			}
			n, _ := res.RowsAffected()
			rows += n
		}
		return nil
	})
	return rows, err
}

func renderFixture(text, environment string) (string, error) {
	tmpl, err := template.New("fixture").Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse fixture template: %w", err)
	}
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	vars["ENVIRONMENT"] = environment
	vars["TIMESTAMP"] = time.Now().Format(time.DateTime)

	var b strings.Builder
	if err := tmpl.Execute(&b, vars); err != nil {
		return "", fmt.Errorf("failed to render fixture template: %w", err)
	}
	return b.String(), nil
}

// splitStatements joins lines until one ends with ';'. Blank lines and "--"
// comment lines are dropped.
func splitStatements(content string) []string {
	var stmts, pending []string
	flush := func() {
		if len(pending) > 0 {
			stmts = append(stmts, strings.Join(pending, " "))
			pending = pending[:0]
		}
	}
	for line := range strings.Lines(content) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		pending = append(pending, line)
		if strings.HasSuffix(line, ";") {
			flush()
		}
	}
	flush()
	return stmts
}
