package push_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/platform"
	"github.com/stokaro/snapdiff/migration/push"
)

// fakeQuerier answers count queries from a fixed table.
type fakeQuerier struct {
	mu      sync.Mutex
	counts  map[string]int64
	err     error
	queries []string
}

func (f *fakeQuerier) Count(_ context.Context, query string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[query], nil
}

func TestAnalyze(t *testing.T) {
	users := ddl.NewTable("public", "users")
	tests := []struct {
		name      string
		dialect   string
		stmts     []ast.Node
		counts    map[string]int64
		warnings  []string
		truncates []string
	}{
		{
			name:    "drop empty table",
			dialect: platform.Postgres,
			stmts:   []ast.Node{&ast.DropTableNode{Name: "users", Schema: "public"}},
		},
		{
			name:     "drop table with rows",
			dialect:  platform.Postgres,
			stmts:    []ast.Node{&ast.DropTableNode{Name: "users", Schema: "public"}},
			counts:   map[string]int64{`SELECT count(*) FROM "users"`: 3},
			warnings: []string{`You're about to delete "users" table with 3 items`},
		},
		{
			name:     "drop column outside the default schema",
			dialect:  "postgresql",
			stmts:    []ast.Node{&ast.DropColumnNode{Table: "users", Schema: "auth", Column: "email"}},
			counts:   map[string]int64{`SELECT count(*) FROM "auth"."users"`: 2},
			warnings: []string{`You're about to delete "email" column in "auth"."users" table with 2 items`},
		},
		{
			name:    "not-null column without default",
			dialect: platform.MySQL,
			stmts: []ast.Node{
				&ast.AddColumnNode{Table: "users", Column: &ddl.Column{Name: "age", Type: "int", NotNull: true}},
				&ast.AddColumnNode{Table: "users", Column: &ddl.Column{Name: "name", Type: "text", NotNull: true}},
				&ast.AddColumnNode{Table: "users", Column: &ddl.Column{Name: "nick", Type: "text", NotNull: true, Default: ddl.NewDefault("''")}},
			},
			counts: map[string]int64{"SELECT count(*) FROM `users`": 5},
			warnings: []string{
				"You're about to add not-null `age` column without default value, which contains 5 items",
				"You're about to add not-null `name` column without default value, which contains 5 items",
			},
			truncates: []string{"TRUNCATE TABLE `users`;"},
		},
		{
			name:    "set not null counts null rows",
			dialect: platform.Postgres,
			stmts: []ast.Node{
				ast.NewAlterColumn(ast.KindSetNotNull, users, &ddl.Column{Name: "email", Type: "text", NotNull: true}),
			},
			counts:    map[string]int64{`SELECT count(*) FROM "users" WHERE "email" IS NULL`: 1},
			warnings:  []string{`You're about to set not-null constraint on "email" column in "users" table, which contains 1 null items`},
			truncates: []string{`TRUNCATE TABLE "users";`},
		},
		{
			name:    "unique constraint",
			dialect: platform.SingleStore,
			stmts: []ast.Node{&ast.CreateUniqueNode{Table: "users",
				Unique: &ddl.Unique{Name: "users_email_unique", Columns: []string{"email"}}}},
			counts: map[string]int64{"SELECT count(*) FROM `users`": 9},
			warnings: []string{"You're about to add `users_email_unique` unique constraint to the table, which contains 9 items. " +
				"If this statement fails, you will receive an error from the database"},
		},
		{
			name:    "sqlite recreate with new not-null column",
			dialect: platform.SQLite,
			stmts: []ast.Node{&ast.RecreateTableNode{
				TableDef: ast.TableDef{Name: "users", Columns: []*ddl.Column{
					{Name: "id", Type: "integer"},
					{Name: "age", Type: "integer", NotNull: true},
				}},
				CopyColumns: []string{"id"},
			}},
			counts:    map[string]int64{"SELECT count(*) FROM `users`": 4},
			warnings:  []string{"You're about to recreate `users` table with new not-null columns age without default values, which contains 4 items"},
			truncates: []string{"DELETE FROM `users`;"},
		},
		{
			name:    "harmless statements are not checked",
			dialect: platform.Postgres,
			stmts: []ast.Node{
				&ast.RenameColumnNode{Table: "users", Schema: "public", From: "a", To: "b"},
				&ast.AddColumnNode{Table: "users", Schema: "public", Column: &ddl.Column{Name: "bio", Type: "text"}},
			},
			counts: map[string]int64{`SELECT count(*) FROM "users"`: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			q := &fakeQuerier{counts: tt.counts}

			report, err := push.Analyze(context.Background(), q, tt.stmts, tt.dialect)
			c.Assert(err, qt.IsNil)
			c.Assert(report.Warnings, qt.DeepEquals, tt.warnings)
			c.Assert(report.Truncates, qt.DeepEquals, tt.truncates)
			c.Assert(report.NeedsConfirmation, qt.Equals, len(tt.warnings) > 0)
		})
	}
}

func TestAnalyze_QueryErrorAborts(t *testing.T) {
	c := qt.New(t)
	boom := errors.New("connection reset")
	q := &fakeQuerier{err: boom}

	_, err := push.NewAnalyzer(push.WithConcurrency(1)).Analyze(context.Background(), q,
		[]ast.Node{&ast.DropTableNode{Name: "users"}}, platform.SQLite)
	c.Assert(err, qt.ErrorIs, boom)
	c.Assert(err, qt.ErrorMatches, "error running \"SELECT count\\(\\*\\) FROM `users`\": connection reset")
}

func TestAnalyze_NoQueriesWithoutDestructiveStatements(t *testing.T) {
	c := qt.New(t)
	q := &fakeQuerier{}

	report, err := push.Analyze(context.Background(), q, []ast.Node{&ast.CreateSchemaNode{Name: "auth"}}, platform.Postgres)
	c.Assert(err, qt.IsNil)
	c.Assert(report.NeedsConfirmation, qt.IsFalse)
	c.Assert(q.queries, qt.HasLen, 0)
}
