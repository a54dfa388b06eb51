// Package integration runs schema evolutions against real databases: every
// step of a scenario is generated as a migration, applied, and finally rolled
// back with the generated down migrations.
//
// Databases are addressed by URL through environment variables (see
// DatabaseURLEnv); tests skip the dialects that have none.
package integration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/platform"
	"github.com/stokaro/snapdiff/dbschema"
	"github.com/stokaro/snapdiff/migration/generator"
	"github.com/stokaro/snapdiff/migration/resolver"
)

// DatabaseURLEnv maps a dialect to the variable holding its test database URL.
var DatabaseURLEnv = map[string]string{
	platform.Postgres:    "SNAPDIFF_TEST_POSTGRES_URL",
	platform.MySQL:       "SNAPDIFF_TEST_MYSQL_URL",
	platform.SQLite:      "SNAPDIFF_TEST_SQLITE_URL",
	platform.LibSQL:      "SNAPDIFF_TEST_LIBSQL_URL",
	platform.SingleStore: "SNAPDIFF_TEST_SINGLESTORE_URL",
}

// Step is one target schema of a scenario.
type Step struct {
	Name string
	// Renames are "from->to" table renames of the migration to this step,
	// unqualified.
	Renames []string
	Build   func(dialect string) *ddl.Snapshot
}

// TestScenario is a schema evolution.
type TestScenario struct {
	Name        string
	Description string
	Steps       []Step
}

// Migrated is a generated migration of a scenario run.
type Migrated struct {
	Step      string
	Migration *generator.Migration
}

// GenerateScenario generates the migrations of every step without touching a
// database. Steps that change nothing produce no migration.
func GenerateScenario(ctx context.Context, sc TestScenario, dialect string) ([]Migrated, error) {
	var (
		prev *ddl.Snapshot
		out  []Migrated
	)
	for _, step := range sc.Steps {
		cur := step.Build(dialect)
		opts := generator.GenerateMigrationOptions{MigrationName: step.Name}
		if len(step.Renames) > 0 {
			pairs, err := qualifyRenames(dialect, step.Renames)
			if err != nil {
				return nil, err
			}
			opts.Resolvers = resolver.StaticSet(pairs...)
		}
		m, err := generator.GenerateFromSnapshots(ctx, prev, cur, opts, slog.Default())
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", step.Name, err)
		}
		if m == nil {
			continue
		}
		out = append(out, Migrated{Step: step.Name, Migration: m})
		prev = m.Snapshot
	}
	return out, nil
}

func qualifyRenames(dialect string, renames []string) ([]string, error) {
	schema := platform.DefaultSchema(dialect)
	out := make([]string, 0, len(renames))
	for _, r := range renames {
		from, to, err := resolver.ParsePair(r)
		if err != nil {
			return nil, err
		}
		out = append(out, ddl.Key(schema, from)+resolver.PairSeparator+ddl.Key(schema, to))
	}
	return out, nil
}

// RunScenario applies the up migrations of the scenario in order and then the
// down migrations in reverse order.
func RunScenario(ctx context.Context, conn *dbschema.DatabaseConnection, sc TestScenario) error {
	migrations, err := GenerateScenario(ctx, sc, conn.Info().Dialect)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if err := Apply(ctx, conn, m.Migration.UpSQL); err != nil {
			return fmt.Errorf("applying %s: %w", m.Step, err)
		}
	}
	for i := len(migrations) - 1; i >= 0; i-- {
		if err := Apply(ctx, conn, migrations[i].Migration.DownSQL); err != nil {
			return fmt.Errorf("rolling back %s: %w", migrations[i].Step, err)
		}
	}
	return nil
}

// Apply executes migration text statement by statement.
func Apply(ctx context.Context, conn *dbschema.DatabaseConnection, text string) error {
	for _, stmt := range generator.SplitStatements(text) {
		if _, err := conn.DB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error executing %q: %w", stmt, err)
		}
	}
	return nil
}

func newTable(dialect, name string, cols ...*ddl.Column) *ddl.Table {
	t := ddl.NewTable(platform.DefaultSchema(dialect), name)
	t.Columns = cols
	return t
}

func snapshotOf(dialect string, tables ...*ddl.Table) *ddl.Snapshot {
	s := ddl.NewSnapshot(dialect)
	for _, t := range tables {
		s.Tables[ddl.Key(t.Schema, t.Name)] = t
	}
	return s
}

func usersTable(dialect, name string, withName bool) *ddl.Table {
	cols := []*ddl.Column{
		{Name: "id", Type: "integer", PrimaryKey: true, NotNull: true},
		{Name: "email", Type: "varchar(255)", NotNull: true},
	}
	if withName {
		cols = append(cols, &ddl.Column{Name: "display_name", Type: "varchar(100)"})
	}
	t := newTable(dialect, name, cols...)
	if withName {
		idx := name + "_email_index"
		t.Indexes[idx] = &ddl.Index{Name: idx, IsUnique: true, Columns: []ddl.IndexColumn{{Expression: "email", Asc: true}}}
	}
	return t
}

func postsTable(dialect, author string) *ddl.Table {
	t := newTable(dialect, "posts",
		&ddl.Column{Name: "id", Type: "integer", PrimaryKey: true, NotNull: true},
		&ddl.Column{Name: "author_id", Type: "integer", NotNull: true},
		&ddl.Column{Name: "title", Type: "varchar(200)", NotNull: true},
	)
	fk := "posts_author_id_" + author + "_id_fk"
	t.ForeignKeys[fk] = &ddl.ForeignKey{
		Name: fk, TableFrom: "posts", ColumnsFrom: []string{"author_id"},
		TableTo: author, SchemaTo: platform.DefaultSchema(dialect), ColumnsTo: []string{"id"}, OnDelete: "cascade",
	}
	return t
}

// GetAllScenarios returns every scenario.
func GetAllScenarios() []TestScenario {
	return []TestScenario{
		{
			Name:        "basic_evolution",
			Description: "Create a table, add a column with a unique index, then add a referencing table",
			Steps: []Step{
				{Name: "create_users", Build: func(d string) *ddl.Snapshot { return snapshotOf(d, usersTable(d, "users", false)) }},
				{Name: "add_display_name", Build: func(d string) *ddl.Snapshot { return snapshotOf(d, usersTable(d, "users", true)) }},
				{Name: "add_posts", Build: func(d string) *ddl.Snapshot {
					return snapshotOf(d, usersTable(d, "users", true), postsTable(d, "users"))
				}},
			},
		},
		{
			Name:        "rename_table",
			Description: "Rename a table that other tables do not reference yet",
			Steps: []Step{
				{Name: "create_users", Build: func(d string) *ddl.Snapshot { return snapshotOf(d, usersTable(d, "users", false)) }},
				{Name: "rename_to_accounts", Renames: []string{"users->accounts"}, Build: func(d string) *ddl.Snapshot {
					return snapshotOf(d, usersTable(d, "accounts", false))
				}},
			},
		},
		{
			Name:        "idempotent_steps",
			Description: "Repeating a step produces no migration",
			Steps: []Step{
				{Name: "create_users", Build: func(d string) *ddl.Snapshot { return snapshotOf(d, usersTable(d, "users", true)) }},
				{Name: "same_again", Build: func(d string) *ddl.Snapshot { return snapshotOf(d, usersTable(d, "users", true)) }},
			},
		},
	}
}

// PushDropColumn describes a push that loses data: the display_name column of
// the basic evolution is dropped again.
func PushDropColumn(dialect string) (prev, cur *ddl.Snapshot) {
	return snapshotOf(dialect, usersTable(dialect, "users", true)), snapshotOf(dialect, usersTable(dialect, "users", false))
}
