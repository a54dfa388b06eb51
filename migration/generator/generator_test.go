package generator_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/platform"
	"github.com/stokaro/snapdiff/core/snapshot"
	"github.com/stokaro/snapdiff/migration/generator"
	"github.com/stokaro/snapdiff/migration/resolver"
)

func usersSnapshot(tables ...string) *ddl.Snapshot {
	s := ddl.NewSnapshot(platform.Postgres)
	for _, name := range tables {
		t := ddl.NewTable("public", name)
		t.Columns = []*ddl.Column{{Name: "id", Type: "integer", NotNull: true}}
		s.Tables[ddl.Key("public", name)] = t
	}
	return s
}

func writeSnapshot(c *qt.C, dir, name string, s *ddl.Snapshot) string {
	path := filepath.Join(dir, name)
	c.Assert(snapshot.WriteFile(path, s), qt.IsNil)
	return path
}

func TestJoinStatements(t *testing.T) {
	c := qt.New(t)

	text := generator.JoinStatements([]string{"CREATE SCHEMA \"a\";", "CREATE SCHEMA \"b\";"})
	c.Assert(text, qt.Equals, "CREATE SCHEMA \"a\";\n--> statement-breakpoint\nCREATE SCHEMA \"b\";\n")
	c.Assert(generator.SplitStatements(text), qt.DeepEquals, []string{"CREATE SCHEMA \"a\";", "CREATE SCHEMA \"b\";"})
	c.Assert(generator.JoinStatements(nil), qt.Equals, "")
	c.Assert(generator.SplitStatements(""), qt.IsNil)
}

func TestMergeMeta(t *testing.T) {
	tests := []struct {
		name     string
		base     map[string]string
		next     map[string]string
		expected map[string]string
	}{
		{
			name:     "empty",
			expected: map[string]string{},
		},
		{
			name:     "new rename",
			base:     map[string]string{"public.a": "public.b"},
			next:     map[string]string{"public.x": "public.y"},
			expected: map[string]string{"public.a": "public.b", "public.x": "public.y"},
		},
		{
			name:     "chained rename",
			base:     map[string]string{"public.a": "public.b"},
			next:     map[string]string{"public.b": "public.c"},
			expected: map[string]string{"public.a": "public.c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			merged := generator.MergeMeta(ddl.Meta{Tables: tt.base}, ddl.Meta{Tables: tt.next})
			c.Assert(merged.Tables, qt.DeepEquals, tt.expected)
			c.Assert(merged.Schemas, qt.HasLen, 0)
		})
	}
}

func TestGenerateMigrationFileName(t *testing.T) {
	c := qt.New(t)
	c.Assert(generator.GenerateMigrationFileName(20240101120000, "Add User Preferences Table", "up"),
		qt.Equals, "20240101120000_add_user_preferences_table.up.sql")
	c.Assert(generator.GenerateMigrationFileName(1, "  rename users -> accounts ", "down"),
		qt.Equals, "1_rename_users_accounts.down.sql")
}

func TestGetNextMigrationVersion(t *testing.T) {
	c := qt.New(t)
	c.Assert(generator.GetNextMigrationVersion() > 20240101000000, qt.IsTrue)
}

func TestGenerate_NoChanges(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	path := writeSnapshot(c, dir, "schema.json", usersSnapshot("users"))

	m, err := generator.Generate(context.Background(), generator.GenerateMigrationOptions{
		PrevSnapshot:    path,
		CurrentSnapshot: path,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(m, qt.IsNil)
}

func TestGenerate_FirstMigration(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	m, err := generator.Generate(context.Background(), generator.GenerateMigrationOptions{
		CurrentSnapshot: writeSnapshot(c, dir, "schema.json", usersSnapshot("users")),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(m, qt.IsNotNil)
	c.Assert(m.Name, qt.Equals, "migration")
	c.Assert(m.UpSQL, qt.Contains, `CREATE TABLE "users" (`)
	c.Assert(m.DownSQL, qt.Equals, "DROP TABLE \"users\" CASCADE;\n")
	c.Assert(m.Snapshot.Tables, qt.HasLen, 1)
}

func TestGenerate_RenamesAreReversed(t *testing.T) {
	c := qt.New(t)
	prev := usersSnapshot("users")
	prev.Meta.Tables = map[string]string{"public.people": "public.users"}
	cur := usersSnapshot("accounts")

	m, err := generator.GenerateFromSnapshots(context.Background(), prev, cur, generator.GenerateMigrationOptions{
		Resolvers:     resolver.StaticSet("public.users->public.accounts"),
		MigrationName: "rename users",
	}, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(m.UpSQL, qt.Equals, "ALTER TABLE \"users\" RENAME TO \"accounts\";\n")
	c.Assert(m.DownSQL, qt.Equals, "ALTER TABLE \"accounts\" RENAME TO \"users\";\n")
	c.Assert(m.Snapshot.Meta.Tables, qt.DeepEquals, map[string]string{"public.people": "public.accounts"})
	c.Assert(m.Result.Meta.Tables, qt.DeepEquals, map[string]string{"public.users": "public.accounts"})
	// inputs are left untouched
	c.Assert(cur.Meta.Tables, qt.HasLen, 0)
}

func TestGenerate_IgnoredTables(t *testing.T) {
	c := qt.New(t)

	m, err := generator.GenerateFromSnapshots(context.Background(), usersSnapshot("users"), usersSnapshot("users", "audit_log"),
		generator.GenerateMigrationOptions{IgnoredTables: []string{"public.audit_log"}}, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(m, qt.IsNil)
}

func TestGenerate_Errors(t *testing.T) {
	dir := t.TempDir()
	c := qt.New(t)
	pg := writeSnapshot(c, dir, "pg.json", usersSnapshot("users"))
	mysql := writeSnapshot(c, dir, "mysql.json", ddl.NewSnapshot(platform.MySQL))

	tests := []struct {
		name string
		opts generator.GenerateMigrationOptions
		err  string
	}{
		{
			name: "missing current snapshot",
			opts: generator.GenerateMigrationOptions{CurrentSnapshot: filepath.Join(dir, "missing.json")},
			err:  "error reading current snapshot: .*",
		},
		{
			name: "dialect override mismatch",
			opts: generator.GenerateMigrationOptions{CurrentSnapshot: pg, Dialect: "mysql"},
			err:  "error reading current snapshot: snapshot dialect mismatch.*",
		},
		{
			name: "snapshots of different dialects",
			opts: generator.GenerateMigrationOptions{PrevSnapshot: mysql, CurrentSnapshot: pg},
			err:  "error generating up migration: snapshot dialect mismatch.*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			_, err := generator.Generate(context.Background(), tt.opts)
			c.Assert(err, qt.ErrorMatches, tt.err)
		})
	}
}

func TestWriteFiles(t *testing.T) {
	c := qt.New(t)
	dir := filepath.Join(t.TempDir(), "migrations")

	m, err := generator.GenerateFromSnapshots(context.Background(), nil, usersSnapshot("users"),
		generator.GenerateMigrationOptions{MigrationName: "init"}, nil)
	c.Assert(err, qt.IsNil)
	m.Version = 20240101120000

	files, err := generator.WriteFiles(dir, m)
	c.Assert(err, qt.IsNil)
	c.Assert(files.Version, qt.Equals, 20240101120000)
	c.Assert(filepath.Base(files.UpFile), qt.Equals, "20240101120000_init.up.sql")
	c.Assert(filepath.Base(files.DownFile), qt.Equals, "20240101120000_init.down.sql")

	up, err := os.ReadFile(files.UpFile)
	c.Assert(err, qt.IsNil)
	c.Assert(string(up), qt.Equals, m.UpSQL)
	stored, err := snapshot.ReadFile(files.SnapshotFile)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.Tables, qt.HasLen, 1)

	// an existing migration with the same version is never overwritten
	files, err = generator.WriteFiles(dir, m)
	c.Assert(err, qt.IsNil)
	c.Assert(files.Version, qt.Equals, 20240101120001)
}

func TestWriteFiles_SnapshotIsNextBaseline(t *testing.T) {
	tests := []struct {
		name     string
		squashed bool
	}{
		{name: "structured"},
		{name: "squashed", squashed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			ctx := context.Background()
			dir := t.TempDir()
			schema := usersSnapshot("users", "posts")
			schema.Version = ""
			current := writeSnapshot(c, dir, "schema.json", usersSnapshot("users", "posts"))

			m, err := generator.GenerateFromSnapshots(ctx, nil, schema,
				generator.GenerateMigrationOptions{MigrationName: "init", Squashed: tt.squashed}, nil)
			c.Assert(err, qt.IsNil)
			c.Assert(m.Squashed, qt.Equals, tt.squashed)
			files, err := generator.WriteFiles(filepath.Join(dir, "migrations"), m)
			c.Assert(err, qt.IsNil)

			stored, err := snapshot.ReadFile(files.SnapshotFile)
			c.Assert(err, qt.IsNil)
			c.Assert(stored.Version, qt.Equals, ddl.CurrentVersion)
			c.Assert(stored.Tables, qt.HasLen, 2)

			latest, err := generator.LatestSnapshot(filepath.Join(dir, "migrations"))
			c.Assert(err, qt.IsNil)
			c.Assert(latest, qt.Equals, files.SnapshotFile)

			again, err := generator.Generate(ctx, generator.GenerateMigrationOptions{
				PrevSnapshot:    latest,
				CurrentSnapshot: current,
			})
			c.Assert(err, qt.IsNil)
			c.Assert(again, qt.IsNil)
		})
	}
}

func TestCustom(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	prev := writeSnapshot(c, dir, "20240101120000_snapshot.json", usersSnapshot("users"))

	m, err := generator.Custom(generator.GenerateMigrationOptions{PrevSnapshot: prev, MigrationName: "seed roles"})
	c.Assert(err, qt.IsNil)
	c.Assert(m.Name, qt.Equals, "seed roles")
	c.Assert(m.UpSQL, qt.Contains, "Custom SQL migration")
	c.Assert(m.DownSQL, qt.Equals, "")
	c.Assert(m.Snapshot.Tables, qt.HasLen, 1)
	c.Assert(m.Result.HasChanges(), qt.IsFalse)

	_, err = generator.Custom(generator.GenerateMigrationOptions{})
	c.Assert(err, qt.ErrorMatches, "custom migration requires a previous snapshot")
}

func TestLatestSnapshot(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	latest, err := generator.LatestSnapshot(filepath.Join(dir, "missing"))
	c.Assert(err, qt.IsNil)
	c.Assert(latest, qt.Equals, "")

	writeSnapshot(c, dir, "20240101120000_snapshot.json", usersSnapshot("users"))
	writeSnapshot(c, dir, "20240301120000_snapshot.json", usersSnapshot("users", "posts"))
	writeSnapshot(c, dir, "20240201120000_snapshot.json", usersSnapshot())
	c.Assert(os.WriteFile(filepath.Join(dir, "20240401120000_init.up.sql"), []byte("SELECT 1;"), 0o644), qt.IsNil)

	latest, err = generator.LatestSnapshot(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(latest, qt.Equals, filepath.Join(dir, "20240301120000_snapshot.json"))
}
