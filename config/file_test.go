package config_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/snapdiff/config"
)

func writeFile(c *qt.C, dir, name, content string) string {
	path := filepath.Join(dir, name)
	c.Assert(os.WriteFile(path, []byte(content), 0o644), qt.IsNil)
	return path
}

func TestLoad_File(t *testing.T) {
	c := qt.New(t)
	path := writeFile(c, t.TempDir(), "snapdiff.yaml", `
dialect: postgresql
prev: migrations/0001_snapshot.json
schema: build/schema.json
renames:
  - public.users->public.accounts
ignored_tables:
  - public.audit_log
`)

	f, err := config.Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(f, qt.DeepEquals, &config.File{
		Dialect:       "postgresql",
		Action:        "generate",
		Prev:          "migrations/0001_snapshot.json",
		Schema:        "build/schema.json",
		Out:           "./migrations",
		Renames:       []string{"public.users->public.accounts"},
		IgnoredTables: []string{"public.audit_log"},
	})

	opts, err := f.DiffOptions()
	c.Assert(err, qt.IsNil)
	c.Assert(opts.Action, qt.Equals, config.ActionGenerate)
	c.Assert(opts.IsTableIgnored("public.audit_log"), qt.IsTrue)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	c := qt.New(t)
	path := writeFile(c, t.TempDir(), "snapdiff.json", `{"dialect": "mysql", "action": "generate"}`)
	t.Setenv("SNAPDIFF_ACTION", "push")
	t.Setenv("SNAPDIFF_DATABASE_URL", "mysql://root@localhost/app")
	t.Setenv("SNAPDIFF_RENAMES", "users->accounts, posts->articles")

	f, err := config.Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(f.Dialect, qt.Equals, "mysql")
	c.Assert(f.Action, qt.Equals, "push")
	c.Assert(f.DatabaseURL, qt.Equals, "mysql://root@localhost/app")
	c.Assert(f.Renames, qt.DeepEquals, []string{"users->accounts", "posts->articles"})
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		path    string
		err     string
	}{
		{name: "missing explicit file", path: filepath.Join(dir, "missing.yaml"), err: "error reading config .*"},
		{name: "invalid action", content: "action: apply\n", err: `unknown action "apply" .*`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			path := tt.path
			if path == "" {
				path = writeFile(c, dir, "snapdiff.yaml", tt.content)
			}
			_, err := config.Load(path)
			c.Assert(err, qt.ErrorMatches, tt.err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	env := writeFile(c, dir, ".env", "SNAPDIFF_TEST_DIALECT=sqlite\nSNAPDIFF_TEST_OUT=./out\n")
	t.Setenv("SNAPDIFF_TEST_OUT", "./kept")
	// registers cleanup so the variable loaded from the file does not leak
	t.Setenv("SNAPDIFF_TEST_DIALECT", "")
	os.Unsetenv("SNAPDIFF_TEST_DIALECT")

	c.Assert(config.LoadDotEnv(env, filepath.Join(dir, "missing.env")), qt.IsNil)
	c.Assert(os.Getenv("SNAPDIFF_TEST_DIALECT"), qt.Equals, "sqlite")
	c.Assert(os.Getenv("SNAPDIFF_TEST_OUT"), qt.Equals, "./kept")
}
