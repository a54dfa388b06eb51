package planner_test

import (
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/snapdiff/config"
	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/platform"
	"github.com/stokaro/snapdiff/migration/internal/compare"
	"github.com/stokaro/snapdiff/migration/planner"
)

type recorder struct {
	warnings []string
}

func (r *recorder) Warn(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func generate(dialect string) planner.Target {
	return planner.Target{Dialect: dialect, Action: config.ActionGenerate}
}

func postsTable(schema string) *ddl.Table {
	t := ddl.NewTable(schema, "posts")
	t.Columns = []*ddl.Column{
		{Name: "id", Type: "integer", PrimaryKey: true, NotNull: true},
		{Name: "author_id", Type: "integer"},
	}
	t.ForeignKeys["posts_author_id_users_id_fk"] = &ddl.ForeignKey{
		Name:        "posts_author_id_users_id_fk",
		TableFrom:   "posts",
		ColumnsFrom: []string{"author_id"},
		TableTo:     "users",
		ColumnsTo:   []string{"id"},
	}
	t.Indexes["posts_author_id_index"] = &ddl.Index{
		Name:    "posts_author_id_index",
		Columns: []ddl.IndexColumn{{Expression: "author_id", Asc: true}},
	}
	return t
}

func TestPrepareCreateTable(t *testing.T) {
	tests := []struct {
		name     string
		dialect  string
		table    func() *ddl.Table
		expected []ast.Kind
		inlineFK bool
	}{
		{
			name:     "postgres adds references separately",
			dialect:  platform.Postgres,
			table:    func() *ddl.Table { return postsTable("public") },
			expected: []ast.Kind{ast.KindCreateTable, ast.KindCreateReference, ast.KindCreateIndexPg},
		},
		{
			name:    "postgres with policies enables rls",
			dialect: platform.Postgres,
			table: func() *ddl.Table {
				tbl := postsTable("public")
				tbl.Policies["own"] = &ddl.Policy{Name: "own", Using: "author_id = current_user_id()"}
				return tbl
			},
			expected: []ast.Kind{
				ast.KindCreateTable, ast.KindCreateReference, ast.KindCreateIndexPg,
				ast.KindEnableRLS, ast.KindCreatePolicy,
			},
		},
		{
			name:     "mysql",
			dialect:  platform.MySQL,
			table:    func() *ddl.Table { return postsTable("") },
			expected: []ast.Kind{ast.KindCreateTable, ast.KindCreateReference, ast.KindCreateIndex},
		},
		{
			name:     "singlestore has no references",
			dialect:  platform.SingleStore,
			table:    func() *ddl.Table { return postsTable("") },
			expected: []ast.Kind{ast.KindCreateTable, ast.KindCreateIndex},
		},
		{
			name:     "sqlite declares references inline",
			dialect:  platform.SQLite,
			table:    func() *ddl.Table { return postsTable("") },
			expected: []ast.Kind{ast.KindCreateTable, ast.KindCreateIndex},
			inlineFK: true,
		},
		{
			name:     "libsql declares references inline",
			dialect:  platform.LibSQL,
			table:    func() *ddl.Table { return postsTable("") },
			expected: []ast.Kind{ast.KindCreateTable, ast.KindCreateIndex},
			inlineFK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			out := planner.PrepareCreateTable(generate(tt.dialect), tt.table())
			c.Assert(kinds(out), qt.DeepEquals, tt.expected)

			create := out[0].(*ast.CreateTableNode)
			c.Assert(create.Columns, qt.HasLen, 2)
			if tt.inlineFK {
				c.Assert(create.ForeignKeys, qt.HasLen, 1)
			} else {
				c.Assert(create.ForeignKeys, qt.HasLen, 0)
			}
		})
	}
}

func TestPrepareRenameTable(t *testing.T) {
	c := qt.New(t)

	out := planner.PrepareRenameTable(
		ddl.Ident{Schema: "public", Name: "users"},
		ddl.Ident{Schema: "auth", Name: "accounts"},
	)
	c.Assert(out, qt.DeepEquals, []ast.Node{
		&ast.SetTableSchemaNode{Name: "users", SchemaFrom: "public", SchemaTo: "auth"},
		&ast.RenameTableNode{FromSchema: "auth", ToSchema: "auth", From: "users", To: "accounts"},
	})

	c.Assert(planner.PrepareRenameTable(
		ddl.Ident{Name: "users"}, ddl.Ident{Name: "users"},
	), qt.HasLen, 0)
}

func alteration(table *ddl.Table, cols ...compare.ColumnAlteration) compare.TableAlteration {
	return compare.TableAlteration{Name: table.Name, Schema: table.Schema, Prev: table, Cur: table, Columns: cols}
}

func TestPrepareAlterColumns(t *testing.T) {
	tests := []struct {
		name     string
		target   planner.Target
		old, new *ddl.Column
		expected []ast.Kind
		warnings int
	}{
		{
			name:     "type and default",
			target:   generate(platform.Postgres),
			old:      &ddl.Column{Name: "score", Type: "integer"},
			new:      &ddl.Column{Name: "score", Type: "bigint", Default: ddl.NewDefault("0")},
			expected: []ast.Kind{ast.KindSetType, ast.KindSetDefault},
		},
		{
			name:     "drop default comes before type",
			target:   generate(platform.Postgres),
			old:      &ddl.Column{Name: "score", Type: "integer", Default: ddl.NewDefault("0")},
			new:      &ddl.Column{Name: "score", Type: "text", NotNull: true},
			expected: []ast.Kind{ast.KindDropDefault, ast.KindSetType, ast.KindSetNotNull},
		},
		{
			name:     "identity only on postgres",
			target:   generate(platform.MySQL),
			old:      &ddl.Column{Name: "id", Type: "int"},
			new:      &ddl.Column{Name: "id", Type: "int", Identity: &ddl.Identity{Type: "always"}},
			expected: nil,
		},
		{
			name:     "postgres identity",
			target:   generate(platform.Postgres),
			old:      &ddl.Column{Name: "id", Type: "integer"},
			new:      &ddl.Column{Name: "id", Type: "integer", Identity: &ddl.Identity{Type: "always"}},
			expected: []ast.Kind{ast.KindSetIdentity},
		},
		{
			name:     "postgres generated column warns",
			target:   generate(platform.Postgres),
			old:      &ddl.Column{Name: "full_name", Type: "text"},
			new:      &ddl.Column{Name: "full_name", Type: "text", Generated: &ddl.Generated{Type: "stored", As: "first || last"}},
			expected: []ast.Kind{ast.KindSetGenerated},
			warnings: 1,
		},
		{
			name:     "mysql generated expression change is skipped when pushing",
			target:   planner.Target{Dialect: platform.MySQL, Action: config.ActionPush},
			old:      &ddl.Column{Name: "full_name", Type: "text", Generated: &ddl.Generated{Type: "stored", As: "a"}},
			new:      &ddl.Column{Name: "full_name", Type: "text", Generated: &ddl.Generated{Type: "stored", As: "b"}},
			expected: nil,
			warnings: 1,
		},
		{
			name:     "mysql generated expression change when generating",
			target:   generate(platform.MySQL),
			old:      &ddl.Column{Name: "full_name", Type: "text", Generated: &ddl.Generated{Type: "stored", As: "a"}},
			new:      &ddl.Column{Name: "full_name", Type: "text", Generated: &ddl.Generated{Type: "stored", As: "b"}},
			expected: []ast.Kind{ast.KindAlterGenerated},
		},
		{
			name:     "mysql autoincrement key has no set_pk",
			target:   generate(platform.MySQL),
			old:      &ddl.Column{Name: "id", Type: "int", NotNull: true},
			new:      &ddl.Column{Name: "id", Type: "int", NotNull: true, PrimaryKey: true, AutoIncrement: true},
			expected: []ast.Kind{ast.KindSetAutoIncrement},
		},
		{
			name:     "mysql serial keeps the key",
			target:   generate(platform.MySQL),
			old:      &ddl.Column{Name: "id", Type: "bigint unsigned", PrimaryKey: true},
			new:      &ddl.Column{Name: "id", Type: "serial"},
			expected: []ast.Kind{ast.KindSetType},
		},
		{
			name:     "on update only on the mysql family",
			target:   generate(platform.SQLite),
			old:      &ddl.Column{Name: "updated_at", Type: "timestamp"},
			new:      &ddl.Column{Name: "updated_at", Type: "timestamp", OnUpdate: true},
			expected: nil,
		},
		{
			name:     "inline unique",
			target:   generate(platform.Postgres),
			old:      &ddl.Column{Name: "email", Type: "text"},
			new:      &ddl.Column{Name: "email", Type: "text", IsUnique: true},
			expected: []ast.Kind{ast.KindCreateUnique},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			table := ddl.NewTable("", "users")
			table.Columns = []*ddl.Column{tt.new}
			w := &recorder{}

			out := planner.PrepareAlterColumns(tt.target, w, alteration(table, compare.Column(tt.old, tt.new)))
			if tt.expected == nil {
				c.Assert(out, qt.HasLen, 0)
			} else {
				c.Assert(kinds(out), qt.DeepEquals, tt.expected)
			}
			c.Assert(w.warnings, qt.HasLen, tt.warnings)
		})
	}
}

func TestPrepareAlterColumns_AutoIncrementKey(t *testing.T) {
	c := qt.New(t)
	table := ddl.NewTable("", "users")
	old := &ddl.Column{Name: "id", Type: "int", NotNull: true}
	cur := &ddl.Column{Name: "id", Type: "int", NotNull: true, PrimaryKey: true, AutoIncrement: true}
	table.Columns = []*ddl.Column{cur}

	out := planner.PrepareAlterColumns(generate(platform.MySQL), &recorder{}, alteration(table, compare.Column(old, cur)))
	c.Assert(out, qt.HasLen, 1)
	c.Assert(out[0].(*ast.AlterColumnNode).WithPrimaryKey, qt.IsTrue)
}

func TestPrepareAlterColumns_PrimaryKeyDropsComeFirst(t *testing.T) {
	c := qt.New(t)
	table := ddl.NewTable("public", "users")
	oldID := &ddl.Column{Name: "id", Type: "integer", PrimaryKey: true}
	newID := &ddl.Column{Name: "id", Type: "integer"}
	oldCode := &ddl.Column{Name: "code", Type: "text"}
	newCode := &ddl.Column{Name: "code", Type: "text", PrimaryKey: true}
	table.Columns = []*ddl.Column{newCode, newID}

	out := planner.PrepareAlterColumns(generate(platform.Postgres), &recorder{},
		alteration(table, compare.Column(oldCode, newCode), compare.Column(oldID, newID)))
	c.Assert(kinds(out), qt.DeepEquals, []ast.Kind{ast.KindDropPK, ast.KindSetPK})
	c.Assert(out[0].(*ast.AlterColumnNode).ConstraintName, qt.Equals, ddl.DefaultPrimaryKeyConstraint("users"))
}

func TestPrepareAddColumns(t *testing.T) {
	c := qt.New(t)
	table := postsTable("")
	stored := &ddl.Column{Name: "slug", Type: "text", Generated: &ddl.Generated{Type: "stored", As: "lower(title)"}}
	w := &recorder{}

	out := planner.PrepareAddColumns(generate(platform.SQLite), w, table, []*ddl.Column{table.Columns[1], stored})
	c.Assert(out, qt.HasLen, 1)
	add := out[0].(*ast.AddColumnNode)
	c.Assert(add.Reference, qt.Not(qt.IsNil))
	c.Assert(add.Reference.Name, qt.Equals, "posts_author_id_users_id_fk")
	c.Assert(w.warnings, qt.HasLen, 1)

	out = planner.PrepareAddColumns(generate(platform.Postgres), w, table, []*ddl.Column{table.Columns[1], stored})
	c.Assert(out, qt.HasLen, 2)
	c.Assert(out[0].(*ast.AddColumnNode).Reference, qt.IsNil)
}

func TestPrepareForeignKeys_SkipsInlineReferences(t *testing.T) {
	c := qt.New(t)
	table := postsTable("")
	fk := table.ForeignKeys["posts_author_id_users_id_fk"]
	delta := compare.Delta[*ddl.ForeignKey]{Added: []*ddl.ForeignKey{fk}}

	c.Assert(planner.PrepareForeignKeys(generate(platform.SQLite), table, delta, []*ddl.Column{table.Columns[1]}), qt.HasLen, 0)
	c.Assert(kinds(planner.PrepareForeignKeys(generate(platform.Postgres), table, delta, []*ddl.Column{table.Columns[1]})),
		qt.DeepEquals, []ast.Kind{ast.KindCreateReference})
	c.Assert(planner.PrepareForeignKeys(generate(platform.SingleStore), table, delta, nil), qt.HasLen, 0)
}

func TestPrepareIndexes_AlteredIsDroppedAndCreated(t *testing.T) {
	c := qt.New(t)
	table := postsTable("public")
	idx := table.Indexes["posts_author_id_index"]
	unique := *idx
	unique.IsUnique = true

	out := planner.PrepareIndexes(generate(platform.Postgres), table, compare.Delta[*ddl.Index]{
		Altered: []compare.Change[*ddl.Index]{{Kind: compare.Changed, Old: idx, New: &unique}},
	})
	c.Assert(kinds(out), qt.DeepEquals, []ast.Kind{ast.KindDropIndex, ast.KindCreateIndexPg})
}

func TestPrepareEnumValueChanges(t *testing.T) {
	tests := []struct {
		name     string
		prev     []string
		cur      []string
		expected []ast.Kind
	}{
		{
			name:     "appended value",
			prev:     []string{"happy", "sad"},
			cur:      []string{"happy", "sad", "ok"},
			expected: []ast.Kind{ast.KindAddEnumValue},
		},
		{
			name:     "deleted value",
			prev:     []string{"happy", "sad"},
			cur:      []string{"happy"},
			expected: []ast.Kind{ast.KindDropEnumValue},
		},
		{
			name:     "added and deleted value",
			prev:     []string{"happy", "sad"},
			cur:      []string{"ok", "happy"},
			expected: []ast.Kind{ast.KindAddEnumValue, ast.KindDropEnumValue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			a, ok := compare.Enum(
				&ddl.Enum{Name: "mood", Schema: "public", Values: tt.prev},
				&ddl.Enum{Name: "mood", Schema: "public", Values: tt.cur},
			)
			c.Assert(ok, qt.IsTrue)
			out := planner.PrepareEnumValueChanges(a, nil)
			c.Assert(kinds(out), qt.DeepEquals, tt.expected)
			c.Assert(kinds(planner.Filter(out)), qt.DeepEquals, []ast.Kind{tt.expected[len(tt.expected)-1]})
		})
	}
}

func TestEnumColumns(t *testing.T) {
	c := qt.New(t)
	prev := ddl.NewSnapshot(platform.Postgres)
	cur := ddl.NewSnapshot(platform.Postgres)

	users := ddl.NewTable("public", "users")
	users.Columns = []*ddl.Column{
		{Name: "mood", Type: "mood", TypeSchema: "public", Default: ddl.NewDefault("'sad'")},
		{Name: "moods", Type: "mood[]", TypeSchema: "public"},
		{Name: "name", Type: "text"},
	}
	gone := ddl.NewTable("public", "gone")
	gone.Columns = []*ddl.Column{{Name: "mood", Type: "mood", TypeSchema: "public"}}
	prev.Tables[ddl.Key("public", "users")] = users
	prev.Tables[ddl.Key("public", "gone")] = gone

	curUsers := users.Clone()
	curUsers.Columns[0].Default = ddl.NewDefault("'happy'")
	cur.Tables[ddl.Key("public", "users")] = curUsers

	out := planner.EnumColumns(prev, cur, ddl.Ident{Schema: "public", Name: "mood"})
	c.Assert(out, qt.DeepEquals, []ast.EnumColumn{
		{Table: "users", Schema: "public", Column: "mood", Default: ddl.NewDefault("'happy'")},
		{Table: "users", Schema: "public", Column: "moods", IsArray: true},
	})
}

func TestPrepareAlterView(t *testing.T) {
	prev := &ddl.View{Name: "active_users", Schema: "public", Definition: "select 1", With: map[string]string{"check_option": "local"}}

	tests := []struct {
		name     string
		dialect  string
		cur      *ddl.View
		expected []ast.Kind
	}{
		{
			name:     "postgres definition change",
			dialect:  platform.Postgres,
			cur:      &ddl.View{Name: "active_users", Schema: "public", Definition: "select 2"},
			expected: []ast.Kind{ast.KindDropView, ast.KindCreateView},
		},
		{
			name:    "postgres options change",
			dialect: platform.Postgres,
			cur: &ddl.View{Name: "active_users", Schema: "public", Definition: "select 1",
				With: map[string]string{"security_barrier": "true"}, Tablespace: "fast"},
			expected: []ast.Kind{ast.KindAlterViewAddWith, ast.KindAlterViewDropWith, ast.KindAlterViewTablespace},
		},
		{
			name:     "mysql definition change",
			dialect:  platform.MySQL,
			cur:      &ddl.View{Name: "active_users", Schema: "public", Definition: "select 2"},
			expected: []ast.Kind{ast.KindAlterView},
		},
		{
			name:     "sqlite definition change",
			dialect:  platform.SQLite,
			cur:      &ddl.View{Name: "active_users", Schema: "public", Definition: "select 2"},
			expected: []ast.Kind{ast.KindDropView, ast.KindCreateView},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			out := planner.PrepareAlterView(generate(tt.dialect), compare.View(prev, tt.cur))
			c.Assert(kinds(out), qt.DeepEquals, tt.expected)
		})
	}
}

func TestPrepareRenameView(t *testing.T) {
	c := qt.New(t)
	prev := &ddl.View{Name: "v1", Schema: "public", Definition: "select 1"}
	cur := &ddl.View{Name: "v2", Schema: "reporting", Definition: "select 1"}

	c.Assert(kinds(planner.PrepareRenameView(generate(platform.Postgres), prev, cur)), qt.DeepEquals,
		[]ast.Kind{ast.KindAlterViewSchema, ast.KindRenameView})
	c.Assert(kinds(planner.PrepareRenameView(generate(platform.SQLite), prev, cur)), qt.DeepEquals,
		[]ast.Kind{ast.KindDropView, ast.KindCreateView})

	existing := &ddl.View{Name: "v2", Schema: "reporting", IsExisting: true}
	c.Assert(planner.PrepareRenameView(generate(platform.Postgres), prev, existing), qt.HasLen, 0)
}

func TestPreparePolicies_IndividualTarget(t *testing.T) {
	c := qt.New(t)
	p := &ddl.Policy{Name: "read_all", On: ddl.Key("auth", "users")}

	out := planner.PrepareCreatePolicies(ddl.Ident{}, []*ddl.Policy{p}, true)
	c.Assert(out, qt.DeepEquals, []ast.Node{
		&ast.CreatePolicyNode{Table: "users", Schema: "auth", Policy: p, Individual: true},
	})
	c.Assert(out[0].Kind(), qt.Equals, ast.KindCreateIndPolicy)
}
