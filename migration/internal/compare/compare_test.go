package compare_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/migration/internal/compare"
)

func TestKeys(t *testing.T) {
	c := qt.New(t)

	prev := map[string]int{"a": 1, "b": 2, "c": 3}
	cur := map[string]int{"b": 2, "c": 30, "d": 4, "e": 5}

	added, deleted, common := compare.Keys(prev, cur)
	c.Assert(added, qt.DeepEquals, []string{"d", "e"})
	c.Assert(deleted, qt.DeepEquals, []string{"a"})
	c.Assert(common, qt.DeepEquals, []string{"b", "c"})

	added, deleted, common = compare.Keys(prev, prev)
	c.Assert(added, qt.HasLen, 0)
	c.Assert(deleted, qt.HasLen, 0)
	c.Assert(common, qt.HasLen, 3)
}

func usersTable(cols ...*ddl.Column) *ddl.Table {
	t := ddl.NewTable("public", "users")
	t.Columns = cols
	return t
}

func TestColumns(t *testing.T) {
	c := qt.New(t)

	prev := map[string]*ddl.Table{
		"public.users":  usersTable(&ddl.Column{Name: "id", Type: "serial"}, &ddl.Column{Name: "mail", Type: "text"}),
		"public.legacy": ddl.NewTable("public", "legacy"),
	}
	cur := map[string]*ddl.Table{
		"public.users": usersTable(
			&ddl.Column{Name: "id", Type: "serial"},
			&ddl.Column{Name: "email", Type: "text"},
			&ddl.Column{Name: "age", Type: "integer"},
		),
		"public.fresh": ddl.NewTable("public", "fresh"),
	}

	deltas := compare.Columns(prev, cur)
	c.Assert(deltas, qt.HasLen, 1)
	c.Assert(deltas[0].Table, qt.Equals, "users")
	c.Assert(deltas[0].Schema, qt.Equals, "public")
	c.Assert(deltas[0].Added, qt.HasLen, 2)
	c.Assert(deltas[0].Added[0].Name, qt.Equals, "email")
	c.Assert(deltas[0].Added[1].Name, qt.Equals, "age")
	c.Assert(deltas[0].Deleted, qt.HasLen, 1)
	c.Assert(deltas[0].Deleted[0].Name, qt.Equals, "mail")
}

func TestPolicies(t *testing.T) {
	c := qt.New(t)

	prev := usersTable()
	prev.Policies["owner"] = &ddl.Policy{Name: "owner", For: "ALL"}
	cur := usersTable()
	cur.Policies["owner_only"] = &ddl.Policy{Name: "owner_only", For: "ALL"}

	deltas := compare.Policies(map[string]*ddl.Table{"public.users": prev}, map[string]*ddl.Table{"public.users": cur})
	c.Assert(deltas, qt.HasLen, 1)
	c.Assert(deltas[0].Added[0].Name, qt.Equals, "owner_only")
	c.Assert(deltas[0].Deleted[0].Name, qt.Equals, "owner")
}

func TestColumn(t *testing.T) {
	tests := []struct {
		name  string
		old   *ddl.Column
		cur   *ddl.Column
		check func(c *qt.C, a compare.ColumnAlteration)
	}{
		{
			name: "unchanged",
			old:  &ddl.Column{Name: "a", Type: "text", Default: ddl.NewDefault("'x'")},
			cur:  &ddl.Column{Name: "a", Type: "text", Default: ddl.NewDefault("'x'")},
			check: func(c *qt.C, a compare.ColumnAlteration) {
				c.Assert(a.IsEmpty(), qt.IsTrue)
			},
		},
		{
			name: "type and not null",
			old:  &ddl.Column{Name: "a", Type: "integer"},
			cur:  &ddl.Column{Name: "a", Type: "bigint", NotNull: true},
			check: func(c *qt.C, a compare.ColumnAlteration) {
				c.Assert(a.Type, qt.DeepEquals, &compare.Change[string]{Kind: compare.Changed, Old: "integer", New: "bigint"})
				c.Assert(a.NotNull.Kind, qt.Equals, compare.Added)
				c.Assert(a.Default, qt.IsNil)
			},
		},
		{
			name: "enum moved to another schema changes the type",
			old:  &ddl.Column{Name: "a", Type: "mood", TypeSchema: "public"},
			cur:  &ddl.Column{Name: "a", Type: "mood", TypeSchema: "app"},
			check: func(c *qt.C, a compare.ColumnAlteration) {
				c.Assert(a.Type.Old, qt.Equals, "public.mood")
				c.Assert(a.Type.New, qt.Equals, "app.mood")
			},
		},
		{
			name: "default dropped",
			old:  &ddl.Column{Name: "a", Type: "text", Default: ddl.NewDefault("'x'")},
			cur:  &ddl.Column{Name: "a", Type: "text"},
			check: func(c *qt.C, a compare.ColumnAlteration) {
				c.Assert(a.Default.Kind, qt.Equals, compare.Deleted)
				c.Assert(a.Default.Old.String(), qt.Equals, "'x'")
			},
		},
		{
			name: "identity changed",
			old:  &ddl.Column{Name: "id", Type: "integer", Identity: &ddl.Identity{Type: "always"}},
			cur:  &ddl.Column{Name: "id", Type: "integer", Identity: &ddl.Identity{Type: "byDefault"}},
			check: func(c *qt.C, a compare.ColumnAlteration) {
				c.Assert(a.Identity.Kind, qt.Equals, compare.Changed)
			},
		},
		{
			name: "inline unique added",
			old:  &ddl.Column{Name: "email", Type: "text"},
			cur:  &ddl.Column{Name: "email", Type: "text", IsUnique: true, UniqueName: "users_email_unique"},
			check: func(c *qt.C, a compare.ColumnAlteration) {
				c.Assert(a.Unique.Kind, qt.Equals, compare.Added)
				c.Assert(a.Unique.New, qt.DeepEquals, &ddl.Unique{Name: "users_email_unique", Columns: []string{"email"}})
			},
		},
		{
			name: "generated expression changed",
			old:  &ddl.Column{Name: "g", Type: "text", Generated: &ddl.Generated{Type: "stored", As: "a"}},
			cur:  &ddl.Column{Name: "g", Type: "text", Generated: &ddl.Generated{Type: "stored", As: "b"}},
			check: func(c *qt.C, a compare.ColumnAlteration) {
				c.Assert(a.Generated.Kind, qt.Equals, compare.Changed)
				c.Assert(a.Type, qt.IsNil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			tt.check(c, compare.Column(tt.old, tt.cur))
		})
	}
}

func TestTables(t *testing.T) {
	c := qt.New(t)

	prev := usersTable(&ddl.Column{Name: "id", Type: "integer"}, &ddl.Column{Name: "email", Type: "text"})
	prev.Indexes["users_email_index"] = &ddl.Index{Name: "users_email_index", Columns: []ddl.IndexColumn{{Expression: "email", Asc: true}}}
	prev.UniqueConstraints["users_email_unique"] = &ddl.Unique{Name: "users_email_unique", Columns: []string{"email"}}

	cur := prev.Clone()
	cur.Column("email").NotNull = true
	cur.Indexes["users_email_index"].Where = "email IS NOT NULL"
	delete(cur.UniqueConstraints, "users_email_unique")
	cur.CheckConstraints["age_check"] = &ddl.Check{Name: "age_check", Value: "id > 0"}
	cur.IsRLSEnabled = true

	unchanged := ddl.NewTable("public", "same")
	alts := compare.Tables(
		map[string]*ddl.Table{"public.users": prev, "public.same": unchanged},
		map[string]*ddl.Table{"public.users": cur, "public.same": unchanged.Clone()},
	)
	c.Assert(alts, qt.HasLen, 1)

	a := alts[0]
	c.Assert(a.Name, qt.Equals, "users")
	c.Assert(a.Columns, qt.HasLen, 1)
	c.Assert(a.Columns[0].Name, qt.Equals, "email")
	c.Assert(a.Indexes.Altered, qt.HasLen, 1)
	c.Assert(a.Uniques.Deleted, qt.HasLen, 1)
	c.Assert(a.Checks.Added, qt.HasLen, 1)
	c.Assert(a.Policies, qt.HasLen, 0)
	c.Assert(a.RLS.Kind, qt.Equals, compare.Added)
}

func TestTables_PolicyAltered(t *testing.T) {
	c := qt.New(t)

	prev := usersTable(&ddl.Column{Name: "id", Type: "integer"})
	prev.Policies["p"] = &ddl.Policy{Name: "p", For: "SELECT", To: []string{"public"}}
	cur := prev.Clone()
	cur.Policies["p"].Using = "true"
	// policies already imply row-level security
	cur.IsRLSEnabled = true

	a := compare.Table(prev, cur)
	c.Assert(a.Policies, qt.HasLen, 1)
	c.Assert(a.Policies[0].New.Using, qt.Equals, "true")
	c.Assert(a.RLS, qt.IsNil)
}

func TestTables_NilAndEmptyCollectionsAreEqual(t *testing.T) {
	c := qt.New(t)

	prev := usersTable(&ddl.Column{Name: "id", Type: "integer"})
	prev.Indexes["i"] = &ddl.Index{Name: "i", Columns: []ddl.IndexColumn{{Expression: "id"}}, With: map[string]string{}}
	cur := usersTable(&ddl.Column{Name: "id", Type: "integer"})
	cur.Indexes["i"] = &ddl.Index{Name: "i", Columns: []ddl.IndexColumn{{Expression: "id"}}}

	c.Assert(compare.Table(prev, cur).IsEmpty(), qt.IsTrue)
}

func TestEnum(t *testing.T) {
	tests := []struct {
		name      string
		prev      []string
		cur       []string
		changed   bool
		added     []compare.EnumValue
		deleted   []string
		reordered bool
	}{
		{
			name:    "unchanged",
			prev:    []string{"sad", "ok"},
			cur:     []string{"sad", "ok"},
			changed: false,
		},
		{
			name:    "value appended",
			prev:    []string{"sad", "ok"},
			cur:     []string{"sad", "ok", "happy"},
			changed: true,
			added:   []compare.EnumValue{{Value: "happy"}},
		},
		{
			name:    "values inserted before an existing value",
			prev:    []string{"a", "d"},
			cur:     []string{"a", "b", "c", "d"},
			changed: true,
			added:   []compare.EnumValue{{Value: "b", Before: "d"}, {Value: "c", Before: "d"}},
		},
		{
			name:      "reordered",
			prev:      []string{"a", "b", "c"},
			cur:       []string{"a", "c", "b"},
			changed:   true,
			reordered: true,
		},
		{
			name:    "value removed",
			prev:    []string{"a", "b", "c"},
			cur:     []string{"a", "c"},
			changed: true,
			deleted: []string{"b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			a, changed := compare.Enum(&ddl.Enum{Name: "e", Values: tt.prev}, &ddl.Enum{Name: "e", Values: tt.cur})
			c.Assert(changed, qt.Equals, tt.changed)
			c.Assert(a.Added, qt.DeepEquals, tt.added)
			c.Assert(a.Deleted, qt.DeepEquals, tt.deleted)
			c.Assert(a.Reordered, qt.Equals, tt.reordered)
			c.Assert(a.NeedsRecreate(), qt.Equals, tt.reordered || len(tt.deleted) > 0)
		})
	}
}

func TestSequencesAndRoles(t *testing.T) {
	c := qt.New(t)

	seqs := compare.Sequences(
		map[string]*ddl.Sequence{"public.s": {Name: "s", Schema: "public", SequenceOptions: ddl.SequenceOptions{Increment: "1"}}},
		map[string]*ddl.Sequence{"public.s": {Name: "s", Schema: "public", SequenceOptions: ddl.SequenceOptions{Increment: "2"}}},
	)
	c.Assert(seqs, qt.HasLen, 1)
	c.Assert(seqs[0].New.Increment, qt.Equals, "2")

	roles := compare.Roles(
		map[string]*ddl.Role{"admin": {Name: "admin", Inherit: true}},
		map[string]*ddl.Role{"admin": {Name: "admin", Inherit: true}},
	)
	c.Assert(roles, qt.HasLen, 0)
}

func TestViews(t *testing.T) {
	c := qt.New(t)

	prev := map[string]*ddl.View{
		"public.v":   {Name: "v", Schema: "public", Definition: "select 1", With: map[string]string{"a": "1", "b": "2"}},
		"public.ext": {Name: "ext", Schema: "public", Definition: "x", IsExisting: true},
	}
	cur := map[string]*ddl.View{
		"public.v":   {Name: "v", Schema: "public", Definition: "select 1", With: map[string]string{"a": "5"}, Tablespace: "fast"},
		"public.ext": {Name: "ext", Schema: "public", Definition: "y", IsExisting: true},
	}

	alts := compare.Views(prev, cur)
	c.Assert(alts, qt.HasLen, 1)
	c.Assert(alts[0].Definition, qt.IsFalse)
	c.Assert(alts[0].SetWith, qt.DeepEquals, map[string]string{"a": "5"})
	c.Assert(alts[0].ResetWith, qt.DeepEquals, map[string]string{"b": "2"})
	c.Assert(alts[0].Tablespace.Kind, qt.Equals, compare.Added)
}
