package ddl

import (
	"fmt"

	"github.com/stokaro/snapdiff/core/platform"
)

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Version:   s.Version,
		Dialect:   s.Dialect,
		Schemas:   cloneMap(s.Schemas, func(v *Schema) *Schema { c := *v; return &c }),
		Enums:     cloneMap(s.Enums, (*Enum).Clone),
		Sequences: cloneMap(s.Sequences, func(v *Sequence) *Sequence { c := *v; return &c }),
		Roles:     cloneMap(s.Roles, func(v *Role) *Role { c := *v; return &c }),
		Policies:  cloneMap(s.Policies, (*Policy).Clone),
		Views:     cloneMap(s.Views, (*View).Clone),
		Tables:    cloneMap(s.Tables, (*Table).Clone),
		Meta: Meta{
			Schemas: cloneStrings(s.Meta.Schemas),
			Tables:  cloneStrings(s.Meta.Tables),
			Columns: cloneStrings(s.Meta.Columns),
		},
	}
	return out
}

// Clone returns a deep copy of the enum.
func (e *Enum) Clone() *Enum {
	c := *e
	c.Values = append([]string(nil), e.Values...)
	return &c
}

// Clone returns a deep copy of the policy.
func (p *Policy) Clone() *Policy {
	c := *p
	c.To = append([]string(nil), p.To...)
	return &c
}

// Clone returns a deep copy of the view.
func (v *View) Clone() *View {
	c := *v
	c.With = cloneStrings(v.With)
	return &c
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := *t
	c.Columns = make([]*Column, len(t.Columns))
	for i, col := range t.Columns {
		c.Columns[i] = col.Clone()
	}
	c.Indexes = cloneMap(t.Indexes, (*Index).Clone)
	c.ForeignKeys = cloneMap(t.ForeignKeys, (*ForeignKey).Clone)
	c.CompositePrimaryKeys = cloneMap(t.CompositePrimaryKeys, (*PrimaryKey).Clone)
	c.UniqueConstraints = cloneMap(t.UniqueConstraints, (*Unique).Clone)
	c.CheckConstraints = cloneMap(t.CheckConstraints, func(v *Check) *Check { cc := *v; return &cc })
	c.Policies = cloneMap(t.Policies, (*Policy).Clone)
	return &c
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	out := *c
	if c.Default != nil {
		out.Default = NewDefault(string(*c.Default))
	}
	if c.Generated != nil {
		g := *c.Generated
		out.Generated = &g
	}
	if c.Identity != nil {
		id := *c.Identity
		out.Identity = &id
	}
	return &out
}

// Clone returns a deep copy of the index.
func (i *Index) Clone() *Index {
	c := *i
	c.Columns = append([]IndexColumn(nil), i.Columns...)
	c.With = cloneStrings(i.With)
	return &c
}

// Clone returns a deep copy of the foreign key.
func (f *ForeignKey) Clone() *ForeignKey {
	c := *f
	c.ColumnsFrom = append([]string(nil), f.ColumnsFrom...)
	c.ColumnsTo = append([]string(nil), f.ColumnsTo...)
	return &c
}

// Clone returns a deep copy of the primary key.
func (p *PrimaryKey) Clone() *PrimaryKey {
	c := *p
	c.Columns = append([]string(nil), p.Columns...)
	return &c
}

// Clone returns a deep copy of the unique constraint.
func (u *Unique) Clone() *Unique {
	c := *u
	c.Columns = append([]string(nil), u.Columns...)
	return &c
}

func cloneMap[V any](m map[string]V, clone func(V) V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = clone(v)
	}
	return out
}

func cloneStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Normalize returns a copy of the snapshot in canonical key shape: every map
// is initialized, schema-less entities of a schema-aware dialect are moved to
// the default schema, and every map is re-keyed with Key. Two entities that
// collapse onto the same key are reported as an error.
func Normalize(s *Snapshot) (*Snapshot, error) {
	out := s.Clone()
	out.Dialect = platform.NormalizeDialect(out.Dialect)
	if out.Dialect == "" {
		return nil, fmt.Errorf("unknown dialect %q", s.Dialect)
	}
	def := platform.DefaultSchema(out.Dialect)
	fix := func(schema string) string {
		if !platform.SupportsSchemas(out.Dialect) {
			return ""
		}
		if schema == "" {
			return def
		}
		return schema
	}

	var err error
	out.Schemas, err = rekey("schema", out.Schemas, func(v *Schema) string { return v.Name })
	if err != nil {
		return nil, err
	}
	delete(out.Schemas, def)

	for _, e := range out.Enums {
		e.Schema = fix(e.Schema)
	}
	if out.Enums, err = rekey("enum", out.Enums, func(v *Enum) string { return Key(v.Schema, v.Name) }); err != nil {
		return nil, err
	}
	for _, sq := range out.Sequences {
		sq.Schema = fix(sq.Schema)
	}
	if out.Sequences, err = rekey("sequence", out.Sequences, func(v *Sequence) string { return Key(v.Schema, v.Name) }); err != nil {
		return nil, err
	}
	if out.Roles, err = rekey("role", out.Roles, func(v *Role) string { return v.Name }); err != nil {
		return nil, err
	}
	if out.Policies, err = rekey("policy", out.Policies, func(v *Policy) string { return Key(v.On, v.Name) }); err != nil {
		return nil, err
	}
	for _, v := range out.Views {
		v.Schema = fix(v.Schema)
	}
	if out.Views, err = rekey("view", out.Views, func(v *View) string { return Key(v.Schema, v.Name) }); err != nil {
		return nil, err
	}

	for _, t := range out.Tables {
		t.Schema = fix(t.Schema)
		if err := normalizeTable(t, fix); err != nil {
			return nil, err
		}
	}
	if out.Tables, err = rekey("table", out.Tables, func(v *Table) string { return Key(v.Schema, v.Name) }); err != nil {
		return nil, err
	}
	if out.Meta.Schemas == nil || out.Meta.Tables == nil || out.Meta.Columns == nil {
		meta := NewMeta()
		for k, v := range out.Meta.Schemas {
			meta.Schemas[k] = v
		}
		for k, v := range out.Meta.Tables {
			meta.Tables[k] = v
		}
		for k, v := range out.Meta.Columns {
			meta.Columns[k] = v
		}
		out.Meta = meta
	}
	return out, nil
}

func normalizeTable(t *Table, fix func(string) string) error {
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if seen[c.Name] {
			return fmt.Errorf("table %s: duplicate column %q", t.Name, c.Name)
		}
		seen[c.Name] = true
		if c.TypeSchema != "" {
			c.TypeSchema = fix(c.TypeSchema)
		}
	}
	for _, fk := range t.ForeignKeys {
		if fk.TableFrom == "" {
			fk.TableFrom = t.Name
		}
		fk.SchemaTo = fix(fk.SchemaTo)
	}
	var err error
	if t.Indexes, err = rekey("index", t.Indexes, func(v *Index) string { return v.Name }); err != nil {
		return err
	}
	if t.ForeignKeys, err = rekey("foreign key", t.ForeignKeys, func(v *ForeignKey) string { return v.Name }); err != nil {
		return err
	}
	for _, pk := range t.CompositePrimaryKeys {
		if pk.Name == "" {
			pk.Name = PrimaryKeyName(t.Name, pk.Columns)
		}
	}
	if t.CompositePrimaryKeys, err = rekey("primary key", t.CompositePrimaryKeys, func(v *PrimaryKey) string { return v.Name }); err != nil {
		return err
	}
	if t.UniqueConstraints, err = rekey("unique constraint", t.UniqueConstraints, func(v *Unique) string { return v.Name }); err != nil {
		return err
	}
	if t.CheckConstraints, err = rekey("check constraint", t.CheckConstraints, func(v *Check) string { return v.Name }); err != nil {
		return err
	}
	if t.Policies, err = rekey("policy", t.Policies, func(v *Policy) string { return v.Name }); err != nil {
		return err
	}
	return nil
}

func rekey[V any](kind string, m map[string]V, key func(V) string) (map[string]V, error) {
	out := make(map[string]V, len(m))
	for _, k := range SortedKeys(m) {
		v := m[k]
		nk := key(v)
		if _, dup := out[nk]; dup {
			return nil, fmt.Errorf("duplicate %s %q", kind, nk)
		}
		out[nk] = v
	}
	return out, nil
}
