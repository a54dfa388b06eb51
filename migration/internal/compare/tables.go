package compare

import (
	"github.com/stokaro/snapdiff/core/ddl"
)

// ColumnAlteration describes how one column present in both versions of a
// table changed. Every property is reported separately; a nil change means
// the property is unchanged.
type ColumnAlteration struct {
	Name string
	Old  *ddl.Column
	New  *ddl.Column

	// Type compares the qualified type ("schema.type" for enum columns).
	Type          *Change[string]
	Default       *Change[*ddl.Default]
	NotNull       *Change[bool]
	PrimaryKey    *Change[bool]
	AutoIncrement *Change[bool]
	OnUpdate      *Change[bool]
	Generated     *Change[*ddl.Generated]
	Identity      *Change[*ddl.Identity]
	// Unique compares the inline unique constraint of the column.
	Unique *Change[*ddl.Unique]
}

// IsEmpty reports whether no property changed.
func (a ColumnAlteration) IsEmpty() bool {
	return a.Type == nil && a.Default == nil && a.NotNull == nil && a.PrimaryKey == nil &&
		a.AutoIncrement == nil && a.OnUpdate == nil && a.Generated == nil &&
		a.Identity == nil && a.Unique == nil
}

// Column compares two versions of a column.
func Column(old, cur *ddl.Column) ColumnAlteration {
	a := ColumnAlteration{Name: cur.Name, Old: old, New: cur}
	a.Type = stringChange(ddl.Key(old.TypeSchema, old.Type), ddl.Key(cur.TypeSchema, cur.Type))
	if a.Type != nil {
		a.Type.Kind = Changed
	}
	if !ddl.EqualDefaults(old.Default, cur.Default) {
		a.Default = ptrChange(old.Default, cur.Default)
	}
	a.NotNull = boolChange(old.NotNull, cur.NotNull)
	a.PrimaryKey = boolChange(old.PrimaryKey, cur.PrimaryKey)
	a.AutoIncrement = boolChange(old.AutoIncrement, cur.AutoIncrement)
	a.OnUpdate = boolChange(old.OnUpdate, cur.OnUpdate)
	a.Generated = ptrChange(old.Generated, cur.Generated)
	a.Identity = ptrChange(old.Identity, cur.Identity)
	a.Unique = ptrChange(inlineUnique(old), inlineUnique(cur))
	return a
}

func inlineUnique(c *ddl.Column) *ddl.Unique {
	if !c.IsUnique {
		return nil
	}
	return &ddl.Unique{Name: c.UniqueName, Columns: []string{c.Name}, NullsNotDistinct: c.NullsNotDistinct}
}

// TableAlteration describes how a table present in both snapshots changed,
// apart from added and deleted columns and policies, which are resolved
// separately.
type TableAlteration struct {
	Name   string
	Schema string
	Prev   *ddl.Table
	Cur    *ddl.Table

	// Columns holds the altered columns in declaration order.
	Columns     []ColumnAlteration
	Indexes     Delta[*ddl.Index]
	ForeignKeys Delta[*ddl.ForeignKey]
	PrimaryKeys Delta[*ddl.PrimaryKey]
	Uniques     Delta[*ddl.Unique]
	Checks      Delta[*ddl.Check]
	// Policies holds the policies present on both sides whose definition
	// changed.
	Policies []Change[*ddl.Policy]
	// RLS compares effective row-level security: explicitly enabled or
	// implied by attached policies.
	RLS *Change[bool]
}

// IsEmpty reports whether the table is unchanged.
func (t TableAlteration) IsEmpty() bool {
	return len(t.Columns) == 0 && t.Indexes.IsEmpty() && t.ForeignKeys.IsEmpty() &&
		t.PrimaryKeys.IsEmpty() && t.Uniques.IsEmpty() && t.Checks.IsEmpty() &&
		len(t.Policies) == 0 && t.RLS == nil
}

// Table compares two versions of a table.
func Table(prev, cur *ddl.Table) TableAlteration {
	t := TableAlteration{
		Name:        cur.Name,
		Schema:      cur.Schema,
		Prev:        prev,
		Cur:         cur,
		Indexes:     diffMap(prev.Indexes, cur.Indexes),
		ForeignKeys: diffMap(prev.ForeignKeys, cur.ForeignKeys),
		PrimaryKeys: diffMap(prev.CompositePrimaryKeys, cur.CompositePrimaryKeys),
		Uniques:     diffMap(prev.UniqueConstraints, cur.UniqueConstraints),
		Checks:      diffMap(prev.CheckConstraints, cur.CheckConstraints),
		RLS:         boolChange(prev.HasEffectiveRLS(), cur.HasEffectiveRLS()),
	}
	for _, col := range cur.Columns {
		old := prev.Column(col.Name)
		if old == nil {
			continue
		}
		if a := Column(old, col); !a.IsEmpty() {
			t.Columns = append(t.Columns, a)
		}
	}
	t.Policies = diffMap(prev.Policies, cur.Policies).Altered
	return t
}

// Tables compares every table present in both maps and returns the altered
// ones sorted by key.
//
// # Usage
//
// Call Tables on the fully patched previous snapshot: once table, column and
// policy renames have been applied, a renamed table is compared under its
// new name and only its genuine alterations are reported.
func Tables(prev, cur map[string]*ddl.Table) []TableAlteration {
	_, _, common := Keys(prev, cur)
	var out []TableAlteration
	for _, key := range common {
		if t := Table(prev[key], cur[key]); !t.IsEmpty() {
			out = append(out, t)
		}
	}
	return out
}
