// Package patch applies resolved renames to a snapshot.
//
// After a resolver decided that entity X became entity Y, the previous
// snapshot is rewritten so that X is called Y everywhere: the entity itself,
// its map key and every reference other entities hold to it (column types
// referring to an enum, foreign keys referring to a table, policies referring
// to a role, ...). Comparing the patched snapshot with the current one then
// only reports genuine changes.
//
// Every function returns a new snapshot and leaves its input untouched. All
// renames of one call are applied simultaneously, so a batch that swaps two
// names is handled correctly.
package patch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stokaro/snapdiff/core/ddl"
)

// ErrUnknownEntity is returned when a rename refers to an entity that does
// not exist in the snapshot being patched.
var ErrUnknownEntity = errors.New("unknown entity")

// Rename maps an old identity to a new one. A change of Schema is a move.
type Rename struct {
	From ddl.Ident
	To   ddl.Ident
}

func (r Rename) String() string {
	return r.From.String() + " -> " + r.To.String()
}

func unknown(kind string, id ddl.Ident) error {
	return fmt.Errorf("%w: %s %s", ErrUnknownEntity, kind, id)
}

// identMap indexes renames by their old identity.
func identMap(renames []Rename) map[ddl.Ident]ddl.Ident {
	m := make(map[ddl.Ident]ddl.Ident, len(renames))
	for _, r := range renames {
		m[r.From] = r.To
	}
	return m
}

// renameEntries moves every renamed entry of m to its new key. The entries
// are taken out before any of them is put back, which makes the operation
// independent of the order of renames.
func renameEntries[V any](kind string, m map[string]V, renames []Rename, apply func(V, ddl.Ident)) error {
	taken := make([]V, len(renames))
	for i, r := range renames {
		v, ok := m[r.From.String()]
		if !ok {
			return unknown(kind, r.From)
		}
		taken[i] = v
	}
	for _, r := range renames {
		delete(m, r.From.String())
	}
	for i, r := range renames {
		apply(taken[i], r.To)
		m[r.To.String()] = taken[i]
	}
	return nil
}

func rekey[V any](m map[string]V, key func(V) string) map[string]V {
	out := make(map[string]V, len(m))
	for _, v := range m {
		out[key(v)] = v
	}
	return out
}

func mapStrings(items []string, fn func(string) string) {
	for i, s := range items {
		items[i] = fn(s)
	}
}

// RenameSchemas renames schemas and moves everything they contain.
func RenameSchemas(s *ddl.Snapshot, renames []Rename) (*ddl.Snapshot, error) {
	out := s.Clone()
	if err := renameEntries("schema", out.Schemas, renames, func(v *ddl.Schema, to ddl.Ident) { v.Name = to.Name }); err != nil {
		return nil, err
	}
	names := make(map[string]string, len(renames))
	for _, r := range renames {
		names[r.From.Name] = r.To.Name
	}
	fix := func(schema string) string {
		if to, ok := names[schema]; ok {
			return to
		}
		return schema
	}

	for _, e := range out.Enums {
		e.Schema = fix(e.Schema)
	}
	for _, sq := range out.Sequences {
		sq.Schema = fix(sq.Schema)
	}
	for _, v := range out.Views {
		v.Schema = fix(v.Schema)
	}
	for _, p := range out.Policies {
		if p.On != "" {
			schema, table := ddl.SplitKey(p.On)
			p.On = ddl.Key(fix(schema), table)
		}
	}
	for _, t := range out.Tables {
		t.Schema = fix(t.Schema)
		for _, c := range t.Columns {
			if c.TypeSchema != "" {
				c.TypeSchema = fix(c.TypeSchema)
			}
			if c.Identity != nil && c.Identity.Schema != "" {
				c.Identity.Schema = fix(c.Identity.Schema)
			}
		}
		for _, fk := range t.ForeignKeys {
			fk.SchemaTo = fix(fk.SchemaTo)
		}
	}

	out.Enums = rekey(out.Enums, func(v *ddl.Enum) string { return ddl.Key(v.Schema, v.Name) })
	out.Sequences = rekey(out.Sequences, func(v *ddl.Sequence) string { return ddl.Key(v.Schema, v.Name) })
	out.Views = rekey(out.Views, func(v *ddl.View) string { return ddl.Key(v.Schema, v.Name) })
	out.Policies = rekey(out.Policies, func(v *ddl.Policy) string { return ddl.Key(v.On, v.Name) })
	out.Tables = rekey(out.Tables, func(v *ddl.Table) string { return ddl.Key(v.Schema, v.Name) })
	return out, nil
}

// splitArray separates a type from its array suffix ("mood[][]").
func splitArray(typ string) (base, suffix string) {
	if i := strings.Index(typ, "[]"); i >= 0 {
		return typ[:i], typ[i:]
	}
	return typ, ""
}

// RenameEnums renames or moves enums and rewrites every column of their type.
func RenameEnums(s *ddl.Snapshot, renames []Rename) (*ddl.Snapshot, error) {
	out := s.Clone()
	err := renameEntries("enum", out.Enums, renames, func(v *ddl.Enum, to ddl.Ident) {
		v.Schema, v.Name = to.Schema, to.Name
	})
	if err != nil {
		return nil, err
	}
	m := identMap(renames)
	for _, t := range out.Tables {
		for _, c := range t.Columns {
			if c.TypeSchema == "" {
				continue
			}
			base, suffix := splitArray(c.Type)
			if to, ok := m[ddl.Ident{Schema: c.TypeSchema, Name: base}]; ok {
				c.TypeSchema = to.Schema
				c.Type = to.Name + suffix
			}
		}
	}
	return out, nil
}

// RenameSequences renames or moves standalone sequences.
func RenameSequences(s *ddl.Snapshot, renames []Rename) (*ddl.Snapshot, error) {
	out := s.Clone()
	err := renameEntries("sequence", out.Sequences, renames, func(v *ddl.Sequence, to ddl.Ident) {
		v.Schema, v.Name = to.Schema, to.Name
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RenameRoles renames roles and rewrites the role lists of every policy.
func RenameRoles(s *ddl.Snapshot, renames []Rename) (*ddl.Snapshot, error) {
	out := s.Clone()
	if err := renameEntries("role", out.Roles, renames, func(v *ddl.Role, to ddl.Ident) { v.Name = to.Name }); err != nil {
		return nil, err
	}
	names := make(map[string]string, len(renames))
	for _, r := range renames {
		names[r.From.Name] = r.To.Name
	}
	fix := func(role string) string {
		if to, ok := names[role]; ok {
			return to
		}
		return role
	}
	for _, p := range out.Policies {
		mapStrings(p.To, fix)
	}
	for _, t := range out.Tables {
		for _, p := range t.Policies {
			mapStrings(p.To, fix)
		}
	}
	return out, nil
}

// RenameTables renames or moves tables and rewrites the foreign keys and
// individual policies that refer to them.
func RenameTables(s *ddl.Snapshot, renames []Rename) (*ddl.Snapshot, error) {
	out := s.Clone()
	err := renameEntries("table", out.Tables, renames, func(v *ddl.Table, to ddl.Ident) {
		for _, fk := range v.ForeignKeys {
			if fk.TableFrom == v.Name {
				fk.TableFrom = to.Name
			}
		}
		v.Schema, v.Name = to.Schema, to.Name
	})
	if err != nil {
		return nil, err
	}
	m := identMap(renames)
	for _, t := range out.Tables {
		for _, fk := range t.ForeignKeys {
			if to, ok := m[ddl.Ident{Schema: fk.SchemaTo, Name: fk.TableTo}]; ok {
				fk.SchemaTo, fk.TableTo = to.Schema, to.Name
			}
		}
	}
	for _, p := range out.Policies {
		schema, table := ddl.SplitKey(p.On)
		if to, ok := m[ddl.Ident{Schema: schema, Name: table}]; ok {
			p.On = to.String()
		}
	}
	out.Policies = rekey(out.Policies, func(v *ddl.Policy) string { return ddl.Key(v.On, v.Name) })
	return out, nil
}

// RenameColumns renames columns of one table. Indexes, foreign keys, the
// composite primary key and unique constraints of the table follow the new
// names, as do foreign keys of other tables that reference the columns.
func RenameColumns(s *ddl.Snapshot, table ddl.Ident, renames []Rename) (*ddl.Snapshot, error) {
	out := s.Clone()
	t, ok := out.Tables[table.String()]
	if !ok {
		return nil, unknown("table", table)
	}
	names := make(map[string]string, len(renames))
	for _, r := range renames {
		if t.Column(r.From.Name) == nil {
			return nil, unknown("column", ddl.Ident{Schema: table.String(), Name: r.From.Name})
		}
		names[r.From.Name] = r.To.Name
	}
	fix := func(col string) string {
		if to, ok := names[col]; ok {
			return to
		}
		return col
	}

	for _, c := range t.Columns {
		c.Name = fix(c.Name)
	}
	for _, idx := range t.Indexes {
		for i := range idx.Columns {
			if !idx.Columns[i].IsExpression {
				idx.Columns[i].Expression = fix(idx.Columns[i].Expression)
			}
		}
	}
	for _, fk := range t.ForeignKeys {
		mapStrings(fk.ColumnsFrom, fix)
	}
	for _, pk := range t.CompositePrimaryKeys {
		mapStrings(pk.Columns, fix)
	}
	for _, u := range t.UniqueConstraints {
		mapStrings(u.Columns, fix)
	}
	for _, other := range out.Tables {
		for _, fk := range other.ForeignKeys {
			if fk.TableTo == t.Name && fk.SchemaTo == t.Schema {
				mapStrings(fk.ColumnsTo, fix)
			}
		}
	}
	return out, nil
}

// RenamePolicies renames policies of one table.
func RenamePolicies(s *ddl.Snapshot, table ddl.Ident, renames []Rename) (*ddl.Snapshot, error) {
	out := s.Clone()
	t, ok := out.Tables[table.String()]
	if !ok {
		return nil, unknown("table", table)
	}
	if err := renameEntries("policy", t.Policies, renames, func(v *ddl.Policy, to ddl.Ident) { v.Name = to.Name }); err != nil {
		return nil, err
	}
	return out, nil
}

// RenameIndPolicies renames individual policies. Their identities carry the
// qualified table name in Schema, matching the snapshot key (see ddl.Key).
func RenameIndPolicies(s *ddl.Snapshot, renames []Rename) (*ddl.Snapshot, error) {
	out := s.Clone()
	err := renameEntries("policy", out.Policies, renames, func(v *ddl.Policy, to ddl.Ident) {
		v.On, v.Name = to.Schema, to.Name
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RenameViews renames or moves views.
func RenameViews(s *ddl.Snapshot, renames []Rename) (*ddl.Snapshot, error) {
	out := s.Clone()
	err := renameEntries("view", out.Views, renames, func(v *ddl.View, to ddl.Ident) {
		v.Schema, v.Name = to.Schema, to.Name
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
