package planner

import (
	"strings"

	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/platform"
	"github.com/stokaro/snapdiff/migration/internal/compare"
)

// PrepareCreateSchema builds CREATE SCHEMA.
func PrepareCreateSchema(s *ddl.Schema) ast.Node { return &ast.CreateSchemaNode{Name: s.Name} }

// PrepareDropSchema builds DROP SCHEMA.
func PrepareDropSchema(s *ddl.Schema) ast.Node { return &ast.DropSchemaNode{Name: s.Name} }

// PrepareRenameSchema builds ALTER SCHEMA ... RENAME TO.
func PrepareRenameSchema(from, to string) ast.Node {
	return &ast.RenameSchemaNode{From: from, To: to}
}

// PrepareCreateEnum builds CREATE TYPE ... AS ENUM.
func PrepareCreateEnum(e *ddl.Enum) ast.Node {
	return ast.NewEnum(e.Schema, e.Name, e.Values...)
}

// PrepareDropEnum builds DROP TYPE.
func PrepareDropEnum(e *ddl.Enum) ast.Node {
	return &ast.DropEnumNode{Name: e.Name, Schema: e.Schema}
}

// PrepareRenameEnum builds the statements moving and renaming an enum. The
// move comes first, the rename then happens in the new schema.
func PrepareRenameEnum(from, to ddl.Ident) []ast.Node {
	var result []ast.Node
	if from.Schema != to.Schema {
		result = append(result, &ast.MoveEnumNode{Name: from.Name, SchemaFrom: from.Schema, SchemaTo: to.Schema})
	}
	if from.Name != to.Name {
		result = append(result, &ast.RenameEnumNode{Schema: to.Schema, From: from.Name, To: to.Name})
	}
	return result
}

// EnumColumns lists the columns of prev whose type is the enum, for the enum
// replacement. Only tables that still exist in cur are considered: the
// others are dropped before the enum is replaced. The default that is put
// back after the replacement is the one of cur when the column keeps one,
// since a previous default may name a deleted value.
func EnumColumns(prev, cur *ddl.Snapshot, enum ddl.Ident) []ast.EnumColumn {
	var out []ast.EnumColumn
	for _, key := range ddl.SortedKeys(prev.Tables) {
		t := prev.Tables[key]
		curTable, ok := cur.Tables[key]
		if !ok {
			continue
		}
		for _, col := range t.Columns {
			base, isArray := strings.CutSuffix(col.Type, "[]")
			if col.TypeSchema != enum.Schema || base != enum.Name {
				continue
			}
			def := col.Default
			if c := curTable.Column(col.Name); c != nil && c.Default != nil {
				def = c.Default
			}
			out = append(out, ast.EnumColumn{
				Table:   t.Name,
				Schema:  t.Schema,
				Column:  col.Name,
				IsArray: isArray,
				Default: def,
			})
		}
	}
	return out
}

// PrepareEnumValueChanges builds the statements for an altered enum.
//
// Added values become ADD VALUE statements positioned with BEFORE. When
// values were deleted or reordered the type is replaced as a whole instead;
// the ADD VALUE statements are still emitted and later removed by Filter,
// which keeps value additions and the replacement decision independent.
func PrepareEnumValueChanges(a compare.EnumAlteration, columns []ast.EnumColumn) []ast.Node {
	var result []ast.Node
	for _, v := range a.Added {
		result = append(result, &ast.AddEnumValueNode{Name: a.Name, Schema: a.Schema, Value: v.Value, Before: v.Before})
	}
	if a.NeedsRecreate() {
		result = append(result, &ast.RecreateEnumNode{
			Name:          a.Name,
			Schema:        a.Schema,
			Values:        a.Cur.Values,
			DeletedValues: a.Deleted,
			Columns:       columns,
		})
	}
	return result
}

// PrepareCreateSequence builds CREATE SEQUENCE.
func PrepareCreateSequence(s *ddl.Sequence) ast.Node {
	return &ast.CreateSequenceNode{Name: s.Name, Schema: s.Schema, Options: s.SequenceOptions}
}

// PrepareDropSequence builds DROP SEQUENCE.
func PrepareDropSequence(s *ddl.Sequence) ast.Node {
	return &ast.DropSequenceNode{Name: s.Name, Schema: s.Schema}
}

// PrepareRenameSequence builds the statements moving and renaming a sequence.
func PrepareRenameSequence(from, to ddl.Ident) []ast.Node {
	var result []ast.Node
	if from.Schema != to.Schema {
		result = append(result, &ast.MoveSequenceNode{Name: from.Name, SchemaFrom: from.Schema, SchemaTo: to.Schema})
	}
	if from.Name != to.Name {
		result = append(result, &ast.RenameSequenceNode{Schema: to.Schema, From: from.Name, To: to.Name})
	}
	return result
}

// PrepareAlterSequence builds ALTER SEQUENCE with the new options.
func PrepareAlterSequence(s *ddl.Sequence) ast.Node {
	return &ast.AlterSequenceNode{Name: s.Name, Schema: s.Schema, Options: s.SequenceOptions}
}

// PrepareCreateRole builds CREATE ROLE.
func PrepareCreateRole(r *ddl.Role) ast.Node { return ast.NewCreateRole(r) }

// PrepareDropRole builds DROP ROLE.
func PrepareDropRole(r *ddl.Role) ast.Node { return &ast.DropRoleNode{Name: r.Name} }

// PrepareRenameRole builds ALTER ROLE ... RENAME TO.
func PrepareRenameRole(from, to string) ast.Node {
	return &ast.RenameRoleNode{From: from, To: to}
}

// PrepareAlterRole builds ALTER ROLE with the new attributes.
func PrepareAlterRole(r *ddl.Role) ast.Node {
	return &ast.AlterRoleNode{Name: r.Name, CreateDB: r.CreateDB, CreateRole: r.CreateRole, Inherit: r.Inherit}
}

// PrepareCreateView builds CREATE VIEW. Views managed elsewhere are skipped.
func PrepareCreateView(v *ddl.View) []ast.Node {
	if v.IsExisting {
		return nil
	}
	return []ast.Node{&ast.CreateViewNode{View: v}}
}

// PrepareDropView builds DROP VIEW. Views managed elsewhere are skipped.
func PrepareDropView(v *ddl.View) []ast.Node {
	if v.IsExisting {
		return nil
	}
	return []ast.Node{&ast.DropViewNode{Name: v.Name, Schema: v.Schema, Materialized: v.Materialized}}
}

// PrepareRenameView builds the statements moving and renaming a view. The
// SQLite family cannot rename a view; it is dropped and created again.
func PrepareRenameView(t Target, prev, cur *ddl.View) []ast.Node {
	if prev.IsExisting || cur.IsExisting {
		return nil
	}
	if platform.IsSQLiteFamily(t.Dialect) {
		return []ast.Node{
			&ast.DropViewNode{Name: prev.Name, Schema: prev.Schema, Materialized: prev.Materialized},
			&ast.CreateViewNode{View: cur},
		}
	}
	var result []ast.Node
	if prev.Schema != cur.Schema {
		result = append(result, &ast.AlterViewSchemaNode{
			Name: prev.Name, SchemaFrom: prev.Schema, SchemaTo: cur.Schema, Materialized: cur.Materialized,
		})
	}
	if prev.Name != cur.Name {
		result = append(result, &ast.RenameViewNode{
			Schema: cur.Schema, From: prev.Name, To: cur.Name, Materialized: cur.Materialized,
		})
	}
	return result
}

// PrepareAlterView builds the statements for an altered view.
//
// PostgreSQL drops and creates a view whose definition changed and alters
// storage parameters, tablespace and access method in place. The MySQL
// family replaces the definition with ALTER VIEW. The SQLite family always
// drops and creates.
func PrepareAlterView(t Target, a compare.ViewAlteration) []ast.Node {
	recreate := []ast.Node{
		&ast.DropViewNode{Name: a.Prev.Name, Schema: a.Prev.Schema, Materialized: a.Prev.Materialized},
		&ast.CreateViewNode{View: a.Cur},
	}
	switch {
	case isMySQLFamily(t.Dialect):
		if a.Definition || a.Attributes {
			return []ast.Node{&ast.AlterViewNode{Type: ast.KindAlterView, Name: a.Name, Schema: a.Schema, View: a.Cur}}
		}
		return nil
	case t.Dialect != platform.Postgres:
		if a.Definition {
			return recreate
		}
		return nil
	case a.Definition:
		return recreate
	}

	var result []ast.Node
	alter := func(kind ast.Kind) *ast.AlterViewNode {
		n := &ast.AlterViewNode{Type: kind, Name: a.Name, Schema: a.Schema, Materialized: a.Cur.Materialized}
		result = append(result, n)
		return n
	}
	if len(a.SetWith) > 0 {
		alter(ast.KindAlterViewAddWith).With = a.SetWith
	}
	if len(a.ResetWith) > 0 {
		alter(ast.KindAlterViewDropWith).With = a.ResetWith
	}
	if a.Tablespace != nil {
		alter(ast.KindAlterViewTablespace).Tablespace = a.Tablespace.New
	}
	if a.Using != nil {
		alter(ast.KindAlterViewUsing).Using = a.Using.New
	}
	return result
}

// policyTarget returns the table a policy statement applies to. Individual
// policies carry it in On.
func policyTarget(table ddl.Ident, p *ddl.Policy) ddl.Ident {
	if p.On == "" {
		return table
	}
	schema, name := ddl.SplitKey(p.On)
	return ddl.Ident{Schema: schema, Name: name}
}

// PrepareCreatePolicies builds CREATE POLICY for policies of table. For
// individual policies table is ignored and individual must be set.
func PrepareCreatePolicies(table ddl.Ident, policies []*ddl.Policy, individual bool) []ast.Node {
	result := make([]ast.Node, 0, len(policies))
	for _, p := range policies {
		on := policyTarget(table, p)
		result = append(result, &ast.CreatePolicyNode{Table: on.Name, Schema: on.Schema, Policy: p, Individual: individual})
	}
	return result
}

// PrepareDropPolicies builds DROP POLICY for policies of table.
func PrepareDropPolicies(table ddl.Ident, policies []*ddl.Policy, individual bool) []ast.Node {
	result := make([]ast.Node, 0, len(policies))
	for _, p := range policies {
		on := policyTarget(table, p)
		result = append(result, &ast.DropPolicyNode{Table: on.Name, Schema: on.Schema, Policy: p, Individual: individual})
	}
	return result
}

// PrepareRenamePolicy builds ALTER POLICY ... RENAME TO.
func PrepareRenamePolicy(table ddl.Ident, from, to *ddl.Policy, individual bool) ast.Node {
	on := policyTarget(table, to)
	return &ast.RenamePolicyNode{Table: on.Name, Schema: on.Schema, From: from.Name, To: to.Name, Individual: individual}
}

// PrepareAlterPolicies builds ALTER POLICY for policies whose definition
// changed.
func PrepareAlterPolicies(table ddl.Ident, changes []compare.Change[*ddl.Policy], individual bool) []ast.Node {
	result := make([]ast.Node, 0, len(changes))
	for _, ch := range changes {
		on := policyTarget(table, ch.New)
		result = append(result, &ast.AlterPolicyNode{Table: on.Name, Schema: on.Schema, Old: ch.Old, New: ch.New, Individual: individual})
	}
	return result
}
