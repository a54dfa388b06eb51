package combiner

import (
	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/ddl"
)

// SQLite can add, drop and rename columns and nothing else: every other
// table change is a recreation.
type SQLite struct{}

// RequiresRecreate implements Capabilities.
func (SQLite) RequiresRecreate(stmt ast.TableStatement, prev, cur *ddl.Table) bool {
	switch n := stmt.(type) {
	case *ast.AlterColumnNode:
		return true
	case *ast.CreateReferenceNode, *ast.DeleteReferenceNode,
		*ast.CreateCompositePKNode, *ast.DeleteCompositePKNode, *ast.AlterCompositePKNode,
		*ast.CreateUniqueNode, *ast.DeleteUniqueNode,
		*ast.CreateCheckNode, *ast.DeleteCheckNode:
		return true
	case *ast.AddColumnNode:
		return n.Column.PrimaryKey || n.Column.IsUnique
	case *ast.DropColumnNode:
		col := prev.Column(n.Column)
		return col != nil && (col.PrimaryKey || prev.IsForeignKeyColumn(n.Column))
	}
	return false
}

// Recreate implements Capabilities.
func (SQLite) Recreate(prev, cur *ddl.Table) []ast.Node { return recreate(prev, cur) }

// LibSQL extends SQLite with ALTER COLUMN ... TO for type, default and
// NOT NULL changes, which it only permits on columns outside foreign keys.
type LibSQL struct{}

// RequiresRecreate implements Capabilities.
func (LibSQL) RequiresRecreate(stmt ast.TableStatement, prev, cur *ddl.Table) bool {
	if n, ok := stmt.(*ast.AlterColumnNode); ok {
		switch n.Type {
		case ast.KindSetType, ast.KindSetDefault, ast.KindDropDefault, ast.KindSetNotNull, ast.KindDropNotNull:
			return cur.IsForeignKeyColumn(n.Column)
		}
	}
	return SQLite{}.RequiresRecreate(stmt, prev, cur)
}

// Recreate implements Capabilities.
func (LibSQL) Recreate(prev, cur *ddl.Table) []ast.Node { return recreate(prev, cur) }

// SingleStore cannot change keys, auto-increment, types or nullability of
// existing columns.
type SingleStore struct{}

// RequiresRecreate implements Capabilities.
func (SingleStore) RequiresRecreate(stmt ast.TableStatement, _, _ *ddl.Table) bool {
	switch n := stmt.(type) {
	case *ast.AlterColumnNode:
		switch n.Type {
		case ast.KindSetPK, ast.KindDropPK, ast.KindSetAutoIncrement, ast.KindDropAutoIncrement,
			ast.KindSetType, ast.KindSetNotNull, ast.KindDropNotNull:
			return true
		}
	case *ast.CreateCompositePKNode, *ast.DeleteCompositePKNode, *ast.AlterCompositePKNode,
		*ast.CreateUniqueNode, *ast.DeleteUniqueNode:
		return true
	case *ast.AddColumnNode:
		return n.Column.PrimaryKey || n.Column.IsUnique
	}
	return false
}

// Recreate implements Capabilities.
func (SingleStore) Recreate(prev, cur *ddl.Table) []ast.Node { return recreate(prev, cur) }
