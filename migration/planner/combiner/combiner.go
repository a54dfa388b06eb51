// Package combiner rewrites a statement list for dialects that cannot alter
// a table in place.
//
// SQLite, LibSQL and SingleStore reject many ALTER TABLE forms. For these
// dialects the sequenced statements are grouped by table and every group
// containing a statement the dialect cannot execute is replaced by a single
// table recreation: a new table is created with the final definition, the
// surviving rows are copied over, the old table is dropped and the new one
// takes its name. Indexes are created again afterwards since they are
// dropped with the old table.
//
// # Output Order
//
// Table renames come first, then column renames, then everything else
// grouped by table in the order each table was first mentioned. Statements
// that do not belong to a table stay where they are relative to the groups.
//
// # Usage Example
//
//	caps, ok := combiner.For(platform.SQLite)
//	if ok {
//		stmts = combiner.Combine(stmts, caps, patchedPrev, cur)
//	}
package combiner

import (
	"log/slog"

	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/platform"
)

// Capabilities describes which statements a dialect can execute in place.
type Capabilities interface {
	// RequiresRecreate reports whether stmt forces the table to be
	// recreated. prev is the table before the migration (with renames
	// applied), cur the table after it.
	RequiresRecreate(stmt ast.TableStatement, prev, cur *ddl.Table) bool
	// Recreate builds the statements replacing prev by cur.
	Recreate(prev, cur *ddl.Table) []ast.Node
}

// For returns the capability set of dialect. ok is false for dialects that
// alter every table in place.
func For(dialect string) (caps Capabilities, ok bool) {
	switch platform.NormalizeDialect(dialect) {
	case platform.SQLite:
		return SQLite{}, true
	case platform.LibSQL:
		return LibSQL{}, true
	case platform.SingleStore:
		return SingleStore{}, true
	}
	return nil, false
}

type group struct {
	table ddl.Ident
	// stmts is nil once the group has been replaced by a recreation.
	stmts     []ast.Node
	recreated bool
}

// Combine groups stmts by table and replaces the groups that need it by a
// table recreation. prev must be the previous snapshot with every rename
// applied so that both snapshots address a table by the same key.
func Combine(stmts []ast.Node, caps Capabilities, prev, cur *ddl.Snapshot) []ast.Node {
	var (
		tableRenames  []ast.Node
		columnRenames []ast.Node
		groups        []*group
		byTable       = map[ddl.Ident]*group{}
	)

	for _, stmt := range stmts {
		switch stmt.(type) {
		case *ast.RenameTableNode, *ast.SetTableSchemaNode:
			tableRenames = append(tableRenames, stmt)
			continue
		case *ast.RenameColumnNode:
			columnRenames = append(columnRenames, stmt)
			continue
		}

		ts, ok := stmt.(ast.TableStatement)
		if !ok {
			groups = append(groups, &group{stmts: []ast.Node{stmt}})
			continue
		}
		id := ts.TableIdent()
		g, seen := byTable[id]
		if !seen {
			g = &group{table: id}
			byTable[id] = g
			groups = append(groups, g)
		}
		if g.recreated {
			continue
		}

		key := ddl.Key(id.Schema, id.Name)
		prevTable, curTable := prev.Tables[key], cur.Tables[key]
		if prevTable != nil && curTable != nil && caps.RequiresRecreate(ts, prevTable, curTable) {
			slog.Debug("Recreating table", "table", key, "trigger", stmt.Kind())
			g.stmts = caps.Recreate(prevTable, curTable)
			g.recreated = true
			continue
		}
		g.stmts = append(g.stmts, stmt)
	}

	result := make([]ast.Node, 0, len(stmts))
	result = append(result, tableRenames...)
	result = append(result, columnRenames...)
	for _, g := range groups {
		result = append(result, g.stmts...)
	}
	return result
}

// recreate builds the recreation of prev as cur. The copied columns are the
// stored columns present in both versions; generated columns are computed
// by the new table.
func recreate(prev, cur *ddl.Table) []ast.Node {
	node := &ast.RecreateTableNode{
		TableDef: ast.TableDef{
			Name:        cur.Name,
			Schema:      cur.Schema,
			Columns:     append([]*ddl.Column(nil), cur.Columns...),
			PrimaryKeys: sortedValues(cur.CompositePrimaryKeys),
			ForeignKeys: sortedValues(cur.ForeignKeys),
			Uniques:     sortedValues(cur.UniqueConstraints),
			Checks:      sortedValues(cur.CheckConstraints),
		},
	}
	for _, col := range prev.Columns {
		if col.Generated != nil {
			continue
		}
		if c := cur.Column(col.Name); c != nil && c.Generated == nil {
			node.CopyColumns = append(node.CopyColumns, col.Name)
		}
	}

	result := []ast.Node{node}
	for _, idx := range sortedValues(cur.Indexes) {
		result = append(result, &ast.CreateIndexNode{Type: ast.KindCreateIndex, Table: cur.Name, Schema: cur.Schema, Index: idx})
	}
	return result
}

func sortedValues[V any](m map[string]V) []V {
	keys := ddl.SortedKeys(m)
	out := make([]V, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}
