package planner

import (
	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/platform"
	"github.com/stokaro/snapdiff/migration/internal/compare"
)

// Warner receives non-fatal warnings from the builders. *Plan implements it.
type Warner interface {
	Warn(format string, args ...any)
}

func sortedValues[V any](m map[string]V) []V {
	keys := ddl.SortedKeys(m)
	out := make([]V, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

func indexKind(dialect string) ast.Kind {
	if dialect == platform.Postgres {
		return ast.KindCreateIndexPg
	}
	return ast.KindCreateIndex
}

// supportsReferences reports whether foreign keys are emitted at all.
// SingleStore does not enforce them.
func supportsReferences(dialect string) bool {
	return dialect != platform.SingleStore
}

// PrepareCreateTable builds the statements creating table.
//
// Columns, composite primary keys, unique and check constraints are part of
// CREATE TABLE. Foreign keys are declared inline for the SQLite family and
// added with separate statements everywhere else, so that tables referencing
// each other can be created in any order. Indexes, row-level security and
// policies always follow as separate statements.
func PrepareCreateTable(t Target, table *ddl.Table) []ast.Node {
	node := ast.NewCreateTable(table.Schema, table.Name)
	node.Columns = append(node.Columns, table.Columns...)
	node.PrimaryKeys = sortedValues(table.CompositePrimaryKeys)
	node.Uniques = sortedValues(table.UniqueConstraints)
	node.Checks = sortedValues(table.CheckConstraints)
	node.Policies = ddl.SortedKeys(table.Policies)

	result := []ast.Node{node}
	if platform.IsSQLiteFamily(t.Dialect) {
		node.ForeignKeys = sortedValues(table.ForeignKeys)
	} else if supportsReferences(t.Dialect) {
		for _, fk := range sortedValues(table.ForeignKeys) {
			result = append(result, &ast.CreateReferenceNode{Table: table.Name, Schema: table.Schema, ForeignKey: fk})
		}
	}
	for _, idx := range sortedValues(table.Indexes) {
		result = append(result, &ast.CreateIndexNode{Type: indexKind(t.Dialect), Table: table.Name, Schema: table.Schema, Index: idx})
	}
	if t.Dialect == platform.Postgres {
		if table.HasEffectiveRLS() {
			result = append(result, &ast.EnableRLSNode{Table: table.Name, Schema: table.Schema})
		}
		for _, p := range sortedValues(table.Policies) {
			result = append(result, &ast.CreatePolicyNode{Table: table.Name, Schema: table.Schema, Policy: p})
		}
	}
	return result
}

// PrepareDropTable builds the statement dropping table. Its indexes,
// constraints and policies go with it.
func PrepareDropTable(table *ddl.Table) ast.Node {
	return &ast.DropTableNode{Name: table.Name, Schema: table.Schema}
}

// PrepareRenameTable builds the statements renaming or moving a table. A
// table that changes both schema and name is first moved, then renamed.
func PrepareRenameTable(from, to ddl.Ident) []ast.Node {
	var result []ast.Node
	if from.Schema != to.Schema {
		result = append(result, &ast.SetTableSchemaNode{Name: from.Name, SchemaFrom: from.Schema, SchemaTo: to.Schema})
	}
	if from.Name != to.Name {
		result = append(result, &ast.RenameTableNode{FromSchema: to.Schema, ToSchema: to.Schema, From: from.Name, To: to.Name})
	}
	return result
}

// PrepareRLS builds the statement toggling row-level security (PostgreSQL).
func PrepareRLS(t Target, table *ddl.Table, change *compare.Change[bool]) []ast.Node {
	if change == nil || t.Dialect != platform.Postgres {
		return nil
	}
	if change.New {
		return []ast.Node{&ast.EnableRLSNode{Table: table.Name, Schema: table.Schema}}
	}
	return []ast.Node{&ast.DisableRLSNode{Table: table.Name, Schema: table.Schema}}
}

// PrepareIndexes builds the statements for changed indexes of table. An
// altered index is dropped and created again.
func PrepareIndexes(t Target, table *ddl.Table, delta compare.Delta[*ddl.Index]) []ast.Node {
	var result []ast.Node
	drop := func(idx *ddl.Index) {
		result = append(result, &ast.DropIndexNode{Table: table.Name, Schema: table.Schema, Name: idx.Name})
	}
	create := func(idx *ddl.Index) {
		result = append(result, &ast.CreateIndexNode{Type: indexKind(t.Dialect), Table: table.Name, Schema: table.Schema, Index: idx})
	}
	for _, idx := range delta.Deleted {
		drop(idx)
	}
	for _, ch := range delta.Altered {
		drop(ch.Old)
		create(ch.New)
	}
	for _, idx := range delta.Added {
		create(idx)
	}
	return result
}

// InlineReference returns the foreign key that the SQLite family declares
// together with a newly added column: a single-column key on that column.
func InlineReference(t Target, table *ddl.Table, column string) *ddl.ForeignKey {
	if !platform.IsSQLiteFamily(t.Dialect) {
		return nil
	}
	for _, fk := range sortedValues(table.ForeignKeys) {
		if len(fk.ColumnsFrom) == 1 && fk.ColumnsFrom[0] == column {
			return fk
		}
	}
	return nil
}

// PrepareForeignKeys builds the statements for changed foreign keys of table.
// Foreign keys are never altered in place: an altered key is deleted and
// created again. Keys already declared inline with one of the added columns
// are skipped.
func PrepareForeignKeys(t Target, table *ddl.Table, delta compare.Delta[*ddl.ForeignKey], added []*ddl.Column) []ast.Node {
	if !supportsReferences(t.Dialect) {
		return nil
	}
	inline := map[string]bool{}
	for _, col := range added {
		if fk := InlineReference(t, table, col.Name); fk != nil {
			inline[fk.Name] = true
		}
	}

	var result []ast.Node
	del := func(fk *ddl.ForeignKey) {
		result = append(result, &ast.DeleteReferenceNode{Table: table.Name, Schema: table.Schema, ForeignKey: fk})
	}
	create := func(fk *ddl.ForeignKey) {
		result = append(result, &ast.CreateReferenceNode{Table: table.Name, Schema: table.Schema, ForeignKey: fk})
	}
	for _, fk := range delta.Deleted {
		del(fk)
	}
	for _, ch := range delta.Altered {
		del(ch.Old)
		create(ch.New)
	}
	for _, fk := range delta.Added {
		if !inline[fk.Name] {
			create(fk)
		}
	}
	return result
}

// PrepareCompositePKs builds the statements for changed composite primary
// keys of table.
func PrepareCompositePKs(table *ddl.Table, delta compare.Delta[*ddl.PrimaryKey]) []ast.Node {
	var result []ast.Node
	for _, pk := range delta.Deleted {
		result = append(result, &ast.DeleteCompositePKNode{Table: table.Name, Schema: table.Schema, PrimaryKey: pk})
	}
	for _, ch := range delta.Altered {
		result = append(result, &ast.AlterCompositePKNode{Table: table.Name, Schema: table.Schema, Old: ch.Old, New: ch.New})
	}
	for _, pk := range delta.Added {
		result = append(result, &ast.CreateCompositePKNode{Table: table.Name, Schema: table.Schema, PrimaryKey: pk})
	}
	return result
}

// PrepareUniques builds the statements for changed unique constraints.
func PrepareUniques(table *ddl.Table, delta compare.Delta[*ddl.Unique]) []ast.Node {
	var result []ast.Node
	for _, u := range delta.Deleted {
		result = append(result, &ast.DeleteUniqueNode{Table: table.Name, Schema: table.Schema, Unique: u})
	}
	for _, ch := range delta.Altered {
		result = append(result,
			&ast.DeleteUniqueNode{Table: table.Name, Schema: table.Schema, Unique: ch.Old},
			&ast.CreateUniqueNode{Table: table.Name, Schema: table.Schema, Unique: ch.New})
	}
	for _, u := range delta.Added {
		result = append(result, &ast.CreateUniqueNode{Table: table.Name, Schema: table.Schema, Unique: u})
	}
	return result
}

// PrepareChecks builds the statements for changed check constraints.
func PrepareChecks(table *ddl.Table, delta compare.Delta[*ddl.Check]) []ast.Node {
	var result []ast.Node
	for _, ch := range delta.Deleted {
		result = append(result, &ast.DeleteCheckNode{Table: table.Name, Schema: table.Schema, Check: ch})
	}
	for _, alt := range delta.Altered {
		result = append(result,
			&ast.DeleteCheckNode{Table: table.Name, Schema: table.Schema, Check: alt.Old},
			&ast.CreateCheckNode{Table: table.Name, Schema: table.Schema, Check: alt.New})
	}
	for _, ch := range delta.Added {
		result = append(result, &ast.CreateCheckNode{Table: table.Name, Schema: table.Schema, Check: ch})
	}
	return result
}

// PrepareTableAlteration builds every statement for an altered table: its
// columns, indexes, keys, constraints, row-level security and altered
// policies. Added, deleted and renamed columns and policies are handled by
// their own builders because they come out of rename resolution.
func PrepareTableAlteration(t Target, w Warner, a compare.TableAlteration, added []*ddl.Column) []ast.Node {
	table := a.Cur
	var result []ast.Node
	result = append(result, PrepareRLS(t, table, a.RLS)...)
	result = append(result, PrepareAlterColumns(t, w, a)...)
	result = append(result, PrepareIndexes(t, table, a.Indexes)...)
	result = append(result, PrepareForeignKeys(t, table, a.ForeignKeys, added)...)
	result = append(result, PrepareCompositePKs(table, a.PrimaryKeys)...)
	result = append(result, PrepareUniques(table, a.Uniques)...)
	result = append(result, PrepareChecks(table, a.Checks)...)
	if t.Dialect == platform.Postgres {
		result = append(result, PrepareAlterPolicies(table.Ident(), a.Policies, false)...)
	}
	return result
}
