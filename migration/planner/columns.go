package planner

import (
	"strings"

	"github.com/stokaro/snapdiff/config"
	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/platform"
	"github.com/stokaro/snapdiff/migration/internal/compare"
)

func isMySQLFamily(dialect string) bool {
	return dialect == platform.MySQL || dialect == platform.SingleStore
}

func isStored(g *ddl.Generated) bool {
	return g != nil && strings.EqualFold(g.Type, "stored")
}

// PrepareAddColumns builds the statements adding columns to table.
//
// SQLite cannot add a stored generated column with ALTER TABLE; such a column
// is skipped with a warning.
func PrepareAddColumns(t Target, w Warner, table *ddl.Table, columns []*ddl.Column) []ast.Node {
	var result []ast.Node
	for _, col := range columns {
		if platform.IsSQLiteFamily(t.Dialect) && isStored(col.Generated) {
			w.Warn("%s cannot add stored generated column %q to table %q, skipping it",
				t.Dialect, col.Name, ddl.Key(table.Schema, table.Name))
			continue
		}
		result = append(result, &ast.AddColumnNode{
			Table:     table.Name,
			Schema:    table.Schema,
			Column:    col,
			Reference: InlineReference(t, table, col.Name),
		})
	}
	return result
}

// PrepareDropColumns builds the statements dropping columns from table.
func PrepareDropColumns(table *ddl.Table, columns []*ddl.Column) []ast.Node {
	result := make([]ast.Node, 0, len(columns))
	for _, col := range columns {
		result = append(result, &ast.DropColumnNode{Table: table.Name, Schema: table.Schema, Column: col.Name})
	}
	return result
}

// PrepareRenameColumn builds the statement renaming a column of table.
func PrepareRenameColumn(table ddl.Ident, from, to string) ast.Node {
	return &ast.RenameColumnNode{Table: table.Name, Schema: table.Schema, From: from, To: to}
}

func inlineUniqueName(table string, u *ddl.Unique) *ddl.Unique {
	if u.Name != "" {
		return u
	}
	named := *u
	named.Name = ddl.UniqueName(table, u.Columns)
	return &named
}

// PrepareAlterColumns builds the statements for every altered column of a
// table. Each changed property becomes its own statement because most
// dialects need a separate ALTER COLUMN clause per property.
//
// # Dialect Rules
//
//   - Identity columns only exist in PostgreSQL, ON UPDATE only in MySQL and
//     SingleStore, and auto-increment everywhere except PostgreSQL.
//   - PostgreSQL cannot change a generation expression in place: the column is
//     dropped and added again, and a warning reports the data loss.
//   - MySQL refuses to alter a generation expression when pushing; the change
//     is skipped with a warning.
//   - MySQL does not emit set_pk for a column that becomes the primary key
//     through auto-increment: set_autoincrement declares the key itself.
//   - MySQL does not drop the primary key when the type goes from
//     bigint unsigned to serial, which implies the key.
//
// Primary key drops of all columns come first so that a key can move from
// one column to another.
func PrepareAlterColumns(t Target, w Warner, a compare.TableAlteration) []ast.Node {
	table := a.Cur
	var drops, result []ast.Node
	for _, ca := range a.Columns {
		d, r := alterColumn(t, w, table, ca)
		drops = append(drops, d...)
		result = append(result, r...)
	}
	return append(drops, result...)
}

func alterColumn(t Target, w Warner, table *ddl.Table, ca compare.ColumnAlteration) (pkDrops, result []ast.Node) {
	mysqlLike := isMySQLFamily(t.Dialect)
	node := func(kind ast.Kind) *ast.AlterColumnNode {
		return ast.NewAlterColumn(kind, table, ca.New)
	}
	add := func(n *ast.AlterColumnNode) {
		result = append(result, n)
	}
	qualified := ddl.Key(table.Schema, table.Name)

	if ca.Default != nil && ca.Default.Kind == compare.Deleted {
		n := node(ast.KindDropDefault)
		n.OldDefault = ca.Default.Old
		add(n)
	}
	if ca.Type != nil {
		n := node(ast.KindSetType)
		n.OldType = ca.Old.Type
		add(n)
	}
	if ca.Default != nil && ca.Default.Kind != compare.Deleted {
		n := node(ast.KindSetDefault)
		n.OldDefault = ca.Default.Old
		add(n)
	}
	if ca.NotNull != nil {
		if ca.NotNull.New {
			add(node(ast.KindSetNotNull))
		} else {
			add(node(ast.KindDropNotNull))
		}
	}

	if ca.Identity != nil && t.Dialect == platform.Postgres {
		var n *ast.AlterColumnNode
		switch ca.Identity.Kind {
		case compare.Added:
			n = node(ast.KindSetIdentity)
		case compare.Deleted:
			n = node(ast.KindDropIdentity)
		default:
			n = node(ast.KindChangeIdentity)
		}
		n.OldIdentity = ca.Identity.Old
		add(n)
	}

	if ca.Generated != nil {
		switch ca.Generated.Kind {
		case compare.Added:
			if t.Dialect == platform.Postgres {
				w.Warn("column %q of table %q becomes generated: it is dropped and added again, existing data is lost", ca.Name, qualified)
			}
			add(node(ast.KindSetGenerated))
		case compare.Deleted:
			n := node(ast.KindDropGenerated)
			n.OldGenerated = ca.Generated.Old
			add(n)
		default:
			switch {
			case mysqlLike && t.Action == config.ActionPush:
				w.Warn("changing the generation expression of column %q of table %q is not supported when pushing to %s, skipping it",
					ca.Name, qualified, t.Dialect)
			default:
				if t.Dialect == platform.Postgres {
					w.Warn("generation expression of column %q of table %q changed: it is dropped and added again, existing data is lost", ca.Name, qualified)
				}
				n := node(ast.KindAlterGenerated)
				n.OldGenerated = ca.Generated.Old
				add(n)
			}
		}
	}

	autoIncrementKey := mysqlLike && ca.AutoIncrement != nil && ca.AutoIncrement.New &&
		ca.PrimaryKey != nil && ca.PrimaryKey.New
	serialKey := mysqlLike && ca.Type != nil &&
		strings.EqualFold(strings.TrimSpace(ca.Old.Type), "bigint unsigned") &&
		strings.EqualFold(strings.TrimSpace(ca.New.Type), "serial")
	if ca.PrimaryKey != nil {
		switch {
		case ca.PrimaryKey.New && !autoIncrementKey:
			add(node(ast.KindSetPK))
		case !ca.PrimaryKey.New && !serialKey:
			n := node(ast.KindDropPK)
			if t.Dialect == platform.Postgres {
				n.ConstraintName = ddl.DefaultPrimaryKeyConstraint(table.Name)
			}
			pkDrops = append(pkDrops, n)
		}
	}

	if ca.AutoIncrement != nil && t.Dialect != platform.Postgres {
		if ca.AutoIncrement.New {
			n := node(ast.KindSetAutoIncrement)
			n.WithPrimaryKey = autoIncrementKey
			add(n)
		} else {
			add(node(ast.KindDropAutoIncrement))
		}
	}

	if ca.OnUpdate != nil && mysqlLike {
		if ca.OnUpdate.New {
			add(node(ast.KindSetOnUpdate))
		} else {
			add(node(ast.KindDropOnUpdate))
		}
	}

	if ca.Unique != nil {
		if ca.Unique.Old != nil {
			result = append(result, &ast.DeleteUniqueNode{Table: table.Name, Schema: table.Schema, Unique: inlineUniqueName(table.Name, ca.Unique.Old)})
		}
		if ca.Unique.New != nil {
			result = append(result, &ast.CreateUniqueNode{Table: table.Name, Schema: table.Schema, Unique: inlineUniqueName(table.Name, ca.Unique.New)})
		}
	}
	return pkDrops, result
}
