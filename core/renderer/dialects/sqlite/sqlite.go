// Package sqlite renders migration statements as SQLite and LibSQL SQL.
//
// SQLite can only add, drop and rename columns in place. Every other table
// change reaches the renderer as a RecreateTableNode built by the combiner.
// LibSQL additionally supports ALTER COLUMN for columns that are not part of
// a foreign key.
package sqlite

import (
	"fmt"
	"strings"

	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/platform"
	"github.com/stokaro/snapdiff/core/renderer/dialects/internal/bufwriter"
	"github.com/stokaro/snapdiff/core/renderer/types"
)

var (
	_ types.RenderVisitor = (*Renderer)(nil)
)

// Renderer provides SQLite-specific SQL rendering
type Renderer struct {
	w      bufwriter.Writer
	libsql bool
	push   bool
}

// New creates a new SQLite renderer
func New() *Renderer {
	return &Renderer{}
}

// NewLibSQL creates a renderer for LibSQL (Turso)
func NewLibSQL() *Renderer {
	return &Renderer{libsql: true}
}

// SetPushMode controls whether RecreateTableNode carries its own
// foreign_keys pragmas. In push mode the caller wraps the whole batch instead.
func (r *Renderer) SetPushMode(push bool) {
	r.push = push
}

func (r *Renderer) Dialect() string {
	if r.libsql {
		return platform.LibSQL
	}
	return platform.SQLite
}

func (r *Renderer) Reset() {
	r.w.Reset()
}

func (r *Renderer) Output() string {
	return r.w.String()
}

// Render renders an AST node to SQL and returns the result
func (r *Renderer) Render(node ast.Node) (string, error) {
	r.Reset()
	if err := node.Accept(r); err != nil {
		return "", fmt.Errorf("error rendering %s: %w", node.Kind(), err)
	}
	return r.Output(), nil
}

func (r *Renderer) unsupported(node ast.Node) error {
	return types.Unsupported(r.Dialect(), node)
}

func quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func quoteList(names []string, sep string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	return strings.Join(quoted, sep)
}

func columnDef(c *ddl.Column) string {
	var sb strings.Builder
	sb.WriteString(quote(c.Name))
	sb.WriteString(" ")
	sb.WriteString(c.Type)
	if c.PrimaryKey {
		sb.WriteString(" PRIMARY KEY")
		if c.AutoIncrement {
			sb.WriteString(" AUTOINCREMENT")
		}
	}
	if c.Default != nil {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(c.Default.String())
	}
	if c.Generated != nil {
		typ := "VIRTUAL"
		if c.Generated.Type == "stored" {
			typ = "STORED"
		}
		sb.WriteString(" GENERATED ALWAYS AS ")
		sb.WriteString(generatedExpr(c.Generated.As))
		sb.WriteString(" ")
		sb.WriteString(typ)
	}
	if c.NotNull {
		sb.WriteString(" NOT NULL")
	}
	if c.IsUnique {
		sb.WriteString(" UNIQUE")
	}
	return sb.String()
}

// generatedExpr parenthesizes the expression unless it already is.
func generatedExpr(expr string) string {
	if strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")") {
		return expr
	}
	return "(" + expr + ")"
}

func referenceTarget(fk *ddl.ForeignKey) string {
	var sb strings.Builder
	sb.WriteString("REFERENCES ")
	sb.WriteString(quote(fk.TableTo))
	sb.WriteString("(")
	sb.WriteString(quoteList(fk.ColumnsTo, ","))
	sb.WriteString(")")
	if fk.OnUpdate != "" {
		sb.WriteString(" ON UPDATE ")
		sb.WriteString(strings.ToLower(fk.OnUpdate))
	}
	if fk.OnDelete != "" {
		sb.WriteString(" ON DELETE ")
		sb.WriteString(strings.ToLower(fk.OnDelete))
	}
	return sb.String()
}

func (r *Renderer) writeCreateTable(name string, def *ast.TableDef) {
	defs := make([]string, 0, len(def.Columns))
	for _, c := range def.Columns {
		defs = append(defs, columnDef(c))
	}
	for _, pk := range def.PrimaryKeys {
		defs = append(defs, "PRIMARY KEY("+quoteList(pk.Columns, ", ")+")")
	}
	for _, fk := range def.ForeignKeys {
		defs = append(defs, "FOREIGN KEY ("+quoteList(fk.ColumnsFrom, ",")+") "+referenceTarget(fk))
	}
	for _, u := range def.Uniques {
		defs = append(defs, "CONSTRAINT "+quote(u.Name)+" UNIQUE("+quoteList(u.Columns, ",")+")")
	}
	for _, ch := range def.Checks {
		defs = append(defs, "CONSTRAINT "+quote(ch.Name)+" CHECK("+ch.Value+")")
	}

	r.w.WriteLinef("CREATE TABLE %s (", quote(name))
	for i, d := range defs {
		if i < len(defs)-1 {
			d += ","
		}
		r.w.WriteLine("\t" + d)
	}
	r.w.WriteLine(");")
}

func (r *Renderer) VisitCreateSchema(node *ast.CreateSchemaNode) error { return r.unsupported(node) }
func (r *Renderer) VisitDropSchema(node *ast.DropSchemaNode) error     { return r.unsupported(node) }
func (r *Renderer) VisitRenameSchema(node *ast.RenameSchemaNode) error { return r.unsupported(node) }

func (r *Renderer) VisitCreateEnum(node *ast.CreateEnumNode) error     { return r.unsupported(node) }
func (r *Renderer) VisitDropEnum(node *ast.DropEnumNode) error         { return r.unsupported(node) }
func (r *Renderer) VisitRenameEnum(node *ast.RenameEnumNode) error     { return r.unsupported(node) }
func (r *Renderer) VisitMoveEnum(node *ast.MoveEnumNode) error         { return r.unsupported(node) }
func (r *Renderer) VisitAddEnumValue(node *ast.AddEnumValueNode) error { return r.unsupported(node) }
func (r *Renderer) VisitRecreateEnum(node *ast.RecreateEnumNode) error { return r.unsupported(node) }

func (r *Renderer) VisitCreateSequence(node *ast.CreateSequenceNode) error {
	return r.unsupported(node)
}
func (r *Renderer) VisitDropSequence(node *ast.DropSequenceNode) error { return r.unsupported(node) }
func (r *Renderer) VisitRenameSequence(node *ast.RenameSequenceNode) error {
	return r.unsupported(node)
}
func (r *Renderer) VisitMoveSequence(node *ast.MoveSequenceNode) error   { return r.unsupported(node) }
func (r *Renderer) VisitAlterSequence(node *ast.AlterSequenceNode) error { return r.unsupported(node) }

func (r *Renderer) VisitCreateRole(node *ast.CreateRoleNode) error { return r.unsupported(node) }
func (r *Renderer) VisitDropRole(node *ast.DropRoleNode) error     { return r.unsupported(node) }
func (r *Renderer) VisitRenameRole(node *ast.RenameRoleNode) error { return r.unsupported(node) }
func (r *Renderer) VisitAlterRole(node *ast.AlterRoleNode) error   { return r.unsupported(node) }

// VisitCreateTable renders CREATE TABLE. Foreign keys are declared inline
// because SQLite cannot add them later.
func (r *Renderer) VisitCreateTable(node *ast.CreateTableNode) error {
	r.writeCreateTable(node.Name, &node.TableDef)
	return nil
}

func (r *Renderer) VisitDropTable(node *ast.DropTableNode) error {
	r.w.WriteLinef("DROP TABLE %s;", quote(node.Name))
	return nil
}

func (r *Renderer) VisitRenameTable(node *ast.RenameTableNode) error {
	r.w.WriteLinef("ALTER TABLE %s RENAME TO %s;", quote(node.From), quote(node.To))
	return nil
}

func (r *Renderer) VisitSetTableSchema(node *ast.SetTableSchemaNode) error {
	return r.unsupported(node)
}

// VisitRecreateTable rebuilds the table: create under a temporary name, copy
// the surviving columns, drop the original and rename the copy.
func (r *Renderer) VisitRecreateTable(node *ast.RecreateTableNode) error {
	tmp := "__new_" + node.Name
	if !r.push {
		r.w.WriteLine("PRAGMA foreign_keys=OFF;")
	}
	r.writeCreateTable(tmp, &node.TableDef)
	if len(node.CopyColumns) > 0 {
		cols := make([]string, len(node.CopyColumns))
		for i, c := range node.CopyColumns {
			cols[i] = `"` + c + `"`
		}
		list := strings.Join(cols, ", ")
		r.w.WriteLinef("INSERT INTO %s(%s) SELECT %s FROM %s;", quote(tmp), list, list, quote(node.Name))
	}
	r.w.WriteLinef("DROP TABLE %s;", quote(node.Name))
	r.w.WriteLinef("ALTER TABLE %s RENAME TO %s;", quote(tmp), quote(node.Name))
	if !r.push {
		r.w.WriteLine("PRAGMA foreign_keys=ON;")
	}
	return nil
}

func (r *Renderer) VisitEnableRLS(node *ast.EnableRLSNode) error   { return r.unsupported(node) }
func (r *Renderer) VisitDisableRLS(node *ast.DisableRLSNode) error { return r.unsupported(node) }

// VisitAddColumn renders ALTER TABLE ... ADD with an optional inline reference
func (r *Renderer) VisitAddColumn(node *ast.AddColumnNode) error {
	def := columnDef(node.Column)
	if node.Reference != nil {
		def += " " + referenceTarget(node.Reference)
	}
	r.w.WriteLinef("ALTER TABLE %s ADD %s;", quote(node.Table), def)
	return nil
}

func (r *Renderer) VisitDropColumn(node *ast.DropColumnNode) error {
	r.w.WriteLinef("ALTER TABLE %s DROP COLUMN %s;", quote(node.Table), quote(node.Column))
	return nil
}

func (r *Renderer) VisitRenameColumn(node *ast.RenameColumnNode) error {
	r.w.WriteLinef("ALTER TABLE %s RENAME COLUMN %s TO %s;", quote(node.Table), quote(node.From), quote(node.To))
	return nil
}

// VisitAlterColumn is only available on LibSQL, which redefines the column
// with ALTER COLUMN ... TO.
func (r *Renderer) VisitAlterColumn(node *ast.AlterColumnNode) error {
	if !r.libsql {
		return r.unsupported(node)
	}
	switch node.Type {
	case ast.KindSetType, ast.KindSetDefault, ast.KindDropDefault, ast.KindSetNotNull, ast.KindDropNotNull:
	default:
		return r.unsupported(node)
	}
	c := node.Def
	var sb strings.Builder
	sb.WriteString(quote(c.Name))
	sb.WriteString(" ")
	sb.WriteString(c.Type)
	if c.Default != nil {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(c.Default.String())
	}
	if c.NotNull {
		sb.WriteString(" NOT NULL")
	}
	r.w.WriteLinef("ALTER TABLE %s ALTER COLUMN %s TO %s;", quote(node.Table), quote(node.Column), sb.String())
	return nil
}

// VisitCreateIndex renders CREATE [UNIQUE] INDEX with an optional partial clause
func (r *Renderer) VisitCreateIndex(node *ast.CreateIndexNode) error {
	idx := node.Index
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		if c.IsExpression {
			cols[i] = c.Expression
		} else {
			cols[i] = quote(c.Expression)
		}
	}
	unique := ""
	if idx.IsUnique {
		unique = "UNIQUE "
	}
	where := ""
	if idx.Where != "" {
		where = " WHERE " + idx.Where
	}
	r.w.WriteLinef("CREATE %sINDEX %s ON %s (%s)%s;", unique, quote(idx.Name), quote(node.Table), strings.Join(cols, ","), where)
	return nil
}

func (r *Renderer) VisitDropIndex(node *ast.DropIndexNode) error {
	r.w.WriteLinef("DROP INDEX %s;", quote(node.Name))
	return nil
}

// Constraint changes are always expressed as a table recreate.
func (r *Renderer) VisitCreateReference(node *ast.CreateReferenceNode) error {
	return r.unsupported(node)
}
func (r *Renderer) VisitDeleteReference(node *ast.DeleteReferenceNode) error {
	return r.unsupported(node)
}
func (r *Renderer) VisitCreateCompositePK(node *ast.CreateCompositePKNode) error {
	return r.unsupported(node)
}
func (r *Renderer) VisitDeleteCompositePK(node *ast.DeleteCompositePKNode) error {
	return r.unsupported(node)
}
func (r *Renderer) VisitAlterCompositePK(node *ast.AlterCompositePKNode) error {
	return r.unsupported(node)
}
func (r *Renderer) VisitCreateUnique(node *ast.CreateUniqueNode) error { return r.unsupported(node) }
func (r *Renderer) VisitDeleteUnique(node *ast.DeleteUniqueNode) error { return r.unsupported(node) }
func (r *Renderer) VisitCreateCheck(node *ast.CreateCheckNode) error   { return r.unsupported(node) }
func (r *Renderer) VisitDeleteCheck(node *ast.DeleteCheckNode) error   { return r.unsupported(node) }

func (r *Renderer) VisitCreateView(node *ast.CreateViewNode) error {
	r.w.WriteLinef("CREATE VIEW %s AS %s;", quote(node.View.Name), node.View.Definition)
	return nil
}

func (r *Renderer) VisitDropView(node *ast.DropViewNode) error {
	r.w.WriteLinef("DROP VIEW %s;", quote(node.Name))
	return nil
}

func (r *Renderer) VisitRenameView(node *ast.RenameViewNode) error { return r.unsupported(node) }
func (r *Renderer) VisitAlterViewSchema(node *ast.AlterViewSchemaNode) error {
	return r.unsupported(node)
}
func (r *Renderer) VisitAlterView(node *ast.AlterViewNode) error { return r.unsupported(node) }

func (r *Renderer) VisitCreatePolicy(node *ast.CreatePolicyNode) error { return r.unsupported(node) }
func (r *Renderer) VisitDropPolicy(node *ast.DropPolicyNode) error     { return r.unsupported(node) }
func (r *Renderer) VisitRenamePolicy(node *ast.RenamePolicyNode) error { return r.unsupported(node) }
func (r *Renderer) VisitAlterPolicy(node *ast.AlterPolicyNode) error   { return r.unsupported(node) }
