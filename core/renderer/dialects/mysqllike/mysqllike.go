// Package mysqllike holds the rendering shared by MySQL and SingleStore.
//
// Dialect packages embed Renderer and override the Visit methods whose SQL
// differs. Statements that only exist in PostgreSQL (schemas, enum types,
// sequences, roles, policies, identity columns) are rejected with
// types.ErrUnsupported.
package mysqllike

import (
	"fmt"
	"strings"

	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/renderer/dialects/internal/bufwriter"
	"github.com/stokaro/snapdiff/core/renderer/types"
)

// Renderer renders the MySQL family of dialects.
type Renderer struct {
	dialect string
	W       *bufwriter.Writer
}

// New creates a renderer that reports dialect and writes to w.
func New(dialect string, w *bufwriter.Writer) *Renderer {
	return &Renderer{dialect: dialect, W: w}
}

func (r *Renderer) Dialect() string {
	return r.dialect
}

func (r *Renderer) Reset() {
	r.W.Reset()
}

func (r *Renderer) Output() string {
	return r.W.String()
}

// RenderWith resets the output and dispatches node to v, which is the
// embedding dialect renderer so that its overrides take effect.
func (r *Renderer) RenderWith(v ast.Visitor, node ast.Node) (string, error) {
	r.Reset()
	if err := node.Accept(v); err != nil {
		return "", fmt.Errorf("error rendering %s: %w", node.Kind(), err)
	}
	return r.Output(), nil
}

// Unsupported returns the error for a statement the dialect cannot render.
func (r *Renderer) Unsupported(node ast.Node) error {
	return types.Unsupported(r.dialect, node)
}

// Quote quotes an identifier with backticks.
func Quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteList quotes and comma-joins identifiers.
func QuoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = Quote(n)
	}
	return strings.Join(quoted, ",")
}

// ColumnDef renders a column definition. The inline PRIMARY KEY is omitted
// when the column is redefined with MODIFY COLUMN.
func ColumnDef(c *ddl.Column, withPrimaryKey bool) string {
	var sb strings.Builder
	sb.WriteString(Quote(c.Name))
	sb.WriteString(" ")
	sb.WriteString(c.Type)
	if c.Generated != nil {
		sb.WriteString(" GENERATED ALWAYS AS (")
		sb.WriteString(c.Generated.As)
		sb.WriteString(") ")
		sb.WriteString(strings.ToUpper(generatedType(c.Generated)))
	}
	if withPrimaryKey && c.PrimaryKey {
		sb.WriteString(" PRIMARY KEY")
	}
	if c.AutoIncrement {
		sb.WriteString(" AUTO_INCREMENT")
	}
	if c.Default != nil {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(c.Default.String())
	}
	if c.OnUpdate {
		sb.WriteString(" ON UPDATE CURRENT_TIMESTAMP")
	}
	if c.NotNull {
		sb.WriteString(" NOT NULL")
	}
	if withPrimaryKey && c.IsUnique {
		sb.WriteString(" UNIQUE")
	}
	return sb.String()
}

func generatedType(g *ddl.Generated) string {
	if g.Type == "" {
		return "virtual"
	}
	return g.Type
}

// ReferenceClause renders FOREIGN KEY (...) REFERENCES ...
func ReferenceClause(fk *ddl.ForeignKey) string {
	var sb strings.Builder
	sb.WriteString("FOREIGN KEY (")
	sb.WriteString(QuoteList(fk.ColumnsFrom))
	sb.WriteString(") REFERENCES ")
	sb.WriteString(Quote(fk.TableTo))
	sb.WriteString("(")
	sb.WriteString(QuoteList(fk.ColumnsTo))
	sb.WriteString(")")
	if fk.OnDelete != "" {
		sb.WriteString(" ON DELETE ")
		sb.WriteString(strings.ToUpper(fk.OnDelete))
	}
	if fk.OnUpdate != "" {
		sb.WriteString(" ON UPDATE ")
		sb.WriteString(strings.ToUpper(fk.OnUpdate))
	}
	return sb.String()
}

// WriteCreateTable writes a CREATE TABLE statement for def under the given name.
func (r *Renderer) WriteCreateTable(name string, def *ast.TableDef) {
	defs := make([]string, 0, len(def.Columns))
	for _, c := range def.Columns {
		defs = append(defs, ColumnDef(c, true))
	}
	for _, pk := range def.PrimaryKeys {
		defs = append(defs, "CONSTRAINT "+Quote(ddl.PrimaryKeyConstraintName(def.Name, pk))+" PRIMARY KEY("+QuoteList(pk.Columns)+")")
	}
	for _, fk := range def.ForeignKeys {
		defs = append(defs, "CONSTRAINT "+Quote(fk.Name)+" "+ReferenceClause(fk))
	}
	for _, u := range def.Uniques {
		defs = append(defs, "CONSTRAINT "+Quote(u.Name)+" UNIQUE("+QuoteList(u.Columns)+")")
	}
	for _, ch := range def.Checks {
		defs = append(defs, "CONSTRAINT "+Quote(ch.Name)+" CHECK("+ch.Value+")")
	}

	r.W.WriteLinef("CREATE TABLE %s (", Quote(name))
	for i, d := range defs {
		if i < len(defs)-1 {
			d += ","
		}
		r.W.WriteLine("\t" + d)
	}
	r.W.WriteLine(");")
}

func (r *Renderer) VisitCreateSchema(node *ast.CreateSchemaNode) error { return r.Unsupported(node) }
func (r *Renderer) VisitDropSchema(node *ast.DropSchemaNode) error     { return r.Unsupported(node) }
func (r *Renderer) VisitRenameSchema(node *ast.RenameSchemaNode) error { return r.Unsupported(node) }

// Enums are declared inline in the column type.
func (r *Renderer) VisitCreateEnum(node *ast.CreateEnumNode) error     { return r.Unsupported(node) }
func (r *Renderer) VisitDropEnum(node *ast.DropEnumNode) error         { return r.Unsupported(node) }
func (r *Renderer) VisitRenameEnum(node *ast.RenameEnumNode) error     { return r.Unsupported(node) }
func (r *Renderer) VisitMoveEnum(node *ast.MoveEnumNode) error         { return r.Unsupported(node) }
func (r *Renderer) VisitAddEnumValue(node *ast.AddEnumValueNode) error { return r.Unsupported(node) }
func (r *Renderer) VisitRecreateEnum(node *ast.RecreateEnumNode) error { return r.Unsupported(node) }

func (r *Renderer) VisitCreateSequence(node *ast.CreateSequenceNode) error {
	return r.Unsupported(node)
}
func (r *Renderer) VisitDropSequence(node *ast.DropSequenceNode) error { return r.Unsupported(node) }
func (r *Renderer) VisitRenameSequence(node *ast.RenameSequenceNode) error {
	return r.Unsupported(node)
}
func (r *Renderer) VisitMoveSequence(node *ast.MoveSequenceNode) error   { return r.Unsupported(node) }
func (r *Renderer) VisitAlterSequence(node *ast.AlterSequenceNode) error { return r.Unsupported(node) }

func (r *Renderer) VisitCreateRole(node *ast.CreateRoleNode) error { return r.Unsupported(node) }
func (r *Renderer) VisitDropRole(node *ast.DropRoleNode) error     { return r.Unsupported(node) }
func (r *Renderer) VisitRenameRole(node *ast.RenameRoleNode) error { return r.Unsupported(node) }
func (r *Renderer) VisitAlterRole(node *ast.AlterRoleNode) error   { return r.Unsupported(node) }

// VisitCreateTable renders CREATE TABLE with inline constraints
func (r *Renderer) VisitCreateTable(node *ast.CreateTableNode) error {
	r.WriteCreateTable(node.Name, &node.TableDef)
	return nil
}

func (r *Renderer) VisitDropTable(node *ast.DropTableNode) error {
	r.W.WriteLinef("DROP TABLE %s;", Quote(node.Name))
	return nil
}

func (r *Renderer) VisitRenameTable(node *ast.RenameTableNode) error {
	r.W.WriteLinef("RENAME TABLE %s TO %s;", Quote(node.From), Quote(node.To))
	return nil
}

func (r *Renderer) VisitSetTableSchema(node *ast.SetTableSchemaNode) error {
	return r.Unsupported(node)
}

// VisitRecreateTable is rejected by default; SingleStore overrides it.
func (r *Renderer) VisitRecreateTable(node *ast.RecreateTableNode) error {
	return r.Unsupported(node)
}

func (r *Renderer) VisitEnableRLS(node *ast.EnableRLSNode) error   { return r.Unsupported(node) }
func (r *Renderer) VisitDisableRLS(node *ast.DisableRLSNode) error { return r.Unsupported(node) }

func (r *Renderer) VisitAddColumn(node *ast.AddColumnNode) error {
	r.W.WriteLinef("ALTER TABLE %s ADD %s;", Quote(node.Table), ColumnDef(node.Column, true))
	return nil
}

func (r *Renderer) VisitDropColumn(node *ast.DropColumnNode) error {
	r.W.WriteLinef("ALTER TABLE %s DROP COLUMN %s;", Quote(node.Table), Quote(node.Column))
	return nil
}

func (r *Renderer) VisitRenameColumn(node *ast.RenameColumnNode) error {
	r.W.WriteLinef("ALTER TABLE %s RENAME COLUMN %s TO %s;", Quote(node.Table), Quote(node.From), Quote(node.To))
	return nil
}

// VisitAlterColumn redefines the whole column with MODIFY COLUMN for every
// property except primary key membership.
func (r *Renderer) VisitAlterColumn(node *ast.AlterColumnNode) error {
	table := Quote(node.Table)
	switch node.Type {
	case ast.KindSetPK:
		r.W.WriteLinef("ALTER TABLE %s ADD PRIMARY KEY (%s);", table, Quote(node.Column))
	case ast.KindDropPK:
		r.W.WriteLinef("ALTER TABLE %s DROP PRIMARY KEY;", table)
	case ast.KindSetIdentity, ast.KindDropIdentity, ast.KindChangeIdentity:
		return r.Unsupported(node)
	case ast.KindSetAutoIncrement:
		def := ColumnDef(node.Def, false)
		if node.WithPrimaryKey {
			def += " PRIMARY KEY"
		}
		r.W.WriteLinef("ALTER TABLE %s MODIFY COLUMN %s;", table, def)
	default:
		r.W.WriteLinef("ALTER TABLE %s MODIFY COLUMN %s;", table, ColumnDef(node.Def, false))
	}
	return nil
}

func indexColumns(idx *ddl.Index) string {
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		if c.IsExpression {
			cols[i] = "(" + c.Expression + ")"
		} else {
			cols[i] = Quote(c.Expression)
		}
	}
	return strings.Join(cols, ",")
}

// VisitCreateIndex renders CREATE [UNIQUE] INDEX
func (r *Renderer) VisitCreateIndex(node *ast.CreateIndexNode) error {
	unique := ""
	if node.Index.IsUnique {
		unique = "UNIQUE "
	}
	r.W.WriteLinef("CREATE %sINDEX %s ON %s (%s);", unique, Quote(node.Index.Name), Quote(node.Table), indexColumns(node.Index))
	return nil
}

func (r *Renderer) VisitDropIndex(node *ast.DropIndexNode) error {
	r.W.WriteLinef("DROP INDEX %s ON %s;", Quote(node.Name), Quote(node.Table))
	return nil
}

func (r *Renderer) VisitCreateReference(node *ast.CreateReferenceNode) error {
	r.W.WriteLinef("ALTER TABLE %s ADD CONSTRAINT %s %s;", Quote(node.Table), Quote(node.ForeignKey.Name), ReferenceClause(node.ForeignKey))
	return nil
}

func (r *Renderer) VisitDeleteReference(node *ast.DeleteReferenceNode) error {
	r.W.WriteLinef("ALTER TABLE %s DROP FOREIGN KEY %s;", Quote(node.Table), Quote(node.ForeignKey.Name))
	return nil
}

func (r *Renderer) VisitCreateCompositePK(node *ast.CreateCompositePKNode) error {
	r.W.WriteLinef("ALTER TABLE %s ADD PRIMARY KEY(%s);", Quote(node.Table), QuoteList(node.PrimaryKey.Columns))
	return nil
}

func (r *Renderer) VisitDeleteCompositePK(node *ast.DeleteCompositePKNode) error {
	r.W.WriteLinef("ALTER TABLE %s DROP PRIMARY KEY;", Quote(node.Table))
	return nil
}

func (r *Renderer) VisitAlterCompositePK(node *ast.AlterCompositePKNode) error {
	r.W.WriteLinef("ALTER TABLE %s DROP PRIMARY KEY, ADD PRIMARY KEY(%s);", Quote(node.Table), QuoteList(node.New.Columns))
	return nil
}

func (r *Renderer) VisitCreateUnique(node *ast.CreateUniqueNode) error {
	r.W.WriteLinef("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE(%s);", Quote(node.Table), Quote(node.Unique.Name), QuoteList(node.Unique.Columns))
	return nil
}

func (r *Renderer) VisitDeleteUnique(node *ast.DeleteUniqueNode) error {
	r.W.WriteLinef("ALTER TABLE %s DROP INDEX %s;", Quote(node.Table), Quote(node.Unique.Name))
	return nil
}

func (r *Renderer) VisitCreateCheck(node *ast.CreateCheckNode) error {
	r.W.WriteLinef("ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);", Quote(node.Table), Quote(node.Check.Name), node.Check.Value)
	return nil
}

func (r *Renderer) VisitDeleteCheck(node *ast.DeleteCheckNode) error {
	r.W.WriteLinef("ALTER TABLE %s DROP CONSTRAINT %s;", Quote(node.Table), Quote(node.Check.Name))
	return nil
}

func viewClauses(v *ddl.View) (prefix, suffix string) {
	if v.Algorithm != "" {
		prefix += "ALGORITHM = " + v.Algorithm + " "
	}
	if v.SQLSecurity != "" {
		prefix += "SQL SECURITY " + v.SQLSecurity + " "
	}
	if v.CheckOption != "" {
		suffix = " WITH " + v.CheckOption + " CHECK OPTION"
	}
	return prefix, suffix
}

// VisitCreateView renders CREATE VIEW with the MySQL view attributes
func (r *Renderer) VisitCreateView(node *ast.CreateViewNode) error {
	prefix, suffix := viewClauses(node.View)
	r.W.WriteLinef("CREATE %sVIEW %s AS (%s)%s;", prefix, Quote(node.View.Name), node.View.Definition, suffix)
	return nil
}

func (r *Renderer) VisitDropView(node *ast.DropViewNode) error {
	r.W.WriteLinef("DROP VIEW %s;", Quote(node.Name))
	return nil
}

func (r *Renderer) VisitRenameView(node *ast.RenameViewNode) error {
	r.W.WriteLinef("RENAME TABLE %s TO %s;", Quote(node.From), Quote(node.To))
	return nil
}

func (r *Renderer) VisitAlterViewSchema(node *ast.AlterViewSchemaNode) error {
	return r.Unsupported(node)
}

// VisitAlterView replaces the view definition in place
func (r *Renderer) VisitAlterView(node *ast.AlterViewNode) error {
	if node.Type != ast.KindAlterView || node.View == nil {
		return r.Unsupported(node)
	}
	prefix, suffix := viewClauses(node.View)
	r.W.WriteLinef("ALTER %sVIEW %s AS (%s)%s;", prefix, Quote(node.View.Name), node.View.Definition, suffix)
	return nil
}

func (r *Renderer) VisitCreatePolicy(node *ast.CreatePolicyNode) error { return r.Unsupported(node) }
func (r *Renderer) VisitDropPolicy(node *ast.DropPolicyNode) error     { return r.Unsupported(node) }
func (r *Renderer) VisitRenamePolicy(node *ast.RenamePolicyNode) error { return r.Unsupported(node) }
func (r *Renderer) VisitAlterPolicy(node *ast.AlterPolicyNode) error   { return r.Unsupported(node) }
