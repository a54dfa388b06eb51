// Package postgres renders migration statements as PostgreSQL SQL.
//
// Identifiers are always double-quoted. Names in the "public" schema are left
// unqualified, everything else is rendered as "schema"."name".
package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/literal"
	"github.com/stokaro/snapdiff/core/platform"
	"github.com/stokaro/snapdiff/core/renderer/dialects/internal/bufwriter"
	"github.com/stokaro/snapdiff/core/renderer/types"
)

var (
	_ types.RenderVisitor = (*Renderer)(nil)
)

// Renderer provides PostgreSQL-specific SQL rendering
type Renderer struct {
	w bufwriter.Writer
}

// New creates a new PostgreSQL renderer
func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Dialect() string {
	return platform.Postgres
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
	return types.Unsupported(platform.Postgres, node)
}

func quote(name string) string {
	return pq.QuoteIdentifier(name)
}

func qualify(schema, name string) string {
	if schema == "" || schema == "public" {
		return quote(name)
	}
	return quote(schema) + "." + quote(name)
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	return strings.Join(quoted, ",")
}

// VisitCreateSchema renders CREATE SCHEMA
func (r *Renderer) VisitCreateSchema(node *ast.CreateSchemaNode) error {
	r.w.WriteLinef("CREATE SCHEMA %s;", quote(node.Name))
	return nil
}

func (r *Renderer) VisitDropSchema(node *ast.DropSchemaNode) error {
	r.w.WriteLinef("DROP SCHEMA %s;", quote(node.Name))
	return nil
}

func (r *Renderer) VisitRenameSchema(node *ast.RenameSchemaNode) error {
	r.w.WriteLinef("ALTER SCHEMA %s RENAME TO %s;", quote(node.From), quote(node.To))
	return nil
}

// VisitCreateEnum renders CREATE TYPE ... AS ENUM
func (r *Renderer) VisitCreateEnum(node *ast.CreateEnumNode) error {
	r.w.WriteLinef("CREATE TYPE %s AS ENUM(%s);", qualify(node.Schema, node.Name), enumValues(node.Values))
	return nil
}

func enumValues(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = literal.String(v)
	}
	return strings.Join(quoted, ", ")
}

func (r *Renderer) VisitDropEnum(node *ast.DropEnumNode) error {
	r.w.WriteLinef("DROP TYPE %s;", qualify(node.Schema, node.Name))
	return nil
}

func (r *Renderer) VisitRenameEnum(node *ast.RenameEnumNode) error {
	r.w.WriteLinef("ALTER TYPE %s RENAME TO %s;", qualify(node.Schema, node.From), quote(node.To))
	return nil
}

func (r *Renderer) VisitMoveEnum(node *ast.MoveEnumNode) error {
	r.w.WriteLinef("ALTER TYPE %s SET SCHEMA %s;", qualify(node.SchemaFrom, node.Name), quote(node.SchemaTo))
	return nil
}

// VisitAddEnumValue renders ALTER TYPE ... ADD VALUE
func (r *Renderer) VisitAddEnumValue(node *ast.AddEnumValueNode) error {
	before := ""
	if node.Before != "" {
		before = " BEFORE " + literal.String(node.Before)
	}
	r.w.WriteLinef("ALTER TYPE %s ADD VALUE %s%s;", qualify(node.Schema, node.Name), literal.String(node.Value), before)
	return nil
}

// VisitRecreateEnum renders the enum replacement: dependent columns are
// converted to text, the type is recreated and the columns are cast back.
func (r *Renderer) VisitRecreateEnum(node *ast.RecreateEnumNode) error {
	enum := qualify(node.Schema, node.Name)
	for _, col := range node.Columns {
		table := qualify(col.Schema, col.Table)
		if col.Default != nil {
			r.w.WriteLinef("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT;", table, quote(col.Column))
		}
		r.w.WriteLinef("ALTER TABLE %s ALTER COLUMN %s SET DATA TYPE text;", table, quote(col.Column))
	}
	r.w.WriteLinef("DROP TYPE %s;", enum)
	r.w.WriteLinef("CREATE TYPE %s AS ENUM(%s);", enum, enumValues(node.Values))
	for _, col := range node.Columns {
		table := qualify(col.Schema, col.Table)
		typ := enum
		if col.IsArray {
			typ += "[]"
		}
		r.w.WriteLinef("ALTER TABLE %s ALTER COLUMN %s SET DATA TYPE %s USING %s::%s;",
			table, quote(col.Column), typ, quote(col.Column), typ)
		if col.Default != nil {
			def := col.Default.String()
			if !col.IsArray {
				def = enumDefault(def, node.Schema, node.Name)
			}
			r.w.WriteLinef("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s;", table, quote(col.Column), def)
		}
	}
	return nil
}

// enumDefault casts a single quoted label to the enum type. Any other
// expression is returned unchanged.
func enumDefault(expr, schema, name string) string {
	if len(expr) < 2 || expr[0] != '\'' || expr[len(expr)-1] != '\'' {
		return expr
	}
	body := expr[1 : len(expr)-1]
	if strings.Contains(strings.ReplaceAll(body, "''", ""), "'") {
		return expr
	}
	if schema == "public" {
		schema = ""
	}
	return literal.Enum(strings.ReplaceAll(body, "''", "'"), schema, name)
}

func sequenceOptions(o ddl.SequenceOptions) []string {
	var parts []string
	if o.Increment != "" {
		parts = append(parts, "INCREMENT BY "+o.Increment)
	}
	if o.MinValue != "" {
		parts = append(parts, "MINVALUE "+o.MinValue)
	}
	if o.MaxValue != "" {
		parts = append(parts, "MAXVALUE "+o.MaxValue)
	}
	if o.StartWith != "" {
		parts = append(parts, "START WITH "+o.StartWith)
	}
	if o.Cache != "" {
		parts = append(parts, "CACHE "+o.Cache)
	}
	if o.Cycle {
		parts = append(parts, "CYCLE")
	}
	return parts
}

// VisitCreateSequence renders CREATE SEQUENCE
func (r *Renderer) VisitCreateSequence(node *ast.CreateSequenceNode) error {
	r.w.WriteLine(strings.Join(append([]string{"CREATE SEQUENCE " + qualify(node.Schema, node.Name)},
		sequenceOptions(node.Options)...), " ") + ";")
	return nil
}

func (r *Renderer) VisitDropSequence(node *ast.DropSequenceNode) error {
	r.w.WriteLinef("DROP SEQUENCE %s;", qualify(node.Schema, node.Name))
	return nil
}

func (r *Renderer) VisitRenameSequence(node *ast.RenameSequenceNode) error {
	r.w.WriteLinef("ALTER SEQUENCE %s RENAME TO %s;", qualify(node.Schema, node.From), quote(node.To))
	return nil
}

func (r *Renderer) VisitMoveSequence(node *ast.MoveSequenceNode) error {
	r.w.WriteLinef("ALTER SEQUENCE %s SET SCHEMA %s;", qualify(node.SchemaFrom, node.Name), quote(node.SchemaTo))
	return nil
}

// VisitAlterSequence renders ALTER SEQUENCE with the complete new option set
func (r *Renderer) VisitAlterSequence(node *ast.AlterSequenceNode) error {
	parts := []string{"ALTER SEQUENCE " + qualify(node.Schema, node.Name)}
	parts = append(parts, sequenceOptions(node.Options)...)
	if !node.Options.Cycle {
		parts = append(parts, "NO CYCLE")
	}
	r.w.WriteLine(strings.Join(parts, " ") + ";")
	return nil
}

// VisitCreateRole renders CREATE ROLE. Only non-default attributes are written.
func (r *Renderer) VisitCreateRole(node *ast.CreateRoleNode) error {
	var attrs []string
	if node.CreateDB {
		attrs = append(attrs, "CREATEDB")
	}
	if node.CreateRole {
		attrs = append(attrs, "CREATEROLE")
	}
	if !node.Inherit {
		attrs = append(attrs, "NOINHERIT")
	}
	if len(attrs) == 0 {
		r.w.WriteLinef("CREATE ROLE %s;", quote(node.Name))
		return nil
	}
	r.w.WriteLinef("CREATE ROLE %s WITH %s;", quote(node.Name), strings.Join(attrs, " "))
	return nil
}

func (r *Renderer) VisitDropRole(node *ast.DropRoleNode) error {
	r.w.WriteLinef("DROP ROLE %s;", quote(node.Name))
	return nil
}

func (r *Renderer) VisitRenameRole(node *ast.RenameRoleNode) error {
	r.w.WriteLinef("ALTER ROLE %s RENAME TO %s;", quote(node.From), quote(node.To))
	return nil
}

// VisitAlterRole renders ALTER ROLE with every attribute spelled out
func (r *Renderer) VisitAlterRole(node *ast.AlterRoleNode) error {
	r.w.WriteLinef("ALTER ROLE %s WITH %s %s %s;", quote(node.Name),
		flag(node.CreateDB, "CREATEDB"), flag(node.CreateRole, "CREATEROLE"), flag(node.Inherit, "INHERIT"))
	return nil
}

func flag(on bool, name string) string {
	if on {
		return name
	}
	return "NO" + name
}
