package postgres

import (
	"strings"

	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/ddl"
)

// columnType renders the column type, quoting user-defined (enum) types.
func columnType(c *ddl.Column) string {
	if c.TypeSchema == "" {
		return c.Type
	}
	base := c.Type
	suffix := ""
	for strings.HasSuffix(base, "[]") {
		base = strings.TrimSuffix(base, "[]")
		suffix += "[]"
	}
	return qualify(c.TypeSchema, base) + suffix
}

func identityClause(id *ddl.Identity) string {
	var sb strings.Builder
	if id.Type == "always" {
		sb.WriteString(" GENERATED ALWAYS AS IDENTITY")
	} else {
		sb.WriteString(" GENERATED BY DEFAULT AS IDENTITY")
	}
	var opts []string
	if id.Name != "" {
		opts = append(opts, "sequence name "+qualify(id.Schema, id.Name))
	}
	opts = append(opts, sequenceOptions(id.SequenceOptions)...)
	if len(opts) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(opts, " "))
		sb.WriteString(")")
	}
	return sb.String()
}

// columnDef renders a column definition as used by CREATE TABLE and ADD COLUMN.
func columnDef(c *ddl.Column) string {
	var sb strings.Builder
	sb.WriteString(quote(c.Name))
	sb.WriteString(" ")
	sb.WriteString(columnType(c))
	if c.PrimaryKey {
		sb.WriteString(" PRIMARY KEY")
	}
	if c.Default != nil {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(c.Default.String())
	}
	if c.Generated != nil {
		sb.WriteString(" GENERATED ALWAYS AS (")
		sb.WriteString(c.Generated.As)
		sb.WriteString(") STORED")
	}
	if c.NotNull && c.Identity == nil {
		sb.WriteString(" NOT NULL")
	}
	if c.IsUnique {
		if c.UniqueName != "" {
			sb.WriteString(" CONSTRAINT ")
			sb.WriteString(quote(c.UniqueName))
		}
		sb.WriteString(" UNIQUE")
		if c.NullsNotDistinct {
			sb.WriteString(" NULLS NOT DISTINCT")
		}
	}
	if c.Identity != nil {
		sb.WriteString(identityClause(c.Identity))
	}
	return sb.String()
}

func referenceClause(fk *ddl.ForeignKey) string {
	var sb strings.Builder
	sb.WriteString("FOREIGN KEY (")
	sb.WriteString(quoteList(fk.ColumnsFrom))
	sb.WriteString(") REFERENCES ")
	sb.WriteString(qualify(fk.SchemaTo, fk.TableTo))
	sb.WriteString("(")
	sb.WriteString(quoteList(fk.ColumnsTo))
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

func uniqueClause(u *ddl.Unique) string {
	nulls := ""
	if u.NullsNotDistinct {
		nulls = " NULLS NOT DISTINCT"
	}
	return "CONSTRAINT " + quote(u.Name) + " UNIQUE" + nulls + "(" + quoteList(u.Columns) + ")"
}

// VisitCreateTable renders CREATE TABLE with inline constraints
func (r *Renderer) VisitCreateTable(node *ast.CreateTableNode) error {
	defs := make([]string, 0, len(node.Columns))
	for _, c := range node.Columns {
		defs = append(defs, columnDef(c))
	}
	for _, pk := range node.PrimaryKeys {
		defs = append(defs, "CONSTRAINT "+quote(ddl.PrimaryKeyConstraintName(node.Name, pk))+" PRIMARY KEY("+quoteList(pk.Columns)+")")
	}
	for _, fk := range node.ForeignKeys {
		defs = append(defs, "CONSTRAINT "+quote(fk.Name)+" "+referenceClause(fk))
	}
	for _, u := range node.Uniques {
		defs = append(defs, uniqueClause(u))
	}
	for _, ch := range node.Checks {
		defs = append(defs, "CONSTRAINT "+quote(ch.Name)+" CHECK ("+ch.Value+")")
	}

	r.w.WriteLinef("CREATE TABLE %s (", qualify(node.Schema, node.Name))
	for i, def := range defs {
		if i < len(defs)-1 {
			def += ","
		}
		r.w.WriteLine("\t" + def)
	}
	r.w.WriteLine(");")
	return nil
}

// VisitDropTable renders DROP TABLE ... CASCADE
func (r *Renderer) VisitDropTable(node *ast.DropTableNode) error {
	r.w.WriteLinef("DROP TABLE %s CASCADE;", qualify(node.Schema, node.Name))
	return nil
}

func (r *Renderer) VisitRenameTable(node *ast.RenameTableNode) error {
	r.w.WriteLinef("ALTER TABLE %s RENAME TO %s;", qualify(node.FromSchema, node.From), quote(node.To))
	return nil
}

func (r *Renderer) VisitSetTableSchema(node *ast.SetTableSchemaNode) error {
	r.w.WriteLinef("ALTER TABLE %s SET SCHEMA %s;", qualify(node.SchemaFrom, node.Name), quote(node.SchemaTo))
	return nil
}

// VisitRecreateTable is never needed: PostgreSQL alters tables in place.
func (r *Renderer) VisitRecreateTable(node *ast.RecreateTableNode) error {
	return r.unsupported(node)
}

func (r *Renderer) VisitEnableRLS(node *ast.EnableRLSNode) error {
	r.w.WriteLinef("ALTER TABLE %s ENABLE ROW LEVEL SECURITY;", qualify(node.Schema, node.Table))
	return nil
}

func (r *Renderer) VisitDisableRLS(node *ast.DisableRLSNode) error {
	r.w.WriteLinef("ALTER TABLE %s DISABLE ROW LEVEL SECURITY;", qualify(node.Schema, node.Table))
	return nil
}

// VisitAddColumn renders ALTER TABLE ... ADD COLUMN
func (r *Renderer) VisitAddColumn(node *ast.AddColumnNode) error {
	r.w.WriteLinef("ALTER TABLE %s ADD COLUMN %s;", qualify(node.Schema, node.Table), columnDef(node.Column))
	return nil
}

func (r *Renderer) VisitDropColumn(node *ast.DropColumnNode) error {
	r.w.WriteLinef("ALTER TABLE %s DROP COLUMN %s;", qualify(node.Schema, node.Table), quote(node.Column))
	return nil
}

func (r *Renderer) VisitRenameColumn(node *ast.RenameColumnNode) error {
	r.w.WriteLinef("ALTER TABLE %s RENAME COLUMN %s TO %s;", qualify(node.Schema, node.Table), quote(node.From), quote(node.To))
	return nil
}

// VisitAlterColumn renders one column property change.
//
// A type change on a column with a default is wrapped in DROP DEFAULT and
// SET DEFAULT so that the default is re-evaluated against the new type.
func (r *Renderer) VisitAlterColumn(node *ast.AlterColumnNode) error {
	table := qualify(node.Schema, node.Table)
	col := quote(node.Column)
	prefix := "ALTER TABLE " + table + " ALTER COLUMN " + col

	switch node.Type {
	case ast.KindSetType:
		typ := columnType(node.Def)
		using := ""
		if node.Def.TypeSchema != "" {
			using = " USING " + col + "::" + typ
		}
		if node.Def.Default != nil {
			r.w.WriteLine(prefix + " DROP DEFAULT;")
		}
		r.w.WriteLine(prefix + " SET DATA TYPE " + typ + using + ";")
		if node.Def.Default != nil {
			r.w.WriteLine(prefix + " SET DEFAULT " + node.Def.Default.String() + ";")
		}
	case ast.KindSetDefault:
		r.w.WriteLine(prefix + " SET DEFAULT " + node.Def.Default.String() + ";")
	case ast.KindDropDefault:
		r.w.WriteLine(prefix + " DROP DEFAULT;")
	case ast.KindSetNotNull:
		r.w.WriteLine(prefix + " SET NOT NULL;")
	case ast.KindDropNotNull:
		r.w.WriteLine(prefix + " DROP NOT NULL;")
	case ast.KindSetPK:
		r.w.WriteLinef("ALTER TABLE %s ADD PRIMARY KEY (%s);", table, col)
	case ast.KindDropPK:
		name := node.ConstraintName
		if name == "" {
			name = ddl.DefaultPrimaryKeyConstraint(node.Table)
		}
		r.w.WriteLinef("ALTER TABLE %s DROP CONSTRAINT %s;", table, quote(name))
	case ast.KindSetIdentity:
		r.w.WriteLine(prefix + " ADD" + identityClause(node.Def.Identity) + ";")
	case ast.KindDropIdentity:
		r.w.WriteLine(prefix + " DROP IDENTITY;")
	case ast.KindChangeIdentity:
		r.changeIdentity(prefix, node.OldIdentity, node.Def.Identity)
	case ast.KindDropGenerated:
		r.w.WriteLine(prefix + " DROP EXPRESSION;")
	case ast.KindSetGenerated, ast.KindAlterGenerated:
		// The expression of a stored column cannot be changed in place.
		r.w.WriteLinef("ALTER TABLE %s DROP COLUMN %s;", table, col)
		r.w.WriteLinef("ALTER TABLE %s ADD COLUMN %s;", table, columnDef(node.Def))
	default:
		return r.unsupported(node)
	}
	return nil
}

func (r *Renderer) changeIdentity(prefix string, prev, cur *ddl.Identity) {
	if prev == nil {
		prev = &ddl.Identity{}
	}
	if prev.Type != cur.Type {
		if cur.Type == "always" {
			r.w.WriteLine(prefix + " SET GENERATED ALWAYS;")
		} else {
			r.w.WriteLine(prefix + " SET GENERATED BY DEFAULT;")
		}
	}
	set := func(old, now, clause string) {
		if old != now && now != "" {
			r.w.WriteLine(prefix + " SET " + clause + " " + now + ";")
		}
	}
	set(prev.Increment, cur.Increment, "INCREMENT BY")
	set(prev.MinValue, cur.MinValue, "MINVALUE")
	set(prev.MaxValue, cur.MaxValue, "MAXVALUE")
	set(prev.StartWith, cur.StartWith, "START WITH")
	set(prev.Cache, cur.Cache, "CACHE")
	if prev.Cycle != cur.Cycle {
		if cur.Cycle {
			r.w.WriteLine(prefix + " SET CYCLE;")
		} else {
			r.w.WriteLine(prefix + " SET NO CYCLE;")
		}
	}
}

func indexColumn(c ddl.IndexColumn) string {
	var sb strings.Builder
	if c.IsExpression {
		sb.WriteString(c.Expression)
	} else {
		sb.WriteString(quote(c.Expression))
	}
	if c.Opclass != "" {
		sb.WriteString(" ")
		sb.WriteString(c.Opclass)
	}
	if !c.Asc {
		sb.WriteString(" DESC")
	}
	nulls := strings.ToLower(c.Nulls)
	if c.Asc && nulls == "first" {
		sb.WriteString(" NULLS FIRST")
	}
	if !c.Asc && nulls == "last" {
		sb.WriteString(" NULLS LAST")
	}
	return sb.String()
}

// VisitCreateIndex renders CREATE [UNIQUE] INDEX [CONCURRENTLY]
func (r *Renderer) VisitCreateIndex(node *ast.CreateIndexNode) error {
	idx := node.Index
	var sb strings.Builder
	sb.WriteString("CREATE ")
	if idx.IsUnique {
		sb.WriteString("UNIQUE ")
	}
	sb.WriteString("INDEX ")
	if idx.Concurrently {
		sb.WriteString("CONCURRENTLY ")
	}
	sb.WriteString(quote(idx.Name))
	sb.WriteString(" ON ")
	sb.WriteString(qualify(node.Schema, node.Table))
	method := idx.Method
	if method == "" {
		method = "btree"
	}
	sb.WriteString(" USING ")
	sb.WriteString(method)
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		cols[i] = indexColumn(c)
	}
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ","))
	sb.WriteString(")")
	if len(idx.With) > 0 {
		params := make([]string, 0, len(idx.With))
		for _, k := range ddl.SortedKeys(idx.With) {
			params = append(params, k+"="+idx.With[k])
		}
		sb.WriteString(" WITH (")
		sb.WriteString(strings.Join(params, ","))
		sb.WriteString(")")
	}
	if idx.Where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(idx.Where)
	}
	sb.WriteString(";")
	r.w.WriteLine(sb.String())
	return nil
}

func (r *Renderer) VisitDropIndex(node *ast.DropIndexNode) error {
	r.w.WriteLinef("DROP INDEX %s;", qualify(node.Schema, node.Name))
	return nil
}

func (r *Renderer) VisitCreateReference(node *ast.CreateReferenceNode) error {
	r.w.WriteLinef("ALTER TABLE %s ADD CONSTRAINT %s %s;",
		qualify(node.Schema, node.Table), quote(node.ForeignKey.Name), referenceClause(node.ForeignKey))
	return nil
}

func (r *Renderer) VisitDeleteReference(node *ast.DeleteReferenceNode) error {
	r.w.WriteLinef("ALTER TABLE %s DROP CONSTRAINT %s;", qualify(node.Schema, node.Table), quote(node.ForeignKey.Name))
	return nil
}

func (r *Renderer) VisitCreateCompositePK(node *ast.CreateCompositePKNode) error {
	r.w.WriteLinef("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY(%s);", qualify(node.Schema, node.Table),
		quote(ddl.PrimaryKeyConstraintName(node.Table, node.PrimaryKey)), quoteList(node.PrimaryKey.Columns))
	return nil
}

func (r *Renderer) VisitDeleteCompositePK(node *ast.DeleteCompositePKNode) error {
	r.w.WriteLinef("ALTER TABLE %s DROP CONSTRAINT %s;", qualify(node.Schema, node.Table),
		quote(ddl.PrimaryKeyConstraintName(node.Table, node.PrimaryKey)))
	return nil
}

// VisitAlterCompositePK renders the replacement as drop followed by add
func (r *Renderer) VisitAlterCompositePK(node *ast.AlterCompositePKNode) error {
	table := qualify(node.Schema, node.Table)
	r.w.WriteLinef("ALTER TABLE %s DROP CONSTRAINT %s;", table, quote(ddl.PrimaryKeyConstraintName(node.Table, node.Old)))
	r.w.WriteLinef("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY(%s);", table,
		quote(ddl.PrimaryKeyConstraintName(node.Table, node.New)), quoteList(node.New.Columns))
	return nil
}

func (r *Renderer) VisitCreateUnique(node *ast.CreateUniqueNode) error {
	r.w.WriteLinef("ALTER TABLE %s ADD %s;", qualify(node.Schema, node.Table), uniqueClause(node.Unique))
	return nil
}

func (r *Renderer) VisitDeleteUnique(node *ast.DeleteUniqueNode) error {
	r.w.WriteLinef("ALTER TABLE %s DROP CONSTRAINT %s;", qualify(node.Schema, node.Table), quote(node.Unique.Name))
	return nil
}

func (r *Renderer) VisitCreateCheck(node *ast.CreateCheckNode) error {
	r.w.WriteLinef("ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);", qualify(node.Schema, node.Table), quote(node.Check.Name), node.Check.Value)
	return nil
}

func (r *Renderer) VisitDeleteCheck(node *ast.DeleteCheckNode) error {
	r.w.WriteLinef("ALTER TABLE %s DROP CONSTRAINT %s;", qualify(node.Schema, node.Table), quote(node.Check.Name))
	return nil
}
