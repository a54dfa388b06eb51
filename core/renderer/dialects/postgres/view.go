package postgres

import (
	"strings"

	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/ddl"
)

func viewKeyword(materialized bool) string {
	if materialized {
		return "MATERIALIZED VIEW"
	}
	return "VIEW"
}

func withParams(with map[string]string) string {
	params := make([]string, 0, len(with))
	for _, k := range ddl.SortedKeys(with) {
		params = append(params, k+" = "+with[k])
	}
	return strings.Join(params, ", ")
}

// VisitCreateView renders CREATE [MATERIALIZED] VIEW
func (r *Renderer) VisitCreateView(node *ast.CreateViewNode) error {
	v := node.View
	var sb strings.Builder
	sb.WriteString("CREATE ")
	sb.WriteString(viewKeyword(v.Materialized))
	sb.WriteString(" ")
	sb.WriteString(qualify(v.Schema, v.Name))
	if v.Materialized && v.Using != "" {
		sb.WriteString(" USING ")
		sb.WriteString(quote(v.Using))
	}
	if len(v.With) > 0 {
		sb.WriteString(" WITH (")
		sb.WriteString(withParams(v.With))
		sb.WriteString(")")
	}
	if v.Materialized && v.Tablespace != "" {
		sb.WriteString(" TABLESPACE ")
		sb.WriteString(quote(v.Tablespace))
	}
	sb.WriteString(" AS (")
	sb.WriteString(v.Definition)
	sb.WriteString(")")
	if v.Materialized && v.WithNoData {
		sb.WriteString(" WITH NO DATA")
	}
	sb.WriteString(";")
	r.w.WriteLine(sb.String())
	return nil
}

func (r *Renderer) VisitDropView(node *ast.DropViewNode) error {
	r.w.WriteLinef("DROP %s %s;", viewKeyword(node.Materialized), qualify(node.Schema, node.Name))
	return nil
}

func (r *Renderer) VisitRenameView(node *ast.RenameViewNode) error {
	r.w.WriteLinef("ALTER %s %s RENAME TO %s;", viewKeyword(node.Materialized), qualify(node.Schema, node.From), quote(node.To))
	return nil
}

func (r *Renderer) VisitAlterViewSchema(node *ast.AlterViewSchemaNode) error {
	r.w.WriteLinef("ALTER %s %s SET SCHEMA %s;", viewKeyword(node.Materialized), qualify(node.SchemaFrom, node.Name), quote(node.SchemaTo))
	return nil
}

// VisitAlterView renders in-place view changes. A changed definition is
// expressed by the planner as drop and create, so KindAlterView is rejected.
func (r *Renderer) VisitAlterView(node *ast.AlterViewNode) error {
	view := viewKeyword(node.Materialized) + " " + qualify(node.Schema, node.Name)
	switch node.Type {
	case ast.KindAlterViewAddWith:
		r.w.WriteLinef("ALTER %s SET (%s);", view, withParams(node.With))
	case ast.KindAlterViewDropWith:
		r.w.WriteLinef("ALTER %s RESET (%s);", view, strings.Join(ddl.SortedKeys(node.With), ", "))
	case ast.KindAlterViewTablespace:
		r.w.WriteLinef("ALTER %s SET TABLESPACE %s;", view, quote(node.Tablespace))
	case ast.KindAlterViewUsing:
		r.w.WriteLinef("ALTER %s SET ACCESS METHOD %s;", view, quote(node.Using))
	default:
		return r.unsupported(node)
	}
	return nil
}

var roleKeywords = map[string]bool{
	"public":       true,
	"current_role": true,
	"current_user": true,
	"session_user": true,
}

func policyRoles(to []string) string {
	if len(to) == 0 {
		return "public"
	}
	roles := make([]string, len(to))
	for i, role := range to {
		if roleKeywords[strings.ToLower(role)] {
			roles[i] = strings.ToLower(role)
		} else {
			roles[i] = quote(role)
		}
	}
	return strings.Join(roles, ", ")
}

func policyAs(p *ddl.Policy) string {
	if p.As == "" {
		return "PERMISSIVE"
	}
	return strings.ToUpper(p.As)
}

func policyFor(p *ddl.Policy) string {
	if p.For == "" {
		return "ALL"
	}
	return strings.ToUpper(p.For)
}

func policyClauses(p *ddl.Policy) string {
	var sb strings.Builder
	sb.WriteString(" TO ")
	sb.WriteString(policyRoles(p.To))
	if p.Using != "" {
		sb.WriteString(" USING (")
		sb.WriteString(p.Using)
		sb.WriteString(")")
	}
	if p.WithCheck != "" {
		sb.WriteString(" WITH CHECK (")
		sb.WriteString(p.WithCheck)
		sb.WriteString(")")
	}
	return sb.String()
}

func (r *Renderer) createPolicy(table string, p *ddl.Policy) {
	r.w.WriteLinef("CREATE POLICY %s ON %s AS %s FOR %s%s;", quote(p.Name), table, policyAs(p), policyFor(p), policyClauses(p))
}

// VisitCreatePolicy renders CREATE POLICY
func (r *Renderer) VisitCreatePolicy(node *ast.CreatePolicyNode) error {
	r.createPolicy(qualify(node.Schema, node.Table), node.Policy)
	return nil
}

func (r *Renderer) VisitDropPolicy(node *ast.DropPolicyNode) error {
	r.w.WriteLinef("DROP POLICY %s ON %s CASCADE;", quote(node.Policy.Name), qualify(node.Schema, node.Table))
	return nil
}

func (r *Renderer) VisitRenamePolicy(node *ast.RenamePolicyNode) error {
	r.w.WriteLinef("ALTER POLICY %s ON %s RENAME TO %s;", quote(node.From), qualify(node.Schema, node.Table), quote(node.To))
	return nil
}

// VisitAlterPolicy renders ALTER POLICY. AS and FOR cannot be altered in
// place, so a change to either recreates the policy.
func (r *Renderer) VisitAlterPolicy(node *ast.AlterPolicyNode) error {
	table := qualify(node.Schema, node.Table)
	if policyAs(node.Old) != policyAs(node.New) || policyFor(node.Old) != policyFor(node.New) {
		r.w.WriteLinef("DROP POLICY %s ON %s CASCADE;", quote(node.Old.Name), table)
		r.createPolicy(table, node.New)
		return nil
	}
	r.w.WriteLinef("ALTER POLICY %s ON %s%s;", quote(node.New.Name), table, policyClauses(node.New))
	return nil
}
