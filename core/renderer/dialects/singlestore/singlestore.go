// Package singlestore renders migration statements as SingleStore SQL.
//
// SingleStore shares the MySQL syntax but cannot alter most table properties
// in place; such changes arrive as RecreateTableNode statements.
package singlestore

import (
	"strings"

	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/platform"
	"github.com/stokaro/snapdiff/core/renderer/dialects/internal/bufwriter"
	"github.com/stokaro/snapdiff/core/renderer/dialects/mysqllike"
	"github.com/stokaro/snapdiff/core/renderer/types"
)

var (
	_ types.RenderVisitor = (*Renderer)(nil)
)

// Renderer provides SingleStore-specific SQL rendering
type Renderer struct {
	*mysqllike.Renderer
}

// New creates a new SingleStore renderer
func New() *Renderer {
	return &Renderer{
		Renderer: mysqllike.New(platform.SingleStore, &bufwriter.Writer{}),
	}
}

// Render renders an AST node to SQL and returns the result
func (r *Renderer) Render(node ast.Node) (string, error) {
	return r.RenderWith(r, node)
}

// VisitRecreateTable rebuilds the table under a temporary name, copies the
// surviving columns and swaps the tables.
func (r *Renderer) VisitRecreateTable(node *ast.RecreateTableNode) error {
	tmp := "__new_" + node.Name
	r.WriteCreateTable(tmp, &node.TableDef)
	if len(node.CopyColumns) > 0 {
		cols := quoteJoin(node.CopyColumns)
		r.W.WriteLinef("INSERT INTO %s(%s) SELECT %s FROM %s;", mysqllike.Quote(tmp), cols, cols, mysqllike.Quote(node.Name))
	}
	r.W.WriteLinef("DROP TABLE %s;", mysqllike.Quote(node.Name))
	r.W.WriteLinef("ALTER TABLE %s RENAME TO %s;", mysqllike.Quote(tmp), mysqllike.Quote(node.Name))
	return nil
}

func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = mysqllike.Quote(n)
	}
	return strings.Join(quoted, ", ")
}
