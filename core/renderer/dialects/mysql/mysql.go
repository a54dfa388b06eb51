// Package mysql renders migration statements as MySQL SQL.
package mysql

import (
	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/platform"
	"github.com/stokaro/snapdiff/core/renderer/dialects/internal/bufwriter"
	"github.com/stokaro/snapdiff/core/renderer/dialects/mysqllike"
	"github.com/stokaro/snapdiff/core/renderer/types"
)

var (
	_ types.RenderVisitor = (*Renderer)(nil)
)

// Renderer provides MySQL-specific SQL rendering
type Renderer struct {
	*mysqllike.Renderer
}

// New creates a new MySQL renderer
func New() *Renderer {
	return &Renderer{
		Renderer: mysqllike.New(platform.MySQL, &bufwriter.Writer{}),
	}
}

// Render renders an AST node to SQL and returns the result
func (r *Renderer) Render(node ast.Node) (string, error) {
	return r.RenderWith(r, node)
}
