// Package types holds the contracts shared by the renderer and its dialects.
package types

import (
	"errors"
	"fmt"

	"github.com/stokaro/snapdiff/core/ast"
)

// ErrUnsupported is returned when a dialect cannot express a statement.
var ErrUnsupported = errors.New("unsupported statement")

// RenderVisitor is implemented by every dialect renderer.
type RenderVisitor interface {
	ast.Visitor
	// Dialect returns the canonical dialect identifier.
	Dialect() string
	// Reset discards the output accumulated so far.
	Reset()
	// Output returns the SQL produced since the last Reset.
	Output() string
	// Render resets the renderer, visits node and returns the produced SQL.
	Render(node ast.Node) (string, error)
}

// Unsupported builds the error a dialect returns for a statement it cannot render.
func Unsupported(dialect string, node ast.Node) error {
	return fmt.Errorf("%w: %s is not supported by %s", ErrUnsupported, node.Kind(), dialect)
}
