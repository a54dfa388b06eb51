package types

import (
	"encoding/json"
	"fmt"

	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/ddl"
)

// Result is the outcome of diffing two snapshots.
//
// Statements holds the ordered migration statements, SQLStatements their
// rendering for the target dialect. The two lists are not index aligned: one
// statement may render to several SQL strings (a table recreation) and
// identical strings are emitted once.
//
// # Renames
//
// Meta records the renames that were resolved during the diff, keyed by the
// old qualified name: "schema" for schemas, "schema.table" for tables and
// "schema.table.column" for columns (without the schema part for dialects
// that have none). Merging it into the new snapshot keeps the rename history
// available to later runs.
//
// # JSON Serialization
//
// A Result encodes statements with their "type" tag (see
// ast.MarshalStatements) so that it can be consumed by external tooling.
//
// # Example Usage
//
//	res, err := schemadiff.Diff(ctx, prev, cur, resolver.Set{}, nil)
//	if err != nil {
//		return err
//	}
//	if res.HasChanges() {
//		fmt.Println(strings.Join(res.SQLStatements, "\n"))
//	}
type Result struct {
	Statements    []ast.Node
	SQLStatements []string
	Meta          ddl.Meta
	// Warnings are non-fatal notices about changes that were skipped or that
	// lose data. They are also logged.
	Warnings []string
}

// HasChanges reports whether the diff produced any statement.
func (r *Result) HasChanges() bool {
	return r != nil && len(r.Statements) > 0
}

// HasRenames reports whether any rename was resolved.
func (r *Result) HasRenames() bool {
	return r != nil && (len(r.Meta.Schemas) > 0 || len(r.Meta.Tables) > 0 || len(r.Meta.Columns) > 0)
}

// MarshalJSON implements json.Marshaler.
func (r *Result) MarshalJSON() ([]byte, error) {
	stmts, err := ast.MarshalStatements(r.Statements)
	if err != nil {
		return nil, fmt.Errorf("error encoding statements: %w", err)
	}
	return json.Marshal(struct {
		Statements    json.RawMessage `json:"statements"`
		SQLStatements []string        `json:"sqlStatements"`
		Meta          ddl.Meta        `json:"_meta"`
		Warnings      []string        `json:"warnings,omitempty"`
	}{
		Statements:    stmts,
		SQLStatements: r.SQLStatements,
		Meta:          r.Meta,
		Warnings:      r.Warnings,
	})
}
