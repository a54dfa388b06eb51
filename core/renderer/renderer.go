// Package renderer turns migration statements into dialect-specific SQL.
//
// Each dialect lives in its own package under dialects/ and implements
// types.RenderVisitor. This package selects the visitor for a dialect and
// renders statement lists.
//
// # Output
//
// Render produces one string per statement, in statement order. A statement
// that expands to several SQL commands (a table recreate, an enum
// replacement) yields a single string with one command per line.
// Byte-identical strings are emitted only once per run.
package renderer

import (
	"fmt"

	"github.com/stokaro/snapdiff/config"
	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/platform"
	"github.com/stokaro/snapdiff/core/renderer/dialects/mysql"
	"github.com/stokaro/snapdiff/core/renderer/dialects/postgres"
	"github.com/stokaro/snapdiff/core/renderer/dialects/singlestore"
	"github.com/stokaro/snapdiff/core/renderer/dialects/sqlite"
	"github.com/stokaro/snapdiff/core/renderer/types"
)

// ErrUnsupported is returned when the target dialect cannot express a statement.
var ErrUnsupported = types.ErrUnsupported

const (
	foreignKeysOff = "PRAGMA foreign_keys=OFF;"
	foreignKeysOn  = "PRAGMA foreign_keys=ON;"
)

// NewRenderer creates the renderer for the given dialect. Dialect aliases
// ("postgresql", "turso", ...) are accepted. It returns nil for an unknown
// dialect.
func NewRenderer(dialect string) types.RenderVisitor {
	switch platform.NormalizeDialect(dialect) {
	case platform.Postgres:
		return postgres.New()
	case platform.MySQL:
		return mysql.New()
	case platform.SingleStore:
		return singlestore.New()
	case platform.SQLite:
		return sqlite.New()
	case platform.LibSQL:
		return sqlite.NewLibSQL()
	default:
		return nil
	}
}

// Render renders statements for dialect.
//
// In push mode SQLite-family recreates do not carry their own foreign key
// pragmas; the whole batch is wrapped once instead.
func Render(stmts []ast.Node, dialect string, action config.Action) ([]string, error) {
	r := NewRenderer(dialect)
	if r == nil {
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	push := action.IsPush() && platform.IsSQLiteFamily(r.Dialect())
	if pm, ok := r.(interface{ SetPushMode(bool) }); ok {
		pm.SetPushMode(push)
	}

	seen := make(map[string]bool, len(stmts))
	out := make([]string, 0, len(stmts))
	recreates := false
	for _, stmt := range stmts {
		sql, err := r.Render(stmt)
		if err != nil {
			return nil, err
		}
		if stmt.Kind() == ast.KindRecreateTable {
			recreates = true
		}
		if sql == "" || seen[sql] {
			continue
		}
		seen[sql] = true
		out = append(out, sql)
	}

	if push && recreates {
		out = append([]string{foreignKeysOff}, out...)
		out = append(out, foreignKeysOn)
	}
	return out, nil
}
