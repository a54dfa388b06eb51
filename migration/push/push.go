// Package push inspects the statements of a push against the live database
// before they are executed.
//
// Statements that lose data when the affected tables are not empty (dropping
// a table or column, adding a NOT NULL column without default, adding a
// unique constraint, changing a column type) are checked by counting rows.
// The resulting Report tells the caller what to show the user and whether
// confirmation is required. Executing the statements is left to the caller.
//
// # Usage Example
//
//	res, err := schemadiff.Diff(ctx, live, desired, resolvers, config.WithAction(config.ActionPush))
//	if err != nil {
//		return err
//	}
//	report, err := push.Analyze(ctx, conn, res.Statements, conn.Info().Dialect)
//	if err != nil {
//		return err
//	}
//	if report.NeedsConfirmation && !confirmed(report.Warnings) {
//		return nil
//	}
//	statements := append(report.Truncates, res.SQLStatements...)
//
// # Thread Safety
//
// Row counts are issued concurrently (see WithConcurrency); the Querier must
// therefore be safe for concurrent use, which *sql.DB is.
package push

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/platform"
)

// Querier runs a single-value count query against the live database.
type Querier interface {
	Count(ctx context.Context, query string) (int64, error)
}

// Report is the outcome of analyzing a push.
type Report struct {
	// Warnings describe the data each destructive statement affects, in
	// statement order.
	Warnings []string
	// Truncates are statements to execute before the push so that it can
	// succeed. Each table appears once.
	Truncates []string
	// NeedsConfirmation is set when at least one warning was produced.
	NeedsConfirmation bool
}

// DefaultConcurrency is the number of count queries in flight at a time.
const DefaultConcurrency = 4

// Analyzer checks push statements against the live database.
type Analyzer struct {
	logger      *slog.Logger
	concurrency int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithConcurrency sets the number of concurrent count queries. Values below
// one select one.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		a.concurrency = max(n, 1)
	}
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Analyze runs a default Analyzer. See Analyzer.Analyze.
func Analyze(ctx context.Context, q Querier, stmts []ast.Node, dialect string) (*Report, error) {
	return NewAnalyzer().Analyze(ctx, q, stmts, dialect)
}

// check is one row count backing a possible warning.
type check struct {
	query string
	// warn builds the warning for a non-zero count.
	warn func(n int64) string
	// truncate is the table to empty when the count is non-zero.
	truncate string
	count    int64
}

// Analyze counts the rows affected by the destructive statements in stmts.
// A failing query aborts the analysis.
func (a *Analyzer) Analyze(ctx context.Context, q Querier, stmts []ast.Node, dialect string) (*Report, error) {
	dialect = platform.NormalizeDialect(dialect)
	var checks []*check
	for _, stmt := range stmts {
		if c := checkFor(stmt, dialect); c != nil {
			checks = append(checks, c)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for _, c := range checks {
		g.Go(func() error {
			n, err := q.Count(gctx, c.query)
			if err != nil {
				return fmt.Errorf("error running %q: %w", c.query, err)
			}
			c.count = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{}
	truncated := map[string]bool{}
	for _, c := range checks {
		if c.count == 0 {
			continue
		}
		w := c.warn(c.count)
		a.logger.Warn("Destructive change", "warning", w)
		report.Warnings = append(report.Warnings, w)
		if c.truncate != "" && !truncated[c.truncate] {
			truncated[c.truncate] = true
			report.Truncates = append(report.Truncates, truncateStatement(dialect, c.truncate))
		}
	}
	report.NeedsConfirmation = len(report.Warnings) > 0
	return report, nil
}

func checkFor(stmt ast.Node, dialect string) *check {
	switch n := stmt.(type) {
	case *ast.DropTableNode:
		table := qualify(dialect, n.Schema, n.Name)
		return &check{
			query: countRows(table),
			warn: func(count int64) string {
				return fmt.Sprintf("You're about to delete %s table with %d items", table, count)
			},
		}
	case *ast.DropColumnNode:
		table := qualify(dialect, n.Schema, n.Table)
		return &check{
			query: countRows(table),
			warn: func(count int64) string {
				return fmt.Sprintf("You're about to delete %s column in %s table with %d items", quote(dialect, n.Column), table, count)
			},
		}
	case *ast.AddColumnNode:
		if !n.Column.NotNull || n.Column.Default != nil || n.Column.Generated != nil || n.Column.Identity != nil || n.Column.AutoIncrement {
			return nil
		}
		table := qualify(dialect, n.Schema, n.Table)
		return &check{
			query: countRows(table),
			warn: func(count int64) string {
				return fmt.Sprintf("You're about to add not-null %s column without default value, which contains %d items", quote(dialect, n.Column.Name), count)
			},
			truncate: table,
		}
	case *ast.CreateUniqueNode:
		table := qualify(dialect, n.Schema, n.Table)
		return &check{
			query: countRows(table),
			warn: func(count int64) string {
				return fmt.Sprintf("You're about to add %s unique constraint to the table, which contains %d items. If this statement fails, you will receive an error from the database",
					quote(dialect, n.Unique.Name), count)
			},
		}
	case *ast.AlterColumnNode:
		table := qualify(dialect, n.Schema, n.Table)
		switch n.Kind() {
		case ast.KindSetType:
			return &check{
				query: countRows(table),
				warn: func(count int64) string {
					return fmt.Sprintf("You're about to change %s column type from %s to %s with %d items", quote(dialect, n.Column), n.OldType, n.Def.Type, count)
				},
				truncate: table,
			}
		case ast.KindSetNotNull:
			column := quote(dialect, n.Column)
			return &check{
				query: countRows(table) + " WHERE " + column + " IS NULL",
				warn: func(count int64) string {
					return fmt.Sprintf("You're about to set not-null constraint on %s column in %s table, which contains %d null items", column, table, count)
				},
				truncate: table,
			}
		}
	case *ast.RecreateTableNode:
		added := addedNotNullColumns(n)
		if len(added) == 0 {
			return nil
		}
		table := qualify(dialect, n.Schema, n.Name)
		return &check{
			query: countRows(table),
			warn: func(count int64) string {
				return fmt.Sprintf("You're about to recreate %s table with new not-null columns %s without default values, which contains %d items",
					table, strings.Join(added, ", "), count)
			},
			truncate: table,
		}
	}
	return nil
}

// addedNotNullColumns lists the columns of a recreated table that cannot be
// filled from the old table.
func addedNotNullColumns(n *ast.RecreateTableNode) []string {
	copied := make(map[string]bool, len(n.CopyColumns))
	for _, c := range n.CopyColumns {
		copied[c] = true
	}
	var out []string
	for _, c := range n.Columns {
		if !copied[c.Name] && c.NotNull && c.Default == nil && c.Generated == nil && !c.AutoIncrement {
			out = append(out, c.Name)
		}
	}
	return out
}

func countRows(table string) string {
	return "SELECT count(*) FROM " + table
}

func truncateStatement(dialect, table string) string {
	if platform.IsSQLiteFamily(dialect) {
		return "DELETE FROM " + table + ";"
	}
	return "TRUNCATE TABLE " + table + ";"
}

func quote(dialect, name string) string {
	if dialect == platform.Postgres {
		return pq.QuoteIdentifier(name)
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func qualify(dialect, schema, name string) string {
	if dialect == platform.Postgres && schema != "" && schema != platform.DefaultSchema(dialect) {
		return quote(dialect, schema) + "." + quote(dialect, name)
	}
	return quote(dialect, name)
}
