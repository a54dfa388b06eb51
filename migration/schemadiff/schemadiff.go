// Package schemadiff is the entry point of the migration pipeline: it turns
// two snapshots into the ordered statements that migrate the first into the
// second, and their SQL.
//
// # Pipeline
//
//  1. Both snapshots are normalized and ignored tables are removed.
//  2. Entity categories are resolved one after another (see stages). For each
//     category the added and deleted entities are handed to the category's
//     resolver; the renames it reports are turned into statements and applied
//     to the previous snapshot before the next category is looked at. Later
//     categories therefore only see genuine additions and deletions.
//  3. The patched previous snapshot is compared with the current one and every
//     alteration is turned into statements.
//  4. Statements are sequenced, redundant ones removed, tables that the
//     dialect cannot alter in place are recreated, and everything is rendered.
//
// # Usage Example
//
//	differ := schemadiff.NewDiffer(schemadiff.WithLogger(logger))
//	res, err := differ.Diff(ctx, prev, cur, resolver.StaticSet("public.users->public.accounts"), nil)
//	if err != nil {
//		return err
//	}
//	for _, stmt := range res.SQLStatements {
//		fmt.Println(stmt)
//	}
//
// # Thread Safety
//
// A Differ holds no per-run state and may be shared. Resolvers are called
// sequentially from the calling goroutine.
package schemadiff

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stokaro/snapdiff/config"
	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/platform"
	"github.com/stokaro/snapdiff/core/renderer"
	"github.com/stokaro/snapdiff/core/snapshot"
	"github.com/stokaro/snapdiff/migration/planner"
	"github.com/stokaro/snapdiff/migration/planner/combiner"
	"github.com/stokaro/snapdiff/migration/resolver"
	difftypes "github.com/stokaro/snapdiff/migration/schemadiff/types"
)

// Differ runs the diff pipeline.
type Differ struct {
	logger *slog.Logger
}

// Option configures a Differ.
type Option func(*Differ)

// WithLogger sets the logger used for debug output and warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Differ) {
		d.logger = logger
	}
}

// NewDiffer creates a Differ. Without options it logs to slog.Default().
func NewDiffer(opts ...Option) *Differ {
	d := &Differ{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Diff runs the pipeline with a default Differ. See Differ.Diff.
func Diff(ctx context.Context, prev, cur *ddl.Snapshot, resolvers resolver.Set, opts *config.DiffOptions) (*difftypes.Result, error) {
	return NewDiffer().Diff(ctx, prev, cur, resolvers, opts)
}

// Diff computes the statements migrating prev into cur.
//
// prev may be nil for the first migration of a project. Missing resolvers
// in resolvers fall back to resolver.CreateDelete, and nil opts select the
// defaults (config.DefaultDiffOptions).
//
// Errors are returned for snapshots of different dialects, resolver failures
// (including resolver.ErrPartition), renames of unknown entities and
// statements the dialect cannot render. Nothing is partially returned.
func (d *Differ) Diff(ctx context.Context, prev, cur *ddl.Snapshot, resolvers resolver.Set, opts *config.DiffOptions) (*difftypes.Result, error) {
	if cur == nil {
		return nil, fmt.Errorf("current snapshot is required")
	}
	cur, err := ddl.Normalize(cur)
	if err != nil {
		return nil, fmt.Errorf("error normalizing current snapshot: %w", err)
	}
	if prev == nil {
		prev = ddl.NewSnapshot(cur.Dialect)
	}
	prev, err = ddl.Normalize(prev)
	if err != nil {
		return nil, fmt.Errorf("error normalizing previous snapshot: %w", err)
	}
	if prev.Dialect != cur.Dialect {
		return nil, fmt.Errorf("%w: previous snapshot is %s, current snapshot is %s", snapshot.ErrDialectMismatch, prev.Dialect, cur.Dialect)
	}
	dropIgnoredTables(prev, opts)
	dropIgnoredTables(cur, opts)

	r := &run{
		logger:    d.logger,
		target:    planner.Target{Dialect: cur.Dialect, Action: opts.EffectiveAction()},
		resolvers: resolvers.Defaults(),
		prev:      prev,
		cur:       cur,
		plan:      planner.NewPlan(),
		meta:      ddl.NewMeta(),
		added:     map[string][]*ddl.Column{},
	}
	for _, st := range stages {
		if st.postgresOnly && !r.postgres() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d.logger.Debug("Resolving", "stage", st.name)
		if err := st.run(r, ctx); err != nil {
			return nil, fmt.Errorf("error resolving %s: %w", st.name, err)
		}
	}
	r.alterations()

	stmts := planner.Filter(r.plan.Statements())
	if caps, ok := combiner.For(cur.Dialect); ok {
		stmts = combiner.Combine(stmts, caps, r.prev, r.cur)
	}
	sql, err := renderer.Render(stmts, cur.Dialect, r.target.Action)
	if err != nil {
		return nil, fmt.Errorf("error rendering statements: %w", err)
	}
	d.logger.Debug("Diff completed", "dialect", cur.Dialect, "statements", len(stmts), "sql", len(sql))

	return &difftypes.Result{
		Statements:    stmts,
		SQLStatements: sql,
		Meta:          r.meta,
		Warnings:      r.plan.Warnings(),
	}, nil
}

func dropIgnoredTables(s *ddl.Snapshot, opts *config.DiffOptions) {
	kept := make(map[string]*ddl.Table, len(s.Tables))
	for _, key := range opts.FilterIgnoredTables(ddl.SortedKeys(s.Tables)) {
		kept[key] = s.Tables[key]
	}
	s.Tables = kept
}

// run is the state of one Diff call. prev is replaced by a patched copy
// after every stage that resolved renames.
type run struct {
	logger    *slog.Logger
	target    planner.Target
	resolvers resolver.Set
	prev      *ddl.Snapshot
	cur       *ddl.Snapshot
	plan      *planner.Plan
	meta      ddl.Meta
	// added holds the columns added to each surviving table, by table key.
	added map[string][]*ddl.Column
}

func (r *run) postgres() bool {
	return r.target.Dialect == platform.Postgres
}
