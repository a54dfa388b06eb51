// Package generator implements the generate-migration flow: it diffs two
// snapshot files and produces the migration text together with the snapshot
// that has to be stored next to it.
//
// # Migration Text
//
// Statements are separated by Breakpoint so that migration runners can split
// the file without parsing SQL. The down migration is computed by diffing the
// snapshots the other way round, with every rename of the up migration
// inverted.
//
// # Usage Example
//
//	m, err := generator.Generate(ctx, generator.GenerateMigrationOptions{
//		PrevSnapshot:    "migrations/0001_snapshot.json",
//		CurrentSnapshot: "schema.json",
//		MigrationName:   "add users",
//	})
//	if err != nil {
//		return err
//	}
//	if m == nil {
//		return nil // nothing changed
//	}
//	files, err := generator.WriteFiles("migrations", m)
package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/stokaro/snapdiff/config"
	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/snapshot"
	"github.com/stokaro/snapdiff/migration/resolver"
	"github.com/stokaro/snapdiff/migration/schemadiff"
	difftypes "github.com/stokaro/snapdiff/migration/schemadiff/types"
)

// Breakpoint separates statements in generated migration files.
const Breakpoint = "--> statement-breakpoint"

// GenerateMigrationOptions contains options for migration generation
type GenerateMigrationOptions struct {
	// PrevSnapshot is the snapshot file of the last migration. Empty for the
	// first migration of a project.
	PrevSnapshot string
	// CurrentSnapshot is the snapshot file describing the desired schema
	CurrentSnapshot string
	// Dialect overrides the dialect recorded in the snapshot files (optional)
	Dialect string
	// Resolvers decide which added/deleted pairs are renames. Missing
	// entries never pair anything.
	Resolvers resolver.Set
	// IgnoredTables are left out of the diff
	IgnoredTables []string
	// MigrationName is the name for the migration (optional, defaults to "migration")
	MigrationName string
	// Squashed stores the migration snapshot in the squashed shape
	Squashed bool
	// Logger receives debug output (optional, defaults to slog.Default())
	Logger *slog.Logger
}

// Migration is a generated migration.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
	// Snapshot is the current snapshot with the rename history merged into
	// its _meta section.
	Snapshot *ddl.Snapshot
	// Result is the diff the up migration was rendered from.
	Result *difftypes.Result
	// Squashed selects the squashed snapshot encoding in WriteFiles.
	Squashed bool
}

// MigrationFiles represents the generated migration files
type MigrationFiles struct {
	UpFile       string // Path to the up migration file
	DownFile     string // Path to the down migration file
	SnapshotFile string // Path to the snapshot stored with the migration
	Version      int    // Migration version (timestamp)
}

// Generate diffs the two snapshot files. It returns nil, nil when the
// snapshots describe the same schema.
func Generate(ctx context.Context, opts GenerateMigrationOptions) (*Migration, error) {
	if opts.MigrationName == "" {
		opts.MigrationName = "migration"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cur, err := readSnapshot(opts.CurrentSnapshot, opts.Dialect)
	if err != nil {
		return nil, fmt.Errorf("error reading current snapshot: %w", err)
	}
	prev := ddl.NewSnapshot(cur.Dialect)
	if opts.PrevSnapshot != "" {
		prev, err = readSnapshot(opts.PrevSnapshot, opts.Dialect)
		if err != nil {
			return nil, fmt.Errorf("error reading previous snapshot: %w", err)
		}
	}

	m, err := GenerateFromSnapshots(ctx, prev, cur, opts, logger)
	if err != nil {
		return nil, err
	}
	if m != nil {
		logger.Debug("Generated migration", "version", m.Version, "statements", len(m.Result.SQLStatements))
	}
	return m, nil
}

// GenerateFromSnapshots is Generate for snapshots that are already decoded.
// prev may be nil for the first migration. The snapshots are not modified.
func GenerateFromSnapshots(ctx context.Context, prev, cur *ddl.Snapshot, opts GenerateMigrationOptions, logger *slog.Logger) (*Migration, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cur == nil {
		return nil, fmt.Errorf("current snapshot is required")
	}
	if prev == nil {
		prev = ddl.NewSnapshot(cur.Dialect)
	}
	differ := schemadiff.NewDiffer(schemadiff.WithLogger(logger))
	diffOpts := &config.DiffOptions{Action: config.ActionGenerate, IgnoredTables: opts.IgnoredTables}

	up, err := differ.Diff(ctx, prev, cur, opts.Resolvers, diffOpts)
	if err != nil {
		return nil, fmt.Errorf("error generating up migration: %w", err)
	}
	if !up.HasChanges() {
		return nil, nil
	}

	down, err := differ.Diff(ctx, cur, prev, reverseResolvers(up.Meta), diffOpts)
	if err != nil {
		return nil, fmt.Errorf("error generating down migration: %w", err)
	}

	next := cur.Clone()
	next.Meta = MergeMeta(prev.Meta, up.Meta)

	return &Migration{
		Version:  GetNextMigrationVersion(),
		Name:     opts.MigrationName,
		UpSQL:    JoinStatements(up.SQLStatements),
		DownSQL:  JoinStatements(down.SQLStatements),
		Snapshot: next,
		Result:   up,
		Squashed: opts.Squashed,
	}, nil
}

func readSnapshot(path, dialect string) (*ddl.Snapshot, error) {
	if dialect == "" {
		return snapshot.ReadFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return snapshot.DecodeFor(data, dialect)
}

// reverseResolvers pairs the entities renamed by meta the other way round.
func reverseResolvers(meta ddl.Meta) resolver.Set {
	var pairs []string
	for _, m := range []map[string]string{meta.Schemas, meta.Tables, meta.Columns} {
		for _, from := range ddl.SortedKeys(m) {
			pairs = append(pairs, m[from]+resolver.PairSeparator+from)
		}
	}
	if len(pairs) == 0 {
		return resolver.Set{}
	}
	return resolver.StaticSet(pairs...)
}

// JoinStatements joins rendered statements into migration file text.
func JoinStatements(stmts []string) string {
	if len(stmts) == 0 {
		return ""
	}
	return strings.Join(stmts, "\n"+Breakpoint+"\n") + "\n"
}

// SplitStatements is the inverse of JoinStatements.
func SplitStatements(text string) []string {
	var out []string
	for _, part := range strings.Split(text, Breakpoint) {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MergeMeta returns the rename history of base extended with the renames of
// next. Chains are collapsed: when base renamed a to b and next renames b to
// c, the result maps a to c.
func MergeMeta(base, next ddl.Meta) ddl.Meta {
	return ddl.Meta{
		Schemas: mergeRenames(base.Schemas, next.Schemas),
		Tables:  mergeRenames(base.Tables, next.Tables),
		Columns: mergeRenames(base.Columns, next.Columns),
	}
}

func mergeRenames(base, next map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(next))
	maps.Copy(out, base)
	for from, to := range next {
		chained := false
		for origin, target := range out {
			if target == from {
				out[origin] = to
				chained = true
			}
		}
		if !chained {
			out[from] = to
		}
	}
	return out
}

// Custom creates an empty migration for hand written SQL. Its snapshot is
// the previous one, so the next generated migration diffs against the same
// schema.
func Custom(opts GenerateMigrationOptions) (*Migration, error) {
	if opts.MigrationName == "" {
		opts.MigrationName = "custom"
	}
	if opts.PrevSnapshot == "" {
		return nil, fmt.Errorf("custom migration requires a previous snapshot")
	}
	prev, err := readSnapshot(opts.PrevSnapshot, opts.Dialect)
	if err != nil {
		return nil, fmt.Errorf("error reading previous snapshot: %w", err)
	}
	return &Migration{
		Version:  GetNextMigrationVersion(),
		Name:     opts.MigrationName,
		UpSQL:    "-- Custom SQL migration file, put your code below! --\n",
		DownSQL:  "",
		Snapshot: prev,
		Result:   &difftypes.Result{},
		Squashed: opts.Squashed,
	}, nil
}

var snapshotFile = regexp.MustCompile(`^(\d+)_snapshot\.json$`)

// LatestSnapshot returns the snapshot of the newest migration in dir, or ""
// when dir holds none.
func LatestSnapshot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error reading migrations directory: %w", err)
	}
	latest, latestVersion := "", -1
	for _, e := range entries {
		m := snapshotFile.FindStringSubmatch(e.Name())
		if e.IsDir() || m == nil {
			continue
		}
		if v, err := strconv.Atoi(m[1]); err == nil && v > latestVersion {
			latest, latestVersion = filepath.Join(dir, e.Name()), v
		}
	}
	return latest, nil
}

// GetNextMigrationVersion returns a version derived from the current UTC time
// (YYYYMMDDHHMMSS).
func GetNextMigrationVersion() int {
	v, _ := strconv.Atoi(time.Now().UTC().Format("20060102150405"))
	return v
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateMigrationFileName builds "<version>_<name>.<direction>.sql".
func GenerateMigrationFileName(version int, name, direction string) string {
	slug := strings.Trim(nonWord.ReplaceAllString(strings.ToLower(name), "_"), "_")
	return fmt.Sprintf("%d_%s.%s.sql", version, slug, direction)
}

// WriteFiles writes the up and down migrations and the snapshot into
// outputDir. The version is bumped while a non-empty file with the same name
// exists.
func WriteFiles(outputDir string, m *Migration) (*MigrationFiles, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	version := m.Version
	upFilePath := filepath.Join(outputDir, GenerateMigrationFileName(version, m.Name, "up"))
	for {
		info, err := os.Stat(upFilePath)
		if err != nil || info.Size() == 0 {
			break
		}
		version++
		upFilePath = filepath.Join(outputDir, GenerateMigrationFileName(version, m.Name, "up"))
	}
	downFilePath := filepath.Join(outputDir, GenerateMigrationFileName(version, m.Name, "down"))
	snapshotPath := filepath.Join(outputDir, fmt.Sprintf("%d_snapshot.json", version))

	if err := os.WriteFile(upFilePath, []byte(m.UpSQL), 0644); err != nil { //nolint:gosec // 0644 is fine
		return nil, fmt.Errorf("failed to write up migration file: %w", err)
	}
	if err := os.WriteFile(downFilePath, []byte(m.DownSQL), 0644); err != nil { //nolint:gosec // 0644 is fine
		return nil, fmt.Errorf("failed to write down migration file: %w", err)
	}
	writeSnapshot := snapshot.WriteFile
	if m.Squashed {
		writeSnapshot = snapshot.WriteFileSquashed
	}
	if err := writeSnapshot(snapshotPath, m.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to write snapshot file: %w", err)
	}

	return &MigrationFiles{
		UpFile:       upFilePath,
		DownFile:     downFilePath,
		SnapshotFile: snapshotPath,
		Version:      version,
	}, nil
}
