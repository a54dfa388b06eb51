package push

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/stokaro/snapdiff/cmd/internal/cli"
	"github.com/stokaro/snapdiff/config"
	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/platform"
	"github.com/stokaro/snapdiff/core/snapshot"
	"github.com/stokaro/snapdiff/dbschema"
	pushflow "github.com/stokaro/snapdiff/migration/push"
	"github.com/stokaro/snapdiff/migration/schemadiff"
)

const (
	prevFlag        = "prev"
	schemaFlag      = "schema"
	databaseURLFlag = "database-url"
	renamesFlag     = "renames"
	ignoreFlag      = "ignore-tables"
)

var pushFlags = map[string]cobraflags.Flag{
	prevFlag: &cobraflags.StringFlag{
		Name:  prevFlag,
		Value: "",
		Usage: "Snapshot of the schema currently deployed to the database",
	},
	schemaFlag: &cobraflags.StringFlag{
		Name:  schemaFlag,
		Value: "",
		Usage: "Snapshot describing the desired schema",
	},
	databaseURLFlag: &cobraflags.StringFlag{
		Name:  databaseURLFlag,
		Value: "",
		Usage: "Database URL (postgres://, pq://, mysql://, singlestore://, sqlite://, libsql://, turso://)",
	},
	renamesFlag: &cobraflags.StringFlag{
		Name:  renamesFlag,
		Value: "",
		Usage: "Comma separated rename hints, e.g. public.users->public.accounts",
	},
	ignoreFlag: &cobraflags.StringFlag{
		Name:  ignoreFlag,
		Value: "",
		Usage: "Comma separated tables left out of the diff",
	},
}

var (
	interactive bool
	force       bool
)

// NewPushCommand creates the push command.
func NewPushCommand() *cobra.Command {
	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Plan pushing a schema snapshot straight to a database",
		Long: `Diff the deployed snapshot against the desired one in push mode and check
the live database for data the statements would lose. After confirmation the
statements to execute are printed, preceded by the truncates they need.

Examples:
  snapdiff push --prev deployed.json --schema schema.json --database-url postgres://localhost/app
  snapdiff push --force > push.sql`,
		RunE: pushCommand,
	}

	cobraflags.RegisterMap(pushCmd, pushFlags)
	pushCmd.Flags().BoolVar(&interactive, "interactive", false, "Ask which added and removed entities are renames")
	pushCmd.Flags().BoolVar(&force, "force", false, "Do not ask before statements that lose data")
	return pushCmd
}

func pushCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := cli.LoadConfig(cmd, func(f *config.File) {
		f.Action = string(config.ActionPush)
		cli.Override(&f.Prev, pushFlags[prevFlag].GetString())
		cli.Override(&f.Schema, pushFlags[schemaFlag].GetString())
		cli.Override(&f.DatabaseURL, pushFlags[databaseURLFlag].GetString())
		if renames := cli.SplitList(pushFlags[renamesFlag].GetString()); len(renames) > 0 {
			f.Renames = renames
		}
		if ignored := cli.SplitList(pushFlags[ignoreFlag].GetString()); len(ignored) > 0 {
			f.IgnoredTables = ignored
		}
	})
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database URL is required (use --database-url or %s_DATABASE_URL)", config.EnvPrefix)
	}

	ctx := cmd.Context()
	conn, err := dbschema.ConnectToDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	dialect := conn.Info().Dialect

	cur, err := readSnapshot(cfg.Schema, dialect)
	if err != nil {
		return fmt.Errorf("error reading schema snapshot: %w", err)
	}
	prev := ddl.NewSnapshot(cur.Dialect)
	if cfg.Prev != "" {
		if prev, err = readSnapshot(cfg.Prev, dialect); err != nil {
			return fmt.Errorf("error reading deployed snapshot: %w", err)
		}
	}

	diffOpts, err := cfg.DiffOptions()
	if err != nil {
		return err
	}
	prompter := cli.NewPrompter(os.Stdin, cmd.ErrOrStderr())
	var renamePrompt *cli.Prompter
	if interactive {
		renamePrompt = prompter
	}
	resolvers := cli.Resolvers(cfg.Renames, renamePrompt)
	res, err := schemadiff.NewDiffer(schemadiff.WithLogger(slog.Default())).Diff(ctx, prev, cur, resolvers, diffOpts)
	if err != nil {
		return fmt.Errorf("error computing push: %w", err)
	}

	stderr := cmd.ErrOrStderr()
	if !res.HasChanges() {
		fmt.Fprintln(stderr, "No schema changes, nothing to push 😴")
		return nil
	}

	report, err := pushflow.NewAnalyzer(pushflow.WithLogger(slog.Default())).Analyze(ctx, conn, res.Statements, dialect)
	if err != nil {
		return fmt.Errorf("error checking data loss: %w", err)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "⚠️  %s\n", w)
	}
	if report.NeedsConfirmation && !force {
		fmt.Fprintln(stderr, "Warning: the push contains data-loss statements:")
		for _, w := range report.Warnings {
			fmt.Fprintf(stderr, "  · %s\n", w)
		}
		ok, err := prompter.Confirm(ctx, "Do you still want to push changes?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(stderr, "Push aborted")
			return nil
		}
	}

	out := cmd.OutOrStdout()
	for _, stmt := range append(report.Truncates, res.SQLStatements...) {
		fmt.Fprintln(out, strings.TrimSpace(stmt))
	}
	fmt.Fprintf(stderr, "✅ %d statements ready to push\n", len(report.Truncates)+len(res.SQLStatements))
	return nil
}

// readSnapshot reads a snapshot and checks it belongs to the database
// family. LibSQL snapshots may be pushed to SQLite databases and back.
func readSnapshot(path, dialect string) (*ddl.Snapshot, error) {
	s, err := snapshot.ReadFile(path)
	if err != nil {
		return nil, err
	}
	got := platform.NormalizeDialect(s.Dialect)
	if got != dialect && !(platform.IsSQLiteFamily(got) && platform.IsSQLiteFamily(dialect)) {
		return nil, fmt.Errorf("%w: snapshot is %s, database is %s", snapshot.ErrDialectMismatch, got, dialect)
	}
	return s, nil
}
