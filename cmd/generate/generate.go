package generate

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/stokaro/snapdiff/cmd/internal/cli"
	"github.com/stokaro/snapdiff/config"
	"github.com/stokaro/snapdiff/migration/generator"
)

const (
	prevFlag    = "prev"
	schemaFlag  = "schema"
	outFlag     = "out"
	dialectFlag = "dialect"
	nameFlag    = "name"
	renamesFlag = "renames"
	ignoreFlag  = "ignore-tables"
)

var generateFlags = map[string]cobraflags.Flag{
	prevFlag: &cobraflags.StringFlag{
		Name:  prevFlag,
		Value: "",
		Usage: "Snapshot of the last migration (default: newest snapshot in the output directory)",
	},
	schemaFlag: &cobraflags.StringFlag{
		Name:  schemaFlag,
		Value: "",
		Usage: "Snapshot describing the desired schema",
	},
	outFlag: &cobraflags.StringFlag{
		Name:  outFlag,
		Value: "",
		Usage: "Directory where migration files will be saved",
	},
	dialectFlag: &cobraflags.StringFlag{
		Name:  dialectFlag,
		Value: "",
		Usage: "Database dialect (postgresql, mysql, sqlite, turso, singlestore). Empty uses the snapshot dialect",
	},
	nameFlag: &cobraflags.StringFlag{
		Name:  nameFlag,
		Value: "",
		Usage: "Name for the migration",
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
	custom      bool
	dryRun      bool
	squashed    bool
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a migration from two schema snapshots",
		Long: `Generate up and down migration files by diffing the snapshot of the last
migration against the snapshot of the desired schema. The snapshot is stored
next to the migration so the next run diffs against it.

Examples:
  snapdiff generate --schema schema.json --name add_users
  snapdiff generate --renames "public.users->public.accounts"
  snapdiff generate --interactive
  snapdiff generate --custom --name seed_roles`,
		RunE: generateCommand,
	}

	cobraflags.RegisterMap(generateCmd, generateFlags)
	generateCmd.Flags().BoolVar(&interactive, "interactive", false, "Ask which added and removed entities are renames")
	generateCmd.Flags().BoolVar(&custom, "custom", false, "Create an empty migration for hand written SQL")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the migration instead of writing files")
	generateCmd.Flags().BoolVar(&squashed, "squashed", false, "Store the snapshot in the squashed shape read by older tooling")
	return generateCmd
}

func generateCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := cli.LoadConfig(cmd, func(f *config.File) {
		cli.Override(&f.Prev, generateFlags[prevFlag].GetString())
		cli.Override(&f.Schema, generateFlags[schemaFlag].GetString())
		cli.Override(&f.Out, generateFlags[outFlag].GetString())
		cli.Override(&f.Dialect, generateFlags[dialectFlag].GetString())
		if renames := cli.SplitList(generateFlags[renamesFlag].GetString()); len(renames) > 0 {
			f.Renames = renames
		}
		if ignored := cli.SplitList(generateFlags[ignoreFlag].GetString()); len(ignored) > 0 {
			f.IgnoredTables = ignored
		}
	})
	if err != nil {
		return err
	}

	if cfg.Prev == "" {
		if cfg.Prev, err = generator.LatestSnapshot(cfg.Out); err != nil {
			return err
		}
	}

	var prompter *cli.Prompter
	if interactive {
		prompter = cli.NewPrompter(os.Stdin, cmd.OutOrStdout())
	}
	opts := generator.GenerateMigrationOptions{
		PrevSnapshot:    cfg.Prev,
		CurrentSnapshot: cfg.Schema,
		Dialect:         cfg.Dialect,
		Resolvers:       cli.Resolvers(cfg.Renames, prompter),
		IgnoredTables:   cfg.IgnoredTables,
		MigrationName:   generateFlags[nameFlag].GetString(),
		Squashed:        squashed,
		Logger:          slog.Default(),
	}

	var m *generator.Migration
	if custom {
		m, err = generator.Custom(opts)
	} else {
		m, err = generator.Generate(cmd.Context(), opts)
	}
	if err != nil {
		return fmt.Errorf("error generating migration: %w", err)
	}

	out := cmd.OutOrStdout()
	if m == nil {
		fmt.Fprintln(out, "No schema changes, nothing to migrate 😴")
		return nil
	}
	for _, w := range m.Result.Warnings {
		fmt.Fprintf(out, "⚠️  %s\n", w)
	}

	if dryRun {
		fmt.Fprintln(out, "-- UP --")
		fmt.Fprint(out, m.UpSQL)
		fmt.Fprintln(out, "-- DOWN --")
		fmt.Fprint(out, m.DownSQL)
		return nil
	}

	files, err := generator.WriteFiles(cfg.Out, m)
	if err != nil {
		return fmt.Errorf("error writing migration files: %w", err)
	}

	fmt.Fprintf(out, "Generated migration files:\n")
	fmt.Fprintf(out, "  UP:       %s\n", files.UpFile)
	fmt.Fprintf(out, "  DOWN:     %s\n", files.DownFile)
	fmt.Fprintf(out, "  SNAPSHOT: %s\n", files.SnapshotFile)
	fmt.Fprintf(out, "  Version:  %d\n", files.Version)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "✅ Migration with %d statements created successfully!\n", len(m.Result.SQLStatements))
	return nil
}
