package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/stokaro/snapdiff/cmd/generate"
	"github.com/stokaro/snapdiff/cmd/internal/cli"
	"github.com/stokaro/snapdiff/cmd/push"
	"github.com/stokaro/snapdiff/config"
)

var debug bool

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "snapdiff",
		Short: "Schema snapshot diff and migration generator",
		Long: `snapdiff compares two schema snapshots and produces the SQL statements
that turn the first into the second, for PostgreSQL, MySQL, SQLite, LibSQL
and SingleStore.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogger()
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().String(cli.ConfigFlag, "", "Configuration file (default: snapdiff.{yaml,json,toml} in the working directory)")

	root.AddCommand(generate.NewGenerateCommand())
	root.AddCommand(push.NewPushCommand())
	return root
}

func setupLogger() {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
