package integration_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/snapdiff/config"
	"github.com/stokaro/snapdiff/core/platform"
	"github.com/stokaro/snapdiff/dbschema"
	"github.com/stokaro/snapdiff/integration"
	"github.com/stokaro/snapdiff/migration/generator"
	"github.com/stokaro/snapdiff/migration/push"
	"github.com/stokaro/snapdiff/migration/resolver"
	"github.com/stokaro/snapdiff/migration/schemadiff"
)

func connect(t *testing.T, dialect string) *dbschema.DatabaseConnection {
	t.Helper()
	env := integration.DatabaseURLEnv[dialect]
	url := os.Getenv(env)
	if url == "" {
		t.Skipf("Skipping %s integration test: %s environment variable not set", dialect, env)
	}
	conn, err := dbschema.ConnectToDatabase(context.Background(), url)
	qt.New(t).Assert(err, qt.IsNil)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// TestGetAllScenarios checks the generated migrations without a database.
func TestGetAllScenarios(t *testing.T) {
	for _, sc := range integration.GetAllScenarios() {
		for _, dialect := range platform.All() {
			t.Run(sc.Name+"/"+dialect, func(t *testing.T) {
				c := qt.New(t)
				c.Assert(sc.Description, qt.Not(qt.Equals), "")

				migrations, err := integration.GenerateScenario(context.Background(), sc, dialect)
				c.Assert(err, qt.IsNil)
				c.Assert(migrations, qt.Not(qt.HasLen), 0)

				for _, m := range migrations {
					c.Assert(m.Migration.UpSQL, qt.Not(qt.Equals), "", qt.Commentf("step %s", m.Step))
					c.Assert(m.Migration.DownSQL, qt.Not(qt.Equals), "", qt.Commentf("step %s", m.Step))
				}

				// the stored snapshot is the new baseline
				last := migrations[len(migrations)-1].Migration
				again, err := generator.GenerateFromSnapshots(context.Background(), last.Snapshot, last.Snapshot.Clone(), generator.GenerateMigrationOptions{}, nil)
				c.Assert(err, qt.IsNil)
				c.Assert(again, qt.IsNil)
			})
		}
	}
}

func TestScenario_IdempotentStepsProduceOneMigration(t *testing.T) {
	c := qt.New(t)
	for _, sc := range integration.GetAllScenarios() {
		if sc.Name != "idempotent_steps" {
			continue
		}
		migrations, err := integration.GenerateScenario(context.Background(), sc, platform.Postgres)
		c.Assert(err, qt.IsNil)
		c.Assert(migrations, qt.HasLen, 1)
		c.Assert(migrations[0].Step, qt.Equals, "create_users")
	}
}

func TestScenario_RenameIsRecorded(t *testing.T) {
	c := qt.New(t)
	for _, sc := range integration.GetAllScenarios() {
		if sc.Name != "rename_table" {
			continue
		}
		migrations, err := integration.GenerateScenario(context.Background(), sc, platform.MySQL)
		c.Assert(err, qt.IsNil)
		c.Assert(migrations, qt.HasLen, 2)
		c.Assert(migrations[1].Migration.Snapshot.Meta.Tables, qt.DeepEquals, map[string]string{"users": "accounts"})
	}
}

func TestRunScenarios(t *testing.T) {
	for _, dialect := range platform.All() {
		t.Run(dialect, func(t *testing.T) {
			conn := connect(t, dialect)
			for _, sc := range integration.GetAllScenarios() {
				t.Run(sc.Name, func(t *testing.T) {
					c := qt.New(t)
					c.Assert(integration.RunScenario(context.Background(), conn, sc), qt.IsNil)
				})
			}
		})
	}
}

func TestPushAnalysis(t *testing.T) {
	for _, dialect := range platform.All() {
		t.Run(dialect, func(t *testing.T) {
			c := qt.New(t)
			conn := connect(t, dialect)
			ctx := context.Background()
			prev, cur := integration.PushDropColumn(conn.Info().Dialect)

			setup, err := generator.GenerateFromSnapshots(ctx, nil, prev, generator.GenerateMigrationOptions{}, nil)
			c.Assert(err, qt.IsNil)
			c.Assert(integration.Apply(ctx, conn, setup.UpSQL), qt.IsNil)
			defer func() {
				c.Check(integration.Apply(ctx, conn, setup.DownSQL), qt.IsNil)
			}()
			for i := 1; i <= 3; i++ {
				_, err := conn.DB().ExecContext(ctx, fmt.Sprintf("INSERT INTO users (id, email) VALUES (%d, 'user%d@example.com')", i, i))
				c.Assert(err, qt.IsNil)
			}

			res, err := schemadiff.Diff(ctx, prev, cur, resolver.Set{}, config.WithAction(config.ActionPush))
			c.Assert(err, qt.IsNil)
			report, err := push.Analyze(ctx, conn, res.Statements, conn.Info().Dialect)
			c.Assert(err, qt.IsNil)
			c.Assert(report.NeedsConfirmation, qt.IsTrue)
			c.Assert(report.Warnings, qt.HasLen, 1)
			c.Assert(report.Warnings[0], qt.Matches, `.*display_name.*3 items.*`)
		})
	}
}
