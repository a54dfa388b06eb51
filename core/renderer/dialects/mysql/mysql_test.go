package mysql_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/renderer/dialects/mysql"
	"github.com/stokaro/snapdiff/core/renderer/types"
)

func TestMySQLRenderer_Render(t *testing.T) {
	users := ddl.NewTable("", "users")

	tests := []struct {
		name     string
		node     ast.Node
		expected string
	}{
		{
			name:     "add column",
			node:     &ast.AddColumnNode{Table: "users", Column: &ddl.Column{Name: "name", Type: "varchar(255)", NotNull: true}},
			expected: "ALTER TABLE `users` ADD `name` varchar(255) NOT NULL;",
		},
		{
			name:     "rename table",
			node:     &ast.RenameTableNode{From: "users", To: "users2"},
			expected: "RENAME TABLE `users` TO `users2`;",
		},
		{
			name: "modify column keeps full definition",
			node: ast.NewAlterColumn(ast.KindSetAutoIncrement, users, &ddl.Column{
				Name: "id", Type: "int", PrimaryKey: true, AutoIncrement: true, NotNull: true,
			}),
			expected: "ALTER TABLE `users` MODIFY COLUMN `id` int AUTO_INCREMENT NOT NULL;",
		},
		{
			name: "autoincrement that becomes the primary key",
			node: &ast.AlterColumnNode{
				Type: ast.KindSetAutoIncrement, Table: "users", Column: "id", WithPrimaryKey: true,
				Def: &ddl.Column{Name: "id", Type: "int", PrimaryKey: true, AutoIncrement: true, NotNull: true},
			},
			expected: "ALTER TABLE `users` MODIFY COLUMN `id` int AUTO_INCREMENT NOT NULL PRIMARY KEY;",
		},
		{
			name: "on update timestamp",
			node: ast.NewAlterColumn(ast.KindSetOnUpdate, users, &ddl.Column{
				Name: "updated_at", Type: "timestamp", Default: ddl.NewDefault("(now())"), OnUpdate: true,
			}),
			expected: "ALTER TABLE `users` MODIFY COLUMN `updated_at` timestamp DEFAULT (now()) ON UPDATE CURRENT_TIMESTAMP;",
		},
		{
			name: "generated column",
			node: ast.NewAlterColumn(ast.KindAlterGenerated, users, &ddl.Column{
				Name: "full", Type: "text", Generated: &ddl.Generated{Type: "stored", As: "concat(a, b)"},
			}),
			expected: "ALTER TABLE `users` MODIFY COLUMN `full` text GENERATED ALWAYS AS (concat(a, b)) STORED;",
		},
		{
			name:     "set primary key",
			node:     ast.NewAlterColumn(ast.KindSetPK, users, &ddl.Column{Name: "id", Type: "int"}),
			expected: "ALTER TABLE `users` ADD PRIMARY KEY (`id`);",
		},
		{
			name:     "drop primary key",
			node:     ast.NewAlterColumn(ast.KindDropPK, users, &ddl.Column{Name: "id", Type: "int"}),
			expected: "ALTER TABLE `users` DROP PRIMARY KEY;",
		},
		{
			name: "create index with expression",
			node: &ast.CreateIndexNode{Type: ast.KindCreateIndex, Table: "users", Index: &ddl.Index{
				Name: "users_idx", IsUnique: true,
				Columns: []ddl.IndexColumn{{Expression: "email", Asc: true}, {Expression: "lower(name)", IsExpression: true, Asc: true}},
			}},
			expected: "CREATE UNIQUE INDEX `users_idx` ON `users` (`email`,(lower(name)));",
		},
		{
			name:     "drop index",
			node:     &ast.DropIndexNode{Table: "users", Name: "users_idx"},
			expected: "DROP INDEX `users_idx` ON `users`;",
		},
		{
			name: "create reference",
			node: &ast.CreateReferenceNode{Table: "posts", ForeignKey: &ddl.ForeignKey{
				Name: "posts_fk", ColumnsFrom: []string{"user_id"}, TableTo: "users", ColumnsTo: []string{"id"}, OnDelete: "cascade",
			}},
			expected: "ALTER TABLE `posts` ADD CONSTRAINT `posts_fk` FOREIGN KEY (`user_id`) REFERENCES `users`(`id`) ON DELETE CASCADE;",
		},
		{
			name:     "delete reference",
			node:     &ast.DeleteReferenceNode{Table: "posts", ForeignKey: &ddl.ForeignKey{Name: "posts_fk"}},
			expected: "ALTER TABLE `posts` DROP FOREIGN KEY `posts_fk`;",
		},
		{
			name: "alter composite primary key",
			node: &ast.AlterCompositePKNode{Table: "tags",
				Old: &ddl.PrimaryKey{Columns: []string{"a"}}, New: &ddl.PrimaryKey{Columns: []string{"a", "b"}}},
			expected: "ALTER TABLE `tags` DROP PRIMARY KEY, ADD PRIMARY KEY(`a`,`b`);",
		},
		{
			name:     "delete unique",
			node:     &ast.DeleteUniqueNode{Table: "users", Unique: &ddl.Unique{Name: "users_email_unique"}},
			expected: "ALTER TABLE `users` DROP INDEX `users_email_unique`;",
		},
		{
			name: "create view",
			node: &ast.CreateViewNode{View: &ddl.View{
				Name: "v", Definition: "select 1", Algorithm: "merge", SQLSecurity: "definer", CheckOption: "cascaded",
			}},
			expected: "CREATE ALGORITHM = merge SQL SECURITY definer VIEW `v` AS (select 1) WITH cascaded CHECK OPTION;",
		},
		{
			name:     "alter view",
			node:     &ast.AlterViewNode{Type: ast.KindAlterView, Name: "v", View: &ddl.View{Name: "v", Definition: "select 2"}},
			expected: "ALTER VIEW `v` AS (select 2);",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			renderer := mysql.New()

			sql, err := renderer.Render(tt.node)

			c.Assert(err, qt.IsNil)
			c.Assert(sql, qt.Equals, tt.expected)
		})
	}
}

func TestMySQLRenderer_CreateTable(t *testing.T) {
	c := qt.New(t)
	renderer := mysql.New()

	node := ast.NewCreateTable("", "users").
		AddColumn(&ddl.Column{Name: "id", Type: "serial", PrimaryKey: true, AutoIncrement: true, NotNull: true}).
		AddColumn(&ddl.Column{Name: "mood", Type: "enum('sad','ok')", Default: ddl.NewDefault("'ok'")})
	node.Checks = []*ddl.Check{{Name: "c", Value: "id > 0"}}

	sql, err := renderer.Render(node)

	c.Assert(err, qt.IsNil)
	c.Assert(sql, qt.Equals, "CREATE TABLE `users` (\n"+
		"\t`id` serial PRIMARY KEY AUTO_INCREMENT NOT NULL,\n"+
		"\t`mood` enum('sad','ok') DEFAULT 'ok',\n"+
		"\tCONSTRAINT `c` CHECK(id > 0)\n"+
		");")
	c.Assert(renderer.Dialect(), qt.Equals, "mysql")
}

func TestMySQLRenderer_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		node ast.Node
	}{
		{name: "schema", node: &ast.CreateSchemaNode{Name: "auth"}},
		{name: "enum", node: ast.NewEnum("", "mood", "a")},
		{name: "policy", node: &ast.CreatePolicyNode{Table: "t", Policy: &ddl.Policy{Name: "p"}}},
		{name: "recreate", node: &ast.RecreateTableNode{TableDef: ast.TableDef{Name: "t"}}},
		{name: "identity", node: ast.NewAlterColumn(ast.KindSetIdentity, ddl.NewTable("", "t"), &ddl.Column{Name: "id"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			_, err := mysql.New().Render(tt.node)

			c.Assert(errors.Is(err, types.ErrUnsupported), qt.IsTrue)
		})
	}
}
