package singlestore_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/renderer/dialects/singlestore"
)

func TestSingleStoreRenderer_RecreateTable(t *testing.T) {
	c := qt.New(t)
	renderer := singlestore.New()

	node := &ast.RecreateTableNode{
		TableDef: ast.TableDef{
			Name: "t",
			Columns: []*ddl.Column{
				{Name: "id", Type: "int", NotNull: true},
				{Name: "name", Type: "text"},
			},
			Uniques: []*ddl.Unique{{Name: "t_name_unique", Columns: []string{"name"}}},
		},
		CopyColumns: []string{"id", "name"},
	}

	sql, err := renderer.Render(node)

	c.Assert(err, qt.IsNil)
	c.Assert(sql, qt.Equals, "CREATE TABLE `__new_t` (\n"+
		"\t`id` int NOT NULL,\n"+
		"\t`name` text,\n"+
		"\tCONSTRAINT `t_name_unique` UNIQUE(`name`)\n"+
		");\n"+
		"INSERT INTO `__new_t`(`id`, `name`) SELECT `id`, `name` FROM `t`;\n"+
		"DROP TABLE `t`;\n"+
		"ALTER TABLE `__new_t` RENAME TO `t`;")
	c.Assert(renderer.Dialect(), qt.Equals, "singlestore")
}

func TestSingleStoreRenderer_SharesMySQLSyntax(t *testing.T) {
	c := qt.New(t)

	sql, err := singlestore.New().Render(&ast.RenameTableNode{From: "a", To: "b"})

	c.Assert(err, qt.IsNil)
	c.Assert(sql, qt.Equals, "RENAME TABLE `a` TO `b`;")
}
