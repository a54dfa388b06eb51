package planner

import (
	"github.com/stokaro/snapdiff/core/ast"
	"github.com/stokaro/snapdiff/core/ddl"
)

type columnRef struct {
	table  ddl.Ident
	column string
}

type enumRef struct {
	schema string
	name   string
}

// Filter removes statements made moot by another statement of the same batch:
//
//   - drop_notnull when the column also drops its identity,
//   - set_notnull when the column also becomes an identity column,
//   - alter_type_add_value when the same enum is recreated,
//   - set_default when a type change of the column already sets the same
//     default.
//
// The relative order of the remaining statements is kept.
func Filter(stmts []ast.Node) []ast.Node {
	identityDrops := map[columnRef]bool{}
	identitySets := map[columnRef]bool{}
	typeDefaults := map[columnRef]*ddl.Default{}
	recreatedEnums := map[enumRef]bool{}

	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.AlterColumnNode:
			ref := columnRef{table: n.TableIdent(), column: n.Column}
			switch n.Type {
			case ast.KindDropIdentity:
				identityDrops[ref] = true
			case ast.KindSetIdentity:
				identitySets[ref] = true
			case ast.KindSetType:
				if n.Def != nil && n.Def.Default != nil {
					typeDefaults[ref] = n.Def.Default
				}
			}
		case *ast.RecreateEnumNode:
			recreatedEnums[enumRef{schema: n.Schema, name: n.Name}] = true
		}
	}

	out := make([]ast.Node, 0, len(stmts))
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.AlterColumnNode:
			ref := columnRef{table: n.TableIdent(), column: n.Column}
			switch n.Type {
			case ast.KindDropNotNull:
				if identityDrops[ref] {
					continue
				}
			case ast.KindSetNotNull:
				if identitySets[ref] {
					continue
				}
			case ast.KindSetDefault:
				if d, ok := typeDefaults[ref]; ok && n.Def != nil && ddl.EqualDefaults(d, n.Def.Default) {
					continue
				}
			}
		case *ast.AddEnumValueNode:
			if recreatedEnums[enumRef{schema: n.Schema, name: n.Name}] {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
