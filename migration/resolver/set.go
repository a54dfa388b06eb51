package resolver

import (
	"github.com/stokaro/snapdiff/core/ddl"
)

// Set holds one resolver per entity category. A nil entry behaves like
// CreateDelete.
type Set struct {
	Schemas     Resolver[*ddl.Schema]
	Enums       Resolver[*ddl.Enum]
	Sequences   Resolver[*ddl.Sequence]
	Roles       Resolver[*ddl.Role]
	Tables      Resolver[*ddl.Table]
	Columns     Resolver[*ddl.Column]
	Policies    Resolver[*ddl.Policy]
	IndPolicies Resolver[*ddl.Policy]
	Views       Resolver[*ddl.View]
}

// Defaults returns a copy of s with every nil entry replaced by CreateDelete.
func (s Set) Defaults() Set {
	s.Schemas = orCreateDelete(s.Schemas)
	s.Enums = orCreateDelete(s.Enums)
	s.Sequences = orCreateDelete(s.Sequences)
	s.Roles = orCreateDelete(s.Roles)
	s.Tables = orCreateDelete(s.Tables)
	s.Columns = orCreateDelete(s.Columns)
	s.Policies = orCreateDelete(s.Policies)
	s.IndPolicies = orCreateDelete(s.IndPolicies)
	s.Views = orCreateDelete(s.Views)
	return s
}

func orCreateDelete[T ddl.Entity](r Resolver[T]) Resolver[T] {
	if r == nil {
		return CreateDelete[T]()
	}
	return r
}

// StaticSet returns a set where every category resolves the same rename
// hints (see Static).
func StaticSet(pairs ...string) Set {
	return Set{
		Schemas:     Static[*ddl.Schema](pairs...),
		Enums:       Static[*ddl.Enum](pairs...),
		Sequences:   Static[*ddl.Sequence](pairs...),
		Roles:       Static[*ddl.Role](pairs...),
		Tables:      Static[*ddl.Table](pairs...),
		Columns:     Static[*ddl.Column](pairs...),
		Policies:    Static[*ddl.Policy](pairs...),
		IndPolicies: Static[*ddl.Policy](pairs...),
		Views:       Static[*ddl.View](pairs...),
	}
}

// PromptSet returns a set that asks p for every category.
func PromptSet(p Prompter) Set {
	return Set{
		Schemas:     Prompt[*ddl.Schema](p, "schema"),
		Enums:       Prompt[*ddl.Enum](p, "enum"),
		Sequences:   Prompt[*ddl.Sequence](p, "sequence"),
		Roles:       Prompt[*ddl.Role](p, "role"),
		Tables:      Prompt[*ddl.Table](p, "table"),
		Columns:     Prompt[*ddl.Column](p, "column"),
		Policies:    Prompt[*ddl.Policy](p, "policy"),
		IndPolicies: Prompt[*ddl.Policy](p, "policy"),
		Views:       Prompt[*ddl.View](p, "view"),
	}
}
