package schemadiff

import (
	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/migration/internal/compare"
	"github.com/stokaro/snapdiff/migration/planner"
)

// alterations compares the fully patched previous snapshot with the current
// one and plans every in-place change.
func (r *run) alterations() {
	if r.postgres() {
		for _, a := range compare.Enums(r.prev.Enums, r.cur.Enums) {
			columns := planner.EnumColumns(r.prev, r.cur, ddl.Ident{Schema: a.Schema, Name: a.Name})
			r.plan.Add(planner.PrepareEnumValueChanges(a, columns)...)
		}
		for _, ch := range compare.Sequences(r.prev.Sequences, r.cur.Sequences) {
			r.plan.Add(planner.PrepareAlterSequence(ch.New))
		}
		for _, ch := range compare.Roles(r.prev.Roles, r.cur.Roles) {
			r.plan.Add(planner.PrepareAlterRole(ch.New))
		}
		r.plan.Add(planner.PrepareAlterPolicies(ddl.Ident{}, r.individualPolicyChanges(), true)...)
	}

	for _, a := range compare.Tables(r.prev.Tables, r.cur.Tables) {
		key := ddl.Key(a.Schema, a.Name)
		r.plan.Add(planner.PrepareTableAlteration(r.target, r.plan, a, r.added[key])...)
	}

	for _, a := range compare.Views(r.prev.Views, r.cur.Views) {
		r.plan.Add(planner.PrepareAlterView(r.target, a)...)
	}
}

func (r *run) individualPolicyChanges() []compare.Change[*ddl.Policy] {
	_, _, common := compare.Keys(r.prev.Policies, r.cur.Policies)
	var changes []compare.Change[*ddl.Policy]
	for _, k := range common {
		old, cur := r.prev.Policies[k], r.cur.Policies[k]
		if !compare.Equal(old, cur) {
			changes = append(changes, compare.Change[*ddl.Policy]{Kind: compare.Changed, Old: old, New: cur})
		}
	}
	return changes
}
