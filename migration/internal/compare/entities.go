package compare

import (
	"github.com/stokaro/snapdiff/core/ddl"
)

// EnumValue is a value added to an enum. Before names the existing value it
// must be inserted in front of; empty means append.
type EnumValue struct {
	Value  string
	Before string
}

// EnumAlteration describes how an enum present in both snapshots changed.
type EnumAlteration struct {
	Name   string
	Schema string
	Prev   *ddl.Enum
	Cur    *ddl.Enum

	Added   []EnumValue
	Deleted []string
	// Reordered is set when values present on both sides changed their
	// relative order. No dialect can reorder values in place.
	Reordered bool
}

// NeedsRecreate reports whether the type has to be replaced rather than
// extended with ADD VALUE.
func (e EnumAlteration) NeedsRecreate() bool {
	return len(e.Deleted) > 0 || e.Reordered
}

// Enum compares two versions of an enum. ok is false when nothing changed.
//
// # Insert Position
//
// An added value is placed before the first following value that already
// existed, so that a sequence of ADD VALUE statements executed in order
// reproduces the new value order exactly.
func Enum(prev, cur *ddl.Enum) (EnumAlteration, bool) {
	a := EnumAlteration{Name: cur.Name, Schema: cur.Schema, Prev: prev, Cur: cur}

	old := make(map[string]bool, len(prev.Values))
	for _, v := range prev.Values {
		old[v] = true
	}
	now := make(map[string]bool, len(cur.Values))
	for _, v := range cur.Values {
		now[v] = true
	}

	for i, v := range cur.Values {
		if old[v] {
			continue
		}
		before := ""
		for _, next := range cur.Values[i+1:] {
			if old[next] {
				before = next
				break
			}
		}
		a.Added = append(a.Added, EnumValue{Value: v, Before: before})
	}

	var keptPrev, keptCur []string
	for _, v := range prev.Values {
		if now[v] {
			keptPrev = append(keptPrev, v)
		} else {
			a.Deleted = append(a.Deleted, v)
		}
	}
	for _, v := range cur.Values {
		if old[v] {
			keptCur = append(keptCur, v)
		}
	}
	a.Reordered = !Equal(keptPrev, keptCur)

	changed := len(a.Added) > 0 || len(a.Deleted) > 0 || a.Reordered
	return a, changed
}

// Enums compares every enum present in both maps.
func Enums(prev, cur map[string]*ddl.Enum) []EnumAlteration {
	_, _, common := Keys(prev, cur)
	var out []EnumAlteration
	for _, k := range common {
		if a, ok := Enum(prev[k], cur[k]); ok {
			out = append(out, a)
		}
	}
	return out
}

// Sequences returns the sequences present in both maps whose options changed.
func Sequences(prev, cur map[string]*ddl.Sequence) []Change[*ddl.Sequence] {
	return diffMap(prev, cur).Altered
}

// Roles returns the roles present in both maps whose attributes changed.
func Roles(prev, cur map[string]*ddl.Role) []Change[*ddl.Role] {
	return diffMap(prev, cur).Altered
}

// ViewAlteration describes how a view present in both snapshots changed.
type ViewAlteration struct {
	Name   string
	Schema string
	Prev   *ddl.View
	Cur    *ddl.View

	// Definition is set when the query or the kind of view changed; such a
	// view has to be dropped and created again.
	Definition bool
	// SetWith holds storage parameters that were added or changed,
	// ResetWith those that were removed.
	SetWith    map[string]string
	ResetWith  map[string]string
	Tablespace *Change[string]
	Using      *Change[string]
	// Attributes is set when MySQL view attributes (algorithm, SQL security,
	// check option) changed.
	Attributes bool
}

// IsEmpty reports whether the view is unchanged.
func (v ViewAlteration) IsEmpty() bool {
	return !v.Definition && len(v.SetWith) == 0 && len(v.ResetWith) == 0 &&
		v.Tablespace == nil && v.Using == nil && !v.Attributes
}

// View compares two versions of a view.
func View(prev, cur *ddl.View) ViewAlteration {
	a := ViewAlteration{Name: cur.Name, Schema: cur.Schema, Prev: prev, Cur: cur}
	a.Definition = prev.Definition != cur.Definition || prev.Materialized != cur.Materialized ||
		prev.WithNoData != cur.WithNoData
	for k, v := range cur.With {
		if old, ok := prev.With[k]; !ok || old != v {
			if a.SetWith == nil {
				a.SetWith = map[string]string{}
			}
			a.SetWith[k] = v
		}
	}
	for k, v := range prev.With {
		if _, ok := cur.With[k]; !ok {
			if a.ResetWith == nil {
				a.ResetWith = map[string]string{}
			}
			a.ResetWith[k] = v
		}
	}
	a.Tablespace = stringChange(prev.Tablespace, cur.Tablespace)
	a.Using = stringChange(prev.Using, cur.Using)
	a.Attributes = prev.Algorithm != cur.Algorithm || prev.SQLSecurity != cur.SQLSecurity ||
		prev.CheckOption != cur.CheckOption
	return a
}

// Views compares every view present in both maps. Views managed outside of
// the snapshot (IsExisting on either side) are never reported.
func Views(prev, cur map[string]*ddl.View) []ViewAlteration {
	_, _, common := Keys(prev, cur)
	var out []ViewAlteration
	for _, k := range common {
		p, c := prev[k], cur[k]
		if p.IsExisting || c.IsExisting {
			continue
		}
		if a := View(p, c); !a.IsEmpty() {
			out = append(out, a)
		}
	}
	return out
}
