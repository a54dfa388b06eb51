// Package compare detects structural differences between two snapshots.
//
// The functions in this package are pure: they read two versions of an
// entity map and report what was added, deleted or altered. They never
// decide whether an added and a deleted entity are the same thing under a
// new name; that is the job of the resolvers, and the caller is expected to
// run the comparison again on a patched snapshot once renames are known.
//
// All comparisons work on structured values (go-cmp equality with empty and
// nil collections treated alike), never on a string encoding of them.
//
// # Output Consistency
//
// Every list is sorted by key so that the same pair of snapshots always
// produces the same result.
package compare

import (
	"sort"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/stokaro/snapdiff/core/ddl"
)

var equalOpts = []cmp.Option{cmpopts.EquateEmpty()}

// Equal reports whether two sub-entities are structurally identical.
func Equal[T any](a, b T) bool {
	return cmp.Equal(a, b, equalOpts...)
}

// Keys compares the key sets of two entity maps.
//
// It returns the keys only present in cur (added), the keys only present in
// prev (deleted) and the keys present in both (common), each sorted.
func Keys[V any](prev, cur map[string]V) (added, deleted, common []string) {
	for k := range cur {
		if _, ok := prev[k]; ok {
			common = append(common, k)
		} else {
			added = append(added, k)
		}
	}
	for k := range prev {
		if _, ok := cur[k]; !ok {
			deleted = append(deleted, k)
		}
	}
	sort.Strings(added)
	sort.Strings(deleted)
	sort.Strings(common)
	return added, deleted, common
}

// Values returns the values of m for the given keys.
func Values[V any](m map[string]V, keys []string) []V {
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// ColumnDelta lists the columns added to and deleted from one table.
type ColumnDelta struct {
	Table   string
	Schema  string
	Added   []*ddl.Column
	Deleted []*ddl.Column
}

// Columns compares the columns of every table present in both maps.
//
// Tables that only exist on one side are skipped: they are created or
// dropped wholesale. Only tables with at least one added or deleted column
// are reported. Added columns keep their declaration order.
func Columns(prev, cur map[string]*ddl.Table) []ColumnDelta {
	_, _, common := Keys(prev, cur)
	var out []ColumnDelta
	for _, key := range common {
		p, c := prev[key], cur[key]
		d := ColumnDelta{Table: c.Name, Schema: c.Schema}
		for _, col := range c.Columns {
			if p.Column(col.Name) == nil {
				d.Added = append(d.Added, col)
			}
		}
		for _, col := range p.Columns {
			if c.Column(col.Name) == nil {
				d.Deleted = append(d.Deleted, col)
			}
		}
		if len(d.Added) > 0 || len(d.Deleted) > 0 {
			out = append(out, d)
		}
	}
	return out
}

// PolicyDelta lists the policies added to and deleted from one table.
type PolicyDelta struct {
	Table   string
	Schema  string
	Added   []*ddl.Policy
	Deleted []*ddl.Policy
}

// Policies compares the policies of every table present in both maps.
func Policies(prev, cur map[string]*ddl.Table) []PolicyDelta {
	_, _, common := Keys(prev, cur)
	var out []PolicyDelta
	for _, key := range common {
		p, c := prev[key], cur[key]
		added, deleted, _ := Keys(p.Policies, c.Policies)
		if len(added) == 0 && len(deleted) == 0 {
			continue
		}
		out = append(out, PolicyDelta{
			Table:   c.Name,
			Schema:  c.Schema,
			Added:   Values(c.Policies, added),
			Deleted: Values(p.Policies, deleted),
		})
	}
	return out
}

// ChangeKind classifies a property change.
type ChangeKind int

const (
	// Added means the property was absent (or false) and is now set.
	Added ChangeKind = iota + 1
	// Deleted means the property was set and is now absent (or false).
	Deleted
	// Changed means the property is set on both sides with different values.
	Changed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	case Changed:
		return "changed"
	default:
		return "unknown"
	}
}

// Change describes how one property changed.
type Change[T any] struct {
	Kind ChangeKind
	Old  T
	New  T
}

func boolChange(old, cur bool) *Change[bool] {
	switch {
	case old == cur:
		return nil
	case cur:
		return &Change[bool]{Kind: Added, Old: old, New: cur}
	default:
		return &Change[bool]{Kind: Deleted, Old: old, New: cur}
	}
}

func stringChange(old, cur string) *Change[string] {
	switch {
	case old == cur:
		return nil
	case old == "":
		return &Change[string]{Kind: Added, Old: old, New: cur}
	case cur == "":
		return &Change[string]{Kind: Deleted, Old: old, New: cur}
	default:
		return &Change[string]{Kind: Changed, Old: old, New: cur}
	}
}

func ptrChange[T any](old, cur *T) *Change[*T] {
	switch {
	case old == nil && cur == nil:
		return nil
	case old == nil:
		return &Change[*T]{Kind: Added, New: cur}
	case cur == nil:
		return &Change[*T]{Kind: Deleted, Old: old}
	case Equal(old, cur):
		return nil
	default:
		return &Change[*T]{Kind: Changed, Old: old, New: cur}
	}
}

// Delta lists the added, deleted and altered members of a keyed collection.
type Delta[T any] struct {
	Added   []T
	Deleted []T
	Altered []Change[T]
}

// IsEmpty reports whether nothing changed.
func (d Delta[T]) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Deleted) == 0 && len(d.Altered) == 0
}

func diffMap[T any](prev, cur map[string]T) Delta[T] {
	added, deleted, common := Keys(prev, cur)
	d := Delta[T]{
		Added:   Values(cur, added),
		Deleted: Values(prev, deleted),
	}
	for _, k := range common {
		if !Equal(prev[k], cur[k]) {
			d.Altered = append(d.Altered, Change[T]{Kind: Changed, Old: prev[k], New: cur[k]})
		}
	}
	return d
}
