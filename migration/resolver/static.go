package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/stokaro/snapdiff/core/ddl"
)

// PairSeparator separates the old and new name in a rename hint.
const PairSeparator = "->"

// ParsePair splits a "from->to" rename hint.
func ParsePair(pair string) (from, to string, err error) {
	from, to, ok := strings.Cut(pair, PairSeparator)
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if !ok || from == "" || to == "" {
		return "", "", fmt.Errorf("invalid rename %q (expected from%sto)", pair, PairSeparator)
	}
	return from, to, nil
}

// Static returns a resolver that pairs entities according to rename hints of
// the form "from->to".
//
// Names are qualified the way snapshot keys are: "public.users" for a
// PostgreSQL table, "users" for a MySQL table, "public.users.email" for a
// column and "public.users.owner_only" for a policy. A hint whose two names
// differ only by schema is reported as a move. Hints that match no pair of
// the current input are ignored, which allows a single hint list to be shared
// by every category.
func Static[T ddl.Entity](pairs ...string) Resolver[T] {
	return func(_ context.Context, in Input[T]) (Output[T], error) {
		hints := make(map[string]string, len(pairs))
		for _, p := range pairs {
			from, to, err := ParsePair(p)
			if err != nil {
				return Output[T]{}, err
			}
			hints[from] = to
		}

		created := make(map[string]int, len(in.Created))
		for i, v := range in.Created {
			created[itemKey(in, v)] = i
		}
		usedCreated := make(map[int]bool)

		var out Output[T]
		for _, del := range in.Deleted {
			to, ok := hints[itemKey(in, del)]
			if !ok {
				out.Deleted = append(out.Deleted, del)
				continue
			}
			i, ok := created[to]
			if !ok || usedCreated[i] {
				out.Deleted = append(out.Deleted, del)
				continue
			}
			usedCreated[i] = true
			add := in.Created[i]

			from, dest := del.Ident(), add.Ident()
			if from.Name == dest.Name && from.Schema != dest.Schema {
				out.Moved = append(out.Moved, Moved{Name: from.Name, SchemaFrom: from.Schema, SchemaTo: dest.Schema})
				continue
			}
			out.Renamed = append(out.Renamed, Renamed[T]{From: del, To: add})
		}
		for i, v := range in.Created {
			if !usedCreated[i] {
				out.Created = append(out.Created, v)
			}
		}
		return out, nil
	}
}
