// Package resolver decides whether entities that disappeared from one
// snapshot and appeared in the next were renamed (or moved to another
// schema) or genuinely deleted and created.
//
// The differ only sees keys: a table "users" that vanished and a table
// "accounts" that appeared are, structurally, one drop and one create. A
// Resolver is the pluggable decision point that may pair them up instead.
// Three implementations are provided:
//
//   - CreateDelete never pairs anything (the conservative default)
//   - Static pairs entities from a caller-supplied "from->to" list
//   - Prompt asks a human through a Prompter
//
// # Contract
//
// A resolver must partition its input: every created and every deleted item
// appears exactly once in the output, either unchanged in Created/Deleted or
// as one side of a Renamed or Moved entry. Resolve enforces this with
// Validate and reports violations as ErrPartition.
//
// Resolvers are called strictly one after another; a resolver that blocks
// (for example while waiting for user input) suspends the whole diff until it
// returns or ctx is cancelled.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/stokaro/snapdiff/core/ddl"
)

// ErrPartition is returned when a resolver's output does not account for
// every input item exactly once.
var ErrPartition = errors.New("resolver output does not partition its input")

// Renamed pairs a deleted entity with the created entity that replaces it.
type Renamed[T any] struct {
	From T
	To   T
}

// Moved records an entity that kept its name but changed schema.
type Moved struct {
	Name       string
	SchemaFrom string
	SchemaTo   string
}

// Input is what the differ hands to a resolver for one entity category.
//
// Table and Schema are set when the category is nested inside a table
// (columns, policies); they are empty for top-level categories.
type Input[T any] struct {
	Table   string
	Schema  string
	Created []T
	Deleted []T
}

// Output is a resolver's decision.
type Output[T any] struct {
	Created []T
	Deleted []T
	Renamed []Renamed[T]
	Moved   []Moved
}

// Resolver resolves one entity category.
type Resolver[T ddl.Entity] func(ctx context.Context, in Input[T]) (Output[T], error)

// Resolve runs r on in and validates the result. Inputs with nothing
// created or nothing deleted are returned as is without calling r, since
// there is nothing to pair.
func Resolve[T ddl.Entity](ctx context.Context, r Resolver[T], in Input[T]) (Output[T], error) {
	if len(in.Created) == 0 || len(in.Deleted) == 0 || r == nil {
		return Output[T]{Created: in.Created, Deleted: in.Deleted}, nil
	}
	out, err := r(ctx, in)
	if err != nil {
		return Output[T]{}, err
	}
	if err := Validate(in, out); err != nil {
		return Output[T]{}, err
	}
	return out, nil
}

// Validate checks that out partitions in: the multiset of created and
// deleted identities is recovered exactly from out.
func Validate[T ddl.Entity](in Input[T], out Output[T]) error {
	created := counts(in.Created)
	deleted := counts(in.Deleted)

	take := func(pool map[ddl.Ident]int, id ddl.Ident, side string) error {
		if pool[id] == 0 {
			return fmt.Errorf("%w: %s %s is not part of the input or is used twice", ErrPartition, side, id)
		}
		pool[id]--
		return nil
	}

	for _, v := range out.Created {
		if err := take(created, v.Ident(), "created"); err != nil {
			return err
		}
	}
	for _, v := range out.Deleted {
		if err := take(deleted, v.Ident(), "deleted"); err != nil {
			return err
		}
	}
	for _, r := range out.Renamed {
		if err := take(deleted, r.From.Ident(), "renamed from"); err != nil {
			return err
		}
		if err := take(created, r.To.Ident(), "renamed to"); err != nil {
			return err
		}
	}
	for _, m := range out.Moved {
		if err := take(deleted, ddl.Ident{Schema: m.SchemaFrom, Name: m.Name}, "moved from"); err != nil {
			return err
		}
		if err := take(created, ddl.Ident{Schema: m.SchemaTo, Name: m.Name}, "moved to"); err != nil {
			return err
		}
	}

	for _, pool := range []map[ddl.Ident]int{created, deleted} {
		for id, n := range pool {
			if n > 0 {
				return fmt.Errorf("%w: %s is missing from the output", ErrPartition, id)
			}
		}
	}
	return nil
}

func counts[T ddl.Entity](items []T) map[ddl.Ident]int {
	m := make(map[ddl.Ident]int, len(items))
	for _, v := range items {
		m[v.Ident()]++
	}
	return m
}

// CreateDelete returns a resolver that never pairs entities.
func CreateDelete[T ddl.Entity]() Resolver[T] {
	return func(_ context.Context, in Input[T]) (Output[T], error) {
		return Output[T]{Created: in.Created, Deleted: in.Deleted}, nil
	}
}

// itemKey is the qualified name a resolver uses to refer to an item:
// "schema.table.column" for nested entities and the entity key otherwise.
func itemKey[T ddl.Entity](in Input[T], v T) string {
	if in.Table != "" {
		return ddl.Key(ddl.Key(in.Schema, in.Table), v.Ident().String())
	}
	return v.Ident().String()
}
