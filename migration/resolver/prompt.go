package resolver

import (
	"context"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/stokaro/snapdiff/core/ddl"
)

// Prompter asks a human to pick one of several options. It returns the index
// of the selected option.
type Prompter interface {
	Select(ctx context.Context, question string, options []string) (int, error)
}

// Prompt returns an interactive resolver. For every created entity the user
// is asked whether it is new or replaces one of the deleted entities that
// have not been claimed yet. kind names the category in the questions
// ("table", "column", ...).
func Prompt[T ddl.Entity](p Prompter, kind string) Resolver[T] {
	title := cases.Title(language.English).String(kind)
	return func(ctx context.Context, in Input[T]) (Output[T], error) {
		var out Output[T]
		pool := append([]T(nil), in.Deleted...)

		for _, add := range in.Created {
			if len(pool) == 0 {
				out.Created = append(out.Created, add)
				continue
			}
			name := itemKey(in, add)
			options := make([]string, 0, len(pool)+1)
			options = append(options, fmt.Sprintf("+ %s  create %s", name, kind))
			for _, del := range pool {
				verb := "rename"
				if del.Ident().Name == add.Ident().Name {
					verb = "move"
				}
				options = append(options, fmt.Sprintf("~ %s › %s  %s %s", itemKey(in, del), name, verb, kind))
			}

			question := fmt.Sprintf("%s %q: created or renamed from another %s?", title, name, kind)
			choice, err := p.Select(ctx, question, options)
			if err != nil {
				return Output[T]{}, fmt.Errorf("error resolving %s %s: %w", kind, name, err)
			}
			if choice < 0 || choice >= len(options) {
				return Output[T]{}, fmt.Errorf("error resolving %s %s: invalid choice %d", kind, name, choice)
			}
			if choice == 0 {
				out.Created = append(out.Created, add)
				continue
			}

			del := pool[choice-1]
			pool = append(pool[:choice-1], pool[choice:]...)
			from, to := del.Ident(), add.Ident()
			if from.Name == to.Name && from.Schema != to.Schema {
				out.Moved = append(out.Moved, Moved{Name: from.Name, SchemaFrom: from.Schema, SchemaTo: to.Schema})
				continue
			}
			out.Renamed = append(out.Renamed, Renamed[T]{From: del, To: add})
		}
		out.Deleted = append(out.Deleted, pool...)
		return out, nil
	}
}
