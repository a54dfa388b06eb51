package resolver_test

import (
	"context"
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/migration/resolver"
)

func table(schema, name string) *ddl.Table { return ddl.NewTable(schema, name) }

func names(tables []*ddl.Table) []string {
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		out = append(out, ddl.Key(t.Schema, t.Name))
	}
	return out
}

func TestStatic(t *testing.T) {
	tests := []struct {
		name     string
		pairs    []string
		in       resolver.Input[*ddl.Table]
		created  []string
		deleted  []string
		renamed  [][2]string
		moved    []resolver.Moved
		errMatch string
	}{
		{
			name:    "rename within schema",
			pairs:   []string{"public.users->public.users2"},
			in:      resolver.Input[*ddl.Table]{Created: []*ddl.Table{table("public", "users2")}, Deleted: []*ddl.Table{table("public", "users")}},
			renamed: [][2]string{{"public.users", "public.users2"}},
		},
		{
			name:  "same name in another schema is a move",
			pairs: []string{"public.users -> auth.users"},
			in:    resolver.Input[*ddl.Table]{Created: []*ddl.Table{table("auth", "users")}, Deleted: []*ddl.Table{table("public", "users")}},
			moved: []resolver.Moved{{Name: "users", SchemaFrom: "public", SchemaTo: "auth"}},
		},
		{
			name:  "unmatched hints are ignored",
			pairs: []string{"public.accounts->public.people"},
			in: resolver.Input[*ddl.Table]{
				Created: []*ddl.Table{table("public", "users2")},
				Deleted: []*ddl.Table{table("public", "users")},
			},
			created: []string{"public.users2"},
			deleted: []string{"public.users"},
		},
		{
			name:  "two hints to the same target only use it once",
			pairs: []string{"a->c", "b->c"},
			in: resolver.Input[*ddl.Table]{
				Created: []*ddl.Table{table("", "c")},
				Deleted: []*ddl.Table{table("", "a"), table("", "b")},
			},
			deleted: []string{"b"},
			renamed: [][2]string{{"a", "c"}},
		},
		{
			name:     "malformed hint",
			pairs:    []string{"users"},
			in:       resolver.Input[*ddl.Table]{Created: []*ddl.Table{table("", "x")}, Deleted: []*ddl.Table{table("", "y")}},
			errMatch: `invalid rename "users".*`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			out, err := resolver.Resolve(context.Background(), resolver.Static[*ddl.Table](tt.pairs...), tt.in)
			if tt.errMatch != "" {
				c.Assert(err, qt.ErrorMatches, tt.errMatch)
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(names(out.Created), qt.DeepEquals, orEmpty(tt.created))
			c.Assert(names(out.Deleted), qt.DeepEquals, orEmpty(tt.deleted))

			var renamed [][2]string
			for _, r := range out.Renamed {
				renamed = append(renamed, [2]string{ddl.Key(r.From.Schema, r.From.Name), ddl.Key(r.To.Schema, r.To.Name)})
			}
			c.Assert(renamed, qt.DeepEquals, tt.renamed)
			c.Assert(out.Moved, qt.DeepEquals, tt.moved)
		})
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func TestStatic_Columns(t *testing.T) {
	c := qt.New(t)

	in := resolver.Input[*ddl.Column]{
		Table:   "users",
		Schema:  "public",
		Created: []*ddl.Column{{Name: "email"}},
		Deleted: []*ddl.Column{{Name: "mail"}},
	}
	out, err := resolver.Resolve(context.Background(), resolver.Static[*ddl.Column]("public.users.mail->public.users.email"), in)
	c.Assert(err, qt.IsNil)
	c.Assert(out.Renamed, qt.HasLen, 1)
	c.Assert(out.Renamed[0].From.Name, qt.Equals, "mail")
	c.Assert(out.Renamed[0].To.Name, qt.Equals, "email")
	c.Assert(out.Created, qt.HasLen, 0)
	c.Assert(out.Deleted, qt.HasLen, 0)
}

func TestCreateDelete(t *testing.T) {
	c := qt.New(t)

	in := resolver.Input[*ddl.Table]{Created: []*ddl.Table{table("", "b")}, Deleted: []*ddl.Table{table("", "a")}}
	out, err := resolver.Resolve(context.Background(), resolver.CreateDelete[*ddl.Table](), in)
	c.Assert(err, qt.IsNil)
	c.Assert(names(out.Created), qt.DeepEquals, []string{"b"})
	c.Assert(names(out.Deleted), qt.DeepEquals, []string{"a"})
	c.Assert(out.Renamed, qt.HasLen, 0)
}

func TestResolve_SkipsWhenNothingToPair(t *testing.T) {
	c := qt.New(t)

	called := false
	r := resolver.Resolver[*ddl.Table](func(context.Context, resolver.Input[*ddl.Table]) (resolver.Output[*ddl.Table], error) {
		called = true
		return resolver.Output[*ddl.Table]{}, nil
	})
	out, err := resolver.Resolve(context.Background(), r, resolver.Input[*ddl.Table]{Created: []*ddl.Table{table("", "a")}})
	c.Assert(err, qt.IsNil)
	c.Assert(called, qt.IsFalse)
	c.Assert(names(out.Created), qt.DeepEquals, []string{"a"})
}

func TestValidate(t *testing.T) {
	a, b, x := table("", "a"), table("", "b"), table("", "x")
	in := resolver.Input[*ddl.Table]{Created: []*ddl.Table{b, x}, Deleted: []*ddl.Table{a}}

	tests := []struct {
		name string
		out  resolver.Output[*ddl.Table]
		ok   bool
	}{
		{
			name: "complete partition",
			out:  resolver.Output[*ddl.Table]{Created: []*ddl.Table{x}, Renamed: []resolver.Renamed[*ddl.Table]{{From: a, To: b}}},
			ok:   true,
		},
		{
			name: "dropped item",
			out:  resolver.Output[*ddl.Table]{Renamed: []resolver.Renamed[*ddl.Table]{{From: a, To: b}}},
		},
		{
			name: "duplicated item",
			out: resolver.Output[*ddl.Table]{
				Created: []*ddl.Table{b, x},
				Renamed: []resolver.Renamed[*ddl.Table]{{From: a, To: b}},
			},
		},
		{
			name: "foreign item",
			out: resolver.Output[*ddl.Table]{
				Created: []*ddl.Table{b, x},
				Deleted: []*ddl.Table{table("", "zzz")},
			},
		},
		{
			name: "move of an unknown entity",
			out: resolver.Output[*ddl.Table]{
				Created: []*ddl.Table{b, x},
				Deleted: []*ddl.Table{a},
				Moved:   []resolver.Moved{{Name: "a", SchemaFrom: "", SchemaTo: "auth"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			err := resolver.Validate(in, tt.out)
			if tt.ok {
				c.Assert(err, qt.IsNil)
				return
			}
			c.Assert(errors.Is(err, resolver.ErrPartition), qt.IsTrue, qt.Commentf("got %v", err))
		})
	}
}

func TestResolve_RejectsBrokenResolver(t *testing.T) {
	c := qt.New(t)

	broken := resolver.Resolver[*ddl.Table](func(_ context.Context, in resolver.Input[*ddl.Table]) (resolver.Output[*ddl.Table], error) {
		return resolver.Output[*ddl.Table]{Created: in.Created}, nil
	})
	in := resolver.Input[*ddl.Table]{Created: []*ddl.Table{table("", "b")}, Deleted: []*ddl.Table{table("", "a")}}
	_, err := resolver.Resolve(context.Background(), broken, in)
	c.Assert(err, qt.ErrorIs, resolver.ErrPartition)
}

type scriptedPrompter struct {
	answers   []int
	questions []string
	options   [][]string
}

func (p *scriptedPrompter) Select(_ context.Context, question string, options []string) (int, error) {
	p.questions = append(p.questions, question)
	p.options = append(p.options, options)
	if len(p.answers) == 0 {
		return 0, errors.New("no more answers")
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func TestPrompt(t *testing.T) {
	c := qt.New(t)

	p := &scriptedPrompter{answers: []int{2, 0}}
	in := resolver.Input[*ddl.Table]{
		Created: []*ddl.Table{table("public", "people"), table("public", "audit")},
		Deleted: []*ddl.Table{table("public", "accounts"), table("public", "users")},
	}

	out, err := resolver.Resolve(context.Background(), resolver.Prompt[*ddl.Table](p, "table"), in)
	c.Assert(err, qt.IsNil)

	c.Assert(p.questions, qt.HasLen, 2)
	c.Assert(p.questions[0], qt.Equals, `Table "public.people": created or renamed from another table?`)
	c.Assert(p.options[0], qt.DeepEquals, []string{
		"+ public.people  create table",
		"~ public.accounts › public.people  rename table",
		"~ public.users › public.people  rename table",
	})
	// the claimed table is no longer offered
	c.Assert(p.options[1], qt.HasLen, 2)

	c.Assert(out.Renamed, qt.HasLen, 1)
	c.Assert(out.Renamed[0].From.Name, qt.Equals, "users")
	c.Assert(out.Renamed[0].To.Name, qt.Equals, "people")
	c.Assert(names(out.Created), qt.DeepEquals, []string{"public.audit"})
	c.Assert(names(out.Deleted), qt.DeepEquals, []string{"public.accounts"})
}

func TestPrompt_Errors(t *testing.T) {
	c := qt.New(t)

	in := resolver.Input[*ddl.Table]{Created: []*ddl.Table{table("", "b")}, Deleted: []*ddl.Table{table("", "a")}}

	_, err := resolver.Resolve(context.Background(), resolver.Prompt[*ddl.Table](&scriptedPrompter{}, "table"), in)
	c.Assert(err, qt.ErrorMatches, "error resolving table b: no more answers")

	_, err = resolver.Resolve(context.Background(), resolver.Prompt[*ddl.Table](&scriptedPrompter{answers: []int{7}}, "table"), in)
	c.Assert(err, qt.ErrorMatches, "error resolving table b: invalid choice 7")
}

func TestSet_Defaults(t *testing.T) {
	c := qt.New(t)

	s := resolver.Set{Tables: resolver.Static[*ddl.Table]("a->b")}.Defaults()
	c.Assert(s.Schemas, qt.IsNotNil)
	c.Assert(s.Columns, qt.IsNotNil)
	c.Assert(s.Views, qt.IsNotNil)

	in := resolver.Input[*ddl.Table]{Created: []*ddl.Table{table("", "b")}, Deleted: []*ddl.Table{table("", "a")}}
	out, err := resolver.Resolve(context.Background(), s.Tables, in)
	c.Assert(err, qt.IsNil)
	c.Assert(out.Renamed, qt.HasLen, 1)
}
