package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/snapdiff/cmd/internal/cli"
)

func TestPrompter_Select(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
		err      string
	}{
		{name: "number", input: "2\n", expected: 1},
		{name: "empty answer picks first", input: "\n", expected: 0},
		{name: "retries after invalid input", input: "7\nabc\n3\n", expected: 2},
		{name: "last line without newline", input: "3", expected: 2},
		{name: "input closed", input: "", err: "error reading answer: EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			var out bytes.Buffer
			p := cli.NewPrompter(strings.NewReader(tt.input), &out)

			choice, err := p.Select(context.Background(), "Table \"public.accounts\"?", []string{"create", "rename", "move"})
			if tt.err != "" {
				c.Assert(err, qt.ErrorMatches, tt.err)
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(choice, qt.Equals, tt.expected)
			c.Assert(out.String(), qt.Contains, "  2) rename\n")
		})
	}
}

func TestPrompter_Confirm(t *testing.T) {
	c := qt.New(t)
	var out bytes.Buffer

	ok, err := cli.NewPrompter(strings.NewReader("2\n"), &out).Confirm(context.Background(), "Continue?")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	ok, err = cli.NewPrompter(strings.NewReader("\n"), &out).Confirm(context.Background(), "Continue?")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
}

func TestSplitList(t *testing.T) {
	c := qt.New(t)
	c.Assert(cli.SplitList(" users->accounts, ,posts->articles "), qt.DeepEquals, []string{"users->accounts", "posts->articles"})
	c.Assert(cli.SplitList(""), qt.IsNil)
}

func TestResolvers(t *testing.T) {
	c := qt.New(t)
	c.Assert(cli.Resolvers(nil, nil).Tables, qt.IsNil)
	c.Assert(cli.Resolvers([]string{"a->b"}, nil).Tables, qt.IsNotNil)
	c.Assert(cli.Resolvers(nil, cli.NewPrompter(strings.NewReader(""), &bytes.Buffer{})).Columns, qt.IsNotNil)
}
