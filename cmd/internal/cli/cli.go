// Package cli holds what the snapdiff commands share: configuration loading,
// resolver selection and the terminal prompt.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stokaro/snapdiff/config"
	"github.com/stokaro/snapdiff/migration/resolver"
)

// ConfigFlag is the persistent flag naming the configuration file.
const ConfigFlag = "config"

// LoadConfig reads the configuration named by the --config flag of cmd (or
// its parents) and applies the non-empty overrides.
func LoadConfig(cmd *cobra.Command, overrides func(f *config.File)) (*config.File, error) {
	path, _ := cmd.Flags().GetString(ConfigFlag)
	f, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if overrides != nil {
		overrides(f)
	}
	return f, nil
}

// Override sets *dst to value unless value is empty.
func Override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// SplitList splits a comma separated flag value.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Resolvers picks the resolver set: prompts through p when it is not nil,
// otherwise the static rename hints.
func Resolvers(renames []string, p *Prompter) resolver.Set {
	if p != nil {
		return resolver.PromptSet(p)
	}
	if len(renames) == 0 {
		return resolver.Set{}
	}
	return resolver.StaticSet(renames...)
}

// Prompter asks questions on a terminal, one numbered option per line.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a Prompter reading answers from in.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Select implements resolver.Prompter. An empty answer selects the first
// option.
func (p *Prompter) Select(ctx context.Context, question string, options []string) (int, error) {
	fmt.Fprintln(p.out, question)
	for i, o := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, o)
	}
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		fmt.Fprintf(p.out, "Choose [1-%d]: ", len(options))
		line, err := p.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if answer == "" && err == nil {
			return 0, nil
		}
		if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		if err != nil {
			return 0, fmt.Errorf("error reading answer: %w", err)
		}
		fmt.Fprintf(p.out, "Invalid choice %q\n", answer)
	}
}

// Confirm asks a yes/no question; anything but the second option declines.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	choice, err := p.Select(ctx, question, []string{"No, abort", "Yes, I want to continue"})
	if err != nil {
		return false, err
	}
	return choice == 1, nil
}
