// Package config provides configuration options for the snapdiff migration generator.
//
// This package provides a simple, programmatic API for configuring schema diffing
// when snapdiff is used as a library (DiffOptions), and a file/environment loader
// used by the command line tool (Load).
package config

import (
	"fmt"
	"slices"
	"strings"
)

// Action selects the flow the generated statements are meant for.
type Action string

const (
	// ActionGenerate produces statements for a migration file. This is the default.
	ActionGenerate Action = "generate"
	// ActionPush produces statements that are applied directly to a live database.
	ActionPush Action = "push"
)

// ParseAction converts a user supplied action name. An empty string selects
// ActionGenerate.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case "", ActionGenerate:
		return ActionGenerate, nil
	case ActionPush:
		return ActionPush, nil
	default:
		return "", fmt.Errorf("unknown action %q (expected %q or %q)", s, ActionGenerate, ActionPush)
	}
}

// IsPush reports whether statements target a live database.
func (a Action) IsPush() bool {
	return a == ActionPush
}

// DiffOptions contains configuration options for schema diffing operations.
// These options control which flow the statements are generated for and what
// elements should be ignored during comparison.
type DiffOptions struct {
	// Action switches the handful of decisions that differ between migration
	// files and push: whether altering a generated column is allowed at all and
	// how SQLite recreates are wrapped in foreign key pragmas.
	Action Action

	// IgnoredTables is a list of qualified table keys ("public.audit_log" or
	// "audit_log") that are managed outside of the snapshots. These tables will:
	// - Never be created, dropped or altered
	// - Be excluded from rename resolution
	IgnoredTables []string
}

// DefaultDiffOptions returns the default diff options: migration file
// generation with nothing ignored.
func DefaultDiffOptions() *DiffOptions {
	return &DiffOptions{
		Action: ActionGenerate,
	}
}

// WithAction returns a new DiffOptions for the given action.
//
// Example:
//
//	opts := config.WithAction(config.ActionPush)
func WithAction(action Action) *DiffOptions {
	opts := DefaultDiffOptions()
	opts.Action = action
	return opts
}

// WithIgnoredTables returns a new DiffOptions with the specified ignored tables.
//
// Example:
//
//	opts := config.WithIgnoredTables("public.audit_log", "public.sessions")
func WithIgnoredTables(tables ...string) *DiffOptions {
	opts := DefaultDiffOptions()
	opts.IgnoredTables = tables
	return opts
}

// IsTableIgnored checks if the given qualified table key should be ignored
// during diffing based on the current configuration.
func (o *DiffOptions) IsTableIgnored(key string) bool {
	if o == nil {
		return false
	}
	return slices.Contains(o.IgnoredTables, key)
}

// FilterIgnoredTables removes ignored tables from the provided keys
// and returns a new slice containing only non-ignored keys.
func (o *DiffOptions) FilterIgnoredTables(keys []string) []string {
	filtered := make([]string, 0, len(keys))
	for _, key := range keys {
		if !o.IsTableIgnored(key) {
			filtered = append(filtered, key)
		}
	}
	return filtered
}

// EffectiveAction returns the configured action, defaulting to ActionGenerate
// for a nil receiver or an empty value.
func (o *DiffOptions) EffectiveAction() Action {
	if o == nil || o.Action == "" {
		return ActionGenerate
	}
	return o.Action
}
