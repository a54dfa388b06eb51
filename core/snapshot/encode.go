package snapshot

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/squash"
)

// Encode renders a snapshot in the structured shape.
func Encode(s *ddl.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(versioned(s), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding snapshot: %w", err)
	}
	return data, nil
}

// EncodeSquashed renders a snapshot in the squashed shape understood by older
// tooling. Columns are still written as an array so that their order survives.
func EncodeSquashed(s *ddl.Snapshot) ([]byte, error) {
	s = versioned(s)
	tables := make(map[string]any, len(s.Tables))
	for key, t := range s.Tables {
		cols := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			if c.Identity == nil {
				cols[i] = c
				continue
			}
			cols[i] = struct {
				*ddl.Column
				Identity string `json:"identity"`
			}{c, squash.Identity(c.Identity)}
		}
		tables[key] = map[string]any{
			"name":                 t.Name,
			"schema":               t.Schema,
			"columns":              cols,
			"indexes":              squashAll(t.Indexes, squash.Index),
			"foreignKeys":          squashAll(t.ForeignKeys, squash.ForeignKey),
			"compositePrimaryKeys": squashAll(t.CompositePrimaryKeys, squash.PrimaryKey),
			"uniqueConstraints":    squashAll(t.UniqueConstraints, squash.Unique),
			"checkConstraints":     squashAll(t.CheckConstraints, squash.Check),
			"policies":             squashAll(t.Policies, squash.Policy),
			"isRLSEnabled":         t.IsRLSEnabled,
		}
	}
	doc := map[string]any{
		"version":   s.Version,
		"dialect":   s.Dialect,
		"schemas":   s.Schemas,
		"enums":     s.Enums,
		"sequences": squashAll(s.Sequences, squash.Sequence),
		"roles":     s.Roles,
		"policies":  squashAll(s.Policies, squash.Policy),
		"views":     s.Views,
		"tables":    tables,
		"_meta":     s.Meta,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding snapshot: %w", err)
	}
	return data, nil
}

// versioned returns s, or a shallow copy stamped with ddl.CurrentVersion
// when s carries no version. Decode rejects unversioned snapshots.
func versioned(s *ddl.Snapshot) *ddl.Snapshot {
	if s.Version != "" {
		return s
	}
	cp := *s
	cp.Version = ddl.CurrentVersion
	return &cp
}

// WriteFile stores the structured encoding of s at path.
func WriteFile(path string, s *ddl.Snapshot) error {
	return writeFile(path, s, Encode)
}

// WriteFileSquashed stores the squashed encoding of s at path.
func WriteFileSquashed(path string, s *ddl.Snapshot) error {
	return writeFile(path, s, EncodeSquashed)
}

func writeFile(path string, s *ddl.Snapshot, encode func(*ddl.Snapshot) ([]byte, error)) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing snapshot %s: %w", path, err)
	}
	return nil
}

func squashAll[T any](m map[string]*T, fn func(*T) string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fn(v)
	}
	return out
}
