// Package snapshot reads and writes schema snapshots as JSON.
//
// Two shapes are accepted on input. The structured shape stores every
// sub-entity as a JSON object and columns as an array. The squashed shape,
// produced by older tooling, stores indexes, foreign keys, composite primary
// keys, unique and check constraints, policies, sequences and identities as
// delimited strings (see package squash) and columns as an object keyed by
// column name. Both can be mixed freely within one document.
//
// Column order is significant (it drives CREATE TABLE and table recreation),
// so columns given as a JSON object are decoded in document order.
//
// Every decoded snapshot is normalized with ddl.Normalize before it is
// returned.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/core/literal"
	"github.com/stokaro/snapdiff/core/platform"
	"github.com/stokaro/snapdiff/core/squash"
)

var (
	// ErrMalformed is returned for documents that are not valid snapshots.
	ErrMalformed = errors.New("malformed snapshot")
	// ErrDialectMismatch is returned when a snapshot targets another dialect
	// than the one requested.
	ErrDialectMismatch = errors.New("snapshot dialect mismatch")
)

type rawSnapshot struct {
	Version   string                     `json:"version"`
	Dialect   string                     `json:"dialect"`
	Schemas   map[string]json.RawMessage `json:"schemas"`
	Enums     map[string]*ddl.Enum       `json:"enums"`
	Sequences map[string]json.RawMessage `json:"sequences"`
	Roles     map[string]*ddl.Role       `json:"roles"`
	Policies  map[string]json.RawMessage `json:"policies"`
	Views     map[string]*ddl.View       `json:"views"`
	Tables    map[string]*rawTable       `json:"tables"`
	Meta      ddl.Meta                   `json:"_meta"`
}

type rawTable struct {
	Name                 string                     `json:"name"`
	Schema               string                     `json:"schema"`
	Columns              json.RawMessage            `json:"columns"`
	Indexes              map[string]json.RawMessage `json:"indexes"`
	ForeignKeys          map[string]json.RawMessage `json:"foreignKeys"`
	CompositePrimaryKeys map[string]json.RawMessage `json:"compositePrimaryKeys"`
	UniqueConstraints    map[string]json.RawMessage `json:"uniqueConstraints"`
	CheckConstraints     map[string]json.RawMessage `json:"checkConstraints"`
	Policies             map[string]json.RawMessage `json:"policies"`
	IsRLSEnabled         bool                       `json:"isRLSEnabled"`
}

// rawColumn shadows the identity so it can be given squashed.
type rawColumn struct {
	ddl.Column
	Identity json.RawMessage `json:"identity,omitempty"`
	Default  json.RawMessage `json:"default,omitempty"`
}

// ReadFile decodes the snapshot stored at path.
func ReadFile(path string) (*ddl.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading snapshot %s: %w", path, err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return s, nil
}

// DecodeFor decodes a snapshot and verifies that it targets dialect.
func DecodeFor(data []byte, dialect string) (*ddl.Snapshot, error) {
	s, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if want := platform.NormalizeDialect(dialect); s.Dialect != want {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrDialectMismatch, s.Dialect, dialect)
	}
	return s, nil
}

// Decode parses a snapshot document in either the structured or the squashed
// shape and returns it normalized.
func Decode(data []byte) (*ddl.Snapshot, error) {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if raw.Version == "" {
		return nil, fmt.Errorf("%w: missing version", ErrMalformed)
	}
	if platform.NormalizeDialect(raw.Dialect) == "" {
		return nil, fmt.Errorf("%w: unknown dialect %q", ErrMalformed, raw.Dialect)
	}

	s := ddl.NewSnapshot(raw.Dialect)
	s.Version = raw.Version
	s.Roles = nonNil(raw.Roles)
	s.Views = nonNil(raw.Views)
	s.Enums = nonNil(raw.Enums)
	s.Meta = raw.Meta

	for key, msg := range raw.Schemas {
		name, err := decodeSchema(key, msg)
		if err != nil {
			return nil, err
		}
		s.Schemas[key] = &ddl.Schema{Name: name}
	}
	for key, msg := range raw.Sequences {
		seq, err := decodeEntity(msg, squash.UnsquashSequence)
		if err != nil {
			return nil, fmt.Errorf("sequence %s: %w", key, err)
		}
		s.Sequences[key] = seq
	}
	for key, msg := range raw.Policies {
		p, err := decodeEntity(msg, squash.UnsquashPolicy)
		if err != nil {
			return nil, fmt.Errorf("policy %s: %w", key, err)
		}
		s.Policies[key] = p
	}
	for key, rt := range raw.Tables {
		if rt == nil {
			return nil, fmt.Errorf("%w: table %s is null", ErrMalformed, key)
		}
		t, err := decodeTable(rt)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", key, err)
		}
		if t.Name == "" {
			_, t.Name = ddl.SplitKey(key)
		}
		s.Tables[key] = t
	}

	n, err := ddl.Normalize(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return n, nil
}

func decodeSchema(key string, msg json.RawMessage) (string, error) {
	if isString(msg) {
		var name string
		if err := json.Unmarshal(msg, &name); err != nil {
			return "", fmt.Errorf("%w: schema %s: %w", ErrMalformed, key, err)
		}
		return name, nil
	}
	var sc ddl.Schema
	if err := json.Unmarshal(msg, &sc); err != nil {
		return "", fmt.Errorf("%w: schema %s: %w", ErrMalformed, key, err)
	}
	if sc.Name == "" {
		return key, nil
	}
	return sc.Name, nil
}

func decodeTable(rt *rawTable) (*ddl.Table, error) {
	t := ddl.NewTable(rt.Schema, rt.Name)
	t.IsRLSEnabled = rt.IsRLSEnabled

	cols, err := decodeColumns(rt.Columns)
	if err != nil {
		return nil, err
	}
	t.Columns = cols

	if err := decodeInto(t.Indexes, rt.Indexes, squash.UnsquashIndex); err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	if err := decodeInto(t.ForeignKeys, rt.ForeignKeys, squash.UnsquashForeignKey); err != nil {
		return nil, fmt.Errorf("foreign key: %w", err)
	}
	if err := decodeInto(t.CompositePrimaryKeys, rt.CompositePrimaryKeys, squash.UnsquashPrimaryKey); err != nil {
		return nil, fmt.Errorf("primary key: %w", err)
	}
	if err := decodeInto(t.UniqueConstraints, rt.UniqueConstraints, squash.UnsquashUnique); err != nil {
		return nil, fmt.Errorf("unique constraint: %w", err)
	}
	if err := decodeInto(t.CheckConstraints, rt.CheckConstraints, squash.UnsquashCheck); err != nil {
		return nil, fmt.Errorf("check constraint: %w", err)
	}
	if err := decodeInto(t.Policies, rt.Policies, squash.UnsquashPolicy); err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}
	return t, nil
}

// decodeColumns accepts an array of columns or an object keyed by column
// name, keeping document order in both cases.
func decodeColumns(msg json.RawMessage) ([]*ddl.Column, error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return nil, nil
	}

	var raws []*rawColumn
	switch msg[0] {
	case '[':
		if err := json.Unmarshal(msg, &raws); err != nil {
			return nil, fmt.Errorf("%w: columns: %w", ErrMalformed, err)
		}
	case '{':
		dec := json.NewDecoder(bytes.NewReader(msg))
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("%w: columns: %w", ErrMalformed, err)
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("%w: columns: %w", ErrMalformed, err)
			}
			key, _ := tok.(string)
			var rc rawColumn
			if err := dec.Decode(&rc); err != nil {
				return nil, fmt.Errorf("%w: column %s: %w", ErrMalformed, key, err)
			}
			if rc.Name == "" {
				rc.Name = key
			}
			raws = append(raws, &rc)
		}
	default:
		return nil, fmt.Errorf("%w: columns must be an array or an object", ErrMalformed)
	}

	cols := make([]*ddl.Column, 0, len(raws))
	for _, rc := range raws {
		if rc == nil || rc.Name == "" {
			return nil, fmt.Errorf("%w: column without a name", ErrMalformed)
		}
		col := rc.Column
		if len(rc.Identity) > 0 && !bytes.Equal(rc.Identity, []byte("null")) {
			id, err := decodeEntity(rc.Identity, squash.UnsquashIdentity)
			if err != nil {
				return nil, fmt.Errorf("column %s identity: %w", col.Name, err)
			}
			col.Identity = id
		}
		def, err := decodeDefault(rc.Default, col.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: column %s default: %w", ErrMalformed, col.Name, err)
		}
		col.Default = def
		cols = append(cols, &col)
	}
	return cols, nil
}

// decodeDefault decodes a column default. JSON objects and arrays are
// values of the column type and are turned into SQL literals, everything
// else is taken as SQL text.
func decodeDefault(msg json.RawMessage, sqlType string) (*ddl.Default, error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return nil, nil
	}
	if msg[0] != '{' && msg[0] != '[' {
		var d ddl.Default
		if err := json.Unmarshal(msg, &d); err != nil {
			return nil, err
		}
		return &d, nil
	}
	var v any
	if err := json.Unmarshal(msg, &v); err != nil {
		return nil, err
	}
	if _, isObject := v.(map[string]any); isObject && !isJSONType(sqlType) {
		return nil, fmt.Errorf("object default for %s column", sqlType)
	}
	expr, err := literal.Encode(v, sqlType)
	if err != nil {
		return nil, err
	}
	return ddl.NewDefault(expr), nil
}

func isJSONType(sqlType string) bool {
	t := strings.ToLower(strings.TrimSpace(sqlType))
	return t == "json" || t == "jsonb"
}

func decodeInto[T any](dst map[string]*T, src map[string]json.RawMessage, unsquash func(string) (*T, error)) error {
	for key, msg := range src {
		v, err := decodeEntity(msg, unsquash)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		dst[key] = v
	}
	return nil
}

// decodeEntity decodes a sub-entity given either as a squashed string or as
// a JSON object.
func decodeEntity[T any](msg json.RawMessage, unsquash func(string) (*T, error)) (*T, error) {
	if isString(msg) {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		v, err := unsquash(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return v, nil
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return &v, nil
}

func isString(msg json.RawMessage) bool {
	msg = bytes.TrimSpace(msg)
	return len(msg) > 0 && msg[0] == '"'
}

func nonNil[V any](m map[string]*V) map[string]*V {
	out := make(map[string]*V, len(m))
	for k, v := range m {
		if v != nil {
			out[k] = v
		}
	}
	return out
}
