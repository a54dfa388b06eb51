package ddl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Ident is the identity of an entity: its schema (may be empty) and name.
type Ident struct {
	Schema string
	Name   string
}

// String returns the qualified name used as a map key.
func (i Ident) String() string {
	return Key(i.Schema, i.Name)
}

// Entity is implemented by everything a resolver can rename.
type Entity interface {
	Ident() Ident
}

// Key builds the map key of a (possibly schema-qualified) entity.
func Key(schema, name string) string {
	if schema == "" {
		return name
	}
	return schema + "." + name
}

// SplitKey is the inverse of Key. A key without a dot has an empty schema.
func SplitKey(key string) (schema, name string) {
	if i := strings.Index(key, "."); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}

// Ident returns the schema name. Schemas are not qualified.
func (s *Schema) Ident() Ident { return Ident{Name: s.Name} }

// Ident returns the schema-qualified enum name.
func (e *Enum) Ident() Ident { return Ident{Schema: e.Schema, Name: e.Name} }

// Ident returns the schema-qualified sequence name.
func (s *Sequence) Ident() Ident { return Ident{Schema: s.Schema, Name: s.Name} }

// Ident returns the role name. Roles are cluster-wide.
func (r *Role) Ident() Ident { return Ident{Name: r.Name} }

// Ident returns the policy name. Policies are unique per table only, so the
// table key is not part of it.
func (p *Policy) Ident() Ident { return Ident{Name: p.Name} }

// Ident returns the schema-qualified view name.
func (v *View) Ident() Ident { return Ident{Schema: v.Schema, Name: v.Name} }

// Ident returns the schema-qualified table name.
func (t *Table) Ident() Ident { return Ident{Schema: t.Schema, Name: t.Name} }

// Ident returns the column name, unqualified by its table.
func (c *Column) Ident() Ident { return Ident{Name: c.Name} }

// Default holds the SQL text of a column default.
//
// Snapshots written by different tools store defaults as JSON strings
// ("'abc'", "now()"), numbers (42) or booleans (true); all of them decode
// into their SQL text.
type Default string

// NewDefault returns a pointer to a default holding expr.
func NewDefault(expr string) *Default {
	d := Default(expr)
	return &d
}

// String returns the SQL expression.
func (d *Default) String() string {
	if d == nil {
		return ""
	}
	return string(*d)
}

// UnmarshalJSON accepts strings, numbers and booleans.
func (d *Default) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty default value")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Default(s)
		return nil
	}
	switch data[0] {
	case '{', '[':
		return fmt.Errorf("unsupported default value %s", data)
	}
	*d = Default(data)
	return nil
}

// EqualDefaults compares two optional defaults.
func EqualDefaults(a, b *Default) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
