// Package ddl defines the normalized schema snapshot that the differ consumes.
//
// A Snapshot is a dialect-tagged aggregate of entity maps. Every map is keyed
// by a stable qualified name: "schema.name" for entities that live in a
// PostgreSQL schema and the bare name everywhere else (see Key). Tables carry
// their sub-entities (columns, indexes, foreign keys, composite primary keys,
// unique and check constraints, policies) as structured values; the squashed
// string encoding only exists at the JSON boundary (see package squash).
//
// # Ownership
//
// Pipeline stages never mutate a snapshot they did not create. Use Clone to
// obtain a private copy before rewriting names.
package ddl

import (
	"encoding/json"
	"sort"
)

// CurrentVersion is the snapshot format version written by this package.
const CurrentVersion = "7"

// Snapshot is one version of a declarative schema.
type Snapshot struct {
	Version   string               `json:"version"`
	Dialect   string               `json:"dialect"`
	Schemas   map[string]*Schema   `json:"schemas"`
	Enums     map[string]*Enum     `json:"enums"`
	Sequences map[string]*Sequence `json:"sequences"`
	Roles     map[string]*Role     `json:"roles"`
	// Policies holds individual policies that are not linked to a table
	// declared in this snapshot (e.g. policies on tables managed elsewhere).
	Policies map[string]*Policy `json:"policies"`
	Views    map[string]*View   `json:"views"`
	Tables   map[string]*Table  `json:"tables"`
	Meta     Meta               `json:"_meta"`
}

// Meta records the renames discovered while producing a snapshot.
// Keys are the old qualified names, values the new ones.
type Meta struct {
	Schemas map[string]string `json:"schemas"`
	Tables  map[string]string `json:"tables"`
	Columns map[string]string `json:"columns"`
}

// Schema is a named PostgreSQL schema.
type Schema struct {
	Name string `json:"name"`
}

// Enum is a user-defined enumerated type.
type Enum struct {
	Name   string   `json:"name"`
	Schema string   `json:"schema"`
	Values []string `json:"values"`
}

// SequenceOptions are the tunables shared by sequences and identity columns.
// Values are kept as strings because they may exceed int64 (e.g. MAXVALUE of
// an unsigned bigint) and are rendered verbatim.
type SequenceOptions struct {
	Increment string `json:"increment,omitempty"`
	MinValue  string `json:"minValue,omitempty"`
	MaxValue  string `json:"maxValue,omitempty"`
	StartWith string `json:"startWith,omitempty"`
	Cache     string `json:"cache,omitempty"`
	Cycle     bool   `json:"cycle,omitempty"`
}

// Sequence is a standalone sequence.
type Sequence struct {
	Name   string `json:"name"`
	Schema string `json:"schema"`
	SequenceOptions
}

// Role is a database role.
type Role struct {
	Name       string `json:"name"`
	CreateDB   bool   `json:"createDb,omitempty"`
	CreateRole bool   `json:"createRole,omitempty"`
	Inherit    bool   `json:"inherit"`
}

// UnmarshalJSON decodes a role. A missing "inherit" attribute means true,
// matching the database default.
func (r *Role) UnmarshalJSON(data []byte) error {
	type plain Role
	p := plain{Inherit: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Role(p)
	return nil
}

// Policy is a row-level security policy.
type Policy struct {
	Name      string   `json:"name"`
	As        string   `json:"as,omitempty"`
	For       string   `json:"for,omitempty"`
	To        []string `json:"to,omitempty"`
	Using     string   `json:"using,omitempty"`
	WithCheck string   `json:"withCheck,omitempty"`
	// On is the qualified name of the table an individual policy applies to.
	// It is empty for policies nested inside a Table.
	On string `json:"on,omitempty"`
}

// View is a (possibly materialized) view.
type View struct {
	Name         string            `json:"name"`
	Schema       string            `json:"schema"`
	Definition   string            `json:"definition,omitempty"`
	Materialized bool              `json:"materialized,omitempty"`
	With         map[string]string `json:"with,omitempty"`
	Using        string            `json:"using,omitempty"`
	Tablespace   string            `json:"tablespace,omitempty"`
	WithNoData   bool              `json:"withNoData,omitempty"`
	// IsExisting marks views managed outside of the snapshot; they are never
	// created, dropped or altered.
	IsExisting bool `json:"isExisting,omitempty"`

	// MySQL view attributes.
	Algorithm   string `json:"algorithm,omitempty"`
	SQLSecurity string `json:"sqlSecurity,omitempty"`
	CheckOption string `json:"withCheckOption,omitempty"`
}

// Table is a table with all of its nested sub-entities.
type Table struct {
	Name   string `json:"name"`
	Schema string `json:"schema"`
	// Columns keeps declaration order; names are unique within a table.
	Columns              []*Column              `json:"columns"`
	Indexes              map[string]*Index      `json:"indexes"`
	ForeignKeys          map[string]*ForeignKey `json:"foreignKeys"`
	CompositePrimaryKeys map[string]*PrimaryKey `json:"compositePrimaryKeys"`
	UniqueConstraints    map[string]*Unique     `json:"uniqueConstraints"`
	CheckConstraints     map[string]*Check      `json:"checkConstraints"`
	Policies             map[string]*Policy     `json:"policies"`
	IsRLSEnabled         bool                   `json:"isRLSEnabled"`
}

// Column is a table column.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	TypeSchema string `json:"typeSchema,omitempty"`
	PrimaryKey bool   `json:"primaryKey"`
	NotNull    bool   `json:"notNull"`
	// Default is the SQL expression of the column default, nil when absent.
	Default       *Default `json:"default,omitempty"`
	AutoIncrement bool     `json:"autoincrement,omitempty"`
	// OnUpdate is MySQL's ON UPDATE CURRENT_TIMESTAMP.
	OnUpdate         bool       `json:"onUpdate,omitempty"`
	IsUnique         bool       `json:"isUnique,omitempty"`
	UniqueName       string     `json:"uniqueName,omitempty"`
	NullsNotDistinct bool       `json:"nullsNotDistinct,omitempty"`
	Generated        *Generated `json:"generated,omitempty"`
	Identity         *Identity  `json:"identity,omitempty"`
}

// Generated describes a generated (computed) column.
type Generated struct {
	// Type is "stored" or "virtual".
	Type string `json:"type"`
	As   string `json:"as"`
}

// Identity describes a PostgreSQL identity column.
type Identity struct {
	// Type is "always" or "byDefault".
	Type   string `json:"type"`
	Name   string `json:"name,omitempty"`
	Schema string `json:"schema,omitempty"`
	SequenceOptions
}

// IndexColumn is one element of an index: a column or an expression.
type IndexColumn struct {
	Expression   string `json:"expression"`
	IsExpression bool   `json:"isExpression,omitempty"`
	Asc          bool   `json:"asc"`
	Nulls        string `json:"nulls,omitempty"`
	Opclass      string `json:"opclass,omitempty"`
}

// Index is a table index.
type Index struct {
	Name         string            `json:"name"`
	Columns      []IndexColumn     `json:"columns"`
	IsUnique     bool              `json:"isUnique"`
	Concurrently bool              `json:"concurrently,omitempty"`
	Method       string            `json:"method,omitempty"`
	Where        string            `json:"where,omitempty"`
	With         map[string]string `json:"with,omitempty"`
}

// ForeignKey is a foreign key constraint.
type ForeignKey struct {
	Name        string   `json:"name"`
	TableFrom   string   `json:"tableFrom"`
	ColumnsFrom []string `json:"columnsFrom"`
	TableTo     string   `json:"tableTo"`
	SchemaTo    string   `json:"schemaTo,omitempty"`
	ColumnsTo   []string `json:"columnsTo"`
	OnDelete    string   `json:"onDelete,omitempty"`
	OnUpdate    string   `json:"onUpdate,omitempty"`
}

// PrimaryKey is a composite primary key.
type PrimaryKey struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

// Unique is a unique constraint.
type Unique struct {
	Name             string   `json:"name"`
	Columns          []string `json:"columns"`
	NullsNotDistinct bool     `json:"nullsNotDistinct,omitempty"`
}

// Check is a check constraint.
type Check struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewSnapshot returns an empty snapshot with every map initialized.
func NewSnapshot(dialect string) *Snapshot {
	return &Snapshot{
		Version:   CurrentVersion,
		Dialect:   dialect,
		Schemas:   map[string]*Schema{},
		Enums:     map[string]*Enum{},
		Sequences: map[string]*Sequence{},
		Roles:     map[string]*Role{},
		Policies:  map[string]*Policy{},
		Views:     map[string]*View{},
		Tables:    map[string]*Table{},
		Meta:      NewMeta(),
	}
}

// NewMeta returns an empty rename record.
func NewMeta() Meta {
	return Meta{
		Schemas: map[string]string{},
		Tables:  map[string]string{},
		Columns: map[string]string{},
	}
}

// NewTable returns a table with every sub-entity map initialized.
func NewTable(schema, name string) *Table {
	return &Table{
		Name:                 name,
		Schema:               schema,
		Indexes:              map[string]*Index{},
		ForeignKeys:          map[string]*ForeignKey{},
		CompositePrimaryKeys: map[string]*PrimaryKey{},
		UniqueConstraints:    map[string]*Unique{},
		CheckConstraints:     map[string]*Check{},
		Policies:             map[string]*Policy{},
	}
}

// Column returns the column with the given name or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// HasEffectiveRLS reports whether row-level security is in effect for the
// table: either explicitly enabled or implied by attached policies.
func (t *Table) HasEffectiveRLS() bool {
	return t.IsRLSEnabled || len(t.Policies) > 0
}

// IsForeignKeyColumn reports whether the named column takes part in any of
// the table's foreign keys.
func (t *Table) IsForeignKeyColumn(name string) bool {
	for _, fk := range t.ForeignKeys {
		for _, c := range fk.ColumnsFrom {
			if c == name {
				return true
			}
		}
	}
	return false
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
