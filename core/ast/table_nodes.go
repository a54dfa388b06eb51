package ast

import (
	"github.com/stokaro/snapdiff/core/ddl"
)

// TableDef is the complete definition rendered by CREATE TABLE.
//
// Foreign keys are only carried inline for dialects that cannot add them
// later (the SQLite family); everywhere else they follow as
// CreateReferenceNode statements.
type TableDef struct {
	Name        string            `json:"tableName"`
	Schema      string            `json:"schema"`
	Columns     []*ddl.Column     `json:"columns"`
	PrimaryKeys []*ddl.PrimaryKey `json:"compositePKs,omitempty"`
	ForeignKeys []*ddl.ForeignKey `json:"referenceData,omitempty"`
	Uniques     []*ddl.Unique     `json:"uniqueConstraints,omitempty"`
	Checks      []*ddl.Check      `json:"checkConstraints,omitempty"`
}

// CreateTableNode represents a CREATE TABLE statement with all its components.
type CreateTableNode struct {
	TableDef
	// Policies are only informational: they are created by separate
	// CreatePolicyNode statements.
	Policies []string `json:"policies,omitempty"`
}

// NewCreateTable creates a new CREATE TABLE node with the specified table name.
//
// Example:
//
//	table := NewCreateTable("public", "users")
func NewCreateTable(schema, name string) *CreateTableNode {
	return &CreateTableNode{
		TableDef: TableDef{
			Name:    name,
			Schema:  schema,
			Columns: make([]*ddl.Column, 0),
		},
	}
}

// AddColumn adds a column to the CREATE TABLE statement and returns the table node for chaining.
func (n *CreateTableNode) AddColumn(column *ddl.Column) *CreateTableNode {
	n.Columns = append(n.Columns, column)
	return n
}

func (n *CreateTableNode) Accept(visitor Visitor) error { return visitor.VisitCreateTable(n) }
func (n *CreateTableNode) Kind() Kind                   { return KindCreateTable }
func (n *CreateTableNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Name}
}

// DropTableNode represents a DROP TABLE statement.
type DropTableNode struct {
	Name   string `json:"tableName"`
	Schema string `json:"schema"`
}

func (n *DropTableNode) Accept(visitor Visitor) error { return visitor.VisitDropTable(n) }
func (n *DropTableNode) Kind() Kind                   { return KindDropTable }
func (n *DropTableNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Name}
}

// RenameTableNode represents ALTER TABLE ... RENAME TO.
type RenameTableNode struct {
	FromSchema string `json:"fromSchema"`
	ToSchema   string `json:"toSchema"`
	From       string `json:"tableNameFrom"`
	To         string `json:"tableNameTo"`
}

func (n *RenameTableNode) Accept(visitor Visitor) error { return visitor.VisitRenameTable(n) }
func (n *RenameTableNode) Kind() Kind                   { return KindRenameTable }

// TableIdent returns the new identity: statements that follow a rename
// address the table by its new name.
func (n *RenameTableNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.ToSchema, Name: n.To}
}

// SetTableSchemaNode represents ALTER TABLE ... SET SCHEMA.
type SetTableSchemaNode struct {
	Name       string `json:"tableName"`
	SchemaFrom string `json:"schemaFrom"`
	SchemaTo   string `json:"schemaTo"`
}

func (n *SetTableSchemaNode) Accept(visitor Visitor) error { return visitor.VisitSetTableSchema(n) }
func (n *SetTableSchemaNode) Kind() Kind                   { return KindSetTableSchema }
func (n *SetTableSchemaNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.SchemaTo, Name: n.Name}
}

// RecreateTableNode rebuilds a table: a new table is created under a
// temporary name, the surviving columns are copied, the old table is dropped
// and the new one takes its name.
type RecreateTableNode struct {
	TableDef
	// CopyColumns are the columns present in both versions of the table.
	CopyColumns []string `json:"copyColumns"`
}

func (n *RecreateTableNode) Accept(visitor Visitor) error { return visitor.VisitRecreateTable(n) }
func (n *RecreateTableNode) Kind() Kind                   { return KindRecreateTable }
func (n *RecreateTableNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Name}
}

// EnableRLSNode represents ALTER TABLE ... ENABLE ROW LEVEL SECURITY.
type EnableRLSNode struct {
	Table  string `json:"tableName"`
	Schema string `json:"schema"`
}

func (n *EnableRLSNode) Accept(visitor Visitor) error { return visitor.VisitEnableRLS(n) }
func (n *EnableRLSNode) Kind() Kind                   { return KindEnableRLS }
func (n *EnableRLSNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Table}
}

// DisableRLSNode represents ALTER TABLE ... DISABLE ROW LEVEL SECURITY.
type DisableRLSNode struct {
	Table  string `json:"tableName"`
	Schema string `json:"schema"`
}

func (n *DisableRLSNode) Accept(visitor Visitor) error { return visitor.VisitDisableRLS(n) }
func (n *DisableRLSNode) Kind() Kind                   { return KindDisableRLS }
func (n *DisableRLSNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Table}
}

// AddColumnNode represents ALTER TABLE ... ADD COLUMN.
type AddColumnNode struct {
	Table  string      `json:"tableName"`
	Schema string      `json:"schema"`
	Column *ddl.Column `json:"column"`
	// Reference is an inline foreign key on the new column (SQLite family).
	Reference *ddl.ForeignKey `json:"referenceData,omitempty"`
}

func (n *AddColumnNode) Accept(visitor Visitor) error { return visitor.VisitAddColumn(n) }
func (n *AddColumnNode) Kind() Kind                   { return KindAddColumn }
func (n *AddColumnNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Table}
}

// DropColumnNode represents ALTER TABLE ... DROP COLUMN.
type DropColumnNode struct {
	Table  string `json:"tableName"`
	Schema string `json:"schema"`
	Column string `json:"columnName"`
}

func (n *DropColumnNode) Accept(visitor Visitor) error { return visitor.VisitDropColumn(n) }
func (n *DropColumnNode) Kind() Kind                   { return KindDropColumn }
func (n *DropColumnNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Table}
}

// RenameColumnNode represents ALTER TABLE ... RENAME COLUMN.
type RenameColumnNode struct {
	Table  string `json:"tableName"`
	Schema string `json:"schema"`
	From   string `json:"oldColumnName"`
	To     string `json:"newColumnName"`
}

func (n *RenameColumnNode) Accept(visitor Visitor) error { return visitor.VisitRenameColumn(n) }
func (n *RenameColumnNode) Kind() Kind                   { return KindRenameColumn }
func (n *RenameColumnNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Table}
}

// AlterColumnNode represents one property change of an existing column.
//
// The property is selected by Type (one of the KindSet*/KindDrop* column
// tags). Def is the complete column definition after the change: dialects
// that rewrite the whole column (MySQL MODIFY COLUMN, LibSQL ALTER COLUMN)
// render it, the others read the single property they need from it. The Old*
// fields carry the previous state where a renderer needs it.
type AlterColumnNode struct {
	Type   Kind        `json:"-"`
	Table  string      `json:"tableName"`
	Schema string      `json:"schema"`
	Column string      `json:"columnName"`
	Def    *ddl.Column `json:"column"`

	OldType      string         `json:"oldDataType,omitempty"`
	OldDefault   *ddl.Default   `json:"oldDefault,omitempty"`
	OldIdentity  *ddl.Identity  `json:"oldIdentity,omitempty"`
	OldGenerated *ddl.Generated `json:"oldGenerated,omitempty"`
	// ConstraintName names the primary key constraint for set_pk and drop_pk.
	ConstraintName string `json:"constraintName,omitempty"`
	// WithPrimaryKey makes a set_autoincrement also declare the column as
	// the primary key; MySQL only accepts AUTO_INCREMENT on a key column.
	WithPrimaryKey bool `json:"withPrimaryKey,omitempty"`
}

// NewAlterColumn creates a column alteration of the given kind.
func NewAlterColumn(kind Kind, t *ddl.Table, def *ddl.Column) *AlterColumnNode {
	return &AlterColumnNode{
		Type:   kind,
		Table:  t.Name,
		Schema: t.Schema,
		Column: def.Name,
		Def:    def,
	}
}

func (n *AlterColumnNode) Accept(visitor Visitor) error { return visitor.VisitAlterColumn(n) }
func (n *AlterColumnNode) Kind() Kind                   { return n.Type }
func (n *AlterColumnNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Table}
}

// CreateIndexNode represents CREATE INDEX. PostgreSQL indexes are tagged
// KindCreateIndexPg because they carry method, opclass and storage options.
type CreateIndexNode struct {
	Type   Kind       `json:"-"`
	Table  string     `json:"tableName"`
	Schema string     `json:"schema"`
	Index  *ddl.Index `json:"data"`
}

func (n *CreateIndexNode) Accept(visitor Visitor) error { return visitor.VisitCreateIndex(n) }
func (n *CreateIndexNode) Kind() Kind                   { return n.Type }
func (n *CreateIndexNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Table}
}

// DropIndexNode represents DROP INDEX.
type DropIndexNode struct {
	Table  string `json:"tableName"`
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

func (n *DropIndexNode) Accept(visitor Visitor) error { return visitor.VisitDropIndex(n) }
func (n *DropIndexNode) Kind() Kind                   { return KindDropIndex }
func (n *DropIndexNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Table}
}

// CreateReferenceNode adds a foreign key constraint.
type CreateReferenceNode struct {
	Table      string          `json:"tableName"`
	Schema     string          `json:"schema"`
	ForeignKey *ddl.ForeignKey `json:"data"`
}

func (n *CreateReferenceNode) Accept(visitor Visitor) error { return visitor.VisitCreateReference(n) }
func (n *CreateReferenceNode) Kind() Kind                   { return KindCreateReference }
func (n *CreateReferenceNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Table}
}

// DeleteReferenceNode drops a foreign key constraint.
type DeleteReferenceNode struct {
	Table      string          `json:"tableName"`
	Schema     string          `json:"schema"`
	ForeignKey *ddl.ForeignKey `json:"data"`
}

func (n *DeleteReferenceNode) Accept(visitor Visitor) error { return visitor.VisitDeleteReference(n) }
func (n *DeleteReferenceNode) Kind() Kind                   { return KindDeleteReference }
func (n *DeleteReferenceNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Table}
}

// CreateCompositePKNode adds a composite primary key.
type CreateCompositePKNode struct {
	Table      string          `json:"tableName"`
	Schema     string          `json:"schema"`
	PrimaryKey *ddl.PrimaryKey `json:"data"`
}

func (n *CreateCompositePKNode) Accept(visitor Visitor) error {
	return visitor.VisitCreateCompositePK(n)
}
func (n *CreateCompositePKNode) Kind() Kind { return KindCreateCompositePK }
func (n *CreateCompositePKNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Table}
}

// DeleteCompositePKNode drops a composite primary key.
type DeleteCompositePKNode struct {
	Table      string          `json:"tableName"`
	Schema     string          `json:"schema"`
	PrimaryKey *ddl.PrimaryKey `json:"data"`
}

func (n *DeleteCompositePKNode) Accept(visitor Visitor) error {
	return visitor.VisitDeleteCompositePK(n)
}
func (n *DeleteCompositePKNode) Kind() Kind { return KindDeleteCompositePK }
func (n *DeleteCompositePKNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Table}
}

// AlterCompositePKNode replaces a composite primary key.
type AlterCompositePKNode struct {
	Table  string          `json:"tableName"`
	Schema string          `json:"schema"`
	Old    *ddl.PrimaryKey `json:"old"`
	New    *ddl.PrimaryKey `json:"new"`
}

func (n *AlterCompositePKNode) Accept(visitor Visitor) error {
	return visitor.VisitAlterCompositePK(n)
}
func (n *AlterCompositePKNode) Kind() Kind { return KindAlterCompositePK }
func (n *AlterCompositePKNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Table}
}

// CreateUniqueNode adds a unique constraint.
type CreateUniqueNode struct {
	Table  string      `json:"tableName"`
	Schema string      `json:"schema"`
	Unique *ddl.Unique `json:"data"`
}

func (n *CreateUniqueNode) Accept(visitor Visitor) error { return visitor.VisitCreateUnique(n) }
func (n *CreateUniqueNode) Kind() Kind                   { return KindCreateUnique }
func (n *CreateUniqueNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Table}
}

// DeleteUniqueNode drops a unique constraint.
type DeleteUniqueNode struct {
	Table  string      `json:"tableName"`
	Schema string      `json:"schema"`
	Unique *ddl.Unique `json:"data"`
}

func (n *DeleteUniqueNode) Accept(visitor Visitor) error { return visitor.VisitDeleteUnique(n) }
func (n *DeleteUniqueNode) Kind() Kind                   { return KindDeleteUnique }
func (n *DeleteUniqueNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Table}
}

// CreateCheckNode adds a check constraint.
type CreateCheckNode struct {
	Table  string     `json:"tableName"`
	Schema string     `json:"schema"`
	Check  *ddl.Check `json:"data"`
}

func (n *CreateCheckNode) Accept(visitor Visitor) error { return visitor.VisitCreateCheck(n) }
func (n *CreateCheckNode) Kind() Kind                   { return KindCreateCheck }
func (n *CreateCheckNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Table}
}

// DeleteCheckNode drops a check constraint.
type DeleteCheckNode struct {
	Table  string     `json:"tableName"`
	Schema string     `json:"schema"`
	Check  *ddl.Check `json:"data"`
}

func (n *DeleteCheckNode) Accept(visitor Visitor) error { return visitor.VisitDeleteCheck(n) }
func (n *DeleteCheckNode) Kind() Kind                   { return KindDeleteCheck }
func (n *DeleteCheckNode) TableIdent() ddl.Ident {
	return ddl.Ident{Schema: n.Schema, Name: n.Table}
}
