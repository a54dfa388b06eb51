package ast

import (
	"github.com/stokaro/snapdiff/core/ddl"
)

// CreateSchemaNode represents CREATE SCHEMA (PostgreSQL).
type CreateSchemaNode struct {
	Name string `json:"name"`
}

func (n *CreateSchemaNode) Accept(visitor Visitor) error { return visitor.VisitCreateSchema(n) }
func (n *CreateSchemaNode) Kind() Kind                   { return KindCreateSchema }

// DropSchemaNode represents DROP SCHEMA (PostgreSQL).
type DropSchemaNode struct {
	Name string `json:"name"`
}

func (n *DropSchemaNode) Accept(visitor Visitor) error { return visitor.VisitDropSchema(n) }
func (n *DropSchemaNode) Kind() Kind                   { return KindDropSchema }

// RenameSchemaNode represents ALTER SCHEMA ... RENAME TO.
type RenameSchemaNode struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (n *RenameSchemaNode) Accept(visitor Visitor) error { return visitor.VisitRenameSchema(n) }
func (n *RenameSchemaNode) Kind() Kind                   { return KindRenameSchema }

// CreateEnumNode represents a CREATE TYPE ... AS ENUM statement (PostgreSQL-specific).
//
// Other dialects declare enums inline in the column type and never receive
// this node.
type CreateEnumNode struct {
	Name   string   `json:"name"`
	Schema string   `json:"schema"`
	Values []string `json:"values"`
}

// NewEnum creates a new enum node with the specified name and values.
//
// Example:
//
//	enum := NewEnum("public", "status", "active", "inactive", "pending")
func NewEnum(schema, name string, values ...string) *CreateEnumNode {
	return &CreateEnumNode{
		Name:   name,
		Schema: schema,
		Values: values,
	}
}

func (n *CreateEnumNode) Accept(visitor Visitor) error { return visitor.VisitCreateEnum(n) }
func (n *CreateEnumNode) Kind() Kind                   { return KindCreateEnum }

// DropEnumNode represents DROP TYPE for an enum.
type DropEnumNode struct {
	Name   string `json:"name"`
	Schema string `json:"schema"`
}

func (n *DropEnumNode) Accept(visitor Visitor) error { return visitor.VisitDropEnum(n) }
func (n *DropEnumNode) Kind() Kind                   { return KindDropEnum }

// RenameEnumNode represents ALTER TYPE ... RENAME TO.
type RenameEnumNode struct {
	Schema string `json:"schema"`
	From   string `json:"nameFrom"`
	To     string `json:"nameTo"`
}

func (n *RenameEnumNode) Accept(visitor Visitor) error { return visitor.VisitRenameEnum(n) }
func (n *RenameEnumNode) Kind() Kind                   { return KindRenameEnum }

// MoveEnumNode represents ALTER TYPE ... SET SCHEMA.
type MoveEnumNode struct {
	Name       string `json:"name"`
	SchemaFrom string `json:"schemaFrom"`
	SchemaTo   string `json:"schemaTo"`
}

func (n *MoveEnumNode) Accept(visitor Visitor) error { return visitor.VisitMoveEnum(n) }
func (n *MoveEnumNode) Kind() Kind                   { return KindMoveEnum }

// AddEnumValueNode represents ALTER TYPE ... ADD VALUE.
type AddEnumValueNode struct {
	Name   string `json:"name"`
	Schema string `json:"schema"`
	Value  string `json:"value"`
	// Before is the existing value the new one is inserted in front of;
	// empty appends at the end.
	Before string `json:"before,omitempty"`
}

func (n *AddEnumValueNode) Accept(visitor Visitor) error { return visitor.VisitAddEnumValue(n) }
func (n *AddEnumValueNode) Kind() Kind                   { return KindAddEnumValue }

// EnumColumn is a column whose type is the enum being recreated.
type EnumColumn struct {
	Table   string       `json:"table"`
	Schema  string       `json:"schema"`
	Column  string       `json:"column"`
	IsArray bool         `json:"isArray,omitempty"`
	Default *ddl.Default `json:"default,omitempty"`
}

// RecreateEnumNode replaces an enum type when values were removed or
// reordered: dependent columns are cast to text, the type is dropped and
// created with the new values, and the columns are cast back.
type RecreateEnumNode struct {
	Name          string       `json:"name"`
	Schema        string       `json:"schema"`
	Values        []string     `json:"newValues"`
	DeletedValues []string     `json:"deletedValues"`
	Columns       []EnumColumn `json:"columnsWithEnum"`
}

func (n *RecreateEnumNode) Accept(visitor Visitor) error { return visitor.VisitRecreateEnum(n) }
func (n *RecreateEnumNode) Kind() Kind                   { return KindDropEnumValue }

// CreateSequenceNode represents CREATE SEQUENCE.
type CreateSequenceNode struct {
	Name    string              `json:"name"`
	Schema  string              `json:"schema"`
	Options ddl.SequenceOptions `json:"values"`
}

func (n *CreateSequenceNode) Accept(visitor Visitor) error { return visitor.VisitCreateSequence(n) }
func (n *CreateSequenceNode) Kind() Kind                   { return KindCreateSequence }

// DropSequenceNode represents DROP SEQUENCE.
type DropSequenceNode struct {
	Name   string `json:"name"`
	Schema string `json:"schema"`
}

func (n *DropSequenceNode) Accept(visitor Visitor) error { return visitor.VisitDropSequence(n) }
func (n *DropSequenceNode) Kind() Kind                   { return KindDropSequence }

// RenameSequenceNode represents ALTER SEQUENCE ... RENAME TO.
type RenameSequenceNode struct {
	Schema string `json:"schema"`
	From   string `json:"nameFrom"`
	To     string `json:"nameTo"`
}

func (n *RenameSequenceNode) Accept(visitor Visitor) error { return visitor.VisitRenameSequence(n) }
func (n *RenameSequenceNode) Kind() Kind                   { return KindRenameSequence }

// MoveSequenceNode represents ALTER SEQUENCE ... SET SCHEMA.
type MoveSequenceNode struct {
	Name       string `json:"name"`
	SchemaFrom string `json:"schemaFrom"`
	SchemaTo   string `json:"schemaTo"`
}

func (n *MoveSequenceNode) Accept(visitor Visitor) error { return visitor.VisitMoveSequence(n) }
func (n *MoveSequenceNode) Kind() Kind                   { return KindMoveSequence }

// AlterSequenceNode represents ALTER SEQUENCE with the new option set.
type AlterSequenceNode struct {
	Name    string              `json:"name"`
	Schema  string              `json:"schema"`
	Options ddl.SequenceOptions `json:"values"`
}

func (n *AlterSequenceNode) Accept(visitor Visitor) error { return visitor.VisitAlterSequence(n) }
func (n *AlterSequenceNode) Kind() Kind                   { return KindAlterSequence }

// CreateRoleNode represents CREATE ROLE.
type CreateRoleNode struct {
	Name       string `json:"name"`
	CreateDB   bool   `json:"createDb"`
	CreateRole bool   `json:"createRole"`
	Inherit    bool   `json:"inherit"`
}

// NewCreateRole creates a role node from its snapshot definition.
func NewCreateRole(r *ddl.Role) *CreateRoleNode {
	return &CreateRoleNode{
		Name:       r.Name,
		CreateDB:   r.CreateDB,
		CreateRole: r.CreateRole,
		Inherit:    r.Inherit,
	}
}

func (n *CreateRoleNode) Accept(visitor Visitor) error { return visitor.VisitCreateRole(n) }
func (n *CreateRoleNode) Kind() Kind                   { return KindCreateRole }

// DropRoleNode represents DROP ROLE.
type DropRoleNode struct {
	Name string `json:"name"`
}

func (n *DropRoleNode) Accept(visitor Visitor) error { return visitor.VisitDropRole(n) }
func (n *DropRoleNode) Kind() Kind                   { return KindDropRole }

// RenameRoleNode represents ALTER ROLE ... RENAME TO.
type RenameRoleNode struct {
	From string `json:"nameFrom"`
	To   string `json:"nameTo"`
}

func (n *RenameRoleNode) Accept(visitor Visitor) error { return visitor.VisitRenameRole(n) }
func (n *RenameRoleNode) Kind() Kind                   { return KindRenameRole }

// AlterRoleNode represents ALTER ROLE with the complete new attribute set.
type AlterRoleNode struct {
	Name       string `json:"name"`
	CreateDB   bool   `json:"createDb"`
	CreateRole bool   `json:"createRole"`
	Inherit    bool   `json:"inherit"`
}

func (n *AlterRoleNode) Accept(visitor Visitor) error { return visitor.VisitAlterRole(n) }
func (n *AlterRoleNode) Kind() Kind                   { return KindAlterRole }
