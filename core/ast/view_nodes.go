package ast

import (
	"github.com/stokaro/snapdiff/core/ddl"
)

// CreateViewNode represents CREATE [MATERIALIZED] VIEW.
type CreateViewNode struct {
	View *ddl.View `json:"view"`
}

func (n *CreateViewNode) Accept(visitor Visitor) error { return visitor.VisitCreateView(n) }
func (n *CreateViewNode) Kind() Kind                   { return KindCreateView }

// DropViewNode represents DROP [MATERIALIZED] VIEW.
type DropViewNode struct {
	Name         string `json:"name"`
	Schema       string `json:"schema"`
	Materialized bool   `json:"materialized,omitempty"`
}

func (n *DropViewNode) Accept(visitor Visitor) error { return visitor.VisitDropView(n) }
func (n *DropViewNode) Kind() Kind                   { return KindDropView }

// RenameViewNode represents ALTER [MATERIALIZED] VIEW ... RENAME TO.
type RenameViewNode struct {
	Schema       string `json:"schema"`
	From         string `json:"nameFrom"`
	To           string `json:"nameTo"`
	Materialized bool   `json:"materialized,omitempty"`
}

func (n *RenameViewNode) Accept(visitor Visitor) error { return visitor.VisitRenameView(n) }
func (n *RenameViewNode) Kind() Kind                   { return KindRenameView }

// AlterViewSchemaNode represents ALTER [MATERIALIZED] VIEW ... SET SCHEMA.
type AlterViewSchemaNode struct {
	Name         string `json:"name"`
	SchemaFrom   string `json:"fromSchema"`
	SchemaTo     string `json:"toSchema"`
	Materialized bool   `json:"materialized,omitempty"`
}

func (n *AlterViewSchemaNode) Accept(visitor Visitor) error { return visitor.VisitAlterViewSchema(n) }
func (n *AlterViewSchemaNode) Kind() Kind                   { return KindAlterViewSchema }

// AlterViewNode represents an in-place view alteration selected by Type:
// setting or resetting storage parameters, changing the tablespace or the
// access method of a materialized view, or (MySQL) replacing the definition.
type AlterViewNode struct {
	Type         Kind   `json:"-"`
	Name         string `json:"name"`
	Schema       string `json:"schema"`
	Materialized bool   `json:"materialized,omitempty"`
	// With holds the parameters to set (add_with_option) or reset
	// (drop_with_option).
	With       map[string]string `json:"with,omitempty"`
	Tablespace string            `json:"toTablespace,omitempty"`
	Using      string            `json:"toUsing,omitempty"`
	// View is the full new definition for KindAlterView.
	View *ddl.View `json:"view,omitempty"`
}

func (n *AlterViewNode) Accept(visitor Visitor) error { return visitor.VisitAlterView(n) }
func (n *AlterViewNode) Kind() Kind                   { return n.Type }
