package ast

import (
	"github.com/stokaro/snapdiff/core/ddl"
)

// Policy statements come in two flavours. Policies nested in a table are
// diffed with that table; individual policies apply to tables that are not
// part of the snapshot and are diffed on their own. Both render the same SQL
// but are tagged differently so that they can be sequenced independently.

// CreatePolicyNode represents CREATE POLICY.
type CreatePolicyNode struct {
	Table      string      `json:"tableName"`
	Schema     string      `json:"schema"`
	Policy     *ddl.Policy `json:"data"`
	Individual bool        `json:"-"`
}

func (n *CreatePolicyNode) Accept(visitor Visitor) error { return visitor.VisitCreatePolicy(n) }
func (n *CreatePolicyNode) Kind() Kind {
	if n.Individual {
		return KindCreateIndPolicy
	}
	return KindCreatePolicy
}

// DropPolicyNode represents DROP POLICY.
type DropPolicyNode struct {
	Table      string      `json:"tableName"`
	Schema     string      `json:"schema"`
	Policy     *ddl.Policy `json:"data"`
	Individual bool        `json:"-"`
}

func (n *DropPolicyNode) Accept(visitor Visitor) error { return visitor.VisitDropPolicy(n) }
func (n *DropPolicyNode) Kind() Kind {
	if n.Individual {
		return KindDropIndPolicy
	}
	return KindDropPolicy
}

// RenamePolicyNode represents ALTER POLICY ... RENAME TO.
type RenamePolicyNode struct {
	Table      string `json:"tableName"`
	Schema     string `json:"schema"`
	From       string `json:"oldName"`
	To         string `json:"newName"`
	Individual bool   `json:"-"`
}

func (n *RenamePolicyNode) Accept(visitor Visitor) error { return visitor.VisitRenamePolicy(n) }
func (n *RenamePolicyNode) Kind() Kind {
	if n.Individual {
		return KindRenameIndPolicy
	}
	return KindRenamePolicy
}

// AlterPolicyNode represents ALTER POLICY. Changes PostgreSQL cannot apply in
// place (AS, FOR) are rendered as drop and create.
type AlterPolicyNode struct {
	Table      string      `json:"tableName"`
	Schema     string      `json:"schema"`
	Old        *ddl.Policy `json:"oldData"`
	New        *ddl.Policy `json:"newData"`
	Individual bool        `json:"-"`
}

func (n *AlterPolicyNode) Accept(visitor Visitor) error { return visitor.VisitAlterPolicy(n) }
func (n *AlterPolicyNode) Kind() Kind {
	if n.Individual {
		return KindAlterIndPolicy
	}
	return KindAlterPolicy
}
