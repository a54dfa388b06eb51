// Package ast defines the atomic migration statements produced by the planner.
//
// Every statement is a Node: a small value carrying exactly the fields its SQL
// renderer needs. Nodes form a closed tagged union; the tag is returned by
// Kind and written as the "type" field when a statement list is encoded as
// JSON (see MarshalStatements).
//
// Rendering is done with the visitor pattern. A dialect renderer implements
// Visitor and each node dispatches to the matching Visit method from Accept.
//
// # Lifecycle
//
// Nodes are created by the statement builders, optionally replaced by a
// RecreateTableNode in the combiner and then rendered. They are never
// modified after creation.
package ast

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/stokaro/snapdiff/core/ddl"
)

// Node represents any migration statement that can be visited by a Visitor.
type Node interface {
	// Accept implements the visitor pattern for rendering
	Accept(visitor Visitor) error
	// Kind returns the statement tag.
	Kind() Kind
}

// TableStatement is implemented by statements that change exactly one table.
// The combiner groups statements by this identity.
type TableStatement interface {
	Node
	TableIdent() ddl.Ident
}

// Kind is the statement tag.
type Kind string

// Statement tags.
const (
	KindCreateSchema Kind = "create_schema"
	KindDropSchema   Kind = "drop_schema"
	KindRenameSchema Kind = "rename_schema"

	KindCreateEnum    Kind = "create_type_enum"
	KindDropEnum      Kind = "drop_type_enum"
	KindRenameEnum    Kind = "rename_type_enum"
	KindMoveEnum      Kind = "move_type_enum"
	KindAddEnumValue  Kind = "alter_type_add_value"
	KindDropEnumValue Kind = "alter_type_drop_value"

	KindCreateSequence Kind = "create_sequence"
	KindDropSequence   Kind = "drop_sequence"
	KindRenameSequence Kind = "rename_sequence"
	KindMoveSequence   Kind = "move_sequence"
	KindAlterSequence  Kind = "alter_sequence"

	KindCreateRole Kind = "create_role"
	KindDropRole   Kind = "drop_role"
	KindRenameRole Kind = "rename_role"
	KindAlterRole  Kind = "alter_role"

	KindCreateTable    Kind = "create_table"
	KindDropTable      Kind = "drop_table"
	KindRenameTable    Kind = "rename_table"
	KindSetTableSchema Kind = "alter_table_set_schema"
	KindRecreateTable  Kind = "recreate_table"
	KindEnableRLS      Kind = "enable_rls"
	KindDisableRLS     Kind = "disable_rls"

	KindAddColumn    Kind = "alter_table_add_column"
	KindDropColumn   Kind = "alter_table_drop_column"
	KindRenameColumn Kind = "alter_table_rename_column"

	KindSetType           Kind = "alter_table_alter_column_set_type"
	KindSetDefault        Kind = "alter_table_alter_column_set_default"
	KindDropDefault       Kind = "alter_table_alter_column_drop_default"
	KindSetNotNull        Kind = "alter_table_alter_column_set_notnull"
	KindDropNotNull       Kind = "alter_table_alter_column_drop_notnull"
	KindSetPK             Kind = "alter_table_alter_column_set_pk"
	KindDropPK            Kind = "alter_table_alter_column_drop_pk"
	KindSetAutoIncrement  Kind = "alter_table_alter_column_set_autoincrement"
	KindDropAutoIncrement Kind = "alter_table_alter_column_drop_autoincrement"
	KindSetOnUpdate       Kind = "alter_table_alter_column_set_on_update"
	KindDropOnUpdate      Kind = "alter_table_alter_column_drop_on_update"
	KindSetIdentity       Kind = "alter_table_alter_column_set_identity"
	KindDropIdentity      Kind = "alter_table_alter_column_drop_identity"
	KindChangeIdentity    Kind = "alter_table_alter_column_change_identity"
	KindSetGenerated      Kind = "alter_table_alter_column_set_generated"
	KindDropGenerated     Kind = "alter_table_alter_column_drop_generated"
	KindAlterGenerated    Kind = "alter_table_alter_column_alter_generated"

	KindCreateIndexPg Kind = "create_index_pg"
	KindCreateIndex   Kind = "create_index"
	KindDropIndex     Kind = "drop_index"

	KindCreateReference Kind = "create_reference"
	KindDeleteReference Kind = "delete_reference"

	KindCreateCompositePK Kind = "create_composite_pk"
	KindDeleteCompositePK Kind = "delete_composite_pk"
	KindAlterCompositePK  Kind = "alter_composite_pk"

	KindCreateUnique Kind = "create_unique_constraint"
	KindDeleteUnique Kind = "delete_unique_constraint"
	KindCreateCheck  Kind = "create_check_constraint"
	KindDeleteCheck  Kind = "delete_check_constraint"

	KindCreateView          Kind = "create_view"
	KindDropView            Kind = "drop_view"
	KindRenameView          Kind = "rename_view"
	KindAlterViewSchema     Kind = "alter_view_alter_schema"
	KindAlterViewAddWith    Kind = "alter_view_add_with_option"
	KindAlterViewDropWith   Kind = "alter_view_drop_with_option"
	KindAlterViewTablespace Kind = "alter_view_alter_tablespace"
	KindAlterViewUsing      Kind = "alter_view_alter_using"
	KindAlterView           Kind = "alter_view"

	KindCreatePolicy    Kind = "create_policy"
	KindDropPolicy      Kind = "drop_policy"
	KindRenamePolicy    Kind = "rename_policy"
	KindAlterPolicy     Kind = "alter_policy"
	KindCreateIndPolicy Kind = "create_ind_policy"
	KindDropIndPolicy   Kind = "drop_ind_policy"
	KindRenameIndPolicy Kind = "rename_ind_policy"
	KindAlterIndPolicy  Kind = "alter_ind_policy"
)

// Kinds returns every statement tag in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindCreateSchema, KindDropSchema, KindRenameSchema,
		KindCreateEnum, KindDropEnum, KindRenameEnum, KindMoveEnum, KindAddEnumValue, KindDropEnumValue,
		KindCreateSequence, KindDropSequence, KindRenameSequence, KindMoveSequence, KindAlterSequence,
		KindCreateRole, KindDropRole, KindRenameRole, KindAlterRole,
		KindCreateTable, KindDropTable, KindRenameTable, KindSetTableSchema, KindRecreateTable,
		KindEnableRLS, KindDisableRLS,
		KindAddColumn, KindDropColumn, KindRenameColumn,
		KindSetType, KindSetDefault, KindDropDefault, KindSetNotNull, KindDropNotNull,
		KindSetPK, KindDropPK, KindSetAutoIncrement, KindDropAutoIncrement,
		KindSetOnUpdate, KindDropOnUpdate, KindSetIdentity, KindDropIdentity, KindChangeIdentity,
		KindSetGenerated, KindDropGenerated, KindAlterGenerated,
		KindCreateIndexPg, KindCreateIndex, KindDropIndex,
		KindCreateReference, KindDeleteReference,
		KindCreateCompositePK, KindDeleteCompositePK, KindAlterCompositePK,
		KindCreateUnique, KindDeleteUnique, KindCreateCheck, KindDeleteCheck,
		KindCreateView, KindDropView, KindRenameView, KindAlterViewSchema, KindAlterViewAddWith,
		KindAlterViewDropWith, KindAlterViewTablespace, KindAlterViewUsing, KindAlterView,
		KindCreatePolicy, KindDropPolicy, KindRenamePolicy, KindAlterPolicy,
		KindCreateIndPolicy, KindDropIndPolicy, KindRenameIndPolicy, KindAlterIndPolicy,
	}
}

// IsAlterColumn reports whether k tags an AlterColumnNode.
func (k Kind) IsAlterColumn() bool {
	switch k {
	case KindSetType, KindSetDefault, KindDropDefault, KindSetNotNull, KindDropNotNull,
		KindSetPK, KindDropPK, KindSetAutoIncrement, KindDropAutoIncrement,
		KindSetOnUpdate, KindDropOnUpdate, KindSetIdentity, KindDropIdentity,
		KindChangeIdentity, KindSetGenerated, KindDropGenerated, KindAlterGenerated:
		return true
	}
	return false
}

// MarshalStatements encodes a statement list as a JSON array where every
// element carries its tag in the "type" field.
func MarshalStatements(nodes []Node) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, n := range nodes {
		if i > 0 {
			buf.WriteByte(',')
		}
		body, err := json.Marshal(n)
		if err != nil {
			return nil, fmt.Errorf("error encoding %s statement: %w", n.Kind(), err)
		}
		tag, _ := json.Marshal(n.Kind())
		buf.WriteString(`{"type":`)
		buf.Write(tag)
		if len(body) > 2 {
			buf.WriteByte(',')
			buf.Write(body[1:])
		} else {
			buf.WriteByte('}')
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
