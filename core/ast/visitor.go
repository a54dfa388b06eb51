package ast

// Visitor defines the interface for visiting migration statements.
//
// Each dialect renderer implements Visitor. A renderer that cannot express a
// statement returns an error from the corresponding method instead of
// emitting partial SQL.
type Visitor interface {
	VisitCreateSchema(node *CreateSchemaNode) error
	VisitDropSchema(node *DropSchemaNode) error
	VisitRenameSchema(node *RenameSchemaNode) error

	VisitCreateEnum(node *CreateEnumNode) error
	VisitDropEnum(node *DropEnumNode) error
	VisitRenameEnum(node *RenameEnumNode) error
	VisitMoveEnum(node *MoveEnumNode) error
	VisitAddEnumValue(node *AddEnumValueNode) error
	VisitRecreateEnum(node *RecreateEnumNode) error

	VisitCreateSequence(node *CreateSequenceNode) error
	VisitDropSequence(node *DropSequenceNode) error
	VisitRenameSequence(node *RenameSequenceNode) error
	VisitMoveSequence(node *MoveSequenceNode) error
	VisitAlterSequence(node *AlterSequenceNode) error

	VisitCreateRole(node *CreateRoleNode) error
	VisitDropRole(node *DropRoleNode) error
	VisitRenameRole(node *RenameRoleNode) error
	VisitAlterRole(node *AlterRoleNode) error

	VisitCreateTable(node *CreateTableNode) error
	VisitDropTable(node *DropTableNode) error
	VisitRenameTable(node *RenameTableNode) error
	VisitSetTableSchema(node *SetTableSchemaNode) error
	VisitRecreateTable(node *RecreateTableNode) error
	VisitEnableRLS(node *EnableRLSNode) error
	VisitDisableRLS(node *DisableRLSNode) error

	VisitAddColumn(node *AddColumnNode) error
	VisitDropColumn(node *DropColumnNode) error
	VisitRenameColumn(node *RenameColumnNode) error
	VisitAlterColumn(node *AlterColumnNode) error

	VisitCreateIndex(node *CreateIndexNode) error
	VisitDropIndex(node *DropIndexNode) error
	VisitCreateReference(node *CreateReferenceNode) error
	VisitDeleteReference(node *DeleteReferenceNode) error
	VisitCreateCompositePK(node *CreateCompositePKNode) error
	VisitDeleteCompositePK(node *DeleteCompositePKNode) error
	VisitAlterCompositePK(node *AlterCompositePKNode) error
	VisitCreateUnique(node *CreateUniqueNode) error
	VisitDeleteUnique(node *DeleteUniqueNode) error
	VisitCreateCheck(node *CreateCheckNode) error
	VisitDeleteCheck(node *DeleteCheckNode) error

	VisitCreateView(node *CreateViewNode) error
	VisitDropView(node *DropViewNode) error
	VisitRenameView(node *RenameViewNode) error
	VisitAlterViewSchema(node *AlterViewSchemaNode) error
	VisitAlterView(node *AlterViewNode) error

	VisitCreatePolicy(node *CreatePolicyNode) error
	VisitDropPolicy(node *DropPolicyNode) error
	VisitRenamePolicy(node *RenamePolicyNode) error
	VisitAlterPolicy(node *AlterPolicyNode) error
}
