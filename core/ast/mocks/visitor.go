package mocks

import (
	"errors"

	"github.com/stokaro/snapdiff/core/ast"
)

var _ ast.Visitor = (*MockVisitor)(nil)

// MockVisitor implements the Visitor interface for testing.
// It records the kind of every visited statement.
type MockVisitor struct {
	VisitedNodes []string
	ReturnError  bool
}

func (m *MockVisitor) record(node ast.Node) error {
	m.VisitedNodes = append(m.VisitedNodes, string(node.Kind()))
	if m.ReturnError {
		return errors.New("mock error")
	}
	return nil
}

func (m *MockVisitor) VisitCreateSchema(node *ast.CreateSchemaNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitDropSchema(node *ast.DropSchemaNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitRenameSchema(node *ast.RenameSchemaNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitCreateEnum(node *ast.CreateEnumNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitDropEnum(node *ast.DropEnumNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitRenameEnum(node *ast.RenameEnumNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitMoveEnum(node *ast.MoveEnumNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitAddEnumValue(node *ast.AddEnumValueNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitRecreateEnum(node *ast.RecreateEnumNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitCreateSequence(node *ast.CreateSequenceNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitDropSequence(node *ast.DropSequenceNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitRenameSequence(node *ast.RenameSequenceNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitMoveSequence(node *ast.MoveSequenceNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitAlterSequence(node *ast.AlterSequenceNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitCreateRole(node *ast.CreateRoleNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitDropRole(node *ast.DropRoleNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitRenameRole(node *ast.RenameRoleNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitAlterRole(node *ast.AlterRoleNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitCreateTable(node *ast.CreateTableNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitDropTable(node *ast.DropTableNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitRenameTable(node *ast.RenameTableNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitSetTableSchema(node *ast.SetTableSchemaNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitRecreateTable(node *ast.RecreateTableNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitEnableRLS(node *ast.EnableRLSNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitDisableRLS(node *ast.DisableRLSNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitAddColumn(node *ast.AddColumnNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitDropColumn(node *ast.DropColumnNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitRenameColumn(node *ast.RenameColumnNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitAlterColumn(node *ast.AlterColumnNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitCreateIndex(node *ast.CreateIndexNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitDropIndex(node *ast.DropIndexNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitCreateReference(node *ast.CreateReferenceNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitDeleteReference(node *ast.DeleteReferenceNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitCreateCompositePK(node *ast.CreateCompositePKNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitDeleteCompositePK(node *ast.DeleteCompositePKNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitAlterCompositePK(node *ast.AlterCompositePKNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitCreateUnique(node *ast.CreateUniqueNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitDeleteUnique(node *ast.DeleteUniqueNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitCreateCheck(node *ast.CreateCheckNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitDeleteCheck(node *ast.DeleteCheckNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitCreateView(node *ast.CreateViewNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitDropView(node *ast.DropViewNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitRenameView(node *ast.RenameViewNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitAlterViewSchema(node *ast.AlterViewSchemaNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitAlterView(node *ast.AlterViewNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitCreatePolicy(node *ast.CreatePolicyNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitDropPolicy(node *ast.DropPolicyNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitRenamePolicy(node *ast.RenamePolicyNode) error {
	return m.record(node)
}

func (m *MockVisitor) VisitAlterPolicy(node *ast.AlterPolicyNode) error {
	return m.record(node)
}
