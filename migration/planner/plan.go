// Package planner turns resolved schema differences into an ordered list of
// atomic migration statements.
//
// The package has three parts:
//
//   - Statement builders (the Prepare* functions) convert one category of
//     change into statements. They are pure: everything they need is passed
//     in, and constraint names are derived with the ddl naming helpers
//     instead of being looked up in the surrounding schema.
//   - The sequencer (Plan) collects statements into buckets and concatenates
//     the buckets in a fixed order that respects cross-entity dependencies.
//   - The redundancy filter (Filter) removes statements made moot by another
//     statement of the same batch.
//
// # Statement Order
//
// The order is a data-driven table (Buckets), not an emergent property of
// the code that produces statements. It encodes one rule: whatever references
// an entity is dropped before the entity, and referenced entities are created
// before whatever references them. In short:
//
//	schemas → enums, sequences, roles → tables → RLS → view drops and renames →
//	table drops → table and column renames → constraint drops → index drops →
//	column alterations → column and key additions → reference and index creation →
//	constraint additions → views → policies → enum, sequence, role and schema drops
//
// # Usage Example
//
//	plan := planner.NewPlan()
//	plan.Add(planner.PrepareCreateTable(target, table)...)
//	plan.Add(planner.PrepareDropTable(dropped))
//	stmts := planner.Filter(plan.Statements())
//
// # Thread Safety
//
// The builders are stateless and safe for concurrent use. A Plan is not.
package planner

import (
	"fmt"
	"log/slog"

	"github.com/stokaro/snapdiff/config"
	"github.com/stokaro/snapdiff/core/ast"
)

// Target describes what statements are built for.
type Target struct {
	Dialect string
	Action  config.Action
}

// Bucket is one slot of the global statement order. Statements of the kinds
// it lists are emitted together, in the order they were added.
type Bucket struct {
	Name  string
	Kinds []ast.Kind
}

var alterColumnKinds = []ast.Kind{
	ast.KindSetType, ast.KindSetDefault, ast.KindDropDefault, ast.KindSetNotNull, ast.KindDropNotNull,
	ast.KindSetPK, ast.KindDropPK, ast.KindSetAutoIncrement, ast.KindDropAutoIncrement,
	ast.KindSetOnUpdate, ast.KindDropOnUpdate, ast.KindSetIdentity, ast.KindDropIdentity,
	ast.KindChangeIdentity, ast.KindSetGenerated, ast.KindDropGenerated, ast.KindAlterGenerated,
}

// Buckets is the global statement order. recreate_table is not listed: it
// is introduced by the combiner after sequencing.
var Buckets = []Bucket{
	{Name: "create schemas", Kinds: []ast.Kind{ast.KindCreateSchema}},
	{Name: "rename schemas", Kinds: []ast.Kind{ast.KindRenameSchema}},
	{Name: "create enums", Kinds: []ast.Kind{ast.KindCreateEnum}},
	{Name: "move enums", Kinds: []ast.Kind{ast.KindMoveEnum}},
	{Name: "rename enums", Kinds: []ast.Kind{ast.KindRenameEnum}},
	{Name: "add enum values", Kinds: []ast.Kind{ast.KindAddEnumValue}},
	{Name: "create sequences", Kinds: []ast.Kind{ast.KindCreateSequence}},
	{Name: "move sequences", Kinds: []ast.Kind{ast.KindMoveSequence}},
	{Name: "rename sequences", Kinds: []ast.Kind{ast.KindRenameSequence}},
	{Name: "alter sequences", Kinds: []ast.Kind{ast.KindAlterSequence}},
	{Name: "rename roles", Kinds: []ast.Kind{ast.KindRenameRole}},
	{Name: "create roles", Kinds: []ast.Kind{ast.KindCreateRole}},
	{Name: "alter roles", Kinds: []ast.Kind{ast.KindAlterRole}},

	{Name: "create tables", Kinds: []ast.Kind{ast.KindCreateTable}},
	{Name: "enable rls", Kinds: []ast.Kind{ast.KindEnableRLS}},
	{Name: "disable rls", Kinds: []ast.Kind{ast.KindDisableRLS}},
	{Name: "drop views", Kinds: []ast.Kind{ast.KindDropView}},
	{Name: "rename views", Kinds: []ast.Kind{ast.KindRenameView, ast.KindAlterViewSchema}},
	{Name: "alter views", Kinds: []ast.Kind{
		ast.KindAlterViewAddWith, ast.KindAlterViewDropWith, ast.KindAlterViewTablespace,
		ast.KindAlterViewUsing, ast.KindAlterView,
	}},
	{Name: "drop tables", Kinds: []ast.Kind{ast.KindDropTable}},
	{Name: "set table schemas", Kinds: []ast.Kind{ast.KindSetTableSchema}},
	{Name: "rename tables", Kinds: []ast.Kind{ast.KindRenameTable}},
	{Name: "rename columns", Kinds: []ast.Kind{ast.KindRenameColumn}},

	{Name: "drop unique constraints", Kinds: []ast.Kind{ast.KindDeleteUnique}},
	{Name: "drop check constraints", Kinds: []ast.Kind{ast.KindDeleteCheck}},
	{Name: "drop references", Kinds: []ast.Kind{ast.KindDeleteReference}},
	{Name: "drop enum values", Kinds: []ast.Kind{ast.KindDropEnumValue}},
	{Name: "drop indexes", Kinds: []ast.Kind{ast.KindDropIndex}},
	{Name: "drop composite primary keys", Kinds: []ast.Kind{ast.KindDeleteCompositePK}},
	{Name: "alter columns", Kinds: alterColumnKinds},
	{Name: "create composite primary keys", Kinds: []ast.Kind{ast.KindCreateCompositePK}},
	{Name: "add columns", Kinds: []ast.Kind{ast.KindAddColumn}},
	{Name: "create references", Kinds: []ast.Kind{ast.KindCreateReference}},
	{Name: "create indexes", Kinds: []ast.Kind{ast.KindCreateIndexPg, ast.KindCreateIndex}},
	{Name: "drop columns", Kinds: []ast.Kind{ast.KindDropColumn}},
	{Name: "alter composite primary keys", Kinds: []ast.Kind{ast.KindAlterCompositePK}},
	{Name: "create unique constraints", Kinds: []ast.Kind{ast.KindCreateUnique}},
	{Name: "create check constraints", Kinds: []ast.Kind{ast.KindCreateCheck}},

	{Name: "create views", Kinds: []ast.Kind{ast.KindCreateView}},
	{Name: "rename policies", Kinds: []ast.Kind{ast.KindRenamePolicy}},
	{Name: "drop policies", Kinds: []ast.Kind{ast.KindDropPolicy}},
	{Name: "create policies", Kinds: []ast.Kind{ast.KindCreatePolicy}},
	{Name: "alter policies", Kinds: []ast.Kind{ast.KindAlterPolicy}},
	{Name: "rename individual policies", Kinds: []ast.Kind{ast.KindRenameIndPolicy}},
	{Name: "drop individual policies", Kinds: []ast.Kind{ast.KindDropIndPolicy}},
	{Name: "create individual policies", Kinds: []ast.Kind{ast.KindCreateIndPolicy}},
	{Name: "alter individual policies", Kinds: []ast.Kind{ast.KindAlterIndPolicy}},
	{Name: "drop roles", Kinds: []ast.Kind{ast.KindDropRole}},
	{Name: "drop enums", Kinds: []ast.Kind{ast.KindDropEnum}},
	{Name: "drop sequences", Kinds: []ast.Kind{ast.KindDropSequence}},
	{Name: "drop schemas", Kinds: []ast.Kind{ast.KindDropSchema}},
}

var bucketOf = func() map[ast.Kind]int {
	m := make(map[ast.Kind]int)
	for i, b := range Buckets {
		for _, k := range b.Kinds {
			m[k] = i
		}
	}
	return m
}()

// Plan accumulates statements and warnings for one diff run.
type Plan struct {
	buckets  [][]ast.Node
	unknown  []ast.Node
	warnings []string
}

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{buckets: make([][]ast.Node, len(Buckets))}
}

// Add queues statements. A statement whose kind has no bucket is kept and
// emitted after every bucket.
func (p *Plan) Add(nodes ...ast.Node) {
	for _, n := range nodes {
		i, ok := bucketOf[n.Kind()]
		if !ok {
			slog.Warn("Statement kind has no position in the statement order", "kind", n.Kind())
			p.unknown = append(p.unknown, n)
			continue
		}
		p.buckets[i] = append(p.buckets[i], n)
	}
}

// Warn records a non-fatal warning and logs it.
func (p *Plan) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	slog.Warn(msg)
	p.warnings = append(p.warnings, msg)
}

// Warnings returns the warnings recorded so far.
func (p *Plan) Warnings() []string {
	return p.warnings
}

// Statements concatenates the buckets in order.
func (p *Plan) Statements() []ast.Node {
	var out []ast.Node
	for _, b := range p.buckets {
		out = append(out, b...)
	}
	return append(out, p.unknown...)
}
