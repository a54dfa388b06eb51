package schemadiff

import (
	"context"
	"fmt"

	"github.com/stokaro/snapdiff/core/ddl"
	"github.com/stokaro/snapdiff/migration/internal/compare"
	"github.com/stokaro/snapdiff/migration/internal/patch"
	"github.com/stokaro/snapdiff/migration/planner"
	"github.com/stokaro/snapdiff/migration/resolver"
)

// stage resolves one entity category.
type stage struct {
	name string
	// postgresOnly stages are skipped for other dialects: schemas, enum
	// types, sequences, roles and policies only exist there.
	postgresOnly bool
	run          func(r *run, ctx context.Context) error
}

// stages is the resolution order. A category is resolved after every
// category it may refer to, so that its comparison already sees the
// referenced entities under their new names.
var stages = []stage{
	{name: "schemas", postgresOnly: true, run: (*run).schemas},
	{name: "enums", postgresOnly: true, run: (*run).enums},
	{name: "sequences", postgresOnly: true, run: (*run).sequences},
	{name: "roles", postgresOnly: true, run: (*run).roles},
	{name: "tables", run: (*run).tables},
	{name: "columns", run: (*run).columns},
	{name: "policies", postgresOnly: true, run: (*run).policies},
	{name: "individual policies", postgresOnly: true, run: (*run).individualPolicies},
	{name: "views", run: (*run).views},
}

// resolveMap hands the entities only present on one side of a top-level
// entity map to r.
func resolveMap[T ddl.Entity](ctx context.Context, r resolver.Resolver[T], prev, cur map[string]T) (resolver.Output[T], error) {
	added, deleted, _ := compare.Keys(prev, cur)
	return resolver.Resolve(ctx, r, resolver.Input[T]{
		Created: compare.Values(cur, added),
		Deleted: compare.Values(prev, deleted),
	})
}

// renamesOf converts renames and moves into patch renames.
func renamesOf[T ddl.Entity](out resolver.Output[T]) []patch.Rename {
	renames := make([]patch.Rename, 0, len(out.Renamed)+len(out.Moved))
	for _, rn := range out.Renamed {
		renames = append(renames, patch.Rename{From: rn.From.Ident(), To: rn.To.Ident()})
	}
	for _, m := range out.Moved {
		renames = append(renames, patch.Rename{
			From: ddl.Ident{Schema: m.SchemaFrom, Name: m.Name},
			To:   ddl.Ident{Schema: m.SchemaTo, Name: m.Name},
		})
	}
	return renames
}

// apply replaces prev by the result of fn when there is anything to patch.
func (r *run) apply(renames []patch.Rename, fn func(*ddl.Snapshot, []patch.Rename) (*ddl.Snapshot, error)) error {
	if len(renames) == 0 {
		return nil
	}
	r.logger.Debug("Applying renames", "renames", renames)
	patched, err := fn(r.prev, renames)
	if err != nil {
		return err
	}
	r.prev = patched
	return nil
}

func (r *run) schemas(ctx context.Context) error {
	out, err := resolveMap(ctx, r.resolvers.Schemas, r.prev.Schemas, r.cur.Schemas)
	if err != nil {
		return err
	}
	for _, s := range out.Created {
		r.plan.Add(planner.PrepareCreateSchema(s))
	}
	for _, s := range out.Deleted {
		r.plan.Add(planner.PrepareDropSchema(s))
	}
	renames := renamesOf(out)
	for _, rn := range renames {
		r.plan.Add(planner.PrepareRenameSchema(rn.From.Name, rn.To.Name))
		r.meta.Schemas[rn.From.Name] = rn.To.Name
	}
	return r.apply(renames, patch.RenameSchemas)
}

func (r *run) enums(ctx context.Context) error {
	out, err := resolveMap(ctx, r.resolvers.Enums, r.prev.Enums, r.cur.Enums)
	if err != nil {
		return err
	}
	for _, e := range out.Created {
		r.plan.Add(planner.PrepareCreateEnum(e))
	}
	for _, e := range out.Deleted {
		r.plan.Add(planner.PrepareDropEnum(e))
	}
	renames := renamesOf(out)
	for _, rn := range renames {
		r.plan.Add(planner.PrepareRenameEnum(rn.From, rn.To)...)
	}
	return r.apply(renames, patch.RenameEnums)
}

func (r *run) sequences(ctx context.Context) error {
	out, err := resolveMap(ctx, r.resolvers.Sequences, r.prev.Sequences, r.cur.Sequences)
	if err != nil {
		return err
	}
	for _, s := range out.Created {
		r.plan.Add(planner.PrepareCreateSequence(s))
	}
	for _, s := range out.Deleted {
		r.plan.Add(planner.PrepareDropSequence(s))
	}
	renames := renamesOf(out)
	for _, rn := range renames {
		r.plan.Add(planner.PrepareRenameSequence(rn.From, rn.To)...)
	}
	return r.apply(renames, patch.RenameSequences)
}

func (r *run) roles(ctx context.Context) error {
	out, err := resolveMap(ctx, r.resolvers.Roles, r.prev.Roles, r.cur.Roles)
	if err != nil {
		return err
	}
	for _, role := range out.Created {
		r.plan.Add(planner.PrepareCreateRole(role))
	}
	for _, role := range out.Deleted {
		r.plan.Add(planner.PrepareDropRole(role))
	}
	renames := renamesOf(out)
	for _, rn := range renames {
		r.plan.Add(planner.PrepareRenameRole(rn.From.Name, rn.To.Name))
	}
	return r.apply(renames, patch.RenameRoles)
}

func (r *run) tables(ctx context.Context) error {
	out, err := resolveMap(ctx, r.resolvers.Tables, r.prev.Tables, r.cur.Tables)
	if err != nil {
		return err
	}
	for _, t := range out.Created {
		r.plan.Add(planner.PrepareCreateTable(r.target, t)...)
	}
	for _, t := range out.Deleted {
		r.plan.Add(planner.PrepareDropTable(t))
	}
	renames := renamesOf(out)
	for _, rn := range renames {
		r.plan.Add(planner.PrepareRenameTable(rn.From, rn.To)...)
		r.meta.Tables[rn.From.String()] = rn.To.String()
	}
	return r.apply(renames, patch.RenameTables)
}

func (r *run) columns(ctx context.Context) error {
	for _, delta := range compare.Columns(r.prev.Tables, r.cur.Tables) {
		table := ddl.Ident{Schema: delta.Schema, Name: delta.Table}
		out, err := resolver.Resolve(ctx, r.resolvers.Columns, resolver.Input[*ddl.Column]{
			Table:   delta.Table,
			Schema:  delta.Schema,
			Created: delta.Added,
			Deleted: delta.Deleted,
		})
		if err != nil {
			return fmt.Errorf("table %s: %w", table, err)
		}

		var renames []patch.Rename
		for _, rn := range out.Renamed {
			r.plan.Add(planner.PrepareRenameColumn(table, rn.From.Name, rn.To.Name))
			r.meta.Columns[ddl.Key(table.String(), rn.From.Name)] = ddl.Key(table.String(), rn.To.Name)
			renames = append(renames, patch.Rename{From: rn.From.Ident(), To: rn.To.Ident()})
		}
		if len(renames) > 0 {
			patched, err := patch.RenameColumns(r.prev, table, renames)
			if err != nil {
				return err
			}
			r.prev = patched
		}

		prevTable, curTable := r.prev.Tables[table.String()], r.cur.Tables[table.String()]
		r.added[table.String()] = out.Created
		r.plan.Add(planner.PrepareAddColumns(r.target, r.plan, curTable, out.Created)...)
		r.plan.Add(planner.PrepareDropColumns(prevTable, out.Deleted)...)
	}
	return nil
}

func (r *run) policies(ctx context.Context) error {
	for _, delta := range compare.Policies(r.prev.Tables, r.cur.Tables) {
		table := ddl.Ident{Schema: delta.Schema, Name: delta.Table}
		out, err := resolver.Resolve(ctx, r.resolvers.Policies, resolver.Input[*ddl.Policy]{
			Table:   delta.Table,
			Schema:  delta.Schema,
			Created: delta.Added,
			Deleted: delta.Deleted,
		})
		if err != nil {
			return fmt.Errorf("table %s: %w", table, err)
		}
		r.plan.Add(planner.PrepareCreatePolicies(table, out.Created, false)...)
		r.plan.Add(planner.PrepareDropPolicies(table, out.Deleted, false)...)

		var renames []patch.Rename
		for _, rn := range out.Renamed {
			r.plan.Add(planner.PrepareRenamePolicy(table, rn.From, rn.To, false))
			renames = append(renames, patch.Rename{From: rn.From.Ident(), To: rn.To.Ident()})
		}
		if len(renames) > 0 {
			patched, err := patch.RenamePolicies(r.prev, table, renames)
			if err != nil {
				return err
			}
			r.prev = patched
		}
	}
	return nil
}

// individualPolicies resolves policies that are not nested in a table,
// grouped by the table they apply to.
func (r *run) individualPolicies(ctx context.Context) error {
	prevByTable := groupPolicies(r.prev.Policies)
	curByTable := groupPolicies(r.cur.Policies)
	keys := map[string]bool{}
	for k := range prevByTable {
		keys[k] = true
	}
	for k := range curByTable {
		keys[k] = true
	}

	var renames []patch.Rename
	for _, on := range ddl.SortedKeys(keys) {
		schema, name := ddl.SplitKey(on)
		table := ddl.Ident{Schema: schema, Name: name}
		added, deleted, _ := compare.Keys(prevByTable[on], curByTable[on])
		out, err := resolver.Resolve(ctx, r.resolvers.IndPolicies, resolver.Input[*ddl.Policy]{
			Table:   name,
			Schema:  schema,
			Created: compare.Values(curByTable[on], added),
			Deleted: compare.Values(prevByTable[on], deleted),
		})
		if err != nil {
			return fmt.Errorf("table %s: %w", table, err)
		}
		r.plan.Add(planner.PrepareCreatePolicies(table, out.Created, true)...)
		r.plan.Add(planner.PrepareDropPolicies(table, out.Deleted, true)...)
		for _, rn := range out.Renamed {
			r.plan.Add(planner.PrepareRenamePolicy(table, rn.From, rn.To, true))
			renames = append(renames, patch.Rename{
				From: ddl.Ident{Schema: rn.From.On, Name: rn.From.Name},
				To:   ddl.Ident{Schema: rn.To.On, Name: rn.To.Name},
			})
		}
	}
	return r.apply(renames, patch.RenameIndPolicies)
}

func groupPolicies(policies map[string]*ddl.Policy) map[string]map[string]*ddl.Policy {
	out := map[string]map[string]*ddl.Policy{}
	for _, p := range policies {
		if out[p.On] == nil {
			out[p.On] = map[string]*ddl.Policy{}
		}
		out[p.On][p.Name] = p
	}
	return out
}

func (r *run) views(ctx context.Context) error {
	out, err := resolveMap(ctx, r.resolvers.Views, managedViews(r.prev.Views), managedViews(r.cur.Views))
	if err != nil {
		return err
	}
	for _, v := range out.Created {
		r.plan.Add(planner.PrepareCreateView(v)...)
	}
	for _, v := range out.Deleted {
		r.plan.Add(planner.PrepareDropView(v)...)
	}
	renames := renamesOf(out)
	for _, rn := range renames {
		r.plan.Add(planner.PrepareRenameView(r.target, r.prev.Views[rn.From.String()], r.cur.Views[rn.To.String()])...)
	}
	return r.apply(renames, patch.RenameViews)
}

// managedViews leaves out views managed outside of the snapshots.
func managedViews(views map[string]*ddl.View) map[string]*ddl.View {
	out := make(map[string]*ddl.View, len(views))
	for k, v := range views {
		if !v.IsExisting {
			out[k] = v
		}
	}
	return out
}
