package ddl

import (
	"strings"
)

// Constraint names are a pure function of the table and its columns so that
// statement builders never need the surrounding schema to name a constraint.

// PrimaryKeyName names a composite primary key.
func PrimaryKeyName(table string, columns []string) string {
	return table + "_" + strings.Join(columns, "_") + "_pk"
}

// DefaultPrimaryKeyConstraint is the name PostgreSQL gives to a primary key
// declared inline on a column.
func DefaultPrimaryKeyConstraint(table string) string {
	return table + "_pkey"
}

// UniqueName names a unique constraint.
func UniqueName(table string, columns []string) string {
	return table + "_" + strings.Join(columns, "_") + "_unique"
}

// IndexName names an index over plain columns.
func IndexName(table string, columns []string) string {
	return table + "_" + strings.Join(columns, "_") + "_index"
}

// ForeignKeyName names a foreign key.
func ForeignKeyName(tableFrom string, columnsFrom []string, tableTo string, columnsTo []string) string {
	return tableFrom + "_" + strings.Join(columnsFrom, "_") + "_" + tableTo + "_" + strings.Join(columnsTo, "_") + "_fk"
}

// PrimaryKeyConstraintName returns the constraint name of a composite primary
// key, falling back to the derived name when the snapshot did not record one.
func PrimaryKeyConstraintName(table string, pk *PrimaryKey) string {
	if pk.Name != "" {
		return pk.Name
	}
	return PrimaryKeyName(table, pk.Columns)
}
