package platform

import (
	"strings"
)

const (
	Postgres    = "postgres"
	MySQL       = "mysql"
	SQLite      = "sqlite"
	LibSQL      = "libsql"
	SingleStore = "singlestore"
)

// NormalizeDialect maps the dialect spellings found in snapshots, driver names
// and configuration files onto one of the canonical dialect identifiers.
// It returns an empty string for unknown dialects.
func NormalizeDialect(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "pgx", "postgresql", "postgres", "pg":
		return Postgres
	case "mysql", "mariadb":
		return MySQL
	case "sqlite", "sqlite3":
		return SQLite
	case "turso", "libsql":
		return LibSQL
	case "singlestore", "memsql":
		return SingleStore
	default:
		return ""
	}
}

// DefaultSchema returns the schema an unqualified entity belongs to.
// Only PostgreSQL has named schemas; every other dialect uses the empty schema.
func DefaultSchema(dialect string) string {
	if dialect == Postgres {
		return "public"
	}
	return ""
}

// IsSQLiteFamily reports whether the dialect shares the SQLite ALTER TABLE surface.
func IsSQLiteFamily(dialect string) bool {
	return dialect == SQLite || dialect == LibSQL
}

// SupportsSchemas reports whether the dialect has schema-qualified entities.
func SupportsSchemas(dialect string) bool {
	return dialect == Postgres
}

// All returns every supported dialect in a stable order.
func All() []string {
	return []string{Postgres, MySQL, SQLite, LibSQL, SingleStore}
}
