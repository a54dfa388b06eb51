package types

// DBInfo contains connection and metadata information
type DBInfo struct {
	Dialect string `json:"dialect"` // one of the platform dialects
	Driver  string `json:"driver"`  // database/sql driver name
	Schema  string `json:"schema"`  // public, database name, etc.
	URL     string `json:"url"`     // connection URL with the password redacted
}
