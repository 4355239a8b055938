package schema

// Column describes a single column as reported by information_schema.COLUMNS.
type Column struct {
	Table      string
	Name       string
	Position   int    // ordinal_position, 1-based
	IsNullable bool   // is_nullable = 'YES'
	DataType   string // lowercase keyword: varchar, int, enum, …
	ColumnType string // full declaration, e.g. enum('a','b') or int(10) unsigned
	Extra      string // e.g. auto_increment, on update CURRENT_TIMESTAMP
	Comment    string
}

// TableInfo describes a table and its columns in declaration order.
type TableInfo struct {
	Schema  string
	Name    string
	Columns []Column
}

// Schema is the introspected database: every selected table in listing order.
type Schema struct {
	Name   string
	Tables []TableInfo
}
