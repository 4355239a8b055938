// Package schema reads table and column metadata from MySQL's
// information_schema.
package schema

import "context"

// Reader is the interface for introspecting a database schema.
type Reader interface {
	// ListTables returns the base tables of a database, after filtering, in
	// name order.
	ListTables(ctx context.Context, database string) ([]string, error)

	// TableExists checks whether a base table exists.
	TableExists(ctx context.Context, database, table string) (bool, error)

	// InspectTable returns the columns of one table in ordinal order.
	InspectTable(ctx context.Context, database, table string) (*TableInfo, error)

	// InspectSchema returns every listed table with its columns.
	InspectSchema(ctx context.Context, database string) (*Schema, error)
}
