package schema

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/koustreak/schemats/internal/database"
	"github.com/koustreak/schemats/internal/errs"
	"github.com/koustreak/schemats/internal/logger"
)

const defaultConcurrency = 4

// Options tunes a MySQLIntrospector.
type Options struct {
	// Concurrency caps how many tables are inspected at once. Zero means 4.
	Concurrency int

	// QueryTimeout bounds each information_schema query. Zero means no limit
	// beyond the caller's context.
	QueryTimeout time.Duration

	// Filter selects tables by name. Nil keeps every table.
	Filter *Filter

	// SkipViews restricts listing to base tables. By default views are
	// listed too, the same set SHOW TABLES returns.
	SkipViews bool
}

const (
	baseTablesOnly = "table_type = 'BASE TABLE'"
	tablesAndViews = "table_type IN ('BASE TABLE', 'VIEW')"
)

// MySQLIntrospector implements Reader for MySQL using information_schema.
type MySQLIntrospector struct {
	db   database.DB
	opts Options
}

// NewMySQLIntrospector creates a new MySQL schema introspector.
func NewMySQLIntrospector(db database.DB, opts Options) *MySQLIntrospector {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &MySQLIntrospector{db: db, opts: opts}
}

// ListTables returns the tables (and views, unless SkipViews is set) of the
// given database that pass the filter.
func (m *MySQLIntrospector) ListTables(ctx context.Context, db string) ([]string, error) {
	q := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ?
		  AND ` + m.tableTypes() + `
		ORDER BY table_name`

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	rows, err := m.db.Query(ctx, q, db)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		if m.opts.Filter.Match(name) {
			tables = append(tables, name)
		}
	}
	return tables, rows.Err()
}

// TableExists checks whether a table that ListTables would return exists.
// Tables rejected by the filter are reported as missing.
func (m *MySQLIntrospector) TableExists(ctx context.Context, db, table string) (bool, error) {
	if !m.opts.Filter.Match(table) {
		return false, nil
	}
	q := `
		SELECT COUNT(*) > 0
		FROM information_schema.tables
		WHERE table_schema = ?
		  AND table_name = ?
		  AND ` + m.tableTypes()

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	row, err := m.db.QueryRow(ctx, q, db, table)
	if err != nil {
		return false, fmt.Errorf("table exists check: %w", err)
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("table exists check: %w", err)
	}
	return exists, nil
}

// InspectTable returns column details for a single table.
func (m *MySQLIntrospector) InspectTable(ctx context.Context, db, table string) (*TableInfo, error) {
	const q = `
		SELECT
			c.column_name,
			c.ordinal_position,
			c.is_nullable = 'YES' AS is_nullable,
			c.data_type,
			c.column_type,
			c.extra,
			c.column_comment
		FROM information_schema.columns c
		WHERE c.table_schema = ?
		  AND c.table_name   = ?
		ORDER BY c.ordinal_position`

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	rows, err := m.db.Query(ctx, q, db, table)
	if err != nil {
		return nil, fmt.Errorf("inspect table %s.%s: %w", db, table, err)
	}
	defer rows.Close()

	info := &TableInfo{Schema: db, Name: table}
	for rows.Next() {
		col := Column{Table: table}
		if err := rows.Scan(
			&col.Name,
			&col.Position,
			&col.IsNullable,
			&col.DataType,
			&col.ColumnType,
			&col.Extra,
			&col.Comment,
		); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		info.Columns = append(info.Columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(info.Columns) == 0 {
		return nil, errs.New(errs.ErrKindNotFound,
			fmt.Sprintf("table %s.%s not found or has no columns", db, table))
	}
	return info, nil
}

// InspectSchema lists the tables of db and inspects them concurrently. The
// result keeps the listing order regardless of completion order.
func (m *MySQLIntrospector) InspectSchema(ctx context.Context, db string) (*Schema, error) {
	log := logger.FromContext(ctx)

	tables, err := m.ListTables(ctx, db)
	if err != nil {
		return nil, err
	}
	log.With().Str("database", db).Int("tables", len(tables)).Logger().Debug("tables listed")

	infos := make([]TableInfo, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Concurrency)
	for i, table := range tables {
		g.Go(func() error {
			ti, err := m.InspectTable(gctx, db, table)
			if err != nil {
				return err
			}
			infos[i] = *ti
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Schema{Name: db, Tables: infos}, nil
}

func (m *MySQLIntrospector) tableTypes() string {
	if m.opts.SkipViews {
		return baseTablesOnly
	}
	return tablesAndViews
}

func (m *MySQLIntrospector) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.opts.QueryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.opts.QueryTimeout)
}
