package schema

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/koustreak/schemats/internal/database"
	"github.com/koustreak/schemats/internal/errs"
)

// fakeDB answers the information_schema queries issued by MySQLIntrospector
// from in-memory fixtures.
type fakeDB struct {
	tables  []string
	views   []string
	columns map[string][]Column
	delay   map[string]time.Duration // per-table latency for InspectTable
	fail    map[string]error

	mu      sync.Mutex
	queries int
}

func (f *fakeDB) Ping(context.Context) error { return nil }
func (f *fakeDB) Close()                     {}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	f.mu.Lock()
	f.queries++
	f.mu.Unlock()

	switch {
	case strings.Contains(sql, "information_schema.tables"):
		var rows [][]any
		for _, t := range f.listed(sql) {
			rows = append(rows, []any{t})
		}
		return &fakeRows{data: rows}, nil

	case strings.Contains(sql, "information_schema.columns"):
		table := args[1].(string)
		if err := f.fail[table]; err != nil {
			return nil, err
		}
		if d := f.delay[table]; d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return nil, errs.Wrap(errs.ErrKindTimeout, "query failed", ctx.Err())
			}
		}
		var rows [][]any
		for _, c := range f.columns[table] {
			rows = append(rows, []any{c.Name, c.Position, c.IsNullable, c.DataType, c.ColumnType, c.Extra, c.Comment})
		}
		return &fakeRows{data: rows}, nil
	}
	return nil, fmt.Errorf("unexpected query: %s", sql)
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) (database.Row, error) {
	f.mu.Lock()
	f.queries++
	f.mu.Unlock()

	table := args[1].(string)
	exists := false
	for _, t := range f.listed(sql) {
		if t == table {
			exists = true
		}
	}
	return &fakeRows{data: [][]any{{exists}}, pos: 0}, nil
}

// listed returns the names a tables query selects: views only when the
// query asks for them.
func (f *fakeDB) listed(sql string) []string {
	names := append([]string(nil), f.tables...)
	if strings.Contains(sql, "'VIEW'") {
		names = append(names, f.views...)
	}
	return names
}

type fakeRows struct {
	data [][]any
	pos  int // index of the row Scan reads, advanced by Next
	next bool
}

func (r *fakeRows) Next() bool {
	if r.next {
		r.pos++
	}
	r.next = true
	return r.pos < len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos]
	if len(row) != len(dest) {
		return fmt.Errorf("scan: want %d destinations, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *int:
			*p = row[i].(int)
		case *bool:
			*p = row[i].(bool)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }
