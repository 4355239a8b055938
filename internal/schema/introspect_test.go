package schema

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/schemats/internal/errs"
)

func shopDB() *fakeDB {
	return &fakeDB{
		tables: []string{"orders", "users", "audit_log"},
		columns: map[string][]Column{
			"orders": {
				{Name: "id", Position: 1, DataType: "bigint", ColumnType: "bigint unsigned", Extra: "auto_increment"},
				{Name: "placed_at", Position: 2, IsNullable: true, DataType: "datetime", ColumnType: "datetime"},
			},
			"users": {
				{Name: "id", Position: 1, DataType: "int", ColumnType: "int", Extra: "auto_increment"},
				{Name: "status", Position: 2, DataType: "enum", ColumnType: "enum('a','b')"},
			},
			"audit_log": {
				{Name: "payload", Position: 1, DataType: "text", ColumnType: "text", Comment: "raw body"},
			},
		},
	}
}

func TestListTables(t *testing.T) {
	in := NewMySQLIntrospector(shopDB(), Options{})

	tables, err := in.ListTables(context.Background(), "shop")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users", "audit_log"}, tables)
}

func withView(db *fakeDB) *fakeDB {
	db.views = []string{"active_users"}
	db.columns["active_users"] = []Column{
		{Name: "id", Position: 1, DataType: "int", ColumnType: "int"},
	}
	return db
}

func TestListTables_IncludesViews(t *testing.T) {
	in := NewMySQLIntrospector(withView(shopDB()), Options{})

	tables, err := in.ListTables(context.Background(), "shop")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users", "audit_log", "active_users"}, tables)

	ok, err := in.TableExists(context.Background(), "shop", "active_users")
	require.NoError(t, err)
	assert.True(t, ok)

	s, err := in.InspectSchema(context.Background(), "shop")
	require.NoError(t, err)
	require.Len(t, s.Tables, 4)
	assert.Equal(t, "active_users", s.Tables[3].Name)
}

func TestListTables_SkipViews(t *testing.T) {
	in := NewMySQLIntrospector(withView(shopDB()), Options{SkipViews: true})

	tables, err := in.ListTables(context.Background(), "shop")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users", "audit_log"}, tables)

	ok, err := in.TableExists(context.Background(), "shop", "active_users")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListTables_Filtered(t *testing.T) {
	f, err := NewFilter(nil, []string{"audit_*"})
	require.NoError(t, err)
	in := NewMySQLIntrospector(shopDB(), Options{Filter: f})

	tables, err := in.ListTables(context.Background(), "shop")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users"}, tables)
}

func TestInspectTable(t *testing.T) {
	in := NewMySQLIntrospector(shopDB(), Options{})

	info, err := in.InspectTable(context.Background(), "shop", "users")
	require.NoError(t, err)
	assert.Equal(t, "shop", info.Schema)
	assert.Equal(t, "users", info.Name)
	require.Len(t, info.Columns, 2)
	assert.Equal(t, Column{
		Table: "users", Name: "status", Position: 2,
		DataType: "enum", ColumnType: "enum('a','b')",
	}, info.Columns[1])
}

func TestInspectTable_NotFound(t *testing.T) {
	in := NewMySQLIntrospector(shopDB(), Options{})

	_, err := in.InspectTable(context.Background(), "shop", "missing")
	assert.True(t, errs.IsNotFound(err))
}

func TestTableExists(t *testing.T) {
	in := NewMySQLIntrospector(shopDB(), Options{})

	ok, err := in.TableExists(context.Background(), "shop", "users")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = in.TableExists(context.Background(), "shop", "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTableExists_Filtered(t *testing.T) {
	f, err := NewFilter(nil, []string{"audit_*"})
	require.NoError(t, err)
	db := shopDB()
	in := NewMySQLIntrospector(db, Options{Filter: f})

	ok, err := in.TableExists(context.Background(), "shop", "audit_log")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, db.queries)

	ok, err = in.TableExists(context.Background(), "shop", "users")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInspectSchema_KeepsTableOrder(t *testing.T) {
	db := shopDB()
	// the first table finishes last
	db.delay = map[string]time.Duration{"orders": 30 * time.Millisecond}
	in := NewMySQLIntrospector(db, Options{Concurrency: 3})

	s, err := in.InspectSchema(context.Background(), "shop")
	require.NoError(t, err)
	assert.Equal(t, "shop", s.Name)

	var names []string
	for _, ti := range s.Tables {
		names = append(names, ti.Name)
	}
	assert.Equal(t, []string{"orders", "users", "audit_log"}, names)
	assert.Equal(t, "raw body", s.Tables[2].Columns[0].Comment)
}

func TestInspectSchema_PropagatesError(t *testing.T) {
	db := shopDB()
	boom := errors.New("boom")
	db.fail = map[string]error{"users": boom}
	in := NewMySQLIntrospector(db, Options{})

	_, err := in.InspectSchema(context.Background(), "shop")
	assert.ErrorIs(t, err, boom)
}

func TestInspectTable_QueryTimeout(t *testing.T) {
	db := shopDB()
	db.delay = map[string]time.Duration{"users": time.Second}
	in := NewMySQLIntrospector(db, Options{QueryTimeout: 10 * time.Millisecond})

	_, err := in.InspectTable(context.Background(), "shop", "users")
	assert.True(t, errs.IsTimeout(err))
}
