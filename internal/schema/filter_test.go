package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		exclude []string
		table   string
		want    bool
	}{
		{name: "no patterns", table: "users", want: true},
		{name: "include exact", include: []string{"users"}, table: "users", want: true},
		{name: "include miss", include: []string{"users"}, table: "orders", want: false},
		{name: "include glob", include: []string{"order*"}, table: "order_items", want: true},
		{name: "exclude glob", exclude: []string{"*_tmp"}, table: "users_tmp", want: false},
		{name: "exclude wins over include", include: []string{"*"}, exclude: []string{"users"}, table: "users", want: false},
		{name: "meta characters are literal", include: []string{"a.b"}, table: "axb", want: false},
		{name: "blank patterns ignored", include: []string{" ", ""}, table: "users", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFilter(tt.include, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Match(tt.table))
		})
	}
}

func TestFilter_Nil(t *testing.T) {
	var f *Filter
	assert.True(t, f.Match("anything"))
}
