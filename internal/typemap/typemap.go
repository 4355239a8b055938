// Package typemap translates MySQL column metadata into TypeScript type
// fragments.
//
// The translation is a pure function of the column record and the global
// force-optional flag: no I/O, no shared mutable state. Map is safe to call
// from any number of goroutines.
package typemap

import (
	"fmt"
	"strings"

	"github.com/koustreak/schemats/internal/errs"
	"github.com/koustreak/schemats/internal/schema"
)

// Kind is the TypeScript type family a scalar MySQL type maps onto.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "Date"
	default:
		return "string"
	}
}

const (
	enumDataType       = "enum"
	autoIncrementExtra = "auto_increment"

	// StringType is the generic type used when enum literals cannot be quoted.
	StringType = "string"

	// NeverType is the empty union, emitted for an enum without values.
	NeverType = "never"
)

// scalarTypes is the closed set of supported MySQL data types. New types are
// added here; there is no fallback for keys that are missing.
var scalarTypes = map[string]Kind{
	"bigint":    KindNumber,
	"bit":       KindNumber,
	"decimal":   KindNumber,
	"double":    KindNumber,
	"float":     KindNumber,
	"int":       KindNumber,
	"integer":   KindNumber,
	"mediumint": KindNumber,
	"numeric":   KindNumber,
	"smallint":  KindNumber,
	"tinyint":   KindNumber,

	"binary":     KindString,
	"blob":       KindString,
	"char":       KindString,
	"longblob":   KindString,
	"longtext":   KindString,
	"mediumblob": KindString,
	"mediumtext": KindString,
	"text":       KindString,
	"tinyblob":   KindString,
	"tinytext":   KindString,
	"varbinary":  KindString,
	"varchar":    KindString,
	"time":       KindString,

	"date":      KindDate,
	"datetime":  KindDate,
	"timestamp": KindDate,
}

// Lookup returns the Kind for a scalar MySQL data type. The key is matched
// exactly; information_schema reports data_type in lowercase.
func Lookup(dataType string) (Kind, bool) {
	k, ok := scalarTypes[dataType]
	return k, ok
}

// Fragment is one member of a generated interface.
type Fragment struct {
	Name     string `json:"name"`
	Optional bool   `json:"optional"`
	Type     string `json:"type"`           // never empty
	Note     string `json:"note,omitempty"` // trailing annotation
}

// UnsupportedTypeError is returned by Map for a data type that is neither a
// known scalar nor an enum.
type UnsupportedTypeError struct {
	Table    string
	Column   string
	DataType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unhandled type: %s", e.DataType)
}

// Map converts one column into a Fragment.
//
// The field is optional when forceOptional is set, when the column is
// auto-incrementing, or when it is nullable. Auto-increment columns also carry
// an "auto_increment" note. Unknown data types fail with an
// errs.ErrKindUnsupportedType error wrapping *UnsupportedTypeError.
func Map(col schema.Column, forceOptional bool) (Fragment, error) {
	autoIncrement := strings.Contains(col.Extra, autoIncrementExtra)

	f := Fragment{
		Name:     col.Name,
		Optional: forceOptional || autoIncrement || col.IsNullable,
	}
	if autoIncrement {
		f.Note = autoIncrementExtra
	}

	if kind, ok := scalarTypes[col.DataType]; ok {
		f.Type = kind.String()
		return f, nil
	}

	if col.DataType == enumDataType {
		f.Type = EnumType(col.ColumnType)
		return f, nil
	}

	return Fragment{}, errs.Wrap(
		errs.ErrKindUnsupportedType,
		fmt.Sprintf("map column %s.%s", col.Table, col.Name),
		&UnsupportedTypeError{Table: col.Table, Column: col.Name, DataType: col.DataType},
	)
}

// MapColumns maps every column in order and stops at the first failure.
func MapColumns(cols []schema.Column, forceOptional bool) ([]Fragment, error) {
	out := make([]Fragment, len(cols))
	for i, col := range cols {
		f, err := Map(col, forceOptional)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
