package typemap

import (
	"strings"
)

const (
	enumPrefix = "enum("
	enumSuffix = ")"
)

// quoteChars are tried in order; the first one absent from a literal wins.
var quoteChars = [...]byte{'\'', '"', '`'}

// EnumType builds the TypeScript union for a column_type such as
// enum('a','b'). It never fails: an enum with no values becomes "never", and
// if any literal contains all three quote characters the whole field falls
// back to "string".
func EnumType(columnType string) string {
	values := EnumValues(columnType)
	if len(values) == 0 {
		return NeverType
	}

	quoted := make([]string, len(values))
	for i, v := range values {
		q, ok := Quote(v)
		if !ok {
			return StringType
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " | ")
}

// EnumValues returns the decoded literal values declared in an enum
// column_type, in declaration order.
func EnumValues(columnType string) []string {
	inner := strings.TrimSuffix(strings.TrimPrefix(columnType, enumPrefix), enumSuffix)

	tokens := SplitLiterals(inner)
	values := make([]string, len(tokens))
	for i, tok := range tokens {
		values[i] = Unquote(tok)
	}
	return values
}

// SplitLiterals splits a comma-separated list of single-quoted SQL literals.
// Commas inside a literal do not split. Inside a literal a doubled single
// quote and a backslash escape (\x) are part of the value.
func SplitLiterals(s string) []string {
	if s == "" {
		return nil
	}

	var out []string
	start := 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case inQuote && c == '\\':
			i++
		case c == '\'':
			// '' closes and immediately reopens, so it needs no special case.
			inQuote = !inQuote
		case c == ',' && !inQuote:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

// Unquote strips the enclosing single quotes from a SQL literal and decodes
// doubled-quote and backslash escapes. A token without enclosing quotes is returned
// as is.
func Unquote(tok string) string {
	tok = strings.TrimSpace(tok)
	if len(tok) < 2 || tok[0] != '\'' || tok[len(tok)-1] != '\'' {
		return tok
	}
	body := tok[1 : len(tok)-1]
	if !strings.ContainsAny(body, `'\`) {
		return body
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			i++
			b.WriteByte(body[i])
		case c == '\'' && i+1 < len(body) && body[i+1] == '\'':
			i++
			b.WriteByte('\'')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Quote renders value as a TypeScript string literal using the first quote
// character from ', ", ` that does not occur in value. It reports false when
// value contains all three.
func Quote(value string) (string, bool) {
	for _, q := range quoteChars {
		if strings.IndexByte(value, q) >= 0 {
			continue
		}
		return string(q) + escapeLiteral(value, q) + string(q), true
	}
	return "", false
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)

func escapeLiteral(value string, quote byte) string {
	value = literalEscaper.Replace(value)
	if quote == '`' {
		value = strings.ReplaceAll(value, "${", `\${`)
	}
	return value
}
