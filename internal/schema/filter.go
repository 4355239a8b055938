package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/koustreak/schemats/internal/errs"
)

// Filter selects tables by glob patterns where * matches any run of
// characters. A table is kept when it matches an include pattern (or no
// include patterns are given) and matches no exclude pattern.
type Filter struct {
	include *regexp.Regexp
	exclude *regexp.Regexp
}

// NewFilter compiles include and exclude glob lists. Both may be empty.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	var err error
	if f.include, err = compileGlobs(include); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid include pattern", err)
	}
	if f.exclude, err = compileGlobs(exclude); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid exclude pattern", err)
	}
	return f, nil
}

// Match reports whether table passes the filter. A nil Filter matches
// everything.
func (f *Filter) Match(table string) bool {
	if f == nil {
		return true
	}
	if f.include != nil && !f.include.MatchString(table) {
		return false
	}
	return f.exclude == nil || !f.exclude.MatchString(table)
}

// compileGlobs turns a list of globs into one anchored alternation.
func compileGlobs(globs []string) (*regexp.Regexp, error) {
	parts := make([]string, 0, len(globs))
	for _, g := range globs {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		parts = append(parts, strings.ReplaceAll(regexp.QuoteMeta(g), `\*`, `.*`))
	}
	if len(parts) == 0 {
		return nil, nil
	}
	re, err := regexp.Compile("^(" + strings.Join(parts, "|") + ")$")
	if err != nil {
		return nil, fmt.Errorf("compile %v: %w", globs, err)
	}
	return re, nil
}
