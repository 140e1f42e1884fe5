// Package filtering implements the "+Include" / "-Exclude" wildcard filters
// applied to package, class and file names while reading coverage inputs.
package filtering

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// IFilter decides whether an element takes part in the report.
type IFilter interface {
	IsElementIncludedInReport(name string) bool
	HasCustomFilters() bool
}

// DefaultFilter matches names against include and exclude wildcard rules.
// Excludes win over includes; without includes everything is included.
type DefaultFilter struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// NewDefaultFilter parses rules such as "+MyCompany.*" or "-*Tests". With
// pathAware set, '/' and '\' in a rule match either separator. Blank rules
// are ignored.
func NewDefaultFilter(rules []string, pathAware bool) (*DefaultFilter, error) {
	df := &DefaultFilter{}
	var errs []error
	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}
		re, err := compileRule(rule[1:], pathAware)
		switch {
		case rule[0] != '+' && rule[0] != '-':
			errs = append(errs, fmt.Errorf("filter %q must start with '+' or '-'", rule))
		case err != nil:
			errs = append(errs, fmt.Errorf("invalid filter %q: %w", rule, err))
		case rule[0] == '+':
			df.include = append(df.include, re)
		default:
			df.exclude = append(df.exclude, re)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return df, nil
}

// IncludeAll returns a filter without rules.
func IncludeAll() *DefaultFilter {
	return &DefaultFilter{}
}

func (df *DefaultFilter) IsElementIncludedInReport(name string) bool {
	for _, re := range df.exclude {
		if re.MatchString(name) {
			return false
		}
	}
	if len(df.include) == 0 {
		return true
	}
	for _, re := range df.include {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func (df *DefaultFilter) HasCustomFilters() bool {
	return len(df.include) > 0 || len(df.exclude) > 0
}

// compileRule turns a wildcard rule into a case-insensitive anchored regexp.
func compileRule(rule string, pathAware bool) (*regexp.Regexp, error) {
	pattern := regexp.QuoteMeta(rule)
	pattern = strings.ReplaceAll(pattern, `\*`, ".*")
	pattern = strings.ReplaceAll(pattern, `\?`, ".")
	if pathAware {
		pattern = strings.ReplaceAll(pattern, `\\`, "/")
		pattern = strings.ReplaceAll(pattern, "/", `[/\\]`)
	}
	return regexp.Compile("(?i)^" + pattern + "$")
}
