package repository

import (
	"strings"

	v1 "lingoflow/pkg/api/v1"

	"golang.org/x/text/cases"
)

// Filter keeps the features matching query, preserving order.
func Filter(features []v1.Feature, query string) []v1.Feature {
	m := newMatcher(query)
	out := make([]v1.Feature, 0, len(features))
	for _, f := range features {
		if m.match(f) {
			out = append(out, f)
		}
	}
	return out
}

// Matches reports whether query occurs, ignoring case, in the feature name or
// version, or in any field's name, key or non-empty translation.
func Matches(f v1.Feature, query string) bool {
	return newMatcher(query).match(f)
}

type matcher struct {
	fold  cases.Caser
	query string
}

func newMatcher(query string) *matcher {
	fold := cases.Fold()
	return &matcher{fold: fold, query: fold.String(query)}
}

func (m *matcher) contains(s string) bool {
	return strings.Contains(m.fold.String(s), m.query)
}

func (m *matcher) match(f v1.Feature) bool {
	if m.contains(f.Name) || m.contains(f.Version) {
		return true
	}
	for _, field := range f.Fields {
		if m.contains(field.Name) || m.contains(field.Key) {
			return true
		}
		for _, t := range field.Translations {
			if t != "" && m.contains(t) {
				return true
			}
		}
	}
	return false
}
