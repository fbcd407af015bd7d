package domain

import (
	"net/url"
	"slices"
	"strings"
)

// Query string keys used by the dashboard form.
const (
	ParamDay      = "day"
	ParamYear     = "year"
	ParamCategory = "category"

	// ParamFiltered marks a request that carries explicit filter state.
	// Without it the default (all selected) applies.
	ParamFiltered = "filtered"
)

// Options holds the distinct values offered by each filter.
type Options struct {
	Days       []string `json:"days"`
	Years      []string `json:"years"`
	Categories []string `json:"categories"`
}

// Selection holds the values chosen in each filter. A nil or empty field
// selects nothing.
type Selection struct {
	Days       []string `json:"days"`
	Years      []string `json:"years"`
	Categories []string `json:"categories"`
}

// DefaultSelection selects every option.
func DefaultSelection(o Options) Selection {
	return Selection{
		Days:       slices.Clone(o.Days),
		Years:      slices.Clone(o.Years),
		Categories: slices.Clone(o.Categories),
	}
}

// ParseSelection reads a selection from query parameters. Requests without
// the filtered marker get the default selection; otherwise each field is
// exactly what was submitted, so an unchecked field stays empty.
func ParseSelection(q url.Values, o Options) Selection {
	if !q.Has(ParamFiltered) {
		return DefaultSelection(o)
	}
	return Selection{
		Days:       dedupe(q[ParamDay]),
		Years:      dedupe(q[ParamYear]),
		Categories: dedupe(q[ParamCategory]),
	}
}

// Query encodes the selection as query parameters, including the filtered marker.
func (s Selection) Query() url.Values {
	q := url.Values{}
	q.Set(ParamFiltered, "1")
	for _, v := range s.Days {
		q.Add(ParamDay, v)
	}
	for _, v := range s.Years {
		q.Add(ParamYear, v)
	}
	for _, v := range s.Categories {
		q.Add(ParamCategory, v)
	}
	return q
}

// MatchesNothing reports whether any field is empty.
func (s Selection) MatchesNothing() bool {
	return len(s.Days) == 0 || len(s.Years) == 0 || len(s.Categories) == 0
}

// Has reports whether value is selected for the given query parameter.
func (s Selection) Has(param, value string) bool {
	switch param {
	case ParamDay:
		return slices.Contains(s.Days, value)
	case ParamYear:
		return slices.Contains(s.Years, value)
	case ParamCategory:
		return slices.Contains(s.Categories, value)
	}
	return false
}

// Key returns a canonical string for the selection; order and duplicates do
// not change it.
func (s Selection) Key() string {
	parts := make([]string, 0, 3)
	for _, field := range [][]string{s.Days, s.Years, s.Categories} {
		vals := dedupe(field)
		slices.Sort(vals)
		parts = append(parts, strings.Join(vals, "\x1f"))
	}
	return strings.Join(parts, "\x1e")
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
