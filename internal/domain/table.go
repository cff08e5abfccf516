package domain

import "sort"

// SortColumn is one entry of a table's sort specification.
type SortColumn struct {
	ID   string `json:"id"`
	Desc bool   `json:"desc"`
}

// Filter is one active column filter. Value is either a string or a list of
// strings depending on the column.
type Filter struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// TableQueryState is the generic state of a paginated, sortable, filterable
// table. PageIndex is 0-based.
type TableQueryState struct {
	PageIndex int          `json:"page_index"`
	PageSize  int          `json:"page_size"`
	SortBy    []SortColumn `json:"sort_by"`
	Filters   []Filter     `json:"filters"`
}

// Clone returns a copy that shares no slices with s.
func (s TableQueryState) Clone() TableQueryState {
	out := s
	if s.SortBy != nil {
		out.SortBy = append([]SortColumn(nil), s.SortBy...)
	}
	if s.Filters != nil {
		out.Filters = make([]Filter, len(s.Filters))
		for i, f := range s.Filters {
			out.Filters[i] = Filter{ID: f.ID, Value: cloneFilterValue(f.Value)}
		}
	}
	return out
}

// FilterValues normalizes a filter value into a list of strings.
func FilterValues(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, x := range t {
			if s, ok := x.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func cloneFilterValue(v any) any {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []any:
		return append([]any(nil), t...)
	}
	return v
}

// SameSortAndFilters compares only the meaningful subset of two table
// states: sort columns and filters. Filter order and multi-value order are
// not significant; page index and page size are ignored.
func SameSortAndFilters(a, b TableQueryState) bool {
	if len(a.SortBy) != len(b.SortBy) {
		return false
	}
	for i := range a.SortBy {
		if a.SortBy[i] != b.SortBy[i] {
			return false
		}
	}
	fa, fb := filterKey(a.Filters), filterKey(b.Filters)
	if len(fa) != len(fb) {
		return false
	}
	for k, va := range fa {
		vb, ok := fb[k]
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if va[i] != vb[i] {
				return false
			}
		}
	}
	return true
}

func filterKey(fs []Filter) map[string][]string {
	out := make(map[string][]string, len(fs))
	for _, f := range fs {
		vals := FilterValues(f.Value)
		if len(vals) == 0 {
			continue
		}
		sort.Strings(vals)
		out[f.ID] = vals
	}
	return out
}
