package query

import (
	"fmt"

	"go.einride.tech/aip/ordering"

	"github.com/tbourn/go-budget-assign/internal/domain"
)

// ParseOrderBy parses an AIP-132 order_by string ("amount desc, recentAction")
// into table sort columns. Only ids present in columns are accepted; an empty
// string yields no sort.
func ParseOrderBy(s string, columns ColumnMap) ([]domain.SortColumn, error) {
	if s == "" {
		return nil, nil
	}
	var ob ordering.OrderBy
	if err := ob.UnmarshalString(s); err != nil {
		return nil, fmt.Errorf("parse order_by: %w", err)
	}
	out := make([]domain.SortColumn, 0, len(ob.Fields))
	for _, f := range ob.Fields {
		if _, ok := columns[f.Path]; !ok {
			return nil, fmt.Errorf("invalid order_by: unknown column %q", f.Path)
		}
		out = append(out, domain.SortColumn{ID: f.Path, Desc: f.Desc})
	}
	return out, nil
}
