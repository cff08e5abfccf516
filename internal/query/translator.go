// Package query translates generic table state (page, sort, filters) into
// the enterprise-access list query parameters.
//
// Translation is pure apart from logging: unknown filter or sort ids are
// dropped with a warning so a newer dashboard column never breaks the list.
package query

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-budget-assign/internal/domain"
)

// Logical parameter keys produced by ToQueryParams. The enterprise-access
// client maps them onto wire names.
const (
	ParamPage         = "page"
	ParamPageSize     = "page_size"
	ParamOrdering     = "ordering"
	ParamSearch       = "search"
	ParamLearnerState = "learnerState"
	ParamState        = "state"
)

// Known filter ids.
const (
	FilterAssignmentDetails = "assignmentDetails"
	FilterLearnerState      = "learnerState"
	FilterRequestStatus     = "requestStatus"
)

// Column declares how a sortable UI column maps to a backend field.
// IsReversed flips the direction for fields stored with an inverted sign,
// e.g. content_quantity where a larger cost is a more negative number.
type Column struct {
	Field      string
	IsReversed bool
}

// ColumnMap maps UI column ids to backend fields.
type ColumnMap map[string]Column

// AssignmentColumns is the column map of the assignment table.
var AssignmentColumns = ColumnMap{
	"amount":            {Field: "content_quantity", IsReversed: true},
	"assignmentDetails": {Field: "content_title"},
	"learnerState":      {Field: "learner_state_sort_order"},
	"recentAction":      {Field: "recent_action_time"},
}

// Params is the translated query: logical key → value. A key is present only
// when it carries a value.
type Params map[string]string

// Translator converts table state into Params. The zero value logs through
// the global zerolog logger.
type Translator struct {
	Logger *zerolog.Logger
}

// ToQueryParams translates a full table state: page, sort and filters.
func (t Translator) ToQueryParams(state domain.TableQueryState, columns ColumnMap) Params {
	p := Params{
		ParamPage: strconv.Itoa(state.PageIndex + 1),
	}
	if state.PageSize > 0 {
		p[ParamPageSize] = strconv.Itoa(state.PageSize)
	}
	if ordering := t.ordering(state.SortBy, columns); ordering != "" {
		p[ParamOrdering] = ordering
	}
	for k, v := range t.FilterParams(state.Filters) {
		p[k] = v
	}
	return p
}

// FilterParams translates only the filters. Bulk "act on all filtered"
// operations use it so page and ordering never leak into the request.
func (t Translator) FilterParams(filters []domain.Filter) Params {
	p := Params{}
	for _, f := range filters {
		vals := domain.FilterValues(f.Value)
		switch f.ID {
		case FilterAssignmentDetails:
			if len(vals) > 0 {
				p[ParamSearch] = strings.TrimSpace(strings.Join(vals, " "))
			}
		case FilterLearnerState:
			if len(vals) > 0 {
				p[ParamLearnerState] = strings.Join(vals, ",")
			}
		case FilterRequestStatus:
			if len(vals) > 0 {
				p[ParamState] = strings.Join(vals, ",")
			}
		default:
			t.logger().Warn().Str("filter_id", f.ID).Msg("dropping unknown table filter")
		}
	}
	if p[ParamSearch] == "" {
		delete(p, ParamSearch)
	}
	return p
}

// ordering builds the comma-joined ordering value. A descending UI sort on a
// reversed column becomes an ascending API sort and vice versa.
func (t Translator) ordering(sortBy []domain.SortColumn, columns ColumnMap) string {
	parts := make([]string, 0, len(sortBy))
	for _, s := range sortBy {
		col, ok := columns[s.ID]
		if !ok || col.Field == "" {
			t.logger().Warn().Str("sort_id", s.ID).Msg("dropping unknown sort column")
			continue
		}
		desc := s.Desc != col.IsReversed
		if desc {
			parts = append(parts, "-"+col.Field)
		} else {
			parts = append(parts, col.Field)
		}
	}
	return strings.Join(parts, ",")
}

func (t Translator) logger() *zerolog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return &log.Logger
}
