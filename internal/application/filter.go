package application

import (
	"fmt"
	"strconv"

	"github.com/example/conference-central/internal/persistence"
)

// Filter is one caller supplied (field, operator, value) triple of a
// conference query.
type Filter struct {
	Field    string
	Operator string
	Value    string
}

var filterFields = map[string]persistence.FieldName{
	"CITY":          persistence.FieldCity,
	"TOPIC":         persistence.FieldTopics,
	"MONTH":         persistence.FieldMonth,
	"MAX_ATTENDEES": persistence.FieldMaxAttendees,
}

var filterOperators = map[string]string{
	"EQ":   "=",
	"GT":   ">",
	"GTEQ": ">=",
	"LT":   "<",
	"LTEQ": "<=",
	"NE":   "!=",
}

var numericFields = map[persistence.FieldName]bool{
	persistence.FieldMonth:        true,
	persistence.FieldMaxAttendees: true,
}

// CompileConferenceQuery turns caller supplied filters into a validated query
// plan.
//
// The underlying store can only serve a single inequality field per query, so
// filters applying non-equality operators to more than one distinct field are
// rejected. When an inequality field is present it must also be the primary
// sort key; conference name is always the final tie breaker. Both rules are
// part of the query contract, not store trivia: a plan violating them would be
// rejected or silently misordered by the store's indexes.
func CompileConferenceQuery(filters []Filter) (persistence.ConferenceQuery, error) {
	var plan persistence.ConferenceQuery
	var inequalityField persistence.FieldName

	for _, filter := range filters {
		field, ok := filterFields[filter.Field]
		if !ok {
			return persistence.ConferenceQuery{}, fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, filter.Field)
		}
		operator, ok := filterOperators[filter.Operator]
		if !ok {
			return persistence.ConferenceQuery{}, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, filter.Operator)
		}

		var value any = filter.Value
		if numericFields[field] {
			parsed, err := strconv.Atoi(filter.Value)
			if err != nil {
				return persistence.ConferenceQuery{}, fmt.Errorf("%w: field %q requires an integer value, got %q",
					ErrInvalidFilter, filter.Field, filter.Value)
			}
			value = parsed
		}

		if operator != "=" {
			if inequalityField != "" && inequalityField != field {
				return persistence.ConferenceQuery{}, fmt.Errorf("%w: %q and %q",
					ErrMultipleInequalityFilters, inequalityField, field)
			}
			inequalityField = field
		}

		plan.Conditions = append(plan.Conditions, persistence.QueryCondition{
			Field:    field,
			Operator: operator,
			Value:    value,
		})
	}

	if inequalityField != "" {
		plan.OrderBy = []persistence.FieldName{inequalityField, persistence.FieldConferenceName}
	} else {
		plan.OrderBy = []persistence.FieldName{persistence.FieldConferenceName}
	}

	return plan, nil
}
