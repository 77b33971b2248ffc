package application

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/example/conference-central/internal/persistence"
)

func TestCompileConferenceQueryRejectsUnknownTokens(t *testing.T) {
	t.Parallel()

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		_, err := CompileConferenceQuery([]Filter{{Field: "COUNTRY", Operator: "EQ", Value: "UK"}})
		if !errors.Is(err, ErrInvalidFilter) {
			t.Fatalf("expected ErrInvalidFilter, got %v", err)
		}
	})

	t.Run("unknown operator", func(t *testing.T) {
		t.Parallel()
		_, err := CompileConferenceQuery([]Filter{{Field: "CITY", Operator: "LIKE", Value: "London"}})
		if !errors.Is(err, ErrInvalidFilter) {
			t.Fatalf("expected ErrInvalidFilter, got %v", err)
		}
	})

	t.Run("non numeric value for numeric field", func(t *testing.T) {
		t.Parallel()
		_, err := CompileConferenceQuery([]Filter{{Field: "MONTH", Operator: "EQ", Value: "June"}})
		if !errors.Is(err, ErrInvalidFilter) {
			t.Fatalf("expected ErrInvalidFilter, got %v", err)
		}
	})
}

func TestCompileConferenceQueryInequalityRules(t *testing.T) {
	t.Parallel()

	t.Run("two distinct inequality fields fail", func(t *testing.T) {
		t.Parallel()
		_, err := CompileConferenceQuery([]Filter{
			{Field: "MONTH", Operator: "GT", Value: "3"},
			{Field: "MAX_ATTENDEES", Operator: "LT", Value: "500"},
		})
		if !errors.Is(err, ErrMultipleInequalityFilters) {
			t.Fatalf("expected ErrMultipleInequalityFilters, got %v", err)
		}
	})

	t.Run("repeated inequalities on one field are allowed", func(t *testing.T) {
		t.Parallel()
		plan, err := CompileConferenceQuery([]Filter{
			{Field: "MONTH", Operator: "GTEQ", Value: "3"},
			{Field: "MONTH", Operator: "LTEQ", Value: "8"},
			{Field: "CITY", Operator: "EQ", Value: "London"},
		})
		if err != nil {
			t.Fatalf("compile failed: %v", err)
		}
		if len(plan.Conditions) != 3 {
			t.Fatalf("expected 3 conditions, got %d", len(plan.Conditions))
		}
	})
}

func TestCompileConferenceQuerySortDerivation(t *testing.T) {
	t.Parallel()

	t.Run("no inequality sorts by name", func(t *testing.T) {
		t.Parallel()
		plan, err := CompileConferenceQuery([]Filter{{Field: "CITY", Operator: "EQ", Value: "London"}})
		if err != nil {
			t.Fatalf("compile failed: %v", err)
		}
		want := []persistence.FieldName{persistence.FieldConferenceName}
		if len(plan.OrderBy) != 1 || plan.OrderBy[0] != want[0] {
			t.Fatalf("expected order by name, got %v", plan.OrderBy)
		}
	})

	t.Run("inequality field leads the sort order", func(t *testing.T) {
		t.Parallel()
		plan, err := CompileConferenceQuery([]Filter{
			{Field: "CITY", Operator: "EQ", Value: "London"},
			{Field: "MAX_ATTENDEES", Operator: "GT", Value: "1000"},
		})
		if err != nil {
			t.Fatalf("compile failed: %v", err)
		}
		if len(plan.OrderBy) != 2 ||
			plan.OrderBy[0] != persistence.FieldMaxAttendees ||
			plan.OrderBy[1] != persistence.FieldConferenceName {
			t.Fatalf("expected [maxAttendees name], got %v", plan.OrderBy)
		}
	})

	t.Run("empty filter list sorts by name", func(t *testing.T) {
		t.Parallel()
		plan, err := CompileConferenceQuery(nil)
		if err != nil {
			t.Fatalf("compile failed: %v", err)
		}
		if len(plan.OrderBy) != 1 || plan.OrderBy[0] != persistence.FieldConferenceName {
			t.Fatalf("expected order by name, got %v", plan.OrderBy)
		}
	})
}

// Property: compilation fails with too-many-inequality-fields exactly when the
// filters apply non-equality operators to two or more distinct fields, and a
// successful plan always leads with the inequality field and ends on name.
func TestCompileConferenceQueryProperties(t *testing.T) {
	t.Parallel()

	fieldGen := rapid.SampledFrom([]string{"CITY", "TOPIC", "MONTH", "MAX_ATTENDEES"})
	operatorGen := rapid.SampledFrom([]string{"EQ", "GT", "GTEQ", "LT", "LTEQ", "NE"})

	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(0, 6).Draw(t, "count")
		filters := make([]Filter, 0, count)
		inequalityFields := make(map[string]bool)
		for i := 0; i < count; i++ {
			field := fieldGen.Draw(t, "field")
			operator := operatorGen.Draw(t, "operator")
			value := "42"
			if field == "CITY" || field == "TOPIC" {
				value = rapid.StringMatching(`[A-Za-z ]{1,12}`).Draw(t, "value")
			}
			if operator != "EQ" {
				inequalityFields[field] = true
			}
			filters = append(filters, Filter{Field: field, Operator: operator, Value: value})
		}

		plan, err := CompileConferenceQuery(filters)

		if len(inequalityFields) >= 2 {
			if !errors.Is(err, ErrMultipleInequalityFilters) {
				t.Fatalf("expected ErrMultipleInequalityFilters for %d inequality fields, got %v",
					len(inequalityFields), err)
			}
			return
		}

		if err != nil {
			t.Fatalf("compile failed: %v", err)
		}
		if len(plan.Conditions) != len(filters) {
			t.Fatalf("expected %d conditions, got %d", len(filters), len(plan.Conditions))
		}
		last := plan.OrderBy[len(plan.OrderBy)-1]
		if last != persistence.FieldConferenceName {
			t.Fatalf("expected name as final sort key, got %v", plan.OrderBy)
		}
		if len(inequalityFields) == 1 {
			for field := range inequalityFields {
				if string(plan.OrderBy[0]) != string(filterFields[field]) {
					t.Fatalf("expected %s as primary sort key, got %v", field, plan.OrderBy)
				}
			}
		}
	})
}
