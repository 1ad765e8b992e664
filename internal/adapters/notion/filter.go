package notion

import "github.com/example/putzplan/internal/core/eligibility"

// Filter is a node of a data source query filter.
type Filter map[string]any

// CriteriaFilter renders the member criteria as a query filter: no exit date,
// onboarding done, none of the excluded categories and at least one of the
// included ones.
func CriteriaFilter(c eligibility.MemberCriteria) Filter {
	var and []Filter
	if c.ExitDateProperty != "" {
		and = append(and, Filter{
			"property": c.ExitDateProperty,
			"date":     map[string]any{"is_empty": true},
		})
	}
	if c.OnboardingProperty != "" {
		and = append(and, Filter{
			"property": c.OnboardingProperty,
			"select":   map[string]any{"equals": c.OnboardingDone},
		})
	}
	for _, cat := range c.ExcludedCategories {
		and = append(and, Filter{
			"property":     c.CategoryProperty,
			"multi_select": map[string]any{"does_not_contain": cat},
		})
	}
	if len(c.IncludedCategories) > 0 {
		var or []Filter
		for _, cat := range c.IncludedCategories {
			or = append(or, Filter{
				"property":     c.CategoryProperty,
				"multi_select": map[string]any{"contains": cat},
			})
		}
		and = append(and, Filter{"or": or})
	}
	return Filter{"and": and}
}

// PeriodFilter selects the records whose number property equals period.
func PeriodFilter(property string, period int) Filter {
	return Filter{
		"property": property,
		"number":   map[string]any{"equals": period},
	}
}
