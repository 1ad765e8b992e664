package eligibility

// MemberCriteria is the fixed member query of the eligibility contract:
//
//	exit date is empty
//	AND onboarding status equals OnboardingDone
//	AND categories contain none of ExcludedCategories
//	AND categories contain at least one of IncludedCategories
//
// Store adapters render this shape into their own query language and must
// not add or drop clauses.
type MemberCriteria struct {
	ExitDateProperty   string
	OnboardingProperty string
	OnboardingDone     string
	CategoryProperty   string
	ExcludedCategories []string
	IncludedCategories []string
}

// DefaultMemberCriteria returns the criteria of the association's member
// database.
func DefaultMemberCriteria() MemberCriteria {
	return MemberCriteria{
		ExitDateProperty:   "Austrittsdatum",
		OnboardingProperty: "Onboarding: Status",
		OnboardingDone:     "Erledigt",
		CategoryProperty:   "Mitgliedsstatus",
		ExcludedCategories: []string{"passives Mitglied", "Fördermitglied"},
		IncludedCategories: []string{
			"Vereinsmitglied",
			"Vorläufiges Mitglied",
			"Vorläufiges Mitglied (+1 Jahr)",
			"Jugendliches Mitglied",
		},
	}
}

// Matches reports whether a member with the given attributes satisfies the
// criteria. Adapters that cannot push the query down to the store use it.
func (c MemberCriteria) Matches(exitDateSet bool, onboarding string, categories []string) bool {
	if exitDateSet || onboarding != c.OnboardingDone {
		return false
	}
	has := make(map[string]bool, len(categories))
	for _, cat := range categories {
		has[cat] = true
	}
	for _, cat := range c.ExcludedCategories {
		if has[cat] {
			return false
		}
	}
	for _, cat := range c.IncludedCategories {
		if has[cat] {
			return true
		}
	}
	return false
}
