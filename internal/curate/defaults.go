package curate

// DefaultEntityCap bounds each entity category in the report.
const DefaultEntityCap = 8

// Keywords are the fixed lists matched by ExtractEntities. A Cap of zero
// or less disables truncation.
type Keywords struct {
	Players     []string
	Tournaments []string
	Tags        []string
	Cap         int
}

// FilterRules are the fixed lists used by the filter predicates.
type FilterRules struct {
	EnglishHints   []string
	AllowedDomains []string
	LowTierTerms   []string
}

// DefaultKeywords returns a fresh copy of the built-in entity keywords.
func DefaultKeywords() Keywords {
	return Keywords{
		Players: []string{
			"Alcaraz", "Sinner", "Djokovic", "Medvedev", "Zverev", "Nadal",
			"Swiatek", "Sabalenka", "Gauff", "Rybakina",
		},
		Tournaments: []string{
			"Australian Open", "Wimbledon", "US Open", "Roland Garros",
			"Masters 1000", "ATP 500", "WTA 500", "WTA 1000",
		},
		Tags: []string{
			"final", "injury", "upset", "withdraw", "retire", "ranking",
			"comeback", "record", "coach",
		},
		Cap: DefaultEntityCap,
	}
}

// DefaultFilterRules returns a fresh copy of the built-in filter lists.
func DefaultFilterRules() FilterRules {
	return FilterRules{
		// Padded with spaces so "the" does not match inside "there".
		EnglishHints: []string{" the ", " and ", " of ", " to ", " in ", " for "},
		AllowedDomains: []string{
			"bbc.", "theguardian.", "nytimes.", "espn.", "reuters.", "apnews.",
			"tennis.com", "atptour.com", "wtatennis.com", "theathletic.",
		},
		LowTierTerms: []string{"atp 250", "wta 250", "challenger", "itf", "wta 125", "125"},
	}
}
