package main

// Compatibility scoring between two founder profiles. Everything in this file
// is pure: no I/O, no state, safe to call concurrently.

// Criteria weights for the overall score. They sum to 0.85, so a perfect
// pair tops out at 0.85 rather than 1.0.
const (
	weightIndustry      = 0.20
	weightSkills        = 0.20
	weightFounderStatus = 0.15
	weightCommitment    = 0.10
	weightFinancial     = 0.10
	weightPersonality   = 0.05
	weightLocation      = 0.05
)

// matchThreshold is the minimum overall score required to persist a match.
const matchThreshold = 0.60

// complementaryContributions maps each financial-contribution category to the
// categories it complements. Hand-authored; not derivable from a rule.
var complementaryContributions = map[string][]string{
	"Will self-fund/bootstrap":    {"Will self-fund/bootstrap"},
	"Can invest <$25K personally": {"No personal investment, seeking external funding"},
	"Can invest $25K-$100K personally": {"No personal investment, seeking external funding"},
	"Can invest >$100K personally":     {"No personal investment, seeking external funding"},
	"No personal investment, seeking external funding": {
		"Can invest <$25K personally",
		"Can invest $25K-$100K personally",
		"Can invest >$100K personally",
	},
	"Brings existing investor relationships":    {"No personal investment, seeking external funding"},
	"Prefers not to discuss until later stage":  {"Prefers not to discuss until later stage"},
	"Seeking co-founder with investment capability": {
		"Can invest <$25K personally",
		"Can invest $25K-$100K personally",
		"Can invest >$100K personally",
	},
	"Open to sweat equity arrangements": {"Open to sweat equity arrangements"},
}

// complementaryTraits marks which personality traits pair well together.
var complementaryTraits = map[string][]string{
	"Visionary":         {"Detail-oriented", "Execution-focused"},
	"Detail-oriented":   {"Visionary", "Strategic thinker"},
	"Risk-taker":        {"Methodical", "Analytical"},
	"Analytical":        {"Creative", "Risk-taker"},
	"Creative":          {"Analytical", "Process-driven"},
	"Methodical":        {"Risk-taker", "Adaptable"},
	"Growth-oriented":   {"Process-driven", "Methodical"},
	"Process-driven":    {"Visionary", "Creative"},
	"People-focused":    {"Execution-focused", "Analytical"},
	"Execution-focused": {"Visionary", "Strategic thinker"},
	"Strategic thinker": {"Detail-oriented", "Execution-focused"},
	"Tactical executor": {"Visionary", "Strategic thinker"},
	"Persistent":        {"Adaptable"},
	"Adaptable":         {"Persistent"},
	"Collaborative":     {"Independent"},
	"Independent":       {"Collaborative"},
}

// regionBuckets groups locations for partial credit. Two distinct locations
// in the same bucket score 0.7 instead of 0.
var regionBuckets = map[string][]string{
	"US - West Coast":   {"US - West Coast"},
	"US - East Coast":   {"US - East Coast"},
	"US - Midwest":      {"US - Midwest"},
	"US - South":        {"US - South"},
	"Europe":            {"Europe"},
	"Asia":              {"Asia"},
	"Latin America":     {"Latin America"},
	"Africa":            {"Africa"},
	"Australia/Oceania": {"Australia/Oceania"},
}

// scoreProfiles computes the seven sub-scores and their weighted sum for a
// pair of profiles. Deterministic and symmetric in its inputs.
func scoreProfiles(a, b *Profile) MatchScore {
	s := MatchScore{
		Industry:      bidirectionalMatchScore(a.Industry, a.PreferredIndustry, b.Industry, b.PreferredIndustry),
		Skills:        skillsScore(a, b),
		FounderStatus: bidirectionalMatchScore(a.FounderStatus, a.PreferredFounderType, b.FounderStatus, b.PreferredFounderType),
		Commitment:    commitmentScore(a, b),
		Financial:     financialScore(a.FinancialContribution, b.FinancialContribution),
		Personality:   personalityScore(a.PersonalityTraits, b.PersonalityTraits),
		Location:      locationScore(a.Location, b.Location),
	}
	s.Overall = s.Industry*weightIndustry +
		s.Skills*weightSkills +
		s.FounderStatus*weightFounderStatus +
		s.Commitment*weightCommitment +
		s.Financial*weightFinancial +
		s.Personality*weightPersonality +
		s.Location*weightLocation
	return s
}

// bidirectionalMatchScore checks each side's value against the other side's
// preference. Yields 0, 0.5 or 1.0.
func bidirectionalMatchScore(value1, preference1, value2, preference2 string) float64 {
	score := 0.0
	if value1 == preference2 {
		score += 0.5
	}
	if value2 == preference1 {
		score += 0.5
	}
	return score
}

// arrayOverlap returns |x ∩ y| / min(|x|,|y|), or 0 if either list is empty.
// Intersection treats the lists as sets, but the denominator uses raw
// cardinality, so duplicate entries deflate the score. Profiles are
// de-duplicated on save to keep this honest.
func arrayOverlap(x, y []string) float64 {
	if len(x) == 0 || len(y) == 0 {
		return 0
	}
	ySet := make(map[string]struct{}, len(y))
	for _, item := range y {
		ySet[item] = struct{}{}
	}
	seen := make(map[string]struct{}, len(x))
	intersection := 0
	for _, item := range x {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		if _, ok := ySet[item]; ok {
			intersection++
		}
	}
	denom := len(x)
	if len(y) < denom {
		denom = len(y)
	}
	return float64(intersection) / float64(denom)
}

// skillsScore averages the two directional overlaps: what A offers against
// what B wants, and vice versa.
func skillsScore(a, b *Profile) float64 {
	aCovers := arrayOverlap(a.Skills, b.PreferredSkills)
	bCovers := arrayOverlap(b.Skills, a.PreferredSkills)
	return (aCovers + bCovers) / 2
}

func commitmentScore(a, b *Profile) float64 {
	aMet := a.PreferredCommitmentLevel == b.CommitmentLevel
	bMet := b.PreferredCommitmentLevel == a.CommitmentLevel
	switch {
	case aMet && bMet:
		return 1.0
	case aMet || bMet:
		return 0.5
	default:
		return 0.0
	}
}

func financialScore(contribA, contribB string) float64 {
	aComplementsB := containsString(complementaryContributions[contribA], contribB)
	bComplementsA := containsString(complementaryContributions[contribB], contribA)
	switch {
	case aComplementsB && bComplementsA:
		return 1.0
	case aComplementsB || bComplementsA:
		return 0.5
	default:
		return 0.0
	}
}

// personalityScore balances shared traits against complementary ones.
// The complementary term counts every ordered pair (traitA, traitB) where the
// adjacency table marks traitB as complementary to traitA, normalized by the
// smaller list and clamped so the sub-score stays in [0,1].
func personalityScore(traitsA, traitsB []string) float64 {
	overlap := arrayOverlap(traitsA, traitsB)

	complementary := 0.0
	if len(traitsA) > 0 && len(traitsB) > 0 {
		count := 0
		for _, ta := range traitsA {
			for _, tb := range traitsB {
				if containsString(complementaryTraits[ta], tb) {
					count++
				}
			}
		}
		denom := len(traitsA)
		if len(traitsB) < denom {
			denom = len(traitsB)
		}
		complementary = float64(count) / float64(denom)
		if complementary > 1 {
			complementary = 1
		}
	}

	return (overlap + complementary) / 2
}

func locationScore(locA, locB string) float64 {
	// Remote is compatible with anything.
	if locA == locationRemoteOnly || locB == locationRemoteOnly {
		return 1.0
	}
	if locA == locB {
		return 1.0
	}
	if containsString(regionBuckets[locA], locB) {
		return 0.7
	}
	return 0.0
}
