package main

import (
	"net/http"
	"strings"
)

// Closed vocabularies for profile fields. Profile validation happens against
// these lists; the scoring engine itself never checks membership, an unknown
// value just fails to match anything.

var industries = []string{
	"Tech",
	"Healthcare",
	"Finance",
	"Education",
	"E-commerce",
	"Real Estate",
	"Food & Beverage",
	"Entertainment",
	"Energy",
	"Transportation",
	"Manufacturing",
	"Agriculture",
	"Other",
}

var founderStatuses = []string{
	"Technical",
	"Business",
	"Hybrid",
}

var commitmentLevels = []string{
	"Full-time",
	"Part-time",
	"Nights and weekends",
	"Exploring options",
}

var financialContributions = []string{
	"Will self-fund/bootstrap",
	"Can invest <$25K personally",
	"Can invest $25K-$100K personally",
	"Can invest >$100K personally",
	"No personal investment, seeking external funding",
	"Brings existing investor relationships",
	"Prefers not to discuss until later stage",
	"Seeking co-founder with investment capability",
	"Open to sweat equity arrangements",
}

var personalityTraits = []string{
	"Visionary",
	"Detail-oriented",
	"Risk-taker",
	"Analytical",
	"Creative",
	"Methodical",
	"Growth-oriented",
	"Process-driven",
	"People-focused",
	"Execution-focused",
	"Strategic thinker",
	"Tactical executor",
	"Persistent",
	"Adaptable",
	"Collaborative",
	"Independent",
}

var skillCategories = []string{
	"Engineering",
	"Product Management",
	"Design",
	"Marketing",
	"Sales",
	"Finance",
	"Operations",
	"Legal",
	"Data Science",
	"Customer Success",
}

// locationRemoteOnly is compatible with every other location.
const locationRemoteOnly = "Remote only"

var locations = []string{
	locationRemoteOnly,
	"US - West Coast",
	"US - East Coast",
	"US - Midwest",
	"US - South",
	"Europe",
	"Asia",
	"Latin America",
	"Africa",
	"Australia/Oceania",
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// dedupeStrings keeps first occurrences, preserving order. Profiles are
// de-duplicated before saving so the overlap denominators stay honest.
func dedupeStrings(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// GET /constants/{industries|founder-statuses|commitment-levels|
// personality-traits|skills|financial-contributions|locations}
func constantsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 2 || parts[0] != "constants" {
			http.NotFound(w, r)
			return
		}
		switch parts[1] {
		case "industries":
			writeJSON(w, http.StatusOK, industries)
		case "founder-statuses":
			writeJSON(w, http.StatusOK, founderStatuses)
		case "commitment-levels":
			writeJSON(w, http.StatusOK, commitmentLevels)
		case "personality-traits":
			writeJSON(w, http.StatusOK, personalityTraits)
		case "skills":
			writeJSON(w, http.StatusOK, skillCategories)
		case "financial-contributions":
			writeJSON(w, http.StatusOK, financialContributions)
		case "locations":
			writeJSON(w, http.StatusOK, locations)
		default:
			http.NotFound(w, r)
		}
	}
}
