package main

import "time"

// Profile holds a founder's attributes plus their co-founder preferences.
// Name is joined in from the owning user row, it is not a profile column.
type Profile struct {
	ID                         int       `json:"id"`
	UserID                     int       `json:"user_id"`
	Name                       string    `json:"name,omitempty"`
	FounderStatus              string    `json:"founder_status"`
	Skills                     []string  `json:"skills"`
	Industry                   string    `json:"industry"`
	CurrentOccupation          string    `json:"current_occupation"`
	YearsExperience            int       `json:"years_experience"`
	CommitmentLevel            string    `json:"commitment_level"`
	FinancialContribution      string    `json:"financial_contribution"`
	PersonalityTraits          []string  `json:"personality_traits"`
	Location                   string    `json:"location"`
	PreferredSkills            []string  `json:"preferred_skills"`
	PreferredFounderType       string    `json:"preferred_founder_type"`
	PreferredIndustry          string    `json:"preferred_industry"`
	PreferredCommitmentLevel   string    `json:"preferred_commitment_level"`
	PreferredFinancial         string    `json:"preferred_financial"`
	PreferredPersonalityTraits []string  `json:"preferred_personality_traits"`
	PreferredLocation          string    `json:"preferred_location"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

// Match statuses. Accepting a match connects it immediately; there is no
// two-sided handshake yet (first accept wins).
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusConnected = "connected"
)

func isValidMatchStatus(s string) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusConnected:
		return true
	}
	return false
}

// MatchScore is the result of scoring two profiles against each other.
// Every field is in [0,1].
type MatchScore struct {
	Industry      float64 `json:"industry"`
	Skills        float64 `json:"skills"`
	FounderStatus float64 `json:"founder_status"`
	Commitment    float64 `json:"commitment"`
	Financial     float64 `json:"financial"`
	Personality   float64 `json:"personality"`
	Location      float64 `json:"location"`
	Overall       float64 `json:"overall"`
}

// Match is a persisted, scored relationship between two profiles.
// The founder_a/founder_b ordering is an artifact of which side ran the
// generation first; the pair is semantically unordered.
type Match struct {
	ID        int
	FounderA  int // profile id
	FounderB  int // profile id
	Score     MatchScore
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// founderSummary is the slice of a matched founder's profile that is safe to
// show the other party.
type founderSummary struct {
	ProfileID       int      `json:"-"`
	UserID          int      `json:"-"`
	Name            string   `json:"name"`
	FounderStatus   string   `json:"founder_status"`
	Skills          []string `json:"skills"`
	Industry        string   `json:"industry"`
	YearsExperience int      `json:"years_experience"`
	Location        string   `json:"location"`
}

// matchDetail is a match row joined with both founders' summaries.
type matchDetail struct {
	Match
	A founderSummary
	B founderSummary
}

// MatchResponse is the caller-relative view of a match.
type MatchResponse struct {
	ID               int            `json:"id"`
	FounderID        int            `json:"founder_id"`
	MatchedFounderID int            `json:"matched_founder_id"`
	Scores           MatchScore     `json:"scores"`
	Status           string         `json:"status"`
	MatchedFounder   founderSummary `json:"matched_founder_details"`
	CreatedAt        time.Time      `json:"created_at"`
}

// newMatchResponse orients a match detail relative to the requesting user.
func newMatchResponse(d matchDetail, currentUserID int) MatchResponse {
	mine, theirs := d.A, d.B
	if d.B.UserID == currentUserID {
		mine, theirs = d.B, d.A
	}
	return MatchResponse{
		ID:               d.ID,
		FounderID:        mine.ProfileID,
		MatchedFounderID: theirs.ProfileID,
		Scores:           d.Score,
		Status:           d.Status,
		MatchedFounder:   theirs,
		CreatedAt:        d.CreatedAt,
	}
}
