package main

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Initialize JWT secret for match tests
func init() {
	jwtSecret = []byte("test-secret-key-for-testing")
}

// technicalInput is a Technical founder looking for a Business co-founder.
func technicalInput() map[string]interface{} {
	in := baseProfileInput()
	in["financial_contribution"] = "Can invest <$25K personally"
	in["preferred_financial"] = "No personal investment, seeking external funding"
	return in
}

// businessInput mirrors technicalInput from the other side; together they
// score 0.825 overall.
func businessInput() map[string]interface{} {
	in := baseProfileInput()
	in["founder_status"] = "Business"
	in["skills"] = []string{"Marketing"}
	in["preferred_skills"] = []string{"Engineering"}
	in["preferred_founder_type"] = "Technical"
	in["personality_traits"] = []string{"Detail-oriented"}
	in["preferred_personality_traits"] = []string{"Visionary"}
	in["financial_contribution"] = "No personal investment, seeking external funding"
	in["preferred_financial"] = "Can invest <$25K personally"
	return in
}

// lonerInput is incompatible with both of the above (overall 0.05, from the
// location sub-score against a remote founder).
func lonerInput() map[string]interface{} {
	in := baseProfileInput()
	in["founder_status"] = "Hybrid"
	in["preferred_founder_type"] = "Hybrid"
	in["skills"] = []string{"Legal"}
	in["preferred_skills"] = []string{"Legal"}
	in["industry"] = "Agriculture"
	in["preferred_industry"] = "Agriculture"
	in["commitment_level"] = "Exploring options"
	in["preferred_commitment_level"] = "Exploring options"
	in["financial_contribution"] = "Prefers not to discuss until later stage"
	in["preferred_financial"] = "Prefers not to discuss until later stage"
	in["personality_traits"] = []string{"Persistent"}
	in["preferred_personality_traits"] = []string{"Persistent"}
	in["location"] = "Africa"
	in["preferred_location"] = "Africa"
	return in
}

func generateFor(t *testing.T, user TestUser) []MatchResponse {
	t.Helper()

	req := authedRequest(t, http.MethodPost, "/matches/generate", nil, user.Token)
	w := httptest.NewRecorder()
	generateMatchesHandler(db).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("generate failed for %s: status %d body %s", user.Email, w.Code, w.Body.String())
	}
	var results []MatchResponse
	if err := json.NewDecoder(w.Body).Decode(&results); err != nil {
		t.Fatalf("failed to decode generate response: %v", err)
	}
	return results
}

func TestGenerateMatches(t *testing.T) {
	emails := []string{"match_gen_a@example.com", "match_gen_b@example.com", "match_gen_c@example.com"}
	defer cleanupTestData(emails...)

	alice := createTestUser(t, emails[0], "password123")
	bob := createTestUser(t, emails[1], "password123")
	carol := createTestUser(t, emails[2], "password123")

	aliceProfile := createTestProfile(t, alice, technicalInput())
	bobProfile := createTestProfile(t, bob, businessInput())
	createTestProfile(t, carol, lonerInput())

	results := generateFor(t, alice)

	if len(results) != 1 {
		t.Fatalf("expected exactly 1 match, got %d", len(results))
	}
	m := results[0]
	if m.Status != StatusPending {
		t.Errorf("expected status %q, got %q", StatusPending, m.Status)
	}
	if m.FounderID != aliceProfile.ID {
		t.Errorf("expected founder_id %d, got %d", aliceProfile.ID, m.FounderID)
	}
	if m.MatchedFounderID != bobProfile.ID {
		t.Errorf("expected matched_founder_id %d, got %d", bobProfile.ID, m.MatchedFounderID)
	}
	if math.Abs(m.Scores.Overall-0.825) > 1e-9 {
		t.Errorf("expected overall score 0.825, got %v", m.Scores.Overall)
	}
	if m.MatchedFounder.FounderStatus != "Business" {
		t.Errorf("expected matched founder details for the business founder, got %+v", m.MatchedFounder)
	}

	// Exactly one row persisted for the pair, regardless of ordering.
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM matches
		WHERE (founder_a = $1 AND founder_b = $2) OR (founder_a = $2 AND founder_b = $1)
	`, aliceProfile.ID, bobProfile.ID).Scan(&count)
	if err != nil {
		t.Fatalf("failed to count matches: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 persisted match, got %d", count)
	}
}

func TestGenerateMatchesIdempotent(t *testing.T) {
	emails := []string{"match_idem_a@example.com", "match_idem_b@example.com"}
	defer cleanupTestData(emails...)

	alice := createTestUser(t, emails[0], "password123")
	bob := createTestUser(t, emails[1], "password123")
	createTestProfile(t, alice, technicalInput())
	createTestProfile(t, bob, businessInput())

	first := generateFor(t, alice)
	if len(first) != 1 {
		t.Fatalf("expected 1 match on first run, got %d", len(first))
	}

	// Running generation from the other side finds the same row: the pair is
	// unordered.
	second := generateFor(t, bob)
	if len(second) != 1 {
		t.Fatalf("expected 1 match on second run, got %d", len(second))
	}
	if first[0].ID != second[0].ID {
		t.Errorf("expected the same match row, got ids %d and %d", first[0].ID, second[0].ID)
	}
	if second[0].Scores.Overall != first[0].Scores.Overall {
		t.Errorf("rescore changed the overall score: %v vs %v", first[0].Scores.Overall, second[0].Scores.Overall)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM matches WHERE id = $1", first[0].ID).Scan(&count); err != nil {
		t.Fatalf("failed to count matches: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row for the pair, got %d", count)
	}
}

func TestGenerateMatchesPreservesStatus(t *testing.T) {
	emails := []string{"match_keep_a@example.com", "match_keep_b@example.com"}
	defer cleanupTestData(emails...)

	alice := createTestUser(t, emails[0], "password123")
	bob := createTestUser(t, emails[1], "password123")
	createTestProfile(t, alice, technicalInput())
	createTestProfile(t, bob, businessInput())

	matchID := generateFor(t, alice)[0].ID
	updateStatus(t, alice, matchID, StatusRejected, http.StatusOK)

	results := generateFor(t, bob)
	if len(results) != 1 {
		t.Fatalf("expected 1 match after regeneration, got %d", len(results))
	}
	if results[0].Status != StatusRejected {
		t.Errorf("expected regeneration to keep status %q, got %q", StatusRejected, results[0].Status)
	}
}

func TestGenerateMatchesRequiresProfile(t *testing.T) {
	email := "match_noprofile@example.com"
	defer cleanupTestData(email)

	user := createTestUser(t, email, "password123")

	req := authedRequest(t, http.MethodPost, "/matches/generate", nil, user.Token)
	w := httptest.NewRecorder()
	generateMatchesHandler(db).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a profile, got %d", w.Code)
	}
}

func TestGenerateMatchesNoCandidates(t *testing.T) {
	email := "match_alone@example.com"
	defer cleanupTestData(email)

	// Nobody else in the system.
	db.Exec("DELETE FROM matches")
	db.Exec("DELETE FROM profiles")

	user := createTestUser(t, email, "password123")
	createTestProfile(t, user, technicalInput())

	results := generateFor(t, user)
	if len(results) != 0 {
		t.Errorf("expected no matches with no candidates, got %d", len(results))
	}
}

func TestGetMatchesOrdering(t *testing.T) {
	emails := []string{"match_ord_a@example.com", "match_ord_b@example.com", "match_ord_c@example.com"}
	defer cleanupTestData(emails...)

	alice := createTestUser(t, emails[0], "password123")
	bob := createTestUser(t, emails[1], "password123")
	dave := createTestUser(t, emails[2], "password123")

	createTestProfile(t, alice, technicalInput())
	bobProfile := createTestProfile(t, bob, businessInput())

	// Like bob, but with an unrelated personality trait: scores 0.80 against
	// alice instead of 0.825.
	weaker := businessInput()
	weaker["personality_traits"] = []string{"Strategic thinker"}
	daveProfile := createTestProfile(t, dave, weaker)

	generateFor(t, alice)

	req := authedRequest(t, http.MethodGet, "/matches", nil, alice.Token)
	w := httptest.NewRecorder()
	matchesHandler(db).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("listing matches failed: status %d body %s", w.Code, w.Body.String())
	}
	var results []MatchResponse
	json.NewDecoder(w.Body).Decode(&results)

	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}
	if results[0].MatchedFounderID != bobProfile.ID {
		t.Errorf("expected the stronger match first, got matched_founder_id %d", results[0].MatchedFounderID)
	}
	if results[1].MatchedFounderID != daveProfile.ID {
		t.Errorf("expected the weaker match second, got matched_founder_id %d", results[1].MatchedFounderID)
	}
	if results[0].Scores.Overall < results[1].Scores.Overall {
		t.Errorf("matches not sorted by overall score: %v before %v", results[0].Scores.Overall, results[1].Scores.Overall)
	}
}

func updateStatus(t *testing.T, user TestUser, matchID int, status string, wantCode int) *httptest.ResponseRecorder {
	t.Helper()

	body := map[string]string{"status": status}
	req := authedRequest(t, http.MethodPatch, fmt.Sprintf("/matches/%d/status", matchID), body, user.Token)
	w := httptest.NewRecorder()
	matchesActionsRouter(db).ServeHTTP(w, req)

	if w.Code != wantCode {
		t.Fatalf("status update to %q: expected %d, got %d body %s", status, wantCode, w.Code, w.Body.String())
	}
	return w
}

func TestUpdateMatchStatus(t *testing.T) {
	emails := []string{"match_st_a@example.com", "match_st_b@example.com", "match_st_c@example.com"}
	defer cleanupTestData(emails...)

	alice := createTestUser(t, emails[0], "password123")
	bob := createTestUser(t, emails[1], "password123")
	carol := createTestUser(t, emails[2], "password123")
	createTestProfile(t, alice, technicalInput())
	createTestProfile(t, bob, businessInput())

	matchID := generateFor(t, alice)[0].ID

	t.Run("invalid status rejected", func(t *testing.T) {
		updateStatus(t, alice, matchID, "bogus", http.StatusBadRequest)
	})

	t.Run("outsider forbidden", func(t *testing.T) {
		updateStatus(t, carol, matchID, StatusRejected, http.StatusForbidden)
	})

	t.Run("reject", func(t *testing.T) {
		w := updateStatus(t, bob, matchID, StatusRejected, http.StatusOK)
		var resp MatchResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Status != StatusRejected {
			t.Errorf("expected status %q, got %q", StatusRejected, resp.Status)
		}
	})

	t.Run("accept connects immediately", func(t *testing.T) {
		w := updateStatus(t, alice, matchID, StatusAccepted, http.StatusOK)
		var resp MatchResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Status != StatusConnected {
			t.Errorf("expected accepting to persist %q, got %q", StatusConnected, resp.Status)
		}

		var stored string
		if err := db.QueryRow("SELECT status FROM matches WHERE id = $1", matchID).Scan(&stored); err != nil {
			t.Fatalf("failed to read match status: %v", err)
		}
		if stored != StatusConnected {
			t.Errorf("expected stored status %q, got %q", StatusConnected, stored)
		}
	})

	t.Run("missing match", func(t *testing.T) {
		updateStatus(t, alice, 999999999, StatusRejected, http.StatusNotFound)
	})
}

func TestGetMatchAccessControl(t *testing.T) {
	emails := []string{"match_acl_a@example.com", "match_acl_b@example.com", "match_acl_c@example.com"}
	defer cleanupTestData(emails...)

	alice := createTestUser(t, emails[0], "password123")
	bob := createTestUser(t, emails[1], "password123")
	carol := createTestUser(t, emails[2], "password123")
	createTestProfile(t, alice, technicalInput())
	createTestProfile(t, bob, businessInput())

	matchID := generateFor(t, alice)[0].ID

	fetch := func(user TestUser) *httptest.ResponseRecorder {
		req := authedRequest(t, http.MethodGet, fmt.Sprintf("/matches/%d", matchID), nil, user.Token)
		w := httptest.NewRecorder()
		matchesActionsRouter(db).ServeHTTP(w, req)
		return w
	}

	if w := fetch(alice); w.Code != http.StatusOK {
		t.Errorf("party A should see the match, got %d", w.Code)
	}
	if w := fetch(bob); w.Code != http.StatusOK {
		t.Errorf("party B should see the match, got %d", w.Code)
	}
	if w := fetch(carol); w.Code != http.StatusForbidden {
		t.Errorf("outsider should get 403, got %d", w.Code)
	}

	// Both parties see the same match oriented to themselves.
	var forAlice, forBob MatchResponse
	json.NewDecoder(fetch(alice).Body).Decode(&forAlice)
	json.NewDecoder(fetch(bob).Body).Decode(&forBob)
	if forAlice.MatchedFounderID != forBob.FounderID || forBob.MatchedFounderID != forAlice.FounderID {
		t.Errorf("orientation mismatch: alice %+v bob %+v", forAlice, forBob)
	}
}
