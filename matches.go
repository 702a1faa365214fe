package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

const matchDetailSelect = `
	SELECT m.id, m.founder_a, m.founder_b,
	       m.industry_score, m.skills_score, m.founder_status_score, m.commitment_score,
	       m.financial_score, m.personality_score, m.location_score, m.overall_score,
	       m.status, m.created_at, m.updated_at,
	       pa.id, pa.user_id, ua.first_name || ' ' || ua.last_name,
	       pa.founder_status, pa.skills, pa.industry, pa.years_experience, pa.location,
	       pb.id, pb.user_id, ub.first_name || ' ' || ub.last_name,
	       pb.founder_status, pb.skills, pb.industry, pb.years_experience, pb.location
	FROM matches m
	JOIN profiles pa ON pa.id = m.founder_a
	JOIN users ua ON ua.id = pa.user_id
	JOIN profiles pb ON pb.id = m.founder_b
	JOIN users ub ON ub.id = pb.user_id
`

func scanMatchDetail(row rowScanner) (*matchDetail, error) {
	var d matchDetail
	err := row.Scan(
		&d.ID, &d.FounderA, &d.FounderB,
		&d.Score.Industry, &d.Score.Skills, &d.Score.FounderStatus, &d.Score.Commitment,
		&d.Score.Financial, &d.Score.Personality, &d.Score.Location, &d.Score.Overall,
		&d.Status, &d.CreatedAt, &d.UpdatedAt,
		&d.A.ProfileID, &d.A.UserID, &d.A.Name,
		&d.A.FounderStatus, pq.Array(&d.A.Skills), &d.A.Industry, &d.A.YearsExperience, &d.A.Location,
		&d.B.ProfileID, &d.B.UserID, &d.B.Name,
		&d.B.FounderStatus, pq.Array(&d.B.Skills), &d.B.Industry, &d.B.YearsExperience, &d.B.Location,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func summaryFromProfile(p *Profile) founderSummary {
	return founderSummary{
		ProfileID:       p.ID,
		UserID:          p.UserID,
		Name:            p.Name,
		FounderStatus:   p.FounderStatus,
		Skills:          p.Skills,
		Industry:        p.Industry,
		YearsExperience: p.YearsExperience,
		Location:        p.Location,
	}
}

// generateMatches scores the caller against every other profile and upserts a
// match row for each candidate at or above the threshold. The whole batch is
// one transaction: a failure mid-loop leaves no partial matches behind.
// Results come back in candidate discovery order, not by score. The second
// return value lists matches created by this run, for event notification.
func generateMatches(ctx context.Context, db *sql.DB, userID int) ([]MatchResponse, []matchDetail, error) {
	userProfile, err := findProfileByUser(db, userID)
	if err != nil {
		if errKind(err) == KindNotFound {
			return nil, nil, preconditionErr("profile_required")
		}
		return nil, nil, err
	}

	candidates, err := findAllProfilesExcluding(db, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(candidates) == 0 {
		return []MatchResponse{}, nil, nil
	}

	results := []MatchResponse{}
	var created []matchDetail

	err = withTx(ctx, db, func(tx *sql.Tx) error {
		for i := range candidates {
			cand := &candidates[i]
			score := scoreProfiles(userProfile, cand)
			if score.Overall < matchThreshold {
				continue
			}

			existing, err := loadMatchPairForUpdate(tx, userProfile.ID, cand.ID)
			if err != nil {
				return operationalErr("locking match pair", err)
			}

			var m Match
			m.Score = score
			if existing != nil {
				// Refresh scores in place; status is untouched.
				m.ID = existing.ID
				m.FounderA = existing.FounderA
				m.FounderB = existing.FounderB
				m.Status = existing.Status
				m.CreatedAt = existing.CreatedAt
				err = tx.QueryRow(`
					UPDATE matches SET
						industry_score = $1, skills_score = $2, founder_status_score = $3,
						commitment_score = $4, financial_score = $5, personality_score = $6,
						location_score = $7, overall_score = $8, updated_at = NOW()
					WHERE id = $9
					RETURNING updated_at
				`,
					score.Industry, score.Skills, score.FounderStatus,
					score.Commitment, score.Financial, score.Personality,
					score.Location, score.Overall, existing.ID,
				).Scan(&m.UpdatedAt)
				if err != nil {
					return operationalErr("updating match scores", err)
				}
			} else {
				m.FounderA = userProfile.ID
				m.FounderB = cand.ID
				m.Status = StatusPending
				err = tx.QueryRow(`
					INSERT INTO matches (
						founder_a, founder_b,
						industry_score, skills_score, founder_status_score, commitment_score,
						financial_score, personality_score, location_score, overall_score,
						status
					) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
					RETURNING id, created_at, updated_at
				`,
					userProfile.ID, cand.ID,
					score.Industry, score.Skills, score.FounderStatus, score.Commitment,
					score.Financial, score.Personality, score.Location, score.Overall,
					StatusPending,
				).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
				if err != nil {
					return operationalErr("inserting match", err)
				}
			}

			aSum, bSum := summaryFromProfile(userProfile), summaryFromProfile(cand)
			if m.FounderA == cand.ID {
				aSum, bSum = bSum, aSum
			}
			d := matchDetail{Match: m, A: aSum, B: bSum}
			results = append(results, newMatchResponse(d, userID))
			if existing == nil {
				created = append(created, d)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return results, created, nil
}

// getMatches lists every match the caller's profile appears in, best first.
func getMatches(db *sql.DB, userID int) ([]MatchResponse, error) {
	userProfile, err := findProfileByUser(db, userID)
	if err != nil {
		if errKind(err) == KindNotFound {
			return nil, preconditionErr("profile_required")
		}
		return nil, err
	}

	rows, err := db.Query(matchDetailSelect+`
		WHERE m.founder_a = $1 OR m.founder_b = $1
		ORDER BY m.overall_score DESC
	`, userProfile.ID)
	if err != nil {
		return nil, operationalErr("loading matches", err)
	}
	defer rows.Close()

	results := []MatchResponse{}
	for rows.Next() {
		d, err := scanMatchDetail(rows)
		if err != nil {
			return nil, operationalErr("scanning match", err)
		}
		results = append(results, newMatchResponse(*d, userID))
	}
	if err := rows.Err(); err != nil {
		return nil, operationalErr("iterating matches", err)
	}
	return results, nil
}

// getMatch loads one match and verifies the caller is a party to it.
func getMatch(db *sql.DB, id, userID int) (*MatchResponse, error) {
	d, err := scanMatchDetail(db.QueryRow(matchDetailSelect+"WHERE m.id = $1", id))
	if err == sql.ErrNoRows {
		return nil, notFoundErr("match_not_found")
	}
	if err != nil {
		return nil, operationalErr("loading match", err)
	}
	if d.A.UserID != userID && d.B.UserID != userID {
		return nil, forbiddenErr("not_your_match")
	}
	resp := newMatchResponse(*d, userID)
	return &resp, nil
}

// updateMatchStatus sets a match's status. Submitting "accepted" persists
// "connected": there is no two-sided handshake, the first accept connects.
func updateMatchStatus(ctx context.Context, db *sql.DB, id, userID int, newStatus string) (*MatchResponse, *matchDetail, error) {
	if !isValidMatchStatus(newStatus) {
		return nil, nil, validationErr("invalid_status")
	}
	if newStatus == StatusAccepted {
		newStatus = StatusConnected
	}

	var detail *matchDetail
	err := withTx(ctx, db, func(tx *sql.Tx) error {
		d, err := scanMatchDetail(tx.QueryRow(matchDetailSelect+"WHERE m.id = $1 FOR UPDATE OF m", id))
		if err == sql.ErrNoRows {
			return notFoundErr("match_not_found")
		}
		if err != nil {
			return operationalErr("loading match", err)
		}
		if d.A.UserID != userID && d.B.UserID != userID {
			return forbiddenErr("not_your_match")
		}
		if err := tx.QueryRow(
			"UPDATE matches SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at",
			newStatus, id,
		).Scan(&d.UpdatedAt); err != nil {
			return operationalErr("updating match status", err)
		}
		d.Status = newStatus
		detail = d
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	resp := newMatchResponse(*detail, userID)
	return &resp, detail, nil
}

// POST /matches/generate
func generateMatchesHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		results, created, err := generateMatches(r.Context(), db, userID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		for _, d := range created {
			notifyMatchFound(d)
		}
		writeJSON(w, http.StatusOK, results)
	})
}

// GET /matches
func matchesHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)
		results, err := getMatches(db, userID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, results)
	})
}

// Dispatcher for /matches/{id} and /matches/{id}/status.
func matchesActionsRouter(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 2 || parts[0] != "matches" {
			http.NotFound(w, r)
			return
		}
		if parts[1] == "generate" {
			generateMatchesHandler(db).ServeHTTP(w, r)
			return
		}
		if len(parts) == 2 {
			getMatchHandler(db).ServeHTTP(w, r)
			return
		}
		if len(parts) == 3 && parts[2] == "status" {
			updateMatchStatusHandler(db).ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	}
}

// GET /matches/{id}
func getMatchHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		resp, gerr := getMatch(db, id, userID)
		if gerr != nil {
			writeAppError(w, gerr)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

// PATCH /matches/{id}/status
func updateMatchStatusHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}

		resp, detail, uerr := updateMatchStatus(r.Context(), db, id, userID, req.Status)
		if uerr != nil {
			writeAppError(w, uerr)
			return
		}
		notifyStatusChanged(*detail)
		writeJSON(w, http.StatusOK, resp)
	})
}
