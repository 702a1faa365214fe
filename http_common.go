package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
)

// --- Response helpers ---
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// withTx wraps a function in a database transaction.
// - Ensures COMMIT on success, ROLLBACK on errors or panics.
// - Keeps handler bodies tiny and all state changes atomic.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}

	defer func() {
		// If the callback panics, make sure to rollback before re-panicking
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// loadMatchPairForUpdate returns the match row between two profiles (in
// EITHER direction) and takes a row lock so no concurrent generation run can
// modify it until our transaction finishes. Returns (nil, nil) if no row
// exists yet.
func loadMatchPairForUpdate(tx *sql.Tx, profileA, profileB int) (*Match, error) {
	row := tx.QueryRow(`
		SELECT id, founder_a, founder_b,
		       industry_score, skills_score, founder_status_score, commitment_score,
		       financial_score, personality_score, location_score, overall_score,
		       status, created_at, updated_at
		FROM matches
		WHERE (founder_a = $1 AND founder_b = $2)
		   OR (founder_a = $2 AND founder_b = $1)
		LIMIT 1
		FOR UPDATE
	`, profileA, profileB)

	var m Match
	err := row.Scan(
		&m.ID, &m.FounderA, &m.FounderB,
		&m.Score.Industry, &m.Score.Skills, &m.Score.FounderStatus, &m.Score.Commitment,
		&m.Score.Financial, &m.Score.Personality, &m.Score.Location, &m.Score.Overall,
		&m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
