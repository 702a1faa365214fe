package main

import (
	"database/sql"
	"net/http"
)

// GET /me — the authenticated user's account basics.
func meHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		var email, firstName, lastName string
		err := db.QueryRow(
			"SELECT email, first_name, last_name FROM users WHERE id = $1",
			userID,
		).Scan(&email, &firstName, &lastName)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		if err != nil {
			writeAppError(w, operationalErr("loading user", err))
			return
		}

		resp := map[string]interface{}{
			"id":         userID,
			"email":      email,
			"first_name": firstName,
			"last_name":  lastName,
			"name":       firstName + " " + lastName,
		}
		writeJSON(w, http.StatusOK, resp)
	})
}
