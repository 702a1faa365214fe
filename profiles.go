package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

const profileSelect = `
	SELECT p.id, p.user_id, u.first_name || ' ' || u.last_name,
	       p.founder_status, p.skills, p.industry, p.current_occupation, p.years_experience,
	       p.commitment_level, p.financial_contribution, p.personality_traits, p.location,
	       p.preferred_skills, p.preferred_founder_type, p.preferred_industry,
	       p.preferred_commitment_level, p.preferred_financial, p.preferred_personality_traits,
	       p.preferred_location, p.created_at, p.updated_at
	FROM profiles p
	JOIN users u ON u.id = p.user_id
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name,
		&p.FounderStatus, pq.Array(&p.Skills), &p.Industry, &p.CurrentOccupation, &p.YearsExperience,
		&p.CommitmentLevel, &p.FinancialContribution, pq.Array(&p.PersonalityTraits), &p.Location,
		pq.Array(&p.PreferredSkills), &p.PreferredFounderType, &p.PreferredIndustry,
		&p.PreferredCommitmentLevel, &p.PreferredFinancial, pq.Array(&p.PreferredPersonalityTraits),
		&p.PreferredLocation, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// findProfileByUser loads the profile of record for a user.
func findProfileByUser(db *sql.DB, userID int) (*Profile, error) {
	p, err := scanProfile(db.QueryRow(profileSelect+"WHERE p.user_id = $1", userID))
	if err == sql.ErrNoRows {
		return nil, notFoundErr("profile_not_found")
	}
	if err != nil {
		return nil, operationalErr("loading profile", err)
	}
	return p, nil
}

func findProfileByID(db *sql.DB, id int) (*Profile, error) {
	p, err := scanProfile(db.QueryRow(profileSelect+"WHERE p.id = $1", id))
	if err == sql.ErrNoRows {
		return nil, notFoundErr("profile_not_found")
	}
	if err != nil {
		return nil, operationalErr("loading profile", err)
	}
	return p, nil
}

// findAllProfilesExcluding returns every other user's profile, fully
// populated, in stable id order.
func findAllProfilesExcluding(db *sql.DB, userID int) ([]Profile, error) {
	rows, err := db.Query(profileSelect+"WHERE p.user_id <> $1 ORDER BY p.id", userID)
	if err != nil {
		return nil, operationalErr("loading candidate profiles", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, operationalErr("scanning candidate profile", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, operationalErr("iterating candidate profiles", err)
	}
	return profiles, nil
}

// profileInput is the create/update request body. Pointers distinguish
// "absent" from "empty" so PATCH can be partial.
type profileInput struct {
	FounderStatus              *string   `json:"founder_status"`
	Skills                     *[]string `json:"skills"`
	Industry                   *string   `json:"industry"`
	CurrentOccupation          *string   `json:"current_occupation"`
	YearsExperience            *int      `json:"years_experience"`
	CommitmentLevel            *string   `json:"commitment_level"`
	FinancialContribution      *string   `json:"financial_contribution"`
	PersonalityTraits          *[]string `json:"personality_traits"`
	Location                   *string   `json:"location"`
	PreferredSkills            *[]string `json:"preferred_skills"`
	PreferredFounderType       *string   `json:"preferred_founder_type"`
	PreferredIndustry          *string   `json:"preferred_industry"`
	PreferredCommitmentLevel   *string   `json:"preferred_commitment_level"`
	PreferredFinancial         *string   `json:"preferred_financial"`
	PreferredPersonalityTraits *[]string `json:"preferred_personality_traits"`
	PreferredLocation          *string   `json:"preferred_location"`
}

// apply overlays the provided fields onto p, de-duplicating list fields.
func (in *profileInput) apply(p *Profile) {
	if in.FounderStatus != nil {
		p.FounderStatus = *in.FounderStatus
	}
	if in.Skills != nil {
		p.Skills = dedupeStrings(*in.Skills)
	}
	if in.Industry != nil {
		p.Industry = *in.Industry
	}
	if in.CurrentOccupation != nil {
		p.CurrentOccupation = *in.CurrentOccupation
	}
	if in.YearsExperience != nil {
		p.YearsExperience = *in.YearsExperience
	}
	if in.CommitmentLevel != nil {
		p.CommitmentLevel = *in.CommitmentLevel
	}
	if in.FinancialContribution != nil {
		p.FinancialContribution = *in.FinancialContribution
	}
	if in.PersonalityTraits != nil {
		p.PersonalityTraits = dedupeStrings(*in.PersonalityTraits)
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	if in.PreferredSkills != nil {
		p.PreferredSkills = dedupeStrings(*in.PreferredSkills)
	}
	if in.PreferredFounderType != nil {
		p.PreferredFounderType = *in.PreferredFounderType
	}
	if in.PreferredIndustry != nil {
		p.PreferredIndustry = *in.PreferredIndustry
	}
	if in.PreferredCommitmentLevel != nil {
		p.PreferredCommitmentLevel = *in.PreferredCommitmentLevel
	}
	if in.PreferredFinancial != nil {
		p.PreferredFinancial = *in.PreferredFinancial
	}
	if in.PreferredPersonalityTraits != nil {
		p.PreferredPersonalityTraits = dedupeStrings(*in.PreferredPersonalityTraits)
	}
	if in.PreferredLocation != nil {
		p.PreferredLocation = *in.PreferredLocation
	}
}

// validateProfile checks every enumerated field against its closed vocabulary.
func validateProfile(p *Profile) error {
	checks := []struct {
		value string
		vocab []string
		field string
	}{
		{p.FounderStatus, founderStatuses, "founder_status"},
		{p.Industry, industries, "industry"},
		{p.CommitmentLevel, commitmentLevels, "commitment_level"},
		{p.FinancialContribution, financialContributions, "financial_contribution"},
		{p.Location, locations, "location"},
		{p.PreferredFounderType, founderStatuses, "preferred_founder_type"},
		{p.PreferredIndustry, industries, "preferred_industry"},
		{p.PreferredCommitmentLevel, commitmentLevels, "preferred_commitment_level"},
		{p.PreferredFinancial, financialContributions, "preferred_financial"},
		{p.PreferredLocation, locations, "preferred_location"},
	}
	for _, c := range checks {
		if !containsString(c.vocab, c.value) {
			return validationErr(fmt.Sprintf("invalid_%s", c.field))
		}
	}

	lists := []struct {
		values []string
		vocab  []string
		field  string
	}{
		{p.Skills, skillCategories, "skills"},
		{p.PreferredSkills, skillCategories, "preferred_skills"},
		{p.PersonalityTraits, personalityTraits, "personality_traits"},
		{p.PreferredPersonalityTraits, personalityTraits, "preferred_personality_traits"},
	}
	for _, l := range lists {
		for _, v := range l.values {
			if !containsString(l.vocab, v) {
				return validationErr(fmt.Sprintf("invalid_%s", l.field))
			}
		}
	}

	if p.YearsExperience < 0 {
		return validationErr("invalid_years_experience")
	}
	return nil
}

// POST /profiles - create the authenticated user's profile.
func createProfileHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		var in profileInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		var p Profile
		p.UserID = userID
		in.apply(&p)
		if err := validateProfile(&p); err != nil {
			writeAppError(w, err)
			return
		}

		err := withTx(r.Context(), db, func(tx *sql.Tx) error {
			var exists bool
			if err := tx.QueryRow("SELECT EXISTS (SELECT 1 FROM profiles WHERE user_id = $1)", userID).Scan(&exists); err != nil {
				return operationalErr("checking existing profile", err)
			}
			if exists {
				return conflictErr("profile_exists")
			}
			return tx.QueryRow(`
				INSERT INTO profiles (
					user_id, founder_status, skills, industry, current_occupation, years_experience,
					commitment_level, financial_contribution, personality_traits, location,
					preferred_skills, preferred_founder_type, preferred_industry,
					preferred_commitment_level, preferred_financial, preferred_personality_traits,
					preferred_location
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
				RETURNING id, created_at, updated_at
			`,
				userID, p.FounderStatus, pq.Array(p.Skills), p.Industry, p.CurrentOccupation, p.YearsExperience,
				p.CommitmentLevel, p.FinancialContribution, pq.Array(p.PersonalityTraits), p.Location,
				pq.Array(p.PreferredSkills), p.PreferredFounderType, p.PreferredIndustry,
				p.PreferredCommitmentLevel, p.PreferredFinancial, pq.Array(p.PreferredPersonalityTraits),
				p.PreferredLocation,
			).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	})
}

// GET/PATCH/DELETE /profiles/me
func myProfileHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(userIDKey).(int)

		switch r.Method {
		case http.MethodGet:
			p, err := findProfileByUser(db, userID)
			if err != nil {
				writeAppError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, p)

		case http.MethodPatch:
			var in profileInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_json")
				return
			}
			p, err := findProfileByUser(db, userID)
			if err != nil {
				writeAppError(w, err)
				return
			}
			in.apply(p)
			if err := validateProfile(p); err != nil {
				writeAppError(w, err)
				return
			}
			err = withTx(r.Context(), db, func(tx *sql.Tx) error {
				_, err := tx.Exec(`
					UPDATE profiles SET
						founder_status = $1, skills = $2, industry = $3, current_occupation = $4,
						years_experience = $5, commitment_level = $6, financial_contribution = $7,
						personality_traits = $8, location = $9, preferred_skills = $10,
						preferred_founder_type = $11, preferred_industry = $12,
						preferred_commitment_level = $13, preferred_financial = $14,
						preferred_personality_traits = $15, preferred_location = $16,
						updated_at = NOW()
					WHERE id = $17
				`,
					p.FounderStatus, pq.Array(p.Skills), p.Industry, p.CurrentOccupation,
					p.YearsExperience, p.CommitmentLevel, p.FinancialContribution,
					pq.Array(p.PersonalityTraits), p.Location, pq.Array(p.PreferredSkills),
					p.PreferredFounderType, p.PreferredIndustry,
					p.PreferredCommitmentLevel, p.PreferredFinancial,
					pq.Array(p.PreferredPersonalityTraits), p.PreferredLocation,
					p.ID,
				)
				if err != nil {
					return operationalErr("updating profile", err)
				}
				return nil
			})
			if err != nil {
				writeAppError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, p)

		case http.MethodDelete:
			// Match rows go with the profile via ON DELETE CASCADE.
			res, err := db.Exec("DELETE FROM profiles WHERE user_id = $1", userID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "db_error")
				logger.Errorw("deleting profile", "error", err)
				return
			}
			if n, _ := res.RowsAffected(); n == 0 {
				writeError(w, http.StatusNotFound, "profile_not_found")
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
		}
	})
}

// GET /profiles/me/exists
func profileExistsHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)
		var exists bool
		if err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM profiles WHERE user_id = $1)", userID).Scan(&exists); err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
	})
}

// Dispatcher for /profiles/* paths that carry an id segment.
func profilesDispatcher(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 2 || parts[0] != "profiles" {
			http.NotFound(w, r)
			return
		}
		profileByIDHandler(db).ServeHTTP(w, r)
	}
}

// GET /profiles/{id}
func profileByIDHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			http.NotFound(w, r)
			return
		}
		p, ferr := findProfileByID(db, id)
		if ferr != nil {
			writeAppError(w, ferr)
			return
		}
		writeJSON(w, http.StatusOK, p)
	})
}
