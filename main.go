package main

import (
	"net/http"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logger.Fatalw("loading config", "err", err)
	}
	initLogger(cfg.Env)
	jwtSecret = []byte(cfg.JWTSecret)

	if err := initDB(cfg); err != nil {
		logger.Fatalw("initialising database", "err", err)
	}
	if err := initRedis(cfg); err != nil {
		logger.Fatalw("connecting to redis", "err", err)
	}

	mux := http.NewServeMux()

	// Core auth & user endpoints
	mux.Handle("/register", registerHandler(db))
	mux.Handle("/login", loginHandler(db))
	mux.Handle("/logout", logoutHandler())
	mux.Handle("/me", meHandler(db))

	// Founder profiles
	mux.Handle("/profiles", createProfileHandler(db))
	mux.Handle("/profiles/me", myProfileHandler(db))
	mux.Handle("/profiles/me/exists", profileExistsHandler(db))
	mux.Handle("/profiles/", profilesDispatcher(db)) // GET /profiles/{id}

	// Matching
	mux.Handle("/matches", matchesHandler(db))
	mux.Handle("/matches/generate", generateMatchesHandler(db))
	mux.Handle("/matches/", matchesActionsRouter(db)) // /matches/{id}, /matches/{id}/status

	// Profile form vocabularies
	mux.Handle("/constants/", constantsHandler())

	// WebSocket match event stream
	mux.Handle("/ws/events", wsEventsHandler())

	// Health check endpoint for Docker
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	logger.Infow("starting cofound backend", "port", cfg.Port, "env", cfg.Env)
	if err := http.ListenAndServe(":"+cfg.Port, withCORS(mux)); err != nil {
		logger.Fatalw("server stopped", "err", err)
	}
}
