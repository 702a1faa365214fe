package main

import "go.uber.org/zap"

// Package-wide sugared logger. Defaults to the development config so tests
// and handlers log sensibly before main swaps in the environment-appropriate
// one.
var logger = zap.Must(zap.NewDevelopment()).Sugar()

func initLogger(env string) {
	var l *zap.Logger
	if env == "production" {
		l = zap.Must(zap.NewProduction())
	} else {
		l = zap.Must(zap.NewDevelopment())
	}
	logger = l.Sugar()
}
