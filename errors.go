package main

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies operation failures so transport code can switch on an
// explicit tag instead of inspecting error types.
type ErrorKind int

const (
	KindOperational ErrorKind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindPrecondition
	KindValidation
)

// AppError carries a kind tag plus a caller-facing message. Err, when set,
// preserves the underlying cause for diagnostics.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func notFoundErr(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func forbiddenErr(msg string) *AppError {
	return &AppError{Kind: KindForbidden, Message: msg}
}

func conflictErr(msg string) *AppError {
	return &AppError{Kind: KindConflict, Message: msg}
}

func preconditionErr(msg string) *AppError {
	return &AppError{Kind: KindPrecondition, Message: msg}
}

func validationErr(msg string) *AppError {
	return &AppError{Kind: KindValidation, Message: msg}
}

func operationalErr(msg string, err error) *AppError {
	return &AppError{Kind: KindOperational, Message: msg, Err: err}
}

// errKind extracts the kind tag; anything untagged is operational.
func errKind(err error) ErrorKind {
	var app *AppError
	if errors.As(err, &app) {
		return app.Kind
	}
	return KindOperational
}

func kindToStatus(k ErrorKind) int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindPrecondition, KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError translates a service error into an HTTP response. Operational
// details stay in the log, not the body.
func writeAppError(w http.ResponseWriter, err error) {
	var app *AppError
	if !errors.As(err, &app) {
		logger.Errorw("unexpected error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if app.Kind == KindOperational {
		logger.Errorw("operational failure", "error", app.Err, "message", app.Message)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeError(w, kindToStatus(app.Kind), app.Message)
}
