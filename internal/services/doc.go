// Package services implements the read-only query layer behind the dashboard
// API. Services hold an immutable cleaned table loaded once at startup and
// answer every request from it; handlers in transport/http only parse
// parameters and render results.
//
// # Error Handling
//
// Services return the sentinel errors of errors.go, wrapped with detail:
//
//	ErrInvalidInput  -> 400
//	ErrYearNotFound  -> 404
//	ErrNoData        -> 503
package services
