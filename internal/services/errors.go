package services

import "errors"

// Dashboard service errors
var (
	ErrNoData       = errors.New("no accident data loaded")
	ErrYearNotFound = errors.New("year not found")
	ErrInvalidInput = errors.New("invalid input")
)
