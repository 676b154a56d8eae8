package domain

import "errors"

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyReviewed     = errors.New("application already reviewed")
	ErrInvalidInput        = errors.New("invalid input")
)
