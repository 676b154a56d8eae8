package domain

import "errors"

var (
	ErrArrayLengthMismatch   = errors.New("arrays length mismatch")
	ErrInvalidAmount         = errors.New("amount must be greater than 0")
	ErrPercentageSumInvalid  = errors.New("percentages must sum to 100%")
	ErrProjectUnavailable    = errors.New("project does not exist or is inactive")
	ErrTransferNotAuthorized = errors.New("transfer not authorized")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrDonationNotFound      = errors.New("donation not found")
	ErrNoDust                = errors.New("no dust to sweep")
)
