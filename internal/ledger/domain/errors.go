package domain

import "errors"

var (
	ErrInvalidAddress        = errors.New("invalid account address")
	ErrInvalidAmount         = errors.New("amount must be greater than 0")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)
