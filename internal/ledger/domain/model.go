package domain

import (
	"regexp"
	"strings"

	"github.com/holiman/uint256"
)

// ZeroAddress is the mint source in transfer notifications.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

var addressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// NormalizeAddress lower-cases a ledger account address and rejects
// anything that is not 0x-prefixed 20-byte hex.
func NormalizeAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !addressRe.MatchString(s) {
		return "", ErrInvalidAddress
	}
	return strings.ToLower(s), nil
}

// Balance is an account's position as read from storage.
type Balance struct {
	Address string       `json:"address"`
	Amount  *uint256.Int `json:"amount"`
}

// Approval is a spender authorization as read from storage.
type Approval struct {
	Owner   string       `json:"owner"`
	Spender string       `json:"spender"`
	Amount  *uint256.Int `json:"amount"`
}
