package http

import (
	"errors"
	"net/http"

	allocdomain "github.com/mfahadasghar/flow-fund/internal/allocator/domain"
	ledgerdomain "github.com/mfahadasghar/flow-fund/internal/ledger/domain"
	regdomain "github.com/mfahadasghar/flow-fund/internal/registry/domain"
)

// StatusFor maps domain sentinel errors onto HTTP status codes so
// every feature handler reports failures the same way.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, regdomain.ErrProjectNotFound),
		errors.Is(err, regdomain.ErrApplicationNotFound),
		errors.Is(err, allocdomain.ErrDonationNotFound):
		return http.StatusNotFound

	case errors.Is(err, regdomain.ErrAlreadyReviewed),
		errors.Is(err, allocdomain.ErrNoDust):
		return http.StatusConflict

	case errors.Is(err, allocdomain.ErrTransferNotAuthorized),
		errors.Is(err, ledgerdomain.ErrInsufficientAllowance):
		return http.StatusForbidden

	case errors.Is(err, allocdomain.ErrArrayLengthMismatch),
		errors.Is(err, allocdomain.ErrInvalidAmount),
		errors.Is(err, allocdomain.ErrPercentageSumInvalid),
		errors.Is(err, allocdomain.ErrProjectUnavailable),
		errors.Is(err, allocdomain.ErrInsufficientBalance),
		errors.Is(err, ledgerdomain.ErrInsufficientBalance),
		errors.Is(err, ledgerdomain.ErrInvalidAmount),
		errors.Is(err, ledgerdomain.ErrInvalidAddress),
		errors.Is(err, regdomain.ErrInvalidInput):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
