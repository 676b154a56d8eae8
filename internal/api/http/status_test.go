package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	allocdomain "github.com/mfahadasghar/flow-fund/internal/allocator/domain"
	ledgerdomain "github.com/mfahadasghar/flow-fund/internal/ledger/domain"
	regdomain "github.com/mfahadasghar/flow-fund/internal/registry/domain"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{regdomain.ErrProjectNotFound, http.StatusNotFound},
		{regdomain.ErrApplicationNotFound, http.StatusNotFound},
		{allocdomain.ErrDonationNotFound, http.StatusNotFound},
		{regdomain.ErrAlreadyReviewed, http.StatusConflict},
		{allocdomain.ErrNoDust, http.StatusConflict},
		{allocdomain.ErrTransferNotAuthorized, http.StatusForbidden},
		{ledgerdomain.ErrInsufficientAllowance, http.StatusForbidden},
		{allocdomain.ErrArrayLengthMismatch, http.StatusBadRequest},
		{allocdomain.ErrPercentageSumInvalid, http.StatusBadRequest},
		{allocdomain.ErrProjectUnavailable, http.StatusBadRequest},
		{ledgerdomain.ErrInsufficientBalance, http.StatusBadRequest},
		{ledgerdomain.ErrInvalidAddress, http.StatusBadRequest},
		{regdomain.ErrInvalidInput, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), tc.err.Error())
	}

	// Wrapped sentinels still map.
	wrapped := fmt.Errorf("create: %w", regdomain.ErrInvalidInput)
	assert.Equal(t, http.StatusBadRequest, StatusFor(wrapped))
}
