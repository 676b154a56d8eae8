package domain

import (
	"time"

	"github.com/holiman/uint256"
)

// BasisPointDenominator is the percentage scale: 10000 = 100.00%.
const BasisPointDenominator = 10000

// Donation is the immutable receipt of one split-donation call.
// ProjectIDs and Allocations are parallel; a zero allocation means the
// percentage rounded down to nothing but the project was still named.
type Donation struct {
	ID          int64          `json:"id"`
	Donor       string         `json:"donor"`
	TotalAmount *uint256.Int   `json:"total_amount"`
	ProjectIDs  []int64        `json:"project_ids"`
	Allocations []*uint256.Int `json:"allocations"`
	Timestamp   time.Time      `json:"timestamp"`
}

// DonorStats is the running per-donor aggregate.
type DonorStats struct {
	Donor        string       `json:"donor"`
	Count        int64        `json:"count"`
	TotalDonated *uint256.Int `json:"total_donated"`
}

// Totals is the allocator-wide aggregate: grand total donated, number
// of donations, and rounding dust still held in custody.
type Totals struct {
	TotalDonated  *uint256.Int `json:"total_donated"`
	DonationCount int64        `json:"donation_count"`
	Dust          *uint256.Int `json:"dust"`
}

// ComputeAllocations splits amount by basis-point percentages, flooring
// each share. The returned dust is the integer-division remainder that
// no project receives. Validation of the percentage sum happens before
// this; callers pass percentages that sum to exactly 10000.
func ComputeAllocations(amount *uint256.Int, percentages []int64) ([]*uint256.Int, *uint256.Int, error) {
	denom := uint256.NewInt(BasisPointDenominator)
	shares := make([]*uint256.Int, len(percentages))
	allocated := uint256.NewInt(0)

	for i, bp := range percentages {
		share := new(uint256.Int)
		if _, overflow := share.MulOverflow(amount, uint256.NewInt(uint64(bp))); overflow {
			return nil, nil, ErrInvalidAmount
		}
		share.Div(share, denom)
		shares[i] = share
		allocated.Add(allocated, share)
	}

	dust := new(uint256.Int).Sub(amount, allocated)
	return shares, dust, nil
}

// ValidatePercentages enforces the exact-sum rule: every entry
// non-negative, total exactly 10000 basis points.
func ValidatePercentages(percentages []int64) error {
	var sum int64
	for _, bp := range percentages {
		if bp < 0 {
			return ErrPercentageSumInvalid
		}
		sum += bp
	}
	if sum != BasisPointDenominator {
		return ErrPercentageSumInvalid
	}
	return nil
}
