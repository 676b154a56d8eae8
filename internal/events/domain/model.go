package domain

import (
	"encoding/json"
	"time"
)

// Event kinds, the audit trail a client replays to reconstruct
// donor-visible history.
const (
	KindDonationMade         = "donation_made"
	KindFundsAllocated       = "funds_allocated"
	KindProjectCreated       = "project_created"
	KindProjectDeactivated   = "project_deactivated"
	KindFundsReceived        = "funds_received"
	KindApplicationSubmitted = "application_submitted"
	KindApplicationApproved  = "application_approved"
	KindApplicationRejected  = "application_rejected"
	KindTransfer             = "transfer"
	KindApproval             = "approval"
	KindDustSwept            = "dust_swept"
)

// Event is one immutable audit record. Payload shape depends on Kind.
type Event struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}
