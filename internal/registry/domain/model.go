package domain

import (
	"time"

	"github.com/holiman/uint256"
)

// Project is a donation-eligible recipient. Projects are never
// deleted; deactivation is the only removal semantic, and historical
// totals survive it.
type Project struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Wallet        string       `json:"wallet"`
	TotalReceived *uint256.Int `json:"total_received"`
	Active        bool         `json:"active"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Application status values. Pending is the initial state; Approved
// and Rejected are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ValidStatus reports whether s is one of the three known states.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Application is a charity's intake submission. It transitions out of
// Pending at most once.
type Application struct {
	ID               int64      `json:"id"`
	Applicant        string     `json:"applicant"`
	OrganizationName string     `json:"organization_name"`
	EIN              string     `json:"ein"`
	ContactEmail     string     `json:"contact_email"`
	MissionStatement string     `json:"mission_statement"`
	Wallet           string     `json:"wallet"`
	DocumentsHash    string     `json:"documents_hash"`
	LogoHash         string     `json:"logo_hash"`
	Status           string     `json:"status"`
	SubmittedAt      time.Time  `json:"submitted_at"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes      string     `json:"review_notes"`
}

// SubmitApplicationRequest carries the fields a charity provides.
type SubmitApplicationRequest struct {
	Applicant        string
	OrganizationName string
	EIN              string
	ContactEmail     string
	MissionStatement string
	Wallet           string
	DocumentsHash    string
	LogoHash         string
}
