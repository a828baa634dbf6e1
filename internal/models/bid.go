// internal/models/bid.go
package models

import "time"

type BidStatus string

const (
	BidPending     BidStatus = "pending"
	BidShortlisted BidStatus = "shortlisted"
	BidAwarded     BidStatus = "awarded"
	BidRejected    BidStatus = "rejected"
)

// IsActive reports whether the bid is still in play for the contractor.
func (s BidStatus) IsActive() bool {
	return s == BidPending || s == BidShortlisted
}

type Bid struct {
	ID           string    `json:"id" db:"id"`
	TenderID     string    `json:"tenderId" db:"tender_id"`
	ContractorID string    `json:"contractorId" db:"contractor_id"`
	Price        float64   `json:"price" db:"price"`
	Duration     int       `json:"duration" db:"duration"`
	ProposedCrew []string  `json:"proposedCrew" db:"proposed_crew"`
	Status       BidStatus `json:"status" db:"status"`
	MatchScore   *int      `json:"matchScore,omitempty" db:"match_score"`
	SubmittedAt  time.Time `json:"submittedAt" db:"submitted_at"`
}

type ComplianceStatus string

const (
	ComplianceValid    ComplianceStatus = "valid"
	ComplianceExpiring ComplianceStatus = "expiring"
	ComplianceExpired  ComplianceStatus = "expired"
)
