// internal/models/organization.go
package models

import "time"

// OrganizationType distinguishes tenderers, contractors and platform admins.
type OrganizationType string

const (
	OrganizationTenderer   OrganizationType = "tenderer"
	OrganizationContractor OrganizationType = "contractor"
	OrganizationAdmin      OrganizationType = "admin"
)

// DefaultReliabilityScore is the column default applied when reliability is NULL.
const DefaultReliabilityScore = 50

type Organization struct {
	ID               string           `json:"id" db:"id"`
	Name             string           `json:"name" db:"name"`
	Type             OrganizationType `json:"type" db:"type"`
	Email            string           `json:"email" db:"email"`
	Phone            string           `json:"phone,omitempty" db:"phone"`
	Address          string           `json:"address,omitempty" db:"address"`
	Latitude         *float64         `json:"latitude" db:"latitude"`
	Longitude        *float64         `json:"longitude" db:"longitude"`
	LogoURL          string           `json:"logoUrl,omitempty" db:"logo_url"`
	Description      string           `json:"description,omitempty" db:"description"`
	Capabilities     []string         `json:"capabilities" db:"capabilities"`
	Rating           *float64         `json:"rating" db:"rating"`
	ReviewCount      int              `json:"reviewCount" db:"review_count"`
	ReliabilityScore *int             `json:"reliabilityScore" db:"reliability_score"`
	Available        bool             `json:"available" db:"available"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at"`
}

// Reliability returns the reliability score in [0,100], falling back to the
// column default when the score was never set.
func (o *Organization) Reliability() int {
	if o.ReliabilityScore == nil {
		return DefaultReliabilityScore
	}
	switch score := *o.ReliabilityScore; {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
