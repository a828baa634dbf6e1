// internal/models/tender.go
package models

import "time"

type TenderStatus string

const (
	TenderDraft   TenderStatus = "draft"
	TenderOpen    TenderStatus = "open"
	TenderClosed  TenderStatus = "closed"
	TenderAwarded TenderStatus = "awarded"
)

// IsActive reports whether a tender still counts towards a tenderer's active work.
func (s TenderStatus) IsActive() bool {
	return s == TenderOpen || s == TenderDraft
}

type Budget struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Tender struct {
	ID                 string       `json:"id" db:"id"`
	OrganizationID     string       `json:"organizationId" db:"organization_id"`
	Title              string       `json:"title" db:"title"`
	Description        string       `json:"description" db:"description"`
	Latitude           float64      `json:"latitude" db:"latitude"`
	Longitude          float64      `json:"longitude" db:"longitude"`
	Address            string       `json:"address" db:"address"`
	Budget             Budget       `json:"budget" db:"budget"`
	RequiredSkills     []string     `json:"requiredSkills" db:"required_skills"`
	RequiredCompliance []string     `json:"requiredCompliance" db:"required_compliance"`
	ScopeOfWork        []string     `json:"scopeOfWork" db:"scope_of_work"`
	StartDate          *time.Time   `json:"startDate,omitempty" db:"start_date"`
	Deadline           time.Time    `json:"deadline" db:"deadline"`
	Duration           *int         `json:"duration,omitempty" db:"duration"`
	Status             TenderStatus `json:"status" db:"status"`
	CreatedAt          time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time    `json:"updatedAt" db:"updated_at"`
}

