// internal/models/match.go
package models

// FactorType names one "why matched" explanation chip.
type FactorType string

const (
	FactorSkills       FactorType = "skills"
	FactorLocation     FactorType = "location"
	FactorAvailability FactorType = "availability"
	FactorReliability  FactorType = "reliability"
)

type MatchFactor struct {
	Type  FactorType `json:"type"`
	Value string     `json:"value"`
}

// ScoredContractor is a contractor ranked against a tender.
type ScoredContractor struct {
	Organization
	MatchScore      int           `json:"matchScore"`
	Distance        string        `json:"distance"`
	SkillsMatch     int           `json:"capabilityFit"`
	ComplianceValid bool          `json:"complianceValid"`
	WhyMatched      []MatchFactor `json:"whyMatched"`
}

// ScoredTender is an open tender ranked against a contractor.
type ScoredTender struct {
	Tender
	MatchScore  int           `json:"matchScore"`
	Distance    string        `json:"distance"`
	SkillsMatch int           `json:"skillsMatch"`
	WhyMatched  []MatchFactor `json:"whyMatched"`
}
