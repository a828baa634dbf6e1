package matchcontractors

import (
	"context"

	"tender-matching/internal/models"
)

type Input struct {
	TenderID string `json:"tenderId"`
	Limit    int    `json:"limit,omitempty"`
}

type Output struct {
	MatchedContractors []models.ScoredContractor `json:"matchedContractors"`
	MatchCount         int                       `json:"matchCount"`
}

type Ranker interface {
	RankContractorsForTender(ctx context.Context, tenderID string, limit int) ([]models.ScoredContractor, error)
}
