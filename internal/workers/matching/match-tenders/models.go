package matchtenders

import (
	"context"

	"tender-matching/internal/models"
)

type Input struct {
	ContractorID string `json:"contractorId"`
	Limit        int    `json:"limit,omitempty"`
}

type Output struct {
	MatchedTenders []models.ScoredTender `json:"matchedTenders"`
	MatchCount     int                   `json:"matchCount"`
}

type Ranker interface {
	RankTendersForContractor(ctx context.Context, contractorID string, limit int) ([]models.ScoredTender, error)
}
