package tendererstats

import (
	"context"

	"tender-matching/internal/models"
)

type Input struct {
	OrganizationID string `json:"organizationId"`
}

// Output is published to the process as the flat stats fields.
type Output = models.TendererStats

type Aggregator interface {
	TendererStats(ctx context.Context, orgID string) (models.TendererStats, error)
}
