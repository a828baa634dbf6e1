package contractorstats

import (
	"context"

	"tender-matching/internal/models"
)

type Input struct {
	OrganizationID string `json:"organizationId"`
}

// Output is published to the process as the flat stats fields.
type Output = models.ContractorStats

type Aggregator interface {
	ContractorStats(ctx context.Context, orgID string) (models.ContractorStats, error)
}
