// internal/matching/store.go
package matching

import (
	"context"

	"tender-matching/internal/models"
)

// Store is the read side the engine needs. Getters return nil, nil when the
// record does not exist. List methods return records in a stable order
// (newest first, then by id).
type Store interface {
	GetTender(ctx context.Context, id string) (*models.Tender, error)
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
	GetBid(ctx context.Context, id string) (*models.Bid, error)

	// ListAvailableContractors returns contractors with available = true.
	// limit <= 0 means no limit.
	ListAvailableContractors(ctx context.Context, limit int) ([]models.Organization, error)
	// ListOpenTenders returns tenders with status open. limit <= 0 means no limit.
	ListOpenTenders(ctx context.Context, limit int) ([]models.Tender, error)

	ListTendersByOrganization(ctx context.Context, orgID string) ([]models.Tender, error)
	ListBidsByTenders(ctx context.Context, tenderIDs []string) ([]models.Bid, error)
	ListBidsByContractor(ctx context.Context, contractorID string) ([]models.Bid, error)

	// ExpiredComplianceHolders reports which of orgIDs hold at least one expired
	// compliance document.
	ExpiredComplianceHolders(ctx context.Context, orgIDs []string) (map[string]bool, error)
}
