// internal/matching/stats.go
package matching

import (
	"context"
	"fmt"
	"math"

	"tender-matching/internal/common/logger"
	"tender-matching/internal/common/metrics"
	"tender-matching/internal/models"
)

// StatsAggregator computes the dashboard summaries for either side of the marketplace.
type StatsAggregator struct {
	store  Store
	logger logger.Logger
}

func NewStatsAggregator(store Store, log logger.Logger) *StatsAggregator {
	return &StatsAggregator{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "stats"}),
	}
}

func (a *StatsAggregator) TendererStats(ctx context.Context, orgID string) (models.TendererStats, error) {
	metrics.StatsRequests.WithLabelValues(string(models.OrganizationTenderer)).Inc()

	tenders, err := a.store.ListTendersByOrganization(ctx, orgID)
	if err != nil {
		return models.TendererStats{}, fmt.Errorf("list tenders for %s: %w", orgID, err)
	}

	var stats models.TendererStats
	ids := make([]string, 0, len(tenders))
	for _, t := range tenders {
		ids = append(ids, t.ID)
		if t.Status.IsActive() {
			stats.ActiveTenders++
		}
	}
	if len(ids) == 0 {
		return stats, nil
	}

	bids, err := a.store.ListBidsByTenders(ctx, ids)
	if err != nil {
		return models.TendererStats{}, fmt.Errorf("list bids for %s: %w", orgID, err)
	}

	stats.BidsReceived = len(bids)
	stats.AvgBidValue = averagePrice(bids)
	for _, b := range bids {
		if b.Status == models.BidShortlisted {
			stats.ContractorsShortlisted++
		}
	}

	a.logger.Debug("Tenderer stats computed", map[string]interface{}{
		"organizationId": orgID,
		"tenders":        len(tenders),
		"bids":           len(bids),
	})
	return stats, nil
}

func (a *StatsAggregator) ContractorStats(ctx context.Context, orgID string) (models.ContractorStats, error) {
	metrics.StatsRequests.WithLabelValues(string(models.OrganizationContractor)).Inc()

	bids, err := a.store.ListBidsByContractor(ctx, orgID)
	if err != nil {
		return models.ContractorStats{}, fmt.Errorf("list bids for %s: %w", orgID, err)
	}

	var stats models.ContractorStats
	awarded := 0
	for _, b := range bids {
		if b.Status.IsActive() {
			stats.ActiveBids++
		}
		if b.Status == models.BidAwarded {
			awarded++
		}
	}
	if len(bids) > 0 {
		stats.WinRate = int(math.Round(float64(awarded) / float64(len(bids)) * 100))
	}
	stats.AvgBidValue = averagePrice(bids)
	stats.JobsWonThisMonth = awarded

	a.logger.Debug("Contractor stats computed", map[string]interface{}{
		"organizationId": orgID,
		"bids":           len(bids),
	})
	return stats, nil
}

func averagePrice(bids []models.Bid) int64 {
	if len(bids) == 0 {
		return 0
	}
	var total float64
	for _, b := range bids {
		total += b.Price
	}
	return int64(math.Round(total / float64(len(bids))))
}
