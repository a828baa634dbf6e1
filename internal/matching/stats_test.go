// internal/matching/stats_test.go
package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-matching/internal/common/logger"
	"tender-matching/internal/models"
)

func TestStatsAggregator_TendererStats(t *testing.T) {
	store := &memStore{
		tenders: []models.Tender{
			{ID: "t1", OrganizationID: "org1", Status: models.TenderOpen},
			{ID: "t2", OrganizationID: "org1", Status: models.TenderDraft},
			{ID: "t3", OrganizationID: "org1", Status: models.TenderAwarded},
			{ID: "t4", OrganizationID: "org2", Status: models.TenderOpen},
		},
		bids: []models.Bid{
			{ID: "b1", TenderID: "t1", Price: 1000, Status: models.BidPending},
			{ID: "b2", TenderID: "t1", Price: 2001, Status: models.BidShortlisted},
			{ID: "b3", TenderID: "t3", Price: 3000, Status: models.BidAwarded},
			{ID: "b4", TenderID: "t4", Price: 9999, Status: models.BidShortlisted},
		},
	}
	a := NewStatsAggregator(store, logger.NewTestLogger(t))

	stats, err := a.TendererStats(context.Background(), "org1")
	require.NoError(t, err)
	assert.Equal(t, models.TendererStats{
		ActiveTenders:          2,
		BidsReceived:           3,
		AvgBidValue:            2000,
		ContractorsShortlisted: 1,
	}, stats)
}

func TestStatsAggregator_TendererStats_NoTenders(t *testing.T) {
	store := &memStore{}
	a := NewStatsAggregator(store, logger.NewTestLogger(t))

	stats, err := a.TendererStats(context.Background(), "org1")
	require.NoError(t, err)
	assert.Equal(t, models.TendererStats{}, stats)
	assert.Zero(t, store.bidQueries)
}

func TestStatsAggregator_ContractorStats(t *testing.T) {
	tests := []struct {
		name     string
		bids     []models.Bid
		expected models.ContractorStats
	}{
		{
			name:     "no bids",
			expected: models.ContractorStats{},
		},
		{
			name: "mixed statuses",
			bids: []models.Bid{
				{ID: "b1", ContractorID: "c1", Price: 100, Status: models.BidPending},
				{ID: "b2", ContractorID: "c1", Price: 200, Status: models.BidShortlisted},
				{ID: "b3", ContractorID: "c1", Price: 300, Status: models.BidAwarded},
				{ID: "b4", ContractorID: "c2", Price: 999, Status: models.BidAwarded},
			},
			expected: models.ContractorStats{
				ActiveBids:       2,
				WinRate:          33,
				AvgBidValue:      200,
				JobsWonThisMonth: 1,
			},
		},
		{
			name: "win rate over mostly rejected bids",
			bids: []models.Bid{
				{ID: "b1", ContractorID: "c1", Price: 1, Status: models.BidAwarded},
				{ID: "b2", ContractorID: "c1", Price: 2, Status: models.BidRejected},
				{ID: "b3", ContractorID: "c1", Price: 2, Status: models.BidAwarded},
				{ID: "b4", ContractorID: "c1", Price: 2, Status: models.BidRejected},
				{ID: "b5", ContractorID: "c1", Price: 2, Status: models.BidRejected},
				{ID: "b6", ContractorID: "c1", Price: 2, Status: models.BidRejected},
				{ID: "b7", ContractorID: "c1", Price: 2, Status: models.BidRejected},
				{ID: "b8", ContractorID: "c1", Price: 2, Status: models.BidRejected},
			},
			expected: models.ContractorStats{
				ActiveBids:       0,
				WinRate:          25,
				AvgBidValue:      2,
				JobsWonThisMonth: 2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewStatsAggregator(&memStore{bids: tt.bids}, logger.NewTestLogger(t))

			stats, err := a.ContractorStats(context.Background(), "c1")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stats)
			assert.GreaterOrEqual(t, stats.WinRate, 0)
			assert.LessOrEqual(t, stats.WinRate, 100)
		})
	}
}

func TestStatsAggregator_StoreError(t *testing.T) {
	boom := errors.New("timeout")
	a := NewStatsAggregator(&memStore{err: boom}, logger.NewTestLogger(t))

	_, err := a.TendererStats(context.Background(), "org1")
	assert.ErrorIs(t, err, boom)

	_, err = a.ContractorStats(context.Background(), "c1")
	assert.ErrorIs(t, err, boom)
}
