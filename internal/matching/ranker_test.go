// internal/matching/ranker_test.go
package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"tender-matching/internal/common/logger"
	"tender-matching/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestTender() models.Tender {
	return models.Tender{
		ID:             "t1",
		OrganizationID: "org-tenderer",
		Title:          "Office fit-out",
		Latitude:       40.0,
		Longitude:      -74.0,
		Budget:         models.Budget{Min: 10000, Max: 50000},
		RequiredSkills: []string{"Electrical", "HVAC"},
		Deadline:       time.Now().Add(30 * 24 * time.Hour),
		Status:         models.TenderOpen,
	}
}

func contractor(id string, lat float64, caps []string, reliability *int, available bool) models.Organization {
	return models.Organization{
		ID:               id,
		Name:             "Contractor " + id,
		Type:             models.OrganizationContractor,
		Latitude:         ptr(lat),
		Longitude:        ptr(-74.0),
		Capabilities:     caps,
		ReliabilityScore: reliability,
		Available:        available,
	}
}

// exampleStore holds the reference scenario: c1 is a perfect nearby fit, c2 is
// 100 km away with unrelated skills, c3 is unavailable.
func exampleStore() *memStore {
	return &memStore{
		tenders: []models.Tender{createTestTender()},
		organizations: []models.Organization{
			contractor("c2", 40.9, []string{"Plumbing"}, nil, true),
			contractor("c1", 40.0, []string{"Electrical Works", "HVAC"}, ptr(80), true),
			contractor("c3", 40.0, []string{"Electrical", "HVAC"}, ptr(100), false),
		},
		expired: map[string]bool{"c2": true},
	}
}

func newTestRanker(t *testing.T, store Store, opts Options) *Ranker {
	return NewRanker(store, opts, logger.NewTestLogger(t))
}

// ==========================
// Tender -> Contractor
// ==========================

func TestRanker_RankContractorsForTender(t *testing.T) {
	r := newTestRanker(t, exampleStore(), DefaultOptions())

	results, err := r.RankContractorsForTender(context.Background(), "t1", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	first := results[0]
	assert.Equal(t, "c1", first.ID)
	assert.Equal(t, 93, first.MatchScore)
	assert.Equal(t, "0km", first.Distance)
	assert.Equal(t, 100, first.SkillsMatch)
	assert.True(t, first.ComplianceValid)
	assert.Equal(t, []models.MatchFactor{
		{Type: models.FactorSkills, Value: "100% skills match"},
		{Type: models.FactorLocation, Value: "0km away"},
		{Type: models.FactorAvailability, Value: "Available now"},
		{Type: models.FactorReliability, Value: "80% reliable"},
	}, first.WhyMatched)

	second := results[1]
	assert.Equal(t, "c2", second.ID)
	assert.Equal(t, 0, second.MatchScore)
	assert.Equal(t, "100km", second.Distance)
	assert.Equal(t, 0, second.SkillsMatch)
	assert.False(t, second.ComplianceValid)
	assert.Equal(t, []models.MatchFactor{
		{Type: models.FactorAvailability, Value: "Available now"},
	}, second.WhyMatched)
}

func TestRanker_RankContractorsForTender_UnknownTender(t *testing.T) {
	r := newTestRanker(t, exampleStore(), DefaultOptions())

	results, err := r.RankContractorsForTender(context.Background(), "missing", 10)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRanker_RankContractorsForTender_ExcludesUnavailable(t *testing.T) {
	r := newTestRanker(t, exampleStore(), DefaultOptions())

	results, err := r.RankContractorsForTender(context.Background(), "t1", 0)
	require.NoError(t, err)
	for _, c := range results {
		assert.NotEqual(t, "c3", c.ID)
		assert.True(t, c.Available)
	}
}

func TestRanker_RankContractorsForTender_Unclamped(t *testing.T) {
	opts := DefaultOptions()
	opts.ClampScores = false
	r := newTestRanker(t, exampleStore(), opts)

	results, err := r.RankContractorsForTender(context.Background(), "t1", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, -22, results[1].MatchScore)
}

func TestRanker_PoolCapModes(t *testing.T) {
	tests := []struct {
		name          string
		mode          PoolCapMode
		expectedID    string
		expectedLimit int
	}{
		// c2 comes first in store order; only post-ranking sees c1
		{name: "post rank scores the whole pool", mode: PostRank, expectedID: "c1", expectedLimit: 0},
		{name: "pre rank caps before scoring", mode: PreRank, expectedID: "c2", expectedLimit: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := exampleStore()
			opts := DefaultOptions()
			opts.PoolCapMode = tt.mode
			r := newTestRanker(t, store, opts)

			results, err := r.RankContractorsForTender(context.Background(), "t1", 1)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tt.expectedID, results[0].ID)
			assert.Equal(t, tt.expectedLimit, store.poolLimitSeen)
		})
	}
}

func TestRanker_DefaultLimitAndTies(t *testing.T) {
	store := &memStore{tenders: []models.Tender{createTestTender()}}
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		store.organizations = append(store.organizations,
			contractor(id, 40.0, []string{"Electrical", "HVAC"}, ptr(80), true))
	}
	r := newTestRanker(t, store, DefaultOptions())

	results, err := r.RankContractorsForTender(context.Background(), "t1", 0)
	require.NoError(t, err)
	require.Len(t, results, DefaultLimit)

	// all scores tie, so store order is kept
	for i, c := range results {
		assert.Equal(t, store.organizations[i].ID, c.ID)
		assert.Equal(t, 93, c.MatchScore)
	}
}

func TestRanker_SortedDescending(t *testing.T) {
	store := exampleStore()
	store.organizations = append(store.organizations,
		contractor("c4", 40.1, []string{"Electrical"}, nil, true))
	r := newTestRanker(t, store, DefaultOptions())

	results, err := r.RankContractorsForTender(context.Background(), "t1", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].MatchScore, results[i].MatchScore)
	}
	assert.Equal(t, []string{"c1", "c4", "c2"}, []string{results[0].ID, results[1].ID, results[2].ID})
	assert.Equal(t, "11km", results[1].Distance)
}

func TestRanker_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	store := exampleStore()
	store.err = boom
	r := newTestRanker(t, store, DefaultOptions())

	_, err := r.RankContractorsForTender(context.Background(), "t1", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	_, err = r.RankTendersForContractor(context.Background(), "c1", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestRanker_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	r := newTestRanker(t, exampleStore(), DefaultOptions())
	_, err := r.RankContractorsForTender(context.Background(), "t1", 5)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "RankContractorsForTender", spans[0].Name())
}

// ==========================
// Contractor -> Tender
// ==========================

func TestRanker_RankTendersForContractor(t *testing.T) {
	near := createTestTender()
	far := createTestTender()
	far.ID = "t2"
	far.Latitude = 40.9
	far.RequiredSkills = []string{"Roofing"}
	closed := createTestTender()
	closed.ID = "t3"
	closed.Status = models.TenderClosed

	store := &memStore{
		tenders: []models.Tender{far, closed, near},
		organizations: []models.Organization{
			contractor("c1", 40.0, []string{"Electrical", "HVAC"}, ptr(90), true),
		},
	}
	r := newTestRanker(t, store, DefaultOptions())

	results, err := r.RankTendersForContractor(context.Background(), "c1", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "t1", results[0].ID)
	assert.Equal(t, 91, results[0].MatchScore)
	assert.Equal(t, "0km", results[0].Distance)
	assert.Equal(t, []models.MatchFactor{
		{Type: models.FactorSkills, Value: "100% skills match"},
		{Type: models.FactorLocation, Value: "0km away"},
		{Type: models.FactorAvailability, Value: "Available now"},
	}, results[0].WhyMatched)

	assert.Equal(t, "t2", results[1].ID)
	assert.Equal(t, 0, results[1].MatchScore)
}

func TestRanker_RankTendersForContractor_UnknownContractor(t *testing.T) {
	r := newTestRanker(t, exampleStore(), DefaultOptions())

	results, err := r.RankTendersForContractor(context.Background(), "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRanker_RankTendersForContractor_MissingLocation(t *testing.T) {
	c := contractor("c1", 0, []string{"Electrical", "HVAC"}, nil, true)
	c.Latitude = nil
	store := &memStore{
		tenders:       []models.Tender{createTestTender()},
		organizations: []models.Organization{c},
	}
	r := newTestRanker(t, store, DefaultOptions())

	results, err := r.RankTendersForContractor(context.Background(), "c1", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	// proximity is 0 at the fallback distance: 100*0.6 + 0 + 10*0.1
	assert.Equal(t, 61, results[0].MatchScore)
	assert.Equal(t, "50km", results[0].Distance)
	for _, f := range results[0].WhyMatched {
		assert.NotEqual(t, models.FactorLocation, f.Type)
	}
}

// ==========================
// Bid scoring
// ==========================

func TestRanker_ScoreBid(t *testing.T) {
	store := exampleStore()
	store.bids = []models.Bid{
		{ID: "b1", TenderID: "t1", ContractorID: "c1", Price: 20000, Status: models.BidPending},
		{ID: "b2", TenderID: "gone", ContractorID: "c1", Price: 20000, Status: models.BidPending},
	}
	r := newTestRanker(t, store, DefaultOptions())

	score, found, err := r.ScoreBid(context.Background(), "b1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 93, score)

	_, found, err = r.ScoreBid(context.Background(), "b2")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = r.ScoreBid(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewRanker_NormalisesOptions(t *testing.T) {
	r := newTestRanker(t, &memStore{}, Options{PoolCapMode: "bogus"})

	assert.Equal(t, DefaultLimit, r.opts.DefaultLimit)
	assert.Equal(t, PostRank, r.opts.PoolCapMode)
	assert.Equal(t, FallbackDistanceKm, r.opts.FallbackDistanceKm)
}
