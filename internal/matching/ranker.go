// internal/matching/ranker.go
package matching

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tender-matching/internal/common/logger"
	"tender-matching/internal/common/metrics"
	"tender-matching/internal/models"
)

const (
	DefaultLimit = 10

	tracerName = "tender-matching/matching"
)

// PoolCapMode decides whether the result limit is applied to the candidate pool
// before scoring or to the ranked list after scoring.
type PoolCapMode string

const (
	PostRank PoolCapMode = "post_rank"
	PreRank  PoolCapMode = "pre_rank"
)

func (m PoolCapMode) Valid() bool {
	return m == PostRank || m == PreRank
}

type Options struct {
	DefaultLimit       int
	PoolCapMode        PoolCapMode
	FallbackDistanceKm float64
	ClampScores        bool
	TenderToContractor Weights
	ContractorToTender Weights
}

func DefaultOptions() Options {
	return Options{
		DefaultLimit:       DefaultLimit,
		PoolCapMode:        PostRank,
		FallbackDistanceKm: FallbackDistanceKm,
		ClampScores:        true,
		TenderToContractor: DefaultTenderToContractorWeights,
		ContractorToTender: DefaultContractorToTenderWeights,
	}
}

// Ranker scores and orders candidates for a tender or a contractor.
type Ranker struct {
	store      Store
	opts       Options
	compositor *Compositor
	logger     logger.Logger
	tracer     trace.Tracer
}

func NewRanker(store Store, opts Options, log logger.Logger) *Ranker {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if !opts.PoolCapMode.Valid() {
		opts.PoolCapMode = PostRank
	}
	if opts.FallbackDistanceKm <= 0 {
		opts.FallbackDistanceKm = FallbackDistanceKm
	}
	return &Ranker{
		store:      store,
		opts:       opts,
		compositor: NewCompositor(opts.ClampScores),
		logger:     log.WithFields(map[string]interface{}{"component": "ranker"}),
		tracer:     otel.Tracer(tracerName),
	}
}

// RankContractorsForTender returns available contractors ordered by how well they
// fit the tender. An unknown tender yields an empty list.
func (r *Ranker) RankContractorsForTender(ctx context.Context, tenderID string, limit int) ([]models.ScoredContractor, error) {
	start := time.Now()
	limit = r.effectiveLimit(limit)

	ctx, span := r.tracer.Start(ctx, "RankContractorsForTender", trace.WithAttributes(
		attribute.String("tender.id", tenderID),
		attribute.Int("limit", limit),
	))
	defer span.End()

	results, err := r.rankContractors(ctx, tenderID, limit)
	r.observe(span, TenderToContractor, start, len(results), err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Ranker) rankContractors(ctx context.Context, tenderID string, limit int) ([]models.ScoredContractor, error) {
	tender, err := r.store.GetTender(ctx, tenderID)
	if err != nil {
		return nil, fmt.Errorf("load tender %s: %w", tenderID, err)
	}
	if tender == nil {
		r.logger.Debug("Tender not found, nothing to rank", map[string]interface{}{"tenderId": tenderID})
		return []models.ScoredContractor{}, nil
	}

	pool, err := r.store.ListAvailableContractors(ctx, r.poolLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list available contractors: %w", err)
	}

	expired, err := r.expiredHolders(ctx, pool)
	if err != nil {
		return nil, err
	}

	results := make([]models.ScoredContractor, 0, len(pool))
	for _, c := range pool {
		if !c.Available {
			continue
		}
		reliability := c.Reliability()
		distance := DistanceWithFallback(&tender.Latitude, &tender.Longitude, c.Latitude, c.Longitude, r.opts.FallbackDistanceKm)
		b := r.compositor.Compose(Inputs{
			SkillsMatch: SkillsMatch(tender.RequiredSkills, c.Capabilities),
			DistanceKm:  distance,
			Reliability: reliability,
			Available:   c.Available,
		}, r.opts.TenderToContractor)

		results = append(results, models.ScoredContractor{
			Organization:    c,
			MatchScore:      b.Score,
			Distance:        FormatDistance(b.DistanceKm),
			SkillsMatch:     roundInt(b.SkillsMatch),
			ComplianceValid: !expired[c.ID],
			WhyMatched:      explain(b, r.opts.FallbackDistanceKm, c.Available, reliability),
		})
	}
	metrics.MatchCandidatesScored.WithLabelValues(string(TenderToContractor)).Add(float64(len(results)))

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// RankTendersForContractor returns open tenders ordered by how well the contractor
// fits them. An unknown contractor yields an empty list.
func (r *Ranker) RankTendersForContractor(ctx context.Context, contractorID string, limit int) ([]models.ScoredTender, error) {
	start := time.Now()
	limit = r.effectiveLimit(limit)

	ctx, span := r.tracer.Start(ctx, "RankTendersForContractor", trace.WithAttributes(
		attribute.String("contractor.id", contractorID),
		attribute.Int("limit", limit),
	))
	defer span.End()

	results, err := r.rankTenders(ctx, contractorID, limit)
	r.observe(span, ContractorToTender, start, len(results), err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Ranker) rankTenders(ctx context.Context, contractorID string, limit int) ([]models.ScoredTender, error) {
	contractor, err := r.store.GetOrganization(ctx, contractorID)
	if err != nil {
		return nil, fmt.Errorf("load contractor %s: %w", contractorID, err)
	}
	if contractor == nil {
		r.logger.Debug("Contractor not found, nothing to rank", map[string]interface{}{"contractorId": contractorID})
		return []models.ScoredTender{}, nil
	}

	pool, err := r.store.ListOpenTenders(ctx, r.poolLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list open tenders: %w", err)
	}

	results := make([]models.ScoredTender, 0, len(pool))
	for _, t := range pool {
		if t.Status != models.TenderOpen {
			continue
		}
		distance := DistanceWithFallback(contractor.Latitude, contractor.Longitude, &t.Latitude, &t.Longitude, r.opts.FallbackDistanceKm)
		b := r.compositor.Compose(Inputs{
			SkillsMatch: SkillsMatch(t.RequiredSkills, contractor.Capabilities),
			DistanceKm:  distance,
			Available:   contractor.Available,
		}, r.opts.ContractorToTender)

		results = append(results, models.ScoredTender{
			Tender:      t,
			MatchScore:  b.Score,
			Distance:    FormatDistance(b.DistanceKm),
			SkillsMatch: roundInt(b.SkillsMatch),
			WhyMatched:  explain(b, r.opts.FallbackDistanceKm, contractor.Available, -1),
		})
	}
	metrics.MatchCandidatesScored.WithLabelValues(string(ContractorToTender)).Add(float64(len(results)))

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ScoreBid computes the tender-to-contractor score for an existing bid. found is
// false when the bid, its tender or its contractor no longer exists.
func (r *Ranker) ScoreBid(ctx context.Context, bidID string) (score int, found bool, err error) {
	ctx, span := r.tracer.Start(ctx, "ScoreBid", trace.WithAttributes(attribute.String("bid.id", bidID)))
	defer span.End()

	bid, err := r.store.GetBid(ctx, bidID)
	if err != nil {
		return 0, false, fmt.Errorf("load bid %s: %w", bidID, err)
	}
	if bid == nil {
		return 0, false, nil
	}
	tender, err := r.store.GetTender(ctx, bid.TenderID)
	if err != nil {
		return 0, false, fmt.Errorf("load tender %s: %w", bid.TenderID, err)
	}
	contractor, err := r.store.GetOrganization(ctx, bid.ContractorID)
	if err != nil {
		return 0, false, fmt.Errorf("load contractor %s: %w", bid.ContractorID, err)
	}
	if tender == nil || contractor == nil {
		return 0, false, nil
	}

	distance := DistanceWithFallback(&tender.Latitude, &tender.Longitude, contractor.Latitude, contractor.Longitude, r.opts.FallbackDistanceKm)
	score = r.compositor.Score(Inputs{
		SkillsMatch: SkillsMatch(tender.RequiredSkills, contractor.Capabilities),
		DistanceKm:  distance,
		Reliability: contractor.Reliability(),
		Available:   contractor.Available,
	}, r.opts.TenderToContractor)

	span.SetAttributes(attribute.Int("bid.match_score", score))
	return score, true, nil
}

func (r *Ranker) expiredHolders(ctx context.Context, pool []models.Organization) (map[string]bool, error) {
	if len(pool) == 0 {
		return map[string]bool{}, nil
	}
	ids := make([]string, 0, len(pool))
	for _, c := range pool {
		ids = append(ids, c.ID)
	}
	expired, err := r.store.ExpiredComplianceHolders(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load compliance status: %w", err)
	}
	return expired, nil
}

func (r *Ranker) effectiveLimit(limit int) int {
	if limit <= 0 {
		return r.opts.DefaultLimit
	}
	return limit
}

// poolLimit is the candidate cap passed to the store; 0 asks for the whole pool.
func (r *Ranker) poolLimit(limit int) int {
	if r.opts.PoolCapMode == PreRank {
		return limit
	}
	return 0
}

func (r *Ranker) observe(span trace.Span, dir Direction, start time.Time, n int, err error) {
	duration := time.Since(start)
	metrics.MatchRankingDuration.WithLabelValues(string(dir)).Observe(duration.Seconds())

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Error("Ranking failed", map[string]interface{}{
			"direction": dir,
			"error":     err.Error(),
		})
	case n == 0:
		outcome = "empty"
	}
	metrics.MatchRankings.WithLabelValues(string(dir), outcome).Inc()
	span.SetAttributes(attribute.Int("results", n))

	r.logger.Debug("Ranking finished", map[string]interface{}{
		"direction":  dir,
		"results":    n,
		"outcome":    outcome,
		"durationMs": duration.Milliseconds(),
	})
}
