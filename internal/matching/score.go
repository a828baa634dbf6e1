// internal/matching/score.go
package matching

import "math"

// Direction identifies which side of the marketplace is being ranked.
type Direction string

const (
	TenderToContractor Direction = "tender_to_contractor"
	ContractorToTender Direction = "contractor_to_tender"
)

const (
	// ProximityRangeKm is the distance at which proximity reaches zero.
	ProximityRangeKm = 50.0

	// AvailabilityBonus is awarded before weighting when the contractor is available.
	AvailabilityBonus = 10.0
)

// Weights scales each factor of the composite score.
type Weights struct {
	Skills       float64 `mapstructure:"skills"`
	Proximity    float64 `mapstructure:"proximity"`
	Reliability  float64 `mapstructure:"reliability"`
	Availability float64 `mapstructure:"availability"`
}

var (
	DefaultTenderToContractorWeights = Weights{Skills: 0.50, Proximity: 0.30, Reliability: 0.15, Availability: 0.05}
	DefaultContractorToTenderWeights = Weights{Skills: 0.60, Proximity: 0.30, Reliability: 0, Availability: 0.10}
)

// Inputs are the per-pair facts the compositor combines.
type Inputs struct {
	SkillsMatch float64
	DistanceKm  float64
	Reliability int
	Available   bool
}

// Breakdown keeps the intermediate values so callers can explain a score.
type Breakdown struct {
	SkillsMatch float64
	DistanceKm  float64
	Proximity   float64
	Raw         float64
	Score       int
}

// Proximity falls off linearly from 100 at 0 km to 0 at ProximityRangeKm.
// Only the upper bound is clamped: candidates further away go negative.
func Proximity(distanceKm float64) float64 {
	return math.Min(100, (1-distanceKm/ProximityRangeKm)*100)
}

type Compositor struct {
	clamp bool
}

// NewCompositor builds a compositor. With clamp set the final score is kept in [0,100].
func NewCompositor(clamp bool) *Compositor {
	return &Compositor{clamp: clamp}
}

func (c *Compositor) Compose(in Inputs, w Weights) Breakdown {
	proximity := Proximity(in.DistanceKm)

	bonus := 0.0
	if in.Available {
		bonus = AvailabilityBonus
	}

	// explicit conversions keep each product rounded before the sum, so the
	// result does not depend on FMA availability
	raw := float64(in.SkillsMatch*w.Skills) +
		float64(proximity*w.Proximity) +
		float64(float64(in.Reliability)/100*100*w.Reliability) +
		float64(bonus*w.Availability)

	score := int(math.Round(raw))
	if c.clamp {
		score = clampScore(score)
	}

	return Breakdown{
		SkillsMatch: in.SkillsMatch,
		DistanceKm:  in.DistanceKm,
		Proximity:   proximity,
		Raw:         raw,
		Score:       score,
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Score is Compose without the breakdown.
func (c *Compositor) Score(in Inputs, w Weights) int {
	return c.Compose(in, w).Score
}
