// internal/matching/factors.go
package matching

import (
	"fmt"
	"math"

	"tender-matching/internal/models"
)

// ReliableThreshold is the reliability at which a contractor is called out as reliable.
const ReliableThreshold = 70

// FormatDistance renders a distance the way listings display it, e.g. "12km".
func FormatDistance(km float64) string {
	return fmt.Sprintf("%dkm", int(math.Round(km)))
}

// explain builds the why-matched factors in display order. reliability is ignored
// when negative.
func explain(b Breakdown, fallbackKm float64, available bool, reliability int) []models.MatchFactor {
	factors := make([]models.MatchFactor, 0, 4)

	if b.SkillsMatch > 0 {
		factors = append(factors, models.MatchFactor{
			Type:  models.FactorSkills,
			Value: fmt.Sprintf("%d%% skills match", roundInt(b.SkillsMatch)),
		})
	}
	if b.DistanceKm < fallbackKm {
		factors = append(factors, models.MatchFactor{
			Type:  models.FactorLocation,
			Value: fmt.Sprintf("%dkm away", roundInt(b.DistanceKm)),
		})
	}
	if available {
		factors = append(factors, models.MatchFactor{
			Type:  models.FactorAvailability,
			Value: "Available now",
		})
	}
	if reliability >= ReliableThreshold {
		factors = append(factors, models.MatchFactor{
			Type:  models.FactorReliability,
			Value: fmt.Sprintf("%d%% reliable", reliability),
		})
	}
	return factors
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
