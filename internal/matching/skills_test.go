// internal/matching/skills_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkillsMatch(t *testing.T) {
	tests := []struct {
		name      string
		required  []string
		available []string
		expected  float64
	}{
		{"no requirements", nil, []string{"Plumbing"}, 100},
		{"no requirements and no capabilities", []string{}, nil, 100},
		{"no capabilities", []string{"Plumbing"}, nil, 0},
		{"exact match ignoring case", []string{"hvac"}, []string{"HVAC"}, 100},
		{"capability contains skill", []string{"Electrical"}, []string{"Electrical Works"}, 100},
		{"skill contains capability", []string{"Electrical Works"}, []string{"electrical"}, 100},
		{"half matched", []string{"Plumbing", "Roofing"}, []string{"Plumbing"}, 50},
		{"one of three", []string{"Plumbing", "Roofing", "Glazing"}, []string{"roof"}, 100.0 / 3},
		{"nothing matched", []string{"Roofing"}, []string{"Plumbing"}, 0},
		{"blank capability ignored", []string{"Roofing"}, []string{"", "  "}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SkillsMatch(tt.required, tt.available)
			assert.InDelta(t, tt.expected, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestMatchedSkills_KeepsInputOrder(t *testing.T) {
	got := MatchedSkills(
		[]string{"HVAC", "Roofing", "Electrical"},
		[]string{"electrical installation", "hvac"},
	)
	assert.Equal(t, []string{"HVAC", "Electrical"}, got)
}
