// internal/matching/skills.go
package matching

import "strings"

// SkillsMatch returns the percentage of required skills covered by the available
// capabilities. The value is not rounded; rounding happens on the composite score.
//
// A required skill is covered when, ignoring case, it contains a capability or a
// capability contains it ("Electrical" vs "Electrical Works").
func SkillsMatch(required, available []string) float64 {
	if len(required) == 0 {
		return 100
	}
	if len(available) == 0 {
		return 0
	}
	matched := MatchedSkills(required, available)
	return float64(len(matched)) / float64(len(required)) * 100
}

// MatchedSkills returns the required skills covered by available, in input order.
// Blank capabilities are ignored; they would otherwise match every skill.
func MatchedSkills(required, available []string) []string {
	caps := make([]string, 0, len(available))
	for _, c := range available {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			caps = append(caps, c)
		}
	}

	matched := make([]string, 0, len(required))
	for _, skill := range required {
		s := strings.ToLower(skill)
		for _, c := range caps {
			if strings.Contains(c, s) || strings.Contains(s, c) {
				matched = append(matched, skill)
				break
			}
		}
	}
	return matched
}
