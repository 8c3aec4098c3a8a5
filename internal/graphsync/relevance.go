package graphsync

import (
	"strings"

	"tadreeb/internal/repository"
)

const (
	relevanceBase  = 0.5
	relevanceTitle = 0.5
	relevanceDesc  = 0.2
	relevanceTag   = 0.3

	relevanceMin = 0.5
	relevanceMax = 1.5
)

// Relevance weighs how centrally a skill appears in a course's metadata.
// Matching is a case-insensitive substring check against either the Arabic
// or the English skill name. Always within [0.5, 1.5].
func Relevance(course repository.Course, skill repository.Skill) float64 {
	names := skillNames(skill)
	score := relevanceBase
	if len(names) == 0 {
		return score
	}

	if containsAny(course.Name, names) {
		score += relevanceTitle
	}
	if containsAny(course.Description, names) {
		score += relevanceDesc
	}
	if tagMatch(course.SkillTags, names) {
		score += relevanceTag
	}

	if score < relevanceMin {
		score = relevanceMin
	}
	if score > relevanceMax {
		score = relevanceMax
	}
	return score
}

func skillNames(skill repository.Skill) []string {
	out := make([]string, 0, 2)
	for _, n := range []string{skill.NameEN, skill.NameAR} {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

func containsAny(haystack string, needles []string) bool {
	haystack = strings.ToLower(haystack)
	if haystack == "" {
		return false
	}
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func tagMatch(tags []string, names []string) bool {
	for _, tag := range tags {
		if containsAny(tag, names) {
			return true
		}
	}
	return false
}
