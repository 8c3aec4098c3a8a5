package recommend

import (
	"sort"

	"github.com/google/uuid"
)

// coverageBonus rewards courses that cover several needed skills at once:
// each skill beyond the first multiplies the base score by an extra 15%.
const coverageBonus = 0.15

// CourseMatch is one (course, skill) row returned by the graph traversal.
type CourseMatch struct {
	CourseID  uuid.UUID
	SkillID   uuid.UUID
	SkillName string
	GapScore  float64
	Priority  int
	Relevance float64
}

type MatchedSkill struct {
	SkillID   uuid.UUID
	SkillName string
}

type Ranked struct {
	CourseID       uuid.UUID
	Score          float64
	SkillCoverage  int
	MaxPriority    int
	MatchingSkills []MatchedSkill
}

// Rank aggregates traversal rows per course and orders them by
// recommendation score, then max priority, then coverage.
func Rank(matches []CourseMatch, limit int) []Ranked {
	type agg struct {
		base        float64
		maxPriority int
		skills      []MatchedSkill
		seen        map[uuid.UUID]bool
	}

	byCourse := make(map[uuid.UUID]*agg, len(matches))
	order := make([]uuid.UUID, 0, len(matches))

	for _, m := range matches {
		if m.CourseID == uuid.Nil {
			continue
		}
		a, ok := byCourse[m.CourseID]
		if !ok {
			a = &agg{seen: make(map[uuid.UUID]bool)}
			byCourse[m.CourseID] = a
			order = append(order, m.CourseID)
		}
		// A (course, skill) pair contributes once; duplicate traversal rows
		// must not inflate the base.
		if a.seen[m.SkillID] {
			continue
		}
		a.seen[m.SkillID] = true
		a.base += m.GapScore * m.Relevance
		if m.Priority > a.maxPriority {
			a.maxPriority = m.Priority
		}
		a.skills = append(a.skills, MatchedSkill{SkillID: m.SkillID, SkillName: m.SkillName})
	}

	out := make([]Ranked, 0, len(byCourse))
	for _, id := range order {
		a := byCourse[id]
		coverage := len(a.skills)
		score := a.base * (1 + float64(coverage-1)*coverageBonus)
		out = append(out, Ranked{
			CourseID:       id,
			Score:          score,
			SkillCoverage:  coverage,
			MaxPriority:    a.maxPriority,
			MatchingSkills: a.skills,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].MaxPriority != out[j].MaxPriority {
			return out[i].MaxPriority > out[j].MaxPriority
		}
		return out[i].SkillCoverage > out[j].SkillCoverage
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
