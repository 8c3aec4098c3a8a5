package recommend

import "github.com/google/uuid"

type Tier string

const (
	TierBeginner     Tier = "beginner"
	TierIntermediate Tier = "intermediate"
	TierAdvanced     Tier = "advanced"
)

// SkillGap is one row of the latest analyzed assessment for a user.
type SkillGap struct {
	SkillID  uuid.UUID
	DomainID uuid.UUID
	GapScore float64
	Priority int
}

// SkillRequirement is the ephemeral, per-request translation of a gap.
// It is never persisted.
type SkillRequirement struct {
	SkillID     uuid.UUID
	DomainID    uuid.UUID
	GapScore    float64
	Proficiency float64
	Priority    int
	Tier        Tier
}

// BuildRequirements materializes requirements for every gap with a positive
// score. Zero-gap skills are dropped: the user has no need there.
func BuildRequirements(gaps []SkillGap) map[uuid.UUID]SkillRequirement {
	out := make(map[uuid.UUID]SkillRequirement, len(gaps))
	for _, g := range gaps {
		if g.SkillID == uuid.Nil || g.GapScore <= 0 {
			continue
		}
		prof := clamp(100-g.GapScore, 0, 100)
		out[g.SkillID] = SkillRequirement{
			SkillID:     g.SkillID,
			DomainID:    g.DomainID,
			GapScore:    g.GapScore,
			Proficiency: prof,
			Priority:    g.Priority,
			Tier:        TierFor(prof),
		}
	}
	return out
}

func TierFor(proficiency float64) Tier {
	switch {
	case proficiency >= 90:
		return TierAdvanced
	case proficiency >= 50:
		return TierIntermediate
	default:
		return TierBeginner
	}
}

// AdmittedLevels lists the course difficulty levels a tier may see: the tier
// itself and everything below it. Courses with no declared difficulty are
// admitted separately by the query, not through this list.
func AdmittedLevels(t Tier) []string {
	switch t {
	case TierAdvanced:
		return []string{string(TierAdvanced), string(TierIntermediate), string(TierBeginner)}
	case TierIntermediate:
		return []string{string(TierIntermediate), string(TierBeginner)}
	default:
		return []string{string(TierBeginner)}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
