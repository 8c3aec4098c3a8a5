package recommend

import (
	"testing"

	"github.com/google/uuid"
)

func TestBuildRequirements_DropsZeroGaps(t *testing.T) {
	s1 := uuid.New()
	s2 := uuid.New()

	reqs := BuildRequirements([]SkillGap{
		{SkillID: s1, GapScore: 40, Priority: 2},
		{SkillID: s2, GapScore: 0, Priority: 5},
		{SkillID: uuid.Nil, GapScore: 30},
	})

	if len(reqs) != 1 {
		t.Fatalf("expected 1 requirement, got %d", len(reqs))
	}
	if _, ok := reqs[s2]; ok {
		t.Fatalf("zero-gap skill must not be materialized")
	}
	r, ok := reqs[s1]
	if !ok {
		t.Fatalf("missing requirement for gapped skill")
	}
	if r.Proficiency != 60 {
		t.Fatalf("expected proficiency 60, got %v", r.Proficiency)
	}
}

func TestBuildRequirements_EmptyInput(t *testing.T) {
	if got := BuildRequirements(nil); len(got) != 0 {
		t.Fatalf("expected empty map, got %d entries", len(got))
	}
}

func TestBuildRequirements_ProficiencyClamped(t *testing.T) {
	s1 := uuid.New()
	reqs := BuildRequirements([]SkillGap{{SkillID: s1, GapScore: 150}})
	r := reqs[s1]
	if r.Proficiency != 0 {
		t.Fatalf("expected clamped proficiency 0, got %v", r.Proficiency)
	}
	if r.Tier != TierBeginner {
		t.Fatalf("expected beginner, got %s", r.Tier)
	}
}

func TestTierFor_Boundaries(t *testing.T) {
	cases := []struct {
		proficiency float64
		want        Tier
	}{
		{0, TierBeginner},
		{49.9, TierBeginner},
		{50, TierIntermediate},
		{89.9, TierIntermediate},
		{90, TierAdvanced},
		{100, TierAdvanced},
	}
	for _, c := range cases {
		if got := TierFor(c.proficiency); got != c.want {
			t.Fatalf("TierFor(%v) = %s, want %s", c.proficiency, got, c.want)
		}
	}
}

func TestTierFor_MonotonicInProficiency(t *testing.T) {
	rank := map[Tier]int{TierBeginner: 0, TierIntermediate: 1, TierAdvanced: 2}
	prev := rank[TierFor(0)]
	for p := 1.0; p <= 100; p++ {
		cur := rank[TierFor(p)]
		if cur < prev {
			t.Fatalf("tier rank dropped at proficiency %v", p)
		}
		prev = cur
	}
}

func TestAdmittedLevels(t *testing.T) {
	if got := AdmittedLevels(TierBeginner); len(got) != 1 || got[0] != "beginner" {
		t.Fatalf("beginner admits only beginner, got %v", got)
	}
	if got := AdmittedLevels(TierIntermediate); len(got) != 2 {
		t.Fatalf("intermediate admits 2 levels, got %v", got)
	}
	if got := AdmittedLevels(TierAdvanced); len(got) != 3 {
		t.Fatalf("advanced admits 3 levels, got %v", got)
	}
}
