package usecase

import (
	"fmt"

	"tadreeb/internal/domain/recommend"
	"tadreeb/internal/infrastructure/graphgw"

	"github.com/google/uuid"
)

// The traversal is anchored on skill ids through NEEDS and ALIGNS_TO_SKILL
// edges; matching is structural, never textual. Query text is fixed, all
// values travel as parameters.
const primaryQueryText = `MATCH (u:User {user_id: $user_id})-[n:NEEDS]->(s:Skill)<-[r:ALIGNS_TO_SKILL]-(c:Course)
WHERE s.skill_id IN $skill_ids
  AND n.gap_score > 0
  AND (c.difficulty_level IS NULL OR c.difficulty_level = '' OR c.difficulty_level IN $admitted_levels[s.skill_id])
RETURN c.course_id AS course_id, s.skill_id AS skill_id, s.name AS skill_name,
       n.gap_score AS gap_score, n.priority AS priority, r.relevance_score AS relevance_score`

const fallbackQueryText = `MATCH (u:User {user_id: $user_id})-[n:NEEDS]->(s:Skill)<-[r:ALIGNS_TO_SKILL]-(c:Course)
WHERE s.skill_id IN $skill_ids
  AND n.gap_score > 0
RETURN c.course_id AS course_id, s.skill_id AS skill_id, s.name AS skill_name,
       n.gap_score AS gap_score, n.priority AS priority, r.relevance_score AS relevance_score`

func primaryStatement(userID uuid.UUID, reqs map[uuid.UUID]recommend.SkillRequirement) graphgw.Statement {
	skillIDs := make([]string, 0, len(reqs))
	admitted := make(map[string][]string, len(reqs))
	for id, req := range reqs {
		sid := id.String()
		skillIDs = append(skillIDs, sid)
		admitted[sid] = recommend.AdmittedLevels(req.Tier)
	}
	return graphgw.Statement{
		Text: primaryQueryText,
		Parameters: map[string]any{
			"user_id":         userID.String(),
			"skill_ids":       skillIDs,
			"admitted_levels": admitted,
		},
	}
}

func fallbackStatement(userID uuid.UUID, reqs map[uuid.UUID]recommend.SkillRequirement) graphgw.Statement {
	skillIDs := make([]string, 0, len(reqs))
	for id := range reqs {
		skillIDs = append(skillIDs, id.String())
	}
	return graphgw.Statement{
		Text: fallbackQueryText,
		Parameters: map[string]any{
			"user_id":   userID.String(),
			"skill_ids": skillIDs,
		},
	}
}

// parseMatches decodes gateway rows in the RETURN column order above.
func parseMatches(res *graphgw.Result) ([]recommend.CourseMatch, error) {
	if res == nil {
		return nil, fmt.Errorf("%w: nil result", graphgw.ErrMalformedResponse)
	}
	out := make([]recommend.CourseMatch, 0, len(res.Rows))
	for i, row := range res.Rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("%w: row %d has %d columns", graphgw.ErrMalformedResponse, i, len(row))
		}
		courseID, err := parseUUIDValue(row[0])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d course_id: %v", graphgw.ErrMalformedResponse, i, err)
		}
		skillID, err := parseUUIDValue(row[1])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d skill_id: %v", graphgw.ErrMalformedResponse, i, err)
		}
		skillName, _ := row[2].(string)
		gapScore, err := parseNumberValue(row[3])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d gap_score: %v", graphgw.ErrMalformedResponse, i, err)
		}
		priority, err := parseNumberValue(row[4])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d priority: %v", graphgw.ErrMalformedResponse, i, err)
		}
		relevance, err := parseNumberValue(row[5])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d relevance_score: %v", graphgw.ErrMalformedResponse, i, err)
		}
		out = append(out, recommend.CourseMatch{
			CourseID:  courseID,
			SkillID:   skillID,
			SkillName: skillName,
			GapScore:  gapScore,
			Priority:  int(priority),
			Relevance: relevance,
		})
	}
	return out, nil
}

func parseUUIDValue(v any) (uuid.UUID, error) {
	s, ok := v.(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("not a string: %T", v)
	}
	return uuid.Parse(s)
}

func parseNumberValue(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
