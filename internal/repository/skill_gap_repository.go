package repository

import (
	"context"

	"tadreeb/internal/database"

	"github.com/google/uuid"
)

// SkillGapRow is read-only assessment output. Rows belong to the assessment
// that produced them; only the most recent assessment's set is relevant.
type SkillGapRow struct {
	SkillID  uuid.UUID
	DomainID uuid.UUID
	GapScore float64
	Priority int
}

type SkillGapRepository interface {
	LatestByUser(ctx context.Context, userID uuid.UUID) ([]SkillGapRow, error)
}

type PostgresSkillGapRepository struct {
	db database.DB
}

func NewPostgresSkillGapRepository(db database.DB) *PostgresSkillGapRepository {
	return &PostgresSkillGapRepository{db: db}
}

func (r *PostgresSkillGapRepository) LatestByUser(ctx context.Context, userID uuid.UUID) ([]SkillGapRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT sg.skill_id, s.domain_id, sg.gap_score, COALESCE(sg.priority, 0)
		 FROM skill_gaps sg
		 JOIN skills s ON s.id = sg.skill_id
		 WHERE sg.user_id = $1
		   AND sg.assessment_id = (
		       SELECT assessment_id FROM skill_gaps
		       WHERE user_id = $1
		       ORDER BY created_at DESC
		       LIMIT 1)`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SkillGapRow, 0)
	for rows.Next() {
		var g SkillGapRow
		if err := rows.Scan(&g.SkillID, &g.DomainID, &g.GapScore, &g.Priority); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ SkillGapRepository = (*PostgresSkillGapRepository)(nil)
