package repository

import (
	"context"

	"tadreeb/internal/database"

	"github.com/google/uuid"
)

type Skill struct {
	ID       uuid.UUID
	NameEN   string
	NameAR   string
	DomainID uuid.UUID
	Weight   float64
}

type SkillRepository interface {
	FindByCourseID(ctx context.Context, courseID uuid.UUID) ([]Skill, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Skill, error)
}

type PostgresSkillRepository struct {
	db database.DB
}

func NewPostgresSkillRepository(db database.DB) *PostgresSkillRepository {
	return &PostgresSkillRepository{db: db}
}

const skillColumns = `s.id, s.name_en, COALESCE(s.name_ar, ''), s.domain_id, COALESCE(s.weight, 1)`

func (r *PostgresSkillRepository) FindByCourseID(ctx context.Context, courseID uuid.UUID) ([]Skill, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+skillColumns+`
		 FROM course_skills cs
		 JOIN skills s ON s.id = cs.skill_id
		 WHERE cs.course_id = $1
		 ORDER BY s.name_en ASC`,
		courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSkills(rows)
}

func (r *PostgresSkillRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Skill, error) {
	if len(ids) == 0 {
		return []Skill{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+skillColumns+` FROM skills s WHERE s.id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSkills(rows)
}

func collectSkills(rows database.Rows) ([]Skill, error) {
	out := make([]Skill, 0)
	for rows.Next() {
		var s Skill
		if err := rows.Scan(&s.ID, &s.NameEN, &s.NameAR, &s.DomainID, &s.Weight); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ SkillRepository = (*PostgresSkillRepository)(nil)
