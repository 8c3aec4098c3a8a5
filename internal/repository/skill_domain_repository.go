package repository

import (
	"context"

	"tadreeb/internal/database"

	"github.com/google/uuid"
)

type SkillDomain struct {
	ID     uuid.UUID
	NameEN string
	NameAR string
}

type SkillDomainRepository interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]SkillDomain, error)
	// SynonymsByDomainIDs reads the optional domain_synonyms table. It may
	// fail on installations where the table was never provisioned; callers
	// must treat that as "no synonyms", not as a request failure.
	SynonymsByDomainIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]string, error)
}

type PostgresSkillDomainRepository struct {
	db database.DB
}

func NewPostgresSkillDomainRepository(db database.DB) *PostgresSkillDomainRepository {
	return &PostgresSkillDomainRepository{db: db}
}

func (r *PostgresSkillDomainRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]SkillDomain, error) {
	if len(ids) == 0 {
		return []SkillDomain{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT d.id, d.name_en, COALESCE(d.name_ar, '') FROM skill_domains d WHERE d.id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SkillDomain, 0, len(ids))
	for rows.Next() {
		var d SkillDomain
		if err := rows.Scan(&d.ID, &d.NameEN, &d.NameAR); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresSkillDomainRepository) SynonymsByDomainIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]string, error) {
	out := make(map[uuid.UUID][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT ds.domain_id, ds.synonym
		 FROM domain_synonyms ds
		 WHERE ds.domain_id = ANY($1)
		 ORDER BY ds.domain_id, ds.position ASC`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var domainID uuid.UUID
		var synonym string
		if err := rows.Scan(&domainID, &synonym); err != nil {
			return nil, err
		}
		out[domainID] = append(out[domainID], synonym)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ SkillDomainRepository = (*PostgresSkillDomainRepository)(nil)
