package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"tadreeb/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrCourseNotFound = errors.New("course not found")

type Course struct {
	ID              uuid.UUID
	Name            string
	Description     string
	URL             string
	DifficultyLevel string
	Language        string
	Subject         string
	Provider        string
	SkillTags       []string
	SyncedToGraph   bool
	LastSyncedAt    *time.Time
}

// CourseDetail carries the authoritative display fields plus the optional
// AI enrichment row, used when merging graph results back for the client.
type CourseDetail struct {
	Course
	AISummary  *string
	SkillNames []string
}

type CourseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (Course, error)
	FindDetailsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]CourseDetail, error)
	ListUnsynced(ctx context.Context, after uuid.UUID, limit int) ([]Course, error)
	MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkUnsynced(ctx context.Context, id uuid.UUID) error
	SyncCounts(ctx context.Context) (synced int, unsynced int, err error)
	SearchByTerms(ctx context.Context, terms []string, limit int) ([]Course, error)
}

type PostgresCourseRepository struct {
	db database.DB
}

func NewPostgresCourseRepository(db database.DB) *PostgresCourseRepository {
	return &PostgresCourseRepository{db: db}
}

const courseColumns = `c.id, c.name, COALESCE(c.description, ''), COALESCE(c.url, ''),
	 COALESCE(c.difficulty_level, ''), COALESCE(c.language, ''), COALESCE(c.subject, ''),
	 COALESCE(c.provider, ''), COALESCE(c.skill_tags, '{}'), c.synced_to_neo4j, c.last_synced_at`

func scanCourse(row database.Row) (Course, error) {
	var c Course
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.URL, &c.DifficultyLevel,
		&c.Language, &c.Subject, &c.Provider, &c.SkillTags, &c.SyncedToGraph, &c.LastSyncedAt)
	return c, err
}

func (r *PostgresCourseRepository) FindByID(ctx context.Context, id uuid.UUID) (Course, error) {
	row := r.db.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses c WHERE c.id = $1`, id)
	c, err := scanCourse(row)
	if err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return Course{}, ErrCourseNotFound
		}
		return Course{}, err
	}
	return c, nil
}

func (r *PostgresCourseRepository) FindDetailsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]CourseDetail, error) {
	out := make(map[uuid.UUID]CourseDetail, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+courseColumns+`, ce.ai_summary,
		        COALESCE((SELECT array_agg(s.name_en ORDER BY s.name_en)
		                  FROM course_skills cs JOIN skills s ON s.id = cs.skill_id
		                  WHERE cs.course_id = c.id), '{}')
		 FROM courses c
		 LEFT JOIN course_enrichments ce ON ce.course_id = c.id
		 WHERE c.id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var d CourseDetail
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.URL, &d.DifficultyLevel,
			&d.Language, &d.Subject, &d.Provider, &d.SkillTags, &d.SyncedToGraph, &d.LastSyncedAt,
			&d.AISummary, &d.SkillNames); err != nil {
			return nil, err
		}
		out[d.ID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUnsynced pages with a keyset cursor on id. A failed course stays
// unsynced and would occupy an offset page forever; `id > $1` keeps every
// pass moving forward past it.
func (r *PostgresCourseRepository) ListUnsynced(ctx context.Context, after uuid.UUID, limit int) ([]Course, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+courseColumns+` FROM courses c
		 WHERE c.synced_to_neo4j = false AND c.id > $1
		 ORDER BY c.id ASC LIMIT $2`,
		after, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Course, 0)
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.URL, &c.DifficultyLevel,
			&c.Language, &c.Subject, &c.Provider, &c.SkillTags, &c.SyncedToGraph, &c.LastSyncedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresCourseRepository) MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE courses SET synced_to_neo4j = true, last_synced_at = $2 WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *PostgresCourseRepository) MarkUnsynced(ctx context.Context, id uuid.UUID) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE courses SET synced_to_neo4j = false WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *PostgresCourseRepository) SyncCounts(ctx context.Context) (int, int, error) {
	var synced, unsynced int
	row := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE synced_to_neo4j),
		        COUNT(*) FILTER (WHERE NOT synced_to_neo4j)
		 FROM courses`,
	)
	if err := row.Scan(&synced, &unsynced); err != nil {
		return 0, 0, err
	}
	return synced, unsynced, nil
}

func (r *PostgresCourseRepository) SearchByTerms(ctx context.Context, terms []string, limit int) ([]Course, error) {
	patterns := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		patterns = append(patterns, "%"+t+"%")
	}
	if len(patterns) == 0 {
		return []Course{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+courseColumns+`
		 FROM courses c
		 WHERE c.name ILIKE ANY($1) OR c.description ILIKE ANY($1) OR c.subject ILIKE ANY($1)
		 ORDER BY c.name ASC
		 LIMIT $2`,
		patterns, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Course, 0)
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.URL, &c.DifficultyLevel,
			&c.Language, &c.Subject, &c.Provider, &c.SkillTags, &c.SyncedToGraph, &c.LastSyncedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ CourseRepository = (*PostgresCourseRepository)(nil)
