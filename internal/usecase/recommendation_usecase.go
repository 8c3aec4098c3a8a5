package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"tadreeb/internal/domain/recommend"
	"tadreeb/internal/infrastructure/graphgw"
	"tadreeb/internal/repository"

	"github.com/google/uuid"
)

const (
	QueryPathFiltered = "filtered"
	QueryPathFallback = "fallback"

	defaultRecommendationLimit = 10
	maxRecommendationLimit     = 50

	recommendationCacheTTL = 60 * time.Second
)

// GraphQuerier is the read-side slice of the gateway client.
type GraphQuerier interface {
	Run(ctx context.Context, stmt graphgw.Statement) (*graphgw.Result, error)
}

type RankedCourse struct {
	CourseID            uuid.UUID `json:"course_id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	URL                 string    `json:"url"`
	DifficultyLevel     string    `json:"difficulty_level"`
	Language            string    `json:"language"`
	Subject             string    `json:"subject"`
	Provider            string    `json:"provider"`
	AISummary           *string   `json:"ai_summary,omitempty"`
	SkillNames          []string  `json:"skill_names"`
	RecommendationScore float64   `json:"recommendation_score"`
	MatchingSkills      []string  `json:"matching_skills"`
	MaxPriority         int       `json:"max_priority"`
}

type RecommendationResult struct {
	QueryPath string         `json:"query_path"`
	Courses   []RankedCourse `json:"courses"`
}

type RecommendationUsecase interface {
	Recommend(ctx context.Context, userID uuid.UUID, limit int) (RecommendationResult, error)
}

type Recommendation struct {
	gaps    repository.SkillGapRepository
	courses repository.CourseRepository
	graph   GraphQuerier
	cache   RecommendationCache
	logger  *log.Logger
}

func NewRecommendationUsecase(
	gaps repository.SkillGapRepository,
	courses repository.CourseRepository,
	graph GraphQuerier,
	cache RecommendationCache,
	logger *log.Logger,
) *Recommendation {
	return &Recommendation{gaps: gaps, courses: courses, graph: graph, cache: cache, logger: logger}
}

func (u *Recommendation) Recommend(ctx context.Context, userID uuid.UUID, limit int) (RecommendationResult, error) {
	if userID == uuid.Nil {
		return RecommendationResult{}, ErrUnauthorized
	}
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}
	if limit > maxRecommendationLimit {
		limit = maxRecommendationLimit
	}

	cacheKey := RecommendationCacheKey(userID, limit)
	if u.cache != nil {
		var cached RecommendationResult
		if ok, err := u.cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	gapRows, err := u.gaps.LatestByUser(ctx, userID)
	if err != nil {
		return RecommendationResult{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if len(gapRows) == 0 {
		return RecommendationResult{}, ErrNoAssessment
	}

	reqs := recommend.BuildRequirements(toGaps(gapRows))
	if len(reqs) == 0 {
		// Every gap is closed: a valid, empty recommendation set. No graph
		// query is issued.
		return RecommendationResult{QueryPath: QueryPathFiltered, Courses: []RankedCourse{}}, nil
	}

	path := QueryPathFiltered
	matches, err := u.runQuery(ctx, primaryStatement(userID, reqs))
	if err != nil {
		return RecommendationResult{}, err
	}
	if len(matches) == 0 {
		// Overly strict difficulty filter or no aligned courses at all:
		// retry without the filters before reporting emptiness.
		path = QueryPathFallback
		matches, err = u.runQuery(ctx, fallbackStatement(userID, reqs))
		if err != nil {
			return RecommendationResult{}, err
		}
	}

	ranked := recommend.Rank(matches, limit)
	courses, err := u.merge(ctx, ranked)
	if err != nil {
		return RecommendationResult{}, err
	}

	result := RecommendationResult{QueryPath: path, Courses: courses}
	if u.cache != nil {
		_ = u.cache.SetJSON(ctx, cacheKey, result, recommendationCacheTTL)
	}
	return result, nil
}

func (u *Recommendation) runQuery(ctx context.Context, stmt graphgw.Statement) ([]recommend.CourseMatch, error) {
	res, err := u.graph.Run(ctx, stmt)
	if err != nil {
		if errors.Is(err, graphgw.ErrUnavailable) || errors.Is(err, graphgw.ErrMalformedResponse) {
			if u.logger != nil {
				u.logger.Printf("[Recommend] graph query failed | err=%v", err)
			}
			return nil, fmt.Errorf("%w: %v", ErrRecommendationUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	matches, err := parseMatches(res)
	if err != nil {
		if u.logger != nil {
			u.logger.Printf("[Recommend] malformed graph rows | err=%v", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrRecommendationUnavailable, err)
	}
	return matches, nil
}

// merge joins graph course ids back against the relational catalog. Courses
// missing relationally are dropped: the catalog is the source of truth for
// display data. Ranking order is preserved.
func (u *Recommendation) merge(ctx context.Context, ranked []recommend.Ranked) ([]RankedCourse, error) {
	if len(ranked) == 0 {
		return []RankedCourse{}, nil
	}

	ids := make([]uuid.UUID, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.CourseID)
	}
	details, err := u.courses.FindDetailsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	out := make([]RankedCourse, 0, len(ranked))
	for _, r := range ranked {
		d, ok := details[r.CourseID]
		if !ok {
			continue
		}
		matching := make([]string, 0, len(r.MatchingSkills))
		for _, s := range r.MatchingSkills {
			matching = append(matching, s.SkillName)
		}
		out = append(out, RankedCourse{
			CourseID:            d.ID,
			Name:                d.Name,
			Description:         d.Description,
			URL:                 d.URL,
			DifficultyLevel:     d.DifficultyLevel,
			Language:            d.Language,
			Subject:             d.Subject,
			Provider:            d.Provider,
			AISummary:           d.AISummary,
			SkillNames:          d.SkillNames,
			RecommendationScore: r.Score,
			MatchingSkills:      matching,
			MaxPriority:         r.MaxPriority,
		})
	}
	return out, nil
}

func toGaps(rows []repository.SkillGapRow) []recommend.SkillGap {
	out := make([]recommend.SkillGap, 0, len(rows))
	for _, g := range rows {
		out = append(out, recommend.SkillGap{
			SkillID:  g.SkillID,
			DomainID: g.DomainID,
			GapScore: g.GapScore,
			Priority: g.Priority,
		})
	}
	return out
}

var _ RecommendationUsecase = (*Recommendation)(nil)
