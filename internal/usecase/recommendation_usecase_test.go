package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"tadreeb/internal/infrastructure/graphgw"
	"tadreeb/internal/repository"
)

type stubGapRepo struct {
	rows []repository.SkillGapRow
	err  error
}

func (s *stubGapRepo) LatestByUser(ctx context.Context, userID uuid.UUID) ([]repository.SkillGapRow, error) {
	return s.rows, s.err
}

type stubCourseRepo struct {
	details map[uuid.UUID]repository.CourseDetail
	err     error
}

func (s *stubCourseRepo) FindByID(ctx context.Context, id uuid.UUID) (repository.Course, error) {
	return repository.Course{}, repository.ErrCourseNotFound
}

func (s *stubCourseRepo) FindDetailsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]repository.CourseDetail, error) {
	return s.details, s.err
}

func (s *stubCourseRepo) ListUnsynced(ctx context.Context, after uuid.UUID, limit int) ([]repository.Course, error) {
	return nil, nil
}

func (s *stubCourseRepo) MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (s *stubCourseRepo) MarkUnsynced(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubCourseRepo) SyncCounts(ctx context.Context) (int, int, error) { return 0, 0, nil }

func (s *stubCourseRepo) SearchByTerms(ctx context.Context, terms []string, limit int) ([]repository.Course, error) {
	return nil, nil
}

// stubGraph replays queued results in order and records every statement.
type stubGraph struct {
	results []*graphgw.Result
	errs    []error
	stmts   []graphgw.Statement
}

func (s *stubGraph) Run(ctx context.Context, stmt graphgw.Statement) (*graphgw.Result, error) {
	s.stmts = append(s.stmts, stmt)
	i := len(s.stmts) - 1
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	var res *graphgw.Result
	if i < len(s.results) {
		res = s.results[i]
	}
	if res == nil && err == nil {
		res = &graphgw.Result{}
	}
	return res, err
}

type stubCache struct {
	sets int
}

func (s *stubCache) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	return false, nil
}

func (s *stubCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.sets++
	return nil
}

func matchRow(courseID, skillID uuid.UUID, name string, gap float64, priority int, relevance float64) []any {
	return []any{courseID.String(), skillID.String(), name, gap, float64(priority), relevance}
}

func detailFor(id uuid.UUID, name string) repository.CourseDetail {
	return repository.CourseDetail{Course: repository.Course{ID: id, Name: name}}
}

func TestRecommend_NoAssessment(t *testing.T) {
	u := NewRecommendationUsecase(&stubGapRepo{}, &stubCourseRepo{}, &stubGraph{}, nil, nil)
	_, err := u.Recommend(context.Background(), uuid.New(), 10)
	if !errors.Is(err, ErrNoAssessment) {
		t.Fatalf("expected ErrNoAssessment, got %v", err)
	}
}

func TestRecommend_AllGapsClosed_NoGraphQuery(t *testing.T) {
	gaps := &stubGapRepo{rows: []repository.SkillGapRow{
		{SkillID: uuid.New(), GapScore: 0, Priority: 1},
	}}
	graph := &stubGraph{}
	u := NewRecommendationUsecase(gaps, &stubCourseRepo{}, graph, nil, nil)

	result, err := u.Recommend(context.Background(), uuid.New(), 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(result.Courses) != 0 {
		t.Fatalf("expected empty course list, got %d", len(result.Courses))
	}
	if len(graph.stmts) != 0 {
		t.Fatalf("closed gaps must not reach the graph, saw %d queries", len(graph.stmts))
	}
}

func TestRecommend_PrimaryPath(t *testing.T) {
	userID := uuid.New()
	skillID := uuid.New()
	courseID := uuid.New()

	gaps := &stubGapRepo{rows: []repository.SkillGapRow{
		{SkillID: skillID, GapScore: 80, Priority: 3},
	}}
	graph := &stubGraph{results: []*graphgw.Result{
		{Rows: [][]any{matchRow(courseID, skillID, "SQL", 80, 3, 1.0)}},
	}}
	courses := &stubCourseRepo{details: map[uuid.UUID]repository.CourseDetail{
		courseID: detailFor(courseID, "SQL Basics"),
	}}
	cache := &stubCache{}
	u := NewRecommendationUsecase(gaps, courses, graph, cache, nil)

	result, err := u.Recommend(context.Background(), userID, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if result.QueryPath != QueryPathFiltered {
		t.Fatalf("expected filtered path, got %s", result.QueryPath)
	}
	if len(result.Courses) != 1 {
		t.Fatalf("expected 1 course, got %d", len(result.Courses))
	}
	got := result.Courses[0]
	if got.CourseID != courseID || got.Name != "SQL Basics" {
		t.Fatalf("unexpected course: %+v", got)
	}
	if got.RecommendationScore != 80 {
		t.Fatalf("expected score 80, got %v", got.RecommendationScore)
	}
	if len(graph.stmts) != 1 {
		t.Fatalf("primary hit must not trigger the fallback, saw %d queries", len(graph.stmts))
	}
	if cache.sets != 1 {
		t.Fatalf("result should be cached once, got %d sets", cache.sets)
	}
}

func TestRecommend_FallbackWhenPrimaryEmpty(t *testing.T) {
	userID := uuid.New()
	skillID := uuid.New()
	courseID := uuid.New()

	gaps := &stubGapRepo{rows: []repository.SkillGapRow{
		{SkillID: skillID, GapScore: 60, Priority: 2},
	}}
	graph := &stubGraph{results: []*graphgw.Result{
		{}, // primary finds nothing
		{Rows: [][]any{matchRow(courseID, skillID, "Excel", 60, 2, 1.0)}},
	}}
	courses := &stubCourseRepo{details: map[uuid.UUID]repository.CourseDetail{
		courseID: detailFor(courseID, "Excel Deep Dive"),
	}}
	u := NewRecommendationUsecase(gaps, courses, graph, nil, nil)

	result, err := u.Recommend(context.Background(), userID, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if result.QueryPath != QueryPathFallback {
		t.Fatalf("expected fallback path, got %s", result.QueryPath)
	}
	if len(result.Courses) != 1 {
		t.Fatalf("expected 1 course via fallback, got %d", len(result.Courses))
	}
	if len(graph.stmts) != 2 {
		t.Fatalf("expected primary then fallback, saw %d queries", len(graph.stmts))
	}
	if strings.Contains(graph.stmts[1].Text, "difficulty_level IN") {
		t.Fatalf("fallback query must not filter on difficulty")
	}
}

func TestRecommend_EmptyAfterFallbackIsNotAnError(t *testing.T) {
	gaps := &stubGapRepo{rows: []repository.SkillGapRow{
		{SkillID: uuid.New(), GapScore: 50, Priority: 1},
	}}
	graph := &stubGraph{results: []*graphgw.Result{{}, {}}}
	u := NewRecommendationUsecase(gaps, &stubCourseRepo{}, graph, nil, nil)

	result, err := u.Recommend(context.Background(), uuid.New(), 10)
	if err != nil {
		t.Fatalf("an empty catalog is a valid result, got %v", err)
	}
	if len(result.Courses) != 0 {
		t.Fatalf("expected no courses, got %d", len(result.Courses))
	}
}

func TestRecommend_GatewayDownIsUnavailable(t *testing.T) {
	gaps := &stubGapRepo{rows: []repository.SkillGapRow{
		{SkillID: uuid.New(), GapScore: 50, Priority: 1},
	}}
	graph := &stubGraph{errs: []error{graphgw.ErrUnavailable}}
	u := NewRecommendationUsecase(gaps, &stubCourseRepo{}, graph, nil, nil)

	_, err := u.Recommend(context.Background(), uuid.New(), 10)
	if !errors.Is(err, ErrRecommendationUnavailable) {
		t.Fatalf("expected ErrRecommendationUnavailable, got %v", err)
	}
}

func TestRecommend_MalformedRowsAreUnavailable(t *testing.T) {
	gaps := &stubGapRepo{rows: []repository.SkillGapRow{
		{SkillID: uuid.New(), GapScore: 50, Priority: 1},
	}}
	graph := &stubGraph{results: []*graphgw.Result{
		{Rows: [][]any{{"not-a-uuid", "also-bad", "x", 1.0, 1.0, 1.0}}},
	}}
	u := NewRecommendationUsecase(gaps, &stubCourseRepo{}, graph, nil, nil)

	_, err := u.Recommend(context.Background(), uuid.New(), 10)
	if !errors.Is(err, ErrRecommendationUnavailable) {
		t.Fatalf("expected ErrRecommendationUnavailable, got %v", err)
	}
}

func TestRecommend_MergeDropsMissingAndKeepsOrder(t *testing.T) {
	userID := uuid.New()
	skillID := uuid.New()
	strong := uuid.New()
	missing := uuid.New()
	weak := uuid.New()

	gaps := &stubGapRepo{rows: []repository.SkillGapRow{
		{SkillID: skillID, GapScore: 80, Priority: 3},
	}}
	graph := &stubGraph{results: []*graphgw.Result{
		{Rows: [][]any{
			matchRow(strong, skillID, "SQL", 80, 3, 1.5),
			matchRow(missing, skillID, "SQL", 80, 3, 1.0),
			matchRow(weak, skillID, "SQL", 80, 3, 0.5),
		}},
	}}
	// The middle-ranked course has no relational row and must vanish.
	courses := &stubCourseRepo{details: map[uuid.UUID]repository.CourseDetail{
		strong: detailFor(strong, "Strong"),
		weak:   detailFor(weak, "Weak"),
	}}
	u := NewRecommendationUsecase(gaps, courses, graph, nil, nil)

	result, err := u.Recommend(context.Background(), userID, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(result.Courses) != 2 {
		t.Fatalf("expected 2 courses after dropping the missing one, got %d", len(result.Courses))
	}
	if result.Courses[0].CourseID != strong || result.Courses[1].CourseID != weak {
		t.Fatalf("ranking order must survive the merge: %+v", result.Courses)
	}
}

func TestRecommend_NilUserRejected(t *testing.T) {
	u := NewRecommendationUsecase(&stubGapRepo{}, &stubCourseRepo{}, &stubGraph{}, nil, nil)
	_, err := u.Recommend(context.Background(), uuid.Nil, 10)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestPrimaryStatement_CarriesAdmittedLevels(t *testing.T) {
	userID := uuid.New()
	skillID := uuid.New()

	gaps := &stubGapRepo{rows: []repository.SkillGapRow{
		{SkillID: skillID, GapScore: 5, Priority: 1}, // proficiency 95: advanced
	}}
	graph := &stubGraph{results: []*graphgw.Result{{}, {}}}
	u := NewRecommendationUsecase(gaps, &stubCourseRepo{}, graph, nil, nil)

	if _, err := u.Recommend(context.Background(), userID, 10); err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	params := graph.stmts[0].Parameters
	admitted, ok := params["admitted_levels"].(map[string][]string)
	if !ok {
		t.Fatalf("expected admitted_levels parameter, got %T", params["admitted_levels"])
	}
	levels := admitted[skillID.String()]
	if len(levels) != 3 {
		t.Fatalf("advanced tier admits 3 levels, got %v", levels)
	}
	if params["user_id"] != userID.String() {
		t.Fatalf("user_id parameter mismatch")
	}
}
