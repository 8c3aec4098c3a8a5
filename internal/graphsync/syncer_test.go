package graphsync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"tadreeb/internal/infrastructure/graphgw"
	"tadreeb/internal/repository"
)

type fakeEdge struct {
	From  string
	Rel   string
	To    string
	Props map[string]any
}

// fakeGraph records graph state in memory so tests can compare the result of
// repeated syncs structurally.
type fakeGraph struct {
	nodes map[string]map[string]any
	edges []fakeEdge

	relateErrFor string // node id that makes Relate fail
	relateAllErr bool   // every Relate fails
	calls        int
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{nodes: make(map[string]map[string]any)}
}

func nodeKey(ref graphgw.NodeRef) string {
	return fmt.Sprintf("%s/%v", ref.Label, ref.IDValue)
}

func (g *fakeGraph) Run(ctx context.Context, stmt graphgw.Statement) (*graphgw.Result, error) {
	g.calls++
	return &graphgw.Result{}, nil
}

func (g *fakeGraph) MergeNode(ctx context.Context, ref graphgw.NodeRef, props map[string]any) error {
	g.calls++
	g.nodes[nodeKey(ref)] = props
	return nil
}

func (g *fakeGraph) Relate(ctx context.Context, from graphgw.NodeRef, relType string, props map[string]any, to graphgw.NodeRef) error {
	g.calls++
	if g.relateAllErr || (g.relateErrFor != "" && from.IDValue == g.relateErrFor) {
		return fmt.Errorf("gateway write rejected")
	}
	// The real statement MATCHes both endpoints; a missing node makes the
	// write a silent no-op, not an error.
	if _, ok := g.nodes[nodeKey(from)]; !ok {
		return nil
	}
	if _, ok := g.nodes[nodeKey(to)]; !ok {
		return nil
	}
	g.edges = append(g.edges, fakeEdge{From: nodeKey(from), Rel: relType, To: nodeKey(to), Props: props})
	return nil
}

func (g *fakeGraph) DeleteRelationships(ctx context.Context, ref graphgw.NodeRef) error {
	g.calls++
	key := nodeKey(ref)
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.From != key && e.To != key {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	return nil
}

func (g *fakeGraph) DeleteNode(ctx context.Context, ref graphgw.NodeRef) error {
	g.calls++
	delete(g.nodes, nodeKey(ref))
	return nil
}

var _ graphgw.Client = (*fakeGraph)(nil)

type fakeCourses struct {
	courses []repository.Course
	synced  map[uuid.UUID]bool

	markSyncedCalls   int
	markUnsyncedCalls int
}

func newFakeCourses(courses ...repository.Course) *fakeCourses {
	return &fakeCourses{courses: courses, synced: make(map[uuid.UUID]bool)}
}

func (f *fakeCourses) FindByID(ctx context.Context, id uuid.UUID) (repository.Course, error) {
	for _, c := range f.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return repository.Course{}, repository.ErrCourseNotFound
}

func (f *fakeCourses) FindDetailsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]repository.CourseDetail, error) {
	return nil, nil
}

func (f *fakeCourses) ListUnsynced(ctx context.Context, after uuid.UUID, limit int) ([]repository.Course, error) {
	out := make([]repository.Course, 0)
	for _, c := range f.courses {
		if !f.synced[c.ID] && bytes.Compare(c.ID[:], after[:]) > 0 {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCourses) MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.markSyncedCalls++
	f.synced[id] = true
	return nil
}

func (f *fakeCourses) MarkUnsynced(ctx context.Context, id uuid.UUID) error {
	f.markUnsyncedCalls++
	f.synced[id] = false
	return nil
}

func (f *fakeCourses) SyncCounts(ctx context.Context) (int, int, error) {
	synced, unsynced := 0, 0
	for _, c := range f.courses {
		if f.synced[c.ID] {
			synced++
		} else {
			unsynced++
		}
	}
	return synced, unsynced, nil
}

func (f *fakeCourses) SearchByTerms(ctx context.Context, terms []string, limit int) ([]repository.Course, error) {
	return nil, nil
}

var _ repository.CourseRepository = (*fakeCourses)(nil)

type fakeSkills struct {
	byCourse map[uuid.UUID][]repository.Skill
	byID     map[uuid.UUID]repository.Skill
}

func (f *fakeSkills) FindByCourseID(ctx context.Context, courseID uuid.UUID) ([]repository.Skill, error) {
	return f.byCourse[courseID], nil
}

func (f *fakeSkills) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]repository.Skill, error) {
	out := make([]repository.Skill, 0, len(ids))
	for _, id := range ids {
		if s, ok := f.byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

var _ repository.SkillRepository = (*fakeSkills)(nil)

type fakeGaps struct {
	rows []repository.SkillGapRow
	err  error
}

func (f *fakeGaps) LatestByUser(ctx context.Context, userID uuid.UUID) ([]repository.SkillGapRow, error) {
	return f.rows, f.err
}

var _ repository.SkillGapRepository = (*fakeGaps)(nil)

type fakeUsers struct {
	user repository.UserProfile
}

func (f *fakeUsers) FindByID(ctx context.Context, id uuid.UUID) (repository.UserProfile, error) {
	if f.user.ID != id {
		return repository.UserProfile{}, repository.ErrUserNotFound
	}
	return f.user, nil
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newTestSyncer(graph *fakeGraph, courses *fakeCourses, skills *fakeSkills, gaps *fakeGaps, users *fakeUsers, notify Notifier) *Syncer {
	return NewSyncer(graph, courses, skills, gaps, users, time.Nanosecond, nil, notify)
}

func TestSyncCourse_Idempotent(t *testing.T) {
	courseID := uuid.New()
	skillID := uuid.New()
	course := repository.Course{ID: courseID, Name: "SQL Basics"}
	courses := newFakeCourses(course)
	skills := &fakeSkills{byCourse: map[uuid.UUID][]repository.Skill{
		courseID: {{ID: skillID, NameEN: "SQL"}},
	}}
	graph := newFakeGraph()
	s := newTestSyncer(graph, courses, skills, &fakeGaps{}, &fakeUsers{}, nil)

	if err := s.SyncCourse(context.Background(), courseID); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	firstNodes := make(map[string]map[string]any, len(graph.nodes))
	for k, v := range graph.nodes {
		firstNodes[k] = v
	}
	firstEdges := append([]fakeEdge(nil), graph.edges...)

	if err := s.SyncCourse(context.Background(), courseID); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	if !reflect.DeepEqual(graph.nodes, firstNodes) {
		t.Fatalf("node state diverged after re-sync:\n first=%v\nsecond=%v", firstNodes, graph.nodes)
	}
	if !reflect.DeepEqual(graph.edges, firstEdges) {
		t.Fatalf("edge state diverged after re-sync:\n first=%v\nsecond=%v", firstEdges, graph.edges)
	}
	if len(graph.edges) != 1 {
		t.Fatalf("expected exactly 1 edge, got %d", len(graph.edges))
	}
	if !courses.synced[courseID] {
		t.Fatalf("course should be flagged synced")
	}
}

func TestSyncCourse_EdgeRelevanceAttached(t *testing.T) {
	courseID := uuid.New()
	skillID := uuid.New()
	course := repository.Course{ID: courseID, Name: "Advanced SQL"}
	skills := &fakeSkills{byCourse: map[uuid.UUID][]repository.Skill{
		courseID: {{ID: skillID, NameEN: "SQL"}},
	}}
	graph := newFakeGraph()
	s := newTestSyncer(graph, newFakeCourses(course), skills, &fakeGaps{}, &fakeUsers{}, nil)

	if err := s.SyncCourse(context.Background(), courseID); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(graph.edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(graph.edges))
	}
	e := graph.edges[0]
	if e.Rel != "ALIGNS_TO_SKILL" {
		t.Fatalf("expected ALIGNS_TO_SKILL, got %s", e.Rel)
	}
	if got, ok := e.Props["relevance_score"].(float64); !ok || got != 1.0 {
		t.Fatalf("expected relevance_score 1.0 (title match), got %v", e.Props["relevance_score"])
	}
}

func TestSyncCourse_FailureLeavesUnsynced(t *testing.T) {
	courseID := uuid.New()
	course := repository.Course{ID: courseID, Name: "SQL Basics"}
	courses := newFakeCourses(course)
	courses.synced[courseID] = true
	skills := &fakeSkills{byCourse: map[uuid.UUID][]repository.Skill{
		courseID: {{ID: uuid.New(), NameEN: "SQL"}},
	}}
	graph := newFakeGraph()
	graph.relateErrFor = courseID.String()
	s := newTestSyncer(graph, courses, skills, &fakeGaps{}, &fakeUsers{}, nil)

	if err := s.SyncCourse(context.Background(), courseID); err == nil {
		t.Fatalf("expected error from failed edge write")
	}
	if courses.synced[courseID] {
		t.Fatalf("course must stay unsynced after a mid-sequence failure")
	}
	if courses.markSyncedCalls != 0 {
		t.Fatalf("MarkSynced must not run after a failed upsert")
	}
}

func TestSyncAll_ContinuesPastFailures(t *testing.T) {
	bad := repository.Course{ID: uuid.New(), Name: "Broken"}
	good := repository.Course{ID: uuid.New(), Name: "Fine"}
	courses := newFakeCourses(bad, good)
	skills := &fakeSkills{byCourse: map[uuid.UUID][]repository.Skill{
		bad.ID:  {{ID: uuid.New(), NameEN: "SQL"}},
		good.ID: {{ID: uuid.New(), NameEN: "Excel"}},
	}}
	graph := newFakeGraph()
	graph.relateErrFor = bad.ID.String()

	var events []Event
	s := newTestSyncer(graph, courses, skills, &fakeGaps{}, &fakeUsers{}, func(e Event) {
		events = append(events, e)
	})

	report, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if report.Total != 2 || report.Synced != 1 || report.Failed != 1 {
		t.Fatalf("expected total=2 synced=1 failed=1, got %+v", report)
	}
	if !courses.synced[good.ID] {
		t.Fatalf("the healthy course must still be synced")
	}
	if courses.synced[bad.ID] {
		t.Fatalf("the failed course must stay unsynced")
	}

	sawFailed, sawFinished := false, false
	for _, e := range events {
		switch e.Stage {
		case "course_failed":
			sawFailed = true
			if e.CourseID != bad.ID {
				t.Fatalf("course_failed for wrong course: %s", e.CourseID)
			}
		case "finished":
			sawFinished = true
			if e.Report == nil {
				t.Fatalf("finished event carries no report")
			}
		}
	}
	if !sawFailed || !sawFinished {
		t.Fatalf("expected course_failed and finished events, got %+v", events)
	}
}

func TestSyncAll_ReachesCoursesBeyondFailedPages(t *testing.T) {
	// A failed course stays unsynced. The cursor must move past entire pages
	// of failures so every unsynced course gets its attempt.
	courses := newFakeCourses()
	for i := 0; i < 105; i++ {
		courses.courses = append(courses.courses, repository.Course{
			ID:   uuid.New(),
			Name: fmt.Sprintf("Course %03d", i),
		})
	}
	graph := newFakeGraph()
	graph.relateAllErr = true
	skills := &fakeSkills{byCourse: map[uuid.UUID][]repository.Skill{}}
	for _, c := range courses.courses {
		skills.byCourse[c.ID] = []repository.Skill{{ID: uuid.New(), NameEN: "SQL"}}
	}
	s := newTestSyncer(graph, courses, skills, &fakeGaps{}, &fakeUsers{}, nil)

	report, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if report.Total != 105 || report.Failed != 105 {
		t.Fatalf("every unsynced course must be attempted despite full pages of failures, got %+v", report)
	}
}

func TestSyncAll_SinglePassOverFailedCourses(t *testing.T) {
	// A failed course stays unsynced; the cursor must not revisit it within
	// the same run.
	bad := repository.Course{ID: uuid.New(), Name: "Broken"}
	courses := newFakeCourses(bad)
	skills := &fakeSkills{byCourse: map[uuid.UUID][]repository.Skill{
		bad.ID: {{ID: uuid.New(), NameEN: "SQL"}},
	}}
	graph := newFakeGraph()
	graph.relateErrFor = bad.ID.String()
	s := newTestSyncer(graph, courses, skills, &fakeGaps{}, &fakeUsers{}, nil)

	report, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if report.Total != 1 || report.Failed != 1 {
		t.Fatalf("failed course must be attempted exactly once, got %+v", report)
	}
}

func TestSyncUserNeeds_ReplacesEdges(t *testing.T) {
	userID := uuid.New()
	oldSkill := uuid.New()
	newSkill := uuid.New()

	users := &fakeUsers{user: repository.UserProfile{ID: userID, FullName: "Test User"}}
	gaps := &fakeGaps{rows: []repository.SkillGapRow{
		{SkillID: oldSkill, GapScore: 60, Priority: 3},
	}}
	graph := newFakeGraph()
	s := newTestSyncer(graph, newFakeCourses(), &fakeSkills{}, gaps, users, nil)

	if err := s.SyncUserNeeds(context.Background(), userID); err != nil {
		t.Fatalf("first needs sync: %v", err)
	}
	if len(graph.edges) != 1 {
		t.Fatalf("expected 1 NEEDS edge, got %d", len(graph.edges))
	}

	// A new assessment replaces the gap set entirely.
	gaps.rows = []repository.SkillGapRow{
		{SkillID: newSkill, GapScore: 40, Priority: 1},
	}
	if err := s.SyncUserNeeds(context.Background(), userID); err != nil {
		t.Fatalf("second needs sync: %v", err)
	}
	if len(graph.edges) != 1 {
		t.Fatalf("stale NEEDS edges must be removed, got %d edges", len(graph.edges))
	}
	e := graph.edges[0]
	if e.Rel != "NEEDS" {
		t.Fatalf("expected NEEDS, got %s", e.Rel)
	}
	if e.To != "Skill/"+newSkill.String() {
		t.Fatalf("edge points at stale skill: %s", e.To)
	}
	if got := e.Props["gap_score"].(float64); got != 40 {
		t.Fatalf("expected gap_score 40, got %v", got)
	}
}

func TestSyncUserNeeds_CreatesMissingSkillNodes(t *testing.T) {
	// A gap can point at a skill no synced course has created yet; the edge
	// write MATCHes both endpoints, so the skill node must be merged first or
	// the need silently vanishes from the graph.
	userID := uuid.New()
	skillID := uuid.New()

	users := &fakeUsers{user: repository.UserProfile{ID: userID, FullName: "Test User"}}
	gaps := &fakeGaps{rows: []repository.SkillGapRow{
		{SkillID: skillID, GapScore: 70, Priority: 2},
	}}
	skills := &fakeSkills{byID: map[uuid.UUID]repository.Skill{
		skillID: {ID: skillID, NameEN: "SQL"},
	}}
	graph := newFakeGraph()
	s := newTestSyncer(graph, newFakeCourses(), skills, gaps, users, nil)

	if err := s.SyncUserNeeds(context.Background(), userID); err != nil {
		t.Fatalf("needs sync: %v", err)
	}
	node, ok := graph.nodes["Skill/"+skillID.String()]
	if !ok {
		t.Fatalf("skill node must be created before the edge")
	}
	if node["name"] != "SQL" {
		t.Fatalf("skill node should carry catalog properties, got %v", node)
	}
	if len(graph.edges) != 1 || graph.edges[0].To != "Skill/"+skillID.String() {
		t.Fatalf("NEEDS edge must land on the fresh skill node, got %+v", graph.edges)
	}
}

func TestSyncUserNeeds_UnknownUser(t *testing.T) {
	s := newTestSyncer(newFakeGraph(), newFakeCourses(), &fakeSkills{}, &fakeGaps{}, &fakeUsers{}, nil)
	err := s.SyncUserNeeds(context.Background(), uuid.New())
	if !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
