package graphsync

import (
	"context"
	"fmt"
	"log"
	"time"

	"tadreeb/internal/infrastructure/graphgw"
	"tadreeb/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	labelCourse = "Course"
	labelSkill  = "Skill"
	labelUser   = "User"

	relAlignsToSkill = "ALIGNS_TO_SKILL"
	relNeeds         = "NEEDS"

	courseIDKey = "course_id"
	skillIDKey  = "skill_id"
	userIDKey   = "user_id"

	unsyncedPageSize = 100
)

// Report tallies one bulk sync run. A failed course stays unsynced and is
// retried on the next run; the batch itself never aborts.
type Report struct {
	Total  int
	Synced int
	Failed int
}

type Event struct {
	Stage    string    `json:"stage"`
	CourseID uuid.UUID `json:"course_id,omitzero"`
	Error    string    `json:"error,omitempty"`
	Report   *Report   `json:"report,omitempty"`
}

type Notifier func(Event)

// Syncer keeps graph Course/Skill/User nodes and their edges consistent with
// the relational catalog. The graph has no native merge for relationships,
// so a course upsert is delete-relationships, delete-node, recreate-node,
// recreate-relationships. The sequence is idempotent but not atomic: a crash
// mid-way leaves the course flagged unsynced for the next repair pass.
type Syncer struct {
	graph   graphgw.Client
	courses repository.CourseRepository
	skills  repository.SkillRepository
	gaps    repository.SkillGapRepository
	users   repository.UserRepository

	// Gateway writes are deliberately throttled; sync is a maintenance path
	// and the gateway rate limit matters more than throughput.
	limiter *rate.Limiter
	logger  *log.Logger
	notify  Notifier

	now func() time.Time
}

func NewSyncer(
	graph graphgw.Client,
	courses repository.CourseRepository,
	skills repository.SkillRepository,
	gaps repository.SkillGapRepository,
	users repository.UserRepository,
	writeInterval time.Duration,
	logger *log.Logger,
	notify Notifier,
) *Syncer {
	if writeInterval <= 0 {
		writeInterval = 200 * time.Millisecond
	}
	return &Syncer{
		graph:   graph,
		courses: courses,
		skills:  skills,
		gaps:    gaps,
		users:   users,
		limiter: rate.NewLimiter(rate.Every(writeInterval), 1),
		logger:  logger,
		notify:  notify,
		now:     time.Now,
	}
}

func (s *Syncer) emit(e Event) {
	if s.notify != nil {
		s.notify(e)
	}
}

func (s *Syncer) write(ctx context.Context, op func(context.Context) error) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	return op(ctx)
}

// SyncCourse upserts one course node and its ALIGNS_TO_SKILL edges. Any
// failure leaves synced_to_neo4j false so a later pass retries.
func (s *Syncer) SyncCourse(ctx context.Context, courseID uuid.UUID) error {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return err
	}
	skills, err := s.skills.FindByCourseID(ctx, courseID)
	if err != nil {
		return err
	}

	if err := s.courses.MarkUnsynced(ctx, courseID); err != nil {
		return err
	}

	if err := s.upsertCourse(ctx, course, skills); err != nil {
		if s.logger != nil {
			s.logger.Printf("[GraphSync] course sync failed | course=%s err=%v", courseID, err)
		}
		return err
	}

	return s.courses.MarkSynced(ctx, courseID, s.now().UTC())
}

func (s *Syncer) upsertCourse(ctx context.Context, course repository.Course, skills []repository.Skill) error {
	ref := graphgw.NodeRef{Label: labelCourse, IDKey: courseIDKey, IDValue: course.ID.String()}

	if err := s.write(ctx, func(ctx context.Context) error {
		return s.graph.DeleteRelationships(ctx, ref)
	}); err != nil {
		return fmt.Errorf("delete relationships: %w", err)
	}
	if err := s.write(ctx, func(ctx context.Context) error {
		return s.graph.DeleteNode(ctx, ref)
	}); err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	if err := s.write(ctx, func(ctx context.Context) error {
		return s.graph.MergeNode(ctx, ref, courseProps(course))
	}); err != nil {
		return fmt.Errorf("create node: %w", err)
	}

	for _, skill := range skills {
		skillRef := graphgw.NodeRef{Label: labelSkill, IDKey: skillIDKey, IDValue: skill.ID.String()}
		if err := s.write(ctx, func(ctx context.Context) error {
			return s.graph.MergeNode(ctx, skillRef, skillProps(skill))
		}); err != nil {
			return fmt.Errorf("create skill node %s: %w", skill.ID, err)
		}
		props := map[string]any{"relevance_score": Relevance(course, skill)}
		if err := s.write(ctx, func(ctx context.Context) error {
			return s.graph.Relate(ctx, ref, relAlignsToSkill, props, skillRef)
		}); err != nil {
			return fmt.Errorf("create edge to skill %s: %w", skill.ID, err)
		}
	}
	return nil
}

// SyncAll processes every unsynced course. Per-course failures are logged
// and tallied; the loop continues to the next course.
func (s *Syncer) SyncAll(ctx context.Context) (Report, error) {
	report := Report{}
	s.emit(Event{Stage: "started"})

	// Keyset cursor: failed courses stay unsynced, so offset paging would
	// re-read them forever and starve everything behind them. Advancing past
	// the last seen id makes the run a single pass over every unsynced
	// course; failures are left for the next repair run.
	after := uuid.Nil

	for {
		batch, err := s.courses.ListUnsynced(ctx, after, unsyncedPageSize)
		if err != nil {
			s.emit(Event{Stage: "finished", Error: err.Error(), Report: &report})
			return report, err
		}
		if len(batch) == 0 {
			break
		}
		after = batch[len(batch)-1].ID

		for _, course := range batch {
			report.Total++
			if err := s.SyncCourse(ctx, course.ID); err != nil {
				report.Failed++
				s.emit(Event{Stage: "course_failed", CourseID: course.ID, Error: err.Error()})
				if ctx.Err() != nil {
					s.emit(Event{Stage: "finished", Error: ctx.Err().Error(), Report: &report})
					return report, ctx.Err()
				}
				continue
			}
			report.Synced++
			s.emit(Event{Stage: "course_synced", CourseID: course.ID})
		}
	}

	if s.logger != nil {
		s.logger.Printf("[GraphSync] bulk sync done | total=%d synced=%d failed=%d", report.Total, report.Synced, report.Failed)
	}
	s.emit(Event{Stage: "finished", Report: &report})
	return report, nil
}

// SyncUserNeeds replaces the user's NEEDS edges with the latest assessment's
// gap set. Stale edges are fully removed, never merged.
func (s *Syncer) SyncUserNeeds(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	gaps, err := s.gaps.LatestByUser(ctx, userID)
	if err != nil {
		return err
	}

	// The edge statement MATCHes both endpoints; relating against a skill
	// node that no synced course has created yet would silently do nothing.
	// Merge the gap skills first so every edge lands.
	skillIDs := make([]uuid.UUID, 0, len(gaps))
	for _, gap := range gaps {
		skillIDs = append(skillIDs, gap.SkillID)
	}
	skills, err := s.skills.FindByIDs(ctx, skillIDs)
	if err != nil {
		return err
	}
	skillByID := make(map[uuid.UUID]repository.Skill, len(skills))
	for _, skill := range skills {
		skillByID[skill.ID] = skill
	}

	userRef := graphgw.NodeRef{Label: labelUser, IDKey: userIDKey, IDValue: user.ID.String()}
	if err := s.write(ctx, func(ctx context.Context) error {
		return s.graph.MergeNode(ctx, userRef, userProps(user))
	}); err != nil {
		return fmt.Errorf("create user node: %w", err)
	}
	if err := s.write(ctx, func(ctx context.Context) error {
		return s.graph.DeleteRelationships(ctx, userRef)
	}); err != nil {
		return fmt.Errorf("delete needs edges: %w", err)
	}

	for _, gap := range gaps {
		skillRef := graphgw.NodeRef{Label: labelSkill, IDKey: skillIDKey, IDValue: gap.SkillID.String()}
		nodeProps := map[string]any{skillIDKey: gap.SkillID.String()}
		if skill, ok := skillByID[gap.SkillID]; ok {
			nodeProps = skillProps(skill)
		}
		if err := s.write(ctx, func(ctx context.Context) error {
			return s.graph.MergeNode(ctx, skillRef, nodeProps)
		}); err != nil {
			return fmt.Errorf("create skill node %s: %w", gap.SkillID, err)
		}
		props := map[string]any{"gap_score": gap.GapScore, "priority": gap.Priority}
		if err := s.write(ctx, func(ctx context.Context) error {
			return s.graph.Relate(ctx, userRef, relNeeds, props, skillRef)
		}); err != nil {
			return fmt.Errorf("create needs edge to skill %s: %w", gap.SkillID, err)
		}
	}
	return nil
}

func courseProps(c repository.Course) map[string]any {
	return map[string]any{
		courseIDKey:        c.ID.String(),
		"name":             c.Name,
		"description":      c.Description,
		"url":              c.URL,
		"difficulty_level": c.DifficultyLevel,
		"language":         c.Language,
		"subject":          c.Subject,
	}
}

func skillProps(s repository.Skill) map[string]any {
	return map[string]any{
		skillIDKey: s.ID.String(),
		"name":     s.NameEN,
		"name_ar":  s.NameAR,
		"weight":   s.Weight,
	}
}

func userProps(u repository.UserProfile) map[string]any {
	return map[string]any{
		userIDKey:   u.ID.String(),
		"full_name": u.FullName,
		"email":     u.Email,
	}
}
