package usecase

import (
	"context"
	"errors"
	"fmt"

	"tadreeb/internal/graphsync"
	"tadreeb/internal/repository"

	"github.com/google/uuid"
)

type SyncStatus struct {
	SyncedCourses   int `json:"synced_courses"`
	UnsyncedCourses int `json:"unsynced_courses"`
}

type GraphSyncUsecase interface {
	SyncAllCourses(ctx context.Context) (graphsync.Report, error)
	SyncCourse(ctx context.Context, courseID uuid.UUID) error
	SyncUserNeeds(ctx context.Context, userID uuid.UUID) error
	Status(ctx context.Context) (SyncStatus, error)
}

type GraphSync struct {
	syncer  *graphsync.Syncer
	courses repository.CourseRepository
}

func NewGraphSyncUsecase(syncer *graphsync.Syncer, courses repository.CourseRepository) *GraphSync {
	return &GraphSync{syncer: syncer, courses: courses}
}

func (u *GraphSync) SyncAllCourses(ctx context.Context) (graphsync.Report, error) {
	return u.syncer.SyncAll(ctx)
}

func (u *GraphSync) SyncCourse(ctx context.Context, courseID uuid.UUID) error {
	if courseID == uuid.Nil {
		return ErrInvalidInput
	}
	if err := u.syncer.SyncCourse(ctx, courseID); err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	return nil
}

func (u *GraphSync) SyncUserNeeds(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrInvalidInput
	}
	if err := u.syncer.SyncUserNeeds(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (u *GraphSync) Status(ctx context.Context) (SyncStatus, error) {
	synced, unsynced, err := u.courses.SyncCounts(ctx)
	if err != nil {
		return SyncStatus{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return SyncStatus{SyncedCourses: synced, UnsyncedCourses: unsynced}, nil
}

var _ GraphSyncUsecase = (*GraphSync)(nil)
