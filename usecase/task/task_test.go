package task

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/repository"
	"github.com/fastygo/planner/repository/bolt"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newUseCase(t *testing.T) (*UseCase, repository.Store) {
	t.Helper()
	store, err := bolt.Open(filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(store, clock.Now, nil), store
}

func TestCreateForcesTodo(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	estimate := 30
	created, err := uc.Create(ctx, CreateTaskInput{
		Title:            "Write report",
		EstimatedMinutes: &estimate,
		Priority:         2,
		Status:           domain.StatusDone,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != domain.StatusTodo {
		t.Fatalf("status = %q, want TODO", created.Status)
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("created_at %v != updated_at %v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := uc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Write report" || got.Priority != 2 || got.EstimatedMinutes == nil || *got.EstimatedMinutes != 30 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestCreateValidation(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	if _, err := uc.Create(ctx, CreateTaskInput{Title: " "}); !errors.Is(err, domain.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	negative := -1
	if _, err := uc.Create(ctx, CreateTaskInput{Title: "a", EstimatedMinutes: &negative}); !errors.Is(err, domain.ErrNegativeEstimate) {
		t.Fatalf("expected ErrNegativeEstimate, got %v", err)
	}
}

func TestUpdateStatusAnyToAny(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	task, err := uc.Create(ctx, CreateTaskInput{Title: "cycle"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	last := task.UpdatedAt
	for _, status := range []string{"DONE", "TODO", "IN_PROGRESS", "DONE", "IN_PROGRESS", "TODO"} {
		updated, err := uc.UpdateStatus(ctx, task.ID, status)
		if err != nil {
			t.Fatalf("to %s: %v", status, err)
		}
		if string(updated.Status) != status {
			t.Fatalf("status = %q, want %q", updated.Status, status)
		}
		if !updated.UpdatedAt.After(last) {
			t.Fatalf("updated_at not refreshed: %v <= %v", updated.UpdatedAt, last)
		}
		last = updated.UpdatedAt
	}
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	task, err := uc.Create(ctx, CreateTaskInput{Title: "stuck"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := uc.UpdateStatus(ctx, task.ID, "ARCHIVED"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	got, err := uc.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusTodo || !got.UpdatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("rejected update changed the row: %+v", got)
	}
}

func TestUpdateFields(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	task, err := uc.Create(ctx, CreateTaskInput{Title: "draft"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "final"
	desc := "ship it"
	updated, err := uc.UpdateFields(ctx, task.ID, domain.TaskPatch{Title: &title, Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "final" || updated.Description == nil || *updated.Description != "ship it" {
		t.Fatalf("patch not applied: %+v", updated)
	}

	empty := ""
	if _, err := uc.UpdateFields(ctx, task.ID, domain.TaskPatch{Title: &empty}); !errors.Is(err, domain.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if _, err := uc.UpdateFields(ctx, task.ID+100, domain.TaskPatch{Title: &title}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		if _, err := uc.Create(ctx, CreateTaskInput{Title: title}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := uc.UpdateStatus(ctx, 2, "DONE"); err != nil {
		t.Fatalf("update: %v", err)
	}

	done, err := uc.List(ctx, repository.TaskFilter{Status: domain.StatusDone})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(done) != 1 || done[0].ID != 2 {
		t.Fatalf("done = %+v", done)
	}

	page, err := uc.List(ctx, repository.TaskFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 || page[0].ID != 2 || page[1].ID != 3 {
		t.Fatalf("page = %+v", page)
	}

	if _, err := uc.List(ctx, repository.TaskFilter{Status: "LATER"}); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestDeleteReportsRemovedEvents(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()
	task, err := uc.Create(ctx, CreateTaskInput{Title: "with events"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	start := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ev := &domain.ScheduleEvent{
			TaskID:    task.ID,
			StartAt:   start.Add(time.Duration(i) * time.Hour),
			EndAt:     start.Add(time.Duration(i)*time.Hour + 30*time.Minute),
			CreatedAt: start,
		}
		if err := store.Events().Create(ctx, ev); err != nil {
			t.Fatalf("create event: %v", err)
		}
	}

	removed, err := uc.Delete(ctx, task.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}
	if _, err := uc.Delete(ctx, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}
