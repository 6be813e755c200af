package schedule

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/repository"
	"github.com/fastygo/planner/repository/bolt"
	taskUseCase "github.com/fastygo/planner/usecase/task"
)

var nine = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) (*UseCase, *taskUseCase.UseCase) {
	t.Helper()
	store, err := bolt.Open(filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return New(store, nil, nil), taskUseCase.New(store, nil, nil)
}

func TestWriteReportScenario(t *testing.T) {
	events, tasks := newFixture(t)
	ctx := context.Background()

	task, err := tasks.Create(ctx, taskUseCase.CreateTaskInput{Title: "Write report"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != domain.StatusTodo {
		t.Fatalf("status = %q", task.Status)
	}
	if d := task.UpdatedAt.Sub(task.CreatedAt); d < 0 || d > time.Second {
		t.Fatalf("updated_at drifted from created_at by %v", d)
	}

	_, err = events.Add(ctx, AddEventInput{TaskID: task.ID, StartAt: nine, EndAt: nine.Add(-time.Hour)})
	if !errors.Is(err, domain.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
	if got, _ := repository.Collect(events.ForTask(ctx, task.ID)); len(got) != 0 {
		t.Fatalf("rejected event was stored: %+v", got)
	}

	if _, err := events.Add(ctx, AddEventInput{TaskID: task.ID, StartAt: nine, EndAt: nine.Add(time.Hour)}); err != nil {
		t.Fatalf("add event: %v", err)
	}

	removed, err := tasks.Delete(ctx, task.ID)
	if err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	got, err := repository.Collect(events.ForTask(ctx, task.ID))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("events survived their task: %+v", got)
	}
	if _, err := tasks.Get(ctx, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestAddRequiresTask(t *testing.T) {
	events, _ := newFixture(t)
	_, err := events.Add(context.Background(), AddEventInput{TaskID: 42, StartAt: nine, EndAt: nine.Add(time.Hour)})
	if !errors.Is(err, domain.ErrDanglingTask) {
		t.Fatalf("expected ErrDanglingTask, got %v", err)
	}
}

func TestUpdateMergesAndValidates(t *testing.T) {
	events, tasks := newFixture(t)
	ctx := context.Background()
	task, err := tasks.Create(ctx, taskUseCase.CreateTaskInput{Title: "focus"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	source := "calendar"
	ev, err := events.Add(ctx, AddEventInput{TaskID: task.ID, StartAt: nine, EndAt: nine.Add(time.Hour), Source: &source})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	// Moving only the start past the stored end must fail.
	late := nine.Add(2 * time.Hour)
	if _, err := events.Update(ctx, ev.ID, domain.EventPatch{StartAt: &late}); !errors.Is(err, domain.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
	got, err := events.Get(ctx, ev.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.StartAt.Equal(nine) {
		t.Fatalf("rejected update changed start to %v", got.StartAt)
	}

	end := nine.Add(3 * time.Hour)
	updated, err := events.Update(ctx, ev.ID, domain.EventPatch{StartAt: &late, EndAt: &end})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.StartAt.Equal(late) || !updated.EndAt.Equal(end) {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Source == nil || *updated.Source != "calendar" || updated.TaskID != task.ID {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	if _, err := events.Update(ctx, ev.ID+10, domain.EventPatch{EndAt: &end}); !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestForTaskOrderedAndRestartable(t *testing.T) {
	events, tasks := newFixture(t)
	ctx := context.Background()
	task, err := tasks.Create(ctx, taskUseCase.CreateTaskInput{Title: "blocks"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	for _, offset := range []time.Duration{3 * time.Hour, time.Hour, 2 * time.Hour} {
		start := nine.Add(offset)
		if _, err := events.Add(ctx, AddEventInput{TaskID: task.ID, StartAt: start, EndAt: start.Add(30 * time.Minute)}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	seq := events.ForTask(ctx, task.ID)
	first, err := repository.Collect(seq)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("got %d events", len(first))
	}
	for i := 1; i < len(first); i++ {
		if !first[i-1].StartAt.Before(first[i].StartAt) {
			t.Fatalf("events out of order: %+v", first)
		}
	}

	if err := events.Delete(ctx, first[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	second, err := repository.Collect(seq)
	if err != nil {
		t.Fatalf("collect again: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("re-ranging should re-query, got %d events", len(second))
	}

	if err := events.Delete(ctx, first[0].ID); !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestForTaskMissingTaskIsEmpty(t *testing.T) {
	events, _ := newFixture(t)
	got, err := repository.Collect(events.ForTask(context.Background(), 99))
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty sequence, got %v, %v", got, err)
	}
}
