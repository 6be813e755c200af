// Package repotest holds a conformance suite every repository.Store
// implementation must pass.
package repotest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/repository"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) repository.Store

var base = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

// Run executes the whole suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s repository.Store)
	}{
		{"UserEmailUnique", testUserEmailUnique},
		{"UserConcurrentDuplicate", testUserConcurrentDuplicate},
		{"UserNotFound", testUserNotFound},
		{"TaskRoundTrip", testTaskRoundTrip},
		{"TaskUpdate", testTaskUpdate},
		{"TaskUpdateRejectsInvalidStatus", testTaskUpdateRejectsInvalidStatus},
		{"TaskList", testTaskList},
		{"EventRejectsInvertedInterval", testEventRejectsInvertedInterval},
		{"EventUpdateRejectsInvertedInterval", testEventUpdateRejectsInvertedInterval},
		{"EventRequiresTask", testEventRequiresTask},
		{"EventsOrderedAndRestartable", testEventsOrderedAndRestartable},
		{"EventDelete", testEventDelete},
		{"DeleteTaskCascades", testDeleteTaskCascades},
		{"DeleteMissingTask", testDeleteMissingTask},
		{"TxRollback", testTxRollback},
		{"TxAbortKeepsEvents", testTxAbortKeepsEvents},
		{"TxCancelledBeforeCommit", testTxCancelledBeforeCommit},
		{"ConcurrentDeleteAndAttach", testConcurrentDeleteAndAttach},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func newTask(title string) *domain.Task {
	return domain.NewTask(title, base)
}

func mustCreateTask(t *testing.T, s repository.Store, title string) *domain.Task {
	t.Helper()
	task := newTask(title)
	if err := s.Tasks().Create(context.Background(), task); err != nil {
		t.Fatalf("create task %q: %v", title, err)
	}
	return task
}

func mustCreateEvent(t *testing.T, s repository.Store, taskID int64, start, end time.Time) *domain.ScheduleEvent {
	t.Helper()
	ev := &domain.ScheduleEvent{TaskID: taskID, StartAt: start, EndAt: end, CreatedAt: base}
	if err := s.Events().Create(context.Background(), ev); err != nil {
		t.Fatalf("create event: %v", err)
	}
	return ev
}

func mustEvents(t *testing.T, s repository.Store, taskID int64) []domain.ScheduleEvent {
	t.Helper()
	events, err := repository.Collect(s.Events().ListByTask(context.Background(), taskID))
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	return events
}

func testUserEmailUnique(t *testing.T, s repository.Store) {
	ctx := context.Background()
	first := &domain.User{Email: "ada@example.com", PasswordHash: "hash-1", CreatedAt: base}
	if err := s.Users().Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("expected generated id")
	}

	second := &domain.User{Email: "ada@example.com", PasswordHash: "hash-2", CreatedAt: base.Add(time.Minute)}
	err := s.Users().Create(ctx, second)
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("expected CONFLICT code, got %v", err)
	}

	got, err := s.Users().GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != first.ID || got.PasswordHash != "hash-1" || !got.CreatedAt.Equal(base) {
		t.Fatalf("first user changed: %+v", got)
	}

	// Uniqueness is exact-match.
	other := &domain.User{Email: "Ada@example.com", PasswordHash: "hash-3", CreatedAt: base}
	if err := s.Users().Create(ctx, other); err != nil {
		t.Fatalf("differently cased email rejected: %v", err)
	}
}

func testUserConcurrentDuplicate(t *testing.T, s repository.Store) {
	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
		others    []error
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := &domain.User{Email: "race@example.com", PasswordHash: fmt.Sprintf("hash-%d", i), CreatedAt: base}
			err := s.Users().Create(context.Background(), u)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrDuplicateEmail):
				conflicts++
			default:
				others = append(others, err)
			}
		}(i)
	}
	wg.Wait()

	if len(others) > 0 {
		t.Fatalf("unexpected errors: %v", others)
	}
	if succeeded != 1 || conflicts != writers-1 {
		t.Fatalf("succeeded=%d conflicts=%d, want 1 and %d", succeeded, conflicts, writers-1)
	}
}

func testUserNotFound(t *testing.T, s repository.Store) {
	ctx := context.Background()
	if _, err := s.Users().GetByID(ctx, 4242); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := s.Users().GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func testTaskRoundTrip(t *testing.T, s repository.Store) {
	ctx := context.Background()
	desc := "quarterly numbers"
	est := 90
	due := time.Date(2025, 1, 3, 17, 30, 0, 250000000, time.UTC)

	task := newTask("Write report")
	task.Description = &desc
	task.EstimatedMinutes = &est
	task.DueAt = &due
	task.Priority = 2
	if err := s.Tasks().Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("expected generated id")
	}

	got, err := s.Tasks().GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Write report" || got.Priority != 2 || got.Status != domain.StatusTodo {
		t.Fatalf("unexpected task: %+v", got)
	}
	if got.Description == nil || *got.Description != desc {
		t.Fatalf("description = %v", got.Description)
	}
	if got.EstimatedMinutes == nil || *got.EstimatedMinutes != est {
		t.Fatalf("estimated minutes = %v", got.EstimatedMinutes)
	}
	if got.DueAt == nil || !got.DueAt.Equal(due) {
		t.Fatalf("due at = %v, want %v", got.DueAt, due)
	}
	if !got.CreatedAt.Equal(base) || !got.UpdatedAt.Equal(base) {
		t.Fatalf("timestamps = %v / %v", got.CreatedAt, got.UpdatedAt)
	}

	bare := mustCreateTask(t, s, "bare")
	got, err = s.Tasks().GetByID(ctx, bare.ID)
	if err != nil {
		t.Fatalf("get bare: %v", err)
	}
	if got.Description != nil || got.EstimatedMinutes != nil || got.DueAt != nil {
		t.Fatalf("optional fields should stay unset: %+v", got)
	}
}

func testTaskUpdate(t *testing.T, s repository.Store) {
	ctx := context.Background()
	task := mustCreateTask(t, s, "draft")

	title := "final"
	status := domain.StatusDone
	later := base.Add(2 * time.Hour)
	updated, err := s.Tasks().Update(ctx, task.ID, domain.TaskPatch{Title: &title, Status: &status}, later)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "final" || updated.Status != domain.StatusDone {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if !updated.UpdatedAt.Equal(later) || !updated.CreatedAt.Equal(base) {
		t.Fatalf("timestamps = %v / %v", updated.CreatedAt, updated.UpdatedAt)
	}

	back := domain.StatusTodo
	if _, err := s.Tasks().Update(ctx, task.ID, domain.TaskPatch{Status: &back}, later.Add(time.Minute)); err != nil {
		t.Fatalf("DONE -> TODO should be allowed: %v", err)
	}

	if _, err := s.Tasks().Update(ctx, 9999, domain.TaskPatch{Title: &title}, later); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func testTaskUpdateRejectsInvalidStatus(t *testing.T, s repository.Store) {
	ctx := context.Background()
	task := mustCreateTask(t, s, "status")

	bad := domain.TaskStatus("ARCHIVED")
	_, err := s.Tasks().Update(ctx, task.ID, domain.TaskPatch{Status: &bad}, base.Add(time.Hour))
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	got, err := s.Tasks().GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusTodo || !got.UpdatedAt.Equal(base) {
		t.Fatalf("rejected update left traces: %+v", got)
	}
}

func testTaskList(t *testing.T, s repository.Store) {
	ctx := context.Background()
	a := mustCreateTask(t, s, "a")
	b := mustCreateTask(t, s, "b")
	mustCreateTask(t, s, "c")

	done := domain.StatusDone
	if _, err := s.Tasks().Update(ctx, b.ID, domain.TaskPatch{Status: &done}, base); err != nil {
		t.Fatalf("update: %v", err)
	}

	all, err := s.Tasks().List(ctx, repository.TaskFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != a.ID {
		t.Fatalf("unexpected list: %+v", all)
	}

	finished, err := s.Tasks().List(ctx, repository.TaskFilter{Status: domain.StatusDone})
	if err != nil {
		t.Fatalf("list done: %v", err)
	}
	if len(finished) != 1 || finished[0].ID != b.ID {
		t.Fatalf("unexpected done list: %+v", finished)
	}

	page, err := s.Tasks().List(ctx, repository.TaskFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 1 || page[0].ID != b.ID {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func testEventRejectsInvertedInterval(t *testing.T, s repository.Store) {
	ctx := context.Background()
	task := mustCreateTask(t, s, "interval")

	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"inverted", base, base.Add(-time.Hour)},
		{"zero length", base, base},
	}
	for _, c := range cases {
		ev := &domain.ScheduleEvent{TaskID: task.ID, StartAt: c.start, EndAt: c.end, CreatedAt: base}
		if err := s.Events().Create(ctx, ev); !errors.Is(err, domain.ErrInvalidInterval) {
			t.Fatalf("%s: expected ErrInvalidInterval, got %v", c.name, err)
		}
	}
	if events := mustEvents(t, s, task.ID); len(events) != 0 {
		t.Fatalf("rejected events were stored: %+v", events)
	}
}

func testEventUpdateRejectsInvertedInterval(t *testing.T, s repository.Store) {
	ctx := context.Background()
	task := mustCreateTask(t, s, "interval update")
	ev := mustCreateEvent(t, s, task.ID, base, base.Add(time.Hour))

	bad := *ev
	bad.EndAt = ev.StartAt.Add(-time.Minute)
	if err := s.Events().Update(ctx, &bad); !errors.Is(err, domain.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}

	got, err := s.Events().GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.StartAt.Equal(ev.StartAt) || !got.EndAt.Equal(ev.EndAt) {
		t.Fatalf("event changed after rejected update: %+v", got)
	}

	source := "auto"
	good := *ev
	good.StartAt = base.Add(30 * time.Minute)
	good.EndAt = base.Add(90 * time.Minute)
	good.Source = &source
	if err := s.Events().Update(ctx, &good); err != nil {
		t.Fatalf("valid update: %v", err)
	}
	got, err = s.Events().GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.StartAt.Equal(good.StartAt) || got.Source == nil || *got.Source != "auto" || got.TaskID != task.ID {
		t.Fatalf("update not persisted: %+v", got)
	}

	missing := good
	missing.ID = 9999
	if err := s.Events().Update(ctx, &missing); !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func testEventRequiresTask(t *testing.T, s repository.Store) {
	ev := &domain.ScheduleEvent{TaskID: 777, StartAt: base, EndAt: base.Add(time.Hour), CreatedAt: base}
	err := s.Events().Create(context.Background(), ev)
	if !errors.Is(err, domain.ErrDanglingTask) {
		t.Fatalf("expected ErrDanglingTask, got %v", err)
	}
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("dangling reference should be a validation error: %v", err)
	}
}

func testEventsOrderedAndRestartable(t *testing.T, s repository.Store) {
	task := mustCreateTask(t, s, "ordered")
	other := mustCreateTask(t, s, "other")

	late := mustCreateEvent(t, s, task.ID, base.Add(3*time.Hour), base.Add(4*time.Hour))
	early := mustCreateEvent(t, s, task.ID, base, base.Add(time.Hour))
	mustCreateEvent(t, s, other.ID, base.Add(-time.Hour), base)

	seq := s.Events().ListByTask(context.Background(), task.ID)
	events, err := repository.Collect(seq)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(events) != 2 || events[0].ID != early.ID || events[1].ID != late.ID {
		t.Fatalf("unexpected order: %+v", events)
	}

	middle := mustCreateEvent(t, s, task.ID, base.Add(time.Hour), base.Add(2*time.Hour))
	events, err = repository.Collect(seq)
	if err != nil {
		t.Fatalf("collect again: %v", err)
	}
	if len(events) != 3 || events[1].ID != middle.ID {
		t.Fatalf("second pass should see the new event: %+v", events)
	}

	// Stopping early must not leak or fail.
	for ev, err := range seq {
		if err != nil {
			t.Fatalf("range: %v", err)
		}
		if ev.ID != early.ID {
			t.Fatalf("first event = %d, want %d", ev.ID, early.ID)
		}
		break
	}

	if events := mustEvents(t, s, 123456); len(events) != 0 {
		t.Fatalf("unknown task should have no events: %+v", events)
	}
}

func testEventDelete(t *testing.T, s repository.Store) {
	ctx := context.Background()
	task := mustCreateTask(t, s, "leaf")
	ev := mustCreateEvent(t, s, task.ID, base, base.Add(time.Hour))

	if err := s.Events().Delete(ctx, ev.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Events().Delete(ctx, ev.ID); !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
	if _, err := s.Tasks().GetByID(ctx, task.ID); err != nil {
		t.Fatalf("task should survive event delete: %v", err)
	}
}

func testDeleteTaskCascades(t *testing.T, s repository.Store) {
	ctx := context.Background()
	task := mustCreateTask(t, s, "cascade")
	keep := mustCreateTask(t, s, "keep")

	var ids []int64
	for i := 0; i < 4; i++ {
		start := base.Add(time.Duration(i) * time.Hour)
		ids = append(ids, mustCreateEvent(t, s, task.ID, start, start.Add(30*time.Minute)).ID)
	}
	kept := mustCreateEvent(t, s, keep.ID, base, base.Add(time.Hour))

	removed, err := s.Tasks().Delete(ctx, task.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != len(ids) {
		t.Fatalf("removed %d events, want %d", removed, len(ids))
	}

	if _, err := s.Tasks().GetByID(ctx, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if events := mustEvents(t, s, task.ID); len(events) != 0 {
		t.Fatalf("orphaned events: %+v", events)
	}
	for _, id := range ids {
		if _, err := s.Events().GetByID(ctx, id); !errors.Is(err, domain.ErrEventNotFound) {
			t.Fatalf("event %d still readable: %v", id, err)
		}
	}
	if _, err := s.Events().GetByID(ctx, kept.ID); err != nil {
		t.Fatalf("unrelated event removed: %v", err)
	}
}

func testDeleteMissingTask(t *testing.T, s repository.Store) {
	if _, err := s.Tasks().Delete(context.Background(), 31337); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func testTxRollback(t *testing.T, s repository.Store) {
	ctx := context.Background()
	boom := errors.New("boom")
	var created int64

	err := s.WithinTx(ctx, func(tx repository.Store) error {
		task := newTask("rolled back")
		if err := tx.Tasks().Create(ctx, task); err != nil {
			return err
		}
		created = task.ID
		ev := &domain.ScheduleEvent{TaskID: task.ID, StartAt: base, EndAt: base.Add(time.Hour), CreatedAt: base}
		if err := tx.Events().Create(ctx, ev); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if _, err := s.Tasks().GetByID(ctx, created); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("task survived rollback: %v", err)
	}
	if events := mustEvents(t, s, created); len(events) != 0 {
		t.Fatalf("events survived rollback: %+v", events)
	}
}

func testTxAbortKeepsEvents(t *testing.T, s repository.Store) {
	ctx := context.Background()
	task := mustCreateTask(t, s, "abort")
	mustCreateEvent(t, s, task.ID, base, base.Add(time.Hour))
	mustCreateEvent(t, s, task.ID, base.Add(time.Hour), base.Add(2*time.Hour))

	abort := errors.New("caller aborted")
	err := s.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Tasks().Delete(ctx, task.ID); err != nil {
			return err
		}
		return abort
	})
	if !errors.Is(err, abort) {
		t.Fatalf("expected abort error, got %v", err)
	}

	if _, err := s.Tasks().GetByID(ctx, task.ID); err != nil {
		t.Fatalf("task lost after aborted delete: %v", err)
	}
	if events := mustEvents(t, s, task.ID); len(events) != 2 {
		t.Fatalf("events after aborted delete = %d, want 2", len(events))
	}
}

// testTxCancelledBeforeCommit gives up on the context after every write
// succeeded. The callback returns nil, yet nothing may be committed.
func testTxCancelledBeforeCommit(t *testing.T, s repository.Store) {
	bg := context.Background()
	kept := mustCreateTask(t, s, "kept")
	mustCreateEvent(t, s, kept.ID, base, base.Add(time.Hour))

	ctx, cancel := context.WithCancel(bg)
	defer cancel()
	var created int64
	err := s.WithinTx(ctx, func(tx repository.Store) error {
		task := newTask("never committed")
		if err := tx.Tasks().Create(ctx, task); err != nil {
			return err
		}
		created = task.ID
		if _, err := tx.Tasks().Delete(ctx, kept.ID); err != nil {
			return err
		}
		cancel()
		return nil
	})
	if err == nil {
		t.Fatal("cancelled transaction reported success")
	}
	if created == 0 {
		t.Fatalf("writes inside the transaction failed early: %v", err)
	}

	if _, err := s.Tasks().GetByID(bg, created); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("task from cancelled transaction is visible: %v", err)
	}
	if _, err := s.Tasks().GetByID(bg, kept.ID); err != nil {
		t.Fatalf("delete from cancelled transaction took effect: %v", err)
	}
	if events := mustEvents(t, s, kept.ID); len(events) != 1 {
		t.Fatalf("events after cancelled delete = %d, want 1", len(events))
	}
}

// testConcurrentDeleteAndAttach races event inserts against the owner's
// delete. Whatever the interleaving, no event may outlive its task.
func testConcurrentDeleteAndAttach(t *testing.T, s repository.Store) {
	ctx := context.Background()
	task := mustCreateTask(t, s, "race")

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := base.Add(time.Duration(i) * time.Hour)
			ev := &domain.ScheduleEvent{TaskID: task.ID, StartAt: start, EndAt: start.Add(time.Hour), CreatedAt: base}
			if err := s.Events().Create(ctx, ev); err != nil && !errors.Is(err, domain.ErrDanglingTask) {
				errs <- err
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := s.Tasks().Delete(ctx, task.ID); err != nil {
			errs <- err
		}
	}()
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}
	if events := mustEvents(t, s, task.ID); len(events) != 0 {
		t.Fatalf("events outlived their task: %+v", events)
	}
}
