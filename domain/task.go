package domain

import (
	"strings"
	"time"
)

// TaskStatus is the closed set of states a task can be in.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

// Valid reports whether s is one of the enumerated statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// ParseTaskStatus converts raw input into a TaskStatus.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(raw)
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Task represents a unit of work. Its schedule events are not embedded;
// they are resolved on demand through the event repository.
type Task struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Description      *string    `json:"description,omitempty"`
	EstimatedMinutes *int       `json:"estimated_minutes,omitempty"`
	DueAt            *time.Time `json:"due_at,omitempty"`
	Priority         int        `json:"priority"`
	Status           TaskStatus `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewTask builds a task in its initial state. The status is always TODO.
func NewTask(title string, now time.Time) *Task {
	now = Timestamp(now)
	return &Task{
		Title:     title,
		Status:    StatusTodo,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the fields every stored task must carry.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if t.EstimatedMinutes != nil && *t.EstimatedMinutes < 0 {
		return ErrNegativeEstimate
	}
	if t.DueAt != nil {
		return ValidateTime(*t.DueAt)
	}
	return nil
}

// IsCompleted reports whether the task reached DONE.
func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusDone
}

// TaskPatch lists the task fields a caller may change. Nil fields are left untouched.
type TaskPatch struct {
	Title            *string     `json:"title,omitempty"`
	Description      *string     `json:"description,omitempty"`
	EstimatedMinutes *int        `json:"estimated_minutes,omitempty"`
	DueAt            *time.Time  `json:"due_at,omitempty"`
	Priority         *int        `json:"priority,omitempty"`
	Status           *TaskStatus `json:"status,omitempty"`
}

// Validate checks the supplied fields without needing the current row.
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidStatus
	}
	if p.EstimatedMinutes != nil && *p.EstimatedMinutes < 0 {
		return ErrNegativeEstimate
	}
	if p.DueAt != nil {
		return ValidateTime(*p.DueAt)
	}
	return nil
}

// Normalize returns a copy with timestamps in storage precision.
func (p TaskPatch) Normalize() TaskPatch {
	if p.DueAt != nil {
		due := Timestamp(*p.DueAt)
		p.DueAt = &due
	}
	return p
}

// Apply merges the patch into t and refreshes UpdatedAt.
func (t *Task) Apply(p TaskPatch, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		desc := *p.Description
		t.Description = &desc
	}
	if p.EstimatedMinutes != nil {
		est := *p.EstimatedMinutes
		t.EstimatedMinutes = &est
	}
	if p.DueAt != nil {
		due := Timestamp(*p.DueAt)
		t.DueAt = &due
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	t.UpdatedAt = Timestamp(now)
}

// Time bounds every store can represent and compare. Four-digit years keep
// the fixed-width text encoding ordered.
const (
	MinYear = 1
	MaxYear = 9999
)

// ValidateTime rejects instants whose UTC year falls outside MinYear..MaxYear.
func ValidateTime(t time.Time) error {
	if y := t.UTC().Year(); y < MinYear || y > MaxYear {
		return ErrTimeOutOfRange
	}
	return nil
}

// Timestamp normalizes t to UTC with microsecond precision, the finest
// resolution every supported store keeps.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
