package domain

import "time"

// ScheduleEvent is a concrete time block bound to exactly one task.
type ScheduleEvent struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	Source    *string   `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MaxSourceLength bounds the provenance tag.
const MaxSourceLength = 50

// ValidateInterval enforces start < end on storable times. Equal bounds
// are rejected.
func ValidateInterval(start, end time.Time) error {
	if err := ValidateTime(start); err != nil {
		return err
	}
	if err := ValidateTime(end); err != nil {
		return err
	}
	if !start.Before(end) {
		return ErrInvalidInterval
	}
	return nil
}

// Validate checks the fields every stored event must carry.
func (e *ScheduleEvent) Validate() error {
	if e == nil {
		return ErrInvalidPayload
	}
	if e.TaskID <= 0 {
		return ErrDanglingTask
	}
	if e.Source != nil && len(*e.Source) > MaxSourceLength {
		return ErrInvalidPayload
	}
	return ValidateInterval(e.StartAt, e.EndAt)
}

// Duration returns the length of the block.
func (e *ScheduleEvent) Duration() time.Duration {
	return e.EndAt.Sub(e.StartAt)
}

// EventPatch lists the event fields a caller may change. The owning task is fixed.
type EventPatch struct {
	StartAt *time.Time `json:"start_at,omitempty"`
	EndAt   *time.Time `json:"end_at,omitempty"`
	Source  *string    `json:"source,omitempty"`
}

// Apply merges the patch into e.
func (e *ScheduleEvent) Apply(p EventPatch) {
	if p.StartAt != nil {
		e.StartAt = Timestamp(*p.StartAt)
	}
	if p.EndAt != nil {
		e.EndAt = Timestamp(*p.EndAt)
	}
	if p.Source != nil {
		src := *p.Source
		e.Source = &src
	}
}
