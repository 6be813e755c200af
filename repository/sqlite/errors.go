package sqlite

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/fastygo/planner/domain"
)

const (
	constraintTimeOrder = "ck_schedule_events_time_order"
	constraintStatus    = "ck_tasks_status"
	constraintTitle     = "ck_tasks_title_not_empty"
)

// mapError classifies constraint failures reported by the engine.
func mapError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return domain.Wrap(domain.ErrDuplicateEmail, err)
	case sqlite3.ErrConstraintForeignKey:
		return domain.Wrap(domain.ErrDanglingTask, err)
	case sqlite3.ErrConstraintCheck:
		msg := sqliteErr.Error()
		switch {
		case strings.Contains(msg, constraintTimeOrder):
			return domain.Wrap(domain.ErrInvalidInterval, err)
		case strings.Contains(msg, constraintStatus):
			return domain.Wrap(domain.ErrInvalidStatus, err)
		case strings.Contains(msg, constraintTitle):
			return domain.Wrap(domain.ErrEmptyTitle, err)
		}
		return domain.Wrap(domain.ErrInvalidPayload, err)
	}
	return err
}
