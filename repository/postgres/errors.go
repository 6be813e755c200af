package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/planner/domain"
)

// SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeStringTooLong       = "22001"
)

const (
	constraintTimeOrder = "ck_schedule_events_time_order"
	constraintStatus    = "ck_tasks_status"
	constraintTitle     = "ck_tasks_title_not_empty"
)

// mapError classifies constraint violations raised by the server. Anything
// else is returned unchanged.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return domain.Wrap(domain.ErrDuplicateEmail, err)
	case codeForeignKeyViolation:
		return domain.Wrap(domain.ErrDanglingTask, err)
	case codeCheckViolation:
		switch pgErr.ConstraintName {
		case constraintTimeOrder:
			return domain.Wrap(domain.ErrInvalidInterval, err)
		case constraintStatus:
			return domain.Wrap(domain.ErrInvalidStatus, err)
		case constraintTitle:
			return domain.Wrap(domain.ErrEmptyTitle, err)
		}
		return domain.Wrap(domain.ErrInvalidPayload, err)
	case codeStringTooLong:
		return domain.Wrap(domain.ErrInvalidPayload, err)
	}
	return err
}
