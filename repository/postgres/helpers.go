package postgres

import (
	"time"

	"github.com/fastygo/planner/domain"
)

type scanner interface {
	Scan(dest ...any) error
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return domain.Timestamp(*t)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := domain.Timestamp(*t)
	return &v
}
