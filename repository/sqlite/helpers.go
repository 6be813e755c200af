package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fastygo/planner/domain"
)

// timeLayout is fixed-width so that text comparison in SQL matches time order.
// That only holds for four-digit years; see checkStorable.
const timeLayout = "2006-01-02T15:04:05.000000Z"

type scanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return domain.Timestamp(t).Format(timeLayout)
}

// checkStorable rejects times the text encoding cannot order correctly.
// Without it a five-digit year would sort before a four-digit one and the
// time order CHECK would compare the wrong values.
func checkStorable(times ...time.Time) error {
	for _, t := range times {
		if err := domain.ValidateTime(t); err != nil {
			return err
		}
	}
	return nil
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", raw, err)
	}
	return t.UTC(), nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid {
		return nil, nil
	}
	t, err := parseTime(raw.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}
