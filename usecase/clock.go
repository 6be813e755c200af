// Package usecase holds what the service layer packages share.
package usecase

import (
	"time"

	"github.com/fastygo/planner/domain"
)

// Clock supplies the current time. Timestamps are always computed in
// process so every store records the same values.
type Clock func() time.Time

// SystemClock is the wall clock in storage precision.
func SystemClock() time.Time {
	return domain.Timestamp(time.Now())
}

// OrSystem returns c, or SystemClock when c is nil.
func (c Clock) OrSystem() Clock {
	if c == nil {
		return SystemClock
	}
	return c
}
