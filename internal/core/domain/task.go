package domain

import (
	"cmp"
	"time"
)

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          int64
	UserID      int64
	Task        string
	Description *string
	Deadline    *Date
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TimestampPrecision is the coarsest resolution among the supported stores
// (Mongo keeps milliseconds).
const TimestampPrecision = time.Millisecond

// Touch moves UpdatedAt forward to now, or one tick past its previous value
// when the clock has not advanced, so every mutation is observable.
func (t *Task) Touch(now time.Time) {
	now = now.UTC().Truncate(TimestampPrecision)
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(TimestampPrecision)
	}
	t.UpdatedAt = now
}

// CompareTasks orders tasks by deadline ascending with missing deadlines
// last, then newest first, then by id descending.
func CompareTasks(a, b *Task) int {
	switch {
	case a.Deadline == nil && b.Deadline != nil:
		return 1
	case a.Deadline != nil && b.Deadline == nil:
		return -1
	case a.Deadline != nil && b.Deadline != nil:
		if c := a.Deadline.Compare(*b.Deadline); c != 0 {
			return c
		}
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}
