package schedule

import (
	"context"
	"time"
)

const dayKey = "2006-01-02"

// Calendar implements the park open/closed policy: closed every Monday and
// on every date in the holiday set. The holiday set is loaded once at
// process start and never mutated afterwards.
type Calendar struct {
	closedWeekday time.Weekday
	holidays      map[string]struct{}
}

func NewCalendar(holidays []time.Time) *Calendar {
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		set[h.Format(dayKey)] = struct{}{}
	}
	return &Calendar{closedWeekday: time.Monday, holidays: set}
}

func (c *Calendar) IsClosed(date time.Time) bool {
	if date.Weekday() == c.closedWeekday {
		return true
	}
	_, holiday := c.holidays[date.Format(dayKey)]
	return holiday
}

// IsOpen is the authoritative open check used by the purchase pipeline.
func (c *Calendar) IsOpen(ctx context.Context, date time.Time) (bool, error) {
	return !c.IsClosed(date), nil
}
