package schedule

import "time"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultHolidays is the embedded Argentine national holiday set for
// 2024-2025, used when no holiday catalog is configured.
func DefaultHolidays() []time.Time {
	return []time.Time{
		day(2024, time.January, 1),
		day(2024, time.February, 12),
		day(2024, time.February, 13),
		day(2024, time.March, 24),
		day(2024, time.April, 2),
		day(2024, time.May, 1),
		day(2024, time.May, 25),
		day(2024, time.June, 17),
		day(2024, time.June, 20),
		day(2024, time.July, 9),
		day(2024, time.August, 17),
		day(2024, time.October, 12),
		day(2024, time.November, 20),
		day(2024, time.December, 8),
		day(2024, time.December, 25),

		day(2025, time.January, 1),
		day(2025, time.March, 3),
		day(2025, time.March, 4),
		day(2025, time.March, 24),
		day(2025, time.April, 2),
		day(2025, time.May, 1),
		day(2025, time.May, 25),
		day(2025, time.June, 16),
		day(2025, time.June, 20),
		day(2025, time.July, 9),
		day(2025, time.August, 17),
		day(2025, time.October, 12),
		day(2025, time.November, 20),
		day(2025, time.December, 8),
		day(2025, time.December, 25),
	}
}
