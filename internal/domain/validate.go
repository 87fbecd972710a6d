package domain

import "time"

const (
	MaxTicketCount = 10
	MinVisitorAge  = 0
	MaxVisitorAge  = 120
)

// Calendar answers whether the park is closed on a given date. The weekly
// closure day and the holiday set live behind this interface.
type Calendar interface {
	IsClosed(date time.Time) bool
}

// Rules is the validation profile applied to a purchase request. The two
// shipped profiles differ on the lower ticket-count bound, age bounds,
// declared-count matching and past-date rejection.
type Rules struct {
	MinTicketCount    int // 0 disables the lower bound
	MaxTicketCount    int
	EnforceAgeRange   bool
	EnforceCountMatch bool
	RejectPastDates   bool
}

// LenientRules enforces only the upper ticket-count bound and visitor data
// presence, matching the historical behavior of the purchase form.
func LenientRules() Rules {
	return Rules{MaxTicketCount: MaxTicketCount}
}

// StrictRules is the service-layer profile: 1..10 tickets, ages 0..120,
// declared count must match the visitor list, past dates rejected.
func StrictRules() Rules {
	return Rules{
		MinTicketCount:    1,
		MaxTicketCount:    MaxTicketCount,
		EnforceAgeRange:   true,
		EnforceCountMatch: true,
		RejectPastDates:   true,
	}
}

// RulesByName maps a config profile name to its rule set. Unknown names
// fall back to the lenient profile.
func RulesByName(name string) Rules {
	if name == "strict" {
		return StrictRules()
	}
	return LenientRules()
}

func ValidateRegisteredUser(u User) error {
	if u.ID == "" {
		return ErrUserNotRegistered
	}
	return nil
}

func ValidatePaymentMethod(m PaymentMethod) error {
	if m != PaymentCash && m != PaymentCard {
		return ErrInvalidPaymentMethod
	}
	return nil
}

func ValidatePassType(p PassType) error {
	if p != PassRegular && p != PassVIP {
		return ErrInvalidPassType
	}
	return nil
}

// ValidateVisitors checks that every visitor record carries a name and an
// age. Age bounds are a profile concern, see Rules.CheckVisitors.
func ValidateVisitors(visitors []Visitor) error {
	for _, v := range visitors {
		if v.Name == "" || v.Age < 0 {
			return ErrIncompleteVisitorData
		}
	}
	return nil
}

// ValidateVisitDate rejects dates on which the calendar reports the park
// closed. It does not reject past dates on its own.
func ValidateVisitDate(date time.Time, cal Calendar) error {
	if cal.IsClosed(date) {
		return ErrParkClosed
	}
	return nil
}

func (r Rules) CheckTicketCount(count int) error {
	if r.MinTicketCount > 0 && count < r.MinTicketCount {
		return ErrTicketCountTooLow
	}
	if count > r.MaxTicketCount {
		return ErrTicketCountExceeded
	}
	return nil
}

func (r Rules) CheckVisitors(declared int, visitors []Visitor) error {
	if err := ValidateVisitors(visitors); err != nil {
		return err
	}
	if r.EnforceCountMatch && declared != len(visitors) {
		return ErrVisitorCountMismatch
	}
	if r.EnforceAgeRange {
		for _, v := range visitors {
			if v.Age < MinVisitorAge || v.Age > MaxVisitorAge {
				return ErrAgeOutOfRange
			}
		}
	}
	return nil
}

// CheckNotPast rejects visit dates before the start of today when the
// profile demands it. The time of day on either argument is ignored.
func (r Rules) CheckNotPast(date, today time.Time) error {
	if !r.RejectPastDates {
		return nil
	}
	y, m, d := today.Date()
	startOfToday := time.Date(y, m, d, 0, 0, 0, 0, today.Location())
	if date.Before(startOfToday) {
		return ErrParkClosed
	}
	return nil
}

func (r Rules) CheckVisitDate(date time.Time, cal Calendar, today time.Time) error {
	if err := r.CheckNotPast(date, today); err != nil {
		return err
	}
	return ValidateVisitDate(date, cal)
}
