package domain

import "errors"

var (
	ErrUserNotRegistered     = errors.New("user not registered")
	ErrTicketCountExceeded   = errors.New("ticket count exceeded")
	ErrTicketCountTooLow     = errors.New("ticket count below minimum")
	ErrParkClosed            = errors.New("park closed")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrInvalidPassType       = errors.New("invalid pass type")
	ErrIncompleteVisitorData = errors.New("incomplete visitor data")
	ErrAgeOutOfRange         = errors.New("visitor age out of range")
	ErrVisitorCountMismatch  = errors.New("visitor count mismatch")
	ErrOrderNotFound         = errors.New("order not found")

	ErrSerializationFailure = errors.New("serialization failure")
	ErrConflict             = errors.New("conflict")
)
