package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/Leganyst/table-reservations/internal/model"
	"github.com/Leganyst/table-reservations/internal/scheduler"
)

var (
	ErrRestaurantNotFound  = errors.New("restaurant not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidPartySize    = errors.New("invalid party size")
	ErrPastTime            = errors.New("requested time is in the past")
	ErrInvalidInput        = errors.New("invalid input")

	// ErrNoAvailability covers both a real capacity shortfall and a lost race
	// for the restaurant-day lock; callers cannot tell them apart.
	ErrNoAvailability = errors.New("no availability")

	ErrAlreadyCancelled  = errors.New("reservation already cancelled")
	ErrAlreadyCompleted  = errors.New("reservation already completed")
	ErrInvalidTransition = errors.New("invalid reservation status transition")

	ErrOnlineCancellationDisallowed = errors.New("online cancellation is not allowed, contact the restaurant")
	ErrTooLateToCancel              = errors.New("too late to cancel without a fee")
)

// PolicyError is a cancellation refused by the restaurant's policy. It carries
// the fee terms so the caller can show them, and unwraps to
// ErrOnlineCancellationDisallowed or ErrTooLateToCancel.
type PolicyError struct {
	Verdict   scheduler.CancellationVerdict
	Fee       scheduler.FeeTerms
	Remaining time.Duration
}

func (e *PolicyError) Error() string {
	msg := e.Unwrap().Error()
	if e.Verdict == scheduler.CancellationTooLate && e.Fee.HoursBeforeNoFee != nil {
		return fmt.Sprintf("%s: %s left, free cancellation ends %dh before", msg,
			e.Remaining.Truncate(time.Minute), *e.Fee.HoursBeforeNoFee)
	}
	return msg
}

func (e *PolicyError) Unwrap() error {
	if e.Verdict == scheduler.CancellationDisallowed {
		return ErrOnlineCancellationDisallowed
	}
	return ErrTooLateToCancel
}

// transitionError explains why a reservation in from cannot move on.
func transitionError(from, to model.ReservationStatus) error {
	switch from {
	case model.ReservationStatusCancelled:
		return ErrAlreadyCancelled
	case model.ReservationStatusCompleted:
		return ErrAlreadyCompleted
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
