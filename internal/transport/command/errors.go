package command

import (
	"context"
	"errors"

	"github.com/Leganyst/table-reservations/internal/lock"
	"github.com/Leganyst/table-reservations/internal/service"
)

// ErrorCode is the transport-neutral classification of a failed command.
type ErrorCode string

const (
	CodeNotFound           ErrorCode = "not_found"
	CodeInvalidArgument    ErrorCode = "invalid_argument"
	CodeNoAvailability     ErrorCode = "no_availability"
	CodeFailedPrecondition ErrorCode = "failed_precondition"
	CodePermissionDenied   ErrorCode = "permission_denied"
	CodeConflict           ErrorCode = "conflict"
	CodeDeadlineExceeded   ErrorCode = "deadline_exceeded"
	CodeUnknownCommand     ErrorCode = "unknown_command"
	CodeInternal           ErrorCode = "internal"
)

func Code(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrRestaurantNotFound), errors.Is(err, service.ErrReservationNotFound):
		return CodeNotFound
	case errors.Is(err, service.ErrInvalidPartySize), errors.Is(err, service.ErrPastTime), errors.Is(err, service.ErrInvalidInput):
		return CodeInvalidArgument
	case errors.Is(err, service.ErrNoAvailability):
		return CodeNoAvailability
	case errors.Is(err, service.ErrOnlineCancellationDisallowed):
		return CodePermissionDenied
	case errors.Is(err, service.ErrTooLateToCancel),
		errors.Is(err, service.ErrAlreadyCancelled),
		errors.Is(err, service.ErrAlreadyCompleted),
		errors.Is(err, service.ErrInvalidTransition):
		return CodeFailedPrecondition
	case errors.Is(err, lock.ErrLockTimeout):
		return CodeConflict
	case errors.Is(err, context.DeadlineExceeded):
		return CodeDeadlineExceeded
	case errors.Is(err, ErrUnknownCommand):
		return CodeUnknownCommand
	}
	return CodeInternal
}

// Details returns structured data a caller may show next to the error,
// currently the fee terms of a refused cancellation.
func Details(err error) map[string]any {
	var perr *service.PolicyError
	if !errors.As(err, &perr) {
		return nil
	}
	d := map[string]any{
		"verdict":           perr.Verdict.String(),
		"remaining_minutes": int(perr.Remaining.Minutes()),
	}
	if perr.Fee.HoursBeforeNoFee != nil {
		d["hours_before_no_fee"] = *perr.Fee.HoursBeforeNoFee
	}
	if perr.Fee.FeePercentage != nil {
		d["fee_percentage"] = *perr.Fee.FeePercentage
	}
	if perr.Fee.FixedFeeAmount != nil {
		d["fixed_fee_amount"] = *perr.Fee.FixedFeeAmount
	}
	return d
}
