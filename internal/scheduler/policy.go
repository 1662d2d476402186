package scheduler

import (
	"time"

	"github.com/Leganyst/table-reservations/internal/model"
)

type CancellationVerdict int

const (
	CancellationAllowed CancellationVerdict = iota
	// Online cancellation is switched off; the guest must contact the restaurant.
	CancellationDisallowed
	// Inside the fee window. Fee terms are reported, nothing is charged here.
	CancellationTooLate
)

func (v CancellationVerdict) String() string {
	switch v {
	case CancellationAllowed:
		return "allowed"
	case CancellationDisallowed:
		return "disallowed"
	case CancellationTooLate:
		return "too_late"
	default:
		return "unknown"
	}
}

// FeeTerms are the policy terms shown to a guest whose cancellation was refused.
type FeeTerms struct {
	HoursBeforeNoFee *int
	FeePercentage    *float64
	FixedFeeAmount   *float64
}

type CancellationDecision struct {
	Verdict CancellationVerdict
	Fee     FeeTerms
	// Time left until the reservation starts (negative once it has started).
	Remaining time.Duration
}

func (d CancellationDecision) Allowed() bool { return d.Verdict == CancellationAllowed }

// EvaluateCancellation applies policy to a reservation scheduled at scheduled.
// A restaurant without a policy allows every cancellation free of charge.
// Exactly HoursBeforeNoFee remaining is still inside the free window.
func EvaluateCancellation(policy *model.CancellationPolicy, scheduled, now time.Time) CancellationDecision {
	d := CancellationDecision{Verdict: CancellationAllowed, Remaining: scheduled.Sub(now)}
	if policy == nil {
		return d
	}
	d.Fee = FeeTerms{
		HoursBeforeNoFee: policy.HoursBeforeNoFee,
		FeePercentage:    policy.FeePercentage,
		FixedFeeAmount:   policy.FixedFeeAmount,
	}

	if !policy.AllowOnlineCancellation {
		d.Verdict = CancellationDisallowed
		return d
	}
	if policy.HoursBeforeNoFee != nil {
		window := time.Duration(*policy.HoursBeforeNoFee) * time.Hour
		if d.Remaining < window {
			d.Verdict = CancellationTooLate
		}
	}
	return d
}
