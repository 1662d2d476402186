package scheduler

import (
	"testing"
	"time"

	"github.com/Leganyst/table-reservations/internal/model"
)

func policy(allowOnline bool, hours int) *model.CancellationPolicy {
	pct := 50.0
	return &model.CancellationPolicy{
		AllowOnlineCancellation: allowOnline,
		HoursBeforeNoFee:        &hours,
		FeePercentage:           &pct,
	}
}

func TestEvaluateCancellation_Boundary(t *testing.T) {
	start := time.Date(2030, 6, 14, 19, 0, 0, 0, time.UTC)
	p := policy(true, 24)

	if d := EvaluateCancellation(p, start, start.Add(-24*time.Hour)); !d.Allowed() {
		t.Fatalf("exactly 24h before should be allowed, got %s", d.Verdict)
	}

	d := EvaluateCancellation(p, start, start.Add(-24*time.Hour+time.Minute))
	if d.Verdict != CancellationTooLate {
		t.Fatalf("23h59m before should be too late, got %s", d.Verdict)
	}
	if d.Fee.FeePercentage == nil || *d.Fee.FeePercentage != 50 {
		t.Fatalf("expected fee terms on refusal, got %+v", d.Fee)
	}
	if d.Remaining != 23*time.Hour+59*time.Minute {
		t.Fatalf("remaining = %v", d.Remaining)
	}
}

func TestEvaluateCancellation_OnlineDisallowed(t *testing.T) {
	start := time.Date(2030, 6, 14, 19, 0, 0, 0, time.UTC)
	d := EvaluateCancellation(policy(false, 24), start, start.AddDate(0, 0, -7))
	if d.Verdict != CancellationDisallowed {
		t.Fatalf("expected disallowed, got %s", d.Verdict)
	}
}

func TestEvaluateCancellation_NoPolicy(t *testing.T) {
	start := time.Date(2030, 6, 14, 19, 0, 0, 0, time.UTC)
	if d := EvaluateCancellation(nil, start, start.Add(-time.Minute)); !d.Allowed() {
		t.Fatalf("no policy should allow, got %s", d.Verdict)
	}
}

func TestEvaluateCancellation_NoFeeWindow(t *testing.T) {
	start := time.Date(2030, 6, 14, 19, 0, 0, 0, time.UTC)
	p := &model.CancellationPolicy{AllowOnlineCancellation: true}
	if d := EvaluateCancellation(p, start, start.Add(-time.Minute)); !d.Allowed() {
		t.Fatalf("policy without window should allow, got %s", d.Verdict)
	}
}
