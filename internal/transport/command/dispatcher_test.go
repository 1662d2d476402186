package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/table-reservations/internal/calendar"
	"github.com/Leganyst/table-reservations/internal/lock"
	"github.com/Leganyst/table-reservations/internal/model"
	"github.com/Leganyst/table-reservations/internal/scheduler"
	"github.com/Leganyst/table-reservations/internal/service"
)

type fakeReservations struct {
	lastCreate service.CreateReservationInput
	lastDate   time.Time
	calls      []string
	err        error
}

func (f *fakeReservations) res(id uuid.UUID, status model.ReservationStatus) *model.Reservation {
	table := uuid.New()
	return &model.Reservation{
		ID:              id,
		RestaurantID:    uuid.New(),
		TableID:         &table,
		ReservationTime: time.Date(2030, 6, 14, 19, 0, 0, 0, time.UTC),
		PartySize:       2,
		TurnTimeUsed:    90,
		Status:          status,
	}
}

func (f *fakeReservations) GetAvailability(_ context.Context, restaurantID uuid.UUID, date time.Time, partySize int) (*service.Availability, error) {
	f.calls = append(f.calls, "availability")
	f.lastDate = date
	if f.err != nil {
		return nil, f.err
	}
	table := uuid.New()
	return &service.Availability{
		RestaurantID: restaurantID,
		Date:         date,
		PartySize:    partySize,
		Result: scheduler.Result{
			TurnTime: 90 * time.Minute,
			Slots: []scheduler.Slot{
				{Time: "17:00", Start: date.Add(17 * time.Hour), Available: true, TableID: &table},
				{Time: "17:30", Start: date.Add(17*time.Hour + 30*time.Minute)},
			},
			Warnings: []scheduler.ConfigurationWarning{{Code: scheduler.WarnTurnTimeDefaulted, Detail: "x"}},
		},
	}, nil
}

func (f *fakeReservations) CreateReservation(_ context.Context, in service.CreateReservationInput) (*model.Reservation, error) {
	f.calls = append(f.calls, "create")
	f.lastCreate = in
	if f.err != nil {
		return nil, f.err
	}
	return f.res(uuid.New(), model.ReservationStatusConfirmed), nil
}

func (f *fakeReservations) CancelReservation(_ context.Context, id uuid.UUID) (*model.Reservation, error) {
	f.calls = append(f.calls, "cancel")
	if f.err != nil {
		return nil, f.err
	}
	return f.res(id, model.ReservationStatusCancelled), nil
}

func (f *fakeReservations) ConfirmReservation(_ context.Context, id uuid.UUID) (*model.Reservation, error) {
	f.calls = append(f.calls, "confirm")
	return f.res(id, model.ReservationStatusConfirmed), f.err
}

func (f *fakeReservations) CompleteReservation(_ context.Context, id uuid.UUID) (*model.Reservation, error) {
	f.calls = append(f.calls, "complete")
	return f.res(id, model.ReservationStatusCompleted), f.err
}

func (f *fakeReservations) MarkNoShow(_ context.Context, id uuid.UUID) (*model.Reservation, error) {
	f.calls = append(f.calls, "no_show")
	return f.res(id, model.ReservationStatusNoShow), f.err
}

func (f *fakeReservations) GetReservation(_ context.Context, id uuid.UUID) (*model.Reservation, error) {
	f.calls = append(f.calls, "get")
	return f.res(id, model.ReservationStatusPending), f.err
}

func (f *fakeReservations) ListReservations(_ context.Context, _ uuid.UUID, date time.Time, page, pageSize int) (calendar.Page[model.Reservation], error) {
	f.calls = append(f.calls, "list")
	f.lastDate = date
	items := []model.Reservation{*f.res(uuid.New(), model.ReservationStatusConfirmed)}
	return calendar.Paginate(items, page, pageSize), f.err
}

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestDispatch_GetAvailability(t *testing.T) {
	fake := &fakeReservations{}
	d := NewDispatcher(fake)

	out, err := d.Dispatch(context.Background(), TypeGetAvailability, payload(t, map[string]any{
		"restaurant_id": uuid.NewString(),
		"date":          "2030-06-14",
		"party_size":    2,
	}))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	view, ok := out.(AvailabilityView)
	if !ok {
		t.Fatalf("unexpected response type %T", out)
	}
	if view.Date != "2030-06-14" || view.TurnTimeMinutes != 90 || len(view.Slots) != 2 {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.Slots[0].TableID == "" || view.Slots[1].TableID != "" || view.Slots[1].Available {
		t.Fatalf("unexpected slots %+v", view.Slots)
	}
	if view.Slots[0].Start != "2030-06-14T17:00:00Z" {
		t.Fatalf("unexpected start %s", view.Slots[0].Start)
	}
	if len(view.Warnings) != 1 || view.Warnings[0].Code != "turn_time_defaulted" {
		t.Fatalf("unexpected warnings %+v", view.Warnings)
	}
}

func TestDispatch_CreateReservation(t *testing.T) {
	fake := &fakeReservations{}
	d := NewDispatcher(fake)
	userID := uuid.New()

	out, err := d.Dispatch(context.Background(), TypeCreateReservation, payload(t, map[string]any{
		"restaurant_id":              uuid.NewString(),
		"reservation_time":           "2030-06-14T19:00:00+03:00",
		"party_size":                 4,
		"turn_time_override_minutes": 60,
		"auto_confirm":               true,
		"user_id":                    userID.String(),
		"guest_name":                 "Petrova",
	}))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	in := fake.lastCreate
	if !in.ReservationTime.Equal(time.Date(2030, 6, 14, 16, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected instant %v", in.ReservationTime)
	}
	if in.PartySize != 4 || !in.AutoConfirm || in.GuestName != "Petrova" {
		t.Fatalf("unexpected input %+v", in)
	}
	if in.TurnTimeOverride == nil || *in.TurnTimeOverride != 60 {
		t.Fatalf("override not passed through: %v", in.TurnTimeOverride)
	}
	if in.UserID == nil || *in.UserID != userID {
		t.Fatalf("user id not passed through: %v", in.UserID)
	}
	view := out.(ReservationView)
	if view.Status != "confirmed" || view.EndTime != "2030-06-14T20:30:00Z" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestDispatch_StatusCommands(t *testing.T) {
	cases := map[Type]string{
		TypeCancelReservation:   "cancelled",
		TypeConfirmReservation:  "confirmed",
		TypeCompleteReservation: "completed",
		TypeMarkNoShow:          "no_show",
		TypeGetReservation:      "pending",
	}
	for typ, status := range cases {
		d := NewDispatcher(&fakeReservations{})
		id := uuid.NewString()
		out, err := d.Dispatch(context.Background(), typ, payload(t, map[string]any{"reservation_id": id}))
		if err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
		view := out.(ReservationView)
		if view.ID != id || view.Status != status {
			t.Fatalf("%s: unexpected view %+v", typ, view)
		}
	}
}

func TestDispatch_ListReservations(t *testing.T) {
	fake := &fakeReservations{}
	out, err := NewDispatcher(fake).Dispatch(context.Background(), TypeListReservations, payload(t, map[string]any{
		"restaurant_id": uuid.NewString(),
		"date":          "2030-06-14",
		"page":          1,
		"page_size":     10,
	}))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	view := out.(ReservationPageView)
	if view.Total != 1 || len(view.Items) != 1 || view.HasNext {
		t.Fatalf("unexpected page %+v", view)
	}
	if !fake.lastDate.Equal(time.Date(2030, 6, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", fake.lastDate)
	}
}

func TestDispatch_InvalidPayloads(t *testing.T) {
	d := NewDispatcher(&fakeReservations{})
	cases := []struct {
		typ  Type
		body string
	}{
		{TypeGetAvailability, `{"restaurant_id":"nope","date":"2030-06-14","party_size":2}`},
		{TypeGetAvailability, `{"restaurant_id":"` + uuid.NewString() + `","date":"14.06.2030","party_size":2}`},
		{TypeCreateReservation, `{"restaurant_id":"` + uuid.NewString() + `","reservation_time":"19:00","party_size":2}`},
		{TypeCancelReservation, `{}`},
		{TypeCancelReservation, `not json`},
		{TypeListReservations, `{"restaurant_id":"` + uuid.NewString() + `","date":"2030-06-14","page_size":1000}`},
	}
	for _, tc := range cases {
		_, err := d.Dispatch(context.Background(), tc.typ, json.RawMessage(tc.body))
		if !errors.Is(err, service.ErrInvalidInput) {
			t.Fatalf("%s %s: expected ErrInvalidInput, got %v", tc.typ, tc.body, err)
		}
		if Code(err) != CodeInvalidArgument {
			t.Fatalf("unexpected code %s", Code(err))
		}
	}

	_, err := d.Dispatch(context.Background(), Type("Teleport"), nil)
	if !errors.Is(err, ErrUnknownCommand) || Code(err) != CodeUnknownCommand {
		t.Fatalf("expected unknown command, got %v", err)
	}
}

func TestCode(t *testing.T) {
	hours := 24
	fee := 10.0
	policyErr := &service.PolicyError{
		Verdict:   scheduler.CancellationTooLate,
		Fee:       scheduler.FeeTerms{HoursBeforeNoFee: &hours, FeePercentage: &fee},
		Remaining: 3 * time.Hour,
	}

	cases := []struct {
		err  error
		want ErrorCode
	}{
		{service.ErrRestaurantNotFound, CodeNotFound},
		{fmt.Errorf("wrapped: %w", service.ErrReservationNotFound), CodeNotFound},
		{service.ErrInvalidPartySize, CodeInvalidArgument},
		{service.ErrPastTime, CodeInvalidArgument},
		{service.ErrNoAvailability, CodeNoAvailability},
		{service.ErrAlreadyCancelled, CodeFailedPrecondition},
		{service.ErrAlreadyCompleted, CodeFailedPrecondition},
		{service.ErrInvalidTransition, CodeFailedPrecondition},
		{policyErr, CodeFailedPrecondition},
		{&service.PolicyError{Verdict: scheduler.CancellationDisallowed}, CodePermissionDenied},
		{lock.ErrLockTimeout, CodeConflict},
		{context.DeadlineExceeded, CodeDeadlineExceeded},
		{errors.New("disk on fire"), CodeInternal},
	}
	for _, tc := range cases {
		if got := Code(tc.err); got != tc.want {
			t.Fatalf("Code(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}

	details := Details(policyErr)
	if details["verdict"] != "too_late" || details["hours_before_no_fee"] != 24 || details["fee_percentage"] != 10.0 {
		t.Fatalf("unexpected details %v", details)
	}
	if Details(service.ErrNoAvailability) != nil {
		t.Fatalf("expected no details for plain errors")
	}
}
