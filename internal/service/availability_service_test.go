package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/policy"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/repository"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/repository/memory"
	"go.uber.org/zap"
)

var brt = time.FixedZone("BRT", -3*60*60)

type recorder struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recorder) PublishRefresh(_ context.Context, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reasons)
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	memory *memory.Store
	dir    *memory.Directory
	pub    *recorder
	svc    *AvailabilityService
	now    time.Time
}

var (
	user1 = model.Actor{PersonID: 1, Role: model.RoleUser}
	user2 = model.Actor{PersonID: 2, Role: model.RoleUser}
	admin = model.Actor{PersonID: 99, Role: model.RoleAdmin}
)

func newFixture(t *testing.T, now time.Time) *fixture {
	return newFixtureWithStore(t, now, nil)
}

// newFixtureWithStore lets a test wrap the memory store.
func newFixtureWithStore(t *testing.T, now time.Time, wrap func(*memory.Store) repository.Store) *fixture {
	t.Helper()

	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		memory: memory.NewStore(),
		dir: memory.NewDirectory(
			&model.Person{ID: 1, Name: "Silva", Category: model.CategoryGraduado},
			&model.Person{ID: 2, Name: "Souza", Category: model.CategoryGraduado},
			&model.Person{ID: 3, Name: "Lima", Category: model.CategoryOficial},
		),
		pub: &recorder{},
		now: now,
	}

	var store repository.Store = f.memory
	if wrap != nil {
		store = wrap(f.memory)
	}

	cfg := policy.DefaultConfig()
	cfg.Location = brt
	settings := memory.NewSettings(&model.OpeningHours{Opening: "07:00", Closing: "18:00"})

	f.svc = NewAvailabilityService(store, f.dir, settings, policy.New(cfg), f.pub, zap.NewNop(),
		WithClock(func() time.Time { return f.now }),
		WithCancelLeadTime(30*time.Minute),
	)
	return f
}

func (f *fixture) seedSlot(w model.Weekday, t model.TimeOfDay, c model.Category, status model.SlotStatus) {
	f.t.Helper()
	if err := f.memory.Slots().SetStatus(f.ctx, model.SlotKey{Weekday: w, Time: t, Category: c}, status); err != nil {
		f.t.Fatalf("seed slot: %v", err)
	}
}

func (f *fixture) slotStatus(w model.Weekday, t model.TimeOfDay, c model.Category) model.SlotStatus {
	f.t.Helper()
	slot, err := f.memory.Slots().Get(f.ctx, model.SlotKey{Weekday: w, Time: t, Category: c})
	if err != nil {
		f.t.Fatalf("get slot: %v", err)
	}
	if slot == nil {
		return ""
	}
	return slot.Status
}

// insertBooking writes straight to the ledger, bypassing the rules.
func (f *fixture) insertBooking(person int64, date string, t model.TimeOfDay, c model.Category) *model.Booking {
	f.t.Helper()
	d := mustDate(date)
	w, _ := model.WeekdayOf(d)
	b := &model.Booking{Date: d, Time: t, Weekday: w, Category: c, PersonID: person, Status: model.BookingStatusScheduled}
	if err := f.memory.Bookings().Create(f.ctx, b); err != nil {
		f.t.Fatalf("insert booking: %v", err)
	}
	return b
}

func mustDate(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func createInput(person int64, date string, t model.TimeOfDay, c model.Category) CreateBookingInput {
	d := mustDate(date)
	w, _ := model.WeekdayOf(d)
	return CreateBookingInput{PersonID: person, Date: d, Time: t, Weekday: w, Category: c}
}

func wantReason(t *testing.T, err error, want policy.Reason) {
	t.Helper()
	got, ok := policy.ReasonOf(err)
	if !ok {
		t.Fatalf("expected rejection %s, got %v", want, err)
	}
	if got != want {
		t.Fatalf("reason = %s, want %s", got, want)
	}
}

// Thursday of the week before 2024-07-01, after the release gate.
var thursday = time.Date(2024, 6, 27, 10, 0, 0, 0, brt)

func TestCreateBookingHoldsRecurringSlot(t *testing.T) {
	f := newFixture(t, thursday)
	f.seedSlot(model.Monday, "08:00", model.CategoryGraduado, model.SlotStatusAvailable)

	booking, err := f.svc.CreateBooking(f.ctx, user1, createInput(1, "2024-07-01", "08:00", model.CategoryGraduado))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if booking.Status != model.BookingStatusScheduled || booking.ID == 0 {
		t.Errorf("unexpected booking %+v", booking)
	}
	if got := f.slotStatus(model.Monday, "08:00", model.CategoryGraduado); got != model.SlotStatusUnavailable {
		t.Errorf("slot status = %s, want UNAVAILABLE", got)
	}
	if f.pub.count() != 1 {
		t.Errorf("published %d events, want 1", f.pub.count())
	}

	_, err = f.svc.CreateBooking(f.ctx, user2, createInput(2, "2024-07-08", "08:00", model.CategoryGraduado))
	wantReason(t, err, policy.ReasonSlotUnavailable)
	if f.pub.count() != 1 {
		t.Errorf("rejection published an event")
	}
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t, thursday)
	f.seedSlot(model.Monday, "08:00", model.CategoryOficial, model.SlotStatusAvailable)

	tests := []struct {
		name  string
		actor model.Actor
		in    CreateBookingInput
		want  error
	}{
		{
			name:  "weekday does not match date",
			actor: user1,
			in: CreateBookingInput{
				PersonID: 1, Date: mustDate("2024-07-01"), Time: "08:00",
				Weekday: model.Tuesday, Category: model.CategoryGraduado,
			},
			want: ErrInvalidRequest,
		},
		{
			name:  "weekend date",
			actor: user1,
			in: CreateBookingInput{
				PersonID: 1, Date: mustDate("2024-07-06"), Time: "08:00",
				Weekday: model.Friday, Category: model.CategoryGraduado,
			},
			want: ErrInvalidRequest,
		},
		{
			name:  "booking for someone else",
			actor: user2,
			in:    createInput(1, "2024-07-01", "08:00", model.CategoryGraduado),
			want:  ErrForbidden,
		},
		{
			name:  "other category",
			actor: user1,
			in:    createInput(1, "2024-07-01", "08:00", model.CategoryOficial),
			want:  ErrForbidden,
		},
		{
			name:  "unknown person",
			actor: admin,
			in:    createInput(42, "2024-07-01", "08:00", model.CategoryOficial),
			want:  ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateBooking(f.ctx, tt.actor, tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAdminBooksAcrossCategory(t *testing.T) {
	f := newFixture(t, thursday)
	f.seedSlot(model.Monday, "08:00", model.CategoryOficial, model.SlotStatusAvailable)

	if _, err := f.svc.CreateBooking(f.ctx, admin, createInput(1, "2024-07-01", "08:00", model.CategoryOficial)); err != nil {
		t.Fatalf("admin create: %v", err)
	}
}

func TestCooldownUsesLedgerAndWatermark(t *testing.T) {
	f := newFixture(t, thursday)
	f.seedSlot(model.Monday, "09:00", model.CategoryGraduado, model.SlotStatusAvailable)

	watermark := mustDate("2024-06-20")
	f.dir.Put(&model.Person{ID: 1, Category: model.CategoryGraduado, LastBookingDate: &watermark})
	_, err := f.svc.CreateBooking(f.ctx, user1, createInput(1, "2024-07-01", "09:00", model.CategoryGraduado))
	wantReason(t, err, policy.ReasonCooldownActive)

	f.insertBooking(2, "2024-06-21", "10:00", model.CategoryGraduado)
	_, err = f.svc.CreateBooking(f.ctx, user2, createInput(2, "2024-07-01", "09:00", model.CategoryGraduado))
	wantReason(t, err, policy.ReasonCooldownActive)
}

func TestCancelledBookingDoesNotCountForCooldown(t *testing.T) {
	f := newFixture(t, thursday)
	f.seedSlot(model.Monday, "09:00", model.CategoryGraduado, model.SlotStatusAvailable)

	old := f.insertBooking(1, "2024-06-21", "10:00", model.CategoryGraduado)
	by := model.CancelledByUser
	if err := f.memory.Bookings().UpdateStatus(f.ctx, old.ID, model.BookingStatusCancelled, &by); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := f.svc.CreateBooking(f.ctx, user1, createInput(1, "2024-07-01", "09:00", model.CategoryGraduado)); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestOutsideAllowedWindow(t *testing.T) {
	f := newFixture(t, thursday)
	f.seedSlot(model.Monday, "17:45", model.CategoryGraduado, model.SlotStatusAvailable)

	_, err := f.svc.CreateBooking(f.ctx, user1, createInput(1, "2024-07-01", "17:45", model.CategoryGraduado))
	wantReason(t, err, policy.ReasonOutsideAllowedWindow)
}

// staleStore makes the pre-checks read outdated state so the write path
// has to catch the conflict.
type staleStore struct {
	*memory.Store
	hideActive     bool
	forceAvailable bool
}

func (s *staleStore) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	return s.Store.WithinTx(ctx, func(tx repository.Tx) error {
		return fn(staleTx{tx: tx, s: s})
	})
}

type staleTx struct {
	tx repository.Tx
	s  *staleStore
}

func (t staleTx) Slots() repository.SlotCatalog {
	return staleSlots{SlotCatalog: t.tx.Slots(), force: t.s.forceAvailable}
}

func (t staleTx) Bookings() repository.BookingLedger {
	return staleLedger{BookingLedger: t.tx.Bookings(), hide: t.s.hideActive}
}

type staleSlots struct {
	repository.SlotCatalog
	force bool
}

func (s staleSlots) Get(ctx context.Context, key model.SlotKey) (*model.Slot, error) {
	slot, err := s.SlotCatalog.Get(ctx, key)
	if err == nil && slot != nil && s.force {
		slot.Status = model.SlotStatusAvailable
	}
	return slot, err
}

type staleLedger struct {
	repository.BookingLedger
	hide bool
}

func (l staleLedger) FindActive(ctx context.Context, key model.BookingKey, excludeID int64) (*model.Booking, error) {
	if l.hide {
		return nil, nil
	}
	return l.BookingLedger.FindActive(ctx, key, excludeID)
}

func TestUniqueViolationSurfacesAsAlreadyBooked(t *testing.T) {
	f := newFixtureWithStore(t, thursday, func(m *memory.Store) repository.Store {
		return &staleStore{Store: m, hideActive: true}
	})
	f.seedSlot(model.Monday, "08:00", model.CategoryGraduado, model.SlotStatusAvailable)
	f.insertBooking(2, "2024-07-01", "08:00", model.CategoryGraduado)

	_, err := f.svc.CreateBooking(f.ctx, user1, createInput(1, "2024-07-01", "08:00", model.CategoryGraduado))
	wantReason(t, err, policy.ReasonAlreadyBooked)
}

func TestFailedSlotClaimRollsBackBooking(t *testing.T) {
	f := newFixtureWithStore(t, thursday, func(m *memory.Store) repository.Store {
		return &staleStore{Store: m, forceAvailable: true}
	})
	f.seedSlot(model.Monday, "08:00", model.CategoryGraduado, model.SlotStatusUnavailable)

	_, err := f.svc.CreateBooking(f.ctx, user1, createInput(1, "2024-07-01", "08:00", model.CategoryGraduado))
	wantReason(t, err, policy.ReasonSlotUnavailable)

	last, _ := f.memory.Bookings().LatestActiveDate(f.ctx, 1)
	if last != nil {
		t.Fatalf("booking persisted after rollback: %v", last)
	}
}

func TestConcurrentBookingsOnOneRecurringSlot(t *testing.T) {
	f := newFixture(t, thursday)
	f.seedSlot(model.Monday, "08:00", model.CategoryGraduado, model.SlotStatusAvailable)

	const people = 10
	for i := int64(10); i < 10+people; i++ {
		f.dir.Put(&model.Person{ID: i, Category: model.CategoryGraduado})
	}

	dates := []string{"2024-07-01", "2024-07-08", "2024-07-15", "2024-07-22", "2024-07-29"}
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < people; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := int64(10 + i)
			actor := model.Actor{PersonID: id, Role: model.RoleUser}
			_, err := f.svc.CreateBooking(f.ctx, actor, createInput(id, dates[i%len(dates)], "08:00", model.CategoryGraduado))
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if _, ok := policy.ReasonOf(err); !ok {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("successes = %d, want exactly 1", successes)
	}
	if got := f.slotStatus(model.Monday, "08:00", model.CategoryGraduado); got == model.SlotStatusAvailable {
		t.Fatal("held slot is AVAILABLE")
	}
}

func TestCancelLeadTime(t *testing.T) {
	startsAt := time.Date(2024, 7, 3, 10, 0, 0, 0, brt)

	tests := []struct {
		name   string
		actor  model.Actor
		before time.Duration
		reject bool
	}{
		{"user 29 minutes before", user1, 29 * time.Minute, true},
		{"user 30 minutes before", user1, 30 * time.Minute, false},
		{"user after start", user1, -time.Minute, true},
		{"admin 1 minute before", admin, time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, startsAt.Add(-tt.before))
			f.seedSlot(model.Wednesday, "10:00", model.CategoryGraduado, model.SlotStatusUnavailable)
			b := f.insertBooking(1, "2024-07-03", "10:00", model.CategoryGraduado)

			err := f.svc.CancelBooking(f.ctx, tt.actor, b.ID)
			if tt.reject {
				wantReason(t, err, policy.ReasonCancelTooLate)
				return
			}
			if err != nil {
				t.Fatalf("cancel: %v", err)
			}

			got, _ := f.memory.Bookings().GetByID(f.ctx, b.ID)
			if got.Status != model.BookingStatusCancelled {
				t.Errorf("status = %s, want CANCELLED", got.Status)
			}
			wantBy := model.CancelledByUser
			if tt.actor.IsAdmin() {
				wantBy = model.CancelledByAdmin
			}
			if got.CancelledBy == nil || *got.CancelledBy != wantBy {
				t.Errorf("cancelled_by = %v, want %s", got.CancelledBy, wantBy)
			}
			if s := f.slotStatus(model.Wednesday, "10:00", model.CategoryGraduado); s != model.SlotStatusAvailable {
				t.Errorf("slot status = %s, want AVAILABLE", s)
			}
		})
	}
}

func TestCancelRules(t *testing.T) {
	f := newFixture(t, thursday)
	f.seedSlot(model.Monday, "08:00", model.CategoryGraduado, model.SlotStatusUnavailable)
	b := f.insertBooking(1, "2024-07-01", "08:00", model.CategoryGraduado)

	if err := f.svc.CancelBooking(f.ctx, user2, b.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("other user cancel: %v", err)
	}
	if err := f.svc.CancelBooking(f.ctx, user1, 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing booking: %v", err)
	}
	if err := f.svc.CancelBooking(f.ctx, user1, b.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	wantReason(t, f.svc.CancelBooking(f.ctx, user1, b.ID), policy.ReasonBookingNotActive)
}

func TestBulkDisableIgnoresBookingsEnableDoesNot(t *testing.T) {
	f := newFixture(t, thursday)
	f.seedSlot(model.Monday, "08:00", model.CategoryGraduado, model.SlotStatusAvailable)
	f.seedSlot(model.Monday, "09:00", model.CategoryGraduado, model.SlotStatusAvailable)

	if _, err := f.svc.CreateBooking(f.ctx, user1, createInput(1, "2024-07-01", "08:00", model.CategoryGraduado)); err != nil {
		t.Fatalf("create: %v", err)
	}

	in := BulkAvailabilityInput{
		Weekday:  model.Monday,
		Category: model.CategoryGraduado,
		Times:    []model.TimeOfDay{"08:00", "09:00"},
	}
	slots, err := f.svc.BulkSetAvailability(f.ctx, admin, in)
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("affected = %d, want 2", len(slots))
	}
	for _, tod := range in.Times {
		if s := f.slotStatus(model.Monday, tod, model.CategoryGraduado); s != model.SlotStatusUnavailable {
			t.Errorf("%s status = %s, want UNAVAILABLE", tod, s)
		}
	}

	in.Enable = true
	_, err = f.svc.BulkSetAvailability(f.ctx, admin, in)
	wantReason(t, err, policy.ReasonSlotHasActiveBooking)
	if s := f.slotStatus(model.Monday, "09:00", model.CategoryGraduado); s != model.SlotStatusUnavailable {
		t.Errorf("partial enable applied: 09:00 is %s", s)
	}

	if _, err := f.svc.BulkSetAvailability(f.ctx, user1, in); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-admin bulk: %v", err)
	}
}

func TestUpdateBooking(t *testing.T) {
	f := newFixture(t, thursday)
	f.seedSlot(model.Monday, "08:00", model.CategoryGraduado, model.SlotStatusAvailable)
	f.seedSlot(model.Tuesday, "09:00", model.CategoryGraduado, model.SlotStatusAvailable)
	f.seedSlot(model.Wednesday, "09:00", model.CategoryGraduado, model.SlotStatusUnavailable)

	b, err := f.svc.CreateBooking(f.ctx, user1, createInput(1, "2024-07-01", "08:00", model.CategoryGraduado))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	published := f.pub.count()

	same := UpdateBookingInput{Date: mustDate("2024-07-01"), Time: "08:00", Weekday: model.Monday}
	if _, err := f.svc.UpdateBooking(f.ctx, user1, b.ID, same); err != nil {
		t.Fatalf("no-op update: %v", err)
	}
	if f.pub.count() != published {
		t.Error("no-op update published an event")
	}

	_, err = f.svc.UpdateBooking(f.ctx, user1, b.ID, UpdateBookingInput{Date: mustDate("2024-07-03"), Time: "09:00", Weekday: model.Wednesday})
	wantReason(t, err, policy.ReasonSlotUnavailable)

	_, err = f.svc.UpdateBooking(f.ctx, user1, b.ID, UpdateBookingInput{Date: mustDate("2024-06-25"), Time: "09:00", Weekday: model.Tuesday})
	wantReason(t, err, policy.ReasonSlotInPast)

	if _, err := f.svc.UpdateBooking(f.ctx, user2, b.ID, same); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign update: %v", err)
	}

	moved, err := f.svc.UpdateBooking(f.ctx, user1, b.ID, UpdateBookingInput{Date: mustDate("2024-07-02"), Time: "09:00", Weekday: model.Tuesday})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.Weekday != model.Tuesday || moved.Time != "09:00" {
		t.Errorf("unexpected booking after move: %+v", moved)
	}
	if s := f.slotStatus(model.Monday, "08:00", model.CategoryGraduado); s != model.SlotStatusAvailable {
		t.Errorf("old slot = %s, want AVAILABLE", s)
	}
	if s := f.slotStatus(model.Tuesday, "09:00", model.CategoryGraduado); s != model.SlotStatusBooked {
		t.Errorf("new slot = %s, want BOOKED", s)
	}

	if _, err := f.svc.UpdateBooking(f.ctx, user1, b.ID, UpdateBookingInput{Date: mustDate("2024-07-09"), Time: "09:00", Weekday: model.Tuesday}); err != nil {
		t.Fatalf("move within recurring slot: %v", err)
	}
	if s := f.slotStatus(model.Tuesday, "09:00", model.CategoryGraduado); s != model.SlotStatusBooked {
		t.Errorf("recurring slot = %s, want BOOKED", s)
	}
}

func TestUpdateConflictExcludesSelf(t *testing.T) {
	f := newFixture(t, thursday)
	f.seedSlot(model.Tuesday, "09:00", model.CategoryGraduado, model.SlotStatusAvailable)
	f.seedSlot(model.Monday, "08:00", model.CategoryGraduado, model.SlotStatusUnavailable)
	mine := f.insertBooking(1, "2024-07-01", "08:00", model.CategoryGraduado)
	f.insertBooking(2, "2024-07-02", "09:00", model.CategoryGraduado)

	_, err := f.svc.UpdateBooking(f.ctx, user1, mine.ID, UpdateBookingInput{Date: mustDate("2024-07-02"), Time: "09:00", Weekday: model.Tuesday})
	wantReason(t, err, policy.ReasonAlreadyBooked)
}

func TestMarkRescheduled(t *testing.T) {
	f := newFixture(t, thursday)
	f.seedSlot(model.Monday, "08:00", model.CategoryGraduado, model.SlotStatusUnavailable)
	b := f.insertBooking(1, "2024-07-01", "08:00", model.CategoryGraduado)
	if err := f.memory.Bookings().UpdateStatus(f.ctx, b.ID, model.BookingStatusCompleted, nil); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, err := f.svc.MarkRescheduled(f.ctx, b.ID, true)
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if got.Status != model.BookingStatusRescheduled {
		t.Errorf("status = %s", got.Status)
	}
	if s := f.slotStatus(model.Monday, "08:00", model.CategoryGraduado); s != model.SlotStatusAvailable {
		t.Errorf("slot = %s, want AVAILABLE", s)
	}

	cancelled := f.insertBooking(2, "2024-07-08", "08:00", model.CategoryGraduado)
	by := model.CancelledByAdmin
	_ = f.memory.Bookings().UpdateStatus(f.ctx, cancelled.ID, model.BookingStatusCancelled, &by)
	_, err = f.svc.MarkRescheduled(f.ctx, cancelled.ID, false)
	wantReason(t, err, policy.ReasonBookingNotActive)

	if _, err := f.svc.MarkRescheduled(f.ctx, 404, false); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing booking: %v", err)
	}
}

func TestReleaseKeepsSlotHeldByAnotherBooking(t *testing.T) {
	f := newFixture(t, thursday)
	f.seedSlot(model.Monday, "08:00", model.CategoryGraduado, model.SlotStatusUnavailable)
	first := f.insertBooking(1, "2024-07-01", "08:00", model.CategoryGraduado)
	f.insertBooking(2, "2024-07-08", "08:00", model.CategoryGraduado)

	if err := f.svc.CancelBooking(f.ctx, admin, first.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if s := f.slotStatus(model.Monday, "08:00", model.CategoryGraduado); s != model.SlotStatusUnavailable {
		t.Errorf("slot = %s, want UNAVAILABLE while another booking holds it", s)
	}
}

func TestCheckBulk(t *testing.T) {
	f := newFixture(t, thursday)

	monday := f.insertBooking(1, "2024-07-01", "08:00", model.CategoryGraduado)
	f.insertBooking(2, "2024-07-10", "09:00", model.CategoryGraduado)
	cancelled := f.insertBooking(2, "2024-07-02", "10:00", model.CategoryGraduado)
	by := model.CancelledByUser
	if err := f.memory.Bookings().UpdateStatus(f.ctx, cancelled.ID, model.BookingStatusCancelled, &by); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	f.insertBooking(3, "2024-07-01", "08:00", model.CategoryOficial)

	got, err := f.svc.CheckBulk(f.ctx, CheckBulkInput{
		Date:     mustDate("2024-07-03"),
		Category: model.CategoryGraduado,
		Times: map[model.Weekday][]model.TimeOfDay{
			model.Monday:    {"08:00", "09:00"},
			model.Tuesday:   {"10:00"},
			model.Wednesday: {"09:00"},
		},
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	tests := []struct {
		name    string
		weekday model.Weekday
		time    model.TimeOfDay
		wantID  int64
	}{
		{"booking in the requested week", model.Monday, "08:00", monday.ID},
		{"free time", model.Monday, "09:00", 0},
		{"cancelled booking", model.Tuesday, "10:00", 0},
		{"same weekday next week", model.Wednesday, "09:00", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, ok := got[tt.weekday]
			if !ok {
				t.Fatalf("weekday %s missing from result", tt.weekday)
			}
			b, ok := row[tt.time]
			if !ok {
				t.Fatalf("time %s missing from result", tt.time)
			}
			switch {
			case tt.wantID == 0 && b != nil:
				t.Errorf("got booking %d, want none", b.ID)
			case tt.wantID != 0 && (b == nil || b.ID != tt.wantID):
				t.Errorf("got %+v, want booking %d", b, tt.wantID)
			}
		})
	}

	_, err = f.svc.CheckBulk(f.ctx, CheckBulkInput{
		Date:     mustDate("2024-07-03"),
		Category: model.CategoryGraduado,
		Times:    map[model.Weekday][]model.TimeOfDay{"sabado": {"08:00"}},
	})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("unknown weekday: %v, want ErrInvalidRequest", err)
	}
}
