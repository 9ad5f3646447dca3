//go:build unit

// Package memstore is an in-memory UnitOfWork for use case tests. Transactions
// are serialized and roll back on error; the booking exclusion constraint is
// enforced on write like the PostgreSQL one.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"booking-engine/internal/domain/availability"
	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/provider"
	"booking-engine/internal/domain/service"
	"booking-engine/internal/infra"
	"booking-engine/internal/infra/db"
	"booking-engine/internal/pkg/timerange"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type storedBooking struct {
	rec      booking.Record
	occupies bool
}

type state struct {
	providers map[uuid.UUID]provider.Provider
	services  map[uuid.UUID]*service.Service
	rules     map[uuid.UUID]*availability.Rule
	blocked   map[uuid.UUID]*availability.BlockedSlot
	bookings  map[uuid.UUID]storedBooking
	outbox    []shared.OutboxMessage
	idem      map[string]shared.IdempotencyRecord
	dead      map[uuid.UUID]string
}

func (s state) clone() state {
	return state{
		providers: maps.Clone(s.providers),
		services:  maps.Clone(s.services),
		rules:     maps.Clone(s.rules),
		blocked:   maps.Clone(s.blocked),
		bookings:  maps.Clone(s.bookings),
		outbox:    slices.Clone(s.outbox),
		idem:      maps.Clone(s.idem),
		dead:      maps.Clone(s.dead),
	}
}

type Store struct {
	mu  sync.Mutex
	cur state
}

var _ shared.UnitOfWork = (*Store)(nil)

func New() *Store {
	return &Store{cur: state{
		providers: map[uuid.UUID]provider.Provider{},
		services:  map[uuid.UUID]*service.Service{},
		rules:     map[uuid.UUID]*availability.Rule{},
		blocked:   map[uuid.UUID]*availability.BlockedSlot{},
		bookings:  map[uuid.UUID]storedBooking{},
		idem:      map[string]shared.IdempotencyRecord{},
		dead:      map[uuid.UUID]string{},
	}}
}

func (s *Store) AddProvider(p provider.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.providers[p.ID] = p
}

func (s *Store) AddService(svc *service.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.services[svc.ID()] = svc
}

func (s *Store) AddRule(r *availability.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.rules[r.ID()] = r
}

func (s *Store) AddBlocked(b *availability.BlockedSlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.blocked[b.ID()] = b
}

// AddBooking stores b without running the exclusion check.
func (s *Store) AddBooking(b *booking.Booking, occupies bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.bookings[b.ID()] = storedBooking{rec: b.Record(), occupies: occupies}
}

func (s *Store) Booking(id uuid.UUID) (*booking.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sb, ok := s.cur.bookings[id]
	if !ok {
		return nil, false
	}
	return booking.Reconstruct(sb.rec), true
}

func (s *Store) Bookings() []*booking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*booking.Booking, 0, len(s.cur.bookings))
	for _, sb := range s.cur.bookings {
		out = append(out, booking.Reconstruct(sb.rec))
	}
	return out
}

func (s *Store) RuleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cur.rules)
}

func (s *Store) Outbox() []shared.OutboxMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cur.outbox)
}

func (s *Store) Dead() map[uuid.UUID]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.cur.dead)
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.cur.clone()
	if err := fn(ctx, &memTx{st: &s.cur}); err != nil {
		s.cur = saved
		return err
	}
	return nil
}

func (s *Store) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, reads shared.CommandReads) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, &reads{st: &s.cur})
}

func (s *Store) CommandReads() shared.CommandReads {
	return &lockingReads{store: s}
}

type memTx struct {
	st *state
}

func (t *memTx) Rules() shared.RuleRepository               { return ruleRepo{t.st} }
func (t *memTx) BlockedSlots() shared.BlockedSlotRepository { return blockedRepo{t.st} }
func (t *memTx) Bookings() shared.BookingRepository         { return bookingRepo{t.st} }
func (t *memTx) Outbox() shared.OutboxRepository            { return outboxRepo{t.st} }
func (t *memTx) Idempotency() shared.IdempotencyRepository  { return idemRepo{t.st} }
func (t *memTx) Reads() shared.CommandReads                 { return &reads{st: t.st} }
func (t *memTx) DB() db.DBTX                                { return nil }

func notFound(what string) error {
	return infra.WrapRepoErr(what+" not found", nil, infra.KindNotFound)
}

type ruleRepo struct{ st *state }

func (r ruleRepo) Create(_ context.Context, _ db.DBTX, rule *availability.Rule) error {
	r.st.rules[rule.ID()] = rule
	return nil
}

func (r ruleRepo) Update(_ context.Context, _ db.DBTX, rule *availability.Rule) error {
	cur, ok := r.st.rules[rule.ID()]
	if !ok || cur.ProviderID() != rule.ProviderID() {
		return notFound("rule")
	}
	r.st.rules[rule.ID()] = rule
	return nil
}

func (r ruleRepo) Delete(_ context.Context, _ db.DBTX, providerID, id uuid.UUID) error {
	cur, ok := r.st.rules[id]
	if !ok || cur.ProviderID() != providerID {
		return notFound("rule")
	}
	delete(r.st.rules, id)
	return nil
}

type blockedRepo struct{ st *state }

func (r blockedRepo) Create(_ context.Context, _ db.DBTX, b *availability.BlockedSlot) error {
	r.st.blocked[b.ID()] = b
	return nil
}

func (r blockedRepo) Delete(_ context.Context, _ db.DBTX, providerID, id uuid.UUID) error {
	cur, ok := r.st.blocked[id]
	if !ok || cur.ProviderID() != providerID {
		return notFound("blocked slot")
	}
	delete(r.st.blocked, id)
	return nil
}

type bookingRepo struct{ st *state }

func (r bookingRepo) Create(_ context.Context, _ db.DBTX, b *booking.Booking, occupies bool) error {
	if err := r.exclusive(b, occupies); err != nil {
		return err
	}
	r.st.bookings[b.ID()] = storedBooking{rec: b.Record(), occupies: occupies}
	return nil
}

func (r bookingRepo) Update(_ context.Context, _ db.DBTX, b *booking.Booking, occupies bool) error {
	if _, ok := r.st.bookings[b.ID()]; !ok {
		return notFound("booking")
	}
	if err := r.exclusive(b, occupies); err != nil {
		return err
	}
	r.st.bookings[b.ID()] = storedBooking{rec: b.Record(), occupies: occupies}
	return nil
}

func (r bookingRepo) exclusive(b *booking.Booking, occupies bool) error {
	if !occupies {
		return nil
	}
	window := b.Window()
	for id, other := range r.st.bookings {
		if id == b.ID() || !other.occupies || other.rec.ProviderID != b.ProviderID() {
			continue
		}
		if window.Overlaps(timerange.FromDuration(other.rec.Start, other.rec.Duration)) {
			return infra.WrapRepoErr("booking overlaps an occupied window", nil, infra.KindConflict)
		}
	}
	return nil
}

type outboxRepo struct{ st *state }

func (r outboxRepo) Enqueue(_ context.Context, _ db.DBTX, msgs ...shared.OutboxMessage) error {
	r.st.outbox = append(r.st.outbox, msgs...)
	return nil
}

type idemRepo struct{ st *state }

func idemKey(providerID uuid.UUID, key string) string { return providerID.String() + "/" + key }

func (r idemRepo) Find(_ context.Context, _ db.DBTX, providerID uuid.UUID, key string, now time.Time) (*shared.IdempotencyRecord, error) {
	rec, ok := r.st.idem[idemKey(providerID, key)]
	if !ok || !rec.ExpiresAt.After(now) {
		return nil, nil
	}
	return &rec, nil
}

func (r idemRepo) Save(_ context.Context, _ db.DBTX, rec shared.IdempotencyRecord) error {
	k := idemKey(rec.ProviderID, rec.Key)
	if cur, ok := r.st.idem[k]; ok && cur.ExpiresAt.After(rec.CreatedAt) {
		return infra.WrapRepoErr("idempotency key in use", nil, infra.KindConflict)
	}
	r.st.idem[k] = rec
	return nil
}

type reads struct{ st *state }

func (r *reads) ProviderBySlug(_ context.Context, slug string) (*provider.Provider, error) {
	for _, p := range r.st.providers {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, notFound("provider")
}

func (r *reads) ProviderByID(_ context.Context, id uuid.UUID) (*provider.Provider, error) {
	p, ok := r.st.providers[id]
	if !ok {
		return nil, notFound("provider")
	}
	return &p, nil
}

func (r *reads) ServiceByID(_ context.Context, providerID, id uuid.UUID) (*service.Service, error) {
	svc, ok := r.st.services[id]
	if !ok || svc.ProviderID() != providerID {
		return nil, notFound("service")
	}
	return svc, nil
}

func (r *reads) RuleByID(_ context.Context, providerID, id uuid.UUID) (*availability.Rule, error) {
	rule, ok := r.st.rules[id]
	if !ok || rule.ProviderID() != providerID {
		return nil, notFound("rule")
	}
	return rule, nil
}

func (r *reads) RulesByProvider(_ context.Context, providerID uuid.UUID) ([]*availability.Rule, error) {
	var out []*availability.Rule
	for _, rule := range r.st.rules {
		if rule.ProviderID() == providerID {
			out = append(out, rule)
		}
	}
	slices.SortFunc(out, func(a, b *availability.Rule) int {
		if a.Weekday() != b.Weekday() {
			return int(a.Weekday()) - int(b.Weekday())
		}
		return a.Start().Minutes() - b.Start().Minutes()
	})
	return out, nil
}

func (r *reads) BlockedInRange(_ context.Context, providerID uuid.UUID, window timerange.Range) ([]*availability.BlockedSlot, error) {
	var out []*availability.BlockedSlot
	for _, b := range r.st.blocked {
		if b.ProviderID() == providerID && window.Overlaps(b.Range()) {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b *availability.BlockedSlot) int { return a.Start().Compare(b.Start()) })
	return out, nil
}

func (r *reads) FindOverlappingBookings(_ context.Context, providerID uuid.UUID, window timerange.Range, pendingOccupies bool) ([]timerange.Range, error) {
	var out []timerange.Range
	for _, sb := range r.st.bookings {
		if sb.rec.ProviderID != providerID || !booking.StatusOccupies(sb.rec.Status, pendingOccupies) {
			continue
		}
		w := timerange.FromDuration(sb.rec.Start, sb.rec.Duration)
		if window.Overlaps(w) {
			out = append(out, w)
		}
	}
	slices.SortFunc(out, func(a, b timerange.Range) int { return a.Start.Compare(b.Start) })
	return out, nil
}

func (r *reads) BookingForUpdate(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	sb, ok := r.st.bookings[id]
	if !ok {
		return nil, notFound("booking")
	}
	return booking.Reconstruct(sb.rec), nil
}

func (r *reads) BookingByPaymentRef(_ context.Context, paymentRef string) (*booking.Booking, error) {
	for _, sb := range r.st.bookings {
		if paymentRef != "" && sb.rec.PaymentRef == paymentRef {
			return booking.Reconstruct(sb.rec), nil
		}
	}
	return nil, notFound("booking")
}

// lockingReads takes the store lock per call, like autocommit reads on a pool.
type lockingReads struct {
	store *Store
}

func (l *lockingReads) with() (*reads, func()) {
	l.store.mu.Lock()
	return &reads{st: &l.store.cur}, l.store.mu.Unlock
}

func (l *lockingReads) ProviderBySlug(ctx context.Context, slug string) (*provider.Provider, error) {
	r, done := l.with()
	defer done()
	return r.ProviderBySlug(ctx, slug)
}

func (l *lockingReads) ProviderByID(ctx context.Context, id uuid.UUID) (*provider.Provider, error) {
	r, done := l.with()
	defer done()
	return r.ProviderByID(ctx, id)
}

func (l *lockingReads) ServiceByID(ctx context.Context, providerID, id uuid.UUID) (*service.Service, error) {
	r, done := l.with()
	defer done()
	return r.ServiceByID(ctx, providerID, id)
}

func (l *lockingReads) RuleByID(ctx context.Context, providerID, id uuid.UUID) (*availability.Rule, error) {
	r, done := l.with()
	defer done()
	return r.RuleByID(ctx, providerID, id)
}

func (l *lockingReads) RulesByProvider(ctx context.Context, providerID uuid.UUID) ([]*availability.Rule, error) {
	r, done := l.with()
	defer done()
	return r.RulesByProvider(ctx, providerID)
}

func (l *lockingReads) BlockedInRange(ctx context.Context, providerID uuid.UUID, window timerange.Range) ([]*availability.BlockedSlot, error) {
	r, done := l.with()
	defer done()
	return r.BlockedInRange(ctx, providerID, window)
}

func (l *lockingReads) FindOverlappingBookings(ctx context.Context, providerID uuid.UUID, window timerange.Range, pendingOccupies bool) ([]timerange.Range, error) {
	r, done := l.with()
	defer done()
	return r.FindOverlappingBookings(ctx, providerID, window, pendingOccupies)
}

func (l *lockingReads) BookingForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	r, done := l.with()
	defer done()
	return r.BookingForUpdate(ctx, id)
}

func (l *lockingReads) BookingByPaymentRef(ctx context.Context, paymentRef string) (*booking.Booking, error) {
	r, done := l.with()
	defer done()
	return r.BookingByPaymentRef(ctx, paymentRef)
}

// OutboxStore view over the same state.

func (s *Store) ClaimDue(_ context.Context, now time.Time, limit int) ([]shared.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []shared.OutboxMessage
	for _, m := range s.cur.outbox {
		if len(out) == limit {
			break
		}
		if _, dead := s.cur.dead[m.ID]; dead {
			continue
		}
		if !m.AvailableAt.After(now) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) MarkPublished(_ context.Context, id uuid.UUID, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.outbox = slices.DeleteFunc(s.cur.outbox, func(m shared.OutboxMessage) bool { return m.ID == id })
	return nil
}

func (s *Store) MarkFailed(_ context.Context, id uuid.UUID, _ string, retryAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cur.outbox {
		if s.cur.outbox[i].ID == id {
			s.cur.outbox[i].Attempts++
			s.cur.outbox[i].AvailableAt = retryAt
		}
	}
	return nil
}

func (s *Store) MarkDead(_ context.Context, id uuid.UUID, lastErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.dead[id] = lastErr
	return nil
}
