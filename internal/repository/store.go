package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is the PostgreSQL-backed Store.
type PgStore struct {
	pool     *pgxpool.Pool
	slots    *SlotRepository
	bookings *BookingRepository
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{
		pool:     pool,
		slots:    NewSlotRepository(pool),
		bookings: NewBookingRepository(pool),
	}
}

func (s *PgStore) Slots() SlotCatalog {
	return s.slots
}

func (s *PgStore) Bookings() BookingLedger {
	return s.bookings
}

// WithinTx commits when fn returns nil and rolls back otherwise.
func (s *PgStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{
		slots:    NewSlotRepository(tx),
		bookings: NewBookingRepository(tx),
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

type pgTx struct {
	slots    *SlotRepository
	bookings *BookingRepository
}

func (t *pgTx) Slots() SlotCatalog {
	return t.slots
}

func (t *pgTx) Bookings() BookingLedger {
	return t.bookings
}
