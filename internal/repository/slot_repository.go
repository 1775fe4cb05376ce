package repository

import (
	"context"
	"fmt"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(db base.DBTX) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(db)}
}

const slotByKeyQuery = `
	SELECT id, weekday, time, category, status, updated_at
	FROM slots
	WHERE weekday = $1 AND time = $2 AND category = $3
`

// Get returns the slot or nil when it does not exist.
func (r *SlotRepository) Get(ctx context.Context, key model.SlotKey) (*model.Slot, error) {
	slot, err := scanSlot(r.QueryRow(ctx, slotByKeyQuery, key.Weekday, key.Time, key.Category))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}

	return slot, nil
}

// GetForUpdate blocks while another transaction holds the row, so a booking
// that claimed the slot is committed before the caller checks the ledger.
func (r *SlotRepository) GetForUpdate(ctx context.Context, key model.SlotKey) (*model.Slot, error) {
	slot, err := scanSlot(r.QueryRow(ctx, slotByKeyQuery+` FOR UPDATE`, key.Weekday, key.Time, key.Category))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock slot: %w", err)
	}

	return slot, nil
}

// ListAll returns every slot ordered by weekday, category and time.
func (r *SlotRepository) ListAll(ctx context.Context) ([]*model.Slot, error) {
	query := `
		SELECT id, weekday, time, category, status, updated_at
		FROM slots
		ORDER BY
			CASE weekday
				WHEN 'segunda' THEN 1 WHEN 'terça' THEN 2 WHEN 'quarta' THEN 3
				WHEN 'quinta' THEN 4 WHEN 'sexta' THEN 5 ELSE 6
			END,
			category, time
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

// ListDistinctTimes returns the sorted set of times present in the grid.
func (r *SlotRepository) ListDistinctTimes(ctx context.Context) ([]model.TimeOfDay, error) {
	rows, err := r.Query(ctx, `SELECT DISTINCT time FROM slots ORDER BY time`)
	if err != nil {
		return nil, fmt.Errorf("list slot times: %w", err)
	}
	defer rows.Close()

	var times []model.TimeOfDay
	for rows.Next() {
		var t model.TimeOfDay
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan slot time: %w", err)
		}
		times = append(times, t)
	}

	return times, rows.Err()
}

// Upsert inserts the slot or overwrites its status.
func (r *SlotRepository) Upsert(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (weekday, time, category, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (weekday, time, category)
		DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
		RETURNING id, updated_at
	`

	err := r.QueryRow(ctx, query, slot.Weekday, slot.Time, slot.Category, slot.Status).
		Scan(&slot.ID, &slot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert slot: %w", err)
	}

	return nil
}

func (r *SlotRepository) SetStatus(ctx context.Context, key model.SlotKey, status model.SlotStatus) error {
	slot := &model.Slot{Weekday: key.Weekday, Time: key.Time, Category: key.Category, Status: status}
	if err := r.Upsert(ctx, slot); err != nil {
		return fmt.Errorf("set slot status: %w", err)
	}
	return nil
}

func (r *SlotRepository) Claim(ctx context.Context, key model.SlotKey, status model.SlotStatus) (bool, error) {
	query := `
		UPDATE slots
		SET status = $1, updated_at = NOW()
		WHERE weekday = $2 AND time = $3 AND category = $4 AND status = 'AVAILABLE'
	`

	affected, err := r.ExecAffected(ctx, query, status, key.Weekday, key.Time, key.Category)
	if err != nil {
		return false, fmt.Errorf("claim slot: %w", err)
	}

	return affected == 1, nil
}

func (r *SlotRepository) RemoveIfExists(ctx context.Context, key model.SlotKey) (bool, error) {
	affected, err := r.ExecAffected(ctx,
		`DELETE FROM slots WHERE weekday = $1 AND time = $2 AND category = $3`,
		key.Weekday, key.Time, key.Category,
	)
	if err != nil {
		return false, fmt.Errorf("remove slot: %w", err)
	}

	return affected > 0, nil
}

func (r *SlotRepository) SeedTime(ctx context.Context, t model.TimeOfDay) (int64, error) {
	var inserted int64
	for _, weekday := range model.Weekdays {
		for _, category := range model.Categories {
			affected, err := r.ExecAffected(ctx, `
				INSERT INTO slots (weekday, time, category, status)
				VALUES ($1, $2, $3, 'AVAILABLE')
				ON CONFLICT (weekday, time, category) DO NOTHING
			`, weekday, t, category)
			if err != nil {
				return inserted, fmt.Errorf("seed slot time: %w", err)
			}
			inserted += affected
		}
	}

	return inserted, nil
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var slot model.Slot
	err := row.Scan(
		&slot.ID,
		&slot.Weekday,
		&slot.Time,
		&slot.Category,
		&slot.Status,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}
