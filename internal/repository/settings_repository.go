package repository

import (
	"context"
	"fmt"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/repository/base"
)

type SettingsRepository struct {
	*base.Repository
}

func NewSettingsRepository(db base.DBTX) *SettingsRepository {
	return &SettingsRepository{Repository: base.NewRepository(db)}
}

// OpeningHours returns nil when no row has been configured.
func (r *SettingsRepository) OpeningHours(ctx context.Context) (*model.OpeningHours, error) {
	var hours model.OpeningHours
	err := r.QueryRow(ctx, `SELECT opening_time, closing_time FROM scheduling_settings WHERE id = 1`).
		Scan(&hours.Opening, &hours.Closing)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get opening hours: %w", err)
	}

	return &hours, nil
}

func (r *SettingsRepository) UpdateOpeningHours(ctx context.Context, hours model.OpeningHours) error {
	_, err := r.ExecAffected(ctx, `
		INSERT INTO scheduling_settings (id, opening_time, closing_time)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE
		SET opening_time = EXCLUDED.opening_time, closing_time = EXCLUDED.closing_time, updated_at = NOW()
	`, hours.Opening, hours.Closing)
	if err != nil {
		return fmt.Errorf("update opening hours: %w", err)
	}

	return nil
}
