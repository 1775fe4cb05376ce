package service

import (
	"context"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/metrics"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/repository"
	"go.uber.org/zap"
)

const (
	JobCompleteElapsed = "complete_elapsed"
	JobResetSlots      = "reset_slots"
)

// StatusReconciler ages bookings and re-derives slot status from the ledger.
// Slot status is a cache of "a SCHEDULED booking holds this recurring key".
type StatusReconciler struct {
	store     repository.Store
	location  *time.Location
	publisher UpdatePublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewStatusReconciler(store repository.Store, location *time.Location, publisher UpdatePublisher, logger *zap.Logger, now func() time.Time) *StatusReconciler {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.Local
	}
	return &StatusReconciler{
		store:     store,
		location:  location,
		publisher: publisher,
		logger:    logger,
		now:       now,
	}
}

// CompleteElapsed flips SCHEDULED bookings that started before now to COMPLETED.
func (r *StatusReconciler) CompleteElapsed(ctx context.Context) (int, error) {
	now := r.now().In(r.location)
	completed := 0

	err := r.store.WithinTx(ctx, func(tx repository.Tx) error {
		candidates, err := tx.Bookings().ListScheduledUntil(ctx, model.DateOf(now))
		if err != nil {
			return err
		}
		for _, b := range candidates {
			if !b.StartsAt(r.location).Before(now) {
				continue
			}
			if err := tx.Bookings().UpdateStatus(ctx, b.ID, model.BookingStatusCompleted, nil); err != nil {
				return err
			}
			completed++
		}
		return nil
	})
	if err != nil {
		metrics.ReconcilerRuns.WithLabelValues(JobCompleteElapsed, "error").Inc()
		return 0, err
	}

	metrics.ReconcilerRuns.WithLabelValues(JobCompleteElapsed, "ok").Inc()
	metrics.ReconcilerCorrections.WithLabelValues(JobCompleteElapsed).Add(float64(completed))

	if completed == 0 {
		r.logger.Debug("No elapsed bookings to complete")
		return 0, nil
	}

	r.logger.Info("Elapsed bookings completed", zap.Int("count", completed))
	r.publisher.PublishRefresh(ctx, "bookings.completed")
	return completed, nil
}

// ResetSlots makes every slot agree with the ledger. A slot held by a
// SCHEDULED booking must not be AVAILABLE; a slot nobody holds becomes
// AVAILABLE again. Running it twice in a row changes nothing the second time.
func (r *StatusReconciler) ResetSlots(ctx context.Context) (int, error) {
	corrections := 0

	err := r.store.WithinTx(ctx, func(tx repository.Tx) error {
		keys, err := tx.Bookings().ScheduledSlotKeys(ctx)
		if err != nil {
			return err
		}
		held := make(map[model.SlotKey]bool, len(keys))
		for _, k := range keys {
			held[k] = true
		}

		slots, err := tx.Slots().ListAll(ctx)
		if err != nil {
			return err
		}

		// The snapshot above only picks candidates. Each one is locked and
		// re-checked, because a booking may have claimed it meanwhile.
		var candidates []model.SlotKey
		for _, slot := range slots {
			key := slot.Key()
			if held[key] == (slot.Status == model.SlotStatusAvailable) {
				candidates = append(candidates, key)
			}
			delete(held, key)
		}
		for key := range held {
			candidates = append(candidates, key)
		}

		for _, key := range candidates {
			from, to, changed, err := correctSlot(ctx, tx, key)
			if err != nil {
				return err
			}
			if !changed {
				continue
			}
			if from == "" {
				r.logger.Warn("Recreated missing slot for scheduled booking",
					zap.String("weekday", string(key.Weekday)),
					zap.String("time", string(key.Time)),
					zap.String("category", string(key.Category)),
				)
			} else {
				r.logger.Info("Slot status corrected",
					zap.String("weekday", string(key.Weekday)),
					zap.String("time", string(key.Time)),
					zap.String("category", string(key.Category)),
					zap.String("from", string(from)),
					zap.String("to", string(to)),
				)
			}
			corrections++
		}
		return nil
	})
	if err != nil {
		metrics.ReconcilerRuns.WithLabelValues(JobResetSlots, "error").Inc()
		return 0, err
	}

	metrics.ReconcilerRuns.WithLabelValues(JobResetSlots, "ok").Inc()
	metrics.ReconcilerCorrections.WithLabelValues(JobResetSlots).Add(float64(corrections))

	if corrections == 0 {
		r.logger.Info("Slot statuses already consistent, no correction needed")
		return 0, nil
	}

	r.logger.Info("Slot statuses reset", zap.Int("corrections", corrections))
	r.publisher.PublishRefresh(ctx, "slots.reset")
	return corrections, nil
}

// correctSlot locks the slot, reads the ledger and writes the status it
// implies. from is empty when the slot row had to be created.
func correctSlot(ctx context.Context, tx repository.Tx, key model.SlotKey) (from, to model.SlotStatus, changed bool, err error) {
	slot, err := tx.Slots().GetForUpdate(ctx, key)
	if err != nil {
		return "", "", false, err
	}
	held, err := tx.Bookings().HasScheduled(ctx, key, 0)
	if err != nil {
		return "", "", false, err
	}

	switch {
	case slot == nil && held:
		to = model.SlotStatusUnavailable
	case slot == nil:
		return "", "", false, nil
	case held && slot.Status == model.SlotStatusAvailable:
		from, to = slot.Status, model.SlotStatusUnavailable
	case !held && slot.Status != model.SlotStatusAvailable:
		from, to = slot.Status, model.SlotStatusAvailable
	default:
		return "", "", false, nil
	}

	if err := tx.Slots().SetStatus(ctx, key, to); err != nil {
		return "", "", false, err
	}
	return from, to, true, nil
}
