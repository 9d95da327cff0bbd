package ingestion

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/shared"
)

// StatusSynchronizer applies status updates from external platforms to the
// ledger and to the linked internal order. The ledger always takes the
// latest external truth; the internal order only moves forward, so
// re-ordered or duplicate deliveries converge to the same end state.
type StatusSynchronizer struct {
	txScope TransactionScope
	logger  *zap.Logger
}

// NewStatusSynchronizer creates a status synchronizer
func NewStatusSynchronizer(txScope TransactionScope, logger *zap.Logger) *StatusSynchronizer {
	return &StatusSynchronizer{txScope: txScope, logger: logger}
}

// Sync applies a status update to the ledger row and, when the external order
// has been imported, advances the internal order. Used by the deferred
// re-sync jobs and the polling path.
func (s *StatusSynchronizer) Sync(ctx context.Context, rec *ingestion.ExternalOrderRecord, update ingestion.StatusUpdate) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec.ApplyStatus(update)
		if err := repos.ExternalOrderRepo().Save(ctx, rec); err != nil {
			return err
		}
		return s.AdvanceOrder(ctx, repos, rec, update)
	})
}

// AdvanceOrder applies the forward-only status progression to the internal
// order linked to a ledger row. Callers already holding a transaction use
// this directly after their own ledger write. Backward and duplicate
// candidates are absorbed silently; terminal candidates always apply.
func (s *StatusSynchronizer) AdvanceOrder(ctx context.Context, repos TransactionalRepositories, rec *ingestion.ExternalOrderRecord, update ingestion.StatusUpdate) error {
	if !rec.IsImported() {
		return nil
	}

	o, err := repos.OrderRepo().FindByIDForTenant(ctx, rec.TenantID, *rec.OrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// The linked order is gone; keep the ledger as the audit trail.
			s.logger.Warn("ledger references missing internal order",
				zap.String("external_order_id", rec.ExternalOrderID),
				zap.String("order_id", rec.OrderID.String()))
			return nil
		}
		return err
	}

	if !o.ApplyExternalStatus(update.Status) {
		s.logger.Debug("ignoring non-forward status candidate",
			zap.String("order_id", o.ID.String()),
			zap.String("current", o.Status.String()),
			zap.String("candidate", update.Status.String()))
		return nil
	}

	if err := repos.OrderRepo().UpdateStatus(ctx, rec.TenantID, o.ID, o.Status); err != nil {
		return err
	}
	s.logger.Info("advanced internal order status",
		zap.String("order_id", o.ID.String()),
		zap.String("status", o.Status.String()))
	return nil
}
