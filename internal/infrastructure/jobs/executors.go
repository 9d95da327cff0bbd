package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appingestion "github.com/settatam/shop-sub015/internal/application/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/shared"
)

// StatusSource fetches the current state of an external order from its
// platform. Implementations wrap the per-platform REST clients; the engine
// itself only consumes the already-deserialized result.
type StatusSource interface {
	FetchOrderStatus(ctx context.Context, payload ingestion.ResyncPayload) (appingestion.ResyncDTO, error)
}

// Resyncer applies a fetched status DTO to a ledger row. Satisfied by the
// application-layer Importer.
type Resyncer interface {
	Resync(ctx context.Context, connectionID uuid.UUID, externalOrderID string, dto appingestion.ResyncDTO) error
}

// StatusResyncExecutor re-fetches an order's status shortly after import,
// catching payment and fulfillment transitions the initial webhook missed.
type StatusResyncExecutor struct {
	source   StatusSource
	resyncer Resyncer
	logger   *zap.Logger
}

// NewStatusResyncExecutor creates a status re-sync executor
func NewStatusResyncExecutor(source StatusSource, resyncer Resyncer, logger *zap.Logger) *StatusResyncExecutor {
	return &StatusResyncExecutor{source: source, resyncer: resyncer, logger: logger}
}

// Execute fetches the order's current platform status and applies it
func (e *StatusResyncExecutor) Execute(ctx context.Context, job *Job) error {
	dto, err := e.source.FetchOrderStatus(ctx, job.Payload)
	if err != nil {
		return fmt.Errorf("fetch order status: %w", err)
	}

	err = e.resyncer.Resync(ctx, job.Payload.ConnectionID, job.Payload.ExternalOrderID, dto)
	if errors.Is(err, shared.ErrNotFound) {
		// Ledger row vanished between scheduling and execution. Nothing to sync.
		e.logger.Warn("ledger row missing for status re-sync",
			zap.String("connection_id", job.Payload.ConnectionID.String()),
			zap.String("external_order_id", job.Payload.ExternalOrderID))
		return nil
	}
	return err
}

// ReturnsResyncExecutor re-fetches refund state for orders whose payload
// showed a refund signal at import time
type ReturnsResyncExecutor struct {
	source   StatusSource
	resyncer Resyncer
	logger   *zap.Logger
}

// NewReturnsResyncExecutor creates a returns re-sync executor
func NewReturnsResyncExecutor(source StatusSource, resyncer Resyncer, logger *zap.Logger) *ReturnsResyncExecutor {
	return &ReturnsResyncExecutor{source: source, resyncer: resyncer, logger: logger}
}

// Execute fetches the order's refund state and applies it
func (e *ReturnsResyncExecutor) Execute(ctx context.Context, job *Job) error {
	dto, err := e.source.FetchOrderStatus(ctx, job.Payload)
	if err != nil {
		return fmt.Errorf("fetch returns status: %w", err)
	}

	err = e.resyncer.Resync(ctx, job.Payload.ConnectionID, job.Payload.ExternalOrderID, dto)
	if errors.Is(err, shared.ErrNotFound) {
		e.logger.Warn("ledger row missing for returns re-sync",
			zap.String("connection_id", job.Payload.ConnectionID.String()),
			zap.String("external_order_id", job.Payload.ExternalOrderID))
		return nil
	}
	return err
}

var (
	_ Executor = (*StatusResyncExecutor)(nil)
	_ Executor = (*ReturnsResyncExecutor)(nil)
)
