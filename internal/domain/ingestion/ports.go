package ingestion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JobType identifies a deferred follow-up job
type JobType string

const (
	// JobTypeStatusResync re-fetches an order's status from the platform
	JobTypeStatusResync JobType = "order.status_resync"
	// JobTypeReturnsResync re-fetches an order's refunds/returns
	JobTypeReturnsResync JobType = "order.returns_resync"
)

// ResyncPayload is the payload carried by deferred re-sync jobs
type ResyncPayload struct {
	TenantID        uuid.UUID `json:"tenant_id"`
	ConnectionID    uuid.UUID `json:"connection_id"`
	ExternalOrderID string    `json:"external_order_id"`
	Platform        Platform  `json:"platform"`
}

// JobScheduler is the outbound port to the delayed-job facility.
// Scheduling is fire-and-forget with at-least-once delivery; consumers
// must tolerate duplicate runs.
type JobScheduler interface {
	Schedule(ctx context.Context, jobType JobType, payload ResyncPayload, delay time.Duration) error
}

// OversellFact describes a depletion request that could not be fully
// satisfied by available stock
type OversellFact struct {
	TenantID    uuid.UUID
	VariantID   uuid.UUID
	SKU         string
	Requested   decimal.Decimal
	Unfulfilled decimal.Decimal
	Platform    Platform
	OrderRef    string
}

// OversellNotifier is the outbound port to the notification pipeline.
// Delivery and fan-out to tenant admins are the notifier's responsibility.
type OversellNotifier interface {
	NotifyOversold(ctx context.Context, fact OversellFact) error
}
