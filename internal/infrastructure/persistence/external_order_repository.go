package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/shared"
)

// GormExternalOrderRepository implements ExternalOrderRepository using GORM
type GormExternalOrderRepository struct {
	db *gorm.DB
}

// NewGormExternalOrderRepository creates a new GormExternalOrderRepository
func NewGormExternalOrderRepository(db *gorm.DB) *GormExternalOrderRepository {
	return &GormExternalOrderRepository{db: db}
}

// Upsert creates or refreshes the ledger row for (connection, external order
// id) in a single statement. The ON CONFLICT update list deliberately
// excludes order_id: the import linkage is written separately via Save and
// must survive any number of re-deliveries. The authoritative row is
// re-fetched after the write so callers see the existing order_id.
func (r *GormExternalOrderRepository) Upsert(ctx context.Context, conn *ingestion.PlatformConnection, n *ingestion.NormalizedOrder) (*ingestion.ExternalOrderRecord, error) {
	now := time.Now()
	rec := &ingestion.ExternalOrderRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(conn.TenantID),
		ConnectionID:        conn.ID,
		ExternalOrderID:     n.ExternalOrderID,
		ExternalOrderNumber: n.ExternalOrderNumber,
		Platform:            conn.Platform,
		Status:              n.Status,
		FulfillmentStatus:   n.FulfillmentStatus,
		PaymentStatus:       n.PaymentStatus,
		Total:               n.Total,
		Currency:            n.Currency,
		OrderedAt:           n.OrderedAt,
		LastSyncedAt:        now,
		PlatformData:        n.PlatformData,
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "connection_id"}, {Name: "external_order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"external_order_number", "status", "fulfillment_status", "payment_status",
				"total", "currency", "ordered_at", "last_synced_at", "platform_data", "updated_at",
			}),
		}).
		Create(rec).Error; err != nil {
		return nil, err
	}

	return r.FindByExternalID(ctx, conn.ID, n.ExternalOrderID)
}

// FindByExternalID finds a ledger row by its natural key
func (r *GormExternalOrderRepository) FindByExternalID(ctx context.Context, connectionID uuid.UUID, externalOrderID string) (*ingestion.ExternalOrderRecord, error) {
	var rec ingestion.ExternalOrderRecord
	if err := r.db.WithContext(ctx).
		Where("connection_id = ? AND external_order_id = ?", connectionID, externalOrderID).
		First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Save persists changes to an existing ledger row
func (r *GormExternalOrderRepository) Save(ctx context.Context, rec *ingestion.ExternalOrderRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

// Ensure GormExternalOrderRepository implements ExternalOrderRepository
var _ ingestion.ExternalOrderRepository = (*GormExternalOrderRepository)(nil)
