package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/settatam/shop-sub015/internal/domain/channel"
	"github.com/settatam/shop-sub015/internal/domain/shared"
)

// GormSalesChannelRepository implements channel.Repository using GORM
type GormSalesChannelRepository struct {
	db *gorm.DB
}

// NewGormSalesChannelRepository creates a new GormSalesChannelRepository
func NewGormSalesChannelRepository(db *gorm.DB) *GormSalesChannelRepository {
	return &GormSalesChannelRepository{db: db}
}

// FindByID finds a channel by ID within a tenant
func (r *GormSalesChannelRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*channel.SalesChannel, error) {
	var ch channel.SalesChannel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ch, nil
}

// FindByConnection finds the channel linked to a platform connection
func (r *GormSalesChannelRepository) FindByConnection(ctx context.Context, tenantID, connectionID uuid.UUID) (*channel.SalesChannel, error) {
	var ch channel.SalesChannel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND connection_id = ?", tenantID, connectionID).
		First(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ch, nil
}

// FindByPlatform finds the first channel for a platform within a tenant
func (r *GormSalesChannelRepository) FindByPlatform(ctx context.Context, tenantID uuid.UUID, platform string) (*channel.SalesChannel, error) {
	var ch channel.SalesChannel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform = ?", tenantID, platform).
		Order("created_at ASC").
		First(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ch, nil
}

// ExistsByCode reports whether a channel with the code exists for the tenant
func (r *GormSalesChannelRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&channel.SalesChannel{}).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create persists a new channel. A (tenant, code) unique violation surfaces
// as shared.ErrAlreadyExists so callers can retry with the next suffix.
func (r *GormSalesChannelRepository) Create(ctx context.Context, c *channel.SalesChannel) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists changes to an existing channel
func (r *GormSalesChannelRepository) Save(ctx context.Context, c *channel.SalesChannel) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Ensure GormSalesChannelRepository implements channel.Repository
var _ channel.Repository = (*GormSalesChannelRepository)(nil)
