package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/shared"
)

// GormConnectionRepository implements ConnectionRepository using GORM
type GormConnectionRepository struct {
	db *gorm.DB
}

// NewGormConnectionRepository creates a new GormConnectionRepository
func NewGormConnectionRepository(db *gorm.DB) *GormConnectionRepository {
	return &GormConnectionRepository{db: db}
}

// FindByID finds a platform connection by its ID
func (r *GormConnectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ingestion.PlatformConnection, error) {
	var conn ingestion.PlatformConnection
	if err := r.db.WithContext(ctx).First(&conn, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &conn, nil
}

// Save persists changes to an existing connection
func (r *GormConnectionRepository) Save(ctx context.Context, conn *ingestion.PlatformConnection) error {
	return r.db.WithContext(ctx).Save(conn).Error
}

// Ensure GormConnectionRepository implements ConnectionRepository
var _ ingestion.ConnectionRepository = (*GormConnectionRepository)(nil)
