package ingestion

import (
	"github.com/google/uuid"

	"github.com/settatam/shop-sub015/internal/domain/shared"
)

// PlatformConnection identifies one connected store on one platform for a
// tenant. Credential management and API mechanics live outside this engine;
// the connection is the addressing handle webhooks and re-syncs arrive under.
type PlatformConnection struct {
	shared.TenantAggregateRoot
	Platform  Platform `gorm:"not null;index"`
	Name      string
	ChannelID *uuid.UUID `gorm:"type:uuid"`

	// APIBaseURL and APIKey are the connection's credentials for polling the
	// platform's order API. Empty APIBaseURL means the connection only
	// receives webhooks and cannot be re-synced.
	APIBaseURL string
	APIKey     string
}

// TableName maps PlatformConnection to the platform_connections table
func (PlatformConnection) TableName() string { return "platform_connections" }
