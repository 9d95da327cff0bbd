package channel

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/settatam/shop-sub015/internal/domain/shared"
)

// SalesChannel identifies a sales origin for a tenant. A channel may be local
// (in-store, phone) or linked to an external platform connection.
type SalesChannel struct {
	shared.TenantAggregateRoot
	Name         string
	Code         string     `gorm:"not null;uniqueIndex:idx_channel_tenant_code"`
	Platform     string     // empty for local channels
	ConnectionID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName maps SalesChannel to the sales_channels table
func (SalesChannel) TableName() string { return "sales_channels" }

// New creates a sales channel with a code derived from its name
func New(tenantID uuid.UUID, name, platform string) (*SalesChannel, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CHANNEL_NAME", "Channel name cannot be empty")
	}

	return &SalesChannel{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Code:                DeriveCode(name),
		Platform:            platform,
	}, nil
}

// LinkConnection links the channel to a platform connection
func (c *SalesChannel) LinkConnection(connectionID uuid.UUID) {
	c.ConnectionID = &connectionID
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// DeriveCode derives a channel code from a display name: lower-cased, runs of
// non-alphanumerics collapsed to a single underscore, leading and trailing
// underscores trimmed.
func DeriveCode(name string) string {
	code := strings.ToLower(name)
	code = nonAlnum.ReplaceAllString(code, "_")
	code = strings.Trim(code, "_")
	if code == "" {
		code = "channel"
	}
	return code
}

// CodeWithSuffix appends a numeric collision suffix to a base code.
// Suffix 0 returns the base code unchanged.
func CodeWithSuffix(base string, suffix int) string {
	if suffix <= 0 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, suffix)
}
