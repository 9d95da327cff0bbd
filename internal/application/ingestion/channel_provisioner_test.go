package ingestion

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/settatam/shop-sub015/internal/domain/channel"
	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/shared"
)

func newTestConnection(tenantID uuid.UUID, name string) *ingestion.PlatformConnection {
	return &ingestion.PlatformConnection{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Platform:            ingestion.PlatformShopify,
		Name:                name,
	}
}

func TestChannelProvisioner_Resolve_ExistingPointer(t *testing.T) {
	repos := newTestRepos()
	p := NewChannelProvisioner(zap.NewNop())
	ctx := context.Background()

	tenantID := uuid.New()
	conn := newTestConnection(tenantID, "Main Store")
	ch, err := channel.New(tenantID, "Main Store", "SHOPIFY")
	require.NoError(t, err)
	chID := ch.ID
	conn.ChannelID = &chID

	repos.channelRepo.On("FindByID", ctx, tenantID, ch.ID).Return(ch, nil)

	resolved, err := p.Resolve(ctx, repos.scope, conn)

	require.NoError(t, err)
	assert.Equal(t, ch.ID, resolved.ID)
	repos.connRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestChannelProvisioner_Resolve_LinksPlatformChannel(t *testing.T) {
	repos := newTestRepos()
	p := NewChannelProvisioner(zap.NewNop())
	ctx := context.Background()

	tenantID := uuid.New()
	conn := newTestConnection(tenantID, "Main Store")
	ch, err := channel.New(tenantID, "Shopify", "SHOPIFY")
	require.NoError(t, err)

	repos.channelRepo.On("FindByConnection", ctx, tenantID, conn.ID).Return(nil, shared.ErrNotFound)
	repos.channelRepo.On("FindByPlatform", ctx, tenantID, "SHOPIFY").Return(ch, nil)
	repos.channelRepo.On("Save", ctx, ch).Return(nil)
	repos.connRepo.On("Save", ctx, conn).Return(nil)

	resolved, err := p.Resolve(ctx, repos.scope, conn)

	require.NoError(t, err)
	assert.Equal(t, ch.ID, resolved.ID)
	require.NotNil(t, resolved.ConnectionID)
	assert.Equal(t, conn.ID, *resolved.ConnectionID)
	require.NotNil(t, conn.ChannelID)
	assert.Equal(t, ch.ID, *conn.ChannelID)
}

func TestChannelProvisioner_Resolve_AutoCreates(t *testing.T) {
	repos := newTestRepos()
	p := NewChannelProvisioner(zap.NewNop())
	ctx := context.Background()

	tenantID := uuid.New()
	conn := newTestConnection(tenantID, "My Shopify Store")

	repos.channelRepo.On("FindByConnection", ctx, tenantID, conn.ID).Return(nil, shared.ErrNotFound)
	repos.channelRepo.On("FindByPlatform", ctx, tenantID, "SHOPIFY").Return(nil, shared.ErrNotFound)
	repos.channelRepo.On("ExistsByCode", ctx, tenantID, "my_shopify_store").Return(false, nil)
	repos.channelRepo.On("Create", ctx, mock.AnythingOfType("*channel.SalesChannel")).Return(nil)
	repos.connRepo.On("Save", ctx, conn).Return(nil)

	resolved, err := p.Resolve(ctx, repos.scope, conn)

	require.NoError(t, err)
	assert.Equal(t, "My Shopify Store", resolved.Name)
	assert.Equal(t, "my_shopify_store", resolved.Code)
	assert.Equal(t, "SHOPIFY", resolved.Platform)
}

func TestChannelProvisioner_Resolve_CodeCollisionSuffix(t *testing.T) {
	repos := newTestRepos()
	p := NewChannelProvisioner(zap.NewNop())
	ctx := context.Background()

	tenantID := uuid.New()
	conn := newTestConnection(tenantID, "Main Store")

	repos.channelRepo.On("FindByConnection", ctx, tenantID, conn.ID).Return(nil, shared.ErrNotFound)
	repos.channelRepo.On("FindByPlatform", ctx, tenantID, "SHOPIFY").Return(nil, shared.ErrNotFound)
	repos.channelRepo.On("ExistsByCode", ctx, tenantID, "main_store").Return(true, nil)
	repos.channelRepo.On("ExistsByCode", ctx, tenantID, "main_store_1").Return(false, nil)
	// Lost the insert race for the first free suffix.
	repos.channelRepo.On("Create", ctx, mock.MatchedBy(func(c *channel.SalesChannel) bool {
		return c.Code == "main_store_1"
	})).Return(shared.ErrAlreadyExists)
	repos.channelRepo.On("ExistsByCode", ctx, tenantID, "main_store_2").Return(false, nil)
	repos.channelRepo.On("Create", ctx, mock.MatchedBy(func(c *channel.SalesChannel) bool {
		return c.Code == "main_store_2"
	})).Return(nil)
	repos.connRepo.On("Save", ctx, conn).Return(nil)

	resolved, err := p.Resolve(ctx, repos.scope, conn)

	require.NoError(t, err)
	assert.Equal(t, "main_store_2", resolved.Code)
}

func TestChannelProvisioner_Resolve_StalePointerReprovisions(t *testing.T) {
	repos := newTestRepos()
	p := NewChannelProvisioner(zap.NewNop())
	ctx := context.Background()

	tenantID := uuid.New()
	conn := newTestConnection(tenantID, "Main Store")
	staleID := uuid.New()
	conn.ChannelID = &staleID

	ch, err := channel.New(tenantID, "Main Store", "SHOPIFY")
	require.NoError(t, err)
	ch.LinkConnection(conn.ID)

	repos.channelRepo.On("FindByID", ctx, tenantID, staleID).Return(nil, shared.ErrNotFound)
	repos.channelRepo.On("FindByConnection", ctx, tenantID, conn.ID).Return(ch, nil)
	repos.connRepo.On("Save", ctx, conn).Return(nil)

	resolved, err := p.Resolve(ctx, repos.scope, conn)

	require.NoError(t, err)
	assert.Equal(t, ch.ID, resolved.ID)
	require.NotNil(t, conn.ChannelID)
	assert.Equal(t, ch.ID, *conn.ChannelID)
}
