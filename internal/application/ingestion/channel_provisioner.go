package ingestion

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/settatam/shop-sub015/internal/domain/channel"
	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/shared"
)

// maxCodeAttempts bounds the collision-suffix search when auto-creating a
// channel. Hitting the bound means something is generating codes faster than
// we can claim them and the import should fail loudly.
const maxCodeAttempts = 50

// ChannelProvisioner resolves the sales channel an imported order belongs to.
// Resolution is lazy: tenants are not required to configure a channel before
// connecting a store, so the provisioner links or creates one on first use.
type ChannelProvisioner struct {
	logger *zap.Logger
}

// NewChannelProvisioner creates a channel provisioner
func NewChannelProvisioner(logger *zap.Logger) *ChannelProvisioner {
	return &ChannelProvisioner{logger: logger}
}

// Resolve returns the sales channel for a platform connection, creating or
// linking one when necessary. It must run inside the import transaction so
// channel creation commits or rolls back with the order.
//
// Resolution order:
//  1. the channel the connection already points at
//  2. an existing channel linked back to this connection
//  3. an existing channel for the same platform, which gets linked
//  4. a newly created channel named after the connection
func (p *ChannelProvisioner) Resolve(ctx context.Context, repos TransactionalRepositories, conn *ingestion.PlatformConnection) (*channel.SalesChannel, error) {
	if conn.ChannelID != nil {
		ch, err := repos.ChannelRepo().FindByID(ctx, conn.TenantID, *conn.ChannelID)
		if err == nil {
			return ch, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		// Stale pointer: the channel was deleted out from under the
		// connection. Fall through and re-provision.
		p.logger.Warn("connection references missing channel, re-provisioning",
			zap.String("connection_id", conn.ID.String()),
			zap.String("channel_id", conn.ChannelID.String()))
	}

	ch, err := repos.ChannelRepo().FindByConnection(ctx, conn.TenantID, conn.ID)
	if err == nil {
		return ch, p.pointConnection(ctx, repos, conn, ch)
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	ch, err = repos.ChannelRepo().FindByPlatform(ctx, conn.TenantID, conn.Platform.String())
	if err == nil {
		ch.LinkConnection(conn.ID)
		if err := repos.ChannelRepo().Save(ctx, ch); err != nil {
			return nil, err
		}
		p.logger.Info("linked existing channel to connection",
			zap.String("connection_id", conn.ID.String()),
			zap.String("channel_code", ch.Code))
		return ch, p.pointConnection(ctx, repos, conn, ch)
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	return p.create(ctx, repos, conn)
}

func (p *ChannelProvisioner) create(ctx context.Context, repos TransactionalRepositories, conn *ingestion.PlatformConnection) (*channel.SalesChannel, error) {
	name := conn.Name
	if name == "" {
		name = conn.Platform.DisplayName()
	}

	ch, err := channel.New(conn.TenantID, name, conn.Platform.String())
	if err != nil {
		return nil, err
	}
	ch.LinkConnection(conn.ID)

	base := ch.Code
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		ch.Code = channel.CodeWithSuffix(base, attempt)

		exists, err := repos.ChannelRepo().ExistsByCode(ctx, conn.TenantID, ch.Code)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		err = repos.ChannelRepo().Create(ctx, ch)
		if err == nil {
			p.logger.Info("auto-created sales channel",
				zap.String("connection_id", conn.ID.String()),
				zap.String("channel_code", ch.Code))
			return ch, p.pointConnection(ctx, repos, conn, ch)
		}
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Lost the race for this code, try the next suffix.
			continue
		}
		return nil, err
	}

	return nil, shared.NewDomainError("CHANNEL_CODE_EXHAUSTED", "Could not derive a unique channel code for "+base)
}

func (p *ChannelProvisioner) pointConnection(ctx context.Context, repos TransactionalRepositories, conn *ingestion.PlatformConnection, ch *channel.SalesChannel) error {
	if conn.ChannelID != nil && *conn.ChannelID == ch.ID {
		return nil
	}
	id := ch.ID
	conn.ChannelID = &id
	return repos.ConnectionRepo().Save(ctx, conn)
}
