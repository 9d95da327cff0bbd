package ingestion

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/settatam/shop-sub015/internal/domain/catalog"
	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/order"
	"github.com/settatam/shop-sub015/internal/domain/shared"
)

// Delays before the deferred follow-up jobs run. Platforms often settle
// payment and fulfillment state a short while after sending the order
// webhook, so the re-sync picks up what the initial payload missed.
const (
	statusResyncDelay  = 60 * time.Second
	returnsResyncDelay = 90 * time.Second
)

// ImportResult reports what a webhook delivery did
type ImportResult struct {
	ExternalOrderID string
	OrderID         *uuid.UUID
	AlreadyImported bool
	Oversells       []ingestion.OversellFact
}

// Importer orchestrates the ingestion of one external order: normalize,
// provision the sales channel, upsert the ledger, and on first sight create
// the internal order, deplete stock and record payment inside one atomic
// unit of work. Deliveries after the first only refresh the ledger and
// advance the order status.
type Importer struct {
	normalizers    ingestion.NormalizerRegistry
	connectionRepo ingestion.ConnectionRepository
	externalRepo   ingestion.ExternalOrderRepository
	txScope        TransactionScope
	provisioner    *ChannelProvisioner
	depleter       *StockDepleter
	synchronizer   *StatusSynchronizer
	scheduler      ingestion.JobScheduler
	notifier       ingestion.OversellNotifier
	logger         *zap.Logger
}

// NewImporter creates an order importer
func NewImporter(
	normalizers ingestion.NormalizerRegistry,
	connectionRepo ingestion.ConnectionRepository,
	externalRepo ingestion.ExternalOrderRepository,
	txScope TransactionScope,
	provisioner *ChannelProvisioner,
	depleter *StockDepleter,
	synchronizer *StatusSynchronizer,
	scheduler ingestion.JobScheduler,
	notifier ingestion.OversellNotifier,
	logger *zap.Logger,
) *Importer {
	return &Importer{
		normalizers:    normalizers,
		connectionRepo: connectionRepo,
		externalRepo:   externalRepo,
		txScope:        txScope,
		provisioner:    provisioner,
		depleter:       depleter,
		synchronizer:   synchronizer,
		scheduler:      scheduler,
		notifier:       notifier,
		logger:         logger,
	}
}

// ProcessWebhook ingests one webhook delivery for a platform connection.
// Only transactional failures are returned to the caller; business-level
// anomalies (duplicates, oversells, backward statuses) are absorbed and
// reported through logs and notifications.
func (i *Importer) ProcessWebhook(ctx context.Context, connectionID uuid.UUID, payload map[string]any) (*ImportResult, error) {
	conn, err := i.connectionRepo.FindByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ingestion.ErrConnectionNotFound
		}
		return nil, err
	}

	normalizer, err := i.normalizers.Get(conn.Platform)
	if err != nil {
		return nil, err
	}

	normalized, err := normalizer.Normalize(payload)
	if err != nil {
		return nil, err
	}
	if err := normalized.Validate(); err != nil {
		return nil, err
	}

	result := &ImportResult{ExternalOrderID: normalized.ExternalOrderID}

	err = i.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := repos.ExternalOrderRepo().Upsert(ctx, conn, normalized)
		if err != nil {
			return err
		}

		if rec.IsImported() {
			// Duplicate or re-ordered delivery. The upsert already refreshed
			// the ledger; only the internal order's status may still move.
			result.AlreadyImported = true
			result.OrderID = rec.OrderID
			return i.synchronizer.AdvanceOrder(ctx, repos, rec, ingestion.StatusUpdateFrom(normalized))
		}

		o, oversells, err := i.createOrder(ctx, repos, conn, normalized)
		if err != nil {
			return err
		}
		if err := rec.AttachOrder(o.ID); err != nil {
			return err
		}
		if err := repos.ExternalOrderRepo().Save(ctx, rec); err != nil {
			return err
		}

		result.OrderID = &o.ID
		result.Oversells = oversells
		return nil
	})
	if err != nil {
		return nil, err
	}

	i.afterCommit(ctx, conn, normalized, result)
	return result, nil
}

// createOrder builds and persists the internal order, its items and payment,
// and depletes stock for every matched line item. Runs entirely inside the
// import transaction.
func (i *Importer) createOrder(ctx context.Context, repos TransactionalRepositories, conn *ingestion.PlatformConnection, n *ingestion.NormalizedOrder) (*order.Order, []ingestion.OversellFact, error) {
	ch, err := i.provisioner.Resolve(ctx, repos, conn)
	if err != nil {
		return nil, nil, err
	}

	number, err := repos.OrderRepo().NextOrderNumber(ctx, conn.TenantID)
	if err != nil {
		return nil, nil, err
	}

	o, err := order.New(conn.TenantID, number, n.Status)
	if err != nil {
		return nil, nil, err
	}
	chID := ch.ID
	o.ChannelID = &chID
	if n.FulfillmentStatus.IsValid() {
		o.FulfillmentStatus = n.FulfillmentStatus
	}
	if n.PaymentStatus.IsValid() {
		o.PaymentStatus = n.PaymentStatus
	}
	o.SetTotals(n.Subtotal, n.ShippingTotal, n.TaxTotal, n.DiscountTotal, n.Total, n.Currency)
	o.ShippingAddress = n.ShippingAddress
	o.BillingAddress = n.BillingAddress
	if !n.OrderedAt.IsZero() {
		o.OrderedAt = n.OrderedAt
	}

	if n.Customer.Email != "" {
		customer, err := repos.CustomerRepo().FindOrCreateByEmail(ctx, conn.TenantID,
			n.Customer.Email, n.Customer.FirstName, n.Customer.LastName, n.Customer.Phone)
		if err != nil {
			return nil, nil, err
		}
		custID := customer.ID
		o.CustomerID = &custID
	}

	type depletion struct {
		variant  *catalog.ProductVariant
		quantity decimal.Decimal
	}
	depletions := make([]depletion, 0, len(n.Items))

	for _, line := range n.Items {
		item := order.Item{
			SKU:        line.SKU,
			Title:      line.Title,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			Discount:   line.Discount,
			Tax:        line.Tax,
			ExternalID: line.ExternalLineID,
		}

		if line.SKU != "" {
			variant, err := repos.VariantRepo().FindBySKU(ctx, conn.TenantID, line.SKU)
			switch {
			case err == nil:
				vID := variant.ID
				pID := variant.ProductID
				item.VariantID = &vID
				item.ProductID = &pID
				item.UnitCost = variant.Cost
				item.WholesalePrice = variant.WholesalePrice
				depletions = append(depletions, depletion{variant: variant, quantity: line.Quantity})
			case errors.Is(err, shared.ErrNotFound):
				// No catalog match: record the item anyway, no stock effect.
			default:
				return nil, nil, err
			}
		}

		if _, err := o.AddItem(item); err != nil {
			return nil, nil, err
		}
	}

	if err := repos.OrderRepo().Create(ctx, o); err != nil {
		return nil, nil, err
	}

	var oversells []ingestion.OversellFact
	for _, dep := range depletions {
		v := dep.variant

		unfulfilled, err := i.depleter.Deplete(ctx, repos, v, dep.quantity)
		if err != nil {
			return nil, nil, err
		}
		if unfulfilled.IsPositive() {
			oversells = append(oversells, ingestion.OversellFact{
				TenantID:    conn.TenantID,
				VariantID:   v.ID,
				SKU:         v.SKU,
				Requested:   dep.quantity,
				Unfulfilled: unfulfilled,
				Platform:    conn.Platform,
				OrderRef:    o.OrderNumber,
			})
		}
	}

	if n.PaymentStatus == order.PaymentStatusPaid && n.Total.IsPositive() {
		payment, err := order.NewPayment(conn.TenantID, o.ID, n.Total, n.Currency)
		if err != nil {
			return nil, nil, err
		}
		if err := repos.PaymentRepo().Create(ctx, payment); err != nil {
			return nil, nil, err
		}
	}

	return o, oversells, nil
}

// afterCommit runs the fire-and-forget side effects of a successful import.
// Nothing here may fail the import: the transaction is already committed and
// the platform has been acknowledged.
func (i *Importer) afterCommit(ctx context.Context, conn *ingestion.PlatformConnection, n *ingestion.NormalizedOrder, result *ImportResult) {
	for _, fact := range result.Oversells {
		if err := i.notifier.NotifyOversold(ctx, fact); err != nil {
			i.logger.Error("oversell notification failed",
				zap.String("sku", fact.SKU),
				zap.Error(err))
		}
	}

	if result.AlreadyImported {
		return
	}

	payload := ingestion.ResyncPayload{
		TenantID:        conn.TenantID,
		ConnectionID:    conn.ID,
		ExternalOrderID: n.ExternalOrderID,
		Platform:        conn.Platform,
	}
	if err := i.scheduler.Schedule(ctx, ingestion.JobTypeStatusResync, payload, statusResyncDelay); err != nil {
		i.logger.Error("failed to schedule status re-sync",
			zap.String("external_order_id", n.ExternalOrderID),
			zap.Error(err))
	}
	if n.PaymentStatus.IndicatesRefund() {
		if err := i.scheduler.Schedule(ctx, ingestion.JobTypeReturnsResync, payload, returnsResyncDelay); err != nil {
			i.logger.Error("failed to schedule returns re-sync",
				zap.String("external_order_id", n.ExternalOrderID),
				zap.Error(err))
		}
	}
}

// Resync applies a previously-fetched status DTO to an existing ledger row
// and its internal order. Used by the deferred re-sync executors and the
// manual re-sync endpoint.
func (i *Importer) Resync(ctx context.Context, connectionID uuid.UUID, externalOrderID string, dto ResyncDTO) error {
	rec, err := i.externalRepo.FindByExternalID(ctx, connectionID, externalOrderID)
	if err != nil {
		return err
	}
	return i.synchronizer.Sync(ctx, rec, dto.toStatusUpdate())
}
