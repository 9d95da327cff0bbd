package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/settatam/shop-sub015/internal/domain/ingestion"
)

// LogOversellNotifier surfaces oversell facts as structured warnings for the
// operations team to act on. Swapping in an email or chat notifier means
// implementing the same port.
type LogOversellNotifier struct {
	logger *zap.Logger
}

// NewLogOversellNotifier creates a log-backed oversell notifier
func NewLogOversellNotifier(logger *zap.Logger) *LogOversellNotifier {
	return &LogOversellNotifier{logger: logger}
}

// NotifyOversold records an oversell warning
func (n *LogOversellNotifier) NotifyOversold(_ context.Context, fact ingestion.OversellFact) error {
	n.logger.Warn("Stock oversold",
		zap.String("tenant_id", fact.TenantID.String()),
		zap.String("variant_id", fact.VariantID.String()),
		zap.String("sku", fact.SKU),
		zap.String("requested", fact.Requested.String()),
		zap.String("unfulfilled", fact.Unfulfilled.String()),
		zap.String("platform", string(fact.Platform)),
		zap.String("order_ref", fact.OrderRef),
	)
	return nil
}

var _ ingestion.OversellNotifier = (*LogOversellNotifier)(nil)
