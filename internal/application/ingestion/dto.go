package ingestion

import (
	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/order"
)

// ResyncDTO carries the status fields a re-sync fetched from a platform.
// Fields left empty are not applied.
type ResyncDTO struct {
	Status            string         `json:"status" binding:"omitempty,oneof=draft pending confirmed processing shipped delivered completed cancelled refunded"`
	FulfillmentStatus string         `json:"fulfillment_status" binding:"omitempty,oneof=unfulfilled partial fulfilled"`
	PaymentStatus     string         `json:"payment_status" binding:"omitempty,oneof=pending paid partially_refunded refunded voided"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

func (d ResyncDTO) toStatusUpdate() ingestion.StatusUpdate {
	return ingestion.StatusUpdate{
		Status:            order.Status(d.Status),
		FulfillmentStatus: order.FulfillmentStatus(d.FulfillmentStatus),
		PaymentStatus:     order.PaymentStatus(d.PaymentStatus),
	}
}
