package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	appingestion "github.com/settatam/shop-sub015/internal/application/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/shared"
	"github.com/settatam/shop-sub015/internal/infrastructure/logger"
	"github.com/settatam/shop-sub015/internal/interfaces/http/dto"
	"github.com/settatam/shop-sub015/internal/interfaces/http/middleware"
)

// IngestionService is the application-layer surface the handler drives
type IngestionService interface {
	ProcessWebhook(ctx context.Context, connectionID uuid.UUID, payload map[string]any) (*appingestion.ImportResult, error)
	Resync(ctx context.Context, connectionID uuid.UUID, externalOrderID string, dto appingestion.ResyncDTO) error
}

// IngestionHandler handles order webhook and re-sync endpoints
type IngestionHandler struct {
	BaseHandler
	service      IngestionService
	externalRepo ingestion.ExternalOrderRepository
}

// NewIngestionHandler creates an ingestion handler
func NewIngestionHandler(service IngestionService, externalRepo ingestion.ExternalOrderRepository) *IngestionHandler {
	return &IngestionHandler{service: service, externalRepo: externalRepo}
}

// RegisterRoutes registers ingestion routes on the API group
func (h *IngestionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	connections := rg.Group("/connections/:id")
	{
		connections.POST("/webhooks/orders", h.IngestOrderWebhook)
		connections.POST("/orders/:externalID/resync", h.ResyncOrder)
		connections.GET("/orders/:externalID", h.GetExternalOrder)
	}
}

// webhookResponse reports what a webhook delivery did
type webhookResponse struct {
	ExternalOrderID string   `json:"external_order_id"`
	OrderID         *string  `json:"order_id,omitempty"`
	AlreadyImported bool     `json:"already_imported"`
	OversoldSKUs    []string `json:"oversold_skus,omitempty"`
}

// IngestOrderWebhook accepts one order webhook delivery from a platform.
// Platforms redeliver on non-2xx responses, so only failures that a retry
// can fix (transaction errors) return 5xx; bad payloads return 4xx.
func (h *IngestionHandler) IngestOrderWebhook(c *gin.Context) {
	connectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid connection ID")
		return
	}

	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid JSON payload")
		return
	}

	result, err := h.service.ProcessWebhook(c.Request.Context(), connectionID, payload)
	if err != nil {
		h.handleIngestionError(c, err)
		return
	}

	resp := webhookResponse{
		ExternalOrderID: result.ExternalOrderID,
		AlreadyImported: result.AlreadyImported,
	}
	if result.OrderID != nil {
		id := result.OrderID.String()
		resp.OrderID = &id
	}
	for _, fact := range result.Oversells {
		resp.OversoldSKUs = append(resp.OversoldSKUs, fact.SKU)
	}

	if result.AlreadyImported {
		h.Success(c, resp)
		return
	}
	h.Created(c, resp)
}

// ResyncOrder applies a status DTO to an existing ledger row on demand
func (h *IngestionHandler) ResyncOrder(c *gin.Context) {
	connectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid connection ID")
		return
	}
	externalOrderID := c.Param("externalID")

	var body appingestion.ResyncDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			middleware.HandleValidationError(c, err)
			return
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid JSON payload")
		return
	}

	if err := h.service.Resync(c.Request.Context(), connectionID, externalOrderID, body); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "External order not found")
			return
		}
		h.handleIngestionError(c, err)
		return
	}

	logger.GetGinLogger(c).Info("External order re-synced")
	h.Success(c, gin.H{"external_order_id": externalOrderID})
}

// externalOrderResponse is the ledger view of an external order
type externalOrderResponse struct {
	ExternalOrderID     string  `json:"external_order_id"`
	ExternalOrderNumber string  `json:"external_order_number"`
	OrderID             *string `json:"order_id,omitempty"`
	Status              string  `json:"status"`
	FulfillmentStatus   string  `json:"fulfillment_status"`
	PaymentStatus       string  `json:"payment_status"`
	Total               string  `json:"total"`
	Currency            string  `json:"currency"`
	LastSyncedAt        string  `json:"last_synced_at"`
}

// GetExternalOrder returns the ledger row for one external order
func (h *IngestionHandler) GetExternalOrder(c *gin.Context) {
	connectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid connection ID")
		return
	}

	rec, err := h.externalRepo.FindByExternalID(c.Request.Context(), connectionID, c.Param("externalID"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "External order not found")
			return
		}
		h.InternalError(c, "Failed to load external order")
		return
	}

	resp := externalOrderResponse{
		ExternalOrderID:     rec.ExternalOrderID,
		ExternalOrderNumber: rec.ExternalOrderNumber,
		Status:              string(rec.Status),
		FulfillmentStatus:   string(rec.FulfillmentStatus),
		PaymentStatus:       string(rec.PaymentStatus),
		Total:               rec.Total.String(),
		Currency:            rec.Currency,
		LastSyncedAt:        rec.LastSyncedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if rec.OrderID != nil {
		id := rec.OrderID.String()
		resp.OrderID = &id
	}
	h.Success(c, resp)
}

// handleIngestionError maps ingestion failures to HTTP responses
func (h *IngestionHandler) handleIngestionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ingestion.ErrConnectionNotFound):
		h.NotFound(c, "Connection not found")
	case errors.Is(err, ingestion.ErrMissingExternalOrderID):
		h.BadRequest(c, "Payload has no external order ID")
	case errors.Is(err, ingestion.ErrUnknownPlatform):
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeUnknownPlatform, "Connection platform is not supported")
	default:
		h.HandleError(c, err)
	}
}
