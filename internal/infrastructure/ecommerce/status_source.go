package ecommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appingestion "github.com/settatam/shop-sub015/internal/application/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/ingestion"
)

// maxResponseSize limits how much of a platform response is read (10 MB)
const maxResponseSize = 10 * 1024 * 1024

var (
	// ErrConnectionNotConfigured indicates the connection carries no API configuration
	ErrConnectionNotConfigured = errors.New("ecommerce: connection has no API configuration")
	// ErrPlatformUnavailable indicates the platform API could not be reached
	ErrPlatformUnavailable = errors.New("ecommerce: platform API unavailable")
	// ErrPlatformRequestFailed indicates the platform API rejected the request
	ErrPlatformRequestFailed = errors.New("ecommerce: platform API request failed")
)

// ConnectionConfig holds the API credentials for one platform connection
type ConnectionConfig struct {
	APIBaseURL string
	APIKey     string
}

// Validate checks that the configuration is usable
func (c *ConnectionConfig) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("%w: missing API base URL", ErrConnectionNotConfigured)
	}
	return nil
}

// HTTPStatusSource fetches the current state of an external order from its
// platform's order API and runs the raw payload through the same normalizer
// the webhook path uses, so a re-sync and a webhook interpret a platform
// payload identically. API credentials live on the platform connection row.
type HTTPStatusSource struct {
	connections ingestion.ConnectionRepository
	normalizers ingestion.NormalizerRegistry
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewHTTPStatusSource creates a status source backed by platform order APIs
func NewHTTPStatusSource(connections ingestion.ConnectionRepository, normalizers ingestion.NormalizerRegistry, logger *zap.Logger) *HTTPStatusSource {
	return &HTTPStatusSource{
		connections: connections,
		normalizers: normalizers,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// connectionConfig loads the API configuration stored on the connection
func (s *HTTPStatusSource) connectionConfig(ctx context.Context, connectionID uuid.UUID) (*ConnectionConfig, error) {
	conn, err := s.connections.FindByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	cfg := &ConnectionConfig{
		APIBaseURL: conn.APIBaseURL,
		APIKey:     conn.APIKey,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FetchOrderStatus retrieves an order from the platform API and reduces it to
// its status fields
func (s *HTTPStatusSource) FetchOrderStatus(ctx context.Context, payload ingestion.ResyncPayload) (appingestion.ResyncDTO, error) {
	cfg, err := s.connectionConfig(ctx, payload.ConnectionID)
	if err != nil {
		return appingestion.ResyncDTO{}, err
	}

	normalizer, err := s.normalizers.Get(payload.Platform)
	if err != nil {
		return appingestion.ResyncDTO{}, err
	}

	body, err := s.doRequest(ctx, cfg, payload.ExternalOrderID)
	if err != nil {
		return appingestion.ResyncDTO{}, err
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return appingestion.ResyncDTO{}, fmt.Errorf("%w: failed to parse response: %v", ErrPlatformRequestFailed, err)
	}

	normalized, err := normalizer.Normalize(raw)
	if err != nil {
		return appingestion.ResyncDTO{}, err
	}

	return appingestion.ResyncDTO{
		Status:            normalized.Status.String(),
		FulfillmentStatus: normalized.FulfillmentStatus.String(),
		PaymentStatus:     normalized.PaymentStatus.String(),
	}, nil
}

// doRequest performs an authenticated GET against the platform order endpoint
func (s *HTTPStatusSource) doRequest(ctx context.Context, cfg *ConnectionConfig, externalOrderID string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/orders/%s", cfg.APIBaseURL, externalOrderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("ecommerce: failed to create request: %w", err)
	}
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("ecommerce: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrPlatformRequestFailed, resp.StatusCode)
	}

	return body, nil
}
