// Package backoffice is the HTTP client for the back-office REST API that
// owns clients, invoices, sales and collections.
package backoffice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/erp/backoffice/internal/domain/delivery"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/receivable"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
)

const defaultMaxResponseSize = 10 * 1024 * 1024

// Config holds the client settings
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxResponseSize int64
}

// Config errors
var (
	ErrConfigMissingBaseURL = errors.New("backoffice: base URL is required")
	ErrConfigInvalidBaseURL = errors.New("backoffice: base URL must be absolute")
)

// Validate validates the configuration
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrConfigInvalidBaseURL
	}
	return nil
}

// UnauthorizedFunc is called when the back-office rejects a session
type UnauthorizedFunc func(ctx context.Context, session identity.Session)

// Client implements receivable.Gateway and delivery.Gateway over HTTP
type Client struct {
	baseURL         string
	httpClient      *http.Client
	maxResponseSize int64
	logger          *zap.Logger
	metrics         *telemetry.BusinessMetrics
	onUnauthorized  UnauthorizedFunc
}

var (
	_ receivable.Gateway = (*Client)(nil)
	_ delivery.Gateway   = (*Client)(nil)
)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request failures
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records call latency
func WithMetrics(m *telemetry.BusinessMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithUnauthorizedHandler is invoked on every 401, typically to clear the session
func WithUnauthorizedHandler(fn UnauthorizedFunc) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// NewClient creates a client for the given configuration
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		maxResponseSize: cfg.MaxResponseSize,
		logger:          zap.NewNop(),
	}
	if c.maxResponseSize <= 0 {
		c.maxResponseSize = defaultMaxResponseSize
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// receivable.Gateway
// ---------------------------------------------------------------------------

// LoadDebt fetches GET /cxc/deuda/{clienteId}
func (c *Client) LoadDebt(ctx context.Context, session identity.Session, clientID int64) (*receivable.DebtSnapshot, error) {
	body, err := c.doRequest(ctx, session, http.MethodGet, fmt.Sprintf("/cxc/deuda/%d", clientID), nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := decodeBody[debtResponse](body)
	if err != nil {
		return nil, err
	}
	snapshot := resp.toSnapshot()
	if snapshot.Client.ID == 0 {
		snapshot.Client.ID = clientID
	}
	return snapshot, nil
}

// CreateCollection posts POST /cobranzas_clientes
func (c *Client) CreateCollection(ctx context.Context, session identity.Session, payload *receivable.CollectionPayload) (*receivable.CollectionReceipt, error) {
	body, err := c.doRequest(ctx, session, http.MethodPost, "/cobranzas_clientes", nil, payload)
	if err != nil {
		return nil, err
	}
	resp, err := decodeBody[createdResponse](body)
	if err != nil {
		return nil, err
	}
	return &receivable.CollectionReceipt{ID: resp.ID}, nil
}

// ListCollections fetches GET /cobranzas_clientes
func (c *Client) ListCollections(ctx context.Context, session identity.Session, filter receivable.CollectionFilter) (*receivable.CollectionPage, error) {
	query := url.Values{}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		query.Set("limit", strconv.Itoa(filter.PageSize))
	}
	if filter.ClientID > 0 {
		query.Set("cliente_id", strconv.FormatInt(filter.ClientID, 10))
	}
	body, err := c.doRequest(ctx, session, http.MethodGet, "/cobranzas_clientes", query, nil)
	if err != nil {
		return nil, err
	}
	return decodeCollectionList(body, filter)
}

// GetCollection fetches GET /cobranzas_clientes/{id}
func (c *Client) GetCollection(ctx context.Context, session identity.Session, id int64) (*receivable.CollectionRecord, error) {
	body, err := c.doRequest(ctx, session, http.MethodGet, fmt.Sprintf("/cobranzas_clientes/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := decodeBody[collectionWire](body)
	if err != nil {
		return nil, err
	}
	rec := resp.toRecord()
	return &rec, nil
}

// ---------------------------------------------------------------------------
// delivery.Gateway
// ---------------------------------------------------------------------------

// RouteClients fetches GET /repartos/{id}/clientes
func (c *Client) RouteClients(ctx context.Context, session identity.Session, routeID int64) ([]delivery.RouteClient, error) {
	body, err := c.doRequest(ctx, session, http.MethodGet, fmt.Sprintf("/repartos/%d/clientes", routeID), nil, nil)
	if err != nil {
		return nil, err
	}
	members, err := decodeBody[[]routeMemberWire](body)
	if err != nil {
		return nil, err
	}
	clients := make([]delivery.RouteClient, 0, len(members))
	for _, m := range members {
		if rc := m.toRouteClient(); rc.ID > 0 {
			clients = append(clients, rc)
		}
	}
	return clients, nil
}

// Products fetches GET /productos
func (c *Client) Products(ctx context.Context, session identity.Session) ([]delivery.Product, error) {
	body, err := c.doRequest(ctx, session, http.MethodGet, "/productos", nil, nil)
	if err != nil {
		return nil, err
	}
	rows, err := decodeBody[[]productWire](body)
	if err != nil {
		return nil, err
	}
	products := make([]delivery.Product, 0, len(rows))
	for _, p := range rows {
		products = append(products, delivery.Product{ID: p.ID, Name: p.Nombre, UnitPrice: p.Precio.FloorZero()})
	}
	return products, nil
}

// Sellers fetches GET /vendedores
func (c *Client) Sellers(ctx context.Context, session identity.Session) ([]delivery.Seller, error) {
	body, err := c.doRequest(ctx, session, http.MethodGet, "/vendedores", nil, nil)
	if err != nil {
		return nil, err
	}
	rows, err := decodeBody[[]sellerWire](body)
	if err != nil {
		return nil, err
	}
	sellers := make([]delivery.Seller, 0, len(rows))
	for _, s := range rows {
		sellers = append(sellers, delivery.Seller{ID: s.ID, Name: s.Nombre})
	}
	return sellers, nil
}

// CreateBatchSale posts POST /ventas/reparto-masiva
func (c *Client) CreateBatchSale(ctx context.Context, session identity.Session, payload *delivery.BatchSalePayload) (*delivery.BatchSaleReceipt, error) {
	body, err := c.doRequest(ctx, session, http.MethodPost, "/ventas/reparto-masiva", nil, payload)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &delivery.BatchSaleReceipt{Count: len(payload.Items)}, nil
	}
	resp, err := decodeBody[batchSaleResponse](body)
	if err != nil {
		return nil, err
	}
	return resp.toReceipt(), nil
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// doRequest performs one call and returns the body of a 2xx answer.
// Non-2xx answers become *ServiceError; transport failures wrap ErrUnavailable.
func (c *Client) doRequest(ctx context.Context, session identity.Session, method, path string, query url.Values, payload any) ([]byte, error) {
	ctx, span := telemetry.StartClientSpan(ctx, method, path)
	defer span.End()

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("backoffice: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("backoffice: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !session.IsZero() {
		req.Header.Set("Authorization", session.Authorization())
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.RecordError(span, err)
		c.metrics.RecordBackofficeCall(ctx, method+" "+path, 0, time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	c.metrics.RecordBackofficeCall(ctx, method+" "+path, resp.StatusCode, time.Since(start))
	span.SetAttributes(telemetry.AttrHTTPStatusCode.Int(resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 300 {
		svcErr := parseServiceError(resp.StatusCode, body)
		telemetry.RecordError(span, svcErr)
		if isGatewayFailure(resp.StatusCode) && svcErr.Code == "" {
			// a proxy answered, the service itself was not reached
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, svcErr)
		}
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized(ctx, session)
		}
		c.logger.Warn("backoffice rejected request",
			zap.String("request_id", logger.GetRequestID(ctx)),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("code", svcErr.Code),
		)
		return nil, svcErr
	}

	return body, nil
}

func isGatewayFailure(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func parseServiceError(status int, body []byte) *ServiceError {
	svcErr := &ServiceError{Status: status}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		svcErr.Raw = string(body)
		return svcErr
	}
	svcErr.Code = env.Code
	svcErr.Message = env.MensajeError
	if svcErr.Message == "" {
		svcErr.Message = env.Message
	}
	svcErr.Tips = env.Tips
	svcErr.Details = env.Details
	if svcErr.Code == "" && svcErr.Message == "" {
		svcErr.Raw = string(body)
	}
	return svcErr
}
