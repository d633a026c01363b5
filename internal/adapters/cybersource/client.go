package cybersource

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/kevin07696/cybersource-adapter/internal/config"
	"github.com/kevin07696/cybersource-adapter/internal/domain"
	"github.com/kevin07696/cybersource-adapter/internal/domain/ports"
	pkgerrors "github.com/kevin07696/cybersource-adapter/pkg/errors"
)

// Client implements the Gateway port against the CyberSource REST API. It is
// immutable after construction and safe for concurrent use; per-call state
// lives entirely in the request.
type Client struct {
	httpClient ports.HTTPClient
	logger     ports.Logger
	cfg        config.CyberSourceConfig
	baseURL    string
}

// NewClient creates a gateway client with dependency injection. Construction
// fails when the merchant credentials are incomplete.
func NewClient(cfg config.CyberSourceConfig, httpClient ports.HTTPClient, logger ports.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gateway config: %w", err)
	}
	if httpClient == nil {
		httpClient = defaultHTTPClient(cfg)
	}
	return &Client{
		cfg:        cfg,
		baseURL:    cfg.BaseURL(),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func defaultHTTPClient(cfg config.CyberSourceConfig) *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: time.Duration(cfg.ConnectTimeout) * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.TLSVerify,
		},
	}
	return &http.Client{
		Timeout:   time.Duration(cfg.RequestTimeout) * time.Second,
		Transport: transport,
	}
}

// CreatePayment implements ports.Gateway.CreatePayment
func (c *Client) CreatePayment(ctx context.Context, intent *domain.PaymentIntent) (*domain.RawResponse, error) {
	req, err := BuildCreateRequest(intent, c.cfg.DefaultCurrency)
	if err != nil {
		return nil, err
	}
	return c.doRequest(ctx, "create", http.MethodPost, "/pts/v2/payments", req)
}

// CapturePayment implements ports.Gateway.CapturePayment
func (c *Client) CapturePayment(ctx context.Context, transactionID, amount string, opts domain.RequestOptions) (*domain.RawResponse, error) {
	req, err := BuildCaptureRequest(transactionID, amount, opts, c.cfg.DefaultCurrency)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/pts/v2/payments/%s/captures", url.PathEscape(transactionID))
	return c.doRequest(ctx, "capture", http.MethodPost, path, req)
}

// VoidPayment implements ports.Gateway.VoidPayment
func (c *Client) VoidPayment(ctx context.Context, transactionID string, opts domain.RequestOptions) (*domain.RawResponse, error) {
	req, err := BuildVoidRequest(transactionID, opts)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/pts/v2/payments/%s/voids", url.PathEscape(transactionID))
	return c.doRequest(ctx, "void", http.MethodPost, path, req)
}

// RefundPayment implements ports.Gateway.RefundPayment
func (c *Client) RefundPayment(ctx context.Context, transactionID, amount string, opts domain.RequestOptions) (*domain.RawResponse, error) {
	req, err := BuildRefundRequest(transactionID, amount, opts, c.cfg.DefaultCurrency)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/pts/v2/payments/%s/refunds", url.PathEscape(transactionID))
	return c.doRequest(ctx, "refund", http.MethodPost, path, req)
}

// GetPayment implements ports.Gateway.GetPayment. There is no cache;
// retrieval always hits the gateway.
func (c *Client) GetPayment(ctx context.Context, transactionID string) (*domain.RawResponse, error) {
	if transactionID == "" {
		return nil, pkgerrors.NewValidationError("transaction_id", "transaction id is required")
	}
	path := "/tss/v2/transactions/" + url.PathEscape(transactionID)
	return c.doRequest(ctx, "retrieve", http.MethodGet, path, nil)
}

// errorEnvelope covers both error shapes the gateway produces: top-level
// reason/message on payment endpoints and a nested errorInformation block
// elsewhere.
type errorEnvelope struct {
	ErrorInformation *domain.ErrorInformation `json:"errorInformation"`
	ID               string                   `json:"id"`
	Status           string                   `json:"status"`
	Reason           string                   `json:"reason"`
	Message          string                   `json:"message"`
	Details          []domain.ErrorDetail     `json:"details"`
}

// doRequest makes one signed HTTP round-trip and normalizes the result.
// Transport failures and non-2xx envelopes come back as GatewayError; raw
// transport errors never escape.
func (c *Client) doRequest(ctx context.Context, operation, method, path string, request interface{}) (*domain.RawResponse, error) {
	var payload []byte
	var body io.Reader
	digest := ""
	if request != nil {
		var err error
		payload, err = json.Marshal(request)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request: %w", operation, err)
		}
		body = bytes.NewReader(payload)
		digest = GenerateDigest(payload)
	}

	date := time.Now().UTC().Format(http.TimeFormat)
	signature, err := BuildSignature(c.cfg.APIKeyID, c.cfg.SecretKey, c.cfg.MerchantID, c.cfg.Host(), method, path, date, digest)
	if err != nil {
		return nil, fmt.Errorf("sign %s request: %w", operation, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", operation, err)
	}

	httpReq.Header.Set("v-c-merchant-id", c.cfg.MerchantID)
	httpReq.Header.Set("Date", date)
	httpReq.Header.Set("Signature", signature)
	if request != nil {
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Digest", digest)
	}

	if c.logger != nil {
		c.logger.Debug("calling gateway",
			ports.String("operation", operation),
			ports.String("method", method),
			ports.String("path", path),
		)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, pkgerrors.WrapGatewayError("gateway request timed out", err)
		}
		return nil, pkgerrors.WrapGatewayError("failed to connect to gateway", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, pkgerrors.WrapGatewayError("failed to read gateway response", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, c.gatewayError(operation, httpResp.StatusCode, respBody)
	}

	raw := &domain.RawResponse{}
	if err := json.Unmarshal(respBody, raw); err != nil {
		return nil, pkgerrors.WrapGatewayError("invalid gateway response body", err)
	}
	raw.Raw = respBody

	if c.logger != nil {
		c.logger.Info("gateway call completed",
			ports.String("operation", operation),
			ports.String("transaction_id", raw.ID),
			ports.String("status", raw.Status),
		)
	}
	return raw, nil
}

func (c *Client) gatewayError(operation string, statusCode int, body []byte) *pkgerrors.GatewayError {
	var envelope errorEnvelope
	_ = json.Unmarshal(body, &envelope)

	reason := envelope.Reason
	message := envelope.Message
	details := envelope.Details
	if envelope.ErrorInformation != nil {
		reason = envelope.ErrorInformation.Reason
		message = envelope.ErrorInformation.Message
		details = envelope.ErrorInformation.Details
	}
	if message == "" {
		message = fmt.Sprintf("gateway rejected %s request", operation)
	}

	gwErr := pkgerrors.NewGatewayError(statusCode, reason, message)
	if envelope.ID != "" {
		gwErr.Details["id"] = envelope.ID
	}
	if envelope.Status != "" {
		gwErr.Details["status"] = envelope.Status
	}
	if len(details) > 0 {
		gwErr.Details["details"] = details
	}

	if c.logger != nil {
		c.logger.Warn("gateway rejected request",
			ports.String("operation", operation),
			ports.Int("status_code", statusCode),
			ports.String("reason", reason),
		)
	}
	return gwErr
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
