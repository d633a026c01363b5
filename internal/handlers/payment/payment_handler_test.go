package payment_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/cybersource-adapter/internal/domain"
	"github.com/kevin07696/cybersource-adapter/internal/domain/ports"
	handler "github.com/kevin07696/cybersource-adapter/internal/handlers/payment"
	paymentservice "github.com/kevin07696/cybersource-adapter/internal/services/payment"
	pkgerrors "github.com/kevin07696/cybersource-adapter/pkg/errors"
	"github.com/kevin07696/cybersource-adapter/test/mocks"
)

func newHandler(gateway *mocks.MockGateway) http.Handler {
	return newHandlerWithStore(gateway, nil)
}

func newHandlerWithStore(gateway *mocks.MockGateway, store ports.TransactionStore) http.Handler {
	logger := mocks.NewMockLogger()
	service := paymentservice.NewService(gateway, store, logger)
	return handler.NewHandler(service, logger).Routes()
}

func createPaymentBody() string {
	return fmt.Sprintf(`{
		"reference": "order-1",
		"amount": "102.21",
		"currency": "USD",
		"card": {
			"number": "4111111111111111",
			"expiration_month": "12",
			"expiration_year": "%d",
			"security_code": "123"
		},
		"billing": {
			"first_name": "John",
			"last_name": "Doe",
			"address1": "1 Market St",
			"locality": "San Francisco",
			"postal_code": "94105",
			"country": "US",
			"email": "john.doe@example.com"
		}
	}`, time.Now().Year()+3)
}

func TestAuthorizeEndpoint(t *testing.T) {
	gateway := mocks.NewMockGateway()
	gateway.CreatePaymentFunc = func(ctx context.Context, intent *domain.PaymentIntent) (*domain.RawResponse, error) {
		assert.False(t, intent.Capture)
		assert.Equal(t, "order-1", intent.ReferenceCode)
		return &domain.RawResponse{
			ID:     "txn-1",
			Status: domain.StatusAuthorized,
			ClientReferenceInformation: &domain.ClientReferenceInformation{Code: "order-1"},
			OrderInformation: &domain.OrderInformation{
				AmountDetails: &domain.AmountDetails{TotalAmount: "102.21", Currency: "USD"},
			},
			Links: &domain.Links{
				Capture: &domain.Link{Href: "/pts/v2/payments/txn-1/captures"},
			},
		}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(createPaymentBody()))
	rec := httptest.NewRecorder()
	newHandler(gateway).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "txn-1", resp["id"])
	assert.Equal(t, "AUTHORIZED", resp["status"])
	assert.Equal(t, true, resp["successful"])
	assert.Equal(t, false, resp["declined"])
	assert.Equal(t, "102.21", resp["amount"])

	links := resp["links"].(map[string]interface{})
	assert.Equal(t, "/pts/v2/payments/txn-1/captures", links["capture"])
}

func TestChargeEndpoint(t *testing.T) {
	gateway := mocks.NewMockGateway()
	gateway.CreatePaymentFunc = func(ctx context.Context, intent *domain.PaymentIntent) (*domain.RawResponse, error) {
		assert.True(t, intent.Capture)
		return &domain.RawResponse{ID: "txn-2", Status: domain.StatusPending}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/charge", strings.NewReader(createPaymentBody()))
	rec := httptest.NewRecorder()
	newHandler(gateway).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCaptureEndpoint(t *testing.T) {
	gateway := mocks.NewMockGateway()
	gateway.CapturePaymentFunc = func(ctx context.Context, transactionID, amount string, opts domain.RequestOptions) (*domain.RawResponse, error) {
		assert.Equal(t, "txn-1", transactionID)
		assert.Equal(t, "50.00", amount)
		return &domain.RawResponse{ID: "cap-1", Status: domain.StatusPending}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/txn-1/capture", strings.NewReader(`{"amount":"50.00"}`))
	rec := httptest.NewRecorder()
	newHandler(gateway).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCaptureEndpointEmptyBody(t *testing.T) {
	gateway := mocks.NewMockGateway()
	gateway.CapturePaymentFunc = func(ctx context.Context, transactionID, amount string, opts domain.RequestOptions) (*domain.RawResponse, error) {
		assert.Empty(t, amount)
		return &domain.RawResponse{ID: "cap-1", Status: domain.StatusPending}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/txn-1/capture", nil)
	rec := httptest.NewRecorder()
	newHandler(gateway).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestVoidEndpoint(t *testing.T) {
	gateway := mocks.NewMockGateway()
	gateway.VoidPaymentFunc = func(ctx context.Context, transactionID string, opts domain.RequestOptions) (*domain.RawResponse, error) {
		return &domain.RawResponse{ID: "void-1", Status: domain.StatusVoided}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/txn-1/void", nil)
	rec := httptest.NewRecorder()
	newHandler(gateway).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VOIDED", resp["status"])
	assert.Equal(t, false, resp["successful"])
}

func TestRefundEndpoint(t *testing.T) {
	gateway := mocks.NewMockGateway()
	gateway.RefundPaymentFunc = func(ctx context.Context, transactionID, amount string, opts domain.RequestOptions) (*domain.RawResponse, error) {
		assert.Equal(t, "25.00", amount)
		assert.Equal(t, "my-ref", opts.Reference)
		return &domain.RawResponse{ID: "ref-1", Status: domain.StatusPending}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/txn-1/refund",
		strings.NewReader(`{"amount":"25.00","reference":"my-ref"}`))
	rec := httptest.NewRecorder()
	newHandler(gateway).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRetrieveEndpoint(t *testing.T) {
	gateway := mocks.NewMockGateway()
	gateway.GetPaymentFunc = func(ctx context.Context, transactionID string) (*domain.RawResponse, error) {
		assert.Equal(t, "txn-1", transactionID)
		return &domain.RawResponse{ID: "txn-1", Status: domain.StatusSettled, ReconciliationID: "recon-1"}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/txn-1", nil)
	rec := httptest.NewRecorder()
	newHandler(gateway).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SETTLED", resp["status"])
	assert.Equal(t, "recon-1", resp["reconciliation_id"])
}

func TestInvalidJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	newHandler(mocks.NewMockGateway()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuditRecordEndpoint(t *testing.T) {
	store := mocks.NewMockTransactionStore()
	store.GetByTransactionIDFunc = func(ctx context.Context, transactionID string) (*domain.AuditRecord, error) {
		assert.Equal(t, "txn-1", transactionID)
		return &domain.AuditRecord{
			TransactionID: "txn-1",
			Reference:     "order-1",
			Operation:     domain.OperationCharge,
			Status:        domain.StatusAuthorized,
			Amount:        "102.21",
			CreatedAt:     time.Now().UTC(),
		}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/txn-1/audit", nil)
	rec := httptest.NewRecorder()
	newHandlerWithStore(mocks.NewMockGateway(), store).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "charge", resp["operation"])
	assert.Equal(t, "102.21", resp["amount"])
}

func TestAuditRecordEndpointNotFound(t *testing.T) {
	store := mocks.NewMockTransactionStore()
	store.GetByTransactionIDFunc = func(ctx context.Context, transactionID string) (*domain.AuditRecord, error) {
		return nil, ports.ErrRecordNotFound
	}

	req := httptest.NewRequest(http.MethodGet, "/txn-1/audit", nil)
	rec := httptest.NewRecorder()
	newHandlerWithStore(mocks.NewMockGateway(), store).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuditTrailEndpoint(t *testing.T) {
	store := mocks.NewMockTransactionStore()
	store.ListByReferenceFunc = func(ctx context.Context, reference string) ([]*domain.AuditRecord, error) {
		assert.Equal(t, "order-1", reference)
		return []*domain.AuditRecord{
			{Reference: "order-1", Operation: domain.OperationRefund},
			{Reference: "order-1", Operation: domain.OperationCharge},
		}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/audit/order-1", nil)
	rec := httptest.NewRecorder()
	newHandlerWithStore(mocks.NewMockGateway(), store).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "refund", resp[0]["operation"])
}

func TestAuditEndpointWithoutStore(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/txn-1/audit", nil)
	rec := httptest.NewRecorder()
	newHandler(mocks.NewMockGateway()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			"validation",
			pkgerrors.NewValidationError("amount", "required"),
			http.StatusBadRequest,
			"VALIDATION_FAILED",
		},
		{
			"gateway rejection",
			pkgerrors.NewGatewayError(400, "INVALID_DATA", "bad data"),
			http.StatusBadRequest,
			"INVALID_DATA",
		},
		{
			"auth failure",
			pkgerrors.NewGatewayError(401, "", "auth failed"),
			http.StatusBadGateway,
			"GATEWAY_ERROR",
		},
		{
			"network failure",
			pkgerrors.WrapGatewayError("failed to connect to gateway", fmt.Errorf("refused")),
			http.StatusBadGateway,
			"GATEWAY_ERROR",
		},
		{
			"timeout",
			pkgerrors.WrapGatewayError("gateway request timed out", context.DeadlineExceeded),
			http.StatusGatewayTimeout,
			"GATEWAY_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := mocks.NewMockGateway()
			gateway.CreatePaymentFunc = func(ctx context.Context, intent *domain.PaymentIntent) (*domain.RawResponse, error) {
				return nil, tt.err
			}

			req := httptest.NewRequest(http.MethodPost, "/charge", strings.NewReader(createPaymentBody()))
			rec := httptest.NewRecorder()
			newHandler(gateway).ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)

			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			errBody := resp["error"].(map[string]interface{})
			assert.Equal(t, tt.wantCode, errBody["code"])
			assert.NotEmpty(t, errBody["message"])
		})
	}
}
