package cybersource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/cybersource-adapter/internal/config"
	"github.com/kevin07696/cybersource-adapter/internal/domain"
	pkgerrors "github.com/kevin07696/cybersource-adapter/pkg/errors"
	"github.com/kevin07696/cybersource-adapter/test/mocks"
)

func testConfig(host string) config.CyberSourceConfig {
	return config.CyberSourceConfig{
		MerchantID:      "test_merchant",
		APIKeyID:        "test-key-id",
		SecretKey:       testSecretKey,
		Environment:     host,
		AuthType:        config.AuthTypeHTTPSignature,
		DefaultCurrency: "USD",
		TLSVerify:       false,
		RequestTimeout:  30,
		ConnectTimeout:  5,
	}
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)

	host := strings.TrimPrefix(server.URL, "https://")
	client, err := NewClient(testConfig(host), server.Client(), mocks.NewMockLogger())
	require.NoError(t, err)
	return server, client
}

func paymentIntent() *domain.PaymentIntent {
	return &domain.PaymentIntent{
		ReferenceCode: "order-42",
		Amount:        "102.21",
		Currency:      "USD",
		Card: domain.Card{
			Number:          "4111111111111111",
			ExpirationMonth: "12",
			ExpirationYear:  fmt.Sprintf("%d", time.Now().Year()+3),
		},
		Billing: domain.BillingInfo{
			FirstName:  "John",
			LastName:   "Doe",
			Address1:   "1 Market St",
			Locality:   "San Francisco",
			PostalCode: "94105",
			Country:    "US",
			Email:      "john.doe@example.com",
		},
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	cfg := testConfig("apitest.cybersource.com")
	cfg.SecretKey = ""
	_, err := NewClient(cfg, nil, mocks.NewMockLogger())
	assert.Error(t, err)

	cfg = testConfig("apitest.cybersource.com")
	cfg.MerchantID = ""
	_, err = NewClient(cfg, nil, mocks.NewMockLogger())
	assert.Error(t, err)
}

func TestNewClientRejectsJWTAuth(t *testing.T) {
	cfg := testConfig("apitest.cybersource.com")
	cfg.AuthType = config.AuthTypeJWT
	_, err := NewClient(cfg, nil, mocks.NewMockLogger())
	assert.Error(t, err)
}

func TestCreatePaymentSignsRequest(t *testing.T) {
	var captured *http.Request
	var capturedBody []byte
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		capturedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"txn-1","status":"AUTHORIZED"}`)
	})

	_, err := client.CreatePayment(context.Background(), paymentIntent())
	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "/pts/v2/payments", captured.URL.Path)
	assert.Equal(t, "test_merchant", captured.Header.Get("v-c-merchant-id"))
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))
	assert.NotEmpty(t, captured.Header.Get("Date"))

	digest := captured.Header.Get("Digest")
	assert.Equal(t, GenerateDigest(capturedBody), digest)

	signature := captured.Header.Get("Signature")
	require.NotEmpty(t, signature)
	assert.Contains(t, signature, `keyid="test-key-id"`)
	assert.Contains(t, signature, `algorithm="HmacSHA256"`)
	assert.True(t, ValidateSignature("test-key-id", testSecretKey, "test_merchant",
		captured.Host, "POST", "/pts/v2/payments", captured.Header.Get("Date"), digest, signature))
}

func TestCreatePaymentAuthorized(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{
			"id": "6854437103876550204953",
			"status": "AUTHORIZED",
			"clientReferenceInformation": {"code": "order-42"},
			"processorInformation": {"responseCode": "00", "approvalCode": "831000"},
			"orderInformation": {"amountDetails": {"totalAmount": "102.21", "currency": "USD"}},
			"_links": {"capture": {"href": "/pts/v2/payments/685/captures", "method": "POST"}}
		}`)
	})

	raw, err := client.CreatePayment(context.Background(), paymentIntent())
	require.NoError(t, err)

	assert.Equal(t, "6854437103876550204953", raw.ID)
	assert.Equal(t, "AUTHORIZED", raw.Status)
	assert.Equal(t, "order-42", raw.ClientReferenceInformation.Code)
	assert.Equal(t, "00", raw.ProcessorInformation.ResponseCode)
	assert.Equal(t, "102.21", raw.OrderInformation.AmountDetails.TotalAmount)
	assert.Equal(t, "/pts/v2/payments/685/captures", raw.Links.Capture.Href)
	assert.NotEmpty(t, raw.Raw)
}

func TestCreatePaymentDeclinedIsNotAnError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{
			"id": "999",
			"status": "DECLINED",
			"processorInformation": {"responseCode": "05"}
		}`)
	})

	raw, err := client.CreatePayment(context.Background(), paymentIntent())
	require.NoError(t, err)
	assert.Equal(t, "DECLINED", raw.Status)

	tx := domain.NewTransaction(raw)
	assert.True(t, tx.IsDeclined())
	assert.False(t, tx.IsSuccessful())
}

func TestCreatePaymentGatewayRejection(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{
			"reason": "INVALID_DATA",
			"message": "Declined - One or more fields in the request contains invalid data",
			"details": [{"field": "orderInformation.billTo.country", "reason": "INVALID_DATA"}]
		}`)
	})

	_, err := client.CreatePayment(context.Background(), paymentIntent())
	require.Error(t, err)

	var gwErr *pkgerrors.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusBadRequest, gwErr.StatusCode)
	assert.Equal(t, "INVALID_DATA", gwErr.Reason)
	assert.Contains(t, gwErr.Message, "invalid data")
}

func TestCreatePaymentNestedErrorInformation(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"errorInformation": {"reason": "SYSTEM_ERROR", "message": "processor unavailable"}}`)
	})

	_, err := client.CreatePayment(context.Background(), paymentIntent())
	require.Error(t, err)

	var gwErr *pkgerrors.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "SYSTEM_ERROR", gwErr.Reason)
	assert.Equal(t, "processor unavailable", gwErr.Message)
}

func TestCreatePaymentAuthFailure(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"response": {"rmsg": "Authentication Failed"}}`)
	})

	_, err := client.CreatePayment(context.Background(), paymentIntent())
	require.Error(t, err)

	var gwErr *pkgerrors.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusUnauthorized, gwErr.StatusCode)
}

func TestCreatePaymentConnectionFailure(t *testing.T) {
	httpClient := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return nil, fmt.Errorf("dial tcp: connection refused")
	})
	client, err := NewClient(testConfig("apitest.cybersource.com"), httpClient, mocks.NewMockLogger())
	require.NoError(t, err)

	_, err = client.CreatePayment(context.Background(), paymentIntent())
	require.Error(t, err)

	var gwErr *pkgerrors.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Zero(t, gwErr.StatusCode)
	assert.Contains(t, gwErr.Message, "failed to connect")
}

func TestCreatePaymentTimeout(t *testing.T) {
	httpClient := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return nil, context.DeadlineExceeded
	})
	client, err := NewClient(testConfig("apitest.cybersource.com"), httpClient, mocks.NewMockLogger())
	require.NoError(t, err)

	_, err = client.CreatePayment(context.Background(), paymentIntent())
	require.Error(t, err)

	var gwErr *pkgerrors.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Contains(t, gwErr.Message, "timed out")
}

func TestCreatePaymentValidationShortCircuits(t *testing.T) {
	httpClient := mocks.NewMockHTTPClient(nil)
	client, err := NewClient(testConfig("apitest.cybersource.com"), httpClient, mocks.NewMockLogger())
	require.NoError(t, err)

	intent := paymentIntent()
	intent.Card.Number = ""
	_, err = client.CreatePayment(context.Background(), intent)
	require.Error(t, err)

	var validationErr *pkgerrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Empty(t, httpClient.Calls, "no network call on validation failure")
}

func TestCapturePayment(t *testing.T) {
	var capturedPath string
	var capturedBody []byte
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": "capture-id-1", "status": "PENDING"}`)
	})

	raw, err := client.CapturePayment(context.Background(), "txn-1", "50.00", domain.RequestOptions{})
	require.NoError(t, err)
	assert.Equal(t, "/pts/v2/payments/txn-1/captures", capturedPath)
	assert.Equal(t, "PENDING", raw.Status)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(capturedBody, &body))
	order := body["orderInformation"].(map[string]interface{})
	amountDetails := order["amountDetails"].(map[string]interface{})
	assert.Equal(t, "50.00", amountDetails["totalAmount"])
}

func TestVoidPayment(t *testing.T) {
	var capturedPath string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": "void-id-1", "status": "VOIDED"}`)
	})

	raw, err := client.VoidPayment(context.Background(), "txn-1", domain.RequestOptions{})
	require.NoError(t, err)
	assert.Equal(t, "/pts/v2/payments/txn-1/voids", capturedPath)
	assert.Equal(t, "VOIDED", raw.Status)
}

func TestRefundPayment(t *testing.T) {
	var capturedPath string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": "refund-id-1", "status": "PENDING"}`)
	})

	raw, err := client.RefundPayment(context.Background(), "txn-1", "25.00", domain.RequestOptions{})
	require.NoError(t, err)
	assert.Equal(t, "/pts/v2/payments/txn-1/refunds", capturedPath)
	assert.Equal(t, "PENDING", raw.Status)
}

func TestGetPayment(t *testing.T) {
	var captured *http.Request
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"id": "txn-1", "status": "TRANSMITTED", "reconciliationId": "recon-9"}`)
	})

	raw, err := client.GetPayment(context.Background(), "txn-1")
	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Equal(t, http.MethodGet, captured.Method)
	assert.Equal(t, "/tss/v2/transactions/txn-1", captured.URL.Path)
	assert.Empty(t, captured.Header.Get("Digest"), "GET requests carry no digest")
	assert.Equal(t, "TRANSMITTED", raw.Status)
	assert.Equal(t, "recon-9", raw.ReconciliationID)
}

func TestGetPaymentRequiresID(t *testing.T) {
	client, err := NewClient(testConfig("apitest.cybersource.com"), mocks.NewMockHTTPClient(nil), mocks.NewMockLogger())
	require.NoError(t, err)

	_, err = client.GetPayment(context.Background(), "")
	require.Error(t, err)

	var validationErr *pkgerrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestTransactionIDIsPathEscaped(t *testing.T) {
	var capturedPath string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"id": "x", "status": "SETTLED"}`)
	})

	_, err := client.GetPayment(context.Background(), "a/b c")
	require.NoError(t, err)
	assert.Equal(t, "/tss/v2/transactions/a%2Fb%20c", capturedPath)
}
