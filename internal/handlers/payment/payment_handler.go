package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kevin07696/cybersource-adapter/internal/domain"
	"github.com/kevin07696/cybersource-adapter/internal/domain/ports"
	paymentservice "github.com/kevin07696/cybersource-adapter/internal/services/payment"
	pkgerrors "github.com/kevin07696/cybersource-adapter/pkg/errors"
)

// Handler exposes the payment service over JSON/HTTP. A thin translation
// layer only; all semantics live in the service.
type Handler struct {
	service *paymentservice.Service
	logger  ports.Logger
}

// NewHandler creates a payment handler
func NewHandler(service *paymentservice.Service, logger ports.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Routes returns the payment routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/authorize", h.handleAuthorize)
	r.Post("/charge", h.handleCharge)
	r.Post("/{transactionID}/capture", h.handleCapture)
	r.Post("/{transactionID}/void", h.handleVoid)
	r.Post("/{transactionID}/refund", h.handleRefund)
	r.Get("/{transactionID}", h.handleRetrieve)
	r.Get("/{transactionID}/audit", h.handleAuditRecord)
	r.Get("/audit/{reference}", h.handleAuditTrail)
	return r
}

type cardRequest struct {
	Number          string `json:"number"`
	ExpirationMonth string `json:"expiration_month"`
	ExpirationYear  string `json:"expiration_year"`
	SecurityCode    string `json:"security_code,omitempty"`
}

type billingRequest struct {
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Address1           string `json:"address1"`
	Address2           string `json:"address2,omitempty"`
	Locality           string `json:"locality"`
	AdministrativeArea string `json:"administrative_area,omitempty"`
	PostalCode         string `json:"postal_code"`
	Country            string `json:"country"`
	Email              string `json:"email"`
	Phone              string `json:"phone,omitempty"`
}

type createPaymentRequest struct {
	Reference string         `json:"reference,omitempty"`
	Amount    string         `json:"amount"`
	Currency  string         `json:"currency,omitempty"`
	Card      cardRequest    `json:"card"`
	Billing   billingRequest `json:"billing"`
}

func (r *createPaymentRequest) toIntent() *domain.PaymentIntent {
	return &domain.PaymentIntent{
		ReferenceCode: r.Reference,
		Amount:        r.Amount,
		Currency:      r.Currency,
		Card: domain.Card{
			Number:          r.Card.Number,
			ExpirationMonth: r.Card.ExpirationMonth,
			ExpirationYear:  r.Card.ExpirationYear,
			SecurityCode:    r.Card.SecurityCode,
		},
		Billing: domain.BillingInfo{
			FirstName:          r.Billing.FirstName,
			LastName:           r.Billing.LastName,
			Address1:           r.Billing.Address1,
			Address2:           r.Billing.Address2,
			Locality:           r.Billing.Locality,
			AdministrativeArea: r.Billing.AdministrativeArea,
			PostalCode:         r.Billing.PostalCode,
			Country:            r.Billing.Country,
			Email:              r.Billing.Email,
			Phone:              r.Billing.Phone,
		},
	}
}

type adjustmentRequest struct {
	Amount    string `json:"amount,omitempty"`
	Currency  string `json:"currency,omitempty"`
	Reference string `json:"reference,omitempty"`
}

func (r *adjustmentRequest) options() domain.RequestOptions {
	return domain.RequestOptions{
		Reference: r.Reference,
		Currency:  r.Currency,
	}
}

type transactionResponse struct {
	Links            map[string]string `json:"links,omitempty"`
	ID               string            `json:"id,omitempty"`
	Status           string            `json:"status,omitempty"`
	Amount           string            `json:"amount,omitempty"`
	Currency         string            `json:"currency,omitempty"`
	Reference        string            `json:"reference,omitempty"`
	ResponseCode     string            `json:"response_code,omitempty"`
	ApprovalCode     string            `json:"approval_code,omitempty"`
	ReconciliationID string            `json:"reconciliation_id,omitempty"`
	Successful       bool              `json:"successful"`
	Declined         bool              `json:"declined"`
}

func (h *Handler) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	h.handleCreate(w, r, h.service.Authorize)
}

func (h *Handler) handleCharge(w http.ResponseWriter, r *http.Request) {
	h.handleCreate(w, r, h.service.Charge)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, intent *domain.PaymentIntent) (*domain.Transaction, error)) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}

	tx, err := op(r.Context(), req.toIntent())
	if err != nil {
		h.writePaymentError(w, err)
		return
	}
	h.writeTransaction(w, http.StatusCreated, tx)
}

func (h *Handler) handleCapture(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")
	req, ok := h.decodeAdjustment(w, r)
	if !ok {
		return
	}

	tx, err := h.service.Capture(r.Context(), transactionID, req.Amount, req.options())
	if err != nil {
		h.writePaymentError(w, err)
		return
	}
	h.writeTransaction(w, http.StatusCreated, tx)
}

func (h *Handler) handleVoid(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")
	req, ok := h.decodeAdjustment(w, r)
	if !ok {
		return
	}

	tx, err := h.service.Void(r.Context(), transactionID, req.options())
	if err != nil {
		h.writePaymentError(w, err)
		return
	}
	h.writeTransaction(w, http.StatusCreated, tx)
}

func (h *Handler) handleRefund(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")
	req, ok := h.decodeAdjustment(w, r)
	if !ok {
		return
	}

	tx, err := h.service.Refund(r.Context(), transactionID, req.Amount, req.options())
	if err != nil {
		h.writePaymentError(w, err)
		return
	}
	h.writeTransaction(w, http.StatusCreated, tx)
}

func (h *Handler) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	tx, err := h.service.RetrieveTransaction(r.Context(), transactionID)
	if err != nil {
		h.writePaymentError(w, err)
		return
	}
	h.writeTransaction(w, http.StatusOK, tx)
}

type auditRecordResponse struct {
	ID               string `json:"id"`
	TransactionID    string `json:"transaction_id,omitempty"`
	Reference        string `json:"reference,omitempty"`
	Operation        string `json:"operation"`
	Status           string `json:"status,omitempty"`
	Amount           string `json:"amount,omitempty"`
	Currency         string `json:"currency,omitempty"`
	ResponseCode     string `json:"response_code,omitempty"`
	ApprovalCode     string `json:"approval_code,omitempty"`
	ReconciliationID string `json:"reconciliation_id,omitempty"`
	CreatedAt        string `json:"created_at"`
}

func toAuditResponse(rec *domain.AuditRecord) auditRecordResponse {
	return auditRecordResponse{
		ID:               rec.ID.String(),
		TransactionID:    rec.TransactionID,
		Reference:        rec.Reference,
		Operation:        string(rec.Operation),
		Status:           rec.Status,
		Amount:           rec.Amount,
		Currency:         rec.Currency,
		ResponseCode:     rec.ResponseCode,
		ApprovalCode:     rec.ApprovalCode,
		ReconciliationID: rec.ReconciliationID,
		CreatedAt:        rec.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) handleAuditRecord(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	rec, err := h.service.AuditRecord(r.Context(), transactionID)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", "no audit record for transaction")
			return
		}
		h.writePaymentError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toAuditResponse(rec))
}

func (h *Handler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	records, err := h.service.AuditTrail(r.Context(), reference)
	if err != nil {
		h.writePaymentError(w, err)
		return
	}
	resp := make([]auditRecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toAuditResponse(rec))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", ports.Err(err))
	}
}

// decodeAdjustment parses the optional body of capture/void/refund requests.
// An empty body is fine.
func (h *Handler) decodeAdjustment(w http.ResponseWriter, r *http.Request) (*adjustmentRequest, bool) {
	req := &adjustmentRequest{}
	if r.Body == nil || r.ContentLength == 0 {
		return req, true
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return nil, false
	}
	return req, true
}

func (h *Handler) writeTransaction(w http.ResponseWriter, status int, tx *domain.Transaction) {
	resp := transactionResponse{
		Successful: tx.IsSuccessful(),
		Declined:   tx.IsDeclined(),
	}
	resp.ID, _ = tx.ID()
	resp.Status, _ = tx.Status()
	resp.Amount, _ = tx.Amount()
	resp.Currency, _ = tx.Currency()
	resp.Reference, _ = tx.Reference()
	resp.ResponseCode, _ = tx.ResponseCode()
	resp.ApprovalCode, _ = tx.ApprovalCode()
	resp.ReconciliationID, _ = tx.ReconciliationID()

	links := make(map[string]string)
	if href, ok := tx.CaptureURL(); ok {
		links["capture"] = href
	}
	if href, ok := tx.VoidURL(); ok {
		links["void"] = href
	}
	if href, ok := tx.RefundURL(); ok {
		links["refund"] = href
	}
	if len(links) > 0 {
		resp.Links = links
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode response", ports.Err(err))
	}
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

func (h *Handler) writePaymentError(w http.ResponseWriter, err error) {
	var paymentErr *pkgerrors.PaymentError
	if !errors.As(err, &paymentErr) {
		h.writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	status := http.StatusBadGateway
	switch paymentErr.Category {
	case pkgerrors.CategoryValidation, pkgerrors.CategoryInvalidRequest:
		status = http.StatusBadRequest
	case pkgerrors.CategoryTimeout:
		status = http.StatusGatewayTimeout
	case pkgerrors.CategoryInternal:
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: errorBody{
		Code:    paymentErr.Code,
		Message: paymentErr.Message,
		Details: paymentErr.Details,
	}}); err != nil {
		h.logger.Error("failed to encode error response", ports.Err(err))
	}
}

func (h *Handler) writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message}})
}
