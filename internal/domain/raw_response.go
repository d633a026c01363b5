package domain

import "encoding/json"

// RawResponse is the normalized gateway response envelope shared by all
// operations. Fields a given operation does not return stay nil/empty; they
// are never fabricated.
type RawResponse struct {
	ClientReferenceInformation *ClientReferenceInformation `json:"clientReferenceInformation,omitempty"`
	ProcessorInformation       *ProcessorInformation       `json:"processorInformation,omitempty"`
	OrderInformation           *OrderInformation           `json:"orderInformation,omitempty"`
	Links                      *Links                      `json:"_links,omitempty"`
	ErrorInformation           *ErrorInformation           `json:"errorInformation,omitempty"`
	PaymentInformation         json.RawMessage             `json:"paymentInformation,omitempty"`
	RiskInformation            json.RawMessage             `json:"riskInformation,omitempty"`
	ID                         string                      `json:"id,omitempty"`
	Status                     string                      `json:"status,omitempty"`
	ReconciliationID           string                      `json:"reconciliationId,omitempty"`
	Raw                        []byte                      `json:"-"`
}

// ClientReferenceInformation echoes the caller's reference code
type ClientReferenceInformation struct {
	Code string `json:"code,omitempty"`
}

// ProcessorInformation carries the processor's decision details
type ProcessorInformation struct {
	ResponseCode  string `json:"responseCode,omitempty"`
	ApprovalCode  string `json:"approvalCode,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
}

// OrderInformation carries the echoed order amounts
type OrderInformation struct {
	AmountDetails *AmountDetails `json:"amountDetails,omitempty"`
}

// AmountDetails holds amount and currency as decimal strings
type AmountDetails struct {
	TotalAmount string `json:"totalAmount,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

// ErrorInformation is the structured error body the gateway attaches to
// protocol-level rejections
type ErrorInformation struct {
	Reason  string        `json:"reason,omitempty"`
	Message string        `json:"message,omitempty"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail names a single offending field
type ErrorDetail struct {
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Link is a hyperlink to a follow-up action offered by the gateway
type Link struct {
	Href   string `json:"href,omitempty"`
	Method string `json:"method,omitempty"`
}

// Links holds the follow-up actions offered for a transaction
type Links struct {
	Self    *Link `json:"self,omitempty"`
	Capture *Link `json:"capture,omitempty"`
	Void    *Link `json:"void,omitempty"`
	Refund  *Link `json:"refund,omitempty"`
}
