package banks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Provider identifiers. These are the canonical names recorded on payment
// rows and accepted (case-insensitively) by the registry.
const (
	ProviderHDFC  = "HDFC"
	ProviderICICI = "ICICI"
	ProviderKotak = "KOTAK"
	ProviderAxis  = "AXIS"
)

// DefaultProvider is where unclassified traffic lands: unknown or empty
// provider names always resolve to this adapter.
const DefaultProvider = ProviderAxis

// Bank-side status vocabulary as reported by the providers. The orchestrator
// maps these onto the internal PaymentStatus values.
const (
	BankStatusPending   = "PENDING"
	BankStatusSuccess   = "SUCCESS"
	BankStatusCompleted = "COMPLETED"
	BankStatusFailed    = "FAILED"
	BankStatusCancelled = "CANCELLED"
)

// PaymentExpiry is how long a synthesized pending payment stays claimable.
const PaymentExpiry = 15 * time.Minute

// BankPaymentRequest carries everything an adapter needs to initiate a
// payment with its provider.
type BankPaymentRequest struct {
	TransactionID string
	Amount        decimal.Decimal
	Currency      string
	CallbackURL   string
	Description   string
	UPIID         string // optional payer VPA
}

// BankPaymentResponse is the transient result of any adapter call. It is
// never persisted verbatim; the orchestrator maps it onto payment fields.
type BankPaymentResponse struct {
	BankTransactionID     string
	MerchantTransactionID string
	Status                string
	Amount                decimal.Decimal
	Currency              string
	PaymentURL            string
	QRCodeData            string
	ErrorCode             string
	ErrorMessage          string
	CreatedAt             time.Time
	ExpiresAt             time.Time
}

// BankAdapter is implemented once per provider. All implementations are
// behaviorally equivalent modulo request shape and credential set.
//
// CreatePayment and CheckStatus never surface transport failures: on any
// error they return a locally synthesized PENDING response so the
// orchestration layer always has a bank correlation id to track. Refund is
// the exception; a failed refund comes back as an explicit FAILED response
// with an error code.
type BankAdapter interface {
	CreatePayment(ctx context.Context, req *BankPaymentRequest) *BankPaymentResponse
	CheckStatus(ctx context.Context, bankTransactionID string) *BankPaymentResponse
	Refund(ctx context.Context, bankTransactionID string, amount decimal.Decimal) *BankPaymentResponse
	VerifyWebhookSignature(payload []byte, signature string) bool
	Name() string
}

// Credentials holds one provider's endpoint and signing material.
type Credentials struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	MerchantID string
}

// shortRef returns the 8-char id suffix used for synthesized bank
// transaction ids and refund references.
func shortRef() string {
	return uuid.NewString()[:8]
}

// paymentURI renders the standard UPI deep link consumed directly by UPI
// apps. The parameter set and order are fixed:
//
//	upi://pay?pa=<payee>&am=<amount>&tr=<txn>&tn=<description>&cu=<currency>
func paymentURI(payeeVPA string, req *BankPaymentRequest) string {
	description := req.Description
	if description == "" {
		description = "Payment"
	}
	return "upi://pay?pa=" + payeeVPA +
		"&am=" + req.Amount.StringFixed(2) +
		"&tr=" + req.TransactionID +
		"&tn=" + description +
		"&cu=" + req.Currency
}

// pendingFallback builds the synthesized create-payment response shared by
// all adapters. The payment URL points at the provider's own collection VPA
// so the payer still has a scannable target while the bank API is down.
func pendingFallback(req *BankPaymentRequest, provider, payeeVPA string) *BankPaymentResponse {
	now := time.Now()
	return &BankPaymentResponse{
		BankTransactionID:     provider + "_" + shortRef(),
		MerchantTransactionID: req.TransactionID,
		Status:                BankStatusPending,
		Amount:                req.Amount,
		Currency:              req.Currency,
		PaymentURL:            paymentURI(payeeVPA, req),
		CreatedAt:             now,
		ExpiresAt:             now.Add(PaymentExpiry),
	}
}

// statusUnknown is the CheckStatus fallback: absence of information is not
// evidence of failure, so the transaction stays pending.
func statusUnknown(bankTransactionID string) *BankPaymentResponse {
	return &BankPaymentResponse{
		BankTransactionID: bankTransactionID,
		Status:            BankStatusPending,
	}
}

// refundFailure is the Refund fallback. Financial reversals must surface
// failure to the caller rather than simulate success.
func refundFailure(bankTransactionID, code, message string) *BankPaymentResponse {
	return &BankPaymentResponse{
		BankTransactionID: bankTransactionID,
		Status:            BankStatusFailed,
		ErrorCode:         code,
		ErrorMessage:      message,
	}
}
