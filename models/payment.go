package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus is the canonical transaction status vocabulary. Every
// provider-specific status string is mapped onto one of these before it
// touches a stored record.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "PENDING"
	StatusSuccess   PaymentStatus = "SUCCESS"
	StatusFailed    PaymentStatus = "FAILED"
	StatusCancelled PaymentStatus = "CANCELLED"
	StatusExpired   PaymentStatus = "EXPIRED"
	StatusRefunded  PaymentStatus = "REFUNDED"
)

// IsTerminal reports whether no further transition is allowed out of s,
// except SUCCESS which may still move to REFUNDED.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusCancelled, StatusExpired, StatusRefunded:
		return true
	}
	return false
}

// PaymentMethod selects how the payer completes the payment.
type PaymentMethod string

const (
	MethodUPIQR     PaymentMethod = "UPI_QR"
	MethodUPIID     PaymentMethod = "UPI_ID"
	MethodUPIIntent PaymentMethod = "UPI_INTENT"
)

// Actor identifies who caused a failure or cancellation.
const (
	ActorUser     = "USER"
	ActorMerchant = "MERCHANT"
	ActorSystem   = "SYSTEM"
	ActorBank     = "BANK"
)

// Payment is the GORM model persisted in Postgres. Terminal records are
// never deleted; they are retained for audit.
type Payment struct {
	ID                 uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MerchantID         string           `gorm:"type:varchar(128);not null;index" json:"merchant_id"`
	TransactionID      string           `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_id"`
	Amount             decimal.Decimal  `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency           string           `gorm:"type:varchar(8);not null;default:'INR'" json:"currency"`
	Status             PaymentStatus    `gorm:"type:varchar(20);not null" json:"status"`
	PaymentMethod      PaymentMethod    `gorm:"type:varchar(20)" json:"payment_method"`
	UPIID              *string          `gorm:"type:varchar(128)" json:"upi_id,omitempty"`
	UPIProvider        *string          `gorm:"type:varchar(64)" json:"upi_provider,omitempty"`
	BankProvider       string           `gorm:"type:varchar(16)" json:"bank_provider"`
	BankTransactionID  *string          `gorm:"type:varchar(128);index" json:"bank_transaction_id,omitempty"`
	BankReference      *string          `gorm:"type:varchar(128)" json:"bank_reference,omitempty"`
	QRCodeData         *string          `gorm:"type:text" json:"qr_code_data,omitempty"`
	PaymentURL         *string          `gorm:"type:varchar(1024)" json:"payment_url,omitempty"`
	CallbackURL        string           `gorm:"type:varchar(1024)" json:"callback_url"`
	Description        string           `gorm:"type:varchar(512)" json:"description"`
	FailureReason      *string          `gorm:"type:varchar(512)" json:"failure_reason,omitempty"`
	CancellationReason *string          `gorm:"type:varchar(512)" json:"cancellation_reason,omitempty"`
	CancelledBy        *string          `gorm:"type:varchar(16)" json:"cancelled_by,omitempty"` // USER, MERCHANT, SYSTEM, BANK
	RefundAmount       *decimal.Decimal `gorm:"type:numeric(10,2)" json:"refund_amount,omitempty"`
	RefundedAt         *time.Time       `json:"refunded_at,omitempty"`
	CompletedAt        *time.Time       `json:"completed_at,omitempty"`
	CreatedAt          time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt   `gorm:"index" json:"-"`
}

// CreatePaymentRequest is the payload for creating a payment intent.
type CreatePaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Currency    string          `json:"currency"`
	Method      PaymentMethod   `json:"payment_method" binding:"required"`
	UPIID       string          `json:"upi_id,omitempty"`
	UPIProvider string          `json:"upi_provider,omitempty"`
	Provider    string          `json:"provider,omitempty"` // optional hint, overrides merchant preference
	CallbackURL string          `json:"callback_url"`
	Description string          `json:"description"`
}

// RefundRequest is the payload for refunding a successful payment.
type RefundRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// PaymentResponse is the caller-facing view of a payment. Exactly one of
// QRCodeData or PaymentURL is populated depending on the payment method.
type PaymentResponse struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        PaymentStatus   `json:"status"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	BankProvider  string          `json:"bank_provider"`
	QRCodeData    string          `json:"qr_code_data,omitempty"`
	PaymentURL    string          `json:"payment_url,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// NewPaymentResponse builds the response view from a stored payment.
func NewPaymentResponse(p *Payment, providerDisplayName string) *PaymentResponse {
	resp := &PaymentResponse{
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        p.Status,
		PaymentMethod: p.PaymentMethod,
		BankProvider:  providerDisplayName,
		CreatedAt:     p.CreatedAt,
		CompletedAt:   p.CompletedAt,
	}
	switch p.PaymentMethod {
	case MethodUPIQR:
		if p.QRCodeData != nil {
			resp.QRCodeData = *p.QRCodeData
		}
	default:
		if p.PaymentURL != nil {
			resp.PaymentURL = *p.PaymentURL
		}
	}
	return resp
}

// PaymentEvent is published to Kafka/SNS on terminal status transitions.
type PaymentEvent struct {
	Type          string          `json:"type"` // payment_succeeded, payment_failed, payment_refunded
	TransactionID string          `json:"transaction_id"`
	MerchantID    string          `json:"merchant_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        PaymentStatus   `json:"status"`
	BankProvider  string          `json:"bank_provider"`
	Timestamp     time.Time       `json:"timestamp"` // UTC event time
}

// PaymentRequestMessage is consumed from the payment-requests topic.
type PaymentRequestMessage struct {
	MerchantID     string          `json:"merchant_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Method         PaymentMethod   `json:"payment_method"`
	UPIID          string          `json:"upi_id,omitempty"`
	CallbackURL    string          `json:"callback_url"`
	Description    string          `json:"description"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}
