package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/clickpaysolution/PaymentGateway/banks"
	"github.com/clickpaysolution/PaymentGateway/events"
	"github.com/clickpaysolution/PaymentGateway/models"
	"github.com/clickpaysolution/PaymentGateway/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ServiceError carries an HTTP status alongside a caller-safe message.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// EventPublisher pushes payment lifecycle events to the message broker.
type EventPublisher interface {
	PublishPaymentEvent(ctx context.Context, event *models.PaymentEvent) error
}

// PaymentService orchestrates the payment lifecycle: creation through a bank
// adapter, status reconciliation, cancellation, refunds and webhook
// application.
type PaymentService interface {
	CreatePayment(ctx context.Context, merchantID string, req *models.CreatePaymentRequest) (*models.PaymentResponse, *ServiceError)
	GetPaymentStatus(ctx context.Context, merchantID, transactionID string) (*models.PaymentResponse, *ServiceError)
	CancelPayment(ctx context.Context, merchantID, transactionID, reason, cancelledBy string) (*models.PaymentResponse, *ServiceError)
	RefundPayment(ctx context.Context, merchantID, transactionID string, req *models.RefundRequest) (*models.PaymentResponse, *ServiceError)
	UpdatePaymentStatus(ctx context.Context, transactionID string, status models.PaymentStatus, bankReference string) *ServiceError
	ApplyWebhookEvent(ctx context.Context, event *banks.WebhookEvent) *ServiceError
	ListMerchantPayments(ctx context.Context, merchantID string, page, limit int) ([]models.PaymentResponse, int64, *ServiceError)
}

type paymentServiceImpl struct {
	repo            repository.PaymentRepository
	registry        *banks.Registry
	merchants       MerchantProfileFetcher
	upi             *UPIService
	producer        EventPublisher        // nil when Kafka is disabled
	snsPublisher    events.SNSPublisher   // nil when SNS is disabled
	snsTopicArn     string
	locks           *txLocks
	logger          *zap.Logger
	defaultCurrency string
}

func NewPaymentService(
	repo repository.PaymentRepository,
	registry *banks.Registry,
	merchants MerchantProfileFetcher,
	upi *UPIService,
	producer EventPublisher,
	snsPublisher events.SNSPublisher,
	snsTopicArn string,
	logger *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		repo:            repo,
		registry:        registry,
		merchants:       merchants,
		upi:             upi,
		producer:        producer,
		snsPublisher:    snsPublisher,
		snsTopicArn:     snsTopicArn,
		locks:           newTxLocks(),
		logger:          logger,
		defaultCurrency: "INR",
	}
}

// generateTransactionID builds the merchant-facing transaction id:
// TXN + unix millis + 6 hex chars, unique under concurrent creation.
func generateTransactionID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "TXN" + strconv.FormatInt(time.Now().UnixMilli(), 10) + suffix
}

// mapBankStatus folds a provider status string onto the internal vocabulary.
// A bank-side CANCELLED is a failure of this payment attempt; the CANCELLED
// state is reserved for cancellations made through this gateway. Anything
// unrecognized maps to PENDING: an unknown status is never grounds for
// finalizing a payment.
func mapBankStatus(bankStatus string) models.PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(bankStatus)) {
	case banks.BankStatusSuccess, banks.BankStatusCompleted:
		return models.StatusSuccess
	case banks.BankStatusFailed, banks.BankStatusCancelled:
		return models.StatusFailed
	default:
		return models.StatusPending
	}
}

// transition applies a status change in place, enforcing the lifecycle rules:
// same-status transitions are no-ops, terminal states accept no further
// changes, and the single exception is SUCCESS -> REFUNDED.
func (s *paymentServiceImpl) transition(p *models.Payment, to models.PaymentStatus) *ServiceError {
	if p.Status == to {
		return nil
	}
	if p.Status.IsTerminal() && !(p.Status == models.StatusSuccess && to == models.StatusRefunded) {
		return &ServiceError{
			StatusCode: http.StatusConflict,
			Message:    fmt.Sprintf("invalid status transition %s -> %s", p.Status, to),
		}
	}
	p.Status = to
	if to.IsTerminal() && to != models.StatusRefunded && p.CompletedAt == nil {
		now := time.Now()
		p.CompletedAt = &now
	}
	return nil
}

func (s *paymentServiceImpl) CreatePayment(ctx context.Context, merchantID string, req *models.CreatePaymentRequest) (*models.PaymentResponse, *ServiceError) {
	if merchantID == "" {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "merchant id is required"}
	}
	if !req.Amount.IsPositive() {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "amount must be greater than zero"}
	}
	switch req.Method {
	case models.MethodUPIQR, models.MethodUPIIntent:
	case models.MethodUPIID:
		if !s.upi.ValidateAddress(req.UPIID) {
			return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "invalid UPI address: " + req.UPIID}
		}
	default:
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "unsupported payment method: " + string(req.Method)}
	}

	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	profile := s.merchants.GetProfile(ctx, merchantID)
	provider := req.Provider
	if provider == "" {
		provider = profile.PreferredBank
	}
	adapter := s.registry.Resolve(provider)

	transactionID := generateTransactionID()
	bankResp := adapter.CreatePayment(ctx, &banks.BankPaymentRequest{
		TransactionID: transactionID,
		Amount:        req.Amount,
		Currency:      currency,
		CallbackURL:   req.CallbackURL,
		Description:   req.Description,
		UPIID:         req.UPIID,
	})

	payment := &models.Payment{
		MerchantID:    merchantID,
		TransactionID: transactionID,
		Amount:        req.Amount,
		Currency:      currency,
		Status:        models.StatusPending,
		PaymentMethod: req.Method,
		BankProvider:  adapter.Name(),
		CallbackURL:   req.CallbackURL,
		Description:   req.Description,
	}
	if bankResp.BankTransactionID != "" {
		payment.BankTransactionID = &bankResp.BankTransactionID
	}

	// Every method ends with something the payer can act on, even when the
	// bank returned nothing usable.
	fallbackURI := BuildPaymentURI(profile.UPIID, req.Amount, transactionID, req.Description, currency)
	switch req.Method {
	case models.MethodUPIQR:
		qr := bankResp.QRCodeData
		if qr == "" {
			qr = fallbackURI
		}
		payment.QRCodeData = &qr
	case models.MethodUPIIntent:
		url := bankResp.PaymentURL
		if url == "" {
			url = fallbackURI
		}
		payment.PaymentURL = &url
	case models.MethodUPIID:
		payment.UPIID = &req.UPIID
		if req.UPIProvider != "" {
			payment.UPIProvider = &req.UPIProvider
		}
		url := bankResp.PaymentURL
		if url == "" {
			url = fallbackURI
		}
		payment.PaymentURL = &url
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		s.logger.Error("Failed to persist payment",
			zap.String("transaction_id", transactionID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "failed to create payment"}
	}

	if req.Method == models.MethodUPIID {
		s.upi.SendPaymentRequest(req.UPIID, req.Amount, transactionID)
	}

	s.logger.Info("Payment created",
		zap.String("transaction_id", transactionID),
		zap.String("merchant_id", merchantID),
		zap.String("bank_provider", payment.BankProvider),
		zap.String("amount", req.Amount.StringFixed(2)))

	return models.NewPaymentResponse(payment, banks.DisplayName(payment.BankProvider)), nil
}

func (s *paymentServiceImpl) GetPaymentStatus(ctx context.Context, merchantID, transactionID string) (*models.PaymentResponse, *ServiceError) {
	payment, svcErr := s.findMerchantPayment(ctx, merchantID, transactionID)
	if svcErr != nil {
		return nil, svcErr
	}

	if payment.Status == models.StatusPending {
		payment = s.reconcile(ctx, payment)
	}

	return models.NewPaymentResponse(payment, banks.DisplayName(payment.BankProvider)), nil
}

// reconcile refreshes a pending payment against the bank under the
// transaction lock. Reconciliation is best-effort: any failure leaves the
// stored record untouched and returns it as-is.
func (s *paymentServiceImpl) reconcile(ctx context.Context, payment *models.Payment) *models.Payment {
	s.locks.Lock(payment.TransactionID)
	defer s.locks.Unlock(payment.TransactionID)

	// Re-read inside the lock: a webhook may have landed meanwhile.
	fresh, err := s.repo.FindByTransactionID(ctx, payment.TransactionID)
	if err != nil {
		s.logger.Warn("Reconcile re-read failed",
			zap.String("transaction_id", payment.TransactionID), zap.Error(err))
		return payment
	}
	payment = fresh
	if payment.Status != models.StatusPending {
		return payment
	}

	next := models.StatusPending
	if payment.BankTransactionID != nil {
		adapter := s.registry.Resolve(payment.BankProvider)
		bankResp := adapter.CheckStatus(ctx, *payment.BankTransactionID)
		next = mapBankStatus(bankResp.Status)
		if next == models.StatusFailed && bankResp.ErrorMessage != "" {
			payment.FailureReason = &bankResp.ErrorMessage
		}
	}

	// Pending payments past the claim window expire rather than linger.
	if next == models.StatusPending && time.Since(payment.CreatedAt) > banks.PaymentExpiry {
		next = models.StatusExpired
	}

	if next == models.StatusPending {
		return payment
	}
	if svcErr := s.transition(payment, next); svcErr != nil {
		return payment
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		s.logger.Warn("Failed to persist reconciled status",
			zap.String("transaction_id", payment.TransactionID), zap.Error(err))
		return payment
	}
	s.publishEvent(payment)
	return payment
}

func (s *paymentServiceImpl) CancelPayment(ctx context.Context, merchantID, transactionID, reason, cancelledBy string) (*models.PaymentResponse, *ServiceError) {
	s.locks.Lock(transactionID)
	defer s.locks.Unlock(transactionID)

	payment, svcErr := s.findMerchantPayment(ctx, merchantID, transactionID)
	if svcErr != nil {
		return nil, svcErr
	}
	if payment.Status != models.StatusPending {
		return nil, &ServiceError{
			StatusCode: http.StatusConflict,
			Message:    "only pending payments can be cancelled, current status: " + string(payment.Status),
		}
	}

	if cancelledBy == "" {
		cancelledBy = models.ActorMerchant
	}
	payment.CancelledBy = &cancelledBy
	if reason != "" {
		payment.CancellationReason = &reason
	}
	if svcErr := s.transition(payment, models.StatusCancelled); svcErr != nil {
		return nil, svcErr
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		s.logger.Error("Failed to persist cancellation",
			zap.String("transaction_id", transactionID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "failed to cancel payment"}
	}

	s.publishEvent(payment)
	s.logger.Info("Payment cancelled",
		zap.String("transaction_id", transactionID),
		zap.String("cancelled_by", cancelledBy))
	return models.NewPaymentResponse(payment, banks.DisplayName(payment.BankProvider)), nil
}

func (s *paymentServiceImpl) RefundPayment(ctx context.Context, merchantID, transactionID string, req *models.RefundRequest) (*models.PaymentResponse, *ServiceError) {
	s.locks.Lock(transactionID)
	defer s.locks.Unlock(transactionID)

	payment, svcErr := s.findMerchantPayment(ctx, merchantID, transactionID)
	if svcErr != nil {
		return nil, svcErr
	}
	if payment.Status != models.StatusSuccess {
		return nil, &ServiceError{
			StatusCode: http.StatusConflict,
			Message:    "only successful payments can be refunded, current status: " + string(payment.Status),
		}
	}
	if !req.Amount.IsPositive() {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "refund amount must be greater than zero"}
	}
	if req.Amount.GreaterThan(payment.Amount) {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "refund amount exceeds payment amount"}
	}
	if payment.BankTransactionID == nil {
		return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "payment has no bank transaction to refund against"}
	}

	adapter := s.registry.Resolve(payment.BankProvider)
	bankResp := adapter.Refund(ctx, *payment.BankTransactionID, req.Amount)
	if mapBankStatus(bankResp.Status) != models.StatusSuccess {
		// Unlike create/status, a refund failure is surfaced, never simulated
		// away: money movement must not be pretended.
		s.logger.Error("Refund rejected by bank",
			zap.String("transaction_id", transactionID),
			zap.String("bank_provider", payment.BankProvider),
			zap.String("error_code", bankResp.ErrorCode),
			zap.String("error_message", bankResp.ErrorMessage))
		msg := bankResp.ErrorMessage
		if msg == "" {
			msg = "refund was rejected by the bank"
		}
		return nil, &ServiceError{StatusCode: http.StatusBadGateway, Message: msg}
	}

	now := time.Now()
	payment.RefundAmount = &req.Amount
	payment.RefundedAt = &now
	if svcErr := s.transition(payment, models.StatusRefunded); svcErr != nil {
		return nil, svcErr
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		s.logger.Error("Refund succeeded at bank but persist failed",
			zap.String("transaction_id", transactionID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "failed to record refund"}
	}

	s.publishEvent(payment)
	s.logger.Info("Payment refunded",
		zap.String("transaction_id", transactionID),
		zap.String("refund_amount", req.Amount.StringFixed(2)))
	return models.NewPaymentResponse(payment, banks.DisplayName(payment.BankProvider)), nil
}

// UpdatePaymentStatus is the trusted internal entry point for status
// updates, used by the PSP callback. Repeating an already-applied terminal
// status is a no-op; any other transition out of a terminal state is
// rejected.
func (s *paymentServiceImpl) UpdatePaymentStatus(ctx context.Context, transactionID string, status models.PaymentStatus, bankReference string) *ServiceError {
	switch status {
	case models.StatusPending, models.StatusSuccess, models.StatusFailed,
		models.StatusCancelled, models.StatusExpired:
	default:
		return &ServiceError{StatusCode: http.StatusBadRequest, Message: "unknown status: " + string(status)}
	}

	s.locks.Lock(transactionID)
	defer s.locks.Unlock(transactionID)

	payment, svcErr := s.findMerchantPayment(ctx, "", transactionID)
	if svcErr != nil {
		return svcErr
	}
	if payment.Status == status {
		return nil
	}

	if bankReference != "" {
		payment.BankReference = &bankReference
	}
	if svcErr := s.transition(payment, status); svcErr != nil {
		return svcErr
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		s.logger.Error("Failed to persist status update",
			zap.String("transaction_id", transactionID), zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "failed to update payment"}
	}

	s.publishEvent(payment)
	s.logger.Info("Payment status updated",
		zap.String("transaction_id", transactionID),
		zap.String("status", string(status)))
	return nil
}

// ApplyWebhookEvent applies a verified provider webhook. Application is
// idempotent: a duplicate delivery or a late webhook for an already-terminal
// payment is acknowledged without modifying the record.
func (s *paymentServiceImpl) ApplyWebhookEvent(ctx context.Context, event *banks.WebhookEvent) *ServiceError {
	payment, err := s.repo.FindByBankTransactionID(ctx, event.BankTransactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ServiceError{StatusCode: http.StatusNotFound, Message: "no payment for bank transaction " + event.BankTransactionID}
		}
		s.logger.Error("Webhook payment lookup failed",
			zap.String("bank_transaction_id", event.BankTransactionID), zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "failed to look up payment"}
	}

	s.locks.Lock(payment.TransactionID)
	defer s.locks.Unlock(payment.TransactionID)

	payment, err = s.repo.FindByTransactionID(ctx, payment.TransactionID)
	if err != nil {
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "failed to look up payment"}
	}

	next := mapBankStatus(event.Status)
	if next == models.StatusPending || next == payment.Status {
		return nil
	}
	if payment.Status.IsTerminal() {
		s.logger.Warn("Ignoring webhook for finalized payment",
			zap.String("transaction_id", payment.TransactionID),
			zap.String("current_status", string(payment.Status)),
			zap.String("webhook_status", event.Status))
		return nil
	}

	if svcErr := s.transition(payment, next); svcErr != nil {
		return svcErr
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		s.logger.Error("Failed to persist webhook status",
			zap.String("transaction_id", payment.TransactionID), zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "failed to update payment"}
	}

	s.publishEvent(payment)
	s.logger.Info("Webhook applied",
		zap.String("transaction_id", payment.TransactionID),
		zap.String("provider", event.Provider),
		zap.String("status", string(payment.Status)))
	return nil
}

func (s *paymentServiceImpl) ListMerchantPayments(ctx context.Context, merchantID string, page, limit int) ([]models.PaymentResponse, int64, *ServiceError) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	payments, total, err := s.repo.FindByMerchantID(ctx, merchantID, page, limit)
	if err != nil {
		s.logger.Error("Failed to list payments",
			zap.String("merchant_id", merchantID), zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "failed to list payments"}
	}

	responses := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, *models.NewPaymentResponse(&payments[i], banks.DisplayName(payments[i].BankProvider)))
	}
	return responses, total, nil
}

func (s *paymentServiceImpl) findMerchantPayment(ctx context.Context, merchantID, transactionID string) (*models.Payment, *ServiceError) {
	payment, err := s.repo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "payment not found: " + transactionID}
		}
		s.logger.Error("Payment lookup failed",
			zap.String("transaction_id", transactionID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "failed to look up payment"}
	}
	// A foreign merchant gets the same answer as a missing record.
	if merchantID != "" && payment.MerchantID != merchantID {
		return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "payment not found: " + transactionID}
	}
	return payment, nil
}

// eventTypes maps terminal statuses to their broker event names.
var eventTypes = map[models.PaymentStatus]string{
	models.StatusSuccess:   "payment_succeeded",
	models.StatusFailed:    "payment_failed",
	models.StatusCancelled: "payment_cancelled",
	models.StatusExpired:   "payment_expired",
	models.StatusRefunded:  "payment_refunded",
}

// publishEvent fans a lifecycle event out to Kafka and SNS. Publication is
// asynchronous and best-effort; the payment record is already durable.
func (s *paymentServiceImpl) publishEvent(payment *models.Payment) {
	eventType, ok := eventTypes[payment.Status]
	if !ok {
		return
	}
	event := &models.PaymentEvent{
		Type:          eventType,
		TransactionID: payment.TransactionID,
		MerchantID:    payment.MerchantID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		Status:        payment.Status,
		BankProvider:  payment.BankProvider,
		Timestamp:     time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if s.producer != nil {
			if err := s.producer.PublishPaymentEvent(ctx, event); err != nil {
				s.logger.Warn("Failed to publish payment event to Kafka",
					zap.String("transaction_id", event.TransactionID), zap.Error(err))
			}
		}
		if s.snsPublisher != nil && s.snsTopicArn != "" {
			body, err := json.Marshal(event)
			if err != nil {
				return
			}
			if err := s.snsPublisher.Publish(ctx, s.snsTopicArn, body); err != nil {
				s.logger.Warn("Failed to publish payment event to SNS",
					zap.String("transaction_id", event.TransactionID), zap.Error(err))
			}
		}
	}()
}
