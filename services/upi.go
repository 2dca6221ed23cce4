package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var upiAddressPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+$`)

// BuildPaymentURI renders the standard UPI deep link. The format is consumed
// by UPI apps directly and must not change:
//
//	upi://pay?pa=<payee>&am=<amount>&tr=<txn>&tn=<description>&cu=<currency>
func BuildPaymentURI(payee string, amount decimal.Decimal, transactionID, description, currency string) string {
	if description == "" {
		description = "Payment"
	}
	return fmt.Sprintf("upi://pay?pa=%s&am=%s&tr=%s&tn=%s&cu=%s",
		payee, amount.StringFixed(2), transactionID, description, currency)
}

// UPIService handles direct-address (collect) flows: validating payer VPAs
// and firing the best-effort payment request toward the payer's UPI app.
type UPIService struct {
	collectURL string // PSP collect endpoint; empty in local setups
	client     *http.Client
	logger     *zap.Logger
}

func NewUPIService(collectURL string, logger *zap.Logger) *UPIService {
	return &UPIService{
		collectURL: collectURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// ValidateAddress reports whether the given string looks like a UPI VPA.
func (s *UPIService) ValidateAddress(upiID string) bool {
	return upiAddressPattern.MatchString(upiID)
}

// SendPaymentRequest asks the payer's UPI app to approve a collect request.
// It is fire-and-forget: the payment is already created and tracked, and the
// authoritative outcome arrives via webhook or polling, so a delivery
// failure here is logged and otherwise ignored.
func (s *UPIService) SendPaymentRequest(upiID string, amount decimal.Decimal, transactionID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if s.collectURL == "" {
			s.logger.Info("UPI collect endpoint not configured, skipping payment request",
				zap.String("upi_id", upiID),
				zap.String("transaction_id", transactionID))
			return
		}

		body, _ := json.Marshal(map[string]string{
			"upi_id":         upiID,
			"amount":         amount.StringFixed(2),
			"transaction_id": transactionID,
		})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.collectURL, bytes.NewReader(body))
		if err != nil {
			s.logger.Warn("Failed to build UPI collect request", zap.Error(err))
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			s.logger.Warn("UPI collect request failed",
				zap.String("transaction_id", transactionID), zap.Error(err))
			return
		}
		resp.Body.Close()

		s.logger.Info("UPI collect request sent",
			zap.String("upi_id", upiID),
			zap.String("transaction_id", transactionID),
			zap.Int("status", resp.StatusCode))
	}()
}
