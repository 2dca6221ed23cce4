package services_test

import (
	"testing"

	"github.com/clickpaysolution/PaymentGateway/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBuildPaymentURIFormat(t *testing.T) {
	uri := services.BuildPaymentURI("shop@axis", decimal.NewFromFloat(499.5), "TXN1", "Order 42", "INR")
	assert.Equal(t, "upi://pay?pa=shop@axis&am=499.50&tr=TXN1&tn=Order 42&cu=INR", uri)
}

func TestBuildPaymentURIDefaultsDescription(t *testing.T) {
	uri := services.BuildPaymentURI("shop@axis", decimal.NewFromInt(100), "TXN2", "", "INR")
	assert.Equal(t, "upi://pay?pa=shop@axis&am=100.00&tr=TXN2&tn=Payment&cu=INR", uri)
}

func TestValidateAddress(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	svc := services.NewUPIService("", logger)

	valid := []string{"user@oksbi", "shop.name@axis", "a_b+c@upi", "user%x@bank-1.co"}
	for _, v := range valid {
		assert.True(t, svc.ValidateAddress(v), v)
	}

	invalid := []string{"", "user", "@axis", "user@", "user axis@bank", "user@@bank"}
	for _, v := range invalid {
		assert.False(t, svc.ValidateAddress(v), v)
	}
}
