package services_test

import (
	"net/http"
	"testing"

	"github.com/clickpaysolution/PaymentGateway/models"
	"github.com/clickpaysolution/PaymentGateway/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestEstimateGatewayOnly(t *testing.T) {
	est, svcErr := services.NewFeeEstimator().Estimate(models.ModeGatewayOnly, d("100000"), d("500"))
	assert.Nil(t, svcErr)

	assert.Equal(t, int64(200), est.Transactions)
	assert.True(t, est.SetupFee.Equal(d("0")), est.SetupFee.String())
	assert.True(t, est.MonthlyFee.Equal(d("2000")))
	assert.True(t, est.TransactionFees.Equal(d("400")))
	assert.True(t, est.PercentageFees.Equal(d("0")))
	assert.True(t, est.TotalMonthlyFee.Equal(d("2400")))
	assert.Equal(t, "2.4000", est.EffectiveRate.StringFixed(4))
}

func TestEstimateFullProcessor(t *testing.T) {
	est, svcErr := services.NewFeeEstimator().Estimate(models.ModeFullProcessor, d("100000"), d("1000"))
	assert.Nil(t, svcErr)

	assert.Equal(t, int64(100), est.Transactions)
	assert.True(t, est.SetupFee.Equal(d("5000")))
	assert.True(t, est.MonthlyFee.Equal(d("1000")))
	assert.True(t, est.TransactionFees.Equal(d("200")))
	assert.True(t, est.PercentageFees.Equal(d("1500")))
	assert.True(t, est.TotalMonthlyFee.Equal(d("2700")))
	assert.Equal(t, "2.7000", est.EffectiveRate.StringFixed(4))
}

func TestEstimateHybrid(t *testing.T) {
	est, svcErr := services.NewFeeEstimator().Estimate(models.ModeHybrid, d("100000"), d("500"))
	assert.Nil(t, svcErr)

	assert.Equal(t, int64(200), est.Transactions)
	assert.True(t, est.SetupFee.Equal(d("2500")))
	assert.True(t, est.MonthlyFee.Equal(d("1500")))
	assert.True(t, est.TransactionFees.Equal(d("400")))
	// 1.5% applied to the 30% small-ticket share of volume.
	assert.True(t, est.PercentageFees.Equal(d("450")))
	assert.True(t, est.TotalMonthlyFee.Equal(d("2350")))
	assert.Equal(t, "2.3500", est.EffectiveRate.StringFixed(4))
}

func TestEstimateRoundsTransactionCountUp(t *testing.T) {
	est, svcErr := services.NewFeeEstimator().Estimate(models.ModeGatewayOnly, d("1000"), d("300"))
	assert.Nil(t, svcErr)
	assert.Equal(t, int64(4), est.Transactions)
}

func TestEstimateEffectiveRatePrecision(t *testing.T) {
	est, svcErr := services.NewFeeEstimator().Estimate(models.ModeFullProcessor, d("12345"), d("100"))
	assert.Nil(t, svcErr)

	assert.Equal(t, int64(124), est.Transactions)
	assert.True(t, est.TotalMonthlyFee.Equal(d("1433.175")))
	// 1433.175 / 12345 * 100 = 11.609356..., rounded half-up to 4 places.
	assert.Equal(t, "11.6094", est.EffectiveRate.StringFixed(4))
}

func TestEstimateRejectsNonPositiveInputs(t *testing.T) {
	fe := services.NewFeeEstimator()

	_, svcErr := fe.Estimate(models.ModeGatewayOnly, d("0"), d("500"))
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)

	_, svcErr = fe.Estimate(models.ModeGatewayOnly, d("100000"), d("-1"))
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)

	_, svcErr = fe.Estimate("PREMIUM", d("100000"), d("500"))
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
}
