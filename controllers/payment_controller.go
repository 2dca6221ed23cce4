package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/clickpaysolution/PaymentGateway/models"
	"github.com/clickpaysolution/PaymentGateway/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PaymentController handles HTTP requests for the payment lifecycle.
type PaymentController struct {
	paymentService services.PaymentService
	feeEstimator   *services.FeeEstimator
	upiService     *services.UPIService
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(svc services.PaymentService, fees *services.FeeEstimator, upi *services.UPIService) *PaymentController {
	return &PaymentController{paymentService: svc, feeEstimator: fees, upiService: upi}
}

// merchantID extracts the authenticated merchant id set by the auth
// middleware.
func merchantID(ctx *gin.Context) string {
	return ctx.GetString("merchant_id")
}

// CreatePayment handles POST /payments
func (pc *PaymentController) CreatePayment(ctx *gin.Context) {
	var req models.CreatePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	payment, svcErr := pc.paymentService.CreatePayment(ctx.Request.Context(), merchantID(ctx), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"payment": payment})
}

// GetPaymentStatus handles GET /payments/:transaction_id
func (pc *PaymentController) GetPaymentStatus(ctx *gin.Context) {
	transactionID := ctx.Param("transaction_id")
	if transactionID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Transaction id is required"})
		return
	}

	payment, svcErr := pc.paymentService.GetPaymentStatus(ctx.Request.Context(), merchantID(ctx), transactionID)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"payment": payment})
}

// CancelPayment handles POST /payments/:transaction_id/cancel
func (pc *PaymentController) CancelPayment(ctx *gin.Context) {
	transactionID := ctx.Param("transaction_id")

	var req struct {
		Reason      string `json:"reason"`
		CancelledBy string `json:"cancelled_by"`
	}
	// Body is optional; cancellation metadata defaults when absent.
	_ = ctx.ShouldBindJSON(&req)

	payment, svcErr := pc.paymentService.CancelPayment(ctx.Request.Context(), merchantID(ctx), transactionID, req.Reason, req.CancelledBy)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"payment": payment})
}

// RefundPayment handles POST /payments/:transaction_id/refund
func (pc *PaymentController) RefundPayment(ctx *gin.Context) {
	transactionID := ctx.Param("transaction_id")

	var req models.RefundRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	payment, svcErr := pc.paymentService.RefundPayment(ctx.Request.Context(), merchantID(ctx), transactionID, &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"payment": payment})
}

// ListPayments handles GET /payments
func (pc *PaymentController) ListPayments(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	payments, total, svcErr := pc.paymentService.ListMerchantPayments(ctx.Request.Context(), merchantID(ctx), page, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"payments": payments,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// EstimateFees handles POST /fees/estimate
func (pc *PaymentController) EstimateFees(ctx *gin.Context) {
	var req models.FeeEstimateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	estimate, svcErr := pc.feeEstimator.Estimate(req.Mode, req.MonthlyVolume, req.AvgTransactionSize)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"estimate": estimate})
}

// ValidateUPIAddress handles GET /upi/validate?upi_id=...
func (pc *PaymentController) ValidateUPIAddress(ctx *gin.Context) {
	upiID := ctx.Query("upi_id")
	if upiID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "upi_id query parameter is required"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"upi_id": upiID,
		"valid":  pc.upiService.ValidateAddress(upiID),
	})
}

// BuildPaymentURI handles POST /upi/uri — renders the deep link for a given
// payee and amount without creating a payment.
func (pc *PaymentController) BuildPaymentURI(ctx *gin.Context) {
	var req struct {
		Payee         string          `json:"payee" binding:"required"`
		Amount        decimal.Decimal `json:"amount" binding:"required"`
		TransactionID string          `json:"transaction_id" binding:"required"`
		Description   string          `json:"description"`
		Currency      string          `json:"currency"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if !pc.upiService.ValidateAddress(req.Payee) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid UPI address: " + req.Payee})
		return
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}
	uri := services.BuildPaymentURI(req.Payee, req.Amount, req.TransactionID, req.Description, req.Currency)
	ctx.JSON(http.StatusOK, gin.H{"uri": uri})
}

// UPICallback handles POST /payments/webhook/upi — the trusted internal
// status callback carrying transactionId/status/bankReference query params.
func (pc *PaymentController) UPICallback(ctx *gin.Context) {
	transactionID := ctx.Query("transactionId")
	status := ctx.Query("status")
	if transactionID == "" || status == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "transactionId and status query parameters are required"})
		return
	}

	svcErr := pc.paymentService.UpdatePaymentStatus(ctx.Request.Context(), transactionID,
		models.PaymentStatus(strings.ToUpper(status)), ctx.Query("bankReference"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parsePaginationParams extracts and validates page/limit query params.
func parsePaginationParams(ctx *gin.Context) (int, int) {
	const maxLimit = 100
	pageInt, limitInt := 1, 20
	if p, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil && p > 0 {
		pageInt = p
	}
	if l, err := strconv.Atoi(ctx.DefaultQuery("limit", "20")); err == nil && l > 0 {
		limitInt = l
	}
	if limitInt > maxLimit {
		limitInt = maxLimit
	}
	return pageInt, limitInt
}
