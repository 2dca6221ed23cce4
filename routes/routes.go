package routes

import (
	"github.com/clickpaysolution/PaymentGateway/controllers"
	"github.com/clickpaysolution/PaymentGateway/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterPaymentRoutes sets up the merchant-facing payment API. All routes
// in this group require the merchant identity header.
func RegisterPaymentRoutes(r *gin.Engine, pc *controllers.PaymentController) {
	payments := r.Group("/payments")
	payments.Use(middleware.AuthMiddleware())

	payments.POST("", pc.CreatePayment)
	payments.GET("", pc.ListPayments)
	payments.GET("/:transaction_id", pc.GetPaymentStatus)
	payments.POST("/:transaction_id/cancel", pc.CancelPayment)
	payments.POST("/:transaction_id/refund", pc.RefundPayment)

	// Trusted internal PSP callback; authenticated at the network layer,
	// not with merchant identity.
	r.POST("/payments/webhook/upi", pc.UPICallback)

	fees := r.Group("/fees")
	fees.Use(middleware.AuthMiddleware())
	fees.POST("/estimate", pc.EstimateFees)

	upi := r.Group("/upi")
	upi.Use(middleware.AuthMiddleware())
	upi.GET("/validate", pc.ValidateUPIAddress)
	upi.POST("/uri", pc.BuildPaymentURI)
}

// RegisterWebhookRoutes sets up the bank callback endpoints. These carry
// their own HMAC authentication, so no merchant auth middleware.
func RegisterWebhookRoutes(r *gin.Engine, wc *controllers.WebhookController) {
	webhooks := r.Group("/webhooks")

	webhooks.POST("/hdfc", wc.HandleHDFC)
	webhooks.POST("/icici", wc.HandleICICI)
	webhooks.POST("/kotak", wc.HandleKotak)
	webhooks.POST("/axis", wc.HandleAxis)
	webhooks.POST("/bank", wc.HandleGeneric)
}
