package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stayloop/service-booking/internal/application"
	"github.com/stayloop/service-booking/internal/auth"
	"github.com/stayloop/service-booking/internal/middleware"
	"github.com/stayloop/service-booking/internal/response"
)

// PaymentHandler handles HTTP requests for payment operations.
type PaymentHandler struct {
	service *application.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers all payment routes on the given router group.
// The verify callback and the return-URL landing stay public: the gateway
// calls them without a user token.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	payments := r.Group("/payments")

	payments.POST("/verify", h.VerifyPayment)
	payments.GET("/success", h.PaymentSuccess)

	authed := payments.Group("")
	authed.Use(middleware.AuthMiddleware(jwtManager))
	{
		authed.POST("", h.EnsurePayment)
		authed.GET("", h.ListPayments)
		authed.GET("/:id", h.GetPayment)
		authed.POST("/:id/check_status", h.CheckStatus)
	}
}

// EnsurePayment handles POST /api/v1/payments
func (h *PaymentHandler) EnsurePayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.EnsurePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.EnsurePayment(c.Request.Context(), req.BookingID, userID, middleware.IsStaff(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// ListPayments handles GET /api/v1/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	dtos, err := h.service.ListPayments(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dtos)
}

// GetPayment handles GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment ID")
		return
	}

	dto, err := h.service.GetPayment(c.Request.Context(), paymentID, userID, middleware.IsStaff(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// VerifyPayment handles POST /api/v1/payments/verify, the gateway callback.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req struct {
		Reference string `json:"reference" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.HandleVerification(c.Request.Context(), req.Reference)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// PaymentSuccess handles GET /api/v1/payments/success, the return-URL
// landing. It verifies the reference so a user landing here settles the
// payment even if the callback was lost.
func (h *PaymentHandler) PaymentSuccess(c *gin.Context) {
	reference := c.Query("reference")

	dto, err := h.service.HandleVerification(c.Request.Context(), reference)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// CheckStatus handles POST /api/v1/payments/:id/check_status
func (h *PaymentHandler) CheckStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment ID")
		return
	}

	dto, err := h.service.CheckStatus(c.Request.Context(), paymentID, userID, middleware.IsStaff(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}
