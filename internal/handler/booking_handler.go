package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stayloop/service-booking/internal/application"
	"github.com/stayloop/service-booking/internal/auth"
	"github.com/stayloop/service-booking/internal/middleware"
	"github.com/stayloop/service-booking/internal/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	bookings *application.BookingService
	payments *application.PaymentService
	reviews  *application.ReviewService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookings *application.BookingService, payments *application.PaymentService, reviews *application.ReviewService) *BookingHandler {
	return &BookingHandler{bookings: bookings, payments: payments, reviews: reviews}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtManager))
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id", h.Reschedule)
		bookings.DELETE("/:id", h.DeleteBooking)
		bookings.POST("/:id/confirm", h.ConfirmBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/complete", middleware.RequireRole(auth.RoleStaff), h.CompleteBooking)
		bookings.POST("/:id/initiate_payment", h.InitiatePayment)
		bookings.POST("/:id/review", h.CreateReview)
	}
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	guest, ok := middleware.GetGuestDetails(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.bookings.CreateBooking(c.Request.Context(), guest, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

// ListBookings handles GET /api/v1/bookings
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	dtos, err := h.bookings.ListBookings(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dtos)
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, bookingID, ok := h.identify(c)
	if !ok {
		return
	}

	dto, err := h.bookings.GetBooking(c.Request.Context(), bookingID, userID, middleware.IsStaff(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// Reschedule handles PATCH /api/v1/bookings/:id
func (h *BookingHandler) Reschedule(c *gin.Context) {
	userID, bookingID, ok := h.identify(c)
	if !ok {
		return
	}

	var req application.RescheduleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.bookings.Reschedule(c.Request.Context(), bookingID, userID, middleware.IsStaff(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// DeleteBooking handles DELETE /api/v1/bookings/:id
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	userID, bookingID, ok := h.identify(c)
	if !ok {
		return
	}

	if err := h.bookings.DeleteBooking(c.Request.Context(), bookingID, userID, middleware.IsStaff(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ConfirmBooking handles POST /api/v1/bookings/:id/confirm
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	userID, bookingID, ok := h.identify(c)
	if !ok {
		return
	}

	if _, err := h.bookings.Confirm(c.Request.Context(), bookingID, userID, middleware.IsStaff(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "booking confirmed"})
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userID, bookingID, ok := h.identify(c)
	if !ok {
		return
	}

	dto, err := h.bookings.Cancel(c.Request.Context(), bookingID, userID, middleware.IsStaff(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// CompleteBooking handles POST /api/v1/bookings/:id/complete
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	dto, err := h.bookings.Complete(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// InitiatePayment handles POST /api/v1/bookings/:id/initiate_payment
func (h *BookingHandler) InitiatePayment(c *gin.Context) {
	userID, bookingID, ok := h.identify(c)
	if !ok {
		return
	}

	// Scope check rides on the booking lookup.
	if _, err := h.bookings.GetBooking(c.Request.Context(), bookingID, userID, middleware.IsStaff(c)); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.payments.InitiatePayment(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment_url": result.PaymentURL,
		"payment_id":  result.PaymentID,
		"reference":   result.Reference,
	})
}

// CreateReview handles POST /api/v1/bookings/:id/review
func (h *BookingHandler) CreateReview(c *gin.Context) {
	userID, bookingID, ok := h.identify(c)
	if !ok {
		return
	}

	var req application.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.reviews.CreateReview(c.Request.Context(), bookingID, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

// identify extracts the caller's user ID and the booking ID path param,
// writing the error response itself on failure.
func (h *BookingHandler) identify(c *gin.Context) (userID, bookingID uuid.UUID, ok bool) {
	userID, idOK := middleware.GetUserID(c)
	if !idOK {
		response.Unauthorized(c, "unauthorized")
		return uuid.Nil, uuid.Nil, false
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, bookingID, true
}
