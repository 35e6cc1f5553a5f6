package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stayloop/service-booking/internal/application"
	"github.com/stayloop/service-booking/internal/auth"
	"github.com/stayloop/service-booking/internal/middleware"
	"github.com/stayloop/service-booking/internal/response"
)

// StaffHandler handles staff HTTP requests for marketplace oversight.
type StaffHandler struct {
	bookings *application.BookingService
	payments *application.PaymentService
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(bookings *application.BookingService, payments *application.PaymentService) *StaffHandler {
	return &StaffHandler{bookings: bookings, payments: payments}
}

// RegisterRoutes registers staff routes.
func (h *StaffHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleStaff))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/payments", h.ListPayments)
		admin.GET("/stats/payments", h.PaymentStats)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *StaffHandler) ListBookings(c *gin.Context) {
	page, limit := pageParams(c)

	bookings, total, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// ListPayments handles GET /api/v1/admin/payments.
func (h *StaffHandler) ListPayments(c *gin.Context) {
	page, limit := pageParams(c)

	payments, total, err := h.payments.ListAllPayments(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, payments, total, page, limit)
}

// PaymentStats handles GET /api/v1/admin/stats/payments.
func (h *StaffHandler) PaymentStats(c *gin.Context) {
	stats, err := h.payments.GetPaymentStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
