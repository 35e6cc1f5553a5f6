package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stayloop/service-booking/internal/application"
	"github.com/stayloop/service-booking/internal/auth"
	listingDomain "github.com/stayloop/service-booking/internal/domain/listing"
	"github.com/stayloop/service-booking/internal/middleware"
	"github.com/stayloop/service-booking/internal/response"
)

// ListingHandler handles HTTP requests for listing operations.
type ListingHandler struct {
	listings *application.ListingService
	bookings *application.BookingService
	reviews  *application.ReviewService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listings *application.ListingService, bookings *application.BookingService, reviews *application.ReviewService) *ListingHandler {
	return &ListingHandler{listings: listings, bookings: bookings, reviews: reviews}
}

// RegisterRoutes registers all listing routes on the given router group.
// Browsing is public; mutations require the host role.
func (h *ListingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	listings := r.Group("/listings")
	{
		listings.GET("", h.ListListings)
		listings.GET("/:id", h.GetListing)
		listings.GET("/:id/reviews", h.ListReviews)
	}

	hostOnly := listings.Group("")
	hostOnly.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleHost, auth.RoleStaff))
	{
		hostOnly.POST("", h.CreateListing)
		hostOnly.PATCH("/:id", h.UpdateListing)
		hostOnly.DELETE("/:id", h.DeleteListing)
		hostOnly.GET("/:id/bookings", h.ListBookings)
	}
}

// CreateListing handles POST /api/v1/listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.listings.CreateListing(c.Request.Context(), ownerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

// GetListing handles GET /api/v1/listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	dto, err := h.listings.GetListing(c.Request.Context(), listingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// ListListings handles GET /api/v1/listings
func (h *ListingHandler) ListListings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := listingDomain.ListFilter{
		City:          c.Query("city"),
		PropertyType:  c.Query("property_type"),
		AvailableOnly: c.Query("available") == "true",
	}

	listings, total, err := h.listings.ListListings(c.Request.Context(), filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, listings, total, page, limit)
}

// UpdateListing handles PATCH /api/v1/listings/:id
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	var req application.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.listings.UpdateListing(c.Request.Context(), listingID, ownerID, middleware.IsStaff(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// DeleteListing handles DELETE /api/v1/listings/:id
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	if err := h.listings.DeleteListing(c.Request.Context(), listingID, ownerID, middleware.IsStaff(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListBookings handles GET /api/v1/listings/:id/bookings
func (h *ListingHandler) ListBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	// Hosts only see bookings on their own listings.
	l, err := h.listings.GetListing(c.Request.Context(), listingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !middleware.IsStaff(c) && l.OwnerID != userID {
		response.Forbidden(c, "not the listing owner")
		return
	}

	bookings, err := h.bookings.ListBookingsForListing(c.Request.Context(), listingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, bookings)
}

// ListReviews handles GET /api/v1/listings/:id/reviews
func (h *ListingHandler) ListReviews(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	reviews, err := h.reviews.ListReviewsForListing(c.Request.Context(), listingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, reviews)
}
