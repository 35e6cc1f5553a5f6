package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stayloop/service-booking/internal/domain"
)

// envelope is the uniform JSON body for successful responses.
type envelope struct {
	Data interface{} `json:"data"`
	Meta interface{} `json:"meta,omitempty"`
}

type paginationMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

type errorBody struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Data: data})
}

// NoContent writes a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, data interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, envelope{
		Data: data,
		Meta: paginationMeta{Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorBody{Error: message})
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, errorBody{Error: message})
}

// Forbidden writes a 403 response.
func Forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, errorBody{Error: message})
}

// Error maps a domain error to its HTTP status. Unknown errors become a
// generic 500 so internals never leak to clients.
func Error(c *gin.Context, err error) {
	var derr *domain.DomainError
	if errors.As(err, &derr) {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, errorBody{Error: derr.Message})
		case errors.Is(err, domain.ErrInvalidState):
			c.JSON(http.StatusBadRequest, errorBody{Error: derr.Message})
		case errors.Is(err, domain.ErrConflict):
			c.JSON(http.StatusConflict, errorBody{Error: derr.Message})
		case errors.Is(err, domain.ErrValidation):
			c.JSON(http.StatusBadRequest, errorBody{Error: derr.Message})
		case errors.Is(err, domain.ErrForbidden):
			c.JSON(http.StatusForbidden, errorBody{Error: derr.Message})
		case errors.Is(err, domain.ErrUpstream):
			c.JSON(http.StatusBadRequest, errorBody{Error: derr.Message, Details: derr.Details})
		default:
			c.JSON(http.StatusInternalServerError, errorBody{Error: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusInternalServerError, errorBody{Error: "internal server error"})
}
