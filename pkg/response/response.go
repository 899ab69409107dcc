package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wedloop-app/backend/internal/apperr"
)

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: err})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Error: err})
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, err string) {
	c.JSON(http.StatusForbidden, Body{Success: false, Error: err})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: err})
}

// Conflict sends 409 with error message.
func Conflict(c *gin.Context, err string) {
	c.JSON(http.StatusConflict, Body{Success: false, Error: err})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: err})
}

// Error maps a classified domain error to its HTTP status and sends the
// envelope with the stable code. Credential errors are sent as 404 with
// no distinguishing detail, so callers cannot probe token validity.
// Unclassified errors become 500 without leaking the cause.
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	code := apperr.CodeOf(err)
	switch kind {
	case apperr.KindValidation:
		c.JSON(http.StatusBadRequest, Body{Success: false, Error: err.Error(), Code: code})
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, Body{Success: false, Error: err.Error(), Code: code})
	case apperr.KindCredential:
		c.JSON(http.StatusNotFound, Body{Success: false, Error: "not found", Code: apperr.CodeInvalidToken})
	case apperr.KindConflict:
		c.JSON(http.StatusConflict, Body{Success: false, Error: err.Error(), Code: code})
	case apperr.KindLimitExceeded:
		c.JSON(http.StatusUnprocessableEntity, Body{Success: false, Error: err.Error(), Code: code})
	case apperr.KindExpired:
		c.JSON(http.StatusGone, Body{Success: false, Error: err.Error(), Code: code})
	default:
		c.JSON(http.StatusInternalServerError, Body{Success: false, Error: "internal error"})
	}
}
