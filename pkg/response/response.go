package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the unified API response format.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AppError is the only error type that crosses the service boundary. Exactly
// four kinds exist: NotFound (404), BadRequest (400), NotAuthorized (401) and
// Generic (500). Anything else a service bubbles up is rendered as Generic.
type AppError struct {
	HTTPStatus int    // HTTP status code the routing layer maps this kind to
	Message    string // Human-readable error message
}

func (e *AppError) Error() string {
	return e.Message
}

// NewNotFound reports a referenced project/member/task/file that does not
// exist, or does not belong to the requesting context.
func NewNotFound(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Message: msg}
}

// NewBadRequest reports a caller-correctable input problem: wrong file type,
// missing file, quota exceeded, invalid role assignment.
func NewBadRequest(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Message: msg}
}

// NewNotAuthorized reports an authenticated caller with insufficient role.
func NewNotAuthorized(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusUnauthorized, Message: msg}
}

// NewGeneric reports an internal failure, fatal to the current request only.
func NewGeneric(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusInternalServerError, Message: msg}
}

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "ok",
		Data:    data,
	})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// Error sends an error response. If err is an *AppError its status is used;
// any other error is treated as a generic internal failure.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, Response{
			Code:    appErr.HTTPStatus,
			Message: appErr.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, Response{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	})
}

// Convenience error response functions

func BadRequest(c *gin.Context, msg string) {
	Error(c, NewBadRequest(msg))
}

func NotAuthorized(c *gin.Context, msg string) {
	Error(c, NewNotAuthorized(msg))
}

func NotFound(c *gin.Context, msg string) {
	Error(c, NewNotFound(msg))
}

func ServerError(c *gin.Context, msg string) {
	Error(c, NewGeneric(msg))
}
