// Package response renders the JSON envelope used by every API handler.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope wrapping every API payload. Exactly one of
// Data and Error is set.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo carries a machine-readable code alongside the human message.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

// Success writes data with a 200 status.
func Success(c *gin.Context, data interface{}) {
	ok(c, http.StatusOK, data)
}

// Created writes data with a 201 status.
func Created(c *gin.Context, data interface{}) {
	ok(c, http.StatusCreated, data)
}

// Error writes an error envelope with the given status and code.
func Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message},
	})
}

// BadRequest writes a 400 error.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// Unauthorized writes a 401 error.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// Forbidden writes a 403 error.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, "FORBIDDEN", message)
}

// NotFound writes a 404 error.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, "NOT_FOUND", message)
}

// Conflict writes a 409 error.
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, "CONFLICT", message)
}

// InternalError writes a 500 error.
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}
