// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"net/http"

	"farebridge_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// Problem is the standard error response format: a short title, an optional
// human-readable detail, and the HTTP status carries the client/server
// classification.
type Problem struct {
	Error   string      `json:"error"`
	Detail  string      `json:"detail,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, Problem{Error: message, Details: details})
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// Created sends a 201 Created response with the given payload.
func Created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, payload)
}

// HandleError maps domain errors to HTTP responses.
// If the error is a typed *apperr.Error, it uses the error's Kind to determine
// the HTTP status code. Untyped errors are treated as internal failures and
// surfaced without their message, so internals never leak to callers.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if domainErr, ok := err.(*apperr.Error); ok {
		p := Problem{Error: domainErr.Message, Details: domainErr.Details}
		if domainErr.Err != nil && domainErr.Kind != apperr.KindInternal {
			p.Detail = domainErr.Err.Error()
		}
		c.JSON(domainErr.HTTPStatus(), p)
		return true
	}

	c.JSON(http.StatusInternalServerError, Problem{Error: "internal error"})
	return true
}
