// Package respond writes JSON error bodies for the HTTP handlers.
package respond

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Aman-1206/Joblink/internal/service"

	"github.com/gin-gonic/gin"
)

// Status maps a workflow error to an HTTP status.
func Status(err error) int {
	switch service.KindOf(err) {
	case service.KindValidation, service.KindConflict:
		return http.StatusBadRequest
	case service.KindAuth:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindTooManyRequests:
		return http.StatusTooManyRequests
	case service.KindDelivery:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error writes {"error": message} with the status matching err.
// Unclassified errors are logged and answered with 500.
func Error(c *gin.Context, logger *slog.Logger, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// BadRequest writes a 400 with msg.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// ID parses the named path parameter as a positive id. It writes a 400 and
// returns false when the parameter is not a number.
func ID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}
