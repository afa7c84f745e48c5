package middleware

import (
	"catalog-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestIDMiddleware tags every request with an id, echoed back in X-Request-ID, and hands
// handlers a logger carrying it through both the echo context and the request context.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(echo.HeaderXRequestID)
			if !validRequestID(id) {
				id = uuid.NewString()
				req.Header.Set(echo.HeaderXRequestID, id)
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			c.Set("request_id", id)

			reqLog := logger.GetLogger().With(zap.String("request_id", id))
			c.Set(logger.EchoKey, reqLog)
			c.SetRequest(req.WithContext(logger.WithLogger(req.Context(), reqLog)))

			return next(c)
		}
	}
}

// maxRequestIDLen bounds caller-supplied ids; a UUID is 36 characters
const maxRequestIDLen = 64

// validRequestID accepts non-empty ids made of letters, digits, '-', '_' and '.'; anything
// else is replaced by a generated id
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
