package handler

import (
	"net/http"
	"time"

	"catalog-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthCheck reports liveness; ?check=db also pings the database
func HealthCheck(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)
		log.Debug("Health check requested")

		// Basic response
		response := map[string]interface{}{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		}

		// Check database connection if requested
		if c.QueryParam("check") == "db" {
			sqlDB, err := db.DB()
			if err != nil {
				log.Error("Database connection error", zap.Error(err))
				response["status"] = "error"
				response["db_status"] = "error"
				response["db_error"] = "Failed to get database connection"
				return c.JSON(http.StatusInternalServerError, response)
			}

			// Ping database to check connection
			if err := sqlDB.PingContext(c.Request().Context()); err != nil {
				log.Error("Database ping error", zap.Error(err))
				response["status"] = "error"
				response["db_status"] = "error"
				response["db_error"] = "Failed to ping database"
				return c.JSON(http.StatusInternalServerError, response)
			}

			// Database is healthy
			response["db_status"] = "ok"
		}

		return c.JSON(http.StatusOK, response)
	}
}
