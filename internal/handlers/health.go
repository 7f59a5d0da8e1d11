package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewlinkhq/crewlink/pkg/response"
)

// Health returns a status payload useful for readiness checks, probing the
// database connection when a handle is supplied.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok"}

		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(requestContext(c))
			}
			if err != nil {
				status["status"] = "degraded"
				status["database"] = "unreachable"
				response.Success(c, http.StatusServiceUnavailable, status)
				return
			}
			status["database"] = "ok"
		}

		response.Success(c, http.StatusOK, status)
	}
}
