package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthInfo reports process state for the health endpoint
type HealthInfo func() gin.H

// NewRouter builds the gin engine serving everything under /api
func NewRouter(pivots *PivotHandler, health HealthInfo) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	started := time.Now()
	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/health", func(c *gin.Context) {
			body := gin.H{
				"status": "ok",
				"uptime": time.Since(started).Round(time.Second).String(),
			}
			if health != nil {
				for k, v := range health() {
					body[k] = v
				}
			}
			c.JSON(http.StatusOK, body)
		})

		pivotGroup := apiGroup.Group("/pivot")
		pivotGroup.GET("/fields", pivots.GetFields)
		pivotGroup.GET("/result", pivots.GetResult)
		pivotGroup.GET("/export.xlsx", pivots.ExportResult)
	}

	return router
}
