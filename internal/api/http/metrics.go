package http

import (
	"net/http"

	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/service"
	"github.com/gin-gonic/gin"
)

// MetricsHandler serves the in-process service counters
func MetricsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, service.GetMetrics().Snapshot())
}

func RegisterMetrics(r gin.IRouter) {
	r.GET("/metrics", MetricsHandler)
}
