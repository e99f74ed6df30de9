package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterHTTPRoutes /health 详细报告，/health/ready 与 /health/live 探针
func RegisterHTTPRoutes(r *gin.Engine, aggregator *Aggregator) {
	g := r.Group("/health")

	g.GET("", func(c *gin.Context) {
		report := aggregator.Report(c.Request.Context())
		c.JSON(statusCode(report.Status != StatusUnhealthy), report)
	})

	g.GET("/ready", func(c *gin.Context) {
		status := aggregator.OverallStatus(c.Request.Context())
		ready := status != StatusUnhealthy
		c.JSON(statusCode(ready), gin.H{"status": status, "ready": ready})
	})

	g.GET("/live", func(c *gin.Context) {
		alive := aggregator.Alive()
		c.JSON(statusCode(alive), gin.H{"alive": alive})
	})
}

func statusCode(ok bool) int {
	if ok {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}
