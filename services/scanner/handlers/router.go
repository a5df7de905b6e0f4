package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/weavescan/services/scanner/scan"
)

// NewRouter wires the scanner's HTTP surface: a gateway-probing health
// endpoint, prometheus metrics, and the scan websocket.
func NewRouter(ledger scan.Ledger) *gin.Engine {
	router := gin.Default()
	router.GET("/healthz", healthHandler(ledger))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws/scan", HandleScanWebSocket(ledger))
	return router
}

// healthHandler reports service liveness plus gateway reachability with
// a short probe so orchestration can tell the two failure modes apart.
func healthHandler(ledger scan.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		info, err := ledger.Info(ctx)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{
				"status":  "degraded",
				"gateway": "unreachable",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"gateway": "reachable",
			"height":  info.Height,
		})
	}
}
