package api

import (
	"net/http"

	"pi-monitor/internal/incident"

	"github.com/gin-gonic/gin"
)

type DeliveryQueryParams struct {
	Kind  string `form:"kind"`
	Limit int    `form:"limit"`
}

func (s *Server) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pi-monitor",
	})
}

func (s *Server) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.monitor.Snapshot())
}

// ResetHandler is the software equivalent of the reset button. The reset is
// applied by the monitor between cycles.
func (s *Server) ResetHandler(c *gin.Context) {
	s.monitor.RequestReset()
	c.JSON(http.StatusAccepted, gin.H{"message": "Reset requested"})
}

func (s *Server) DeliveriesHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Delivery journal is disabled"})
		return
	}

	var queryParams DeliveryQueryParams
	if err := c.ShouldBindQuery(&queryParams); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid query parameters", "error": err.Error()})
		return
	}

	if queryParams.Limit <= 0 {
		queryParams.Limit = 100
	}

	deliveries, err := s.db.RecentDeliveries(incident.Kind(queryParams.Kind), queryParams.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve deliveries", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, deliveries)
}
