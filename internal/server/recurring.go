package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunRecurringSweep triggers the poll-on-access recurring sweep for the
// tenant in context. Per-item failures come back in the response body;
// the sweep itself still succeeds.
func (s *Server) RunRecurringSweep(c *gin.Context) {
	result, err := s.scheduler.Sweep(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
