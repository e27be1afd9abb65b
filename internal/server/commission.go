package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetAgentEarnings(c *gin.Context) {
	actor, err := actorFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	agentID, err := parseRequiredSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_agent_id", "invalid agent id"))
		return
	}

	from, to, err := parseWindow(c.Query("from"), c.Query("to"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	report, err := s.commissionSvc.ComputeEarnings(c.Request.Context(), actor, agentID, from, to, s.asOf())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}
