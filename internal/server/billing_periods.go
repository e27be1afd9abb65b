package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paperplanehq/agencydesk/internal/authorization"
)

func (s *Server) MaterializeServicePeriods(c *gin.Context) {
	actor, err := actorFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	serviceID, err := parseRequiredSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_service_id", "invalid service id"))
		return
	}

	ctx := c.Request.Context()
	if err := s.authzSvc.Authorize(ctx, actor, authorization.ObjectBillingPeriod, authorization.ActionMaterialize); err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.periodSvc.Materialize(ctx, serviceID, s.asOf())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) MaterializeActivePeriods(c *gin.Context) {
	actor, err := actorFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := s.authzSvc.Authorize(ctx, actor, authorization.ObjectBillingPeriod, authorization.ActionMaterialize); err != nil {
		AbortWithError(c, err)
		return
	}

	results, err := s.periodSvc.MaterializeActive(ctx, s.asOf())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": results})
}

func (s *Server) DeletePeriod(c *gin.Context) {
	actor, err := actorFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	periodID, err := parseRequiredSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_period_id", "invalid period id"))
		return
	}

	ctx := c.Request.Context()
	if err := s.authzSvc.Authorize(ctx, actor, authorization.ObjectBillingPeriod, authorization.ActionDelete); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.periodSvc.Remove(ctx, periodID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
