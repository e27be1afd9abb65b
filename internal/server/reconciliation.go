package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	recondomain "github.com/paperplanehq/agencydesk/internal/reconciliation/domain"
)

func (s *Server) GetReconciliationView(c *gin.Context) {
	actor, filter, err := s.reconRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	view, err := s.reconSvc.BuildView(c.Request.Context(), actor, filter, s.asOf())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) GetPlanFact(c *gin.Context) {
	actor, filter, err := s.reconRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	planFact, err := s.reconSvc.AggregatePlanFact(c.Request.Context(), actor, filter, s.asOf())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": planFact})
}

func (s *Server) reconRequest(c *gin.Context) (string, recondomain.Filter, error) {
	actor, err := actorFromRequest(c)
	if err != nil {
		return "", recondomain.Filter{}, err
	}

	from, to, err := parseWindow(c.Query("from"), c.Query("to"))
	if err != nil {
		return "", recondomain.Filter{}, err
	}

	clientID, err := parseOptionalSnowflakeID(c.Query("client_id"))
	if err != nil {
		return "", recondomain.Filter{}, newValidationError("client_id", "invalid_client_id", "invalid client id")
	}

	byPaymentDue, err := parseOptionalBool(c.Query("by_payment_due"))
	if err != nil {
		return "", recondomain.Filter{}, newValidationError("by_payment_due", "invalid_bool", "expected true or false")
	}

	return actor, recondomain.Filter{
		From:         from,
		To:           to,
		ClientID:     clientID,
		ByPaymentDue: byPaymentDue,
	}, nil
}
