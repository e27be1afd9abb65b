package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	incomedomain "github.com/paperplanehq/agencydesk/internal/income/domain"
	"github.com/paperplanehq/agencydesk/internal/money"
)

func (s *Server) ListIncomes(c *gin.Context) {
	actor, err := actorFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req incomedomain.ListRequest
	if err := c.ShouldBindQuery(&req.Pagination); err != nil {
		AbortWithError(c, newValidationError("page", "invalid_pagination", "invalid pagination"))
		return
	}

	if req.ClientID, err = parseOptionalSnowflakeID(c.Query("client_id")); err != nil {
		AbortWithError(c, newValidationError("client_id", "invalid_client_id", "invalid client id"))
		return
	}
	if req.ServiceID, err = parseOptionalSnowflakeID(c.Query("service_id")); err != nil {
		AbortWithError(c, newValidationError("service_id", "invalid_service_id", "invalid service id"))
		return
	}
	if req.PeriodID, err = parseOptionalSnowflakeID(c.Query("period_id")); err != nil {
		AbortWithError(c, newValidationError("period_id", "invalid_period_id", "invalid period id"))
		return
	}

	resp, err := s.incomeSvc.List(c.Request.Context(), actor, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Data, "page_info": resp.PageInfo})
}

type recordIncomeRequest struct {
	ClientID   string `json:"client_id" binding:"required"`
	ServiceID  string `json:"service_id" binding:"required"`
	PeriodID   string `json:"period_id"`
	Amount     int64  `json:"amount" binding:"required"`
	ReceivedAt string `json:"received_at" binding:"required"`
	Comment    string `json:"comment"`
}

func (s *Server) RecordIncome(c *gin.Context) {
	actor, err := actorFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var body recordIncomeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_body", "invalid request body"))
		return
	}

	clientID, err := parseRequiredSnowflakeID(body.ClientID)
	if err != nil {
		AbortWithError(c, newValidationError("client_id", "invalid_client_id", "invalid client id"))
		return
	}
	serviceID, err := parseRequiredSnowflakeID(body.ServiceID)
	if err != nil {
		AbortWithError(c, newValidationError("service_id", "invalid_service_id", "invalid service id"))
		return
	}
	var periodID *snowflake.ID
	if periodID, err = parseOptionalSnowflakeID(body.PeriodID); err != nil {
		AbortWithError(c, newValidationError("period_id", "invalid_period_id", "invalid period id"))
		return
	}
	receivedAt, err := parseDate(body.ReceivedAt)
	if err != nil {
		AbortWithError(c, newValidationError("received_at", "invalid_date", "expected YYYY-MM-DD"))
		return
	}

	income, err := s.incomeSvc.Record(c.Request.Context(), actor, incomedomain.RecordRequest{
		ClientID:   clientID,
		ServiceID:  serviceID,
		PeriodID:   periodID,
		Amount:     money.Money(body.Amount),
		ReceivedAt: receivedAt,
		Comment:    body.Comment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": income})
}
