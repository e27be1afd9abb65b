package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// ComputeEarnings builds the agent's commission breakdown for periods
	// whose payment falls due inside [from, to].
	ComputeEarnings(ctx context.Context, actor string, agentID snowflake.ID, from, to time.Time, asOf time.Time) (EarningsReport, error)
}

var ErrAgentNotFound = errors.New("agent_not_found")
