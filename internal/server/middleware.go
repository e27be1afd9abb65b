package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/paperplanehq/agencydesk/internal/observability/context"
)

// actorFromRequest resolves the acting principal. Staff requests carry the
// authenticated user id in X-User-Id (set by the fronting gateway); internal
// batch callers identify as "system" via X-Actor.
func actorFromRequest(c *gin.Context) (string, error) {
	if actor := strings.TrimSpace(c.GetHeader("X-Actor")); actor == "system" {
		return actor, nil
	}

	userID := strings.TrimSpace(c.GetHeader("X-User-Id"))
	if userID == "" {
		return "", ErrUnauthorized
	}

	c.Request = c.Request.WithContext(
		obscontext.WithActorID(c.Request.Context(), userID),
	)
	return "user:" + userID, nil
}
