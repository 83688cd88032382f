package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-ops-api/internal/middleware"
	appErrors "github.com/noah-isme/academy-ops-api/pkg/errors"
)

// actorFrom prefers the authenticated identity and falls back to the actor named in the payload.
func actorFrom(c *gin.Context, supplied string) string {
	if claims := middleware.CurrentActor(c); claims != nil && claims.UserID != "" {
		return claims.UserID
	}
	return strings.TrimSpace(supplied)
}

func invalidPayload(err error, message string) error {
	return appErrors.Validation(err, message)
}
