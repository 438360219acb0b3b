package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Authentication happens upstream; the edge proxy injects the authenticated
// user id into this header.
const userIDHeader = "X-User-ID"

func userIDFrom(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetHeader(userIDHeader))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing or invalid user identity",
			"code":  "UNAUTHENTICATED",
		})
		return uuid.Nil, false
	}
	return id, true
}
