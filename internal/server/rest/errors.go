package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/atskeeper/internal/common"
	"github.com/gin-gonic/gin"
)

// writeError maps a service or guard error onto an HTTP status and a fixed
// message. Unexpected errors never leak their text to the client.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "incorrect email or password"})
	case errors.Is(err, common.ErrInvalidToken):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
	case errors.Is(err, common.ErrUnauthenticated):
		c.Header("WWW-Authenticate", "Bearer")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
	case errors.Is(err, common.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not enough permissions"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
