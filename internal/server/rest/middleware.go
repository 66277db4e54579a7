package rest

import (
	"time"

	"github.com/dmitrijs2005/atskeeper/internal/common"
	"github.com/dmitrijs2005/atskeeper/internal/logging"
	"github.com/dmitrijs2005/atskeeper/internal/server/auth"
	"github.com/dmitrijs2005/atskeeper/internal/server/models"
	"github.com/gin-gonic/gin"
)

const principalKey = "ats.principal"

// RequireRoles authenticates the bearer token and admits only principals
// whose role is in roles. It is attached per route so the allowed set is
// visible where the route is declared. Missing or bad credentials answer
// 401, a wrong role answers 403.
func RequireRoles(guard *auth.Guard, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := auth.BearerToken(c.GetHeader(common.AuthorizationHeaderName))

		user, err := guard.Require(c.Request.Context(), bearer, roles...)
		if err != nil {
			writeError(c, err)
			return
		}

		c.Set(principalKey, user)
		c.Next()
	}
}

// CurrentUser returns the principal admitted by RequireRoles.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}

// requestLogger logs one line per request. Query strings and headers are
// left out since they may carry credentials.
func requestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
