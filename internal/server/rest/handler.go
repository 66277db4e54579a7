package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/atskeeper/internal/dbx"
	"github.com/dmitrijs2005/atskeeper/internal/logging"
	"github.com/dmitrijs2005/atskeeper/internal/server/models"
	"github.com/dmitrijs2005/atskeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// SessionManager is the session lifecycle the handlers drive.
// *services.SessionService satisfies it.
type SessionManager interface {
	Login(ctx context.Context, email, secret string, meta services.ClientMeta) (*services.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.RefreshResult, error)
	Logout(ctx context.Context, userID int64) (int64, error)
	RevokeUserSessions(ctx context.Context, userID int64) (int64, error)
	Sessions(ctx context.Context, userID int64) ([]*models.Session, error)
}

type handler struct {
	sessions SessionManager
	db       dbx.Pinger
	metrics  *Metrics
	logger   logging.Logger
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	TokenType    string             `json:"token_type"`
	User         models.UserSummary `json:"user"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	ctx := c.Request.Context()
	res, err := h.sessions.Login(ctx, req.Email, req.Password, services.ClientMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	h.metrics.Observe("login", err)
	if err != nil {
		h.logFailure(ctx, "login failed", err)
		writeError(c, err)
		return
	}

	h.logger.Info(ctx, "login succeeded", "user_id", res.User.ID, "role", res.User.Role)
	c.JSON(http.StatusOK, loginResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    res.TokenType,
		User:         res.User.Summary(),
	})
}

func (h *handler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh_token is required"})
		return
	}

	ctx := c.Request.Context()
	res, err := h.sessions.Refresh(ctx, req.RefreshToken)
	h.metrics.Observe("refresh", err)
	if err != nil {
		h.logFailure(ctx, "refresh failed", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    res.TokenType,
	})
}

func (h *handler) logout(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	ctx := c.Request.Context()
	n, err := h.sessions.Logout(ctx, user.ID)
	h.metrics.Observe("logout", err)
	if err != nil {
		h.logFailure(ctx, "logout failed", err)
		writeError(c, err)
		return
	}

	h.logger.Info(ctx, "logout", "user_id", user.ID, "revoked", n)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully", "revoked_count": n})
}

func (h *handler) me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, user.Summary())
}

func (h *handler) listSessions(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	list, err := h.sessions.Sessions(c.Request.Context(), user.ID)
	if err != nil {
		h.logFailure(c.Request.Context(), "list sessions failed", err)
		writeError(c, err)
		return
	}

	out := make([]models.SessionInfo, 0, len(list))
	for _, s := range list {
		out = append(out, s.Info())
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) revokeUserSessions(c *gin.Context) {
	admin, _ := CurrentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	ctx := c.Request.Context()
	n, err := h.sessions.RevokeUserSessions(ctx, id)
	h.metrics.Observe("revoke", err)
	if err != nil {
		h.logFailure(ctx, "revoke failed", err)
		writeError(c, err)
		return
	}

	h.logger.Info(ctx, "sessions revoked by admin", "admin_id", admin.ID, "user_id", id, "revoked", n)
	c.JSON(http.StatusOK, gin.H{"user_id": id, "revoked_count": n})
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *handler) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn(ctx, "readiness check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// logFailure logs expected rejections at debug and everything else at error.
func (h *handler) logFailure(ctx context.Context, msg string, err error) {
	if outcome(err) == "error" {
		h.logger.Error(ctx, msg, "error", err)
		return
	}
	h.logger.Debug(ctx, msg, "reason", outcome(err))
}
