package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/helperkit/tagstore/internal/config"
	"github.com/helperkit/tagstore/internal/editors"
	"github.com/helperkit/tagstore/internal/sessions"
	"github.com/helperkit/tagstore/internal/tokens"
	"github.com/helperkit/tagstore/pkg/logger"
)

// AuthHandler issues and revokes editor credentials.
type AuthHandler struct {
	cfg      *config.Config
	editors  *editors.Service
	sessions *sessions.Service
}

func NewAuthHandler(cfg *config.Config, e *editors.Service, s *sessions.Service) *AuthHandler {
	return &AuthHandler{cfg: cfg, editors: e, sessions: s}
}

func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	editor, err := h.editors.Authenticate(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, editors.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}
	if err != nil {
		logger.Errorf("login failed for %s: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication unavailable"})
		return
	}

	access, err := tokens.GenerateAccessToken(h.cfg, editor, h.cfg.Auth.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	refresh, err := h.sessions.CreateSession(c.Request.Context(), editor.Username, h.cfg.Auth.RefreshTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "Bearer",
		"expires_in":    int64(h.cfg.Auth.AccessTokenTTL.Seconds()),
		"editor": gin.H{
			"username":    editor.Username,
			"displayName": editor.DisplayName,
			"role":        editor.Role,
		},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.sessions.ValidateRefresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
		return
	}
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}

	editor, err := h.editors.GetByUsername(c.Request.Context(), sess.Username)
	if err != nil || editor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account no longer exists"})
		return
	}

	access, err := tokens.GenerateAccessToken(h.cfg, editor, h.cfg.Auth.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.cfg.Auth.AccessTokenTTL.Seconds()),
	})
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the refresh session and blacklists the presented access
// token for the remainder of its lifetime.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req logoutRequest
	_ = c.ShouldBindJSON(&req)

	if req.RefreshToken != "" {
		if err := h.sessions.DeleteRefresh(c.Request.Context(), req.RefreshToken); err != nil {
			logger.Warnf("failed to delete refresh session: %v", err)
		}
	}

	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		raw := strings.TrimPrefix(auth, "Bearer ")
		if err := sessions.BlacklistAccessToken(c.Request.Context(), raw, h.cfg.Auth.AccessTokenTTL); err != nil {
			logger.Warnf("failed to blacklist access token: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}
