package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hymnal/internal/accounts"
	"github.com/mrlokans/hymnal/internal/apperr"
	"github.com/mrlokans/hymnal/internal/auth"
)

type verifyCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

type AuthController struct {
	accounts    *accounts.Service
	rateLimiter *auth.RateLimiter
}

// NewAuthController wires login, registration and two-factor endpoints.
// rateLimiter may be nil to disable login throttling.
func NewAuthController(accountService *accounts.Service, rateLimiter *auth.RateLimiter) *AuthController {
	return &AuthController{
		accounts:    accountService,
		rateLimiter: rateLimiter,
	}
}

// Login exchanges credentials, sent as JSON or as a form, for a bearer
// token. Failures count against the client IP and login pair.
// POST /api/v1/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req accounts.LoginInput
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	clientIP := c.ClientIP()
	if ac.rateLimiter != nil {
		if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Username); !allowed {
			auth.AbortTooManyAttempts(c, retryAfter)
			return
		}
	}

	token, err := ac.accounts.Login(c.Request.Context(), req)
	if err != nil {
		if ac.rateLimiter != nil && apperr.Is(err, apperr.KindAuthentication) {
			ac.rateLimiter.RecordFailure(clientIP, req.Username)
		}
		respondError(c, err)
		return
	}

	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordSuccess(clientIP, req.Username)
	}
	c.JSON(http.StatusOK, token)
}

// Register creates a user on behalf of an administrator.
// POST /api/v1/register
func (ac *AuthController) Register(c *gin.Context) {
	var req accounts.CreateUserInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := ac.accounts.Register(c.Request.Context(), auth.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Setup2FA issues a new TOTP secret for the caller.
// POST /api/v1/2fa/setup
func (ac *AuthController) Setup2FA(c *gin.Context) {
	setup, err := ac.accounts.Setup2FA(c.Request.Context(), auth.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setup)
}

// Verify2FA confirms a TOTP code and enables two-factor login.
// POST /api/v1/2fa/verify
func (ac *AuthController) Verify2FA(c *gin.Context) {
	var req verifyCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := ac.accounts.Verify2FA(c.Request.Context(), auth.GetActor(c), req.Code); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "two-factor authentication enabled"})
}
