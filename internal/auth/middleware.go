package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hymnal/internal/apperr"
	"github.com/mrlokans/hymnal/internal/entities"
)

// ContextKeyActor holds the authenticated *entities.User.
const ContextKeyActor = "auth_actor"

// UserLoader resolves token subjects to active users.
type UserLoader interface {
	GetActiveByID(ctx context.Context, id uint) (*entities.User, error)
}

// Middleware authenticates bearer tokens and applies the access policy.
type Middleware struct {
	tokens *TokenIssuer
	users  UserLoader
	policy Policy
}

func NewMiddleware(tokens *TokenIssuer, users UserLoader, policy Policy) *Middleware {
	return &Middleware{
		tokens: tokens,
		users:  users,
		policy: policy,
	}
}

// Policy returns the policy the middleware enforces.
func (m *Middleware) Policy() Policy {
	return m.policy
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate resolves the request's actor. Token failures and unknown or
// inactive users are both authentication errors.
func (m *Middleware) Authenticate(c *gin.Context) (*entities.User, error) {
	if actor := GetActor(c); actor != nil {
		return actor, nil
	}

	token := bearerToken(c)
	if token == "" {
		return nil, apperr.Unauthenticated("not authenticated")
	}
	claims, err := m.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, apperr.Unauthenticated("token expired")
		}
		return nil, apperr.Unauthenticated("could not validate credentials")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperr.Unauthenticated("could not validate credentials")
	}

	user, err := m.users.GetActiveByID(c.Request.Context(), userID)
	if err != nil {
		if apperr.Is(apperr.FromDB(err, "user"), apperr.KindNotFound) {
			return nil, apperr.Unauthenticated("could not validate credentials")
		}
		return nil, apperr.Internal("failed to load user", err)
	}

	c.Set(ContextKeyActor, user)
	return user, nil
}

// Authorize runs the policy for an already authenticated actor.
func (m *Middleware) Authorize(ctx context.Context, actor *entities.User, action Action) error {
	ok, err := m.policy.Can(ctx, actor, action)
	if err != nil {
		return apperr.Internal("failed to evaluate permissions", err)
	}
	if !ok {
		return apperr.Forbidden("insufficient permissions")
	}
	return nil
}

// RequireAuth rejects requests without a valid token for an active user.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := m.Authenticate(c); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// Require authenticates the request and checks the action against the
// policy.
func (m *Middleware) Require(action Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := m.Authenticate(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if err := m.Authorize(c.Request.Context(), actor, action); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	message := "internal server error"

	var appErr *apperr.Error
	switch kind {
	case apperr.KindAuthentication:
		status = http.StatusUnauthorized
		c.Header("WWW-Authenticate", "Bearer")
	case apperr.KindAuthorization:
		status = http.StatusForbidden
	default:
		log.Error("Authorization check failed", "path", c.Request.URL.Path, "error", err)
	}
	if status != http.StatusInternalServerError && errors.As(err, &appErr) {
		message = appErr.Message
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error": message,
		"code":  kind,
	})
}

// GetActor returns the authenticated user or nil.
func GetActor(c *gin.Context) *entities.User {
	if v, exists := c.Get(ContextKeyActor); exists {
		if user, ok := v.(*entities.User); ok {
			return user
		}
	}
	return nil
}

// GetUserID returns the authenticated user's ID, or 0.
func GetUserID(c *gin.Context) uint {
	if user := GetActor(c); user != nil {
		return user.ID
	}
	return 0
}
