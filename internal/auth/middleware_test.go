package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/hymnal/internal/database/dbtest"
	"github.com/mrlokans/hymnal/internal/database/users"
	"github.com/mrlokans/hymnal/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type middlewareFixture struct {
	router  *gin.Engine
	tokens  *TokenIssuer
	regular *entities.User
	staff   *entities.User
	retired *entities.User
}

func setupMiddleware(t *testing.T) *middlewareFixture {
	t.Helper()
	db := dbtest.New(t)

	create := func(name string, staff bool) *entities.User {
		u := &entities.User{Username: name, Email: name + "@example.com", HashedPassword: "x", IsActive: true, IsStaff: staff}
		require.NoError(t, db.DB.Create(u).Error)
		return u
	}
	f := &middlewareFixture{
		tokens:  NewTokenIssuer("test-secret", time.Minute),
		regular: create("regular", false),
		staff:   create("staff", true),
		retired: create("retired", true),
	}
	f.retired.MarkDeleted(time.Now())
	require.NoError(t, db.DB.Save(f.retired).Error)

	mw := NewMiddleware(f.tokens, users.NewRepository(db.DB), FlagPolicy{})
	f.router = gin.New()
	f.router.GET("/me", mw.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	f.router.PUT("/hymns", mw.Require(ActionUpdateHymn), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": GetActor(c).Username})
	})
	return f
}

func (f *middlewareFixture) do(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func (f *middlewareFixture) token(t *testing.T, u *entities.User) string {
	t.Helper()
	token, _, err := f.tokens.Issue(u)
	require.NoError(t, err)
	return token
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestMiddleware_MissingToken(t *testing.T) {
	f := setupMiddleware(t)

	rr := f.do(t, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "authentication_error", decodeBody(t, rr)["code"])
}

func TestMiddleware_InvalidToken(t *testing.T) {
	f := setupMiddleware(t)

	rr := f.do(t, http.MethodGet, "/me", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	forged, _, err := NewTokenIssuer("other-secret", time.Minute).Issue(f.staff)
	require.NoError(t, err)
	rr = f.do(t, http.MethodPut, "/hymns", forged)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMiddleware_NonBearerScheme(t *testing.T) {
	f := setupMiddleware(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic "+f.token(t, f.regular))
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMiddleware_InactiveUser(t *testing.T) {
	f := setupMiddleware(t)

	rr := f.do(t, http.MethodGet, "/me", f.token(t, f.retired))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMiddleware_Authenticated(t *testing.T) {
	f := setupMiddleware(t)

	rr := f.do(t, http.MethodGet, "/me", f.token(t, f.regular))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(f.regular.ID), decodeBody(t, rr)["user_id"])
}

func TestMiddleware_Require(t *testing.T) {
	f := setupMiddleware(t)

	rr := f.do(t, http.MethodPut, "/hymns", f.token(t, f.regular))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, rr.Header().Get("WWW-Authenticate"))
	body := decodeBody(t, rr)
	assert.Equal(t, "authorization_error", body["code"])
	assert.Equal(t, "insufficient permissions", body["error"])

	rr = f.do(t, http.MethodPut, "/hymns", f.token(t, f.staff))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "staff", decodeBody(t, rr)["username"])
}
