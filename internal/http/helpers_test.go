package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/hymnal/internal/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
	useJSONFieldNames()
}

func newTestContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestParseIDParam_Valid(t *testing.T) {
	c, w := newTestContext("/")
	c.Params = gin.Params{{Key: "id", Value: "123"}}

	id, ok := parseIDParam(c, "id")

	assert.True(t, ok)
	assert.Equal(t, uint(123), id)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseIDParam_Invalid(t *testing.T) {
	for _, value := range []string{"abc", "-1", "0"} {
		t.Run(value, func(t *testing.T) {
			c, w := newTestContext("/")
			c.Params = gin.Params{{Key: "id", Value: value}}

			id, ok := parseIDParam(c, "id")

			assert.False(t, ok)
			assert.Equal(t, uint(0), id)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Contains(t, decodeError(t, w).Details, "id")
		})
	}
}

func TestParsePagination(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, _ := newTestContext("/")
		skip, limit, ok := parsePagination(c, 100)
		require.True(t, ok)
		assert.Equal(t, 0, skip)
		assert.Equal(t, 100, limit)
	})

	t.Run("explicit", func(t *testing.T) {
		c, _ := newTestContext("/?skip=20&limit=5")
		skip, limit, ok := parsePagination(c, 100)
		require.True(t, ok)
		assert.Equal(t, 20, skip)
		assert.Equal(t, 5, limit)
	})

	t.Run("rejects bad values", func(t *testing.T) {
		for _, q := range []string{"skip=-1", "limit=abc", "limit=5000"} {
			c, w := newTestContext("/?" + q)
			_, _, ok := parsePagination(c, 100)
			assert.False(t, ok, q)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, q)
		}
	})
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperr.ValidationField("title", "must not be empty"), http.StatusUnprocessableEntity},
		{"not found", apperr.NotFound("hymn"), http.StatusNotFound},
		{"conflict", apperr.Conflict("hymn book already exists"), http.StatusConflict},
		{"authentication", apperr.Unauthenticated("not authenticated"), http.StatusUnauthorized},
		{"authorization", apperr.Forbidden("insufficient permissions"), http.StatusForbidden},
		{"plain error", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext("/")
			respondError(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	t.Run("validation details", func(t *testing.T) {
		c, w := newTestContext("/")
		respondError(c, apperr.ValidationField("title", "must not be empty"))

		resp := decodeError(t, w)
		assert.Equal(t, apperr.KindValidation, resp.Code)
		assert.Equal(t, "must not be empty", resp.Details["title"])
	})

	t.Run("authentication challenge", func(t *testing.T) {
		c, w := newTestContext("/")
		respondError(c, apperr.Unauthenticated("token expired"))
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	})

	t.Run("internal errors are not leaked", func(t *testing.T) {
		c, w := newTestContext("/")
		respondError(c, errors.New("disk on fire"))
		assert.NotContains(t, w.Body.String(), "disk on fire")
		assert.Equal(t, "internal server error", decodeError(t, w).Error)
	})
}

type bindTarget struct {
	Title  string `json:"title" binding:"required,max=5"`
	Number int    `json:"number" binding:"gt=0"`
}

func TestBindJSON(t *testing.T) {
	bind := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var target bindTarget
		bindJSON(c, &target)
		return w
	}

	t.Run("constraint violations are 422 with json field names", func(t *testing.T) {
		w := bind(`{"title":"much too long","number":0}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		resp := decodeError(t, w)
		assert.Contains(t, resp.Details, "title")
		assert.Contains(t, resp.Details, "number")
	})

	t.Run("malformed JSON is 400", func(t *testing.T) {
		w := bind(`{"title":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong type is 400", func(t *testing.T) {
		w := bind(`{"title":"ok","number":"seven"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("valid body", func(t *testing.T) {
		w := bind(`{"title":"ok","number":7}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
