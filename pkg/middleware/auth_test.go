package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/exa-people-search/pkg/jwt"
)

func newRouter(v TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewAuthMiddleware(v).RequireAuth())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, GetSubject(c)+"|"+GetScope(c))
	})
	return r
}

func do(r *gin.Engine, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set(AuthHeaderKey, header)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthDisabled(t *testing.T) {
	w := do(newRouter(nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "|", w.Body.String())
}

func TestRequireAuth(t *testing.T) {
	m, err := jwt.NewManager("secret", "", time.Minute)
	require.NoError(t, err)
	r := newRouter(m)

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer not-a-jwt").Code)

	token, err := m.GenerateToken("cron", "people-search:run")
	require.NoError(t, err)
	w := do(r, BearerPrefix+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cron|people-search:run", w.Body.String())
}
