package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedr891/metal-rates-service/pkg/logger"
)

const _testSecret = "test-secret"

func signToken(t *testing.T, role string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"role":    role,
	})
	signed, err := token.SignedString([]byte(_testSecret))
	require.NoError(t, err)
	return signed
}

func authTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(_testSecret, logger.New("error"))

	r := gin.New()
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.POST("/admin/action", m.RequireAuth(), m.RequireAdmin(), ok)
	r.GET("/admin/stream", m.RequireStreamAuth(), m.RequireAdmin(), ok)
	return r
}

func TestRequireAuth_BearerHeader(t *testing.T) {
	r := authTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/admin/action", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "admin"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_MissingToken(t *testing.T) {
	r := authTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/admin/action", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_QueryTokenRejected(t *testing.T) {
	r := authTestRouter()

	// Токен в query принимается только SSE-маршрутом
	req := httptest.NewRequest(http.MethodPost, "/admin/action?token="+signToken(t, "admin"), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireStreamAuth_QueryTokenAccepted(t *testing.T) {
	r := authTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/admin/stream?token="+signToken(t, "admin"), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireStreamAuth_BearerHeaderStillWorks(t *testing.T) {
	r := authTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/admin/stream", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "admin"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin_NonAdminForbidden(t *testing.T) {
	r := authTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/admin/action", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "viewer"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAuth_InvalidSignature(t *testing.T) {
	r := authTestRouter()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"})
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/admin/action", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
