package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(jwt.Middleware(secret))
	r.POST("/pause", func(c *gin.Context) {
		claims, _ := jwt.GetClaims(c)
		c.String(http.StatusOK, claims.Sub)
	})
	return r
}

func TestMiddleware_AcceptsIssuedToken(t *testing.T) {
	token, err := jwt.Issue(secret, "operator", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/pause", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "operator", w.Body.String())
}

func TestMiddleware_Rejects(t *testing.T) {
	expired, err := jwt.Issue(secret, "operator", -time.Minute)
	require.NoError(t, err)
	foreign, err := jwt.Issue("other-secret", "operator", time.Minute)
	require.NoError(t, err)

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"expired":        "Bearer " + expired,
		"wrong secret":   "Bearer " + foreign,
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/pause", http.NoBody)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			newRouter().ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
