package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kasuboski/openai-gateway/internal/keystore"
)

func authRouter(keys keystore.Authorizer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(keys))
	r.GET("/protected", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doAuth(r *gin.Engine, header string) int {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuth_MissingHeader(t *testing.T) {
	r := authRouter(keystore.NewStatic([]string{"sk-valid"}))
	assert.Equal(t, http.StatusUnauthorized, doAuth(r, ""))
}

func TestAuth_BadFormat(t *testing.T) {
	r := authRouter(keystore.NewStatic([]string{"sk-valid"}))

	assert.Equal(t, http.StatusUnauthorized, doAuth(r, "sk-valid"))
	assert.Equal(t, http.StatusUnauthorized, doAuth(r, "Basic sk-valid"))
	assert.Equal(t, http.StatusUnauthorized, doAuth(r, "Bearer "))
}

func TestAuth_UnknownKey(t *testing.T) {
	r := authRouter(keystore.NewStatic([]string{"sk-valid"}))
	assert.Equal(t, http.StatusUnauthorized, doAuth(r, "Bearer sk-other"))
}

func TestAuth_KnownKey(t *testing.T) {
	r := authRouter(keystore.NewStatic([]string{"sk-valid"}))
	assert.Equal(t, http.StatusOK, doAuth(r, "Bearer sk-valid"))
}
