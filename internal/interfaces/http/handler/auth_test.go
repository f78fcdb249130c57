package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hazchem/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_ProtectedRoutesNeedToken(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/api/v1/chemical/list", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, http.StatusUnauthorized, testutil.DecodeEnvelope(t, w).Code)

	w = app.do(http.MethodGet, "/api/v1/chemical/list", nil, "Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	testutil.RequireOK(t, app.call(http.MethodGet, "/api/v1/chemical/list", nil))
}

func TestAuth_Register(t *testing.T) {
	app := newTestApp(t)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		w := app.do(http.MethodPost, "/api/v1/user/register", gin.H{
			"email": "keeper@example.com", "name": "另一个", "password": "secret123",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "该邮箱已注册", testutil.DecodeEnvelope(t, w).Message)
	})

	t.Run("validation details", func(t *testing.T) {
		w := app.do(http.MethodPost, "/api/v1/user/register", gin.H{
			"email": "not-an-email", "name": "x", "password": "123",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)

		details := testutil.DecodeData[[]struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		}](t, w)
		fields := make([]string, 0, len(details))
		for _, d := range details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"email", "password"}, fields)
	})

	t.Run("password is never returned", func(t *testing.T) {
		w := app.do(http.MethodPost, "/api/v1/user/register", gin.H{
			"email": "new@example.com", "name": "新人", "password": "secret123",
		})
		testutil.RequireOK(t, w)
		assert.NotContains(t, w.Body.String(), "secret123")
		assert.NotContains(t, w.Body.String(), "password")
	})
}

func TestAuth_Login(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name    string
		body    gin.H
		status  int
		message string
	}{
		{"wrong password", gin.H{"email": "keeper@example.com", "password": "wrong-one"}, http.StatusUnauthorized, "密码错误"},
		{"unknown account", gin.H{"email": "nobody@example.com", "password": "secret123"}, http.StatusUnauthorized, "账户不存在"},
		{"user type mismatch", gin.H{"email": "keeper@example.com", "password": "secret123", "userType": 1}, http.StatusUnauthorized, "账户类型不匹配"},
		{"missing password", gin.H{"email": "keeper@example.com"}, http.StatusBadRequest, "密码不能为空"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(http.MethodPost, "/api/v1/user/login", tt.body)
			assert.Equal(t, tt.status, w.Code)
			env := testutil.DecodeEnvelope(t, w)
			assert.Equal(t, tt.status, env.Code)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestAuth_CheckTokenAndLogout(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/api/v1/user/check-token?token="+app.token, nil)
	testutil.RequireOK(t, w)
	user := testutil.DecodeData[struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}](t, w)
	assert.Equal(t, "keeper@example.com", user.Email)
	assert.Equal(t, "库管员", user.Name)

	w = app.do(http.MethodGet, "/api/v1/user/check-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	testutil.RequireOK(t, app.call(http.MethodPost, "/api/v1/user/logout", nil))

	w = app.call(http.MethodGet, "/api/v1/chemical/list", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = app.do(http.MethodGet, "/api/v1/user/check-token?token="+app.token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
