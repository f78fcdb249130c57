package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type personForm struct {
	Name  string `json:"name" binding:"required,max=5"`
	Phone string `json:"phone" binding:"omitempty,mobile"`
	Email string `json:"email" binding:"omitempty,email"`
}

func bindPerson(t *testing.T, body string) ([]string, error) {
	t.Helper()
	SetupValidator()

	var bindErr error
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req personForm
		bindErr = c.ShouldBindJSON(&req)
		c.Status(http.StatusOK)
	})
	req, err := http.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(httptest.NewRecorder(), req)

	var fields []string
	for _, d := range ValidationDetails(bindErr) {
		fields = append(fields, d.Field)
	}
	return fields, bindErr
}

func TestMobileValidator(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"13800138000", true},
		{"19912345678", true},
		{"10800138000", false},
		{"1380013800", false},
		{"23800138000", false},
		{"1380013800a", false},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			fields, err := bindPerson(t, `{"name":"张三","phone":"`+tt.phone+`"}`)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, []string{"phone"}, fields)
		})
	}
}

func TestValidationDetails(t *testing.T) {
	fields, err := bindPerson(t, `{"name":"","email":"not-an-email"}`)
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"name", "email"}, fields)

	assert.Nil(t, ValidationDetails(nil))
	_, err = bindPerson(t, `{broken`)
	assert.Error(t, err)
	assert.Nil(t, ValidationDetails(err))
}
