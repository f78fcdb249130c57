package identity

import (
	"strings"
	"testing"
	"time"

	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

func TestValidateProfile(t *testing.T) {
	valid := Profile{Name: "张三", Gender: "男", Phone: "13800138000", Email: "zs@example.com"}

	tests := []struct {
		name    string
		mutate  func(p *Profile)
		wantErr string
	}{
		{"valid", func(p *Profile) {}, ""},
		{"empty name", func(p *Profile) { p.Name = " " }, "姓名不能为空"},
		{"long name", func(p *Profile) { p.Name = strings.Repeat("张", 51) }, "1-50"},
		{"bad gender", func(p *Profile) { p.Gender = "unknown" }, "性别"},
		{"other gender", func(p *Profile) { p.Gender = "其他" }, ""},
		{"bad phone", func(p *Profile) { p.Phone = "12345" }, "手机号码"},
		{"phone second digit zero", func(p *Profile) { p.Phone = "10800138000" }, "手机号码"},
		{"bad email", func(p *Profile) { p.Email = "nope@" }, "邮箱"},
		{"long department", func(p *Profile) { p.Department = strings.Repeat("部", 51) }, "部门"},
		{"long position", func(p *Profile) { p.Position = strings.Repeat("职", 51) }, "职位"},
		{"optional fields empty", func(p *Profile) { p.Gender, p.Phone, p.Email = "", "", "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := ValidateProfile(p)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPerson_SetPassword(t *testing.T) {
	p, err := NewPerson(Profile{Name: "李四", Email: "LS@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ls@example.com", p.EmailAddress())

	t.Run("hashes plain passwords", func(t *testing.T) {
		require.NoError(t, p.SetPassword("secret123"))

		assert.True(t, IsBcryptHash(p.PasswordHash))
		assert.True(t, p.VerifyPassword("secret123"))
		assert.False(t, p.VerifyPassword("wrong"))
	})

	t.Run("keeps existing hashes", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("other"), bcrypt.MinCost)
		require.NoError(t, err)

		require.NoError(t, p.SetPassword(string(hash)))
		assert.Equal(t, string(hash), p.PasswordHash)
		assert.True(t, p.VerifyPassword("other"))
	})

	t.Run("rejects empty", func(t *testing.T) {
		assert.Error(t, p.SetPassword("   "))
	})
}

func TestPerson_StatusAndLogin(t *testing.T) {
	p, err := NewPerson(Profile{Name: "王五"})
	require.NoError(t, err)
	assert.True(t, p.IsActive())
	assert.Nil(t, p.Email)

	p.Status = StatusDisabled
	assert.False(t, p.IsActive())

	now := time.Now()
	p.RecordLogin(now)
	require.NotNil(t, p.LastLoginAt)
	assert.Equal(t, now, *p.LastLoginAt)
}

func TestNewRegisterRecord_DefaultsChannel(t *testing.T) {
	r := NewRegisterRecord("id", "127.0.0.1", "")
	assert.Equal(t, "web", r.Channel)
}
