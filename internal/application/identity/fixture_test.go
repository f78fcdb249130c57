package identity

import (
	"context"
	"testing"
	"time"

	"github.com/hazchem/backend/internal/domain/identity"
	"github.com/hazchem/backend/internal/infrastructure/auth"
	"github.com/hazchem/backend/internal/infrastructure/config"
	"github.com/hazchem/backend/internal/infrastructure/persistence"
	"github.com/hazchem/backend/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	persons   *persistence.GormPersonRepository
	blacklist *auth.InMemoryTokenBlacklist
	auth      *AuthService
	people    *PersonService
}

func newFixture(t *testing.T, verifyPassword bool) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t, persistence.Models()...)
	persons := persistence.NewGormPersonRepository(db)
	blacklist := auth.NewInMemoryTokenBlacklist()
	tokens := auth.NewJWTService(config.JWTConfig{
		Secret:     "identity-test-secret-of-32-characters",
		Expiration: time.Hour,
		Issuer:     "hazchem-test",
	})
	return &fixture{
		db:        db,
		persons:   persons,
		blacklist: blacklist,
		auth: NewAuthService(persons, persistence.NewGormRegisterRecordRepository(db), tokens, blacklist,
			AuthServiceConfig{VerifyPassword: verifyPassword}),
		people: NewPersonService(persons),
	}
}

func (f *fixture) account(t *testing.T, name, email, password string, mutate ...func(p *identity.Person)) *identity.Person {
	t.Helper()
	p, err := identity.NewPerson(identity.Profile{Name: name, Email: email})
	require.NoError(t, err)
	require.NoError(t, p.SetPassword(password))
	for _, m := range mutate {
		m(p)
	}
	require.NoError(t, f.persons.Create(context.Background(), p))
	return p
}

func intPtr(v int) *int { return &v }
