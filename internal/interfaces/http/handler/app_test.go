package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	appchem "github.com/hazchem/backend/internal/application/chemical"
	appid "github.com/hazchem/backend/internal/application/identity"
	appinv "github.com/hazchem/backend/internal/application/inventory"
	appmov "github.com/hazchem/backend/internal/application/movement"
	"github.com/hazchem/backend/internal/infrastructure/auth"
	"github.com/hazchem/backend/internal/infrastructure/config"
	"github.com/hazchem/backend/internal/infrastructure/metrics"
	"github.com/hazchem/backend/internal/infrastructure/persistence"
	"github.com/hazchem/backend/internal/interfaces/http/handler"
	"github.com/hazchem/backend/internal/interfaces/http/router"
	"github.com/hazchem/backend/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type gormPinger struct {
	db *gorm.DB
}

func (p gormPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// testApp is the full HTTP stack over an in-memory database
type testApp struct {
	t      *testing.T
	engine *gin.Engine
	db     *gorm.DB
	token  string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewSQLiteDB(t, persistence.Models()...)
	repos := persistence.NewRepositories(db)
	scope := persistence.NewGormTransactionScope(db)
	registry := metrics.New()
	reconciler := appinv.NewReconciler(registry)
	stock := appinv.NewService(repos, scope, reconciler)
	persons := persistence.NewGormPersonRepository(db)

	tokens := auth.NewJWTService(config.JWTConfig{
		Secret:     "handler-test-secret-with-enough-length",
		Expiration: time.Hour,
		Issuer:     "hazchem-test",
	})
	authService := appid.NewAuthService(persons, persistence.NewGormRegisterRecordRepository(db),
		tokens, auth.NewInMemoryTokenBlacklist(), appid.AuthServiceConfig{VerifyPassword: true})

	engine, stop := router.NewEngine(router.EngineConfig{
		Logger:        zap.NewNop(),
		Metrics:       registry,
		Authenticator: authService,
		Database:      gormPinger{db: db},
	},
		handler.NewAuthHandler(authService),
		handler.NewPersonHandler(appid.NewPersonService(persons)),
		handler.NewChemicalHandler(appchem.NewService(repos, scope)),
		handler.NewInventoryHandler(stock),
		handler.NewStorageHandler(appmov.NewStorageService(repos, scope, reconciler, nil)),
		handler.NewOutboundHandler(appmov.NewOutboundService(repos, scope, reconciler, stock, nil)),
		handler.NewUsageHandler(appmov.NewUsageService(repos, scope, reconciler, nil)),
	)
	t.Cleanup(stop)

	app := &testApp{t: t, engine: engine, db: db}
	app.token = app.signUp("keeper@example.com", "库管员", "secret123")
	return app
}

// signUp registers an account and returns a token for it
func (a *testApp) signUp(email, name, password string) string {
	a.t.Helper()

	w := a.do(http.MethodPost, "/api/v1/user/register", gin.H{
		"email": email, "name": name, "password": password,
	})
	testutil.RequireOK(a.t, w)

	w = a.do(http.MethodPost, "/api/v1/user/login", gin.H{"email": email, "password": password})
	testutil.RequireOK(a.t, w)
	result := testutil.DecodeData[struct {
		Token string `json:"token"`
	}](a.t, w)
	require.NotEmpty(a.t, result.Token)
	return result.Token
}

// do sends an unauthenticated request
func (a *testApp) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	return testutil.Perform(a.t, a.engine, method, path, body, headers...)
}

// call sends a request with the app's bearer token
func (a *testApp) call(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	headers = append(headers, "Authorization", "Bearer "+a.token)
	return testutil.Perform(a.t, a.engine, method, path, body, headers...)
}

// createChemical adds a chemical and returns its ID
func (a *testApp) createChemical(name string, threshold string) string {
	a.t.Helper()

	w := a.call(http.MethodPost, "/api/v1/chemical/add", gin.H{
		"name":             name,
		"category":         "酸类",
		"dangerLevel":      "高",
		"warningThreshold": threshold,
		"storageLimit":     "1000",
		"unit":             "kg",
	})
	testutil.RequireOK(a.t, w)
	return testutil.DecodeData[struct {
		ID string `json:"id"`
	}](a.t, w).ID
}
