package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hazchem/backend/internal/domain/identity"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/hazchem/backend/internal/infrastructure/auth"
	"github.com/hazchem/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	// VerifyPassword requires and checks the password on login. Turning it
	// off is only meant for local development.
	VerifyPassword bool
}

// AuthService handles login, registration and token checks
type AuthService struct {
	persons   identity.PersonRepository
	registers identity.RegisterRecordRepository
	tokens    *auth.JWTService
	blacklist auth.TokenBlacklist
	config    AuthServiceConfig
	now       func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	persons identity.PersonRepository,
	registers identity.RegisterRecordRepository,
	tokens *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
) *AuthService {
	return &AuthService{
		persons:   persons,
		registers: registers,
		tokens:    tokens,
		blacklist: blacklist,
		config:    config,
		now:       time.Now,
	}
}

// Login authenticates by email and returns a signed token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	log := logger.FromContext(ctx)
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, shared.NewValidationError("邮箱不能为空")
	}
	if s.config.VerifyPassword && req.Password == "" {
		return nil, shared.NewValidationError("密码不能为空")
	}

	person, err := s.persons.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("Login for unknown account", zap.String("email", email))
			return nil, shared.NewDomainError(shared.ErrUnauthorized.Code, "账户不存在")
		}
		return nil, err
	}
	if !person.IsActive() {
		log.Warn("Login for disabled account", zap.String("user_id", person.ID.String()))
		return nil, shared.NewDomainError(shared.ErrForbidden.Code, "账户已被禁用")
	}
	if req.UserType != nil && *req.UserType != person.UserType {
		return nil, shared.NewDomainError(shared.ErrUnauthorized.Code, "账户类型不匹配")
	}
	if s.config.VerifyPassword && !person.VerifyPassword(req.Password) {
		log.Warn("Invalid password attempt", zap.String("user_id", person.ID.String()))
		return nil, shared.NewDomainError(shared.ErrUnauthorized.Code, "密码错误")
	}

	person.RecordLogin(s.now())
	if err := s.persons.Save(ctx, person); err != nil {
		// the login itself succeeded
		log.Error("Failed to record login time", zap.Error(err))
	}

	token, err := s.tokens.Generate(auth.Subject{
		ID:       person.ID,
		Email:    person.EmailAddress(),
		UserType: person.UserType,
	})
	if err != nil {
		return nil, err
	}

	log.Info("User logged in", zap.String("user_id", person.ID.String()))
	return &LoginResult{User: person, Token: token.Value, ExpiresAt: token.ExpiresAt}, nil
}

// Register creates a regular, active account and records where the
// registration came from
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*identity.Person, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, shared.NewValidationError("邮箱不能为空")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, shared.NewValidationError("用户名不能为空")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, shared.NewValidationError("密码不能为空")
	}

	exists, err := s.persons.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "该邮箱已注册")
	}

	person, err := identity.NewPerson(identity.Profile{Name: req.Name, Email: email})
	if err != nil {
		return nil, err
	}
	if err := person.SetPassword(req.Password); err != nil {
		return nil, err
	}
	if req.UserType != nil {
		person.UserType = *req.UserType
	}
	if err := s.persons.Create(ctx, person); err != nil {
		return nil, err
	}

	record := identity.NewRegisterRecord(person.ID.String(), req.RegisterIP, req.RegisterChannel)
	if err := s.registers.Create(ctx, record); err != nil {
		logger.FromContext(ctx).Error("Failed to store register record",
			zap.String("user_id", person.ID.String()), zap.Error(err))
	}

	logger.FromContext(ctx).Info("User registered",
		zap.String("user_id", person.ID.String()),
		zap.String("channel", record.Channel))
	return person, nil
}

// Authenticate validates a token and checks it has not been revoked
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, shared.NewDomainError(shared.ErrUnauthorized.Code, "token不能为空")
	}
	claims, err := s.tokens.Validate(token)
	if err != nil {
		msg := "token无效"
		if errors.Is(err, auth.ErrExpiredToken) {
			msg = "token已过期"
		}
		return nil, shared.NewDomainError(shared.ErrUnauthorized.Code, msg)
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, shared.NewDomainError(shared.ErrUnauthorized.Code, "token已注销")
	}
	return claims, nil
}

// CheckToken returns the account a token belongs to. Tokens of deleted or
// disabled accounts are rejected.
func (s *AuthService) CheckToken(ctx context.Context, token string) (*identity.Person, error) {
	claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	id, err := claims.UserUUID()
	if err != nil {
		return nil, shared.NewDomainError(shared.ErrUnauthorized.Code, "token无效")
	}
	person, err := s.persons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.ErrUnauthorized.Code, "账户不存在")
		}
		return nil, err
	}
	if !person.IsActive() {
		return nil, shared.NewDomainError(shared.ErrForbidden.Code, "账户已被禁用")
	}
	return person, nil
}

// Logout revokes the token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("User logged out", zap.String("user_id", claims.Subject))
	return nil
}
