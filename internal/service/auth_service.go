package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/validation"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

const (
	msgInvalidEmail     = "Please provide a valid email"
	msgPasswordLength   = "Password must be at least 6 characters"
	msgPasswordRequired = "Password is required"
	minPasswordLength   = 6

	// Unknown emails are compared against this so both login failures cost one bcrypt.
	dummyPassword = "helpdesk-no-such-user"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	TokenManager *auth.TokenManager
	BcryptCost   int
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   deps.TokenManager,
		bcryptCost: deps.BcryptCost,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Signup registers a new admin account and returns a session token for it.
func (s *AuthService) Signup(ctx context.Context, payload map[string]any) (domain.SessionToken, error) {
	email, password, err := credentialsFrom(payload,
		validation.For("email", validation.Required(msgInvalidEmail), validation.String(msgInvalidEmail), validation.Email(msgInvalidEmail)),
		validation.For("password", validation.Required(msgPasswordLength), validation.String(msgPasswordLength), validation.MinLength(minPasswordLength, msgPasswordLength)),
	)
	if err != nil {
		return domain.SessionToken{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return domain.SessionToken{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.SessionToken{}, apperrors.NewConflict("email already registered", []validation.FieldError{
				{Field: "email", Message: "email already registered"},
			})
		}
		return domain.SessionToken{}, apperrors.NewStoreRejected(err)
	}

	identity := domain.Identity{ID: user.ID, Email: user.Email}
	token, err := s.tokenMgr.GenerateToken(identity)
	if err != nil {
		return domain.SessionToken{}, apperrors.NewInternalError(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventUserRegistered,
		SubjectID: user.ID,
		Actor:     events.ActorFrom(identity),
	})
	return token, nil
}

// Login authenticates an admin. Unknown emails and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, payload map[string]any) (domain.SessionToken, error) {
	email, password, err := credentialsFrom(payload,
		validation.For("email", validation.Required(msgInvalidEmail), validation.String(msgInvalidEmail), validation.Email(msgInvalidEmail)),
		validation.For("password", validation.Required(msgPasswordRequired), validation.String(msgPasswordRequired)),
	)
	if err != nil {
		return domain.SessionToken{}, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.compareDummy(password)
			return domain.SessionToken{}, apperrors.NewInvalidCredentials()
		}
		return domain.SessionToken{}, apperrors.NewStoreError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return domain.SessionToken{}, apperrors.NewInvalidCredentials()
	}

	token, err := s.tokenMgr.GenerateToken(domain.Identity{ID: user.ID, Email: user.Email})
	if err != nil {
		return domain.SessionToken{}, apperrors.NewInternalError(err)
	}
	return token, nil
}

func (s *AuthService) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPassword(dummyPassword, s.bcryptCost)
		if err != nil {
			s.logger.Warn("dummy hash unavailable", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	_ = auth.ComparePassword(s.dummyHash, password)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// credentialsFrom normalizes the email before running rules so the format
// check sees the stored form.
func credentialsFrom(payload map[string]any, fields ...validation.Field) (string, string, error) {
	normalized := make(map[string]any, len(payload))
	for k, v := range payload {
		normalized[k] = v
	}
	if email, ok := normalized["email"].(string); ok {
		normalized["email"] = validation.NormalizeEmail(email)
	}

	if errs := validation.Validate(normalized, fields...); len(errs) > 0 {
		return "", "", apperrors.NewValidationError("validation failed", errs)
	}
	email, _ := normalized["email"].(string)
	password, _ := normalized["password"].(string)
	return email, password, nil
}
