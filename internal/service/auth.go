package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/tastybytes/backend/internal/logging"
	"github.com/pageza/tastybytes/backend/internal/models"
	"github.com/pageza/tastybytes/backend/internal/store"
	"github.com/pageza/tastybytes/backend/internal/types"
)

const (
	accountKeyPrefix = "accounts/"

	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 6
	// TokenTTL is how long an issued API token stays valid.
	TokenTTL = 24 * time.Hour

	defaultGoogleName = "Google User"
)

// AccountKey returns the store key of the account registered with email.
func AccountKey(email string) string {
	return accountKeyPrefix + normalizeEmail(email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuthService is the identity provider: it keeps accounts in the store and
// issues API tokens.
type AuthService struct {
	store     store.Store
	jwtSecret []byte
	google    GoogleVerifier
	clock     Clock
	ids       IDGenerator
	logger    *zap.Logger

	// serializes account creation
	mu sync.Mutex
}

// NewAuthService creates an AuthService. google may be nil, in which case
// Google sign-in is rejected.
func NewAuthService(s store.Store, jwtSecret string, google GoogleVerifier, clock Clock, ids IDGenerator, logger *zap.Logger) *AuthService {
	logger = logging.OrNop(logger)
	return &AuthService{
		store:     s,
		jwtSecret: []byte(jwtSecret),
		google:    google,
		clock:     clock,
		ids:       ids,
		logger:    logger.Named("auth"),
	}
}

// Register creates a member account with a password.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.createPasswordAccount(ctx, "register", name, email, password, models.RoleMember)
}

// Provision creates an account with an explicit role. It is the only way
// administrator accounts come into existence.
func (s *AuthService) Provision(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	if role != models.RoleMember && role != models.RoleAdmin {
		return nil, &ValidationError{Fields: []FieldError{{Field: "role", Message: "must be member or admin"}}}
	}
	return s.createPasswordAccount(ctx, "provision", name, email, password, role)
}

func (s *AuthService) createPasswordAccount(ctx context.Context, op, name, email, password string, role models.Role) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	verr := &ValidationError{}
	if name == "" {
		verr.add("name", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		verr.add("email", "must be a valid email address")
	}
	if len(password) < MinPasswordLength {
		verr.add("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.loadAccount(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &AuthError{Op: op, Message: msgAccountExists, Conflict: true}
	}

	account := &models.Account{
		User: models.User{
			ID:    s.ids.NewID(),
			Name:  name,
			Email: email,
			Role:  role,
		},
		PasswordHash: string(hash),
		Provider:     models.ProviderPassword,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.saveAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("Account created",
		zap.String("op", op),
		zap.String("user_id", account.User.ID),
		zap.String("role", string(role)))
	user := account.User
	return &user, nil
}

// Login checks an email and password pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	account, err := s.loadAccount(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, authError("login", msgBadCredentials, nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, authError("login", msgBadCredentials, err)
	}

	user := account.User
	return &user, nil
}

// LoginWithGoogle verifies a Google ID token and signs in the matching
// account, creating a member account on first use.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*models.User, error) {
	if s.google == nil {
		return nil, authError("google", "Google sign-in is not available", nil)
	}

	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		s.logger.Warn("Google token rejected", zap.Error(err))
		return nil, authError("google", msgGoogleFailed, err)
	}

	email := normalizeEmail(identity.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.loadAccount(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		name := strings.TrimSpace(identity.Name)
		if name == "" {
			name = defaultGoogleName
		}
		account = &models.Account{
			User: models.User{
				ID:    s.ids.NewID(),
				Name:  name,
				Email: email,
				Role:  models.RoleMember,
			},
			Provider:  models.ProviderGoogle,
			CreatedAt: s.clock.Now(),
		}
		if err := s.saveAccount(ctx, account); err != nil {
			return nil, err
		}
		s.logger.Info("Account created", zap.String("op", "google"), zap.String("user_id", account.User.ID))
	}

	user := account.User
	return &user, nil
}

// GetUserByEmail returns the user registered with email.
func (s *AuthService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	account, err := s.loadAccount(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.New("user not found")
	}
	user := account.User
	return &user, nil
}

// GenerateToken issues an HS256 token for user.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := s.clock.Now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken parses and verifies a token issued by GenerateToken.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) loadAccount(ctx context.Context, email string) (*models.Account, error) {
	raw, ok, err := s.store.Get(ctx, accountKeyPrefix+email)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var account models.Account
	if err := json.Unmarshal([]byte(raw), &account); err != nil {
		return nil, fmt.Errorf("corrupt account record for %s: %w", email, err)
	}
	return &account, nil
}

func (s *AuthService) saveAccount(ctx context.Context, account *models.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, accountKeyPrefix+account.User.Email, string(data)); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}
