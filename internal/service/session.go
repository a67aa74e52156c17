package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pageza/tastybytes/backend/internal/logging"
	"github.com/pageza/tastybytes/backend/internal/models"
	"github.com/pageza/tastybytes/backend/internal/store"
)

// SessionKey is the store key holding the signed-in user.
const SessionKey = "recipeUser"

// Session is the signed-in state of one local client. The user record is
// kept in the store so it survives restarts.
type Session struct {
	store  store.Store
	auth   IdentityProvider
	logger *zap.Logger

	mu   sync.RWMutex
	user *models.User

	subs subscribers[*models.User]
}

// NewSession creates a signed-out session. Call Restore to pick up a
// previously stored user.
func NewSession(s store.Store, auth IdentityProvider, logger *zap.Logger) *Session {
	logger = logging.OrNop(logger)
	return &Session{
		store:  s,
		auth:   auth,
		logger: logger.Named("session"),
	}
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *Session) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

func (s *Session) IsAdmin() bool {
	return s.CurrentUser().IsAdmin()
}

// Restore loads the stored user. Unreadable records are removed and the
// session stays signed out.
func (s *Session) Restore(ctx context.Context) error {
	raw, ok, err := s.store.Get(ctx, SessionKey)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if !ok {
		return nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == "" {
		s.logger.Warn("Discarding unreadable session record", zap.Error(err))
		if err := s.store.Remove(ctx, SessionKey); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		return nil
	}

	s.set(&user)
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.signIn(ctx, user)
}

func (s *Session) LoginWithGoogle(ctx context.Context, idToken string) (*models.User, error) {
	user, err := s.auth.LoginWithGoogle(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.signIn(ctx, user)
}

func (s *Session) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	user, err := s.auth.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return s.signIn(ctx, user)
}

// Logout clears the session. Logging out twice is not an error.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Remove(ctx, SessionKey); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if s.CurrentUser() == nil {
		return nil
	}
	s.set(nil)
	return nil
}

// Subscribe registers fn to be called with the new user (nil when signed
// out) whenever it changes.
func (s *Session) Subscribe(fn func(*models.User)) func() {
	return s.subs.add(fn)
}

func (s *Session) signIn(ctx context.Context, user *models.User) (*models.User, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, SessionKey, string(data)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.set(user)
	s.logger.Info("Signed in", zap.String("user_id", user.ID))
	return s.CurrentUser(), nil
}

func (s *Session) set(user *models.User) {
	s.mu.Lock()
	if user != nil {
		u := *user
		user = &u
	}
	s.user = user
	s.mu.Unlock()

	s.subs.notify(s.CurrentUser())
}
