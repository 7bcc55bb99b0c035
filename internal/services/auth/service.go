package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/brettonwoods/internal/dependencies/clock"
	"github.com/mcoot/brettonwoods/internal/model"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 32
	minPasswordLength = 6
)

// Session represents an authenticated session
type Session struct {
	Token     string
	User      model.User
	CreatedAt time.Time
	ExpiresAt time.Time
}

// RolePolicy decides the role a newly registered user starts with
type RolePolicy func(username string) model.Role

// SuperadminBootstrap grants the superadmin role to whoever registers the
// configured username. Usernames are unique, so that is the first and only
// registration under it. An empty name disables the bootstrap.
func SuperadminBootstrap(name string) RolePolicy {
	return func(username string) model.Role {
		if name != "" && strings.EqualFold(username, name) {
			return model.RoleSuperadmin
		}
		return model.RolePlayer
	}
}

// Service is the identity provider: users, credentials and sessions.
// Users live in memory and are persisted through the registry's snapshot.
type Service struct {
	clock clock.Clock

	mu       sync.RWMutex
	users    map[string]*model.User // keyed by lowercased username
	sessions map[string]*Session

	sessionDuration time.Duration
	rolePolicy      RolePolicy
	cost            int
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration    time.Duration
	SuperadminUsername string
	// BcryptCost defaults to bcrypt.DefaultCost; tests lower it
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
		BcryptCost:      bcrypt.DefaultCost,
	}
}

// New creates a new AuthService
func New(clock clock.Clock, cfg Config) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		clock:           clock,
		users:           make(map[string]*model.User),
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
		rolePolicy:      SuperadminBootstrap(cfg.SuperadminUsername),
		cost:            cfg.BcryptCost,
	}
}

func key(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ResolveUser looks up a user by username
func (s *Service) ResolveUser(username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[key(username)]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

// VerifyCredential checks a raw password against a bcrypt digest
func (s *Service) VerifyCredential(raw, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(raw)) == nil
}

// IssuePlayerID returns a new unique player id
func (s *Service) IssuePlayerID() model.PlayerID {
	return model.PlayerID(uuid.NewString())
}

// Register creates a user and a session for it
func (s *Service) Register(username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return nil, model.ErrInvalidUsername
	}
	if len(password) < minPasswordLength {
		return nil, model.ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		PlayerID:     s.IssuePlayerID(),
		Role:         s.rolePolicy(username),
		CreatedAt:    s.clock.Now(),
	}

	s.mu.Lock()
	if _, exists := s.users[key(username)]; exists {
		s.mu.Unlock()
		return nil, model.ErrUsernameTaken
	}
	s.users[key(username)] = user
	s.mu.Unlock()

	return s.createSession(*user), nil
}

// Login authenticates a user and creates a session
func (s *Service) Login(username, password string) (*Session, error) {
	user, err := s.ResolveUser(username)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}
	if !s.VerifyCredential(password, user.PasswordHash) {
		return nil, model.ErrInvalidCredentials
	}
	return s.createSession(*user), nil
}

// ValidateSession checks a session token and returns the session with the
// user's current record. Sessions of removed users are invalid.
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	var user *model.User
	if ok {
		user = s.users[key(session.User.Username)]
	}
	s.mu.RUnlock()

	if !ok || user == nil {
		return nil, model.ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.InvalidateSession(token)
		return nil, model.ErrInvalidSession
	}

	current := *session
	current.User = *user
	return &current, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Users returns every user ordered by creation time
func (s *Service) Users() []model.User {
	s.mu.RLock()
	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	s.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Username < users[j].Username
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users
}

// Restore replaces the user set, typically from persisted state. Existing
// sessions are dropped.
func (s *Service) Restore(users []model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]*model.User, len(users))
	for i := range users {
		u := users[i]
		if !u.Role.IsValid() {
			u.Role = model.RolePlayer
		}
		s.users[key(u.Username)] = &u
	}
	s.sessions = make(map[string]*Session)
}

// ClearNonAdmins removes every user without the superadmin role along with
// their sessions, returning how many were removed
func (s *Service) ClearNonAdmins() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, u := range s.users {
		if u.Role != model.RoleSuperadmin {
			delete(s.users, k)
			removed++
		}
	}
	for token, session := range s.sessions {
		if _, ok := s.users[key(session.User.Username)]; !ok {
			delete(s.sessions, token)
		}
	}
	return removed
}

// createSession creates a new session for a user
func (s *Service) createSession(user model.User) *Session {
	token := s.generateID("sess_")
	now := s.clock.Now()

	session := &Session{
		Token:     token,
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.mu.Unlock()

	return session
}

// generateID generates a random ID with a prefix
func (s *Service) generateID(prefix string) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}

// DefaultJanitorInterval is how often RunJanitor sweeps expired sessions
const DefaultJanitorInterval = 10 * time.Minute

// CleanExpiredSessions removes expired sessions and returns how many were
// dropped
func (s *Service) CleanExpiredSessions() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// SessionCount returns how many sessions are held, expired or not
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
// Tokens that are never presented again would otherwise stay forever.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.CleanExpiredSessions(); n > 0 {
				logger.Debug("expired sessions removed", slog.Int("count", n))
			}
		}
	}
}
