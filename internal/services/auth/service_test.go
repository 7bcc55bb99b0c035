package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/brettonwoods/internal/dependencies/mocks"
	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	cfg := DefaultConfig()
	cfg.SuperadminUsername = "admin"
	cfg.BcryptCost = bcrypt.MinCost
	s.service = New(s.clock, cfg)
}

// Register tests

func (s *ServiceSuite) TestRegisterSucceeds() {
	session, err := s.service.Register("alice", "password123")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal("alice", session.User.Username)
	s.Equal(model.RolePlayer, session.User.Role)
	s.NotEmpty(session.User.PlayerID)
	s.Equal(s.clock.Now(), session.User.CreatedAt)
}

func (s *ServiceSuite) TestRegisterHashesPassword() {
	_, _ = s.service.Register("alice", "password123")

	user, err := s.service.ResolveUser("alice")
	s.Require().NoError(err)
	s.NotEqual("password123", user.PasswordHash)
	s.True(s.service.VerifyCredential("password123", user.PasswordHash))
	s.False(s.service.VerifyCredential("wrong", user.PasswordHash))
}

func (s *ServiceSuite) TestRegisterFailsIfUsernameExists() {
	_, _ = s.service.Register("alice", "password123")

	_, err := s.service.Register("Alice", "different")
	s.ErrorIs(err, model.ErrUsernameTaken)
	s.ErrorIs(err, model.ErrConflict)
}

func (s *ServiceSuite) TestRegisterValidatesInput() {
	_, err := s.service.Register("al", "password123")
	s.ErrorIs(err, model.ErrInvalidUsername)

	_, err = s.service.Register("alice", "short")
	s.ErrorIs(err, model.ErrInvalidPassword)
	s.ErrorIs(err, model.ErrValidation)
}

func (s *ServiceSuite) TestSuperadminBootstrap() {
	session, err := s.service.Register("Admin", "password123")
	s.Require().NoError(err)
	s.Equal(model.RoleSuperadmin, session.User.Role)
}

func (s *ServiceSuite) TestBootstrapDisabledWithoutName() {
	policy := SuperadminBootstrap("")
	s.Equal(model.RolePlayer, policy("admin"))
	s.Equal(model.RolePlayer, policy(""))
}

func (s *ServiceSuite) TestIssuePlayerIDUnique() {
	seen := map[model.PlayerID]bool{}
	for i := 0; i < 100; i++ {
		id := s.service.IssuePlayerID()
		s.False(seen[id])
		seen[id] = true
	}
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	registered, _ := s.service.Register("alice", "password123")

	session, err := s.service.Login("alice", "password123")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.NotEqual(registered.Token, session.Token)
	s.Equal(registered.User.PlayerID, session.User.PlayerID)
}

func (s *ServiceSuite) TestLoginFailsWithWrongPassword() {
	_, _ = s.service.Register("alice", "password123")

	_, err := s.service.Login("alice", "wrongpassword")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginFailsWithUnknownUser() {
	_, err := s.service.Login("nobody", "password123")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

// ValidateSession tests

func (s *ServiceSuite) TestValidateSessionSucceeds() {
	session, _ := s.service.Register("alice", "password123")

	validated, err := s.service.ValidateSession(session.Token)
	s.Require().NoError(err)
	s.Equal(session.Token, validated.Token)
	s.Equal("alice", validated.User.Username)
}

func (s *ServiceSuite) TestValidateSessionFailsWithInvalidToken() {
	_, err := s.service.ValidateSession("invalid_token")
	s.ErrorIs(err, model.ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateSessionFailsWhenExpired() {
	session, _ := s.service.Register("alice", "password123")

	s.clock.Advance(25 * time.Hour)

	_, err := s.service.ValidateSession(session.Token)
	s.ErrorIs(err, model.ErrInvalidSession)
}

func (s *ServiceSuite) TestInvalidateSessionRemovesSession() {
	session, _ := s.service.Register("alice", "password123")

	s.service.InvalidateSession(session.Token)

	_, err := s.service.ValidateSession(session.Token)
	s.ErrorIs(err, model.ErrInvalidSession)
}

func (s *ServiceSuite) TestInvalidateSessionNoopForUnknownToken() {
	s.service.InvalidateSession("unknown_token")
}

func (s *ServiceSuite) TestCleanExpiredSessionsRemovesExpired() {
	session1, _ := s.service.Register("alice", "password123")

	s.clock.Advance(25 * time.Hour)

	session2, _ := s.service.Register("bob", "password123")

	s.Equal(1, s.service.CleanExpiredSessions())
	s.Equal(1, s.service.SessionCount())

	_, err := s.service.ValidateSession(session1.Token)
	s.ErrorIs(err, model.ErrInvalidSession)

	_, err = s.service.ValidateSession(session2.Token)
	s.NoError(err)
}

func (s *ServiceSuite) TestJanitorSweepsUntilCancelled() {
	_, _ = s.service.Register("alice", "password123")
	_, _ = s.service.Register("bob", "password123")
	s.clock.Advance(25 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.service.RunJanitor(ctx, 5*time.Millisecond, testutil.NopLogger())
	}()

	s.Eventually(func() bool { return s.service.SessionCount() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	s.Eventually(func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

// Persistence and admin tests

func (s *ServiceSuite) TestUsersOrderedByCreation() {
	_, _ = s.service.Register("zed", "password123")
	s.clock.Advance(time.Minute)
	_, _ = s.service.Register("amy", "password123")

	users := s.service.Users()
	s.Require().Len(users, 2)
	s.Equal("zed", users[0].Username)
	s.Equal("amy", users[1].Username)
}

func (s *ServiceSuite) TestRestoreReplacesUsersAndDropsSessions() {
	session, _ := s.service.Register("alice", "password123")

	s.service.Restore([]model.User{
		{Username: "bob", PasswordHash: "x", PlayerID: "p-bob", CreatedAt: s.clock.Now()},
	})

	_, err := s.service.ResolveUser("alice")
	s.ErrorIs(err, model.ErrUserNotFound)
	bob, err := s.service.ResolveUser("bob")
	s.Require().NoError(err)
	s.Equal(model.RolePlayer, bob.Role)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, model.ErrInvalidSession)
}

func (s *ServiceSuite) TestClearNonAdmins() {
	admin, _ := s.service.Register("admin", "password123")
	alice, _ := s.service.Register("alice", "password123")

	s.Equal(1, s.service.ClearNonAdmins())

	_, err := s.service.ValidateSession(alice.Token)
	s.ErrorIs(err, model.ErrInvalidSession)
	_, err = s.service.ValidateSession(admin.Token)
	s.NoError(err)
	s.Len(s.service.Users(), 1)
}
