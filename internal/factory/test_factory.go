package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/brettonwoods/internal/config"
	"github.com/mcoot/brettonwoods/internal/dependencies/mocks"
	"github.com/mcoot/brettonwoods/internal/services/auth"
	"github.com/mcoot/brettonwoods/internal/storage/memory"
	"github.com/mcoot/brettonwoods/internal/testutil"
)

// TestSuperadmin is the username that registers with the superadmin role
// in a TestApp
const TestSuperadmin = "admin"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage
}

func testAuthConfig() auth.Config {
	cfg := auth.DefaultConfig()
	cfg.BcryptCost = bcrypt.MinCost
	cfg.SuperadminUsername = TestSuperadmin
	return cfg
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(config.Default(), store, mockClock, mockRandom, testAuthConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Memory:     store,
	}
}
