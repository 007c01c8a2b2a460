package factory

import (
	"time"

	"github.com/carriee-liuu/anomia-go/internal/dependencies/mocks"
	"github.com/carriee-liuu/anomia-go/internal/services/room"
	"github.com/carriee-liuu/anomia-go/internal/storage/memory"
	"github.com/carriee-liuu/anomia-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom

	// MemoryStorage is the backing store, exposed for direct state setup
	MemoryStorage *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked
// dependencies and no disconnect grace period
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, room.DefaultConfig(), 0, testutil.NopLogger())

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		MemoryStorage: store,
	}
}
