package checkpoint

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/sessionctx/internal/config"
)

// fakeClock is a settable, concurrency-safe clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	store *Store
	clock *fakeClock
	cfg   *config.Config
	root  string
}

// newTestStore returns a store rooted in a temp dir. mutate edits the config
// returned on every call; it may be nil.
func newTestStore(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()
	env := &testEnv{clock: newFakeClock(), root: "/home/user/project"}
	var mu sync.Mutex
	env.cfg = config.NewConfig()
	if mutate != nil {
		mutate(env.cfg)
	}

	store, err := NewStore(StoreConfig{
		StoragePath: t.TempDir(),
		Config: func() *config.Config {
			mu.Lock()
			defer mu.Unlock()
			// hand out copies, as config.Get does
			c := *env.cfg
			c.Privacy.ExcludePatterns = append([]string(nil), env.cfg.Privacy.ExcludePatterns...)
			return &c
		},
		Branch: func(string) string { return "main" },
		Now:    env.clock.Now,
	})
	require.NoError(t, err)
	env.store = store
	return env
}

func strPtr(s string) *string { return &s }
