package profile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProfileValidateDefaults(t *testing.T) {
	dataDir := t.TempDir()

	p := &Profile{
		Mode:   "something-else",
		Driver: "sqlite",
		Data:   dataDir,
	}
	err := p.Validate()
	require.NoError(t, err)

	require.Equal(t, "demo", p.Mode, "unknown mode falls back to demo")
	require.Equal(t, filepath.Join(dataDir, "event_planning_demo.db"), p.DSN)
}

func TestProfileValidateDriver(t *testing.T) {
	p := &Profile{Mode: "dev", Driver: "mysql", Data: t.TempDir()}
	require.Error(t, p.Validate(), "mysql is not a supported driver")

	p = &Profile{Mode: "dev", Driver: "postgres", Data: t.TempDir()}
	require.Error(t, p.Validate(), "postgres requires an explicit dsn")

	p = &Profile{Mode: "dev", Driver: "postgres", Data: t.TempDir(), DSN: "postgresql://db/event_planning"}
	require.NoError(t, p.Validate())
}

func TestProfileFromEnv(t *testing.T) {
	t.Setenv("EVENT_PLANNING_CACHE_REDIS_ADDR", "localhost:6379")
	t.Setenv("EVENT_PLANNING_DRIVER", "sqlite")

	p := &Profile{}
	p.FromEnv()

	require.Equal(t, "sqlite", p.Driver)
	require.True(t, p.IsRedisCacheEnabled())
}
