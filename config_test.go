package sovereign

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Traqueur-dev/Sovereign/internal/logging"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, 15*time.Second, cfg.LeaseDuration)
	require.Equal(t, 5*time.Second, cfg.HeartbeatInterval)
	require.Equal(t, 3*time.Second, cfg.ElectionInterval)
	require.Equal(t, 10*time.Second, cfg.OperationTimeout)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, "sovereign:leader", cfg.LeaderKey)
	require.Equal(t, "sovereign:heartbeat:", cfg.HeartbeatKeyPrefix)
	require.Empty(t, cfg.Backend)

	require.NoError(t, cfg.Validate())
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	require.NoError(t, cfg.Validate())
	require.Less(t, cfg.LeaseDuration, DefaultConfig().LeaseDuration)
}

func TestSetDefaults(t *testing.T) {
	t.Run("fills zero values", func(t *testing.T) {
		cfg := Config{}
		SetDefaults(&cfg)
		require.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("preserves explicit values", func(t *testing.T) {
		cfg := Config{
			LeaseDuration: 30 * time.Second,
			LeaderKey:     "myapp:leader",
			Backend:       "redis",
		}
		SetDefaults(&cfg)

		require.Equal(t, 30*time.Second, cfg.LeaseDuration)
		require.Equal(t, "myapp:leader", cfg.LeaderKey)
		require.Equal(t, "redis", cfg.Backend)
		require.Equal(t, DefaultConfig().HeartbeatInterval, cfg.HeartbeatInterval)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero lease duration",
			mutate:  func(c *Config) { c.LeaseDuration = 0 },
			wantErr: "LeaseDuration",
		},
		{
			name:    "negative heartbeat interval",
			mutate:  func(c *Config) { c.HeartbeatInterval = -time.Second },
			wantErr: "HeartbeatInterval",
		},
		{
			name:    "zero election interval",
			mutate:  func(c *Config) { c.ElectionInterval = 0 },
			wantErr: "ElectionInterval",
		},
		{
			name:    "heartbeat interval not below lease",
			mutate:  func(c *Config) { c.HeartbeatInterval = c.LeaseDuration },
			wantErr: "must be < LeaseDuration",
		},
		{
			name:    "empty leader key",
			mutate:  func(c *Config) { c.LeaderKey = "" },
			wantErr: "LeaderKey",
		},
		{
			name:    "empty heartbeat key prefix",
			mutate:  func(c *Config) { c.HeartbeatKeyPrefix = "" },
			wantErr: "HeartbeatKeyPrefix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigValidateWithWarnings(t *testing.T) {
	logger := logging.NewTest(t)

	// A tight lease and a slow election cycle both warn but stay valid.
	cfg := DefaultConfig()
	cfg.LeaseDuration = 6 * time.Second
	cfg.ElectionInterval = 10 * time.Second

	require.NoError(t, cfg.Validate())
	cfg.ValidateWithWarnings(logger)
}
