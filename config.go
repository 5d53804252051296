package sovereign

import (
	"fmt"
	"time"
)

// Config is the configuration for an Election.
//
// All duration fields accept standard Go duration strings like "15s", "1m"
// when unmarshalled from YAML.
//
// Timing model:
//
//   - LeaseDuration bounds how long a crashed leader blocks failover: the
//     leader record expires after at most one lease once renewal stops.
//   - ElectionInterval is how often every instance re-evaluates the leader
//     record (renewal for the leader, takeover checks for followers).
//   - HeartbeatInterval is how often the leader refreshes its health record.
//     It must be materially smaller than LeaseDuration, otherwise followers
//     will read a heartbeat as stale while the leader is healthy.
type Config struct {
	// LeaseDuration is the time-to-live of the leader record. The leader
	// renews it every election cycle; if renewal stops, followers take over
	// after expiry. Recommended: 3-5x ElectionInterval.
	LeaseDuration time.Duration `yaml:"leaseDuration"`

	// HeartbeatInterval is how often the leader writes its health record.
	// Recommended: well below LeaseDuration (default 5s against a 15s lease).
	HeartbeatInterval time.Duration `yaml:"heartbeatInterval"`

	// ElectionInterval is how often every instance runs an election cycle.
	ElectionInterval time.Duration `yaml:"electionInterval"`

	// OperationTimeout is the timeout applied to the chain of store calls
	// within a single cycle. Recommended: 10 seconds.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// ShutdownTimeout bounds the graceful release during Stop when the
	// caller's context carries no deadline. Recommended: 10 seconds.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// LeaderKey is the shared store key holding the current leader identity.
	LeaderKey string `yaml:"leaderKey"`

	// HeartbeatKeyPrefix is prepended to an instance identity to form its
	// health record key.
	HeartbeatKeyPrefix string `yaml:"heartbeatKeyPrefix"`

	// Backend names the registered store backend to use when constructing
	// an Election through a Factory. Ignored by New, which takes the store
	// directly.
	Backend string `yaml:"backend"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		LeaseDuration:      15 * time.Second,
		HeartbeatInterval:  5 * time.Second,
		ElectionInterval:   3 * time.Second,
		OperationTimeout:   10 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		LeaderKey:          "sovereign:leader",
		HeartbeatKeyPrefix: "sovereign:heartbeat:",
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.LeaseDuration == 0 {
		cfg.LeaseDuration = defaults.LeaseDuration
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = defaults.HeartbeatInterval
	}
	if cfg.ElectionInterval == 0 {
		cfg.ElectionInterval = defaults.ElectionInterval
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.LeaderKey == "" {
		cfg.LeaderKey = defaults.LeaderKey
	}
	if cfg.HeartbeatKeyPrefix == "" {
		cfg.HeartbeatKeyPrefix = defaults.HeartbeatKeyPrefix
	}
}

// Validate checks configuration constraints and returns an error for invalid
// values.
//
// Hard validation rules:
//   - LeaseDuration, HeartbeatInterval, ElectionInterval > 0
//   - HeartbeatInterval < LeaseDuration (staleness detection window)
//   - LeaderKey and HeartbeatKeyPrefix non-empty
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.LeaseDuration <= 0 {
		return fmt.Errorf("LeaseDuration must be > 0, got %v", cfg.LeaseDuration)
	}
	if cfg.HeartbeatInterval <= 0 {
		return fmt.Errorf("HeartbeatInterval must be > 0, got %v", cfg.HeartbeatInterval)
	}
	if cfg.ElectionInterval <= 0 {
		return fmt.Errorf("ElectionInterval must be > 0, got %v", cfg.ElectionInterval)
	}

	if cfg.HeartbeatInterval >= cfg.LeaseDuration {
		return fmt.Errorf(
			"HeartbeatInterval (%v) must be < LeaseDuration (%v) for staleness detection to work",
			cfg.HeartbeatInterval, cfg.LeaseDuration,
		)
	}

	if cfg.LeaderKey == "" {
		return fmt.Errorf("LeaderKey must not be empty")
	}
	if cfg.HeartbeatKeyPrefix == "" {
		return fmt.Errorf("HeartbeatKeyPrefix must not be empty")
	}

	return nil
}

// ValidateWithWarnings checks configuration and logs warnings for
// non-recommended values.
//
// Called after Validate() in New() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.LeaseDuration < 3*cfg.HeartbeatInterval {
		logger.Warn(
			"LeaseDuration is below recommended minimum, a single missed heartbeat may look stale",
			"leaseDuration", cfg.LeaseDuration,
			"heartbeatInterval", cfg.HeartbeatInterval,
			"recommended", 3*cfg.HeartbeatInterval,
		)
	}

	if cfg.ElectionInterval > cfg.LeaseDuration {
		logger.Warn(
			"ElectionInterval exceeds LeaseDuration, the leader may expire between renewals",
			"electionInterval", cfg.ElectionInterval,
			"leaseDuration", cfg.LeaseDuration,
		)
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Test timings are 10-30x faster than production defaults to enable rapid
// iteration without sacrificing test coverage. Use DefaultConfig() for
// production deployments.
//
// Returns:
//   - Config: Configuration with fast timings for tests
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.LeaseDuration = 1 * time.Second
	cfg.HeartbeatInterval = 200 * time.Millisecond
	cfg.ElectionInterval = 100 * time.Millisecond
	cfg.OperationTimeout = 2 * time.Second
	cfg.ShutdownTimeout = 2 * time.Second

	return cfg
}
