package ratelimit

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig limits one method on a path. Paths ending in "/" match by prefix.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int // 0 means Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Onboarding calls spend model quota, so they get a much tighter budget than
// the deterministic routes.
const (
	defaultOnboardPerHour = 30
	defaultOnboardBurst   = 3
	defaultCheapPerMinute = 120
	defaultCheapBurst     = 20
)

// DefaultConfig returns the built-in limits without consulting the environment.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-route limits for the onboarding API.
func DefaultEndpointConfigs() []EndpointConfig {
	return endpointConfigs(defaultOnboardPerHour)
}

func endpointConfigs(onboardPerHour int) []EndpointConfig {
	var out []EndpointConfig
	for _, path := range []string{"/onboard", "/onboard/stream"} {
		out = append(out, EndpointConfig{
			Path: path, Method: "POST",
			Limit: onboardPerHour, Window: time.Hour, Burst: min(defaultOnboardBurst, onboardPerHour),
		})
	}
	for _, path := range []string{"/normalize", "/extract-ids"} {
		out = append(out, EndpointConfig{
			Path: path, Method: "POST",
			Limit: defaultCheapPerMinute, Window: time.Minute, Burst: defaultCheapBurst,
		})
	}
	return out
}

// LoadConfig reads RATE_LIMIT_* variables from the process environment.
func LoadConfig() (*Config, error) {
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup. Unset variables keep their defaults;
// malformed ones are all reported together instead of silently ignored.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	env := envReader{lookup: lookup}

	cfg := DefaultConfig()
	cfg.Enabled = env.bool("RATE_LIMIT_ENABLED", cfg.Enabled)
	if !cfg.Enabled {
		return &Config{Enabled: false}, env.err()
	}

	cfg.DefaultLimit = env.positiveInt("RATE_LIMIT_DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.DefaultWindow = env.duration("RATE_LIMIT_DEFAULT_WINDOW", cfg.DefaultWindow)
	cfg.CleanupInterval = env.duration("RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.IdleTTL = env.duration("RATE_LIMIT_IDLE_TTL", cfg.IdleTTL)
	cfg.EndpointConfigs = endpointConfigs(env.positiveInt("RATE_LIMIT_ONBOARD_PER_HOUR", defaultOnboardPerHour))
	if v, ok := lookup("RATE_LIMIT_WHITELIST"); ok {
		cfg.Whitelist = parseIPList(v)
	}
	if v, ok := lookup("RATE_LIMIT_BLACKLIST"); ok {
		cfg.Blacklist = parseIPList(v)
	}
	return cfg, env.err()
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *envReader) value(key string) (string, bool) {
	v, ok := r.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (r *envReader) fail(key, value string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (r *envReader) bool(key string, def bool) bool {
	v, ok := r.value(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return b
}

func (r *envReader) positiveInt(key string, def int) int {
	v, ok := r.value(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err == nil && n <= 0 {
		err = errors.New("must be positive")
	}
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return n
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.value(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err == nil && d <= 0 {
		err = errors.New("must be positive")
	}
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return d
}

func (r *envReader) err() error {
	if len(r.errs) == 0 {
		return nil
	}
	return fmt.Errorf("rate limit config: %w", errors.Join(r.errs...))
}

// parseIPList parses a comma-separated list of client addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
