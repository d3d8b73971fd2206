package fastdfs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fastdfs-go/fastdfs/xerr"
)

// Config is the client's full configuration surface — spec.md §6. It is
// built programmatically or via Option; the core never reads it from a
// file (file loading is an excluded external collaborator, spec.md §1).
type Config struct {
	// Trackers is tried in this exact order on every tracker exchange —
	// spec.md §4.4 "tracker/storage selection tie-breaks".
	Trackers []string

	Charset string // default "utf-8"; informational — string fields are raw bytes on the wire

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AcquireTimeout time.Duration

	MaxIdlePerPool  int
	MaxTotalPerPool int
	IdleTimeout     time.Duration

	EnableReconnect     bool
	MaxReconnect        int
	ReconnectIntervalMs int

	TCPNoDelay         bool
	WriteHighWaterMark int
	WriteLowWaterMark  int

	// AntiLeechSecret, if non-empty, causes Download to attach a FastDFS
	// anti-leech token (SPEC_FULL.md §C.1); empty disables the feature.
	AntiLeechSecret string

	// MetricsRegisterer, if non-nil, registers per-endpoint pool gauges
	// (pool.Metrics) with it; nil (the default) leaves the pools unmetered.
	MetricsRegisterer prometheus.Registerer
}

// Option mutates a Config during construction.
type Option func(*Config)

func WithTrackers(addrs ...string) Option { return func(c *Config) { c.Trackers = addrs } }
func WithCharset(cs string) Option        { return func(c *Config) { c.Charset = cs } }
func WithTimeouts(connect, read, write time.Duration) Option {
	return func(c *Config) { c.ConnectTimeout, c.ReadTimeout, c.WriteTimeout = connect, read, write }
}
func WithPoolSize(maxIdle, maxTotal int) Option {
	return func(c *Config) { c.MaxIdlePerPool, c.MaxTotalPerPool = maxIdle, maxTotal }
}
func WithAcquireTimeout(d time.Duration) Option { return func(c *Config) { c.AcquireTimeout = d } }
func WithIdleTimeout(d time.Duration) Option    { return func(c *Config) { c.IdleTimeout = d } }
func WithReconnect(maxAttempts int, intervalMs int) Option {
	return func(c *Config) {
		c.EnableReconnect = true
		c.MaxReconnect = maxAttempts
		c.ReconnectIntervalMs = intervalMs
	}
}
func WithTCPTuning(noDelay bool, highWatermark, lowWatermark int) Option {
	return func(c *Config) {
		c.TCPNoDelay, c.WriteHighWaterMark, c.WriteLowWaterMark = noDelay, highWatermark, lowWatermark
	}
}
func WithAntiLeechSecret(secret string) Option { return func(c *Config) { c.AntiLeechSecret = secret } }

// WithMetricsRegisterer enables per-endpoint pool gauges (idle/in-use/total
// connections), registered with reg — e.g. prometheus.DefaultRegisterer for
// the global registry, or a fresh *prometheus.Registry in tests.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(c *Config) { c.MetricsRegisterer = reg }
}

// DefaultConfig mirrors the defaults a hand-written FastDFS client.conf
// would set.
func DefaultConfig(trackers ...string) Config {
	return Config{
		Trackers:            trackers,
		Charset:             "utf-8",
		ConnectTimeout:      5 * time.Second,
		ReadTimeout:         30 * time.Second,
		WriteTimeout:        30 * time.Second,
		AcquireTimeout:      5 * time.Second,
		MaxIdlePerPool:      8,
		MaxTotalPerPool:     32,
		IdleTimeout:         90 * time.Second,
		TCPNoDelay:          true,
		WriteHighWaterMark:  256 * 1024,
		WriteLowWaterMark:   64 * 1024,
		EnableReconnect:     false,
		MaxReconnect:        3,
		ReconnectIntervalMs: 500,
	}
}

// validate enforces spec.md §7 "ConfigError — invalid configuration (e.g.
// empty Trackers). Fatal at construction."
func (c Config) validate() error {
	if len(c.Trackers) == 0 {
		return xerr.NewConfigError("Trackers", "must list at least one tracker endpoint")
	}
	for _, t := range c.Trackers {
		if t == "" {
			return xerr.NewConfigError("Trackers", "entries must be non-empty host:port strings")
		}
	}
	if c.MaxTotalPerPool <= 0 {
		return xerr.NewConfigError("MaxTotalPerPool", "must be positive")
	}
	if c.MaxIdlePerPool < 0 {
		return xerr.NewConfigError("MaxIdlePerPool", "must not be negative")
	}
	if c.EnableReconnect && c.MaxReconnect <= 0 {
		return xerr.NewConfigError("MaxReconnect", "must be positive when reconnect is enabled")
	}
	return nil
}
