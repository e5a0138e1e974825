package routeros

import (
	"crypto/tls"
	"crypto/x509"
	"time"

	"github.com/nimda/gorouteros/internal/telemetry"
)

const (
	defaultPlainPort = 8728
	defaultTLSPort   = 8729
	defaultTimeout   = 5 * time.Second
	defaultPoolSize  = 5
)

// TLSOptions configures the TLS transport when Config.TLS is true.
type TLSOptions struct {
	// InsecureSkipVerify disables server certificate verification.
	// Equivalent to crypto/tls's field of the same name - off by default.
	InsecureSkipVerify bool

	// RootCAs overrides the system trust store when non-nil.
	RootCAs *x509.CertPool

	// ServerName overrides SNI; defaults to Config.Host.
	ServerName string

	// Certificates presents a client certificate, for routers configured
	// to require mutual TLS.
	Certificates []tls.Certificate
}

// Config describes how to reach and authenticate against one router.
// Required fields: Host, Username, Password. Everything else has a
// default, applied by Option functions or by NewConfig itself.
type Config struct {
	Host     string
	Username string
	Password string

	Port        int
	TLS         *bool // nil = derive from port
	TLSOptions  TLSOptions
	DialTimeout time.Duration
	PoolSize    int
	Emitter     telemetry.Emitter
}

// Option mutates a Config during construction.
type Option func(*Config)

// WithPort overrides the default port (8728 plain, 8729 TLS).
func WithPort(port int) Option {
	return func(c *Config) { c.Port = port }
}

// WithTLS forces TLS on or off, overriding the port-derived default.
func WithTLS(enabled bool) Option {
	return func(c *Config) { c.TLS = &enabled }
}

// WithTLSOptions sets the TLS verification/identity options. Implies TLS.
func WithTLSOptions(opts TLSOptions) Option {
	return func(c *Config) {
		c.TLSOptions = opts
		enabled := true
		c.TLS = &enabled
	}
}

// WithDialTimeout overrides the default 5s dial/TLS/login timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Config) { c.DialTimeout = d }
}

// WithPoolSize overrides the default pool target size of 5.
func WithPoolSize(n int) Option {
	return func(c *Config) { c.PoolSize = n }
}

// WithEmitter attaches a telemetry.Emitter; the default is a no-op.
func WithEmitter(e telemetry.Emitter) Option {
	return func(c *Config) { c.Emitter = e }
}

// NewConfig builds a Config from required fields and options, applying
// default port/timeout/pool size and the port/TLS derivation invariant:
// if port == 8729 and TLS is unset, TLS becomes true; an explicit WithTLS
// always wins over the port-derived default. Returns a *Error (kind
// protocol) if the resulting host, port, or pool size is invalid.
func NewConfig(host, username, password string, opts ...Option) (Config, error) {
	c := Config{
		Host:        host,
		Username:    username,
		Password:    password,
		DialTimeout: defaultTimeout,
		PoolSize:    defaultPoolSize,
	}
	for _, opt := range opts {
		opt(&c)
	}
	c = c.withDefaults()

	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// withDefaults fills in the port/TLS/emitter defaults a Config needs
// before it's dialed, without validating it.
func (c Config) withDefaults() Config {
	if c.Port == 0 {
		if c.tlsEnabled() {
			c.Port = defaultTLSPort
		} else {
			c.Port = defaultPlainPort
		}
	}
	if c.TLS == nil {
		derived := c.Port == defaultTLSPort
		c.TLS = &derived
	}
	if c.PoolSize == 0 {
		c.PoolSize = defaultPoolSize
	}
	if c.Emitter == nil {
		c.Emitter = telemetry.Noop{}
	}
	return c
}

// validate checks the fields every dial/pool entry point depends on.
func (c Config) validate() error {
	if err := ValidateHost(c.Host); err != nil {
		return err
	}
	if err := ValidatePort(c.Port); err != nil {
		return err
	}
	return ValidatePoolSize(c.PoolSize)
}

func (c Config) tlsEnabled() bool {
	return c.TLS != nil && *c.TLS
}

func (c Config) buildTLSConfig() *tls.Config {
	if !c.tlsEnabled() {
		return nil
	}
	cfg := &tls.Config{
		InsecureSkipVerify: c.TLSOptions.InsecureSkipVerify, //nolint:gosec // caller-requested, see TLSOptions doc
		Certificates:       c.TLSOptions.Certificates,
	}
	if c.TLSOptions.ServerName != "" {
		cfg.ServerName = c.TLSOptions.ServerName
	} else {
		cfg.ServerName = c.Host
	}
	if c.TLSOptions.RootCAs != nil {
		cfg.RootCAs = c.TLSOptions.RootCAs
	}
	return cfg
}
