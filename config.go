// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reconn

import (
	"crypto/tls"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/gogama/reconn/request"
	"github.com/gogama/reconn/retry"
	"github.com/gogama/reconn/transport"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultName is the client name used when neither Config.Name nor the
// EnvClientName environment variable is set.
const DefaultName = "reconn"

// Environment variables consulted for values left empty in Config.
const (
	EnvClientName = "RECONN_CLIENT_NAME"
	EnvCAFile     = "RECONN_CA_FILE"
)

// Backoff configures an exponential, jittered wait between a transport
// failure and the following retry. The zero value retries immediately.
type Backoff struct {
	// Base is the wait ceiling before the first retry. It doubles on
	// each subsequent retry.
	Base time.Duration `yaml:"base"`
	// Max caps the wait ceiling. Zero means Base.
	Max time.Duration `yaml:"max"`
}

// Config holds the configuration of a Client. A Config is read once,
// by NewClient; later changes to it have no effect on the Client.
//
// Zero durations mean no timeout.
type Config struct {
	// Name identifies the client in logs and metrics. If empty, the
	// EnvClientName environment variable is used, then DefaultName.
	Name string `yaml:"name"`

	// DefaultHeaders are applied to every request unless overridden
	// by a per-call header with the same (case-insensitive) name.
	DefaultHeaders map[string]string `yaml:"default_headers"`

	// RequestTimeout is the ceiling on one logical request, including
	// all retries and waits.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxRetries bounds how many times the connection is rebuilt and
	// the request retried after transport failures. If nil,
	// retry.DefaultTimes is used. Use Retries to set it inline.
	MaxRetries *int `yaml:"max_retries"`

	// RetryBackoff configures the wait before each retry.
	RetryBackoff Backoff `yaml:"retry_backoff"`

	// OpenTimeout bounds establishing a connection.
	OpenTimeout time.Duration `yaml:"open_timeout"`
	// ReadTimeout bounds waiting for response headers.
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// IdleTimeout is how long an idle connection is kept alive.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	// PoolSize limits concurrent connections to the endpoint. Zero
	// means no limit.
	PoolSize int `yaml:"pool_size"`

	// TLSCAFile is a PEM file replacing the system roots. If empty,
	// the EnvCAFile environment variable is used.
	TLSCAFile string `yaml:"tls_ca_file"`
	// InsecureSkipVerify disables peer certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
	// SkipHostnameVerification keeps chain verification but skips the
	// hostname check.
	SkipHostnameVerification bool `yaml:"skip_hostname_verification"`
	// TLSMinVersion is "1.2" (the default) or "1.3".
	TLSMinVersion string `yaml:"tls_min_version"`
	// DisableHTTP2 prevents HTTP/2 negotiation on https endpoints.
	DisableHTTP2 bool `yaml:"disable_http2"`

	// RateLimit paces request attempts to at most this many per
	// second. Zero means no limit.
	RateLimit float64 `yaml:"rate_limit"`
	// RateBurst is the rate limiter burst size. Zero means 1.
	RateBurst int `yaml:"rate_burst"`

	// Opener opens connections. If nil, transport.HTTP is used.
	Opener transport.Opener `yaml:"-"`
	// Logger receives client logs. If nil, logging is disabled.
	Logger *zap.Logger `yaml:"-"`
	// Handlers are invoked at designated points of request execution.
	Handlers *HandlerGroup `yaml:"-"`
}

// Retries returns a pointer to n, for use as Config.MaxRetries.
func Retries(n int) *int {
	return &n
}

var configKeys = map[string]bool{
	"name":                       true,
	"default_headers":            true,
	"request_timeout":            true,
	"max_retries":                true,
	"retry_backoff":              true,
	"open_timeout":               true,
	"read_timeout":               true,
	"idle_timeout":               true,
	"pool_size":                  true,
	"tls_ca_file":                true,
	"insecure_skip_verify":       true,
	"skip_hostname_verification": true,
	"tls_min_version":            true,
	"disable_http2":              true,
	"rate_limit":                 true,
	"rate_burst":                 true,
}

// LoadConfig reads a YAML configuration file. See ParseConfig.
func LoadConfig(path string, logger *zap.Logger) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &ConfigurationError{Msg: "cannot read config file", Err: err}
	}
	return ParseConfig(data, logger)
}

// ParseConfig parses YAML configuration. Durations are written as
// strings such as "250ms" or "5s".
//
// Options ParseConfig does not recognize are logged to logger as
// warnings and otherwise ignored, so a configuration written for a
// newer version of this package still loads. The logger may be nil.
func ParseConfig(data []byte, logger *zap.Logger) (Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &ConfigurationError{Msg: "invalid config", Err: err}
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, &ConfigurationError{Msg: "invalid config", Err: err}
	}
	unknown := make([]string, 0)
	for k := range raw {
		if !configKeys[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		logger.Warn("ignoring unsupported config option", zap.String("option", k))
	}
	return cfg, nil
}

// Validate checks the configuration, returning every problem found
// combined into one error. Each problem is a ConfigurationError;
// use multierr.Errors to list them.
func (c *Config) Validate() error {
	var err error
	invalid := func(format string, args ...interface{}) {
		err = multierr.Append(err, &ConfigurationError{Msg: fmt.Sprintf(format, args...)})
	}

	if c.MaxRetries != nil && *c.MaxRetries < 0 {
		invalid("max retries must not be negative, got %d", *c.MaxRetries)
	}
	durations := []struct {
		name string
		d    time.Duration
	}{
		{"request timeout", c.RequestTimeout},
		{"open timeout", c.OpenTimeout},
		{"read timeout", c.ReadTimeout},
		{"idle timeout", c.IdleTimeout},
		{"retry backoff base", c.RetryBackoff.Base},
		{"retry backoff max", c.RetryBackoff.Max},
	}
	for _, x := range durations {
		if x.d < 0 {
			invalid("%s must not be negative, got %s", x.name, x.d)
		}
	}
	if c.RetryBackoff.Max > 0 && c.RetryBackoff.Max < c.RetryBackoff.Base {
		invalid("retry backoff max %s is less than base %s", c.RetryBackoff.Max, c.RetryBackoff.Base)
	}
	if c.PoolSize < 0 {
		invalid("pool size must not be negative, got %d", c.PoolSize)
	}
	if c.RateLimit < 0 {
		invalid("rate limit must not be negative, got %g", c.RateLimit)
	}
	if c.RateBurst < 0 {
		invalid("rate burst must not be negative, got %d", c.RateBurst)
	}
	if _, tlsErr := tlsVersion(c.TLSMinVersion); tlsErr != nil {
		err = multierr.Append(err, tlsErr)
	}
	if _, hdrErr := request.Normalize(c.DefaultHeaders); hdrErr != nil {
		err = multierr.Append(err, &ConfigurationError{Msg: "invalid default headers", Err: hdrErr})
	}

	return err
}

// withDefaults returns a copy of c with environment fallbacks and
// defaults applied.
func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = os.Getenv(EnvClientName)
	}
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.TLSCAFile == "" {
		c.TLSCAFile = os.Getenv(EnvCAFile)
	}
	if c.MaxRetries == nil {
		c.MaxRetries = Retries(retry.DefaultTimes)
	}
	if c.RetryBackoff.Base > 0 && c.RetryBackoff.Max == 0 {
		c.RetryBackoff.Max = c.RetryBackoff.Base
	}
	if c.RateLimit > 0 && c.RateBurst == 0 {
		c.RateBurst = 1
	}
	if c.Opener == nil {
		c.Opener = transport.HTTP
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Handlers == nil {
		c.Handlers = &emptyHandlers
	}
	return c
}

func (c *Config) settings() transport.Settings {
	v, _ := tlsVersion(c.TLSMinVersion)
	return transport.Settings{
		Name:         c.Name,
		OpenTimeout:  c.OpenTimeout,
		ReadTimeout:  c.ReadTimeout,
		IdleTimeout:  c.IdleTimeout,
		PoolSize:     c.PoolSize,
		DisableHTTP2: c.DisableHTTP2,
		TLS: transport.TLSSettings{
			CAFile:                   c.TLSCAFile,
			InsecureSkipVerify:       c.InsecureSkipVerify,
			SkipHostnameVerification: c.SkipHostnameVerification,
			MinVersion:               v,
		},
	}
}

func (c *Config) retryPolicy() retry.Policy {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	return retry.Bounded(*c.MaxRetries, retry.Backoff(c.RetryBackoff.Base, c.RetryBackoff.Max, rnd))
}

func tlsVersion(s string) (uint16, error) {
	switch s {
	case "", "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, &ConfigurationError{Msg: fmt.Sprintf("unsupported TLS minimum version %q", s)}
	}
}
