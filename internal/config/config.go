// Package config loads the gateway's startup configuration: defaults, an
// optional YAML file, environment overrides and finally command-line flags.
// The result is read once at startup and never reloaded.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/aoideee/storegate/internal/gateway"
	"github.com/aoideee/storegate/internal/validator"
	"github.com/aoideee/storegate/internal/web"
)

// Environment variables that override file values.
const (
	EnvPort   = "STOREGATE_PORT"
	EnvEnv    = "STOREGATE_ENV"
	EnvRDSURL = "STOREGATE_RDS_URL"
	EnvMDBURL = "STOREGATE_MDB_URL"
)

// Backend is one entry of the backend table.
type Backend struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
}

// Config is the gateway configuration.
type Config struct {
	Port     int                `yaml:"port"`
	Env      string             `yaml:"env"`
	Backends []Backend          `yaml:"backends"`
	Pool     gateway.PoolConfig `yaml:"pool"`
	Limiter  web.LimiterConfig  `yaml:"limiter"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() *Config {
	return &Config{
		Port: 4000,
		Env:  "development",
		Backends: []Backend{
			{Name: "RDS", BaseURL: "http://localhost:5001/"},
			{Name: "MDB", BaseURL: "http://localhost:5002/"},
		},
		Pool:    gateway.DefaultPoolConfig(),
		Limiter: web.DefaultLimiterConfig(),
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides values from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Port = port
	}
	if v, ok := lookup(EnvEnv); ok {
		c.Env = v
	}
	if v, ok := lookup(EnvRDSURL); ok {
		c.SetBackendURL("RDS", v)
	}
	if v, ok := lookup(EnvMDBURL); ok {
		c.SetBackendURL("MDB", v)
	}
	return nil
}

// Parse resolves the configuration from args. The -config flag names an
// optional YAML file; environment variables override the file, and flags
// that were explicitly set override both. The result is validated.
func Parse(fs *flag.FlagSet, args []string, lookup func(string) (string, bool)) (*Config, error) {
	path := fs.String("config", "", "Path to a YAML configuration file")
	flags := Default()
	flags.registerFlags(fs)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := Load(*path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		cfg.applyFlag(f.Name, flags)
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) registerFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Port, "port", c.Port, "Server port")
	fs.StringVar(&c.Env, "env", c.Env, "Environment(development|staging|production)")
	fs.Func("rds-url", "Base URL of the RDS backend", func(v string) error {
		c.SetBackendURL("RDS", v)
		return nil
	})
	fs.Func("mdb-url", "Base URL of the MDB backend", func(v string) error {
		c.SetBackendURL("MDB", v)
		return nil
	})
	fs.BoolVar(&c.Limiter.Enabled, "limiter-enabled", c.Limiter.Enabled, "Enable per-IP rate limiting")
	fs.Float64Var(&c.Limiter.RPS, "limiter-rps", c.Limiter.RPS, "Rate limiter maximum requests per second")
	fs.IntVar(&c.Limiter.Burst, "limiter-burst", c.Limiter.Burst, "Rate limiter maximum burst")
}

// applyFlag copies the value of one explicitly set flag from src.
func (c *Config) applyFlag(name string, src *Config) {
	switch name {
	case "port":
		c.Port = src.Port
	case "env":
		c.Env = src.Env
	case "rds-url":
		c.SetBackendURL("RDS", src.backendURL("RDS"))
	case "mdb-url":
		c.SetBackendURL("MDB", src.backendURL("MDB"))
	case "limiter-enabled":
		c.Limiter.Enabled = src.Limiter.Enabled
	case "limiter-rps":
		c.Limiter.RPS = src.Limiter.RPS
	case "limiter-burst":
		c.Limiter.Burst = src.Limiter.Burst
	}
}

func (c *Config) backendURL(name string) string {
	for _, b := range c.Backends {
		if strings.EqualFold(b.Name, name) {
			return b.BaseURL
		}
	}
	return ""
}

// SetBackendURL replaces the base URL of the named backend, adding the
// backend if it is not in the table yet.
func (c *Config) SetBackendURL(name, baseURL string) {
	for i := range c.Backends {
		if strings.EqualFold(c.Backends[i].Name, name) {
			c.Backends[i].BaseURL = baseURL
			return
		}
	}
	c.Backends = append(c.Backends, Backend{Name: name, BaseURL: baseURL})
}

// Validate reports every problem with c at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Port < 1 || c.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("port %d out of range", c.Port))
	}
	if !validator.In(c.Env, "development", "staging", "production") {
		result = multierror.Append(result, fmt.Errorf("env %q must be development, staging or production", c.Env))
	}
	if c.Limiter.Enabled && (c.Limiter.RPS <= 0 || c.Limiter.Burst < 1) {
		result = multierror.Append(result, errors.New("limiter rps and burst must be positive"))
	}

	names := make([]string, 0, len(c.Backends))
	for _, b := range c.Backends {
		names = append(names, strings.ToUpper(b.Name))
		if _, err := gateway.ParseBackend(b.Name); err != nil {
			result = multierror.Append(result, fmt.Errorf("backend %q is not a known backend", b.Name))
		}
		if !validator.NotBlank(b.BaseURL) {
			result = multierror.Append(result, fmt.Errorf("backend %q: base_url must be provided", b.Name))
		}
	}
	if !validator.Unique(names) {
		result = multierror.Append(result, errors.New("backend names must be unique"))
	}

	return result.ErrorOrNil()
}

// Descriptors converts the backend table for gateway.NewRegistry.
func (c *Config) Descriptors() ([]gateway.Descriptor, error) {
	descs := make([]gateway.Descriptor, 0, len(c.Backends))
	for _, b := range c.Backends {
		backend, err := gateway.ParseBackend(b.Name)
		if err != nil {
			return nil, err
		}
		d, err := gateway.NewDescriptor(backend, b.BaseURL)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	return descs, nil
}
