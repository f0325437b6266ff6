package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoideee/storegate/internal/gateway"
	"github.com/aoideee/storegate/internal/web"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storegate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "http://localhost:5001/", cfg.backendURL("RDS"))
	assert.Equal(t, "http://localhost:5002/", cfg.backendURL("MDB"))
	assert.Equal(t, web.LimiterConfig{Enabled: true, RPS: 50, Burst: 100}, cfg.Limiter)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
port: 8080
env: staging
backends:
  - name: RDS
    base_url: http://rds.internal:9000/
  - name: MDB
    base_url: http://mdb.internal:9000/
pool:
  max_idle_conns_per_host: 32
limiter:
  enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "staging", cfg.Env)
	assert.Equal(t, "http://rds.internal:9000/", cfg.backendURL("RDS"))
	assert.Equal(t, "http://mdb.internal:9000/", cfg.backendURL("MDB"))
	assert.Equal(t, 32, cfg.Pool.MaxIdleConnsPerHost)
	assert.Equal(t, gateway.DefaultPoolConfig().MaxIdleConns, cfg.Pool.MaxIdleConns)
	assert.False(t, cfg.Limiter.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "port: [not a number"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		EnvPort:   "9999",
		EnvEnv:    "production",
		EnvRDSURL: "http://rds.env/",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "http://rds.env/", cfg.backendURL("RDS"))
	assert.Equal(t, "http://localhost:5002/", cfg.backendURL("MDB"))

	err = Default().ApplyEnv(envMap(map[string]string{EnvPort: "abc"}))
	assert.Error(t, err)
}

func TestParse_Precedence(t *testing.T) {
	path := writeConfig(t, `
port: 8080
env: staging
`)

	cfg, err := Parse(newFlagSet(), []string{
		"-config", path,
		"-port", "7000",
		"-mdb-url", "http://mdb.flag/",
	}, envMap(map[string]string{
		EnvPort:   "9000",
		EnvEnv:    "production",
		EnvMDBURL: "http://mdb.env/",
		EnvRDSURL: "http://rds.env/",
	}))
	require.NoError(t, err)

	// flag beats env beats file
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "http://mdb.flag/", cfg.backendURL("MDB"))
	assert.Equal(t, "http://rds.env/", cfg.backendURL("RDS"))
}

func TestParse_UnsetFlagsKeepFileValues(t *testing.T) {
	path := writeConfig(t, `
limiter:
  enabled: true
  rps: 10
  burst: 20
`)

	cfg, err := Parse(newFlagSet(), []string{"-config", path, "-limiter-burst", "30"}, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, float64(10), cfg.Limiter.RPS)
	assert.Equal(t, 30, cfg.Limiter.Burst)
}

func TestParse_InvalidFlag(t *testing.T) {
	_, err := Parse(newFlagSet(), []string{"-nope"}, envMap(nil))
	assert.Error(t, err)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Port = 0
	cfg.Env = "qa"
	cfg.Limiter = web.LimiterConfig{Enabled: true}
	cfg.Backends = append(cfg.Backends,
		Backend{Name: "cache", BaseURL: "http://cache/"},
		Backend{Name: "rds", BaseURL: " "},
	)

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "port 0 out of range")
	assert.Contains(t, msg, `env "qa"`)
	assert.Contains(t, msg, "limiter rps and burst must be positive")
	assert.Contains(t, msg, `backend "cache" is not a known backend`)
	assert.Contains(t, msg, `backend "rds": base_url must be provided`)
	assert.Contains(t, msg, "backend names must be unique")
}

func TestSetBackendURL(t *testing.T) {
	cfg := &Config{}
	cfg.SetBackendURL("RDS", "http://a/")
	cfg.SetBackendURL("rds", "http://b/")

	require.Len(t, cfg.Backends, 1)
	assert.Equal(t, "http://b/", cfg.Backends[0].BaseURL)
	assert.Equal(t, "RDS", cfg.Backends[0].Name)
}

func TestDescriptors(t *testing.T) {
	descs, err := Default().Descriptors()
	require.NoError(t, err)
	require.Len(t, descs, 2)

	assert.Equal(t, gateway.RDS, descs[0].Backend)
	assert.Equal(t, "http://localhost:5001/", descs[0].BaseURL.String())
	assert.Equal(t, gateway.MDB, descs[1].Backend)

	cfg := Default()
	cfg.SetBackendURL("MDB", "not a url")
	_, err = cfg.Descriptors()
	assert.Error(t, err)
}
