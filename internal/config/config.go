// Package config resolves binary settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/oserror"
	"github.com/joho/godotenv"

	"go-call-tracker/internal/tracer"
)

// Environment variables read by Load.
const (
	EnvMode        = "RCT_MODE"
	EnvAddr        = "RCT_ADDR"
	EnvSSEPath     = "RCT_SSE_PATH"
	EnvMetricsPath = "RCT_METRICS_PATH"
	EnvIndent      = "RCT_INDENT"
	EnvMaxTraces   = "RCT_MAX_TRACES"
)

// DefaultMaxTraces is the number of traces the server keeps for call_tree.
const DefaultMaxTraces = 64

// Config holds defaults for the command-line flags of both binaries.
type Config struct {
	Mode        string
	Addr        string
	SSEPath     string
	MetricsPath string
	Indent      int
	MaxTraces   int
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Mode:        "stdio",
		Addr:        ":8080",
		SSEPath:     "/mcp/sse",
		MetricsPath: "/metrics",
		Indent:      tracer.DefaultIndent,
		MaxTraces:   DefaultMaxTraces,
	}
}

// Load reads the given .env files (".env" when none are named) into the process
// environment without overriding variables already set, then applies the RCT_*
// variables on top of Default. Missing .env files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !oserror.IsNotExist(err) {
			return Config{}, errors.Wrapf(err, "loading %s", f)
		}
	}

	c := Default()
	setString(&c.Mode, EnvMode)
	setString(&c.Addr, EnvAddr)
	setString(&c.SSEPath, EnvSSEPath)
	setString(&c.MetricsPath, EnvMetricsPath)
	if v, ok := os.LookupEnv(EnvIndent); ok {
		indent, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.Newf("%s must be a base-10 integer, got %q", EnvIndent, v)
		}
		c.Indent = indent
	}
	if v, ok := os.LookupEnv(EnvMaxTraces); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.Newf("%s must be a base-10 integer, got %q", EnvMaxTraces, v)
		}
		c.MaxTraces = n
	}
	return c, c.Validate()
}

// Validate checks the settings for consistency.
func (c Config) Validate() error {
	switch c.Mode {
	case "stdio", "sse":
	default:
		return errors.Newf("unknown mode %q (want stdio or sse)", c.Mode)
	}
	if err := tracer.CheckIndent(c.Indent); err != nil {
		return err
	}
	if c.MaxTraces <= 0 {
		return errors.Newf("max traces must be positive, got %d", c.MaxTraces)
	}
	return nil
}

func setString(dst *string, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = v
	}
}
