package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvHome             = "SHAMIR_MPC_HOME"
	EnvOutputFormat     = "SHAMIR_MPC_OUTPUT_FORMAT"
	EnvVerbose          = "SHAMIR_MPC_VERBOSE"
	EnvLogLevel         = "SHAMIR_MPC_LOG_LEVEL"
	EnvNoColor          = "NO_COLOR"
	EnvDefaultThreshold = "SHAMIR_MPC_DEFAULT_THRESHOLD"
	EnvDefaultParties   = "SHAMIR_MPC_DEFAULT_PARTIES"
	EnvMemoryLock       = "SHAMIR_MPC_MEMORY_LOCK"
	EnvExportEncryption = "SHAMIR_MPC_EXPORT_ENCRYPTION"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	// NO_COLOR disables colored output.
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}

	if v := os.Getenv(EnvDefaultThreshold); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k >= 2 {
			cfg.MPC.DefaultThreshold = k
		}
	}

	if v := os.Getenv(EnvDefaultParties); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 2 {
			cfg.MPC.DefaultParties = n
		}
	}

	if v := os.Getenv(EnvMemoryLock); v != "" {
		cfg.Security.MemoryLock = parseBool(v)
	}

	if v := os.Getenv(EnvExportEncryption); v != "" {
		cfg.Security.ExportEncryption = parseBool(v)
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}
