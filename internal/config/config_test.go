package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/shamir-mpc/internal/config"
)

func TestLoadSave_RoundTrip(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := config.Defaults()
	cfg.MPC.DefaultThreshold = 4
	cfg.MPC.DefaultParties = 9
	cfg.Output.Verbose = true

	err := config.Save(cfg, path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)

	loaded, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Version, loaded.Version)
	assert.Equal(t, cfg.MPC.DefaultThreshold, loaded.MPC.DefaultThreshold)
	assert.Equal(t, cfg.MPC.DefaultParties, loaded.MPC.DefaultParties)
	assert.Equal(t, cfg.Output.Verbose, loaded.Output.Verbose)
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "~/.shamir-mpc", cfg.Home)
	assert.Equal(t, 3, cfg.MPC.DefaultThreshold)
	assert.Equal(t, 5, cfg.MPC.DefaultParties)
	assert.True(t, cfg.Security.MemoryLock)
	assert.False(t, cfg.Security.ExportEncryption)
	assert.Equal(t, 18, cfg.Security.ScryptWorkFactor)
	assert.Equal(t, "auto", cfg.Output.DefaultFormat)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()
	_, err := config.Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(path, []byte("invalid: yaml: content: ["), 0o600)
	require.NoError(t, err)

	_, err = config.Load(path)
	assert.Error(t, err)
}

func TestSave_CreatesDirectory(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := config.Defaults()
	err := config.Save(cfg, path)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestApplyEnvironment(t *testing.T) {
	cfg := config.Defaults()

	t.Setenv("SHAMIR_MPC_HOME", "/custom/home")
	t.Setenv("SHAMIR_MPC_OUTPUT_FORMAT", "json")
	t.Setenv("SHAMIR_MPC_VERBOSE", "true")
	t.Setenv("SHAMIR_MPC_LOG_LEVEL", "debug")
	t.Setenv("SHAMIR_MPC_DEFAULT_THRESHOLD", "4")
	t.Setenv("SHAMIR_MPC_DEFAULT_PARTIES", "9")

	config.ApplyEnvironment(cfg)

	assert.Equal(t, "/custom/home", cfg.Home)
	assert.Equal(t, "json", cfg.Output.DefaultFormat)
	assert.True(t, cfg.Output.Verbose)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 4, cfg.MPC.DefaultThreshold)
	assert.Equal(t, 9, cfg.MPC.DefaultParties)
}

func TestApplyEnvironment_NoColor(t *testing.T) {
	cfg := config.Defaults()

	t.Setenv("NO_COLOR", "1")
	config.ApplyEnvironment(cfg)

	assert.Equal(t, "never", cfg.Output.Color)
}

func TestApplyEnvironment_VerboseValues(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg := config.Defaults()
			t.Setenv("SHAMIR_MPC_VERBOSE", tt.value)
			config.ApplyEnvironment(cfg)
			assert.Equal(t, tt.expected, cfg.Output.Verbose)
		})
	}
}

func TestApplyEnvironment_InvalidThresholdIgnored(t *testing.T) {
	cfg := config.Defaults()
	want := cfg.MPC.DefaultThreshold

	t.Setenv("SHAMIR_MPC_DEFAULT_THRESHOLD", "not-a-number")
	config.ApplyEnvironment(cfg)

	assert.Equal(t, want, cfg.MPC.DefaultThreshold)
}

func TestConfigPath(t *testing.T) {
	t.Parallel()
	path := config.Path("/home/user/.shamir-mpc")
	assert.Equal(t, "/home/user/.shamir-mpc/config.yaml", path)
}

func TestDefaultHome(t *testing.T) {
	t.Parallel()
	home := config.DefaultHome()
	assert.Contains(t, home, ".shamir-mpc")
}
