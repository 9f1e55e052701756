// Package cli implements the shamir-mpc command-line interface.
//
// This package provides two ways to access CLI state:
//  1. Global variables (legacy) - for backwards compatibility
//  2. Context-based access (recommended) - via GetCmdContext(cmd)
//
// The globals are initialized in PersistentPreRunE and cleaned up in
// PersistentPostRun. New code should prefer GetCmdContext(cmd) for better
// testability and explicit dependency passing.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/shamir-mpc/internal/config"
	"github.com/mrz1836/shamir-mpc/internal/output"
	"github.com/mrz1836/shamir-mpc/internal/version"
	sigilerr "github.com/mrz1836/shamir-mpc/pkg/errors"
)

// repoOwner and repoName identify the project on GitHub, used by
// "version --check" to look up the latest release.
const (
	repoOwner = "mrz1836"
	repoName  = "shamir-mpc"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter

	// Command context for dependency injection
	cmdCtx *CommandContext
)

// Command group IDs, used to organize `--help` output into sections.
const (
	groupShare  = "share"
	groupMPC    = "mpc"
	groupDemo   = "demo"
	groupConfig = "config"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "shamirmpc",
	Short: "Threshold secret sharing and honest-but-curious MPC over GF(256)",
	Long: `shamirmpc splits a secret into Shamir shares, reconstructs it from a
threshold subset, and runs honest-but-curious multi-party computations
(add, subtract, multiply, sum, average, max, greater-than) directly on
shares without ever reassembling the secret.`,
	Example: `  shamirmpc split --threshold 3 --shares 5 --secret "correct horse battery staple"
  shamirmpc combine share1.json share2.json share3.json
  shamirmpc mpc add a-shares.json b-shares.json --out sum.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// BuildInfo carries version metadata injected at build time via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// formatVersion renders a BuildInfo as the one-line string shown by the
// version command, substituting "unknown"/"dev" for empty fields.
func formatVersion(info BuildInfo) string {
	version := info.Version
	if version == "" {
		version = "dev"
	}
	commit := info.Commit
	if commit == "" {
		commit = "unknown"
	}
	date := info.Date
	if date == "" {
		date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

// Execute runs the root command with the given build information.
func Execute(info BuildInfo) error {
	buildInfo = info
	walkCommands(rootCmd, enrichParentLong)
	err := rootCmd.Execute()
	if err != nil {
		formatErr(err)
		return err
	}
	return nil
}

// formatErr prints the error with proper formatting.
func formatErr(err error) {
	format := output.FormatText
	if formatter != nil {
		format = formatter.Format()
	}
	if fmtErr := output.FormatError(os.Stderr, err, format); fmtErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v (formatting failed: %v)\n", err, fmtErr)
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return sigilerr.ExitCode(err)
}

// initGlobals initializes global configuration, logger, and formatter.
//
//nolint:gocognit,gocyclo // Initialization logic requires multiple conditional branches
func initGlobals(cmd *cobra.Command) error {
	// Determine home directory
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	// Load or create config
	configPath := config.Path(home)
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Expected case: no config file yet, use defaults
			cfg = config.Defaults()
			cfg.Home = home
		} else {
			// Unexpected error: log warning but continue with defaults
			fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
			cfg = config.Defaults()
			cfg.Home = home
		}
	}

	// Apply environment variable overrides
	config.ApplyEnvironment(cfg)

	// Override with command-line flags
	if homeDir != "" {
		cfg.Home = homeDir
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}

	// Expand tilde in Home path if present
	if strings.HasPrefix(cfg.Home, "~/") {
		if userHome, homeErr := os.UserHomeDir(); homeErr == nil {
			cfg.Home = filepath.Join(userHome, cfg.Home[2:])
		}
	}

	// Initialize logger
	logLevel := config.ParseLogLevel(cfg.Logging.Level)
	logger, err = config.NewLogger(logLevel, cfg.Logging.File)
	if err != nil {
		// Use null logger if we can't create the file
		logger = config.NullLogger()
	}

	// Initialize formatter
	explicitFormat := output.ParseFormat(cfg.Output.DefaultFormat)
	detectedFormat := output.DetectFormat(os.Stdout, explicitFormat)
	formatter = output.NewFormatter(detectedFormat, os.Stdout)

	// Create command context
	cmdCtx = NewCommandContext(cfg, logger, formatter)

	// Also store in cobra context for context-based access
	// This allows commands to use GetCmdContext(cmd) instead of globals
	SetCmdContext(cmd, cmdCtx)

	return nil
}

// cleanup releases resources.
func cleanup() {
	if logger != nil {
		if closeErr := logger.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close logger: %v\n", closeErr)
		}
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() *config.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

// Context returns the global command context.
func Context() *CommandContext {
	return cmdCtx
}

// buildInfo holds the version metadata passed to Execute, set at build time
// via ldflags and threaded into the version command.
//
//nolint:gochecknoglobals // Version info set at build time via ldflags
var buildInfo BuildInfo

// versionCheck enables an online check against the latest GitHub release.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var versionCheck bool

// versionCmd shows version information.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the version, build commit, and build date, optionally checking GitHub for a newer release.`,
	Example: `  shamirmpc version
  shamirmpc version --check`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if formatter != nil && formatter.Format() == output.FormatJSON {
			ver := buildInfo.Version
			if ver == "" {
				ver = "dev"
			}
			commit := buildInfo.Commit
			if commit == "" {
				commit = "unknown"
			}
			date := buildInfo.Date
			if date == "" {
				date = "unknown"
			}
			cmd.Println("{")
			cmd.Printf(`  "version": "%s",`+"\n", ver)
			cmd.Printf(`  "commit": "%s",`+"\n", commit)
			cmd.Printf(`  "date": "%s"`+"\n", date)
			cmd.Println("}")
		} else {
			cmd.Printf("shamirmpc version %s\n", formatVersion(buildInfo))
		}

		if !versionCheck {
			return nil
		}
		return reportLatestRelease(cmd)
	},
}

// reportLatestRelease queries GitHub for the latest release and prints
// whether the running build is current.
func reportLatestRelease(cmd *cobra.Command) error {
	ctx, cancel := contextWithTimeout(cmd, version.DefaultTimeout)
	defer cancel()

	client := version.NewClient()
	release, err := client.GetLatestRelease(ctx, repoOwner, repoName)
	if err != nil {
		return sigilerr.Wrap(sigilerr.ErrInvalidParam, "checking for updates: %v", err)
	}

	if version.IsNewerVersion(buildInfo.Version, release.TagName) {
		cmd.Printf("A newer release is available: %s (you have %s)\n", release.TagName, formatVersion(buildInfo))
	} else {
		cmd.Println("You are running the latest release.")
	}
	return nil
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupShare, Title: "Secret Sharing:"},
		&cobra.Group{ID: groupMPC, Title: "MPC Operations:"},
		&cobra.Group{ID: groupDemo, Title: "Demos:"},
		&cobra.Group{ID: groupConfig, Title: "Configuration:"},
	)

	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "shamirmpc data directory (default: ~/.shamir-mpc)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
