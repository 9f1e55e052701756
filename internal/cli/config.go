package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/shamir-mpc/internal/config"
	"github.com/mrz1836/shamir-mpc/internal/output"
	sigilerr "github.com/mrz1836/shamir-mpc/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify shamirmpc configuration settings.`,
}

// configInitCmd initializes the configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.shamir-mpc/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.`,
	Example: `  shamirmpc config init
  shamirmpc config init --force`,
	RunE: runConfigInit,
}

// configShowCmd shows the current configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:     "show",
	Short:   "Show current configuration",
	Long:    `Display the current configuration settings.`,
	Example: `  shamirmpc config show
  shamirmpc config show -o json`,
	RunE: runConfigShow,
}

// configGetCmd gets a specific configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value by its path.

The path uses dot notation to navigate the configuration tree.`,
	Example: `  shamirmpc config get mpc.default_threshold
  shamirmpc config get output.default_format
  shamirmpc config get logging.level`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value by its path.

The path uses dot notation to navigate the configuration tree.
The configuration file will be updated immediately.`,
	Example: `  shamirmpc config set mpc.default_threshold 3
  shamirmpc config set output.default_format json
  shamirmpc config set logging.level debug`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	configCmd.GroupID = groupConfig
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	configPath := config.Path(cfg.Home)

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !configForce {
		return sigilerr.WithSuggestion(
			sigilerr.ErrConfigInvalid,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	// Ensure directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Create default config
	defaultCfg := config.Defaults()
	defaultCfg.Home = cfg.Home

	// Write config file
	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - mpc.default_threshold: Default reconstruction threshold")
	outln(w, "  - mpc.default_parties: Default number of shares to generate")
	outln(w, "  - security.export_encryption: Encrypt exported shares at rest")
	outln(w, "  - output.default_format: Output format (text/json)")
	outln(w, "  - logging.level: Log level (off/error/debug)")

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	format := formatter.Format()

	if format == output.FormatJSON {
		return displayConfigJSON(w, cfg)
	}

	return displayConfigText(w, cfg)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	path := args[0]

	value, err := getConfigValue(cfg, path)
	if err != nil {
		return sigilerr.WithDetails(
			sigilerr.ErrInvalidParam,
			map[string]string{"path": path},
		)
	}

	w := cmd.OutOrStdout()
	outln(w, value)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path := args[0]
	value := args[1]

	// Validate the path exists
	if _, err := getConfigValue(cfg, path); err != nil {
		return sigilerr.WithDetails(
			sigilerr.ErrInvalidParam,
			map[string]string{"path": path},
		)
	}

	// Load current config from file
	configPath := config.Path(cfg.Home)
	currentCfg, err := config.Load(configPath)
	if err != nil {
		// If file doesn't exist, start with defaults
		currentCfg = config.Defaults()
	}

	// Update the value
	if err := setConfigValue(currentCfg, path, value); err != nil {
		return fmt.Errorf("setting config value: %w", err)
	}

	// Save updated config
	if err := config.Save(currentCfg, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	w := cmd.OutOrStdout()
	out(w, "Set %s = %s\n", path, value)

	return nil
}

// getConfigValue retrieves a value from the config using dot notation.
func getConfigValue(c *config.Config, path string) (string, error) {
	parts := strings.Split(path, ".")

	if len(parts) == 1 && parts[0] == "home" {
		return c.Home, nil
	}

	if len(parts) != 2 {
		return "", sigilerr.WithDetails(sigilerr.ErrInvalidParam, map[string]string{"path": path})
	}

	switch parts[0] {
	case "mpc":
		return getMPCValue(c, parts[1])
	case "security":
		return getSecurityValue(c, parts[1])
	case "output":
		return getOutputValue(c, parts[1])
	case "logging":
		return getLoggingValue(c, parts[1])
	default:
		return "", sigilerr.WithDetails(sigilerr.ErrInvalidParam, map[string]string{"section": parts[0]})
	}
}

func getMPCValue(c *config.Config, key string) (string, error) {
	switch key {
	case "default_threshold":
		return strconv.Itoa(c.MPC.DefaultThreshold), nil
	case "default_parties":
		return strconv.Itoa(c.MPC.DefaultParties), nil
	default:
		return "", sigilerr.WithDetails(sigilerr.ErrInvalidParam, map[string]string{"section": "mpc", "key": key})
	}
}

func getSecurityValue(c *config.Config, key string) (string, error) {
	switch key {
	case "memory_lock":
		return strconv.FormatBool(c.Security.MemoryLock), nil
	case "export_encryption":
		return strconv.FormatBool(c.Security.ExportEncryption), nil
	case "scrypt_work_factor":
		return strconv.Itoa(c.Security.ScryptWorkFactor), nil
	case "identity_file":
		return c.Security.IdentityFile, nil
	default:
		return "", sigilerr.WithDetails(sigilerr.ErrInvalidParam, map[string]string{"section": "security", "key": key})
	}
}

func getOutputValue(c *config.Config, key string) (string, error) {
	switch key {
	case "default_format":
		return c.Output.DefaultFormat, nil
	case "verbose":
		return strconv.FormatBool(c.Output.Verbose), nil
	case "color":
		return c.Output.Color, nil
	default:
		return "", sigilerr.WithDetails(sigilerr.ErrInvalidParam, map[string]string{"section": "output", "key": key})
	}
}

func getLoggingValue(c *config.Config, key string) (string, error) {
	switch key {
	case "level":
		return c.Logging.Level, nil
	case "file":
		return c.Logging.File, nil
	default:
		return "", sigilerr.WithDetails(sigilerr.ErrInvalidParam, map[string]string{"section": "logging", "key": key})
	}
}

// setConfigValue sets a value in the config using dot notation.
func setConfigValue(c *config.Config, path, value string) error {
	parts := strings.Split(path, ".")

	if len(parts) == 1 && parts[0] == "home" {
		c.Home = value
		return nil
	}

	if len(parts) != 2 {
		return sigilerr.WithDetails(sigilerr.ErrInvalidParam, map[string]string{"path": path})
	}

	switch parts[0] {
	case "mpc":
		return setMPCValue(c, parts[1], value)
	case "security":
		return setSecurityValue(c, parts[1], value)
	case "output":
		return setOutputValue(c, parts[1], value)
	case "logging":
		return setLoggingValue(c, parts[1], value)
	default:
		return sigilerr.WithDetails(sigilerr.ErrInvalidParam, map[string]string{"section": parts[0]})
	}
}

func setMPCValue(c *config.Config, key, value string) error {
	switch key {
	case "default_threshold":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return sigilerr.WithDetails(sigilerr.ErrInvalidThreshold, map[string]string{"value": value})
		}
		c.MPC.DefaultThreshold = n
		return nil
	case "default_parties":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return sigilerr.WithDetails(sigilerr.ErrInvalidParam, map[string]string{"value": value})
		}
		c.MPC.DefaultParties = n
		return nil
	default:
		return sigilerr.WithDetails(sigilerr.ErrInvalidParam, map[string]string{"section": "mpc", "key": key})
	}
}

func setSecurityValue(c *config.Config, key, value string) error {
	switch key {
	case "memory_lock":
		c.Security.MemoryLock = value == "true"
		return nil
	case "export_encryption":
		c.Security.ExportEncryption = value == "true"
		return nil
	case "scrypt_work_factor":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return sigilerr.WithDetails(sigilerr.ErrInvalidParam, map[string]string{"value": value})
		}
		c.Security.ScryptWorkFactor = n
		return nil
	case "identity_file":
		c.Security.IdentityFile = value
		return nil
	default:
		return sigilerr.WithDetails(sigilerr.ErrInvalidParam, map[string]string{"section": "security", "key": key})
	}
}

func setOutputValue(c *config.Config, key, value string) error {
	switch key {
	case "default_format":
		if value != "text" && value != "json" && value != "auto" {
			return sigilerr.WithDetails(
				sigilerr.ErrInvalidParam,
				map[string]string{"value": value, "valid": "text, json, or auto"},
			)
		}
		c.Output.DefaultFormat = value
		return nil
	case "verbose":
		c.Output.Verbose = value == "true"
		return nil
	case "color":
		if value != "auto" && value != "always" && value != "never" {
			return sigilerr.WithDetails(
				sigilerr.ErrInvalidParam,
				map[string]string{"value": value, "valid": "auto, always, or never"},
			)
		}
		c.Output.Color = value
		return nil
	default:
		return sigilerr.WithDetails(sigilerr.ErrInvalidParam, map[string]string{"section": "output", "key": key})
	}
}

func setLoggingValue(c *config.Config, key, value string) error {
	switch key {
	case "level":
		validLevels := []string{"off", "error", "debug"}
		for _, l := range validLevels {
			if value == l {
				c.Logging.Level = value
				return nil
			}
		}
		return sigilerr.WithDetails(
			sigilerr.ErrInvalidParam,
			map[string]string{"value": value, "valid": "off, error, or debug"},
		)
	case "file":
		c.Logging.File = value
		return nil
	default:
		return sigilerr.WithDetails(sigilerr.ErrInvalidParam, map[string]string{"section": "logging", "key": key})
	}
}

// displayConfigText shows the config in text format.
func displayConfigText(w interface {
	Write(p []byte) (n int, err error)
}, c *config.Config,
) error {
	outln(w, "Configuration:")
	outln(w)
	out(w, "  Home: %s\n", c.Home)
	outln(w)
	outln(w, "  MPC:")
	out(w, "    default_threshold: %d\n", c.MPC.DefaultThreshold)
	out(w, "    default_parties: %d\n", c.MPC.DefaultParties)
	outln(w)
	outln(w, "  Security:")
	out(w, "    memory_lock: %t\n", c.Security.MemoryLock)
	out(w, "    export_encryption: %t\n", c.Security.ExportEncryption)
	out(w, "    scrypt_work_factor: %d\n", c.Security.ScryptWorkFactor)
	identityFile := c.Security.IdentityFile
	if identityFile == "" {
		identityFile = "(not configured)"
	}
	out(w, "    identity_file: %s\n", identityFile)
	outln(w)
	outln(w, "  Output:")
	out(w, "    default_format: %s\n", c.Output.DefaultFormat)
	out(w, "    verbose: %t\n", c.Output.Verbose)
	out(w, "    color: %s\n", c.Output.Color)
	outln(w)
	outln(w, "  Logging:")
	out(w, "    level: %s\n", c.Logging.Level)
	out(w, "    file: %s\n", c.Logging.File)

	return nil
}

// displayConfigJSON shows the config in JSON format.
func displayConfigJSON(w interface {
	Write(p []byte) (n int, err error)
}, c *config.Config,
) error {
	type mpcJSON struct {
		DefaultThreshold int `json:"default_threshold"`
		DefaultParties   int `json:"default_parties"`
	}
	type securityJSON struct {
		MemoryLock       bool   `json:"memory_lock"`
		ExportEncryption bool   `json:"export_encryption"`
		ScryptWorkFactor int    `json:"scrypt_work_factor"`
		IdentityFile     string `json:"identity_file,omitempty"`
	}
	type configJSON struct {
		Version int          `json:"version"`
		Home    string       `json:"home"`
		MPC     mpcJSON      `json:"mpc"`
		Security securityJSON `json:"security"`
		Output  struct {
			DefaultFormat string `json:"default_format"`
			Color         string `json:"color"`
			Verbose       bool   `json:"verbose"`
		} `json:"output"`
		Logging struct {
			Level string `json:"level"`
			File  string `json:"file"`
		} `json:"logging"`
	}

	outCfg := configJSON{
		Version: c.Version,
		Home:    c.Home,
		MPC: mpcJSON{
			DefaultThreshold: c.MPC.DefaultThreshold,
			DefaultParties:   c.MPC.DefaultParties,
		},
		Security: securityJSON{
			MemoryLock:       c.Security.MemoryLock,
			ExportEncryption: c.Security.ExportEncryption,
			ScryptWorkFactor: c.Security.ScryptWorkFactor,
			IdentityFile:     c.Security.IdentityFile,
		},
	}
	outCfg.Output.DefaultFormat = c.Output.DefaultFormat
	outCfg.Output.Color = c.Output.Color
	outCfg.Output.Verbose = c.Output.Verbose
	outCfg.Logging.Level = c.Logging.Level
	outCfg.Logging.File = c.Logging.File

	return writeJSON(w, outCfg)
}
