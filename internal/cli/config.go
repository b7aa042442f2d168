package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/skylex-dev/skylex/internal/versions"
	"github.com/skylex-dev/skylex/pkg/xrpc"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// DefaultMaxBlobSize bounds blob uploads when max_blob_size is not set.
const DefaultMaxBlobSize = "1MB"

// Environment variables that override the config file.
const (
	EnvServiceEndpoint = "SKYLEX_SERVICE_ENDPOINT"
	EnvAccessJwt       = "SKYLEX_ACCESS_JWT"
	EnvLogLevel        = "SKYLEX_LOG_LEVEL"
)

// Config is the skylex configuration file. It also serves as the session for
// every XRPC call the CLI makes.
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version"`
	// Server is the PDS of the account, e.g. https://bsky.social
	Server string `yaml:"service_endpoint"`
	Handle string `yaml:"handle,omitempty"`
	Did    string `yaml:"did,omitempty"`
	// AccessJwt authenticates calls; RefreshJwt is stored but never used
	AccessJwt  string `yaml:"access_jwt,omitempty"`
	RefreshJwt string `yaml:"refresh_jwt,omitempty"`
	// Retries is the number of extra attempts for failed queries
	Retries uint          `yaml:"retries,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// MaxBlobSize caps "blob upload", e.g. 1MB or 512KB
	MaxBlobSize string `yaml:"max_blob_size,omitempty"`
}

var _ xrpc.Session = (*Config)(nil)

var config *Config

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/skylex on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "skylex", DefaultConfigFile), nil
}

// loadEnv reads .env from the working directory if it exists. Variables that
// are already set win.
func loadEnv() {
	_ = godotenv.Load() // no error if .env doesn't exist
}

// LoadConfig loads the configuration from file and applies environment overrides.
func LoadConfig(file string) error {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}

	yamlStr, err := os.ReadFile(file)
	if err != nil {
		return pkgerrors.Wrap(err, "unable to read config file")
	}

	c, err := parseConfig(yamlStr)
	if err != nil {
		return err
	}
	config = c
	return nil
}

func parseConfig(yamlStr []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(yamlStr, &c); err != nil {
		return nil, pkgerrors.Wrap(err, "unable to parse config file")
	}
	if !versions.IsConfigCompatible(c.Version) {
		return nil, pkgerrors.Errorf("config format version %q is not supported by skylex %s; run \"skylex config --server\" to recreate it",
			c.Version, versions.Version)
	}

	c.applyEnv()
	if err := c.ValidateConfig(); err != nil {
		return nil, pkgerrors.Wrap(err, "invalid config")
	}
	return &c, nil
}

func (cfg *Config) applyEnv() {
	if v := os.Getenv(EnvServiceEndpoint); v != "" {
		cfg.Server = v
	}
	if v := os.Getenv(EnvAccessJwt); v != "" {
		cfg.AccessJwt = v
	}
	cfg.Server = MorphServer(cfg.Server)
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// WriteConfig writes the configuration to file with owner-only permissions.
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), 0o700)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	err = os.WriteFile(file, yamlStr, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// ValidateConfig checks for required fields and proper formatting
func (cfg *Config) ValidateConfig() error {
	if cfg.Server == "" {
		return errors.New("service_endpoint is required")
	}
	if !strings.HasPrefix(cfg.Server, "http://") && !strings.HasPrefix(cfg.Server, "https://") {
		return errors.New("service_endpoint must start with http:// or https://")
	}
	if cfg.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if _, err := cfg.MaxBlobBytes(); err != nil {
		return err
	}
	return nil
}

// MorphServer ensures the server URL is properly formatted
// Adds https:// prefix if missing and removes trailing slashes
func MorphServer(server string) string {
	server = strings.TrimSpace(server)
	if server == "" {
		return server
	}

	server = strings.TrimRight(server, "/")

	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "https://" + server
	}

	return server
}

// MaxBlobBytes returns the upload cap in bytes.
func (cfg *Config) MaxBlobBytes() (uint64, error) {
	s := cfg.MaxBlobSize
	if s == "" {
		s = DefaultMaxBlobSize
	}
	size, err := datasize.ParseString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid max_blob_size %q: %w", s, err)
	}
	return size.Bytes(), nil
}

// TokenExpiry reads the exp claim of the access token. The signature is not
// checked; the PDS does that. ok is false when there is no token or no claim.
func (cfg *Config) TokenExpiry() (exp time.Time, ok bool) {
	if cfg.AccessJwt == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(cfg.AccessJwt, claims); err != nil {
		return time.Time{}, false
	}
	date, err := claims.GetExpirationTime()
	if err != nil || date == nil {
		return time.Time{}, false
	}
	return date.Time, true
}

// IsActive reports whether the config holds an access token that has not
// expired. Tokens without a readable expiry are assumed to be valid.
func (cfg *Config) IsActive() bool {
	if cfg == nil || cfg.AccessJwt == "" {
		return false
	}
	if exp, ok := cfg.TokenExpiry(); ok && !exp.After(timeNow()) {
		return false
	}
	return true
}

func (cfg *Config) AccessToken() string {
	return cfg.AccessJwt
}

func (cfg *Config) ServiceEndpoint() string {
	return cfg.Server
}

// clearSession forgets the account but keeps connection settings.
func (cfg *Config) clearSession() {
	cfg.Handle = ""
	cfg.Did = ""
	cfg.AccessJwt = ""
	cfg.RefreshJwt = ""
}

var timeNow = time.Now

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration: the PDS to talk to and the stored session.

Examples:
  # Point skylex at a PDS (creates the config file)
  skylex config --server bsky.social

  # Show the current configuration
  skylex config show`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverFlag, _ := cmd.Flags().GetString("server")
		if serverFlag != "" {
			return setServerConfig(serverFlag)
		}

		cmd.Help()
		return nil
	},
}

// configShowCmd prints the configuration without secrets
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := LoadConfig(configFile); err != nil {
			return err
		}
		cfg := GetConfig()
		view := map[string]any{
			"config_file":      configFile,
			"version":          cfg.Version,
			"service_endpoint": cfg.Server,
			"handle":           cfg.Handle,
			"did":              cfg.Did,
			"logged_in":        cfg.IsActive(),
		}
		if jsonOutput {
			printJSON(view)
			return nil
		}
		printField("Config file", configFile)
		printField("Server", cfg.Server)
		printField("Handle", cfg.Handle)
		printField("DID", cfg.Did)
		printField("Logged in", fmt.Sprint(cfg.IsActive()))
		return nil
	},
}

// configClearCmd represents the config clear command
var configClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the stored session",
	Long: `Forget the stored session. This removes the handle, DID and tokens from the
config file but keeps the server. Run "skylex login" to sign in again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := LoadConfig(configFile); err != nil {
			return err
		}
		cfg := GetConfig()
		cfg.clearSession()

		if err := cfg.WriteConfig(configFile); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		if jsonOutput {
			printJSON(map[string]int{"result": 1})
		} else {
			okLabel.Println("✓ Session cleared")
		}
		return nil
	},
}

func init() {
	configCmd.Flags().String("server", "", "Set the PDS URL (e.g. bsky.social)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configClearCmd)
	rootCmd.AddCommand(configCmd)
}

// setServerConfig writes a fresh config for server, dropping any stored session.
func setServerConfig(server string) error {
	cfg := &Config{
		Version: versions.ConfigFormatVersion,
		Server:  MorphServer(server),
	}
	if existing, err := readExistingConfig(configFile); err == nil {
		cfg.Retries = existing.Retries
		cfg.Timeout = existing.Timeout
		cfg.MaxBlobSize = existing.MaxBlobSize
	}
	if err := cfg.ValidateConfig(); err != nil {
		return err
	}

	if err := cfg.WriteConfig(configFile); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]string{
			"server":      cfg.Server,
			"config_file": configFile,
		})
	} else {
		printField("Server configured", cfg.Server)
		printField("Config file", configFile)
	}
	return nil
}

// readExistingConfig reads file without the version gate or env overrides.
func readExistingConfig(file string) (*Config, error) {
	yamlStr, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(yamlStr, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func isConfigNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
