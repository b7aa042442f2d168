package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/skylex-dev/skylex/internal/common/httpclient"
	"github.com/skylex-dev/skylex/internal/common/logtrace"
	"github.com/skylex-dev/skylex/internal/versions"
	"github.com/skylex-dev/skylex/pkg/xrpc"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// Global flags
	jsonOutput bool
	configFile string
	logLevel   string
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)
var fieldLabel = color.New(color.FgCyan)
var handleLabel = color.New(color.Bold)

// out is where human readable output goes
var out io.Writer = os.Stdout

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "skylex [command] [flags]",
	Short: "skylex - a command line client for Bluesky and the AT Protocol",
	Long: `skylex talks to your PDS over XRPC. It reads your profile and social graph,
your timeline, your direct messages, and manages your account email.

Examples:
  # Point skylex at your PDS and sign in
  skylex config --server bsky.social
  skylex login --identifier alice.bsky.social --password app-password

  # List who follows an account
  skylex followers alice.bsky.social --limit 50

  # Open a conversation and send a message
  skylex convo for-members did:plc:abc123
  skylex convo send CONVO_ID "hello"`,
	PersistentPreRunE: preRunHandlePersistents,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to $"+EnvLogLevel)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newLoginCmd())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(map[string]string{
				"error": err.Error(),
			})
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// preRunHandlePersistents loads the environment, sets up logging and loads
// the config file for every command that talks to a server.
func preRunHandlePersistents(cmd *cobra.Command, args []string) error {
	loadEnv()
	if logLevel == "" {
		logLevel = os.Getenv(EnvLogLevel)
	}
	logtrace.InitLogger(logLevel)

	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}

	if !needsConfig(cmd) {
		return nil
	}
	if err := LoadConfig(configFile); err != nil {
		if isConfigNotFound(err) {
			return errors.New("skylex config file not found. Configure skylex with \"skylex config --server <pds>\" first")
		}
		return err
	}
	return nil
}

func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "config", "version", "help", "completion":
			return false
		}
	}
	return true
}

// newSender builds the transport for cfg. Tests replace it.
var newSender = func(cfg *Config) xrpc.Sender {
	return httpclient.NewClient(httpclient.ClientOptions{
		Timeout: cfg.Timeout,
		Retries: cfg.Retries,
		Logger:  &log.Logger,
	})
}

// newXRPCClient returns a client for the loaded config.
func newXRPCClient() (*xrpc.Client, error) {
	cfg := GetConfig()
	if cfg == nil {
		return nil, errors.New("no configuration loaded")
	}
	return xrpc.NewClient(cfg, newSender(cfg)), nil
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of skylex",
		Run: func(cmd *cobra.Command, args []string) {
			configPath := configFile
			if configPath == "" {
				configPath = "unknown"
			}

			if jsonOutput {
				printJSON(map[string]string{
					"version":     versions.Version,
					"config_file": configPath,
				})
			} else {
				fmt.Fprintf(out, "skylex %s\n", versions.Version)
				fmt.Fprintf(out, "Config file: %s\n", configPath)
			}
		},
	}
}

// printJSON prints data as indented JSON to stdout
func printJSON(data any) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintln(out, string(jsonData))
}

// printField prints a labelled value, skipping empty ones.
func printField(label, value string) {
	if value == "" {
		return
	}
	fieldLabel.Fprintf(out, "%s: ", label)
	fmt.Fprintln(out, value)
}

// printOutput prints v as JSON or with the human printer.
func printOutput(v any, human func()) {
	if jsonOutput {
		printJSON(v)
		return
	}
	human()
}

func printCursor(cursor string) {
	if cursor != "" {
		fmt.Fprintln(out)
		printField("Next cursor", cursor)
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
