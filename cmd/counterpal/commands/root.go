package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/counterpal/counterpal/cmd/counterpal/internal/config"
)

var (
	// Global flags
	verbose     bool
	contextName string

	// Global configuration (loaded at init time)
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "counterpal",
	Short: "Voice assistant for a small food counter",
	Long: `counterpal - an AI assistant for a small food counter.

It listens to the counter microphone, recognizes spoken orders against
the menu, surfaces shop insights and customer sentiment on a terminal
dashboard, counts tray photos on demand, and exports session reports
as CSV.

Configuration is stored in the OS config directory:
  macOS:   ~/Library/Application Support/counterpal/
  Linux:   ~/.config/counterpal/
  Windows: %AppData%/counterpal/

The API key is read from the GEMINI_API_KEY environment variable, or
from the context's counterpal.yaml.

Examples:
  # Create a context and set the API key
  counterpal config add-context shop
  counterpal config use-context shop
  counterpal config set api_key YOUR_KEY

  # Run the assistant with a recorded mic stream
  counterpal serve --mic counter.wav --out ./reports

  # Count a tray photo
  counterpal count --image tray.jpg --notes "only samosas"`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "configuration context (default: current)")
}

// configLoadErr stores the error from config.Load() for deferred
// reporting, so commands like version work without a config dir.
var configLoadErr error

func initConfig() {
	cfg, err := config.Load()
	if err != nil {
		configLoadErr = err
		return
	}
	globalConfig = cfg
}

func initLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// GetConfig returns the global configuration.
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// loadService resolves the selected context and loads its assistant
// configuration. Commands that can run without any context (env API
// key, built-in menu) treat a missing context as a zero config.
func loadService() (contextDir string, svc *config.Service, err error) {
	cfg, err := GetConfig()
	if err != nil {
		return "", nil, err
	}
	dir, err := cfg.ResolveContext(contextName)
	if err != nil {
		if contextName == "" {
			// No context selected; run on env vars and defaults.
			return "", &config.Service{}, nil
		}
		return "", nil, err
	}
	svc, err = config.LoadService(dir)
	if err != nil {
		return "", nil, err
	}
	return dir, svc, nil
}

// requireAPIKey returns the effective API key or a fatal error.
// Credential absence is a configuration error, not a retry loop.
func requireAPIKey(svc *config.Service) (string, error) {
	key := config.APIKeyFor(svc)
	if key == "" {
		return "", fmt.Errorf("no API key: set GEMINI_API_KEY or 'counterpal config set api_key <key>'")
	}
	return key, nil
}
