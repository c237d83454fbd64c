// Package commands provides CLI commands for forecastchat.
package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/forecastchat/internal/config"
	"github.com/diogo/forecastchat/internal/logging"
	"github.com/diogo/forecastchat/internal/tui"
)

var (
	// Global flags
	endpointFlag string
	logFileFlag  string
	verboseFlag  bool

	// One-shot flags
	fileFlag    string
	outputFlag  string
	timeoutFlag time.Duration
	noChartFlag bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "forecastchat [command]",
	Short: "Chat with a supply chain forecast server",
	Long: `forecastchat is a terminal client for a supply chain forecast server.
It shows a chat next to a chart of recent history and the forecast, and
sends plain-language adjustments over a WebSocket.

Examples:
  forecastchat                                   Start the interactive view
  forecastchat chat -e ws://10.0.0.5:8369/ws     Use another server
  forecastchat "Increase steel by 20% next week" Send a single command
  forecastchat -f command.txt                    Read the command from a file
  echo "Less wood for 10 days" | forecastchat    Read the command from stdin
  forecastchat config set greeting false         Change a setting`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(cmd.OutOrStdout(), "forecastchat %s (built %s)\n", Version, BuildTime)
			return nil
		}

		stat, _ := os.Stdin.Stat()
		hasStdin := stat != nil && (stat.Mode()&os.ModeCharDevice) == 0

		input, ok, err := readInput(args, os.Stdin, hasStdin)
		if err != nil {
			return err
		}
		if ok {
			return runQuery(cmd, input)
		}

		if isStdoutTTY() {
			return runChat(NewDependencies())
		}
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		tui.PrintError(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&endpointFlag, "endpoint", "e", "", "Forecast server WebSocket URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Enable debug logging")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read the command from file")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save the reply to file")
	rootCmd.Flags().DurationVar(&timeoutFlag, "timeout", 30*time.Second, "Give up waiting for the server after this long")
	rootCmd.Flags().BoolVar(&noChartFlag, "no-chart", false, "Do not print the forecast chart")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
}

// readInput picks the one-shot command from, in order, the file flag,
// piped stdin or the positional argument. ok is false when there is none.
func readInput(args []string, stdin io.Reader, hasStdin bool) (input string, ok bool, err error) {
	if fileFlag != "" {
		data, err := os.ReadFile(fileFlag)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if hasStdin {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	return "", false, nil
}

// loadDotEnv reads a .env file from the working directory if there is one.
// Variables already set in the environment are kept.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// loadSettings loads .env, the config file and applies flag overrides
func loadSettings() (config.Config, error) {
	if err := loadDotEnv(); err != nil {
		return config.DefaultConfig(), err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return cfg, err
	}

	if endpointFlag != "" {
		cfg.Endpoint = endpointFlag
	}
	if logFileFlag != "" {
		cfg.LogFile = logFileFlag
	}
	if verboseFlag {
		cfg.Verbose = true
	}

	if err := config.Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// setupLogging sends logs to the log file, and to stderr when toStderr is
// set and verbose logging is on.
func setupLogging(cfg config.Config, toStderr bool) (*slog.Logger, io.Closer, error) {
	path, err := config.GetLogPath(cfg)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if cfg.Verbose {
		level = "debug"
	}

	return logging.Setup(logging.Options{
		File:   path,
		Level:  level,
		Stderr: toStderr && cfg.Verbose,
	})
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
