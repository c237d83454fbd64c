package commands

import (
	"github.com/spf13/cobra"

	"github.com/diogo/forecastchat/internal/session"
)

// NewChatCmd creates the chat command
func NewChatCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive forecast view",
		Long: `Open the forecast view: a chat with the forecast server next to a chart
of the last 60 days of history and the forecast window.

The connection is opened once. If it drops, restart forecastchat.
Type 'exit', 'quit', or press Esc to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps == nil {
				deps = NewDependencies()
			}
			return runChat(deps)
		},
	}
}

var chatCmd = NewChatCmd(nil)

func runChat(deps *Dependencies) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs only go to the file
	logger, closer, err := setupLogging(cfg, false)
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.Info("starting chat", "endpoint", cfg.Endpoint, "version", Version)

	sess := session.New(cfg.Endpoint, session.WithLogger(logger))
	return deps.TUI.RunChat(sess, cfg)
}
