package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/forecastchat/internal/chart"
	"github.com/diogo/forecastchat/internal/config"
	apierrors "github.com/diogo/forecastchat/internal/errors"
	"github.com/diogo/forecastchat/internal/models"
	"github.com/diogo/forecastchat/internal/render"
	"github.com/diogo/forecastchat/internal/session"
	"github.com/diogo/forecastchat/internal/tui"
)

// initialForecastWait bounds how long a one-shot command waits for the
// server's first forecast before sending anyway
const initialForecastWait = 3 * time.Second

// chartHeight is the number of lines used by the one-shot chart
const chartHeight = 20

var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)
)

// queryResult is what a one-shot exchange produced
type queryResult struct {
	Reply   string
	Payload *models.ForecastPayload
}

// exchange opens sess, waits briefly for the initial forecast, sends command
// and waits for the first reply carrying a message. The latest forecast
// payload seen on the way is kept.
func exchange(ctx context.Context, sess tui.SessionInterface, command string, initialWait time.Duration) (*queryResult, error) {
	if err := sess.Start(ctx); err != nil {
		return nil, err
	}
	events := sess.Events()
	res := &queryResult{}

	for {
		ev, err := nextEvent(ctx, events)
		if err != nil {
			return nil, err
		}
		if ev.Kind == session.EventError {
			return nil, ev.Err
		}
		if ev.Kind == session.EventOpen {
			break
		}
	}

	grace := time.NewTimer(initialWait)
	defer grace.Stop()

wait:
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil, apierrors.ErrSessionClosed
			}
			if ev.Kind == session.EventError {
				return nil, ev.Err
			}
			if ev.Kind == session.EventFrame && ev.Frame.Payload != nil {
				res.Payload = ev.Frame.Payload
				break wait
			}
		case <-grace.C:
			break wait
		case <-ctx.Done():
			return nil, timeoutError(ctx)
		}
	}

	if err := sess.Send(command); err != nil {
		return nil, err
	}

	for {
		ev, err := nextEvent(ctx, events)
		if err != nil {
			return res, err
		}
		switch ev.Kind {
		case session.EventError:
			return res, ev.Err
		case session.EventFrame:
			if ev.Frame.Payload != nil {
				res.Payload = ev.Frame.Payload
			}
			if ev.Frame.HasMessage && ev.Frame.Message != "" {
				res.Reply = ev.Frame.Message
				return res, nil
			}
		}
	}
}

// nextEvent waits for the next session event or the context deadline
func nextEvent(ctx context.Context, events <-chan session.Event) (session.Event, error) {
	select {
	case ev, ok := <-events:
		if !ok {
			return session.Event{}, apierrors.ErrSessionClosed
		}
		return ev, nil
	case <-ctx.Done():
		return session.Event{}, timeoutError(ctx)
	}
}

func timeoutError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("timed out waiting for the forecast server: %w", ctx.Err())
	}
	return ctx.Err()
}

// runQuery sends a single command and prints the reply and chart
func runQuery(cmd *cobra.Command, command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return fmt.Errorf("command cannot be empty")
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	logger, closer, err := setupLogging(cfg, true)
	if err != nil {
		return err
	}
	defer closer.Close()

	decorated := isStdoutTTY()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFlag)
	defer cancel()

	sess := session.New(cfg.Endpoint,
		session.WithLogger(logger),
		session.WithHandshakeTimeout(timeoutFlag),
	)
	defer sess.Close()

	var spin *spinner
	if decorated {
		spin = newSpinner("Talking to " + cfg.Endpoint)
		spin.start()
	}

	start := time.Now()
	res, err := exchange(ctx, sess, command, initialForecastWait)
	if err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return err
	}
	if spin != nil {
		spin.stopWithSuccess("Done")
	}
	logger.Debug("one-shot exchange finished", "took", time.Since(start).Round(time.Millisecond))

	if cfg.CopyToClipboard {
		if err := clipboard.WriteAll(res.Reply); err != nil {
			logger.Warn("failed to copy to clipboard", "error", err)
		} else if decorated {
			fmt.Fprintln(os.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(res.Reply), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	}

	return printResult(cmd.OutOrStdout(), res, cfg, getTerminalWidth(), decorated)
}

// printResult writes the reply and, unless disabled, the forecast chart
func printResult(w io.Writer, res *queryResult, cfg config.Config, width int, decorated bool) error {
	bubbleWidth := min(max(width-4, 40), 120)

	if decorated {
		tui.UpdateTheme(cfg.TUITheme)

		rendered, err := render.Markdown(res.Reply, render.OptionsFromConfig(cfg.Markdown).WithWidth(bubbleWidth-4))
		if err != nil {
			rendered = res.Reply
		}
		fmt.Fprintln(w, assistantLabelStyle.Render("✦ Forecaster"))
		fmt.Fprintln(w, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
	} else {
		fmt.Fprintln(w, res.Reply)
	}

	if noChartFlag || res.Payload == nil {
		return nil
	}

	styles := chart.DefaultStyles()
	if decorated {
		styles = tui.ChartStyles()
	}

	renderer := chart.NewRenderer(
		chart.WithWindow(cfg.HistoryWindow),
		chart.WithMaxTicks(cfg.MaxTicks),
		chart.WithStyles(styles),
	)
	defer renderer.Release()

	renderer.Render(*res.Payload)
	_, err := fmt.Fprintln(w, renderer.View(bubbleWidth, chartHeight))
	return err
}
