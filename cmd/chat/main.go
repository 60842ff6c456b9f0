package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhouzirui/mindcare/internal/config"
	"github.com/zhouzirui/mindcare/internal/logging"
	"github.com/zhouzirui/mindcare/internal/tui"
	"github.com/zhouzirui/mindcare/internal/widget"
)

var (
	endpoint string
	once     string
	logFile  string
	logLevel string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mindcare-chat",
	Short: "Terminal client for the mindcare chat backend",
	Long: `mindcare-chat sends what you type to the backend's /chat endpoint and shows
the assistant's reply together with the emotion parameters it returned.

Run without flags to start the interactive screen, or pass --once to send a
single message and print the result.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		cfg, err := config.LoadClient()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("endpoint") {
			endpoint = cfg.Endpoint
		}
		if !cmd.Flags().Changed("log-file") {
			logFile = cfg.Log.File
		}
		if !cmd.Flags().Changed("log-level") {
			logLevel = cfg.Log.Level
		}

		// the interactive screen owns the terminal
		logger, err = logging.ForTerminalUI(logFile, logLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client := widget.NewClient(endpoint, nil)
		if cmd.Flags().Changed("once") {
			return runOnce(ctx, client, once)
		}
		return runInteractive(ctx, client)
	},
}

func init() {
	rootCmd.Flags().StringVar(&endpoint, "endpoint", widget.DefaultEndpoint, "chat endpoint URL (env CHAT_ENDPOINT)")
	rootCmd.Flags().StringVar(&once, "once", "", "send a single message, print the reply and exit")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file (env LOG_FILE)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (env LOG_LEVEL)")
}

func runOnce(ctx context.Context, client *widget.Client, text string) error {
	w := widget.New(widget.NewTextSurface(os.Stdout), client, logger)
	text, ok := w.Submit(text)
	if !ok {
		return fmt.Errorf("--once needs a non-empty message")
	}
	if err := w.SendMessage(ctx, text); err != nil {
		return errExchangeFailed
	}
	return nil
}

func runInteractive(ctx context.Context, client *widget.Client) error {
	model := tui.New(ctx, client, client.Endpoint(), logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("chat screen: %w", err)
	}
	return nil
}

// errExchangeFailed only sets the exit code; the failure is already on stdout.
var errExchangeFailed = errors.New("exchange failed")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errExchangeFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
