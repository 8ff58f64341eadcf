package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/turbekoff/staminabot/pkg/card"
	"github.com/turbekoff/staminabot/pkg/session"
)

var (
	configPath string
	verbose    bool
	storageKey string

	config *Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "stamina",
	Short: "Stamina cards with a calculator keypad",
	Long: `stamina keeps a list of named stamina cards, each with a maximum and a
current value, and edits the current value through a calculator keypad.

The same cards can be driven from a Telegram bot, a terminal UI or
one-shot CLI commands.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		config, err = LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger, err = newLogger(config.Log, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Args:  cobra.NoArgs,
	RunE:  runBot,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Edit cards in the terminal",
	Long: `Opens the interactive card editor.

Keys:
  ↑/↓ or k/j   move between cards
  tab          select the card under the cursor
  space        mark a card, x deletes marked cards, esc cancels
  0-9 . + - * / ( ) %   keypad
  enter or =   evaluate and save
  backspace    undo, esc or c clears`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	tuiCmd.Flags().StringVar(&storageKey, "key", card.StorageKey, "Storage key of the card list")

	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(cardsCmd)
	rootCmd.AddCommand(pressCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStorage(ctx, config.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer st.close()

	bot, err := LoadBot(config, st.kv, logger)
	if err != nil {
		return fmt.Errorf("failed to connect telegram: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()
		logger.Info("starting telegram bot", zap.String("storage", config.Storage.Backend))
		if err := bot.Run(); !errors.Is(err, ErrClosed) {
			return fmt.Errorf("telegram bot: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		logger.Info("stopping telegram bot")
		if err := bot.Shutdown(shutdownCtx); err != nil && !errors.Is(err, ErrClosed) {
			logger.Error("failed to graceful shutdown telegram bot", zap.Error(err))
			return err
		}
		logger.Info("telegram bot stopped")
		return nil
	})
	return g.Wait()
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// The terminal belongs to bubbletea; log only when a file is configured.
	tuiLogger := zap.NewNop()
	if config.Log.File != "" {
		tuiLogger = logger
	}

	st, err := openStorage(ctx, config.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer st.close()

	store := card.NewStore(st.kv, storageKey, tuiLogger)
	if err := store.Load(ctx); err != nil {
		return err
	}
	s := session.New(store, tuiLogger)

	var changes <-chan struct{}
	if path := st.watchPath(storageKey); path != "" {
		fw, err := watchFile(path, tuiLogger)
		if err != nil {
			tuiLogger.Warn("live reload disabled", zap.Error(err))
		} else {
			defer fw.Close()
			changes = fw.Changes()
		}
	}

	p := tea.NewProgram(newTUIModel(ctx, s, changes, tuiLogger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
