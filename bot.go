package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/turbekoff/staminabot/pkg/calc"
	"github.com/turbekoff/staminabot/pkg/card"
	"github.com/turbekoff/staminabot/pkg/session"
)

var (
	ErrClosed         = errors.New("bot has closed")
	ErrSessionExpired = errors.New("session has expired")
	ErrAlreadyStarted = errors.New("bot already started")
	ErrNoBotToken     = errors.New("telegram token is not configured")
)

type Bot struct {
	mc         *Memcached[*session.Session]
	kv         card.KV
	api        *tgbotapi.BotAPI
	config     *Config
	welcome    string
	help       string
	isStarted  atomic.Bool
	inShutdown atomic.Bool
	isDone     chan struct{}
	logger     *zap.Logger
}

func LoadBot(config *Config, kv card.KV, logger *zap.Logger) (*Bot, error) {
	if config.BotToken == "" {
		return nil, ErrNoBotToken
	}
	api, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:    api,
		kv:     kv,
		config: config,
		logger: logger,
		isDone: make(chan struct{}),
		mc: NewMemcached[*session.Session](
			config.SessionTTL,
			config.SessionCleanup,
		),
		welcome: strings.Join([]string{
			"Welcome! Track stamina cards and adjust them with a calculator.",
			"Create a card with /add <name> <max> or /preset, then /open the keypad.",
		}, "\n"),
		help: strings.Join([]string{
			"Help:",
			"/start - welcome message.",
			"/cards - list cards and pick one.",
			"/open - open the keypad for the selected card.",
			"/add <name> <max> - add a card.",
			"/preset [max...] - add head, torso, arms and legs.",
			"/edit <name> <max> - edit the selected card.",
			"/delete - delete the selected card.",
			"/help - send this message.",
		}, "\n"),
	}, nil
}

func (b *Bot) Run() error {
	if b.isStarted.Swap(true) {
		return ErrAlreadyStarted
	}
	defer close(b.isDone)

	updateConfig := tgbotapi.NewUpdate(b.config.BotOffset)
	updateConfig.Timeout = b.config.BotTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	for update := range updates {
		if b.inShutdown.Load() && b.mc.IsEmpty() {
			continue
		}

		if update.CallbackQuery != nil {
			if err := b.handleCallback(update.CallbackQuery); err != nil {
				b.logger.Warn("failed to handle callback", zap.Error(err))
				continue
			}
		}

		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}

		if err := b.handleCommand(update.Message); err != nil {
			b.logger.Warn("failed to send message", zap.Error(err))
		}
	}

	return ErrClosed
}

// session returns the cached session for key, rebuilding it from storage
// after expiry. fresh reports a rebuild.
func (b *Bot) session(key string) (s *session.Session, fresh bool) {
	if s, ok := b.mc.Get(key); ok {
		b.mc.Touch(key)
		return s, false
	}

	logger := b.logger.With(zap.String("session", key))
	store := card.NewStore(b.kv, storageKeyFor(key), logger)
	if err := store.Load(context.Background()); err != nil {
		logger.Warn("starting with an empty card list", zap.Error(err))
	}

	s = session.New(store, logger)
	b.mc.Set(key, s)
	return s, true
}

func (b *Bot) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return nil
}

func (b *Bot) sendMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup

	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return nil
}

func (b *Bot) updateMessage(callback *tgbotapi.CallbackQuery, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	if text == callback.Message.Text {
		return nil
	}

	edit := tgbotapi.NewEditMessageText(
		callback.Message.Chat.ID,
		callback.Message.MessageID,
		text,
	)
	edit.ReplyMarkup = markup

	if _, err := b.api.Send(edit); err != nil {
		return err
	}
	return nil
}

func (b *Bot) sendCards(chatID int64, s *session.Session) error {
	markup, ok := cardsKeyboard(s.Store().Cards(), s.Store().SelectedID())
	if !ok {
		return b.send(chatID, "No cards yet. Add one with /add <name> <max> or /preset.")
	}
	return b.sendMarkup(chatID, "Pick a card:", markup)
}

func (b *Bot) handleCommand(command *tgbotapi.Message) error {
	if command.From == nil {
		return nil
	}

	ctx := context.Background()
	chatID := command.Chat.ID
	s, _ := b.session(sessionKey(chatID, command.From.ID))
	args := command.CommandArguments()

	switch command.Command() {
	case "start":
		return b.send(chatID, b.welcome)
	case "help":
		return b.send(chatID, b.help)
	case "cards":
		return b.sendCards(chatID, s)
	case "open":
		if !s.Active() {
			return b.sendCards(chatID, s)
		}
		return b.sendMarkup(chatID, keypadText(s), keypadKeyboard)
	case "add":
		name, rawMax := splitNameMax(args)
		s.Add(ctx, name, rawMax)
		return b.sendMarkup(chatID, keypadText(s), keypadKeyboard)
	case "preset":
		s.AddPreset(ctx, presetMaxes(args))
		return b.sendCards(chatID, s)
	case "edit":
		c, ok := s.Store().Selected()
		if !ok {
			return b.send(chatID, "Select a card with /cards first.")
		}
		name, rawMax := splitNameMax(args)
		if name == "" {
			name = c.Name
		}
		if rawMax == "" {
			rawMax = calc.Format(c.Max)
		}
		if _, err := s.Edit(ctx, c.ID, name, rawMax); err != nil {
			return err
		}
		return b.sendMarkup(chatID, keypadText(s), keypadKeyboard)
	case "delete":
		c, ok := s.Store().Selected()
		if !ok {
			return b.send(chatID, "Select a card with /cards first.")
		}
		if err := s.Delete(ctx, c.ID); err != nil {
			return err
		}
		return b.send(chatID, fmt.Sprintf("Deleted %q.", c.Name))
	default:
		return b.send(chatID, "Unknown command. Try /help")
	}
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		return err
	}
	if callback.Message == nil || callback.From == nil {
		return nil
	}

	s, fresh := b.session(sessionKey(callback.Message.Chat.ID, callback.From.ID))

	if id, ok := strings.CutPrefix(callback.Data, selectPrefix); ok {
		if err := s.Select(id); err != nil {
			return b.updateMessage(callback, "That card no longer exists, see /cards.", nil)
		}
		return b.updateMessage(callback, keypadText(s), &keypadKeyboard)
	}

	button, err := session.ParseButton(callback.Data)
	if err != nil {
		return err
	}

	err = s.Press(context.Background(), button)
	if errors.Is(err, session.ErrNoSelection) {
		text := "No card selected, use /cards."
		if fresh {
			text = "Your session has expired, please pick a card again with /cards."
		}
		if uerr := b.updateMessage(callback, text, nil); uerr != nil {
			return uerr
		}
		if fresh {
			return ErrSessionExpired
		}
		return nil
	}
	if err != nil {
		return err
	}

	return b.updateMessage(callback, keypadText(s), &keypadKeyboard)
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.inShutdown.Store(true)
	err := b.mc.Shutdown(ctx)
	b.api.StopReceivingUpdates()

	select {
	case <-b.isDone:
		if errors.Is(err, ErrMemcachedClosed) {
			return ErrClosed
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bot) Close() error {
	b.inShutdown.Store(true)
	err := b.mc.Close()
	b.api.StopReceivingUpdates()
	<-b.isDone

	if errors.Is(err, ErrMemcachedClosed) {
		return ErrClosed
	}
	return err
}
