// Package telegram wraps the Telegram Bot API behind the small capability
// interfaces the relay core consumes, and runs the inbound update loop.
package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SendOptions carries the optional knobs for an outgoing message.
type SendOptions struct {
	ParseMode   string
	ReplyMarkup any
}

// Messenger sends a message and returns the resulting message identifier.
type Messenger interface {
	SendMessage(chatID int64, text string, opts SendOptions) (int, error)
}

// Deleter removes a previously sent message.
type Deleter interface {
	DeleteMessage(chatID int64, messageID int) error
}

// Typist emits a "typing" presence signal to a chat.
type Typist interface {
	SendTyping(chatID int64) error
}

// CallbackAnswerer acknowledges an inline-button press with a transient notice.
type CallbackAnswerer interface {
	AnswerCallback(callbackID, text string) error
}

// Router receives the inbound events the update loop cares about.
type Router interface {
	HandleStart(ctx context.Context, chatID int64, payload string)
	HandleText(ctx context.Context, userID string, chatID int64, text string)
	HandleDecision(ctx context.Context, decision Decision)
}

// Bot is the concrete transport over a Telegram bot account. It implements
// Messenger, Deleter, Typist, and CallbackAnswerer.
type Bot struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

// NewBot authenticates against the Bot API with token.
func NewBot(log *slog.Logger, token string) (*Bot, error) {
	log = log.With(slog.String("component", "telegram"))
	_ = tgbotapi.SetLogger(&slogBotLogger{log: log})
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Info("bot authorized", slog.String("username", api.Self.UserName))
	return &Bot{api: api, logger: log}, nil
}

// SendMessage sends text to chatID and returns the new message's identifier.
func (b *Bot) SendMessage(chatID int64, text string, opts SendOptions) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = opts.ParseMode
	if opts.ReplyMarkup != nil {
		msg.ReplyMarkup = opts.ReplyMarkup
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// DeleteMessage removes a message from a chat.
func (b *Bot) DeleteMessage(chatID int64, messageID int) error {
	_, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

// SendTyping emits the typing chat action.
func (b *Bot) SendTyping(chatID int64) error {
	_, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	return err
}

// AnswerCallback acknowledges a callback query with a short notice.
func (b *Bot) AnswerCallback(callbackID, text string) error {
	_, err := b.api.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

// Listen consumes updates until ctx is cancelled, routing messages and
// decision callbacks to router. It blocks; run it on its own goroutine.
func (b *Bot) Listen(ctx context.Context, router Router) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("update loop started")
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("update loop stopped")
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				b.logger.Info("updates channel closed")
				return
			}
			b.route(ctx, router, update)
		}
	}
}

func (b *Bot) route(ctx context.Context, router Router, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		decision, ok := ParseDecision(update.CallbackQuery.Data)
		if !ok {
			b.logger.Debug("ignoring callback", slog.String("data", update.CallbackQuery.Data))
			return
		}
		decision.CallbackID = update.CallbackQuery.ID
		if update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil {
			decision.ChatID = update.CallbackQuery.Message.Chat.ID
		}
		router.HandleDecision(ctx, decision)
		return
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	if msg.IsCommand() {
		if msg.Command() == "start" {
			router.HandleStart(ctx, msg.Chat.ID, strings.TrimSpace(msg.CommandArguments()))
		}
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	userID := ""
	if msg.From != nil {
		userID = strconv.FormatInt(msg.From.ID, 10)
	}
	router.HandleText(ctx, userID, msg.Chat.ID, text)
}
