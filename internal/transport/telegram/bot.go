// Package telegram adapts Telegram long polling to the conversation service.
package telegram

import (
	"context"
	"fmt"
	"sync"

	"order-card-bot/internal/conversation"
	"order-card-bot/internal/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const module = "TELEGRAM"

const msgInternalError = "Something went wrong while handling that. Please try again."

// API is the part of tgbotapi.BotAPI the adapter sends through.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type ConversationHandler interface {
	Handle(ctx context.Context, ev conversation.Event, r conversation.Responder) error
}

type Bot struct {
	bot         *tgbotapi.BotAPI
	api         API
	handler     ConversationHandler
	logger      logger.ILogger
	pollTimeout int
	wg          sync.WaitGroup
}

// NewBotAPI logs in with the bot token.
func NewBotAPI(token string, debug bool) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	api.Debug = debug
	return api, nil
}

func NewBot(api *tgbotapi.BotAPI, handler ConversationHandler, log logger.ILogger, pollTimeout int) *Bot {
	if pollTimeout <= 0 {
		pollTimeout = 60
	}
	return &Bot{
		bot:         api,
		api:         api,
		handler:     handler,
		logger:      log,
		pollTimeout: pollTimeout,
	}
}

// FileURL resolves a Telegram file id for the downloader.
func FileURL(api *tgbotapi.BotAPI) func(ctx context.Context, fileID string) (string, error) {
	return func(ctx context.Context, fileID string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return api.GetFileDirectURL(fileID)
	}
}

// Run polls for updates until ctx is cancelled, then waits for in-flight updates.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.bot.GetUpdatesChan(u)

	b.logger.Info(module, "Polling for updates", map[string]interface{}{"bot": b.bot.Self.UserName})

	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			b.wg.Wait()
			return
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return
			}
			b.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}(update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error(module, "Panic while handling update", map[string]interface{}{
				"update_id": update.UpdateID,
				"panic":     fmt.Sprint(r),
			})
		}
	}()

	if cb := update.CallbackQuery; cb != nil {
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			b.logger.Warn(module, "Failed to answer callback", map[string]interface{}{"error": err.Error()})
		}
	}

	ev, chatID, userID, ok := EventFromUpdate(update)
	if !ok {
		return
	}

	r := &chatResponder{api: b.api, chatID: chatID, userID: userID}
	if err := b.handler.Handle(ctx, ev, r); err != nil {
		b.logger.Error(module, "Failed to handle update", map[string]interface{}{
			"update_id":   update.UpdateID,
			"operator_id": userID,
			"error":       err,
		})
		_ = r.Emit(ctx, conversation.Prompt{Text: msgInternalError})
	}
}

// EventFromUpdate classifies an update. ok is false for updates the bot ignores.
func EventFromUpdate(update tgbotapi.Update) (ev conversation.Event, chatID, userID int64, ok bool) {
	if cb := update.CallbackQuery; cb != nil {
		if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
			return ev, 0, 0, false
		}
		return conversation.ButtonEvent(cb.Data), cb.Message.Chat.ID, cb.From.ID, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return ev, 0, 0, false
	}
	chatID, userID = msg.Chat.ID, msg.From.ID

	switch {
	case msg.Document != nil:
		return conversation.FileEvent(conversation.FileRef{
			ID:       msg.Document.FileID,
			Name:     msg.Document.FileName,
			MimeType: msg.Document.MimeType,
			Size:     int64(msg.Document.FileSize),
		}), chatID, userID, true
	case len(msg.Photo) > 0:
		largest := msg.Photo[len(msg.Photo)-1]
		return conversation.FileEvent(conversation.FileRef{
			ID:       largest.FileID,
			Name:     fmt.Sprintf("photo_%s.jpg", largest.FileUniqueID),
			MimeType: "image/jpeg",
			Size:     int64(largest.FileSize),
		}), chatID, userID, true
	case msg.Text != "":
		return conversation.TextEvent(msg.Text), chatID, userID, true
	default:
		return ev, 0, 0, false
	}
}

type chatResponder struct {
	api    API
	chatID int64
	userID int64
}

func (r *chatResponder) SourceUser() int64 {
	return r.userID
}

// Emit sends the prompt, split when long; buttons ride on the last chunk.
func (r *chatResponder) Emit(ctx context.Context, p conversation.Prompt) error {
	chunks := Chunk(p.Text, MaxMessageLength)
	for i, text := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(r.chatID, text)
		if i == len(chunks)-1 && len(p.Choices) > 0 {
			msg.ReplyMarkup = keyboard(p.Choices)
		}
		if _, err := r.api.Send(msg); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}
	return nil
}

func keyboard(choices [][]conversation.Choice) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(choices))
	for _, row := range choices {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, ch := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(ch.Label, ch.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
