package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/raine/photo-pricer/internal/apperrors"
	"github.com/raine/photo-pricer/internal/recognizer"
	"github.com/raine/photo-pricer/internal/storage"
)

const historyLimit = 10

// BotAPI defines the interface for Telegram bot API operations.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Recognizer turns photo bytes into a priced recognition result.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (*recognizer.Result, error)
}

// Store holds the recognition log and the user whitelist.
type Store interface {
	SaveRecognition(r *storage.Recognition) error
	RecentRecognitions(userID int64, limit int) ([]storage.Recognition, error)
	CountRecognitionsByUser(userID int64) (int, error)
	IsUserAllowed(telegramID int64) (bool, error)
	AddAllowedUser(telegramID, addedBy int64) error
	RemoveAllowedUser(telegramID int64) error
	GetAllowedUsers() ([]storage.AllowedUser, error)
}

// Bot is the main Telegram bot handler.
type Bot struct {
	tg         BotAPI
	recognizer Recognizer
	store      Store
	downloader *ImageDownloader
	adminID    int64
}

// NewBot creates a new Bot instance.
func NewBot(tg BotAPI, rec Recognizer, store Store, adminID int64) *Bot {
	return &Bot{
		tg:         tg,
		recognizer: rec,
		store:      store,
		downloader: NewImageDownloader(),
		adminID:    adminID,
	}
}

// HandleUpdate is the main message router. It is safe to call from
// multiple goroutines.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.From == nil {
		return
	}
	userID := message.From.ID

	// Check if user is allowed (admin always allowed)
	if userID != b.adminID {
		allowed, err := b.store.IsUserAllowed(userID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("whitelist check failed")
			return // Fail closed
		}
		if !allowed {
			return // Silent drop
		}
	}

	log.Info().
		Int64("user_id", userID).
		Str("text", message.Text).
		Int("photos", len(message.Photo)).
		Msg("got message")

	switch {
	case len(message.Photo) > 0:
		b.handlePhoto(ctx, userID, largestPhoto(message.Photo).FileID)
	case message.Document != nil:
		if !strings.HasPrefix(message.Document.MimeType, "image/") {
			b.reply(userID, MsgNotAnImage)
			return
		}
		b.handlePhoto(ctx, userID, message.Document.FileID)
	default:
		b.handleCommand(userID, message.Text)
	}
}

// largestPhoto picks the highest resolution size Telegram offers.
func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best
}

func (b *Bot) handlePhoto(ctx context.Context, userID int64, fileID string) {
	b.reply(userID, MsgAnalyzingPhoto)

	typingCtx, stopTyping := context.WithCancel(ctx)
	go b.startTypingLoop(typingCtx, userID)
	defer stopTyping()

	data, err := b.downloader.DownloadFromTelegramFileID(ctx, b.tg.GetFileDirectURL, fileID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("failed to download photo")
		b.reply(userID, MsgImageDownloadFailed)
		return
	}

	res, err := b.recognizer.Recognize(ctx, data)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return
		case apperrors.IsConfiguration(err):
			b.reply(userID, MsgServiceNotConfigured)
		case apperrors.IsAnnotation(err):
			b.reply(userID, MsgRecognitionFailed)
		default:
			b.replyWithError(userID, err)
		}
		return
	}

	rec := &storage.Recognition{
		ID:             res.ID,
		UserID:         userID,
		Name:           res.Name,
		Brand:          res.Brand,
		Model:          res.Model,
		Confidence:     res.Confidence,
		Category:       res.Category,
		Condition:      res.Condition,
		SuggestedPrice: res.Pricing.Suggested,
		Currency:       res.Pricing.Currency,
	}
	if err := b.store.SaveRecognition(rec); err != nil {
		log.Warn().Err(err).Str("id", res.ID).Msg("failed to save recognition")
	}

	b.send(userID, formatResult(res))
}

// handleCommand processes bot commands.
func (b *Bot) handleCommand(userID int64, text string) {
	command, args := parseCommand(text)
	switch command {
	case "/start", "/help":
		b.reply(userID, MsgStartPrompt)
	case "/history":
		b.handleHistoryCommand(userID)
	case "/version":
		b.reply(userID, MsgVersionInfo, Version, BuildTime)
	case "/admin":
		b.handleAdminCommand(userID, args)
	default:
		b.reply(userID, MsgSendPhoto)
	}
}

func (b *Bot) handleHistoryCommand(userID int64) {
	recs, err := b.store.RecentRecognitions(userID, historyLimit)
	if err != nil {
		b.replyWithError(userID, err)
		return
	}
	if len(recs) == 0 {
		b.reply(userID, MsgHistoryEmpty)
		return
	}
	total, err := b.store.CountRecognitionsByUser(userID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("failed to count recognitions")
		total = len(recs)
	}
	b.send(userID, formatHistory(recs, total))
}

// handleAdminCommand handles /admin command with subcommands.
// Only the admin user can use this command.
func (b *Bot) handleAdminCommand(userID int64, args []string) {
	if userID != b.adminID {
		return // Silent drop for non-admin users
	}

	if len(args) < 2 || args[0] != "users" {
		b.reply(userID, MsgAdminUsage)
		return
	}
	b.handleAdminUsersCommand(userID, args[1], args[2:])
}

// handleAdminUsersCommand handles /admin users subcommands.
func (b *Bot) handleAdminUsersCommand(userID int64, action string, args []string) {
	switch action {
	case "add":
		if len(args) < 1 {
			b.reply(userID, MsgAdminUserAddUsage)
			return
		}
		target, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			b.reply(userID, MsgAdminUserInvalidID)
			return
		}
		if err := b.store.AddAllowedUser(target, userID); err != nil {
			b.replyWithError(userID, err)
			return
		}
		b.reply(userID, MsgAdminUserAdded, target)

	case "remove":
		if len(args) < 1 {
			b.reply(userID, MsgAdminUserRemoveUsage)
			return
		}
		target, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			b.reply(userID, MsgAdminUserInvalidID)
			return
		}
		if err := b.store.RemoveAllowedUser(target); err != nil {
			b.replyWithError(userID, err)
			return
		}
		b.reply(userID, MsgAdminUserRemoved, target)

	case "list":
		users, err := b.store.GetAllowedUsers()
		if err != nil {
			b.replyWithError(userID, err)
			return
		}
		if len(users) == 0 {
			b.reply(userID, MsgAdminNoUsers)
			return
		}
		var sb strings.Builder
		sb.WriteString(MsgAdminAllowedUsers)
		for _, u := range users {
			sb.WriteString(fmt.Sprintf("• `%d` (added %s)\n", u.TelegramID, u.AddedAt.Format("2006-01-02")))
		}
		b.send(userID, sb.String())

	default:
		b.reply(userID, MsgAdminUsage)
	}
}

// startTypingLoop sends a typing action every 4 seconds until ctx is done.
// Telegram expires the indicator after about 5 seconds.
func (b *Bot) startTypingLoop(ctx context.Context, chatID int64) {
	b.sendTypingAction(chatID)

	ticker := time.NewTicker(4 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.sendTypingAction(chatID)
		}
	}
}

func (b *Bot) sendTypingAction(chatID int64) {
	// sendChatAction returns a boolean, not a Message
	if _, err := b.tg.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		log.Debug().Err(err).Int64("chat_id", chatID).Msg("failed to send typing action")
	}
}

func (b *Bot) reply(chatID int64, text string, a ...any) {
	b.send(chatID, formatReplyText(text, a...))
}

func (b *Bot) replyWithError(chatID int64, err error) {
	log.Error().Err(err).Send()
	b.send(chatID, formatReplyText(MsgUnexpectedErr, escape(err.Error())))
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if _, err := b.tg.Send(msg); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}
