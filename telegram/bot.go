// Package telegram is the transport layer: it turns bot-platform
// updates into classified events for the ledger and renders replies.
package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/ayoubcharbel/telegram-bot/analytics"
	"github.com/ayoubcharbel/telegram-bot/leaderboard"
	"github.com/ayoubcharbel/telegram-bot/ledger"
	"github.com/ayoubcharbel/telegram-bot/model"
	"github.com/ayoubcharbel/telegram-bot/ratelimit"
)

// Bot runs the long-polling update loop.
type Bot struct {
	api     *tgbotapi.BotAPI
	ledger  *ledger.Ledger
	ranker  *leaderboard.Ranker
	tracker *analytics.Tracker
	limiter *ratelimit.Limiter

	pollTimeout int
}

// Options configures the bot transport.
type Options struct {
	Token       string
	PollTimeout int
	Debug       bool
}

// NewBot authorizes against the Telegram API.
func NewBot(opts Options, led *ledger.Ledger, ranker *leaderboard.Ranker, tracker *analytics.Tracker, limiter *ratelimit.Limiter) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(opts.Token)
	if err != nil {
		return nil, err
	}
	api.Debug = opts.Debug

	log.Info().Str("account", api.Self.UserName).Msg("Authorized on Telegram")

	return &Bot{
		api:         api,
		ledger:      led,
		ranker:      ranker,
		tracker:     tracker,
		limiter:     limiter,
		pollTimeout: opts.PollTimeout,
	}, nil
}

// Start consumes updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			log.Info().Msg("Bot update loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

// eventFromMessage maps a Telegram message onto the transport-agnostic
// event shape the classifier understands.
func eventFromMessage(msg *tgbotapi.Message) model.Event {
	e := model.Event{
		ChatID:      msg.Chat.ID,
		HasSticker:  msg.Sticker != nil,
		HasPhoto:    len(msg.Photo) > 0,
		HasVideo:    msg.Video != nil,
		HasDocument: msg.Document != nil,
		HasVoice:    msg.Voice != nil,
		HasText:     msg.Text != "",
		Text:        msg.Text,
		Private:     msg.Chat.IsPrivate(),
		Command:     msg.Command(),
	}
	if msg.From != nil {
		e.UserID = msg.From.ID
		e.Username = msg.From.UserName
		e.FirstName = msg.From.FirstName
		e.LastName = msg.From.LastName
	}
	return e
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	event := eventFromMessage(msg)
	if event.UserID == 0 {
		return
	}

	if !b.limiter.AllowUser(event.UserID) {
		log.Debug().Int64("user_id", event.UserID).Msg("Message dropped by rate limiter")
		return
	}

	eventType := model.Classify(event)
	if event.Command != "" {
		// Commands never count toward activity totals, whatever their payload.
		eventType = model.EventOther
	}

	display := ledger.DisplayInfo{
		Username:  event.Username,
		FirstName: event.FirstName,
		LastName:  event.LastName,
	}

	if _, err := b.ledger.RecordEvent(ctx, event.UserID, eventType, display); err != nil {
		log.Error().Err(err).Int64("user_id", event.UserID).Msg("Failed to record event")
	}

	b.tracker.Track(event.UserID, eventType, event.Command)

	if event.Command != "" {
		b.handleCommand(ctx, msg, event)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, event model.Event) {
	switch event.Command {
	case "start", "help":
		b.sendMessage(event.ChatID, helpText)
	case "top":
		b.handleTop(ctx, event.ChatID, msg.CommandArguments())
	case "me":
		b.handleMe(ctx, event)
	case "stats":
		b.sendMessage(event.ChatID, FormatAnalytics(b.tracker.Snapshot()))
	default:
		log.Debug().Str("command", event.Command).Msg("Unknown command ignored")
	}
}

func (b *Bot) handleTop(ctx context.Context, chatID int64, args string) {
	limit := 10
	if trimmed := strings.TrimSpace(args); trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	entries, err := b.ranker.TopN(ctx, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build leaderboard")
		b.sendMessage(chatID, "Something went wrong, try again later.")
		return
	}

	b.sendMarkdown(chatID, FormatLeaderboard(entries))
}

func (b *Bot) handleMe(ctx context.Context, event model.Event) {
	record, err := b.ledger.GetUser(ctx, event.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", event.UserID).Msg("Failed to load user record")
		b.sendMessage(event.ChatID, "Something went wrong, try again later.")
		return
	}

	rank, err := b.ranker.Position(ctx, event.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", event.UserID).Msg("Failed to compute rank")
	}

	b.sendMarkdown(event.ChatID, FormatUserStats(record, rank))
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

const helpText = `I count messages and stickers in this chat.

/top [n] - show the most active users
/me - your personal stats
/stats - aggregate chat analytics`
