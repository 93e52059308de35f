package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Message is an HTML-formatted chat message
type Message struct {
	Text string
	// ReplyTo threads the message under an earlier one when non-zero.
	ReplyTo int
}

// Sender delivers chat messages and returns the id of the sent message
type Sender interface {
	Send(ctx context.Context, msg Message) (int, error)
}

// BotSender sends through the Telegram Bot API
type BotSender struct {
	token    string
	chatID   string
	endpoint string
	client   *http.Client

	once    sync.Once
	bot     *tgbotapi.BotAPI
	initErr error
}

// NewBotSender returns a sender for one chat. chatID is a numeric id or an @channel name.
func NewBotSender(token, chatID string) *BotSender {
	return &BotSender{
		token:    token,
		chatID:   chatID,
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Validate ensures we have enough configuration before sending anything
func (s *BotSender) Validate() error {
	if s.token == "" || s.chatID == "" {
		return errors.New("telegram bot token and chat id are required")
	}
	return nil
}

// Send posts the message with HTML parse mode and without a notification sound
func (s *BotSender) Send(ctx context.Context, msg Message) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	bot, err := s.botAPI()
	if err != nil {
		return 0, err
	}

	out, err := s.newMessage(msg.Text)
	if err != nil {
		return 0, err
	}
	out.ParseMode = tgbotapi.ModeHTML
	out.DisableNotification = true
	out.DisableWebPagePreview = true
	out.ReplyToMessageID = msg.ReplyTo

	sent, err := bot.Send(out)
	if err != nil {
		return 0, fmt.Errorf("telegram send failed: %w", err)
	}
	return sent.MessageID, nil
}

// botAPI connects lazily, so a run without alerts never calls Telegram
func (s *BotSender) botAPI() (*tgbotapi.BotAPI, error) {
	s.once.Do(func() {
		if err := s.Validate(); err != nil {
			s.initErr = err
			return
		}
		s.bot, s.initErr = tgbotapi.NewBotAPIWithClient(s.token, s.endpoint, s.client)
		if s.initErr != nil {
			s.initErr = fmt.Errorf("failed to connect to telegram: %w", s.initErr)
		}
	})
	return s.bot, s.initErr
}

func (s *BotSender) newMessage(text string) (tgbotapi.MessageConfig, error) {
	if strings.HasPrefix(s.chatID, "@") {
		return tgbotapi.NewMessageToChannel(s.chatID, text), nil
	}
	id, err := strconv.ParseInt(s.chatID, 10, 64)
	if err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("invalid telegram chat id %q: %w", s.chatID, err)
	}
	return tgbotapi.NewMessage(id, text), nil
}
