package share

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	ErrEmptyText   = errors.New("nothing to share")
	ErrUnsupported = errors.New("share target unavailable on this system")
)

// Sharer hands a formatted block to some destination.
type Sharer interface {
	Share(ctx context.Context, text string) error
}

// SharerFunc adapts a function to Sharer.
type SharerFunc func(ctx context.Context, text string) error

func (f SharerFunc) Share(ctx context.Context, text string) error {
	return f(ctx, text)
}

// WriterSharer prints the block to w.
type WriterSharer struct {
	W io.Writer
}

func (s WriterSharer) Share(_ context.Context, text string) error {
	if text == "" {
		return ErrEmptyText
	}
	if _, err := io.WriteString(s.W, text); err != nil {
		return fmt.Errorf("writing share text: %w", err)
	}
	return nil
}

// ClipboardSharer copies the block to the system clipboard.
type ClipboardSharer struct {
	write func(string) error
}

func NewClipboardSharer() *ClipboardSharer {
	return &ClipboardSharer{write: clipboard.WriteAll}
}

func (s *ClipboardSharer) Share(_ context.Context, text string) error {
	if text == "" {
		return ErrEmptyText
	}
	if s.write == nil {
		if clipboard.Unsupported {
			return ErrUnsupported
		}
		s.write = clipboard.WriteAll
	}
	if err := s.write(text); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	return nil
}

// telegramMaxText is the Bot API limit on message length in characters.
const telegramMaxText = 4096

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSharer sends the block to a chat through the Bot API.
type TelegramSharer struct {
	api    messageSender
	chatID int64
}

// NewTelegramSharer authenticates token against the Bot API.
func NewTelegramSharer(token string, chatID int64) (*TelegramSharer, error) {
	if token == "" {
		return nil, errors.New("telegram token is required")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	return NewTelegramSharerWithAPI(api, chatID), nil
}

func NewTelegramSharerWithAPI(api messageSender, chatID int64) *TelegramSharer {
	return &TelegramSharer{api: api, chatID: chatID}
}

func (s *TelegramSharer) Share(ctx context.Context, text string) error {
	if text == "" {
		return ErrEmptyText
	}
	if s.chatID == 0 {
		return errors.New("telegram chat id is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(s.chatID, truncateRunes(text, telegramMaxText))
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("sending to telegram: %w", err)
	}
	return nil
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
