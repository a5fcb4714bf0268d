// Package notify pushes urgent action items to Telegram.
package notify

import (
	"context"
	"fmt"
	"html"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jask/pocketledger/internal/model"
	"github.com/jask/pocketledger/internal/store"
)

// Sender is the part of tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends each new high-priority action item for one user to a chat,
// once. Items are keyed by type and related entity, so a reminder that is
// replaced with a fresh id is not sent again while it stays in the store.
// It is registered as a store observer.
type Telegram struct {
	bot    Sender
	chatID int64
	userID string

	mu   sync.Mutex
	seen map[itemKey]bool
}

type itemKey struct {
	typ     model.ActionType
	related string
}

func keyOf(it model.ActionItem) itemKey {
	return itemKey{typ: it.Type, related: it.Related()}
}

// NewTelegram connects to the bot API with token.
func NewTelegram(token string, chatID int64, userID string) (*Telegram, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram: token required")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram: chat id required")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	log.Printf("telegram notifier ready: @%s", bot.Self.UserName)
	return WithSender(bot, chatID, userID), nil
}

// WithSender builds a notifier around an existing sender.
func WithSender(bot Sender, chatID int64, userID string) *Telegram {
	return &Telegram{bot: bot, chatID: chatID, userID: userID, seen: make(map[itemKey]bool)}
}

// Prime marks every item in snap as already delivered, so a restart does not
// resend what the user has seen.
func (t *Telegram) Prime(snap store.Collections) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, it := range snap.ActionItems {
		t.seen[keyOf(it)] = true
	}
}

// Notify implements store.Observer. Send failures are logged, never returned:
// the change that triggered them is already committed.
func (t *Telegram) Notify(ctx context.Context, snap store.Collections) {
	for _, it := range t.fresh(snap) {
		if ctx.Err() != nil {
			return
		}
		msg := tgbotapi.NewMessage(t.chatID, format(it))
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := t.bot.Send(msg); err != nil {
			log.Printf("telegram send %s: %v", it.ID, err)
			t.mu.Lock()
			delete(t.seen, keyOf(it))
			t.mu.Unlock()
		}
	}
}

// fresh returns unseen urgent items and forgets keys no longer in the store.
func (t *Telegram) fresh(snap store.Collections) []model.ActionItem {
	t.mu.Lock()
	defer t.mu.Unlock()
	present := make(map[itemKey]bool, len(snap.ActionItems))
	var out []model.ActionItem
	for _, it := range snap.ActionItems {
		if it.UserID != t.userID {
			continue
		}
		k := keyOf(it)
		present[k] = true
		if it.IsDismissed || it.Priority != model.PriorityHigh || t.seen[k] {
			continue
		}
		t.seen[k] = true
		out = append(out, it)
	}
	for k := range t.seen {
		if !present[k] {
			delete(t.seen, k)
		}
	}
	return out
}

func format(it model.ActionItem) string {
	return fmt.Sprintf("<b>%s · %s</b>\n%s", html.EscapeString(it.Type.Label()), html.EscapeString(it.Title), html.EscapeString(it.Message))
}
