package services

import (
	"context"
	"log"
	"strings"
	"time"
)

// NoticeSeverity classifies a user-facing notice
type NoticeSeverity string

const (
	NoticeSuccess NoticeSeverity = "success"
	NoticeError   NoticeSeverity = "error"
)

// Notice is a message shown to the payer on the storefront
type Notice struct {
	Text     string         `json:"text"`
	Severity NoticeSeverity `json:"severity"`
}

// Noticer is the notice sink the payment core reports through. Notices are
// keyed by the order UUID since gateway callbacks carry no browser session.
type Noticer interface {
	Show(ctx context.Context, orderUUID string, notice Notice)
}

// RenderMessage substitutes the {track_id} and {order_id} placeholders in a
// configured message template. No other templating is applied.
func RenderMessage(template, trackID, orderID string) string {
	msg := strings.ReplaceAll(template, "{track_id}", trackID)
	msg = strings.ReplaceAll(msg, "{order_id}", orderID)
	return msg
}

const (
	noticeTTL       = 30 * time.Minute
	noticeKeyPrefix = "notices:order:"
)

// RedisNoticer stores notices in redis so the storefront can pick them up
// on the next page load.
type RedisNoticer struct {
	cache *RedisCache
}

func NewRedisNoticer(cache *RedisCache) *RedisNoticer {
	return &RedisNoticer{cache: cache}
}

func (n *RedisNoticer) Show(ctx context.Context, orderUUID string, notice Notice) {
	key := noticeKeyPrefix + orderUUID

	var notices []Notice
	// A missing key is a normal first write.
	_ = n.cache.Get(ctx, key, &notices)
	notices = append(notices, notice)

	if err := n.cache.Set(ctx, key, notices, noticeTTL); err != nil {
		log.Printf("Failed to store notice for order %s: %v", orderUUID, err)
	}
}

// Consume returns and clears the pending notices for an order.
func (n *RedisNoticer) Consume(ctx context.Context, orderUUID string) []Notice {
	key := noticeKeyPrefix + orderUUID

	var notices []Notice
	if err := n.cache.Get(ctx, key, &notices); err != nil {
		return nil
	}
	_ = n.cache.Delete(ctx, key)
	return notices
}
