// Package expiry sends messages that delete themselves after a fixed delay.
package expiry

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/otpgate/otpgate/internal/telegram"
	"github.com/otpgate/otpgate/internal/timers"
)

// Ephemeral sends messages and schedules their deletion. Scheduling is keyed
// by chat and message id, so re-scheduling the same message replaces the prior
// deletion timer instead of stacking a second one.
type Ephemeral struct {
	deadlines *timers.Deadlines
	messenger telegram.Messenger
	deleter   telegram.Deleter
	ttl       time.Duration
	logger    *slog.Logger
}

// NewEphemeral creates the expiry manager; sent messages live for ttl.
func NewEphemeral(log *slog.Logger, deadlines *timers.Deadlines, messenger telegram.Messenger, deleter telegram.Deleter, ttl time.Duration) *Ephemeral {
	return &Ephemeral{
		deadlines: deadlines,
		messenger: messenger,
		deleter:   deleter,
		ttl:       ttl,
		logger:    log.With(slog.String("service", "expiry")),
	}
}

// Send sends text to chatID and schedules the resulting message for deletion.
// On send failure nothing is scheduled and the error is returned to the caller.
func (e *Ephemeral) Send(chatID int64, text string, opts telegram.SendOptions) (int, error) {
	messageID, err := e.messenger.SendMessage(chatID, text, opts)
	if err != nil {
		return 0, err
	}
	e.ScheduleDelete(chatID, messageID)
	return messageID, nil
}

// ScheduleDelete registers the message for deletion after the configured TTL.
// A deletion failure (message already gone, permissions revoked) is logged and
// discarded; it never disturbs other scheduled deletions.
func (e *Ephemeral) ScheduleDelete(chatID int64, messageID int) {
	key := deleteKey(chatID, messageID)
	e.deadlines.Schedule(key, e.ttl, func() {
		if err := e.deleter.DeleteMessage(chatID, messageID); err != nil {
			e.logger.Debug("delete expired message failed",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
	})
}

func deleteKey(chatID int64, messageID int) string {
	return strconv.FormatInt(chatID, 10) + ":" + strconv.Itoa(messageID)
}
