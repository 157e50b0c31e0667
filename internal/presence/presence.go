// Package presence keeps a per-user "typing" indicator alive while a
// submission waits on a reviewer.
package presence

import (
	"log/slog"
	"time"

	"github.com/otpgate/otpgate/internal/telegram"
	"github.com/otpgate/otpgate/internal/timers"
)

// Loops manages one repeating typing signal per user. Starting a loop for a
// user who already has one replaces it; duplicate loops never accumulate.
type Loops struct {
	tickers  *timers.Tickers
	typist   telegram.Typist
	interval time.Duration
	logger   *slog.Logger
}

// NewLoops creates a presence manager ticking every interval.
func NewLoops(log *slog.Logger, tickers *timers.Tickers, typist telegram.Typist, interval time.Duration) *Loops {
	return &Loops{
		tickers:  tickers,
		typist:   typist,
		interval: interval,
		logger:   log.With(slog.String("service", "presence")),
	}
}

// Start begins (or replaces) the typing loop for userID, signalling chatID.
// A failed tick is logged and does not stop subsequent ticks.
func (l *Loops) Start(userID string, chatID int64) {
	log := l.logger.With(slog.String("user_id", userID))
	l.tickers.Start(loopKey(userID), l.interval, func() {
		if err := l.typist.SendTyping(chatID); err != nil {
			log.Debug("typing signal failed", slog.Any("error", err))
		}
	})
	log.Debug("presence loop started")
}

// Stop cancels the loop for userID if one is running. Idempotent.
func (l *Loops) Stop(userID string) {
	if l.tickers.Cancel(loopKey(userID)) {
		l.logger.Debug("presence loop stopped", slog.String("user_id", userID))
	}
}

func loopKey(userID string) string {
	return "typing_" + userID
}
