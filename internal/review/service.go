// Package review orchestrates the submission lifecycle: intake from the web
// form, reviewer notification, and the approve/reject decision flow.
package review

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/otpgate/otpgate/internal/directory"
	"github.com/otpgate/otpgate/internal/expiry"
	"github.com/otpgate/otpgate/internal/presence"
	"github.com/otpgate/otpgate/internal/submission"
	"github.com/otpgate/otpgate/internal/telegram"
)

// ErrCodeRequired is returned by Intake when the submission carries no code.
var ErrCodeRequired = errors.New("code is required")

// TGUser is the optional chat identity attached to a web submission.
type TGUser struct {
	ID        int64
	Username  string
	FirstName string
}

// IntakeRequest is a verification-code submission from the web form.
type IntakeRequest struct {
	Code string
	User *TGUser
}

// Service drives the relay: it owns the shared state and every handler
// (HTTP intake, chat messages, decision callbacks) goes through it.
type Service struct {
	directory *directory.Directory
	store     *submission.Store
	loops     *presence.Loops
	ephemeral *expiry.Ephemeral
	messenger telegram.Messenger
	answerer  telegram.CallbackAnswerer

	adminChatID int64
	logger      *slog.Logger
	now         func() time.Time
}

// NewService wires the relay core. adminChatID is the reviewer's chat.
func NewService(
	log *slog.Logger,
	dir *directory.Directory,
	store *submission.Store,
	loops *presence.Loops,
	ephemeral *expiry.Ephemeral,
	messenger telegram.Messenger,
	answerer telegram.CallbackAnswerer,
	adminChatID int64,
) *Service {
	return &Service{
		directory:   dir,
		store:       store,
		loops:       loops,
		ephemeral:   ephemeral,
		messenger:   messenger,
		answerer:    answerer,
		adminChatID: adminChatID,
		logger:      log.With(slog.String("service", "review")),
		now:         time.Now,
	}
}

// Intake records a submission, starts the submitter's presence loop, and
// notifies the reviewer with approve/reject controls. The record is stored
// before any transport I/O so concurrent handlers always observe it.
func (s *Service) Intake(ctx context.Context, req IntakeRequest) (string, error) {
	if req.Code == "" {
		return "", ErrCodeRequired
	}

	userID := ""
	chatID := int64(0)
	username, firstName := "", ""
	if req.User != nil && req.User.ID != 0 {
		chatID = req.User.ID
		userID = strconv.FormatInt(req.User.ID, 10)
		username = req.User.Username
		firstName = req.User.FirstName
	}

	contact := submission.UnknownContact
	if userID != "" {
		if known, ok := s.directory.Get(userID); ok {
			contact = known
		}
	}

	rec := submission.Record{
		ID:        submission.NewID(userID, s.now()),
		UserID:    userID,
		ChatID:    chatID,
		Code:      req.Code,
		Contact:   contact,
		Username:  username,
		FirstName: firstName,
		CreatedAt: s.now(),
	}
	s.store.Put(rec)

	if userID != "" {
		s.loops.Start(userID, chatID)
		// A decision racing this intake consumes the record between Put and
		// Start, and its Stop lands on a loop that does not exist yet. Re-check
		// so a consumed record never leaves its loop behind.
		if _, ok := s.store.Get(rec.ID); !ok {
			s.loops.Stop(userID)
		}
	}

	keyboard := telegram.DecisionKeyboard(rec.ID)
	// The decision notification is the one message that is not ephemeral; its
	// lifetime ends when the reviewer acts on it.
	if _, err := s.messenger.SendMessage(s.adminChatID, reviewNotification(rec), telegram.SendOptions{
		ParseMode:   tgbotapi.ModeMarkdown,
		ReplyMarkup: keyboard,
	}); err != nil {
		s.logger.Error("reviewer notification failed",
			slog.String("submission_id", rec.ID),
			slog.Any("error", err),
		)
		return rec.ID, err
	}

	s.logger.Info("submission received",
		slog.String("submission_id", rec.ID),
		slog.String("user_id", userID),
	)
	return rec.ID, nil
}

// Decide consumes the submission named by the callback and finalizes it.
// The Remove is the double-decision guard: the first decision wins and any
// later attempt sees an absent record.
func (s *Service) Decide(ctx context.Context, d telegram.Decision) {
	rec, ok := s.store.Remove(d.SubmissionID)
	if !ok {
		s.logger.Info("decision on unknown submission", slog.String("submission_id", d.SubmissionID))
		if err := s.answerer.AnswerCallback(d.CallbackID, "Not found or expired"); err != nil {
			s.logger.Debug("callback answer failed", slog.Any("error", err))
		}
		return
	}

	if err := s.answerer.AnswerCallback(d.CallbackID, ackNotice(d.Action)); err != nil {
		s.logger.Debug("callback answer failed", slog.Any("error", err))
	}

	if rec.UserID != "" {
		s.loops.Stop(rec.UserID)
	}

	chatID := d.ChatID
	if chatID == 0 {
		chatID = s.adminChatID
	}
	if _, err := s.ephemeral.Send(chatID, decisionSummary(d.Action, rec), telegram.SendOptions{
		ParseMode: tgbotapi.ModeMarkdown,
	}); err != nil {
		s.logger.Warn("decision confirmation failed",
			slog.String("submission_id", rec.ID),
			slog.Any("error", err),
		)
	}

	s.logger.Info("submission decided",
		slog.String("submission_id", rec.ID),
		slog.String("action", string(d.Action)),
	)
}

// HandleText records phone-number-looking messages into the directory and
// ignores everything else.
func (s *Service) HandleText(ctx context.Context, userID string, chatID int64, text string) {
	if userID == "" || !directory.LooksLikePhone(text) {
		s.logger.Debug("ignoring text message", slog.String("user_id", userID))
		return
	}
	s.directory.Set(userID, text)
	if _, err := s.ephemeral.Send(chatID, "📱 Phone number saved.", telegram.SendOptions{}); err != nil {
		s.logger.Debug("phone ack failed", slog.Any("error", err))
	}
	s.logger.Info("phone number recorded", slog.String("user_id", userID))
}

// HandleStart answers the /start command. A "verify_<code>" payload echoes the
// code back for rich display; anything else gets the generic welcome.
func (s *Service) HandleStart(ctx context.Context, chatID int64, payload string) {
	text := welcomeText
	opts := telegram.SendOptions{}
	if code, ok := verifyPayload(payload); ok {
		text = verifyEcho(code)
		opts.ParseMode = tgbotapi.ModeMarkdown
	}
	if _, err := s.ephemeral.Send(chatID, text, opts); err != nil {
		s.logger.Debug("start reply failed", slog.Any("error", err))
	}
}

// HandleDecision adapts the update-loop callback to Decide.
func (s *Service) HandleDecision(ctx context.Context, d telegram.Decision) {
	s.Decide(ctx, d)
}
