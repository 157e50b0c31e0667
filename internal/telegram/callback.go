package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Action is a reviewer verdict carried in a callback payload.
type Action string

// Reviewer verdicts.
const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Decision is a reviewer button press: "<approve|reject>:<submissionID>".
type Decision struct {
	Action       Action
	SubmissionID string
	CallbackID   string
	ChatID       int64 // chat the decision control lives in; zero when unavailable
}

// ParseDecision extracts the action and submission identifier from a callback
// payload. It reports false for anything that is not a decision payload.
func ParseDecision(data string) (Decision, bool) {
	action, id, found := strings.Cut(data, ":")
	if !found || id == "" {
		return Decision{}, false
	}
	switch Action(action) {
	case ActionApprove, ActionReject:
		return Decision{Action: Action(action), SubmissionID: id}, true
	default:
		return Decision{}, false
	}
}

// DecisionKeyboard builds the approve/reject inline keyboard for a submission.
func DecisionKeyboard(submissionID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", string(ActionApprove)+":"+submissionID),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", string(ActionReject)+":"+submissionID),
		),
	)
}
