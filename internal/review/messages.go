package review

import (
	"fmt"
	"strings"

	"github.com/otpgate/otpgate/internal/submission"
	"github.com/otpgate/otpgate/internal/telegram"
)

const welcomeText = "👋 Welcome! Submit your verification code through the web form and we'll take it from there."

func verifyPayload(payload string) (string, bool) {
	code, ok := strings.CutPrefix(payload, "verify_")
	if !ok || code == "" {
		return "", false
	}
	return code, true
}

func verifyEcho(code string) string {
	return fmt.Sprintf("🔐 Your verification code:\n\n`%s`", code)
}

func reviewNotification(rec submission.Record) string {
	var b strings.Builder
	b.WriteString("🔔 *New verification code*\n\n")
	fmt.Fprintf(&b, "Code: `%s`\n", rec.Code)
	fmt.Fprintf(&b, "Phone: %s\n", rec.Contact)
	b.WriteString("User: " + describeUser(rec))
	return b.String()
}

func decisionSummary(action telegram.Action, rec submission.Record) string {
	verb := "Approved"
	icon := "✅"
	if action == telegram.ActionReject {
		verb = "Rejected"
		icon = "❌"
	}
	return fmt.Sprintf("%s %s code `%s` for %s (%s)", icon, verb, rec.Code, rec.Contact, describeUser(rec))
}

func ackNotice(action telegram.Action) string {
	if action == telegram.ActionReject {
		return "Rejected"
	}
	return "Approved"
}

func describeUser(rec submission.Record) string {
	parts := make([]string, 0, 3)
	if rec.Username != "" {
		parts = append(parts, "@"+rec.Username)
	}
	if rec.FirstName != "" {
		parts = append(parts, rec.FirstName)
	}
	if rec.UserID != "" {
		parts = append(parts, "id "+rec.UserID)
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, ", ")
}
