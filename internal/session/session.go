package session

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrLoginStepFailed indicates the identity provider's email or
	// password page did not present the expected input field.
	ErrLoginStepFailed = errors.New("login step failed")

	// ErrSsoHandoffFailed indicates the "continue to application"
	// control never became visible, even after one reload.
	ErrSsoHandoffFailed = errors.New("sso handoff failed")

	// ErrNavigationFailed indicates the account tile or logbook
	// control was absent after the bounded wait.
	ErrNavigationFailed = errors.New("portal navigation failed")

	// ErrNegotiationFailed wraps any other failure during the login
	// flow. No partial session state is usable after it.
	ErrNegotiationFailed = errors.New("session negotiation failed")
)

// Session is the product of one successful login negotiation: the raw
// cookie header and the month-name → logbook header ID map. It lives in
// memory for the duration of a run and is replaced, never merged, by
// the next negotiation.
type Session struct {
	Cookie       string
	MonthHeaders map[string]string // uppercase month name -> header ID
}

// HeaderFor looks up the logbook header ID for the month of the given date.
func (s *Session) HeaderFor(date time.Time) (string, bool) {
	id, ok := s.MonthHeaders[strings.ToUpper(date.Month().String())]
	return id, ok && id != ""
}

// Negotiator obtains a fresh Session from the portal's SSO flow.
type Negotiator interface {
	Negotiate(ctx context.Context, email, password string) (*Session, error)
}

// cleanMonthLabel trims whitespace and the trailing bullet marker the
// portal appends to the active month tab.
func cleanMonthLabel(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "●"))
}

// headerIDFromOnclick extracts the opaque ID embedded in a month tab's
// click handler: the substring between the first pair of single quotes.
func headerIDFromOnclick(attr string) string {
	start := strings.Index(attr, "'")
	if start < 0 {
		return ""
	}
	rest := attr[start+1:]
	end := strings.Index(rest, "'")
	if end < 0 {
		return ""
	}
	return rest[:end]
}
