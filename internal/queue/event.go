// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

import (
	"fmt"
	"strings"
	"time"
)

// SubmissionsQueue is the durable queue every submission event goes to.
const SubmissionsQueue = "submissions.created"

// Event kinds.
const (
	KindBookingCreated = "booking.created"
	KindQueryCreated   = "query.created"
)

// SubmissionEvent is published after a booking or contact query has been
// stored.  It carries enough for downstream consumers to log or trigger
// follow-ups without querying the primary database.
type SubmissionEvent struct {
	Kind        string    `json:"kind"`
	ReferenceID string    `json:"reference_id"`
	UserID      string    `json:"user_id,omitempty"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// FormatLine renders ev as one human-friendly log line ending in a newline.
func FormatLine(ev SubmissionEvent) string {
	user := ev.UserID
	if user == "" {
		user = "guest"
	}
	return fmt.Sprintf("[%s] %s | ref=%s | user=%s | name=%q | email=%s | status=%s\n",
		ev.SubmittedAt.UTC().Format(time.RFC3339), ev.Kind, ev.ReferenceID, user,
		strings.TrimSpace(ev.Name), ev.Email, ev.Status)
}
