package model

import "time"

// QueryStatus is the triage state of a contact query.
type QueryStatus string

const (
	QueryNew        QueryStatus = "NEW"
	QueryInProgress QueryStatus = "IN_PROGRESS"
	QueryResolved   QueryStatus = "RESOLVED"
	QueryClosed     QueryStatus = "CLOSED"
)

// Query is a contact-form submission (the `simple_queries` table).  Any
// visitor may create one; UserID is set only when the visitor was signed in.
type Query struct {
	ID        string       `db:"id" json:"id"`
	UserID    *string      `db:"user_id" json:"userId"`
	Name      string       `db:"name" json:"name"`
	Email     string       `db:"email" json:"email"`
	Phone     *string      `db:"phone" json:"phone"`
	Message   string       `db:"message" json:"message"`
	Status    QueryStatus  `db:"status" json:"status"`
	Notes     *string      `db:"notes" json:"notes"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
	User      *UserSummary `db:"-" json:"user,omitempty"`
}

// QueryUpdate carries the admin's partial update.  A nil field is left
// untouched; a non-nil Notes pointing at "" clears the notes.
type QueryUpdate struct {
	Status *QueryStatus
	Notes  *string
}
