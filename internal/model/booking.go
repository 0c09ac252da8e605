package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// BookingStatus is the lifecycle state of a booking.  Any value may
// replace any other; CANCELLED is not terminal.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// EventSlot is one requested date with its optional start time.
type EventSlot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Schedule is the ordered list of requested slots, stored as JSON.
type Schedule []EventSlot

// Dates returns the slot dates in order.
func (s Schedule) Dates() []string {
	out := make([]string, 0, len(s))
	for _, slot := range s {
		out = append(out, slot.Date)
	}
	return out
}

// Value implements driver.Valuer.
func (s Schedule) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]EventSlot(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *Schedule) Scan(src any) error {
	raw, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*s = Schedule{}
		return nil
	}
	var out []EventSlot
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan schedule: %w", err)
	}
	if out == nil {
		out = []EventSlot{}
	}
	*s = out
	return nil
}

// PointOfContact is the person the planners call about a booking.
type PointOfContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Booking records an event-service request submitted by a signed-in user
// (the `event_queries` table).  Only an admin changes its status or
// deletes it; the owner never edits it after creation.
type Booking struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	EventTypes      StringList     `json:"eventTypes"`
	OtherEvent      *string        `json:"otherEvent"`
	Schedule        Schedule       `json:"schedule"`
	Venue           string         `json:"eventVenue"`
	AttendeeCount   int            `json:"attendeeCount"`
	SetupDetails    *string        `json:"setupDetails"`
	ThemeDetails    *string        `json:"themeDetails"`
	AVNeeds         *string        `json:"avNeeds"`
	FoodNeeds       *string        `json:"foodNeeds"`
	BrandingNeeds   *string        `json:"brandingNeeds"`
	BrandingFileURL *string        `json:"brandingFileUrl"`
	Budget          string         `json:"budget"`
	Contact         PointOfContact `json:"contact"`
	Status          BookingStatus  `json:"status"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	User            *UserSummary   `json:"user,omitempty"`
}
