// Package notify sends the operator summary and the customer confirmation
// that follow every booking and contact query.  Delivery is best effort:
// Send never returns an error and never panics into the caller.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotConfigured is reported when no mail provider key is set.
var ErrNotConfigured = errors.New("email service not configured")

// Kind selects the message pair to send.
type Kind string

const (
	KindBooking Kind = "booking"
	KindQuery   Kind = "query"
)

// BookingDetails is the payload for KindBooking.
type BookingDetails struct {
	ID            string
	EventTypes    []string
	Dates         []string
	Venue         string
	AttendeeCount int
	Budget        string
}

// QueryDetails is the payload for KindQuery.
type QueryDetails struct {
	ID      string
	Message string
	Phone   string
}

// Delivery is the outcome of one message.
type Delivery struct {
	MessageID string
	Err       error
}

// Result reports both sends.  Success and Error describe the
// customer-facing message; Operator is informational.
type Result struct {
	Success  bool
	Error    string
	Operator Delivery
	Customer Delivery
}

// Config carries the sender identity and the copy used in every message.
type Config struct {
	OperatorEmail string
	From          string
	CompanyName   string
	CompanyPhone  string
}

// Notifier renders and delivers notification emails.
type Notifier struct {
	mailer Mailer
	cfg    Config
	log    *slog.Logger
}

// New builds a Notifier.  A nil mailer makes every Send report
// ErrNotConfigured without contacting anything.
func New(mailer Mailer, cfg Config, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{mailer: mailer, cfg: cfg, log: log}
}

// Send delivers the operator summary and the customer confirmation for one
// submission.  The two sends are independent; a failure of one does not
// stop the other.
func (n *Notifier) Send(ctx context.Context, kind Kind, email, name string, payload any) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error("notify_panic", "kind", kind, "panic", r)
			res = Result{Error: fmt.Sprintf("notification panicked: %v", r)}
		}
	}()

	if n.mailer == nil {
		n.log.Warn("notify_skipped", "kind", kind, "error", ErrNotConfigured)
		return Result{Error: ErrNotConfigured.Error()}
	}

	op, cust, err := n.compose(kind, email, name, payload)
	if err != nil {
		n.log.Error("notify_compose_failed", "kind", kind, "error", err)
		return Result{Error: err.Error()}
	}

	res.Operator = n.deliver(ctx, kind, "operator", op)
	res.Customer = n.deliver(ctx, kind, "customer", cust)
	res.Success = res.Customer.Err == nil
	if res.Customer.Err != nil {
		res.Error = res.Customer.Err.Error()
	}
	return res
}

func (n *Notifier) deliver(ctx context.Context, kind Kind, audience string, msg Message) Delivery {
	id, err := n.mailer.Send(ctx, msg)
	if err != nil {
		n.log.Warn("notify_send_failed", "kind", kind, "audience", audience, "to", msg.To, "error", err)
		return Delivery{Err: err}
	}
	n.log.Info("notify_sent", "kind", kind, "audience", audience, "to", msg.To, "message_id", id)
	return Delivery{MessageID: id}
}

func (n *Notifier) compose(kind Kind, email, name string, payload any) (op, cust Message, err error) {
	v := view{
		Company:      n.cfg.CompanyName,
		CompanyPhone: n.cfg.CompanyPhone,
		ContactEmail: n.cfg.OperatorEmail,
		Name:         name,
		Email:        email,
	}
	var opSubject, custSubject string
	switch kind {
	case KindBooking:
		b, ok := payload.(BookingDetails)
		if !ok {
			return op, cust, fmt.Errorf("booking notification needs BookingDetails, got %T", payload)
		}
		v.Booking = b
		opSubject = fmt.Sprintf("NEW BOOKING: %s - %s", b.ID, name)
		custSubject = fmt.Sprintf("Booking Confirmation - Reference #%s", b.ID)
		op.HTML, err = render(tmplBookingOperator, v)
		if err == nil {
			v.Customer = true
			cust.HTML, err = render(tmplBookingCustomer, v)
		}
	case KindQuery:
		q, ok := payload.(QueryDetails)
		if !ok {
			return op, cust, fmt.Errorf("query notification needs QueryDetails, got %T", payload)
		}
		v.Query = q
		opSubject = fmt.Sprintf("NEW QUERY: %s - %s", q.ID, name)
		custSubject = fmt.Sprintf("Query Confirmation - Reference #%s", q.ID)
		op.HTML, err = render(tmplQueryOperator, v)
		if err == nil {
			v.Customer = true
			cust.HTML, err = render(tmplQueryCustomer, v)
		}
	default:
		return op, cust, fmt.Errorf("unknown notification kind %q", kind)
	}
	if err != nil {
		return op, cust, err
	}

	op.From, op.To, op.Subject = n.cfg.From, n.cfg.OperatorEmail, opSubject
	cust.From, cust.To, cust.Subject = n.cfg.From, email, custSubject
	return op, cust, nil
}
