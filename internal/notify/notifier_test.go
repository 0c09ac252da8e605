package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu     sync.Mutex
	sent   []Message
	failTo map[string]error
	panics bool
}

func (f *fakeMailer) Send(_ context.Context, msg Message) (string, error) {
	if f.panics {
		panic("boom")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failTo[msg.To]; err != nil {
		return "", err
	}
	f.sent = append(f.sent, msg)
	return "msg-" + msg.To, nil
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func testConfig() Config {
	return Config{
		OperatorEmail: "ops@ikrr.test",
		From:          "noreply@ikrr.test",
		CompanyName:   "IKRR Events",
		CompanyPhone:  "+91-0000000000",
	}
}

func TestSendBookingSendsBothMessages(t *testing.T) {
	m := &fakeMailer{}
	n := New(m, testConfig(), quietLogger())

	res := n.Send(context.Background(), KindBooking, "asha@example.com", "Asha", BookingDetails{
		ID: "b-1", EventTypes: []string{"Wedding", "Haldi"}, Dates: []string{"2025-06-01", "2025-06-02"},
		Venue: "Grand Hall", AttendeeCount: 120, Budget: "5 lakh",
	})
	require.True(t, res.Success)
	assert.Empty(t, res.Error)
	assert.Equal(t, "msg-ops@ikrr.test", res.Operator.MessageID)
	assert.Equal(t, "msg-asha@example.com", res.Customer.MessageID)

	require.Len(t, m.sent, 2)
	op, cust := m.sent[0], m.sent[1]
	assert.Equal(t, "ops@ikrr.test", op.To)
	assert.Equal(t, "noreply@ikrr.test", op.From)
	assert.Equal(t, "NEW BOOKING: b-1 - Asha", op.Subject)
	assert.Contains(t, op.HTML, "Wedding, Haldi")
	assert.Contains(t, op.HTML, "2025-06-01, 2025-06-02")
	assert.Contains(t, op.HTML, "Grand Hall")

	assert.Equal(t, "asha@example.com", cust.To)
	assert.Equal(t, "Booking Confirmation - Reference #b-1", cust.Subject)
	assert.Contains(t, cust.HTML, "Hi Asha,")
	assert.Contains(t, cust.HTML, "+91-0000000000")
}

func TestSendQueryEscapesAndBreaksLines(t *testing.T) {
	m := &fakeMailer{}
	n := New(m, testConfig(), quietLogger())

	res := n.Send(context.Background(), KindQuery, "guest@example.com", "<Guest>", QueryDetails{
		ID: "q-9", Message: "line one\n<script>x</script>", Phone: "555",
	})
	require.True(t, res.Success)
	require.Len(t, m.sent, 2)

	op := m.sent[0]
	assert.Equal(t, "NEW QUERY: q-9 - <Guest>", op.Subject)
	assert.Contains(t, op.HTML, "line one<br>&lt;script&gt;x&lt;/script&gt;")
	assert.Contains(t, op.HTML, "&lt;Guest&gt;")
	assert.Contains(t, op.HTML, "<strong>Phone:</strong> 555")
	assert.Equal(t, "Query Confirmation - Reference #q-9", m.sent[1].Subject)
}

func TestSendIndependentOutcomes(t *testing.T) {
	m := &fakeMailer{failTo: map[string]error{"ops@ikrr.test": errors.New("operator mailbox down")}}
	n := New(m, testConfig(), quietLogger())

	res := n.Send(context.Background(), KindQuery, "guest@example.com", "Guest", QueryDetails{ID: "q-1", Message: "hi"})
	assert.True(t, res.Success)
	assert.Error(t, res.Operator.Err)
	assert.NoError(t, res.Customer.Err)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "guest@example.com", m.sent[0].To)

	m = &fakeMailer{failTo: map[string]error{"guest@example.com": errors.New("domain not verified")}}
	n = New(m, testConfig(), quietLogger())
	res = n.Send(context.Background(), KindQuery, "guest@example.com", "Guest", QueryDetails{ID: "q-2", Message: "hi"})
	assert.False(t, res.Success)
	assert.Equal(t, "domain not verified", res.Error)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "ops@ikrr.test", m.sent[0].To)
}

func TestSendWithoutMailer(t *testing.T) {
	n := New(nil, testConfig(), quietLogger())
	res := n.Send(context.Background(), KindBooking, "a@example.com", "A", BookingDetails{ID: "b"})
	assert.False(t, res.Success)
	assert.Equal(t, "email service not configured", res.Error)
}

func TestSendRecoversPanics(t *testing.T) {
	n := New(&fakeMailer{panics: true}, testConfig(), quietLogger())
	var res Result
	assert.NotPanics(t, func() {
		res = n.Send(context.Background(), KindQuery, "a@example.com", "A", QueryDetails{ID: "q"})
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "boom")
}

func TestSendRejectsMismatchedPayload(t *testing.T) {
	m := &fakeMailer{}
	n := New(m, testConfig(), quietLogger())

	res := n.Send(context.Background(), KindBooking, "a@example.com", "A", QueryDetails{ID: "q"})
	assert.False(t, res.Success)
	assert.Empty(t, m.sent)

	res = n.Send(context.Background(), Kind("sms"), "a@example.com", "A", nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown notification kind")
}

func TestResendMailer(t *testing.T) {
	assert.Nil(t, NewResendMailer(""))

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.True(t, strings.HasSuffix(r.URL.Path, "/emails"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"em_123"}`))
	}))
	defer srv.Close()

	m := NewResendMailer("re_test")
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	m.client.BaseURL = base

	id, err := m.Send(context.Background(), Message{From: "f@x.test", To: "t@x.test", Subject: "S", HTML: "<p>B</p>"})
	require.NoError(t, err)
	assert.Equal(t, "em_123", id)
	assert.Equal(t, "f@x.test", got["from"])
	assert.Equal(t, []any{"t@x.test"}, got["to"])
	assert.Equal(t, "<p>B</p>", got["html"])
}
