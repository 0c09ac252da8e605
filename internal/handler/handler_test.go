package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/ikrrevents/eventsite/internal/app"
	"github.com/ikrrevents/eventsite/internal/config"
	"github.com/ikrrevents/eventsite/internal/database"
	"github.com/ikrrevents/eventsite/internal/model"
	"github.com/ikrrevents/eventsite/internal/notify"
	"github.com/ikrrevents/eventsite/internal/oauth"
	"github.com/ikrrevents/eventsite/internal/queue"
	"github.com/ikrrevents/eventsite/internal/repository"
	"github.com/ikrrevents/eventsite/internal/utils"
)

const (
	testSecret = "test-secret"
	adminEmail = "admin@ikrr.co.in"
	publicURL  = "http://localhost:3000"
)

type sentMail struct {
	Kind    notify.Kind
	Email   string
	Name    string
	Payload any
}

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []sentMail
	result notify.Result
}

func (f *fakeNotifier) Send(_ context.Context, kind notify.Kind, email, name string, payload any) notify.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{Kind: kind, Email: email, Name: name, Payload: payload})
	return f.result
}

func (f *fakeNotifier) calls() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.SubmissionEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev queue.SubmissionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakePublisher) published() []queue.SubmissionEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]queue.SubmissionEvent(nil), f.events...)
}

type fakeProvider struct {
	identity *oauth.Identity
	err      error
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.test/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (*oauth.Identity, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.identity == nil {
		return nil, errors.New("no identity")
	}
	return p.identity, nil
}

type testEnv struct {
	e        *echo.Echo
	db       *sqlx.DB
	notifier *fakeNotifier
	events   *fakePublisher
	provider *fakeProvider
}

func newEnv(t *testing.T, opts ...func(*app.Deps)) *testEnv {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, database.DriverSQLite, filepath.Join(t.TempDir(), "handler.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db))

	env := &testEnv{
		db:       db,
		notifier: &fakeNotifier{result: notify.Result{Success: true}},
		events:   &fakePublisher{},
		provider: &fakeProvider{},
	}
	cfg := config.Config{
		Env:            "test",
		JWTSecret:      testSecret,
		AccessTTLMin:   60,
		RefreshTTLDays: 30,
		AdminEmail:     adminEmail,
		PublicURL:      publicURL,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := app.Deps{
		DB:       db,
		Notifier: env.notifier,
		Events:   env.events,
		Provider: env.provider,
	}
	for _, o := range opts {
		o(&deps)
	}
	env.e = app.NewServer(cfg, log, deps)
	return env
}

// signIn stores the user and returns an access token for it.  The admin
// email yields an admin session.
func (env *testEnv) signIn(t *testing.T, email, name string) (string, *model.User) {
	t.Helper()
	u, err := repository.NewUserRepo(env.db).UpsertOAuth(context.Background(), email, name, model.RoleForEmail(email, adminEmail))
	require.NoError(t, err)
	tok, err := utils.NewAccessToken(testSecret, u.ID, string(u.Role), u.Email, u.Name, 60)
	require.NoError(t, err)
	return tok.Token, u
}

func bearer(tok string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
}

// do sends a request through the full router.  body may be nil, a raw
// string, or any value to encode as JSON.
func (env *testEnv) do(method, path string, body any, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		bs, _ := json.Marshal(b)
		r = bytes.NewReader(bs)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decode(t, rec)["error"].(string)
	return msg
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHealth(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}
