package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crazylearners/portal/internal/core/domain"
)

type stubManager struct {
	state    domain.SessionState
	demo     bool
	events   chan domain.SessionEvent
	loginFn  func(ctx context.Context, email, secret string) error
	regFn    func(ctx context.Context, email, secret, name string) error
	logoutFn func(ctx context.Context) error
}

func (s *stubManager) CurrentSession() domain.SessionState { return s.state.Snapshot() }
func (s *stubManager) IsDemoMode() bool                    { return s.demo }

func (s *stubManager) Login(ctx context.Context, email, secret string) error {
	return s.loginFn(ctx, email, secret)
}

func (s *stubManager) Register(ctx context.Context, email, secret, name string) error {
	return s.regFn(ctx, email, secret, name)
}

func (s *stubManager) Logout(ctx context.Context) error { return s.logoutFn(ctx) }

func (s *stubManager) Subscribe() (<-chan domain.SessionEvent, func()) {
	return s.events, func() {}
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubManager{demo: true, state: domain.SessionState{Backend: domain.BackendMock}}
	stub.loginFn = func(_ context.Context, email, secret string) error {
		if email != "ravi@x.com" || secret != "pw" {
			t.Fatalf("unexpected args: %s %s", email, secret)
		}
		stub.state.CurrentUser = &domain.UserIdentity{UID: "mock-user-123", Email: email, DisplayName: "ravi", EmailVerified: true}
		return nil
	}
	h := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/login", `{"email":"ravi@x.com","password":"pw"}`), rec)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["display_name"] != "ravi" {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
	if resp["phase"] != "authenticated" || resp["demo_mode"] != true || resp["backend"] != "mock" {
		t.Fatalf("unexpected session payload: %+v", resp)
	}
}

func TestAuthHandler_Login_Validation(t *testing.T) {
	e := newEcho()
	stub := &stubManager{loginFn: func(context.Context, string, string) error {
		t.Fatalf("manager must not be called for invalid payload")
		return nil
	}}
	h := NewAuthHandler(stub)

	for _, body := range []string{`{"email":"","password":"pw"}`, `{"email":"not-an-email","password":"pw"}`, `{"email":"a@x.com"}`, `{`} {
		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/login", body), rec)
		err := h.Login(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400 HTTPError, got %v", body, err)
		}
	}
}

func TestAuthHandler_Login_Rejected(t *testing.T) {
	e := newEcho()
	rejected := domain.NewAuthError("Invalid email or password.", nil)
	stub := &stubManager{loginFn: func(context.Context, string, string) error { return rejected }}
	h := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/login", `{"email":"a@x.com","password":"bad"}`), rec)
	if err := h.Login(c); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication to reach the error handler, got %v", err)
	}
}

func TestAuthHandler_Login_WaitsForAsyncChange(t *testing.T) {
	e := newEcho()
	events := make(chan domain.SessionEvent, 4)
	stub := &stubManager{state: domain.SessionState{Backend: domain.BackendReal}, events: events}
	stub.loginFn = func(_ context.Context, email, _ string) error {
		go func() {
			time.Sleep(10 * time.Millisecond)
			user := &domain.UserIdentity{UID: "uid-1", Email: strings.ToLower(email)}
			events <- domain.SessionEvent{State: domain.SessionState{CurrentUser: user, Backend: domain.BackendReal}, Phase: domain.PhaseAuthenticated}
		}()
		return nil
	}
	h := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/login", `{"email":"Riya@X.com","password":"pw"}`), rec)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"phase":"authenticated"`) || !strings.Contains(rec.Body.String(), `"uid":"uid-1"`) {
		t.Fatalf("expected the delivered identity in the response: %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_SettleTimeout(t *testing.T) {
	e := newEcho()
	stub := &stubManager{
		state:   domain.SessionState{Backend: domain.BackendReal},
		events:  make(chan domain.SessionEvent),
		loginFn: func(context.Context, string, string) error { return nil },
	}
	h := NewAuthHandler(stub)
	h.settle = 20 * time.Millisecond

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/login", `{"email":"a@x.com","password":"pw"}`), rec)
	start := time.Now()
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("expected the wait to stop after the settle timeout")
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"phase":"anonymous"`) {
		t.Fatalf("expected the current snapshot after timeout, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthHandler_Register(t *testing.T) {
	e := newEcho()
	stub := &stubManager{}
	stub.regFn = func(_ context.Context, email, _ string, name string) error {
		stub.state.CurrentUser = &domain.UserIdentity{UID: "u", Email: email, DisplayName: name}
		return nil
	}
	h := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/register", `{"email":"a@x.com","password":"secret1","name":"Alice"}`), rec)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"display_name":"Alice"`) {
		t.Fatalf("expected display name in body: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubManager{})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/register", `{"email":"a@x.com","password":"123","name":"A"}`), rec)
	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if msg, _ := he.Message.(string); !strings.Contains(msg, "password must be at least 6") {
		t.Fatalf("unexpected validation message %q", msg)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newEcho()
	calls := 0
	h := NewAuthHandler(&stubManager{logoutFn: func(context.Context) error { calls++; return nil }})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil), rec)
		if err := h.Logout(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("expected two logout calls, got %d", calls)
	}
}

func TestSessionHandler_Get(t *testing.T) {
	e := newEcho()
	h := NewSessionHandler(&stubManager{state: domain.SessionState{Loading: true, Backend: domain.BackendReal}})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/session", nil), rec)
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"phase":"loading"`) || !strings.Contains(body, `"user":null`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestSessionHandler_Me(t *testing.T) {
	e := newEcho()
	h := NewSessionHandler(&stubManager{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/me", nil), rec)
	if err := h.Me(c); err == nil {
		t.Fatalf("expected error without session identity")
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/me", nil), rec)
	c.Set("uid", "u-1")
	c.Set("email", "a@x.com")
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"uid":"u-1"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestSessionHandler_Events(t *testing.T) {
	e := newEcho()
	events := make(chan domain.SessionEvent, 1)
	stub := &stubManager{state: domain.SessionState{Backend: domain.BackendMock}, demo: true, events: events}
	h := NewSessionHandler(stub)

	user := &domain.UserIdentity{UID: "mock-user-123", Email: "a@x.com"}
	events <- domain.SessionEvent{State: domain.SessionState{CurrentUser: user, Backend: domain.BackendMock}, Phase: domain.PhaseAuthenticated, At: time.Now()}
	close(events)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/session/events", nil), rec)
	if err := h.Events(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var phases []string
	scanner := bufio.NewScanner(strings.NewReader(rec.Body.String()))
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var ev map[string]any
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			t.Fatalf("invalid event data %q: %v", data, err)
		}
		phases = append(phases, ev["phase"].(string))
	}
	if len(phases) != 2 || phases[0] != "anonymous" || phases[1] != "authenticated" {
		t.Fatalf("expected snapshot then change, got %v", phases)
	}
}
