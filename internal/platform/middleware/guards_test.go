package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/rheumacare/portal/internal/platform/session"
)

// fakeStore returns a fixed session, or ErrNoSession when sess is nil.
type fakeStore struct {
	sess    *session.Session
	cleared bool
}

func (f *fakeStore) Load(*http.Request) (*session.Session, error) {
	if f.sess == nil {
		return nil, session.ErrNoSession
	}
	return f.sess, nil
}

func (f *fakeStore) Save(http.ResponseWriter, *session.Session) error { return nil }

func (f *fakeStore) Clear(http.ResponseWriter) { f.cleared = true }

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequireSession_RedirectsAnonymousToLogin(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := RequireSession(&fakeStore{})(okHandler)(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("location = %q, want /login", loc)
	}
}

func TestRequireSession_APIRequestsGet401JSON(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/drugs", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := RequireSession(&fakeStore{})(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireSession_StashesSession(t *testing.T) {
	store := &fakeStore{sess: &session.Session{Token: "t", User: "u", Role: session.RoleDoctor}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		if got := CurrentSession(c); got.Token != "t" {
			t.Errorf("session token = %q", got.Token)
		}
		return c.String(http.StatusOK, "ok")
	}

	if err := RequireSession(store)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRequireAdmin_BouncesDoctorToEditor(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(sessionKey, &session.Session{Token: "t", Role: session.RoleDoctor})

	if err := RequireAdmin()(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("location = %q, want /", loc)
	}
}

func TestRequireAdmin_AllowsAdmin(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(sessionKey, &session.Session{Token: "t", Role: session.RoleAdmin})

	if err := RequireAdmin()(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
