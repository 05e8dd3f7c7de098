package doctor

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/rheumacare/portal/internal/platform/session"
	"github.com/rheumacare/portal/internal/platform/web"
)

func adminContext(t *testing.T, e *echo.Echo, method, target string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("session", &session.Session{Token: "tok", User: "admin", Role: session.RoleAdmin})
	return c, rec
}

func TestCreate_BlankPasswordRejectedLocally(t *testing.T) {
	var backendHit bool
	svc, srv := newService(func(w http.ResponseWriter, r *http.Request) {
		backendHit = true
	})
	defer srv.Close()
	h := NewHandler(svc)

	form := url.Values{"name": {"Dr. X"}, "username": {"x"}, "location": {"Bangalore"}, "is_active": {"true"}}
	c, rec := adminContext(t, echo.New(), http.MethodPost, "/admin/doctors", form)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backendHit {
		t.Error("blank password must not reach the backend")
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin" {
		t.Errorf("location = %q", loc)
	}
}

func TestCreate_SuccessRedirectsWithFlash(t *testing.T) {
	svc, srv := newService(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"dr_x","name":"Dr. X"}`))
	})
	defer srv.Close()
	h := NewHandler(svc)

	form := url.Values{
		"name": {"Dr. X"}, "username": {"x"}, "password": {"secret123"},
		"location": {"Bangalore"}, "is_active": {"true"},
	}
	c, rec := adminContext(t, echo.New(), http.MethodPost, "/admin/doctors", form)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "rheumacare_flash") {
		t.Error("expected a flash cookie")
	}
}

func TestUpdate_AuthErrorPropagates(t *testing.T) {
	svc, srv := newService(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"Admin access required"}`))
	})
	defer srv.Close()
	h := NewHandler(svc)

	form := url.Values{"name": {"Dr. X"}, "username": {"x"}}
	c, _ := adminContext(t, echo.New(), http.MethodPost, "/admin/doctors/dr_x", form)
	c.SetParamNames("id")
	c.SetParamValues("dr_x")

	if err := h.Update(c); err == nil {
		t.Fatal("403 must propagate to the auth-failure middleware")
	}
}

func TestDelete_Success(t *testing.T) {
	var method, path string
	svc, srv := newService(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		_, _ = w.Write([]byte(`{"message":"Doctor deleted successfully"}`))
	})
	defer srv.Close()
	h := NewHandler(svc)

	c, rec := adminContext(t, echo.New(), http.MethodPost, "/admin/doctors/dr_x/delete", nil)
	c.SetParamNames("id")
	c.SetParamValues("dr_x")

	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method != http.MethodDelete || path != "/admin/doctors/dr_x" {
		t.Errorf("backend saw %s %s", method, path)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPage_RendersDoctorTable(t *testing.T) {
	svc, srv := newService(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"doctors":[{"id":"dr_prakashini","name":"Dr. Prakashini M V","username":"prakashini","location":"Bangalore","is_active":true}]}`))
	})
	defer srv.Close()
	h := NewHandler(svc)

	e := echo.New()
	renderer, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e.Renderer = renderer

	c, rec := adminContext(t, e, http.MethodGet, "/admin", nil)
	if err := h.Page(c); err != nil {
		t.Fatalf("page: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Dr. Prakashini M V") {
		t.Error("expected doctor row in output")
	}
}
