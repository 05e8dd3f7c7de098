package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rheumacare/portal/internal/platform/gateway"
	"github.com/rheumacare/portal/internal/platform/session"
	"github.com/rheumacare/portal/internal/platform/web"
)

type Handler struct {
	svc   *Service
	store session.Store
}

func NewHandler(svc *Service, store session.Store) *Handler {
	return &Handler{svc: svc, store: store}
}

// RegisterRoutes mounts the public auth routes; logout sits behind no guard
// either, clearing a session is always safe.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/login", h.LoginPage)
	e.POST("/login", h.Login)
	e.POST("/logout", h.Logout)
}

func (h *Handler) LoginPage(c echo.Context) error {
	// Already signed in: go straight to the role's landing page.
	if sess, err := h.store.Load(c.Request()); err == nil {
		return c.Redirect(http.StatusSeeOther, landing(sess.Role))
	}
	return h.renderLogin(c, "", "")
}

func (h *Handler) Login(c echo.Context) error {
	creds := Credentials{
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
	}

	res, err := h.svc.Login(c.Request().Context(), creds)
	if err != nil {
		// A 401 here is a wrong password, not an expired session; it stays
		// on this page rather than going through the global teardown.
		return h.renderLogin(c, creds.Username, loginMessage(err))
	}

	sess := &session.Session{
		Token:    res.Token,
		User:     res.User,
		Role:     res.Role,
		DoctorID: res.DoctorID,
		Location: res.Location,
	}
	if err := h.store.Save(c.Response(), sess); err != nil {
		return h.renderLogin(c, creds.Username, "Could not start a session. Please try again.")
	}

	web.SetFlash(c.Response(), web.FlashSuccess, "Welcome, "+res.User)
	return c.Redirect(http.StatusSeeOther, landing(res.Role))
}

func (h *Handler) Logout(c echo.Context) error {
	h.store.Clear(c.Response())
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handler) renderLogin(c echo.Context, username, errMsg string) error {
	status := http.StatusOK
	if errMsg != "" {
		status = http.StatusUnauthorized
	}
	page := web.NewPage(c, "Sign in", nil, map[string]string{
		"Username": username,
		"Error":    errMsg,
	})
	return c.Render(status, "login.html", page)
}

func landing(role string) string {
	if role == session.RoleAdmin {
		return "/admin"
	}
	return "/"
}

func loginMessage(err error) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Invalid credentials"
}
