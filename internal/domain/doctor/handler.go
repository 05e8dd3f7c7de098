package doctor

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rheumacare/portal/internal/platform/gateway"
	"github.com/rheumacare/portal/internal/platform/middleware"
	"github.com/rheumacare/portal/internal/platform/web"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the admin panel. The group already carries
// RequireSession and RequireAdmin.
func (h *Handler) RegisterRoutes(admin *echo.Group) {
	admin.GET("", h.Page)
	admin.POST("/doctors", h.Create)
	admin.POST("/doctors/:id", h.Update)
	admin.POST("/doctors/:id/delete", h.Delete)
}

func (h *Handler) Page(c echo.Context) error {
	sess := middleware.CurrentSession(c)

	doctors, err := h.svc.AdminList(c.Request().Context(), sess.Token)
	if err != nil {
		if isAuthError(err) {
			return err
		}
		web.SetFlash(c.Response(), web.FlashError, userMessage(err))
		doctors = nil
	}

	page := web.NewPage(c, "Doctors", sess, map[string]interface{}{
		"Doctors": doctors,
	})
	return c.Render(http.StatusOK, "admin.html", page)
}

func (h *Handler) Create(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	in := formInput(c)

	if in.Password == "" {
		web.SetFlash(c.Response(), web.FlashError, "Password is required for a new doctor")
		return c.Redirect(http.StatusSeeOther, "/admin")
	}

	if _, err := h.svc.Create(c.Request().Context(), sess.Token, in); err != nil {
		if isAuthError(err) {
			return err
		}
		web.SetFlash(c.Response(), web.FlashError, userMessage(err))
		return c.Redirect(http.StatusSeeOther, "/admin")
	}

	web.SetFlash(c.Response(), web.FlashSuccess, "Doctor added")
	return c.Redirect(http.StatusSeeOther, "/admin")
}

func (h *Handler) Update(c echo.Context) error {
	sess := middleware.CurrentSession(c)

	if _, err := h.svc.Update(c.Request().Context(), sess.Token, c.Param("id"), formInput(c)); err != nil {
		if isAuthError(err) {
			return err
		}
		web.SetFlash(c.Response(), web.FlashError, userMessage(err))
		return c.Redirect(http.StatusSeeOther, "/admin")
	}

	web.SetFlash(c.Response(), web.FlashSuccess, "Doctor updated")
	return c.Redirect(http.StatusSeeOther, "/admin")
}

func (h *Handler) Delete(c echo.Context) error {
	sess := middleware.CurrentSession(c)

	if err := h.svc.Delete(c.Request().Context(), sess.Token, c.Param("id")); err != nil {
		if isAuthError(err) {
			return err
		}
		web.SetFlash(c.Response(), web.FlashError, userMessage(err))
		return c.Redirect(http.StatusSeeOther, "/admin")
	}

	web.SetFlash(c.Response(), web.FlashSuccess, "Doctor deleted")
	return c.Redirect(http.StatusSeeOther, "/admin")
}

func formInput(c echo.Context) Input {
	return Input{
		Name:           c.FormValue("name"),
		Qualifications: c.FormValue("qualifications"),
		Role:           c.FormValue("role"),
		KMCNo:          c.FormValue("kmc_no"),
		Location:       c.FormValue("location"),
		Username:       c.FormValue("username"),
		Password:       c.FormValue("password"),
		IsActive:       c.FormValue("is_active") == "true",
	}
}

// isAuthError reports errors the global auth-failure middleware owns.
func isAuthError(err error) bool {
	return gateway.IsStatus(err, http.StatusUnauthorized) || gateway.IsStatus(err, http.StatusForbidden)
}

func userMessage(err error) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Something went wrong. Please try again."
}
