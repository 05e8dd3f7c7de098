package prescription

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rheumacare/portal/internal/domain/doctor"
	"github.com/rheumacare/portal/internal/platform/debounce"
	"github.com/rheumacare/portal/internal/platform/gateway"
	"github.com/rheumacare/portal/internal/platform/middleware"
	"github.com/rheumacare/portal/internal/platform/web"
	"github.com/rheumacare/portal/pkg/histfilter"
)

// maxSuggestions caps the autocomplete dropdown regardless of how many
// matches the backend returns.
const maxSuggestions = 10

// minLookupChars is the shared threshold below which neither the drug search
// nor the OP No lookup calls the backend.
const minLookupChars = 2

type Handler struct {
	svc            *Service
	doctors        *doctor.Service
	lookup         *debounce.Debouncer
	fallbackDoctor string
}

func NewHandler(svc *Service, doctors *doctor.Service, lookup *debounce.Debouncer, fallbackDoctor string) *Handler {
	return &Handler{svc: svc, doctors: doctors, lookup: lookup, fallbackDoctor: fallbackDoctor}
}

// RegisterRoutes mounts the prescription pages and their JSON endpoints.
// Both groups carry RequireSession.
func (h *Handler) RegisterRoutes(pages, api *echo.Group) {
	pages.GET("/", h.NewEditor)
	pages.GET("/prescriptions/:id/edit", h.EditEditor)
	pages.POST("/prescriptions/save", h.Save)
	pages.GET("/history", h.History)
	pages.GET("/prescriptions/export/excel", h.ExportExcel)
	pages.GET("/prescriptions/:id", h.View)
	pages.GET("/prescriptions/:id/pdf", h.PDF)
	pages.POST("/prescriptions/:id/delete", h.Delete)

	api.GET("/drugs", h.DrugSearch)
	api.GET("/prescriptions/by-op", h.LookupByOp)
	api.GET("/prescriptions/:id", h.RecordJSON)
}

// --- editor ----------------------------------------------------------------

func (h *Handler) NewEditor(c echo.Context) error {
	return h.renderEditor(c, NewForm(h.fallbackDoctor), "create", "")
}

func (h *Handler) EditEditor(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	id := c.Param("id")

	rec, err := h.svc.Get(c.Request().Context(), sess.Token, id)
	if err != nil {
		if isAuthError(err) {
			return err
		}
		web.SetFlash(c.Response(), web.FlashError, "Could not load the prescription")
		return c.Redirect(http.StatusSeeOther, "/")
	}

	form := NewForm(h.fallbackDoctor)
	form.LoadRecord(rec)
	return h.renderEditor(c, form, "edit", id)
}

func (h *Handler) renderEditor(c echo.Context, form *Form, mode, recordID string) error {
	sess := middleware.CurrentSession(c)

	doctors, err := h.doctors.List(c.Request().Context(), sess.Token)
	if err != nil {
		if isAuthError(err) {
			return err
		}
		web.SetFlash(c.Response(), web.FlashError, "Could not load the doctor list")
	}

	title := "New Prescription"
	if mode == "edit" {
		title = "Edit Prescription"
	}
	page := web.NewPage(c, title, sess, map[string]interface{}{
		"Mode":             mode,
		"RecordID":         recordID,
		"Form":             form,
		"Doctors":          doctors,
		"FrequencyOptions": FrequencyOptions,
		"DurationUnits":    DurationUnits,
		"SexOptions":       SexOptions,
	})
	return c.Render(http.StatusOK, "editor.html", page)
}

func (h *Handler) Save(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	id := c.FormValue("id")

	back := "/"
	if id != "" {
		back = "/prescriptions/" + id + "/edit"
	}

	form := parseForm(c)
	if err := form.Validate(); err != nil {
		web.SetFlash(c.Response(), web.FlashError, err.Error())
		return c.Redirect(http.StatusSeeOther, back)
	}

	ctx := c.Request().Context()
	var saved *Prescription
	var err error
	if id == "" {
		saved, err = h.svc.Create(ctx, sess.Token, form.Payload())
	} else {
		saved, err = h.svc.Update(ctx, sess.Token, id, form.Payload())
		if saved != nil && saved.ID == "" {
			saved.ID = id
		}
	}
	if err != nil {
		if isAuthError(err) {
			return err
		}
		web.SetFlash(c.Response(), web.FlashError, userMessage(err))
		return c.Redirect(http.StatusSeeOther, back)
	}

	if id == "" {
		web.SetFlash(c.Response(), web.FlashSuccess, "Prescription saved")
	} else {
		web.SetFlash(c.Response(), web.FlashSuccess, "Prescription updated")
	}
	return c.Redirect(http.StatusSeeOther, "/prescriptions/"+saved.ID)
}

// --- history ---------------------------------------------------------------

func (h *Handler) History(c echo.Context) error {
	sess := middleware.CurrentSession(c)

	records, err := h.svc.List(c.Request().Context(), sess.Token)
	if err != nil {
		if isAuthError(err) {
			return err
		}
		web.SetFlash(c.Response(), web.FlashError, "Could not load the history")
		records = nil
	}

	q := c.QueryParam("q")
	if q != "" {
		filtered := records[:0]
		for _, r := range records {
			if histfilter.Matches(q, r.PatientName, r.OpNo, r.Diagnosis) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	page := web.NewPage(c, "History", sess, map[string]interface{}{
		"Records": records,
		"Query":   q,
	})
	return c.Render(http.StatusOK, "history.html", page)
}

func (h *Handler) Delete(c echo.Context) error {
	sess := middleware.CurrentSession(c)

	if err := h.svc.Delete(c.Request().Context(), sess.Token, c.Param("id")); err != nil {
		if isAuthError(err) {
			return err
		}
		web.SetFlash(c.Response(), web.FlashError, userMessage(err))
		return c.Redirect(http.StatusSeeOther, "/history")
	}

	web.SetFlash(c.Response(), web.FlashSuccess, "Prescription deleted")
	return c.Redirect(http.StatusSeeOther, "/history")
}

// --- detail / downloads ----------------------------------------------------

func (h *Handler) View(c echo.Context) error {
	sess := middleware.CurrentSession(c)

	rec, err := h.svc.Get(c.Request().Context(), sess.Token, c.Param("id"))
	if err != nil {
		if isAuthError(err) {
			return err
		}
		web.SetFlash(c.Response(), web.FlashError, "Could not load the prescription")
		return c.Redirect(http.StatusSeeOther, "/history")
	}

	doctorID := rec.DoctorID
	if doctorID == "" {
		doctorID = h.fallbackDoctor
	}
	// The page still renders without the signature block if the doctor
	// lookup fails.
	profile, err := h.doctors.Get(c.Request().Context(), sess.Token, doctorID)
	if err != nil {
		if isAuthError(err) {
			return err
		}
		profile = nil
	}

	page := web.NewPage(c, "Prescription "+rec.OpNo, sess, map[string]interface{}{
		"Record": rec,
		"Doctor": profile,
	})
	return c.Render(http.StatusOK, "view.html", page)
}

func (h *Handler) ExportExcel(c echo.Context) error {
	sess := middleware.CurrentSession(c)

	dl, err := h.svc.ExportExcel(c.Request().Context(), sess.Token)
	if err != nil {
		if isAuthError(err) {
			return err
		}
		web.SetFlash(c.Response(), web.FlashError, "Export failed")
		return c.Redirect(http.StatusSeeOther, "/history")
	}
	defer dl.Body.Close()

	filename := dl.Filename
	if filename == "" {
		filename = "prescriptions_" + time.Now().Format("20060102") + ".xlsx"
	}
	contentType := dl.ContentType
	if contentType == "" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Stream(http.StatusOK, contentType, dl.Body)
}

func (h *Handler) PDF(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	id := c.Param("id")

	dl, err := h.svc.FetchPDF(c.Request().Context(), sess.Token, id)
	if err != nil {
		if isAuthError(err) {
			return err
		}
		web.SetFlash(c.Response(), web.FlashError, "PDF download failed")
		return c.Redirect(http.StatusSeeOther, "/prescriptions/"+id)
	}
	defer dl.Body.Close()

	filename := dl.Filename
	if filename == "" {
		// Older backends leave the disposition off; rebuild their naming.
		if rec, recErr := h.svc.Get(c.Request().Context(), sess.Token, id); recErr == nil {
			filename = "prescription_" + rec.OpNo + "_" + rec.DisplayDate() + ".pdf"
		} else {
			filename = "prescription.pdf"
		}
	}
	contentType := dl.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Stream(http.StatusOK, contentType, dl.Body)
}

// --- JSON endpoints for the editor's scripts -------------------------------

func (h *Handler) DrugSearch(c echo.Context) error {
	sess := middleware.CurrentSession(c)

	term := c.QueryParam("search")
	if len(term) < minLookupChars {
		return c.JSON(http.StatusOK, map[string]interface{}{"drugs": []string{}})
	}

	drugs, err := h.svc.SearchDrugs(c.Request().Context(), sess.Token, term)
	if err != nil {
		return err
	}
	if len(drugs) > maxSuggestions {
		drugs = drugs[:maxSuggestions]
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"drugs": drugs})
}

// LookupByOp is the debounced half of the reconciliation flow. Every
// keystroke lands here; only the request that survives the quiet period
// touches the backend, the rest answer superseded.
func (h *Handler) LookupByOp(c echo.Context) error {
	sess := middleware.CurrentSession(c)

	opNo := c.QueryParam("op_no")
	if len(opNo) < minLookupChars {
		return c.JSON(http.StatusOK, map[string]interface{}{"prescriptions": []Prescription{}})
	}

	ctx := c.Request().Context()
	switch err := h.lookup.Wait(ctx, "op-lookup:"+sess.Token); {
	case errors.Is(err, debounce.ErrSuperseded):
		return c.JSON(http.StatusOK, map[string]bool{"superseded": true})
	case err != nil:
		// Caller went away before the quiet period ended.
		return nil
	}

	records, err := h.svc.ByOp(ctx, sess.Token, opNo)
	if err != nil {
		return err
	}
	if records == nil {
		records = []Prescription{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"prescriptions": records})
}

func (h *Handler) RecordJSON(c echo.Context) error {
	sess := middleware.CurrentSession(c)

	rec, err := h.svc.Get(c.Request().Context(), sess.Token, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// --- helpers ---------------------------------------------------------------

// parseForm rebuilds the editor form from the submitted fields. The drug
// columns arrive as parallel arrays; every row posts every column, so the
// arrays are index-aligned by construction.
func parseForm(c echo.Context) *Form {
	form := &Form{
		OpNo:            c.FormValue("op_no"),
		PatientName:     c.FormValue("patient_name"),
		Sex:             c.FormValue("sex"),
		Age:             c.FormValue("age"),
		ICDCode:         c.FormValue("icd_code"),
		Weight:          c.FormValue("weight"),
		Height:          c.FormValue("height"),
		BP:              c.FormValue("bp"),
		SpO2:            c.FormValue("spo2"),
		Diagnosis:       c.FormValue("diagnosis"),
		ClinicalHistory: c.FormValue("clinical_history"),
		ReviewAfter:     c.FormValue("review_after"),
		Advice:          c.FormValue("advice"),
		LabTests:        c.FormValue("lab_tests"),
		DoctorID:        c.FormValue("doctor_id"),
	}

	values, err := c.FormParams()
	if err != nil {
		form.Rows = []Row{NewRow()}
		return form
	}

	names := values["drug_name[]"]
	dosages := values["dosage[]"]
	frequencies := values["frequency[]"]
	durations := values["duration[]"]
	units := values["duration_unit[]"]
	comments := values["comments[]"]

	at := func(list []string, i int) string {
		if i < len(list) {
			return list[i]
		}
		return ""
	}

	for i := range names {
		line := DrugLine{
			DrugName:     names[i],
			Dosage:       at(dosages, i),
			Frequency:    at(frequencies, i),
			Duration:     at(durations, i),
			DurationUnit: at(units, i),
			Comments:     at(comments, i),
		}
		if line.Frequency == "" {
			line.Frequency = DefaultFrequency
		}
		if line.DurationUnit == "" {
			line.DurationUnit = DefaultDurationUnit
		}
		form.Rows = append(form.Rows, Row{Line: line, SearchText: line.DrugName})
	}
	if len(form.Rows) == 0 {
		form.Rows = []Row{NewRow()}
	}
	return form
}

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
