package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/auxmanager/internal/manager"
	"github.com/odyssey-erp/auxmanager/internal/platform/httpx"
	"github.com/odyssey-erp/auxmanager/internal/selectfill"
	"github.com/odyssey-erp/auxmanager/internal/shared"
	"github.com/odyssey-erp/auxmanager/internal/view"
)

const (
	sessionKey     = "manager"
	modalTemplate  = "partials/manager_modal.html"
	selectTemplate = "partials/select.html"
)

var errNoSession = fmt.Errorf("%w: no manager is open", httpx.ErrNotFound)

// RecordSource supplies the record lists of the host.
type RecordSource interface {
	Records(ctx context.Context, t manager.Type) ([]manager.Record, error)
}

// Handler exposes the manager modal over HTTP as HTML fragments.
type Handler struct {
	logger     *slog.Logger
	controller *manager.Controller
	records    RecordSource
	templates  *view.Engine
	csrf       *shared.CSRFManager
}

// NewHandler builds a Handler. records may be nil when no catalog is configured.
func NewHandler(logger *slog.Logger, controller *manager.Controller, records RecordSource, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, controller: controller, records: records, templates: templates, csrf: csrf}
}

// MountRoutes registers the manager endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Get("/state", h.state)
	r.Get("/open", h.openFromCatalog)
	r.Post("/open", h.openFromForm)
	r.Post("/edit", h.edit)
	r.Post("/submit", h.submit)
	r.Post("/items/{id}/delete", h.deleteItem)
	r.Post("/close", h.close)
	r.Get("/select/{type}", h.populateSelect)
}

type modalData struct {
	Session      *manager.Session
	List         manager.List
	Labels       manager.Labels
	Confirm      *confirmData
	Notification *manager.Notification
}

type confirmData struct {
	ID     int64
	Prompt string
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	ms, err := h.load(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.renderModal(w, r, ms, nil, nil)
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	ms, err := h.load(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ms)
}

func (h *Handler) openFromCatalog(w http.ResponseWriter, r *http.Request) {
	t, err := manager.ParseType(r.URL.Query().Get("type"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}

	var in manager.Input = manager.Invalid{}
	if h.records != nil {
		records, err := h.records.Records(r.Context(), t)
		if err != nil {
			h.logger.Warn("load manager records", slog.String("type", string(t)), slog.Any("error", err))
		} else {
			in = manager.Array(records)
		}
	}
	h.open(w, r, in, t)
}

func (h *Handler) openFromForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	t, err := manager.ParseType(r.PostFormValue("type"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}

	var in manager.Input = manager.Invalid{}
	if values, ok := r.PostForm["data"]; ok && len(values) > 0 {
		in = manager.EncodedText(values[0])
	}
	h.open(w, r, in, t)
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request, in manager.Input, t manager.Type) {
	title := r.FormValue("title")
	if title == "" {
		title = string(t)
	}
	// Decode failures are already logged by the controller; the session is usable.
	ms, _ := h.controller.Open(in, t, title, pageFrom(r))
	if err := h.save(r, ms); err != nil {
		h.logger.Error("store manager session", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.renderModal(w, r, ms, nil, nil)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	ms, err := h.load(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}
	h.controller.EditItem(ms, id, r.PostFormValue("name"))
	h.saveAndRender(w, r, ms, nil, nil)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	ms, err := h.load(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	outcome, err := h.controller.Submit(r.Context(), ms, manager.Form{
		ID:   r.PostFormValue("id"),
		Name: r.PostFormValue("name"),
	})
	if err != nil {
		h.logger.Info("manager submit not applied", slog.String("type", string(ms.Type)), slog.Any("error", err))
	}
	h.finish(w, r, ms, outcome)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	ms, err := h.load(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	answer := r.PostFormValue("confirmed")
	confirmer := manager.ConfirmFunc(func(context.Context, string) bool {
		return answer == "yes"
	})
	outcome, err := h.controller.DeleteItem(r.Context(), ms, id, confirmer)
	if err != nil {
		h.logger.Info("manager delete not applied", slog.String("type", string(ms.Type)), slog.Int64("id", id), slog.Any("error", err))
	}
	if answer == "" && outcome == (manager.Outcome{}) {
		h.renderModal(w, r, ms, &confirmData{ID: id, Prompt: h.controller.ConfirmPrompt()}, nil)
		return
	}
	h.finish(w, r, ms, outcome)
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	ms, err := h.load(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.controller.Close(ms)
	h.saveAndRender(w, r, ms, nil, nil)
}

func (h *Handler) populateSelect(w http.ResponseWriter, r *http.Request) {
	t, err := manager.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	var records any
	if h.records != nil {
		list, err := h.records.Records(r.Context(), t)
		if err != nil {
			h.logger.Warn("load select records", slog.String("type", string(t)), slog.Any("error", err))
		} else {
			records = list
		}
	}
	sel := selectfill.Populate(h.controller.Printer(), r.URL.Query().Get("target"), records)
	if err := h.templates.Render(w, selectTemplate, h.templateData(r, sel)); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", selectTemplate))
	}
}

// finish applies an Outcome to the response.
func (h *Handler) finish(w http.ResponseWriter, r *http.Request, ms *manager.Session, outcome manager.Outcome) {
	if outcome.Reload {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusOK)
		return
	}
	events := map[string]any{}
	if outcome.Notification != nil {
		events["manager:notify"] = outcome.Notification
	}
	if outcome.Closed {
		events["manager:updated"] = map[string]string{"type": string(ms.Type)}
	}
	if len(events) > 0 {
		if payload, err := json.Marshal(events); err == nil {
			w.Header().Set("HX-Trigger", string(payload))
		}
	}
	h.saveAndRender(w, r, ms, nil, outcome.Notification)
}

func (h *Handler) saveAndRender(w http.ResponseWriter, r *http.Request, ms *manager.Session, confirm *confirmData, note *manager.Notification) {
	if err := h.save(r, ms); err != nil {
		h.logger.Error("store manager session", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.renderModal(w, r, ms, confirm, note)
}

func (h *Handler) renderModal(w http.ResponseWriter, r *http.Request, ms *manager.Session, confirm *confirmData, note *manager.Notification) {
	data := modalData{
		Session:      ms,
		List:         h.controller.Render(ms),
		Labels:       h.controller.Labels(),
		Confirm:      confirm,
		Notification: note,
	}
	if err := h.templates.Render(w, modalTemplate, h.templateData(r, data)); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", modalTemplate))
	}
}

func (h *Handler) templateData(r *http.Request, data any) view.TemplateData {
	sess := shared.RequestSession(r)
	csrfToken, _ := h.csrf.Token(sess)
	return view.TemplateData{
		Title:       "Manager",
		CSRFToken:   csrfToken,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
}

func (h *Handler) load(r *http.Request) (*manager.Session, error) {
	sess := shared.RequestSession(r)
	if sess == nil {
		return nil, errNoSession
	}
	raw := sess.Get(sessionKey)
	if raw == "" {
		return nil, errNoSession
	}
	var ms manager.Session
	if err := json.Unmarshal([]byte(raw), &ms); err != nil {
		return nil, fmt.Errorf("decode manager session: %w", err)
	}
	return &ms, nil
}

func (h *Handler) save(r *http.Request, ms *manager.Session) error {
	sess := shared.RequestSession(r)
	if sess == nil {
		return errors.New("request has no session")
	}
	payload, err := json.Marshal(ms)
	if err != nil {
		return err
	}
	sess.Set(sessionKey, string(payload))
	return nil
}

// pageFrom returns the hosting page path, from the page field or the Referer.
func pageFrom(r *http.Request) manager.Page {
	if page := r.FormValue("page"); page != "" {
		return manager.Page(page)
	}
	if ref, err := url.Parse(r.Referer()); err == nil {
		return manager.Page(ref.Path)
	}
	return ""
}
