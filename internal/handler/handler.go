package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/pathfinder/internal/handler/views"
	appI18n "github.com/pavelanni/pathfinder/internal/i18n"
	"github.com/pavelanni/pathfinder/internal/model"
	"github.com/pavelanni/pathfinder/internal/pathfinder"
	"github.com/pavelanni/pathfinder/internal/session"
)

// maxBodyBytes bounds request bodies; exam submissions are the largest.
const maxBodyBytes = 1 << 20

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	ctl      *pathfinder.Controller
	basePath string
}

// New creates a new Handler. basePath is the URL prefix the routes are mounted under.
func New(ctl *pathfinder.Controller, basePath string) *Handler {
	return &Handler{ctl: ctl, basePath: basePath}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleState)
	r.Post("/search", h.handleSearch)
	r.Post("/exam/start", h.handleStartExam)
	r.Post("/exam/submit", h.handleSubmitExam)
	r.Post("/exam/cancel", h.handleCancelExam)
	r.Post("/checklist/{index}/toggle", h.handleToggleChecklist)
	r.Post("/chat", h.handleChat)
	r.Post("/chat/prefill", h.handleSetPrefill)
	r.Get("/chat/prefill", h.handleTakePrefill)
	r.Post("/report", h.handleGenerateReport)
	r.Get("/report", h.handleReportPage)
	r.Post("/report/done", h.handleReportDone)
}

// stateResponse is the session snapshot plus the localized current error.
type stateResponse struct {
	session.State
	Error *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type submitRequest struct {
	Answers []model.ExamSubmission `json:"answers"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type prefillBody struct {
	Text string `json:"text"`
}

type toggleResponse struct {
	Index     int  `json:"index"`
	Completed bool `json:"completed"`
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, r, http.StatusOK)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.ctl.Search(r.Context(), req.Query); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

func (h *Handler) handleStartExam(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.StartExam(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

func (h *Handler) handleSubmitExam(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.ctl.SubmitExam(r.Context(), req.Answers); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

func (h *Handler) handleCancelExam(w http.ResponseWriter, r *http.Request) {
	h.ctl.CancelExam()
	h.writeState(w, r, http.StatusOK)
}

func (h *Handler) handleToggleChecklist(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: index %q", errBadRequest, chi.URLParam(r, "index")))
		return
	}
	done, err := h.ctl.ToggleChecklist(index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Index: index, Completed: done})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !h.decode(w, r, &req) {
		return
	}
	reply, err := h.ctl.Chat(r.Context(), req.Message)
	if err != nil {
		status, body := describe(r.Context(), err)
		if status == http.StatusBadGateway || status == http.StatusServiceUnavailable {
			reply = h.ctl.ChatError(appI18n.Td(r.Context(), "ChatError", map[string]any{"Detail": body.Message}))
			writeJSON(w, status, reply)
			return
		}
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) handleSetPrefill(w http.ResponseWriter, r *http.Request) {
	var req prefillBody
	if !h.decode(w, r, &req) {
		return
	}
	h.ctl.PrefillChat(req.Text)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTakePrefill(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, prefillBody{Text: h.ctl.TakeChatPrefill()})
}

func (h *Handler) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.GenerateReport(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

func (h *Handler) handleReportPage(w http.ResponseWriter, r *http.Request) {
	state := h.ctl.State()
	if state.Report == nil || state.Package == nil || state.Package.ExamResults == nil {
		http.Error(w, appI18n.T(r.Context(), "ReportNotReady"), http.StatusNotFound)
		return
	}
	completed, pending := model.SplitChecklist(state.Package.Checklist, state.Checklist)

	page := views.ReportPage(views.ReportPageData{
		Profile:   state.Query,
		Path:      state.Package.LearningPath,
		Results:   *state.Package.ExamResults,
		Completed: completed,
		Pending:   pending,
		Report:    *state.Report,
		Generated: time.Now(),
		DonePath:  h.basePath + "/report/done",
		BackPath:  h.basePath + "/",
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleReportDone(w http.ResponseWriter, _ *http.Request) {
	h.ctl.FinishReport()
	w.WriteHeader(http.StatusNoContent)
}

// decode reads a JSON request body into v. It writes the error response and
// returns false when the body is unusable.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return false
	}
	return true
}

func (h *Handler) writeState(w http.ResponseWriter, r *http.Request, status int) {
	state := h.ctl.State()
	resp := stateResponse{State: state}
	if state.Err != nil {
		_, body := describe(r.Context(), state.Err)
		resp.Error = &body
	}
	writeJSON(w, status, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := describe(r.Context(), err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "kind", body.Kind, "error", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
