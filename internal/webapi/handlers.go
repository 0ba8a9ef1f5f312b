// Package webapi exposes one jarvis session over a JSON HTTP API.
package webapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DominicRaj03/Gen-AI---QA/internal/datafactory"
	"github.com/DominicRaj03/Gen-AI---QA/internal/evaluation"
	"github.com/DominicRaj03/Gen-AI---QA/internal/export"
	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
	"github.com/DominicRaj03/Gen-AI---QA/internal/pipeline"
	"github.com/DominicRaj03/Gen-AI---QA/internal/prompts"
)

// Version is set at build time or defaults to dev.
var Version = "0.1.0-dev"

// DefaultReportTitle is used when a PDF export names no title.
const DefaultReportTitle = "Jarvis QA Report"

// maxBodyBytes bounds request bodies. Requirements and pasted failure logs
// can be long, so this is generous.
const maxBodyBytes = 4 << 20

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	session *Session
	sink    export.Sink
}

// NewHandlers creates Handlers for session. sink may be nil; when set, PDF
// exports are also stored there.
func NewHandlers(session *Session, sink export.Sink) *Handlers {
	return &Handlers{session: session, sink: sink}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	var resp HealthResponse
	h.session.Do(func(r *pipeline.Runner) {
		resp = HealthResponse{
			Status:  "ok",
			Version: Version,
			Session: r.Store().ID(),
			Model:   r.Model(),
		}
	})
	writeJSON(w, http.StatusOK, resp)
}

// HandleStages returns the stage table in pipeline order.
func (h *Handlers) HandleStages(w http.ResponseWriter, _ *http.Request) {
	var stages []StageInfo
	h.session.Do(func(r *pipeline.Runner) {
		for _, s := range r.Registry().Stages() {
			stages = append(stages, StageInfo{
				Kind:          string(s.Kind),
				Title:         s.Title,
				Role:          string(s.Role),
				Output:        string(s.Output),
				Prefers:       string(s.Prefers),
				Input:         s.InputLabel(),
				JSON:          s.JSON,
				UsesFramework: s.UsesFramework,
			})
		}
	})
	writeJSON(w, http.StatusOK, stages)
}

// HandleGetRequirement returns the session's requirement text.
func (h *Handlers) HandleGetRequirement(w http.ResponseWriter, _ *http.Request) {
	var text string
	h.session.Do(func(r *pipeline.Runner) {
		text = r.Store().Requirement()
	})
	writeJSON(w, http.StatusOK, RequirementResponse{Text: text, Set: text != ""})
}

// HandlePutRequirement sets the requirement text manually.
func (h *Handlers) HandlePutRequirement(w http.ResponseWriter, r *http.Request) {
	var req RequirementRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	var o models.Outcome
	h.session.Do(func(run *pipeline.Runner) {
		o = run.SetRequirement(req.Text)
	})
	writeOutcome(w, "", o, nil)
}

// HandleFetchRequirement loads the requirement from Jira or Azure DevOps.
func (h *Handlers) HandleFetchRequirement(w http.ResponseWriter, r *http.Request) {
	var req FetchRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	source, err := models.ParseSource(req.Source)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var o models.Outcome
	h.session.Do(func(run *pipeline.Runner) {
		o = run.Fetch(r.Context(), source, req.ItemID)
	})
	writeOutcome(w, "", o, nil)
}

// HandleRunStage runs the stage named in the path.
func (h *Handlers) HandleRunStage(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	opts := pipeline.RunOptions{Params: req.Params, Input: req.Input}
	if req.Role != "" {
		role, err := models.ParseRole(req.Role)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts.Role = role
	}

	var (
		kind    prompts.Kind
		kindErr error
		ev      *evaluation.Evaluation
		o       models.Outcome
	)
	h.session.Do(func(run *pipeline.Runner) {
		kind, kindErr = run.Registry().ParseKind(r.PathValue("kind"))
		if kindErr != nil {
			return
		}
		if kind == prompts.KindScore {
			ev, o = run.Score(r.Context(), opts)
			return
		}
		o = run.Run(r.Context(), kind, opts)
	})
	if kindErr != nil {
		writeError(w, http.StatusNotFound, kindErr.Error())
		return
	}

	writeOutcome(w, string(kind), o, ev)
}

// HandleArtifacts lists stored artifacts in generation order.
func (h *Handlers) HandleArtifacts(w http.ResponseWriter, _ *http.Request) {
	var list []ArtifactResponse
	h.session.Do(func(r *pipeline.Runner) {
		for _, a := range r.Store().List() {
			list = append(list, artifactResponse(a, r))
		}
	})
	if list == nil {
		list = []ArtifactResponse{}
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleArtifact returns one artifact. An artifact whose only attempts
// failed is reported as 404 with the failure message.
func (h *Handlers) HandleArtifact(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseArtifactKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		resp  ArtifactResponse
		found bool
	)
	h.session.Do(func(run *pipeline.Runner) {
		a, ok := run.Store().Get(kind)
		if !ok {
			a = models.Artifact{Kind: kind}
		}
		found = ok
		resp = artifactResponse(a, run)
	})

	if !found {
		msg := fmt.Sprintf("no %s artifact in this session", kind)
		if resp.LastFailure != "" {
			msg += ": last attempt failed: " + resp.LastFailure
		}
		writeError(w, http.StatusNotFound, msg)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleData generates synthetic records. With ?format=csv the records are
// returned as CSV instead of JSON.
func (h *Handlers) HandleData(w http.ResponseWriter, r *http.Request) {
	var req DataRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	fields, err := datafactory.NormalizeFields(req.Fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := datafactory.New(req.Seed).Generate(fields, req.Rows)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", export.ContentTypeCSV)
		w.Header().Set("Content-Disposition", `attachment; filename="synthetic-data.csv"`)
		if err := datafactory.WriteCSV(w, fields, records); err != nil {
			slog.Warn("Failed to write CSV response", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, DataResponse{Fields: fields, Records: records})
}

// HandleExportPDF renders stored artifacts into a PDF report.
func (h *Handlers) HandleExportPDF(w http.ResponseWriter, r *http.Request) {
	var req PDFRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultReportTitle
	}

	kinds := make([]models.ArtifactKind, 0, len(req.Kinds))
	for _, k := range req.Kinds {
		kind, err := models.ParseArtifactKind(k)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		kinds = append(kinds, kind)
	}

	var (
		body      string
		sessionID string
	)
	h.session.Do(func(run *pipeline.Runner) {
		sessionID = run.Store().ID()
		body = export.ReportBody(run.Store().Requirement(), selectArtifacts(run, kinds))
	})
	if body == "" {
		writeError(w, http.StatusConflict, "nothing to export: run a stage first")
		return
	}

	data, err := export.PDF(title, body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	name := export.FileName("jarvis-report", sessionID, "pdf")
	dest := "response"
	if h.sink != nil {
		loc, err := h.sink.Write(r.Context(), name, export.ContentTypePDF, data)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		dest = loc
		w.Header().Set("X-Export-Location", loc)
	}
	h.session.Do(func(run *pipeline.Runner) {
		run.LogExport("pdf", dest, len(data))
	})

	w.Header().Set("Content-Type", export.ContentTypePDF)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// HandleExportCSV returns the csv artifact as a download.
func (h *Handlers) HandleExportCSV(w http.ResponseWriter, _ *http.Request) {
	var (
		a         models.Artifact
		ok        bool
		sessionID string
	)
	h.session.Do(func(run *pipeline.Runner) {
		a, ok = run.Store().Get(models.ArtifactCSV)
		sessionID = run.Store().ID()
		if ok {
			run.LogExport("csv", "response", len(a.Content))
		}
	})
	if !ok {
		writeError(w, http.StatusNotFound, "no csv artifact in this session: run the csv stage first")
		return
	}

	w.Header().Set("Content-Type", export.ContentTypeCSV)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName("test-cases", sessionID, "csv")))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, a.Content) //nolint:errcheck
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, session *Session, sink export.Sink) {
	h := NewHandlers(session, sink)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/stages", h.HandleStages)
	mux.HandleFunc("POST /api/stages/{kind}", h.HandleRunStage)
	mux.HandleFunc("GET /api/requirement", h.HandleGetRequirement)
	mux.HandleFunc("PUT /api/requirement", h.HandlePutRequirement)
	mux.HandleFunc("POST /api/requirement/fetch", h.HandleFetchRequirement)
	mux.HandleFunc("GET /api/artifacts", h.HandleArtifacts)
	mux.HandleFunc("GET /api/artifacts/{kind}", h.HandleArtifact)
	mux.HandleFunc("POST /api/data", h.HandleData)
	mux.HandleFunc("POST /api/export/pdf", h.HandleExportPDF)
	mux.HandleFunc("GET /api/export/csv", h.HandleExportCSV)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// StatusFor maps a failed outcome to an HTTP status.
func StatusFor(o models.Outcome) int {
	switch o.ErrKind {
	case models.ErrorKindNone:
		return http.StatusOK
	case models.ErrorKindInput:
		return http.StatusBadRequest
	case models.ErrorKindParse:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func selectArtifacts(r *pipeline.Runner, kinds []models.ArtifactKind) []models.Artifact {
	if len(kinds) == 0 {
		return r.Store().List()
	}
	var out []models.Artifact
	for _, k := range kinds {
		if a, ok := r.Store().Get(k); ok {
			out = append(out, a)
		}
	}
	return out
}

func artifactResponse(a models.Artifact, r *pipeline.Runner) ArtifactResponse {
	resp := ArtifactResponse{
		Kind:       string(a.Kind),
		Content:    a.Content,
		Seq:        a.Seq,
		ProducedAt: a.ProducedAt,
	}
	if f, ok := r.Store().LastFailure(a.Kind); ok {
		resp.LastFailure = f.ErrMsg
	}
	return resp
}

// decodeBody reads a JSON request body into v. An empty body is accepted only
// when optional is set.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) && optional {
			return true
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeOutcome(w http.ResponseWriter, stage string, o models.Outcome, ev *evaluation.Evaluation) {
	writeJSON(w, StatusFor(o), OutcomeResponse{
		Stage:      stage,
		OK:         o.OK(),
		Content:    o.Content,
		ErrorKind:  string(o.ErrKind),
		Error:      o.ErrMsg,
		Display:    o.Display(),
		Evaluation: ev,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
