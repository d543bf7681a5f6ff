package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/raysh454/vertex/docs/swagger" // registers the API doc
	"github.com/raysh454/vertex/internal/app"
	"github.com/raysh454/vertex/internal/logging"
	"github.com/raysh454/vertex/internal/report"
	"github.com/raysh454/vertex/internal/reportstore"
	"github.com/raysh454/vertex/internal/scanner"
)

// maxLoggedBody caps how much of a request body goes into the request log.
const maxLoggedBody = 2048

// Server is the HTTP + WebSocket API surface for Vertex.
type Server struct {
	cfg          Config
	orchestrator *app.Orchestrator
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
}

// NewServer serves orch. The server does not own orch beyond Close.
func NewServer(cfg Config, orch *app.Orchestrator) (*Server, error) {
	if orch == nil {
		return nil, errors.New("server: nil orchestrator")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}

	r := chi.NewRouter()
	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		router:       r,
		logger:       logger.With(logging.Field{Key: "component", Value: "server"}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return cfg.AllowedOrigin == "" || cfg.AllowedOrigin == "*" ||
					r.Header.Get("Origin") == "" || r.Header.Get("Origin") == cfg.AllowedOrigin
			},
		},
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/scans", s.optionsHandler("POST"))
	r.Options("/reports", s.optionsHandler("GET"))
	r.Options("/reports/{id}", s.optionsHandler("GET"))
	r.Options("/reports/{id}/export", s.optionsHandler("GET"))
	r.Options("/reports/{id}/compare/{otherID}", s.optionsHandler("GET"))
	r.Options("/reports/{id}/highlight", s.optionsHandler("POST"))
	r.Options("/reports/{id}/focus", s.optionsHandler("POST"))
	r.Options("/jobs/scan", s.optionsHandler("POST"))
	r.Options("/jobs", s.optionsHandler("GET"))
	r.Options("/jobs/{jobID}", s.optionsHandler("GET, DELETE"))

	r.Get("/healthz", s.handleHealth)

	// Scans and reports
	r.Post("/scans", s.handleCreateScan)
	r.Get("/reports", s.handleListReports)
	r.Get("/reports/{id}", s.handleGetReport)
	r.Get("/reports/{id}/export", s.handleExportReport)
	r.Get("/reports/{id}/compare/{otherID}", s.handleCompareReports)
	r.Post("/reports/{id}/highlight", s.handlePoint(s.orchestrator.Highlight))
	r.Post("/reports/{id}/focus", s.handlePoint(s.orchestrator.Focus))

	// Jobs over REST
	r.Post("/jobs/scan", s.handleStartScanJob)
	r.Get("/jobs", s.handleListJobs)
	r.Get("/jobs/{jobID}", s.handleGetJob)
	r.Delete("/jobs/{jobID}", s.handleCancelJob)

	// WebSocket for job progress
	r.Get("/ws/scan", s.handleScanWS)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	origin := s.cfg.AllowedOrigin
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			logged := bodyBytes
			if len(logged) > maxLoggedBody {
				logged = logged[:maxLoggedBody]
			}
			fields = append(fields, logging.Field{Key: "body", Value: string(logged)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the orchestrator and underlying resources.
func (s *Server) Close() {
	if s.orchestrator != nil {
		if err := s.orchestrator.Close(); err != nil {
			s.logger.Warn("closing orchestrator", logging.Field{Key: "error", Value: err.Error()})
		}
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps orchestrator errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, reportstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrInputUnavailable), errors.Is(err, app.ErrEmptyRequest):
		return http.StatusUnprocessableEntity
	case errors.Is(err, app.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// viewFromQuery reads sort, type, severity and fixable.
func viewFromQuery(r *http.Request) (report.View, error) {
	q := r.URL.Query()
	var v report.View

	key, err := report.ParseSortKey(q.Get("sort"))
	if err != nil {
		return v, err
	}
	v.Sort = key

	if t := q.Get("type"); t != "" {
		found := false
		for _, c := range scanner.Categories {
			if strings.EqualFold(string(c), t) {
				v.Filter.Type = c
				found = true
			}
		}
		if !found {
			return v, errors.New("unknown issue type " + strconv.Quote(t))
		}
	}
	if sv := q.Get("severity"); sv != "" {
		sev := scanner.Severity(strings.ToLower(sv))
		if !sev.Valid() {
			return v, errors.New("unknown severity " + strconv.Quote(sv))
		}
		v.Filter.Severity = sev
	}
	if f := q.Get("fixable"); f != "" {
		b, err := strconv.ParseBool(f)
		if err != nil {
			return v, errors.New("fixable must be a boolean")
		}
		v.Filter.FixableOnly = b
	}
	return v, nil
}

// --- HTTP handlers ---

// handleHealth godoc
// @Summary Liveness probe
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateScan godoc
// @Summary Scan a page
// @Description Scans a URL (static or rendered) or inline HTML and stores the report.
// @Tags scans
// @Accept json
// @Produce json
// @Param body body ScanRequest true "What to scan"
// @Success 201 {object} ReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /scans [post]
func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	var body ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	mode, err := app.ParseMode(body.Mode)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var rec *reportstore.Record
	switch {
	case body.HTML != "":
		source := body.Source
		if source == "" {
			source = "inline"
		}
		rec, err = s.orchestrator.ScanHTML(r.Context(), body.HTML, source)
	case body.URL != "":
		rec, err = s.orchestrator.ScanURL(r.Context(), body.URL, mode)
	default:
		err = app.ErrEmptyRequest
	}
	if err != nil {
		s.logger.Warn("scan failed", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, statusFor(err), err.Error())
		return
	}

	s.logger.Info("created scan", logging.Field{Key: "report_id", Value: rec.ID})
	writeJSON(w, http.StatusCreated, newReportResponse(app.ViewOf(rec, report.View{})))
}

// handleListReports godoc
// @Summary List stored reports
// @Tags reports
// @Produce json
// @Param limit query int false "Maximum number of reports, newest first"
// @Success 200 {array} reportstore.Summary
// @Router /reports [get]
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}
	list, err := s.orchestrator.ListReports(r.Context(), limit)
	if err != nil {
		s.logger.Warn("listing reports", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, statusFor(err), err.Error())
		return
	}
	if list == nil {
		list = []reportstore.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGetReport godoc
// @Summary Get a report
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Param sort query string false "type, severity or fixable"
// @Param type query string false "Issue type filter"
// @Param severity query string false "Severity filter"
// @Param fixable query bool false "Only fixable issues"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /reports/{id} [get]
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	view, err := viewFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rv, err := s.orchestrator.GetReport(r.Context(), chi.URLParam(r, "id"), view)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(rv))
}

// handleExportReport godoc
// @Summary Export a report as a standalone HTML page
// @Tags reports
// @Produce html
// @Param id path string true "Report ID"
// @Success 200 {string} string
// @Failure 404 {object} ErrorResponse
// @Router /reports/{id}/export [get]
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	view, err := viewFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	page, err := s.orchestrator.ExportReport(r.Context(), id, view)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="vertex-report-`+id+`.html"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// handleCompareReports godoc
// @Summary Compare two reports
// @Tags reports
// @Produce json
// @Param id path string true "Base report ID"
// @Param otherID path string true "Head report ID"
// @Success 200 {object} report.Delta
// @Failure 404 {object} ErrorResponse
// @Router /reports/{id}/compare/{otherID} [get]
func (s *Server) handleCompareReports(w http.ResponseWriter, r *http.Request) {
	delta, err := s.orchestrator.CompareReports(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "otherID"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, delta)
}

// handlePoint serves highlight and focus.
// @Summary Highlight or focus an element of a scanned page
// @Tags reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param body body PathRequest true "Element path from an issue"
// @Success 200 {object} PointResponse
// @Failure 404 {object} ErrorResponse
// @Router /reports/{id}/highlight [post]
// @Router /reports/{id}/focus [post]
func (s *Server) handlePoint(point func(ctx context.Context, reportID, path string) (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body PathRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		found, err := point(r.Context(), chi.URLParam(r, "id"), body.Path)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, PointResponse{OK: true, Found: found})
	}
}

// Jobs (REST)

func (s *Server) scanRequest(body ScanRequest) (app.ScanRequest, error) {
	mode, err := app.ParseMode(body.Mode)
	if err != nil {
		return app.ScanRequest{}, err
	}
	return app.ScanRequest{URL: body.URL, HTML: body.HTML, Source: body.Source, Mode: mode}, nil
}

// handleStartScanJob godoc
// @Summary Start a background scan
// @Tags jobs
// @Accept json
// @Produce json
// @Param body body ScanRequest true "What to scan"
// @Success 202 {object} app.Job
// @Failure 422 {object} ErrorResponse
// @Router /jobs/scan [post]
func (s *Server) handleStartScanJob(w http.ResponseWriter, r *http.Request) {
	var body ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req, err := s.scanRequest(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	job, err := s.orchestrator.StartScanJob(r.Context(), req)
	if err != nil {
		s.logger.Warn("starting scan job", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.logger.Info("started scan job", logging.Field{Key: "job_id", Value: job.ID}, logging.Field{Key: "target", Value: job.Target})
	writeJSON(w, http.StatusAccepted, job)
}

// handleGetJob godoc
// @Summary Get a job
// @Tags jobs
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {object} app.Job
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{jobID} [get]
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		s.logger.Warn("getting job: not found", logging.Field{Key: "job_id", Value: jobID})
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleCancelJob godoc
// @Summary Cancel a job
// @Tags jobs
// @Param jobID path string true "Job ID"
// @Success 204
// @Router /jobs/{jobID} [delete]
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	s.orchestrator.CancelJob(jobID)
	s.logger.Info("canceled job", logging.Field{Key: "job_id", Value: jobID})
	writeJSON(w, http.StatusNoContent, nil)
}

// handleListJobs godoc
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Success 200 {array} app.Job
// @Router /jobs [get]
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.orchestrator.ListJobs()
	writeJSON(w, http.StatusOK, jobs)
}

// WebSockets

// handleScanWS starts a scan job for ?url=&mode= and streams its events. The
// first message is the job itself; the connection closes after the last event.
func (s *Server) handleScanWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := app.ParseMode(q.Get("mode"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	job, err := s.orchestrator.StartScanJob(r.Context(), app.ScanRequest{URL: q.Get("url"), Mode: mode})
	if err != nil {
		s.logger.Warn("starting scan job", logging.Field{Key: "error", Value: err.Error()})
		_ = conn.WriteJSON(ErrorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("started scan job", logging.Field{Key: "job_id", Value: job.ID})
	_ = conn.WriteJSON(job)

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; cancel job
			s.orchestrator.CancelJob(job.ID)
			return
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished"))
}
