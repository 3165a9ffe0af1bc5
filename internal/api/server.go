// Package api serves the HTTP surface of the decoder: health, metrics,
// designator classification, ad hoc bulletin decoding and the local report
// archive.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"emwin_parser/internal/bulletin"
	"emwin_parser/internal/codec"
	"emwin_parser/internal/registry"
	"emwin_parser/internal/storage"
	"emwin_parser/internal/wmo"
)

// maxBody caps the size of a posted bulletin.
const maxBody = 1 << 20

// Options configure a Server. Archive may be nil, in which case the report
// routes answer 503.
type Options struct {
	Registry *registry.Registry
	Archive  *storage.SQLiteDB
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Server answers classify and decode requests and browses stored reports.
type Server struct {
	registry *registry.Registry
	archive  *storage.SQLiteDB
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// NewServer creates a server. A nil Registry uses the default one and a nil
// Gatherer the default Prometheus registry.
func NewServer(opts Options) *Server {
	s := &Server{
		registry: opts.Registry,
		archive:  opts.Archive,
		gatherer: opts.Gatherer,
		logger:   opts.Logger,
	}
	if s.registry == nil {
		s.registry = registry.Default()
	}
	s.registry.Sort()
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Router returns the configured chi router.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/classify/{ttaaii}", s.handleClassify)
		r.Post("/decode", s.handleDecode)
		r.Post("/trace", s.handleTrace)

		r.Get("/reports", s.handleReports)
		r.Get("/reports/{id}", s.handleReport)
		r.Get("/stats", s.handleStats)
		r.Get("/filters", s.handleFilters)
	})

	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"decoders": s.registry.ParserCount(),
		"archive":  s.archive != nil,
	})
}

// ClassifyResponse describes a classified designator.
type ClassifyResponse struct {
	TTAAii     string         `json:"ttaaii"`
	Family     string         `json:"family"`
	Summary    string         `json:"summary"`
	Designator wmo.Designator `json:"designator"`
	Decoders   []string       `json:"decoders"`
}

// ClassifyError locates the character that stopped classification.
type ClassifyError struct {
	TTAAii   string `json:"ttaaii"`
	Error    string `json:"error"`
	Kind     string `json:"kind"`
	Position int    `json:"position"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "ttaaii")
	d, err := wmo.Classify(code)
	if err != nil {
		var derr *wmo.DesignatorError
		if errors.As(err, &derr) {
			writeJSON(w, http.StatusUnprocessableEntity, ClassifyError{
				TTAAii:   code,
				Error:    derr.Error(),
				Kind:     derr.Kind.String(),
				Position: derr.Pos,
			})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	decoders := []string{}
	for _, p := range s.registry.AllParsers() {
		if p.Applies(d) {
			decoders = append(decoders, p.Name())
		}
	}
	writeJSON(w, http.StatusOK, ClassifyResponse{
		TTAAii:     code[:6],
		Family:     wmo.FamilyOf(d).String(),
		Summary:    d.String(),
		Designator: d,
		Decoders:   decoders,
	})
}

// DecodeResponse is the outcome of decoding a posted bulletin. Status is
// decoded, unsupported or failed.
type DecodeResponse struct {
	Status    string             `json:"status"`
	Bulletin  *bulletin.Bulletin `json:"bulletin"`
	Family    string             `json:"family"`
	Parser    string             `json:"parser,omitempty"`
	Report    registry.Report    `json:"report,omitempty"`
	Stations  []string           `json:"stations,omitempty"`
	Recovered []*codec.Recovered `json:"recovered,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// readBulletin parses the request body. The reference query parameter, a
// date or RFC 3339 time, anchors day-of-month times.
func readBulletin(r *http.Request) (*bulletin.Bulletin, int, error) {
	opts := bulletin.Options{Source: "http"}
	if ref := r.URL.Query().Get("reference"); ref != "" {
		t, err := parseReference(ref)
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		opts.Reference = t
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("read body: %w", err)
	}

	b, err := bulletin.Parse(raw, opts)
	if b == nil {
		return nil, http.StatusBadRequest, err
	}
	if err != nil {
		return b, http.StatusUnprocessableEntity, err
	}
	return b, http.StatusOK, nil
}

func parseReference(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("reference %q: want a date or RFC 3339 time", s)
	}
	return t, nil
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	b, status, err := readBulletin(r)
	if b == nil {
		writeError(w, status, err.Error())
		return
	}
	if err != nil {
		writeJSON(w, status, DecodeResponse{
			Status:   "failed",
			Bulletin: b,
			Family:   b.Type(),
			Error:    err.Error(),
		})
		return
	}

	resp := DecodeResponse{Bulletin: b, Family: b.Type()}
	res, err := s.registry.Dispatch(b)
	var derr *registry.DecodeError
	switch {
	case errors.Is(err, registry.ErrUnsupported):
		resp.Status = "unsupported"
		writeJSON(w, http.StatusOK, resp)
	case errors.As(err, &derr):
		resp.Status = "failed"
		resp.Parser = derr.Parser
		resp.Recovered = derr.Recovered
		resp.Error = derr.Err.Error()
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case err != nil:
		resp.Status = "failed"
		resp.Error = err.Error()
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	default:
		for _, rec := range res.Recovered {
			s.logger.Warn("recovered group", "parser", res.Parser, "offset", rec.Offset,
				"skipped", rec.Skipped, "reason", rec.Message)
		}
		resp.Status = "decoded"
		resp.Parser = res.Parser
		resp.Report = res.Report
		resp.Stations = registry.Stations(res.Report)
		resp.Recovered = res.Recovered
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	b, status, err := readBulletin(r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"family": b.Type(),
		"traces": s.registry.Trace(b),
	})
}

// ReportResponse is a stored report.
type ReportResponse struct {
	BulletinID uuid.UUID       `json:"bulletin_id"`
	Source     string          `json:"source,omitempty"`
	Received   time.Time       `json:"received"`
	TTAAii     string          `json:"ttaaii"`
	Origin     string          `json:"origin"`
	Family     string          `json:"family"`
	ReportType string          `json:"report_type"`
	Parser     string          `json:"parser"`
	Stations   []string        `json:"stations"`
	RawText    string          `json:"raw_text"`
	Report     json.RawMessage `json:"report"`
	Recovered  int             `json:"recovered"`
}

func toResponse(r storage.StoredReport) ReportResponse {
	resp := ReportResponse{
		BulletinID: r.BulletinID,
		Source:     r.Source,
		Received:   r.Received,
		TTAAii:     r.TTAAii,
		Origin:     r.Origin,
		Family:     r.Family,
		ReportType: r.ReportType,
		Parser:     r.Parser,
		Stations:   r.Stations,
		RawText:    r.RawText,
		Report:     json.RawMessage(r.ReportJSON),
		Recovered:  r.Recovered,
	}
	if resp.Stations == nil {
		resp.Stations = []string{}
	}
	if len(resp.Report) == 0 {
		resp.Report = json.RawMessage("null")
	}
	return resp
}

func (s *Server) requireArchive(w http.ResponseWriter) bool {
	if s.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "report archive not configured")
		return false
	}
	return true
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if !s.requireArchive(w) {
		return
	}
	q := r.URL.Query()
	params := storage.QueryParams{
		ReportType: q.Get("type"),
		Origin:     q.Get("origin"),
		Station:    q.Get("station"),
		FullText:   q.Get("q"),
		OrderBy:    q.Get("sort"),
		OrderDesc:  q.Get("order") != "asc",
	}
	var err error
	if params.Limit, err = intParam(q.Get("limit"), 50); err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if params.Offset, err = intParam(q.Get("offset"), 0); err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	reports, err := s.archive.Query(r.Context(), params)
	if err != nil {
		s.logger.Error("query reports", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	out := make([]ReportResponse, 0, len(reports))
	for _, rep := range reports {
		out = append(out, toResponse(rep))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reports": out,
		"count":   len(out),
		"limit":   params.Limit,
		"offset":  params.Offset,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if !s.requireArchive(w) {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bulletin id")
		return
	}

	rep, err := s.archive.GetReport(r.Context(), id)
	if err != nil {
		s.logger.Error("get report", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if rep == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(*rep))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireArchive(w) {
		return
	}
	stats, err := s.archive.GetStats(r.Context())
	if err != nil {
		s.logger.Error("get stats", "error", err)
		writeError(w, http.StatusInternalServerError, "stats failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_reports":  stats.TotalReports,
		"by_report_type": stats.ByReportType,
		"by_origin":      stats.ByOrigin,
		"with_recovered": stats.WithRecovered,
		"images":         stats.Images,
	})
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	if !s.requireArchive(w) {
		return
	}
	filters := make(map[string][]string)
	for _, col := range []string{"report_type", "family", "origin", "parser"} {
		values, err := s.archive.Distinct(r.Context(), col)
		if err != nil {
			s.logger.Error("distinct", "column", col, "error", err)
			writeError(w, http.StatusInternalServerError, "filters failed")
			return
		}
		if values == nil {
			values = []string{}
		}
		filters[col] = values
	}
	writeJSON(w, http.StatusOK, filters)
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
