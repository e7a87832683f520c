package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/pbaille/bazi/internal/analysis"
	"github.com/pbaille/bazi/internal/chart"
	"github.com/pbaille/bazi/internal/domain"
	"github.com/pbaille/bazi/internal/logger"
	"github.com/pbaille/bazi/internal/store"
)

// Server handles HTTP requests for the analysis API
type Server struct {
	store    *store.Store
	analyzer *analysis.Analyzer
	log      *logger.Logger
	addr     string
}

// New creates a new API server
func New(s *store.Store, a *analysis.Analyzer, log *logger.Logger, addr string) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{store: s, analyzer: a, log: log.With("component", "api"), addr: addr}
}

// Handler returns the routed handler, wrapped for CORS
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Analysis
	mux.HandleFunc("POST /analyze", s.analyze)

	// History
	mux.HandleFunc("GET /analyses", s.listAnalyses)
	mux.HandleFunc("POST /analyses", s.addAnalysis)
	mux.HandleFunc("GET /analyses/{id}", s.getAnalysis)

	// Search
	mux.HandleFunc("GET /search", s.searchAnalyses)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(mux)
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.log.Info("starting server", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AnalyzeRequest is the request body for analyzing a chart
type AnalyzeRequest struct {
	Chart     domain.ChartSpec `json:"chart"`
	NatalOnly bool             `json:"natal_only,omitempty"`
	Basis     analysis.Basis   `json:"basis,omitempty"`
}

func (s *Server) decodeAndAnalyze(w http.ResponseWriter, r *http.Request) (*AnalyzeRequest, *domain.Analysis, bool) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, nil, false
	}
	if req.Basis != "" && req.Basis != analysis.BasisSeasonal && req.Basis != analysis.BasisAdjusted {
		writeError(w, http.StatusBadRequest, "basis must be seasonal or adjusted")
		return nil, nil, false
	}

	result, err := s.analyzer.AnalyzeSpec(req.Chart, analysis.Options{NatalOnly: req.NatalOnly, Basis: req.Basis})
	if err != nil {
		if errors.Is(err, chart.ErrMissingPillar) || errors.Is(err, chart.ErrUnknownStem) || errors.Is(err, chart.ErrUnknownBranch) {
			writeError(w, http.StatusBadRequest, err.Error())
		} else {
			s.log.Error("analysis failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, nil, false
	}
	return &req, result, true
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	_, result, ok := s.decodeAndAnalyze(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) addAnalysis(w http.ResponseWriter, r *http.Request) {
	req, result, ok := s.decodeAndAnalyze(w, r)
	if !ok {
		return
	}

	rec, err := s.store.SaveAnalysis(req.Chart, result)
	if err != nil {
		s.log.Error("save analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	// Support prefix matching
	rec, err := s.store.FindByPrefix(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) listAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	records, err := s.store.ListAnalyses(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"analyses": records,
		"limit":    limit,
		"offset":   offset,
	})
}

func (s *Server) searchAnalyses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	records, err := s.store.SearchAnalyses(query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"analyses": records,
		"query":    query,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
