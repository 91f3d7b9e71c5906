package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kyh-dev/stockscope/internal/contracts"
	"github.com/kyh-dev/stockscope/internal/master"
	"github.com/kyh-dev/stockscope/pkg/logger"
)

// Analyzer runs the valuation pipeline. Satisfied by valuation.Service.
type Analyzer interface {
	ResolveTicker(ctx context.Context, query string) (string, error)
	Analyze(ctx context.Context, query string) (*contracts.Analysis, error)
	AnalyzeWithCommentary(ctx context.Context, query string) (*contracts.Analysis, *contracts.Commentary, error)
}

// AnalysisLister lists stored analyses. Satisfied by store.AnalysisStore.
type AnalysisLister interface {
	Recent(ctx context.Context, limit int) ([]*contracts.Analysis, error)
}

// SnapshotSource exposes the active master snapshot. Satisfied by
// master.Service.
type SnapshotSource interface {
	Current() *master.Snapshot
}

// StockHandler handles stock analysis API endpoints
// ⭐ SSOT: 종목 분석 API 핸들러는 이 구조체에서만
type StockHandler struct {
	analyzer  Analyzer
	lister    AnalysisLister
	snapshots SnapshotSource
	logger    *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(analyzer Analyzer, lister AnalysisLister, snapshots SnapshotSource, log *logger.Logger) *StockHandler {
	return &StockHandler{
		analyzer:  analyzer,
		lister:    lister,
		snapshots: snapshots,
		logger:    log,
	}
}

// searchRequest is the body for search and analyze endpoints.
type searchRequest struct {
	Query string `json:"query"`
}

// Search resolves a free-text query and returns candidate matches
// POST /api/stocks/search
func (h *StockHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	ticker, err := h.analyzer.ResolveTicker(ctx, req.Query)
	if err != nil {
		h.respondForError(w, err, "Failed to resolve query", map[string]interface{}{"query": req.Query})
		return
	}

	matches := h.snapshots.Current().Search(req.Query, 10)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"ticker":  ticker,
		"matches": matches,
	})
}

// Get returns the analysis for one ticker
// GET /api/stocks/{ticker}
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := mux.Vars(r)["ticker"]

	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	analysis, err := h.analyzer.Analyze(ctx, ticker)
	if err != nil {
		h.respondForError(w, err, "Failed to analyze ticker", map[string]interface{}{"ticker": ticker})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    analysis,
	})
}

// Analyze runs the full pipeline including commentary
// POST /api/stocks/analyze
func (h *StockHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	analysis, commentary, err := h.analyzer.AnalyzeWithCommentary(ctx, req.Query)
	if err != nil {
		h.respondForError(w, err, "Failed to analyze query", map[string]interface{}{"query": req.Query})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"data":       analysis,
		"commentary": commentary,
	})
}

// Recent returns the most recently analyzed tickers
// GET /api/stocks/recent?limit=20
func (h *StockHandler) Recent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	analyses, err := h.lister.Recent(ctx, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list recent analyses")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve recent analyses")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    analyses,
	})
}

// respondForError maps pipeline errors onto HTTP status codes.
func (h *StockHandler) respondForError(w http.ResponseWriter, err error, msg string, fields map[string]interface{}) {
	h.logger.WithError(err).WithFields(fields).Error(msg)

	switch {
	case errors.Is(err, contracts.ErrNotFound):
		respondError(w, http.StatusNotFound, "ticker not found")
	case contracts.IsUpstream(err):
		respondError(w, http.StatusBadGateway, "market data provider unavailable")
	default:
		respondError(w, http.StatusInternalServerError, msg)
	}
}
