package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/meridian-dex/lar/internal/engine"
	"github.com/meridian-dex/lar/internal/logger"
	"github.com/meridian-dex/lar/internal/state"
	"github.com/meridian-dex/lar/internal/types"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer exposes a read-only JSON view over the aggregation engine.
type WebServer struct {
	router *mux.Router
	engine *engine.Engine
	port   string
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, eng *engine.Engine) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		engine: eng,
		port:   port,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/sources", ws.handleGetSources).Methods("GET")
	api.HandleFunc("/route", ws.handleGetRoute).Methods("GET")
	api.HandleFunc("/price", ws.handleGetPrice).Methods("GET")
	api.HandleFunc("/pool-health", ws.handleGetPoolHealth).Methods("GET")
	api.HandleFunc("/pools", ws.handleGetPools).Methods("GET")
	api.HandleFunc("/positions", ws.handleGetPositions).Methods("GET")
	api.HandleFunc("/bootstrap-receipts", ws.handleGetBootstrapReceipts).Methods("GET")

	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health plus database connectivity.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	dbStatus := "connected"
	if err := state.TestDBConnection(); err != nil {
		status = "degraded"
		dbStatus = err.Error()
	}

	ws.writeJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"database":  dbStatus,
		"timestamp": time.Now().UTC(),
	})
}

// pairFromRequest parses the asset_a/asset_b query parameters.
func pairFromRequest(r *http.Request) (types.Asset, types.Asset, error) {
	assetA, err := types.ParseAsset(r.URL.Query().Get("asset_a"))
	if err != nil {
		return types.Asset{}, types.Asset{}, err
	}
	assetB, err := types.ParseAsset(r.URL.Query().Get("asset_b"))
	if err != nil {
		return types.Asset{}, types.Asset{}, err
	}
	return assetA, assetB, nil
}

func (ws *WebServer) handleGetSources(w http.ResponseWriter, r *http.Request) {
	assetA, assetB, err := pairFromRequest(r)
	if err != nil {
		ws.writeError(w, http.StatusBadRequest, err)
		return
	}

	sources, err := ws.engine.DiscoverLiquiditySources(r.Context(), assetA, assetB)
	if err != nil {
		ws.writeError(w, http.StatusBadRequest, err)
		return
	}

	ws.writeJSON(w, http.StatusOK, map[string]any{
		"sources": sources,
		"count":   len(sources),
	})
}

func (ws *WebServer) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	assetA, assetB, err := pairFromRequest(r)
	if err != nil {
		ws.writeError(w, http.StatusBadRequest, err)
		return
	}

	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil || amount <= 0 {
		ws.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "amount must be a positive number"})
		return
	}

	maxSplits := 3
	if raw := r.URL.Query().Get("max_splits"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			ws.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "max_splits must be a positive integer"})
			return
		}
		maxSplits = parsed
	}

	sources, err := ws.engine.DiscoverLiquiditySources(r.Context(), assetA, assetB)
	if err != nil {
		ws.writeError(w, http.StatusBadRequest, err)
		return
	}

	route := ws.engine.CalculateOptimalRoute(sources, amount, maxSplits)
	best := ws.engine.FindBestSource(sources, amount)

	response := map[string]any{"route": route}
	if best != nil {
		response["best_source"] = best.PoolID
	}
	ws.writeJSON(w, http.StatusOK, response)
}

func (ws *WebServer) handleGetPrice(w http.ResponseWriter, r *http.Request) {
	assetA, assetB, err := pairFromRequest(r)
	if err != nil {
		ws.writeError(w, http.StatusBadRequest, err)
		return
	}

	price, err := ws.engine.GetAggregatedPrice(r.Context(), assetA, assetB)
	if err != nil {
		ws.writeError(w, http.StatusBadRequest, err)
		return
	}

	ws.writeJSON(w, http.StatusOK, price)
}

func (ws *WebServer) handleGetPoolHealth(w http.ResponseWriter, r *http.Request) {
	assetA, assetB, err := pairFromRequest(r)
	if err != nil {
		ws.writeError(w, http.StatusBadRequest, err)
		return
	}

	sources, err := ws.engine.DiscoverLiquiditySources(r.Context(), assetA, assetB)
	if err != nil {
		ws.writeError(w, http.StatusBadRequest, err)
		return
	}

	type healthEntry struct {
		PoolID string           `json:"pool_id"`
		Health types.PoolHealth `json:"health"`
	}
	entries := make([]healthEntry, 0, len(sources))
	for _, source := range sources {
		entries = append(entries, healthEntry{
			PoolID: source.PoolID,
			Health: ws.engine.CheckPoolHealth(source),
		})
	}

	ws.writeJSON(w, http.StatusOK, map[string]any{"pools": entries})
}

// handleGetPools lists the persisted discovery snapshots, newest first.
func (ws *WebServer) handleGetPools(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := state.GetPoolRecords(limit)
	if err != nil {
		ws.writeError(w, http.StatusInternalServerError, err)
		return
	}

	ws.writeJSON(w, http.StatusOK, map[string]any{
		"pools": records,
		"count": len(records),
	})
}

// handleGetPositions lists the share positions recorded for a wallet.
func (ws *WebServer) handleGetPositions(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if wallet == "" {
		ws.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "wallet query parameter is required"})
		return
	}

	positions, err := state.GetPositionsByWallet(wallet)
	if err != nil {
		ws.writeError(w, http.StatusInternalServerError, err)
		return
	}

	ws.writeJSON(w, http.StatusOK, map[string]any{
		"positions": positions,
		"count":     len(positions),
	})
}

func (ws *WebServer) handleGetBootstrapReceipts(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 {
			limit = parsed
		}
	}

	receipts, err := state.GetRecentBootstrapReceipts(limit)
	if err != nil {
		ws.writeError(w, http.StatusInternalServerError, err)
		return
	}

	ws.writeJSON(w, http.StatusOK, map[string]any{"receipts": receipts})
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (ws *WebServer) writeError(w http.ResponseWriter, status int, err error) {
	ws.writeJSON(w, status, map[string]any{"error": err.Error()})
}

// corsMiddleware adds CORS headers to all responses
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request with timing
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		webLogger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
