// Package http exposes the request façade's action catalogue over a
// localhost JSON surface. It is the process boundary the front-end shell
// talks to; every response body is a façade value, never a raw error.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"budget/internal/bridge"
	"budget/internal/cache"
	"budget/internal/core"
	applog "budget/internal/log"
)

// CacheConfig sizes the read caches for month views.
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

type handlers struct {
	bridge *bridge.Bridge

	listCache     *cache.LRUCache[[]core.Transaction]
	summaryCache  *cache.LRUCache[[]core.TypeCategoryTotal]
	categoryCache *cache.LRUCache[[]core.CategoryTotal]
}

// NewServer builds the bridge server. Callers own timeouts and lifecycle of
// the returned http.Server.
func NewServer(addr string, b *bridge.Bridge, cc CacheConfig, janitor *cache.Janitor) *http.Server {
	h := &handlers{
		bridge:        b,
		listCache:     cache.NewLRUCache[[]core.Transaction](cc.Size, cc.TTL),
		summaryCache:  cache.NewLRUCache[[]core.TypeCategoryTotal](cc.Size, cc.TTL),
		categoryCache: cache.NewLRUCache[[]core.CategoryTotal](cc.Size, cc.TTL),
	}

	if janitor != nil {
		janitor.Register(h.listCache)
		janitor.Register(h.summaryCache)
		janitor.Register(h.categoryCache)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/transactions", h.handleTransactions)
	mux.HandleFunc("/api/transactions/", h.handleTransactionByID)
	mux.HandleFunc("/api/summary", h.handleSummary)
	mux.HandleFunc("/api/summary/categories", h.handleCategorySummary)
	mux.HandleFunc("/api/categories", handleCategories)
	mux.HandleFunc("/api/invoke", h.handleInvoke)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleHealth)

	return &http.Server{
		Addr:    addr,
		Handler: withRequestLogging(mux),
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withRequestLogging wraps the mux with per-request slog records.
func withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		slog.InfoContext(r.Context(), "Request handled",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, sw.status,
			applog.FieldDuration, time.Since(start).Milliseconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// invalidate drops all cached month views after a successful write. Writes
// are rare next to reads here and months are few, so dropping everything is
// simpler than tracking which months an update or delete touched.
func (h *handlers) invalidate() {
	h.listCache.Purge()
	h.summaryCache.Purge()
	h.categoryCache.Purge()
}
