package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"budget/internal/bridge"
	"budget/internal/cache"
	"budget/internal/core"
	applog "budget/internal/log"
)

type addTransactionRequest struct {
	Transaction core.TransactionInput `json:"transaction"`
}

type updateTransactionRequest struct {
	Transaction core.TransactionInput `json:"transaction"`
}

type invokeRequest struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

func (h *handlers) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.addTransaction(w, r)
	case http.MethodGet:
		h.listTransactions(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handlers) addTransaction(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, bridge.AddResult{
			Envelope: bridge.Envelope{Success: false, Error: "invalid request body: " + err.Error()},
		})
		return
	}

	result := h.bridge.AddTransaction(r.Context(), req.Transaction)
	if !result.Success {
		writeJSON(w, writeFailureStatus(result.Error), result)
		return
	}

	h.invalidate()
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) listTransactions(w http.ResponseWriter, r *http.Request) {
	year, month := monthQuery(r)

	if key, err := core.NewMonthKey(year, month); err == nil {
		ck := cache.MonthKey("transactions", key)
		if cached, ok := h.listCache.Get(ck); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
		txs := h.bridge.GetTransactionsByMonth(r.Context(), year, month)
		h.listCache.Set(ck, txs)
		writeJSON(w, http.StatusOK, txs)
		return
	}

	// Invalid month keys still answer with an empty list, per the façade's
	// read contract.
	writeJSON(w, http.StatusOK, h.bridge.GetTransactionsByMonth(r.Context(), year, month))
}

func (h *handlers) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, bridge.Envelope{Success: false, Error: "invalid transaction id: " + idStr})
		return
	}

	switch r.Method {
	case http.MethodDelete:
		h.deleteTransaction(w, r, id)
	case http.MethodPut:
		h.updateTransaction(w, r, id)
	default:
		w.Header().Set("Allow", "PUT, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handlers) deleteTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	result := h.bridge.DeleteTransaction(r.Context(), id)
	if !result.Success {
		writeJSON(w, writeFailureStatus(result.Error), result)
		return
	}

	h.invalidate()
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) updateTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, bridge.Envelope{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	result := h.bridge.UpdateTransaction(r.Context(), id, req.Transaction)
	if !result.Success {
		writeJSON(w, writeFailureStatus(result.Error), result)
		return
	}

	h.invalidate()
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	year, month := monthQuery(r)

	if key, err := core.NewMonthKey(year, month); err == nil {
		ck := cache.MonthKey("summary", key)
		if cached, ok := h.summaryCache.Get(ck); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
		summary := h.bridge.GetSummaryByMonth(r.Context(), year, month)
		h.summaryCache.Set(ck, summary)
		writeJSON(w, http.StatusOK, summary)
		return
	}

	writeJSON(w, http.StatusOK, h.bridge.GetSummaryByMonth(r.Context(), year, month))
}

func (h *handlers) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	typ := strings.TrimSpace(r.URL.Query().Get("type"))
	year, month := monthQuery(r)

	parsed, typErr := core.ParseTransactionType(typ)
	key, keyErr := core.NewMonthKey(year, month)
	if typErr == nil && keyErr == nil {
		ck := cache.TypedMonthKey("categories", parsed, key)
		if cached, ok := h.categoryCache.Get(ck); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
		summary := h.bridge.GetCategorySummary(r.Context(), typ, year, month)
		h.categoryCache.Set(ck, summary)
		writeJSON(w, http.StatusOK, summary)
		return
	}

	writeJSON(w, http.StatusOK, h.bridge.GetCategorySummary(r.Context(), typ, year, month))
}

// handleCategories serves the default category sets the input forms offer.
// The store itself accepts any category string; this only keeps the shell's
// pickers in sync with the core's conventions.
func handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{
		"expense": core.ExpenseCategories,
		"income":  core.IncomeCategories,
	})
}

// handleInvoke is the generic named-action surface. It mirrors the call
// shape the desktop shell uses: an action from the fixed catalogue plus a
// JSON payload.
func (h *handlers) handleInvoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, bridge.Envelope{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.bridge.Invoke(r.Context(), req.Action, req.Payload)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, bridge.Envelope{Success: false, Error: err.Error()})
		return
	}

	// Write actions change stored data; the cached month views are stale.
	switch req.Action {
	case bridge.ActionAddTransaction, bridge.ActionUpdateTransaction, bridge.ActionDeleteTransaction:
		h.invalidate()
	}

	writeJSON(w, http.StatusOK, result)
}

// monthQuery reads year/month query parameters, defaulting to the current
// month the way the desktop shell does when nothing is selected.
func monthQuery(r *http.Request) (year, month int) {
	now := time.Now()
	year, month = now.Year(), int(now.Month())

	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}

	return year, month
}

// writeFailureStatus maps a failure envelope onto an HTTP status: constraint
// and validation failures are 422, an unavailable store is 503.
func writeFailureStatus(errMsg string) int {
	if strings.Contains(errMsg, core.ErrStoreUnavailable.Error()) {
		return http.StatusServiceUnavailable
	}
	return http.StatusUnprocessableEntity
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encode response failed", applog.FieldError, err, applog.FieldComponent, applog.ComponentHTTP)
	}
}
