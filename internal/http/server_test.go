package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"budget/internal/bridge"
	"budget/internal/core"
	"budget/internal/memory"
)

func newTestServer(t *testing.T) *http.Server {
	t.Helper()
	return NewServer(":0", bridge.New(memory.New()), CacheConfig{Size: 8, TTL: time.Minute}, nil)
}

func doJSON(t *testing.T, srv *http.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

const addBody = `{"transaction":{"type":"expense","amount":25000,"description":"lunch","category":"Makan","date":"2024-03-05"}}`

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
	}
}

func TestAddAndListTransactions(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/transactions", addBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("add status = %d: %s", rr.Code, rr.Body.String())
	}
	var added bridge.AddResult
	if err := json.Unmarshal(rr.Body.Bytes(), &added); err != nil {
		t.Fatalf("decode add result: %v", err)
	}
	if !added.Success || added.ID != 1 {
		t.Fatalf("add result: %+v", added)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?year=2024&month=3", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var txs []core.Transaction
	if err := json.Unmarshal(rr.Body.Bytes(), &txs); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(txs) != 1 || txs[0].Category != "Makan" || txs[0].Amount != 25000 {
		t.Fatalf("list = %+v", txs)
	}

	// Other months answer with an empty array, not an error.
	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?year=2024&month=4", "")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("empty month: %d %q", rr.Code, rr.Body.String())
	}
}

func TestAddTransactionRejectsBadType(t *testing.T) {
	srv := newTestServer(t)

	body := `{"transaction":{"type":"transfer","amount":10,"category":"Makan","date":"2024-03-05"}}`
	rr := doJSON(t, srv, http.MethodPost, "/api/transactions", body)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
	var result bridge.AddResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Success || result.Error == "" {
		t.Fatalf("expected failure envelope, got %+v", result)
	}
}

func TestAddTransactionBadBody(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/transactions", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	var result bridge.AddResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Success {
		t.Fatalf("expected failure envelope")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		method, path string
	}{
		{http.MethodDelete, "/api/transactions"},
		{http.MethodPost, "/api/summary"},
		{http.MethodPost, "/api/summary/categories"},
		{http.MethodGet, "/api/invoke"},
		{http.MethodPost, "/healthz"},
	}
	for _, tc := range cases {
		rr := doJSON(t, srv, tc.method, tc.path, "")
		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s status = %d, want 405", tc.method, tc.path, rr.Code)
		}
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/transactions", addBody)

	rr := doJSON(t, srv, http.MethodDelete, "/api/transactions/1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rr.Code)
	}
	var env bridge.Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil || !env.Success {
		t.Fatalf("delete envelope: %+v err=%v", env, err)
	}

	// Idempotent: deleting again still succeeds.
	rr = doJSON(t, srv, http.MethodDelete, "/api/transactions/1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("repeat delete status = %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/transactions/abc", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", rr.Code)
	}
}

func TestUpdateTransaction(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/transactions", addBody)

	body := `{"transaction":{"type":"income","amount":5000000,"category":"Gaji","date":"2024-03-01"}}`
	rr := doJSON(t, srv, http.MethodPut, "/api/transactions/1", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?year=2024&month=3", "")
	var txs []core.Transaction
	if err := json.Unmarshal(rr.Body.Bytes(), &txs); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(txs) != 1 || txs[0].Type != core.Income || txs[0].Category != "Gaji" {
		t.Fatalf("update not visible in list: %+v", txs)
	}
}

func TestSummaryEndpoints(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/transactions", addBody)
	doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"transaction":{"type":"income","amount":5000000,"category":"Gaji","date":"2024-03-01"}}`)

	rr := doJSON(t, srv, http.MethodGet, "/api/summary?year=2024&month=3", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rr.Code)
	}
	var summary []core.TypeCategoryTotal
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("summary groups = %d, want 2", len(summary))
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/summary/categories?type=expense&year=2024&month=3", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("category summary status = %d", rr.Code)
	}
	var cats []core.CategoryTotal
	if err := json.Unmarshal(rr.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(cats) != 1 || cats[0].Category != "Makan" || cats[0].Total != 25000 || cats[0].Count != 1 {
		t.Fatalf("category summary = %+v", cats)
	}

	// Unknown type reads as empty.
	rr = doJSON(t, srv, http.MethodGet, "/api/summary/categories?type=transfer&year=2024&month=3", "")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("bad type: %d %q", rr.Code, rr.Body.String())
	}
}

func TestWritesInvalidateCachedReads(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/transactions", addBody)

	// Prime the cache.
	rr := doJSON(t, srv, http.MethodGet, "/api/transactions?year=2024&month=3", "")
	var txs []core.Transaction
	_ = json.Unmarshal(rr.Body.Bytes(), &txs)
	if len(txs) != 1 {
		t.Fatalf("prime: %d", len(txs))
	}

	// A second write must be visible on the next read.
	doJSON(t, srv, http.MethodPost, "/api/transactions", addBody)
	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?year=2024&month=3", "")
	_ = json.Unmarshal(rr.Body.Bytes(), &txs)
	if len(txs) != 2 {
		t.Fatalf("after write: %d, want 2", len(txs))
	}
}

func TestInvokeEndpoint(t *testing.T) {
	srv := newTestServer(t)

	body := `{"action":"addTransaction","payload":{"transaction":{"type":"income","amount":100,"category":"Gaji","date":"2024-03-01"}}}`
	rr := doJSON(t, srv, http.MethodPost, "/api/invoke", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("invoke add status = %d: %s", rr.Code, rr.Body.String())
	}
	var added bridge.AddResult
	if err := json.Unmarshal(rr.Body.Bytes(), &added); err != nil || !added.Success {
		t.Fatalf("invoke add result: %+v err=%v", added, err)
	}

	body = `{"action":"getTransactionsByMonth","payload":{"year":2024,"month":3}}`
	rr = doJSON(t, srv, http.MethodPost, "/api/invoke", body)
	var txs []core.Transaction
	if err := json.Unmarshal(rr.Body.Bytes(), &txs); err != nil || len(txs) != 1 {
		t.Fatalf("invoke list: %s err=%v", rr.Body.String(), err)
	}

	body = `{"action":"noSuchAction","payload":{}}`
	rr = doJSON(t, srv, http.MethodPost, "/api/invoke", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown action status = %d", rr.Code)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/categories", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("categories status = %d", rr.Code)
	}

	var cats map[string][]string
	if err := json.Unmarshal(rr.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(cats["expense"]) == 0 || len(cats["income"]) == 0 {
		t.Fatalf("categories missing sets: %v", cats)
	}
	if cats["income"][0] != "Gaji" {
		t.Errorf("income[0] = %q, want Gaji", cats["income"][0])
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/categories", "{}")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST categories status = %d", rr.Code)
	}
}
