package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"budget/internal/core"
	"budget/internal/memory"
)

var errBroken = errors.New("disk I/O error")

// brokenStore fails every operation, standing in for an unreachable backing
// file.
type brokenStore struct{}

func (brokenStore) Insert(context.Context, core.TransactionInput) (int64, error) {
	return 0, errBroken
}
func (brokenStore) Update(context.Context, int64, core.TransactionInput) (int64, error) {
	return 0, errBroken
}
func (brokenStore) Delete(context.Context, int64) error { return errBroken }
func (brokenStore) ListByMonth(context.Context, core.MonthKey) ([]core.Transaction, error) {
	return nil, errBroken
}
func (brokenStore) SummaryByMonth(context.Context, core.MonthKey) ([]core.TypeCategoryTotal, error) {
	return nil, errBroken
}
func (brokenStore) CategorySummary(context.Context, core.TransactionType, core.MonthKey) ([]core.CategoryTotal, error) {
	return nil, errBroken
}

func validInput() core.TransactionInput {
	return core.TransactionInput{
		Type:     core.Expense,
		Amount:   25000,
		Category: "Makan",
		Date:     core.NewDate(2024, 3, 5),
	}
}

func TestAddTransactionEnvelope(t *testing.T) {
	b := New(memory.New())
	ctx := context.Background()

	result := b.AddTransaction(ctx, validInput())
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.ID <= 0 {
		t.Fatalf("expected assigned id, got %d", result.ID)
	}

	bad := validInput()
	bad.Type = "transfer"
	result = b.AddTransaction(ctx, bad)
	if result.Success {
		t.Fatalf("expected failure for invalid type")
	}
	if result.Error == "" {
		t.Fatalf("expected error message in envelope")
	}
}

func TestNilStoreDegradation(t *testing.T) {
	b := New(nil)
	ctx := context.Background()

	// Writes fail with a descriptive reason.
	if r := b.AddTransaction(ctx, validInput()); r.Success || r.Error == "" {
		t.Fatalf("add: expected failure envelope, got %+v", r)
	}
	if r := b.DeleteTransaction(ctx, 1); r.Success {
		t.Fatalf("delete: expected failure envelope, got %+v", r)
	}
	if r := b.UpdateTransaction(ctx, 1, validInput()); r.Success {
		t.Fatalf("update: expected failure envelope, got %+v", r)
	}

	// Reads degrade to empty results, never errors.
	if txs := b.GetTransactionsByMonth(ctx, 2024, 3); txs == nil || len(txs) != 0 {
		t.Fatalf("list: expected empty slice, got %#v", txs)
	}
	if s := b.GetSummaryByMonth(ctx, 2024, 3); s == nil || len(s) != 0 {
		t.Fatalf("summary: expected empty slice, got %#v", s)
	}
	if s := b.GetCategorySummary(ctx, "expense", 2024, 3); s == nil || len(s) != 0 {
		t.Fatalf("category summary: expected empty slice, got %#v", s)
	}
}

func TestStorageErrorsBecomeValues(t *testing.T) {
	b := New(brokenStore{})
	ctx := context.Background()

	if r := b.AddTransaction(ctx, validInput()); r.Success || r.Error == "" {
		t.Fatalf("add: expected failure envelope, got %+v", r)
	}
	if r := b.DeleteTransaction(ctx, 1); r.Success {
		t.Fatalf("delete: expected failure envelope")
	}
	if r := b.UpdateTransaction(ctx, 1, validInput()); r.Success {
		t.Fatalf("update: expected failure envelope")
	}
	if txs := b.GetTransactionsByMonth(ctx, 2024, 3); len(txs) != 0 {
		t.Fatalf("list: expected empty result on storage error")
	}
	if s := b.GetSummaryByMonth(ctx, 2024, 3); len(s) != 0 {
		t.Fatalf("summary: expected empty result on storage error")
	}
	if s := b.GetCategorySummary(ctx, "expense", 2024, 3); len(s) != 0 {
		t.Fatalf("category summary: expected empty result on storage error")
	}
}

func TestMonthArgumentNormalization(t *testing.T) {
	b := New(memory.New())
	ctx := context.Background()

	if r := b.AddTransaction(ctx, validInput()); !r.Success {
		t.Fatalf("add: %q", r.Error)
	}

	// Out-of-range months read as empty rather than erroring.
	if txs := b.GetTransactionsByMonth(ctx, 2024, 13); len(txs) != 0 {
		t.Fatalf("month 13: expected empty, got %d", len(txs))
	}
	if txs := b.GetTransactionsByMonth(ctx, 24, 3); len(txs) != 0 {
		t.Fatalf("2-digit year: expected empty, got %d", len(txs))
	}
	if txs := b.GetTransactionsByMonth(ctx, 2024, 3); len(txs) != 1 {
		t.Fatalf("valid key: expected 1, got %d", len(txs))
	}
}

func TestUpdateMissingIDReportsSuccess(t *testing.T) {
	b := New(memory.New())

	r := b.UpdateTransaction(context.Background(), 42, validInput())
	if !r.Success {
		t.Fatalf("expected success for missing id, got %q", r.Error)
	}
}

func TestInvokeDispatch(t *testing.T) {
	b := New(memory.New())
	ctx := context.Background()

	addPayload, _ := json.Marshal(map[string]any{
		"transaction": map[string]any{
			"type":     "income",
			"amount":   5000000,
			"category": "Gaji",
			"date":     "2024-03-01",
		},
	})
	result, err := b.Invoke(ctx, ActionAddTransaction, addPayload)
	if err != nil {
		t.Fatalf("invoke add: %v", err)
	}
	add, ok := result.(AddResult)
	if !ok || !add.Success || add.ID != 1 {
		t.Fatalf("invoke add result: %#v", result)
	}

	listPayload, _ := json.Marshal(map[string]int{"year": 2024, "month": 3})
	result, err = b.Invoke(ctx, ActionGetTransactionsByMonth, listPayload)
	if err != nil {
		t.Fatalf("invoke list: %v", err)
	}
	txs, ok := result.([]core.Transaction)
	if !ok || len(txs) != 1 {
		t.Fatalf("invoke list result: %#v", result)
	}

	sumPayload, _ := json.Marshal(map[string]int{"year": 2024, "month": 3})
	result, err = b.Invoke(ctx, ActionGetSummaryByMonth, sumPayload)
	if err != nil {
		t.Fatalf("invoke summary: %v", err)
	}
	if rows, ok := result.([]core.TypeCategoryTotal); !ok || len(rows) != 1 {
		t.Fatalf("invoke summary result: %#v", result)
	}

	catPayload, _ := json.Marshal(map[string]any{"type": "income", "year": 2024, "month": 3})
	result, err = b.Invoke(ctx, ActionGetCategorySummary, catPayload)
	if err != nil {
		t.Fatalf("invoke category summary: %v", err)
	}
	if rows, ok := result.([]core.CategoryTotal); !ok || len(rows) != 1 {
		t.Fatalf("invoke category summary result: %#v", result)
	}

	updPayload, _ := json.Marshal(map[string]any{
		"id": 1,
		"transaction": map[string]any{
			"type":     "income",
			"amount":   6000000,
			"category": "Gaji",
			"date":     "2024-03-01",
		},
	})
	result, err = b.Invoke(ctx, ActionUpdateTransaction, updPayload)
	if err != nil {
		t.Fatalf("invoke update: %v", err)
	}
	if env, ok := result.(Envelope); !ok || !env.Success {
		t.Fatalf("invoke update result: %#v", result)
	}

	delPayload, _ := json.Marshal(map[string]int{"id": 1})
	result, err = b.Invoke(ctx, ActionDeleteTransaction, delPayload)
	if err != nil {
		t.Fatalf("invoke delete: %v", err)
	}
	if env, ok := result.(Envelope); !ok || !env.Success {
		t.Fatalf("invoke delete result: %#v", result)
	}
}

func TestInvokeUnknownAction(t *testing.T) {
	b := New(memory.New())

	if _, err := b.Invoke(context.Background(), "dropTable", json.RawMessage(`{}`)); err == nil {
		t.Fatalf("expected error for unknown action")
	}
	if _, err := b.Invoke(context.Background(), ActionAddTransaction, nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
	if _, err := b.Invoke(context.Background(), ActionAddTransaction, json.RawMessage(`{bad json`)); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
