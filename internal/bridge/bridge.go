// Package bridge is the request façade between an untrusted front-end and
// the storage engine. It exposes a fixed catalogue of named actions,
// normalizes primitive arguments, and wraps every outcome in a uniform
// success/error envelope. No error ever crosses this boundary as anything
// but a value: writes degrade to failure envelopes and reads degrade to
// empty results when the store is unavailable.
package bridge

import (
	"context"
	"log/slog"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/store"
)

// Envelope is the uniform result wrapper for write operations.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// AddResult is the envelope for addTransaction, carrying the assigned id.
type AddResult struct {
	Envelope
	ID int64 `json:"id,omitempty"`
}

type Bridge struct {
	store store.Store
}

// New creates a bridge over the given store. A nil store is allowed and
// yields the degraded behavior: failing writes, empty reads.
func New(s store.Store) *Bridge {
	return &Bridge{store: s}
}

func ok() Envelope {
	return Envelope{Success: true}
}

func fail(err error) Envelope {
	return Envelope{Success: false, Error: err.Error()}
}

// AddTransaction inserts a transaction and returns its assigned id.
func (b *Bridge) AddTransaction(ctx context.Context, in core.TransactionInput) AddResult {
	if b.store == nil {
		return AddResult{Envelope: fail(core.ErrStoreUnavailable)}
	}

	id, err := b.store.Insert(ctx, in)
	if err != nil {
		slog.ErrorContext(ctx, "Add transaction failed",
			applog.FieldError, err,
			applog.FieldType, in.Type.String(),
			applog.FieldCategory, in.Category,
			applog.FieldComponent, applog.ComponentBridge,
			applog.FieldOperation, applog.OpAdd)
		return AddResult{Envelope: fail(err)}
	}

	return AddResult{Envelope: ok(), ID: id}
}

// GetTransactionsByMonth lists the month's transactions. It never fails:
// invalid arguments and storage errors both present as an empty list.
func (b *Bridge) GetTransactionsByMonth(ctx context.Context, year, month int) []core.Transaction {
	if b.store == nil {
		return []core.Transaction{}
	}

	key, err := core.NewMonthKey(year, month)
	if err != nil {
		slog.WarnContext(ctx, "Rejecting month key", applog.FieldError, err, applog.FieldYear, year, applog.FieldMonth, month, applog.FieldComponent, applog.ComponentBridge)
		return []core.Transaction{}
	}

	txs, err := b.store.ListByMonth(ctx, key)
	if err != nil {
		slog.ErrorContext(ctx, "List transactions failed",
			applog.FieldError, err, applog.FieldYear, year, applog.FieldMonth, month,
			applog.FieldComponent, applog.ComponentBridge, applog.FieldOperation, applog.OpList)
		return []core.Transaction{}
	}

	return txs
}

// DeleteTransaction removes a transaction by id. Deleting a missing id
// reports success.
func (b *Bridge) DeleteTransaction(ctx context.Context, id int64) Envelope {
	if b.store == nil {
		return fail(core.ErrStoreUnavailable)
	}

	if err := b.store.Delete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Delete transaction failed",
			applog.FieldError, err, applog.FieldTransactionID, id,
			applog.FieldComponent, applog.ComponentBridge, applog.FieldOperation, applog.OpDelete)
		return fail(err)
	}

	return ok()
}

// UpdateTransaction replaces all mutable fields of the transaction with the
// given id. Updating a missing id reports success, matching the insert-side
// idempotent delete; the zero-row case is only logged.
func (b *Bridge) UpdateTransaction(ctx context.Context, id int64, in core.TransactionInput) Envelope {
	if b.store == nil {
		return fail(core.ErrStoreUnavailable)
	}

	affected, err := b.store.Update(ctx, id, in)
	if err != nil {
		slog.ErrorContext(ctx, "Update transaction failed",
			applog.FieldError, err, applog.FieldTransactionID, id,
			applog.FieldComponent, applog.ComponentBridge, applog.FieldOperation, applog.OpUpdate)
		return fail(err)
	}
	if affected == 0 {
		slog.WarnContext(ctx, "Update matched no transaction", applog.FieldTransactionID, id, applog.FieldComponent, applog.ComponentBridge)
	}

	return ok()
}

// GetSummaryByMonth groups the month's transactions by (type, category).
// Never fails; degraded paths present as an empty summary.
func (b *Bridge) GetSummaryByMonth(ctx context.Context, year, month int) []core.TypeCategoryTotal {
	if b.store == nil {
		return []core.TypeCategoryTotal{}
	}

	key, err := core.NewMonthKey(year, month)
	if err != nil {
		slog.WarnContext(ctx, "Rejecting month key", applog.FieldError, err, applog.FieldYear, year, applog.FieldMonth, month, applog.FieldComponent, applog.ComponentBridge)
		return []core.TypeCategoryTotal{}
	}

	summary, err := b.store.SummaryByMonth(ctx, key)
	if err != nil {
		slog.ErrorContext(ctx, "Month summary failed",
			applog.FieldError, err, applog.FieldYear, year, applog.FieldMonth, month,
			applog.FieldComponent, applog.ComponentBridge, applog.FieldOperation, applog.OpSummary)
		return []core.TypeCategoryTotal{}
	}

	return summary
}

// GetCategorySummary breaks a single type down by category, largest total
// first. Never fails; degraded paths present as an empty summary.
func (b *Bridge) GetCategorySummary(ctx context.Context, typ string, year, month int) []core.CategoryTotal {
	if b.store == nil {
		return []core.CategoryTotal{}
	}

	parsed, err := core.ParseTransactionType(typ)
	if err != nil {
		slog.WarnContext(ctx, "Rejecting transaction type", applog.FieldError, err, applog.FieldType, typ, applog.FieldComponent, applog.ComponentBridge)
		return []core.CategoryTotal{}
	}
	key, err := core.NewMonthKey(year, month)
	if err != nil {
		slog.WarnContext(ctx, "Rejecting month key", applog.FieldError, err, applog.FieldYear, year, applog.FieldMonth, month, applog.FieldComponent, applog.ComponentBridge)
		return []core.CategoryTotal{}
	}

	summary, err := b.store.CategorySummary(ctx, parsed, key)
	if err != nil {
		slog.ErrorContext(ctx, "Category summary failed",
			applog.FieldError, err, applog.FieldType, typ, applog.FieldYear, year, applog.FieldMonth, month,
			applog.FieldComponent, applog.ComponentBridge, applog.FieldOperation, applog.OpCategorySummary)
		return []core.CategoryTotal{}
	}

	return summary
}
