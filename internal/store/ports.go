package store

import (
	"context"

	"budget/internal/core"
)

// Ports for transaction storage backends.
type (
	TransactionWriter interface {
		// Insert persists a new transaction and returns its assigned id.
		Insert(ctx context.Context, in core.TransactionInput) (int64, error)

		// Update replaces all mutable fields of the transaction with the
		// given id and returns the number of rows touched (0 when the id
		// does not exist).
		Update(ctx context.Context, id int64, in core.TransactionInput) (int64, error)

		// Delete removes the transaction with the given id. Deleting a
		// missing id is a no-op, not an error.
		Delete(ctx context.Context, id int64) error
	}

	TransactionLister interface {
		// ListByMonth returns all transactions dated within the month,
		// ordered date descending then most recently created first.
		ListByMonth(ctx context.Context, key core.MonthKey) ([]core.Transaction, error)
	}

	SummaryReader interface {
		// SummaryByMonth groups the month's transactions by (type, category).
		SummaryByMonth(ctx context.Context, key core.MonthKey) ([]core.TypeCategoryTotal, error)

		// CategorySummary groups a single type's transactions by category,
		// ordered by total descending.
		CategorySummary(ctx context.Context, typ core.TransactionType, key core.MonthKey) ([]core.CategoryTotal, error)
	}

	// Store is the full storage engine surface the request façade consumes.
	Store interface {
		TransactionWriter
		TransactionLister
		SummaryReader
	}
)
