package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"budget/internal/core"
)

// The fixed action catalogue. Names match the channels the front-end calls.
const (
	ActionAddTransaction         = "addTransaction"
	ActionGetTransactionsByMonth = "getTransactionsByMonth"
	ActionDeleteTransaction      = "deleteTransaction"
	ActionUpdateTransaction      = "updateTransaction"
	ActionGetSummaryByMonth      = "getSummaryByMonth"
	ActionGetCategorySummary     = "getCategorySummary"
)

type (
	addRequest struct {
		Transaction core.TransactionInput `json:"transaction"`
	}

	monthRequest struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}

	deleteRequest struct {
		ID int64 `json:"id"`
	}

	updateRequest struct {
		ID          int64                 `json:"id"`
		Transaction core.TransactionInput `json:"transaction"`
	}

	categorySummaryRequest struct {
		Type  string `json:"type"`
		Year  int    `json:"year"`
		Month int    `json:"month"`
	}
)

// Invoke dispatches a named action with a JSON argument payload and returns
// its result value. Only an unknown action or an undecodable payload is an
// error; action outcomes themselves are envelopes or lists, per the façade
// contract.
func (b *Bridge) Invoke(ctx context.Context, action string, payload json.RawMessage) (any, error) {
	switch action {
	case ActionAddTransaction:
		var req addRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		return b.AddTransaction(ctx, req.Transaction), nil

	case ActionGetTransactionsByMonth:
		var req monthRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		return b.GetTransactionsByMonth(ctx, req.Year, req.Month), nil

	case ActionDeleteTransaction:
		var req deleteRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		return b.DeleteTransaction(ctx, req.ID), nil

	case ActionUpdateTransaction:
		var req updateRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		return b.UpdateTransaction(ctx, req.ID, req.Transaction), nil

	case ActionGetSummaryByMonth:
		var req monthRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		return b.GetSummaryByMonth(ctx, req.Year, req.Month), nil

	case ActionGetCategorySummary:
		var req categorySummaryRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		return b.GetCategorySummary(ctx, req.Type, req.Year, req.Month), nil

	default:
		return nil, fmt.Errorf("unknown action: %q", action)
	}
}

func decode(payload json.RawMessage, dst any) error {
	if len(payload) == 0 {
		return fmt.Errorf("empty payload")
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
