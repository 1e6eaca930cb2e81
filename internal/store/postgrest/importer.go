package postgrest

import (
	"context"
	"fmt"

	"github.com/mv4digital/chuvinha/internal/domain"
	"github.com/mv4digital/chuvinha/internal/store"
)

// Dedup key reads and chunk inserts for the batch importer. The importer is
// a single-operator sequential tool; two concurrent runs can race past the
// pre-fetched key set, which is an accepted risk there.

type expenseKeyRow struct {
	Name        string `json:"name"`
	ExpenseDate string `json:"expense_date"`
}

func (c *Client) ExpenseKeys(ctx context.Context) (map[string]struct{}, error) {
	var rows []expenseKeyRow
	_, err := c.api.From("expenses").
		Select("name,expense_date", "", false).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("expense keys: %w", err)
	}
	keys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		keys[r.Name+"|"+r.ExpenseDate] = struct{}{}
	}
	return keys, nil
}

type entryKeyRow struct {
	Title     string  `json:"title"`
	EntryDate *string `json:"entry_date"`
}

func (c *Client) ServiceEntryKeys(ctx context.Context) (map[string]struct{}, error) {
	var rows []entryKeyRow
	_, err := c.api.From("service_entries").
		Select("title,entry_date", "", false).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("service entry keys: %w", err)
	}
	keys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		date := ""
		if r.EntryDate != nil {
			date = *r.EntryDate
		}
		keys[r.Title+"|"+date] = struct{}{}
	}
	return keys, nil
}

type insertExpenseRow struct {
	UserID      string               `json:"user_id"`
	Kind        string               `json:"kind"`
	Name        string               `json:"name"`
	Amount      string               `json:"amount"`
	ExpenseDate string               `json:"expense_date"`
	Paid        bool                 `json:"paid"`
	Metadata    domain.EntryMetadata `json:"metadata"`
}

func (c *Client) InsertExpenses(ctx context.Context, rows []store.NewExpense) error {
	if len(rows) == 0 {
		return nil
	}
	payload := make([]insertExpenseRow, 0, len(rows))
	for _, r := range rows {
		payload = append(payload, insertExpenseRow{
			UserID:      r.UserID,
			Kind:        string(r.Kind),
			Name:        r.Name,
			Amount:      r.Amount.StringFixed(2),
			ExpenseDate: r.ExpenseDate,
			Paid:        r.Paid,
			Metadata:    r.Metadata,
		})
	}
	if _, _, err := c.api.From("expenses").
		Insert(payload, false, "", "minimal", "").
		Execute(); err != nil {
		return fmt.Errorf("insert expenses batch: %w", err)
	}
	return nil
}

func (c *Client) InsertServiceEntries(ctx context.Context, rows []store.NewServiceEntry) error {
	if len(rows) == 0 {
		return nil
	}
	payload := make([]insertEntryRow, 0, len(rows))
	for _, r := range rows {
		row := insertEntryRow{
			UserID:    r.UserID,
			Service:   string(r.Service),
			Title:     r.Title,
			Amount:    r.Amount.StringFixed(2),
			EntryDate: r.EntryDate,
			Metadata:  r.Metadata,
		}
		if r.Status != "" {
			s := r.Status
			row.Status = &s
		}
		payload = append(payload, row)
	}
	if _, _, err := c.api.From("service_entries").
		Insert(payload, false, "", "minimal", "").
		Execute(); err != nil {
		return fmt.Errorf("insert service entries batch: %w", err)
	}
	return nil
}
