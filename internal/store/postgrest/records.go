package postgrest

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mv4digital/chuvinha/internal/domain"
	"github.com/mv4digital/chuvinha/internal/store"
)

const (
	entryColumns   = "id,user_id,service,title,amount,entry_date,status,created_at,metadata"
	expenseColumns = "id,user_id,kind,name,amount,expense_date,paid,created_at,metadata"
)

type entryRow struct {
	ID        string               `json:"id,omitempty"`
	UserID    string               `json:"user_id"`
	Service   string               `json:"service"`
	Title     string               `json:"title"`
	Amount    *decimal.Decimal     `json:"amount"`
	EntryDate *string              `json:"entry_date"`
	Status    *string              `json:"status"`
	CreatedAt string               `json:"created_at,omitempty"`
	Metadata  domain.EntryMetadata `json:"metadata"`
}

func (r entryRow) toDomain() domain.ServiceEntry {
	e := domain.ServiceEntry{
		ID:        r.ID,
		UserID:    r.UserID,
		Service:   domain.ServiceKey(r.Service),
		Title:     r.Title,
		CreatedAt: parseTS(r.CreatedAt),
		Metadata:  r.Metadata,
	}
	if r.Amount != nil {
		e.Amount = *r.Amount
	}
	if r.EntryDate != nil {
		e.EntryDate = *r.EntryDate
	}
	if r.Status != nil {
		e.Status = *r.Status
	}
	return e
}

type expenseRow struct {
	ID          string               `json:"id,omitempty"`
	UserID      string               `json:"user_id"`
	Kind        string               `json:"kind"`
	Name        string               `json:"name"`
	Amount      decimal.Decimal      `json:"amount"`
	ExpenseDate string               `json:"expense_date"`
	Paid        bool                 `json:"paid"`
	CreatedAt   string               `json:"created_at,omitempty"`
	Metadata    domain.EntryMetadata `json:"metadata"`
}

func (r expenseRow) toDomain() domain.Expense {
	return domain.Expense{
		ID:          r.ID,
		UserID:      r.UserID,
		Kind:        domain.ExpenseKind(r.Kind),
		Name:        r.Name,
		Amount:      r.Amount,
		ExpenseDate: r.ExpenseDate,
		Paid:        r.Paid,
		CreatedAt:   parseTS(r.CreatedAt),
		Metadata:    r.Metadata,
	}
}

func (c *Client) ExpensesByDate(ctx context.Context, date string) ([]domain.Expense, error) {
	var rows []expenseRow
	_, err := c.api.From("expenses").
		Select(expenseColumns, "", false).
		Eq("expense_date", date).
		Order("created_at", descCreatedAt).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("expenses by date %s: %w", date, err)
	}
	return expensesToDomain(rows), nil
}

func (c *Client) ExpensesInRange(ctx context.Context, start, end string) ([]domain.Expense, error) {
	var rows []expenseRow
	_, err := c.api.From("expenses").
		Select(expenseColumns, "", false).
		Gte("expense_date", start).
		Lt("expense_date", end).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("expenses in [%s,%s): %w", start, end, err)
	}
	return expensesToDomain(rows), nil
}

func (c *Client) ServiceEntriesByDate(ctx context.Context, date string, f store.EntryFilter) ([]domain.ServiceEntry, error) {
	q := c.api.From("service_entries").
		Select(entryColumns, "", false).
		Eq("entry_date", date).
		Order("created_at", descCreatedAt)

	// jsonb containment on the metadata column, matching how the original
	// product distinguishes receipts from plain revenue entries.
	if f.PaidOnly {
		q = q.Filter("metadata", "cs", `{"paid":true}`)
	} else if f.RevenueOnly {
		q = q.Filter("metadata", "cs", `{"entry_type":"receita"}`)
	}

	var rows []entryRow
	if _, err := q.ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("service entries by date %s: %w", date, err)
	}
	return entriesToDomain(rows), nil
}

func (c *Client) ServiceEntriesDatedInRange(ctx context.Context, start, end string, service domain.ServiceKey) ([]domain.ServiceEntry, error) {
	q := c.api.From("service_entries").
		Select(entryColumns, "", false).
		Gte("entry_date", start).
		Lt("entry_date", end).
		Order("created_at", descCreatedAt)
	if service != "" && service != domain.ServiceVariados {
		q = q.Eq("service", string(service))
	}

	var rows []entryRow
	if _, err := q.ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("dated service entries in [%s,%s): %w", start, end, err)
	}
	return entriesToDomain(rows), nil
}

func (c *Client) ServiceEntriesUndatedCreatedInRange(ctx context.Context, start, end time.Time, service domain.ServiceKey) ([]domain.ServiceEntry, error) {
	q := c.api.From("service_entries").
		Select(entryColumns, "", false).
		Is("entry_date", "null").
		Gte("created_at", start.UTC().Format(time.RFC3339)).
		Lt("created_at", end.UTC().Format(time.RFC3339)).
		Order("created_at", descCreatedAt)
	if service != "" && service != domain.ServiceVariados {
		q = q.Eq("service", string(service))
	}

	var rows []entryRow
	if _, err := q.ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("undated service entries created in window: %w", err)
	}
	return entriesToDomain(rows), nil
}

type insertEntryRow struct {
	UserID    string               `json:"user_id"`
	Service   string               `json:"service"`
	Title     string               `json:"title"`
	Amount    string               `json:"amount"`
	EntryDate string               `json:"entry_date"`
	Status    *string              `json:"status"`
	Metadata  domain.EntryMetadata `json:"metadata"`
}

func (c *Client) InsertServiceEntry(ctx context.Context, e store.NewServiceEntry) (string, error) {
	row := insertEntryRow{
		UserID:    e.UserID,
		Service:   string(e.Service),
		Title:     e.Title,
		Amount:    e.Amount.StringFixed(2),
		EntryDate: e.EntryDate,
		Metadata:  e.Metadata,
	}
	if e.Status != "" {
		row.Status = &e.Status
	}

	var inserted []entryRow
	_, err := c.api.From("service_entries").
		Insert(row, false, "", "representation", "").
		ExecuteTo(&inserted)
	if err != nil {
		return "", fmt.Errorf("insert service entry: %w", err)
	}
	if len(inserted) == 0 {
		return "", fmt.Errorf("insert service entry: store returned no row")
	}
	return inserted[0].ID, nil
}

type profileRow struct {
	Role string `json:"role"`
}

// LookupRole resolves the caller's role. A missing profile, a failed read or
// an unexpected value all resolve to employee, never to admin.
func (c *Client) LookupRole(ctx context.Context, userID string) (domain.Role, error) {
	var rows []profileRow
	_, err := c.api.From("profiles").
		Select("role", "", false).
		Eq("id", userID).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil || len(rows) == 0 {
		return domain.RoleEmployee, nil
	}
	if rows[0].Role == string(domain.RoleAdmin) {
		return domain.RoleAdmin, nil
	}
	return domain.RoleEmployee, nil
}

func entriesToDomain(rows []entryRow) []domain.ServiceEntry {
	out := make([]domain.ServiceEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}

func expensesToDomain(rows []expenseRow) []domain.Expense {
	out := make([]domain.Expense, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}
