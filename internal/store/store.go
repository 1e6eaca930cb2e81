// Package store defines the narrow interface the assistant and the import
// tooling have onto the backing record store: filtered reads over the three
// record variants, a single insert path, and the profile role lookup. The
// PostgREST implementation lives in store/postgrest.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mv4digital/chuvinha/internal/domain"
)

// EntryFilter narrows a dated service-entry read.
type EntryFilter struct {
	// PaidOnly keeps only entries whose metadata marks them paid
	// ("receipts" questions).
	PaidOnly bool
	// RevenueOnly keeps only entries tagged entry_type=receita.
	RevenueOnly bool
}

// NewServiceEntry is the single insert shape the assistant produces.
type NewServiceEntry struct {
	UserID    string
	Service   domain.ServiceKey
	Title     string
	Amount    decimal.Decimal
	EntryDate string
	Status    string
	Metadata  domain.EntryMetadata
}

// NewExpense is the insert shape of the batch importer.
type NewExpense struct {
	UserID      string
	Kind        domain.ExpenseKind
	Name        string
	Amount      decimal.Decimal
	ExpenseDate string
	Paid        bool
	Metadata    domain.EntryMetadata
}

// RecordStore is the read/insert surface over financial records. All reads
// are bounded by the callers (date equality or one month window); none
// mutate rows. Implementations do not retry: a transient failure is terminal
// for the request.
type RecordStore interface {
	// ExpensesByDate returns expense rows for exactly that day, most
	// recent first.
	ExpensesByDate(ctx context.Context, date string) ([]domain.Expense, error)

	// ExpensesInRange returns expense rows with expense_date in the
	// half-open interval [start, end).
	ExpensesInRange(ctx context.Context, start, end string) ([]domain.Expense, error)

	// ServiceEntriesByDate returns service entries dated exactly that day,
	// most recent first, narrowed by the filter.
	ServiceEntriesByDate(ctx context.Context, date string, f EntryFilter) ([]domain.ServiceEntry, error)

	// ServiceEntriesDatedInRange returns entries whose explicit entry_date
	// falls in [start, end). service narrows to one service line unless it
	// is servicos_variados.
	ServiceEntriesDatedInRange(ctx context.Context, start, end string, service domain.ServiceKey) ([]domain.ServiceEntry, error)

	// ServiceEntriesUndatedCreatedInRange returns entries lacking an
	// explicit date whose creation timestamp falls in [start, end). This is
	// the second leg of the monthly union read; it is a separate predicate
	// because entry_date is nullable.
	ServiceEntriesUndatedCreatedInRange(ctx context.Context, start, end time.Time, service domain.ServiceKey) ([]domain.ServiceEntry, error)

	// InsertServiceEntry inserts one entry and returns its generated id.
	InsertServiceEntry(ctx context.Context, e NewServiceEntry) (string, error)
}

// ProfileStore resolves a caller identity to its role. Any lookup ambiguity
// resolves to employee.
type ProfileStore interface {
	LookupRole(ctx context.Context, userID string) (domain.Role, error)
}

// Store is what a fully-scoped client exposes.
type Store interface {
	RecordStore
	ProfileStore
}

// ImportStore is the extra surface the batch importer needs: pre-fetched
// dedup keys and chunked inserts.
type ImportStore interface {
	// ExpenseKeys returns the set of existing (name, expense_date) keys,
	// joined as "name|date".
	ExpenseKeys(ctx context.Context) (map[string]struct{}, error)

	// ServiceEntryKeys returns the set of existing (title, entry_date)
	// keys, joined as "title|date".
	ServiceEntryKeys(ctx context.Context) (map[string]struct{}, error)

	InsertExpenses(ctx context.Context, rows []NewExpense) error
	InsertServiceEntries(ctx context.Context, rows []NewServiceEntry) error
}

// Provider hands out store clients at the two credential levels the access
// gate distinguishes. The elevated client must be request-scoped: callers
// obtain it per request on an Escalate verdict and drop it with the request.
type Provider interface {
	// ForCaller returns a store scoped to the caller's bearer token, so
	// row-level security applies.
	ForCaller(bearer string) Store

	// Elevated returns a store using the privileged credential, or an
	// error naming the missing configuration when none is set.
	Elevated() (Store, error)
}
