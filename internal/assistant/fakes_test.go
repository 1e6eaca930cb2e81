package assistant

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mv4digital/chuvinha/internal/domain"
	"github.com/mv4digital/chuvinha/internal/llm"
	"github.com/mv4digital/chuvinha/internal/store"
)

// fakeStore is a scripted store.Store that counts reads per surface so tests
// can assert which credential a read went through.
type fakeStore struct {
	role    domain.Role
	roleErr error

	expensesByDate  []domain.Expense
	expensesInRange []domain.Expense
	entriesByDate   []domain.ServiceEntry
	dated           []domain.ServiceEntry
	undated         []domain.ServiceEntry

	insertID  string
	insertErr error
	inserted  []store.NewServiceEntry

	roleReads    int
	expenseReads int
	entryReads   int

	gotFilter store.EntryFilter
	gotRange  [2]string
}

func (s *fakeStore) ExpensesByDate(ctx context.Context, date string) ([]domain.Expense, error) {
	s.expenseReads++
	return s.expensesByDate, nil
}

func (s *fakeStore) ExpensesInRange(ctx context.Context, start, end string) ([]domain.Expense, error) {
	s.expenseReads++
	s.gotRange = [2]string{start, end}
	return s.expensesInRange, nil
}

func (s *fakeStore) ServiceEntriesByDate(ctx context.Context, date string, f store.EntryFilter) ([]domain.ServiceEntry, error) {
	s.entryReads++
	s.gotFilter = f
	return s.entriesByDate, nil
}

func (s *fakeStore) ServiceEntriesDatedInRange(ctx context.Context, start, end string, service domain.ServiceKey) ([]domain.ServiceEntry, error) {
	s.entryReads++
	s.gotRange = [2]string{start, end}
	return s.dated, nil
}

func (s *fakeStore) ServiceEntriesUndatedCreatedInRange(ctx context.Context, start, end time.Time, service domain.ServiceKey) ([]domain.ServiceEntry, error) {
	s.entryReads++
	return s.undated, nil
}

func (s *fakeStore) InsertServiceEntry(ctx context.Context, e store.NewServiceEntry) (string, error) {
	if s.insertErr != nil {
		return "", s.insertErr
	}
	s.inserted = append(s.inserted, e)
	return s.insertID, nil
}

func (s *fakeStore) LookupRole(ctx context.Context, userID string) (domain.Role, error) {
	s.roleReads++
	if s.roleErr != nil {
		return "", s.roleErr
	}
	return s.role, nil
}

// fakeProvider hands out the two scripted stores.
type fakeProvider struct {
	caller      *fakeStore
	elevated    *fakeStore
	elevatedErr error
}

func (p *fakeProvider) ForCaller(bearer string) store.Store { return p.caller }

func (p *fakeProvider) Elevated() (store.Store, error) {
	if p.elevatedErr != nil {
		return nil, p.elevatedErr
	}
	return p.elevated, nil
}

// fakeChat is a scripted llm.Client recording what it was asked.
type fakeChat struct {
	reply string
	err   error
	calls [][]llm.Message
}

func (c *fakeChat) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	c.calls = append(c.calls, messages)
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

var testNow = time.Date(2025, time.December, 20, 10, 0, 0, 0, time.UTC)

func newTestAssistant(p store.Provider, chat llm.Client) *Assistant {
	a := New(p, chat, zerolog.Nop())
	a.now = func() time.Time { return testNow }
	return a
}

func amt(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func amtPtr(s string) *decimal.Decimal {
	d := amt(s)
	return &d
}
