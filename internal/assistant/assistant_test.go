package assistant

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mv4digital/chuvinha/internal/auth"
	"github.com/mv4digital/chuvinha/internal/domain"
	"github.com/mv4digital/chuvinha/internal/llm"
	"github.com/mv4digital/chuvinha/internal/store"
)

var ident = auth.Identity{UserID: "user-1", Bearer: "token-1"}

func chat(msg string) ChatRequest {
	return ChatRequest{Message: msg}
}

func TestHandleChat_DatedExpenses_Admin(t *testing.T) {
	caller := &fakeStore{role: domain.RoleAdmin}
	elevated := &fakeStore{expensesByDate: []domain.Expense{
		{Name: "Aluguel", Amount: amt("450"), ExpenseDate: "2025-12-23"},
		{Name: "Luz", Amount: amt("120"), ExpenseDate: "2025-12-23"},
	}}
	a := newTestAssistant(&fakeProvider{caller: caller, elevated: elevated}, &fakeChat{})

	reply := a.HandleChat(context.Background(), ident, chat("quais despesas em 23/12?"))

	assert.Contains(t, reply.Reply, "despesas em 2025-12-23")
	assert.Contains(t, reply.Reply, "2 registro(s)")
	assert.Contains(t, reply.Reply, "Total: R$ 570.00")
	assert.Contains(t, reply.Reply, "- Aluguel: R$ 450.00")

	// The ledger read must go through the escalated credential, never the
	// caller's own.
	assert.Equal(t, 1, elevated.expenseReads)
	assert.Equal(t, 0, caller.expenseReads)
}

func TestHandleChat_DatedExpenses_ListingCap(t *testing.T) {
	expenses := make([]domain.Expense, 60)
	for i := range expenses {
		expenses[i] = domain.Expense{
			Name:        fmt.Sprintf("Despesa %02d", i),
			Amount:      amt("10"),
			ExpenseDate: "2025-12-23",
		}
	}
	caller := &fakeStore{role: domain.RoleAdmin}
	elevated := &fakeStore{expensesByDate: expenses}
	a := newTestAssistant(&fakeProvider{caller: caller, elevated: elevated}, &fakeChat{})

	reply := a.HandleChat(context.Background(), ident, chat("quais despesas em 23/12?"))

	// The record count and the total cover all rows; the itemized listing
	// stops at 50 lines.
	assert.Contains(t, reply.Reply, "60 registro(s)")
	assert.Contains(t, reply.Reply, "Total: R$ 600.00")
	assert.Equal(t, 50, strings.Count(reply.Reply, "- Despesa "))
	assert.Contains(t, reply.Reply, "- Despesa 49: R$ 10.00")
	assert.NotContains(t, reply.Reply, "- Despesa 50:")
}

func TestHandleChat_DatedExpenses_EmployeeRefused(t *testing.T) {
	caller := &fakeStore{role: domain.RoleEmployee}
	elevated := &fakeStore{}
	a := newTestAssistant(&fakeProvider{caller: caller, elevated: elevated}, &fakeChat{})

	reply := a.HandleChat(context.Background(), ident, chat("quais despesas em 23/12?"))

	assert.Equal(t, refusalReply, reply.Reply)
	assert.Equal(t, 0, elevated.expenseReads)
	assert.Equal(t, 0, caller.expenseReads)
}

func TestHandleChat_RoleLookupFailureNeverEscalates(t *testing.T) {
	caller := &fakeStore{role: domain.RoleAdmin, roleErr: assert.AnError}
	elevated := &fakeStore{}
	a := newTestAssistant(&fakeProvider{caller: caller, elevated: elevated}, &fakeChat{})

	reply := a.HandleChat(context.Background(), ident, chat("quais despesas em 23/12?"))

	assert.Equal(t, refusalReply, reply.Reply)
	assert.Equal(t, 0, elevated.expenseReads)
}

func TestHandleChat_EscalationWithoutServiceKey(t *testing.T) {
	caller := &fakeStore{role: domain.RoleAdmin}
	a := newTestAssistant(&fakeProvider{caller: caller, elevatedErr: assert.AnError}, &fakeChat{})

	reply := a.HandleChat(context.Background(), ident, chat("quais despesas em 23/12?"))

	assert.Equal(t, missingEscalationReply, reply.Reply)
	assert.NotEmpty(t, reply.Detail)
}

func TestHandleChat_DatedReceipts(t *testing.T) {
	caller := &fakeStore{
		role: domain.RoleEmployee,
		entriesByDate: []domain.ServiceEntry{
			{Title: "ACME", Amount: amt("300"), Metadata: domain.EntryMetadata{Paid: true}},
		},
	}
	a := newTestAssistant(&fakeProvider{caller: caller, elevated: &fakeStore{}}, &fakeChat{})

	reply := a.HandleChat(context.Background(), ident, chat("recebimentos em 23/12"))

	assert.Contains(t, reply.Reply, "Recebimentos em 2025-12-23")
	assert.Contains(t, reply.Reply, "Total: R$ 300.00")
	assert.True(t, caller.gotFilter.PaidOnly)
	assert.False(t, caller.gotFilter.RevenueOnly)
}

func TestHandleChat_CreateAsksForTitle(t *testing.T) {
	caller := &fakeStore{role: domain.RoleEmployee}
	a := newTestAssistant(&fakeProvider{caller: caller, elevated: &fakeStore{}}, &fakeChat{})

	reply := a.HandleChat(context.Background(), ident, chat("cadastre"))

	assert.Contains(t, reply.Reply, "nome/título")
	assert.Empty(t, caller.inserted)
}

func TestHandleChat_CreateAsksForAmount(t *testing.T) {
	caller := &fakeStore{role: domain.RoleEmployee}
	a := newTestAssistant(&fakeProvider{caller: caller, elevated: &fakeStore{}}, &fakeChat{})

	reply := a.HandleChat(context.Background(), ident, chat("cadastre Duo Medic"))

	assert.Contains(t, reply.Reply, "valor")
	assert.Empty(t, caller.inserted)
}

func TestHandleChat_CreateEntry(t *testing.T) {
	caller := &fakeStore{role: domain.RoleEmployee, insertID: "abc-1"}
	a := newTestAssistant(&fakeProvider{caller: caller, elevated: &fakeStore{}}, &fakeChat{})

	reply := a.HandleChat(context.Background(), ident,
		chat("cadastre Duo Medic R$ 1.500,00 gestão de mídias mensal já pago"))

	require.Len(t, caller.inserted, 1)
	got := caller.inserted[0]
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "Duo Medic", got.Title)
	assert.Equal(t, domain.ServiceGestaoMidias, got.Service)
	assert.True(t, got.Amount.Equal(amt("1500")))
	assert.Equal(t, "2025-12-20", got.EntryDate)
	assert.Equal(t, "pago", got.Status)
	assert.Equal(t, "receita", got.Metadata.EntryType)
	assert.True(t, got.Metadata.Paid)
	assert.True(t, got.Metadata.Recurring)
	assert.Equal(t, "mensal", got.Metadata.RecurringRule)
	require.NotNil(t, got.Metadata.PaidAmount)
	assert.True(t, got.Metadata.PaidAmount.Equal(amt("1500")))

	assert.Contains(t, reply.Reply, "Cadastrei")
	assert.Contains(t, reply.Reply, "R$ 1.500,00")
	assert.Contains(t, reply.Reply, "abc-1")
}

func TestHandleChat_CreateUsesTabService(t *testing.T) {
	caller := &fakeStore{role: domain.RoleEmployee, insertID: "abc-2"}
	a := newTestAssistant(&fakeProvider{caller: caller, elevated: &fakeStore{}}, &fakeChat{})

	req := ChatRequest{
		Message: "cadastre Cliente X 200",
		Context: ChatContext{Service: "carro_de_som"},
	}
	a.HandleChat(context.Background(), ident, req)

	require.Len(t, caller.inserted, 1)
	assert.Equal(t, domain.ServiceCarroDeSom, caller.inserted[0].Service)
}

func TestHandleChat_MonthlySummary(t *testing.T) {
	caller := &fakeStore{
		role: domain.RoleEmployee,
		dated: []domain.ServiceEntry{
			{Title: "ACME", Amount: amt("1000"), Metadata: domain.EntryMetadata{EntryType: "receita", Paid: true}},
			{Title: "Beta", Amount: amt("500"), Metadata: domain.EntryMetadata{EntryType: "receita"}},
			{Title: "Gasolina", Amount: amt("-200")},
		},
		undated: []domain.ServiceEntry{
			{Title: "Parcial", Amount: amt("300"), Metadata: domain.EntryMetadata{EntryType: "receita", PaidAmount: amtPtr("100")}},
		},
	}
	a := newTestAssistant(&fakeProvider{caller: caller, elevated: &fakeStore{}}, &fakeChat{})

	req := ChatRequest{
		Message: "como estão as receitas e pendências?",
		Context: ChatContext{Month: "2025-12"},
	}
	reply := a.HandleChat(context.Background(), ident, req)

	assert.Contains(t, reply.Reply, "Resumo de 2025-12")
	assert.Contains(t, reply.Reply, "- Receitas: R$ 1800.00")
	assert.Contains(t, reply.Reply, "- Despesas (lançamentos): R$ 200.00")
	assert.Contains(t, reply.Reply, "- Falta receber: R$ 700.00 (2 pendência(s))")
	assert.NotContains(t, reply.Reply, "tabela despesas")

	// Largest outstanding balance first.
	idxBeta := indexOf(t, reply.Reply, "- Beta: R$ 500.00")
	idxParcial := indexOf(t, reply.Reply, "- Parcial: R$ 200.00")
	assert.Less(t, idxBeta, idxParcial)

	// Both legs of the month union read ran against the caller store.
	assert.Equal(t, 2, caller.entryReads)
	assert.Equal(t, [2]string{"2025-12-01", "2026-01-01"}, caller.gotRange)
}

func TestHandleChat_MonthlyOutstandingCap(t *testing.T) {
	open := make([]domain.ServiceEntry, 15)
	for i := range open {
		open[i] = domain.ServiceEntry{
			Title:    fmt.Sprintf("Pend %02d", i),
			Amount:   amt(fmt.Sprintf("%d", 100+i)),
			Metadata: domain.EntryMetadata{EntryType: "receita"},
		}
	}
	caller := &fakeStore{role: domain.RoleEmployee, dated: open}
	a := newTestAssistant(&fakeProvider{caller: caller, elevated: &fakeStore{}}, &fakeChat{})

	reply := a.HandleChat(context.Background(), ident, chat("quais pendências de 2025-12?"))

	// The open total and the count cover all pending items; only the twelve
	// largest balances are itemized, descending.
	assert.Contains(t, reply.Reply, "- Falta receber: R$ 1605.00 (15 pendência(s))")
	assert.Equal(t, 12, strings.Count(reply.Reply, "- Pend "))
	idxTop := indexOf(t, reply.Reply, "- Pend 14: R$ 114.00")
	idxLast := indexOf(t, reply.Reply, "- Pend 03: R$ 103.00")
	assert.Less(t, idxTop, idxLast)
	assert.NotContains(t, reply.Reply, "- Pend 02:")
}

func TestHandleChat_MonthlyLedgerLine(t *testing.T) {
	caller := &fakeStore{role: domain.RoleAdmin}
	elevated := &fakeStore{expensesInRange: []domain.Expense{
		{Name: "Aluguel", Amount: amt("450"), Paid: true},
		{Name: "Internet", Amount: amt("100")},
	}}
	a := newTestAssistant(&fakeProvider{caller: caller, elevated: elevated}, &fakeChat{})

	reply := a.HandleChat(context.Background(), ident, chat("resumo de despesas de 2025-12"))

	assert.Contains(t, reply.Reply, "- Despesas (tabela despesas): R$ 550.00 (em aberto: R$ 100.00)")
	assert.Equal(t, 1, elevated.expenseReads)
}

func TestHandleChat_MonthlyLedgerLine_Employee(t *testing.T) {
	caller := &fakeStore{role: domain.RoleEmployee}
	elevated := &fakeStore{}
	a := newTestAssistant(&fakeProvider{caller: caller, elevated: elevated}, &fakeChat{})

	reply := a.HandleChat(context.Background(), ident, chat("resumo de despesas de 2025-12"))

	assert.Contains(t, reply.Reply, "acesso só do admin")
	assert.Equal(t, 0, elevated.expenseReads)
}

func TestHandleChat_FallbackHistoryCap(t *testing.T) {
	provider := &fakeProvider{caller: &fakeStore{role: domain.RoleEmployee}, elevated: &fakeStore{}}
	chatClient := &fakeChat{reply: "Miau, bom dia!"}
	a := newTestAssistant(provider, chatClient)

	history := make([]llm.Message, 15)
	for i := range history {
		history[i] = llm.Message{Role: "user", Content: "turno antigo"}
	}
	reply := a.HandleChat(context.Background(), ident, ChatRequest{
		Message: "bom dia chuvinha",
		History: history,
	})

	assert.Equal(t, "Miau, bom dia!", reply.Reply)
	require.Len(t, chatClient.calls, 1)
	msgs := chatClient.calls[0]
	// system + capped history + current message
	assert.Len(t, msgs, 1+historyLimit+1)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "bom dia chuvinha", msgs[len(msgs)-1].Content)
}

func TestHandleChat_FallbackNotConfigured(t *testing.T) {
	provider := &fakeProvider{caller: &fakeStore{role: domain.RoleEmployee}, elevated: &fakeStore{}}
	a := newTestAssistant(provider, &fakeChat{err: llm.ErrNotConfigured})

	reply := a.HandleChat(context.Background(), ident, chat("me conta uma piada"))

	assert.Equal(t, notConfiguredReply, reply.Reply)
	assert.Equal(t, llm.ErrNotConfigured.Error(), reply.Detail)
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := strings.Index(haystack, needle)
	require.GreaterOrEqual(t, idx, 0, "expected %q in reply:\n%s", needle, haystack)
	return idx
}

var _ store.Provider = (*fakeProvider)(nil)
