package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mv4digital/chuvinha/internal/domain"
	"github.com/mv4digital/chuvinha/internal/parse"
	"github.com/mv4digital/chuvinha/internal/store"
)

// maxListedRows bounds every itemized listing in a reply.
const maxListedRows = 50

// maxOutstandingRows bounds the "who still owes" listing.
const maxOutstandingRows = 12

// datedQuery answers "expenses/receipts/revenue on <date>" questions with a
// bounded read and a deterministic summary. No generative call is involved.
func (a *Assistant) datedQuery(ctx context.Context, caller store.Store, role domain.Role, r routed) Reply {
	if r.wantsExpenses {
		db, refusal, ok := a.gatedLedgerStore(role)
		if !ok {
			return refusal
		}

		rows, err := db.ExpensesByDate(ctx, r.dateISO)
		if err != nil {
			return Reply{Reply: "Não consegui acessar despesas agora. Pode ser permissão/configuração. " +
				"Se persistir, me mande o print desse erro: " + err.Error()}
		}

		total := decimal.Zero
		lines := make([]string, 0, min(len(rows), maxListedRows))
		for i, e := range rows {
			total = total.Add(e.Amount)
			if i < maxListedRows {
				lines = append(lines, "- "+e.Name+": "+domain.FormatBRL(e.Amount))
			}
		}
		return Reply{Reply: fmt.Sprintf("Miau! Aqui vão as despesas em %s: %d registro(s).\nTotal: %s\n%s",
			r.dateISO, len(rows), domain.FormatBRL(total), orNone(lines, "(Nenhuma)"))}
	}

	// Receipts and revenue live in service_entries, open to both roles
	// under the caller's own credential.
	filter := store.EntryFilter{
		PaidOnly:    r.wantsReceipts,
		RevenueOnly: !r.wantsReceipts && r.wantsRevenue,
	}
	rows, err := caller.ServiceEntriesByDate(ctx, r.dateISO, filter)
	if err != nil {
		return Reply{Reply: "Não consegui acessar esses lançamentos agora. Pode ser permissão/configuração. " +
			"Se persistir, me mande o print desse erro: " + err.Error()}
	}

	total := decimal.Zero
	lines := make([]string, 0, min(len(rows), maxListedRows))
	for i, e := range rows {
		total = total.Add(e.Amount)
		if i < maxListedRows {
			lines = append(lines, "- "+e.Title+": "+domain.FormatBRL(e.Amount))
		}
	}

	label := "Lançamentos"
	switch {
	case r.wantsReceipts:
		label = "Recebimentos"
	case r.wantsRevenue:
		label = "Receitas"
	}
	return Reply{Reply: fmt.Sprintf("Miau! %s em %s: %d registro(s).\nTotal: %s\n%s",
		label, r.dateISO, len(rows), domain.FormatBRL(total), orNone(lines, "(Nenhum)"))}
}

// monthlyQuery aggregates one month window: revenue/expense totals over the
// service entries, outstanding balances when asked, and the admin-gated
// expense-ledger totals when asked.
func (a *Assistant) monthlyQuery(ctx context.Context, caller store.Store, role domain.Role, r routed) Reply {
	window, ok := parse.MonthWindow(r.monthKey)
	if !ok {
		return Reply{Reply: "Miau… não entendi qual mês você quis dizer. Use formato YYYY-MM (ex: 2025-12)."}
	}

	// Two separate reads, because entry_date is nullable: entries dated in
	// the window, plus undated entries created in the window.
	dated, err := caller.ServiceEntriesDatedInRange(ctx, window.StartDate, window.EndDate, r.service)
	if err != nil {
		return Reply{Reply: "Não consegui acessar os lançamentos desse mês agora. Pode ser permissão/configuração. Erro: " + err.Error()}
	}
	undated, err := caller.ServiceEntriesUndatedCreatedInRange(ctx, window.StartTS, window.EndTS, r.service)
	if err != nil {
		return Reply{Reply: "Não consegui acessar os lançamentos desse mês agora. Pode ser permissão/configuração. Erro: " + err.Error()}
	}
	entries := append(dated, undated...)

	revenueTotal := decimal.Zero
	expenseTotal := decimal.Zero
	openTotal := decimal.Zero
	type openItem struct {
		title     string
		remaining decimal.Decimal
	}
	var open []openItem

	for _, e := range entries {
		amount := e.Amount.Abs()
		if e.Type() == domain.EntryReceita {
			revenueTotal = revenueTotal.Add(amount)
		} else {
			expenseTotal = expenseTotal.Add(amount)
			continue
		}

		if r.wantsOutstanding {
			s := domain.Reconcile(amount, e.Metadata.Paid, e.Metadata.PaidAmount)
			if !s.IsPaid && s.Remaining.IsPositive() {
				openTotal = openTotal.Add(s.Remaining)
				title := e.Title
				if title == "" {
					title = "(sem título)"
				}
				open = append(open, openItem{title: title, remaining: s.Remaining})
			}
		}
	}

	sort.SliceStable(open, func(i, j int) bool {
		return open[i].remaining.GreaterThan(open[j].remaining)
	})

	scopeLabel := ""
	if r.service != "" && r.service != domain.ServiceVariados {
		scopeLabel = fmt.Sprintf(" (%s)", r.service)
	}

	lines := []string{
		fmt.Sprintf("Miau! Resumo de %s%s:", r.monthKey, scopeLabel),
		"- Receitas: " + domain.FormatBRL(revenueTotal),
		"- Despesas (lançamentos): " + domain.FormatBRL(expenseTotal),
	}

	if r.wantsExpenses {
		lines = append(lines, a.monthlyLedgerLine(ctx, role, window)...)
	}

	if r.wantsOutstanding {
		lines = append(lines, fmt.Sprintf("- Falta receber: %s (%d pendência(s))",
			domain.FormatBRL(openTotal), len(open)))
		if len(open) == 0 {
			lines = append(lines, "(Nenhuma pendência de recebimento)")
		} else {
			top := open
			if len(top) > maxOutstandingRows {
				top = top[:maxOutstandingRows]
			}
			for _, item := range top {
				lines = append(lines, "- "+item.title+": "+domain.FormatBRL(item.remaining))
			}
		}
	}

	return Reply{Reply: strings.Join(lines, "\n")}
}

// monthlyLedgerLine produces the admin-gated expense-table summary lines for
// a monthly reply. Employees get the fixed restriction note; the store is
// only touched on an escalated verdict.
func (a *Assistant) monthlyLedgerLine(ctx context.Context, role domain.Role, window parse.MonthRange) []string {
	switch Decide(role, ClassExpenseLedger) {
	case VerdictRefuse:
		return []string{"- Despesas (tabela despesas): acesso só do admin."}
	case VerdictEscalate:
		db, err := a.stores.Elevated()
		if err != nil {
			return []string{"- Despesas (tabela despesas): " + err.Error()}
		}
		rows, err := db.ExpensesInRange(ctx, window.StartDate, window.EndDate)
		if err != nil {
			return []string{"- Despesas (tabela despesas): erro ao consultar: " + err.Error()}
		}
		total := decimal.Zero
		openTotal := decimal.Zero
		for _, e := range rows {
			total = total.Add(e.Amount)
			s := domain.Reconcile(e.Amount, e.Paid, e.Metadata.PaidAmount)
			if !s.IsPaid {
				openTotal = openTotal.Add(s.Remaining)
			}
		}
		return []string{fmt.Sprintf("- Despesas (tabela despesas): %s (em aberto: %s)",
			domain.FormatBRL(total), domain.FormatBRL(openTotal))}
	}
	return nil
}

// gatedLedgerStore applies the access gate for the expense ledger and, on
// escalation, obtains the request-scoped privileged store.
func (a *Assistant) gatedLedgerStore(role domain.Role) (store.Store, Reply, bool) {
	switch Decide(role, ClassExpenseLedger) {
	case VerdictRefuse:
		return nil, Reply{Reply: refusalReply}, false
	case VerdictEscalate:
		db, err := a.stores.Elevated()
		if err != nil {
			return nil, Reply{Reply: missingEscalationReply, Detail: err.Error()}, false
		}
		return db, Reply{}, true
	}
	return nil, Reply{Reply: refusalReply}, false
}

func orNone(lines []string, none string) string {
	if len(lines) == 0 {
		return none
	}
	return strings.Join(lines, "\n")
}
