package assistant

import (
	"context"
	"fmt"

	"github.com/mv4digital/chuvinha/internal/auth"
	"github.com/mv4digital/chuvinha/internal/domain"
	"github.com/mv4digital/chuvinha/internal/parse"
	"github.com/mv4digital/chuvinha/internal/store"
)

// createEntry turns a creation command into a validated revenue entry or a
// clarifying question. Missing title or amount never inserts anything; the
// assistant asks instead of guessing.
func (a *Assistant) createEntry(ctx context.Context, caller store.Store, ident auth.Identity, msg string, rctx ChatContext) Reply {
	title, err := parse.Title(msg)
	if err != nil {
		return Reply{Reply: "Miau! Qual é o nome/título desse cadastro? (ex: 'cadastre Duo Medic ...')"}
	}

	amount, err := parse.Money(msg)
	if err != nil {
		return Reply{Reply: "Miau! Qual é o valor? (ex: R$ 1.500,00)"}
	}

	service := parse.ServiceKey(msg)
	if service == domain.ServiceVariados {
		// The text itself was ambiguous; the tab the user is on decides.
		if s := domain.ServiceKey(rctx.Service); s.Valid() {
			service = s
		}
	}

	recurringRule := parse.RecurringRule(msg)
	paid := parse.Paid(msg)
	entryDate := a.now().Format("2006-01-02")

	metadata := domain.EntryMetadata{
		EntryType: string(domain.EntryReceita),
		Paid:      paid,
	}
	if recurringRule != "" {
		metadata.Recurring = true
		metadata.RecurringRule = recurringRule
	}
	if paid && amount.IsPositive() {
		paidAmount := amount
		metadata.PaidAmount = &paidAmount
	}

	status := ""
	if paid {
		status = "pago"
	}

	id, err := caller.InsertServiceEntry(ctx, store.NewServiceEntry{
		UserID:    ident.UserID,
		Service:   service,
		Title:     title,
		Amount:    amount,
		EntryDate: entryDate,
		Status:    status,
		Metadata:  metadata,
	})
	if err != nil {
		// This is an operator-facing surface: the raw store error is more
		// useful than a generic message.
		return Reply{Reply: "Miau… tentei cadastrar, mas deu erro no banco: " + err.Error()}
	}

	paidLabel := "em aberto"
	if paid {
		paidLabel = "pago"
	}
	recLabel := ""
	if recurringRule != "" {
		recLabel = fmt.Sprintf(" (%s)", recurringRule)
	}
	// The confirmation echoes the amount in the same pt-BR shape the user
	// typed it in.
	return Reply{Reply: fmt.Sprintf("Miau! Cadastrei pra você: '%s' em %s, R$ %s%s, %s. (id: %s)",
		title, service, parse.FormatMoney(amount), recLabel, paidLabel, id)}
}
