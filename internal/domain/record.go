// Package domain holds the financial record model shared by the assistant,
// the store layer and the import tooling: the three record variants, the
// closed classification enumerations, and the payment reconciliation model.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceKey identifies one of the agency's service lines.
type ServiceKey string

const (
	ServiceMelhoresDoAno    ServiceKey = "melhores_do_ano"
	ServiceGestaoMidias     ServiceKey = "gestao_midias"
	ServicePremioExcelencia ServiceKey = "premio_excelencia"
	ServiceCarroDeSom       ServiceKey = "carro_de_som"
	ServiceRevistaFactus    ServiceKey = "revista_factus"
	ServiceRevistaSaude     ServiceKey = "revista_saude"
	ServiceVariados         ServiceKey = "servicos_variados"
)

// ServiceKeys lists every valid service key.
var ServiceKeys = []ServiceKey{
	ServiceMelhoresDoAno,
	ServiceGestaoMidias,
	ServicePremioExcelencia,
	ServiceCarroDeSom,
	ServiceRevistaFactus,
	ServiceRevistaSaude,
	ServiceVariados,
}

// Valid reports whether k is one of the closed service enumeration values.
func (k ServiceKey) Valid() bool {
	for _, v := range ServiceKeys {
		if k == v {
			return true
		}
	}
	return false
}

// ExpenseKind classifies a row of the expenses table.
type ExpenseKind string

const (
	ExpenseFixed     ExpenseKind = "fixed"
	ExpenseVariable  ExpenseKind = "variable"
	ExpenseProvision ExpenseKind = "provision"
)

// Valid reports whether k is one of the closed expense-kind values.
func (k ExpenseKind) Valid() bool {
	return k == ExpenseFixed || k == ExpenseVariable || k == ExpenseProvision
}

// Role is the caller's resolved role. It is looked up once per request and
// never cached across requests.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// EntryType tags a service entry as revenue or expense.
type EntryType string

const (
	EntryReceita EntryType = "receita"
	EntryDespesa EntryType = "despesa"
)

// EntryMetadata is the typed form of the jsonb metadata column. The original
// product carried an open string-keyed bag; the fields the assistant reads or
// writes are explicit here, everything else is ignored on decode.
type EntryMetadata struct {
	EntryType     string           `json:"entry_type,omitempty"`
	Paid          bool             `json:"paid,omitempty"`
	PaidAmount    *decimal.Decimal `json:"paid_amount,omitempty"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	Installments  int              `json:"installments,omitempty"`
	Recurring     bool             `json:"recurring,omitempty"`
	RecurringRule string           `json:"recurring_rule,omitempty"`
	Source        string           `json:"source,omitempty"`
}

// ServiceEntry is one per-service revenue or expense entry. Amount is signed:
// positive means revenue, negative means expense, unless metadata carries an
// explicit entry_type tag. EntryDate may be empty; CreatedAt is the fallback
// anchor for monthly aggregation.
type ServiceEntry struct {
	ID        string
	UserID    string
	Service   ServiceKey
	Title     string
	Amount    decimal.Decimal
	EntryDate string // yyyy-mm-dd, empty when absent
	Status    string
	Notes     string
	CreatedAt time.Time
	Metadata  EntryMetadata
}

// Type classifies the entry as revenue or expense: the metadata tag wins,
// otherwise the amount sign decides (negative = expense).
func (e ServiceEntry) Type() EntryType {
	switch e.Metadata.EntryType {
	case string(EntryReceita):
		return EntryReceita
	case string(EntryDespesa):
		return EntryDespesa
	}
	if e.Amount.IsNegative() {
		return EntryDespesa
	}
	return EntryReceita
}

// Expense is one row of the admin-only ledger-style expense table. Amount is
// magnitude-only.
type Expense struct {
	ID            string
	UserID        string
	Kind          ExpenseKind
	Name          string
	Amount        decimal.Decimal
	ExpenseDate   string // yyyy-mm-dd
	DueDay        int
	Paid          bool
	PaymentMethod string
	Installments  int
	Recurring     bool
	RecurringRule string
	Notes         string
	CreatedAt     time.Time
	Metadata      EntryMetadata
}

// Payable is one row of the accounts_payable table. The assistant never
// writes payables; they exist so the fallback prompt can describe them and
// callers of the store can list what is due.
type Payable struct {
	ID            string
	Vendor        string
	Amount        decimal.Decimal
	DueDate       string
	Status        string // open | paid | canceled
	Description   string
	PaymentMethod string
	CreatedAt     time.Time
}

// FormatBRL renders a decimal amount the way replies show money: "R$ " plus
// two fixed fraction digits, matching the original product's output.
func FormatBRL(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}
