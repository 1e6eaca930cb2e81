package assistant

import "github.com/mv4digital/chuvinha/internal/domain"

// DataClass is the kind of protected data a handler wants to touch.
type DataClass int

const (
	// ClassServiceEntries covers per-service revenue/expense entries.
	ClassServiceEntries DataClass = iota
	// ClassExpenseLedger covers the ledger-style expenses table.
	ClassExpenseLedger
	// ClassRecordCreation covers the single insert path (always a
	// service-entry revenue record).
	ClassRecordCreation
)

// Verdict is the gate's decision for one request.
type Verdict int

const (
	// VerdictAllow proceeds with the caller-scoped credential.
	VerdictAllow Verdict = iota
	// VerdictEscalate proceeds with the privileged credential, scoped to
	// this one request.
	VerdictEscalate
	// VerdictRefuse answers in-band with the fixed refusal; no store
	// access is attempted.
	VerdictRefuse
)

// refusalReply is the fixed in-band refusal for employees asking about the
// expense ledger. It is part of the assistant's contract and asserted in
// tests; do not reword casually.
const refusalReply = "Miau! As despesas ficam guardadinhas só pro admin. " +
	"Você está como funcionário — entra como admin e eu te conto tudinho."

// missingEscalationReply is returned when the gate grants escalation but the
// privileged credential is not configured.
const missingEscalationReply = "Miau… eu posso ter permissão total, mas falta configurar a " +
	"`SUPABASE_SERVICE_ROLE_KEY` na função. Aí minhas garrinhas viram modo admin de verdade."

// Decide is the single capability check every data-touching handler
// consults. Role-based branching lives here and nowhere else.
func Decide(role domain.Role, class DataClass) Verdict {
	switch class {
	case ClassExpenseLedger:
		if role == domain.RoleAdmin {
			return VerdictEscalate
		}
		return VerdictRefuse
	default:
		// Service-entry queries and record creation are open to both
		// roles under the caller's own credential.
		return VerdictAllow
	}
}
