// Package assistant implements the conversational financial assistant: the
// ordered intent router, the role-based access gate, the deterministic query
// executor, the record creation handler, and the two generative paths
// (fallback chat and spreadsheet normalization).
//
// Every request is handled independently and statelessly; the only
// suspension points are the role lookup, the store reads/writes and the
// provider call, and none of them are retried.
package assistant

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mv4digital/chuvinha/internal/auth"
	"github.com/mv4digital/chuvinha/internal/domain"
	"github.com/mv4digital/chuvinha/internal/llm"
	"github.com/mv4digital/chuvinha/internal/store"
)

// ChatContext is what the app already knows when the user asks something
// from a service tab: the selected service and month filter.
type ChatContext struct {
	Service string `json:"service,omitempty"`
	Month   string `json:"month,omitempty"`
}

// ChatRequest is one chat-mode turn.
type ChatRequest struct {
	Message string        `json:"message"`
	History []llm.Message `json:"history,omitempty"`
	Context ChatContext   `json:"context,omitempty"`
}

// Reply is the natural-language outcome of a chat turn. Detail carries the
// underlying error text on a degraded outcome, for operator diagnosis.
type Reply struct {
	Reply  string `json:"reply"`
	Detail string `json:"detail,omitempty"`
}

// Assistant wires the handlers to their collaborators.
type Assistant struct {
	stores store.Provider
	chat   llm.Client
	log    zerolog.Logger

	// now is swappable so date parsing and "today" are deterministic in
	// tests.
	now func() time.Time
}

// New creates an assistant.
func New(stores store.Provider, chat llm.Client, log zerolog.Logger) *Assistant {
	return &Assistant{
		stores: stores,
		chat:   chat,
		log:    log,
		now:    time.Now,
	}
}

// HandleChat classifies one inbound message and runs the matching handler.
// The caller's role is resolved once here and never cached across requests.
// Failures the user can act on come back in-band as replies; the error
// return is reserved for conditions the HTTP layer must map to a status.
func (a *Assistant) HandleChat(ctx context.Context, ident auth.Identity, req ChatRequest) Reply {
	caller := a.stores.ForCaller(ident.Bearer)

	role, err := caller.LookupRole(ctx, ident.UserID)
	if err != nil {
		// Ambiguity never grants privilege.
		role = domain.RoleEmployee
	}

	r := route(req.Message, req.Context, a.now())
	a.log.Debug().
		Str("intent", r.kind.String()).
		Str("role", string(role)).
		Msg("Routed chat message")

	switch r.kind {
	case intentCreation:
		if Decide(role, ClassRecordCreation) != VerdictAllow {
			return Reply{Reply: refusalReply}
		}
		return a.createEntry(ctx, caller, ident, req.Message, req.Context)
	case intentDatedQuery:
		return a.datedQuery(ctx, caller, role, r)
	case intentMonthlyQuery:
		return a.monthlyQuery(ctx, caller, role, r)
	default:
		return a.fallback(ctx, req)
	}
}
