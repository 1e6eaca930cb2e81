package assistant

import (
	"regexp"
	"time"

	"github.com/mv4digital/chuvinha/internal/domain"
	"github.com/mv4digital/chuvinha/internal/parse"
)

// intentKind is the outcome of routing. Exactly one handler runs per
// message.
type intentKind int

const (
	intentCreation intentKind = iota
	intentDatedQuery
	intentMonthlyQuery
	intentFallback
)

func (k intentKind) String() string {
	switch k {
	case intentCreation:
		return "creation"
	case intentDatedQuery:
		return "dated_query"
	case intentMonthlyQuery:
		return "monthly_aggregate"
	default:
		return "fallback"
	}
}

// routed carries the classification plus everything the parsers extracted
// along the way, so handlers never re-parse the message.
type routed struct {
	kind intentKind

	dateISO  string
	monthKey string

	wantsReceipts    bool
	wantsExpenses    bool
	wantsRevenue     bool
	wantsOutstanding bool

	// service is the scope for monthly aggregates: the tab context wins,
	// otherwise keyword detection on the message itself.
	service        domain.ServiceKey
	contextService domain.ServiceKey
}

var (
	receiptsRe    = regexp.MustCompile(`\b(recebimento|recebimentos)\b`)
	expensesRe    = regexp.MustCompile(`\b(despesa|despesas)\b`)
	revenueRe     = regexp.MustCompile(`\b(receita|receitas)\b`)
	outstandingRe = regexp.MustCompile(`\b(falta\s+pagar|quem\s+falta\s+pagar|em\s+aberto|pendente|pendencias)\b`)
	monthlyRe     = regexp.MustCompile(`\b(mes|mensal|no\s+mes|neste\s+mes|nesse\s+mes)\b`)
	monthCtxRe    = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// routeRule is one (predicate, handler) pair of the ordered cascade. The
// predicate may fill fields of routed for its handler.
type routeRule struct {
	name  string
	match func(r *routed, msg, norm string, rctx ChatContext, now time.Time) bool
	kind  intentKind
}

// routeRules is evaluated in order; the first match wins. Order is part of
// the contract: creation beats dated queries beats monthly aggregates.
var routeRules = []routeRule{
	{
		name: "creation-command",
		kind: intentCreation,
		match: func(r *routed, msg, norm string, rctx ChatContext, now time.Time) bool {
			return parse.IsCreationCommand(msg)
		},
	},
	{
		name: "dated-query",
		kind: intentDatedQuery,
		match: func(r *routed, msg, norm string, rctx ChatContext, now time.Time) bool {
			date, err := parse.Date(msg, now)
			if err != nil {
				return false
			}
			if !r.wantsReceipts && !r.wantsExpenses && !r.wantsRevenue {
				return false
			}
			r.dateISO = date
			return true
		},
	},
	{
		name: "monthly-aggregate",
		kind: intentMonthlyQuery,
		match: func(r *routed, msg, norm string, rctx ChatContext, now time.Time) bool {
			monthKey := ""
			if monthCtxRe.MatchString(rctx.Month) {
				monthKey = rctx.Month
			} else if mk, ok := parse.MonthKey(msg); ok {
				monthKey = mk
			}
			if monthKey == "" {
				return false
			}

			anyKeyword := r.wantsOutstanding || r.wantsExpenses || r.wantsRevenue || r.wantsReceipts
			asksMonthly := monthlyRe.MatchString(norm) || anyKeyword
			if !asksMonthly || !anyKeyword {
				return false
			}

			r.monthKey = monthKey
			r.service = r.contextService
			if r.service == "" {
				r.service = parse.ServiceKey(msg)
			}
			return true
		},
	},
}

// route classifies one message. Keyword flags are extracted once up front so
// every rule (and the handlers) sees the same reading of the text.
func route(msg string, rctx ChatContext, now time.Time) routed {
	norm := parse.Normalize(msg)

	r := routed{
		kind:             intentFallback,
		wantsReceipts:    receiptsRe.MatchString(norm),
		wantsExpenses:    expensesRe.MatchString(norm),
		wantsRevenue:     revenueRe.MatchString(norm),
		wantsOutstanding: outstandingRe.MatchString(norm),
	}
	if s := domain.ServiceKey(rctx.Service); s != "" && s.Valid() {
		r.contextService = s
	}

	for _, rule := range routeRules {
		if rule.match(&r, msg, norm, rctx, now) {
			r.kind = rule.kind
			return r
		}
	}
	return r
}
