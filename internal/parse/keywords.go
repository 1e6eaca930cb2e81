package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/mv4digital/chuvinha/internal/domain"
)

// serviceRules map normalized keyword patterns to service keys, checked in
// order. Anything unmatched falls back to servicos_variados.
var serviceRules = []struct {
	re  *regexp.Regexp
	key domain.ServiceKey
}{
	{regexp.MustCompile(`gestao|gestao de midias|midias|midia`), domain.ServiceGestaoMidias},
	{regexp.MustCompile(`melhores? do ano`), domain.ServiceMelhoresDoAno},
	{regexp.MustCompile(`premio\s+excelencia`), domain.ServicePremioExcelencia},
	{regexp.MustCompile(`carro\s+de\s+som`), domain.ServiceCarroDeSom},
	{regexp.MustCompile(`revista\s+factus`), domain.ServiceRevistaFactus},
	{regexp.MustCompile(`revista\s+saude|factus\s+saude`), domain.ServiceRevistaSaude},
}

// ServiceKey detects which service line the text talks about.
func ServiceKey(text string) domain.ServiceKey {
	t := Normalize(text)
	for _, rule := range serviceRules {
		if rule.re.MatchString(t) {
			return rule.key
		}
	}
	return domain.ServiceVariados
}

var (
	notPaidRe = regexp.MustCompile(`nao\s+pag|ainda\s+nao\s+pag|em\s+aberto|pendente`)
	paidRe    = regexp.MustCompile(`ja\s+pag|pago|quitad`)
)

// Paid detects whether the text says the amount was already paid. Explicit
// "not paid" wording wins over "paid" wording; ambiguity defaults to false.
func Paid(text string) bool {
	t := Normalize(text)
	if notPaidRe.MatchString(t) {
		return false
	}
	return paidRe.MatchString(t)
}

var recurrenceRules = []struct {
	re   *regexp.Regexp
	rule string
}{
	{regexp.MustCompile(`mensal|mensais`), "mensal"},
	{regexp.MustCompile(`semanal|semanais`), "semanal"},
	{regexp.MustCompile(`anual|anuais`), "anual"},
}

// RecurringRule detects a recurrence token in the text, or "" when absent.
func RecurringRule(text string) string {
	t := Normalize(text)
	for _, r := range recurrenceRules {
		if r.re.MatchString(t) {
			return r.rule
		}
	}
	return ""
}

var (
	creationVerbRe = regexp.MustCompile(`(?i)^\s*(cadastre|cadastrar)\b`)
	titleCutRe     = regexp.MustCompile(`(?i)\b(valor|r\$|mensal|mensais|semanal|semanais|anual|anuais|em\s+|para\s+|no\s+|na\s+|ainda\s+|ja\s+|já\s+|pago|pagou|nao\s+pagou|não\s+pagou)\b`)
	leadPunctRe    = regexp.MustCompile(`^[:\-]+\s*`)
)

// IsCreationCommand reports whether the message starts with a recognized
// creation verb.
func IsCreationCommand(text string) bool {
	return creationVerbRe.MatchString(text)
}

// Title extracts the record title from a creation command: the verb is
// stripped and the remainder truncated at the first money token or reserved
// keyword. An empty remainder is a failure, never a guess.
func Title(text string) (string, error) {
	if !creationVerbRe.MatchString(text) {
		return "", ErrNoTitle
	}
	rest := strings.TrimSpace(creationVerbRe.ReplaceAllString(strings.TrimSpace(text), ""))
	rest = strings.TrimSpace(leadPunctRe.ReplaceAllString(rest, ""))

	cut := len(rest)
	if loc := moneyRe.FindStringIndex(rest); loc != nil && loc[0] < cut {
		cut = loc[0]
	}
	if loc := titleCutRe.FindStringIndex(rest); loc != nil && loc[0] < cut {
		cut = loc[0]
	}

	title := strings.Trim(rest[:cut], " :,;-")
	if title == "" {
		return "", ErrNoTitle
	}
	return title, nil
}

// MonthRange is the half-open window [Start, End) of one calendar month,
// carried both as dates and as timestamps for the nullable-date union read.
type MonthRange struct {
	StartDate string // yyyy-mm-dd (first day of month)
	EndDate   string // yyyy-mm-dd (first day of next month)
	StartTS   time.Time
	EndTS     time.Time
}

// MonthWindow expands a yyyy-mm month key into its half-open interval.
func MonthWindow(monthKey string) (MonthRange, bool) {
	start, err := time.Parse("2006-01-02", monthKey+"-01")
	if err != nil {
		return MonthRange{}, false
	}
	end := start.AddDate(0, 1, 0)
	return MonthRange{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		StartTS:   start,
		EndTS:     end,
	}, true
}
