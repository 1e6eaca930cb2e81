// Package parse contains the deterministic text parsers the assistant runs
// before anything touches the store or the model: pt-BR dates, BRL money,
// month keys, service classification, payment state, recurrence and command
// titles. Everything here is a pure function of its input.
package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoDate means the text carries no parseable dd/mm date.
	ErrNoDate = errors.New("no date in text")
	// ErrNoMoney means the text carries no parseable BRL amount.
	ErrNoMoney = errors.New("no amount in text")
	// ErrNoTitle means a creation command carries no usable title.
	ErrNoTitle = errors.New("no title in command")
)

var (
	dateRe     = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
	monthKeyRe = regexp.MustCompile(`\b(20\d{2})-(0[1-9]|1[0-2])\b`)
	moneyRe    = regexp.MustCompile(`(?i)(?:r\$\s*)?(\d{1,3}(?:\.\d{3})+|\d+)(?:,(\d{1,2}))?`)
)

// Date extracts the first dd/mm or dd/mm/yyyy date in the text and returns it
// as yyyy-mm-dd. A two-digit year is taken as 2000+yy; a missing year
// defaults to the year of now. Month outside [1,12] or day outside [1,31] is
// a failure.
func Date(text string, now time.Time) (string, error) {
	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return "", ErrNoDate
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year := now.Year()
	if m[3] != "" {
		y, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			y += 2000
		}
		year = y
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", fmt.Errorf("%w: out of range day/month in %q", ErrNoDate, m[0])
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}

// MonthKey extracts a yyyy-mm month key (year 20xx) from the text.
func MonthKey(text string) (string, bool) {
	m := monthKeyRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", false
	}
	return m[1] + "-" + m[2], true
}

// Money extracts the first BRL amount in the text: optional R$ prefix,
// thousands separated by dots, decimals by comma with 1-2 fraction digits.
func Money(text string) (decimal.Decimal, error) {
	m := moneyRe.FindStringSubmatch(strings.Join(strings.Fields(text), " "))
	if m == nil {
		return decimal.Zero, ErrNoMoney
	}
	intPart := strings.ReplaceAll(m[1], ".", "")
	decPart := m[2]
	if decPart == "" {
		decPart = "00"
	} else if len(decPart) == 1 {
		decPart += "0"
	}
	d, err := decimal.NewFromString(intPart + "." + decPart)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrNoMoney, err)
	}
	return d, nil
}

// FormatMoney renders a decimal in the pt-BR shape Money parses: dots for
// thousands, comma before two fraction digits. Money(FormatMoney(x)) == x
// for any two-decimal value.
func FormatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, decPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String() + "," + decPart
}

// Normalize lower-cases the text and strips diacritics so keyword matching
// does not depend on accents.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ' || r == '/' || r == '-':
			b.WriteRune(r)
		case unicode.Is(unicode.Mn, r):
			// combining mark, drop
		default:
			b.WriteRune(stripAccent(r))
		}
	}
	return strings.TrimSpace(b.String())
}

var accentFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a',
	'é': 'e', 'ê': 'e', 'è': 'e', 'ë': 'e',
	'í': 'i', 'î': 'i', 'ì': 'i', 'ï': 'i',
	'ó': 'o', 'ô': 'o', 'õ': 'o', 'ò': 'o', 'ö': 'o',
	'ú': 'u', 'û': 'u', 'ù': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n',
}

func stripAccent(r rune) rune {
	if f, ok := accentFold[r]; ok {
		return f
	}
	return r
}
