package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name       string
		total      string
		paid       bool
		paidAmount string // "" means nil
		wantRem    string
		wantPaid   bool
		wantPart   bool
	}{
		{"unpaid no partial", "500", false, "", "500", false, false},
		{"paid flag wins over partial", "500", true, "100", "0", true, false},
		{"partial payment", "500", false, "100", "400", false, true},
		{"partial clamped to total", "500", false, "900", "0", true, false},
		{"negative partial ignored", "500", false, "-50", "500", false, false},
		{"remaining within epsilon", "100", false, "99.99", "0.01", true, false},
		{"remaining beyond epsilon", "100", false, "99.97", "0.03", false, true},
		{"negative total uses magnitude", "-300", false, "100", "200", false, true},
		{"zero total", "0", false, "", "0", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pa *decimal.Decimal
			if tt.paidAmount != "" {
				d := dec(tt.paidAmount)
				pa = &d
			}

			s := Reconcile(dec(tt.total), tt.paid, pa)

			if !s.Remaining.Equal(dec(tt.wantRem)) {
				t.Errorf("Remaining = %s, want %s", s.Remaining, tt.wantRem)
			}
			if s.IsPaid != tt.wantPaid {
				t.Errorf("IsPaid = %v, want %v", s.IsPaid, tt.wantPaid)
			}
			if s.IsPartial != tt.wantPart {
				t.Errorf("IsPartial = %v, want %v", s.IsPartial, tt.wantPart)
			}
		})
	}
}

func TestReconcile_Invariant(t *testing.T) {
	// Effective paid plus remaining always reconstructs the magnitude.
	totals := []string{"0", "0.01", "99.99", "450", "-120"}
	partials := []string{"", "0", "50", "1000"}

	for _, ts := range totals {
		for _, ps := range partials {
			var pa *decimal.Decimal
			if ps != "" {
				d := dec(ps)
				pa = &d
			}
			total := dec(ts)
			s := Reconcile(total, false, pa)
			if !s.EffectivePaid.Add(s.Remaining).Equal(total.Abs()) {
				t.Errorf("Reconcile(%s, false, %s): %s + %s != %s",
					ts, ps, s.EffectivePaid, s.Remaining, total.Abs())
			}
		}
	}
}

func TestServiceEntryType(t *testing.T) {
	tests := []struct {
		name  string
		entry ServiceEntry
		want  EntryType
	}{
		{"metadata tag wins", ServiceEntry{Amount: dec("100"), Metadata: EntryMetadata{EntryType: "despesa"}}, EntryDespesa},
		{"negative amount is expense", ServiceEntry{Amount: dec("-100")}, EntryDespesa},
		{"positive amount is revenue", ServiceEntry{Amount: dec("100")}, EntryReceita},
		{"tag beats sign", ServiceEntry{Amount: dec("-100"), Metadata: EntryMetadata{EntryType: "receita"}}, EntryReceita},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Type(); got != tt.want {
				t.Errorf("Type() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFormatBRL(t *testing.T) {
	if got := FormatBRL(dec("570")); got != "R$ 570.00" {
		t.Errorf("FormatBRL = %q", got)
	}
	if got := FormatBRL(dec("-12.5")); got != "R$ -12.50" {
		t.Errorf("FormatBRL = %q", got)
	}
}
