package domain

import "github.com/shopspring/decimal"

// SettlementEpsilon is the rounding tolerance under which a remaining balance
// counts as fully paid.
var SettlementEpsilon = decimal.New(2, -2) // 0.02

// Settlement describes how much of a record has been settled.
type Settlement struct {
	EffectivePaid decimal.Decimal
	Remaining     decimal.Decimal
	IsPaid        bool
	IsPartial     bool
}

// Reconcile derives the settlement status of a record from its stored amount,
// paid flag and optional partial payment. It is the single source of truth:
// every place that displays or aggregates settlement status goes through it.
//
// total is taken as magnitude. When the paid flag is set the whole total
// counts as paid regardless of paid_amount; otherwise paid_amount is clamped
// into [0, total]. A remaining balance within SettlementEpsilon counts as
// paid.
func Reconcile(total decimal.Decimal, paid bool, paidAmount *decimal.Decimal) Settlement {
	total = total.Abs()

	var effective decimal.Decimal
	if paid {
		effective = total
	} else if paidAmount != nil {
		effective = *paidAmount
		if effective.IsNegative() {
			effective = decimal.Zero
		}
		if effective.GreaterThan(total) {
			effective = total
		}
	}

	remaining := total.Sub(effective)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	isPaid := remaining.LessThanOrEqual(SettlementEpsilon)
	return Settlement{
		EffectivePaid: effective,
		Remaining:     remaining,
		IsPaid:        isPaid,
		IsPartial:     !isPaid && effective.IsPositive(),
	}
}
