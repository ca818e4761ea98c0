package ledger

import (
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vgroup-backoffice/internal/database/models"
)

// RoundingTolerance is the largest residue that still counts as settled,
// and the largest over-payment accepted (and absorbed) on the final payment.
var RoundingTolerance = decimal.New(1, -2)

// Outcome is the loan state after a payment is applied.
type Outcome struct {
	Balance decimal.Decimal
	Status  models.LoanStatus
	PaidOff bool
}

// AcceptsPayments reports whether a loan in this status may be paid down.
func AcceptsPayments(s models.LoanStatus) bool {
	return s == models.LoanActive || s == models.LoanOverdue
}

func validateAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return status.Errorf(codes.InvalidArgument, "%s must be greater than zero", field)
	}
	if !amount.Equal(amount.Round(2)) {
		return status.Errorf(codes.InvalidArgument, "%s must have at most two decimal places", field)
	}
	return nil
}

// OpeningBalance validates a principal and returns the initial balance.
func OpeningBalance(principal decimal.Decimal) (decimal.Decimal, error) {
	if err := validateAmount("principal", principal); err != nil {
		return decimal.Zero, err
	}
	return principal, nil
}

// ApplyPayment decrements balance by amount. Payments on settled or
// cancelled loans are rejected, as is any over-payment beyond the rounding
// tolerance. A residue within the tolerance settles the loan at zero.
func ApplyPayment(balance decimal.Decimal, current models.LoanStatus, amount decimal.Decimal) (Outcome, error) {
	if err := validateAmount("amount", amount); err != nil {
		return Outcome{}, err
	}
	if !AcceptsPayments(current) {
		return Outcome{}, status.Errorf(codes.FailedPrecondition, "loan is %s and no longer accepts payments", current)
	}

	remaining := balance.Sub(amount)
	if remaining.LessThan(RoundingTolerance.Neg()) {
		return Outcome{}, status.Errorf(codes.FailedPrecondition,
			"payment of %s exceeds outstanding balance %s", amount.StringFixed(2), balance.StringFixed(2))
	}

	if remaining.LessThanOrEqual(RoundingTolerance) {
		return Outcome{Balance: decimal.Zero, Status: models.LoanPaidOff, PaidOff: true}, nil
	}
	return Outcome{Balance: remaining, Status: current}, nil
}

// TotalPaid sums payment amounts.
func TotalPaid(payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// ExpectedBalance is principal minus everything paid, floored at zero.
func ExpectedBalance(principal decimal.Decimal, payments []models.Payment) decimal.Decimal {
	remaining := principal.Sub(TotalPaid(payments))
	if remaining.LessThanOrEqual(RoundingTolerance) {
		return decimal.Zero
	}
	return remaining
}

// Progress is the repaid fraction of principal in [0, 1].
func Progress(principal decimal.Decimal, payments []models.Payment) decimal.Decimal {
	if !principal.IsPositive() {
		return decimal.Zero
	}
	ratio := TotalPaid(payments).Div(principal)
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return ratio.Round(4)
}
