package ledger

import (
	"fmt"

	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/shopspring/decimal"
)

// InsufficientFundsError reports a spend larger than the available balance.
type InsufficientFundsError struct {
	Current   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf(
		"insufficient funds: current balance is %s, requested %s",
		e.Current.StringFixed(MaxFractionDigits),
		e.Requested.StringFixed(MaxFractionDigits),
	)
}

// Is lets errors.Is match domain.ErrInsufficientFunds.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == domain.ErrInsufficientFunds
}

// CheckSufficient returns an InsufficientFundsError when balance < amount.
func CheckSufficient(balance, amount decimal.Decimal) error {
	if balance.LessThan(amount) {
		return &InsufficientFundsError{Current: balance, Requested: amount}
	}
	return nil
}
