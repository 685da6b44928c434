package policies

import (
	"context"

	"staybook/internal/domain/payment"
	"staybook/internal/domain/shared/money"
)

// BalancePort reads and debits token/credit balances. Reads feed the
// allocator; debits must happen inside the same unit of work that persists
// the booking, or the sufficiency check is racy.
type BalancePort interface {
	Balances(ctx context.Context, accountID string) (payment.Balances, error)
	Debit(ctx context.Context, accountID string, amount money.Money) error
}
