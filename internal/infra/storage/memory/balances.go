package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"staybook/internal/app/policies"
	"staybook/internal/domain/payment"
	"staybook/internal/domain/shared/money"
)

var ErrUnsupportedInstrument = errors.New("memory: only token and credit balances are held")

// BalanceStore keeps token and credit balances per account.
type BalanceStore struct {
	mu       sync.RWMutex
	accounts map[string]payment.Balances
}

func NewBalanceStore() *BalanceStore {
	return &BalanceStore{accounts: make(map[string]payment.Balances)}
}

// SetBalances seeds an account, replacing whatever was there.
func (s *BalanceStore) SetBalances(accountID string, b payment.Balances) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[accountID] = b
}

// Balances returns the account's funds; unknown accounts hold zero of both.
func (s *BalanceStore) Balances(ctx context.Context, accountID string) (payment.Balances, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.accounts[accountID]
	if !ok {
		return payment.Balances{
			TokenBalance:  money.Zero(money.Token),
			CreditBalance: money.Zero(money.Credit),
		}, nil
	}
	return b, nil
}

// Debit removes funds in the amount's currency. Overdrafts fail; the
// allocator should have sized the amount against a prior read.
func (s *BalanceStore) Debit(ctx context.Context, accountID string, amount money.Money) error {
	if amount.IsZero() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.accounts[accountID]
	if !ok {
		b = payment.Balances{
			TokenBalance:  money.Zero(money.Token),
			CreditBalance: money.Zero(money.Credit),
		}
	}
	switch amount.Currency {
	case money.Token:
		next, err := b.TokenBalance.Sub(amount)
		if err != nil {
			return err
		}
		if next.IsNegative() {
			return fmt.Errorf("memory: token balance overdraft for account %s", accountID)
		}
		b.TokenBalance = next
	case money.Credit:
		next, err := b.CreditBalance.Sub(amount)
		if err != nil {
			return err
		}
		if next.IsNegative() {
			return fmt.Errorf("memory: credit balance overdraft for account %s", accountID)
		}
		b.CreditBalance = next
	default:
		return ErrUnsupportedInstrument
	}
	s.accounts[accountID] = b
	return nil
}

var _ policies.BalancePort = (*BalanceStore)(nil)
