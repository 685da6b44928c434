package booking

import (
	"errors"
	"time"

	"staybook/internal/domain/shared/money"
)

var (
	ErrMissingPolicy  = errors.New("booking: no cancellation policy configured")
	ErrRefundFraction = errors.New("booking: refund fractions must be in [0,1]")
)

// CancellationPolicy holds refund fractions keyed by how close to the stay
// start the cancellation lands. Exactly one tier applies, selected by the
// shortest bucket the lead time falls into.
type CancellationPolicy struct {
	LastDayBps   int64
	LastWeekBps  int64
	LastMonthBps int64
	DefaultBps   int64
}

func (p CancellationPolicy) Validate() error {
	for _, bps := range []int64{p.LastDayBps, p.LastWeekBps, p.LastMonthBps, p.DefaultBps} {
		if bps < 0 || bps > money.BpsScale {
			return ErrRefundFraction
		}
	}
	return nil
}

// Monotonic reports whether tiers never shrink with more lead time. The
// expected shape is lastDay <= lastWeek <= lastMonth <= default; a policy
// violating it is accepted but callers should surface it as a config smell.
func (p CancellationPolicy) Monotonic() bool {
	return p.LastDayBps <= p.LastWeekBps &&
		p.LastWeekBps <= p.LastMonthBps &&
		p.LastMonthBps <= p.DefaultBps
}

// TierBpsFor selects the refund fraction for a cancellation at the given
// instant. Cancelling after the stay has started counts as the strictest
// tier, not an error.
func (p CancellationPolicy) TierBpsFor(start, now time.Time) int64 {
	lead := start.Sub(now)
	switch {
	case lead < 24*time.Hour:
		return p.LastDayBps
	case lead < 7*24*time.Hour:
		return p.LastWeekBps
	case lead < 30*24*time.Hour:
		return p.LastMonthBps
	default:
		return p.DefaultBps
	}
}

// RefundFor computes the refundable amount for a paid total, rounded half to
// even on the minor unit. It also returns the applied fraction for auditing.
func (p CancellationPolicy) RefundFor(paid money.Money, start, now time.Time) (money.Money, int64, error) {
	if err := p.Validate(); err != nil {
		return money.Money{}, 0, err
	}
	bps := p.TierBpsFor(start, now)
	return paid.MulBps(bps), bps, nil
}
