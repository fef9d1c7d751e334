package streak

import "github.com/fardannozami/streak-bot/internal/domain"

// FreezeRejection explains why a freeze request was refused.
type FreezeRejection string

const (
	RejectQuotaExhausted   FreezeRejection = "quota_exhausted"
	RejectAlreadyProtected FreezeRejection = "already_protected"
)

// FreezeResult is the caller-visible outcome of ConsumeFreeze.
type FreezeResult struct {
	Granted   bool
	Reason    FreezeRejection
	Remaining int
}

// Quotas maps a tier to its monthly freeze allowance.
type Quotas map[domain.Tier]int

// For returns the quota of tier, falling back to the free tier.
func (q Quotas) For(tier domain.Tier) int {
	if n, ok := q[tier]; ok {
		return n
	}
	return q[domain.TierFree]
}

// ConsumeFreeze protects day using one freeze from the quota of day's month.
// The ledger is only mutated when the freeze is granted. Each month's quota
// is counted against the days already protected in that month, so a new
// month starts with the full quota.
func (Engine) ConsumeFreeze(ledger *domain.FreezeLedger, day domain.Day, quota int) FreezeResult {
	month := day.Month()
	remaining := max(quota-ledger.UsedIn(month), 0)

	if ledger.IsProtected(day) {
		return FreezeResult{Reason: RejectAlreadyProtected, Remaining: remaining}
	}
	if remaining == 0 {
		return FreezeResult{Reason: RejectQuotaExhausted}
	}

	ledger.Protect(day)
	ledger.Month = month
	ledger.Remaining = remaining - 1
	return FreezeResult{Granted: true, Remaining: ledger.Remaining}
}

// RemainingFreezes reports how many freezes are left for the month of today
// without touching the ledger.
func RemainingFreezes(ledger *domain.FreezeLedger, today domain.Day, quota int) int {
	return max(quota-ledger.UsedIn(today.Month()), 0)
}
