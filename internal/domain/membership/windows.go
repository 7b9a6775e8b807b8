package membership

import (
	"time"

	vo "github.com/siteforge/siteforge/internal/domain/membership/valueobjects"
	"github.com/siteforge/siteforge/internal/shared/biztime"
)

// RenewalWindow is the inclusive expiration range in which a manually renewed
// membership gets its renewal payment: from the start of yesterday up to
// daysBefore days from now.
func RenewalWindow(now time.Time, daysBefore int) (from, to time.Time) {
	return biztime.StartOfYesterdayUTC(now), now.UTC().AddDate(0, 0, daysBefore)
}

// TrialCutoff is the latest trial end that is considered over.
func TrialCutoff(now time.Time, offset time.Duration) time.Time {
	return now.UTC().Add(-offset)
}

// GraceCutoff is the latest expiration that is past the grace period.
func GraceCutoff(now time.Time, graceDays int) time.Time {
	return now.UTC().AddDate(0, 0, -graceDays)
}

// DueForRenewalPayment mirrors the renewal sweep filter.
func (m *Membership) DueForRenewalPayment(now time.Time, daysBefore int) bool {
	if m.s.AutoRenew || m.s.Status != vo.StatusActive || m.s.DateExpiration == nil {
		return false
	}
	from, to := RenewalWindow(now, daysBefore)
	exp := *m.s.DateExpiration
	return !exp.Before(from) && !exp.After(to)
}

// TrialOver mirrors the trial sweep filter.
func (m *Membership) TrialOver(now time.Time, offset time.Duration) bool {
	if m.s.AutoRenew || m.s.Status != vo.StatusTrialing || m.s.DateTrialEnd == nil {
		return false
	}
	return !m.s.DateTrialEnd.After(TrialCutoff(now, offset))
}

// PastGracePeriod mirrors the expiration sweep filter.
func (m *Membership) PastGracePeriod(now time.Time, graceDays int) bool {
	if m.s.AutoRenew || m.s.DateExpiration == nil {
		return false
	}
	if m.s.Status != vo.StatusActive && m.s.Status != vo.StatusOnHold {
		return false
	}
	return !m.s.DateExpiration.After(GraceCutoff(now, graceDays))
}
