package health

import (
	"time"

	"SwipeSentinel/internal/model"
)

// RefreshStatus maps remote-reported signals onto a new account record.
// Precedence when several signals are present: BANNED > DEAD >
// GOLD_EXPIRING > GOLD_ACTIVE > SWIPING_ACTIVE > FREE. The mapping is
// pure and deterministic: two refreshes with identical signals yield the
// identical status. A terminal status is cleared only by a later refresh
// whose signals no longer report it.
func RefreshStatus(acc model.Account, sig model.RemoteSignals, nowUTC time.Time, expiringDays int) model.Account {
	acc.LikedMeCount = sig.LikedMeCount
	acc.GoldExpiresAt = sig.GoldExpiresAt
	acc.LastCheckedAt = nowUTC

	switch {
	case sig.Banned:
		acc.Status = model.StatusBanned
	case !sig.Alive:
		acc.Status = model.StatusDead
	case sig.GoldExpiresAt != nil && IsGoldExpiringSoon(acc, nowUTC, expiringDays):
		acc.Status = model.StatusGoldExpiring
	case sig.GoldExpiresAt != nil:
		acc.Status = model.StatusGoldActive
	case sig.LikedMeCount > 0:
		acc.Status = model.StatusSwipingActive
	default:
		acc.Status = model.StatusFree
	}
	return acc
}

// IsGoldExpiringSoon reports whether the account's premium entitlement
// expires within thresholdDays of nowUTC. False when no expiry is set.
func IsGoldExpiringSoon(acc model.Account, nowUTC time.Time, thresholdDays int) bool {
	if acc.GoldExpiresAt == nil {
		return false
	}
	return acc.GoldExpiresAt.Sub(nowUTC) <= time.Duration(thresholdDays)*24*time.Hour
}

// ShouldSkipForExpiringGold is the policy decision distinct from status
// classification: skip the account when its entitlement is expiring soon
// and its engagement count is still below the configured threshold. An
// expiring account at or above the threshold remains eligible.
func ShouldSkipForExpiringGold(acc model.Account, nowUTC time.Time, thresholdDays, engagementMin int) bool {
	return IsGoldExpiringSoon(acc, nowUTC, thresholdDays) && acc.LikedMeCount < engagementMin
}
