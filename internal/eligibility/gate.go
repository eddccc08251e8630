package eligibility

import (
	"fmt"
	"time"

	"SwipeSentinel/internal/health"
	"SwipeSentinel/internal/model"
	"SwipeSentinel/internal/timewindow"
)

// Window holds the configured local-time action window bounds.
type Window struct {
	Start string // "15:04"
	End   string
}

// Thresholds holds the injected policy parameters.
type Thresholds struct {
	GoldExpiringDays int
	EngagementMin    int
}

// Evaluate computes a readiness verdict for one account. Checks run in a
// fixed short-circuit order so reason codes stay deterministic and
// debuggable: terminal status, username availability, engagement count,
// time window, expiring-gold policy. The first failing check wins.
func Evaluate(acc model.Account, availableUsernames int, win Window, nowUTC time.Time, th Thresholds) model.Verdict {
	// 1. Terminal status excludes the account outright.
	switch acc.Status {
	case model.StatusBanned:
		return model.NotReadyStatus(model.SubReasonBanned, "account banned by remote service")
	case model.StatusDead:
		return model.NotReadyStatus(model.SubReasonDead, "account token dead")
	}

	// 2. Assignment is deferred, so an unassigned account is fine as long
	// as the pool can still cover it this cycle.
	if acc.AssignedUsername == "" && availableUsernames == 0 {
		return model.NotReady(model.ReasonNoUsername, "no username assigned and pool is empty")
	}

	// 3. Nothing to act on without inbound likes.
	if acc.LikedMeCount <= 0 {
		return model.NotReady(model.ReasonNoLikes, "no inbound likes")
	}

	// 4. Local-time action window for the account's registered zone.
	in, err := timewindow.InWindow(acc.TimeZone, win.Start, win.End, nowUTC)
	if err != nil {
		return model.NotReady(model.ReasonOutOfWindow, fmt.Sprintf("window check failed: %v", err))
	}
	if !in {
		return model.NotReady(model.ReasonOutOfWindow,
			fmt.Sprintf("outside %s-%s window in %s", win.Start, win.End, acc.TimeZone))
	}

	// 5. Expiring-gold policy: below-threshold engagement on an expiring
	// entitlement is not worth spending a cycle on.
	if health.ShouldSkipForExpiringGold(acc, nowUTC, th.GoldExpiringDays, th.EngagementMin) {
		return model.NotReadyStatus(model.SubReasonGoldExpiring,
			fmt.Sprintf("gold expiring with %d likes < threshold %d", acc.LikedMeCount, th.EngagementMin))
	}

	return model.ReadyVerdict()
}
