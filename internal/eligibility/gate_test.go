package eligibility

import (
	"testing"
	"time"

	"SwipeSentinel/internal/model"
)

var (
	// Noon UTC, inside the default 09:00-23:00 window for a UTC account.
	testNow       = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	testWindow    = Window{Start: "09:00", End: "23:00"}
	testThreshold = Thresholds{GoldExpiringDays: 7, EngagementMin: 5}
)

func readyAccount() model.Account {
	return model.Account{
		ID:               "acc-1",
		City:             "Lisbon",
		TimeZone:         "UTC",
		Status:           model.StatusGoldActive,
		AssignedUsername: "user001",
		LikedMeCount:     3,
	}
}

func TestEvaluate_Ready(t *testing.T) {
	v := Evaluate(readyAccount(), 10, testWindow, testNow, testThreshold)
	if !v.Ready || v.Reason != model.ReasonReady {
		t.Errorf("expected READY, got %+v", v)
	}
}

func TestEvaluate_StatusShortCircuitsFirst(t *testing.T) {
	// Banned account with a valid window, likes, and available usernames:
	// the status check must win.
	acc := readyAccount()
	acc.Status = model.StatusBanned
	v := Evaluate(acc, 10, testWindow, testNow, testThreshold)
	if v.Ready {
		t.Fatal("banned account must never be READY")
	}
	if v.Reason != model.ReasonStatus || v.SubReason != model.SubReasonBanned {
		t.Errorf("expected NOT_READY_STATUS/BANNED, got %s/%s", v.Reason, v.SubReason)
	}

	acc.Status = model.StatusDead
	v = Evaluate(acc, 10, testWindow, testNow, testThreshold)
	if v.Reason != model.ReasonStatus || v.SubReason != model.SubReasonDead {
		t.Errorf("expected NOT_READY_STATUS/DEAD, got %s/%s", v.Reason, v.SubReason)
	}
}

func TestEvaluate_UsernameCheck(t *testing.T) {
	acc := readyAccount()
	acc.AssignedUsername = ""

	// Unassigned but pool has availability: deferred assignment is fine.
	v := Evaluate(acc, 1, testWindow, testNow, testThreshold)
	if !v.Ready {
		t.Errorf("unassigned account with available pool should be READY, got %+v", v)
	}

	// Unassigned and empty pool: blocked.
	v = Evaluate(acc, 0, testWindow, testNow, testThreshold)
	if v.Reason != model.ReasonNoUsername {
		t.Errorf("expected NOT_READY_NO_USERNAME, got %s", v.Reason)
	}

	// Already assigned: empty pool does not matter.
	acc.AssignedUsername = "user001"
	v = Evaluate(acc, 0, testWindow, testNow, testThreshold)
	if !v.Ready {
		t.Errorf("assigned account should be READY with empty pool, got %+v", v)
	}
}

func TestEvaluate_NoLikes(t *testing.T) {
	acc := readyAccount()
	acc.LikedMeCount = 0
	v := Evaluate(acc, 10, testWindow, testNow, testThreshold)
	if v.Reason != model.ReasonNoLikes {
		t.Errorf("expected NOT_READY_NO_LIKES, got %s", v.Reason)
	}
}

func TestEvaluate_OutOfWindow(t *testing.T) {
	acc := readyAccount()
	v := Evaluate(acc, 10, Window{Start: "22:00", End: "02:00"}, testNow, testThreshold)
	if v.Reason != model.ReasonOutOfWindow {
		t.Errorf("expected NOT_READY_OUT_OF_WINDOW at noon for a 22:00-02:00 window, got %s", v.Reason)
	}

	// Unknown zone data counts as out-of-window, with the error in Detail.
	acc.TimeZone = "Mars/Olympus"
	v = Evaluate(acc, 10, testWindow, testNow, testThreshold)
	if v.Reason != model.ReasonOutOfWindow || v.Detail == "" {
		t.Errorf("expected out-of-window with detail for bad zone, got %+v", v)
	}
}

func TestEvaluate_ExpiringGoldPolicy(t *testing.T) {
	expiry := testNow.Add(3 * 24 * time.Hour)
	acc := readyAccount()
	acc.Status = model.StatusGoldExpiring
	acc.GoldExpiresAt = &expiry
	acc.LikedMeCount = 2

	v := Evaluate(acc, 10, testWindow, testNow, testThreshold)
	if v.Reason != model.ReasonStatus || v.SubReason != model.SubReasonGoldExpiring {
		t.Errorf("expected NOT_READY_STATUS/GOLD_EXPIRING_BELOW_THRESHOLD, got %s/%s", v.Reason, v.SubReason)
	}

	// Above the engagement threshold the same account stays eligible.
	acc.LikedMeCount = 10
	v = Evaluate(acc, 10, testWindow, testNow, testThreshold)
	if !v.Ready {
		t.Errorf("expiring account above threshold should be READY, got %+v", v)
	}
}

func TestEvaluate_OrderBeforeWindow(t *testing.T) {
	// An account failing both the likes check and the window check must
	// report the likes reason: step 3 runs before step 4.
	acc := readyAccount()
	acc.LikedMeCount = 0
	v := Evaluate(acc, 10, Window{Start: "22:00", End: "02:00"}, testNow, testThreshold)
	if v.Reason != model.ReasonNoLikes {
		t.Errorf("expected NOT_READY_NO_LIKES to win over window, got %s", v.Reason)
	}
}
