package model

// Reason classifies an eligibility verdict.
type Reason string

const (
	ReasonReady       Reason = "READY"
	ReasonNoUsername  Reason = "NOT_READY_NO_USERNAME"
	ReasonNoLikes     Reason = "NOT_READY_NO_LIKES"
	ReasonOutOfWindow Reason = "NOT_READY_OUT_OF_WINDOW"
	ReasonStatus      Reason = "NOT_READY_STATUS"
)

// SubReason refines ReasonStatus.
type SubReason string

const (
	SubReasonBanned       SubReason = "BANNED"
	SubReasonDead         SubReason = "DEAD"
	SubReasonGoldExpiring SubReason = "GOLD_EXPIRING_BELOW_THRESHOLD"
)

// Verdict is the Eligibility Gate's readiness decision for one account in
// one cycle. Computed fresh each cycle, never persisted.
type Verdict struct {
	Ready     bool
	Reason    Reason
	SubReason SubReason
	Detail    string
}

// Ready returns a READY verdict.
func ReadyVerdict() Verdict {
	return Verdict{Ready: true, Reason: ReasonReady}
}

// NotReady returns a failing verdict with the given reason.
func NotReady(reason Reason, detail string) Verdict {
	return Verdict{Reason: reason, Detail: detail}
}

// NotReadyStatus returns a NOT_READY_STATUS verdict with a sub-reason.
func NotReadyStatus(sub SubReason, detail string) Verdict {
	return Verdict{Reason: ReasonStatus, SubReason: sub, Detail: detail}
}
