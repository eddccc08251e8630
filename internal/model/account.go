package model

import "time"

// Status is the discrete health state of an account.
type Status string

const (
	StatusUninitialized Status = "UNINITIALIZED"
	StatusFree          Status = "FREE"
	StatusAssigned      Status = "ASSIGNED"
	StatusSwipingActive Status = "SWIPING_ACTIVE"
	StatusGoldActive    Status = "GOLD_ACTIVE"
	StatusGoldExpiring  Status = "GOLD_EXPIRING"
	StatusBanned        Status = "BANNED"
	StatusDead          Status = "DEAD"
)

// Terminal reports whether the status excludes the account from processing
// until a later refresh clears it.
func (s Status) Terminal() bool {
	return s == StatusBanned || s == StatusDead
}

// Account represents one automated account operated by the bot.
type Account struct {
	ID               string     `json:"id"` // opaque token reference
	City             string     `json:"city"`
	TimeZone         string     `json:"time_zone"`
	Proxy            string     `json:"proxy,omitempty"` // raw host:port:user:pass
	Status           Status     `json:"status"`
	AssignedUsername string     `json:"assigned_username,omitempty"` // empty = not yet assigned
	LikedMeCount     int        `json:"liked_me_count"`
	GoldExpiresAt    *time.Time `json:"gold_expires_at,omitempty"`
	LastCheckedAt    time.Time  `json:"last_checked_at"`
}

// RemoteSignals holds the remote-reported flags a health refresh maps
// onto a Status.
type RemoteSignals struct {
	Banned        bool
	Alive         bool
	GoldExpiresAt *time.Time
	LikedMeCount  int
}
