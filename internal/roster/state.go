package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"SwipeSentinel/internal/model"
)

// stateFile is the persisted shape of the roster's mutable state.
type stateFile struct {
	Accounts  map[string]model.Account `json:"accounts"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// loadState reads the saved account state. A missing file yields an empty
// map so a fresh deployment starts clean.
func loadState(path string) (map[string]model.Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]model.Account{}, nil
		}
		return nil, fmt.Errorf("read roster state: %w", err)
	}
	var sf stateFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse roster state: %w", err)
	}
	if sf.Accounts == nil {
		sf.Accounts = map[string]model.Account{}
	}
	return sf.Accounts, nil
}

// save writes the state file. Caller holds r.mu.
func (r *Roster) save() error {
	sf := stateFile{
		Accounts:  make(map[string]model.Account, len(r.accounts)),
		UpdatedAt: time.Now(),
	}
	for id, acc := range r.accounts {
		sf.Accounts[id] = *acc
	}
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.statePath, data, 0644)
}
