package roster

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"SwipeSentinel/internal/model"
)

// Roster holds the account set with concurrency safety. Accounts are
// imported from an operator-maintained token file and their mutable state
// (status, assigned username, counters) is persisted to a JSON state file
// so it survives restarts.
type Roster struct {
	mu        sync.Mutex
	accounts  map[string]*model.Account
	order     []string // token-file order
	statePath string
}

// Load imports accounts from the token file and merges saved state.
// Token lines look like
//
//	token:timezone:city[:proxyhost:proxyport:proxyuser:proxypass]
//
// The proxy tail is joined back across colons. Lines starting with # and
// blank lines are skipped; a malformed line is logged and skipped rather
// than failing the whole import.
func Load(accountsPath, statePath string) (*Roster, error) {
	saved, err := loadState(statePath)
	if err != nil {
		return nil, err
	}

	r := &Roster{
		accounts:  make(map[string]*model.Account),
		statePath: statePath,
	}

	f, err := os.Open(accountsPath)
	if err != nil {
		return nil, fmt.Errorf("open accounts file: %w", err)
	}
	defer f.Close()

	lineNum := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		acc, err := parseAccountLine(line)
		if err != nil {
			log.Printf("[WARN] accounts file line %d skipped: %v", lineNum, err)
			continue
		}
		if _, dup := r.accounts[acc.ID]; dup {
			log.Printf("[WARN] accounts file line %d: duplicate account, skipped", lineNum)
			continue
		}

		// Saved state wins over the file for mutable fields.
		if prev, ok := saved[acc.ID]; ok {
			acc.Status = prev.Status
			acc.AssignedUsername = prev.AssignedUsername
			acc.LikedMeCount = prev.LikedMeCount
			acc.GoldExpiresAt = prev.GoldExpiresAt
			acc.LastCheckedAt = prev.LastCheckedAt
		}

		r.accounts[acc.ID] = &acc
		r.order = append(r.order, acc.ID)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read accounts file: %w", err)
	}

	if err := r.save(); err != nil {
		return nil, err
	}

	log.Printf("[INFO] roster loaded: %d accounts", len(r.order))
	return r, nil
}

func parseAccountLine(line string) (model.Account, error) {
	parts := strings.Split(line, ":")
	if len(parts) < 3 {
		return model.Account{}, fmt.Errorf("expected token:timezone:city, got %d fields", len(parts))
	}

	acc := model.Account{
		ID:       strings.TrimSpace(parts[0]),
		TimeZone: strings.TrimSpace(parts[1]),
		City:     strings.TrimSpace(parts[2]),
		Status:   model.StatusUninitialized,
	}
	if acc.ID == "" || acc.TimeZone == "" {
		return model.Account{}, fmt.Errorf("empty token or timezone")
	}

	// The proxy occupies the remaining fields; rejoin since it contains
	// colons itself.
	if len(parts) > 3 {
		acc.Proxy = strings.TrimSpace(strings.Join(parts[3:], ":"))
	}
	return acc, nil
}

// Accounts returns copies of all accounts in token-file order.
func (r *Roster) Accounts() []model.Account {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Account, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.accounts[id])
	}
	return out
}

// Get returns a copy of one account.
func (r *Roster) Get(id string) (model.Account, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[id]
	if !ok {
		return model.Account{}, false
	}
	return *acc, true
}

// Update writes an account back and persists the state file. Each account
// is owned by exactly one worker per cycle, so updates never race on the
// same record.
func (r *Roster) Update(acc model.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[acc.ID]; !ok {
		r.order = append(r.order, acc.ID)
	}
	stored := acc
	r.accounts[acc.ID] = &stored

	if err := r.save(); err != nil {
		log.Printf("[ERROR] failed to save roster state: %v", err)
	}
}

// UnassignedCount returns how many non-terminal accounts still lack an
// assigned username. Used for the cycle-start availability invariant.
func (r *Roster) UnassignedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, acc := range r.accounts {
		if acc.AssignedUsername == "" && !acc.Status.Terminal() {
			n++
		}
	}
	return n
}

// CountByStatus returns the status distribution for operator summaries.
func (r *Roster) CountByStatus() map[model.Status]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[model.Status]int)
	for _, acc := range r.accounts {
		counts[acc.Status]++
	}
	return counts
}
