package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// ErrEmptyPool is returned by AssignAndRetire when no username is available.
var ErrEmptyPool = errors.New("username pool is empty")

// Ledger manages the pool of unique assignable usernames: a pending file
// (one username per line, operator-editable) and an append-only retired
// file. A username lives in exactly one of the two at any time; the move
// from pending to retired is a single atomic step under the ledger lock.
type Ledger struct {
	mu          sync.Mutex
	pending     []string // oldest first
	retired     map[string]bool
	pendingPath string
	retiredPath string
}

// Open loads the pending pool and the retired record from disk. A missing
// pending file yields an empty pool rather than an error, since operators
// replenish it asynchronously.
func Open(pendingPath, retiredPath string) (*Ledger, error) {
	l := &Ledger{
		pendingPath: pendingPath,
		retiredPath: retiredPath,
		retired:     make(map[string]bool),
	}

	retiredLines, err := readLines(retiredPath)
	if err != nil {
		return nil, fmt.Errorf("read retired record: %w", err)
	}
	for _, line := range retiredLines {
		// Retired lines are "username,account_id".
		name, _, _ := strings.Cut(line, ",")
		l.retired[name] = true
	}

	pendingLines, err := readLines(pendingPath)
	if err != nil {
		return nil, fmt.Errorf("read pending pool: %w", err)
	}
	seen := make(map[string]bool)
	for _, name := range pendingLines {
		if l.retired[name] || seen[name] {
			continue
		}
		seen[name] = true
		l.pending = append(l.pending, name)
	}

	log.Printf("[INFO] username ledger opened: %d pending, %d retired", len(l.pending), len(l.retired))
	return l, nil
}

// AvailableCount returns the number of assignable usernames. No side effects.
func (l *Ledger) AvailableCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// RetiredCount returns the number of permanently consumed usernames.
func (l *Ledger) RetiredCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.retired)
}

// AssignAndRetire atomically takes the oldest available username, records
// it as retired for accountID, and returns it. After this call the
// username can never be assigned again. Returns ErrEmptyPool when the
// pending pool is empty; callers must not retry within the same cycle.
func (l *Ledger) AssignAndRetire(accountID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.pending) == 0 {
		return "", ErrEmptyPool
	}

	name := l.pending[0]

	// Append to the retired record first: a crash between the two writes
	// must never make a consumed username assignable again.
	if err := appendRetired(l.retiredPath, name, accountID); err != nil {
		return "", fmt.Errorf("append retired record: %w", err)
	}

	l.pending = l.pending[1:]
	l.retired[name] = true

	if err := writeLines(l.pendingPath, l.pending); err != nil {
		// In-memory state is already consistent; the pending file will be
		// rewritten on the next successful assignment.
		log.Printf("[ERROR] rewrite pending pool file: %v", err)
	}

	return name, nil
}

// Reload merges newly added lines from the pending file into the pool,
// preserving arrival order. Retired and already-pending usernames are
// skipped, so an operator re-adding a consumed name has no effect.
// Returns the number of usernames added.
func (l *Ledger) Reload() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lines, err := readLines(l.pendingPath)
	if err != nil {
		return 0, fmt.Errorf("reload pending pool: %w", err)
	}

	known := make(map[string]bool, len(l.pending))
	for _, name := range l.pending {
		known[name] = true
	}

	added := 0
	for _, name := range lines {
		if l.retired[name] || known[name] {
			continue
		}
		known[name] = true
		l.pending = append(l.pending, name)
		added++
	}
	if added > 0 {
		log.Printf("[INFO] username pool reloaded: +%d (now %d pending)", added, len(l.pending))
	}
	return added, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func writeLines(path string, lines []string) error {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

// appendRetired writes one retired entry synchronously, never batched.
func appendRetired(path, name, accountID string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f, "%s,%s\n", name, accountID); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
