package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func newTestLedger(t *testing.T, usernames []string) (*Ledger, string, string) {
	t.Helper()
	dir := t.TempDir()
	pending := filepath.Join(dir, "usernames.txt")
	retired := filepath.Join(dir, "usernames_done.txt")
	if err := os.WriteFile(pending, []byte(strings.Join(usernames, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	l, err := Open(pending, retired)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	return l, pending, retired
}

func TestOpen_SkipsCommentsAndBlanks(t *testing.T) {
	dir := t.TempDir()
	pending := filepath.Join(dir, "usernames.txt")
	content := "# header\nalpha\n\n  bravo  \n#charlie\ndelta\n"
	if err := os.WriteFile(pending, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	l, err := Open(pending, filepath.Join(dir, "done.txt"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := l.AvailableCount(); got != 3 {
		t.Errorf("expected 3 pending, got %d", got)
	}
}

func TestAssignAndRetire_OldestFirst(t *testing.T) {
	l, _, _ := newTestLedger(t, []string{"first", "second", "third"})

	for _, want := range []string{"first", "second", "third"} {
		got, err := l.AssignAndRetire("acc-1")
		if err != nil {
			t.Fatalf("assign: %v", err)
		}
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
	if _, err := l.AssignAndRetire("acc-1"); !errors.Is(err, ErrEmptyPool) {
		t.Errorf("expected ErrEmptyPool, got %v", err)
	}
}

func TestAssignAndRetire_Atomicity(t *testing.T) {
	l, pendingPath, retiredPath := newTestLedger(t, []string{"alpha", "bravo"})

	name, err := l.AssignAndRetire("acc-7")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	retired, err := os.ReadFile(retiredPath)
	if err != nil {
		t.Fatalf("read retired: %v", err)
	}
	if !strings.Contains(string(retired), name+",acc-7") {
		t.Errorf("retired record missing %q: %s", name, retired)
	}

	pending, err := os.ReadFile(pendingPath)
	if err != nil {
		t.Fatalf("read pending: %v", err)
	}
	if strings.Contains(string(pending), name) {
		t.Errorf("pending file still contains consumed username %q", name)
	}
	if l.AvailableCount() != 1 {
		t.Errorf("expected 1 pending, got %d", l.AvailableCount())
	}
	if l.RetiredCount() != 1 {
		t.Errorf("expected 1 retired, got %d", l.RetiredCount())
	}
}

func TestAssignAndRetire_ConcurrentUniqueness(t *testing.T) {
	const pool = 200
	names := make([]string, pool)
	for i := range names {
		names[i] = fmt.Sprintf("user%03d", i)
	}
	l, _, retiredPath := newTestLedger(t, names)

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan string, pool)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				name, err := l.AssignAndRetire(fmt.Sprintf("acc-%d", id))
				if errors.Is(err, ErrEmptyPool) {
					return
				}
				if err != nil {
					t.Errorf("assign: %v", err)
					return
				}
				results <- name
			}
		}(w)
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for name := range results {
		if seen[name] {
			t.Fatalf("username %q assigned twice", name)
		}
		seen[name] = true
	}
	if len(seen) != pool {
		t.Errorf("expected %d unique assignments, got %d", pool, len(seen))
	}

	// Union of retired record and pending pool equals the original set.
	if l.AvailableCount() != 0 {
		t.Errorf("expected empty pool, got %d", l.AvailableCount())
	}
	retired, err := os.ReadFile(retiredPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if !strings.Contains(string(retired), name+",") {
			t.Errorf("username %q lost: not in retired record", name)
		}
	}
}

func TestReload_MergesNewSkipsRetired(t *testing.T) {
	l, pendingPath, _ := newTestLedger(t, []string{"alpha", "bravo"})

	consumed, err := l.AssignAndRetire("acc-1")
	if err != nil {
		t.Fatal(err)
	}

	// Operator rewrites the file: re-adds the consumed name plus a new one.
	content := fmt.Sprintf("%s\nbravo\ncharlie\n", consumed)
	if err := os.WriteFile(pendingPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	added, err := l.Reload()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if added != 1 {
		t.Errorf("expected 1 added, got %d", added)
	}
	if l.AvailableCount() != 2 {
		t.Errorf("expected 2 pending (bravo, charlie), got %d", l.AvailableCount())
	}

	// The consumed name must never come back.
	for {
		name, err := l.AssignAndRetire("acc-2")
		if errors.Is(err, ErrEmptyPool) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if name == consumed {
			t.Fatalf("retired username %q was reassigned", consumed)
		}
	}
}

func TestOpen_ExcludesAlreadyRetired(t *testing.T) {
	dir := t.TempDir()
	pending := filepath.Join(dir, "usernames.txt")
	retired := filepath.Join(dir, "usernames_done.txt")
	if err := os.WriteFile(pending, []byte("alpha\nbravo\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(retired, []byte("alpha,acc-9\n"), 0644); err != nil {
		t.Fatal(err)
	}

	l, err := Open(pending, retired)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if l.AvailableCount() != 1 {
		t.Errorf("expected 1 pending after excluding retired, got %d", l.AvailableCount())
	}
	name, err := l.AssignAndRetire("acc-1")
	if err != nil {
		t.Fatal(err)
	}
	if name != "bravo" {
		t.Errorf("expected bravo, got %q", name)
	}
}
