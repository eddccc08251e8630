package roster

import (
	"os"
	"path/filepath"
	"testing"

	"SwipeSentinel/internal/model"
)

func writeAccounts(t *testing.T, lines string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	accounts := filepath.Join(dir, "accounts.txt")
	if err := os.WriteFile(accounts, []byte(lines), 0644); err != nil {
		t.Fatal(err)
	}
	return accounts, filepath.Join(dir, "roster_state.json")
}

func TestLoad_ParsesTokenLines(t *testing.T) {
	accounts, state := writeAccounts(t, `# token:timezone:city:proxy
tok-aaa:Europe/Lisbon:Lisbon:10.0.0.1:1080:user:pass
tok-bbb:America/Chicago:Chicago

badline
tok-ccc:Asia/Tokyo:Tokyo:proxyhost:9999:u:p
`)
	r, err := Load(accounts, state)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	accs := r.Accounts()
	if len(accs) != 3 {
		t.Fatalf("expected 3 accounts (bad line skipped), got %d", len(accs))
	}

	first := accs[0]
	if first.ID != "tok-aaa" || first.TimeZone != "Europe/Lisbon" || first.City != "Lisbon" {
		t.Errorf("unexpected first account: %+v", first)
	}
	// Proxy tail rejoined across its own colons.
	if first.Proxy != "10.0.0.1:1080:user:pass" {
		t.Errorf("expected rejoined proxy, got %q", first.Proxy)
	}
	if accs[1].Proxy != "" {
		t.Errorf("expected no proxy for tok-bbb, got %q", accs[1].Proxy)
	}
	if first.Status != model.StatusUninitialized {
		t.Errorf("fresh account should be UNINITIALIZED, got %s", first.Status)
	}
}

func TestUpdate_PersistsAcrossReload(t *testing.T) {
	accounts, state := writeAccounts(t, "tok-aaa:UTC:Lisbon\ntok-bbb:UTC:Porto\n")
	r, err := Load(accounts, state)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	acc, _ := r.Get("tok-aaa")
	acc.Status = model.StatusGoldActive
	acc.AssignedUsername = "user001"
	acc.LikedMeCount = 7
	r.Update(acc)

	// Fresh load over the same files: mutable state must survive.
	r2, err := Load(accounts, state)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, ok := r2.Get("tok-aaa")
	if !ok {
		t.Fatal("tok-aaa missing after reload")
	}
	if got.Status != model.StatusGoldActive || got.AssignedUsername != "user001" || got.LikedMeCount != 7 {
		t.Errorf("state not persisted: %+v", got)
	}

	other, _ := r2.Get("tok-bbb")
	if other.Status != model.StatusUninitialized {
		t.Errorf("untouched account should stay UNINITIALIZED, got %s", other.Status)
	}
}

func TestUnassignedCount_SkipsTerminal(t *testing.T) {
	accounts, state := writeAccounts(t, "tok-aaa:UTC:A\ntok-bbb:UTC:B\ntok-ccc:UTC:C\n")
	r, err := Load(accounts, state)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.UnassignedCount(); got != 3 {
		t.Fatalf("expected 3 unassigned, got %d", got)
	}

	a, _ := r.Get("tok-aaa")
	a.AssignedUsername = "user001"
	r.Update(a)

	b, _ := r.Get("tok-bbb")
	b.Status = model.StatusBanned
	r.Update(b)

	// tok-aaa assigned, tok-bbb terminal: only tok-ccc counts.
	if got := r.UnassignedCount(); got != 1 {
		t.Errorf("expected 1 unassigned, got %d", got)
	}
}
