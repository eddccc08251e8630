package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"SwipeSentinel/internal/eligibility"
	"SwipeSentinel/internal/health"
	"SwipeSentinel/internal/ledger"
	"SwipeSentinel/internal/model"
	"SwipeSentinel/internal/notifier"
	"SwipeSentinel/internal/recorder"
	"SwipeSentinel/internal/remote"
	"SwipeSentinel/internal/roster"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// ErrNoUsernamesAvailable is the cycle-start fatal condition: the pool is
// empty while at least one account still needs a username. It aborts the
// current cycle only; the scheduler waits and tries again, since pools
// replenish asynchronously.
var ErrNoUsernamesAvailable = errors.New("no usernames available for unassigned accounts")

// Config holds the scheduler's externally supplied parameters.
type Config struct {
	Interval   time.Duration
	Window     eligibility.Window
	Thresholds eligibility.Thresholds
	Workers    int
}

// Scheduler runs repeated cycles over the account set: eligibility
// verdicts, concurrent dispatch, report aggregation, then a sleep until
// the next cycle. Cycles never overlap.
type Scheduler struct {
	Cron     *cron.Cron
	Roster   *roster.Roster
	Ledger   *ledger.Ledger
	Client   remote.Client
	Notifier notifier.Notifier
	Recorder recorder.Recorder
	Cfg      Config

	mu         sync.Mutex
	cycleCount int
	lastReport *model.CycleReport
}

// NewScheduler creates a new Scheduler.
func NewScheduler(rst *roster.Roster, led *ledger.Ledger, cli remote.Client, tn notifier.Notifier, rec recorder.Recorder, cfg Config) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Roster:   rst,
		Ledger:   led,
		Client:   cli,
		Notifier: tn,
		Recorder: rec,
		Cfg:      cfg,
	}
}

// RegisterAll registers the daily summary cron task.
func (s *Scheduler) RegisterAll(summaryCron string) error {
	if _, err := s.Cron.AddFunc(summaryCron, s.dailySummary); err != nil {
		return fmt.Errorf("register summary task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] cron tasks started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] cron tasks stopped")
}

// Run executes the cycle loop until ctx is cancelled. Each iteration is
// STARTING → DISPATCHING → WAITING; a fatal cycle condition is surfaced
// loudly but never terminates the process.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		start := time.Now().UTC()
		rep := s.RunCycle(ctx, start)

		// WAITING: compute and announce the next cycle start.
		next := time.Now().UTC().Add(s.Cfg.Interval)
		rep.NextStartAt = next
		log.Printf("[INFO] cycle %d done: processed=%d skipped=%d failed=%d", rep.Number, rep.Processed, rep.Skipped, rep.Failed)
		log.Printf("[INFO] next cycle at %s (%s)", next.Format("2006-01-02 15:04:05 MST"), next.Format(time.RFC3339))

		s.finishCycle(ctx, rep)

		select {
		case <-ctx.Done():
			log.Println("[INFO] scheduler stopping (context cancelled)")
			return ctx.Err()
		case <-time.After(time.Until(next)):
		}
	}
}

// RunCycle performs the STARTING and DISPATCHING phases of one cycle and
// returns the report. It never panics a worker failure upward: individual
// account errors are folded into outcomes.
func (s *Scheduler) RunCycle(ctx context.Context, now time.Time) *model.CycleReport {
	s.mu.Lock()
	s.cycleCount++
	number := s.cycleCount
	s.mu.Unlock()

	log.Printf("[INFO] ===== cycle %d starting =====", number)
	rep := &model.CycleReport{Number: number, StartedAt: now}

	// STARTING: pick up operator-added usernames, then enforce the
	// availability invariant before any dispatch.
	if _, err := s.Ledger.Reload(); err != nil {
		log.Printf("[WARN] username pool reload: %v", err)
	}
	if s.Ledger.AvailableCount() == 0 && s.Roster.UnassignedCount() > 0 {
		rep.FatalErr = ErrNoUsernamesAvailable.Error()
		log.Printf("[ERROR] cycle %d aborted: %v (%d accounts unassigned)", number, ErrNoUsernamesAvailable, s.Roster.UnassignedCount())
		return rep
	}

	// DISPATCHING: verdict per account, ready accounts to the worker pool.
	accounts := s.Roster.Accounts()
	var mu sync.Mutex
	outcomes := make([]model.AccountOutcome, 0, len(accounts))

	var g errgroup.Group
	g.SetLimit(s.Cfg.Workers)

	for _, acc := range accounts {
		verdict := eligibility.Evaluate(acc, s.Ledger.AvailableCount(), s.Cfg.Window, now, s.Cfg.Thresholds)

		// Fresh accounts have never reported an engagement count, so the
		// gate alone would starve them; give them a health refresh without
		// performing any action.
		bootstrap := !verdict.Ready && acc.Status == model.StatusUninitialized

		if !verdict.Ready && !bootstrap {
			// Workers are already appending concurrently.
			mu.Lock()
			outcomes = append(outcomes, model.AccountOutcome{
				AccountID: acc.ID,
				City:      acc.City,
				Status:    acc.Status,
				Verdict:   verdict,
			})
			mu.Unlock()
			continue
		}

		acc := acc
		g.Go(func() error {
			out := s.processAccount(ctx, acc, verdict, bootstrap)
			mu.Lock()
			outcomes = append(outcomes, out)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	rep.Outcomes = outcomes
	rep.Count()
	return rep
}

// processAccount is the worker body: proxy validation, health refresh,
// deferred username assignment, then the remote actions. Errors are
// returned as a failed outcome, never propagated.
func (s *Scheduler) processAccount(ctx context.Context, acc model.Account, verdict model.Verdict, bootstrap bool) model.AccountOutcome {
	out := model.AccountOutcome{
		AccountID: acc.ID,
		City:      acc.City,
		Status:    acc.Status,
		Verdict:   verdict,
		Processed: true,
	}

	if acc.Proxy != "" {
		if _, err := remote.ParseProxy(acc.Proxy); err != nil {
			out.Err = err.Error()
			log.Printf("[WARN] account %s (%s): %v", shortID(acc.ID), acc.City, err)
			return out
		}
	}

	sig, err := s.Client.FetchSignals(ctx, acc)
	if err != nil {
		// Remote signals unavailable: the account keeps its last-known
		// status for this cycle instead of being forced terminal.
		out.Err = err.Error()
		log.Printf("[WARN] account %s (%s): health refresh failed: %v", shortID(acc.ID), acc.City, err)
		return out
	}

	acc = health.RefreshStatus(acc, sig, time.Now().UTC(), s.Cfg.Thresholds.GoldExpiringDays)
	out.Status = acc.Status

	if acc.Status.Terminal() {
		s.Roster.Update(acc)
		out.Err = fmt.Sprintf("terminal status after refresh: %s", acc.Status)
		log.Printf("[WARN] account %s (%s) is %s", shortID(acc.ID), acc.City, acc.Status)
		return out
	}

	if bootstrap {
		s.Roster.Update(acc)
		out.Success = true
		log.Printf("[INFO] account %s (%s) bootstrapped: status=%s likes=%d", shortID(acc.ID), acc.City, acc.Status, acc.LikedMeCount)
		return out
	}

	if acc.AssignedUsername == "" {
		username, err := s.Ledger.AssignAndRetire(acc.ID)
		if err != nil {
			// The eligibility snapshot can go stale when concurrent workers
			// drain the pool within the same cycle.
			s.Roster.Update(acc)
			out.Err = err.Error()
			log.Printf("[WARN] account %s (%s): username assignment: %v", shortID(acc.ID), acc.City, err)
			return out
		}
		acc.AssignedUsername = username
		s.Roster.Update(acc)
		if err := s.Recorder.RecordAssignment(&recorder.AssignmentEvent{
			Username:  username,
			AccountID: acc.ID,
			City:      acc.City,
		}); err != nil {
			log.Printf("[ERROR] record assignment: %v", err)
		}
		log.Printf("[INFO] account %s (%s) assigned username %q", shortID(acc.ID), acc.City, username)

		// The username is already permanently retired; a failed push here
		// fails the outcome but is not retried with a fresh name.
		if err := s.Client.UpdateBio(ctx, acc, username); err != nil {
			out.Err = fmt.Sprintf("bio update: %v", err)
			return out
		}
	}

	matches, err := s.Client.SwipeLikedMe(ctx, acc)
	if err != nil {
		s.Roster.Update(acc)
		out.Err = fmt.Sprintf("swipe: %v", err)
		return out
	}

	s.Roster.Update(acc)
	out.Matches = matches
	out.Success = true
	log.Printf("[INFO] account %s (%s) finished with %d matches", shortID(acc.ID), acc.City, matches)
	return out
}

// finishCycle records, notifies, and remembers the report.
func (s *Scheduler) finishCycle(ctx context.Context, rep *model.CycleReport) {
	if err := s.Recorder.RecordCycle(&recorder.CycleEvent{
		Number:      rep.Number,
		StartedAt:   rep.StartedAt,
		NextStartAt: rep.NextStartAt,
		Processed:   rep.Processed,
		Skipped:     rep.Skipped,
		Failed:      rep.Failed,
		FatalErr:    rep.FatalErr,
	}); err != nil {
		log.Printf("[ERROR] record cycle: %v", err)
	}
	for _, o := range rep.Outcomes {
		if err := s.Recorder.RecordOutcome(&recorder.OutcomeEvent{
			CycleNumber: rep.Number,
			AccountID:   o.AccountID,
			City:        o.City,
			Status:      string(o.Status),
			Reason:      string(o.Verdict.Reason),
			SubReason:   string(o.Verdict.SubReason),
			Detail:      o.Verdict.Detail,
			Processed:   o.Processed,
			Success:     o.Success,
			Matches:     o.Matches,
			Err:         o.Err,
		}); err != nil {
			log.Printf("[ERROR] record outcome: %v", err)
		}
	}

	s.trySend(ctx, notifier.FormatCycleReport(rep))

	s.mu.Lock()
	s.lastReport = rep
	s.mu.Unlock()
}

// dailySummary sends the roster and pool overview to the operator.
func (s *Scheduler) dailySummary() {
	msg := notifier.FormatRosterSummary(s.Roster.CountByStatus()) +
		"\n" + notifier.FormatPoolStatus(s.Ledger.AvailableCount(), s.Ledger.RetiredCount())
	s.trySend(context.Background(), msg)
}

// HandleCommand processes an operator command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/status":
		return notifier.FormatRosterSummary(s.Roster.CountByStatus())
	case "/pool":
		return notifier.FormatPoolStatus(s.Ledger.AvailableCount(), s.Ledger.RetiredCount())
	case "/report":
		s.mu.Lock()
		rep := s.lastReport
		s.mu.Unlock()
		if rep == nil {
			return "No cycle completed yet."
		}
		return notifier.FormatCycleReport(rep)
	default:
		return "Commands:\n• /status — account overview\n• /pool — username pool\n• /report — last cycle report"
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
