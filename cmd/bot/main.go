package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"SwipeSentinel/internal/config"
	"SwipeSentinel/internal/eligibility"
	"SwipeSentinel/internal/ledger"
	"SwipeSentinel/internal/notifier"
	"SwipeSentinel/internal/recorder"
	"SwipeSentinel/internal/remote"
	"SwipeSentinel/internal/roster"
	"SwipeSentinel/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] SwipeSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init username ledger
	led, err := ledger.Open(cfg.Pool.UsernamesFile, cfg.Pool.RetiredFile)
	if err != nil {
		log.Fatalf("[FATAL] open username pool: %v", err)
	}
	log.Printf("[INFO] username pool: %d available, %d retired", led.AvailableCount(), led.RetiredCount())

	// Init account roster
	rst, err := roster.Load(cfg.Accounts.TokensFile, cfg.Accounts.StateFile)
	if err != nil {
		log.Fatalf("[FATAL] load accounts: %v", err)
	}
	log.Printf("[INFO] roster: %d accounts", len(rst.Accounts()))

	// Init remote client
	cli := remote.NewHTTPClient(cfg.Remote.BaseURL)
	log.Printf("[INFO] remote: %s", cli.Name())

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init scheduler
	sched := scheduler.NewScheduler(rst, led, cli, tn, rec, scheduler.Config{
		Interval: cfg.CycleInterval(),
		Window:   eligibility.Window{Start: cfg.Schedule.WindowStart, End: cfg.Schedule.WindowEnd},
		Thresholds: eligibility.Thresholds{
			GoldExpiringDays: cfg.Policy.GoldExpiringDays,
			EngagementMin:    cfg.Policy.EngagementThreshold,
		},
		Workers: cfg.Policy.Workers,
	})
	if err := sched.RegisterAll(cfg.Schedule.SummaryCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(ctx)
	})
	g.Go(func() error {
		tn.StartPolling(ctx, sched.HandleCommand)
		return nil
	})
	log.Println("[INFO] SwipeSentinel is running. Press Ctrl+C to stop.")

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Fatalf("[FATAL] %v", err)
	}
	log.Println("[INFO] SwipeSentinel stopped")
}
