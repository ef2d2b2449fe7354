package reconcile

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// SchedulerConfig holds the periodic trigger intervals.
type SchedulerConfig struct {
	// CheckInterval drives the short critical-item check.
	CheckInterval time.Duration
	// RegenerateInterval drives the longer shopping-list regeneration.
	RegenerateInterval time.Duration
	// RenotifyInterval is the minimum gap between two alerts to one user.
	RenotifyInterval time.Duration
}

// Scheduler owns the periodic reconciliation triggers with an explicit
// start/stop lifecycle. Stopping cancels the owning context: in-flight
// store calls may finish, but their results are discarded.
type Scheduler struct {
	engine   *Engine
	users    UserSource
	state    NotifyState
	notifier Notifier
	cfg      SchedulerConfig

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler wires a scheduler; it does not start any timers.
func NewScheduler(engine *Engine, users UserSource, state NotifyState, notifier Notifier, cfg SchedulerConfig) *Scheduler {
	return &Scheduler{
		engine:   engine,
		users:    users,
		state:    state,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Start launches the two periodic loops. Calling Start on a running
// scheduler is an error.
func (s *Scheduler) Start(parent context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return errors.New("scheduler already started")
	}

	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel

	s.wg.Add(2)
	go s.loop(ctx, s.cfg.RegenerateInterval, s.regeneratePass)
	go s.loop(ctx, s.cfg.CheckInterval, s.checkPass)

	log.Printf("scheduler started (check every %s, regenerate every %s)", s.cfg.CheckInterval, s.cfg.RegenerateInterval)
	return nil
}

// Stop tears down the timers and waits for the loops to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	log.Println("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, pass func(context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pass(ctx)
		}
	}
}

// regeneratePass runs the aggregate-and-reconcile pass for every user.
// The engine's per-user single-flight guard makes this safe against a
// concurrent manual refresh.
func (s *Scheduler) regeneratePass(ctx context.Context) {
	userIDs, err := s.users.ListUserIDs(ctx)
	if err != nil {
		log.Printf("scheduler: failed to list users: %v", err)
		return
	}

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.engine.Run(ctx, userID); err != nil {
			log.Printf("scheduler: regeneration failed for user %d: %v", userID, err)
		}
	}
}

// checkPass runs the gated critical-item notification check per user.
func (s *Scheduler) checkPass(ctx context.Context) {
	userIDs, err := s.users.ListUserIDs(ctx)
	if err != nil {
		log.Printf("scheduler: failed to list users: %v", err)
		return
	}

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return
		}
		if err := s.engine.NotifyCritical(ctx, userID, s.state, s.notifier, s.cfg.RenotifyInterval); err != nil {
			log.Printf("scheduler: critical-item check failed for user %d: %v", userID, err)
		}
	}
}
