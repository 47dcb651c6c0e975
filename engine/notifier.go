package engine

import (
	"context"
	"sync"
	"time"

	"rewardkit/core"
)

// Notifier is the periodic reminder sweep. Each Restart bumps a generation
// counter; a running loop captures its generation at start and exits once
// the live generation moves on, so at most one sweep is ever active without
// a synchronous cancellation handshake.
type Notifier struct {
	svc *RewardService

	mu         sync.Mutex
	generation int64
}

func newNotifier(svc *RewardService) *Notifier {
	return &Notifier{svc: svc}
}

// Restart cancels any running sweep and, for a positive period, starts a
// fresh one. The first sweep fires after a third of the period.
func (n *Notifier) Restart(period time.Duration) {
	n.mu.Lock()
	n.generation++
	gen := n.generation
	n.mu.Unlock()

	if period <= 0 {
		return
	}
	go n.run(gen, period)
}

// Stop cancels any running sweep.
func (n *Notifier) Stop() {
	n.mu.Lock()
	n.generation++
	n.mu.Unlock()
}

func (n *Notifier) live(gen int64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.generation == gen
}

func (n *Notifier) run(gen int64, period time.Duration) {
	timer := time.NewTimer(period / 3)
	defer timer.Stop()
	for {
		<-timer.C
		if !n.live(gen) {
			return
		}
		n.sweep()
		timer.Reset(period)
	}
}

// sweep reminds every loaded user who has not claimed today. Users without
// daily-rewards data are skipped.
func (n *Notifier) sweep() {
	today := n.svc.today()
	for _, rec := range n.svc.users.Loaded() {
		daily, ok := rec.Daily()
		if !ok {
			continue
		}
		if daily.HasCollectedToday(today) {
			continue
		}
		if n.svc.remind != nil {
			n.svc.remind(rec)
		}
		n.svc.bus.Publish(context.Background(), core.NewClaimReminder(rec.ID()))
	}
}
