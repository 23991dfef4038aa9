package service

import (
	"testing"
	"time"
)

func TestSchedulerPushesLeaderboard(t *testing.T) {
	f := newFixture(t)
	f.seedLevels(1, 1)
	f.pay(f.profile("u", nil), 1)

	pub := &recordingPublisher{}
	sched, err := StartScheduler(f.svc.Reconciler, f.svc.Leaderboard, pub, SchedulerConfig{
		ReconcileInterval:   time.Hour,
		LeaderboardInterval: 20 * time.Millisecond,
		LeaderboardSize:     10,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sched.Shutdown()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		pub.mu.Lock()
		n := len(pub.received)
		pub.mu.Unlock()
		if n >= 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("leaderboard was not pushed periodically")
}
