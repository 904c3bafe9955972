package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
)

// retentionSweeper prunes retired job states on a fixed cadence so a
// long-running scheduler's registry stays bounded. Sweeps run well inside
// the retention window; a state is only removed once it has been terminal
// for at least maxAge, giving pollers time to observe the final status.
type retentionSweeper struct {
	cron *cron.Cron
}

func startSweeper(s *Scheduler, maxAge time.Duration) *retentionSweeper {
	interval := maxAge / 4
	if interval < time.Second {
		interval = time.Second
	}

	c := cron.New()
	c.Schedule(cron.Every(interval), cron.FuncJob(func() {
		if removed := s.registry.prune(time.Now().Add(-maxAge)); removed > 0 {
			s.logger.Debug("retired terminal job states", "count", removed)
		}
	}))
	c.Start()
	return &retentionSweeper{cron: c}
}

func (rs *retentionSweeper) stop() {
	ctx := rs.cron.Stop()
	<-ctx.Done()
}
