package core

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartReaper schedules a periodic sweep of stale pending records. Expiry is
// otherwise only detected lazily at check time, so abandoned challenges would
// linger forever in stores without native TTL.
//
// It is an optional extension point: TTL-enforcing backends expire records
// themselves, so a nil stop function is returned when the configured store
// does not implement Sweeper.
func (s *Service) StartReaper(every time.Duration) (stop func()) {
	sw, ok := s.store.(Sweeper)
	if !ok {
		return nil
	}
	if every <= 0 {
		every = time.Minute
	}
	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", every), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		removed, err := sw.Sweep(ctx)
		if err != nil {
			s.log.Warn("pending sweep failed", zap.Error(err))
			return
		}
		if removed > 0 {
			s.log.Info("swept stale pending verifications", zap.Int("removed", removed))
		}
	})
	if err != nil {
		s.log.Warn("reaper schedule rejected", zap.Error(err))
		return nil
	}
	c.Start()
	return func() { c.Stop() }
}
