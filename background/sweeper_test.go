package background

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/user/kaliweb-go/config"
	"github.com/user/kaliweb-go/logging"
)

type countingPurger struct {
	calls int64
}

func (p *countingPurger) PurgeResolved(_ context.Context, _ time.Duration) (int64, error) {
	atomic.AddInt64(&p.calls, 1)
	return 1, nil
}

func TestRetentionSweeperRunsAndStops(t *testing.T) {
	purger := &countingPurger{}
	cfg := config.RetentionConfig{
		SweepInterval: 10 * time.Millisecond,
		ResolvedTTL:   time.Hour,
	}

	stopChan := make(chan struct{})
	wg := StartRetentionSweeper(purger, cfg, logging.NewDefault(), stopChan)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&purger.calls) >= 2
	}, time.Second, 5*time.Millisecond, "sweeper never ticked")

	close(stopChan)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after stopChan closed")
	}
}
