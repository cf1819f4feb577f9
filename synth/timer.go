package synth

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// realTimer implements backoff.Timer on top of time.Timer.
type realTimer struct {
	timer *time.Timer
}

func newRealTimer() backoff.Timer {
	return &realTimer{}
}

func (t *realTimer) C() <-chan time.Time {
	return t.timer.C
}

func (t *realTimer) Start(duration time.Duration) {
	if t.timer == nil {
		t.timer = time.NewTimer(duration)
	} else {
		t.timer.Reset(duration)
	}
}

func (t *realTimer) Stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
}
