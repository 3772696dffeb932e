package webpbridge

import (
	"time"

	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("component", "webpbridge")

// stopwatch measures the time spent in one step for trace logging.
type stopwatch struct{ start time.Time }

func newStopwatch() *stopwatch { return &stopwatch{start: time.Now()} }

func (s *stopwatch) reset() { s.start = time.Now() }

func (s *stopwatch) String() string { return time.Since(s.start).String() }
