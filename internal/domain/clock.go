package domain

import (
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

type clockBox struct{ clockwork.Clock }

// assessmentClock stamps Assessment.AssessedAt. The pipeline goroutine and
// HTTP handlers read it concurrently with SetClock.
var assessmentClock atomic.Pointer[clockBox]

func init() {
	assessmentClock.Store(&clockBox{clockwork.NewRealClock()})
}

// SetClock swaps the time source used to stamp assessments and returns a
// func restoring the previous one. A nil clock selects real time.
func SetClock(c clockwork.Clock) (restore func()) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	prev := assessmentClock.Swap(&clockBox{c})
	return func() { assessmentClock.Store(prev) }
}

// assessedNow returns the current stamp in UTC at the second precision of
// the sink's assessed_at header.
func assessedNow() time.Time {
	return assessmentClock.Load().Now().UTC().Truncate(time.Second)
}
