package watch

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures Loop's fsnotify goroutine and debounce timers are fully
// torn down once a test cancels its context.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
