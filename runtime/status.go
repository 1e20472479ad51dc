package runtime

import (
	"sync"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// statusTracker holds the run status. The first terminal status set wins;
// Complete and PartialComplete are only assigned by finalize.
type statusTracker struct {
	mu      sync.Mutex
	status  types.RunStatus
	message string
}

func newStatusTracker() *statusTracker {
	return &statusTracker{status: types.RunStatusUnknown}
}

// set records a terminal failure status. Returns false if one was already set.
func (t *statusTracker) set(status types.RunStatus, message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != types.RunStatusUnknown {
		return false
	}
	t.status = status
	t.message = message
	return true
}

func (t *statusTracker) get() (types.RunStatus, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status, t.message
}

// isSet reports whether a terminal status has been recorded.
func (t *statusTracker) isSet() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status != types.RunStatusUnknown
}

// finalize assigns the normal-exit status if no failure was recorded.
func (t *statusTracker) finalize(allObserved bool) (types.RunStatus, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == types.RunStatusUnknown {
		if allObserved {
			t.status = types.RunStatusComplete
		} else {
			t.status = types.RunStatusPartialComplete
		}
	}
	return t.status, t.message
}
