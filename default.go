package steadfast

import (
	"log"
	"sync"

	"github.com/limco/steadfast/retry"
)

var (
	defaultMu   sync.Mutex
	defaultOnce sync.Once
	defaultR    *retry.Retrier
)

// defaultRetrier returns the shared, lazily-initialized default retrier.
func defaultRetrier() *retry.Retrier {
	defaultOnce.Do(func() {
		if defaultR == nil {
			defaultR = retry.New()
		}
	})
	return defaultR
}

// setDefault installs r as the default retrier if none has been used yet.
func setDefault(r *retry.Retrier) {
	if r == nil {
		return
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultR != nil {
		log.Printf("steadfast: Init called after default retrier already initialized; ignoring.")
		return
	}
	defaultOnce.Do(func() {
		defaultR = r
	})
}
