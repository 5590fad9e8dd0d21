package helpers

import (
	mathrand "math/rand"
	"time"
)

// RandomDelay sleeps for a random duration in [min, max). The jitter keeps
// request pacing from looking mechanical.
func RandomDelay(min, max time.Duration) {
	if max <= min {
		time.Sleep(min)
		return
	}
	time.Sleep(min + time.Duration(mathrand.Int63n(int64(max-min))))
}
