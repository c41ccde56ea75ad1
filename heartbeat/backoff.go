package heartbeat

import (
	crand "crypto/rand"
	"math/big"
	"time"
)

// Capping the shift keeps the multiplier well inside int64 for any sane
// base delay. 2^20 = 1,048,576.
const maxBackoffShift = 20

// Backoff returns the jittered exponential delay for the given attempt:
// uniform in [BaseDelay*2^attempt/2, BaseDelay*2^attempt). The randomized
// lower half desynchronizes concurrent retriers hitting the same endpoint.
func Backoff(attempt int, base time.Duration) time.Duration {
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxBackoffShift {
		attempt = maxBackoffShift
	}

	d := base * time.Duration(1<<attempt)
	half := d / 2
	if half <= 0 {
		return d
	}

	n, err := crand.Int(crand.Reader, big.NewInt(int64(half)))
	if err != nil {
		// On RNG failure, fall back to the full delay
		return d
	}
	return half + time.Duration(n.Int64())
}
