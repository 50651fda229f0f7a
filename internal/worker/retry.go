package worker

import (
	"math"
	"time"
)

// RetryPolicy defines exponential backoff parameters.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// NextDelay returns delay for a given attempt (1-based) with clamping.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = 10 * time.Millisecond
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}

	delay := float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1))
	d := time.Duration(delay)
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = 10 * time.Millisecond
	}
	return d
}

// Do runs fn, retrying up to MaxRetries additional attempts while
// shouldRetry reports the error as transient. The last error is returned.
func (r RetryPolicy) Do(shouldRetry func(error) bool, fn func() error) error {
	err := fn()
	for attempt := 1; attempt <= r.MaxRetries && shouldRetry(err); attempt++ {
		time.Sleep(r.NextDelay(attempt))
		err = fn()
	}
	return err
}
