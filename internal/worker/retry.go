package worker

import "time"

// RetryPolicy controls rescheduling of failed sync tasks. The zero
// value is usable: withDefaults fills in the standard schedule of five
// attempts starting at two seconds and doubling up to one minute.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

func (r RetryPolicy) withDefaults() RetryPolicy {
	if r.MaxRetries <= 0 {
		r.MaxRetries = 5
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = 2 * time.Second
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = time.Minute
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}
	return r
}

// Exhausted reports whether the given attempt (1-based) used up the
// retry budget.
func (r RetryPolicy) Exhausted(attempt int) bool {
	return attempt >= r.withDefaults().MaxRetries
}

// NextDelay returns the wait before the given attempt (1-based). The
// delay grows by BackoffFactor per attempt, capped at MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	r = r.withDefaults()

	delay := r.InitialDelay
	for i := 1; i < attempt && delay < r.MaxDelay; i++ {
		delay = time.Duration(float64(delay) * r.BackoffFactor)
	}
	if delay > r.MaxDelay {
		delay = r.MaxDelay
	}
	return delay
}
