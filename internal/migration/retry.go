package migration

import (
	"time"
)

// RetryPolicy retries a call with bounded exponential backoff. Used around
// rate-limited call sites (category links); it never turns a persistent
// failure into an abort, the last error is simply returned.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Factor     int

	sleep func(time.Duration) // swapped out in tests
}

func NewRetryPolicy(maxRetries int, baseDelay time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxRetries: maxRetries,
		BaseDelay:  baseDelay,
		Factor:     2,
		sleep:      time.Sleep,
	}
}

// Do runs fn, retrying while retryable(err) holds and attempts remain.
// Backoff delays are BaseDelay, BaseDelay*Factor, BaseDelay*Factor^2, ...
func (p RetryPolicy) Do(fn func() error, retryable func(error) bool) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	delay := p.BaseDelay
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !retryable(err) || attempt >= p.MaxRetries {
			return err
		}
		sleep(delay)
		delay *= time.Duration(p.Factor)
	}
}
