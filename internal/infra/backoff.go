package infra

import "time"

const (
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 30 * time.Second
)

// RetryDelay returns the exponential backoff duration for a given retry
// count: base * 2^retry, capped at the max. Negative counts behave like
// the first retry.
func RetryDelay(retry int) time.Duration {
	if retry < 0 {
		return retryBaseDelay
	}
	// 2^26 * 500ms already exceeds any reasonable cap.
	if retry > 26 {
		return retryMaxDelay
	}
	delay := retryBaseDelay * time.Duration(1<<retry)
	if delay > retryMaxDelay {
		return retryMaxDelay
	}
	return delay
}
