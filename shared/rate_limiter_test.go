package shared

import (
	"testing"
	"time"
)

func TestRateLimiterCountsRequests(t *testing.T) {
	limiter := NewHTTPRequestRateLimiter(time.Millisecond)

	limiter.EnforceRateLimit()
	limiter.EnforceRateLimit()
	limiter.EnforceRateLimit()

	if got := limiter.GetRequestCount(); got != 3 {
		t.Errorf("Expected 3 requests counted, got %d", got)
	}
}

func TestRateLimiterResetClearsCount(t *testing.T) {
	limiter := NewHTTPRequestRateLimiter(time.Millisecond)

	limiter.EnforceRateLimit()
	limiter.Reset()

	if got := limiter.GetRequestCount(); got != 0 {
		t.Errorf("Expected 0 requests after reset, got %d", got)
	}
}
