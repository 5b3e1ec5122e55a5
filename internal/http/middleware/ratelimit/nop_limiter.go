package ratelimit

// NopLimiter allows everything. Used when rate limiting is disabled.
type NopLimiter struct{}

func NewNopLimiter() NopLimiter { return NopLimiter{} }

func (NopLimiter) Allow(string) bool { return true }
