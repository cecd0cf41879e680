package ratelimit

// Limiter gates inbound private-chat messages per user. It is a soft anti-spam
// measure, not a security control.
type Limiter interface {
	Allow(userID int64) bool
}
