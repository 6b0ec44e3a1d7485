package domain

import "time"

// SessionRecord is one row in the login-time ledger. LogoutTime is nil
// while the session is still open; at most one open record exists per
// username at a time, enforced by the logout transition rule rather
// than a database constraint.
type SessionRecord struct {
	ID         int64
	Username   string
	LoginTime  time.Time
	LogoutTime *time.Time
}

// Elapsed returns the session duration, billing an open session up to
// the supplied clock reading.
func (s *SessionRecord) Elapsed(now time.Time) time.Duration {
	end := now
	if s.LogoutTime != nil {
		end = *s.LogoutTime
	}
	if end.Before(s.LoginTime) {
		return 0
	}
	return end.Sub(s.LoginTime)
}
