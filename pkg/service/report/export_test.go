package report

import "time"

// SetClock replaces the clock used for default periods and monthly growth.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}
