package remote

import "time"

// SetClock replaces the clock used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Rebind exposes placeholder rewriting for a driver.
func Rebind(driver, query string) string {
	return (&Store{driver: driver}).rebind(query)
}
