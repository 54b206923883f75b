package runner

import "sync/atomic"

// Session is the process-scoped lifecycle state shared by every trigger
// handler. Once disabled it stays disabled.
type Session struct {
	disabled atomic.Bool
	ended    atomic.Bool
}

// Disable marks the session as quitting. Later triggers do nothing.
func (s *Session) Disable() {
	s.disabled.Store(true)
}

// Disabled reports whether Disable has been called.
func (s *Session) Disabled() bool {
	return s.disabled.Load()
}

// End runs cleanup once, when enabled. Cleanup errors are returned for
// logging only; callers are expected to ignore them.
func (s *Session) End(enabled bool, cleanup func() error) error {
	if !s.ended.CompareAndSwap(false, true) || !enabled || cleanup == nil {
		return nil
	}
	return cleanup()
}
