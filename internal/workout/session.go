package workout

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Session ties one client's exercise counter to its mode and keeps the
// cumulative frame count across the session. It is not safe for
// concurrent use; callers serialize access per client.
type Session struct {
	mode       Mode
	counter    Counter
	frameCount int
	lastRepAt  time.Time
	tuning     Tuning
	now        func() time.Time
}

// SessionStatus is the full session snapshot served to clients.
type SessionStatus struct {
	Count      int        `json:"count"`
	FrameCount int        `json:"frameCount"`
	Mode       Mode       `json:"mode"`
	State      string     `json:"state"`
	LastRepAt  *time.Time `json:"lastRepAt,omitempty"`
}

// NewSession builds a session for the given mode. Unknown modes fall
// back to the default. The tuning is captured by value; later edits to
// the source only affect counters built after them. A nil now func
// means time.Now.
func NewSession(mode Mode, tuning *Tuning, now func() time.Time) *Session {
	if !mode.Valid() {
		mode = ParseMode(string(mode))
	}
	if now == nil {
		now = time.Now
	}
	var t Tuning
	if tuning != nil {
		t = *tuning
	}
	return &Session{
		mode:    mode,
		counter: NewCounter(mode, &t, now),
		tuning:  t,
		now:     now,
	}
}

// Update feeds one frame through the counter.
func (s *Session) Update(kp Keypoints) Result {
	s.frameCount++
	countBefore := s.counter.Status().Count
	res := s.counter.Analyze(kp)
	if res.Count > countBefore {
		s.lastRepAt = s.now()
	}
	return res
}

// SwitchMode swaps in a fresh counter for the new mode, discarding all
// progress. Switching to the current mode is a no-op.
func (s *Session) SwitchMode(mode Mode) {
	if !mode.Valid() {
		mode = ParseMode(string(mode))
	}
	if mode == s.mode {
		return
	}
	log.Infof("workout session switching mode %s -> %s", s.mode, mode)
	s.mode = mode
	s.counter = NewCounter(mode, &s.tuning, s.now)
	s.frameCount = 0
	s.lastRepAt = time.Time{}
}

// Reset clears the counter and frame count but keeps the mode.
func (s *Session) Reset() {
	s.counter.Reset()
	s.frameCount = 0
	s.lastRepAt = time.Time{}
}

func (s *Session) Mode() Mode {
	return s.mode
}

func (s *Session) Count() int {
	return s.counter.Status().Count
}

func (s *Session) FrameCount() int {
	return s.frameCount
}

func (s *Session) Status() SessionStatus {
	cs := s.counter.Status()
	st := SessionStatus{
		Count:      cs.Count,
		FrameCount: s.frameCount,
		Mode:       s.mode,
		State:      cs.State,
	}
	if !s.lastRepAt.IsZero() {
		lastRepAt := s.lastRepAt
		st.LastRepAt = &lastRepAt
	}
	return st
}
