package workout

import (
	log "github.com/sirupsen/logrus"
)

// Mode is a supported exercise type.
type Mode string

const (
	ModeChinup  Mode = "chinup"
	ModePullup  Mode = "pullup"
	ModePushup  Mode = "pushup"
	ModeSquat   Mode = "squat"
	ModeArmCurl Mode = "armcurl"
)

// DefaultMode is what an unknown or empty mode string falls back to.
const DefaultMode = ModeChinup

// SupportedModes lists all exercise modes accepted by the API.
func SupportedModes() []Mode {
	return []Mode{ModeChinup, ModePullup, ModePushup, ModeSquat, ModeArmCurl}
}

func (m Mode) Valid() bool {
	switch m {
	case ModeChinup, ModePullup, ModePushup, ModeSquat, ModeArmCurl:
		return true
	}
	return false
}

// ParseMode normalizes a client-provided mode string. Unknown values fall
// back to the default mode with a logged warning instead of failing the
// request.
func ParseMode(s string) Mode {
	m := Mode(s)
	if m.Valid() {
		return m
	}
	log.Warnf("unknown exercise mode %q, falling back to %s", s, DefaultMode)
	return DefaultMode
}
