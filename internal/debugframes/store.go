package debugframes

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// FrameInfo is the analysis snapshot stored next to a saved frame.
type FrameInfo struct {
	ClientID   string   `json:"clientId"`
	Mode       string   `json:"mode"`
	FrameCount int      `json:"frameCount"`
	RepCount   int      `json:"repCount"`
	Position   string   `json:"position,omitempty"`
	Angle      *float64 `json:"angle,omitempty"`
	SavedAt    int64    `json:"savedAt"`
}

// Store persists incoming frames with a JSON sidecar per frame, grouped
// in one directory per client. Meant for troubleshooting counter
// behavior against real footage; disabled when the root dir is empty.
type Store struct {
	rootDir string
	now     func() time.Time
}

// NewStore prepares the frames root directory. An empty rootDir returns
// a disabled store that silently drops all saves.
func NewStore(rootDir string) (*Store, error) {
	if rootDir != "" {
		if err := os.MkdirAll(rootDir, 0o755); err != nil {
			return nil, fmt.Errorf("create debug frames dir: %w", err)
		}
	}
	return &Store{rootDir: rootDir, now: time.Now}, nil
}

func (s *Store) Enabled() bool {
	return s.rootDir != ""
}

// Save writes the JPEG frame and its sidecar. The filename carries the
// frame and rep counts so a directory listing reads as a timeline.
func (s *Store) Save(frame []byte, info FrameInfo) error {
	if !s.Enabled() {
		return nil
	}

	clientDir := filepath.Join(s.rootDir, sanitizeClientID(info.ClientID))
	if err := os.MkdirAll(clientDir, 0o755); err != nil {
		return fmt.Errorf("create client frames dir: %w", err)
	}

	info.SavedAt = s.now().Unix()
	name := fmt.Sprintf("frame_%04d_reps_%d_%d", info.FrameCount, info.RepCount, info.SavedAt)

	if err := os.WriteFile(filepath.Join(clientDir, name+".jpg"), frame, 0o644); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	sidecar, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal frame info: %w", err)
	}
	if err := os.WriteFile(filepath.Join(clientDir, name+".json"), sidecar, 0o644); err != nil {
		return fmt.Errorf("write frame info: %w", err)
	}

	log.Tracef("debug frame saved: %s/%s.jpg", info.ClientID, name)
	return nil
}

// sanitizeClientID keeps the client dir name flat and safe, client IDs
// are normally UUIDs anyway.
func sanitizeClientID(clientID string) string {
	if clientID == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, clientID)
}
