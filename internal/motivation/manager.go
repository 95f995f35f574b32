package motivation

import (
	"encoding/csv"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// ReadyMessage is shown before the first completed rep.
const ReadyMessage = "Ready to start!"

// defaultMessages back the manager when no CSV is provided.
var defaultMessages = []string{
	"Keep that core tight!",
	"One more, you got this!",
	"Strong and steady!",
	"Form over speed, champ!",
	"Breathe and push!",
	"Halfway to greatness!",
	"Make this one count!",
	"Power through!",
	"Looking sharp out there!",
	"No shortcuts, all gains!",
}

// Manager hands out motivational messages keyed by the rep count,
// cycling through its message list so back-to-back reps vary.
type Manager struct {
	messages []string
}

// NewManager creates a manager with the built-in message set.
func NewManager() *Manager {
	return &Manager{messages: defaultMessages}
}

// NewManagerFromCSV reads one message per record from the first column.
// MESSAGE;CATEGORY rows are accepted, extra columns ignored.
func NewManagerFromCSV(r *csv.Reader) (*Manager, error) {
	m := &Manager{}

	log.Println("reading motivation messages CSV ...")

	r.Comma = ';'
	r.FieldsPerRecord = -1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 0 || record[0] == "" {
			return nil, fmt.Errorf("record [%s] has no message", record)
		}
		m.messages = append(m.messages, record[0])
	}

	if len(m.messages) == 0 {
		return nil, fmt.Errorf("no motivation messages found")
	}

	log.Printf("motivation CSV read %d messages", len(m.messages))

	return m, nil
}

// ForRep returns the message for the given rep count.
func (m *Manager) ForRep(repCount int) string {
	if repCount <= 0 {
		return ReadyMessage
	}
	msg := m.messages[(repCount-1)%len(m.messages)]
	return fmt.Sprintf("Rep %d - %s", repCount, msg)
}

// Len returns the number of loaded messages.
func (m *Manager) Len() int {
	return len(m.messages)
}
