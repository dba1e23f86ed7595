package session

import "time"

const maxNotifications = 50

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notification is a message the editor shows the user, such as "Upload failed."
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// notify appends a notification, dropping the oldest past the cap. Caller
// holds s.mu.
func (s *Session) notify(level Level, message string) {
	s.notes = append(s.notes, Notification{Level: level, Message: message, At: time.Now()})
	if over := len(s.notes) - maxNotifications; over > 0 {
		s.notes = append([]Notification(nil), s.notes[over:]...)
	}
	if level == LevelError {
		s.logger.Warn("user notified", "message", message)
	} else {
		s.logger.Info("user notified", "message", message)
	}
}
