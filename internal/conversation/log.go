// Package conversation holds the append-only chat log shown by the TUI.
package conversation

import (
	"github.com/diogo/forecastchat/internal/models"
)

// Log is an ordered, append-only sequence of chat entries.
// The zero value is an empty log ready to use.
type Log struct {
	entries []models.ChatEntry
}

// Append adds entry to the end of the log
func (l *Log) Append(entry models.ChatEntry) {
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of the entries in order
func (l *Log) Entries() []models.ChatEntry {
	out := make([]models.ChatEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Last returns the most recent entry authored by role
func (l *Log) Last(role models.Role) (models.ChatEntry, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Role == role {
			return l.entries[i], true
		}
	}
	return models.ChatEntry{}, false
}
