package models

// Role identifies the author of a chat entry
type Role string

// Chat entry roles
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatEntry represents one line of the conversation log.
// Entries are never mutated once appended.
type ChatEntry struct {
	Role Role
	Text string
}

// UserEntry creates an entry authored locally
func UserEntry(text string) ChatEntry {
	return ChatEntry{Role: RoleUser, Text: text}
}

// AssistantEntry creates an entry authored by the backend or the client itself
func AssistantEntry(text string) ChatEntry {
	return ChatEntry{Role: RoleAssistant, Text: text}
}
