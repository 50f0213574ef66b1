package chatrelay

// Turn is a single role-tagged entry in a session transcript.
// Turns are immutable once appended; transcript order is chronological and
// determines the conversation context sent to the provider.
type Turn struct {
	Role Role
	Text string
}

// SystemTurn returns a system turn with the given text.
func SystemTurn(text string) Turn { return Turn{Role: RoleSystem, Text: text} }

// UserTurn returns a user turn with the given text.
func UserTurn(text string) Turn { return Turn{Role: RoleUser, Text: text} }

// AssistantTurn returns an assistant turn with the given text.
func AssistantTurn(text string) Turn { return Turn{Role: RoleAssistant, Text: text} }
