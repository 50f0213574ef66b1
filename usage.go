package chatrelay

// Usage tracks token consumption for a single provider call.
// Providers normalize their API-specific fields to these two counters.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
