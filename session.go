package chatrelay

import "time"

// Session is a server-side conversation transcript. Lifetime is bounded by
// process uptime or an explicit clear; nothing persists across restarts.
type Session struct {
	ID        string
	Turns     []Turn
	CreatedAt time.Time
	UpdatedAt time.Time
}
