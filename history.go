package converse

import "time"

// Exchange is one completed round trip: what the backend heard, what it
// answered, and where its spoken answer lives.
type Exchange struct {
	ID         string
	Transcript string
	Response   string
	AudioFile  string
	AudioBytes int // size of the uploaded capture
	CreatedAt  time.Time
}

// History is the ordered record of exchanges in one client run.
type History struct {
	ID        string
	Exchanges []Exchange
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewHistory creates an empty History.
func NewHistory(id string, now time.Time) History {
	return History{ID: id, CreatedAt: now, UpdatedAt: now}
}

// Append records e and advances UpdatedAt.
func (h *History) Append(e Exchange) {
	h.Exchanges = append(h.Exchanges, e)
	if e.CreatedAt.After(h.UpdatedAt) {
		h.UpdatedAt = e.CreatedAt
	}
}
