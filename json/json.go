// Package json persists conversation history as versioned JSON documents.
package json

import "time"

const envelopeVersion = 1

// envelope is the v1 wire format for a persisted history.
type envelope struct {
	Version   int           `json:"version"`
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Exchanges []exchangeDTO `json:"exchanges"`
}

type exchangeDTO struct {
	ID         string    `json:"id"`
	Transcript string    `json:"transcript"`
	Response   string    `json:"response"`
	AudioFile  *string   `json:"audio_file,omitempty"`
	AudioBytes int       `json:"audio_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}
