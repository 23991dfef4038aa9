package ws

import "hahu_backend/internal/domain"

// Envelope is the frame sent in both directions.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// server → client
type LeaderboardPayload struct {
	Entries     []domain.LeaderboardEntry `json:"entries"`
	GeneratedAt int64                     `json:"generated_at"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
