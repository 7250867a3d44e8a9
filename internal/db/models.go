// Package db provides the local SQLite history of completed transcriptions
// and check-ins.
package db

import "time"

// Transcription is a completed job as shown in the panel.
type Transcription struct {
	ID        string
	OrderID   string
	FileName  string
	Source    string
	Text      string
	CreatedAt time.Time
}

// CheckIn is a check-in the service accepted.
type CheckIn struct {
	ID             string
	Username       string
	RecitedPages   string
	ReciteDuration int
	Message        string
	CreatedAt      time.Time
}
