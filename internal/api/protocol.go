// Package api provides the client and wire types for the remote transcription
// service: audio submission, job status and recitation check-ins, all JSON over HTTP.
package api

import (
	"strconv"
)

// Endpoint paths, relative to the configured base URL.
const (
	PathTranscribe       = "/api/transcribe"
	PathStatus           = "/api/status/"
	PathRecordRecitation = "/api/record_recitation"
)

// AudioField is the multipart field carrying the audio payload.
const AudioField = "audio"

// StatusCompleted is the only status value treated as terminal success.
const StatusCompleted = "completed"

// TranscribeResponse is returned by POST /api/transcribe. Transcription is
// itself a JSON document in the vendor lattice format.
type TranscribeResponse struct {
	OrderID       string `json:"orderId"`
	Transcription string `json:"transcription"`
}

// StatusResponse is returned by GET /api/status/{orderId}.
type StatusResponse struct {
	Status        string   `json:"status"`
	EstimatedTime *float64 `json:"estimatedTime,omitempty"`
}

// Completed reports whether the job has finished.
func (r StatusResponse) Completed() bool { return r.Status == StatusCompleted }

// EstimatedSeconds renders the estimate the way a JSON number prints, or "" if absent.
func (r StatusResponse) EstimatedSeconds() string {
	if r.EstimatedTime == nil {
		return ""
	}
	return strconv.FormatFloat(*r.EstimatedTime, 'f', -1, 64)
}

// CheckInRequest is the body of POST /api/record_recitation.
type CheckInRequest struct {
	Username       string `json:"username"`
	RecitedPages   string `json:"recited_pages"`
	ReciteDuration int    `json:"recite_duration"`
}

// CheckInResponse is returned by POST /api/record_recitation. Record is
// opaque to the client.
type CheckInResponse struct {
	Message string         `json:"message"`
	Record  map[string]any `json:"record,omitempty"`
}

// Audio is an upload payload for Transcribe.
type Audio struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Float64Ptr returns a pointer to v. Convenience for building status responses.
func Float64Ptr(v float64) *float64 { return &v }
