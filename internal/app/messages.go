package app

import (
	"github.com/jwulff/recite/internal/api"
	"github.com/jwulff/recite/internal/audio"
	"github.com/jwulff/recite/internal/db"
)

// RecordingStartedMsg is sent once ffmpeg is capturing.
type RecordingStartedMsg struct {
	Capture audio.Capture
}

// RecordingErrorMsg is sent when capture could not start or finish.
type RecordingErrorMsg struct {
	Err error
}

// CaptureEndedMsg is sent when a capture process exits. It is an error unless
// the user already asked the session to stop.
type CaptureEndedMsg struct {
	Capture audio.Capture
}

// RecordingStoppedMsg carries the finalized recording.
type RecordingStoppedMsg struct {
	Artifact *audio.Artifact
}

// FileLoadedMsg carries an uploaded audio file.
type FileLoadedMsg struct {
	Artifact *audio.Artifact
}

// FileLoadErrorMsg is sent when the selected file cannot be read.
type FileLoadErrorMsg struct {
	Err error
}

// TranscribeResponseMsg carries the service's answer to an audio submission.
type TranscribeResponseMsg struct {
	Response api.TranscribeResponse
}

// TranscribeErrorMsg is sent when the submission fails.
type TranscribeErrorMsg struct {
	Err error
}

// PollTickMsg triggers one status request. Seq identifies the poll loop that
// scheduled it; ticks from a superseded loop are dropped.
type PollTickMsg struct {
	OrderID string
	Seq     int
}

// StatusResponseMsg carries one status poll result.
type StatusResponseMsg struct {
	OrderID  string
	Seq      int
	Response api.StatusResponse
}

// StatusErrorMsg is sent when a status poll fails.
type StatusErrorMsg struct {
	OrderID string
	Seq     int
	Err     error
}

// CheckInResponseMsg carries the service's answer to a check-in.
type CheckInResponseMsg struct {
	Response api.CheckInResponse
}

// CheckInErrorMsg is sent when the check-in request fails.
type CheckInErrorMsg struct {
	Err error
}

// PlaybackDoneMsg is sent when the player exits.
type PlaybackDoneMsg struct {
	Err error
}

// HistoryLoadedMsg carries recent transcriptions from SQLite.
type HistoryLoadedMsg struct {
	Transcriptions []db.Transcription
}

// ClearTransientErrorMsg clears a transient error after a timeout.
type ClearTransientErrorMsg struct{}
