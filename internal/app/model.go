package app

import (
	"context"
	"errors"
	"time"

	"github.com/jwulff/recite/internal/api"
	"github.com/jwulff/recite/internal/audio"
	"github.com/jwulff/recite/internal/checkin"
	"github.com/jwulff/recite/internal/db"
	"github.com/jwulff/recite/internal/job"
	"github.com/jwulff/recite/internal/lattice"
	"github.com/rs/zerolog"

	tea "github.com/charmbracelet/bubbletea"
)

// Panel messages that are not owned by the job or check-in packages.
const (
	MsgNeedAudio      = "Record or upload audio first"
	MsgSubmitFailed   = "Error submitting audio"
	MsgMicUnavailable = "Microphone unavailable"
)

const historyLimit = 3

// Field identifies the text input that has keyboard focus.
type Field int

const (
	FieldNone Field = iota
	FieldUpload
	FieldUsername
	FieldPages
)

// Service is the remote transcription service. *api.Client satisfies it.
type Service interface {
	Transcribe(ctx context.Context, audio api.Audio) (api.TranscribeResponse, error)
	Status(ctx context.Context, orderID string) (api.StatusResponse, error)
	RecordRecitation(ctx context.Context, in api.CheckInRequest) (api.CheckInResponse, error)
}

// Player plays back an artifact. audio.Player satisfies it.
type Player interface {
	Play(ctx context.Context, a *audio.Artifact) error
}

// Deps are the collaborators a panel needs. Store may be nil.
type Deps struct {
	Service        Service
	Recorder       audio.Recorder
	Player         Player
	Store          *db.Store
	Log            zerolog.Logger
	PollInterval   time.Duration
	UploadDuration checkin.UploadDuration
	Now            func() time.Time
}

// Model is the root bubbletea model for the transcription and check-in panel.
type Model struct {
	svc            Service
	recorder       audio.Recorder
	player         Player
	store          *db.Store
	log            zerolog.Logger
	pollInterval   time.Duration
	uploadDuration checkin.UploadDuration
	now            func() time.Time

	// Panel lifetime; cancelled on quit.
	ctx    context.Context
	cancel context.CancelFunc

	// Recording state
	capture   audio.Capture
	starting  bool
	stopping  bool
	artifact  *audio.Artifact
	startTime time.Time
	playing   bool

	// Transcription
	transcription string
	submitting    bool
	submitError   string
	job           job.Job

	// Poll loop for job; pollSeq increments on every new job.
	pollSeq    int
	pollCtx    context.Context
	pollCancel context.CancelFunc

	// Check-in form
	username       string
	recitedPages   string
	reciteDuration int
	checkInMessage string
	checkingIn     bool

	// Upload input
	uploadPath string

	// History
	history []db.Transcription

	// UI state
	focus  Field
	width  int
	height int

	// Errors
	errorMessage   string
	errorTransient bool
}

// New creates a panel with default state.
func New(d Deps) Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		svc:            d.Service,
		recorder:       d.Recorder,
		player:         d.Player,
		store:          d.Store,
		log:            d.Log,
		pollInterval:   d.PollInterval,
		uploadDuration: d.UploadDuration,
		now:            d.Now,
		ctx:            ctx,
		cancel:         cancel,
	}
	if m.pollInterval <= 0 {
		m.pollInterval = job.DefaultInterval
	}
	if m.uploadDuration == "" {
		m.uploadDuration = checkin.UploadElapsed
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Init sets the window title and loads recent history.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("Audio Transcription App")}
	if m.store != nil {
		cmds = append(cmds, loadHistoryCmd(m.store, m.log))
	}
	return tea.Batch(cmds...)
}

// startRecordingCmd opens a capture session.
func startRecordingCmd(ctx context.Context, r audio.Recorder) tea.Cmd {
	return func() tea.Msg {
		capture, err := r.Start(ctx)
		if err != nil {
			return RecordingErrorMsg{Err: err}
		}
		return RecordingStartedMsg{Capture: capture}
	}
}

// watchCaptureCmd reports when the capture process exits.
func watchCaptureCmd(c audio.Capture) tea.Cmd {
	return func() tea.Msg {
		<-c.Done()
		return CaptureEndedMsg{Capture: c}
	}
}

// stopRecordingCmd finalizes a capture session into an artifact.
func stopRecordingCmd(c audio.Capture) tea.Cmd {
	return func() tea.Msg {
		a, err := c.Stop()
		if err != nil {
			return RecordingErrorMsg{Err: err}
		}
		return RecordingStoppedMsg{Artifact: a}
	}
}

// loadFileCmd reads a user-selected audio file.
func loadFileCmd(path string, at time.Time) tea.Cmd {
	return func() tea.Msg {
		a, err := audio.FromFile(path, at)
		if err != nil {
			return FileLoadErrorMsg{Err: err}
		}
		return FileLoadedMsg{Artifact: a}
	}
}

// transcribeCmd submits the artifact.
func transcribeCmd(ctx context.Context, svc Service, payload api.Audio) tea.Cmd {
	return func() tea.Msg {
		resp, err := svc.Transcribe(ctx, payload)
		if err != nil {
			return TranscribeErrorMsg{Err: err}
		}
		return TranscribeResponseMsg{Response: resp}
	}
}

// pollTickCmd waits one poll interval.
func pollTickCmd(interval time.Duration, orderID string, seq int) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return PollTickMsg{OrderID: orderID, Seq: seq}
	})
}

// statusCmd fetches job status for orderID.
func statusCmd(ctx context.Context, svc Service, orderID string, seq int) tea.Cmd {
	return func() tea.Msg {
		resp, err := svc.Status(ctx, orderID)
		if err != nil {
			return StatusErrorMsg{OrderID: orderID, Seq: seq, Err: err}
		}
		return StatusResponseMsg{OrderID: orderID, Seq: seq, Response: resp}
	}
}

// checkInCmd posts a check-in.
func checkInCmd(ctx context.Context, svc Service, req api.CheckInRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := svc.RecordRecitation(ctx, req)
		if err != nil {
			return CheckInErrorMsg{Err: err}
		}
		return CheckInResponseMsg{Response: resp}
	}
}

// playCmd plays the artifact.
func playCmd(ctx context.Context, p Player, a *audio.Artifact) tea.Cmd {
	return func() tea.Msg {
		return PlaybackDoneMsg{Err: p.Play(ctx, a)}
	}
}

// clearTransientErrorCmd fires after a delay to clear transient errors.
func clearTransientErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{}
	})
}

// loadHistoryCmd reads recent transcriptions from SQLite.
func loadHistoryCmd(store *db.Store, log zerolog.Logger) tea.Cmd {
	return func() tea.Msg {
		rows, err := store.RecentTranscriptions(historyLimit)
		if err != nil {
			log.Warn().Err(err).Msg("load history")
			return HistoryLoadedMsg{}
		}
		return HistoryLoadedMsg{Transcriptions: rows}
	}
}

// saveTranscriptionCmd journals a completed job, then reloads history.
func saveTranscriptionCmd(store *db.Store, log zerolog.Logger, rec db.Transcription) tea.Cmd {
	return func() tea.Msg {
		if _, err := store.SaveTranscription(rec); err != nil {
			log.Warn().Err(err).Str("order_id", rec.OrderID).Msg("save transcription")
		}
		return loadHistoryCmd(store, log)()
	}
}

// saveCheckInCmd journals an accepted check-in.
func saveCheckInCmd(store *db.Store, log zerolog.Logger, rec db.CheckIn) tea.Cmd {
	return func() tea.Msg {
		if _, err := store.SaveCheckIn(rec); err != nil {
			log.Warn().Err(err).Str("username", rec.Username).Msg("save check-in")
		}
		return nil
	}
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case RecordingStartedMsg:
		m.starting = false
		m.capture = msg.Capture
		m.startTime = msg.Capture.StartedAt()
		return m, watchCaptureCmd(msg.Capture)

	case CaptureEndedMsg:
		if msg.Capture != m.capture || m.stopping {
			return m, nil
		}
		// ffmpeg exited without being asked to; Stop collects its error.
		m.log.Warn().Msg("capture ended unexpectedly")
		m.stopping = true
		return m, stopRecordingCmd(msg.Capture)

	case RecordingErrorMsg:
		m.starting = false
		m.stopping = false
		m.capture = nil
		m.log.Error().Err(msg.Err).Msg("recording failed")
		return m, m.setTransientError(MsgMicUnavailable + ": " + msg.Err.Error())

	case RecordingStoppedMsg:
		m.stopping = false
		m.capture = nil
		m.replaceArtifact(msg.Artifact)
		return m, nil

	case FileLoadedMsg:
		m.replaceArtifact(msg.Artifact)
		m.startTime = msg.Artifact.CapturedAt
		m.uploadPath = ""
		m.focus = FieldNone
		m.log.Info().Str("file", msg.Artifact.Name).Int("bytes", len(msg.Artifact.Data)).Msg("audio file loaded")
		return m, nil

	case FileLoadErrorMsg:
		m.log.Warn().Err(msg.Err).Msg("load audio file")
		return m, m.setTransientError(msg.Err.Error())

	case TranscribeResponseMsg:
		m.submitting = false
		return m, m.startJob(msg.Response)

	case TranscribeErrorMsg:
		m.submitting = false
		m.submitError = MsgSubmitFailed
		m.log.Error().Err(msg.Err).Msg("transcribe")
		return m, nil

	case PollTickMsg:
		if !m.pollActive(msg.Seq) {
			return m, nil
		}
		return m, statusCmd(m.pollCtx, m.svc, msg.OrderID, msg.Seq)

	case StatusResponseMsg:
		if !m.pollActive(msg.Seq) {
			return m, nil
		}
		m.submitError = ""
		m.job = m.job.Apply(msg.Response)
		if !m.job.Terminal() {
			return m, pollTickCmd(m.pollInterval, msg.OrderID, msg.Seq)
		}
		m.stopPolling()
		m.log.Info().Str("order_id", msg.OrderID).Msg("transcription complete")
		if m.store != nil {
			rec := db.Transcription{OrderID: msg.OrderID, Text: m.transcription}
			if m.artifact != nil {
				rec.FileName = m.artifact.Name
				rec.Source = m.artifact.Source.String()
			}
			return m, saveTranscriptionCmd(m.store, m.log, rec)
		}
		return m, nil

	case StatusErrorMsg:
		if !m.pollActive(msg.Seq) {
			return m, nil
		}
		if errors.Is(msg.Err, context.Canceled) {
			return m, nil
		}
		m.log.Error().Err(msg.Err).Str("order_id", msg.OrderID).Msg("status poll")
		m.submitError = ""
		m.job = m.job.Fail()
		m.stopPolling()
		return m, nil

	case CheckInResponseMsg:
		m.checkingIn = false
		m.checkInMessage = msg.Response.Message
		m.log.Info().Interface("record", msg.Response.Record).Msg("check-in recorded")
		if m.store != nil {
			return m, saveCheckInCmd(m.store, m.log, db.CheckIn{
				Username:       m.username,
				RecitedPages:   m.recitedPages,
				ReciteDuration: m.reciteDuration,
				Message:        msg.Response.Message,
			})
		}
		return m, nil

	case CheckInErrorMsg:
		m.checkingIn = false
		m.checkInMessage = checkin.MsgFailed
		m.log.Error().Err(msg.Err).Msg("check-in")
		return m, nil

	case PlaybackDoneMsg:
		m.playing = false
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.log.Warn().Err(msg.Err).Msg("playback")
			return m, m.setTransientError(msg.Err.Error())
		}
		return m, nil

	case HistoryLoadedMsg:
		m.history = msg.Transcriptions
		return m, nil

	case ClearTransientErrorMsg:
		if m.errorTransient {
			m.errorMessage = ""
			m.errorTransient = false
		}
		return m, nil
	}

	return m, nil
}

// startJob records the new order and starts its poll loop. The order id is
// handed to the loop directly.
func (m *Model) startJob(resp api.TranscribeResponse) tea.Cmd {
	m.stopPolling()
	m.pollSeq++
	m.pollCtx, m.pollCancel = context.WithCancel(m.ctx)
	m.job = job.Start(resp.OrderID)

	text, err := lattice.Parse(resp.Transcription)
	if err != nil {
		m.log.Warn().Err(err).Str("order_id", resp.OrderID).Msg("parse transcription")
		text = lattice.ParseErrorText
	}
	m.transcription = text
	m.log.Info().Str("order_id", resp.OrderID).Msg("transcription submitted")

	return pollTickCmd(m.pollInterval, resp.OrderID, m.pollSeq)
}

// pollActive reports whether seq belongs to the running poll loop.
func (m Model) pollActive(seq int) bool {
	return seq == m.pollSeq && m.job.State == job.Processing && m.pollCtx != nil
}

func (m *Model) stopPolling() {
	if m.pollCancel != nil {
		m.pollCancel()
		m.pollCancel = nil
	}
}

// replaceArtifact swaps in a new artifact and releases the old one.
func (m *Model) replaceArtifact(a *audio.Artifact) {
	if m.artifact != nil && m.artifact != a {
		if err := m.artifact.Release(); err != nil {
			m.log.Warn().Err(err).Msg("release audio")
		}
	}
	m.artifact = a
}

func (m *Model) setTransientError(text string) tea.Cmd {
	m.errorMessage = text
	m.errorTransient = true
	return clearTransientErrorCmd()
}

// transcribe validates and submits the current artifact.
func (m Model) transcribe() (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	if m.artifact == nil {
		return m, m.setTransientError(MsgNeedAudio)
	}

	if !m.startTime.IsZero() {
		if m.artifact.Source == audio.Uploaded && m.uploadDuration == checkin.UploadNone {
			m.reciteDuration = 0
		} else {
			m.reciteDuration = checkin.ElapsedSeconds(m.startTime, m.now())
		}
	}

	m.submitting = true
	m.submitError = ""
	return m, transcribeCmd(m.ctx, m.svc, m.artifact.Upload())
}

// checkIn validates the form and posts it.
func (m Model) checkIn() (tea.Model, tea.Cmd) {
	if m.checkingIn {
		return m, nil
	}
	req := checkin.Request{
		Username:       m.username,
		RecitedPages:   m.recitedPages,
		ReciteDuration: m.reciteDuration,
	}
	if err := req.Validate(); err != nil {
		m.checkInMessage = checkin.MsgIncomplete
		return m, nil
	}
	m.checkingIn = true
	return m, checkInCmd(m.ctx, m.svc, req.Wire())
}

// toggleRecording starts a session or stops the active one.
func (m Model) toggleRecording() (tea.Model, tea.Cmd) {
	if m.starting || m.stopping || m.recorder == nil {
		return m, nil
	}
	if m.capture != nil {
		m.stopping = true
		return m, stopRecordingCmd(m.capture)
	}
	m.starting = true
	return m, startRecordingCmd(m.ctx, m.recorder)
}

// shutdown stops polling and recording and releases the artifact. The panel
// context is cancelled first so a stuck ffmpeg is killed rather than awaited.
func (m *Model) shutdown() {
	m.stopPolling()
	m.cancel()
	if m.capture != nil {
		if a, err := m.capture.Stop(); err == nil {
			_ = a.Release()
		}
		m.capture = nil
	}
	if err := m.artifact.Release(); err != nil {
		m.log.Warn().Err(err).Msg("release audio")
	}
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == KeyCtrlC {
		m.shutdown()
		return m, tea.Quit
	}
	if m.focus != FieldNone {
		return m.handleInputKey(msg)
	}

	switch key {
	case KeyQuit, KeyQuitUpper:
		m.shutdown()
		return m, tea.Quit

	case KeySpace:
		return m.toggleRecording()

	case KeyTab:
		m.focus = FieldUpload
		return m, nil

	case KeyShiftTab:
		m.focus = FieldPages
		return m, nil

	case KeyUpload:
		m.focus = FieldUpload
		return m, nil

	case KeyTranscribe:
		return m.transcribe()

	case KeyCheckIn:
		return m.checkIn()

	case KeyPlay:
		if m.artifact == nil || m.player == nil || m.playing {
			return m, nil
		}
		m.playing = true
		return m, playCmd(m.ctx, m.player, m.artifact)
	}

	return m, nil
}

// handleInputKey edits the focused text field.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEsc:
		m.focus = FieldNone
		return m, nil

	case KeyTab:
		m.focus = (m.focus + 1) % (FieldPages + 1)
		return m, nil

	case KeyShiftTab:
		m.focus = (m.focus + FieldPages) % (FieldPages + 1)
		return m, nil

	case KeyEnter:
		switch m.focus {
		case FieldUpload:
			if m.uploadPath == "" {
				return m, nil
			}
			return m, loadFileCmd(m.uploadPath, m.now())
		case FieldUsername:
			m.focus = FieldPages
			return m, nil
		case FieldPages:
			m.focus = FieldNone
			return m.checkIn()
		}
		return m, nil

	case KeyBackspace:
		m.editField(func(s string) string {
			r := []rune(s)
			if len(r) == 0 {
				return s
			}
			return string(r[:len(r)-1])
		})
		return m, nil
	}

	switch msg.Type {
	case tea.KeyRunes:
		m.editField(func(s string) string { return s + string(msg.Runes) })
	case tea.KeySpace:
		m.editField(func(s string) string { return s + " " })
	}
	return m, nil
}

func (m *Model) editField(edit func(string) string) {
	switch m.focus {
	case FieldUpload:
		m.uploadPath = edit(m.uploadPath)
	case FieldUsername:
		m.username = edit(m.username)
	case FieldPages:
		m.recitedPages = edit(m.recitedPages)
	}
}
