package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jwulff/recite/internal/api"
	"github.com/jwulff/recite/internal/audio"
	"github.com/jwulff/recite/internal/checkin"
	"github.com/jwulff/recite/internal/job"
	"github.com/jwulff/recite/internal/lattice"
	"github.com/rs/zerolog"

	tea "github.com/charmbracelet/bubbletea"
)

// fakeService scripts the remote service and records what the panel sent.
type fakeService struct {
	mu sync.Mutex

	transcribe    api.TranscribeResponse
	transcribeErr error
	statuses      []api.StatusResponse
	statusErr     error
	checkIn       api.CheckInResponse
	checkInErr    error

	uploads     []api.Audio
	statusCalls []string
	checkIns    []api.CheckInRequest
}

func (f *fakeService) Transcribe(_ context.Context, a api.Audio) (api.TranscribeResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, a)
	return f.transcribe, f.transcribeErr
}

func (f *fakeService) Status(_ context.Context, orderID string) (api.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, orderID)
	if f.statusErr != nil {
		return api.StatusResponse{}, f.statusErr
	}
	if len(f.statuses) == 0 {
		return api.StatusResponse{Status: "pending"}, nil
	}
	resp := f.statuses[0]
	f.statuses = f.statuses[1:]
	return resp, nil
}

func (f *fakeService) RecordRecitation(_ context.Context, in api.CheckInRequest) (api.CheckInResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkIns = append(f.checkIns, in)
	return f.checkIn, f.checkInErr
}

type fakeCapture struct {
	started time.Time
	data    []byte
	done    chan struct{}

	ctx          context.Context
	stopped      int
	ctxErrAtStop error
}

func (c *fakeCapture) StartedAt() time.Time { return c.started }

func (c *fakeCapture) Done() <-chan struct{} { return c.done }

func (c *fakeCapture) Stop() (*audio.Artifact, error) {
	c.stopped++
	if c.ctx != nil {
		c.ctxErrAtStop = c.ctx.Err()
	}
	return audio.NewRecorded(c.data, c.started)
}

type fakeRecorder struct {
	capture *fakeCapture
	err     error
}

func (r *fakeRecorder) Start(ctx context.Context) (audio.Capture, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.capture.ctx = ctx
	return r.capture, nil
}

type fakePlayer struct {
	played []string
}

func (p *fakePlayer) Play(_ context.Context, a *audio.Artifact) error {
	p.played = append(p.played, a.PlaybackPath())
	return nil
}

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestModel(svc *fakeService) Model {
	return New(Deps{
		Service:      svc,
		Log:          zerolog.Nop(),
		PollInterval: time.Millisecond,
		Now:          func() time.Time { return testNow },
	})
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// withArtifact gives m a recorded clip that started secs before testNow.
func withArtifact(t *testing.T, m Model, secs int) Model {
	t.Helper()
	start := testNow.Add(-time.Duration(secs) * time.Second)
	a, err := audio.NewRecorded([]byte("RIFF"), start)
	if err != nil {
		t.Fatalf("NewRecorded: %v", err)
	}
	t.Cleanup(func() { _ = a.Release() })
	m.artifact = a
	m.startTime = start
	return m
}

// submit presses t and feeds the service answer back into the model.
func submit(t *testing.T, m Model) Model {
	t.Helper()
	m, cmd := applyUpdate(m, keyRunes(KeyTranscribe))
	if cmd == nil {
		t.Fatal("expected transcribe command")
	}
	m, _ = applyUpdate(m, cmd())
	return m
}

// poll runs one tick of the active poll loop through Update.
func poll(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	m, cmd := applyUpdate(m, PollTickMsg{OrderID: m.job.OrderID, Seq: m.pollSeq})
	if cmd == nil {
		t.Fatal("expected status command")
	}
	return applyUpdate(m, cmd())
}

func latticeFor(t *testing.T, segments ...[]string) string {
	t.Helper()
	raw, err := lattice.Encode(segments)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return raw
}

func TestNewModel(t *testing.T) {
	m := New(Deps{})
	if m.job.State != job.Idle {
		t.Errorf("job state = %v, want idle", m.job.State)
	}
	if m.focus != FieldNone {
		t.Error("new model should not focus a field")
	}
	if m.pollInterval != job.DefaultInterval {
		t.Errorf("poll interval = %v, want %v", m.pollInterval, job.DefaultInterval)
	}
	if m.uploadDuration != checkin.UploadElapsed {
		t.Errorf("upload duration = %q", m.uploadDuration)
	}
	if m.reciteDuration != 0 || m.transcription != "" || m.checkInMessage != "" {
		t.Error("new model should start empty")
	}
}

func TestTranscribeWithoutAudio(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc)

	m, cmd := applyUpdate(m, keyRunes(KeyTranscribe))

	if m.errorMessage != MsgNeedAudio {
		t.Errorf("error = %q, want %q", m.errorMessage, MsgNeedAudio)
	}
	if m.submitting {
		t.Error("should not be submitting")
	}
	if cmd == nil {
		t.Error("expected transient error clear command")
	}
	if len(svc.uploads) != 0 {
		t.Errorf("uploads = %d, want 0", len(svc.uploads))
	}
}

func TestTranscribeSetsDurationAndStartsJob(t *testing.T) {
	svc := &fakeService{transcribe: api.TranscribeResponse{
		OrderID:       "order-1",
		Transcription: latticeFor(t, []string{"Hello", " "}, []string{"world"}),
	}}
	m := withArtifact(t, newTestModel(svc), 65)

	m = submit(t, m)

	if m.reciteDuration != 65 {
		t.Errorf("duration = %d, want 65", m.reciteDuration)
	}
	if len(svc.uploads) != 1 || svc.uploads[0].FileName != m.artifact.Name {
		t.Fatalf("uploads = %+v", svc.uploads)
	}
	if m.transcription != "Hello world" {
		t.Errorf("transcription = %q", m.transcription)
	}
	if m.job.State != job.Processing || m.job.OrderID != "order-1" {
		t.Errorf("job = %+v", m.job)
	}
	if got := m.statusMessage(); got != job.MsgProcessing {
		t.Errorf("status = %q, want %q", got, job.MsgProcessing)
	}
}

func TestTranscribeMalformedLattice(t *testing.T) {
	svc := &fakeService{transcribe: api.TranscribeResponse{OrderID: "o", Transcription: "not json"}}
	m := submit(t, withArtifact(t, newTestModel(svc), 5))

	if m.transcription != lattice.ParseErrorText {
		t.Errorf("transcription = %q", m.transcription)
	}
	if m.job.State != job.Processing {
		t.Error("polling should start even when parsing fails")
	}
}

func TestTranscribeError(t *testing.T) {
	svc := &fakeService{transcribeErr: errors.New("connection refused")}
	m := submit(t, withArtifact(t, newTestModel(svc), 5))

	if m.submitting {
		t.Error("should not be submitting after error")
	}
	if m.statusMessage() != MsgSubmitFailed {
		t.Errorf("status = %q", m.statusMessage())
	}
	if m.job.State != job.Idle {
		t.Error("no job should start")
	}
}

func TestPollSequence(t *testing.T) {
	svc := &fakeService{
		transcribe: api.TranscribeResponse{OrderID: "X", Transcription: latticeFor(t, []string{"hi"})},
		statuses: []api.StatusResponse{
			{Status: "pending", EstimatedTime: api.Float64Ptr(20)},
			{Status: "pending", EstimatedTime: api.Float64Ptr(10)},
			{Status: api.StatusCompleted},
		},
	}
	m := submit(t, withArtifact(t, newTestModel(svc), 5))

	want := []string{
		"Processing... Estimated time remaining: 20 seconds",
		"Processing... Estimated time remaining: 10 seconds",
		job.MsgComplete,
	}
	var cmd tea.Cmd
	for i, w := range want {
		m, cmd = poll(t, m)
		if got := m.statusMessage(); got != w {
			t.Errorf("poll %d: status = %q, want %q", i+1, got, w)
		}
	}
	if cmd != nil {
		t.Error("no further tick should be scheduled after completion")
	}

	// A late tick from the finished loop is ignored.
	m, cmd = applyUpdate(m, PollTickMsg{OrderID: "X", Seq: m.pollSeq})
	if cmd != nil {
		t.Error("tick after completion should not poll")
	}
	if len(svc.statusCalls) != 3 {
		t.Errorf("status calls = %d, want 3", len(svc.statusCalls))
	}
	for _, id := range svc.statusCalls {
		if id != "X" {
			t.Errorf("polled %q, want X", id)
		}
	}
}

func TestPollFractionalEstimate(t *testing.T) {
	svc := &fakeService{
		transcribe: api.TranscribeResponse{OrderID: "X", Transcription: latticeFor(t, []string{"hi"})},
		statuses:   []api.StatusResponse{{Status: "pending", EstimatedTime: api.Float64Ptr(12.5)}},
	}
	m := submit(t, withArtifact(t, newTestModel(svc), 5))
	m, _ = poll(t, m)

	if got := m.statusMessage(); got != "Processing... Estimated time remaining: 12.5 seconds" {
		t.Errorf("status = %q", got)
	}
}

func TestStaleSeqIgnored(t *testing.T) {
	svc := &fakeService{transcribe: api.TranscribeResponse{OrderID: "A", Transcription: latticeFor(t, []string{"a"})}}
	m := submit(t, withArtifact(t, newTestModel(svc), 5))
	oldSeq := m.pollSeq

	svc.transcribe = api.TranscribeResponse{OrderID: "B", Transcription: latticeFor(t, []string{"b"})}
	m = submit(t, m)
	if m.pollSeq == oldSeq {
		t.Fatal("new job should start a new poll loop")
	}

	m, cmd := applyUpdate(m, PollTickMsg{OrderID: "A", Seq: oldSeq})
	if cmd != nil {
		t.Error("tick from the superseded loop should be dropped")
	}
	m, _ = applyUpdate(m, StatusResponseMsg{OrderID: "A", Seq: oldSeq, Response: api.StatusResponse{Status: api.StatusCompleted}})
	if m.job.State != job.Processing || m.job.OrderID != "B" {
		t.Errorf("job = %+v, want B processing", m.job)
	}
}

func TestStatusErrorFailsJob(t *testing.T) {
	svc := &fakeService{
		transcribe: api.TranscribeResponse{OrderID: "X", Transcription: latticeFor(t, []string{"hi"})},
		statusErr:  errors.New("boom"),
	}
	m := submit(t, withArtifact(t, newTestModel(svc), 5))

	m, cmd := poll(t, m)

	if m.job.State != job.Failed {
		t.Errorf("state = %v, want failed", m.job.State)
	}
	if m.statusMessage() != job.MsgFailed {
		t.Errorf("status = %q", m.statusMessage())
	}
	if cmd != nil {
		t.Error("failed job should not schedule another poll")
	}
}

func TestCheckInIncomplete(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc)
	m.username = "alice"
	m.recitedPages = "1,2"

	m, cmd := applyUpdate(m, keyRunes(KeyCheckIn))

	if m.checkInMessage != checkin.MsgIncomplete {
		t.Errorf("message = %q", m.checkInMessage)
	}
	if cmd != nil {
		t.Error("incomplete check-in should not issue a request")
	}
	if len(svc.checkIns) != 0 {
		t.Error("no request should be sent")
	}
}

func TestCheckInSuccess(t *testing.T) {
	svc := &fakeService{
		transcribe: api.TranscribeResponse{OrderID: "X", Transcription: latticeFor(t, []string{"hi"})},
		checkIn:    api.CheckInResponse{Message: "Check-in recorded for alice"},
	}
	m := submit(t, withArtifact(t, newTestModel(svc), 90))
	m.username = "alice"
	m.recitedPages = "1,2,3"

	m, cmd := applyUpdate(m, keyRunes(KeyCheckIn))
	if cmd == nil || !m.checkingIn {
		t.Fatal("expected check-in request")
	}
	m, _ = applyUpdate(m, cmd())

	if m.checkInMessage != "Check-in recorded for alice" {
		t.Errorf("message = %q", m.checkInMessage)
	}
	want := api.CheckInRequest{Username: "alice", RecitedPages: "1,2,3", ReciteDuration: 90}
	if len(svc.checkIns) != 1 || svc.checkIns[0] != want {
		t.Errorf("check-ins = %+v, want %+v", svc.checkIns, want)
	}
}

func TestCheckInFailure(t *testing.T) {
	svc := &fakeService{checkInErr: errors.New("503")}
	m := newTestModel(svc)
	m.username = "alice"
	m.recitedPages = "4"
	m.reciteDuration = 12

	m, cmd := applyUpdate(m, keyRunes(KeyCheckIn))
	m, _ = applyUpdate(m, cmd())

	if m.checkInMessage != checkin.MsgFailed {
		t.Errorf("message = %q, want %q", m.checkInMessage, checkin.MsgFailed)
	}
	if m.checkingIn {
		t.Error("should not be checking in after failure")
	}
}

func TestUploadDurationNone(t *testing.T) {
	svc := &fakeService{transcribe: api.TranscribeResponse{OrderID: "X", Transcription: latticeFor(t, []string{"hi"})}}
	m := New(Deps{
		Service:        svc,
		Log:            zerolog.Nop(),
		UploadDuration: checkin.UploadNone,
		Now:            func() time.Time { return testNow },
	})
	m = withArtifact(t, m, 40)
	m.artifact.Source = audio.Uploaded

	m = submit(t, m)

	if m.reciteDuration != 0 {
		t.Errorf("duration = %d, want 0", m.reciteDuration)
	}
}

func TestRecordingLifecycle(t *testing.T) {
	capture := &fakeCapture{started: testNow.Add(-3 * time.Second), data: []byte("RIFFdata")}
	m := New(Deps{
		Service:  &fakeService{},
		Recorder: &fakeRecorder{capture: capture},
		Log:      zerolog.Nop(),
	})

	m, cmd := applyUpdate(m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.starting || cmd == nil {
		t.Fatal("space should start recording")
	}
	m, _ = applyUpdate(m, cmd())
	if m.capture == nil {
		t.Fatal("capture should be active")
	}
	if !m.startTime.Equal(capture.started) {
		t.Errorf("start time = %v", m.startTime)
	}

	m, cmd = applyUpdate(m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.stopping || cmd == nil {
		t.Fatal("space should stop recording")
	}
	m, _ = applyUpdate(m, cmd())
	t.Cleanup(func() { _ = m.artifact.Release() })

	if m.capture != nil || m.stopping {
		t.Error("recording should be finished")
	}
	if m.artifact == nil || string(m.artifact.Data) != "RIFFdata" {
		t.Fatalf("artifact = %+v", m.artifact)
	}
	if m.artifact.PlaybackURL() == "" {
		t.Error("recorded artifact should be playable")
	}
}

func TestRecordingError(t *testing.T) {
	m := New(Deps{
		Recorder: &fakeRecorder{err: errors.New("no input device")},
		Log:      zerolog.Nop(),
	})

	m, cmd := applyUpdate(m, tea.KeyMsg{Type: tea.KeySpace})
	m, _ = applyUpdate(m, cmd())

	if m.capture != nil || m.starting {
		t.Error("should not be recording")
	}
	if !strings.HasPrefix(m.errorMessage, MsgMicUnavailable) {
		t.Errorf("error = %q", m.errorMessage)
	}
	if !m.errorTransient {
		t.Error("mic error should be transient")
	}
}

// runCmd runs a blocking command, failing the test if it does not return in time.
func runCmd(t *testing.T, cmd tea.Cmd, timeout time.Duration) tea.Msg {
	t.Helper()
	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()
	select {
	case msg := <-out:
		return msg
	case <-time.After(timeout):
		t.Fatalf("command did not return within %s", timeout)
		return nil
	}
}

func TestRecordingDeviceFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script recorder stub")
	}
	bin := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\necho 'permission denied' >&2\nexit 1\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	m := New(Deps{
		Recorder: audio.NewFFmpegRecorder(audio.RecorderConfig{Binary: bin, Device: "x"}, zerolog.Nop()),
		Log:      zerolog.Nop(),
	})

	m, cmd := applyUpdate(m, tea.KeyMsg{Type: tea.KeySpace})
	m, watch := applyUpdate(m, runCmd(t, cmd, 5*time.Second))
	if m.capture == nil || watch == nil {
		t.Fatal("capture should start and be watched")
	}

	ended := runCmd(t, watch, 5*time.Second)
	if _, ok := ended.(CaptureEndedMsg); !ok {
		t.Fatalf("watch returned %T", ended)
	}
	m, cmd = applyUpdate(m, ended)
	if cmd == nil {
		t.Fatal("unexpected exit should finalize the session")
	}
	m, _ = applyUpdate(m, runCmd(t, cmd, 10*time.Second))

	if m.capture != nil || m.stopping {
		t.Error("recording should no longer be active")
	}
	if !strings.HasPrefix(m.errorMessage, MsgMicUnavailable) || !strings.Contains(m.errorMessage, "permission denied") {
		t.Errorf("error = %q", m.errorMessage)
	}
	if !m.errorTransient {
		t.Error("mic error should be transient")
	}
	if m.artifact != nil {
		t.Error("no artifact should be kept from a failed capture")
	}
}

func TestCaptureEndAfterStopIgnored(t *testing.T) {
	capture := &fakeCapture{started: testNow, data: []byte("RIFF"), done: make(chan struct{})}
	m := New(Deps{Recorder: &fakeRecorder{capture: capture}, Log: zerolog.Nop()})

	m, cmd := applyUpdate(m, tea.KeyMsg{Type: tea.KeySpace})
	m, _ = applyUpdate(m, cmd())
	m, stop := applyUpdate(m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.stopping {
		t.Fatal("space should stop recording")
	}

	// The process exits because Stop asked it to.
	m, cmd = applyUpdate(m, CaptureEndedMsg{Capture: capture})
	if cmd != nil {
		t.Error("a requested stop should not be finalized twice")
	}
	m, _ = applyUpdate(m, stop())
	t.Cleanup(func() { _ = m.artifact.Release() })

	if capture.stopped != 1 {
		t.Errorf("stopped = %d, want 1", capture.stopped)
	}
	if m.errorMessage != "" {
		t.Errorf("error = %q, want none", m.errorMessage)
	}
}

func TestQuitCancelsBeforeStoppingCapture(t *testing.T) {
	capture := &fakeCapture{started: testNow, data: []byte("RIFF"), done: make(chan struct{})}
	m := New(Deps{Recorder: &fakeRecorder{capture: capture}, Log: zerolog.Nop()})

	m, cmd := applyUpdate(m, tea.KeyMsg{Type: tea.KeySpace})
	m, _ = applyUpdate(m, cmd())

	m, _ = applyUpdate(m, keyRunes(KeyQuit))

	if capture.stopped != 1 {
		t.Fatalf("stopped = %d, want 1", capture.stopped)
	}
	if !errors.Is(capture.ctxErrAtStop, context.Canceled) {
		t.Errorf("capture context at stop = %v, want canceled", capture.ctxErrAtStop)
	}
	if m.capture != nil {
		t.Error("capture should be cleared on quit")
	}
}

func TestSubmitErrorYieldsToRunningJob(t *testing.T) {
	svc := &fakeService{
		transcribe: api.TranscribeResponse{OrderID: "A", Transcription: latticeFor(t, []string{"a"})},
		statuses:   []api.StatusResponse{{Status: api.StatusCompleted}},
	}
	m := submit(t, withArtifact(t, newTestModel(svc), 5))

	svc.transcribeErr = errors.New("connection reset")
	m = submit(t, m)
	if m.statusMessage() != MsgSubmitFailed {
		t.Fatalf("status = %q, want %q", m.statusMessage(), MsgSubmitFailed)
	}
	if m.job.OrderID != "A" || m.job.State != job.Processing {
		t.Fatalf("job = %+v, want A still processing", m.job)
	}

	m, _ = poll(t, m)
	if got := m.statusMessage(); got != job.MsgComplete {
		t.Errorf("status = %q, want %q", got, job.MsgComplete)
	}
}

func TestReplaceArtifactReleasesOld(t *testing.T) {
	m := withArtifact(t, newTestModel(&fakeService{}), 1)
	old := m.artifact
	path := old.PlaybackPath()

	next, err := audio.NewRecorded([]byte("new"), testNow)
	if err != nil {
		t.Fatalf("NewRecorded: %v", err)
	}
	t.Cleanup(func() { _ = next.Release() })

	m, _ = applyUpdate(m, RecordingStoppedMsg{Artifact: next})

	if m.artifact != next {
		t.Error("artifact should be replaced")
	}
	if old.PlaybackPath() != "" {
		t.Errorf("old artifact still playable at %s", path)
	}
}

func TestPlayback(t *testing.T) {
	player := &fakePlayer{}
	m := withArtifact(t, New(Deps{Player: player, Log: zerolog.Nop()}), 1)

	m, cmd := applyUpdate(m, keyRunes(KeyPlay))
	if !m.playing || cmd == nil {
		t.Fatal("p should start playback")
	}
	m, _ = applyUpdate(m, cmd())

	if m.playing {
		t.Error("playback should be finished")
	}
	if len(player.played) != 1 || player.played[0] != m.artifact.PlaybackPath() {
		t.Errorf("played = %v", player.played)
	}
}

func TestFormEditing(t *testing.T) {
	m := newTestModel(&fakeService{})

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != FieldUpload {
		t.Fatalf("focus = %v, want upload", m.focus)
	}
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != FieldUsername {
		t.Fatalf("focus = %v, want username", m.focus)
	}

	for _, r := range "bobq" {
		m, _ = applyUpdate(m, keyRunes(string(r)))
	}
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.username != "bob" {
		t.Errorf("username = %q, want bob", m.username)
	}

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.focus != FieldPages {
		t.Fatalf("enter should move to pages, focus = %v", m.focus)
	}
	m, _ = applyUpdate(m, keyRunes("1,2"))
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeySpace})
	m, _ = applyUpdate(m, keyRunes("3"))
	if m.recitedPages != "1,2 3" {
		t.Errorf("pages = %q", m.recitedPages)
	}

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.focus != FieldNone {
		t.Error("esc should leave the form")
	}
}

func TestEnterOnPagesChecksIn(t *testing.T) {
	m := newTestModel(&fakeService{})
	m.focus = FieldPages
	m.username = "alice"
	m.recitedPages = "7"

	m, cmd := applyUpdate(m, tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("zero duration should not submit")
	}
	if m.checkInMessage != checkin.MsgIncomplete {
		t.Errorf("message = %q", m.checkInMessage)
	}
}

func TestClearTransientError(t *testing.T) {
	m := newTestModel(&fakeService{})
	m.errorMessage = "temporary"
	m.errorTransient = true

	m, _ = applyUpdate(m, ClearTransientErrorMsg{})
	if m.errorMessage != "" {
		t.Errorf("error = %q, want cleared", m.errorMessage)
	}
}

func TestQuitReleasesArtifact(t *testing.T) {
	m := withArtifact(t, newTestModel(&fakeService{}), 1)
	a := m.artifact

	m, cmd := applyUpdate(m, keyRunes(KeyQuit))

	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected quit message")
	}
	if a.PlaybackPath() != "" {
		t.Error("artifact should be released on quit")
	}
	if m.ctx.Err() == nil {
		t.Error("panel context should be cancelled")
	}
}

func TestViewRendersWithSize(t *testing.T) {
	svc := &fakeService{transcribe: api.TranscribeResponse{OrderID: "X", Transcription: latticeFor(t, []string{"hello"})}}
	m := submit(t, withArtifact(t, newTestModel(svc), 125))
	m.width = 80
	m.height = 24

	view := m.View()
	for _, want := range []string{
		"AUDIO TRANSCRIPTION APP",
		"Audio to Text with Check-in",
		"hello",
		job.MsgProcessing,
		"Duration:",
		"2m 5s",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewWithoutSize(t *testing.T) {
	m := New(Deps{})
	view := m.View()
	if view != "Initializing..." {
		t.Errorf("view without size = %q, want 'Initializing...'", view)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("the quick brown fox", 9)
	want := []string{"the quick", "brown fox"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("wrapText = %q, want %q", lines, want)
	}

	lines = wrapText("你好世界你好世界", 4)
	if len(lines) != 2 || lines[0] != "你好世界" {
		t.Errorf("wrapText unspaced = %q", lines)
	}
}

func applyUpdate(m Model, msg tea.Msg) (Model, tea.Cmd) {
	newModel, cmd := m.Update(msg)
	return newModel.(Model), cmd
}
