package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jwulff/recite/internal/checkin"
	"github.com/jwulff/recite/internal/job"
	"github.com/jwulff/recite/internal/lattice"
	"github.com/jwulff/recite/internal/ui"
)

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	divider := ui.DividerStyle.Render(strings.Repeat("─", m.width))

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, divider)
	sections = append(sections, m.renderRecordSection())
	sections = append(sections, m.renderUploadSection())

	if m.transcription != "" {
		sections = append(sections, m.renderTranscription())
	}
	if status := m.statusMessage(); status != "" {
		sections = append(sections, m.renderStatus(status))
	}

	sections = append(sections, m.renderCheckIn())

	if len(m.history) > 0 {
		sections = append(sections, m.renderHistory())
	}

	sections = append(sections, divider)
	if m.errorMessage != "" {
		sections = append(sections, m.renderErrorBar())
	}
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// statusMessage is the job line, or the submit failure if the last submit failed.
func (m Model) statusMessage() string {
	if m.submitting {
		return "Uploading audio..."
	}
	if m.submitError != "" {
		return m.submitError
	}
	return m.job.Message()
}

func (m Model) renderHeader() string {
	return ui.TitleStyle.Render("AUDIO TRANSCRIPTION APP") + "\n" +
		ui.PanelTitleStyle.Render("Audio to Text with Check-in")
}

func (m Model) renderRecordSection() string {
	lines := []string{ui.HeaderStyle.Render("RECORD AUDIO")}

	var dot string
	switch {
	case m.capture != nil:
		dot = ui.RecordingDotStyle.Render("● REC") +
			ui.DimStyle.Render(" since "+m.capture.StartedAt().Format("15:04:05"))
	case m.starting:
		dot = ui.SpinnerStyle.Render("⟳ starting microphone...")
	case m.stopping:
		dot = ui.SpinnerStyle.Render("⟳ finishing recording...")
	default:
		dot = ui.IdleDotStyle.Render("○ IDLE")
	}
	lines = append(lines, "  "+dot)

	if m.artifact != nil {
		info := fmt.Sprintf("%s  %s  %s", m.artifact.Name, m.artifact.Source, humanize.Bytes(uint64(len(m.artifact.Data))))
		lines = append(lines, "  "+ui.SourceLabelStyle.Render("♪ ")+truncateToWidth(info, max(10, m.width-4)))
		if url := m.artifact.PlaybackURL(); url != "" {
			lines = append(lines, "  "+ui.DimStyle.Render(truncateToWidth(url, max(10, m.width-4))))
		}
		if m.playing {
			lines = append(lines, "  "+ui.LiveBadgeStyle.Render("▶ playing"))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderUploadSection() string {
	return ui.HeaderStyle.Render("UPLOAD AUDIO") + "\n" +
		m.renderField("File", m.uploadPath, FieldUpload, "path to an audio file")
}

func (m Model) renderTranscription() string {
	lines := []string{ui.HeaderStyle.Render("TRANSCRIPTION")}
	style := ui.TranscriptStyle
	if m.transcription == lattice.ParseErrorText {
		style = ui.ErrorTextStyle
	}
	for _, l := range wrapText(m.transcription, max(10, m.width-4)) {
		lines = append(lines, "  "+style.Render(l))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatus(status string) string {
	style := ui.StatusWarnStyle
	switch {
	case m.submitError != "" || m.job.State == job.Failed:
		style = ui.ErrorStyle
	case m.job.State == job.Complete && !m.submitting:
		style = ui.LevelGreenStyle
	}
	return "  " + ui.StatusBarStyle.Render("▌ ") + style.Render(status)
}

func (m Model) renderCheckIn() string {
	lines := []string{ui.HeaderStyle.Render("CHECK-IN")}
	lines = append(lines, m.renderField("Username", m.username, FieldUsername, ""))
	lines = append(lines, m.renderField("Pages", m.recitedPages, FieldPages, "e.g. 1,2,3"))
	lines = append(lines, "  "+ui.DimStyle.Render("Duration: ")+checkin.FormatDuration(m.reciteDuration))
	if m.checkingIn {
		lines = append(lines, "  "+ui.SpinnerStyle.Render("⟳ checking in..."))
	} else if m.checkInMessage != "" {
		lines = append(lines, "  "+ui.CheckInMessageStyle.Render(m.checkInMessage))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHistory() string {
	lines := []string{ui.HeaderStyle.Render(fmt.Sprintf("RECENT (%d)", len(m.history)))}
	for _, h := range m.history {
		ts := ui.TimestampStyle.Render(h.CreatedAt.Format("[Jan 02 15:04]"))
		lines = append(lines, "  "+ts+" "+truncateToWidth(h.Text, max(10, m.width-20)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderField(label, value string, field Field, placeholder string) string {
	focused := m.focus == field
	styledLabel := ui.DimStyle.Render(padRight(label+":", 10))
	if focused {
		styledLabel = ui.SelectedStyle.Render(padRight(label+":", 10))
	}

	var content string
	switch {
	case value == "" && !focused && placeholder != "":
		content = ui.DimStyle.Render(placeholder)
	case focused:
		content = value + ui.PartialTextStyle.Render("▌")
	default:
		content = value
	}

	marker := "  "
	if focused {
		marker = ui.SelectedStyle.Render("> ")
	}
	return marker + styledLabel + content
}

func (m Model) renderErrorBar() string {
	return ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(m.errorMessage)
}

func (m Model) renderFooter() string {
	key := func(k, desc string) string {
		return ui.FooterKeyStyle.Render(k) + ui.FooterDescStyle.Render(" "+desc)
	}

	var parts []string
	if m.focus != FieldNone {
		parts = append(parts, key("Enter", "Confirm"), key("Tab", "Next"), key("Esc", "Done"))
		return strings.Join(parts, "  ")
	}

	if m.capture != nil {
		parts = append(parts, key("Space", "Stop"))
	} else {
		parts = append(parts, key("Space", "Record"))
	}
	parts = append(parts, key("u", "Upload"))
	if m.artifact != nil {
		parts = append(parts, key("t", "Transcribe"), key("p", "Play"))
	}
	parts = append(parts, key("Tab", "Form"), key("c", "Check-in"), key("q", "Quit"))
	return strings.Join(parts, "  ")
}

// Helpers

func padRight(s string, width int) string {
	// Get visible length (ignoring ANSI codes)
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncateToWidth(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible <= width {
		return s
	}
	// Simple truncation for non-styled strings
	runes := []rune(s)
	if len(runes) > width-1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}

// wrapText breaks text into lines of at most width runes. Long words are
// split, since transcripts in some languages carry no spaces at all.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current []rune
		for _, word := range strings.Fields(paragraph) {
			w := []rune(word)
			for len(w) > width {
				if len(current) > 0 {
					lines = append(lines, string(current))
					current = nil
				}
				lines = append(lines, string(w[:width]))
				w = w[width:]
			}
			switch {
			case len(current) == 0:
				current = w
			case len(current)+1+len(w) <= width:
				current = append(append(current, ' '), w...)
			default:
				lines = append(lines, string(current))
				current = w
			}
		}
		lines = append(lines, string(current))
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
