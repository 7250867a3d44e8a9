package app

// Key binding constants used in handleKey.
const (
	KeyQuit       = "q"
	KeyQuitUpper  = "Q"
	KeyCtrlC      = "ctrl+c"
	KeySpace      = " "
	KeyTab        = "tab"
	KeyShiftTab   = "shift+tab"
	KeyEnter      = "enter"
	KeyEsc        = "esc"
	KeyBackspace  = "backspace"
	KeyUpload     = "u"
	KeyTranscribe = "t"
	KeyCheckIn    = "c"
	KeyPlay       = "p"
)
