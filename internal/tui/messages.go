package tui

// loadedMsg reports that a fetch for table key finished.
type loadedMsg struct {
	key string
	err error
}

// exportedMsg reports a finished export.
type exportedMsg struct {
	path string
	err  error
}

// DoneMsg is a status line message.
type DoneMsg string

// ErrMsg carries an error to the status line.
type ErrMsg struct{ Err error }
