package tui

// InputMode controls how the editor interprets the Enter key. In normal
// mode Enter submits the draft; in compose mode Enter inserts a newline
// and the draft is submitted with Ctrl+S.
type InputMode int

const (
	ModeNormal InputMode = iota
	ModeCompose
)

// String returns the mode name shown in the status bar
func (m InputMode) String() string {
	if m == ModeCompose {
		return "compose"
	}
	return "normal"
}

// Toggle flips between the two modes
func (m InputMode) Toggle() InputMode {
	if m == ModeNormal {
		return ModeCompose
	}
	return ModeNormal
}

// SendsOnEnter reports whether Enter submits the draft in this mode
func (m InputMode) SendsOnEnter() bool {
	return m == ModeNormal
}

// Placeholder returns the editor placeholder for this mode
func (m InputMode) Placeholder() string {
	if m == ModeCompose {
		return "Compose your answer... (Ctrl+S to send)"
	}
	return "Type your answer... (Enter to send)"
}
