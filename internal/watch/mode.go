package watch

// Mode is the UI mode. Exactly one of Normal or Adding is active; the input
// buffer exists only inside Adding.
type Mode interface {
	isMode()
}

// Normal is the browsing mode.
type Normal struct{}

// Adding collects a new code in Input.
type Adding struct {
	Input string
}

func (Normal) isMode() {}
func (Adding) isMode() {}

// ModeName returns a short label for m, used in logs and the status bar.
func ModeName(m Mode) string {
	switch m.(type) {
	case Adding:
		return "adding"
	default:
		return "normal"
	}
}
