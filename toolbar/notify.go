package toolbar

import "github.com/atotto/clipboard"

// Level is the severity of a user notification.
type Level int

const (
	LevelSuccess Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "success"
	}
}

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

// Clipboard receives values the host has no field for.
type Clipboard interface {
	WriteText(text string) error
}

// SystemClipboard writes to the operating system clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

// Hooks are the host fields results can be routed to. Any of them may be nil,
// in which case the value is copied to the clipboard instead.
type Hooks struct {
	AcceptTitle   func(title string)
	AcceptTags    func(tags []string)
	AcceptExcerpt func(excerpt string)
}
