package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"blog_ai_editor/editor"
	"blog_ai_editor/toolbar"
)

var (
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	addedColor   = color.New(color.FgGreen)
	removedColor = color.New(color.FgRed)
)

// consoleNotifier prints toolbar notifications as coloured lines.
type consoleNotifier struct {
	w io.Writer
}

func newConsoleNotifier(w io.Writer) consoleNotifier {
	return consoleNotifier{w: w}
}

func (n consoleNotifier) Notify(level toolbar.Level, message string) {
	switch level {
	case toolbar.LevelSuccess:
		successColor.Fprintf(n.w, "✓ %s\n", message)
	case toolbar.LevelWarning:
		warningColor.Fprintf(n.w, "! %s\n", message)
	default:
		errorColor.Fprintf(n.w, "✗ %s\n", message)
	}
}

// printDiff shows the markup change made by the action, one block per line.
func printDiff(w io.Writer, before, after string) {
	lines := editor.Diff(before, after)
	if !editor.Changed(lines) {
		fmt.Fprintln(w, "(cap canvi)")
		return
	}
	for _, l := range lines {
		switch l.Type {
		case editor.LineAdded:
			addedColor.Fprintf(w, "+ %s\n", l.Text)
		case editor.LineRemoved:
			removedColor.Fprintf(w, "- %s\n", l.Text)
		default:
			fmt.Fprintf(w, "  %s\n", l.Text)
		}
	}
}
