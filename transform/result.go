package transform

import (
	"errors"

	"blog_ai_editor/markup"
)

// ErrMalformedResult marks a response whose result does not have the shape
// the invoked action produces.
var ErrMalformedResult = errors.New("malformed transformation result")

// ResultKind tags the variant held by a Result.
type ResultKind int

const (
	KindText ResultKind = iota
	KindList
	KindOutline
)

func (k ResultKind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindOutline:
		return "outline"
	default:
		return "text"
	}
}

// ExpectedKind returns the result variant an action produces on success.
func ExpectedKind(a ActionID) ResultKind {
	switch a {
	case GenerateTitle, SuggestTags:
		return KindList
	case GenerateOutline:
		return KindOutline
	default:
		return KindText
	}
}

// Result is a successful transformation. Only the field matching Kind is set.
type Result struct {
	Kind    ResultKind
	Text    string
	List    []string
	Outline markup.Outline
}

func TextResult(s string) Result { return Result{Kind: KindText, Text: s} }

func ListResult(l []string) Result { return Result{Kind: KindList, List: l} }

func OutlineResult(o markup.Outline) Result { return Result{Kind: KindOutline, Outline: o} }
