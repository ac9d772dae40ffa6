// Package transform is the client side of the AI transformation endpoint.
package transform

import "fmt"

// ActionID names one transformation the endpoint knows.
type ActionID string

const (
	GenerateArticle ActionID = "generate-article"
	GenerateOutline ActionID = "generate-outline"
	ImproveText     ActionID = "improve-text"
	ExpandText      ActionID = "expand-text"
	SimplifyText    ActionID = "simplify-text"
	FixGrammar      ActionID = "fix-grammar"
	GenerateTitle   ActionID = "generate-title"
	GenerateExcerpt ActionID = "generate-excerpt"
	SuggestTags     ActionID = "suggest-tags"
	TranslateCaToEs ActionID = "translate-ca-to-es"
	TranslateEsToCa ActionID = "translate-es-to-ca"
)

var actionIDs = []ActionID{
	GenerateArticle, GenerateOutline,
	ImproveText, ExpandText, SimplifyText, FixGrammar,
	TranslateCaToEs, TranslateEsToCa,
	GenerateTitle, GenerateExcerpt, SuggestTags,
}

// Actions lists every action identifier.
func Actions() []ActionID {
	return append([]ActionID(nil), actionIDs...)
}

// Valid reports whether a is a known action.
func (a ActionID) Valid() bool {
	for _, id := range actionIDs {
		if id == a {
			return true
		}
	}
	return false
}

// ParseActionID validates an identifier coming from outside.
func ParseActionID(s string) (ActionID, error) {
	a := ActionID(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// Fixed request context values.
const (
	DefaultAudience = "empleats-publics"
	DefaultLanguage = "ca"
)

// Context is the metadata sent with every request.
type Context struct {
	Title          string `json:"title,omitempty"`
	Category       string `json:"category,omitempty"`
	TargetAudience string `json:"targetAudience"`
	Language       string `json:"language"`
}

// Request is the body of one transformation call.
type Request struct {
	Action  ActionID `json:"action"`
	Input   string   `json:"input"`
	Context Context  `json:"context"`
}
