package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"blog_ai_editor/markup"
	"blog_ai_editor/transform"
)

// MockLLM is an offline stand-in for local debugging. It never calls a model
// and answers every action deterministically from the prompt input.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	input := strings.TrimSpace(markup.PlainText(prompt.Input))
	subject := firstWords(input, 6)

	switch prompt.Action {
	case transform.GenerateArticle:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("## %s\n\n", subject))
		sb.WriteString(fmt.Sprintf("Aquest article presenta **%s** i explica com afecta el dia a dia de la feina.\n\n", input))
		sb.WriteString("### Per què és important\n\n")
		sb.WriteString("Els equips guanyen temps i la ciutadania rep un servei més àgil.\n\n")
		sb.WriteString("### Propers passos\n\n")
		sb.WriteString("- Compartir l'experiència amb altres departaments\n- Recollir propostes de millora\n")
		return sb.String(), nil

	case transform.GenerateOutline:
		o := markup.Outline{
			Title: subject,
			Sections: []markup.Section{
				{Heading: "Context", Points: []string{"Situació actual", "Reptes principals"}},
				{Heading: "Proposta", Points: []string{subject}},
				{Heading: "Conclusions"},
			},
		}
		b, err := json.Marshal(o)
		if err != nil {
			return "", err
		}
		return "```json\n" + string(b) + "\n```", nil

	case transform.GenerateTitle:
		return fmt.Sprintf("1. %s\n2. Tot el que cal saber: %s\n3. %s, pas a pas", subject, subject, subject), nil

	case transform.SuggestTags:
		return strings.Join(firstWordsList(input, 4), ", ") + ", administració", nil

	case transform.GenerateExcerpt:
		return firstWords(input, 40), nil

	case transform.ExpandText:
		return input + " A més, aquest canvi aporta beneficis concrets per a tothom.", nil

	case transform.SimplifyText, transform.ImproveText, transform.FixGrammar:
		return input, nil

	case transform.TranslateCaToEs, transform.TranslateEsToCa:
		return fmt.Sprintf("[%s] %s", outputLanguageFor(prompt.Action), input), nil

	default:
		return "", fmt.Errorf("mock llm: no answer for action %q", prompt.Action)
	}
}

func outputLanguageFor(action transform.ActionID) string {
	return outputLanguage(transform.Request{Action: action})
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// firstWordsList returns up to n distinct words long enough to be tags.
func firstWordsList(s string, n int) []string {
	var out []string
	seen := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,;:!?«»\"'()")
		if utf8.RuneCountInString(w) < 5 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if len(out) == n {
			break
		}
	}
	return out
}
