package generator

import (
	"fmt"
	"strings"

	"blog_ai_editor/transform"
)

// Prompt is the message pair sent to the model for one action.
type Prompt struct {
	Action transform.ActionID
	System string
	User   string
	// Input is the raw payload the user message was built from.
	Input string
}

var languageNames = map[string]string{
	"ca": "català",
	"es": "castellà",
	"en": "anglès",
}

var instructions = map[transform.ActionID]string{
	transform.GenerateArticle: "Escriu un article de blog complet sobre el tema indicat. " +
		"Fes servir Markdown amb un títol de nivell 2 i subtítols de nivell 3. " +
		"Entre 400 i 700 paraules, to proper i clar.",
	transform.GenerateOutline: "Proposa l'esquema d'un article sobre el tema indicat. " +
		"Respon només amb JSON de la forma " +
		`{"title":"...","sections":[{"heading":"...","points":["..."]}]}` +
		" amb entre 3 i 6 seccions.",
	transform.ImproveText: "Millora la redacció del text mantenint-ne el sentit, la llargada aproximada i el to.",
	transform.ExpandText: "Amplia el text amb més detall i exemples concrets, " +
		"sense canviar-ne el missatge. Com a màxim el doble de llarg.",
	transform.SimplifyText: "Reescriu el text en llenguatge planer, amb frases curtes i sense tecnicismes.",
	transform.FixGrammar: "Corregeix l'ortografia, la gramàtica i la puntuació del text. " +
		"No canviïs res més.",
	transform.TranslateCaToEs: "Tradueix el text del català al castellà.",
	transform.TranslateEsToCa: "Tradueix el text del castellà al català.",
	transform.GenerateTitle: fmt.Sprintf("Proposa %d títols breus i atractius per a l'article. "+
		"Un títol per línia, sense numerar.", MaxTitles),
	transform.GenerateExcerpt: "Escriu un resum de l'article d'entre 30 i 50 paraules, en un sol paràgraf.",
	transform.SuggestTags: fmt.Sprintf("Suggereix fins a %d etiquetes per a l'article, "+
		"en minúscules i separades per comes.", MaxTags),
}

// outputLanguage is the language the answer must be written in.
func outputLanguage(req transform.Request) string {
	switch req.Action {
	case transform.TranslateCaToEs:
		return "es"
	case transform.TranslateEsToCa:
		return "ca"
	}
	if req.Context.Language == "" {
		return transform.DefaultLanguage
	}
	return req.Context.Language
}

// BuildPrompt builds the prompt for a request.
func BuildPrompt(req transform.Request) (Prompt, error) {
	inst, ok := instructions[req.Action]
	if !ok {
		return Prompt{}, fmt.Errorf("%w: unknown action %q", ErrInvalidRequest, req.Action)
	}

	lang := outputLanguage(req)
	langName, ok := languageNames[lang]
	if !ok {
		langName = lang
	}

	var sb strings.Builder
	sb.WriteString("Ets un editor de continguts per a una xarxa social de personal de l'administració pública.\n")
	sb.WriteString("Requisits:\n")
	sb.WriteString(fmt.Sprintf("- %s\n", inst))
	sb.WriteString(fmt.Sprintf("- Respon en %s.\n", langName))
	if aud := req.Context.TargetAudience; aud != "" {
		sb.WriteString(fmt.Sprintf("- Públic objectiu: %s.\n", aud))
	}
	sb.WriteString("- Retorna només el resultat, sense explicacions ni comentaris.\n")

	var user strings.Builder
	if req.Context.Title != "" {
		user.WriteString(fmt.Sprintf("Títol actual: %s\n", req.Context.Title))
	}
	if req.Context.Category != "" {
		user.WriteString(fmt.Sprintf("Categoria: %s\n", req.Context.Category))
	}
	switch req.Action {
	case transform.GenerateArticle, transform.GenerateOutline:
		user.WriteString("Tema: ")
	default:
		user.WriteString("Text:\n")
	}
	user.WriteString(req.Input)

	return Prompt{
		Action: req.Action,
		System: sb.String(),
		User:   user.String(),
		Input:  req.Input,
	}, nil
}
