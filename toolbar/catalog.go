// Package toolbar drives the AI assistant menu of the blog editor: which
// actions exist, when they may run, and where their results go.
package toolbar

import "blog_ai_editor/transform"

// Precondition is the input an action needs before it may run.
type Precondition int

const (
	RequiresSelection Precondition = iota
	RequiresDocumentContent
	RequiresTopic
)

func (p Precondition) String() string {
	switch p {
	case RequiresSelection:
		return "requires-selection"
	case RequiresDocumentContent:
		return "requires-document-content"
	case RequiresTopic:
		return "requires-free-form-topic"
	}
	return "unknown"
}

// Routing decides what happens with a successful result.
type Routing int

const (
	// RouteReplace puts the result in place of the selection.
	RouteReplace Routing = iota
	// RouteInsert inserts generated markup at the cursor.
	RouteInsert
	// RouteChoices shows the result to the user before anything is applied.
	RouteChoices
)

// Group is the menu section an action is listed under.
type Group string

const (
	GroupGenerate  Group = "Generar contingut"
	GroupEdit      Group = "Editar text"
	GroupTranslate Group = "Traducció"
	GroupMetadata  Group = "Metadades"
)

var groups = []Group{GroupGenerate, GroupEdit, GroupTranslate, GroupMetadata}

// Action describes one menu entry.
type Action struct {
	ID           transform.ActionID
	Label        string
	Icon         string
	Description  string
	Group        Group
	Precondition Precondition
	Routing      Routing
}

var catalog = []Action{
	{
		ID:           transform.GenerateArticle,
		Label:        "Generar article",
		Icon:         "file-text",
		Description:  "Escriu un article complet a partir d'un tema",
		Group:        GroupGenerate,
		Precondition: RequiresTopic,
		Routing:      RouteInsert,
	},
	{
		ID:           transform.GenerateOutline,
		Label:        "Generar esquema",
		Icon:         "list-tree",
		Description:  "Proposa l'estructura d'un article sobre un tema",
		Group:        GroupGenerate,
		Precondition: RequiresTopic,
		Routing:      RouteInsert,
	},
	{
		ID:           transform.ImproveText,
		Label:        "Millorar text",
		Icon:         "sparkles",
		Description:  "Fa el text seleccionat més clar i professional",
		Group:        GroupEdit,
		Precondition: RequiresSelection,
		Routing:      RouteReplace,
	},
	{
		ID:           transform.ExpandText,
		Label:        "Ampliar text",
		Icon:         "maximize",
		Description:  "Desenvolupa el text seleccionat amb més detall",
		Group:        GroupEdit,
		Precondition: RequiresSelection,
		Routing:      RouteReplace,
	},
	{
		ID:           transform.SimplifyText,
		Label:        "Simplificar text",
		Icon:         "minimize",
		Description:  "Reescriu el text seleccionat en llenguatge planer",
		Group:        GroupEdit,
		Precondition: RequiresSelection,
		Routing:      RouteReplace,
	},
	{
		ID:           transform.FixGrammar,
		Label:        "Corregir gramàtica",
		Icon:         "spell-check",
		Description:  "Corregeix l'ortografia i la gramàtica del text seleccionat",
		Group:        GroupEdit,
		Precondition: RequiresSelection,
		Routing:      RouteReplace,
	},
	{
		ID:           transform.TranslateCaToEs,
		Label:        "Traduir al castellà",
		Icon:         "languages",
		Description:  "Tradueix el text seleccionat del català al castellà",
		Group:        GroupTranslate,
		Precondition: RequiresSelection,
		Routing:      RouteReplace,
	},
	{
		ID:           transform.TranslateEsToCa,
		Label:        "Traduir al català",
		Icon:         "languages",
		Description:  "Tradueix el text seleccionat del castellà al català",
		Group:        GroupTranslate,
		Precondition: RequiresSelection,
		Routing:      RouteReplace,
	},
	{
		ID:           transform.GenerateTitle,
		Label:        "Generar títol",
		Icon:         "heading",
		Description:  "Proposa títols a partir del contingut",
		Group:        GroupMetadata,
		Precondition: RequiresDocumentContent,
		Routing:      RouteChoices,
	},
	{
		ID:           transform.GenerateExcerpt,
		Label:        "Generar resum",
		Icon:         "align-left",
		Description:  "Escriu un resum breu del contingut",
		Group:        GroupMetadata,
		Precondition: RequiresDocumentContent,
		Routing:      RouteChoices,
	},
	{
		ID:           transform.SuggestTags,
		Label:        "Suggerir etiquetes",
		Icon:         "tags",
		Description:  "Proposa etiquetes per classificar el contingut",
		Group:        GroupMetadata,
		Precondition: RequiresDocumentContent,
		Routing:      RouteChoices,
	},
}

// Catalog returns every action in menu order.
func Catalog() []Action {
	return append([]Action(nil), catalog...)
}

// Lookup finds the action registered for id.
func Lookup(id transform.ActionID) (Action, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// Section is one menu group with its actions.
type Section struct {
	Group   Group
	Actions []Action
}

// Sections groups the catalog for presentation.
func Sections() []Section {
	out := make([]Section, 0, len(groups))
	for _, g := range groups {
		s := Section{Group: g}
		for _, a := range catalog {
			if a.Group == g {
				s.Actions = append(s.Actions, a)
			}
		}
		out = append(out, s)
	}
	return out
}
