package toolbar

// User-facing messages, in the language of the editor's audience.
const (
	msgNeedSelection   = "Selecciona un fragment de text per utilitzar aquesta acció"
	msgNeedContent     = "Escriu contingut a l'editor abans d'utilitzar aquesta acció"
	msgNeedTopic       = "Escriu un tema per generar el contingut"
	msgGenericError    = "No s'ha pogut completar l'acció d'IA"
	msgTimeout         = "L'assistent d'IA ha trigat massa a respondre. Torna-ho a provar"
	msgMalformed       = "La resposta de l'assistent d'IA no té el format esperat"
	msgInserted        = "Contingut generat inserit a l'editor"
	msgReplaced        = "Text actualitzat"
	msgTitleApplied    = "Títol aplicat"
	msgTitleCopied     = "Títol copiat al porta-retalls"
	msgTagsApplied     = "Etiquetes aplicades"
	msgTagsCopied      = "Etiquetes copiades al porta-retalls"
	msgTagCopied       = "Etiqueta «%s» copiada al porta-retalls"
	msgExcerptApplied  = "Resum aplicat"
	msgExcerptCopied   = "Resum copiat al porta-retalls"
	msgClipboardFailed = "No s'ha pogut copiar al porta-retalls"
)
