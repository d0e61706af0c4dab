package manager

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys double as the English text.
const (
	msgPlaceholder   = "New item in %s..."
	msgEmptyList     = "No items registered."
	msgItemCount     = "%d items"
	msgSaved         = "Saved!"
	msgErrorTitle    = "Error"
	msgSaveFailed    = "Failed to save"
	msgDeleteFailed  = "Failed to delete."
	msgConnection    = "Connection error"
	msgConfirmDelete = "Are you sure?"
	msgNameRequired  = "Name is required"
	msgRefreshFailed = "Saved, but the list could not be refreshed"

	// Control captions.
	msgSave    = "Save"
	msgEdit    = "Edit"
	msgDelete  = "Delete"
	msgConfirm = "OK"
	msgCancel  = "Cancel"
	msgClose   = "Close"

	// msgSelectPlaceholder is the key selectfill.PlaceholderLabel resolves to.
	msgSelectPlaceholder = "Select..."
)

var supportedLocales = []language.Tag{language.English, language.BrazilianPortuguese}

var messages = buildCatalog()

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	pt := map[string]string{
		msgPlaceholder:   "Novo item em %s...",
		msgEmptyList:     "Nenhum item cadastrado.",
		msgItemCount:     "%d itens",
		msgSaved:         "Salvo!",
		msgErrorTitle:    "Erro",
		msgSaveFailed:    "Falha ao salvar",
		msgDeleteFailed:  "Erro ao excluir.",
		msgConnection:    "Conexão",
		msgConfirmDelete: "Tem certeza?",
		msgNameRequired:  "Informe o nome",
		msgRefreshFailed: "Salvo, mas a lista não pôde ser atualizada",

		msgSave:    "Salvar",
		msgEdit:    "Editar",
		msgDelete:  "Excluir",
		msgConfirm: "OK",
		msgCancel:  "Cancelar",
		msgClose:   "Fechar",

		msgSelectPlaceholder: "Selecione...",
	}
	for key, text := range pt {
		_ = b.SetString(language.English, key, key)
		_ = b.SetString(language.BrazilianPortuguese, key, text)
	}
	return b
}

// NewPrinter returns a printer for the closest supported locale; unknown or
// malformed locales fall back to English.
func NewPrinter(locale string) *message.Printer {
	tag := language.English
	if parsed, err := language.Parse(locale); err == nil {
		_, idx, conf := language.NewMatcher(supportedLocales).Match(parsed)
		if conf != language.No {
			tag = supportedLocales[idx]
		}
	}
	return message.NewPrinter(tag, message.Catalog(messages))
}
