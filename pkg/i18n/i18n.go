package i18n

import "golang.org/x/text/language"

// Supported dashboard locales; English is the fallback.
var supported = []language.Tag{
	language.English,
	language.German,
	language.Spanish,
	language.French,
}

var matcher = language.NewMatcher(supported)

// Key identifies one localized UI string.
type Key string

const (
	KeyConnectionError  Key = "error.connection"
	KeyValidationFailed Key = "error.validation"
	KeyNoResults        Key = "status.no_results"
	KeyHistoryEmpty     Key = "status.history_empty"
	KeyAuditStarted     Key = "status.audit_started"
)

// catalog holds the per-locale string tables. Business errors from the
// provider are shown verbatim and never pass through here.
var catalog = map[string]map[Key]string{
	"en": {
		KeyConnectionError:  "Could not reach the data provider. Please check your connection and try again.",
		KeyValidationFailed: "Please check your input",
		KeyNoResults:        "No results found for this query.",
		KeyHistoryEmpty:     "No previous analyses yet.",
		KeyAuditStarted:     "On-page audit started.",
	},
	"de": {
		KeyConnectionError:  "Der Datenanbieter ist nicht erreichbar. Bitte Verbindung prüfen und erneut versuchen.",
		KeyValidationFailed: "Bitte Eingabe überprüfen",
		KeyNoResults:        "Keine Ergebnisse für diese Abfrage gefunden.",
		KeyHistoryEmpty:     "Noch keine früheren Analysen.",
		KeyAuditStarted:     "OnPage-Audit gestartet.",
	},
	"es": {
		KeyConnectionError:  "No se pudo conectar con el proveedor de datos. Comprueba tu conexión e inténtalo de nuevo.",
		KeyValidationFailed: "Comprueba los datos introducidos",
		KeyNoResults:        "No se encontraron resultados para esta consulta.",
		KeyHistoryEmpty:     "Aún no hay análisis anteriores.",
		KeyAuditStarted:     "Auditoría on-page iniciada.",
	},
	"fr": {
		KeyConnectionError:  "Impossible de joindre le fournisseur de données. Vérifiez votre connexion et réessayez.",
		KeyValidationFailed: "Veuillez vérifier votre saisie",
		KeyNoResults:        "Aucun résultat pour cette requête.",
		KeyHistoryEmpty:     "Aucune analyse précédente pour le moment.",
		KeyAuditStarted:     "Audit on-page démarré.",
	},
}

// Negotiate picks the locale for a request. The locale cookie wins over the
// Accept-Language header; anything unrecognized falls back to English.
func Negotiate(cookie, acceptLanguage string) string {
	var preferred []language.Tag
	if cookie != "" {
		if tag, err := language.Parse(cookie); err == nil {
			preferred = append(preferred, tag)
		}
	}
	if acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
			preferred = append(preferred, tags...)
		}
	}

	_, index, _ := matcher.Match(preferred...)
	base, _ := supported[index].Base()
	return base.String()
}

// Supported reports whether a locale string names a shipped catalog.
func Supported(locale string) bool {
	_, ok := catalog[locale]
	return ok
}

// T returns the localized string for key, falling back to English.
func T(locale string, key Key) string {
	if table, ok := catalog[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	return catalog["en"][key]
}
