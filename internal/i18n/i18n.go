// Package i18n provides flat key→string message lookup. A Locale is an
// explicit value carried to whoever renders text; there is no
// process-wide current language.
package i18n

import (
	"fmt"
	"sort"
	"strings"
)

const defaultLanguage = "en"

// Locale resolves message keys for one language.
type Locale struct {
	lang  string
	table map[string]string
}

// New returns the Locale for lang, falling back to English when the
// language is unknown.
func New(lang string) Locale {
	if table, ok := tables[lang]; ok {
		return Locale{lang: lang, table: table}
	}
	return Locale{lang: defaultLanguage, table: tables[defaultLanguage]}
}

func (l Locale) Language() string { return l.lang }

// Message looks up key and substitutes {0}, {1}, … with args. An
// unknown key is returned verbatim so missing translations are visible
// instead of silent.
func (l Locale) Message(key string, args ...any) string {
	msg, ok := l.table[key]
	if !ok {
		return key
	}
	for i, arg := range args {
		msg = strings.ReplaceAll(msg, fmt.Sprintf("{%d}", i), fmt.Sprint(arg))
	}
	return msg
}

// Languages lists the supported language codes, sorted.
func Languages() []string {
	langs := make([]string, 0, len(tables))
	for lang := range tables {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

var tables = map[string]map[string]string{
	"en": {
		"question.capital":            "What is the capital of {0}?",
		"question.flag":               "Which country does this flag belong to? {0}",
		"question.reverse":            "{0} is the capital of which country?",
		"feedback.correctPoints":      "Correct! +{0} points",
		"feedback.difficultyIncrease": "Difficulty increased!",
		"feedback.wrongCapital":       "Wrong! The capital of {0} is {1}",
		"feedback.wrongFlag":          "Wrong! That flag belongs to {0}",
		"feedback.wrongCountry":       "Wrong! {0} is the capital of {1}",
		"feedback.skipped":            "Skipped. The answer was {0}",
	},
	"es": {
		"question.capital":            "¿Cuál es la capital de {0}?",
		"question.flag":               "¿A qué país pertenece esta bandera? {0}",
		"question.reverse":            "¿{0} es la capital de qué país?",
		"feedback.correctPoints":      "¡Correcto! +{0} puntos",
		"feedback.difficultyIncrease": "¡La dificultad ha aumentado!",
		"feedback.wrongCapital":       "¡Incorrecto! La capital de {0} es {1}",
		"feedback.wrongFlag":          "¡Incorrecto! Esa bandera pertenece a {0}",
		"feedback.wrongCountry":       "¡Incorrecto! {0} es la capital de {1}",
		"feedback.skipped":            "Omitida. La respuesta era {0}",
	},
}
