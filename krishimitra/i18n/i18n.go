// Package i18n holds the localized UI strings the gateway serves to the
// chat widget. Catalogs are embedded so the binary ships self-contained.
package i18n

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

const (
	LangEnglish = "en"
	LangHindi   = "hi"
)

var catalogs = map[string]map[string]string{}

func init() {
	for _, lang := range []string{LangEnglish, LangHindi} {
		data, err := localeFS.ReadFile(fmt.Sprintf("locales/%s.yaml", lang))
		if err != nil {
			panic("missing locale catalog: " + lang)
		}
		catalog := map[string]string{}
		if err := yaml.Unmarshal(data, &catalog); err != nil {
			panic("bad locale catalog " + lang + ": " + err.Error())
		}
		catalogs[lang] = catalog
	}
}

// Normalize maps any unknown language code to English.
func Normalize(lang string) string {
	if _, ok := catalogs[lang]; ok {
		return lang
	}
	return LangEnglish
}

// T looks up key in the catalog for lang, falling back to English and then
// to the key itself.
func T(lang, key string) string {
	if s, ok := catalogs[Normalize(lang)][key]; ok {
		return s
	}
	if s, ok := catalogs[LangEnglish][key]; ok {
		return s
	}
	return key
}

// SpeechLang returns the BCP-47 tag the speech recognizer expects.
func SpeechLang(lang string) string {
	if Normalize(lang) == LangHindi {
		return "hi-IN"
	}
	return "en-US"
}
