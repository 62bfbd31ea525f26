package synthesis

import "strings"

// DefaultLocale is used when a language code is empty
const DefaultLocale = "en-US"

// SpeechLocaleMap maps service language codes to synthesis locales
var SpeechLocaleMap = map[string]string{
	"en":    "en-US",
	"es":    "es-ES",
	"fr":    "fr-FR",
	"de":    "de-DE",
	"hi":    "hi-IN",
	"ar":    "ar-SA",
	"zh":    "zh-CN",
	"zh-CN": "zh-CN",
	"zh-TW": "zh-TW",
	"ja":    "ja-JP",
	"ko":    "ko-KR",
	"ru":    "ru-RU",
	"pt":    "pt-BR",
	"it":    "it-IT",
	"nl":    "nl-NL",
	"sv":    "sv-SE",
	"no":    "no-NO",
	"da":    "da-DK",
	"pl":    "pl-PL",
	"fi":    "fi-FI",
	"tr":    "tr-TR",
	"he":    "he-IL",
	"th":    "th-TH",
	"vi":    "vi-VN",
	"uk":    "uk-UA",
	"cs":    "cs-CZ",
	"hu":    "hu-HU",
	"ro":    "ro-RO",
	"sk":    "sk-SK",
	"bg":    "bg-BG",
	"hr":    "hr-HR",
	"sl":    "sl-SI",
	"et":    "et-EE",
	"lv":    "lv-LV",
	"lt":    "lt-LT",
	"mt":    "mt-MT",
}

// ResolveLocale looks code up in SpeechLocaleMap, falling back to the
// raw code and then to DefaultLocale.
func ResolveLocale(code string) string {
	if locale, ok := SpeechLocaleMap[code]; ok {
		return locale
	}
	if code != "" {
		return code
	}
	return DefaultLocale
}

// language returns the primary subtag of a locale ("pt-BR" -> "pt")
func language(locale string) string {
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		return locale[:i]
	}
	return locale
}
