// Package lang maps raw language-detector output onto canonical locale tags
// and wraps the statistical detector used across all extractors.
package lang

import "strings"

// localeMap maps ISO-639-1 codes (optionally region-qualified) to the
// canonical locale tag used in extraction results.
var localeMap = map[string]string{
	"vi":    "vi-VN",
	"en":    "en-US",
	"fr":    "fr-FR",
	"de":    "de-DE",
	"es":    "es-ES",
	"it":    "it-IT",
	"pt":    "pt-PT",
	"ru":    "ru-RU",
	"ja":    "ja-JP",
	"ko":    "ko-KR",
	"zh":    "zh-CN",
	"zh-cn": "zh-CN",
	"zh-tw": "zh-TW",
}

// Normalize converts a detector code such as "vi" or "zh-cn" to its canonical
// locale tag. Unknown codes pass through unchanged; Normalize never fails.
func Normalize(code string) string {
	if tag, ok := localeMap[strings.ToLower(code)]; ok {
		return tag
	}
	return code
}
