package lang

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// DetectPrefixLimit bounds the amount of text fed to the detector. Language
// identification saturates well before this point and long documents would
// only slow it down.
const DetectPrefixLimit = 5000

// detectable is the fixed set of languages the pipeline can report. It covers
// every code in localeMap; anything else would come back unmappable anyway.
var detectable = []lingua.Language{
	lingua.Vietnamese,
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Russian,
	lingua.Japanese,
	lingua.Korean,
	lingua.Chinese,
}

// Detector identifies the language of extracted text. It is immutable after
// construction and safe to share across the sequential per-file loop.
type Detector struct {
	inner lingua.LanguageDetector
}

// NewDetector builds the shared detector instance. Construction is the
// expensive part; do it once at startup.
func NewDetector() *Detector {
	return &Detector{
		inner: lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectable...).
			Build(),
	}
}

// Best returns the normalized locale tag of the single most likely language,
// or ok=false when nothing can be detected. Detection failure is always
// non-fatal for callers.
func (d *Detector) Best(text string) (string, bool) {
	text = Prefix(text)
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	language, ok := d.inner.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return Normalize(isoCode(language)), true
}

// Ranked runs the probabilistic mode: all candidate languages are scored and
// the highest-probability one wins. Used where the source text may mix
// languages (structured documents).
func (d *Detector) Ranked(text string) (string, bool) {
	text = Prefix(text)
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	values := d.inner.ComputeLanguageConfidenceValues(text)
	if len(values) == 0 {
		return "", false
	}
	top := values[0]
	for _, v := range values[1:] {
		if v.Value() > top.Value() {
			top = v
		}
	}
	if top.Value() <= 0 {
		return "", false
	}
	return Normalize(isoCode(top.Language())), true
}

// Prefix truncates text to DetectPrefixLimit runes.
func Prefix(text string) string {
	runes := []rune(text)
	if len(runes) > DetectPrefixLimit {
		return string(runes[:DetectPrefixLimit])
	}
	return text
}

func isoCode(l lingua.Language) string {
	return strings.ToLower(l.IsoCode639_1().String())
}
