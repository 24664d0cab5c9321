package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"vi", "vi-VN"},
		{"en", "en-US"},
		{"VI", "vi-VN"},
		{"zh-cn", "zh-CN"},
		{"ZH-TW", "zh-TW"},
		{"zh", "zh-CN"},
		{"xx-unknown", "xx-unknown"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	// Canonical tags already in the map's value set must survive a second pass.
	for _, tag := range localeMap {
		assert.Equal(t, Normalize(tag), Normalize(Normalize(tag)))
	}
}

func TestDetectorBest(t *testing.T) {
	d := NewDetector()

	code, ok := d.Best("The quick brown fox jumps over the lazy dog and keeps on running through the field.")
	require.True(t, ok)
	assert.Equal(t, "en-US", code)

	_, ok = d.Best("   ")
	assert.False(t, ok)

	_, ok = d.Best("")
	assert.False(t, ok)
}

func TestDetectorRanked(t *testing.T) {
	d := NewDetector()

	code, ok := d.Ranked("Ceci est une phrase écrite entièrement en français pour vérifier la détection de la langue.")
	require.True(t, ok)
	assert.Equal(t, "fr-FR", code)

	_, ok = d.Ranked("")
	assert.False(t, ok)
}

func TestPrefix(t *testing.T) {
	long := make([]rune, DetectPrefixLimit+100)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, []rune(Prefix(string(long))), DetectPrefixLimit)
	assert.Equal(t, "short", Prefix("short"))
}
