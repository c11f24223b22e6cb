package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "lagswitch", Normalize("  LagSwitch\n"))
	assert.Equal(t, "", Normalize("   "))
}

func TestNameFromURL(t *testing.T) {
	tests := map[string]string{
		"https://example.com/Adventure/Profile?nome=Kuro": "Kuro",
		"https://example.com/profile/Akame":               "Akame",
		"https://example.com/profile/Akame/":              "Akame",
		"https://example.com/profile/Na%C3%AFve":          "Naïve",
		"https://example.com":                             "",
		"https://example.com/?familyName=Shiro&region=SA": "Shiro",
		"https://example.com/profile/Akame?name=Kuro":     "Kuro",
		"https://example.com/profile/Akame?nome=":         "Akame",
	}

	for in, want := range tests {
		assert.Equal(t, want, NameFromURL(in), in)
	}
}

func TestSplitCommaSeparated(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitCommaSeparated(" a, ,b "))
	assert.Empty(t, SplitCommaSeparated(""))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", TruncateString("abc", 5))
	assert.Equal(t, "ab...", TruncateString("abcdef", 5))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
	assert.Equal(t, "日本...", TruncateString("日本語のなまえ", 5))
	assert.Equal(t, "", TruncateString("abc", 0))
}
