package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Foo", "Foo"},
		{"lower first letter", "foo bar", "Foo_bar"},
		{"collapse separators", "  New   York_ City ", "New_York_City"},
		{"empty", "", ""},
		{"unicode first letter", "élan", "Élan"},
		{"nfc", "éte", "Éte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTitle(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, NormalizeTitle(got), "NormalizeTitle must be idempotent")
		})
	}
}

func TestEncodeURI(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Foo", "Foo"},
		{"Category:Foo", "Category-3AFoo"},
		{"New York", "New_York"},
		{"Foo-Bar", "Foo-2DBar"},
		{"A&B", "A-26B"},
		{"Page#_sub", "Page-23_sub"},
		{"Café", "Caf-C3-A9"},
		{"v1.2", "v1.2"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, EncodeURI(tt.input))
		})
	}
}

func TestDecodeURIRoundTrip(t *testing.T) {
	for _, s := range []string{"Foo", "Category:Foo", "Foo-Bar", "A&B \"quoted\"", "Café", "-", "100%"} {
		decoded, err := DecodeURI(EncodeURI(s))
		require.NoError(t, err)
		// Spaces come back as underscores, the DB-key form.
		assert.Equal(t, NormalizeTitle(s), NormalizeTitle(decoded), s)
	}
}

func TestDecodeURIErrors(t *testing.T) {
	_, err := DecodeURI("Foo-3")
	assert.Error(t, err, "truncated escape")

	_, err = DecodeURI("Foo-ZZbar")
	assert.Error(t, err, "invalid hex")
}
