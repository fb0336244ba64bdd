package plurals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

func TestForms(t *testing.T) {
	tests := []struct {
		locale string
		want   []string
	}{
		{"en", []string{"one", "other"}},
		{"sr_RS", []string{"one", "few", "other"}},
		{"ja", []string{"other"}},
		{"ar", []string{"zero", "one", "two", "few", "many", "other"}},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			tag, err := Parse(tt.locale)
			require.NoError(t, err)
			var got []string
			for _, f := range Forms(tag) {
				got = append(got, Name(f))
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), Count(tag))
		})
	}
}

func TestIndex(t *testing.T) {
	sr := language.MustParse("sr")
	assert.Equal(t, 0, Index(sr, 1))
	assert.Equal(t, 0, Index(sr, 101))
	assert.Equal(t, 1, Index(sr, 4))
	assert.Equal(t, 2, Index(sr, 12))
	assert.Equal(t, 2, Index(sr, 0))
	assert.Equal(t, plural.One, Match(sr, -1))
}

func TestUnknownLanguage(t *testing.T) {
	assert.Zero(t, Count(language.Und))
	_, err := Parse("not a locale")
	assert.Error(t, err)
}
