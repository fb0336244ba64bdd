package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTokens(t *testing.T) {
	src := "Copy %1 of %10 (%Ln items) to <b>{dest}</b> %1"

	assert.Equal(t, []string{"{dest}", "%10", "%Ln", "%1"}, extractPlaceholders(src))
	assert.Equal(t, []string{"</b>", "<b>"}, extractTags(src))
	assert.Nil(t, extractTags("plain"))
}

func TestMaskRoundTrip(t *testing.T) {
	src := "\n%10 and %1 in <i>bold</i>\n"
	ph := extractPlaceholders(src)
	tags := extractTags(src)

	masked, unmask := maskTokens(src, ph, tags)
	assert.NotContains(t, masked, "%1")
	assert.NotContains(t, masked, "<i>")
	assert.Equal(t, src, unmask(masked))
	// Edge whitespace returned by the model is replaced by the source's.
	assert.Equal(t, "\n%1 и %10 у <i>подебљано</i>\n", unmask("  __PH_1__ и __PH_0__ у __TAG_1__подебљано__TAG_0__  "))
}

func TestVerifyTokens(t *testing.T) {
	assert.NoError(t, verifyTokens("%n фајла", []string{"%n"}, nil, true))
	assert.NoError(t, verifyTokens("један фајл", []string{"%n"}, nil, true))
	assert.Error(t, verifyTokens("један фајл", []string{"%n"}, nil, false))
	assert.ErrorContains(t, verifyTokens("x %1", []string{"%1"}, []string{"<b>"}, false), "tag missing")
}

func TestCachedOutputEncoding(t *testing.T) {
	out, ok := decodeCached(encodeCached(Output{Text: "a", Forms: []string{"a", "b", "c"}}), 3)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, out.Forms)

	_, ok = decodeCached(encodeCached(Output{Text: "a", Forms: []string{"a", "b"}}), 3)
	assert.False(t, ok, "stale entry with a different form count")

	_, ok = decodeCached("", 0)
	assert.False(t, ok)
}
