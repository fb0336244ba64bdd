package valvevdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguist/internal/adapters/exporter/valvevdf"
	"linguist/internal/ports"
)

func TestParseTokens(t *testing.T) {
	input := `"lang"
{
	"Language" "serbian"
	"Tokens"
	{
		// comment
		"menu_open"		"Open"
		"menu_quote"	"Say \"hi\"\nnow"
	}
}
`
	res, err := New().Parse([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, "serbian", res.Locale)
	require.Len(t, res.Units, 2)
	assert.Equal(t, "menu_open", res.Units[0].Key)
	assert.Equal(t, "Say \"hi\"\nnow", res.Units[1].SourceText)
}

func TestExportThenParse(t *testing.T) {
	out, err := valvevdf.New().Export(ports.ExportMeta{Language: "german"}, []ports.ExportItem{
		{Key: "a", SourceText: "A", Translation: `Back\slash "quoted"`},
		{Key: "b", SourceText: "Line\nbreak"},
	})
	require.NoError(t, err)

	res, err := New().Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "german", res.Locale)
	require.Len(t, res.Units, 2)
	assert.Equal(t, `Back\slash "quoted"`, res.Units[0].SourceText)
	assert.Equal(t, "Line\nbreak", res.Units[1].SourceText)
}
