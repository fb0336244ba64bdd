package qtts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguist/internal/adapters/parser/qtts"
	"linguist/internal/domain"
	"linguist/internal/ports"
)

func sampleDocument() *domain.Document {
	return &domain.Document{
		Version:        "2.1",
		Language:       "sr_RS",
		SourceLanguage: "en",
		Contexts: []*domain.Context{
			{
				Name: "QObject",
				Messages: []*domain.Message{
					{
						Context:     "QObject",
						Source:      "wrong rotation parameter\n",
						Locations:   []domain.Location{{File: "../src/DkImage.cpp", Line: 3703}},
						Translation: domain.MessageTranslation{Text: "погрешан ротациони параметар\n"},
					},
					{
						Context:           "QObject",
						ID:                "copy.count",
						Source:            "%n <b>file(s)</b> & \"more\"",
						Comment:           "toolbar",
						TranslatorComment: "check case",
						Numerus:           true,
						Translation: domain.MessageTranslation{
							Type:  domain.TypeUnfinished,
							Text:  "%n фајл",
							Forms: []string{"%n фајл", "%n фајла", "%n фајлова"},
						},
					},
					{
						Context:     "QObject",
						Source:      "bell\x07",
						OldSource:   "bell",
						Translation: domain.MessageTranslation{Text: "звоно\x07", Type: domain.TypeObsolete},
					},
				},
			},
		},
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	want := sampleDocument()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, want))

	got, err := qtts.DecodeBytes(buf.Bytes())
	require.NoError(t, err)

	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.Message{}, "Line"),
		cmpopts.IgnoreFields(domain.Context{}, "Line"),
		cmpopts.EquateEmpty(),
	}
	if diff := cmp.Diff(want, got, opts); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeEscaping(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleDocument()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<!DOCTYPE TS>\n"))
	assert.Contains(t, out, `<TS version="2.1" language="sr_RS" sourcelanguage="en">`)
	assert.Contains(t, out, `%n &lt;b&gt;file(s)&lt;/b&gt; &amp; &quot;more&quot;`)
	assert.Contains(t, out, `bell<byte value="x7"/>`)
	assert.Contains(t, out, `<message id="copy.count" numerus="yes">`)
	assert.Contains(t, out, `<translation type="obsolete">`)
}

func TestToDocumentMarksMissingAsUnfinished(t *testing.T) {
	doc := ToDocument(ports.ExportMeta{Language: "sr-RS"}, []ports.ExportItem{
		{Context: "A", SourceText: "one", Translation: "један", Status: domain.StatusFinished},
		{Context: "B", SourceText: "two"},
		{Context: "A", SourceText: "three", Status: domain.StatusMachine, Translation: "три"},
	})

	assert.Equal(t, "sr_RS", doc.Language)
	require.Len(t, doc.Contexts, 2)
	a, b := doc.Contexts[0], doc.Contexts[1]
	require.Len(t, a.Messages, 2)
	assert.Equal(t, domain.TypeFinished, a.Messages[0].Translation.Type)
	assert.Equal(t, domain.TypeUnfinished, a.Messages[1].Translation.Type)
	assert.Equal(t, domain.TypeUnfinished, b.Messages[0].Translation.Type)
}

func TestExporterNumerusFallsBackToText(t *testing.T) {
	out, err := New().Export(ports.ExportMeta{Language: "de"}, []ports.ExportItem{
		{Context: "C", SourceText: "%n file(s)", Numerus: true, Translation: "%n Datei(en)", Status: domain.StatusFinished},
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<numerusform>%n Datei(en)</numerusform>")
}
