package stats

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"linguist/internal/domain"
)

func msg(typ domain.MessageType, text string) *domain.Message {
	return &domain.Message{Source: "s", Translation: domain.MessageTranslation{Type: typ, Text: text}}
}

func TestSummarize(t *testing.T) {
	doc := &domain.Document{
		Language: "sr_RS",
		Contexts: []*domain.Context{
			{Name: "Dialog10", Messages: []*domain.Message{
				msg(domain.TypeFinished, "a"),
				msg(domain.TypeUnfinished, "b"),
			}},
			{Name: "Dialog2", Messages: []*domain.Message{
				msg(domain.TypeUnfinished, ""),
				msg(domain.TypeObsolete, "old"),
			}},
			{Name: "Dialog10", Messages: []*domain.Message{
				msg(domain.TypeVanished, "gone"),
				msg(domain.TypeFinished, "c"),
			}},
		},
	}

	got := Summarize(doc)
	want := Summary{
		Language: "sr_RS",
		Counts:   Counts{Total: 6, Finished: 2, Unfinished: 1, Empty: 1, Obsolete: 1, Vanished: 1},
		Contexts: []ContextStats{
			{Name: "Dialog2", Counts: Counts{Total: 2, Empty: 1, Obsolete: 1}},
			{Name: "Dialog10", Counts: Counts{Total: 4, Finished: 2, Unfinished: 1, Vanished: 1}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 4, got.Active())
	assert.InDelta(t, 0.5, got.Completion(), 1e-9)
}

func TestCompletionWithoutActiveMessages(t *testing.T) {
	assert.Equal(t, 1.0, Counts{Total: 1, Obsolete: 1}.Completion())
}
