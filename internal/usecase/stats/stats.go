// Package stats summarises how far a catalog is translated.
package stats

import (
	"sort"

	"github.com/fvbommel/sortorder"

	"linguist/internal/domain"
)

type Counts struct {
	Total      int `json:"total"`
	Finished   int `json:"finished"`
	Unfinished int `json:"unfinished"`
	Empty      int `json:"empty"`
	Obsolete   int `json:"obsolete"`
	Vanished   int `json:"vanished"`
}

// Active is the number of messages still used by the sources.
func (c Counts) Active() int { return c.Total - c.Obsolete - c.Vanished }

// Completion is the finished share of active messages, 1 for a catalog
// without active messages.
func (c Counts) Completion() float64 {
	if c.Active() == 0 {
		return 1
	}
	return float64(c.Finished) / float64(c.Active())
}

func (c *Counts) add(o Counts) {
	c.Total += o.Total
	c.Finished += o.Finished
	c.Unfinished += o.Unfinished
	c.Empty += o.Empty
	c.Obsolete += o.Obsolete
	c.Vanished += o.Vanished
}

type ContextStats struct {
	Name string `json:"name"`
	Counts
}

type Summary struct {
	Language string `json:"language"`
	Counts
	Contexts []ContextStats `json:"contexts"`
}

// Summarize counts messages per context. Contexts are listed in natural
// order, so Dialog2 sorts before Dialog10.
func Summarize(doc *domain.Document) Summary {
	s := Summary{Language: doc.Language}
	byName := map[string]*ContextStats{}
	for _, c := range doc.Contexts {
		cs, ok := byName[c.Name]
		if !ok {
			cs = &ContextStats{Name: c.Name}
			byName[c.Name] = cs
		}
		for _, m := range c.Messages {
			cs.Counts.add(classify(m))
		}
	}
	for _, cs := range byName {
		s.Counts.add(cs.Counts)
		s.Contexts = append(s.Contexts, *cs)
	}
	sort.Slice(s.Contexts, func(i, j int) bool {
		return sortorder.NaturalLess(s.Contexts[i].Name, s.Contexts[j].Name)
	})
	return s
}

func classify(m *domain.Message) Counts {
	c := Counts{Total: 1}
	switch {
	case m.Translation.Type == domain.TypeObsolete:
		c.Obsolete = 1
	case m.Translation.Type == domain.TypeVanished:
		c.Vanished = 1
	case !m.Translated():
		c.Empty = 1
	case m.Translation.Type == domain.TypeUnfinished:
		c.Unfinished = 1
	default:
		c.Finished = 1
	}
	return c
}
