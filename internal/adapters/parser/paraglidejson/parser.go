// Package paraglidejson reads flat message files in the inlang/paraglide
// layout: one JSON object mapping message keys to text.
package paraglidejson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"linguist/internal/domain"
	"linguist/internal/ports"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "paraglidejson" }

// Parse reads { key: text, ... }. Keys starting with '$' are metadata;
// "$language" names the catalog locale. A value may also be an object of
// CLDR plural categories or an array of forms, which yields a numerus
// unit whose source is the "other" (or last) form. Other value types are
// skipped.
func (p *Parser) Parse(data []byte) (ports.ParseResult, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), &m); err != nil {
		return ports.ParseResult{}, fmt.Errorf("invalid json: %w", err)
	}
	res := ports.ParseResult{}
	if raw, ok := m["$language"]; ok {
		var lang string
		if json.Unmarshal(raw, &lang) == nil {
			res.Locale = domain.NormalizeLocale(lang)
		}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if u := unitFrom(k, m[k]); u != nil {
			res.Units = append(res.Units, u)
		}
	}
	return res, nil
}

func unitFrom(key string, raw json.RawMessage) *domain.Unit {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return &domain.Unit{Key: key, SourceText: s}
	}
	var forms []string
	if json.Unmarshal(raw, &forms) == nil && len(forms) > 0 {
		return &domain.Unit{Key: key, SourceText: forms[len(forms)-1], Numerus: true}
	}
	var byCategory map[string]string
	if json.Unmarshal(raw, &byCategory) == nil && len(byCategory) > 0 {
		if other, ok := byCategory["other"]; ok {
			return &domain.Unit{Key: key, SourceText: other, Numerus: true}
		}
	}
	return nil
}
