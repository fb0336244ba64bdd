package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"linguist/internal/domain"
	"linguist/internal/ports"
	"strings"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "csv" }

func (p *Parser) Parse(data []byte) (ports.ParseResult, error) {
	data = stripBOM(data)
	r := csv.NewReader(bufio.NewReader(bytes.NewReader(data)))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return ports.ParseResult{}, err
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	col := func(names ...string) int {
		for _, name := range names {
			if i, ok := idx[name]; ok {
				return i
			}
		}
		return -1
	}
	keyIdx := col("key")
	srcIdx := col("source", "value", "text", "default")
	if srcIdx == -1 {
		return ports.ParseResult{}, errors.New("csv missing source column (source/value/text/default)")
	}
	ctxIdx := col("context")
	if keyIdx == -1 && ctxIdx == -1 {
		return ports.ParseResult{}, errors.New("csv needs a 'key' or 'context' column")
	}
	cmtIdx := col("comment", "disambiguation")
	trIdx := col("translation", "target")
	stIdx := col("status")

	res := ports.ParseResult{Translations: map[string]*domain.Translation{}}
	seen := map[string]struct{}{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ports.ParseResult{}, err
		}
		get := func(i int) string {
			if i >= 0 && i < len(rec) {
				return rec[i]
			}
			return ""
		}
		u := &domain.Unit{Key: get(keyIdx), Context: get(ctxIdx), SourceText: get(srcIdx), Comment: get(cmtIdx)}
		if u.Key == "" {
			if u.SourceText == "" {
				continue
			}
			u.Key = domain.MessageKey(u.Context, u.SourceText, u.Comment)
		}
		if _, dup := seen[u.Key]; dup {
			continue
		}
		seen[u.Key] = struct{}{}
		res.Units = append(res.Units, u)
		if tr := get(trIdx); tr != "" {
			status := strings.ToLower(strings.TrimSpace(get(stIdx)))
			if status == "" {
				status = domain.StatusFinished
			}
			res.Translations[u.Key] = &domain.Translation{Text: tr, Status: status}
		}
	}
	return res, nil
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}
