package valvevdf

import (
	"bufio"
	"bytes"
	"linguist/internal/domain"
	"linguist/internal/ports"
	"regexp"
	"strings"
)

var pairRE = regexp.MustCompile(`"((?:[^"\\]|\\.)+)"\s+"((?:[^"\\]|\\.)*)"`)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "valvevdf" }

func (p *Parser) Parse(data []byte) (ports.ParseResult, error) {
	data = stripBOM(data)
	// Minimal scanner for tokens inside `tokens { ... }` block.
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	inTokens := false
	var locale string
	units := make([]*domain.Unit, 0, 256)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if len(line) == 0 || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), `"tokens"`) {
			inTokens = true
			continue
		}
		if !inTokens {
			if m := pairRE.FindStringSubmatch(line); len(m) == 3 && strings.EqualFold(m[1], "language") {
				locale = unescapeVDF(m[2])
			}
			continue
		}
		if strings.HasPrefix(line, "}") { // tokens block end
			inTokens = false
			continue
		}
		m := pairRE.FindStringSubmatch(line)
		if len(m) == 3 {
			units = append(units, &domain.Unit{Key: unescapeVDF(m[1]), SourceText: unescapeVDF(m[2])})
		}
	}
	if err := sc.Err(); err != nil {
		return ports.ParseResult{}, err
	}
	return ports.ParseResult{Units: units, Locale: locale}, nil
}

func unescapeVDF(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	r := strings.NewReplacer(`\\`, `\`, `\"`, `"`, `\n`, "\n", `\t`, "\t")
	return r.Replace(s)
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}
