package httpclient

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var translationRE = regexp.MustCompile(`(?s)"translation"\s*:\s*"(.*?)"`)

// extractTranslation pulls the translation out of a model reply. Models do
// not always honour JSON mode, so fenced blocks, embedded objects and
// labelled plain text are accepted too.
func extractTranslation(content string) (string, error) {
	s := unfence(content)
	var obj struct {
		Translation string `json:"translation"`
	}
	if err := json.Unmarshal([]byte(s), &obj); err == nil && obj.Translation != "" {
		return obj.Translation, nil
	}
	if t, ok := matchTranslation(s); ok {
		return t, nil
	}
	if inner, ok := embeddedObject(s); ok {
		if err := json.Unmarshal([]byte(inner), &obj); err == nil && obj.Translation != "" {
			return obj.Translation, nil
		}
		if t, ok := matchTranslation(inner); ok {
			return t, nil
		}
	}
	if !strings.Contains(s, "{") {
		lower := strings.ToLower(s)
		for _, k := range []string{"translation:", "translated:", "result:", "output:"} {
			if pos := strings.Index(lower, k); pos >= 0 && pos < 80 {
				if cand := strings.TrimSpace(s[pos+len(k):]); cand != "" {
					return cand, nil
				}
			}
		}
		if s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("failed to parse translation JSON; content: %s", abbreviate(s, 2000))
}

// extractForms reads {"forms": [...]} from a model reply.
func extractForms(content string) ([]string, error) {
	s := unfence(content)
	var obj struct {
		Forms []string `json:"forms"`
	}
	if err := json.Unmarshal([]byte(s), &obj); err == nil && len(obj.Forms) > 0 {
		return obj.Forms, nil
	}
	if inner, ok := embeddedObject(s); ok {
		if err := json.Unmarshal([]byte(inner), &obj); err == nil && len(obj.Forms) > 0 {
			return obj.Forms, nil
		}
	}
	return nil, fmt.Errorf("failed to parse translation JSON; content: %s", abbreviate(s, 2000))
}

func unfence(content string) string {
	s := strings.TrimSpace(content)
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := strings.TrimPrefix(s[idx+3:], "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			s = strings.TrimSpace(rest[:j])
		}
	}
	return s
}

func embeddedObject(s string) (string, bool) {
	i := strings.Index(s, "{")
	j := strings.LastIndex(s, "}")
	if i < 0 || j <= i {
		return "", false
	}
	return s[i : j+1], true
}

func matchTranslation(s string) (string, bool) {
	m := translationRE.FindStringSubmatch(s)
	if len(m) != 2 {
		return "", false
	}
	t := strings.ReplaceAll(m[1], `\n`, "\n")
	return strings.ReplaceAll(t, `\"`, `"`), true
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
