package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

var argRE = regexp.MustCompile(`%L?([0-9]{1,2})`)

// Arg fills QString::arg style markers. Each argument replaces every
// occurrence of the lowest-numbered marker still present, so
// Arg("%2 of %1", "a", "b") is "b of a".
func Arg(s string, args ...string) string {
	for _, a := range args {
		s = argOnce(s, a)
	}
	return s
}

func argOnce(s, a string) string {
	matches := argRE.FindAllStringSubmatchIndex(s, -1)
	lowest := 100
	for _, m := range matches {
		n, _ := strconv.Atoi(s[m[2]:m[3]])
		if n > 0 && n < lowest {
			lowest = n
		}
	}
	if lowest == 100 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		n, _ := strconv.Atoi(s[m[2]:m[3]])
		if n != lowest {
			continue
		}
		b.WriteString(s[last:m[0]])
		b.WriteString(a)
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
