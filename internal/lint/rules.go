// Package lint checks Qt Linguist catalogs for structural and translation
// problems.
package lint

import "fmt"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// ParseSeverity accepts "error", "warning" (or "warn") and "info".
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

type Rule string

const (
	RuleXMLSyntax            Rule = "xml-syntax"
	RuleEmptySource          Rule = "empty-source"
	RuleConflictingDuplicate Rule = "conflicting-duplicate"
	RuleDuplicateMessage     Rule = "duplicate-message"
	RuleLocationUnresolved   Rule = "location-unresolved"
	RuleMissingLanguage      Rule = "missing-language"
	RuleUnfinished           Rule = "unfinished"
	RulePlaceholderMismatch  Rule = "placeholder-mismatch"
	RuleNewlineMismatch      Rule = "newline-mismatch"
	RuleNumerusForms         Rule = "numerus-forms"
)

var defaults = map[Rule]Severity{
	RuleXMLSyntax:            SeverityError,
	RuleEmptySource:          SeverityError,
	RuleConflictingDuplicate: SeverityError,
	RuleDuplicateMessage:     SeverityWarning,
	RuleLocationUnresolved:   SeverityInfo,
	RuleMissingLanguage:      SeverityWarning,
	RuleUnfinished:           SeverityInfo,
	RulePlaceholderMismatch:  SeverityWarning,
	RuleNewlineMismatch:      SeverityWarning,
	RuleNumerusForms:         SeverityWarning,
}

// Rules lists every rule in report order.
func Rules() []Rule {
	return []Rule{
		RuleXMLSyntax,
		RuleEmptySource,
		RuleConflictingDuplicate,
		RuleDuplicateMessage,
		RuleLocationUnresolved,
		RuleMissingLanguage,
		RuleUnfinished,
		RulePlaceholderMismatch,
		RuleNewlineMismatch,
		RuleNumerusForms,
	}
}

// KnownRule reports whether r names a rule.
func KnownRule(r Rule) bool {
	_, ok := defaults[r]
	return ok
}

// DefaultSeverity returns the built-in severity of r.
func DefaultSeverity(r Rule) Severity { return defaults[r] }
