// Package risk sorts statements into read-only and mutating by their
// leading keyword. It does not parse SQL: comments, string literals,
// writes wrapped in a CTE and multi-statement batches are not understood.
package risk

import (
	"strings"
	"unicode"
)

type Level string

const (
	ReadOnly Level = "read_only"
	Mutating Level = "mutating"
)

var mutatingKeywords = []string{
	"CREATE", "ALTER", "DROP", "TRUNCATE", "RENAME",
	"INSERT", "UPDATE", "DELETE", "MERGE", "REPLACE",
	"GRANT", "REVOKE",
}

func Classify(statement string) Level {
	s := strings.ToUpper(strings.TrimLeftFunc(statement, unicode.IsSpace))
	for _, kw := range mutatingKeywords {
		if !strings.HasPrefix(s, kw) {
			continue
		}
		rest := s[len(kw):]
		if rest == "" {
			return Mutating
		}
		if r := []rune(rest)[0]; unicode.IsSpace(r) {
			return Mutating
		}
	}
	return ReadOnly
}

func IsMutating(statement string) bool {
	return Classify(statement) == Mutating
}
