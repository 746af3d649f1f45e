package catalog

import "strings"

// CreateStatement renders a CREATE TABLE statement from column metadata.
// Constraints other than NOT NULL and DEFAULT are not reconstructed.
func CreateStatement(rel Relation) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(QuoteIdent(rel.Namespace))
	b.WriteByte('.')
	b.WriteString(QuoteIdent(rel.Name))
	b.WriteString(" (\n")

	for i, col := range rel.Columns {
		b.WriteString("    ")
		b.WriteString(QuoteIdent(col.Name))
		b.WriteByte(' ')
		b.WriteString(col.Type)
		if !col.Nullable {
			b.WriteString(" NOT NULL")
		}
		if col.Default != nil {
			b.WriteString(" DEFAULT ")
			b.WriteString(*col.Default)
		}
		if i < len(rel.Columns)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}

	b.WriteString(");")
	return b.String()
}

// QuoteIdent double-quotes an identifier unless it is a plain lower-case name.
func QuoteIdent(s string) string {
	if isPlainIdent(s) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func isPlainIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
