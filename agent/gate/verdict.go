package gate

import (
	"fmt"
	"strings"
	"text/tabwriter"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	riskx "github.com/tanpawarit/ai-toolkit/agent/risk"
)

type VerdictKind string

const (
	KindExecuted    VerdictKind = "executed"
	KindQuarantined VerdictKind = "quarantined"
	KindNoStatement VerdictKind = "no_statement"
)

const DefaultWarning = "This statement may change data or schema. Review it and run it manually if it is intended."

type Verdict struct {
	Kind       VerdictKind            `json:"kind"`
	Statement  string                 `json:"statement,omitempty"`
	Disclaimer string                 `json:"disclaimer,omitempty"`
	Risk       riskx.Level            `json:"risk,omitempty"`
	Result     *contractx.QueryResult `json:"result,omitempty"`
	// Answer is the model's full final text.
	Answer string `json:"answer,omitempty"`
}

// Render formats the verdict for a terminal.
func (v Verdict) Render() string {
	var b strings.Builder
	switch v.Kind {
	case KindQuarantined:
		banner := strings.Repeat("!", 60)
		b.WriteString(banner + "\n")
		b.WriteString("QUARANTINED: this statement was NOT executed.\n")
		b.WriteString(v.Disclaimer + "\n")
		b.WriteString(banner + "\n")
		b.WriteString(v.Statement + "\n")
	case KindExecuted:
		b.WriteString(v.Statement + "\n\n")
		if v.Result != nil {
			renderRows(&b, *v.Result)
		}
	default:
		b.WriteString("No SQL statement found in the answer.\n")
		if answer := strings.TrimSpace(v.Answer); answer != "" {
			b.WriteString("\n" + answer + "\n")
		}
	}
	return b.String()
}

func renderRows(b *strings.Builder, res contractx.QueryResult) {
	if len(res.Columns) > 0 {
		w := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, strings.Join(res.Columns, "\t"))
		for _, row := range res.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				if v == nil {
					cells[i] = "NULL"
					continue
				}
				cells[i] = fmt.Sprint(v)
			}
			fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
		_ = w.Flush()
	}
	fmt.Fprintf(b, "(%d row(s))\n", res.RowCount)
}
