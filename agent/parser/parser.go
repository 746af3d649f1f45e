// Package parser pulls the statement and optional disclaimer out of the
// model's final answer.
package parser

import "strings"

const (
	StatementOpen   = "<sql>"
	StatementClose  = "</sql>"
	DisclaimerOpen  = "<disclaimer>"
	DisclaimerClose = "</disclaimer>"
)

// Output holds the extracted parts. An empty field means absent.
type Output struct {
	Statement  string `json:"statement,omitempty"`
	Disclaimer string `json:"disclaimer,omitempty"`
}

func (o Output) HasStatement() bool {
	return o.Statement != ""
}

type Extractor interface {
	Extract(text string) Output
}

// MarkerExtractor finds the first delimited block for each marker pair.
type MarkerExtractor struct{}

var _ Extractor = MarkerExtractor{}

func (MarkerExtractor) Extract(text string) Output {
	return Output{
		Statement:  between(text, StatementOpen, StatementClose),
		Disclaimer: between(text, DisclaimerOpen, DisclaimerClose),
	}
}

// Parse uses the default marker extractor.
func Parse(text string) Output {
	return MarkerExtractor{}.Extract(text)
}

func between(text, open, close string) string {
	start := strings.Index(text, open)
	if start < 0 {
		return ""
	}
	rest := text[start+len(open):]
	end := strings.Index(rest, close)
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}
