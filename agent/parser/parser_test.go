package parser

import "testing"

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want Output
	}{
		{
			name: "statement only",
			in:   "Here you go:\n<sql>\n  SELECT * FROM users;\n</sql>",
			want: Output{Statement: "SELECT * FROM users;"},
		},
		{
			name: "statement and disclaimer",
			in:   "<disclaimer> drops data </disclaimer> <sql>DROP TABLE users;</sql>",
			want: Output{Statement: "DROP TABLE users;", Disclaimer: "drops data"},
		},
		{
			name: "first block wins",
			in:   "<sql>SELECT 1</sql> then <sql>SELECT 2</sql>",
			want: Output{Statement: "SELECT 1"},
		},
		{
			name: "open without close",
			in:   "<sql>SELECT 1",
			want: Output{},
		},
		{
			name: "empty body",
			in:   "<sql>   </sql>",
			want: Output{},
		},
		{
			name: "no markers",
			in:   "I cannot answer that with SQL.",
			want: Output{},
		},
		{
			name: "nested markers are not understood",
			in:   "<sql>SELECT '<sql>x</sql>'</sql>",
			want: Output{Statement: "SELECT '<sql>x"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Parse(tt.in)
			if got != tt.want {
				t.Fatalf("Parse() = %+v, want %+v", got, tt.want)
			}
			if got.HasStatement() != (tt.want.Statement != "") {
				t.Fatalf("HasStatement() = %v", got.HasStatement())
			}
		})
	}
}
