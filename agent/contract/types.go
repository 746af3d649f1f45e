package contract

import "time"

type Purpose string

const (
	PurposeGenerate Purpose = "generate"
	PurposeExplain  Purpose = "explain"
)

// SessionCategory is written only by the execution gate.
const (
	SessionCategory = "session"
	KeyLastQuery    = "last_query"
	KeyLastError    = "last_error"
)

type MemoryEntry struct {
	Category  string    `json:"category"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Notes     *string   `json:"notes,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Column struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Nullable bool    `json:"nullable"`
	Default  *string `json:"default,omitempty"`
}

type Relation struct {
	Namespace string   `json:"namespace"`
	Name      string   `json:"name"`
	Columns   []Column `json:"columns"`
	Create    string   `json:"create_statement"`
}

func (r Relation) Qualified() string {
	return r.Namespace + "." + r.Name
}

type QueryResult struct {
	RowCount int      `json:"row_count"`
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
}

type ToolCall struct {
	ID      string         `json:"id"`
	Tool    string         `json:"tool"`
	Args    map[string]any `json:"args,omitempty"`
	RawArgs string         `json:"-"`
}

// ToolResult is the payload returned to the model for one tool call.
// Result is set when Success is true, Error otherwise.
type ToolResult struct {
	CallID  string `json:"-"`
	Tool    string `json:"tool"`
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}
