package protocol

// Tool defines a function that a persona may call through its backend.
// Parameters uses JSON Schema format to describe the function's input.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}
