package types

// Event represents a typed notification emitted by the settlement engines.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
