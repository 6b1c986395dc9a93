package model

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a client-side conversation. The relay never stores it.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
