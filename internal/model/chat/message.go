package chat

// Sender tags who authored a message shown in the chat log.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one immutable entry of the client-side chat log.
type Message struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
	// Failed marks the fixed entry logged when an exchange fails.
	Failed bool `json:"failed,omitempty"`
}
