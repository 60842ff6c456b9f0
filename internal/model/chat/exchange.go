package chat

import "encoding/json"

// Request is the body posted to the /chat endpoint.
type Request struct {
	Message string `json:"message"`
}

// Response is the success envelope returned by the /chat endpoint.
// EmotionParameters is owned by the server and carried verbatim.
type Response struct {
	AIMessage         string          `json:"ai_message"`
	EmotionParameters json.RawMessage `json:"emotion_parameters"`
}
