package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/zhouzirui/mindcare/internal/analysis/emotion"
	"github.com/zhouzirui/mindcare/pkg/utils"
)

// ErrEmptyReply is returned when the model output carries no ai_response.
var ErrEmptyReply = errors.New("model returned no ai_response")

type modelPayload struct {
	AIResponse      string          `json:"ai_response"`
	EmotionAnalysis json.RawMessage `json:"emotion_analysis"`
}

// parseModelOutput extracts the JSON object from the raw model text and
// returns the reply plus the full object as the emotion parameters.
func parseModelOutput(raw, userMessage string) (string, json.RawMessage, error) {
	object, err := extractObject(raw)
	if err != nil {
		return "", nil, fmt.Errorf("parse model output: %w (raw: %s)", err, raw)
	}

	var payload modelPayload
	if err := json.Unmarshal(object, &payload); err != nil {
		return "", nil, fmt.Errorf("parse model output: %w (raw: %s)", err, raw)
	}

	reply := strings.TrimSpace(payload.AIResponse)
	if reply == "" {
		return "", nil, fmt.Errorf("%w (raw: %s)", ErrEmptyReply, raw)
	}

	if isNull(payload.EmotionAnalysis) {
		object, err = withHeuristicAnalysis(object, userMessage)
		if err != nil {
			return "", nil, err
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, object); err != nil {
		return "", nil, fmt.Errorf("compact emotion parameters: %w", err)
	}
	return reply, compact.Bytes(), nil
}

func extractObject(content string) ([]byte, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}
	return []byte(trimmed[start : end+1]), nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// withHeuristicAnalysis fills emotion_analysis from keyword rules when the
// model left it out. Member order and string escapes of the object are kept.
func withHeuristicAnalysis(object []byte, userMessage string) ([]byte, error) {
	decoded, err := utils.DecodeOrdered(object)
	if err != nil {
		return nil, fmt.Errorf("parse model output: %w", err)
	}
	fields, ok := decoded.(utils.OrderedObject)
	if !ok {
		return nil, fmt.Errorf("parse model output: top-level value is not an object")
	}

	fields.Set("emotion_analysis", emotion.Analyze(userMessage))

	merged, err := utils.EncodeJSON(fields, "")
	if err != nil {
		return nil, fmt.Errorf("encode emotion parameters: %w", err)
	}
	return merged, nil
}
