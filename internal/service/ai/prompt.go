package ai

import (
	"fmt"
	"strings"
)

// PromptTemplate describes how the mental-care partner is instructed.
type PromptTemplate struct {
	SystemPrompt string
	Rules        []string
	Schema       string
}

// DefaultTemplate is the mental-care partner used for every conversation.
func DefaultTemplate() *PromptTemplate {
	return &PromptTemplate{
		SystemPrompt: "あなたはAIメンタルケア・パートナーです。ユーザーの話を深く共感し、受け止め、否定しません。",
		Rules: []string{
			"会話履歴全体を考慮すること",
			"ユーザーの最新メッセージを分析し、JSONスキーマに従って応答すること",
			"JSONオブジェクト以外のテキストを出力しないこと",
		},
		Schema: responseSchema,
	}
}

// BuildSystemPrompt renders the persistent instructions.
func (t *PromptTemplate) BuildSystemPrompt() string {
	var builder strings.Builder
	builder.WriteString(t.SystemPrompt)
	if len(t.Rules) > 0 {
		builder.WriteString("\n\nルール：\n- ")
		builder.WriteString(strings.Join(t.Rules, "\n- "))
	}
	return builder.String()
}

// BuildTurnPrompt wraps the latest user message with the response schema.
// Only the raw message is stored in history; this text is sent for the current turn.
func (t *PromptTemplate) BuildTurnPrompt(userMessage string) string {
	return fmt.Sprintf(`以下の「ユーザーの最新メッセージ」を分析し、JSONスキーマに従って応答してください。

JSONスキーマ:
`+"```json"+`
%s
`+"```"+`
---
ユーザーの最新メッセージ:
%q`, strings.TrimSpace(t.Schema), userMessage)
}

const responseSchema = `
{
  "emotion_analysis": {
    "primary_emotion": "string (joy, sadness, anger, fear, anxiety, etc.)",
    "intensity": "float (0.0-1.0)",
    "stress_level": "float (0.0-1.0)"
  },
  "insight": {
    "key_topic": "string (ユーザーの悩みの中心)",
    "underlying_need": "string (ユーザーが求めていること: '共感', 'アドバイス', '聞いてほしい')"
  },
  "ai_response": "string (上記すべてを統合した、非常に優しく共感的な応答)"
}
`
