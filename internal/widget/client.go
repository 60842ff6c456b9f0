package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/zhouzirui/mindcare/internal/model/chat"
)

// DefaultEndpoint is the backend address the original widget talks to.
const DefaultEndpoint = "http://127.0.0.1:5000/chat"

// ErrMalformedResponse reports a 2xx body that does not carry the expected envelope.
var ErrMalformedResponse = errors.New("malformed chat response")

// StatusError is returned for any non-2xx reply. The body is never parsed.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("サーバーエラー: %d", e.Code)
}

// Doer is the HTTP capability the client needs. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs the single request/response exchange with the chat backend.
type Client struct {
	endpoint string
	http     Doer
}

// NewClient binds a client to a fixed endpoint. A nil doer falls back to a
// plain http.Client without timeout.
func NewClient(endpoint string, doer Doer) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if doer == nil {
		doer = &http.Client{}
	}
	return &Client{endpoint: endpoint, http: doer}
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send posts text once and decodes the reply envelope.
func (c *Client) Send(ctx context.Context, text string) (*chat.Response, error) {
	body, err := json.Marshal(chat.Request{Message: text})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	return decodeResponse(resp)
}

func decodeResponse(resp *http.Response) (*chat.Response, error) {
	var envelope struct {
		AIMessage         *string         `json:"ai_message"`
		EmotionParameters json.RawMessage `json:"emotion_parameters"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after the reply object", ErrMalformedResponse)
	}
	if envelope.AIMessage == nil {
		return nil, fmt.Errorf("%w: ai_message missing", ErrMalformedResponse)
	}
	if !isObject(envelope.EmotionParameters) {
		return nil, fmt.Errorf("%w: emotion_parameters is not an object", ErrMalformedResponse)
	}

	return &chat.Response{
		AIMessage:         *envelope.AIMessage,
		EmotionParameters: envelope.EmotionParameters,
	}, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
