package widget

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zhouzirui/mindcare/internal/model/chat"
)

// recordingSurface captures every surface call in order.
type recordingSurface struct {
	mu     sync.Mutex
	events []string
	log    []chat.Message
	params string
}

func (s *recordingSurface) AppendMessage(msg chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, msg)
	s.events = append(s.events, "append:"+string(msg.Sender))
}

func (s *recordingSurface) ScrollToBottom() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "scroll")
}

func (s *recordingSurface) ClearInput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "clear")
}

func (s *recordingSurface) ShowParameters(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = text
	s.events = append(s.events, "params")
}

func (s *recordingSurface) snapshot() ([]string, []chat.Message, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...), append([]chat.Message(nil), s.log...), s.params
}

func replyServer(t *testing.T, status int, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSubmitEmptyInputIsNoop(t *testing.T) {
	var hits atomic.Int32
	srv := replyServer(t, http.StatusOK, `{"ai_message":"x","emotion_parameters":{}}`, &hits)
	surface := &recordingSurface{}
	w := New(surface, NewClient(srv.URL, srv.Client()), nil)

	_, ok := w.Submit("")
	assert.False(t, ok)
	assert.False(t, w.SubmitAsync(context.Background(), ""))
	w.Wait()

	events, log, _ := surface.snapshot()
	assert.Empty(t, events)
	assert.Empty(t, log)
	assert.Zero(t, hits.Load())
}

func TestSubmitLogsUserMessageAndClearsInputBeforeNetwork(t *testing.T) {
	release := make(chan struct{})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	surface := &recordingSurface{}
	w := New(surface, NewClient(srv.URL, srv.Client()), nil)

	require.True(t, w.SubmitAsync(context.Background(), "hello"))

	events, log, _ := surface.snapshot()
	require.Equal(t, []string{"append:user", "scroll", "clear"}, events)
	require.Len(t, log, 1)
	assert.Equal(t, chat.Message{Text: "hello", Sender: chat.SenderUser}, log[0])

	close(release)
	w.Wait()
	assert.EqualValues(t, 1, hits.Load())
}

func TestSendMessageRendersReplyAndParameters(t *testing.T) {
	srv := replyServer(t, http.StatusOK, `{"ai_message": "hello", "emotion_parameters": {"joy": 0.5}}`, nil)
	surface := &recordingSurface{}
	w := New(surface, NewClient(srv.URL, srv.Client()), nil)

	text, ok := w.Submit("hi")
	require.True(t, ok)
	require.NoError(t, w.SendMessage(context.Background(), text))

	events, log, params := surface.snapshot()
	assert.Equal(t, []string{"append:user", "scroll", "clear", "append:ai", "scroll", "params"}, events)
	require.Len(t, log, 2)
	assert.Equal(t, chat.Message{Text: "hello", Sender: chat.SenderAI}, log[1])
	assert.Equal(t, "{\n  \"joy\": 0.5\n}", params)
}

func TestSendMessageNonSuccessStatusRendersFailure(t *testing.T) {
	srv := replyServer(t, http.StatusServiceUnavailable, `{"error":"down"}`, nil)
	surface := &recordingSurface{}
	w := New(surface, NewClient(srv.URL, srv.Client()), nil)

	err := w.SendMessage(context.Background(), "hi")
	require.Error(t, err)

	_, log, params := surface.snapshot()
	require.Len(t, log, 1)
	assert.Equal(t, chat.Message{Text: FailureMessage, Sender: chat.SenderAI, Failed: true}, log[0])
	assert.True(t, strings.HasPrefix(params, "エラー: "))
	assert.Contains(t, params, "503")
}

func TestSendMessageTransportFailureMatchesStatusFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	surface := &recordingSurface{}
	w := New(surface, NewClient(url, nil), nil)

	err := w.SendMessage(context.Background(), "hi")
	require.Error(t, err)

	events, log, params := surface.snapshot()
	assert.Equal(t, []string{"append:ai", "scroll", "params"}, events)
	assert.Equal(t, FailureMessage, log[0].Text)
	assert.Equal(t, "エラー: "+err.Error(), params)
}

func TestSendMessageMalformedBodyRendersFailure(t *testing.T) {
	srv := replyServer(t, http.StatusOK, `not json`, nil)
	surface := &recordingSurface{}
	w := New(surface, NewClient(srv.URL, srv.Client()), nil)

	require.ErrorIs(t, w.SendMessage(context.Background(), "hi"), ErrMalformedResponse)

	_, log, _ := surface.snapshot()
	require.Len(t, log, 1)
	assert.Equal(t, FailureMessage, log[0].Text)
}

func TestOverlappingSubmissionsRenderInCompletionOrder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chat.Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Message == "slow" {
			<-release
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ai_message":         "re:" + req.Message,
			"emotion_parameters": map[string]any{"msg": req.Message},
		})
	}))
	transport := &http.Transport{}
	client := &http.Client{Transport: transport}
	defer func() {
		srv.Close()
		transport.CloseIdleConnections()
	}()

	surface := &recordingSurface{}
	w := New(surface, NewClient(srv.URL, client), nil)
	ctx := context.Background()

	require.True(t, w.SubmitAsync(ctx, "slow"))
	require.True(t, w.SubmitAsync(ctx, "fast"))

	require.Eventually(t, func() bool {
		_, log, _ := surface.snapshot()
		return len(log) == 3
	}, 5*time.Second, 10*time.Millisecond)

	close(release)
	w.Wait()

	events, log, params := surface.snapshot()
	texts := make([]string, 0, len(log))
	for _, msg := range log {
		texts = append(texts, string(msg.Sender)+":"+msg.Text)
	}
	assert.Equal(t, []string{"user:slow", "user:fast", "ai:re:fast", "ai:re:slow"}, texts)
	assert.Equal(t, "{\n  \"msg\": \"slow\"\n}", params)

	for i, ev := range events {
		if strings.HasPrefix(ev, "append:") {
			require.Less(t, i+1, len(events))
			assert.Equal(t, "scroll", events[i+1], "append at %d not followed by scroll", i)
		}
	}
}

func TestTextSurfaceWritesLogAndParameters(t *testing.T) {
	var out strings.Builder
	surface := NewTextSurface(&out)
	srv := replyServer(t, http.StatusOK, `{"ai_message":"hello","emotion_parameters":{"joy":0.5}}`, nil)
	w := New(surface, NewClient(srv.URL, srv.Client()), nil)

	text, ok := w.Submit("hi")
	require.True(t, ok)
	require.NoError(t, w.SendMessage(context.Background(), text))

	assert.Equal(t, "you> hi\nai> hello\n--- emotion parameters ---\n{\n  \"joy\": 0.5\n}\n", out.String())
}
