// Package widget implements the chat client component: it owns the chat log,
// the input field and the parameter display through a Surface, and performs a
// single exchange with the backend per submission.
package widget

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/zhouzirui/mindcare/internal/model/chat"
)

// FailureMessage is logged as an ai entry whenever an exchange fails.
const FailureMessage = "エラーが発生しました。サーバーが起動しているか確認してください。"

// failurePrefix precedes the reason shown in the parameter display.
const failurePrefix = "エラー: "

// Surface is the UI the widget renders into.
type Surface interface {
	AppendMessage(msg chat.Message)
	ScrollToBottom()
	ClearInput()
	ShowParameters(text string)
}

// Sender sends one message to the backend.
type Sender interface {
	Send(ctx context.Context, text string) (*chat.Response, error)
}

// Outcome is the result of one exchange, ready to be rendered.
type Outcome struct {
	Response *chat.Response
	Err      error
}

// Widget is the chat client component.
type Widget struct {
	surface Surface
	sender  Sender
	logger  *zap.Logger

	mu       sync.Mutex
	inflight sync.WaitGroup
}

// New binds the widget to its surface and transport.
func New(surface Surface, sender Sender, logger *zap.Logger) *Widget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Widget{surface: surface, sender: sender, logger: logger}
}

// Submit handles a form submission. Empty input is ignored. Otherwise the user
// message is logged and the input cleared before any network activity; the
// returned text is what the caller must send.
func (w *Widget) Submit(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	w.append(chat.Message{Text: raw, Sender: chat.SenderUser})
	w.surface.ClearInput()
	return raw, true
}

// SendMessage performs the exchange and renders its outcome. The returned
// error is informational: failures are already rendered on the surface.
func (w *Widget) SendMessage(ctx context.Context, text string) error {
	outcome := w.Exchange(ctx, text)
	w.Render(outcome)
	return outcome.Err
}

// Exchange talks to the backend without touching the surface, so it may run
// off the UI goroutine.
func (w *Widget) Exchange(ctx context.Context, text string) Outcome {
	resp, err := w.sender.Send(ctx, text)
	if err != nil {
		w.logger.Warn("chat exchange failed", zap.Error(err))
		return Outcome{Err: err}
	}
	return Outcome{Response: resp}
}

// Render applies an exchange outcome to the surface.
func (w *Widget) Render(outcome Outcome) {
	if outcome.Err == nil && outcome.Response != nil {
		params, err := FormatParameters(outcome.Response.EmotionParameters)
		if err == nil {
			w.append(chat.Message{Text: outcome.Response.AIMessage, Sender: chat.SenderAI})
			w.surface.ShowParameters(params)
			return
		}
		outcome.Err = err
	}

	w.append(chat.Message{Text: FailureMessage, Sender: chat.SenderAI, Failed: true})
	reason := "unknown error"
	if outcome.Err != nil {
		reason = outcome.Err.Error()
	}
	w.surface.ShowParameters(failurePrefix + reason)
}

// SubmitAsync is Submit followed by a background SendMessage, for hosts that
// have no event loop of their own. Surface calls are serialised; overlapping
// submissions are neither cancelled nor de-duplicated, so replies render in
// completion order.
func (w *Widget) SubmitAsync(ctx context.Context, raw string) bool {
	w.mu.Lock()
	text, ok := w.Submit(raw)
	w.mu.Unlock()
	if !ok {
		return false
	}

	w.inflight.Add(1)
	go func() {
		defer w.inflight.Done()
		outcome := w.Exchange(ctx, text)

		w.mu.Lock()
		defer w.mu.Unlock()
		w.Render(outcome)
	}()
	return true
}

// Wait blocks until every SubmitAsync exchange has been rendered.
func (w *Widget) Wait() {
	w.inflight.Wait()
}

func (w *Widget) append(msg chat.Message) {
	w.surface.AppendMessage(msg)
	w.surface.ScrollToBottom()
}
