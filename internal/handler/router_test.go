package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	model "github.com/zhouzirui/mindcare/internal/model/chat"
	chatservice "github.com/zhouzirui/mindcare/internal/service/chat"
	"github.com/zhouzirui/mindcare/internal/widget"
)

type fixedAssistant struct{}

func (fixedAssistant) Reply(context.Context, []model.Turn, string) (*model.Response, error) {
	return &model.Response{
		AIMessage:         "ok",
		EmotionParameters: json.RawMessage(`{"emotion_analysis":{"primary_emotion":"joy"}}`),
	}, nil
}

func newTestRouter() http.Handler {
	svc := chatservice.NewService(chatservice.NewMemoryStore(), fixedAssistant{}, chatservice.Options{}, nil)
	return NewRouter(svc, RouterOptions{AllowedOrigins: []string{"*"}})
}

func TestRouterHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"ok"`)) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestRouterChatWithCORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(`{"message":"hi"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://127.0.0.1:8080")
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}

func TestRouterServesWidget(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/script.js", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

type htmlTopicAssistant struct{}

func (htmlTopicAssistant) Reply(context.Context, []model.Turn, string) (*model.Response, error) {
	return &model.Response{
		AIMessage:         "ok",
		EmotionParameters: json.RawMessage(`{"key_topic":"仕事 & <家族>"}`),
	}, nil
}

func TestRouterChatKeepsHTMLCharactersForWidget(t *testing.T) {
	svc := chatservice.NewService(chatservice.NewMemoryStore(), htmlTopicAssistant{}, chatservice.Options{}, nil)
	srv := httptest.NewServer(NewRouter(svc, RouterOptions{}))
	defer srv.Close()

	resp, err := widget.NewClient(srv.URL+"/chat", srv.Client()).Send(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if !bytes.Contains(resp.EmotionParameters, []byte(`"仕事 & <家族>"`)) {
		t.Fatalf("server escaped parameters: %s", resp.EmotionParameters)
	}

	params, err := widget.FormatParameters(resp.EmotionParameters)
	if err != nil {
		t.Fatalf("FormatParameters err: %v", err)
	}
	if want := "{\n  \"key_topic\": \"仕事 & <家族>\"\n}"; params != want {
		t.Fatalf("unexpected display:\n got %q\nwant %q", params, want)
	}
}
