package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zhouzirui/mindcare/internal/widget"
)

func TestRunOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ai_message":"ok","emotion_parameters":{"intensity":0.3}}`))
	}))
	defer srv.Close()

	client := widget.NewClient(srv.URL+"/chat", nil)
	assert.NoError(t, runOnce(context.Background(), client, "hello"))
}

func TestRunOnceFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := widget.NewClient(srv.URL+"/chat", nil)
	assert.ErrorIs(t, runOnce(context.Background(), client, "hello"), errExchangeFailed)
	assert.Error(t, runOnce(context.Background(), client, ""))
}
