package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meetnotes-team/meetnotes/pkg/config"
)

func TestCreateChatCompletion_Success(t *testing.T) {
	// Mock chat-completions server
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		var payload ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if len(payload.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(payload.Messages))
		}
		if payload.MaxTokens != 100 {
			t.Fatalf("expected max_tokens 100, got %d", payload.MaxTokens)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "generated text"}},
			},
		})
	}))
	defer ts.Close()

	client := NewClient(&config.LLMConfig{APIKey: "test-key", BaseURL: ts.URL})

	msgs := []Message{
		{Role: "system", Content: "you are a summarizer"},
		{Role: "user", Content: "summarize this"},
	}
	got, err := client.CreateChatCompletion(context.Background(), msgs, 100, 0.7)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if got != "generated text" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestCreateChatCompletion_NoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer ts.Close()

	client := NewClient(&config.LLMConfig{APIKey: "test-key", BaseURL: ts.URL})
	if _, err := client.CreateChatCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}}, 10, 0); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestCreateChatCompletion_EmptyContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": ""}},
			},
		})
	}))
	defer ts.Close()

	client := NewClient(&config.LLMConfig{APIKey: "test-key", BaseURL: ts.URL})
	_, err := client.CreateChatCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}}, 10, 0)
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestCreateChatCompletion_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewClient(&config.LLMConfig{APIKey: "test-key", BaseURL: ts.URL})
	if _, err := client.CreateChatCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}}, 10, 0); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
