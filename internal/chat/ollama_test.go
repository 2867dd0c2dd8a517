package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gemma3:12b" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Stream {
			t.Error("expected stream=false")
		}
		if req.Format != "json" {
			t.Errorf("format = %q, want json", req.Format)
		}
		if len(req.Messages) != 3 {
			t.Errorf("expected 3 messages, got %d", len(req.Messages))
		}
		if req.Messages[0].Role != "system" || req.Messages[0].Content != "be terse" {
			t.Errorf("unexpected system message: %+v", req.Messages[0])
		}
		last := req.Messages[2]
		if last.Role != RoleUser || last.Content != "classify this" {
			t.Errorf("unexpected user message: %+v", last)
		}
		if len(last.Images) != 1 || last.Images[0] != "AQID" {
			t.Errorf("expected base64 image AQID, got %v", last.Images)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "FASHION_REQUEST"},
		})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL+"/", "", 0)
	got, err := client.Generate(context.Background(), Prompt{
		User:    "classify this",
		System:  "be terse",
		History: []Message{{Role: RoleAssistant, Content: "hello"}},
		Image:   &Image{Data: []byte{1, 2, 3}, MIMEType: "image/jpeg"},
		JSON:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "FASHION_REQUEST" {
		t.Errorf("expected FASHION_REQUEST, got %q", got)
	}
}

func TestOllamaGenerateNoMessages(t *testing.T) {
	client := NewOllamaClient("http://127.0.0.1:0", "", 0)
	_, err := client.Generate(context.Background(), Prompt{System: "only a system prompt"})
	if !errors.Is(err, ErrNoMessages) {
		t.Errorf("expected ErrNoMessages, got %v", err)
	}
}

func TestOllamaGenerateHistoryOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 1 || req.Format != "" {
			t.Errorf("unexpected request: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{"message": map[string]string{"content": "ok"}})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "", 0)
	got, err := client.Generate(context.Background(), Prompt{
		History: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil || got != "ok" {
		t.Errorf("Generate = (%q, %v), want (ok, nil)", got, err)
	}
}

func TestOllamaGenerateHistoryImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 3 {
			t.Errorf("expected 3 messages, got %d", len(req.Messages))
		}
		for i, m := range req.Messages {
			if (len(m.Images) == 1) != (i == 2) {
				t.Errorf("message %d images = %v", i, m.Images)
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"message": map[string]string{"content": "ok"}})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "", 0)
	_, err := client.Generate(context.Background(), Prompt{
		History: []Message{
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello"},
			{Role: RoleUser, Content: "style this"},
		},
		Image: &Image{Data: []byte{1, 2}, MIMEType: "image/png"},
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOllamaGenerateErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantTransport bool
		wantMalformed bool
	}{
		{"server error", http.StatusInternalServerError, "boom", true, false},
		{"not found", http.StatusNotFound, `{"error":"model not found"}`, true, false},
		{"invalid json", http.StatusOK, "not json", false, true},
		{"missing message", http.StatusOK, `{"done":true}`, false, true},
		{"error field", http.StatusOK, `{"error":"out of memory"}`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewOllamaClient(server.URL, "", 0)
			_, err := client.Generate(context.Background(), Prompt{User: "hello"})
			if err == nil {
				t.Fatal("expected error")
			}
			if IsTransport(err) != tt.wantTransport {
				t.Errorf("IsTransport = %v, want %v (err: %v)", IsTransport(err), tt.wantTransport, err)
			}
			if IsMalformed(err) != tt.wantMalformed {
				t.Errorf("IsMalformed = %v, want %v (err: %v)", IsMalformed(err), tt.wantMalformed, err)
			}
		})
	}
}

func TestOllamaGenerateUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewOllamaClient(url, "", 0)
	_, err := client.Generate(context.Background(), Prompt{User: "hello"})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if te.Service != "ollama" {
		t.Errorf("Service = %q, want ollama", te.Service)
	}
}
