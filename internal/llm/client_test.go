package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func completionJSON(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func TestComplete(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionJSON("BPM: 128\nGenre: dance pop"))
	}))
	defer server.Close()

	client := New(server.URL, "sk-test", "test-model")

	reply, err := client.Complete(context.Background(), "estimate tempo")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != "BPM: 128\nGenre: dance pop" {
		t.Errorf("Complete() = %q", reply)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q, want Bearer sk-test", gotAuth)
	}
	if gotBody.Model != "test-model" {
		t.Errorf("request model = %q, want test-model", gotBody.Model)
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Content != "estimate tempo" {
		t.Errorf("request messages = %+v", gotBody.Messages)
	}
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload any
	}{
		{
			name:    "server error status",
			status:  http.StatusInternalServerError,
			payload: map[string]any{},
		},
		{
			name:    "api error field",
			status:  http.StatusOK,
			payload: map[string]any{"error": map[string]any{"message": "insufficient quota"}},
		},
		{
			name:    "no choices",
			status:  http.StatusOK,
			payload: map[string]any{"choices": []any{}},
		},
		{
			name:    "empty content",
			status:  http.StatusOK,
			payload: completionJSON("   "),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(tt.payload)
			}))
			defer server.Close()

			client := New(server.URL, "sk-test", "")

			if _, err := client.Complete(context.Background(), "prompt"); err == nil {
				t.Error("Complete() error = nil, want error")
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	client := New("", "key", "")

	if client.baseURL != defaultBaseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL, defaultBaseURL)
	}
	if client.model != defaultModel {
		t.Errorf("model = %q, want %q", client.model, defaultModel)
	}
}
