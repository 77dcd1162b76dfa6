package summary

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestSummarize_Success は要約APIの正常系を検証する。
func TestSummarize_Success(t *testing.T) {
	var gotBody summarizeRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(summarizeResponse{Summary: "要約結果です。"})
	}))
	defer server.Close()

	client := NewClient(server.Client(), discardLogger(), server.URL, "test-api-key")

	summary, err := client.Summarize(context.Background(), "長い発言の全文がここに入ります。")
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}

	if summary != "要約結果です。" {
		t.Errorf("summary = %q", summary)
	}
	if gotBody.Text != "長い発言の全文がここに入ります。" {
		t.Errorf("request text = %q", gotBody.Text)
	}
	if gotAuth != "Bearer test-api-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

// TestSummarize_NoAPIKey はAPIキー未設定時にAuthorizationヘッダーが付かないことを検証する。
func TestSummarize_NoAPIKey(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(summarizeResponse{Summary: "要約"})
	}))
	defer server.Close()

	client := NewClient(server.Client(), discardLogger(), server.URL, "")

	if _, err := client.Summarize(context.Background(), "テキスト"); err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
}

// TestSummarize_HTTPError はエラーステータスがエラーになることを検証する。
func TestSummarize_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.Client(), discardLogger(), server.URL, "")

	if _, err := client.Summarize(context.Background(), "テキスト"); err == nil {
		t.Error("expected error for 503 response")
	}
}

// TestSummarize_EmptySummary は空の要約がエラーになることを検証する。
func TestSummarize_EmptySummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(summarizeResponse{Summary: ""})
	}))
	defer server.Close()

	client := NewClient(server.Client(), discardLogger(), server.URL, "")

	if _, err := client.Summarize(context.Background(), "テキスト"); err == nil {
		t.Error("expected error for empty summary")
	}
}

// TestSummarize_EmptyText は空テキストの要約要求がエラーになることを検証する。
func TestSummarize_EmptyText(t *testing.T) {
	client := NewClient(http.DefaultClient, discardLogger(), "http://example.invalid", "")

	if _, err := client.Summarize(context.Background(), ""); err == nil {
		t.Error("expected error for empty text")
	}
}

// TestSummarize_InvalidJSON は不正なレスポンスがエラーになることを検証する。
func TestSummarize_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.Client(), discardLogger(), server.URL, "")

	if _, err := client.Summarize(context.Background(), "テキスト"); err == nil {
		t.Error("expected error for invalid JSON response")
	}
}
