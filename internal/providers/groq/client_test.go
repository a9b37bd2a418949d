package groq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

type closeTracker struct {
	io.Reader
	closed *atomic.Bool
}

func (c closeTracker) Close() error {
	c.closed.Store(true)
	return nil
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGenerateTextMissingAPIKeySkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	client := NewClient(Options{
		APIKey: "   ",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls.Add(1)
			return nil, errors.New("unexpected call")
		})},
	})
	got := client.GenerateText(context.Background(), "hello")
	if got != "Error: Missing API Key" {
		t.Fatalf("GenerateText() = %q, want %q", got, "Error: Missing API Key")
	}
	if calls.Load() != 0 {
		t.Fatalf("network calls = %d, want 0", calls.Load())
	}
	if _, err := client.Generate(context.Background(), "hello"); KindOf(err) != KindMissingCredential {
		t.Fatalf("kind = %v, want %v", KindOf(err), KindMissingCredential)
	}
}

func TestGenerateTextTrimsContent(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"choices":[{"message":{"content":"  Hello!  "}}]}`)
	client := NewClient(Options{APIKey: "test", BaseURL: srv.URL})
	if got := client.GenerateText(context.Background(), "hi"); got != "Hello!" {
		t.Fatalf("GenerateText() = %q, want %q", got, "Hello!")
	}
}

func TestGenerateTextUsesFirstChoice(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"choices":[{"message":{"content":"first"}},{"message":{"content":"second"}}]}`)
	client := NewClient(Options{APIKey: "test", BaseURL: srv.URL})
	if got := client.GenerateText(context.Background(), "hi"); got != "first" {
		t.Fatalf("GenerateText() = %q, want %q", got, "first")
	}
}

func TestGenerateTextMissingMessageYieldsEmpty(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"choices":[{}]}`)
	client := NewClient(Options{APIKey: "test", BaseURL: srv.URL})
	text, err := client.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != "" {
		t.Fatalf("text = %q, want empty", text)
	}
}

func TestGenerateTextUnexpectedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty choices", body: `{"choices":[]}`},
		{name: "missing choices", body: `{"id":"cmpl-1"}`},
		{name: "null choices", body: `{"choices":null}`},
		{name: "top-level array", body: `[{"message":{"content":"x"}}]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(t, http.StatusOK, tc.body)
			client := NewClient(Options{APIKey: "test", BaseURL: srv.URL})
			if got := client.GenerateText(context.Background(), "hi"); got != "Error: Unexpected API response" {
				t.Fatalf("GenerateText() = %q, want %q", got, "Error: Unexpected API response")
			}
		})
	}
}

func TestGenerateTextHTTPError(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusTooManyRequests, "rate limited")
	client := NewClient(Options{APIKey: "test", BaseURL: srv.URL})
	if got := client.GenerateText(context.Background(), "hi"); got != "HTTP Error: 429 - rate limited" {
		t.Fatalf("GenerateText() = %q, want %q", got, "HTTP Error: 429 - rate limited")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want exactly one attempt", calls.Load())
	}
	_, err := client.Generate(context.Background(), "hi")
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if gerr.Kind != KindHTTPStatus || gerr.StatusCode != http.StatusTooManyRequests || gerr.Body != "rate limited" {
		t.Fatalf("unexpected error fields: %+v", gerr)
	}
}

func TestGenerateTextServerErrorKeepsRawBody(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, `{"error":{"message":"boom"}}`+"\n")
	client := NewClient(Options{APIKey: "test", BaseURL: srv.URL})
	want := "HTTP Error: 500 - {\"error\":{\"message\":\"boom\"}}\n"
	if got := client.GenerateText(context.Background(), "hi"); got != want {
		t.Fatalf("GenerateText() = %q, want %q", got, want)
	}
}

func TestGenerateTextMalformedJSON(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"choices": [`)
	client := NewClient(Options{APIKey: "test", BaseURL: srv.URL})
	got := client.GenerateText(context.Background(), "hi")
	if !strings.HasPrefix(got, "Unexpected Error: ") {
		t.Fatalf("GenerateText() = %q, want Unexpected Error prefix", got)
	}
}

func TestGenerateTextNullContentIsUnexpected(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "null content", body: `{"choices":[{"message":{"content":null}}]}`},
		{name: "null message", body: `{"choices":[{"message":null}]}`},
		{name: "numeric content", body: `{"choices":[{"message":{"content":42}}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(t, http.StatusOK, tc.body)
			client := NewClient(Options{APIKey: "test", BaseURL: srv.URL})
			_, err := client.Generate(context.Background(), "hi")
			if KindOf(err) != KindUnexpected {
				t.Fatalf("kind = %v, want %v (err %v)", KindOf(err), KindUnexpected, err)
			}
			if got := client.GenerateText(context.Background(), "hi"); !strings.HasPrefix(got, "Unexpected Error: ") {
				t.Fatalf("GenerateText() = %q, want Unexpected Error prefix", got)
			}
		})
	}
}

func TestGenerateTextMissingContentYieldsEmpty(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant"}}]}`)
	client := NewClient(Options{APIKey: "test", BaseURL: srv.URL})
	text, err := client.Generate(context.Background(), "hi")
	if err != nil || text != "" {
		t.Fatalf("Generate() = %q, %v; want empty, nil", text, err)
	}
}

func TestGenerateTextTransportError(t *testing.T) {
	client := NewClient(Options{
		APIKey: "test",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})},
	})
	got := client.GenerateText(context.Background(), "hi")
	if !strings.HasPrefix(got, "Request Error: ") || !strings.Contains(got, "connection refused") {
		t.Fatalf("GenerateText() = %q, want Request Error with cause", got)
	}
}

func TestGenerateTextTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	client := NewClient(Options{APIKey: "test", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Generate(context.Background(), "hi")
	if KindOf(err) != KindTransport {
		t.Fatalf("kind = %v, want %v (err=%v)", KindOf(err), KindTransport, err)
	}
}

func TestGenerateRequestShape(t *testing.T) {
	var captured *http.Request
	var payload map[string]any
	client := NewClient(Options{
		APIKey:  "secret-key",
		BaseURL: "https://llm.example.com/openai/v1/",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			captured = r
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				return nil, err
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       io.NopCloser(strings.NewReader(`{"choices":[{"message":{"content":"ok"}}]}`)),
			}, nil
		})},
	})
	if got := client.GenerateText(context.Background(), "Write a tagline."); got != "ok" {
		t.Fatalf("GenerateText() = %q, want ok", got)
	}
	if captured.Method != http.MethodPost {
		t.Fatalf("method = %s, want POST", captured.Method)
	}
	if captured.URL.String() != "https://llm.example.com/openai/v1/chat/completions" {
		t.Fatalf("url = %s", captured.URL.String())
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer secret-key" {
		t.Fatalf("authorization = %q", got)
	}
	if got := captured.Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("content-type = %q", got)
	}
	if payload["model"] != DefaultModel {
		t.Fatalf("model = %v, want %s", payload["model"], DefaultModel)
	}
	if payload["max_tokens"] != float64(200) {
		t.Fatalf("max_tokens = %v, want 200", payload["max_tokens"])
	}
	messages, ok := payload["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("messages = %#v", payload["messages"])
	}
	system := messages[0].(map[string]any)
	user := messages[1].(map[string]any)
	if system["role"] != "system" || system["content"] != "You are a helpful AI assistant." {
		t.Fatalf("system message = %#v", system)
	}
	if user["role"] != "user" || user["content"] != "Write a tagline." {
		t.Fatalf("user message = %#v", user)
	}
}

func TestGenerateClosesBodyOnEveryPath(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "success", status: http.StatusOK, body: `{"choices":[{"message":{"content":"x"}}]}`},
		{name: "http error", status: http.StatusBadGateway, body: "bad gateway"},
		{name: "malformed", status: http.StatusOK, body: "not json"},
		{name: "empty choices", status: http.StatusOK, body: `{"choices":[]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var closed atomic.Bool
			client := NewClient(Options{
				APIKey: "test",
				HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
					return &http.Response{
						StatusCode: tc.status,
						Body:       closeTracker{Reader: strings.NewReader(tc.body), closed: &closed},
					}, nil
				})},
			})
			_ = client.GenerateText(context.Background(), "hi")
			if !closed.Load() {
				t.Fatal("response body was not closed")
			}
		})
	}
}

func TestDescribeWrapsForeignErrors(t *testing.T) {
	if got := Describe(errors.New("boom")); got != "Unexpected Error: boom" {
		t.Fatalf("Describe() = %q", got)
	}
	if got := Describe(nil); got != "" {
		t.Fatalf("Describe(nil) = %q", got)
	}
}
