package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ecomagent/internal/infra"
)

const (
	DefaultBaseURL   = "https://api.groq.com/openai/v1"
	DefaultModel     = "mixtral-8x7b-32768"
	DefaultMaxTokens = 200
	DefaultTimeout   = 10 * time.Second

	systemPrompt = "You are a helpful AI assistant."
)

// Options configures the Groq chat-completion client.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client sends single-turn prompts to an OpenAI-compatible chat-completions
// endpoint. It holds no mutable state and is safe for concurrent use.
type Client struct {
	apiKey     string
	endpoint   string
	model      string
	maxTokens  int
	timeout    time.Duration
	httpClient *http.Client
	logger     *infra.Logger
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message and content stay raw so an absent key (empty result) can be told
// apart from an explicit null (malformed reply).
type chatResponse struct {
	Choices []struct {
		Message json.RawMessage `json:"message"`
	} `json:"choices"`
}

type chatReply struct {
	Content json.RawMessage `json:"content"`
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		l := infra.Logger(zerolog.New(io.Discard))
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		endpoint:   baseURL + "/chat/completions",
		model:      model,
		maxTokens:  maxTokens,
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// GenerateText returns the generated text for prompt, or a descriptive error
// string when generation fails. It never returns an error value.
func (c *Client) GenerateText(ctx context.Context, prompt string) string {
	text, err := c.Generate(ctx, prompt)
	if err != nil {
		return Describe(err)
	}
	return text
}

// Generate performs exactly one chat-completion call. Failures are reported as
// *Error.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.HasCredentials() {
		return "", &Error{Kind: KindMissingCredential}
	}
	start := time.Now()
	text, err := c.do(ctx, prompt)
	if err != nil {
		c.logger.Warn().
			Str("model", c.model).
			Str("kind", KindOf(err).String()).
			Dur("latency", time.Since(start)).
			Err(err).
			Msg("groq: generation failed")
		return "", err
	}
	c.logger.Debug().
		Str("model", c.model).
		Dur("latency", time.Since(start)).
		Int("chars", len(text)).
		Msg("groq: generated text")
	return text, nil
}

func (c *Client) do(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens: c.maxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &Error{Kind: KindUnexpected, Err: err}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindUnexpected, Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{Kind: KindHTTPStatus, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	// A top-level array has no "choices" key.
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		return "", &Error{Kind: KindUnexpectedResponse, Err: errors.New("no choices")}
	}
	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &Error{Kind: KindUnexpected, Err: err}
	}
	if len(out.Choices) == 0 {
		return "", &Error{Kind: KindUnexpectedResponse, Err: errors.New("no choices")}
	}
	return firstContent(out.Choices[0].Message)
}

// firstContent extracts message.content. Missing keys yield "", explicit nulls
// and non-string content are unexpected.
func firstContent(message json.RawMessage) (string, error) {
	if len(message) == 0 {
		return "", nil
	}
	if isNull(message) {
		return "", &Error{Kind: KindUnexpected, Err: errors.New("choice message is null")}
	}
	var reply chatReply
	if err := json.Unmarshal(message, &reply); err != nil {
		return "", &Error{Kind: KindUnexpected, Err: err}
	}
	if len(reply.Content) == 0 {
		return "", nil
	}
	if isNull(reply.Content) {
		return "", &Error{Kind: KindUnexpected, Err: errors.New("message content is null")}
	}
	var text string
	if err := json.Unmarshal(reply.Content, &text); err != nil {
		return "", &Error{Kind: KindUnexpected, Err: err}
	}
	return strings.TrimSpace(text), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
