package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"ghostscout/internal/lol"
)

const (
	DefaultEndpoint  = "https://api.openai.com/v1/chat/completions"
	DefaultModel     = "gpt-5.2-chat-latest"
	DefaultTimeout   = 60 * time.Second
	MaxCompletionLen = 4096

	readBufferSize = 4096
)

// Request describes one chat completion
type Request struct {
	Endpoint     string
	APIKey       string
	Model        string
	SystemPrompt string
	UserPrompt   string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string    `json:"model"`
	Messages            []message `json:"messages"`
	MaxCompletionTokens int       `json:"max_completion_tokens"`
	Stream              bool      `json:"stream"`
}

// Client streams chat completions from an OpenAI-compatible endpoint
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client. nil uses an HTTP client with DefaultTimeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{httpClient: httpClient}
}

// Stream starts the request in its own goroutine and returns its events.
// The channel is closed right after the terminal Done or Error. Cancelling
// ctx aborts the request and closes the channel, possibly without a
// terminal event.
func (c *Client) Stream(ctx context.Context, req Request) <-chan StreamEvent {
	out := make(chan StreamEvent, 16)
	go func() {
		defer close(out)
		c.stream(ctx, req, func(ev StreamEvent) bool {
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()
	return out
}

// stream runs the request, handing each event to emit until emit refuses
func (c *Client) stream(ctx context.Context, req Request, emit func(StreamEvent) bool) {
	id := uuid.NewString()
	endpoint := req.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	log.Printf("[AI] %s: %s model=%s key=%s", id, endpoint, model, MaskKey(req.APIKey))

	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []message{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxCompletionTokens: MaxCompletionLen,
		Stream:              true,
	})
	if err != nil {
		emit(Error(fmt.Sprintf("request failed: %v", err)))
		return
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		emit(Error(fmt.Sprintf("request failed: %v", err)))
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	httpReq.Header.Set("X-Request-Id", id)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		emit(Error(fmt.Sprintf("request failed: %v", err)))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(resp.Body)
		log.Printf("[AI] %s: HTTP %d", id, resp.StatusCode)
		emit(Error(fmt.Sprintf("request failed (%s): %s", resp.Status, text)))
		return
	}

	parser := &sseParser{}
	buf := make([]byte, readBufferSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, ev := range parser.Feed(buf[:n]) {
				if !emit(ev) || ev.Terminal() {
					return
				}
			}
		}
		if readErr == nil {
			continue
		}
		if errors.Is(readErr, io.EOF) {
			for _, ev := range parser.Finish() {
				if !emit(ev) {
					return
				}
			}
			return
		}
		log.Printf("[AI] %s: stream interrupted: %v", id, readErr)
		emit(Error(fmt.Errorf("%w: %v", lol.ErrStreamFailure, readErr).Error()))
		return
	}
}

// Collect drains a stream and returns the full text, or the error message
// as an error.
func Collect(events <-chan StreamEvent) (string, error) {
	var text string
	for ev := range events {
		switch ev.Type {
		case EventDone:
			text = ev.Text
		case EventError:
			return "", errors.New(ev.Text)
		}
	}
	return text, nil
}

// MaskKey hides all but the ends of an API key for logging
func MaskKey(key string) string {
	if len(key) < 12 {
		return "****"
	}
	return key[:8] + "..." + key[len(key)-4:]
}
