package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

const (
	defaultAssistantURL = "https://api.openai.com/v1/chat/completions"

	assistantInstructions = "You are a helpful assistant activated by hand gestures. " +
		"Provide concise, helpful responses. If a screenshot path is mentioned, " +
		"acknowledge it and assist based on likely screen content. Keep responses " +
		"brief, they are read aloud."

	// historyLimit bounds the conversation context sent with each
	// request.
	historyLimit = 10
)

// ErrNoAPIKey is returned when the assistant trigger fires without an
// API key in the environment.
var ErrNoAPIKey = errors.New("OPENAI_API_KEY is not set")

// Assistant sends a message to a chat completion API when its gesture
// fires and optionally reads the reply aloud.
type Assistant struct {
	mu      sync.Mutex
	url     string
	model   string
	client  *http.Client
	speaker *Speaker
	shot    *Screenshot
	prompts map[gesture.Kind]string

	history   []chatMessage
	lastReply string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewAssistant creates the trigger. speaker and shot are optional: a
// speaker reads replies aloud, a screenshot trigger contributes its
// most recent capture path to the prompt.
func NewAssistant(model string, speaker *Speaker, shot *Screenshot) *Assistant {
	return &Assistant{
		url:     defaultAssistantURL,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
		speaker: speaker,
		shot:    shot,
		prompts: map[gesture.Kind]string{
			gesture.KindWave:   "Hello! I just waved at you. Can you help me with what's currently on my screen?",
			gesture.KindPalmUp: "I'm holding my palm up to you. Please provide assistance based on what you can see on my screen.",
		},
	}
}

func (a *Assistant) Name() string { return "assistant" }

// SetPrompt overrides the user prompt sent for a gesture kind.
func (a *Assistant) SetPrompt(kind gesture.Kind, prompt string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prompts[kind] = prompt
}

func (a *Assistant) Fire(ctx context.Context, ev *gesture.Event) error {
	a.mu.Lock()
	prompt, ok := a.prompts[ev.Kind]
	a.mu.Unlock()
	if !ok {
		prompt = fmt.Sprintf("I performed a %s gesture. Please help me with my current screen.", ev.KindName)
	}

	if a.shot != nil {
		if path := a.shot.LastPath(); path != "" {
			prompt += fmt.Sprintf("\n\nA screenshot was captured at: %s", path)
		}
	}

	reply, err := a.Ask(ctx, prompt)
	if err != nil {
		return err
	}

	if a.speaker != nil {
		// A TTS failure should not fail the assistant run.
		_ = a.speaker.Say(ctx, reply)
	}
	return nil
}

// Ask sends a message with recent conversation context and returns the
// assistant's reply.
func (a *Assistant) Ask(ctx context.Context, content string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", ErrNoAPIKey
	}

	a.mu.Lock()
	messages := make([]chatMessage, 0, len(a.history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: assistantInstructions})
	messages = append(messages, a.history...)
	messages = append(messages, chatMessage{Role: "user", Content: content})
	a.mu.Unlock()

	body, err := json.Marshal(chatRequest{Model: a.model, Messages: messages})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("assistant response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("assistant API error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant API status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("assistant returned no choices")
	}

	reply := parsed.Choices[0].Message.Content

	a.mu.Lock()
	a.history = append(a.history,
		chatMessage{Role: "user", Content: content},
		chatMessage{Role: "assistant", Content: reply})
	if len(a.history) > historyLimit {
		a.history = a.history[len(a.history)-historyLimit:]
	}
	a.lastReply = reply
	a.mu.Unlock()

	return reply, nil
}

// LastReply returns the most recent assistant reply, or empty if none.
func (a *Assistant) LastReply() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastReply
}

// ClearHistory drops the conversation context.
func (a *Assistant) ClearHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}
