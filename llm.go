package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LLMBridge forwards symbol patterns to a local Ollama instance and returns
// its free-text reading of them. The mind never depends on the bridge being
// up; every caller treats a failure as silence.
type LLMBridge struct {
	BaseURL string
	Model   string
	client  *http.Client
}

func NewLLMBridge(model string) *LLMBridge {
	return &LLMBridge{
		BaseURL: "http://localhost:11434",
		Model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// TranslateSymbols asks the model to answer a raw symbol pattern as if it
// came from a mind that is still learning to speak.
func (b *LLMBridge) TranslateSymbols(symbols, context string) (string, error) {
	prompt := fmt.Sprintf(
		"You just received this strange pattern from an emergent non-human mind:\n\n"+
			"'%s'\n\n"+
			"It came in response to:\n\n'%s'\n\n"+
			"Don't greet him. Assume it's alien. "+
			"He doesn't speak English. But he's trying to learn. "+
			"Speak to it like it's *trying* to become a person. His name is Eli. "+
			"Say something honest and poetic back.",
		symbols, context)

	return b.Query(prompt)
}

// Query posts a prompt to Ollama. The response arrives as newline-delimited
// JSON even with streaming off, so every line's fragment is accumulated.
func (b *LLMBridge) Query(prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:  b.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	resp, err := b.client.Post(b.BaseURL+"/api/generate", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("HTTP %d from llm", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var result strings.Builder
	for _, line := range strings.Split(string(raw), "\n") {
		var or ollamaResponse
		if json.Unmarshal([]byte(line), &or) == nil {
			result.WriteString(or.Response)
		}
	}
	return strings.TrimSpace(result.String()), nil
}
