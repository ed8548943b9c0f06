package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/webcontext/internal/llm"
)

// DefaultPrompt instructs the model to cover only what the text extractor
// cannot: charts, graphs and photographs. The division of labor avoids
// duplicating body text already captured from the HTML.
const DefaultPrompt = "Analyze this webpage screenshot. " +
	"Your task is to describe only the visual elements like charts, graphs, and important photographs. " +
	"Do NOT extract or repeat the main body text, paragraphs, or headers."

// DefaultTemperature matches the sampling temperature the tool was tuned with.
const DefaultTemperature float32 = 0.4

// Describer produces natural-language descriptions of a page screenshot via
// an OpenAI-compatible vision model.
type Describer struct {
	Client llm.Client
	Model  string
	// Prompt overrides DefaultPrompt when non-empty.
	Prompt string
	// Temperature overrides DefaultTemperature when > 0.
	Temperature float32
}

// Describe sends the PNG screenshot with the instruction prompt and returns
// the model's description.
func (d *Describer) Describe(ctx context.Context, png []byte) (string, error) {
	if d.Client == nil || strings.TrimSpace(d.Model) == "" {
		return "", errors.New("describer not configured")
	}
	if len(png) == 0 {
		return "", errors.New("empty screenshot")
	}
	prompt := d.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultPrompt
	}
	temp := d.Temperature
	if temp <= 0 {
		temp = DefaultTemperature
	}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)

	req := openai.ChatCompletionRequest{
		Model:       d.Model,
		Temperature: temp,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	}
	resp, err := d.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("vision model returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
