package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	domainai "github.com/burakseven/returns-ai/internal/domain/ai"
	"github.com/burakseven/returns-ai/internal/domain/analysis"
	"github.com/burakseven/returns-ai/internal/infra/ai/prompt"
)

const maxTokens = 2048

// Client adapts the OpenAI vision chat API to the domain Classifier port.
// One outbound call per Classify, no retry: a failed call is reported as
// ErrUnavailable and a human can always re-submit.
type Client struct {
	*openai.Client
	Model    string
	Warranty analysis.WarrantyTable
}

func NewClient(apiKey, model string, warranty analysis.WarrantyTable) *Client {
	if len(warranty) == 0 {
		warranty = analysis.DefaultWarrantyTable
	}
	return &Client{Client: openai.NewClient(apiKey), Model: model, Warranty: warranty}
}

// NewClientWithConfig lets tests point the adapter at a local server.
func NewClientWithConfig(cfg openai.ClientConfig, model string, warranty analysis.WarrantyTable) *Client {
	if len(warranty) == 0 {
		warranty = analysis.DefaultWarrantyTable
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model, Warranty: warranty}
}

func (c *Client) Classify(ctx context.Context, image []byte, contentType, customerNotes string) (*analysis.Result, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o"
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(image))
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "shoe_analysis",
				Schema: prompt.ResponseSchema(),
				Strict: true,
			},
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt.GetUserPrompt(customerNotes)},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainai.ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("%w: empty completion", domainai.ErrUnavailable)
	}

	return c.decode(resp.Choices[0].Message.Content)
}

// decode validates the structured response and enriches it: scores are
// normalized and the warranty table overrides the model's own guess
// whenever a brand is identifiable.
func (c *Client) decode(content string) (*analysis.Result, error) {
	var wire struct {
		Classification  string          `json:"classification"`
		Confidence      float64         `json:"confidence"`
		Scores          analysis.Scores `json:"scores"`
		Features        []string        `json:"features"`
		Reasoning       string          `json:"reasoning"`
		DamageReasons   []string        `json:"damageReasons"`
		ShoeModel       string          `json:"shoeModel"`
		WarrantyPeriod  int             `json:"warrantyPeriod"`
		IsUserError     bool            `json:"isUserError"`
		UserErrorReason string          `json:"userErrorReason"`
	}
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return nil, fmt.Errorf("%w: undecodable completion: %v", domainai.ErrUnavailable, err)
	}
	cat, err := analysis.ParseCategory(wire.Classification)
	if err != nil {
		return nil, fmt.Errorf("%w: completion classification %q", domainai.ErrUnavailable, wire.Classification)
	}

	res := &analysis.Result{
		Classification:  cat,
		Confidence:      wire.Confidence,
		Scores:          analysis.NormalizeScores(wire.Scores),
		Features:        wire.Features,
		Reasoning:       wire.Reasoning,
		DamageReasons:   wire.DamageReasons,
		ShoeModel:       wire.ShoeModel,
		WarrantyPeriod:  wire.WarrantyPeriod,
		IsUserError:     wire.IsUserError,
		UserErrorReason: wire.UserErrorReason,
	}
	if res.Features == nil {
		res.Features = []string{}
	}
	if res.DamageReasons == nil {
		res.DamageReasons = []string{}
	}
	if res.ShoeModel != "" && res.ShoeModel != analysis.ModelUndetermined {
		res.WarrantyPeriod = c.Warranty.Resolve(res.ShoeModel)
	}
	return res, nil
}
