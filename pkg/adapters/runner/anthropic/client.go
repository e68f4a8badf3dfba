package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/aescanero/lienzo/internal/domain"
	"github.com/aescanero/lienzo/internal/ports"
)

// Client runs assistant nodes against the Anthropic Messages API.
type Client struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
	logger      *zap.Logger
}

// NewClient creates an Anthropic-backed assistant client.
func NewClient(apiKey, model string, maxTokens int, temperature float64, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	return &Client{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		maxTokens:   int64(maxTokens),
		temperature: temperature,
		logger:      logger,
	}, nil
}

// Complete sends the reconciled prompt, context and image references to the
// model and returns the completion text.
func (c *Client) Complete(ctx context.Context, req ports.AssistantRequest) (ports.AssistantResponse, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(req.Images)+1)

	for _, img := range req.Images {
		mediaType, data, ok := parseDataURI(img)
		if ok {
			blocks = append(blocks, anthropic.NewImageBlockBase64(mediaType, data))
			continue
		}
		// Plain URLs ride along as text; the model sees the reference even
		// when the image bytes are not inlined.
		blocks = append(blocks, anthropic.NewTextBlock(fmt.Sprintf("Reference image: %s", img)))
	}
	blocks = append(blocks, anthropic.NewTextBlock(req.Prompt))

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	}
	if req.Context != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.Context}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return ports.AssistantResponse{}, c.classify(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	c.logger.Debug("assistant completion received",
		zap.String("model", c.model),
		zap.Int("length", sb.Len()))

	return ports.AssistantResponse{ResponseText: sb.String()}, nil
}

// classify maps API failures onto the runtime's error kinds. A payment /
// quota rejection must stay distinguishable from a generic failure.
func (c *Client) classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == 402 {
		return fmt.Errorf("%w: %v", domain.ErrInsufficientResource, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "credit balance") || strings.Contains(msg, "billing") {
		return fmt.Errorf("%w: %v", domain.ErrInsufficientResource, err)
	}
	return domain.NewRunnerError("assistant", err)
}

// parseDataURI splits a base64 data URI into media type and payload.
func parseDataURI(s string) (mediaType, data string, ok bool) {
	if !strings.HasPrefix(s, "data:") {
		return "", "", false
	}
	rest := strings.TrimPrefix(s, "data:")
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return "", "", false
	}
	return rest[:sep], rest[sep+len(";base64,"):], true
}
