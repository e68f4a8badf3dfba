package runner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aescanero/lienzo/internal/config"
	"github.com/aescanero/lienzo/internal/ports"
	"github.com/aescanero/lienzo/pkg/adapters/runner/anthropic"
	"github.com/aescanero/lienzo/pkg/adapters/runner/genapi"
)

// assistantClient is the LLM side of the runner boundary.
type assistantClient interface {
	Complete(ctx context.Context, req ports.AssistantRequest) (ports.AssistantResponse, error)
}

// generationClient is the image/video side of the runner boundary.
type generationClient interface {
	GenerateImage(ctx context.Context, req ports.ImageRequest) (ports.ImageResponse, error)
	GenerateVideo(ctx context.Context, req ports.VideoRequest) (ports.VideoResponse, error)
}

// composite joins the LLM and generation clients into one NodeRunner.
type composite struct {
	assistant  assistantClient
	generation generationClient
}

func (c *composite) Complete(ctx context.Context, req ports.AssistantRequest) (ports.AssistantResponse, error) {
	return c.assistant.Complete(ctx, req)
}

func (c *composite) GenerateImage(ctx context.Context, req ports.ImageRequest) (ports.ImageResponse, error) {
	return c.generation.GenerateImage(ctx, req)
}

func (c *composite) GenerateVideo(ctx context.Context, req ports.VideoRequest) (ports.VideoResponse, error) {
	return c.generation.GenerateVideo(ctx, req)
}

// NewRunner builds the node runner from configuration.
func NewRunner(cfg *config.Config, logger *zap.Logger) (ports.NodeRunner, error) {
	var assistant assistantClient
	switch cfg.LLM.Provider {
	case "anthropic":
		client, err := anthropic.NewClient(
			cfg.LLM.APIKey,
			cfg.LLM.DefaultModel,
			cfg.LLM.DefaultMaxTokens,
			cfg.LLM.DefaultTemperature,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic client: %w", err)
		}
		assistant = client
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}

	generation := genapi.NewClient(
		cfg.Generation.BaseURL,
		cfg.Generation.APIKey,
		cfg.Generation.RequestTimeout,
		logger,
	)

	return &composite{assistant: assistant, generation: generation}, nil
}
