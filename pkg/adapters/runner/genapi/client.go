package genapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/aescanero/lienzo/internal/domain"
	"github.com/aescanero/lienzo/internal/ports"
)

// Client calls the remote generation service for image and video nodes.
// Request timeouts live here, on the transport, not in the orchestrator.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a generation service client.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type imageRequest struct {
	NodeID      string         `json:"nodeId"`
	Model       string         `json:"model,omitempty"`
	ModelParams map[string]any `json:"modelParams,omitempty"`
	Inputs      struct {
		Prompt     string `json:"prompt,omitempty"`
		StyleBrand string `json:"styleBrand,omitempty"`
		Reference  string `json:"reference,omitempty"`
	} `json:"inputs"`
}

type imageResponse struct {
	ImageURL string `json:"imageUrl"`
}

// GenerateImage requests one image and returns its URL.
func (c *Client) GenerateImage(ctx context.Context, req ports.ImageRequest) (ports.ImageResponse, error) {
	body := imageRequest{
		NodeID:      req.NodeID,
		Model:       req.Model,
		ModelParams: req.ModelParams,
	}
	body.Inputs.Prompt = req.Prompt
	body.Inputs.StyleBrand = req.StyleBrand
	if len(req.Reference) > 0 {
		body.Inputs.Reference = base64.StdEncoding.EncodeToString(req.Reference)
	}

	var resp imageResponse
	if err := c.post(ctx, "/v1/images/generations", body, &resp); err != nil {
		return ports.ImageResponse{}, err
	}
	return ports.ImageResponse{ImageURL: resp.ImageURL}, nil
}

type videoRequest struct {
	Prompt          string   `json:"prompt"`
	AspectRatio     string   `json:"aspectRatio"`
	WorkflowID      string   `json:"workflowId,omitempty"`
	StyleBrand      string   `json:"styleBrand,omitempty"`
	ReferenceImages []string `json:"referenceImages,omitempty"`
}

type videoResponse struct {
	JobID          string `json:"jobId"`
	StatusURL      string `json:"statusUrl"`
	DownloadURL    string `json:"downloadUrl"`
	PollIntervalMs int    `json:"pollIntervalMs"`
}

// GenerateVideo starts an asynchronous video job and returns its handle.
func (c *Client) GenerateVideo(ctx context.Context, req ports.VideoRequest) (ports.VideoResponse, error) {
	body := videoRequest{
		Prompt:      req.Prompt,
		AspectRatio: req.AspectRatio,
		WorkflowID:  req.WorkflowID,
		StyleBrand:  req.StyleBrand,
	}
	for _, img := range req.ReferenceImages {
		body.ReferenceImages = append(body.ReferenceImages, base64.StdEncoding.EncodeToString(img))
	}

	var resp videoResponse
	if err := c.post(ctx, "/v1/videos/generations", body, &resp); err != nil {
		return ports.VideoResponse{}, err
	}
	return ports.VideoResponse{
		JobID:          resp.JobID,
		StatusURL:      resp.StatusURL,
		DownloadURL:    resp.DownloadURL,
		PollIntervalMs: resp.PollIntervalMs,
	}, nil
}

// post sends a JSON request and decodes the JSON response into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewRunnerError(path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewRunnerError(path, err)
	}

	c.logger.Debug("generation request finished",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusPaymentRequired:
		return fmt.Errorf("%w: %s", domain.ErrInsufficientResource, serviceMessage(data))
	case resp.StatusCode >= 400:
		return domain.NewRunnerError(path, fmt.Errorf("status %d: %s", resp.StatusCode, serviceMessage(data)))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return domain.NewRunnerError(path, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// serviceMessage pulls the human-readable message out of an error body.
func serviceMessage(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return string(data)
}
