package ports

import "context"

// ImageRequest asks the remote service to generate an image for a node.
type ImageRequest struct {
	NodeID      string
	Model       string
	ModelParams map[string]any
	Prompt      string
	StyleBrand  string
	Reference   []byte
}

// ImageResponse carries the generated image location.
type ImageResponse struct {
	ImageURL string
}

// AssistantRequest asks the LLM to produce a completion.
type AssistantRequest struct {
	Prompt  string
	Context string
	Images  []string
}

// AssistantResponse carries the completion text.
type AssistantResponse struct {
	ResponseText string
}

// VideoRequest asks the remote service to start an asynchronous video job.
type VideoRequest struct {
	Prompt          string
	AspectRatio     string
	WorkflowID      string
	ReferenceImages [][]byte
	StyleBrand      string
}

// VideoResponse is the job handle; polling happens outside the runtime.
type VideoResponse struct {
	JobID          string
	StatusURL      string
	DownloadURL    string
	PollIntervalMs int
}

// NodeRunner is the remote boundary that performs actual generation for a
// node. Any call may fail with domain.ErrInsufficientResource when the
// account is out of credit; other failures come back as domain.RunnerError.
// Transport timeouts are the runner's responsibility, not the caller's.
type NodeRunner interface {
	GenerateImage(ctx context.Context, req ImageRequest) (ImageResponse, error)
	Complete(ctx context.Context, req AssistantRequest) (AssistantResponse, error)
	GenerateVideo(ctx context.Context, req VideoRequest) (VideoResponse, error)
}
