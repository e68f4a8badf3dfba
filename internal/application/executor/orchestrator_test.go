package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aescanero/lienzo/internal/application/graph"
	"github.com/aescanero/lienzo/internal/application/outputs"
	"github.com/aescanero/lienzo/internal/domain"
	"github.com/aescanero/lienzo/internal/ports"
	"github.com/aescanero/lienzo/pkg/adapters/events/memory"
)

// mockRunner routes each call to a swappable func field.
type mockRunner struct {
	completeFn      func(ctx context.Context, req ports.AssistantRequest) (ports.AssistantResponse, error)
	generateImageFn func(ctx context.Context, req ports.ImageRequest) (ports.ImageResponse, error)
	generateVideoFn func(ctx context.Context, req ports.VideoRequest) (ports.VideoResponse, error)
}

func (m *mockRunner) Complete(ctx context.Context, req ports.AssistantRequest) (ports.AssistantResponse, error) {
	if m.completeFn == nil {
		return ports.AssistantResponse{}, errors.New("unexpected Complete call")
	}
	return m.completeFn(ctx, req)
}

func (m *mockRunner) GenerateImage(ctx context.Context, req ports.ImageRequest) (ports.ImageResponse, error) {
	if m.generateImageFn == nil {
		return ports.ImageResponse{}, errors.New("unexpected GenerateImage call")
	}
	return m.generateImageFn(ctx, req)
}

func (m *mockRunner) GenerateVideo(ctx context.Context, req ports.VideoRequest) (ports.VideoResponse, error) {
	if m.generateVideoFn == nil {
		return ports.VideoResponse{}, errors.New("unexpected GenerateVideo call")
	}
	return m.generateVideoFn(ctx, req)
}

type nopFetcher struct{}

func (nopFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return nil, errors.New("no fetch in this test")
}

type nopMetrics struct{}

func (nopMetrics) RecordNodeRun(string, string, time.Duration) {}
func (nopMetrics) RecordMaterialization(string)                {}
func (nopMetrics) RecordSnapshot()                             {}
func (nopMetrics) RecordUndo()                                 {}
func (nopMetrics) RecordRedo()                                 {}
func (nopMetrics) SetHistoryDepth(int)                         {}
func (nopMetrics) SetGraphSize(int, int)                       {}

type fixture struct {
	store        *graph.Store
	orchestrator *Orchestrator
	bus          *memory.InMemoryEventBus
}

func newFixture(t *testing.T, runner ports.NodeRunner) *fixture {
	t.Helper()
	logger := zap.NewNop()
	store := graph.NewStore(logger)
	adapter := outputs.NewAdapter(store, nopFetcher{}, nopMetrics{}, logger)
	bus := memory.NewInMemoryEventBus()
	return &fixture{
		store:        store,
		orchestrator: NewOrchestrator(store, adapter, runner, bus, nopMetrics{}, logger),
		bus:          bus,
	}
}

func TestRunAssistantCommitsUpstreamText(t *testing.T) {
	var got ports.AssistantRequest
	runner := &mockRunner{
		completeFn: func(ctx context.Context, req ports.AssistantRequest) (ports.AssistantResponse, error) {
			got = req
			return ports.AssistantResponse{ResponseText: "world"}, nil
		},
	}
	f := newFixture(t, runner)

	src, err := f.store.AddNode(domain.KindTextSource, domain.Position{})
	require.NoError(t, err)
	require.NoError(t, f.store.UpdateNodeData(src, domain.NodeData{Text: "hello"}))
	assistant, err := f.store.AddNode(domain.KindAssistant, domain.Position{})
	require.NoError(t, err)
	_, err = f.store.Connect(src, "output", assistant, "input")
	require.NoError(t, err)

	require.NoError(t, f.orchestrator.Run(context.Background(), assistant))

	assert.Equal(t, "hello", got.Prompt)

	node, ok := f.store.Node(assistant)
	require.True(t, ok)
	assert.Equal(t, "world", node.Data.LastText)
	assert.False(t, node.Data.IsLoading)
}

func TestRunAssistantPromptFallback(t *testing.T) {
	var prompts []string
	runner := &mockRunner{
		completeFn: func(ctx context.Context, req ports.AssistantRequest) (ports.AssistantResponse, error) {
			prompts = append(prompts, req.Prompt)
			return ports.AssistantResponse{ResponseText: "ok"}, nil
		},
	}
	f := newFixture(t, runner)

	id, err := f.store.AddNode(domain.KindAssistant, domain.Position{})
	require.NoError(t, err)

	// No upstream prompt: instruction wins over preset, preset over brief.
	require.NoError(t, f.store.UpdateNodeData(id, domain.NodeData{
		Instruction: "summarize",
		Preset:      "marketing",
		Brief:       "a brief",
	}))
	require.NoError(t, f.orchestrator.Run(context.Background(), id))

	second, err := f.store.AddNode(domain.KindAssistant, domain.Position{})
	require.NoError(t, err)
	require.NoError(t, f.store.UpdateNodeData(second, domain.NodeData{Preset: "marketing"}))
	require.NoError(t, f.orchestrator.Run(context.Background(), second))

	assert.Equal(t, []string{"summarize", "marketing"}, prompts)
}

func TestRunDoesNotTriggerUpstream(t *testing.T) {
	completeCalls := 0
	runner := &mockRunner{
		completeFn: func(ctx context.Context, req ports.AssistantRequest) (ports.AssistantResponse, error) {
			completeCalls++
			return ports.AssistantResponse{ResponseText: "ok"}, nil
		},
		generateImageFn: func(ctx context.Context, req ports.ImageRequest) (ports.ImageResponse, error) {
			assert.Empty(t, req.Prompt, "a never-run upstream contributes nothing")
			return ports.ImageResponse{ImageURL: "https://example.com/out.png"}, nil
		},
	}
	f := newFixture(t, runner)

	assistant, err := f.store.AddNode(domain.KindAssistant, domain.Position{})
	require.NoError(t, err)
	imageGen, err := f.store.AddNode(domain.KindImageGenerator, domain.Position{})
	require.NoError(t, err)
	_, err = f.store.Connect(assistant, "output", imageGen, "prompt")
	require.NoError(t, err)

	require.NoError(t, f.orchestrator.Run(context.Background(), imageGen))
	assert.Equal(t, 0, completeCalls, "pull semantics: upstream must never be executed")
}

func TestRunUnknownAndNotRunnable(t *testing.T) {
	f := newFixture(t, &mockRunner{})

	err := f.orchestrator.Run(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUnknownNode)

	text, err := f.store.AddNode(domain.KindTextSource, domain.Position{})
	require.NoError(t, err)
	assert.ErrorIs(t, f.orchestrator.Run(context.Background(), text), domain.ErrNotRunnable)

	preview, err := f.store.AddNode(domain.KindPreview, domain.Position{})
	require.NoError(t, err)
	assert.ErrorIs(t, f.orchestrator.Run(context.Background(), preview), domain.ErrNotRunnable)
}

func TestRunFailureLeavesPriorResult(t *testing.T) {
	failing := errors.New("model unavailable")
	runner := &mockRunner{
		completeFn: func(ctx context.Context, req ports.AssistantRequest) (ports.AssistantResponse, error) {
			return ports.AssistantResponse{}, domain.NewRunnerError("assistant", failing)
		},
	}
	f := newFixture(t, runner)

	id, err := f.store.AddNode(domain.KindAssistant, domain.Position{})
	require.NoError(t, err)
	require.NoError(t, f.store.CommitText(id, "earlier result"))

	err = f.orchestrator.Run(context.Background(), id)
	require.Error(t, err)
	assert.True(t, domain.IsRunnerError(err))

	node, ok := f.store.Node(id)
	require.True(t, ok)
	assert.Equal(t, "earlier result", node.Data.LastText, "a failed run must not clobber prior data")
	assert.False(t, node.Data.IsLoading, "the running flag is cleared on failure")
}

func TestRunInsufficientResourceIsDistinct(t *testing.T) {
	runner := &mockRunner{
		generateImageFn: func(ctx context.Context, req ports.ImageRequest) (ports.ImageResponse, error) {
			return ports.ImageResponse{}, domain.NewRunnerError("image", domain.ErrInsufficientResource)
		},
	}
	f := newFixture(t, runner)

	id, err := f.store.AddNode(domain.KindImageGenerator, domain.Position{})
	require.NoError(t, err)

	err = f.orchestrator.Run(context.Background(), id)
	require.Error(t, err)
	assert.True(t, domain.IsInsufficientResource(err))
}

func TestRunVideoCommitsJobHandle(t *testing.T) {
	runner := &mockRunner{
		generateVideoFn: func(ctx context.Context, req ports.VideoRequest) (ports.VideoResponse, error) {
			return ports.VideoResponse{
				JobID:          "job-7",
				StatusURL:      "https://example.com/jobs/7",
				DownloadURL:    "https://example.com/jobs/7/video.mp4",
				PollIntervalMs: 5000,
			}, nil
		},
	}
	f := newFixture(t, runner)

	id, err := f.store.AddNode(domain.KindVideoGenerator, domain.Position{})
	require.NoError(t, err)
	require.NoError(t, f.orchestrator.Run(context.Background(), id))

	node, ok := f.store.Node(id)
	require.True(t, ok)
	require.NotNil(t, node.Data.LastVideoJob)
	assert.Equal(t, "job-7", node.Data.LastVideoJob.JobID)
	assert.Equal(t, 5000, node.Data.LastVideoJob.PollIntervalMs)
}

func TestRunPublishesLifecycleEvents(t *testing.T) {
	runner := &mockRunner{
		completeFn: func(ctx context.Context, req ports.AssistantRequest) (ports.AssistantResponse, error) {
			return ports.AssistantResponse{ResponseText: "ok"}, nil
		},
		generateImageFn: func(ctx context.Context, req ports.ImageRequest) (ports.ImageResponse, error) {
			return ports.ImageResponse{}, domain.NewRunnerError("image", errors.New("boom"))
		},
	}
	f := newFixture(t, runner)

	var events []ports.Event
	require.NoError(t, f.bus.Subscribe(context.Background(), "run.events", func(ctx context.Context, event ports.Event) error {
		events = append(events, event)
		return nil
	}))

	assistant, err := f.store.AddNode(domain.KindAssistant, domain.Position{})
	require.NoError(t, err)
	require.NoError(t, f.orchestrator.Run(context.Background(), assistant))

	imageGen, err := f.store.AddNode(domain.KindImageGenerator, domain.Position{})
	require.NoError(t, err)
	require.Error(t, f.orchestrator.Run(context.Background(), imageGen))

	require.Len(t, events, 4)
	assert.Equal(t, ports.EventTypeRunStarted, events[0].Type)
	assert.Equal(t, ports.EventTypeRunCompleted, events[1].Type)
	assert.Equal(t, ports.EventTypeRunStarted, events[2].Type)
	assert.Equal(t, ports.EventTypeRunFailed, events[3].Type)
	assert.Equal(t, assistant, events[0].NodeID)
	assert.Equal(t, imageGen, events[3].NodeID)
	assert.Contains(t, events[3].Data["error"], "boom")
}
