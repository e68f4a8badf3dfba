package executor

import (
	"context"
	"time"

	"github.com/aescanero/lienzo/internal/application/graph"
	"github.com/aescanero/lienzo/internal/application/outputs"
	"github.com/aescanero/lienzo/internal/domain"
	"github.com/aescanero/lienzo/internal/ports"
	"go.uber.org/zap"
)

// runEventsTopic carries node run lifecycle events.
const runEventsTopic = "run.events"

// Orchestrator drives the run of a single node: state transition, input
// collection, remote invocation and result commit. Run results are execution
// state, not structure, so nothing here ever touches history.
type Orchestrator struct {
	store   *graph.Store
	adapter *outputs.Adapter
	runner  ports.NodeRunner
	bus     ports.EventBus
	metrics ports.MetricsCollector
	logger  *zap.Logger
}

// NewOrchestrator creates an execution orchestrator.
func NewOrchestrator(
	store *graph.Store,
	adapter *outputs.Adapter,
	runner ports.NodeRunner,
	bus ports.EventBus,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:   store,
		adapter: adapter,
		runner:  runner,
		bus:     bus,
		metrics: metrics,
		logger:  logger,
	}
}

// slotsFor returns the input slots a kind declares for collection.
func slotsFor(kind domain.NodeKind) []outputs.Slot {
	switch kind {
	case domain.KindAssistant:
		return []outputs.Slot{outputs.SlotPrompt, outputs.SlotContext, outputs.SlotImages}
	case domain.KindImageGenerator:
		return []outputs.Slot{outputs.SlotPrompt, outputs.SlotStyleBrand, outputs.SlotReference}
	case domain.KindVideoGenerator:
		return []outputs.Slot{outputs.SlotPrompt, outputs.SlotStyleBrand, outputs.SlotReferenceImages}
	default:
		return nil
	}
}

// Run executes one node against the most recent outputs of its direct
// predecessors. Upstream nodes are never triggered; a predecessor that has
// never run simply contributes nothing. On failure the node's prior data is
// left untouched and a typed error is returned; there are no retries.
func (o *Orchestrator) Run(ctx context.Context, nodeID string) error {
	node, ok := o.store.Node(nodeID)
	if !ok {
		return domain.ErrUnknownNode
	}
	if !outputs.CanCompute(node.Kind) {
		return domain.ErrNotRunnable
	}

	if err := o.store.SetLoading(nodeID, true); err != nil {
		return err
	}

	o.publish(ctx, ports.EventTypeRunStarted, node, nil)
	o.logger.Info("node run started",
		zap.String("node_id", nodeID),
		zap.String("kind", string(node.Kind)))

	start := time.Now()
	in := o.adapter.CollectInputs(ctx, nodeID, slotsFor(node.Kind))

	var err error
	switch node.Kind {
	case domain.KindAssistant:
		err = o.runAssistant(ctx, node, in)
	case domain.KindImageGenerator:
		err = o.runImageGenerator(ctx, node, in)
	case domain.KindVideoGenerator:
		err = o.runVideoGenerator(ctx, node, in)
	}

	duration := time.Since(start)

	if err != nil {
		// Prior data stays as it was; only the running flag is cleared.
		if clearErr := o.store.SetLoading(nodeID, false); clearErr != nil {
			o.logger.Warn("failed to clear loading flag",
				zap.String("node_id", nodeID),
				zap.Error(clearErr))
		}
		o.metrics.RecordNodeRun(string(node.Kind), "failed", duration)
		o.publish(ctx, ports.EventTypeRunFailed, node, map[string]any{
			"error": err.Error(),
		})
		o.logger.Error("node run failed",
			zap.String("node_id", nodeID),
			zap.String("kind", string(node.Kind)),
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}

	o.metrics.RecordNodeRun(string(node.Kind), "completed", duration)
	o.publish(ctx, ports.EventTypeRunCompleted, node, nil)
	o.logger.Info("node run completed",
		zap.String("node_id", nodeID),
		zap.String("kind", string(node.Kind)),
		zap.Duration("duration", duration))

	return nil
}

// runAssistant resolves the effective prompt and invokes the LLM. When no
// upstream prompt was produced, the node's own configured text is used:
// instruction, then preset, then brief.
func (o *Orchestrator) runAssistant(ctx context.Context, node domain.Node, in outputs.Inputs) error {
	prompt := in.Prompt
	if prompt == "" {
		switch {
		case node.Data.Instruction != "":
			prompt = node.Data.Instruction
		case node.Data.Preset != "":
			prompt = node.Data.Preset
		default:
			prompt = node.Data.Brief
		}
	}

	resp, err := o.runner.Complete(ctx, ports.AssistantRequest{
		Prompt:  prompt,
		Context: in.Context,
		Images:  in.Images,
	})
	if err != nil {
		return err
	}

	return o.store.CommitText(node.ID, resp.ResponseText)
}

func (o *Orchestrator) runImageGenerator(ctx context.Context, node domain.Node, in outputs.Inputs) error {
	resp, err := o.runner.GenerateImage(ctx, ports.ImageRequest{
		NodeID:      node.ID,
		Model:       node.Data.Model,
		ModelParams: node.Data.ModelParams,
		Prompt:      in.Prompt,
		StyleBrand:  in.StyleBrand,
		Reference:   in.Reference,
	})
	if err != nil {
		return err
	}

	return o.store.CommitImage(node.ID, resp.ImageURL)
}

func (o *Orchestrator) runVideoGenerator(ctx context.Context, node domain.Node, in outputs.Inputs) error {
	resp, err := o.runner.GenerateVideo(ctx, ports.VideoRequest{
		Prompt:          in.Prompt,
		AspectRatio:     node.Data.AspectRatio,
		WorkflowID:      node.Data.WorkflowID,
		ReferenceImages: in.ReferenceImages,
		StyleBrand:      in.StyleBrand,
	})
	if err != nil {
		return err
	}

	return o.store.CommitVideo(node.ID, domain.VideoJob{
		JobID:          resp.JobID,
		StatusURL:      resp.StatusURL,
		DownloadURL:    resp.DownloadURL,
		PollIntervalMs: resp.PollIntervalMs,
	})
}

// publish sends a run lifecycle event; delivery failures are logged, never
// surfaced to the run itself.
func (o *Orchestrator) publish(ctx context.Context, eventType ports.EventType, node domain.Node, data map[string]any) {
	event := ports.Event{
		ID:        domain.NewID(),
		Type:      eventType,
		NodeID:    node.ID,
		NodeKind:  string(node.Kind),
		Timestamp: time.Now(),
		Data:      data,
	}
	if err := o.bus.Publish(ctx, runEventsTopic, event); err != nil {
		o.logger.Error("failed to publish run event",
			zap.String("node_id", node.ID),
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}
