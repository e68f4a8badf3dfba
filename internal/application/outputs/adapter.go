package outputs

import (
	"context"
	"strings"

	"github.com/aescanero/lienzo/internal/domain"
	"github.com/aescanero/lienzo/internal/ports"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// OutputType tags the canonical value a node offers downstream.
type OutputType string

const (
	OutputText  OutputType = "text"
	OutputImage OutputType = "image"
	OutputVideo OutputType = "video"
	OutputData  OutputType = "data"
)

// Output is the type-tagged value a node currently offers to consumers.
// Exactly one of Text, URL or Fields is meaningful, per Type.
type Output struct {
	Type   OutputType
	Text   string
	URL    string
	Fields []domain.InputField
}

// Slot names an input a target node declares for collection.
type Slot string

const (
	SlotPrompt          Slot = "prompt"
	SlotContext         Slot = "context"
	SlotStyleBrand      Slot = "styleBrand"
	SlotReference       Slot = "reference"
	SlotImages          Slot = "images"
	SlotReferenceImages Slot = "referenceImages"
)

// Inputs is the reconciled set of upstream contributions for one run.
type Inputs struct {
	Prompt          string
	Context         string
	StyleBrand      string
	Reference       []byte
	Images          []string
	ReferenceImages [][]byte
}

// GraphReader is the store surface the adapter needs.
type GraphReader interface {
	Node(id string) (domain.Node, bool)
	EdgesInto(targetID string) []domain.Edge
}

// Adapter computes canonical node outputs and reconciles them into a target
// node's declared input slots.
type Adapter struct {
	reader  GraphReader
	fetcher ports.Fetcher
	metrics ports.MetricsCollector
	logger  *zap.Logger
}

// NewAdapter creates an output adapter over the given graph reader.
func NewAdapter(reader GraphReader, fetcher ports.Fetcher, metrics ports.MetricsCollector, logger *zap.Logger) *Adapter {
	return &Adapter{
		reader:  reader,
		fetcher: fetcher,
		metrics: metrics,
		logger:  logger,
	}
}

// CanCompute reports whether a kind's output is the result of a remote
// computation rather than directly-held data.
func CanCompute(kind domain.NodeKind) bool {
	switch kind {
	case domain.KindAssistant, domain.KindImageGenerator, domain.KindVideoGenerator:
		return true
	}
	return false
}

// OutputOf computes the canonical output of a node from its current data.
// Computing kinds return their last committed result, never a re-invocation;
// ok is false when the node has nothing to offer yet.
func (a *Adapter) OutputOf(node domain.Node) (Output, bool) {
	switch node.Kind {
	case domain.KindTextSource:
		if node.Data.StructuredInput {
			if len(node.Data.Fields) == 0 {
				return Output{}, false
			}
			return Output{Type: OutputData, Fields: node.Data.Fields}, true
		}
		if node.Data.Text == "" {
			return Output{}, false
		}
		return Output{Type: OutputText, Text: node.Data.Text}, true

	case domain.KindImageSource:
		if node.Data.URL == "" {
			return Output{}, false
		}
		return Output{Type: OutputImage, URL: node.Data.URL}, true

	case domain.KindVideoSource:
		if node.Data.URL == "" {
			return Output{}, false
		}
		return Output{Type: OutputVideo, URL: node.Data.URL}, true

	case domain.KindAssistant:
		if node.Data.LastText == "" {
			return Output{}, false
		}
		return Output{Type: OutputText, Text: node.Data.LastText}, true

	case domain.KindImageGenerator:
		if node.Data.LastImageURL == "" {
			return Output{}, false
		}
		return Output{Type: OutputImage, URL: node.Data.LastImageURL}, true

	case domain.KindVideoGenerator:
		if node.Data.LastVideoJob == nil || node.Data.LastVideoJob.DownloadURL == "" {
			return Output{}, false
		}
		return Output{Type: OutputVideo, URL: node.Data.LastVideoJob.DownloadURL}, true

	default:
		return Output{}, false
	}
}

// CollectInputs enumerates the edges into targetID, resolves each source
// node's output and routes it into one of the declared slots by output type.
// A fetch failure on a materialization slot drops that edge's contribution
// only; the rest of the collection proceeds.
func (a *Adapter) CollectInputs(ctx context.Context, targetID string, slots []Slot) Inputs {
	declared := make(map[Slot]bool, len(slots))
	for _, s := range slots {
		declared[s] = true
	}

	var in Inputs
	var promptParts, contextParts, styleParts []string

	for _, edge := range a.reader.EdgesInto(targetID) {
		source, ok := a.reader.Node(edge.Source)
		if !ok {
			continue
		}
		out, ok := a.OutputOf(source)
		if !ok {
			continue
		}

		switch out.Type {
		case OutputText:
			if declared[SlotPrompt] {
				promptParts = append(promptParts, out.Text)
			}

		case OutputData:
			// Structured data goes to whichever of the two text-ish slots the
			// target declares, stringified.
			s := stringifyFields(out.Fields)
			if declared[SlotContext] {
				contextParts = append(contextParts, s)
			} else if declared[SlotStyleBrand] {
				styleParts = append(styleParts, s)
			}

		case OutputImage:
			switch {
			case declared[SlotReference]:
				if in.Reference != nil {
					a.logger.Debug("reference slot already filled, dropping extra image input",
						zap.String("target_id", targetID),
						zap.String("edge_id", edge.ID))
					continue
				}
				data, err := a.materialize(ctx, out.URL)
				if err != nil {
					a.logger.Warn("failed to materialize reference image",
						zap.String("edge_id", edge.ID),
						zap.String("url", out.URL),
						zap.Error(err))
					continue
				}
				in.Reference = data

			case declared[SlotImages]:
				// The URL or base64 value passes through without a fetch.
				in.Images = append(in.Images, out.URL)

			case declared[SlotReferenceImages]:
				data, err := a.materialize(ctx, out.URL)
				if err != nil {
					a.logger.Warn("failed to materialize reference image",
						zap.String("edge_id", edge.ID),
						zap.String("url", out.URL),
						zap.Error(err))
					continue
				}
				in.ReferenceImages = append(in.ReferenceImages, data)
			}

		case OutputVideo:
			// No target kind declares a video input slot today.
		}
	}

	// Same-type contributions collide into one slot; they concatenate in
	// edge order so the result is at least deterministic.
	in.Prompt = strings.Join(promptParts, "\n\n")
	in.Context = strings.Join(contextParts, "\n")
	in.StyleBrand = strings.Join(styleParts, "\n")

	return in
}

// materialize fetches a URL into bytes and records the outcome.
func (a *Adapter) materialize(ctx context.Context, url string) ([]byte, error) {
	data, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		a.metrics.RecordMaterialization("failed")
		return nil, err
	}
	a.metrics.RecordMaterialization("ok")
	return data, nil
}

// stringifyFields renders structured-input fields as a JSON object keyed by
// field label, falling back to the default value when unset.
func stringifyFields(fields []domain.InputField) string {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		v := f.Value
		if v == "" {
			v = f.Default
		}
		values[f.Label] = v
	}
	data, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(data)
}
