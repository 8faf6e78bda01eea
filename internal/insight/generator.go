package insight

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/retailradar/event-insights/internal/domain"
	"github.com/retailradar/event-insights/internal/observability"
)

// Completer produces free text from a prompt. Implemented by the completion
// provider adapter; tests substitute a fake.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Analysis is the generated demand commentary for one event, with the CSV
// product table extracted when the model produced one.
type Analysis struct {
	Commentary string `json:"commentary"`
	CSV        string `json:"csv,omitempty"`
}

// Generator turns one event row into demand commentary via the completion
// provider.
type Generator struct {
	completer Completer
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewGenerator creates a Generator.
func NewGenerator(completer Completer, logger *slog.Logger, metrics *observability.Metrics) *Generator {
	return &Generator{
		completer: completer,
		logger:    logger,
		metrics:   metrics,
	}
}

// Analyze generates demand commentary for the row. Failures are recoverable
// and scoped to this call; the core pipeline never depends on them.
func (g *Generator) Analyze(ctx context.Context, row domain.EventRow) (Analysis, error) {
	raw, err := g.completer.Complete(ctx, BuildPrompt(row))
	if err != nil {
		g.metrics.InsightGenerations.WithLabelValues("error").Inc()
		return Analysis{}, fmt.Errorf("generate insights for %q: %w", row.Title, err)
	}
	g.metrics.InsightGenerations.WithLabelValues("success").Inc()

	return Analysis{
		Commentary: StripFences(raw),
		CSV:        ExtractCSV(raw),
	}, nil
}
