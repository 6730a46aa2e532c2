// Package pipeline orchestrates one verification run: normalize the raw
// attendance table, classify every record against the site registry, and
// build the summary tables. A run is synchronous, single-batch, and a pure
// function of its inputs; the optional sink publishes results as a side
// channel without affecting the run outcome.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/practicum-geofence/internal/domain"
	"github.com/couchcryptid/practicum-geofence/internal/observability"
)

// Sink publishes classified records after a successful run.
type Sink interface {
	Publish(ctx context.Context, records []domain.ClassifiedRecord) error
}

// Result is the complete output of one verification run.
type Result struct {
	Log      []domain.ClassifiedRecord `json:"log"`
	Students []domain.StudentSummary   `json:"student_summary"`
	Sites    []domain.SiteSummary      `json:"site_summary"`
	Review   []domain.ReviewSummary    `json:"review_summary"`
	Dropped  domain.DropStats          `json:"-"`
}

// Pipeline runs the normalize-classify-aggregate sequence.
type Pipeline struct {
	normalizer     *domain.Normalizer
	sink           Sink // nil disables publishing
	logger         *slog.Logger
	metrics        *observability.Metrics
	verifiedRadius float64
	reviewRadius   float64
}

// New creates a Pipeline. Pass a nil sink to disable result publishing.
func New(normalizer *domain.Normalizer, sink Sink, logger *slog.Logger, metrics *observability.Metrics, verifiedRadiusM, reviewRadiusM float64) *Pipeline {
	return &Pipeline{
		normalizer:     normalizer,
		sink:           sink,
		logger:         logger,
		metrics:        metrics,
		verifiedRadius: verifiedRadiusM,
		reviewRadius:   reviewRadiusM,
	}
}

// Run transforms one raw attendance table against the given registry.
// Fails only on schema-level problems (*domain.SchemaError); row-level
// irregularities degrade to nil fields and flow into the No Location/No Site
// tier. Sink publish failures are logged and counted but never fail the run.
func (p *Pipeline) Run(ctx context.Context, rawRows [][]string, registry domain.Registry) (Result, error) {
	start := time.Now()

	records, dropped, err := p.normalizer.Normalize(rawRows)
	if err != nil {
		p.metrics.RunsTotal.WithLabelValues("schema_error").Inc()
		return Result{}, err
	}

	p.metrics.RecordsNormalized.Add(float64(len(records)))
	p.metrics.RecordsDropped.WithLabelValues("header_echo").Add(float64(dropped.HeaderEcho))
	p.metrics.RecordsDropped.WithLabelValues("no_consent").Add(float64(dropped.NoConsent))
	p.metrics.RegistrySites.Set(float64(len(registry)))

	classifier := domain.NewClassifierWithRadii(registry, p.verifiedRadius, p.reviewRadius)
	log := classifier.ClassifyAll(records)
	for _, rec := range log {
		p.metrics.Classifications.WithLabelValues(string(rec.Status)).Inc()
	}

	result := Result{
		Log:      log,
		Students: domain.BuildStudentSummary(log),
		Sites:    domain.BuildSiteSummary(log),
		Review:   domain.BuildReviewSummary(log),
		Dropped:  dropped,
	}

	p.publish(ctx, log)

	p.metrics.RunsTotal.WithLabelValues("success").Inc()
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("verification run complete",
		"records", len(log),
		"students", len(result.Students),
		"sites", len(result.Sites),
		"dropped_header_echo", dropped.HeaderEcho,
		"dropped_no_consent", dropped.NoConsent,
		"duration", time.Since(start),
	)
	return result, nil
}

func (p *Pipeline) publish(ctx context.Context, log []domain.ClassifiedRecord) {
	if p.sink == nil || len(log) == 0 {
		return
	}
	if err := p.sink.Publish(ctx, log); err != nil {
		p.metrics.SinkErrors.Inc()
		p.logger.Warn("sink publish failed", "error", err, "records", len(log))
		return
	}
	p.metrics.SinkPublished.Add(float64(len(log)))
}
