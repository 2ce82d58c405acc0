// internal/metrics/metrics.go
package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/javajoker/reelshop/internal/config"
)

// AppMetrics holds the application instruments. A nil *AppMetrics is valid
// and records nothing.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestsErrors  metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// State store
	StoreCommits         metric.Int64Counter
	SnapshotSaveFailures metric.Int64Counter
	ActiveWorkspaces     metric.Int64UpDownCounter

	// Business
	CheckoutsTotal       metric.Int64Counter
	RevenueTotal         metric.Float64Counter
	CommissionTotal      metric.Float64Counter
	NotificationsFanout  metric.Int64Counter
	DiscountsExpired     metric.Int64Counter
	GenerativeAIRequests metric.Int64Counter
}

// Init builds the meter provider and instruments. Without an OTLP endpoint
// the provider has no reader and measurements stay in-process.
func Init(ctx context.Context, cfg config.MetricsConfig) (*AppMetrics, *sdkmetric.MeterProvider, error) {
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if cfg.OTLPEndpoint != "" {
		exporterOpts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.OTLPEndpoint),
			otlpmetrichttp.WithURLPath("/v1/metrics"),
		}
		if cfg.OTLPHeaders != "" {
			exporterOpts = append(exporterOpts, otlpmetrichttp.WithHeaders(parseHeaders(cfg.OTLPHeaders)))
		}
		if cfg.OTLPInsecure {
			exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
		}

		exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}

		interval := time.Duration(cfg.ExportInterval) * time.Second
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))))

		logrus.WithFields(logrus.Fields{
			"endpoint": cfg.OTLPEndpoint,
			"interval": interval.String(),
		}).Info("Metrics exporter configured")
	} else {
		logrus.Info("Metrics exporter disabled: OTEL_EXPORTER_OTLP_ENDPOINT not set")
	}

	provider := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(provider)

	m, err := New(provider.Meter(cfg.ServiceName))
	if err != nil {
		return nil, nil, err
	}
	return m, provider, nil
}

// New creates the instruments on meter.
func New(meter metric.Meter) (*AppMetrics, error) {
	buckets := []float64{2, 4, 6, 8, 10, 50, 100, 200, 400, 800, 1000, 1400, 2000, 5000, 10000, 30000, 60000}

	var (
		m   AppMetrics
		err error
	)

	if m.HTTPRequestsTotal, err = meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create http requests counter: %w", err)
	}
	if m.HTTPRequestsErrors, err = meter.Int64Counter("http.server.request.error.count",
		metric.WithDescription("Total number of HTTP error responses"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create http errors counter: %w", err)
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"), metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...)); err != nil {
		return nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}
	if m.StoreCommits, err = meter.Int64Counter("store_commits_total",
		metric.WithDescription("Committed state mutations"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create store commits counter: %w", err)
	}
	if m.SnapshotSaveFailures, err = meter.Int64Counter("snapshot_save_failures_total",
		metric.WithDescription("State snapshots that could not be persisted"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create snapshot failure counter: %w", err)
	}
	if m.ActiveWorkspaces, err = meter.Int64UpDownCounter("active_workspaces",
		metric.WithDescription("Device workspaces loaded in memory"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create workspaces counter: %w", err)
	}
	if m.CheckoutsTotal, err = meter.Int64Counter("checkouts_total",
		metric.WithDescription("Sale records created"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create checkouts counter: %w", err)
	}
	if m.RevenueTotal, err = meter.Float64Counter("revenue_total",
		metric.WithDescription("Total sale amount"), metric.WithUnit("USD")); err != nil {
		return nil, fmt.Errorf("failed to create revenue counter: %w", err)
	}
	if m.CommissionTotal, err = meter.Float64Counter("commission_total",
		metric.WithDescription("Total commission owed to sales reps"), metric.WithUnit("USD")); err != nil {
		return nil, fmt.Errorf("failed to create commission counter: %w", err)
	}
	if m.NotificationsFanout, err = meter.Int64Counter("notifications_fanout_total",
		metric.WithDescription("Notifications created by publish fanout"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create fanout counter: %w", err)
	}
	if m.DiscountsExpired, err = meter.Int64Counter("live_discounts_expired_total",
		metric.WithDescription("Live-stream discounts cleared by their timer"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create discount counter: %w", err)
	}
	if m.GenerativeAIRequests, err = meter.Int64Counter("generative_ai_requests_total",
		metric.WithDescription("Calls to the generative AI API"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create AI requests counter: %w", err)
	}

	return &m, nil
}

func (m *AppMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	if status >= 400 {
		m.HTTPRequestsErrors.Add(ctx, 1, attrs)
	}
}

func (m *AppMetrics) RecordCommit(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.StoreCommits.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *AppMetrics) RecordSaveFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.SnapshotSaveFailures.Add(ctx, 1)
}

func (m *AppMetrics) WorkspaceLoaded(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.ActiveWorkspaces.Add(ctx, delta)
}

func (m *AppMetrics) RecordSale(ctx context.Context, source string, total, commission float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("source", source))
	m.CheckoutsTotal.Add(ctx, 1, attrs)
	m.RevenueTotal.Add(ctx, total, attrs)
	if commission > 0 {
		m.CommissionTotal.Add(ctx, commission, attrs)
	}
}

func (m *AppMetrics) RecordFanout(ctx context.Context, kind string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.NotificationsFanout.Add(ctx, int64(count), metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *AppMetrics) RecordDiscountExpired(ctx context.Context) {
	if m == nil {
		return
	}
	m.DiscountsExpired.Add(ctx, 1)
}

func (m *AppMetrics) RecordAIRequest(ctx context.Context, operation string, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	m.GenerativeAIRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

// parseHeaders parses "key1=value1,key2=value2".
func parseHeaders(headerStr string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(headerStr, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 {
			headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return headers
}
