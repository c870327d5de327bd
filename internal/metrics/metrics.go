package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/plantora/storefront/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// AppMetrics holds all application metrics
type AppMetrics struct {
	// HTTP Metrics (this frontend's own server)
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestsErrors  metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Upstream API Metrics (calls to the backend)
	APICallsTotal   metric.Int64Counter
	APICallDuration metric.Float64Histogram

	// Business Metrics
	OrdersCreated       metric.Int64Counter
	PaymentLinksCreated metric.Int64Counter
	ProductsViewed      metric.Int64Counter
	CartItemsCount      metric.Int64Gauge

	// Application Metrics
	SessionsStarted  metric.Int64Counter
	SessionsVerified metric.Int64Counter

	serviceName string
}

// InitMetrics initializes OpenTelemetry metrics
func InitMetrics(ctx context.Context, cfg *config.Config) (*AppMetrics, *sdkmetric.MeterProvider, error) {
	envRes, err := resource.New(ctx, resource.WithFromEnv())
	if err != nil {
		envRes = resource.Empty()
	}

	explicitRes, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.OTELServiceName),
			semconv.ServiceVersion(cfg.OTELServiceVersion),
			attribute.String("deployment.environment", cfg.OTELDeploymentEnvironment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create explicit resource: %w", err)
	}

	// Explicit attributes take precedence over env
	res, err := resource.Merge(envRes, explicitRes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to merge resources: %w", err)
	}

	exporterOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.OTELExporterOTLPEndpoint),
		otlpmetrichttp.WithURLPath("/v1/metrics"),
	}
	if cfg.OTELExporterOTLPHeaders != "" {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithHeaders(parseHeaders(cfg.OTELExporterOTLPHeaders)))
	}
	if cfg.OTELExporterOTLPInsecure {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(10*time.Second),
	)

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(cfg.OTELServiceName)

	// Histogram buckets in milliseconds, expanded to 60s
	buckets := []float64{2, 4, 6, 8, 10, 50, 100, 200, 400, 800, 1000, 1400, 2000, 5000, 10000, 15000, 20000, 30000, 45000, 60000}

	m := &AppMetrics{serviceName: cfg.OTELServiceName}

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create http requests counter: %w", err)
	}

	if m.HTTPRequestsErrors, err = meter.Int64Counter(
		"http.server.request.error.count",
		metric.WithDescription("Total number of HTTP error requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create http errors counter: %w", err)
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}

	if m.APICallsTotal, err = meter.Int64Counter(
		"api.client.request.count",
		metric.WithDescription("Total number of backend API calls"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create api calls counter: %w", err)
	}

	if m.APICallDuration, err = meter.Float64Histogram(
		"api.client.request.duration",
		metric.WithDescription("Backend API call duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create api duration histogram: %w", err)
	}

	if m.OrdersCreated, err = meter.Int64Counter(
		"orders_created_total",
		metric.WithDescription("Total number of orders placed through checkout"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create orders counter: %w", err)
	}

	if m.PaymentLinksCreated, err = meter.Int64Counter(
		"payment_links_created_total",
		metric.WithDescription("Total number of payment checkout links requested"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create payment links counter: %w", err)
	}

	if m.ProductsViewed, err = meter.Int64Counter(
		"products_viewed_total",
		metric.WithDescription("Total number of product detail views"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create products viewed counter: %w", err)
	}

	if m.CartItemsCount, err = meter.Int64Gauge(
		"cart_items_count",
		metric.WithDescription("Number of items in the cart after the last sync"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create cart items gauge: %w", err)
	}

	if m.SessionsStarted, err = meter.Int64Counter(
		"sessions_started_total",
		metric.WithDescription("Total number of sessions created by login or register"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create sessions started counter: %w", err)
	}

	if m.SessionsVerified, err = meter.Int64Counter(
		"sessions_verified_total",
		metric.WithDescription("Total number of startup credential verifications"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create sessions verified counter: %w", err)
	}

	return m, meterProvider, nil
}

// WithServiceName adds service.name to attributes
func (m *AppMetrics) WithServiceName(attrs []attribute.KeyValue) []attribute.KeyValue {
	return append(attrs, attribute.String("service.name", m.serviceName))
}

// RecordAPICall records metrics for one backend API call. Safe on a nil
// receiver so the client can run without metrics in tests.
func (m *AppMetrics) RecordAPICall(ctx context.Context, method, endpoint string, status int, start time.Time, success bool) {
	if m == nil {
		return
	}
	duration := time.Since(start).Milliseconds()

	result := "success"
	if !success {
		result = "error"
	}

	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("api.endpoint", endpoint),
		attribute.Int("http.status_code", status),
		attribute.String("status", result),
	}

	m.APICallsTotal.Add(ctx, 1, metric.WithAttributes(m.WithServiceName(attrs)...))
	m.APICallDuration.Record(ctx, float64(duration), metric.WithAttributes(m.WithServiceName(attrs)...))
}

// RecordOrderCreated counts one placed order, tagged with its payment method.
func (m *AppMetrics) RecordOrderCreated(ctx context.Context, paymentMethod string) {
	if m == nil {
		return
	}
	m.OrdersCreated.Add(ctx, 1, metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.String("payment.method", paymentMethod),
	})...))
}

// RecordPaymentLink counts one checkout-link request.
func (m *AppMetrics) RecordPaymentLink(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "error"
	}
	m.PaymentLinksCreated.Add(ctx, 1, metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.String("status", result),
	})...))
}

// RecordProductView counts one product detail view.
func (m *AppMetrics) RecordProductView(ctx context.Context, productID int64) {
	if m == nil {
		return
	}
	m.ProductsViewed.Add(ctx, 1, metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.Int64("product.id", productID),
	})...))
}

// RecordCartSize records the item count after a cart sync.
func (m *AppMetrics) RecordCartSize(ctx context.Context, count int) {
	if m == nil {
		return
	}
	m.CartItemsCount.Record(ctx, int64(count), metric.WithAttributes(m.WithServiceName(nil)...))
}

// RecordSessionStarted counts a login or register.
func (m *AppMetrics) RecordSessionStarted(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.SessionsStarted.Add(ctx, 1, metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.String("session.kind", kind),
	})...))
}

// RecordSessionVerified counts a startup credential verification.
func (m *AppMetrics) RecordSessionVerified(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "error"
	}
	m.SessionsVerified.Add(ctx, 1, metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.String("status", result),
	})...))
}

// parseHeaders parses a header string in format "key1=value1,key2=value2"
func parseHeaders(headerStr string) map[string]string {
	headers := make(map[string]string)
	if headerStr == "" {
		return headers
	}

	pairs := strings.Split(headerStr, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 {
			headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return headers
}
