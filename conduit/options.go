package conduit

import (
	"net/http"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// scope is the instrumentation scope name for OpenTelemetry.
const scope = "github.com/nivalis-labs/conduit-go/conduit"

// DefaultMaxRestarts is the default restart budget per logical send.
// Each RestartWith verdict consumes one; exceeding the budget returns
// ErrRestartLimit.
const DefaultMaxRestarts = 16

// Option configures a Client.
type Option func(*clientConfig)

// clientConfig collects the settings applied by options before the
// Client is assembled.
type clientConfig struct {
	transport      http.RoundTripper
	logger         zerolog.Logger
	debug          bool
	maxRestarts    int
	serviceName    string
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithTransport sets the transport boundary used for every cycle.
// Defaults to http.DefaultTransport. Tests typically pass a
// MockTransport here.
func WithTransport(rt http.RoundTripper) Option {
	return func(cfg *clientConfig) {
		if rt != nil {
			cfg.transport = rt
		}
	}
}

// WithHTTPClient uses the transport of an existing http.Client.
// The client's timeout is not carried; use context deadlines instead.
func WithHTTPClient(hc *http.Client) Option {
	return func(cfg *clientConfig) {
		if hc == nil {
			return
		}
		if hc.Transport != nil {
			cfg.transport = hc.Transport
		}
	}
}

// WithServiceName sets the service name attached to spans and metrics.
func WithServiceName(name string) Option {
	return func(cfg *clientConfig) {
		cfg.serviceName = name
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *clientConfig) {
		cfg.logger = logger
	}
}

// WithDebug enables request/response/verdict logging.
func WithDebug(enabled bool) Option {
	return func(cfg *clientConfig) {
		cfg.debug = enabled
	}
}

// WithMaxRestarts sets the restart budget per logical send.
func WithMaxRestarts(n int) Option {
	return func(cfg *clientConfig) {
		if n >= 0 {
			cfg.maxRestarts = n
		}
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *clientConfig) {
		if tp != nil {
			cfg.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider.
// Defaults to the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *clientConfig) {
		if mp != nil {
			cfg.meterProvider = mp
		}
	}
}

// New creates a Client with instrumentation wired to the configured (or
// global) OpenTelemetry providers.
func New(opts ...Option) *Client {
	cfg := &clientConfig{
		transport:      http.DefaultTransport,
		logger:         debugLogger,
		maxRestarts:    DefaultMaxRestarts,
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	m, err := newMetrics(cfg.meterProvider.Meter(scope))
	if err != nil {
		// Instruments are nil-guarded; a registration failure disables
		// metrics but never the client.
		cfg.logger.Warn().Err(err).Msg("conduit: metric registration failed")
		m = nil
	}

	return &Client{
		transport:   cfg.transport,
		logger:      cfg.logger,
		debug:       cfg.debug,
		maxRestarts: cfg.maxRestarts,
		serviceName: cfg.serviceName,
		tracer:      cfg.tracerProvider.Tracer(scope),
		metrics:     m,
	}
}
