package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	currencyquote "github.com/damon-houk/currency-quote"
	"github.com/damon-houk/currency-quote/internal/config"
	"github.com/damon-houk/currency-quote/internal/infrastructure/fakeapi"
	"github.com/damon-houk/currency-quote/internal/infrastructure/logger"
	"github.com/damon-houk/currency-quote/internal/infrastructure/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func init() {
	// bid and ask are printed as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	os.Exit(execute())
}

// execute runs the command and returns the process exit code
func execute() int {
	pairs := flag.String("pairs", "", "comma separated currency pairs, e.g. USD-BRL,EUR-BRL")
	date := flag.Int("date", 0, "reference date (YYYYMMDD) for a historical quote; latest when omitted")
	cfgFile := flag.String("config", "", "path to a YAML config file")
	interval := flag.Duration("interval", 0, "poll every interval until interrupted")
	offline := flag.Bool("offline", false, "serve quotes from the built-in stub instead of the live API")
	traceSpans := flag.Bool("trace", false, "write finished spans to stderr")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgFile)
	if err != nil {
		log.Printf("could not load config: %v", err)
		return 1
	}

	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Printf("could not create logger: %v", err)
		return 1
	}
	appLogger := logger.NewJSONLogger(os.Stderr, level)
	logger.SetDefaultLogger(appLogger)

	if *offline {
		stub := fakeapi.NewWithDefaults().Start()
		defer stub.Close()
		cfg.API.BaseURL = stub.URL
		appLogger.Info("Using built-in quotation stub", map[string]interface{}{"url": stub.URL})
	}

	opts := []currencyquote.Option{
		currencyquote.WithConfig(cfg),
		currencyquote.WithLogger(appLogger),
	}

	if *traceSpans {
		provider, err := newTracerProvider(os.Stderr)
		if err != nil {
			appLogger.Error("Could not create tracer", map[string]interface{}{"error": err.Error()})
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				appLogger.Error("Tracer shutdown failed", map[string]interface{}{"error": err.Error()})
			}
		}()
		opts = append(opts, currencyquote.WithTracer(observability.NewOtelTracer(provider)))
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled && *interval > 0 {
		reg := prometheus.NewRegistry()
		opts = append(opts, currencyquote.WithMetrics(observability.NewPrometheusMetrics(reg, cfg.Metrics.Namespace)))
		metricsServer = serveMetrics(cfg.Metrics.Addr, reg, appLogger)
	}

	client, err := currencyquote.New(parsePairs(*pairs), opts...)
	if err != nil {
		appLogger.Error("Invalid currency pairs", map[string]interface{}{"pairs": *pairs, "error": err.Error()})
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *interval <= 0 {
		if err := run(ctx, client, *date, os.Stdout); err != nil {
			appLogger.Error("Failed to fetch quotes", map[string]interface{}{"error": err.Error()})
			return 1
		}
		return 0
	}

	poll(ctx, client, *date, *interval, appLogger)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Metrics server forced to shutdown", map[string]interface{}{"error": err.Error()})
		}
	}

	return 0
}

// parsePairs splits a comma separated flag value; an empty value is an empty list
func parsePairs(value string) []string {
	pairs := []string{}
	if strings.TrimSpace(value) == "" {
		return pairs
	}
	for _, pair := range strings.Split(value, ",") {
		pairs = append(pairs, strings.TrimSpace(pair))
	}
	return pairs
}

func newTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("failed to create span exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter)), nil
}

// run fetches one batch of quotes and writes it to w as indented JSON
func run(ctx context.Context, client *currencyquote.Client, date int, w io.Writer) error {
	var quotes []currencyquote.CurrencyQuote
	var err error

	if date == 0 {
		quotes, err = client.GetLastQuote(ctx)
	} else {
		quotes, err = client.GetHistoryQuote(ctx, date)
	}
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(quotes)
}

func poll(ctx context.Context, client *currencyquote.Client, date int, interval time.Duration, log logger.Logger) {
	if err := run(ctx, client, date, os.Stdout); err != nil {
		log.Error("Failed to fetch quotes", map[string]interface{}{"error": err.Error()})
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := run(ctx, client, date, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Failed to fetch quotes", map[string]interface{}{"error": err.Error()})
			}
		case <-ctx.Done():
			log.Info("Stopping quote polling", nil)
			return
		}
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("Serving metrics", map[string]interface{}{"addr": addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server error", map[string]interface{}{"error": err.Error()})
		}
	}()

	return server
}
