package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"go-call-tracker/internal/config"
	handlers "go-call-tracker/internal/server"
	"go-call-tracker/internal/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "rct-server",
		Short:        "Serve call tracing tools over MCP",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.Mode, "mode", cfg.Mode, "Transport mode: stdio or sse")
	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address for SSE")
	cmd.Flags().StringVar(&cfg.SSEPath, "path", cfg.SSEPath, "HTTP path for SSE connections")
	cmd.Flags().StringVar(&cfg.MetricsPath, "metrics-path", cfg.MetricsPath, "HTTP path for Prometheus metrics in SSE mode (empty disables)")
	cmd.Flags().IntVar(&cfg.Indent, "indent", cfg.Indent, "Default indent width of rendered call trees")
	cmd.Flags().IntVar(&cfg.MaxTraces, "max-traces", cfg.MaxTraces, "Number of traces kept for call_tree; older ones are evicted")
	return cmd
}

func serve(cfg config.Config) error {
	// Create a new MCP server
	s := server.NewMCPServer(
		"Recursive Call Tracker",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	metrics := tracer.NewMetrics("rct")
	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.Collectors()...)

	store, err := handlers.NewStore(cfg.MaxTraces)
	if err != nil {
		return err
	}

	// Register all tools and their corresponding handlers
	h := handlers.NewHandlers(store, metrics, cfg.Indent)
	h.RegisterTools(s)

	switch cfg.Mode {
	case "stdio":
		// Start the stdio server
		return server.ServeStdio(s)
	case "sse":
		sseServer := server.NewSSEServer(s)

		// Derive the message endpoint from the SSE path: "/mcp/sse" serves
		// messages at "/mcp/message", anything else at "<path>/message".
		ssePath := cfg.SSEPath
		messagePath := strings.Replace(ssePath, "/sse", "/message", 1)
		if messagePath == ssePath {
			messagePath = strings.TrimRight(ssePath, "/") + "/message"
		}

		mux := http.NewServeMux()
		mux.Handle(ssePath, sseServer.SSEHandler())
		mux.Handle(messagePath, sseServer.MessageHandler())
		if cfg.MetricsPath != "" {
			mux.Handle(cfg.MetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		}

		log.Printf("Starting SSE server on %s (SSE: %s, Message: %s, Metrics: %s)", cfg.Addr, ssePath, messagePath, cfg.MetricsPath)
		return http.ListenAndServe(cfg.Addr, mux)
	default:
		return nil
	}
}
