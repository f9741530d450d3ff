// Package mcp parses MCP command flags and wires the signing backend,
// workflow controller, and transport selection.
package mcp

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/inkflow/signbridge/internal/audit"
	"github.com/inkflow/signbridge/internal/docusign"
	"github.com/inkflow/signbridge/internal/platform/config"
	"github.com/inkflow/signbridge/internal/platform/otel"
	"github.com/inkflow/signbridge/internal/services/mcp/domain"
	"github.com/inkflow/signbridge/internal/services/mcp/service"
	"github.com/inkflow/signbridge/internal/services/webhook"
	"github.com/inkflow/signbridge/internal/workflow"
)

// Config holds MCP command configuration.
type Config struct {
	Transport    string   `env:"SIGNBRIDGE_MCP_TRANSPORT"     envDefault:"stdio"`
	HTTPAddr     string   `env:"SIGNBRIDGE_MCP_HTTP_ADDR"     envDefault:"localhost:8081"`
	AllowedHosts []string `env:"SIGNBRIDGE_MCP_ALLOWED_HOSTS" envSeparator:","`
	APIToken     string   `env:"SIGNBRIDGE_MCP_API_TOKEN"`
	AuditDB      string   `env:"SIGNBRIDGE_AUDIT_DB"`
	ReturnURL    string   `env:"SIGNBRIDGE_RETURN_URL"`
	WebhookAddr  string   `env:"SIGNBRIDGE_WEBHOOK_ADDR"`

	DocuSign docusign.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.AuditDB, "audit-db", cfg.AuditDB, "SQLite path for the tool invocation audit log")
	fs.StringVar(&cfg.ReturnURL, "return-url", cfg.ReturnURL, "URL signers land on after the signing ceremony")
	fs.StringVar(&cfg.WebhookAddr, "webhook-addr", cfg.WebhookAddr, "address for the notification webhook receiver (disabled when empty)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter and, when configured, the webhook
// receiver. It blocks until context cancellation or the first service error.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "mcp")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	backend, err := docusign.New(cfg.DocuSign)
	if err != nil {
		return err
	}
	controller := workflow.New(backend, cfg.ReturnURL)

	var recorder domain.AuditRecorder
	if cfg.AuditDB != "" {
		store, err := audit.Open(cfg.AuditDB)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close audit store: %v", err)
			}
		}()
		recorder = auditRecorder(store)
	}

	deps := service.Deps{
		Controller: controller,
		Audit:      recorder,
		Info: domain.ServerInfo{
			Name:        "Signbridge MCP",
			Version:     "0.1.0",
			Environment: cfg.DocuSign.Environment(),
			BaseURL:     cfg.DocuSign.BaseURL,
		},
	}
	serviceCfg := service.Config{
		Transport:    service.TransportKind(cfg.Transport),
		HTTPAddr:     cfg.HTTPAddr,
		AllowedHosts: cfg.AllowedHosts,
		APIToken:     cfg.APIToken,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	services := 1
	errCh := make(chan error, 2)
	go func() {
		errCh <- service.Run(runCtx, serviceCfg, deps)
	}()
	if cfg.WebhookAddr != "" {
		services++
		receiver := webhook.New(cfg.WebhookAddr)
		go func() {
			errCh <- receiver.Start(runCtx)
		}()
	}

	// The first service error stops the rest; a clean shutdown drains all
	// exits before returning.
	var firstErr error
	for i := 0; i < services; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	return firstErr
}

// auditRecorder bridges domain audit events into the SQLite store.
func auditRecorder(store *audit.Store) domain.AuditRecorder {
	return func(ctx context.Context, event domain.AuditEvent) {
		if err := store.Record(ctx, audit.Event{
			Tool:         event.Tool,
			InvocationID: event.InvocationID,
			Success:      event.Success,
			ErrorCode:    event.ErrorCode,
			EnvelopeID:   event.EnvelopeID,
		}); err != nil {
			log.Printf("record audit event: %v", err)
		}
	}
}
