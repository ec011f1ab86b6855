// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/guanyang/capcut-mcp/internal/composer"
	"github.com/guanyang/capcut-mcp/internal/draft"
	"github.com/guanyang/capcut-mcp/internal/platform/config"
	"github.com/guanyang/capcut-mcp/internal/platform/otel"
	"github.com/guanyang/capcut-mcp/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	ComposerAddr    string        `env:"CAPCUT_COMPOSER_ADDR"    envDefault:"http://localhost:9001"`
	ComposerTimeout time.Duration `env:"CAPCUT_COMPOSER_TIMEOUT" envDefault:"2m"`
	HTTPAddr        string        `env:"CAPCUT_MCP_HTTP_ADDR"    envDefault:"localhost:5001"`
	Transport       string        `env:"CAPCUT_MCP_TRANSPORT"    envDefault:"stdio"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.ComposerAddr, "composer-addr", cfg.ComposerAddr, "composition backend base URL")
	fs.DurationVar(&cfg.ComposerTimeout, "composer-timeout", cfg.ComposerTimeout, "composition backend call timeout")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter. The composer address is validated up
// front so a misconfigured backend fails the process at startup instead of
// surfacing on the first tool call.
func Run(ctx context.Context, cfg Config) error {
	transport, err := transportKind(cfg.Transport)
	if err != nil {
		return err
	}

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

	client, err := composer.NewClient(cfg.ComposerAddr, cfg.ComposerTimeout)
	if err != nil {
		return fmt.Errorf("configure composer client: %w", err)
	}

	return service.Run(ctx, service.Config{
		Transport: transport,
		HTTPAddr:  cfg.HTTPAddr,
		Registry:  draft.NewRegistry(client),
		Composer:  client,
	})
}

func transportKind(transport string) (service.TransportKind, error) {
	switch transport {
	case "http":
		return service.TransportHTTP, nil
	case "stdio", "":
		return service.TransportStdio, nil
	default:
		return "", fmt.Errorf("invalid transport %q: must be 'stdio' or 'http'", transport)
	}
}
