// Package main runs the gymdash MCP server over stdio, acting on the remote
// gym API with the token from GYMDASH_API_TOKEN.
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"net/http"
	"os"

	"github.com/2beens/gymdash/internal/config"
	"github.com/2beens/gymdash/internal/gymapi"
	"github.com/2beens/gymdash/internal/gymstats/catalog"
	"github.com/2beens/gymdash/internal/gymstats/dashboard"
	"github.com/2beens/gymdash/internal/gymstats/enrich"
	gymdashmcp "github.com/2beens/gymdash/internal/gymstats/mcp"
	"github.com/2beens/gymdash/internal/gymstats/sets"
	"github.com/2beens/gymdash/internal/logging"
	"github.com/2beens/gymdash/internal/telemetry/metrics"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	envFile := flag.String("envfile", ".env", "optional .env file with secrets")
	flag.Parse()

	// stdout belongs to the MCP protocol
	log.SetOutput(os.Stderr)

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warnf("load env file %s: %s", *envFile, err)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.SetLevel(logging.GetLevel(cfg.LogLevel))

	token := os.Getenv("GYMDASH_API_TOKEN")
	if token == "" {
		log.Fatal("remote api token not set. use GYMDASH_API_TOKEN")
	}

	// metrics are collected but not served
	metricsManager := metrics.NewManager("gymdash", "mcp", prometheus.NewRegistry())

	gymClient := gymapi.NewClient(cfg.GymApiBaseURL, &http.Client{Timeout: cfg.GymApiTimeout()})
	catalogLoader := catalog.NewLoader(gymClient, cfg.CatalogCacheSizeMB, cfg.CatalogCacheTTL(), metricsManager)
	setsFetcher := sets.NewFetcher(gymClient, metricsManager)
	enricher := enrich.NewEnricher(setsFetcher, gymClient, cfg.EnrichConcurrency, metricsManager)
	dashboardService := dashboard.NewService(
		gymClient,
		catalogLoader,
		enricher,
		setsFetcher,
		dashboard.NewSessionStore(),
		metricsManager,
	)

	server := gymdashmcp.NewServer(
		gymdashmcp.NewContextService(dashboardService, catalogLoader, token),
		"1.0.0",
	)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}
