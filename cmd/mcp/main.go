package main

import (
	"os"
	"time"

	mcpadapter "github.com/askcampus/askcampus/internal/adapters/mcp"
	"github.com/askcampus/askcampus/internal/observability/logging"
)

const version = "1.0.0"

func main() {
	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	logger := logging.NewJSONLogger("mcp", os.Getenv("LOG_LEVEL"))

	client := mcpadapter.NewHTTPQueryClient(baseURL, 30*time.Second)
	srv := mcpadapter.NewServer(client, version)

	logger.Info("mcp_serving_stdio", "api_base_url", baseURL)
	if err := srv.ServeStdio(); err != nil {
		logger.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
