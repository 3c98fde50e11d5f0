package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/bz888/deepchat/internal/api/server/client"
	"github.com/bz888/deepchat/internal/api/server/handlers"
	"github.com/bz888/deepchat/internal/logger"
	"github.com/bz888/deepchat/internal/share"
	"github.com/bz888/deepchat/internal/storage"
)

var (
	LocalLogger *logger.Logger
)

// Options carries what the relay needs from start-up wiring.
type Options struct {
	Port    int
	BaseURL string
	Model   string
	Prompt  client.PromptProvider
	Store   *storage.Store
}

func Init() {
	LocalLogger = logger.NewLogger("Server")
}

// Run serves the relay until the listener fails.
func Run(opts Options) {
	handler, err := initializeClients(opts)
	if err != nil {
		log.Fatal(err)
	}

	mux := registerRoutes(handler)
	address := ":" + strconv.Itoa(opts.Port)

	LocalLogger.Info("Server started on http://localhost" + address + "/")
	err = http.ListenAndServe(address, Chain(mux, LoggingMiddleware(LocalLogger.Zap(), "/metrics")))
	if err != nil {
		log.Fatal("Error starting server: ", err)
	}
}

func initializeClients(opts Options) (*handlers.Handler, error) {
	deepSeekClient, err := client.NewDeepSeekClient(opts.BaseURL, nil, opts.Prompt)
	if err != nil {
		return nil, fmt.Errorf("deepseek client: %w", err)
	}
	if opts.Model != "" {
		deepSeekClient.SetModel(opts.Model)
	}
	LocalLogger.Info("DeepSeek client initialized, model: ", deepSeekClient.Model())

	if !opts.Store.HasAPIKey(context.Background()) {
		LocalLogger.Warn("No API key stored, requests will be rejected until one is set with /key")
	}

	shares := share.NewService(opts.Store, fmt.Sprintf("http://localhost:%d/", opts.Port))
	if _, err := shares.CleanupExpired(context.Background(), share.DefaultRetainDays); err != nil {
		LocalLogger.Warn("Share cleanup failed: ", err)
	}

	return handlers.NewHandler(deepSeekClient, shares, opts.Store), nil
}
