package cmd

import (
	"context"
	"log"

	"github.com/bz888/deepchat/internal/api"
	"github.com/bz888/deepchat/internal/api/server"
	"github.com/bz888/deepchat/internal/config"
	"github.com/bz888/deepchat/internal/logger"
	"github.com/bz888/deepchat/internal/prompt"
	"github.com/bz888/deepchat/internal/storage"
	"github.com/bz888/deepchat/internal/ui"
)

func init() {
	config.Init()
}

func Execute() {
	ui.Init()
	debugConsole, err := ui.GetDebugConsole()
	if err != nil {
		log.Fatal(err)
	}

	logger.InitLogger(config.Dev, config.LogPath, debugConsole)
	localLogger := logger.NewLogger("main")

	prompts := prompt.NewLoader()
	if config.PromptPath != "" {
		_, err = prompts.Load(config.PromptPath)
	} else {
		_, err = prompts.LoadDefault()
	}
	if err != nil {
		localLogger.Error("Failed to load system prompt: ", err)
	}

	store, err := storage.Open(config.DataPath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()
	seedAPIKey(store, localLogger)

	api.Init(config.Port)
	server.Init()

	go server.Run(server.Options{
		Port:    config.Port,
		BaseURL: config.BaseURL,
		Model:   config.Model,
		Prompt:  prompts,
		Store:   store,
	})
	ui.Run()
}

// seedAPIKey stores the environment key when none has been saved yet.
func seedAPIKey(store *storage.Store, localLogger *logger.Logger) {
	key := config.EnvAPIKey()
	if key == "" {
		return
	}
	ctx := context.Background()
	if store.HasAPIKey(ctx) {
		return
	}
	if err := store.SetAPIKey(ctx, key); err != nil {
		localLogger.Error("Failed to store API key from environment: ", err)
		return
	}
	localLogger.Info("API key loaded from ", config.APIKeyEnv)
}
