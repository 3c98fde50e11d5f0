package config

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
)

const APIKeyEnv = "DEEPSEEK_API_KEY"

var (
	Dev        bool
	LogPath    string
	BaseURL    string
	Model      string
	PromptPath string
	DataPath   string
	Port       int
)

func Init() {
	flag.BoolVar(&Dev, "dev", false, "Development mode")
	flag.StringVar(&LogPath, "logPath", "", "Path to save the log file")
	flag.StringVar(&BaseURL, "baseURL", "https://api.deepseek.com", "Base URL of the chat completions API")
	flag.StringVar(&Model, "model", "deepseek-chat", "Initial model (deepseek-chat or deepseek-reasoner)")
	flag.StringVar(&PromptPath, "prompts", "", "YAML file holding the system prompt (embedded default when empty)")
	flag.StringVar(&DataPath, "data", "deepchat.db", "SQLite file for the API key and shares")
	flag.IntVar(&Port, "port", 8080, "Port of the local relay server")
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()
}

// EnvAPIKey returns the API key from the environment, including values
// loaded from .env.
func EnvAPIKey() string {
	return os.Getenv(APIKeyEnv)
}
