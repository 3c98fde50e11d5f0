package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bz888/deepchat/internal/api/server/client"
	"github.com/bz888/deepchat/internal/logger"
	"github.com/bz888/deepchat/internal/share"
)

// CredentialStore holds the API key forwarded to the completions endpoint.
type CredentialStore interface {
	APIKey(ctx context.Context) (string, error)
	SetAPIKey(ctx context.Context, apiKey string) error
}

// ShareService is the part of share.Service the handlers use.
type ShareService interface {
	Create(message share.Message, context []share.Message, opts share.Options) *share.Share
	Save(ctx context.Context, sh *share.Share) error
	Get(ctx context.Context, id string) (*share.Share, error)
	Delete(ctx context.Context, id string) error
	History(ctx context.Context) ([]share.HistoryItem, error)
	Stats(ctx context.Context) (share.Summary, error)
	Link(id string) string
	FormatText(message share.Message, context []share.Message, opts share.Options) string
}

type Handler struct {
	chatClient client.DeepSeekClientInterface
	shares     ShareService
	keys       CredentialStore
	history    *History
}

func NewHandler(chatClient client.DeepSeekClientInterface, shares ShareService, keys CredentialStore) *Handler {
	return &Handler{
		chatClient: chatClient,
		shares:     shares,
		keys:       keys,
		history:    &History{},
	}
}

// ModelsResponse lists the selectable models and the active one.
type ModelsResponse struct {
	Models  []string `json:"models"`
	Current string   `json:"current"`
}

type SelectModelRequest struct {
	Model string `json:"model"`
}

type KeyRequest struct {
	Key string `json:"key"`
}

func (h *Handler) ModelHandler(w http.ResponseWriter, r *http.Request) {
	models := make([]string, len(client.Models))
	for i, m := range client.Models {
		models[i] = string(m)
	}
	writeJSON(w, http.StatusOK, ModelsResponse{Models: models, Current: string(h.chatClient.Model())})
}

func (h *Handler) SelectModelHandler(w http.ResponseWriter, r *http.Request) {
	localLogger := logger.NewLogger("SelectModelHandler")
	var req SelectModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if !h.chatClient.SetModel(req.Model) {
		localLogger.Warn("Model not found: ", req.Model)
		http.Error(w, "Model not found", http.StatusBadRequest)
		return
	}
	h.ModelHandler(w, r)
}

func (h *Handler) ClearHistoryHandler(w http.ResponseWriter, r *http.Request) {
	h.history.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) KeyHandler(w http.ResponseWriter, r *http.Request) {
	localLogger := logger.NewLogger("KeyHandler")
	var req KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.keys.SetAPIKey(r.Context(), req.Key); err != nil {
		localLogger.Error("Failed to store API key: ", err)
		http.Error(w, "Failed to store API key", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.NewLogger("writeJSON").Error("Failed to encode response: ", err)
	}
}
