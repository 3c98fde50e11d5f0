package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bz888/deepchat/internal/api/server/client"
	"github.com/bz888/deepchat/internal/logger"
	"github.com/bz888/deepchat/internal/share"
)

// ShareRequest shares the latest assistant reply of the conversation.
type ShareRequest struct {
	IncludeContext bool   `json:"includeContext"`
	Public         bool   `json:"public"`
	ShareType      string `json:"shareType,omitempty"`
}

type ShareResponse struct {
	Share *share.Share `json:"share"`
	Link  string       `json:"link"`
	Text  string       `json:"text"`
}

func (h *Handler) CreateShareHandler(w http.ResponseWriter, r *http.Request) {
	localLogger := logger.NewLogger("CreateShareHandler")
	var req ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	last, context, ok := h.history.LastAssistant()
	if !ok {
		http.Error(w, "No assistant reply to share", http.StatusNotFound)
		return
	}

	var ctxMessages []share.Message
	if req.IncludeContext {
		ctxMessages = toShareMessages(context)
	}
	msg := share.Message{Role: last.Role, Content: last.Content}
	opts := share.Options{
		AllowPublicAccess: req.Public,
		IncludeContext:    req.IncludeContext,
		ShareType:         req.ShareType,
		Client:            r.UserAgent(),
	}

	sh := h.shares.Create(msg, ctxMessages, opts)
	if err := h.shares.Save(r.Context(), sh); err != nil {
		localLogger.Error("Failed to save share: ", err)
		http.Error(w, "Failed to save share", http.StatusInternalServerError)
		return
	}

	link := h.shares.Link(sh.ID)
	opts.ShareLink = link
	writeJSON(w, http.StatusCreated, ShareResponse{
		Share: sh,
		Link:  link,
		Text:  h.shares.FormatText(sh.Message, sh.Context, opts),
	})
}

func (h *Handler) ListSharesHandler(w http.ResponseWriter, r *http.Request) {
	history, err := h.shares.History(r.Context())
	if err != nil {
		http.Error(w, "Failed to load shares: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []share.HistoryItem{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *Handler) ShareStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.shares.Stats(r.Context())
	if err != nil {
		http.Error(w, "Failed to load share stats: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) GetShareHandler(w http.ResponseWriter, r *http.Request) {
	sh, err := h.shares.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, share.ErrNotFound) {
		http.Error(w, "Share not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to load share: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

func (h *Handler) DeleteShareHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.shares.Delete(r.Context(), r.PathValue("id")); err != nil {
		http.Error(w, "Failed to delete share: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toShareMessages(messages []client.Message) []share.Message {
	out := make([]share.Message, len(messages))
	for i, m := range messages {
		out[i] = share.Message{Role: m.Role, Content: m.Content}
	}
	return out
}
