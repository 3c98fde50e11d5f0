package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bz888/deepchat/internal/api/server/client"
	"github.com/bz888/deepchat/internal/logger"
)

// ProcessTextHandler relays one chat turn. The reply streams back as NDJSON
// client.ChatResponse lines ending with a "complete" or "error" line.
func (h *Handler) ProcessTextHandler(w http.ResponseWriter, r *http.Request) {
	localLogger := logger.NewLogger("ProcessTextHandler")
	var clientReq client.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&clientReq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(clientReq.Text) == "" {
		http.Error(w, "Empty message", http.StatusBadRequest)
		return
	}
	if clientReq.Model != "" && clientReq.Model != string(h.chatClient.Model()) {
		if !h.chatClient.SetModel(clientReq.Model) {
			localLogger.Error("Model not found: ", clientReq.Model)
			http.Error(w, "Model not found", http.StatusBadRequest)
			return
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	apiKey, err := h.keys.APIKey(r.Context())
	if err != nil {
		localLogger.Error("Failed to read API key: ", err)
	}

	h.history.Append(client.Message{Role: client.RoleUser, Content: clientReq.Text})

	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")

	encoder := json.NewEncoder(w)
	var reply strings.Builder
	writeFailed := false

	// drain the stream even after the client has gone
	for ev := range h.chatClient.Stream(r.Context(), apiKey, h.history.Snapshot()) {
		resp := client.ChatResponse{Type: ev.Type.String(), Text: ev.Text}
		switch ev.Type {
		case client.EventContent:
			reply.WriteString(ev.Text)
		case client.EventError:
			resp.Text = ev.Err.Message
			localLogger.Warn("Stream ended with error: ", ev.Err)
		case client.EventComplete:
			if reply.Len() > 0 {
				h.history.Append(client.Message{Role: client.RoleAssistant, Content: reply.String()})
			}
			localLogger.Info("Completed response, chars: ", reply.Len())
		}

		if writeFailed {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			localLogger.Error("Failed to encode response: ", err)
			writeFailed = true
			continue
		}
		flusher.Flush()
	}
}
